// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package db stores parse sessions in a SQL database: the events
// classified from a log and the rows loaded from result files, each
// with its grouping attributes as queryable labels.
package db

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/google/uuid"
	"github.com/rtsched/schedstat/rtresult"
	"github.com/rtsched/schedstat/schedlog"
)

// DB is a high-level interface to a results database. It's safe for
// concurrent use by multiple goroutines.
type DB struct {
	sql *sql.DB // underlying database connection
	// prepared statements
	insertSession *sql.Stmt
	insertRecord  *sql.Stmt
}

// OpenSQL creates a DB backed by a SQL database. The parameters are
// the same as the parameters for sql.Open. Only mysql and sqlite3 are
// explicitly supported; other database engines will receive MySQL
// query syntax which may or may not be compatible.
func OpenSQL(driverName, dataSourceName string) (*DB, error) {
	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, err
	}
	if hook := openHooks[driverName]; hook != nil {
		if err := hook(db); err != nil {
			return nil, err
		}
	}
	d := &DB{sql: db}
	if err := d.createTables(driverName); err != nil {
		return nil, err
	}
	if err := d.prepareStatements(); err != nil {
		return nil, err
	}
	return d, nil
}

var openHooks = make(map[string]func(*sql.DB) error)

// RegisterOpenHook registers a hook to be called after opening a
// connection to driverName. This is used by the sqlite3 package to
// enable foreign keys. It must be called from an init function.
func RegisterOpenHook(driverName string, hook func(*sql.DB) error) {
	openHooks[driverName] = hook
}

// createTmpl is the template used to prepare the CREATE statements
// for the database. It is evaluated with . as a map containing one
// entry whose key is the driver name.
var createTmpl = template.Must(template.New("create").Parse(`
CREATE TABLE IF NOT EXISTS Sessions (
	SessionID VARCHAR(36) PRIMARY KEY,
	Source VARCHAR(1024),
	Created VARCHAR(32)
);
CREATE TABLE IF NOT EXISTS Records (
	SessionID VARCHAR(36),
	RecordID BIGINT UNSIGNED,
	Kind VARCHAR(32),
	Content BLOB,
	PRIMARY KEY (SessionID, RecordID),
	FOREIGN KEY (SessionID) REFERENCES Sessions(SessionID) ON UPDATE CASCADE ON DELETE CASCADE
);
CREATE TABLE IF NOT EXISTS RecordLabels (
	SessionID VARCHAR(36),
	RecordID BIGINT UNSIGNED,
	Name VARCHAR(255),
	Value VARCHAR(8192),
{{if not .sqlite3}}
	Index (Name(100), Value(100)),
{{end}}
	FOREIGN KEY (SessionID, RecordID) REFERENCES Records(SessionID, RecordID) ON UPDATE CASCADE ON DELETE CASCADE
);
{{if .sqlite3}}
CREATE INDEX IF NOT EXISTS RecordLabelsNameValue ON RecordLabels(Name, Value);
{{end}}
`))

// createTables creates any missing tables on the connection in
// db.sql. driverName is the same driver name passed to sql.Open and
// is used to select the correct syntax.
func (db *DB) createTables(driverName string) error {
	var buf bytes.Buffer
	if err := createTmpl.Execute(&buf, map[string]bool{driverName: true}); err != nil {
		return err
	}
	for _, q := range strings.Split(buf.String(), ";") {
		if strings.TrimSpace(q) == "" {
			continue
		}
		if _, err := db.sql.Exec(q); err != nil {
			return fmt.Errorf("create table: %v", err)
		}
	}
	return nil
}

// prepareStatements calls db.sql.Prepare on reusable SQL statements.
func (db *DB) prepareStatements() error {
	var err error
	db.insertSession, err = db.sql.Prepare("INSERT INTO Sessions(SessionID, Source, Created) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	db.insertRecord, err = db.sql.Prepare("INSERT INTO Records(SessionID, RecordID, Kind, Content) VALUES (?, ?, ?, ?)")
	if err != nil {
		return err
	}
	return nil
}

// ResultKind is the record kind of a stored result row. Events are
// stored under their schedlog.Kind name.
const ResultKind = "result"

// labelNames are the attributes stored as labels of each record.
var labelNames = []string{"scheduler", "workload", "dynamic_weighting", "threads", "task_id", "task", "kind", "source"}

// A Session is a collection of records from one parse, such as one
// log file or one set of result files.
type Session struct {
	// ID identifies the session. It is a random UUID.
	ID string

	// recordid is the index of the next record to insert.
	recordid int64
	// db is the underlying database that this session is going to.
	db *DB
}

// createdLayout is fixed width so that creation times sort as
// strings.
const createdLayout = "2006-01-02T15:04:05.000000000Z"

// NewSession returns a session for storing new records from source.
func (db *DB) NewSession(ctx context.Context, source string) (*Session, error) {
	id := uuid.NewString()
	if _, err := db.insertSession.ExecContext(ctx, id, source, time.Now().UTC().Format(createdLayout)); err != nil {
		return nil, err
	}
	return &Session{ID: id, db: db}, nil
}

// A labeled value can be stored as a record.
type labeled interface {
	Attr(name string) (string, bool)
}

// InsertEvent stores a classified event. Events are numbered in
// insertion order, so inserting a log's events in order preserves it.
func (s *Session) InsertEvent(ctx context.Context, ev schedlog.Event) error {
	content, err := json.Marshal(schedlog.Entry{Seq: int(s.recordid), Event: ev})
	if err != nil {
		return err
	}
	return s.insert(ctx, ev.Kind().String(), content, ev)
}

// InsertResult stores a result row.
func (s *Session) InsertResult(ctx context.Context, r *rtresult.ResultRow) error {
	content, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return s.insert(ctx, ResultKind, content, r)
}

func (s *Session) insert(ctx context.Context, kind string, content []byte, rec labeled) (err error) {
	tx, err := s.db.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()
	if _, err = tx.StmtContext(ctx, s.db.insertRecord).ExecContext(ctx, s.ID, s.recordid, kind, content); err != nil {
		return err
	}
	var args []interface{}
	for _, name := range labelNames {
		if v, ok := rec.Attr(name); ok {
			args = append(args, s.ID, s.recordid, name, v)
		}
	}
	if len(args) > 0 {
		query := "INSERT INTO RecordLabels VALUES " + strings.Repeat("(?, ?, ?, ?), ", len(args)/4)
		query = strings.TrimSuffix(query, ", ")
		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}
	s.recordid++
	return nil
}

// SessionInfo describes a stored session.
type SessionInfo struct {
	ID      string
	Source  string
	Created string
	Records int
}

// Sessions lists the stored sessions, oldest first.
func (db *DB) Sessions(ctx context.Context) ([]SessionInfo, error) {
	rows, err := db.sql.QueryContext(ctx, `SELECT s.SessionID, s.Source, s.Created, COUNT(r.RecordID)
		FROM Sessions s LEFT JOIN Records r ON r.SessionID = s.SessionID
		GROUP BY s.SessionID, s.Source, s.Created
		ORDER BY s.Created, s.SessionID`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []SessionInfo
	for rows.Next() {
		var si SessionInfo
		if err := rows.Scan(&si.ID, &si.Source, &si.Created, &si.Records); err != nil {
			return nil, err
		}
		out = append(out, si)
	}
	return out, rows.Err()
}

// CountSessions returns the number of stored sessions.
func (db *DB) CountSessions(ctx context.Context) (int, error) {
	var n int
	err := db.sql.QueryRowContext(ctx, "SELECT COUNT(*) FROM Sessions").Scan(&n)
	return n, err
}

// A Query selects records by label. Records must carry every label in
// Labels with the given value. If Session is set, only records of that
// session match.
type Query struct {
	Session string
	Labels  map[string]string
}

// where returns the SQL condition and arguments selecting q's records
// from table alias r.
func (q Query) where() (string, []interface{}) {
	var conds []string
	var args []interface{}
	if q.Session != "" {
		conds = append(conds, "r.SessionID = ?")
		args = append(args, q.Session)
	}
	names := make([]string, 0, len(q.Labels))
	for name := range q.Labels {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		conds = append(conds, "EXISTS (SELECT 1 FROM RecordLabels l WHERE l.SessionID = r.SessionID AND l.RecordID = r.RecordID AND l.Name = ? AND l.Value = ?)")
		args = append(args, name, q.Labels[name])
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " AND " + strings.Join(conds, " AND "), args
}

func (db *DB) records(ctx context.Context, kinds string, q Query, fn func(content []byte) error) error {
	cond, args := q.where()
	rows, err := db.sql.QueryContext(ctx, `SELECT r.Content FROM Records r
		JOIN Sessions s ON s.SessionID = r.SessionID
		WHERE `+kinds+cond+`
		ORDER BY s.Created, r.SessionID, r.RecordID`, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var content []byte
		if err := rows.Scan(&content); err != nil {
			return err
		}
		if err := fn(content); err != nil {
			return err
		}
	}
	return rows.Err()
}

// Results returns the result rows matching q, in insertion order.
func (db *DB) Results(ctx context.Context, q Query) ([]rtresult.ResultRow, error) {
	var out []rtresult.ResultRow
	err := db.records(ctx, "r.Kind = '"+ResultKind+"'", q, func(content []byte) error {
		var r rtresult.ResultRow
		if err := json.Unmarshal(content, &r); err != nil {
			return err
		}
		out = append(out, r)
		return nil
	})
	return out, err
}

// Events returns the events matching q, in insertion order.
func (db *DB) Events(ctx context.Context, q Query) ([]schedlog.Event, error) {
	var out []schedlog.Event
	err := db.records(ctx, "r.Kind <> '"+ResultKind+"'", q, func(content []byte) error {
		var e schedlog.Entry
		if err := json.Unmarshal(content, &e); err != nil {
			return err
		}
		out = append(out, e.Event)
		return nil
	})
	return out, err
}

// DeleteSession removes a session and all of its records.
func (db *DB) DeleteSession(ctx context.Context, id string) (err error) {
	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()
	// Delete children first in case foreign keys are not enforced.
	for _, q := range []string{
		"DELETE FROM RecordLabels WHERE SessionID = ?",
		"DELETE FROM Records WHERE SessionID = ?",
		"DELETE FROM Sessions WHERE SessionID = ?",
	} {
		if _, err = tx.ExecContext(ctx, q, id); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database connections, releasing any open resources.
func (db *DB) Close() error {
	if err := db.insertSession.Close(); err != nil {
		return err
	}
	if err := db.insertRecord.Close(); err != nil {
		return err
	}
	return db.sql.Close()
}
