// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package store exports aggregated benchmark results to a SQL
// database.
package store

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"
	"text/template"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"

	"github.com/autobahn-hash/critplot/benchtab"
)

// DB is a SQL database holding the results of the most recent run.
// It's safe for concurrent use by multiple goroutines.
type DB struct {
	sql *sql.DB

	insertResult *sql.Stmt
	deleteAll    *sql.Stmt
}

// Open opens a database described by spec, which has the form
// "driver:dsn", for example "sqlite3:results.db".
func Open(spec string) (*DB, error) {
	driver, dsn, ok := strings.Cut(spec, ":")
	if !ok || driver == "" {
		return nil, fmt.Errorf("bad database %q: want driver:dsn", spec)
	}
	return OpenSQL(driver, dsn)
}

// OpenSQL creates a DB backed by a SQL database. The parameters are
// the same as the parameters for sql.Open. Only mysql and sqlite3 are
// supported.
func OpenSQL(driverName, dataSourceName string) (*DB, error) {
	switch driverName {
	case "sqlite3", "mysql":
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driverName)
	}
	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, err
	}
	if driverName == "sqlite3" {
		// Every connection to ":memory:" is a separate database.
		db.SetMaxOpenConns(1)
	}
	d := &DB{sql: db}
	if err := d.createTables(driverName); err != nil {
		db.Close()
		return nil, err
	}
	if err := d.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

// createTmpl is the template used to prepare the CREATE statements
// for the database. It is evaluated with . as a map containing one
// entry whose key is the driver name.
var createTmpl = template.Must(template.New("create").Parse(`
CREATE TABLE IF NOT EXISTS Results (
	GroupName VARCHAR(255) NOT NULL,
	Function VARCHAR(255) NOT NULL,
	Value VARCHAR(255) NOT NULL,
	Size BIGINT NOT NULL,
	Mean DOUBLE NOT NULL,
	Lower DOUBLE,
	Upper DOUBLE,
	Throughput DOUBLE NOT NULL,
	GBps DOUBLE NOT NULL{{if not .sqlite3}},
	Index (GroupName(100), Size){{end}}
);
{{if .sqlite3}}
CREATE INDEX IF NOT EXISTS ResultsGroupSize ON Results(GroupName, Size);
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
			return fmt.Errorf("create table: %w", err)
		}
	}
	return nil
}

// prepareStatements calls db.sql.Prepare on reusable SQL statements.
func (db *DB) prepareStatements() error {
	var err error
	db.insertResult, err = db.sql.Prepare("INSERT INTO Results(GroupName, Function, Value, Size, Mean, Lower, Upper, Throughput, GBps) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	db.deleteAll, err = db.sql.Prepare("DELETE FROM Results")
	return err
}

// ReplaceRun replaces the contents of the database with the rows of
// groups. The replacement happens in a single transaction, so readers
// see either the old or the new run.
func (db *DB) ReplaceRun(ctx context.Context, groups []*benchtab.Group) (err error) {
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
	if _, err = tx.StmtContext(ctx, db.deleteAll).ExecContext(ctx); err != nil {
		return err
	}
	insert := tx.StmtContext(ctx, db.insertResult)
	for _, g := range groups {
		for _, r := range g.Rows {
			_, err = insert.ExecContext(ctx, g.Name, r.Function, r.Value, r.Size, r.Mean,
				nullFloat(r.Lower), nullFloat(r.Upper), r.Throughput, r.GBPerSecond(g.Unit))
			if err != nil {
				return fmt.Errorf("inserting %s/%s/%d: %w", g.Name, r.Function, r.Size, err)
			}
		}
	}
	return nil
}

func nullFloat(x float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: x, Valid: !math.IsNaN(x)}
}

// Count returns the number of stored results.
func (db *DB) Count(ctx context.Context) (int, error) {
	var n int
	err := db.sql.QueryRowContext(ctx, "SELECT COUNT(*) FROM Results").Scan(&n)
	return n, err
}

// A Result is one stored row.
type Result struct {
	Group, Function, Value string
	Size                   int64
	Mean                   float64
	Lower, Upper           sql.NullFloat64
	Throughput, GBps       float64
}

// Results returns the stored rows ordered by group, size and function.
func (db *DB) Results(ctx context.Context) ([]Result, error) {
	rows, err := db.sql.QueryContext(ctx, "SELECT GroupName, Function, Value, Size, Mean, Lower, Upper, Throughput, GBps FROM Results ORDER BY GroupName, Size, Function")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Result
	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.Group, &r.Function, &r.Value, &r.Size, &r.Mean, &r.Lower, &r.Upper, &r.Throughput, &r.GBps); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close closes the database connections, releasing any open resources.
func (db *DB) Close() error {
	for _, stmt := range []*sql.Stmt{db.insertResult, db.deleteAll} {
		if err := stmt.Close(); err != nil {
			return err
		}
	}
	return db.sql.Close()
}
