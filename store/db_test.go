// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package store

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/autobahn-hash/critplot/benchtab"
	"github.com/autobahn-hash/critplot/criterion"
)

func newDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenSQL("sqlite3", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func groups(recs ...*criterion.Record) []*benchtab.Group {
	return benchtab.Build(recs).Groups()
}

func TestReplaceRun(t *testing.T) {
	ctx := context.Background()
	db := newDB(t)

	withCI := &criterion.Record{Group: "hash", Function: "blake3", Size: 1024, Mean: 100, Lower: 90, Upper: 110}
	first := groups(
		withCI,
		&criterion.Record{Group: "hash", Function: "blake3", Size: 64, Mean: 8, Lower: math.NaN(), Upper: math.NaN()},
		&criterion.Record{Group: "str", Function: "fnv", Size: 4, Mean: 2, Lower: math.NaN(), Upper: math.NaN()},
	)
	if err := db.ReplaceRun(ctx, first); err != nil {
		t.Fatal(err)
	}
	if n, err := db.Count(ctx); err != nil || n != 3 {
		t.Fatalf("Count = %d, %v, want 3", n, err)
	}

	res, err := db.Results(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if res[0].Group != "hash" || res[0].Size != 64 || res[0].Lower.Valid {
		t.Errorf("first result = %+v", res[0])
	}
	if r := res[1]; r.Size != 1024 || r.Throughput != 10.24 || !r.Lower.Valid || r.Lower.Float64 != 90 {
		t.Errorf("second result = %+v", r)
	}

	// A second run replaces the first.
	second := groups(&criterion.Record{Group: "str", Function: "fnv", Size: 4, Mean: 1, Lower: math.NaN(), Upper: math.NaN()})
	if err := db.ReplaceRun(ctx, second); err != nil {
		t.Fatal(err)
	}
	res, err = db.Results(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(res) != 1 || res[0].Throughput != 4 {
		t.Errorf("after replace: %+v", res)
	}
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.db")
	db, err := Open("sqlite3:" + path)
	if err != nil {
		t.Fatal(err)
	}
	if err := db.Close(); err != nil {
		t.Fatal(err)
	}
	// Reopening finds the existing table.
	db, err = Open("sqlite3:" + path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	if n, err := db.Count(context.Background()); err != nil || n != 0 {
		t.Errorf("Count = %d, %v, want 0", n, err)
	}

	for _, spec := range []string{"results.db", ":x", "postgres:x"} {
		if _, err := Open(spec); err == nil {
			t.Errorf("Open(%q) succeeded", spec)
		}
	}
}
