// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package criterion

import (
	"io/fs"
	"path/filepath"
	"sort"
)

// A Files reads benchmark records from a Criterion data directory.
//
// Files walks Root recursively and yields one Record for every
// benchmark.cbor file found, in lexical path order. Scan stops at the
// first error.
type Files struct {
	// Root is the directory to search, typically
	// "target/criterion/data".
	Root string

	// paths is the sequence of remaining metadata files, or nil if
	// this Files has not started yet. Note that this distinguishes
	// nil from length 0.
	paths []string

	rec *Record
	err error
}

// init does first-use initialization of f.
func (f *Files) init() {
	f.paths = []string{}
	err := filepath.WalkDir(f.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && d.Name() == MetadataFile {
			f.paths = append(f.paths, path)
		}
		return nil
	})
	if err != nil {
		f.err = err
		return
	}
	// WalkDir is already lexical, but keep the order independent of
	// how the tree was walked.
	sort.Strings(f.paths)
}

// Scan advances to the next record and reports whether one was read.
// The caller should use the Record method to get the record. If Scan
// reaches the end of the tree, or if an error occurs, it returns
// false. In this case, the caller should use the Err method to check
// for errors.
func (f *Files) Scan() bool {
	if f.err != nil {
		return false
	}
	if f.paths == nil {
		f.init()
		if f.err != nil {
			return false
		}
	}
	if len(f.paths) == 0 {
		f.rec = nil
		return false
	}
	path := f.paths[0]
	f.paths = f.paths[1:]

	rec, err := Extract(path)
	if err != nil {
		f.err, f.rec = err, nil
		return false
	}
	f.rec = rec
	return true
}

// Record returns the record that was just read by Scan.
func (f *Files) Record() *Record {
	return f.rec
}

// Err returns the error that stopped Scan, if any.
// If Scan stopped because it read every file, Err returns nil.
func (f *Files) Err() error {
	return f.err
}

// ReadAll reads every record under root. It fails if root does not
// exist or if any record cannot be read.
func ReadAll(root string) ([]*Record, error) {
	files := Files{Root: root}
	var recs []*Record
	for files.Scan() {
		recs = append(recs, files.Record())
	}
	if err := files.Err(); err != nil {
		return nil, err
	}
	return recs, nil
}
