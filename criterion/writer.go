// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package criterion

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fxamacker/cbor/v2"
)

// A Writer lays out benchmark results in the directory structure
// Criterion uses, so that they can be read back with Files.
type Writer struct {
	// Root is the data directory, as for Files.Root.
	Root string

	// Seq numbers measurement files. Criterion names them
	// measurement_<timestamp>.cbor; any unique name works.
	Seq int
}

var encMode = func() cbor.EncMode {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

// Write stores the benchmark described by rec. The measurement holds
// rec.Mean and, if rec has one, its confidence interval. It returns
// the path of the metadata file.
func (w *Writer) Write(rec *Record) (string, error) {
	size := uint64(rec.Size)
	meta := &Metadata{
		ID: BenchmarkID{
			GroupID:    &rec.Group,
			FunctionID: &rec.Function,
			Throughput: &Throughput{Bytes: &size},
		},
	}
	if rec.Value != "" {
		meta.ID.ValueStr = &rec.Value
	}
	mean := rec.Mean
	meas := &Measurement{Estimates: Estimates{Mean: Estimate{PointEstimate: &mean}}}
	if rec.HasInterval() {
		lo, hi := rec.Lower, rec.Upper
		meas.Estimates.Mean.ConfidenceInterval = &ConfidenceInterval{LowerBound: &lo, UpperBound: &hi}
	}

	value := rec.Value
	if value == "" {
		value = fmt.Sprint(rec.Size)
	}
	dir := filepath.Join(w.Root, rec.Group, rec.Function, value, "new")
	return w.WriteFiles(dir, meta, meas)
}

// WriteFiles writes meta and meas into dir, filling in
// meta.LatestRecord if it is empty. It returns the path of the
// metadata file.
func (w *Writer) WriteFiles(dir string, meta *Metadata, meas *Measurement) (string, error) {
	if err := os.MkdirAll(dir, 0777); err != nil {
		return "", err
	}
	if meta.LatestRecord == "" {
		w.Seq++
		meta.LatestRecord = fmt.Sprintf("measurement_%d.cbor", w.Seq)
	}
	if err := writeCBOR(filepath.Join(dir, meta.LatestRecord), meas); err != nil {
		return "", err
	}
	path := filepath.Join(dir, MetadataFile)
	if err := writeCBOR(path, meta); err != nil {
		return "", err
	}
	return path, nil
}

func writeCBOR(path string, v interface{}) error {
	data, err := encMode.Marshal(v)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return os.WriteFile(path, data, 0666)
}
