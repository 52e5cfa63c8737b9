// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package criterion reads the result files that the Criterion
// benchmarking harness leaves on disk.
//
// Criterion stores one directory per benchmark under
// target/criterion/data. Each directory holds a benchmark.cbor
// metadata file that identifies the benchmark and names the most
// recent measurement file in the same directory. Both files are CBOR
// encoded maps.
//
// This package decodes those files into Records. It does not repair
// or skip malformed files: any missing field or decoding failure is
// reported as an error and callers are expected to stop.
package criterion

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/fxamacker/cbor/v2"
)

// MetadataFile is the name of the per-benchmark metadata file.
const MetadataFile = "benchmark.cbor"

// Metadata is the decoded contents of a benchmark.cbor file.
type Metadata struct {
	ID           BenchmarkID `cbor:"id"`
	LatestRecord string      `cbor:"latest_record"`
}

// BenchmarkID identifies a single benchmark within a group.
type BenchmarkID struct {
	GroupID    *string     `cbor:"group_id"`
	FunctionID *string     `cbor:"function_id"`
	ValueStr   *string     `cbor:"value_str"`
	Throughput *Throughput `cbor:"throughput"`
}

// Throughput is the amount of work a single benchmark iteration
// processes. Exactly one field is set.
type Throughput struct {
	Bytes        *uint64 `cbor:"Bytes,omitempty"`
	BytesDecimal *uint64 `cbor:"BytesDecimal,omitempty"`
	Elements     *uint64 `cbor:"Elements,omitempty"`
}

// Measurement is the decoded contents of a measurement file.
// Only the fields this package consumes are decoded.
type Measurement struct {
	Iterations []float64 `cbor:"iterations,omitempty"`
	Values     []float64 `cbor:"values,omitempty"`
	Estimates  Estimates `cbor:"estimates"`
}

// Estimates holds the statistics Criterion computed over a
// measurement. Durations are in nanoseconds.
type Estimates struct {
	Mean   Estimate  `cbor:"mean"`
	Median *Estimate `cbor:"median,omitempty"`
	StdDev *Estimate `cbor:"std_dev,omitempty"`
}

// An Estimate is a point estimate and its bootstrap confidence
// interval.
type Estimate struct {
	PointEstimate      *float64            `cbor:"point_estimate"`
	StandardError      *float64            `cbor:"standard_error,omitempty"`
	ConfidenceInterval *ConfidenceInterval `cbor:"confidence_interval,omitempty"`
}

// ConfidenceInterval bounds an Estimate.
type ConfidenceInterval struct {
	ConfidenceLevel *float64 `cbor:"confidence_level,omitempty"`
	LowerBound      *float64 `cbor:"lower_bound"`
	UpperBound      *float64 `cbor:"upper_bound"`
}

// A Record is one benchmark's identity and its latest mean time.
//
// Mean is the raw mean duration as recorded by the harness. Records
// never carry derived values; throughput is computed by callers.
type Record struct {
	Group    string // group_id
	Function string // function_id
	Value    string // value_str, may be empty
	Size     int64  // bytes processed per iteration

	// Mean is the point estimate of the mean iteration time, in
	// nanoseconds.
	Mean float64

	// Lower and Upper bound the confidence interval on Mean. They
	// are NaN if the measurement file has no interval.
	Lower, Upper float64

	// Path is the metadata file this record was read from.
	Path string
}

// HasInterval reports whether r carries a confidence interval.
func (r *Record) HasInterval() bool {
	return !math.IsNaN(r.Lower) && !math.IsNaN(r.Upper)
}

// A FieldError reports a required field missing from a file.
type FieldError struct {
	Path  string // file name
	Field string // dotted path of the field, e.g. "id.group_id"
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: missing field %q", e.Path, e.Field)
}

// ReadMetadata reads and decodes a benchmark.cbor file.
func ReadMetadata(path string) (*Metadata, error) {
	m := new(Metadata)
	if err := decodeFile(path, m); err != nil {
		return nil, err
	}
	return m, nil
}

// ReadMeasurement reads and decodes a measurement file.
func ReadMeasurement(path string) (*Measurement, error) {
	m := new(Measurement)
	if err := decodeFile(path, m); err != nil {
		return nil, err
	}
	return m, nil
}

func decodeFile(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := cbor.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// Extract reads the metadata file at path and the measurement file it
// refers to, and returns the combined Record.
func Extract(path string) (*Record, error) {
	meta, err := ReadMetadata(path)
	if err != nil {
		return nil, err
	}
	missing := func(field string) error {
		return &FieldError{path, field}
	}

	id := meta.ID
	if id.GroupID == nil {
		return nil, missing("id.group_id")
	}
	if id.FunctionID == nil {
		return nil, missing("id.function_id")
	}
	if id.Throughput == nil || id.Throughput.isZero() {
		return nil, missing("id.throughput.Bytes")
	}
	size, err := id.Throughput.bytes()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if meta.LatestRecord == "" {
		return nil, missing("latest_record")
	}

	mpath := meta.LatestRecord
	if !filepath.IsAbs(mpath) {
		mpath = filepath.Join(filepath.Dir(path), mpath)
	}
	meas, err := ReadMeasurement(mpath)
	if err != nil {
		return nil, err
	}
	mean := meas.Estimates.Mean
	if mean.PointEstimate == nil {
		return nil, &FieldError{mpath, "estimates.mean.point_estimate"}
	}

	rec := &Record{
		Group:    *id.GroupID,
		Function: *id.FunctionID,
		Size:     size,
		Mean:     *mean.PointEstimate,
		Lower:    math.NaN(),
		Upper:    math.NaN(),
		Path:     path,
	}
	if id.ValueStr != nil {
		rec.Value = *id.ValueStr
	}
	if ci := mean.ConfidenceInterval; ci != nil && ci.LowerBound != nil && ci.UpperBound != nil {
		rec.Lower, rec.Upper = *ci.LowerBound, *ci.UpperBound
	}
	return rec, nil
}

func (t *Throughput) isZero() bool {
	return t.Bytes == nil && t.BytesDecimal == nil && t.Elements == nil
}

// bytes returns the number of bytes processed per iteration.
func (t *Throughput) bytes() (int64, error) {
	var n uint64
	switch {
	case t.Bytes != nil:
		n = *t.Bytes
	case t.BytesDecimal != nil:
		n = *t.BytesDecimal
	default:
		return 0, fmt.Errorf("throughput is measured in elements, not bytes")
	}
	if n > math.MaxInt64 {
		return 0, fmt.Errorf("throughput %d bytes out of range", n)
	}
	return int64(n), nil
}
