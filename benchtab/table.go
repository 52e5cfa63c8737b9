// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package benchtab aggregates benchmark records into a table, derives
// throughput, and partitions the table into per-group series for
// charting.
//
// The table is a github.com/aclements/go-gg table. Build loads the raw
// records; Derive adds throughput columns; Groups splits the table by
// benchmark group and sorts each group by input size.
package benchtab

import (
	"io"
	"sort"

	"github.com/aclements/go-gg/table"
	"github.com/aclements/go-moremath/stats"

	"github.com/autobahn-hash/critplot/benchunit"
	"github.com/autobahn-hash/critplot/criterion"
)

// Column names.
const (
	ColGroup    = "group"
	ColFunction = "function"
	ColValue    = "value"
	ColSize     = "size"
	ColMean     = "mean"
	ColLower    = "lower"
	ColUpper    = "upper"
	ColPath     = "path"

	// Added by Derive.
	ColThroughput   = "throughput"    // size / mean, bytes per time unit
	ColThroughputLo = "throughput lo" // size / upper
	ColThroughputHi = "throughput hi" // size / lower
	ColGBps         = "GB/s"
)

// A Table holds every benchmark record of a run.
type Table struct {
	// Unit is the time unit of the mean and its bounds.
	Unit benchunit.TimeUnit

	g       table.Grouping
	derived bool
}

// Build collects recs into a Table. The mean durations are taken to
// be in nanoseconds, the unit Criterion records.
func Build(recs []*criterion.Record) *Table {
	n := len(recs)
	var (
		groups    = make([]string, n)
		functions = make([]string, n)
		values    = make([]string, n)
		sizes     = make([]int64, n)
		means     = make([]float64, n)
		lowers    = make([]float64, n)
		uppers    = make([]float64, n)
		paths     = make([]string, n)
	)
	for i, rec := range recs {
		groups[i] = rec.Group
		functions[i] = rec.Function
		values[i] = rec.Value
		sizes[i] = rec.Size
		means[i] = rec.Mean
		lowers[i] = rec.Lower
		uppers[i] = rec.Upper
		paths[i] = rec.Path
	}
	tab := new(table.Builder).
		Add(ColGroup, groups).
		Add(ColFunction, functions).
		Add(ColValue, values).
		Add(ColSize, sizes).
		Add(ColMean, means).
		Add(ColLower, lowers).
		Add(ColUpper, uppers).
		Add(ColPath, paths)
	return &Table{Unit: benchunit.Nanosecond, g: tab.Done()}
}

// Len returns the number of records in t.
func (t *Table) Len() int {
	n := 0
	for _, gid := range t.g.Tables() {
		n += t.g.Table(gid).Len()
	}
	return n
}

// Derive adds the throughput columns to t. The raw mean column is
// left untouched. Derive is a no-op if t is already derived.
func (t *Table) Derive() *Table {
	if t.derived {
		return t
	}
	g := table.MapCols(t.g, func(size []int64, mean, lower, upper, tput, lo, hi []float64) {
		for i := range size {
			s := float64(size[i])
			tput[i] = s / mean[i]
			lo[i] = s / upper[i]
			hi[i] = s / lower[i]
		}
	}, ColSize, ColMean, ColLower, ColUpper)(ColThroughput, ColThroughputLo, ColThroughputHi)

	unit := t.Unit
	g = table.MapCols(g, func(tput, gbps []float64) {
		for i, x := range tput {
			gbps[i] = benchunit.GBPerSecond(x, unit)
		}
	}, ColThroughput)(ColGBps)

	t.g, t.derived = g, true
	return t
}

// Fprint prints the derived table to w, one section per group, in
// ascending size order within each group.
func (t *Table) Fprint(w io.Writer) error {
	t.Derive()
	g := table.SortBy(table.GroupBy(t.g, ColGroup), ColSize)
	return table.Fprint(w, g, "%s", "%s", "%s", "%d", "%.4g", "%.4g", "%.4g", "%s", "%.4g", "%.4g", "%.4g", "%.4g")
}

// A Row is one record of a Group.
type Row struct {
	Function string
	Value    string
	Size     int64

	// Mean is the raw mean duration; Lower and Upper bound it.
	Mean, Lower, Upper float64

	// Throughput is Size / Mean, in bytes per time unit.
	// ThroughputLo and ThroughputHi are the throughput at the
	// upper and lower bound of the mean, or NaN.
	Throughput, ThroughputLo, ThroughputHi float64
}

// A Group is every record of one benchmark group.
type Group struct {
	Name string

	// Rows is sorted by ascending Size. Rows with equal sizes keep
	// the order they were read in.
	Rows []Row

	// MaxThroughput is the largest Throughput in Rows.
	MaxThroughput float64

	// Unit is the time unit of the durations in Rows.
	Unit benchunit.TimeUnit
}

// Groups partitions t by benchmark group. Every distinct group
// appears exactly once, and the result is sorted by group name.
func (t *Table) Groups() []*Group {
	t.Derive()
	g := table.SortBy(table.GroupBy(t.g, ColGroup), ColSize)

	var out []*Group
	for _, gid := range g.Tables() {
		tab := g.Table(gid)
		grp := &Group{Name: gid.Label().(string), Unit: t.Unit}

		functions := tab.MustColumn(ColFunction).([]string)
		values := tab.MustColumn(ColValue).([]string)
		sizes := tab.MustColumn(ColSize).([]int64)
		means := tab.MustColumn(ColMean).([]float64)
		lowers := tab.MustColumn(ColLower).([]float64)
		uppers := tab.MustColumn(ColUpper).([]float64)
		tputs := tab.MustColumn(ColThroughput).([]float64)
		los := tab.MustColumn(ColThroughputLo).([]float64)
		his := tab.MustColumn(ColThroughputHi).([]float64)
		for i := range sizes {
			grp.Rows = append(grp.Rows, Row{
				Function:     functions[i],
				Value:        values[i],
				Size:         sizes[i],
				Mean:         means[i],
				Lower:        lowers[i],
				Upper:        uppers[i],
				Throughput:   tputs[i],
				ThroughputLo: los[i],
				ThroughputHi: his[i],
			})
		}
		_, grp.MaxThroughput = stats.Bounds(tputs)
		out = append(out, grp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// GBPerSecond returns r's throughput in decimal gigabytes per second.
func (r Row) GBPerSecond(u benchunit.TimeUnit) float64 {
	return benchunit.GBPerSecond(r.Throughput, u)
}

// MaxGBPerSecond returns the group's peak throughput in GB/s.
func (g *Group) MaxGBPerSecond() float64 {
	return benchunit.GBPerSecond(g.MaxThroughput, g.Unit)
}

// Functions returns the distinct function names in g, sorted.
func (g *Group) Functions() []string {
	seen := make(map[string]bool)
	var fns []string
	for _, r := range g.Rows {
		if !seen[r.Function] {
			seen[r.Function] = true
			fns = append(fns, r.Function)
		}
	}
	sort.Strings(fns)
	return fns
}

// A Series is the rows of one function within a group, in ascending
// size order.
type Series struct {
	Function string
	Rows     []Row
}

// Series splits g into one Series per function, in function name
// order.
func (g *Group) Series() []Series {
	byFn := make(map[string][]Row)
	for _, r := range g.Rows {
		byFn[r.Function] = append(byFn[r.Function], r)
	}
	var out []Series
	for _, fn := range g.Functions() {
		out = append(out, Series{fn, byFn[fn]})
	}
	return out
}
