// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchtab

import (
	"io"

	"github.com/aclements/go-gg/ggstat"
	"github.com/aclements/go-gg/table"

	"github.com/autobahn-hash/critplot/benchunit"
)

// A Summary condenses the rows of one function within a group.
type Summary struct {
	Group    string
	Function string
	Results  int     // number of results
	Sizes    int     // number of distinct input sizes
	Peak     float64 // GB/s
	GeoMean  float64 // GB/s
}

// Summarize returns one Summary per (group, function) pair, ordered
// by group and then function.
func (t *Table) Summarize() []Summary {
	if t.Len() == 0 {
		return nil
	}
	t.Derive()
	g := table.SortBy(t.g, ColFunction)
	g = table.SortBy(g, ColGroup)
	agg := ggstat.Agg(ColGroup, ColFunction)(
		ggstat.AggCount("results"),
		ggstat.AggMax(ColGBps),
		ggstat.AggGeoMean(ColGBps),
	).F(g)

	tab := table.Flatten(agg)
	groups := tab.MustColumn(ColGroup).([]string)
	fns := tab.MustColumn(ColFunction).([]string)
	counts := tab.MustColumn("results").([]int)
	peaks := tab.MustColumn("max " + ColGBps).([]float64)
	geos := tab.MustColumn("geomean " + ColGBps).([]float64)

	sizes := t.distinctSizes()
	out := make([]Summary, len(groups))
	for i := range out {
		key := [2]string{groups[i], fns[i]}
		out[i] = Summary{groups[i], fns[i], counts[i], len(sizes[key]), peaks[i], geos[i]}
	}
	return out
}

// distinctSizes returns the set of input sizes of each (group,
// function) pair.
func (t *Table) distinctSizes() map[[2]string]map[int64]bool {
	flat := table.Flatten(t.g)
	groups := flat.MustColumn(ColGroup).([]string)
	fns := flat.MustColumn(ColFunction).([]string)
	sizes := flat.MustColumn(ColSize).([]int64)
	m := make(map[[2]string]map[int64]bool)
	for i, size := range sizes {
		key := [2]string{groups[i], fns[i]}
		if m[key] == nil {
			m[key] = make(map[int64]bool)
		}
		m[key][size] = true
	}
	return m
}

// FprintSummary prints sums to w as an aligned text table. Throughputs
// share one SI prefix so the columns line up.
func FprintSummary(w io.Writer, sums []Summary) error {
	var (
		groups = make([]string, len(sums))
		fns    = make([]string, len(sums))
		counts = make([]int, len(sums))
		peaks  = make([]string, len(sums))
		geos   = make([]string, len(sums))
		rates  []float64
	)
	for _, s := range sums {
		rates = append(rates, s.Peak*benchunit.GB, s.GeoMean*benchunit.GB)
	}
	sc := benchunit.CommonScale(rates, benchunit.Decimal)
	for i, s := range sums {
		groups[i], fns[i], counts[i] = s.Group, s.Function, s.Sizes
		peaks[i] = sc.Format(s.Peak*benchunit.GB) + "B/s"
		geos[i] = sc.Format(s.GeoMean*benchunit.GB) + "B/s"
	}
	tab := new(table.Builder).
		Add("group", groups).
		Add("function", fns).
		Add("sizes", counts).
		Add("peak", peaks).
		Add("geomean", geos).
		Done()
	return table.Fprint(w, tab, "%s", "%s", "%d", "%s", "%s")
}
