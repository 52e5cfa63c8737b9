// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package benchchart turns benchmark groups into throughput charts and
// renders them as images or interactive HTML pages.
//
// Every chart plots throughput in decimal gigabytes per second against
// input size on a logarithmic axis, with one smoothed line per
// benchmarked function. The y axis always starts at zero and ends at
// the group's peak throughput.
package benchchart

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/autobahn-hash/critplot/benchtab"
	"github.com/autobahn-hash/critplot/benchunit"
)

// Axis labels shared by every chart.
const (
	XLabel = "Input Size (bytes)"
	YLabel = "Throughput (GB/s)"
)

// A Point is one measurement on a chart.
type Point struct {
	X float64 // input size in bytes
	Y float64 // throughput in GB/s

	// Lo and Hi bound Y, or are NaN if the measurement has no
	// confidence interval.
	Lo, Hi float64
}

// A Line is the measurements of one function, in ascending X order.
type Line struct {
	Label  string
	Points []Point
}

// A Chart is a throughput chart for one benchmark group.
type Chart struct {
	Name  string // benchmark group
	Title string
	Lines []Line

	// YMax is the upper end of the y axis, the group's peak
	// throughput in GB/s.
	YMax float64

	// Intervals enables error bars on points that carry a
	// confidence interval.
	Intervals bool
}

// A Renderer writes a chart in some output format.
type Renderer interface {
	Render(w io.Writer, c *Chart) error
}

// New builds the chart for group g. It returns an error if g has no
// rows, or if any row has a non-positive size or a throughput that
// is not a positive finite number.
func New(g *benchtab.Group) (*Chart, error) {
	if len(g.Rows) == 0 {
		return nil, fmt.Errorf("group %q: no results to chart", g.Name)
	}
	c := &Chart{
		Name:  g.Name,
		Title: fmt.Sprintf("Throughput for %s inputs", g.Name),
		YMax:  g.MaxGBPerSecond(),
	}
	for _, s := range g.Series() {
		l := Line{Label: s.Function}
		for _, r := range s.Rows {
			if r.Size <= 0 {
				return nil, fmt.Errorf("group %q: function %q: input size %d is not positive", g.Name, s.Function, r.Size)
			}
			y := r.GBPerSecond(g.Unit)
			if !(y > 0) || math.IsInf(y, 0) {
				return nil, fmt.Errorf("group %q: function %q: size %d: bad throughput %v from mean %v", g.Name, s.Function, r.Size, y, r.Mean)
			}
			l.Points = append(l.Points, Point{
				X:  float64(r.Size),
				Y:  y,
				Lo: toGBps(r.ThroughputLo, g),
				Hi: toGBps(r.ThroughputHi, g),
			})
		}
		c.Lines = append(c.Lines, l)
	}
	return c, nil
}

func toGBps(x float64, g *benchtab.Group) float64 {
	if math.IsNaN(x) {
		return x
	}
	return benchunit.GBPerSecond(x, g.Unit)
}

// hasInterval reports whether p has usable error bounds.
func (p Point) hasInterval() bool {
	return !math.IsNaN(p.Lo) && !math.IsNaN(p.Hi) && !math.IsInf(p.Lo, 0) && !math.IsInf(p.Hi, 0)
}

// xRange returns the smallest and largest X across all lines.
func (c *Chart) xRange() (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, l := range c.Lines {
		for _, p := range l.Points {
			lo = math.Min(lo, p.X)
			hi = math.Max(hi, p.X)
		}
	}
	return
}

// FileName returns the file name for a chart of group with the given
// extension. Characters that are unsafe in file names are replaced
// with underscores.
func FileName(group, ext string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case 'a' <= r && r <= 'z', 'A' <= r && r <= 'Z', '0' <= r && r <= '9':
			return r
		case r == '-', r == '_', r == '.':
			return r
		}
		return '_'
	}, group)
	if name == "" || name == "." || name == ".." {
		name = "_" + name
	}
	return name + "." + ext
}
