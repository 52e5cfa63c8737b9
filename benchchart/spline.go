// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchchart

import (
	"math"

	"github.com/aclements/go-moremath/vec"
	"gonum.org/v1/plot/plotter"
)

// splineSteps is the number of samples per segment between two
// measured points.
const splineSteps = 16

// Spline returns a smooth curve through pts for plotting on a
// logarithmic x axis. The curve is a uniform Catmull-Rom spline
// computed in log(x) space, so it passes through every point. Lines
// with fewer than three points are returned unsmoothed. Samples that
// dip below zero are clamped to zero.
func Spline(pts []Point) plotter.XYs {
	if len(pts) < 3 {
		xys := make(plotter.XYs, len(pts))
		for i, p := range pts {
			xys[i].X, xys[i].Y = p.X, p.Y
		}
		return xys
	}

	at := func(i int) (u, y float64) {
		if i < 0 {
			i = 0
		} else if i >= len(pts) {
			i = len(pts) - 1
		}
		return math.Log(pts[i].X), pts[i].Y
	}

	ts := vec.Linspace(0, 1, splineSteps+1)
	xys := make(plotter.XYs, 0, (len(pts)-1)*splineSteps+1)
	for i := 0; i < len(pts)-1; i++ {
		u0, y0 := at(i - 1)
		u1, y1 := at(i)
		u2, y2 := at(i + 1)
		u3, y3 := at(i + 2)
		samples := ts[:splineSteps]
		if i == len(pts)-2 {
			samples = ts
		}
		for _, t := range samples {
			u := catmullRom(u0, u1, u2, u3, t)
			y := catmullRom(y0, y1, y2, y3, t)
			xys = append(xys, plotter.XY{X: math.Exp(u), Y: math.Max(y, 0)})
		}
	}
	// Pin the ends to the measured values.
	xys[0].X, xys[0].Y = pts[0].X, pts[0].Y
	last := pts[len(pts)-1]
	xys[len(xys)-1].X, xys[len(xys)-1].Y = last.X, last.Y
	return xys
}

func catmullRom(p0, p1, p2, p3, t float64) float64 {
	t2 := t * t
	t3 := t2 * t
	return 0.5 * (2*p1 +
		(-p0+p2)*t +
		(2*p0-5*p1+4*p2-p3)*t2 +
		(-p0+3*p1-3*p2+p3)*t3)
}
