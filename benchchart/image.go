// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchchart

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"time"

	"github.com/go-pdf/fpdf"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/brewer"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgpdf"
	"gonum.org/v1/plot/vg/vgsvg"

	"github.com/autobahn-hash/critplot/benchunit"
)

// pdfDate is stamped into every PDF as its creation and modification
// date, so rendering the same chart twice yields the same bytes.
var pdfDate = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

func init() {
	fpdf.SetDefaultCreationDate(pdfDate)
	fpdf.SetDefaultModificationDate(pdfDate)
	fpdf.SetDefaultCatalogSort(true)
}

// A Format is an output format for rendered charts.
type Format string

const (
	PNG  Format = "png"
	SVG  Format = "svg"
	PDF  Format = "pdf"
	HTML Format = "html"
)

// ParseFormat parses the name of an output format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case PNG, SVG, PDF, HTML:
		return f, nil
	}
	return "", fmt.Errorf("unknown chart format %q (want png, svg, pdf or html)", s)
}

// Renderer returns the Renderer for f. Image formats are rendered at
// the given scale.
func (f Format) Renderer(scale float64) Renderer {
	if f == HTML {
		return HTMLRenderer{}
	}
	return ImageRenderer{Format: f, Scale: scale}
}

// Default chart size, 700x500 pixels at scale 1.
const (
	baseDPI       = 96
	defaultWidth  = 700 * vg.Inch / baseDPI
	defaultHeight = 500 * vg.Inch / baseDPI
)

// An ImageRenderer draws charts as static images.
type ImageRenderer struct {
	Format Format // PNG, SVG or PDF

	// Scale multiplies the pixel density of PNG output. A scale of
	// 2 yields a 1400x1000 pixel image. Zero means 1.
	Scale float64
}

func (r ImageRenderer) Render(w io.Writer, c *Chart) error {
	p, err := c.Plot()
	if err != nil {
		return err
	}
	var out io.WriterTo
	switch r.Format {
	case PNG, "":
		scale := r.Scale
		if scale <= 0 {
			scale = 1
		}
		cv := vgimg.NewWith(
			vgimg.UseWH(defaultWidth, defaultHeight),
			vgimg.UseDPI(int(math.Round(baseDPI*scale))),
			vgimg.UseBackgroundColor(color.White),
		)
		p.Draw(draw.New(cv))
		out = vgimg.PngCanvas{Canvas: cv}
	case SVG:
		cv := vgsvg.New(defaultWidth, defaultHeight)
		p.Draw(draw.New(cv))
		out = cv
	case PDF:
		cv := vgpdf.New(defaultWidth, defaultHeight)
		p.Draw(draw.New(cv))
		out = cv
	default:
		return fmt.Errorf("cannot render %s as an image", r.Format)
	}
	_, err = out.WriteTo(w)
	return err
}

// Plot builds the gonum plot of c.
func (c *Chart) Plot() (*plot.Plot, error) {
	if len(c.Lines) == 0 {
		return nil, fmt.Errorf("chart %q has no lines", c.Name)
	}
	xmin, xmax := c.xRange()
	if !(xmin > 0) {
		return nil, fmt.Errorf("chart %q: input sizes must be positive for a log axis", c.Name)
	}

	p := plot.New()
	p.Title.Text = c.Title
	p.X.Label.Text = XLabel
	p.Y.Label.Text = YLabel
	p.X.Scale = plot.LogScale{}
	p.X.Tick.Marker = sizeTicks{}
	p.Legend.Top = true
	p.Legend.Left = true
	p.Add(plotter.NewGrid())

	n := len(c.Lines)
	if n < 3 {
		n = 3
	} else if n > 12 {
		n = 12
	}
	pal, err := brewer.GetPalette(brewer.TypeQualitative, "Paired", n)
	if err != nil {
		return nil, err
	}
	colors := pal.Colors()

	for i, l := range c.Lines {
		col := colors[i%len(colors)]

		line, err := plotter.NewLine(Spline(l.Points))
		if err != nil {
			return nil, fmt.Errorf("chart %q: %s: %w", c.Name, l.Label, err)
		}
		line.Color = col
		line.Width = vg.Points(2)

		pts := make(plotter.XYs, len(l.Points))
		for j, pt := range l.Points {
			pts[j].X, pts[j].Y = pt.X, pt.Y
		}
		scatter, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, fmt.Errorf("chart %q: %s: %w", c.Name, l.Label, err)
		}
		scatter.GlyphStyle.Color = col
		scatter.GlyphStyle.Shape = draw.CircleGlyph{}
		scatter.GlyphStyle.Radius = vg.Points(2.5)

		p.Add(line, scatter)
		p.Legend.Add(l.Label, line, scatter)

		if c.Intervals {
			if bars, err := errorBars(l.Points); err != nil {
				return nil, fmt.Errorf("chart %q: %s: %w", c.Name, l.Label, err)
			} else if bars != nil {
				bars.Color = col
				p.Add(bars)
			}
		}
	}

	// Axis ranges are fixed after Add, which widens them to the data.
	p.X.Min, p.X.Max = xmin/1.25, xmax*1.25
	p.Y.Min, p.Y.Max = 0, c.YMax
	return p, nil
}

type intervalPoints struct {
	plotter.XYs
	plotter.YErrors
}

// errorBars returns error bars for the points that carry an interval,
// or nil if none do.
func errorBars(pts []Point) (*plotter.YErrorBars, error) {
	var ip intervalPoints
	for _, pt := range pts {
		if !pt.hasInterval() {
			continue
		}
		ip.XYs = append(ip.XYs, plotter.XY{X: pt.X, Y: pt.Y})
		ip.YErrors = append(ip.YErrors, struct{ Low, High float64 }{
			Low:  math.Max(pt.Y-pt.Lo, 0),
			High: math.Max(pt.Hi-pt.Y, 0),
		})
	}
	if len(ip.XYs) == 0 {
		return nil, nil
	}
	return plotter.NewYErrorBars(ip)
}

// sizeTicks marks powers of two on a log axis of byte sizes. Ranges
// too narrow to hold one are labelled at their ends and middle.
type sizeTicks struct{}

func (sizeTicks) Ticks(min, max float64) []plot.Tick {
	if !(min > 0) || !(max >= min) {
		return nil
	}
	lo := int(math.Floor(math.Log2(min)))
	hi := int(math.Ceil(math.Log2(max)))
	// Label every step-th power to keep labels from overlapping.
	step := 1
	for (hi-lo)/step > 10 {
		step++
	}
	var ticks []plot.Tick
	for e := lo; e <= hi; e++ {
		v := math.Exp2(float64(e))
		if v < min || v > max {
			continue
		}
		t := plot.Tick{Value: v}
		if e%step == 0 {
			t.Label = benchunit.FormatBytes(int64(v))
		}
		ticks = append(ticks, t)
	}
	for _, t := range ticks {
		if t.Label != "" {
			return ticks
		}
	}
	// No power of two in range: label the ends and the geometric middle.
	ticks = ticks[:0]
	for _, v := range []float64{min, math.Sqrt(min * max), max} {
		if len(ticks) > 0 && v <= ticks[len(ticks)-1].Value {
			continue
		}
		ticks = append(ticks, plot.Tick{Value: v, Label: benchunit.FormatBytes(int64(math.Round(v)))})
	}
	return ticks
}
