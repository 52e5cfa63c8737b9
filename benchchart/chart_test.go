// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchchart

import (
	"bytes"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"gonum.org/v1/plot"

	"github.com/autobahn-hash/critplot/benchtab"
	"github.com/autobahn-hash/critplot/criterion"
)

func rec(group, fn string, size int64, mean float64) *criterion.Record {
	return &criterion.Record{Group: group, Function: fn, Size: size, Mean: mean, Lower: math.NaN(), Upper: math.NaN()}
}

func testCharts(t *testing.T) []*Chart {
	t.Helper()
	hi := rec("slice", "highway", 64, 8)
	hi.Lower, hi.Upper = 6.4, 10
	groups := benchtab.Build([]*criterion.Record{
		rec("slice", "highway", 4, 2),
		hi,
		rec("slice", "highway", 1024, 128),
		rec("slice", "autobahn", 4, 1),
		rec("slice", "autobahn", 64, 4),
		rec("slice", "autobahn", 1024, 32),
		rec("str", "autobahn", 16, 1),
	}).Groups()
	var cs []*Chart
	for _, g := range groups {
		c, err := New(g)
		if err != nil {
			t.Fatal(err)
		}
		cs = append(cs, c)
	}
	return cs
}

func TestNew(t *testing.T) {
	cs := testCharts(t)
	if len(cs) != 2 {
		t.Fatalf("got %d charts, want 2", len(cs))
	}
	c := cs[0]
	if c.Title != "Throughput for slice inputs" {
		t.Errorf("Title = %q", c.Title)
	}
	// autobahn peaks at 1024/32 = 32 bytes/ns.
	if c.YMax != 32 {
		t.Errorf("YMax = %v, want 32", c.YMax)
	}
	var labels []string
	for _, l := range c.Lines {
		labels = append(labels, l.Label)
	}
	if diff := cmp.Diff([]string{"autobahn", "highway"}, labels); diff != "" {
		t.Errorf("line labels (-want +got):\n%s", diff)
	}
	hw := c.Lines[1].Points
	if hw[1].X != 64 || hw[1].Y != 8 || hw[1].Lo != 6.4 || hw[1].Hi != 10 {
		t.Errorf("highway point = %+v", hw[1])
	}
	if hw[0].hasInterval() || !hw[1].hasInterval() {
		t.Errorf("hasInterval wrong for %+v", hw[:2])
	}
}

func TestNewErrors(t *testing.T) {
	if _, err := New(&benchtab.Group{Name: "empty"}); err == nil {
		t.Error("New succeeded on an empty group")
	}
	for _, r := range []*criterion.Record{
		rec("g", "f", 0, 1),
		rec("g", "f", -4, 1),
		rec("g", "f", 4, 0),
	} {
		g := benchtab.Build([]*criterion.Record{r}).Groups()[0]
		if _, err := New(g); err == nil {
			t.Errorf("New succeeded for size %d mean %v", r.Size, r.Mean)
		}
	}
}

func TestSpline(t *testing.T) {
	pts := []Point{{X: 4, Y: 1}, {X: 64, Y: 16}, {X: 1024, Y: 32}, {X: 4096, Y: 30}}
	xys := Spline(pts)
	if want := (len(pts)-1)*splineSteps + 1; len(xys) != want {
		t.Fatalf("got %d samples, want %d", len(xys), want)
	}
	// The curve passes through every measured point.
	for i, p := range pts {
		s := xys[i*splineSteps]
		if math.Abs(s.X-p.X) > 1e-9*p.X || math.Abs(s.Y-p.Y) > 1e-9 {
			t.Errorf("sample %d = (%v, %v), want (%v, %v)", i*splineSteps, s.X, s.Y, p.X, p.Y)
		}
	}
	for i := 1; i < len(xys); i++ {
		if xys[i].X < xys[i-1].X {
			t.Fatalf("samples not increasing in x at %d", i)
		}
		if xys[i].Y < 0 {
			t.Fatalf("sample %d below zero", i)
		}
	}

	short := Spline(pts[:2])
	if len(short) != 2 || short[1].X != 64 || short[1].Y != 16 {
		t.Errorf("Spline of two points = %v", short)
	}
}

func TestPlotAxes(t *testing.T) {
	c := testCharts(t)[0]
	p, err := c.Plot()
	if err != nil {
		t.Fatal(err)
	}
	if p.Y.Min != 0 || p.Y.Max != c.YMax {
		t.Errorf("y range = [%v, %v], want [0, %v]", p.Y.Min, p.Y.Max, c.YMax)
	}
	if _, ok := p.X.Scale.(plot.LogScale); !ok {
		t.Errorf("x scale = %T, want plot.LogScale", p.X.Scale)
	}
	if p.X.Min <= 0 || p.X.Min > 4 || p.X.Max < 1024 {
		t.Errorf("x range = [%v, %v] does not cover [4, 1024]", p.X.Min, p.X.Max)
	}
	if p.X.Label.Text != XLabel || p.Y.Label.Text != YLabel {
		t.Errorf("labels = %q, %q", p.X.Label.Text, p.Y.Label.Text)
	}
}

func TestSizeTicks(t *testing.T) {
	var labels []string
	for _, tk := range (sizeTicks{}).Ticks(3, 1100) {
		labels = append(labels, tk.Label)
	}
	want := []string{"4 B", "8 B", "16 B", "32 B", "64 B", "128 B", "256 B", "512 B", "1 KiB"}
	if diff := cmp.Diff(want, labels); diff != "" {
		t.Errorf("ticks (-want +got):\n%s", diff)
	}

	// A single 100-byte size spans [80, 125], which holds no power of two.
	labels = nil
	for _, tk := range (sizeTicks{}).Ticks(80, 125) {
		labels = append(labels, tk.Label)
	}
	if diff := cmp.Diff([]string{"80 B", "100 B", "125 B"}, labels); diff != "" {
		t.Errorf("narrow range ticks (-want +got):\n%s", diff)
	}
}

func TestRenderPNG(t *testing.T) {
	c := testCharts(t)[0]
	c.Intervals = true
	r := ImageRenderer{Format: PNG, Scale: 2}
	var a, b bytes.Buffer
	if err := r.Render(&a, c); err != nil {
		t.Fatal(err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(a.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 1400 || cfg.Height != 1000 {
		t.Errorf("image is %dx%d, want 1400x1000", cfg.Width, cfg.Height)
	}
	if err := r.Render(&b, c); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Error("rendering the same chart twice produced different PNGs")
	}
}

func TestRenderSVG(t *testing.T) {
	var buf bytes.Buffer
	if err := (ImageRenderer{Format: SVG}).Render(&buf, testCharts(t)[1]); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "<svg") {
		t.Errorf("SVG output does not look like SVG:\n%.200s", buf.String())
	}
}

func TestRenderRepeatable(t *testing.T) {
	if testing.Short() {
		t.Skip("sleeps between renders")
	}
	c := testCharts(t)[0]
	c.Intervals = true
	for _, f := range []Format{SVG, PDF} {
		r := f.Renderer(1)
		var a, b bytes.Buffer
		if err := r.Render(&a, c); err != nil {
			t.Fatal(err)
		}
		// Outlive any timestamp with one-second resolution.
		time.Sleep(1100 * time.Millisecond)
		if err := r.Render(&b, c); err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(a.Bytes(), b.Bytes()) {
			t.Errorf("rendering the same chart twice as %s produced different output", f)
		}
	}
}

func TestRenderPDFDate(t *testing.T) {
	var buf bytes.Buffer
	if err := (ImageRenderer{Format: PDF}).Render(&buf, testCharts(t)[1]); err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(buf.Bytes(), []byte("/CreationDate (D:20000101")) {
		t.Error("PDF creation date is not pinned")
	}
}

func TestRenderHTML(t *testing.T) {
	c := testCharts(t)[0]
	var a, b bytes.Buffer
	if err := (HTMLRenderer{}).Render(&a, c); err != nil {
		t.Fatal(err)
	}
	if err := (HTMLRenderer{}).Render(&b, c); err != nil {
		t.Fatal(err)
	}
	if a.String() != b.String() {
		t.Error("rendering the same chart twice produced different HTML")
	}
	out := a.String()
	for _, want := range []string{"chart_slice", "Throughput for slice inputs", "autobahn", "highway"} {
		if !strings.Contains(out, want) {
			t.Errorf("HTML output missing %q", want)
		}
	}

	var page bytes.Buffer
	if err := (HTMLRenderer{}).RenderPage(&page, "all", testCharts(t)); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(page.String(), "chart_slice_0") || !strings.Contains(page.String(), "chart_str_1") {
		t.Error("page output missing chart IDs")
	}
}

func TestFileName(t *testing.T) {
	for group, want := range map[string]string{
		"slice":     "slice.png",
		"str/utf-8": "str_utf-8.png",
		"a b":       "a_b.png",
		"":          "_.png",
		"..":        "_...png",
	} {
		if got := FileName(group, "png"); got != want {
			t.Errorf("FileName(%q) = %q, want %q", group, got, want)
		}
	}
}

func TestWriteAll(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "assets")
	cs := testCharts(t)
	r := ImageRenderer{Format: PNG, Scale: 1}
	paths, err := WriteAll(dir, cs, r, "png")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join(dir, "slice.png"), filepath.Join(dir, "str.png")}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Fatalf("paths (-want +got):\n%s", diff)
	}
	first, err := os.ReadFile(paths[0])
	if err != nil {
		t.Fatal(err)
	}

	// A second run overwrites with identical bytes.
	if _, err := WriteAll(dir, cs, r, "png"); err != nil {
		t.Fatal(err)
	}
	second, err := os.ReadFile(paths[0])
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, second) {
		t.Error("second run changed slice.png")
	}

	clash := []*Chart{cs[0], {Name: "slice", Lines: cs[0].Lines, YMax: 1}}
	if _, err := WriteAll(dir, clash, r, "png"); err == nil {
		t.Error("WriteAll accepted two charts with the same file name")
	}
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"png", "svg", "pdf", "html"} {
		f, err := ParseFormat(s)
		if err != nil || string(f) != s {
			t.Errorf("ParseFormat(%q) = %q, %v", s, f, err)
		}
	}
	if _, err := ParseFormat("gif"); err == nil {
		t.Error("ParseFormat(gif) succeeded")
	}
	if _, ok := HTML.Renderer(2).(HTMLRenderer); !ok {
		t.Error("HTML.Renderer is not an HTMLRenderer")
	}
}
