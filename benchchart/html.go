// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchchart

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// An HTMLRenderer writes a chart as a standalone interactive HTML
// page. The output depends only on the chart, so rendering the same
// chart twice yields identical bytes.
type HTMLRenderer struct {
	// AssetsHost overrides the URL the ECharts scripts are loaded
	// from.
	AssetsHost string
}

func (r HTMLRenderer) Render(w io.Writer, c *Chart) error {
	return r.echart(c, chartID(c.Name)).Render(w)
}

// RenderPage writes every chart in cs to a single HTML page.
func (r HTMLRenderer) RenderPage(w io.Writer, title string, cs []*Chart) error {
	page := components.NewPage()
	page.SetPageTitle(title)
	if r.AssetsHost != "" {
		page.SetAssetsHost(r.AssetsHost)
	}
	for i, c := range cs {
		page.AddCharts(r.echart(c, fmt.Sprintf("%s_%d", chartID(c.Name), i)))
	}
	return page.Render(w)
}

// chartID derives a fixed element ID from a group name. ECharts also
// uses the ID in JavaScript identifiers, so it is restricted to
// letters, digits and underscores.
func chartID(name string) string {
	return "chart_" + strings.Map(func(r rune) rune {
		if 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z' || '0' <= r && r <= '9' {
			return r
		}
		return '_'
	}, name)
}

func (r HTMLRenderer) echart(c *Chart, id string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle:  c.Title,
			ChartID:    id,
			AssetsHost: r.AssetsHost,
			Width:      "900px",
			Height:     "600px",
		}),
		charts.WithTitleOpts(opts.Title{Title: c.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithXAxisOpts(opts.XAxis{Name: XLabel, Type: "log"}),
		charts.WithYAxisOpts(opts.YAxis{Name: YLabel, Type: "value", Min: 0, Max: c.YMax}),
	)
	for _, l := range c.Lines {
		data := make([]opts.LineData, len(l.Points))
		for i, p := range l.Points {
			data[i] = opts.LineData{Value: []interface{}{p.X, p.Y}}
		}
		line.AddSeries(l.Label, data,
			charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true), ShowSymbol: opts.Bool(true)}),
		)
	}
	return line
}
