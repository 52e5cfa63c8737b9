// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchtab

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"
)

var csvHeader = []string{"group", "function", "value", "size", "mean", "lower", "upper", "throughput", "gbps"}

// WriteCSV writes one line per row of groups to w. Durations are in
// each group's time unit and throughput in bytes per that unit; the
// gbps column is always decimal gigabytes per second. Missing interval
// bounds are written as empty fields.
func WriteCSV(w io.Writer, groups []*Group) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, g := range groups {
		for _, r := range g.Rows {
			err := cw.Write([]string{
				g.Name,
				r.Function,
				r.Value,
				strconv.FormatInt(r.Size, 10),
				formatFloat(r.Mean),
				formatFloat(r.Lower),
				formatFloat(r.Upper),
				formatFloat(r.Throughput),
				formatFloat(r.GBPerSecond(g.Unit)),
			})
			if err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(x float64) string {
	if math.IsNaN(x) {
		return ""
	}
	return strconv.FormatFloat(x, 'g', -1, 64)
}
