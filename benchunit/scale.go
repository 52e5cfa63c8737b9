// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchunit

import (
	"fmt"
	"math"
	"strconv"
)

// A Scaler represents a scaling factor for a number and
// its scientific representation.
type Scaler struct {
	Prec   int     // Digits after the decimal point
	Factor float64 // Unscaled value of 1 Prefix (e.g., 1 k => 1000)
	Prefix string  // Unit prefix ("k", "M", "Ki", etc)
}

// Format formats val and appends the unit prefix according to the
// given scale. For example, with a Decimal scale, Format(123456789)
// returns "123.5M".
func (s Scaler) Format(val float64) string {
	buf := make([]byte, 0, 20)
	buf = strconv.AppendFloat(buf, val/s.Factor, 'f', s.Prec, 64)
	buf = append(buf, s.Prefix...)
	return string(buf)
}

type factor struct {
	factor float64
	prefix string
}

var (
	siFactors = []factor{
		{1e12, "T"}, {1e9, "G"}, {1e6, "M"}, {1e3, "k"},
		{1, ""}, {1e-3, "m"}, {1e-6, "µ"}, {1e-9, "n"},
	}
	iecFactors = []factor{
		{1 << 40, "Ti"}, {1 << 30, "Gi"}, {1 << 20, "Mi"}, {1 << 10, "Ki"}, {1, ""},
	}
)

// Scale formats val using at least three significant digits,
// appending an SI or binary prefix.
func Scale(val float64, cls Class) string {
	return CommonScale([]float64{val}, cls).Format(val)
}

// CommonScale returns a common Scaler to apply to all values in vals.
// This scale will show at least three significant digits for every
// value.
func CommonScale(vals []float64, cls Class) Scaler {
	// The common scale is determined by the non-zero value
	// closest to zero.
	var min float64
	for _, v := range vals {
		v = math.Abs(v)
		if v != 0 && !math.IsInf(v, 0) && !math.IsNaN(v) && (min == 0 || v < min) {
			min = v
		}
	}
	if min == 0 {
		return Scaler{3, 1, ""}
	}

	var factors []factor
	switch cls {
	default:
		panic(fmt.Sprintf("bad Class %v", cls))
	case Decimal:
		factors = siFactors
	case Binary:
		factors = iecFactors
	}

	// Thresholds are chosen so that rounding to the chosen
	// precision never carries into an extra digit.
	for _, f := range factors {
		switch v := min / f.factor; {
		case v >= 99.995:
			return Scaler{1, f.factor, f.prefix}
		case v >= 9.9995:
			return Scaler{2, f.factor, f.prefix}
		case v >= .99995:
			return Scaler{3, f.factor, f.prefix}
		}
	}

	// Smaller than the smallest factor. Add digits until three are
	// significant.
	f := factors[len(factors)-1]
	prec := 3
	for v := min / f.factor; v < .99995 && prec < 10; v *= 10 {
		prec++
	}
	return Scaler{prec, f.factor, f.prefix}
}

// FormatBytes formats a byte count for an axis label, such as "512 B"
// or "4 KiB". Sizes that are not a whole number of the chosen prefix
// keep one decimal.
func FormatBytes(n int64) string {
	v := float64(n)
	for _, f := range iecFactors {
		if math.Abs(v) >= f.factor {
			s := strconv.FormatFloat(math.Round(v/f.factor*10)/10, 'f', -1, 64)
			return s + " " + f.prefix + "B"
		}
	}
	return strconv.FormatInt(n, 10) + " B"
}

// FormatThroughput formats a rate in bytes per second, such as
// "10.24GB/s".
func FormatThroughput(bytesPerSec float64) string {
	return Scale(bytesPerSec, Decimal) + "B/s"
}
