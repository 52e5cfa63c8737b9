// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchunit

import (
	"math"
	"testing"
)

func TestScale(t *testing.T) {
	for _, test := range []struct {
		val  float64
		cls  Class
		want string
	}{
		{0, Decimal, "0.000"},
		{1, Decimal, "1.000"},
		{-1, Decimal, "-1.000"},
		{123456789, Decimal, "123.5M"},
		{10.24e9, Decimal, "10.24G"},
		{0.5, Decimal, "500.0m"},
		{1024, Binary, "1.000Ki"},
		{1536, Binary, "1.500Ki"},
		{3 << 20, Binary, "3.000Mi"},
		{100, Binary, "100.0"},
	} {
		if got := Scale(test.val, test.cls); got != test.want {
			t.Errorf("Scale(%v, %v) = %s, want %s", test.val, test.cls, got, test.want)
		}
	}
}

func TestCommonScale(t *testing.T) {
	// The smallest non-zero value picks the scale.
	s := CommonScale([]float64{0, 2e9, 35e6, math.Inf(1)}, Decimal)
	if s.Prefix != "M" || s.Prec != 2 {
		t.Errorf("CommonScale = %+v, want M prefix with 2 digits", s)
	}
	if got := s.Format(2e9); got != "2000.00M" {
		t.Errorf("Format(2e9) = %s", got)
	}
}

func TestFormatBytes(t *testing.T) {
	for _, test := range []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{4, "4 B"},
		{1000, "1000 B"},
		{1024, "1 KiB"},
		{1536, "1.5 KiB"},
		{65536, "64 KiB"},
		{1 << 20, "1 MiB"},
		{3 << 30, "3 GiB"},
	} {
		if got := FormatBytes(test.n); got != test.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", test.n, got, test.want)
		}
	}
}

func TestFormatThroughput(t *testing.T) {
	if got, want := FormatThroughput(10.24e9), "10.24GB/s"; got != want {
		t.Errorf("FormatThroughput = %q, want %q", got, want)
	}
	if got, want := FormatThroughput(512e6), "512.0MB/s"; got != want {
		t.Errorf("FormatThroughput = %q, want %q", got, want)
	}
}

func TestGBPerSecond(t *testing.T) {
	// 1024 bytes in 100 units.
	rate := 1024 / 100.0
	for _, test := range []struct {
		u    TimeUnit
		want float64
	}{
		{Nanosecond, 10.24},
		{Microsecond, 10.24e-3},
		{Millisecond, 10.24e-6},
		{Second, 10.24e-9},
	} {
		got := GBPerSecond(rate, test.u)
		if math.Abs(got-test.want) > 1e-12*math.Max(1, test.want) {
			t.Errorf("GBPerSecond(%v, %v) = %v, want %v", rate, test.u, got, test.want)
		}
	}
	if got := BytesPerSecond(1, Microsecond); got != 1e6 {
		t.Errorf("BytesPerSecond(1, us) = %v, want 1e6", got)
	}
}

func TestParseTimeUnit(t *testing.T) {
	for s, want := range map[string]TimeUnit{"ns": Nanosecond, "us": Microsecond, "µs": Microsecond, "MS": Millisecond, "s": Second} {
		got, err := ParseTimeUnit(s)
		if err != nil || got != want {
			t.Errorf("ParseTimeUnit(%q) = %v, %v, want %v", s, got, err, want)
		}
	}
	if _, err := ParseTimeUnit("fortnight"); err == nil {
		t.Error("ParseTimeUnit(fortnight) succeeded")
	}
	if got := Millisecond.String(); got != "ms" {
		t.Errorf("Millisecond.String() = %q", got)
	}
}
