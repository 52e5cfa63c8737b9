// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package benchunit converts benchmark measurements between units and
// formats numbers in those units.
package benchunit

import (
	"fmt"
	"strings"
)

// A Class specifies what class of unit prefixes are in use.
type Class int

const (
	// Decimal indicates values of a given unit should be scaled
	// by powers of 1000, using SI prefixes such as "k" and "G".
	Decimal Class = iota
	// Binary indicates values of a given unit should be scaled by
	// powers of 1024, using IEC prefixes such as "Ki" and "Mi".
	Binary
)

func (c Class) String() string {
	switch c {
	case Decimal:
		return "Decimal"
	case Binary:
		return "Binary"
	}
	return fmt.Sprintf("Class(%d)", int(c))
}

// A TimeUnit is the unit a harness records durations in.
type TimeUnit int

const (
	Nanosecond TimeUnit = iota
	Microsecond
	Millisecond
	Second
)

var timeUnits = []struct {
	name   string
	perSec float64 // units in one second
}{
	Nanosecond:  {"ns", 1e9},
	Microsecond: {"us", 1e6},
	Millisecond: {"ms", 1e3},
	Second:      {"s", 1},
}

func (u TimeUnit) String() string {
	if u < 0 || int(u) >= len(timeUnits) {
		return fmt.Sprintf("TimeUnit(%d)", int(u))
	}
	return timeUnits[u].name
}

// PerSecond returns the number of u in one second.
func (u TimeUnit) PerSecond() float64 {
	return timeUnits[u].perSec
}

// ParseTimeUnit parses the short name of a time unit ("ns", "us",
// "ms" or "s").
func ParseTimeUnit(s string) (TimeUnit, error) {
	if s == "µs" {
		s = "us"
	}
	for u, tu := range timeUnits {
		if strings.EqualFold(s, tu.name) {
			return TimeUnit(u), nil
		}
	}
	return 0, fmt.Errorf("unknown time unit %q", s)
}

// GB is one decimal gigabyte.
const GB = 1e9

// BytesPerSecond converts a rate in bytes per u to bytes per second.
func BytesPerSecond(rate float64, u TimeUnit) float64 {
	return rate * u.PerSecond()
}

// GBPerSecond converts a rate in bytes per u to decimal gigabytes
// per second.
//
// A rate in bytes per nanosecond has the same numeric value in GB/s,
// but that only holds for nanoseconds; callers must not rely on it.
func GBPerSecond(rate float64, u TimeUnit) float64 {
	return BytesPerSecond(rate, u) / GB
}
