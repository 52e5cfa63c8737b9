// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Critplot charts the throughput of Criterion benchmarks.
//
// Usage:
//
//	critplot [flags]
//
// Critplot reads every benchmark.cbor file under the Criterion data
// directory (target/criterion/data by default), computes the
// throughput of each benchmark as input size divided by mean time, and
// draws one chart per benchmark group. Each chart plots throughput in
// GB/s against input size on a logarithmic axis, with one line per
// benchmarked function.
//
// In export mode, critplot writes one file per group to the output
// directory (assets by default), named after the group. The -format
// flag selects png, svg, pdf or html output. With html output an
// index.html page holding every chart is written as well.
//
// In serve mode, critplot serves the charts as interactive pages over
// HTTP instead, listing the groups at the root and drawing each group
// at /chart/<group>. The -assets flag names the URL prefix the
// interactive pages load their ECharts scripts from, for use without
// internet access.
//
// The default mode is fixed when critplot is built: the default build
// exports, and building with -tags interactive makes serve the
// default. The -mode flag overrides either.
//
// Critplot stops at the first unreadable or incomplete result file
// and exits with status 1.
//
// The -csv flag writes every result with its derived throughput as
// CSV ("-" for standard output). The -summary flag prints the peak and
// geometric-mean throughput of each function. The -db flag replaces
// the contents of a SQL database with the results; the argument has
// the form driver:dsn, where driver is sqlite3 or mysql.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/autobahn-hash/critplot/benchchart"
	"github.com/autobahn-hash/critplot/benchtab"
	"github.com/autobahn-hash/critplot/benchunit"
	"github.com/autobahn-hash/critplot/criterion"
	"github.com/autobahn-hash/critplot/store"
)

func usage(fs *flag.FlagSet) func() {
	return func() {
		fmt.Fprintf(fs.Output(), "usage: critplot [flags]\n")
		fs.PrintDefaults()
	}
}

func main() {
	log.SetPrefix("critplot: ")
	log.SetFlags(0)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := critplot(ctx, os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		if isUsage(err) {
			os.Exit(2)
		}
		log.Fatal(err)
	}
}

// A usageError is a command line error the FlagSet has already
// reported.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

// isUsage reports whether err has already been printed along with the
// usage message.
func isUsage(err error) bool {
	var ue usageError
	return errors.Is(err, flag.ErrHelp) || errors.As(err, &ue)
}

type config struct {
	data, out  string
	mode       string
	format     benchchart.Format
	scale      float64
	intervals  bool
	unit       benchunit.TimeUnit
	addr       string
	assets     string
	csv, db    string
	summary    bool
	printTable bool
}

func parseFlags(stderr io.Writer, args []string) (*config, error) {
	fs := flag.NewFlagSet("critplot", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = usage(fs)

	var (
		c      config
		format string
		unit   string
	)
	fs.StringVar(&c.data, "data", "target/criterion/data", "read benchmark results from `dir`")
	fs.StringVar(&c.out, "o", "assets", "write charts to `dir`")
	fs.StringVar(&c.mode, "mode", defaultMode, "output `mode`: export or serve")
	fs.StringVar(&format, "format", "png", "chart `format`: png, svg, pdf or html")
	fs.Float64Var(&c.scale, "scale", 2, "pixel density `factor` of png charts")
	fs.BoolVar(&c.intervals, "ci", false, "draw confidence intervals as error bars")
	fs.StringVar(&unit, "unit", "ns", "time `unit` of the recorded means")
	fs.StringVar(&c.addr, "addr", "localhost:8080", "serve HTTP on `address`")
	fs.StringVar(&c.assets, "assets", "", "load the ECharts scripts of html charts from `url`")
	fs.StringVar(&c.csv, "csv", "", "write results as CSV to `file`")
	fs.StringVar(&c.db, "db", "", "replace the results in `database` (driver:dsn)")
	fs.BoolVar(&c.summary, "summary", false, "print per-function throughput summaries")
	fs.BoolVar(&c.printTable, "table", false, "print every result with its derived throughput")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, err
		}
		return nil, usageError{err}
	}
	if fs.NArg() != 0 {
		fs.Usage()
		return nil, flag.ErrHelp
	}

	var err error
	if c.format, err = benchchart.ParseFormat(format); err != nil {
		return nil, err
	}
	if c.unit, err = benchunit.ParseTimeUnit(unit); err != nil {
		return nil, err
	}
	switch c.mode {
	case "export", "serve":
	default:
		return nil, fmt.Errorf("unknown mode %q (want export or serve)", c.mode)
	}
	if !(c.scale > 0) {
		return nil, fmt.Errorf("-scale must be positive, not %v", c.scale)
	}
	return &c, nil
}

func critplot(ctx context.Context, stdout, stderr io.Writer, args []string) error {
	c, err := parseFlags(stderr, args)
	if err != nil {
		return err
	}

	recs, err := criterion.ReadAll(c.data)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		return fmt.Errorf("no %s files under %s", criterion.MetadataFile, c.data)
	}
	tab := benchtab.Build(recs)
	tab.Unit = c.unit
	tab.Derive()
	groups := tab.Groups()

	var charts []*benchchart.Chart
	for _, g := range groups {
		ch, err := benchchart.New(g)
		if err != nil {
			return err
		}
		ch.Intervals = c.intervals
		charts = append(charts, ch)
	}

	if c.printTable {
		if err := tab.Fprint(stdout); err != nil {
			return err
		}
	}
	if c.summary {
		if err := benchtab.FprintSummary(stdout, tab.Summarize()); err != nil {
			return err
		}
	}
	if c.csv != "" {
		if err := writeCSV(stdout, c.csv, groups); err != nil {
			return err
		}
	}
	if c.db != "" {
		if err := saveDB(ctx, c.db, groups); err != nil {
			return err
		}
	}

	switch c.mode {
	case "serve":
		return serve(ctx, c.addr, benchchart.HTMLRenderer{AssetsHost: c.assets}, charts)
	default:
		return export(c, charts)
	}
}

func export(c *config, charts []*benchchart.Chart) error {
	if c.format != benchchart.HTML {
		_, err := benchchart.WriteAll(c.out, charts, c.format.Renderer(c.scale), string(c.format))
		return err
	}

	for _, ch := range charts {
		if benchchart.FileName(ch.Name, "html") == "index.html" {
			return fmt.Errorf("group %q would overwrite index.html", ch.Name)
		}
	}
	html := benchchart.HTMLRenderer{AssetsHost: c.assets}
	if _, err := benchchart.WriteAll(c.out, charts, html, "html"); err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(c.out, "index.html"))
	if err != nil {
		return err
	}
	if err := html.RenderPage(f, "Criterion throughput", charts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeCSV(stdout io.Writer, path string, groups []*benchtab.Group) error {
	if path == "-" {
		return benchtab.WriteCSV(stdout, groups)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := benchtab.WriteCSV(f, groups); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func saveDB(ctx context.Context, spec string, groups []*benchtab.Group) error {
	db, err := store.Open(spec)
	if err != nil {
		return err
	}
	if err := db.ReplaceRun(ctx, groups); err != nil {
		db.Close()
		return err
	}
	return db.Close()
}
