// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/safehtml/template"

	"github.com/autobahn-hash/critplot/benchchart"
	"github.com/autobahn-hash/critplot/benchunit"
)

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Criterion throughput</title>
</head>
<body>
<h1>Criterion throughput</h1>
<ul>
{{range .}}<li><a href="{{.Chart}}">{{.Name}}</a> (<a href="{{.Image}}">png</a>), peak {{.Peak}}</li>
{{end}}</ul>
</body>
</html>
`))

type indexEntry struct {
	Name, Chart, Image string
	Peak               string
}

// A server serves interactive charts over HTTP.
type server struct {
	html   benchchart.HTMLRenderer
	charts map[string]*benchchart.Chart
	index  []indexEntry
}

func newServer(html benchchart.HTMLRenderer, charts []*benchchart.Chart) *server {
	s := &server{html: html, charts: make(map[string]*benchchart.Chart)}
	for _, c := range charts {
		s.charts[c.Name] = c
		esc := url.PathEscape(c.Name)
		peak := benchunit.FormatThroughput(c.YMax * benchunit.GB)
		s.index = append(s.index, indexEntry{c.Name, "/chart/" + esc, "/image/" + esc, peak})
	}
	return s
}

// RegisterOnMux registers s's handlers on mux.
func (s *server) RegisterOnMux(mux *http.ServeMux) {
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/chart/", s.handleChart)
	mux.HandleFunc("/image/", s.handleImage)
}

func (s *server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, s.index); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// lookup returns the chart named by the path after prefix.
func (s *server) lookup(r *http.Request, prefix string) *benchchart.Chart {
	name, err := url.PathUnescape(strings.TrimPrefix(r.URL.EscapedPath(), prefix))
	if err != nil {
		return nil
	}
	return s.charts[name]
}

func (s *server) handleChart(w http.ResponseWriter, r *http.Request) {
	c := s.lookup(r, "/chart/")
	if c == nil {
		http.NotFound(w, r)
		return
	}
	s.render(w, "text/html; charset=utf-8", s.html, c)
}

func (s *server) handleImage(w http.ResponseWriter, r *http.Request) {
	c := s.lookup(r, "/image/")
	if c == nil {
		http.NotFound(w, r)
		return
	}
	s.render(w, "image/png", benchchart.ImageRenderer{Format: benchchart.PNG, Scale: 1}, c)
}

func (s *server) render(w http.ResponseWriter, contentType string, rd benchchart.Renderer, c *benchchart.Chart) {
	var buf bytes.Buffer
	if err := rd.Render(&buf, c); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Write(buf.Bytes())
}

// serve serves charts on addr until ctx is done.
func serve(ctx context.Context, addr string, html benchchart.HTMLRenderer, charts []*benchchart.Chart) error {
	mux := http.NewServeMux()
	newServer(html, charts).RegisterOnMux(mux)
	srv := &http.Server{Addr: addr, Handler: mux}

	errc := make(chan error, 1)
	go func() {
		log.Printf("Listening on %s", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
