// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchchart

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
)

// WriteAll renders each chart in cs with r into dir, one file per
// chart named by FileName with extension ext. It creates dir if
// needed and overwrites existing files. It stops at the first error
// and returns the paths written so far.
func WriteAll(dir string, cs []*Chart, r Renderer, ext string) ([]string, error) {
	if err := os.MkdirAll(dir, 0777); err != nil {
		return nil, err
	}
	owner := make(map[string]string)
	var paths []string
	for _, c := range cs {
		name := FileName(c.Name, ext)
		if prev, ok := owner[name]; ok {
			return paths, fmt.Errorf("groups %q and %q both write %s", prev, c.Name, name)
		}
		owner[name] = c.Name

		var buf bytes.Buffer
		if err := r.Render(&buf, c); err != nil {
			return paths, fmt.Errorf("rendering %s: %w", c.Name, err)
		}
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, buf.Bytes(), 0666); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
