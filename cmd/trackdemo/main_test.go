// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"errors"
	"path/filepath"
	"slices"
	"testing"

	"github.com/gogpu/restrack"
)

func TestScenariosRun(t *testing.T) {
	for _, sc := range scenarios {
		t.Run(sc.name, func(t *testing.T) {
			d := newDemo(nil)
			sc.run(d)
			if err := d.close(); err != nil {
				t.Fatalf("close() = %v", err)
			}
		})
	}
}

func TestScriptFrame(t *testing.T) {
	sc, err := loadScript(filepath.Join("testdata", "frame.toml"))
	if err != nil {
		t.Fatalf("loadScript() = %v", err)
	}
	if len(sc.Resources) != 2 || len(sc.Passes) != 2 {
		t.Fatalf("loaded %d resources, %d passes", len(sc.Resources), len(sc.Passes))
	}

	d := newDemo(nil)
	res := sc.run(d)
	shadow := d.dev.Table().Read(res["shadow"])
	if want := []restrack.State{restrack.StateShaderResource, restrack.StateShaderResource}; !slices.Equal(shadow, want) {
		t.Errorf("shadow = %v, want %v", shadow, want)
	}
	lights := d.dev.Table().Read(res["lights"])
	if lights[0] != restrack.StateVertexAndConstantBuffer {
		t.Errorf("lights = %v", lights)
	}
	if err := d.close(); err != nil {
		t.Fatalf("close() = %v", err)
	}
}

func TestScriptInvalid(t *testing.T) {
	tests := []struct {
		name string
		toml string
	}{
		{"unknown resource", `
[[pass]]
label = "p"
[[pass.use]]
resource = "missing"
state = "COPY_DEST"
`},
		{"subresource range", `
[[resource]]
name = "t"
subresources = 2
[[pass]]
label = "p"
[[pass.use]]
resource = "t"
subresource = 2
state = "COPY_DEST"
`},
		{"two writes", `
[[resource]]
name = "t"
subresources = 1
[[pass]]
label = "p"
[[pass.use]]
resource = "t"
state = "COPY_DEST|RENDER_TARGET"
`},
		{"unknown initial", `
[[resource]]
name = "t"
subresources = 1
initial = "UNKNOWN"
`},
		{"duplicate", `
[[resource]]
name = "t"
subresources = 1
[[resource]]
name = "t"
subresources = 1
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseScript([]byte(tt.toml)); !errors.Is(err, errScript) {
				t.Errorf("parseScript() = %v, want errScript", err)
			}
		})
	}

	if _, err := parseScript([]byte(`[[resource]]
name = "t"
initial = "COPY_DST"
`)); err == nil {
		t.Error("parseScript(bad state name) succeeded")
	}
}
