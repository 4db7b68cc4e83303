// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/gogpu/restrack"
	"github.com/pelletier/go-toml/v2"
)

var errScript = errors.New("trackdemo: invalid script")

// script is a TOML description of resources and the passes that use them.
//
//	[[resource]]
//	name = "shadow"
//	subresources = 4
//	initial = "COMMON"
//
//	[[pass]]
//	label = "shadow"
//	[[pass.use]]
//	resource = "shadow"
//	state = "DEPTH_WRITE"
type script struct {
	Resources []scriptResource `toml:"resource"`
	Passes    []scriptPass     `toml:"pass"`
}

type scriptResource struct {
	Name         string         `toml:"name"`
	Subresources int            `toml:"subresources"`
	Buffer       bool           `toml:"buffer"`
	Size         uint64         `toml:"size"`
	Initial      restrack.State `toml:"initial"`
}

type scriptPass struct {
	Label     string      `toml:"label"`
	CopyQueue bool        `toml:"copy_queue"`
	Uses      []scriptUse `toml:"use"`
}

type scriptUse struct {
	Resource    string         `toml:"resource"`
	Subresource *int           `toml:"subresource"`
	State       restrack.State `toml:"state"`
}

func loadScript(path string) (*script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return parseScript(data)
}

func parseScript(data []byte) (*script, error) {
	var s script
	if err := toml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// validate rejects everything the tracker would treat as a contract
// violation so a bad script fails with an error instead of a panic.
func (s *script) validate() error {
	counts := make(map[string]int, len(s.Resources))
	for i, r := range s.Resources {
		if r.Name == "" {
			return fmt.Errorf("%w: resource %d has no name", errScript, i)
		}
		if _, dup := counts[r.Name]; dup {
			return fmt.Errorf("%w: duplicate resource %q", errScript, r.Name)
		}
		n := r.Subresources
		if r.Buffer {
			n = 1
		}
		if n < 1 {
			return fmt.Errorf("%w: resource %q has %d subresources", errScript, r.Name, n)
		}
		if !r.Initial.Valid() {
			return fmt.Errorf("%w: resource %q initial state %s", errScript, r.Name, r.Initial)
		}
		counts[r.Name] = n
	}
	for _, p := range s.Passes {
		for _, u := range p.Uses {
			n, ok := counts[u.Resource]
			if !ok {
				return fmt.Errorf("%w: pass %q uses unknown resource %q", errScript, p.Label, u.Resource)
			}
			if u.Subresource != nil && (*u.Subresource < 0 || *u.Subresource >= n) {
				return fmt.Errorf("%w: pass %q subresource %d of %q", errScript, p.Label, *u.Subresource, u.Resource)
			}
			if !u.State.Valid() {
				return fmt.Errorf("%w: pass %q requests %s on %q", errScript, p.Label, u.State, u.Resource)
			}
		}
	}
	return nil
}

// run registers the script's resources on d and executes its passes in
// order, one submission each.
func (s *script) run(d *demo) map[string]restrack.GpuResource {
	res := make(map[string]restrack.GpuResource, len(s.Resources))
	for _, r := range s.Resources {
		if r.Buffer {
			size := r.Size
			if size == 0 {
				size = 256
			}
			res[r.Name] = d.buffer(r.Name, size, r.Initial)
			continue
		}
		res[r.Name] = d.texture(r.Name, r.Subresources, r.Initial)
	}

	for _, p := range s.Passes {
		pass := d.dev.NewTracker(restrack.WithTrackerLabel(p.Label))
		for _, u := range p.Uses {
			target := res[u.Resource]
			if u.Subresource == nil {
				d.emit(u.Resource, pass.RequireState(target, u.State))
				continue
			}
			var out []restrack.Barrier
			if ok, b := pass.RequireSubresourceState(target, *u.Subresource, u.State); ok {
				out = append(out, b)
			}
			d.emit(u.Resource, out)
		}
		d.emit("pre", pass.BuildPreTransitions())
		pass.StopTracking(p.CopyQueue)
	}
	for _, r := range s.Resources {
		d.states(res[r.Name])
	}
	return res
}
