// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package restrack

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gogpu/restrack/internal/slotmap"
)

// tableEntry is the authoritative record for one live resource.
type tableEntry struct {
	res    GpuResource
	states []State // guarded by Table.mu

	// refs counts open tracker passes holding a converter for res.
	refs atomic.Int32
}

// Table is the authoritative per-subresource state of every live resource.
//
// Any number of Read calls proceed concurrently; Append, Remove and Commit
// exclude readers and each other. Entries are keyed by generation-checked
// handles issued at Append, so a handle kept past Remove is rejected.
//
// Table is safe for concurrent use.
type Table struct {
	mu      sync.RWMutex
	entries *slotmap.Map[*tableEntry]
	logger  *slog.Logger
	commits atomic.Uint64
}

// NewTable returns an empty table.
func NewTable(opts ...Option) *Table {
	o := buildOptions(opts)
	return &Table{
		entries: slotmap.New[*tableEntry](o.capacity),
		logger:  o.logger,
	}
}

func (t *Table) log() *slog.Logger {
	if t.logger != nil {
		return t.logger
	}
	return Logger()
}

// Append registers a resource whose subresources are all in initial.
// initial must be a real state, never StateUnknown.
func (t *Table) Append(desc ResourceDesc, initial State) GpuResource {
	if desc.SubresourceCount < 1 {
		violate("Append", "subresource count %d", desc.SubresourceCount)
		desc.SubresourceCount = 1
	}
	if !initial.Valid() {
		violate("Append", "invalid initial state %s", initial)
	}

	e := &tableEntry{
		res: GpuResource{
			SubresourceCount:     desc.SubresourceCount,
			BufferOrSimultaneous: desc.BufferOrSimultaneous,
			Label:                desc.Label,
		},
		states: make([]State, desc.SubresourceCount),
	}
	for i := range e.states {
		e.states[i] = initial
	}

	t.mu.Lock()
	e.res.Handle = Handle{key: t.entries.Insert(e)}
	t.mu.Unlock()
	return e.res
}

// Remove unregisters res. The caller guarantees all GPU work referencing it
// has retired; removing a resource an open pass still tracks is a contract
// violation.
func (t *Table) Remove(res GpuResource) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries.Get(res.Handle.key)
	if !ok {
		violate("Remove", "%s is not registered", res)
		return
	}
	if n := e.refs.Load(); n > 0 {
		violate("Remove", "%s is still tracked by %d open passes", res, n)
	}
	t.entries.Remove(res.Handle.key)
}

// Read returns a copy of the committed state of every subresource of res.
func (t *Table) Read(res GpuResource) []State {
	return t.ReadInto(res, nil)
}

// ReadInto appends the committed states of res to dst and returns the
// extended slice.
func (t *Table) ReadInto(res GpuResource, dst []State) []State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e := t.lookupLocked("Read", res)
	if e == nil {
		return dst
	}
	return append(dst, e.states...)
}

// Commit overwrites the committed states of res. states has one entry per
// subresource; StateUnknown is allowed and forces the next pass to prove
// its starting state.
func (t *Table) Commit(res GpuResource, states []State) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e := t.lookupLocked("Commit", res)
	if e == nil {
		return
	}
	if len(states) != len(e.states) {
		violate("Commit", "%d states for %s with %d subresources", len(states), res, len(e.states))
		return
	}
	for _, s := range states {
		if !s.IsUnknown() && !s.Valid() {
			violate("Commit", "invalid state %s for %s", s, res)
		}
	}
	copy(e.states, states)
	t.commits.Add(1)
}

// passCommit is the outcome of one pass for one resource.
type passCommit struct {
	entry *tableEntry
	final []State
}

// commitPass writes the outcome of one pass under a single exclusive lock.
// Every subresource with a known final state gets it, or StateUnknown when
// discard is set. Untouched subresources keep their committed state.
func (t *Table) commitPass(batch []passCommit, discard bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, c := range batch {
		if t.lookupLocked("StopTracking", c.entry.res) == nil {
			continue
		}
		for i, s := range c.final {
			if s.IsUnknown() {
				continue
			}
			if discard {
				s = StateUnknown
			}
			c.entry.states[i] = s
		}
	}
	t.commits.Add(1)
}

// Lookup returns the resource registered under h.
func (t *Table) Lookup(h Handle) (GpuResource, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.entries.Get(h.key)
	if !ok {
		return GpuResource{}, false
	}
	return e.res, true
}

// Live returns the number of registered resources.
func (t *Table) Live() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.entries.Len()
}

// Commits returns how many commits the table has applied.
func (t *Table) Commits() uint64 { return t.commits.Load() }

// Resources returns every registered resource in handle order.
func (t *Table) Resources() []GpuResource {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]GpuResource, 0, t.entries.Len())
	t.entries.Range(func(_ slotmap.Key, e *tableEntry) bool {
		out = append(out, e.res)
		return true
	})
	return out
}

// acquire pins res for an open pass and returns its entry.
func (t *Table) acquire(op string, res GpuResource) *tableEntry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e := t.lookupLocked(op, res)
	if e == nil {
		return nil
	}
	e.refs.Add(1)
	return e
}

// release drops a pin taken by acquire.
func (t *Table) release(e *tableEntry) {
	if e.refs.Add(-1) < 0 {
		violate("release", "%s released more often than acquired", e.res)
	}
}

// readEntry copies the committed states of e into dst under the read lock.
func (t *Table) readEntry(e *tableEntry, dst []State) []State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.lookupLocked("BuildPreTransitions", e.res) == nil {
		return dst
	}
	return append(dst, e.states...)
}

func (t *Table) lookupLocked(op string, res GpuResource) *tableEntry {
	e, ok := t.entries.Get(res.Handle.key)
	if !ok {
		violate(op, "%s is not registered", res)
		return nil
	}
	return e
}
