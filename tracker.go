// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package restrack

import (
	"log/slog"
	"slices"
)

// TrackerPhase is where a Tracker is in the record/submit cycle.
type TrackerPhase uint8

const (
	// PhaseRecording accepts RequireState calls.
	PhaseRecording TrackerPhase = iota

	// PhasePrepared follows BuildPreTransitions; only StopTracking or
	// Cancel are legal.
	PhasePrepared
)

func (p TrackerPhase) String() string {
	switch p {
	case PhaseRecording:
		return "Recording"
	case PhasePrepared:
		return "Prepared"
	default:
		return "TrackerPhase(?)"
	}
}

// tracked pairs a pinned table entry with this pass's converter for it.
type tracked struct {
	entry *tableEntry
	conv  *StateConverter
}

// Tracker computes barriers for one recording pass.
//
// A pass goes through RequireState / RequireSubresourceState while
// commands are recorded, BuildPreTransitions once recording is done, and
// StopTracking once the pass's position in submission order is fixed.
// After StopTracking or Cancel the tracker is empty and can record the
// next pass.
//
// A Tracker belongs to one goroutine at a time. Only the Table it was
// built with is shared.
type Tracker struct {
	table *Table
	label string
	phase TrackerPhase

	resources map[Handle]*tracked
	scratch   []State
}

// NewTracker returns an empty tracker committing into table.
func NewTracker(table *Table, opts ...TrackerOption) *Tracker {
	o := trackerOptions{capacity: 16}
	for _, opt := range opts {
		opt(&o)
	}
	return &Tracker{
		table:     table,
		label:     o.label,
		resources: make(map[Handle]*tracked, o.capacity),
	}
}

// Table returns the table the tracker commits into.
func (t *Tracker) Table() *Table { return t.table }

// Label returns the name given with WithTrackerLabel.
func (t *Tracker) Label() string { return t.label }

// Phase returns the current phase.
func (t *Tracker) Phase() TrackerPhase { return t.phase }

// Len returns the number of resources touched this pass.
func (t *Tracker) Len() int { return len(t.resources) }

// Resources returns the resources touched this pass in handle order.
func (t *Tracker) Resources() []GpuResource {
	out := make([]GpuResource, 0, len(t.resources))
	for _, h := range t.handles() {
		out = append(out, t.resources[h].entry.res)
	}
	return out
}

// Converter returns this pass's converter for res, if res was touched.
// Each pass allocates its own converters; once the pass is stopped,
// cancelled or joined the returned converter stays Consumed for good.
func (t *Tracker) Converter(res GpuResource) (*StateConverter, bool) {
	tr, ok := t.resources[res.Handle]
	if !ok {
		return nil, false
	}
	return tr.conv, true
}

// RequireState returns the barriers needed before res can be used in dst as
// a whole. They must be recorded before the commands that depend on them.
func (t *Tracker) RequireState(res GpuResource, dst State) []Barrier {
	tr := t.track("RequireState", res, dst)
	if tr == nil {
		return nil
	}
	convs := tr.conv.ConvertState(dst)
	if len(convs) == 0 {
		return nil
	}
	return appendBarriers(make([]Barrier, 0, len(convs)), tr.entry.res, convs)
}

// RequireSubresourceState is RequireState for a single subresource. It
// reports whether a barrier is needed and returns it.
func (t *Tracker) RequireSubresourceState(res GpuResource, index int, dst State) (bool, Barrier) {
	tr := t.track("RequireSubresourceState", res, dst)
	if tr == nil {
		return false, Barrier{}
	}
	explicit, c := tr.conv.ConvertSubresource(index, dst)
	if !explicit {
		return false, Barrier{}
	}
	return true, barrierFrom(tr.entry.res, c)
}

// BuildPreTransitions resolves the pass's deferred first uses against the
// committed table state. The barriers must run on the same queue
// immediately before the pass's commands.
//
// It must be called exactly once per pass, after recording and before
// StopTracking.
func (t *Tracker) BuildPreTransitions() []Barrier {
	if t.phase != PhaseRecording {
		violate("BuildPreTransitions", "called twice in one pass")
	}
	t.phase = PhasePrepared

	var out []Barrier
	for _, h := range t.handles() {
		tr := t.resources[h]
		t.scratch = t.table.readEntry(tr.entry, t.scratch[:0])
		out = appendBarriers(out, tr.entry.res, tr.conv.PreConvert(t.scratch))
	}
	t.log().Debug("restrack: pre-transitions built",
		slog.String("pass", t.label),
		slog.Int("resources", len(t.resources)),
		slog.Int("barriers", len(out)))
	return out
}

// StopTracking commits the pass's final states and empties the tracker.
//
// With copyQueue set, every touched subresource is committed as
// StateUnknown: completing on a copy queue does not make the resulting
// state visible to other queues without an explicit synchronization
// primitive, so the next pass must prove its starting state.
// Subresources the pass never touched keep their committed state.
//
// The caller must only stop a pass once its commands are ordered relative
// to every other pass touching the same resources.
func (t *Tracker) StopTracking(copyQueue bool) {
	if len(t.resources) > 0 && t.phase != PhasePrepared {
		violate("StopTracking", "BuildPreTransitions has not run for pass %q", t.label)
	}
	batch := make([]passCommit, 0, len(t.resources))
	for _, h := range t.handles() {
		tr := t.resources[h]
		batch = append(batch, passCommit{entry: tr.entry, final: tr.conv.FinalStates()})
	}
	if len(batch) > 0 {
		t.table.commitPass(batch, copyQueue)
	}
	t.log().Debug("restrack: pass committed",
		slog.String("pass", t.label),
		slog.Int("resources", len(batch)),
		slog.Bool("copyQueue", copyQueue))
	t.clear()
}

// Cancel discards the pass without touching the table. It is always safe,
// including for passes that were never submitted.
func (t *Tracker) Cancel() {
	t.clear()
}

// Join splices other, recorded later, onto t so both can go out in one
// submission. The returned barriers must be recorded between t's commands
// and other's. Resources only other touched move to t with their deferred
// first uses; other ends empty.
func (t *Tracker) Join(other *Tracker) []Barrier {
	if other == t {
		violate("Join", "tracker joined with itself")
		return nil
	}
	if other.table != t.table {
		violate("Join", "trackers built on different tables")
	}
	if t.phase != PhaseRecording || other.phase != PhaseRecording {
		violate("Join", "joining a pass after BuildPreTransitions")
	}

	var out []Barrier
	adopted := 0
	for _, h := range other.handles() {
		otr := other.resources[h]
		tr, ok := t.resources[h]
		if !ok {
			t.resources[h] = otr
			adopted++
			continue
		}
		out = appendBarriers(out, tr.entry.res, tr.conv.Join(otr.conv))
		t.table.release(otr.entry)
		otr.conv.consume()
	}
	clear(other.resources)
	other.phase = PhaseRecording

	t.log().Debug("restrack: passes joined",
		slog.String("pass", t.label),
		slog.String("other", other.label),
		slog.Int("adopted", adopted),
		slog.Int("barriers", len(out)))
	return out
}

// track returns the converter for res, creating and pinning it on first
// touch.
func (t *Tracker) track(op string, res GpuResource, dst State) *tracked {
	if t.phase != PhaseRecording {
		violate(op, "recording into pass %q after BuildPreTransitions", t.label)
	}
	if !dst.Valid() {
		violate(op, "requested invalid state %s for %s", dst, res)
	}
	if tr, ok := t.resources[res.Handle]; ok {
		return tr
	}
	e := t.table.acquire(op, res)
	if e == nil {
		return nil
	}
	tr := &tracked{entry: e, conv: NewStateConverter(e.res)}
	t.resources[res.Handle] = tr
	return tr
}

func (t *Tracker) clear() {
	for _, tr := range t.resources {
		t.table.release(tr.entry)
		tr.conv.consume()
	}
	clear(t.resources)
	t.phase = PhaseRecording
}

// handles returns the touched handles in a stable order so barrier lists
// never depend on map iteration.
func (t *Tracker) handles() []Handle {
	hs := make([]Handle, 0, len(t.resources))
	for h := range t.resources {
		hs = append(hs, h)
	}
	slices.SortFunc(hs, Handle.compare)
	return hs
}

func (t *Tracker) log() *slog.Logger { return t.table.log() }
