// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package restrack

import (
	"github.com/gogpu/restrack/internal/smallvec"
)

// ConverterStatus is the fold state of a StateConverter.
type ConverterStatus uint8

const (
	// ConverterFresh means the resource has not been touched this pass.
	ConverterFresh ConverterStatus = iota

	// ConverterFolded means one representative state stands for every
	// subresource.
	ConverterFolded

	// ConverterUnfolded means subresources are tracked individually because
	// they diverged, or a per-subresource request was made.
	ConverterUnfolded

	// ConverterConsumed means the converter was absorbed by StopTracking or
	// Join. It must be Reset before reuse.
	ConverterConsumed
)

func (s ConverterStatus) String() string {
	switch s {
	case ConverterFresh:
		return "Fresh"
	case ConverterFolded:
		return "Folded"
	case ConverterUnfolded:
		return "Unfolded"
	case ConverterConsumed:
		return "Consumed"
	default:
		return "ConverterStatus(?)"
	}
}

// StateConverter tracks one resource within one recording pass.
//
// It remembers what each subresource was first needed in (firstDst), which
// is resolved against the real predecessor at submission by PreConvert, and
// what it was last left in (lastDst), which later requests are checked
// against. While Folded only lastDst[0] is meaningful.
//
// A StateConverter is not safe for concurrent use.
type StateConverter struct {
	res      GpuResource
	status   ConverterStatus
	firstDst smallvec.Vec[State]
	lastDst  smallvec.Vec[State]
}

// NewStateConverter returns a Fresh converter for res.
func NewStateConverter(res GpuResource) *StateConverter {
	c := &StateConverter{}
	c.init(res)
	return c
}

func (c *StateConverter) init(res GpuResource) {
	n := res.SubresourceCount
	if n < 1 {
		violate("NewStateConverter", "%s has %d subresources", res, n)
		n = 1
	}
	c.res = res
	c.status = ConverterFresh
	c.firstDst.Reset(n, StateUnknown)
	c.lastDst.Reset(n, StateUnknown)
}

// Resource returns the resource the converter tracks.
func (c *StateConverter) Resource() GpuResource { return c.res }

// Status returns the fold state.
func (c *StateConverter) Status() ConverterStatus { return c.status }

// Reset returns the converter to Fresh. This is the only way to reuse a
// Consumed converter.
func (c *StateConverter) Reset() { c.init(c.res) }

// ConvertState requests the whole resource in dst and returns the explicit
// conversions needed now. A first use on a folded converter is deferred to
// PreConvert and returns nothing.
func (c *StateConverter) ConvertState(dst State) []StateConversion {
	c.checkLive("ConvertState")
	if c.status == ConverterUnfolded {
		return c.convertUnfolded(dst)
	}

	src := c.lastDst.Get(0)
	c.status = ConverterFolded
	if src.IsUnknown() {
		c.firstDst.Fill(dst)
		c.lastDst.Set(0, dst)
		return nil
	}
	explicit, normalized := CanPromote(src, dst, c.res.BufferOrSimultaneous)
	c.lastDst.Set(0, normalized)
	if !explicit {
		return nil
	}
	return []StateConversion{{Subresource: AllSubresources, From: src, To: dst}}
}

// convertUnfolded applies dst to every subresource. Subresources not yet
// touched this pass record dst as their first use, like ConvertSubresource.
func (c *StateConverter) convertUnfolded(dst State) []StateConversion {
	var out []StateConversion
	first, last := c.firstDst.Slice(), c.lastDst.Slice()
	for i, src := range last {
		if src.IsUnknown() {
			first[i] = dst
			last[i] = dst
			continue
		}
		explicit, normalized := CanPromote(src, dst, c.res.BufferOrSimultaneous)
		if explicit {
			out = append(out, StateConversion{Subresource: i, From: src, To: dst})
		}
		last[i] = normalized
	}
	c.tryFold()
	return out
}

// ConvertSubresource requests subresource i in dst. It reports whether an
// explicit conversion is needed now and returns it; the conversion is the
// zero value otherwise.
//
// The converter stays Unfolded at least until the next ConvertState.
func (c *StateConverter) ConvertSubresource(i int, dst State) (bool, StateConversion) {
	c.checkLive("ConvertSubresource")
	if i < 0 || i >= c.lastDst.Len() {
		violate("ConvertSubresource", "subresource %d out of range for %s", i, c.res)
		return false, StateConversion{}
	}
	c.unfold()

	src := c.lastDst.Get(i)
	if src.IsUnknown() {
		c.firstDst.Set(i, dst)
		c.lastDst.Set(i, dst)
		return false, StateConversion{}
	}
	explicit, normalized := CanPromote(src, dst, c.res.BufferOrSimultaneous)
	c.lastDst.Set(i, normalized)
	if !explicit {
		return false, StateConversion{}
	}
	return true, StateConversion{Subresource: i, From: src, To: dst}
}

// PreConvert resolves the deferred first uses against the states the
// resource is actually in before the pass runs. actual has one entry per
// subresource.
func (c *StateConverter) PreConvert(actual []State) []StateConversion {
	c.checkLive("PreConvert")
	if len(actual) != c.firstDst.Len() {
		violate("PreConvert", "%d states for %s with %d subresources", len(actual), c.res, c.firstDst.Len())
		return nil
	}
	simultaneous := c.res.BufferOrSimultaneous

	if c.status == ConverterFolded && smallvec.Uniform(&c.firstDst) && smallvec.UniformSlice(actual) {
		first := c.firstDst.Get(0)
		if first.IsUnknown() {
			return nil
		}
		if explicit, _ := CanPromote(actual[0], first, simultaneous); explicit {
			return []StateConversion{{Subresource: AllSubresources, From: actual[0], To: first}}
		}
		return nil
	}

	var out []StateConversion
	for i, first := range c.firstDst.Slice() {
		if first.IsUnknown() {
			continue
		}
		if explicit, _ := CanPromote(actual[i], first, simultaneous); explicit {
			out = append(out, StateConversion{Subresource: i, From: actual[i], To: first})
		}
	}
	return out
}

// Join splices other, recorded later on the same resource, onto c. The
// returned conversions connect c's final states to other's first uses and
// must run between the two passes. c then carries other's final states and
// other becomes Consumed.
func (c *StateConverter) Join(other *StateConverter) []StateConversion {
	c.checkLive("Join")
	other.checkLive("Join")
	if other == c {
		violate("Join", "%s joined with itself", c.res)
		return nil
	}
	if other.res.Handle != c.res.Handle || other.firstDst.Len() != c.firstDst.Len() {
		violate("Join", "joining %s with %s", c.res, other.res)
		return nil
	}
	defer other.consume()

	switch {
	case other.status == ConverterFresh:
		return nil
	case c.status == ConverterFresh:
		c.status = other.status
		c.firstDst.CopyFrom(other.firstDst.Slice())
		c.lastDst.CopyFrom(other.lastDst.Slice())
		return nil
	}
	simultaneous := c.res.BufferOrSimultaneous

	if c.status == ConverterFolded && other.status == ConverterFolded && smallvec.Uniform(&other.firstDst) {
		src, first := c.lastDst.Get(0), other.firstDst.Get(0)
		c.lastDst.Set(0, other.lastDst.Get(0))
		if first.IsUnknown() {
			return nil
		}
		if explicit, _ := CanPromote(src, first, simultaneous); explicit {
			return []StateConversion{{Subresource: AllSubresources, From: src, To: first}}
		}
		return nil
	}

	c.unfold()
	other.unfold()
	var out []StateConversion
	firsts, lasts := c.firstDst.Slice(), c.lastDst.Slice()
	otherLasts := other.lastDst.Slice()
	for i, first := range other.firstDst.Slice() {
		if !first.IsUnknown() {
			if src := lasts[i]; src.IsUnknown() {
				firsts[i] = first
			} else if explicit, _ := CanPromote(src, first, simultaneous); explicit {
				out = append(out, StateConversion{Subresource: i, From: src, To: first})
			}
		}
		if !otherLasts[i].IsUnknown() {
			lasts[i] = otherLasts[i]
		}
	}
	c.tryFold()
	return out
}

// FinalStates returns the state each subresource was last left in, with
// StateUnknown for subresources not touched this pass.
func (c *StateConverter) FinalStates() []State {
	if c.status == ConverterUnfolded {
		return c.lastDst.Clone()
	}
	out := make([]State, c.lastDst.Len())
	last := c.lastDst.Get(0)
	for i := range out {
		out[i] = last
	}
	return out
}

// FirstStates returns the deferred first-use state of each subresource,
// StateUnknown where the pass never touched it.
func (c *StateConverter) FirstStates() []State { return c.firstDst.Clone() }

// Touched reports whether subresource i was requested this pass.
func (c *StateConverter) Touched(i int) bool {
	if c.status == ConverterUnfolded {
		return !c.lastDst.Get(i).IsUnknown()
	}
	return !c.lastDst.Get(0).IsUnknown()
}

// unfold broadcasts the representative state so every slot is meaningful.
func (c *StateConverter) unfold() {
	if c.status == ConverterFolded {
		c.lastDst.Fill(c.lastDst.Get(0))
	}
	c.status = ConverterUnfolded
}

func (c *StateConverter) tryFold() {
	if smallvec.Uniform(&c.lastDst) {
		c.status = ConverterFolded
	}
}

func (c *StateConverter) consume() { c.status = ConverterConsumed }

func (c *StateConverter) checkLive(op string) {
	if c.status == ConverterConsumed {
		violate(op, "converter for %s was consumed", c.res)
	}
}
