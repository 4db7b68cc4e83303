// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package restrack

import (
	"fmt"
	"math/bits"
	"strconv"
	"strings"
)

// State is the hardware-visible usage a resource is synchronized for.
//
// States are bit flags split into a write subset, whose members are
// mutually exclusive, and a read subset, whose members combine freely.
// StateCommon has no bits set. StateUnknown is a sentinel outside the bit
// space meaning no assumption can be made about the resource.
type State uint32

// Write states. At most one of these is ever active as the result of an
// implicit transition.
const (
	StateRenderTarget State = 1 << iota
	StateDepthWrite
	StateCopyDest
	StateUnorderedAccess
	StateStreamOut
	StateResolveDest

	// Read states.
	StateVertexAndConstantBuffer
	StateIndexBuffer
	StatePixelShaderResource
	StateNonPixelShaderResource
	StateIndirectArgument
	StateCopySource
	StateDepthRead
	StateResolveSource
	StatePresent
)

const (
	// StateCommon is the state with no usage bits: freshly created or
	// decayed resources.
	StateCommon State = 0

	// StateUnknown means "not known in this context". It is never a legal
	// initial state for a resource.
	StateUnknown State = 1 << 31

	// StateShaderResource combines pixel and non-pixel shader reads.
	StateShaderResource = StatePixelShaderResource | StateNonPixelShaderResource

	// StateGenericRead is every read a buffer can be bound for at once.
	StateGenericRead = StateVertexAndConstantBuffer | StateIndexBuffer |
		StateShaderResource | StateIndirectArgument | StateCopySource
)

const (
	writeMask = StateRenderTarget | StateDepthWrite | StateCopyDest |
		StateUnorderedAccess | StateStreamOut | StateResolveDest
	readMask = StateVertexAndConstantBuffer | StateIndexBuffer |
		StatePixelShaderResource | StateNonPixelShaderResource |
		StateIndirectArgument | StateCopySource | StateDepthRead |
		StateResolveSource | StatePresent
	depthMask = StateDepthWrite | StateDepthRead

	// promotableMask lists what a texture without simultaneous access may
	// reach from common without a barrier.
	promotableMask = StateShaderResource | StateCopySource | StateCopyDest
)

var stateNames = [...]struct {
	bit  State
	name string
}{
	{StateRenderTarget, "RENDER_TARGET"},
	{StateDepthWrite, "DEPTH_WRITE"},
	{StateCopyDest, "COPY_DEST"},
	{StateUnorderedAccess, "UNORDERED_ACCESS"},
	{StateStreamOut, "STREAM_OUT"},
	{StateResolveDest, "RESOLVE_DEST"},
	{StateVertexAndConstantBuffer, "VERTEX_AND_CONSTANT_BUFFER"},
	{StateIndexBuffer, "INDEX_BUFFER"},
	{StatePixelShaderResource, "PIXEL_SHADER_RESOURCE"},
	{StateNonPixelShaderResource, "NON_PIXEL_SHADER_RESOURCE"},
	{StateIndirectArgument, "INDIRECT_ARGUMENT"},
	{StateCopySource, "COPY_SOURCE"},
	{StateDepthRead, "DEPTH_READ"},
	{StateResolveSource, "RESOLVE_SOURCE"},
	{StatePresent, "PRESENT"},
}

// WriteBits returns the write subset of s.
func (s State) WriteBits() State {
	if s.IsUnknown() {
		return 0
	}
	return s & writeMask
}

// ReadBits returns the read subset of s.
func (s State) ReadBits() State {
	if s.IsUnknown() {
		return 0
	}
	return s & readMask
}

// IsUnknown reports whether s is the StateUnknown sentinel.
func (s State) IsUnknown() bool { return s == StateUnknown }

// IsWrite reports whether s contains a write state.
func (s State) IsWrite() bool { return s.WriteBits() != 0 }

// IsRead reports whether s is a known state without write bits.
func (s State) IsRead() bool { return !s.IsUnknown() && s.WriteBits() == 0 }

// IsDepth reports whether s touches depth read or depth write.
func (s State) IsDepth() bool { return !s.IsUnknown() && s&depthMask != 0 }

// Has reports whether every bit of other is set in s.
func (s State) Has(other State) bool { return s&other == other }

// Valid reports whether s is a state a resource can actually be in:
// known, no bits outside the vocabulary, at most one write bit.
func (s State) Valid() bool {
	if s.IsUnknown() || s&^(writeMask|readMask) != 0 {
		return false
	}
	return bits.OnesCount32(uint32(s&writeMask)) <= 1
}

// String returns the bit names joined with "|", for example
// "COPY_DEST" or "PIXEL_SHADER_RESOURCE|NON_PIXEL_SHADER_RESOURCE".
func (s State) String() string {
	switch s {
	case StateUnknown:
		return "UNKNOWN"
	case StateCommon:
		return "COMMON"
	}
	var b strings.Builder
	rest := s
	for _, n := range stateNames {
		if s&n.bit == 0 {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('|')
		}
		b.WriteString(n.name)
		rest &^= n.bit
	}
	if rest != 0 {
		if b.Len() > 0 {
			b.WriteByte('|')
		}
		b.WriteString("0x")
		b.WriteString(strconv.FormatUint(uint64(rest), 16))
	}
	return b.String()
}

// ParseState parses the String form of a state, including "COMMON",
// "UNKNOWN", the "GENERIC_READ" and "SHADER_RESOURCE" aliases and
// "|"-separated combinations. Names are case-insensitive.
func ParseState(text string) (State, error) {
	switch strings.ToUpper(strings.TrimSpace(text)) {
	case "UNKNOWN":
		return StateUnknown, nil
	case "COMMON", "":
		return StateCommon, nil
	}
	var s State
	for _, part := range strings.Split(text, "|") {
		part = strings.ToUpper(strings.TrimSpace(part))
		bit, ok := lookupStateName(part)
		if !ok {
			return 0, fmt.Errorf("%w: %q", ErrStateName, part)
		}
		s |= bit
	}
	return s, nil
}

func lookupStateName(name string) (State, bool) {
	switch name {
	case "COMMON":
		return StateCommon, true
	case "SHADER_RESOURCE":
		return StateShaderResource, true
	case "GENERIC_READ":
		return StateGenericRead, true
	}
	for _, n := range stateNames {
		if n.name == name {
			return n.bit, true
		}
	}
	return 0, false
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *State) UnmarshalText(text []byte) error {
	v, err := ParseState(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
