// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package restrack

// CanPromote decides whether moving a resource from before to after needs
// an explicit barrier, and returns the state the resource is in afterward.
//
// An implicit transition accumulates read bits: the normalized state is
// before|after. An explicit transition lands exactly on after.
//
// Explicit transitions are required when:
//   - depth read or depth write is involved on either side and the states differ
//   - before is StateUnknown, so nothing about the predecessor is proven
//   - the write subsets of before and after differ
//   - the resource is neither a buffer nor simultaneous-access and after
//     requests something other than shader reads or copies
//
// Record-time first uses must not be passed here; the converter defers them
// until the predecessor is known.
func CanPromote(before, after State, bufferOrSimultaneous bool) (explicit bool, normalized State) {
	if before == after && !before.IsUnknown() {
		return false, after
	}
	if before.IsDepth() || after.IsDepth() {
		return true, after
	}
	if before.IsUnknown() {
		return true, after
	}
	if before.WriteBits() != after.WriteBits() {
		return true, after
	}
	if !bufferOrSimultaneous && after&^promotableMask != 0 {
		return true, after
	}
	return false, before | after
}
