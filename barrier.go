// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package restrack

import "fmt"

// Barrier is an explicit transition the caller must place in the command
// stream. The tracker keeps no record of the barriers it hands out.
//
// A From of StateUnknown means the predecessor could not be proven; the
// transition must not rely on prior contents (Vulkan's undefined layout).
type Barrier struct {
	Resource    GpuResource
	Subresource int
	From        State
	To          State
}

// IsAll reports whether the barrier covers the whole resource.
func (b Barrier) IsAll() bool { return b.Subresource == AllSubresources }

func (b Barrier) String() string {
	return fmt.Sprintf("%s[%s] %s -> %s", b.Resource.Handle, subresourceString(b.Subresource), b.From, b.To)
}

func barrierFrom(res GpuResource, c StateConversion) Barrier {
	return Barrier{Resource: res, Subresource: c.Subresource, From: c.From, To: c.To}
}

func appendBarriers(dst []Barrier, res GpuResource, convs []StateConversion) []Barrier {
	for _, c := range convs {
		dst = append(dst, barrierFrom(res, c))
	}
	return dst
}
