// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package restrack

import (
	"cmp"
	"fmt"

	"github.com/gogpu/restrack/internal/slotmap"
)

// Handle identifies a registered resource. It pairs a slot index with a
// generation counter, so a handle kept past Remove is detected as stale
// rather than aliasing a newer resource in the same slot.
//
// The zero Handle never refers to a resource.
type Handle struct {
	key slotmap.Key
}

// IsZero reports whether h is the zero handle.
func (h Handle) IsZero() bool { return h.key.IsZero() }

// Index returns the slot index of h.
func (h Handle) Index() uint32 { return h.key.Index }

// Generation returns the generation counter of h.
func (h Handle) Generation() uint32 { return h.key.Generation }

func (h Handle) String() string {
	return fmt.Sprintf("res#%d.%d", h.key.Index, h.key.Generation)
}

func (h Handle) compare(o Handle) int {
	if c := cmp.Compare(h.key.Index, o.key.Index); c != 0 {
		return c
	}
	return cmp.Compare(h.key.Generation, o.key.Generation)
}

// ResourceDesc describes a resource at registration time.
type ResourceDesc struct {
	// SubresourceCount is the number of individually tracked slices:
	// mip levels times array layers for textures, 1 for buffers.
	SubresourceCount int

	// BufferOrSimultaneous is set for buffers and for textures created with
	// simultaneous access. It widens which transitions are implicit.
	BufferOrSimultaneous bool

	// Label is an optional debug name.
	Label string
}

// GpuResource is the tracker's view of a buffer or texture. It is a small
// value; the buffer/texture wrapper that owns the GPU object keeps it.
type GpuResource struct {
	Handle               Handle
	SubresourceCount     int
	BufferOrSimultaneous bool
	Label                string
}

func (r GpuResource) String() string {
	if r.Label != "" {
		return fmt.Sprintf("%s(%s)", r.Handle, r.Label)
	}
	return r.Handle.String()
}

// SubresourceIndex returns the flat subresource index of a mip level within
// an array layer. Mips of one layer are contiguous.
func SubresourceIndex(mip, layer, mipLevels int) int {
	return mip + layer*mipLevels
}

// SplitSubresource is the inverse of SubresourceIndex.
func SplitSubresource(index, mipLevels int) (mip, layer int) {
	return index % mipLevels, index / mipLevels
}
