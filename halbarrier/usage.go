// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package halbarrier

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/restrack"
)

// TextureUsage maps a texture state onto WebGPU texture usage flags.
// COMMON and UNKNOWN map to zero, which HAL backends treat as undefined
// contents.
func TextureUsage(s restrack.State) gputypes.TextureUsage {
	if s.IsUnknown() {
		return 0
	}
	var u gputypes.TextureUsage
	if s.Has(restrack.StateRenderTarget) || s.Has(restrack.StateResolveDest) ||
		s.Has(restrack.StateDepthWrite) || s.Has(restrack.StateDepthRead) {
		u |= gputypes.TextureUsageRenderAttachment
	}
	if s.Has(restrack.StateUnorderedAccess) {
		u |= gputypes.TextureUsageStorageBinding
	}
	if s.Has(restrack.StateCopyDest) {
		u |= gputypes.TextureUsageCopyDst
	}
	if s.Has(restrack.StateCopySource) || s.Has(restrack.StateResolveSource) {
		u |= gputypes.TextureUsageCopySrc
	}
	if s.Has(restrack.StatePixelShaderResource) || s.Has(restrack.StateNonPixelShaderResource) {
		u |= gputypes.TextureUsageTextureBinding
	}
	return u
}

// BufferUsage maps a buffer state onto WebGPU buffer usage flags.
func BufferUsage(s restrack.State) gputypes.BufferUsage {
	if s.IsUnknown() {
		return 0
	}
	var u gputypes.BufferUsage
	if s.Has(restrack.StateVertexAndConstantBuffer) {
		u |= gputypes.BufferUsageVertex | gputypes.BufferUsageUniform
	}
	if s.Has(restrack.StateIndexBuffer) {
		u |= gputypes.BufferUsageIndex
	}
	if s.Has(restrack.StateIndirectArgument) {
		u |= gputypes.BufferUsageIndirect
	}
	if s.Has(restrack.StateCopyDest) {
		u |= gputypes.BufferUsageCopyDst
	}
	if s.Has(restrack.StateCopySource) {
		u |= gputypes.BufferUsageCopySrc
	}
	// Shader reads of a buffer go through a read-only storage binding.
	if s.Has(restrack.StateUnorderedAccess) || s.Has(restrack.StateStreamOut) ||
		s.Has(restrack.StatePixelShaderResource) || s.Has(restrack.StateNonPixelShaderResource) {
		u |= gputypes.BufferUsageStorage
	}
	return u
}
