// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package halbarrier records restrack barriers on a gogpu/wgpu HAL command
// encoder.
//
// restrack works in terms of handles and D3D12-style states. This package
// resolves handles to HAL textures and buffers through [Bindings], maps states
// onto WebGPU usage flags and emits them with TransitionTextures and
// TransitionBuffers.
//
//	bind := halbarrier.NewBindings()
//	bind.BindTexture(res.Handle, tex, mipLevels, 1)
//
//	pre := pass.BuildPreTransitions()
//	cmd, err := halbarrier.Encode(device, "pre", bind, pre)
//
// The mapping is lossy: several states share one usage flag, and a
// transition between two such states is dropped.
package halbarrier
