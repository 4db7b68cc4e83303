// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package restrack tracks GPU resource usage states and synthesizes the
// transition barriers a renderer must record.
//
// # Overview
//
// Every buffer and texture is registered with a [Table] when it is created.
// The table holds the authoritative state of each subresource (mip level
// and array layer) between passes. While a pass is recorded, a [Tracker]
// answers "what barriers do I need before using this resource as X?" and
// keeps a private [StateConverter] per resource.
//
// The predecessor state of a resource's first use in a pass is usually not
// known while recording: another pass recorded in parallel may run before
// this one. First uses are therefore deferred and resolved by
// [Tracker.BuildPreTransitions] once submission order is fixed, producing a
// short pre-amble that runs right before the pass.
//
// # Quick Start
//
//	dev := restrack.NewDevice()
//	tex := dev.OnResourceCreated(mipLevels, false, restrack.StateCopyDest)
//
//	pass := dev.NewTracker()
//	record(pass.RequireState(tex, restrack.StatePixelShaderResource))
//	// ... record draws ...
//
//	submit(pass.BuildPreTransitions(), commands)
//	pass.StopTracking(false)
//
// # Implicit promotion
//
// [CanPromote] encodes which transitions need no barrier: read states
// accumulate, depth states and write-to-write changes never promote, and
// textures without simultaneous access may only promote into shader reads
// and copies.
//
// # Folding
//
// A converter keeps a single representative state while every subresource
// agrees, so whole-resource requests cost the same for a buffer and for a
// texture with a deep mip chain. The first per-subresource request unfolds
// it; it folds again as soon as the subresources agree.
//
// # Batching
//
// [Tracker.Join] splices two independently recorded passes into one
// submission and returns the connector barriers that go between them.
//
// # Contract checks
//
// Misuse (unregistered or stale handles, removing a tracked resource,
// recording after BuildPreTransitions, reusing consumed converters) panics
// with a [*ContractViolation]. Build with the restrack_nocheck tag to
// compile the checks out.
package restrack
