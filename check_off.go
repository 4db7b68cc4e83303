// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build restrack_nocheck

package restrack

// checksEnabled is false in release builds; violations are undefined behavior.
const checksEnabled = false
