// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !restrack_nocheck

package restrack

// checksEnabled turns contract violations into panics.
const checksEnabled = true
