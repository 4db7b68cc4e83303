// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package restrack

import (
	"errors"
	"fmt"
)

// Errors reported by restrack.
var (
	// ErrContractViolation is wrapped by every ContractViolation panic.
	ErrContractViolation = errors.New("restrack: contract violation")

	// ErrResourcesLeaked is returned by Device.Shutdown when resources are
	// still registered.
	ErrResourcesLeaked = errors.New("restrack: resources still registered at shutdown")

	// ErrDeviceShutdown is the reason recorded when a shut-down device is used.
	ErrDeviceShutdown = errors.New("restrack: device has been shut down")

	// ErrStateName is returned by ParseState for an unrecognized name.
	ErrStateName = errors.New("restrack: unknown state name")
)

// ContractViolation is the panic value raised when a caller breaks the
// usage contract: an unregistered or stale resource, removing a resource an
// open pass still references, reusing a consumed converter, or running
// submission steps out of order.
//
// These are programmer errors. Nothing is recovered; checks can be
// compiled out with the restrack_nocheck build tag.
type ContractViolation struct {
	Op  string
	Msg string
}

func (e *ContractViolation) Error() string {
	return fmt.Sprintf("restrack: %s: %s", e.Op, e.Msg)
}

// Unwrap makes errors.Is(v, ErrContractViolation) hold.
func (e *ContractViolation) Unwrap() error { return ErrContractViolation }

// violate panics with a ContractViolation when checks are enabled.
func violate(op, format string, args ...any) {
	if !checksEnabled {
		return
	}
	panic(&ContractViolation{Op: op, Msg: fmt.Sprintf(format, args...)})
}
