// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package restrack

import (
	"fmt"
	"log/slog"
	"sync/atomic"
)

// Device ties a Table's lifetime to explicit device init and shutdown and
// receives resource lifecycle events from the buffer/texture allocator.
//
// Trackers are created from the device so they all share its table.
//
// Device is safe for concurrent use; the trackers it hands out are not.
type Device struct {
	table    *Table
	logger   *slog.Logger
	shutdown atomic.Bool
}

// NewDevice initializes state tracking for one GPU device.
func NewDevice(opts ...Option) *Device {
	o := buildOptions(opts)
	d := &Device{
		table:  NewTable(opts...),
		logger: o.logger,
	}
	d.log().Info("restrack: device initialized", slog.Int("capacity", o.capacity))
	return d
}

func (d *Device) log() *slog.Logger {
	if d.logger != nil {
		return d.logger
	}
	return Logger()
}

// Table returns the device's authoritative state table.
func (d *Device) Table() *Table { return d.table }

// OnResourceCreated registers a new buffer or texture. initial is the state
// it was created in and must not be StateUnknown.
func (d *Device) OnResourceCreated(subresourceCount int, bufferOrSimultaneous bool, initial State) GpuResource {
	return d.Create(ResourceDesc{
		SubresourceCount:     subresourceCount,
		BufferOrSimultaneous: bufferOrSimultaneous,
	}, initial)
}

// Create is OnResourceCreated with a full descriptor.
func (d *Device) Create(desc ResourceDesc, initial State) GpuResource {
	d.checkLive("OnResourceCreated")
	return d.table.Append(desc, initial)
}

// OnResourceDestroyed unregisters res. All GPU work referencing it must have
// retired and no open pass may still track it.
func (d *Device) OnResourceDestroyed(res GpuResource) {
	d.checkLive("OnResourceDestroyed")
	d.table.Remove(res)
}

// NewTracker returns a tracker for one recording pass on this device.
func (d *Device) NewTracker(opts ...TrackerOption) *Tracker {
	d.checkLive("NewTracker")
	return NewTracker(d.table, opts...)
}

// Shutdown ends tracking for the device. It reports ErrResourcesLeaked when
// resources were never destroyed. The device must not be used afterward.
func (d *Device) Shutdown() error {
	if d.shutdown.Swap(true) {
		return nil
	}
	live := d.table.Resources()
	if len(live) == 0 {
		d.log().Info("restrack: device shut down")
		return nil
	}
	for _, r := range live {
		d.log().Warn("restrack: resource leaked", slog.String("resource", r.String()))
	}
	return fmt.Errorf("%w: %d live", ErrResourcesLeaked, len(live))
}

func (d *Device) checkLive(op string) {
	if d.shutdown.Load() {
		violate(op, "%v", ErrDeviceShutdown)
	}
}
