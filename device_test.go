// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package restrack

import (
	"errors"
	"testing"
)

func TestDeviceLifecycle(t *testing.T) {
	dev := NewDevice(WithInitialCapacity(4))
	tex := dev.Create(ResourceDesc{SubresourceCount: 6, Label: "atlas"}, StateCopyDest)
	buf := dev.OnResourceCreated(1, true, StateCommon)

	if got := dev.Table().Live(); got != 2 {
		t.Fatalf("Live() = %d, want 2", got)
	}
	if tex.Label != "atlas" || tex.SubresourceCount != 6 || tex.BufferOrSimultaneous {
		t.Errorf("Create() = %+v", tex)
	}
	if !buf.BufferOrSimultaneous {
		t.Error("buffer not marked BufferOrSimultaneous")
	}

	dev.OnResourceDestroyed(tex)
	dev.OnResourceDestroyed(buf)
	if err := dev.Shutdown(); err != nil {
		t.Errorf("Shutdown() = %v, want nil", err)
	}
}

func TestDeviceShutdownReportsLeaks(t *testing.T) {
	dev := NewDevice()
	dev.OnResourceCreated(1, false, StateCommon)
	dev.OnResourceCreated(3, false, StateRenderTarget)

	err := dev.Shutdown()
	if !errors.Is(err, ErrResourcesLeaked) {
		t.Fatalf("Shutdown() = %v, want ErrResourcesLeaked", err)
	}
	if err := dev.Shutdown(); err != nil {
		t.Errorf("second Shutdown() = %v, want nil", err)
	}
}

func TestDeviceTrackersShareTable(t *testing.T) {
	dev := NewDevice()
	res := dev.OnResourceCreated(1, false, StateCommon)

	a := dev.NewTracker(WithTrackerLabel("a"))
	a.RequireState(res, StateCopyDest)
	a.BuildPreTransitions()
	a.StopTracking(false)

	b := dev.NewTracker(WithTrackerLabel("b"))
	if b.Table() != dev.Table() {
		t.Fatal("tracker built on a different table")
	}
	b.RequireState(res, StatePixelShaderResource)
	pre := b.BuildPreTransitions()
	want := Barrier{Resource: res, Subresource: AllSubresources, From: StateCopyDest, To: StatePixelShaderResource}
	if len(pre) != 1 || pre[0] != want {
		t.Errorf("pre = %v, want [%v]", pre, want)
	}
	b.StopTracking(false)

	dev.OnResourceDestroyed(res)
	if err := dev.Shutdown(); err != nil {
		t.Errorf("Shutdown() = %v", err)
	}
}
