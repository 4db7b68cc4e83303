// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package halbarrier

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/restrack"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

// createNoopDevice creates a noop device for testing.
func createNoopDevice(t *testing.T) hal.Device {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() {
		openDev.Device.Destroy()
		instance.Destroy()
	})
	return openDev.Device
}

func createTexture(t *testing.T, device hal.Device, mips uint32) hal.Texture {
	t.Helper()
	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         "test_texture",
		Size:          hal.Extent3D{Width: 64, Height: 64, DepthOrArrayLayers: 1},
		MipLevelCount: mips,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatBGRA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		t.Fatalf("CreateTexture failed: %v", err)
	}
	t.Cleanup(func() { device.DestroyTexture(tex) })
	return tex
}

func createBuffer(t *testing.T, device hal.Device) hal.Buffer {
	t.Helper()
	buf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: "test_buffer",
		Size:  256,
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		t.Fatalf("CreateBuffer failed: %v", err)
	}
	t.Cleanup(func() { device.DestroyBuffer(buf) })
	return buf
}

// captureEncoder records the barriers passed to it and forwards everything
// else to the wrapped encoder.
type captureEncoder struct {
	hal.CommandEncoder
	textures []hal.TextureBarrier
	buffers  []hal.BufferBarrier
}

func (e *captureEncoder) TransitionTextures(b []hal.TextureBarrier) {
	e.textures = append(e.textures, b...)
	e.CommandEncoder.TransitionTextures(b)
}

func (e *captureEncoder) TransitionBuffers(b []hal.BufferBarrier) {
	e.buffers = append(e.buffers, b...)
	e.CommandEncoder.TransitionBuffers(b)
}

func TestTextureUsage(t *testing.T) {
	tests := []struct {
		state restrack.State
		want  gputypes.TextureUsage
	}{
		{restrack.StateCommon, 0},
		{restrack.StateUnknown, 0},
		{restrack.StateRenderTarget, gputypes.TextureUsageRenderAttachment},
		{restrack.StateDepthWrite, gputypes.TextureUsageRenderAttachment},
		{restrack.StateCopyDest, gputypes.TextureUsageCopyDst},
		{restrack.StateCopySource, gputypes.TextureUsageCopySrc},
		{restrack.StateUnorderedAccess, gputypes.TextureUsageStorageBinding},
		{restrack.StateShaderResource, gputypes.TextureUsageTextureBinding},
		{restrack.StatePixelShaderResource | restrack.StateCopySource,
			gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopySrc},
	}
	for _, tt := range tests {
		if got := TextureUsage(tt.state); got != tt.want {
			t.Errorf("TextureUsage(%s) = %v, want %v", tt.state, got, tt.want)
		}
	}
}

func TestBufferUsage(t *testing.T) {
	tests := []struct {
		state restrack.State
		want  gputypes.BufferUsage
	}{
		{restrack.StateCommon, 0},
		{restrack.StateUnknown, 0},
		{restrack.StateCopyDest, gputypes.BufferUsageCopyDst},
		{restrack.StateVertexAndConstantBuffer, gputypes.BufferUsageVertex | gputypes.BufferUsageUniform},
		{restrack.StateIndexBuffer, gputypes.BufferUsageIndex},
		{restrack.StateIndirectArgument, gputypes.BufferUsageIndirect},
		{restrack.StateUnorderedAccess, gputypes.BufferUsageStorage},
		{restrack.StateNonPixelShaderResource, gputypes.BufferUsageStorage},
		{restrack.StateCopySource | restrack.StateIndexBuffer,
			gputypes.BufferUsageCopySrc | gputypes.BufferUsageIndex},
	}
	for _, tt := range tests {
		if got := BufferUsage(tt.state); got != tt.want {
			t.Errorf("BufferUsage(%s) = %v, want %v", tt.state, got, tt.want)
		}
	}
}

func TestTranslateTextureRanges(t *testing.T) {
	device := createNoopDevice(t)
	dev := restrack.NewDevice()
	const mips, layers = 4, 2
	res := dev.OnResourceCreated(mips*layers, false, restrack.StateCommon)

	bind := NewBindings()
	if err := bind.BindTexture(res.Handle, createTexture(t, device, mips), mips, layers); err != nil {
		t.Fatalf("BindTexture() = %v", err)
	}

	whole := restrack.Barrier{Resource: res, Subresource: restrack.AllSubresources,
		From: restrack.StateCopyDest, To: restrack.StatePixelShaderResource}
	single := restrack.Barrier{Resource: res, Subresource: restrack.SubresourceIndex(3, 1, mips),
		From: restrack.StateCommon, To: restrack.StateRenderTarget}

	textures, buffers, err := Translate(bind, []restrack.Barrier{whole, single})
	if err != nil {
		t.Fatalf("Translate() = %v", err)
	}
	if len(buffers) != 0 || len(textures) != 2 {
		t.Fatalf("Translate() = %d textures, %d buffers", len(textures), len(buffers))
	}

	wantWhole := hal.TextureRange{Aspect: gputypes.TextureAspectAll, MipLevelCount: mips, ArrayLayerCount: layers}
	if textures[0].Range != wantWhole {
		t.Errorf("whole range = %+v, want %+v", textures[0].Range, wantWhole)
	}
	if u := textures[0].Usage; u.OldUsage != gputypes.TextureUsageCopyDst || u.NewUsage != gputypes.TextureUsageTextureBinding {
		t.Errorf("whole usage = %+v", u)
	}

	wantSingle := hal.TextureRange{Aspect: gputypes.TextureAspectAll,
		BaseMipLevel: 3, MipLevelCount: 1, BaseArrayLayer: 1, ArrayLayerCount: 1}
	if textures[1].Range != wantSingle {
		t.Errorf("single range = %+v, want %+v", textures[1].Range, wantSingle)
	}
	if u := textures[1].Usage; u.OldUsage != 0 || u.NewUsage != gputypes.TextureUsageRenderAttachment {
		t.Errorf("single usage = %+v", u)
	}
}

func TestTranslateDropsSameUsage(t *testing.T) {
	device := createNoopDevice(t)
	dev := restrack.NewDevice()
	res := dev.OnResourceCreated(1, false, restrack.StateCommon)
	bind := NewBindings()
	if err := bind.BindTexture(res.Handle, createTexture(t, device, 1), 1, 1); err != nil {
		t.Fatal(err)
	}

	// Both states are shader reads for WebGPU.
	br := restrack.Barrier{Resource: res, Subresource: restrack.AllSubresources,
		From: restrack.StatePixelShaderResource, To: restrack.StateNonPixelShaderResource}
	textures, _, err := Translate(bind, []restrack.Barrier{br})
	if err != nil {
		t.Fatal(err)
	}
	if len(textures) != 0 {
		t.Errorf("Translate() = %v, want none", textures)
	}
}

func TestTranslateErrors(t *testing.T) {
	device := createNoopDevice(t)
	dev := restrack.NewDevice()
	unbound := dev.OnResourceCreated(1, true, restrack.StateCommon)
	tex := dev.OnResourceCreated(6, false, restrack.StateCommon)

	bind := NewBindings()
	if err := bind.BindTexture(tex.Handle, createTexture(t, device, 2), 2, 2); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		br   restrack.Barrier
		want error
	}{
		{"unbound", restrack.Barrier{Resource: unbound, Subresource: restrack.AllSubresources,
			From: restrack.StateCommon, To: restrack.StateCopyDest}, ErrUnbound},
		{"layout", restrack.Barrier{Resource: tex, Subresource: 0,
			From: restrack.StateCommon, To: restrack.StateCopyDest}, ErrLayout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Translate(bind, []restrack.Barrier{tt.br})
			if !errors.Is(err, tt.want) {
				t.Errorf("Translate() = %v, want %v", err, tt.want)
			}
		})
	}

	if err := bind.BindTexture(tex.Handle, createTexture(t, device, 1), 0, 1); !errors.Is(err, ErrLayout) {
		t.Errorf("BindTexture(0 mips) = %v, want ErrLayout", err)
	}
}

func TestBindingsRebind(t *testing.T) {
	device := createNoopDevice(t)
	dev := restrack.NewDevice()
	res := dev.OnResourceCreated(1, true, restrack.StateCommon)

	bind := NewBindings()
	if err := bind.BindTexture(res.Handle, createTexture(t, device, 1), 1, 1); err != nil {
		t.Fatal(err)
	}
	if err := bind.BindBuffer(res.Handle, createBuffer(t, device)); err != nil {
		t.Fatal(err)
	}
	if bind.Len() != 1 {
		t.Errorf("Len() = %d after rebinding, want 1", bind.Len())
	}
	br := restrack.Barrier{Resource: res, Subresource: restrack.AllSubresources,
		From: restrack.StateCopyDest, To: restrack.StateVertexAndConstantBuffer}
	textures, buffers, err := Translate(bind, []restrack.Barrier{br})
	if err != nil || len(textures) != 0 || len(buffers) != 1 {
		t.Fatalf("Translate() = %d textures, %d buffers, %v", len(textures), len(buffers), err)
	}

	bind.Unbind(res.Handle)
	if bind.Len() != 0 {
		t.Errorf("Len() = %d after Unbind", bind.Len())
	}
	if _, _, err := Translate(bind, []restrack.Barrier{br}); !errors.Is(err, ErrUnbound) {
		t.Errorf("Translate() after Unbind = %v, want ErrUnbound", err)
	}
}

func TestRecordPassBarriers(t *testing.T) {
	device := createNoopDevice(t)
	dev := restrack.NewDevice()
	tex := dev.OnResourceCreated(1, false, restrack.StateCopyDest)
	buf := dev.OnResourceCreated(1, true, restrack.StateCopyDest)

	bind := NewBindings()
	if err := bind.BindTexture(tex.Handle, createTexture(t, device, 1), 1, 1); err != nil {
		t.Fatal(err)
	}
	if err := bind.BindBuffer(buf.Handle, createBuffer(t, device)); err != nil {
		t.Fatal(err)
	}

	inner, err := device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "test_encoder"})
	if err != nil {
		t.Fatalf("CreateCommandEncoder failed: %v", err)
	}
	if err := inner.BeginEncoding("test_pass"); err != nil {
		t.Fatalf("BeginEncoding failed: %v", err)
	}
	enc := &captureEncoder{CommandEncoder: inner}

	pass := dev.NewTracker(restrack.WithTrackerLabel("upload"))
	pass.RequireState(buf, restrack.StateCopyDest)
	if err := Record(enc, bind, pass.RequireState(buf, restrack.StateVertexAndConstantBuffer)); err != nil {
		t.Fatalf("Record() = %v", err)
	}
	pass.RequireState(tex, restrack.StatePixelShaderResource)
	pre := pass.BuildPreTransitions()
	if err := Record(enc, bind, pre); err != nil {
		t.Fatalf("Record(pre) = %v", err)
	}
	pass.StopTracking(false)

	if len(enc.buffers) != 1 {
		t.Fatalf("recorded %d buffer barriers, want 1", len(enc.buffers))
	}
	if u := enc.buffers[0].Usage; u.OldUsage != gputypes.BufferUsageCopyDst ||
		u.NewUsage != gputypes.BufferUsageVertex|gputypes.BufferUsageUniform {
		t.Errorf("buffer usage = %+v", u)
	}
	// The buffer was created in COPY_DEST and needs no pre-transition.
	if len(enc.textures) != 1 {
		t.Fatalf("recorded %d texture barriers, want 1", len(enc.textures))
	}
	if u := enc.textures[0].Usage; u.OldUsage != gputypes.TextureUsageCopyDst ||
		u.NewUsage != gputypes.TextureUsageTextureBinding {
		t.Errorf("texture usage = %+v", u)
	}

	cmd, err := enc.EndEncoding()
	if err != nil {
		t.Fatalf("EndEncoding failed: %v", err)
	}
	device.FreeCommandBuffer(cmd)
}

func TestEncode(t *testing.T) {
	device := createNoopDevice(t)
	dev := restrack.NewDevice()
	res := dev.OnResourceCreated(1, false, restrack.StateCommon)
	bind := NewBindings()
	if err := bind.BindTexture(res.Handle, createTexture(t, device, 1), 1, 1); err != nil {
		t.Fatal(err)
	}

	cmd, err := Encode(device, "empty", bind, nil)
	if err != nil || cmd != nil {
		t.Fatalf("Encode(nil) = %v, %v; want nil, nil", cmd, err)
	}

	br := restrack.Barrier{Resource: res, Subresource: restrack.AllSubresources,
		From: restrack.StateCommon, To: restrack.StateRenderTarget}
	cmd, err = Encode(device, "pre", bind, []restrack.Barrier{br})
	if err != nil {
		t.Fatalf("Encode() = %v", err)
	}
	if cmd == nil {
		t.Fatal("Encode() returned nil command buffer")
	}
	device.FreeCommandBuffer(cmd)

	bind.Unbind(res.Handle)
	if _, err := Encode(device, "pre", bind, []restrack.Barrier{br}); !errors.Is(err, ErrUnbound) {
		t.Errorf("Encode() unbound = %v, want ErrUnbound", err)
	}
}

var errEndEncoding = errors.New("end encoding failed")

// endFailDevice hands out encoders whose EndEncoding fails.
type endFailDevice struct {
	hal.Device
	discarded int
}

func (d *endFailDevice) CreateCommandEncoder(desc *hal.CommandEncoderDescriptor) (hal.CommandEncoder, error) {
	enc, err := d.Device.CreateCommandEncoder(desc)
	if err != nil {
		return nil, err
	}
	return &endFailEncoder{CommandEncoder: enc, dev: d}, nil
}

type endFailEncoder struct {
	hal.CommandEncoder
	dev *endFailDevice
}

func (e *endFailEncoder) EndEncoding() (hal.CommandBuffer, error) { return nil, errEndEncoding }

func (e *endFailEncoder) DiscardEncoding() {
	e.dev.discarded++
	e.CommandEncoder.DiscardEncoding()
}

func TestEncodeDiscardsOnEndFailure(t *testing.T) {
	device := &endFailDevice{Device: createNoopDevice(t)}
	dev := restrack.NewDevice()
	res := dev.OnResourceCreated(1, false, restrack.StateCommon)
	bind := NewBindings()
	if err := bind.BindTexture(res.Handle, createTexture(t, device, 1), 1, 1); err != nil {
		t.Fatal(err)
	}

	br := restrack.Barrier{Resource: res, Subresource: restrack.AllSubresources,
		From: restrack.StateCommon, To: restrack.StateRenderTarget}
	cmd, err := Encode(device, "pre", bind, []restrack.Barrier{br})
	if !errors.Is(err, errEndEncoding) || cmd != nil {
		t.Fatalf("Encode() = %v, %v; want nil, errEndEncoding", cmd, err)
	}
	if device.discarded != 1 {
		t.Errorf("DiscardEncoding called %d times, want 1", device.discarded)
	}

	// A translation failure discards too.
	bind.Unbind(res.Handle)
	if _, err := Encode(device, "pre", bind, []restrack.Barrier{br}); !errors.Is(err, ErrUnbound) {
		t.Fatalf("Encode() unbound = %v, want ErrUnbound", err)
	}
	if device.discarded != 2 {
		t.Errorf("DiscardEncoding called %d times, want 2", device.discarded)
	}
}
