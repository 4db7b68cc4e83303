// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package halbarrier

import (
	"fmt"
	"log/slog"

	"github.com/gogpu/restrack"
	"github.com/gogpu/wgpu/hal"
)

// Record translates barriers and records them on enc, which must be
// encoding. Nothing is recorded if translation fails.
func Record(enc hal.CommandEncoder, b *Bindings, barriers []restrack.Barrier) error {
	textures, buffers, err := Translate(b, barriers)
	if err != nil {
		return err
	}
	if len(buffers) > 0 {
		enc.TransitionBuffers(buffers)
	}
	if len(textures) > 0 {
		enc.TransitionTextures(textures)
	}
	Logger().Debug("halbarrier: recorded",
		slog.Int("textures", len(textures)),
		slog.Int("buffers", len(buffers)))
	return nil
}

// Encode records barriers into a command buffer of their own, ready to be
// submitted right before (pre-transitions) or between (join connectors) the
// passes they belong to. It returns a nil buffer when there is nothing to
// record. The caller frees the buffer with device.FreeCommandBuffer.
func Encode(device hal.Device, label string, b *Bindings, barriers []restrack.Barrier) (hal.CommandBuffer, error) {
	if len(barriers) == 0 {
		return nil, nil
	}
	encoder, err := device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: label,
	})
	if err != nil {
		return nil, fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding(label); err != nil {
		return nil, fmt.Errorf("begin encoding: %w", err)
	}
	if err := Record(encoder, b, barriers); err != nil {
		encoder.DiscardEncoding()
		return nil, err
	}
	cmd, err := encoder.EndEncoding()
	if err != nil {
		encoder.DiscardEncoding()
		return nil, fmt.Errorf("end encoding: %w", err)
	}
	return cmd, nil
}
