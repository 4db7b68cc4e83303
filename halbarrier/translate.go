// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package halbarrier

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/restrack"
	"github.com/gogpu/wgpu/hal"
)

// Translate converts barriers into HAL texture and buffer barriers.
//
// Buffers have a single subresource, so their selector is ignored. A texture
// barrier on one subresource covers exactly that mip level and array layer.
// Barriers whose two states map to the same usage are dropped.
func Translate(b *Bindings, barriers []restrack.Barrier) ([]hal.TextureBarrier, []hal.BufferBarrier, error) {
	var (
		textures []hal.TextureBarrier
		buffers  []hal.BufferBarrier
	)
	for _, br := range barriers {
		h := br.Resource.Handle
		if tb, ok := b.texture(h); ok {
			rng, err := textureRange(tb, br)
			if err != nil {
				return nil, nil, err
			}
			from, to := TextureUsage(br.From), TextureUsage(br.To)
			if from == to {
				continue
			}
			textures = append(textures, hal.TextureBarrier{
				Texture: tb.tex,
				Range:   rng,
				Usage:   hal.TextureUsageTransition{OldUsage: from, NewUsage: to},
			})
			continue
		}
		if buf, ok := b.buffer(h); ok {
			from, to := BufferUsage(br.From), BufferUsage(br.To)
			if from == to {
				continue
			}
			buffers = append(buffers, hal.BufferBarrier{
				Buffer: buf,
				Usage:  hal.BufferUsageTransition{OldUsage: from, NewUsage: to},
			})
			continue
		}
		return nil, nil, fmt.Errorf("translate %v: %w", br.Resource, ErrUnbound)
	}
	return textures, buffers, nil
}

func textureRange(tb textureBinding, br restrack.Barrier) (hal.TextureRange, error) {
	total := tb.mipLevels * tb.layers
	if br.Resource.SubresourceCount != total {
		return hal.TextureRange{}, fmt.Errorf("translate %v bound as %d mips x %d layers: %w",
			br.Resource, tb.mipLevels, tb.layers, ErrLayout)
	}
	if br.IsAll() {
		return hal.TextureRange{
			Aspect:          gputypes.TextureAspectAll,
			MipLevelCount:   uint32(tb.mipLevels),
			ArrayLayerCount: uint32(tb.layers),
		}, nil
	}
	if br.Subresource < 0 || br.Subresource >= total {
		return hal.TextureRange{}, fmt.Errorf("translate %v subresource %d: %w", br.Resource, br.Subresource, ErrLayout)
	}
	mip, layer := restrack.SplitSubresource(br.Subresource, tb.mipLevels)
	return hal.TextureRange{
		Aspect:          gputypes.TextureAspectAll,
		BaseMipLevel:    uint32(mip),
		MipLevelCount:   1,
		BaseArrayLayer:  uint32(layer),
		ArrayLayerCount: 1,
	}, nil
}
