// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package halbarrier

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/restrack"
	"github.com/gogpu/wgpu/hal"
)

var (
	// ErrUnbound is returned when a barrier names a resource with no HAL
	// object bound to its handle.
	ErrUnbound = errors.New("halbarrier: resource not bound")

	// ErrLayout is returned when a texture binding does not cover the
	// resource's subresources.
	ErrLayout = errors.New("halbarrier: subresource layout mismatch")
)

type textureBinding struct {
	tex       hal.Texture
	mipLevels int
	layers    int
}

// Bindings maps restrack handles to the HAL objects they describe.
// It is safe for concurrent use.
type Bindings struct {
	mu       sync.RWMutex
	textures map[restrack.Handle]textureBinding
	buffers  map[restrack.Handle]hal.Buffer
}

// NewBindings returns an empty binding table.
func NewBindings() *Bindings {
	return &Bindings{
		textures: make(map[restrack.Handle]textureBinding),
		buffers:  make(map[restrack.Handle]hal.Buffer),
	}
}

// BindTexture associates h with tex. Subresource i of the tracked resource
// is mip level i%mipLevels of array layer i/mipLevels.
func (b *Bindings) BindTexture(h restrack.Handle, tex hal.Texture, mipLevels, layers int) error {
	if tex == nil {
		return fmt.Errorf("halbarrier: bind texture %v: nil texture", h)
	}
	if mipLevels < 1 || layers < 1 {
		return fmt.Errorf("bind texture %v with %d mips x %d layers: %w", h, mipLevels, layers, ErrLayout)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.buffers, h)
	b.textures[h] = textureBinding{tex: tex, mipLevels: mipLevels, layers: layers}
	return nil
}

// BindBuffer associates h with buf.
func (b *Bindings) BindBuffer(h restrack.Handle, buf hal.Buffer) error {
	if buf == nil {
		return fmt.Errorf("halbarrier: bind buffer %v: nil buffer", h)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.textures, h)
	b.buffers[h] = buf
	return nil
}

// Unbind drops whatever h was bound to.
func (b *Bindings) Unbind(h restrack.Handle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.textures, h)
	delete(b.buffers, h)
}

// Len returns the number of bound handles.
func (b *Bindings) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.textures) + len(b.buffers)
}

func (b *Bindings) texture(h restrack.Handle) (textureBinding, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	t, ok := b.textures[h]
	return t, ok
}

func (b *Bindings) buffer(h restrack.Handle) (hal.Buffer, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	buf, ok := b.buffers[h]
	return buf, ok
}
