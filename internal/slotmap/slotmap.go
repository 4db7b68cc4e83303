// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package slotmap implements a dense, index-addressed store whose keys carry
// a generation counter, so a key that outlived its entry is rejected instead
// of silently resolving to whatever reused the slot.
//
// A slot whose generation is exhausted after 2^31 reuses is retired and
// never handed out again, so no key ever matches a later entry.
//
// Map is not safe for concurrent use; callers provide locking.
package slotmap

import "math"

// Key identifies an entry. The zero Key never refers to a live entry.
type Key struct {
	Index      uint32
	Generation uint32
}

// IsZero reports whether k is the zero key.
func (k Key) IsZero() bool { return k.Generation == 0 }

type slot[T any] struct {
	gen  uint32 // odd while occupied
	next int    // free list link, -1 terminates
	val  T
}

// Map stores values of type T.
type Map[T any] struct {
	slots []slot[T]
	free  int
	live  int
}

// New returns an empty map with room for capacity entries.
func New[T any](capacity int) *Map[T] {
	return &Map[T]{
		slots: make([]slot[T], 0, capacity),
		free:  -1,
	}
}

// Insert stores v and returns its key.
func (m *Map[T]) Insert(v T) Key {
	var idx int
	if m.free >= 0 {
		idx = m.free
		m.free = m.slots[idx].next
	} else {
		idx = len(m.slots)
		m.slots = append(m.slots, slot[T]{})
	}
	s := &m.slots[idx]
	s.gen++
	s.next = -1
	s.val = v
	m.live++
	//nolint:gosec // G115: slot count is bounded by memory long before 2^32
	return Key{Index: uint32(idx), Generation: s.gen}
}

// Get returns the value stored under k.
func (m *Map[T]) Get(k Key) (T, bool) {
	if s := m.lookup(k); s != nil {
		return s.val, true
	}
	var zero T
	return zero, false
}

// Contains reports whether k refers to a live entry.
func (m *Map[T]) Contains(k Key) bool { return m.lookup(k) != nil }

// Remove deletes the entry for k and returns its value.
// The slot's generation advances, so k and every copy of it become stale.
// A slot at the last generation is retired instead of reused.
func (m *Map[T]) Remove(k Key) (T, bool) {
	s := m.lookup(k)
	var zero T
	if s == nil {
		return zero, false
	}
	v := s.val
	s.val = zero
	m.live--
	if s.gen == math.MaxUint32 {
		s.gen-- // even, matches no key; kept off the free list
		return v, true
	}
	s.gen++
	s.next = m.free
	m.free = int(k.Index)
	return v, true
}

// Len returns the number of live entries.
func (m *Map[T]) Len() int { return m.live }

// Cap returns the number of slots ever allocated.
func (m *Map[T]) Cap() int { return len(m.slots) }

// Range calls fn for every live entry in index order until fn returns false.
func (m *Map[T]) Range(fn func(Key, T) bool) {
	for i := range m.slots {
		s := &m.slots[i]
		if s.gen&1 == 0 {
			continue
		}
		//nolint:gosec // G115: see Insert
		if !fn(Key{Index: uint32(i), Generation: s.gen}, s.val) {
			return
		}
	}
}

func (m *Map[T]) lookup(k Key) *slot[T] {
	if k.Generation&1 == 0 || int(k.Index) >= len(m.slots) {
		return nil
	}
	s := &m.slots[k.Index]
	if s.gen != k.Generation {
		return nil
	}
	return s
}
