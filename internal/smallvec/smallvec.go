// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package smallvec provides a fixed-length vector that keeps short
// contents inline and only allocates for long ones.
//
// Per-subresource state arrays are usually tiny (one slot for buffers, a
// handful of mips for most textures), so the common case never touches the
// heap. Deep mip chains and texture arrays fall back to a heap slice.
package smallvec

// InlineCap is the number of elements stored without allocation.
const InlineCap = 8

// Vec is a fixed-length vector of T. The zero value has length 0.
//
// A Vec must not be copied after Slice has been called on it, because the
// returned slice may alias the inline array.
type Vec[T any] struct {
	n      int
	inline [InlineCap]T
	heap   []T
}

// Make returns a Vec of length n with every element set to fill.
func Make[T any](n int, fill T) Vec[T] {
	var v Vec[T]
	v.Reset(n, fill)
	return v
}

// Reset resizes v to n elements and sets every element to fill.
// Heap storage is reused when it is large enough.
func (v *Vec[T]) Reset(n int, fill T) {
	if n < 0 {
		panic("smallvec: negative length")
	}
	v.n = n
	if n > InlineCap {
		if cap(v.heap) < n {
			v.heap = make([]T, n)
		}
		v.heap = v.heap[:n]
	} else {
		v.heap = v.heap[:0]
	}
	v.Fill(fill)
}

// Len returns the number of elements.
func (v *Vec[T]) Len() int { return v.n }

// Slice returns the elements as a slice aliasing v's storage.
func (v *Vec[T]) Slice() []T {
	if v.n > InlineCap {
		return v.heap[:v.n]
	}
	return v.inline[:v.n]
}

// Get returns element i.
func (v *Vec[T]) Get(i int) T { return v.Slice()[i] }

// Set stores x at index i.
func (v *Vec[T]) Set(i int, x T) { v.Slice()[i] = x }

// Fill sets every element to x.
func (v *Vec[T]) Fill(x T) {
	s := v.Slice()
	for i := range s {
		s[i] = x
	}
}

// CopyFrom copies src into v. Lengths must match.
func (v *Vec[T]) CopyFrom(src []T) {
	if len(src) != v.n {
		panic("smallvec: length mismatch")
	}
	copy(v.Slice(), src)
}

// Clone returns a newly allocated copy of the elements.
func (v *Vec[T]) Clone() []T {
	out := make([]T, v.n)
	copy(out, v.Slice())
	return out
}

// Inline reports whether the elements are stored without a heap allocation.
func (v *Vec[T]) Inline() bool { return v.n <= InlineCap }

// Uniform reports whether every element equals the first one.
// An empty vector is uniform.
func Uniform[T comparable](v *Vec[T]) bool {
	s := v.Slice()
	for i := 1; i < len(s); i++ {
		if s[i] != s[0] {
			return false
		}
	}
	return true
}

// UniformSlice is Uniform for a plain slice.
func UniformSlice[T comparable](s []T) bool {
	for i := 1; i < len(s); i++ {
		if s[i] != s[0] {
			return false
		}
	}
	return true
}
