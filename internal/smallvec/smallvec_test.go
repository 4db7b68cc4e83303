// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package smallvec

import "testing"

func TestMake(t *testing.T) {
	tests := []struct {
		name   string
		n      int
		inline bool
	}{
		{"empty", 0, true},
		{"single", 1, true},
		{"inline cap", InlineCap, true},
		{"heap", InlineCap + 1, false},
		{"deep", 96, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Make(tt.n, 7)
			if v.Len() != tt.n {
				t.Fatalf("Len() = %d, want %d", v.Len(), tt.n)
			}
			if v.Inline() != tt.inline {
				t.Errorf("Inline() = %v, want %v", v.Inline(), tt.inline)
			}
			for i, x := range v.Slice() {
				if x != 7 {
					t.Errorf("element %d = %d, want 7", i, x)
				}
			}
		})
	}
}

func TestSetGet(t *testing.T) {
	for _, n := range []int{4, 20} {
		v := Make(n, 0)
		for i := 0; i < n; i++ {
			v.Set(i, i*3)
		}
		for i := 0; i < n; i++ {
			if got := v.Get(i); got != i*3 {
				t.Errorf("n=%d: Get(%d) = %d, want %d", n, i, got, i*3)
			}
		}
	}
}

func TestResetReusesHeap(t *testing.T) {
	v := Make(32, 1)
	before := &v.Slice()[0]
	v.Reset(16, 2)
	after := &v.Slice()[0]
	if before != after {
		t.Error("Reset to a smaller heap length reallocated")
	}
	if v.Get(15) != 2 {
		t.Errorf("Get(15) = %d, want 2", v.Get(15))
	}

	v.Reset(3, 9)
	if !v.Inline() {
		t.Error("Reset to 3 elements should be inline")
	}
	if v.Get(2) != 9 {
		t.Errorf("Get(2) = %d, want 9", v.Get(2))
	}
}

func TestUniform(t *testing.T) {
	v := Make(5, 4)
	if !Uniform(&v) {
		t.Error("freshly filled vector should be uniform")
	}
	v.Set(3, 1)
	if Uniform(&v) {
		t.Error("vector with a differing element reported uniform")
	}
	var empty Vec[int]
	if !Uniform(&empty) {
		t.Error("empty vector should be uniform")
	}
	if !UniformSlice([]int{2, 2, 2}) || UniformSlice([]int{2, 3}) {
		t.Error("UniformSlice mismatch")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	v := Make(3, 5)
	c := v.Clone()
	c[0] = 0
	if v.Get(0) != 5 {
		t.Error("Clone aliases the vector storage")
	}
}

func TestCopyFromLengthMismatchPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("CopyFrom with mismatched length did not panic")
		}
	}()
	v := Make(2, 0)
	v.CopyFrom([]int{1, 2, 3})
}
