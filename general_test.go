// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dam_test

import (
	"testing"
	"unsafe"

	"code.hybscloud.com/dam"
)

func TestGeneralForwardCoalesceOnGrow(t *testing.T) {
	reset(t)

	a := dam.Allocate(4096)
	b := dam.Allocate(4096)
	if a == nil || b == nil {
		t.Fatal("allocate failed")
	}
	ab := unsafe.Slice((*byte)(a), 4096)
	for i := range ab {
		ab[i] = byte(i)
	}
	dam.Free(b) // frees the block directly after a, making it a coalesce candidate

	grown := dam.Reallocate(a, 8192)
	if grown == nil {
		t.Fatal("in-place grow via forward coalesce failed")
	}
	if grown != a {
		t.Fatalf("grow should absorb the freed forward neighbor in place: got %v, want %v", grown, a)
	}
	// content before the grow point must survive
	data := unsafe.Slice((*byte)(grown), 4096)
	for i, v := range data {
		if v != byte(i) {
			t.Fatalf("byte %d lost across in-place grow: got %d", i, v)
		}
	}
	dam.Free(grown)
}

func TestGeneralSplitOnShrink(t *testing.T) {
	reset(t)
	p := dam.Allocate(8192)
	p = dam.Reallocate(p, 1024) // stays in the general tier
	if p == nil {
		t.Fatal("shrink-in-place returned nil")
	}

	// the split residue should be reusable by a subsequent allocation
	q := dam.Allocate(4096)
	if q == nil {
		t.Fatal("split residue was not reusable")
	}
	dam.Free(p)
	dam.Free(q)
}

func TestGeneralCoalesceNeverCrossesPoolBoundary(t *testing.T) {
	reset(t)
	// Allocate enough general-tier blocks to force pool growth, then free
	// everything; no coalesce should ever touch memory outside its own
	// pool, which would show up as a corrupted header on the next pass.
	var ptrs []unsafe.Pointer
	for i := 0; i < 64; i++ {
		p := dam.Allocate(16 * 1024)
		if p == nil {
			t.Fatalf("allocation %d failed", i)
		}
		ptrs = append(ptrs, p)
	}
	for _, p := range ptrs {
		dam.Free(p)
	}
	s := dam.Stats()
	if s.CorruptionEvents != 0 {
		t.Fatalf("unexpected corruption events: %d", s.CorruptionEvents)
	}
}

func TestGeneralPoolCapExhaustion(t *testing.T) {
	if testing.Short() {
		t.Skip("allocates about 1 GiB of address space")
	}
	reset(t)
	// MaxPools is 10 in the baseline configuration, doubling from
	// InitialPoolSize (1 MiB) each time: total general-tier capacity is
	// bounded at roughly 1 GiB (1+2+...+512 MiB) regardless of how long
	// this loop runs. Allocating well past that must eventually force
	// pool creation to fail, and Allocate must return nil rather than
	// panic or wedge.
	const chunk = 60 * 1024
	var ptrs []unsafe.Pointer
	var sawNil bool
	for i := 0; i < 40000; i++ {
		p := dam.Allocate(chunk)
		if p == nil {
			sawNil = true
			break
		}
		ptrs = append(ptrs, p)
	}
	for _, p := range ptrs {
		dam.Free(p)
	}
	if !sawNil {
		t.Fatal("expected resource exhaustion once MaxPools was reached")
	}
}
