// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dam_test

import (
	"testing"
	"unsafe"

	"code.hybscloud.com/dam"
)

func TestDirectGrowAlwaysReallocates(t *testing.T) {
	reset(t)
	p := dam.Allocate(200 * 1024)
	q := dam.Reallocate(p, 400*1024)
	if q == nil {
		t.Fatal("direct grow returned nil")
	}
	dam.Free(q)
}

func TestDirectShrinkWithinFractionKeepsPointer(t *testing.T) {
	reset(t)
	p := dam.Allocate(400 * 1024)
	// 300 KiB / 400 KiB = 0.75, at or above ShrinkFraction (0.5), so the
	// pointer must be kept rather than reallocated.
	q := dam.Reallocate(p, 300*1024)
	if q != p {
		t.Fatalf("shrink within ShrinkFraction should keep the pointer: got %v, want %v", q, p)
	}
	dam.Free(q)
}

func TestDirectShrinkBelowFractionReallocates(t *testing.T) {
	reset(t)
	p := dam.Allocate(400 * 1024)
	// 100 KiB / 400 KiB = 0.25, below ShrinkFraction, so this must
	// reallocate into a new, smaller mapping.
	q := dam.Reallocate(p, 100*1024)
	if q == nil {
		t.Fatal("direct shrink below fraction returned nil")
	}
	dam.Free(q)
}

func TestDirectToGeneralShrinkMovesDownATier(t *testing.T) {
	reset(t)
	p := dam.Allocate(200 * 1024)
	q := dam.Reallocate(p, 4096)
	if q == nil {
		t.Fatal("direct->general shrink returned nil")
	}
	dam.Free(q)
}

func TestCanaryViolationIsDetectedNotFatal(t *testing.T) {
	reset(t)
	dam.ResetStats()

	p := dam.Allocate(4096) // general tier: carries a trailing canary
	// Corrupt one byte past the requested 4096 bytes of payload — inside
	// the canary word the general/direct tiers append after user data.
	b := unsafe.Slice((*byte)(p), 4097)
	b[4096] = 0xFF

	dam.Free(p) // must log the violation, not panic

	s := dam.Stats()
	if s.CorruptionEvents == 0 {
		t.Fatal("expected a recorded corruption event after canary overwrite")
	}
}
