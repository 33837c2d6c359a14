// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package dam implements a tiered heap allocator backed directly by
// anonymous OS page mappings rather than the Go runtime's own heap. Small
// requests are served from segregated, fixed-size-class slab pools; medium
// requests from a dynamic first-fit free list; large requests each get a
// dedicated mapping. All three tiers are reachable through four
// operations: Allocate, Free, Reallocate, and ZeroAllocate.
//
// dam is not a replacement for Go's garbage collector and does not
// interoperate with it: pointers it returns are unsafe.Pointer values into
// kernel-managed memory the Go runtime does not scan or move. Callers are
// responsible for calling Free exactly once per live allocation; there is
// no finalizer and no leak detector.
//
// # Tiers
//
// Requests are routed by size:
//
//	Tier     Range                 Strategy
//	────     ─────                 ────────
//	small    1 .. SmallMax          segregated size classes, slab pools
//	general  SmallMax .. GeneralMax first-fit free list, split/coalesce
//	direct   > GeneralMax           one mmap per allocation
//
// # Pool Registry
//
// Every pool dam creates, in any tier, is linked into a single process-wide
// registry (registry.go). Free and Reallocate resolve an arbitrary pointer
// back to its owning pool and tier by walking that registry, which is the
// only list of pools dam keeps.
//
// # Corruption Detection
//
// Every small- and general-tier header carries a magic word distinguishing
// a live allocation from a freed one, so a double free is caught rather than
// corrupting a free list. A direct-tier header carries no magic word; its
// pool is unregistered and unmapped on free.
// General- and direct-tier allocations also carry a trailing canary word,
// checked on free and realloc, to catch writes past the end of the user's
// requested size.
//
// # Concurrency
//
// A single global mutex serializes every operation. dam does not attempt
// lock-free fast paths, per-thread caches, or NUMA-aware placement; nor
// does it compact, rehash, or otherwise move a live allocation once it has
// been handed to the caller.
//
// # Architecture Requirements
//
// This package requires a 64-bit architecture for its pointer-width
// assumptions in header layout and alignment arithmetic.
package dam
