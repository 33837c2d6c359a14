// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dam

import "unsafe"

// generalBlock is a boundary-tag header in a general-tier pool's
// address-ordered, doubly-linked block list. size excludes the header
// itself and, when free, is exactly the usable payload span; when
// allocated, userSize is the caller's requested size, the canary sits at
// alignedSize(userSize) bytes past the start of the payload, and the
// difference between size and alignedSize(userSize)+canarySize is internal
// fragmentation: the canary's padding up to alignment plus any residue too
// small to split off.
type generalBlock struct {
	size     uintptr
	userSize uintptr
	next     *generalBlock
	prev     *generalBlock
	magic    uint32
	free     bool
}

var generalBlockSize = alignUp(unsafe.Sizeof(generalBlock{}), alignment)

const canarySize = uintptr(unsafe.Sizeof(uint32(0)))

var generalPoolCount int

func generalBlockAt(addr uintptr) *generalBlock {
	return (*generalBlock)(unsafe.Pointer(addr))
}

func generalBlockData(b *generalBlock) uintptr {
	return uintptr(unsafe.Pointer(b)) + generalBlockSize
}

// alignedSize is the first-fit/split unit for a request of n user bytes:
// the request rounded up to the platform alignment, so that the block
// carved immediately after it — whether a split residue or the next
// allocation in the pool — always starts on an aligned boundary. The
// canary sits at this offset from the payload start, not at the raw
// userSize offset.
func alignedSize(n uintptr) uintptr {
	return alignUp(n, alignment)
}

// createGeneralPool mmaps a new general-tier pool sized to at least
// minRequired bytes of usable space, doubling from the largest existing
// pool as the original's calculate_next_pool_size does, and seeds it with
// one free block spanning the whole usable region.
func createGeneralPool(minRequired uintptr) *poolHeader {
	if generalPoolCount >= MaxPools {
		logf("general tier: MaxPools (%d) reached, refusing new pool", MaxPools)
		return nil
	}

	var largest uintptr
	for cur := registryHead; cur != nil; cur = cur.next {
		if cur.tier == tierGeneral && cur.size > largest {
			largest = cur.size
		}
	}
	size := InitialPoolSize
	if largest > 0 {
		size = largest * 2
	}
	need := alignUp(poolHeaderSize+generalBlockSize+minRequired, PageSize)
	if size < need {
		size = need
	}
	size = alignUp(size, PageSize)

	base, ok := mmapAnon(size)
	if !ok {
		return nil
	}

	p := poolHeaderAt(base)
	p.base = base
	p.size = size
	p.tier = tierGeneral

	first := generalBlockAt(p.dataStart())
	first.size = (base + size) - p.dataStart() - generalBlockSize
	first.free = true
	first.magic = magicFreed
	p.generalHead = first

	registerPool(p)
	generalPoolCount++
	return p
}

// findBlockInPools performs the first-fit search the dispatcher wants,
// scanning every general pool's block list and returning the first free
// block whose usable size can satisfy aligned bytes of user payload plus a
// trailing canary. aligned must already be alignedSize(userSize) — the
// caller aligns, not this function.
func findBlockInPools(aligned uintptr) (*generalBlock, *poolHeader) {
	want := aligned + canarySize
	for p := registryHead; p != nil; p = p.next {
		if p.tier != tierGeneral {
			continue
		}
		searched := uint64(0)
		for b := p.generalHead; b != nil; b = b.next {
			searched++
			if b.free && b.size >= want {
				stats.BlocksSearched += searched
				return b, p
			}
		}
		stats.BlocksSearched += searched
	}
	return nil, nil
}

// splitBlockIfPossible carves a new free block out of the tail of b when
// the residue left behind would be at least MinBlock plus a header, so a
// caller never receives more slack than it must. aligned must already be
// alignedSize(userSize); the canary word after it is padded up to alignment
// too, so the residue block it carves off always starts on an aligned
// boundary.
func splitBlockIfPossible(b *generalBlock, p *poolHeader, aligned uintptr) {
	want := alignUp(aligned+canarySize, alignment)
	if b.size < want+generalBlockSize+MinBlock {
		return
	}

	newAddr := uintptr(unsafe.Pointer(b)) + generalBlockSize + want
	nb := generalBlockAt(newAddr)
	nb.size = b.size - want - generalBlockSize
	nb.free = true
	nb.magic = magicFreed
	nb.prev = b
	nb.next = b.next
	if b.next != nil {
		b.next.prev = nb
	}
	b.next = nb
	b.size = want

	stats.Splits++
}

// coalesceIfPossible merges b with its in-pool free neighbors. It never
// crosses a pool boundary — a neighbor reached by following next/prev is
// only merged when it still lies within p's address range, matching
// general.c's explicit "still inside pool memory..memory+size" guard.
func coalesceIfPossible(b *generalBlock, p *poolHeader) {
	if b.next != nil && b.next.free && p.contains(uintptr(unsafe.Pointer(b.next))) {
		n := b.next
		b.size += generalBlockSize + n.size
		b.next = n.next
		if n.next != nil {
			n.next.prev = b
		}
		stats.Coalesces++
	}
	if b.prev != nil && b.prev.free && p.contains(uintptr(unsafe.Pointer(b.prev))) {
		pr := b.prev
		pr.size += generalBlockSize + b.size
		pr.next = b.next
		if b.next != nil {
			b.next.prev = pr
		}
		stats.Coalesces++
	}
}

func generalAllocateUnlocked(size uintptr) unsafe.Pointer {
	aligned := alignedSize(size)

	b, p := findBlockInPools(aligned)
	if b == nil {
		p = createGeneralPool(aligned)
		if p == nil {
			return nil
		}
		b = p.generalHead
	}

	splitBlockIfPossible(b, p, aligned)
	b.free = false
	b.magic = magicLive
	b.userSize = size

	data := generalBlockData(b)
	writeCanary(data, aligned)
	stats.recordAlloc(uint64(size))
	return unsafe.Pointer(data)
}

func generalBlockFromPtr(p unsafe.Pointer) *generalBlock {
	return generalBlockAt(uintptr(p) - generalBlockSize)
}

func generalFreeUnlocked(ptr unsafe.Pointer, pool *poolHeader) {
	b := generalBlockFromPtr(ptr)

	if b.magic == magicFreed {
		logf("double free detected at %#x", uintptr(ptr))
		return
	}
	if b.magic != magicLive {
		logf("corrupted general block header at %#x (magic %#x)", uintptr(ptr), b.magic)
		stats.CorruptionEvents++
		return
	}

	checkCanary(uintptr(ptr), alignedSize(b.userSize))

	stats.recordFree(uint64(b.userSize))
	b.free = true
	b.magic = magicFreed
	coalesceIfPossible(b, pool)
}
