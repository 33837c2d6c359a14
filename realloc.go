// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dam

import "unsafe"

func minUintptr(a, b uintptr) uintptr {
	if a < b {
		return a
	}
	return b
}

func copyBytes(dst, src unsafe.Pointer, n uintptr) {
	if n == 0 {
		return
	}
	d := unsafe.Slice((*byte)(dst), n)
	s := unsafe.Slice((*byte)(src), n)
	copy(d, s)
}

func reallocateUnlocked(p unsafe.Pointer, n uintptr) unsafe.Pointer {
	pool := poolFromPtr(uintptr(p))
	if pool == nil {
		logf("realloc of stray pointer %#x", uintptr(p))
		return nil
	}
	switch pool.tier {
	case tierSmall:
		return reallocFromSmall(p, pool, n)
	case tierGeneral:
		return reallocFromGeneral(p, pool, n)
	default:
		return reallocFromDirect(p, pool, n)
	}
}

// reallocFromSmall covers SMALL→SMALL (trivial when the new class index is
// no larger than the current one — the existing slot's capacity already
// covers any size that maps to its own class or a smaller one) and
// SMALL→GENERAL/SMALL→DIRECT (alloc-copy-free). A small block never
// records its precise requested size, only its class — the same
// limitation the original's size_class_block_t has — so a move to a larger
// class or tier copies the old slot's full size.
func reallocFromSmall(ptr unsafe.Pointer, pool *poolHeader, n uintptr) unsafe.Pointer {
	addr := uintptr(ptr)
	blk := (*smallBlock)(unsafe.Pointer(addr - smallBlockSize))
	if blk.magic != magicLive {
		logf("realloc of corrupted small block at %#x (magic %#x)", addr, blk.magic)
		stats.CorruptionEvents++
		return nil
	}

	if tierForSize(n) == tierSmall {
		if _, newIdx := classFor(n); newIdx <= blk.class {
			stats.Reallocs++
			return ptr
		}
	}

	oldSize := sizeClasses[blk.class].slotSize
	newPtr := allocateUnlocked(n)
	if newPtr == nil {
		return nil
	}
	copyBytes(newPtr, ptr, minUintptr(oldSize, n))
	smallFreeUnlocked(ptr)
	stats.Reallocs++
	return newPtr
}

// reallocFromGeneral implements the three-case protocol the general tier's
// realloc follows in the allocator this is ported from: shrink in place
// (optionally splitting the residue), grow in place by absorbing a free
// forward neighbor that is still inside the same pool, and otherwise fall
// back to alloc-copy-free — including whenever the requested size no
// longer belongs to the general tier at all.
func reallocFromGeneral(ptr unsafe.Pointer, pool *poolHeader, n uintptr) unsafe.Pointer {
	b := generalBlockFromPtr(ptr)
	if b.magic != magicLive {
		logf("realloc of corrupted general block at %#x (magic %#x)", uintptr(ptr), b.magic)
		stats.CorruptionEvents++
		return nil
	}
	checkCanary(uintptr(ptr), alignedSize(b.userSize))

	if tierForSize(n) != tierGeneral {
		return generalAllocCopyFree(ptr, pool, b, n)
	}

	aligned := alignedSize(n)
	want := aligned + canarySize
	if b.size >= want {
		splitBlockIfPossible(b, pool, aligned)
		b.userSize = n
		writeCanary(uintptr(ptr), aligned)
		stats.Reallocs++
		return ptr
	}

	if b.next != nil && b.next.free && b.next.magic != magicLive && pool.contains(uintptr(unsafe.Pointer(b.next))) {
		combined := b.size + generalBlockSize + b.next.size
		if combined >= want {
			nxt := b.next
			b.size = combined
			b.next = nxt.next
			if nxt.next != nil {
				nxt.next.prev = b
			}
			splitBlockIfPossible(b, pool, aligned)
			b.userSize = n
			writeCanary(uintptr(ptr), aligned)
			stats.Reallocs++
			return ptr
		}
	}

	return generalAllocCopyFree(ptr, pool, b, n)
}

func generalAllocCopyFree(ptr unsafe.Pointer, pool *poolHeader, b *generalBlock, n uintptr) unsafe.Pointer {
	newPtr := allocateUnlocked(n)
	if newPtr == nil {
		return nil
	}
	copyBytes(newPtr, ptr, minUintptr(b.userSize, n))
	generalFreeUnlocked(ptr, pool)
	stats.Reallocs++
	return newPtr
}

// reallocFromDirect handles DIRECT→SMALL/GENERAL (alloc-copy-free into the
// lower tier) and DIRECT→DIRECT. For the latter the check order resolves
// the ambiguity in the source this tier is ported from: pure growth always
// reallocates, a shrink below ShrinkFraction of the current size also
// reallocates, and only a shrink that stays within ShrinkFraction keeps the
// existing pointer.
func reallocFromDirect(ptr unsafe.Pointer, pool *poolHeader, n uintptr) unsafe.Pointer {
	b := directBlockAt(uintptr(ptr) - directBlockSize)
	checkCanary(uintptr(ptr), b.userSize)

	if tierForSize(n) != tierDirect {
		newPtr := allocateUnlocked(n)
		if newPtr == nil {
			return nil
		}
		copyBytes(newPtr, ptr, minUintptr(b.userSize, n))
		directFreeUnlocked(ptr, pool)
		stats.Reallocs++
		return newPtr
	}

	switch {
	case n == b.userSize:
		return ptr
	case n < b.userSize:
		if ratio := float64(n) / float64(b.userSize); ratio >= ShrinkFraction {
			b.userSize = n
			writeCanary(uintptr(ptr), n)
			stats.Reallocs++
			return ptr
		}
	}

	newPtr := directAllocateUnlocked(n)
	if newPtr == nil {
		return nil
	}
	copyBytes(newPtr, ptr, minUintptr(b.userSize, n))
	directFreeUnlocked(ptr, pool)
	stats.Reallocs++
	return newPtr
}
