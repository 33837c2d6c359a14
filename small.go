// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dam

import (
	"sync"
	"unsafe"

	"code.hybscloud.com/dam/internal"
)

// smallBlock is the per-slot header of a small-tier allocation.
type smallBlock struct {
	magic uint32
	class uint8
	free  bool
	next  *smallBlock
}

var smallBlockSize = alignUp(unsafe.Sizeof(smallBlock{}), alignment)

// sizeClass tracks one segregated small-tier size class. The embedded
// mutex and padding are unused by the baseline (every class shares
// globalLock per spec's concurrency model) but are laid out now, padded to
// a cache line so an eventual per-class lock decomposition — the natural
// refinement design notes call out — would not false-share adjacent
// classes. Padding size grounded on the teacher's internal/cacheline_*.go
// constants.
type sizeClass struct {
	slotSize uintptr
	freeList *smallBlock
	pools    *poolHeader // most recent pool of this class; its next field is the registry link, so there is no per-class chain

	mu  sync.Mutex
	_   [internal.CacheLineSize]byte
}

var sizeClasses []*sizeClass

func initSmallTier() {
	sizeClasses = sizeClasses[:0]
	for sz := SmallMin; sz <= SmallMax; sz *= SizeClassMultiplier {
		sizeClasses = append(sizeClasses, &sizeClass{slotSize: sz})
	}
}

func classFor(size uintptr) (*sizeClass, uint8) {
	for i, c := range sizeClasses {
		if size <= c.slotSize {
			return c, uint8(i)
		}
	}
	last := len(sizeClasses) - 1
	return sizeClasses[last], uint8(last)
}

// createSmallPool mmaps a fresh pool sized for SlotsPerPool slots of this
// class's slotSize, links every slot into the class free list, and
// registers the pool. The requested slot count is rounded up to a power of
// two, reusing the teacher's bounded-ring capacity-rounding trick; the
// mapping is then rounded up to whole pages and every slot that fits is
// threaded, so a pool usually holds a few more slots than that.
func createSmallPool(c *sizeClass, classIdx uint8) bool {
	slots := roundUpPow2(SlotsPerPool)
	slotStride := alignUp(smallBlockSize+c.slotSize, alignment)
	poolSize := alignUp(poolHeaderSize+slots*slotStride, PageSize)

	base, ok := mmapAnon(poolSize)
	if !ok {
		return false
	}

	p := poolHeaderAt(base)
	p.base = base
	p.size = poolSize
	p.tier = tierSmall
	p.class = classIdx

	addr := p.dataStart()
	end := base + poolSize
	for addr+slotStride <= end {
		blk := (*smallBlock)(unsafe.Pointer(addr))
		blk.class = classIdx
		blk.free = true
		blk.magic = magicFreed
		blk.next = c.freeList
		c.freeList = blk
		addr += slotStride
	}

	p.next = c.pools
	c.pools = p
	registerPool(p)
	return true
}

func smallAllocateUnlocked(size uintptr) unsafe.Pointer {
	c, classIdx := classFor(size)
	if c.freeList == nil && !createSmallPool(c, classIdx) {
		return nil
	}

	blk := c.freeList
	c.freeList = blk.next
	blk.free = false
	blk.magic = magicLive

	stats.recordAlloc(uint64(c.slotSize))
	return unsafe.Pointer(uintptr(unsafe.Pointer(blk)) + smallBlockSize)
}

func smallFreeUnlocked(p unsafe.Pointer) {
	addr := uintptr(p)
	blk := (*smallBlock)(unsafe.Pointer(addr - smallBlockSize))

	if blk.magic == magicFreed {
		logf("double free detected at %#x", addr)
		return
	}
	if blk.magic != magicLive {
		logf("corrupted small block header at %#x (magic %#x)", addr, blk.magic)
		stats.CorruptionEvents++
		return
	}

	class := blk.class
	c := sizeClasses[class]
	blk.free = true
	blk.magic = magicFreed
	blk.next = c.freeList
	c.freeList = blk

	stats.recordFree(uint64(c.slotSize))
}
