// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dam

import "unsafe"

// directBlock is the sole header in a direct-tier pool; there is never more
// than one block per pool and it is never split, coalesced, or freed back
// onto a list — the whole pool is unmapped when the allocation is freed.
type directBlock struct {
	userSize uintptr
}

var directBlockSize = alignUp(unsafe.Sizeof(directBlock{}), alignment)

func directBlockAt(addr uintptr) *directBlock {
	return (*directBlock)(unsafe.Pointer(addr))
}

func directAllocateUnlocked(size uintptr) unsafe.Pointer {
	total := alignUp(poolHeaderSize+directBlockSize+size+canarySize, PageSize)

	base, ok := mmapAnon(total)
	if !ok {
		return nil
	}

	p := poolHeaderAt(base)
	p.base = base
	p.size = total
	p.tier = tierDirect
	registerPool(p)

	b := directBlockAt(p.dataStart())
	b.userSize = size

	data := uintptr(unsafe.Pointer(b)) + directBlockSize
	writeCanary(data, size)

	stats.recordAlloc(uint64(size))
	return unsafe.Pointer(data)
}

func directFreeUnlocked(ptr unsafe.Pointer, p *poolHeader) {
	b := directBlockAt(uintptr(ptr) - directBlockSize)
	checkCanary(uintptr(ptr), b.userSize)
	stats.recordFree(uint64(b.userSize))

	unregisterPool(p)
	munmapAnon(p.base, p.size)
}
