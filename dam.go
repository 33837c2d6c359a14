// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dam

import (
	"errors"
	"unsafe"
)

var initialized bool

// ErrPageSizeMismatch is returned by Init when the kernel's page size
// differs from PageSize. The allocator then stays uninitialized, and
// Allocate, Reallocate and ZeroAllocate return nil.
var ErrPageSizeMismatch = errors.New("dam: kernel page size verification failed")

// Init prepares the allocator for use. It is idempotent and is called
// automatically by every other public entry point, so most programs never
// need to call it directly; it is exported for callers that want to
// surface a startup failure explicitly rather than have the first
// Allocate silently return nil.
func Init() error {
	globalLock.Lock()
	defer globalLock.Unlock()
	return ensureInitUnlocked()
}

func ensureInitUnlocked() error {
	if initialized {
		return nil
	}
	if !verifyPageSize() {
		return ErrPageSizeMismatch
	}
	initSmallTier()
	generalPoolCount = 0
	registryHead = nil
	stats = Statistics{}
	initialized = true
	return nil
}

// Shutdown unmaps every pool dam has registered and resets all state so a
// subsequent Init starts clean. It is not part of the four-operation
// contractual surface; it exists for the same lifecycle purpose
// dam_shutdown/cleanup_allocator served in the allocator this tiering is
// drawn from — primarily test teardown and long-running process exit.
func Shutdown() {
	globalLock.Lock()
	defer globalLock.Unlock()
	resetRegistry()
	sizeClasses = nil
	generalPoolCount = 0
	stats = Statistics{}
	initialized = false
}

func tierForSize(size uintptr) tier {
	switch {
	case size <= SmallMax:
		return tierSmall
	case size <= GeneralMax:
		return tierGeneral
	default:
		return tierDirect
	}
}

// Allocate returns a pointer to at least n bytes of zero-value-unspecified
// memory, aligned to the platform's maximum scalar alignment. It returns
// nil on resource exhaustion; callers must check for nil exactly as they
// would check a C malloc return.
func Allocate(n uintptr) unsafe.Pointer {
	globalLock.Lock()
	defer globalLock.Unlock()
	if err := ensureInitUnlocked(); err != nil {
		return nil
	}
	return allocateUnlocked(n)
}

func allocateUnlocked(n uintptr) unsafe.Pointer {
	if n == 0 {
		return nil
	}
	switch tierForSize(n) {
	case tierSmall:
		return smallAllocateUnlocked(n)
	case tierGeneral:
		return generalAllocateUnlocked(n)
	default:
		return directAllocateUnlocked(n)
	}
}

// ZeroAllocate is the calloc-style entry point: it allocates space for
// count objects of size bytes each and zeroes it before returning.
func ZeroAllocate(count, size uintptr) unsafe.Pointer {
	globalLock.Lock()
	defer globalLock.Unlock()
	if err := ensureInitUnlocked(); err != nil {
		return nil
	}
	n := count * size
	if count != 0 && n/count != size {
		logf("ZeroAllocate overflow: %d * %d", count, size)
		return nil
	}
	p := allocateUnlocked(n)
	if p == nil {
		return nil
	}
	b := unsafe.Slice((*byte)(p), n)
	for i := range b {
		b[i] = 0
	}
	return p
}

// Free releases an allocation previously returned by Allocate, Reallocate,
// or ZeroAllocate. A nil pointer is ignored; an already-freed or
// unrecognized pointer is logged and otherwise ignored — it is never a
// fatal condition.
func Free(p unsafe.Pointer) {
	if p == nil {
		return
	}
	globalLock.Lock()
	defer globalLock.Unlock()
	if !initialized {
		return
	}
	freeUnlocked(p)
}

func freeUnlocked(p unsafe.Pointer) {
	pool := poolFromPtr(uintptr(p))
	if pool == nil {
		logf("free of stray pointer %#x", uintptr(p))
		return
	}
	switch pool.tier {
	case tierSmall:
		smallFreeUnlocked(p)
	case tierGeneral:
		generalFreeUnlocked(p, pool)
	case tierDirect:
		directFreeUnlocked(p, pool)
	}
}

// Reallocate resizes an existing allocation, preserving its contents up to
// the smaller of the old and new sizes, exactly as C's realloc does. A nil
// p behaves like Allocate(n); an n of 0 behaves like Free(p) followed by
// returning nil.
func Reallocate(p unsafe.Pointer, n uintptr) unsafe.Pointer {
	globalLock.Lock()
	defer globalLock.Unlock()
	if err := ensureInitUnlocked(); err != nil {
		return nil
	}
	if p == nil {
		return allocateUnlocked(n)
	}
	if n == 0 {
		freeUnlocked(p)
		return nil
	}
	return reallocateUnlocked(p, n)
}
