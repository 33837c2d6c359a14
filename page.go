// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dam

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// mmapAnon asks the kernel for a fresh, zeroed, page-aligned anonymous
// private mapping of size bytes rounded up to a multiple of PageSize. It
// never touches the Go heap: the returned address space is owned by the
// kernel until munmapAnon releases it. Grounded on the buddy allocator's
// pool-init call (other_examples: alewtschuk-balloc/balloc.go), which makes
// the identical unix.Mmap(-1, 0, size, PROT_READ|PROT_WRITE,
// MAP_PRIVATE|MAP_ANONYMOUS) call to seed a managed arena.
func mmapAnon(size uintptr) (uintptr, bool) {
	size = alignUp(size, PageSize)
	data, err := unix.Mmap(-1, 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		logf("mmap failed for %d bytes: %v", size, err)
		return 0, false
	}
	return uintptr(unsafe.Pointer(&data[0])), true
}

// munmapAnon releases a mapping previously returned by mmapAnon. base must
// be the original mapping address, not any address inside it — unmapping
// from a user-visible payload pointer rather than the pool's own base is a
// known bug in the C implementation this module's direct tier replaces;
// dam always unmaps from the pool header's own base address.
func munmapAnon(base, size uintptr) {
	data := unsafe.Slice((*byte)(unsafe.Pointer(base)), size)
	if err := unix.Munmap(data); err != nil {
		logf("munmap failed for %#x (%d bytes): %v", base, size, err)
	}
}

// verifyPageSize compares the kernel's actual page size against the
// compiled-in assumption. Ported from the original's verify_page_size(),
// which rejects a mismatched sysconf(_SC_PAGESIZE) at init rather than
// silently mis-rounding every pool thereafter.
func verifyPageSize() bool {
	got := uintptr(unix.Getpagesize())
	if got != PageSize {
		logf("kernel page size %d does not match configured PageSize %d", got, PageSize)
		return false
	}
	return true
}
