// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dam

import (
	"fmt"
	"io"
	"unsafe"
)

// DumpState writes a human-readable walk of every registered pool and, for
// the general tier, its block list, to w. Ported from print_memory_state;
// intended for debugging and tests, not parsed by any dam code itself.
func DumpState(w io.Writer) {
	globalLock.Lock()
	defer globalLock.Unlock()

	count := 0
	for p := registryHead; p != nil; p = p.next {
		count++
		fmt.Fprintf(w, "pool %d: tier=%s base=%#x size=%d\n", count, p.tier, p.base, p.size)
		if p.tier != tierGeneral {
			continue
		}
		for b := p.generalHead; b != nil; b = b.next {
			state := "used"
			if b.free {
				state = "free"
			}
			fmt.Fprintf(w, "  block base=%#x size=%d userSize=%d %s\n", uintptr(unsafe.Pointer(b)), b.size, b.userSize, state)
		}
	}
}
