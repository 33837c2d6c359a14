// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dam_test

import (
	"sync"
	"testing"
	"unsafe"

	"code.hybscloud.com/dam"
)

// TestConcurrentAllocateFree hammers Allocate/Reallocate/Free from many
// goroutines at once. globalLock serializes every entry point, so this is
// not exercising concurrent mutation of pool state directly — it is
// exercising that the lock actually guards every path the race detector
// would otherwise flag. Iteration count is cut under race mode, where each
// lock acquisition costs far more.
func TestConcurrentAllocateFree(t *testing.T) {
	reset(t)

	iterations := 2000
	if raceEnabled {
		iterations = 200
	}

	const goroutines = 8
	sizes := []uintptr{16, 48, 300, 4096, 8192, 256 * 1024}

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for g := 0; g < goroutines; g++ {
		go func(seed int) {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				size := sizes[(seed+i)%len(sizes)]
				p := dam.Allocate(size)
				if p == nil {
					t.Errorf("Allocate(%d) returned nil", size)
					return
				}
				b := unsafe.Slice((*byte)(p), size)
				b[0] = byte(seed)
				b[size-1] = byte(seed)

				p = dam.Reallocate(p, size*2)
				if p == nil {
					t.Errorf("Reallocate(%d) returned nil", size*2)
					return
				}
				dam.Free(p)
			}
		}(g)
	}
	wg.Wait()
}
