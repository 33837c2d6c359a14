// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dam

import "unsafe"

// writeCanary stores the corruption-detection sentinel immediately after
// the userSize bytes of user payload starting at dataAddr.
func writeCanary(dataAddr, userSize uintptr) {
	*(*uint32)(unsafe.Pointer(dataAddr + userSize)) = canaryWord
}

// checkCanary reports whether the sentinel written by writeCanary is still
// intact, incrementing the corruption counter and logging when it is not.
// A violation is logged and counted but never fatal: the caller's free or
// realloc of the block carries on.
func checkCanary(dataAddr, userSize uintptr) bool {
	got := *(*uint32)(unsafe.Pointer(dataAddr + userSize))
	if got != canaryWord {
		stats.CorruptionEvents++
		logf("canary violation at %#x: want %#x got %#x", dataAddr+userSize, canaryWord, got)
		return false
	}
	return true
}
