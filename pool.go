// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dam

import "unsafe"

// tier identifies which back-end owns a pool.
type tier uint8

const (
	tierSmall tier = iota
	tierGeneral
	tierDirect
)

func (t tier) String() string {
	switch t {
	case tierSmall:
		return "small"
	case tierGeneral:
		return "general"
	case tierDirect:
		return "direct"
	default:
		return "unknown"
	}
}

// poolHeader sits at the base of every OS-obtained mapping. It is the unit
// the registry tracks: every live pool, regardless of tier, is reachable
// from registryHead, and that reachability is the single source of truth
// for "does dam own this address". small.go's per-class pools field only
// records a class's most recent pool and is never consulted for ownership;
// the general tier finds its pools by walking the registry.
type poolHeader struct {
	base uintptr
	size uintptr
	tier tier
	next *poolHeader // registry link

	// generalHead is the head of this pool's address-ordered block list.
	// Unused for tierSmall and tierDirect.
	generalHead *generalBlock

	// class is the small-tier size class this pool was created for.
	// Unused for tierGeneral and tierDirect.
	class uint8

	_ noCopy // a poolHeader is a view onto mapped memory, never a value
}

func poolHeaderAt(addr uintptr) *poolHeader {
	return (*poolHeader)(unsafe.Pointer(addr))
}

var poolHeaderSize = alignUp(unsafe.Sizeof(poolHeader{}), alignment)

// contains reports whether addr falls within this pool's usable (header and
// all) address range.
func (p *poolHeader) contains(addr uintptr) bool {
	return addr >= p.base && addr < p.base+p.size
}

// dataStart is the first address after the pool header, where tier-specific
// bookkeeping (a general tier's first block, a small tier's slot array, a
// direct tier's single block) begins.
func (p *poolHeader) dataStart() uintptr {
	return p.base + poolHeaderSize
}
