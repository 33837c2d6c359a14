// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dam

// registryHead is the process-wide list of every live pool across all three
// tiers. Callers must hold globalLock. Ported from core.c's dam_pool_list
// ("a linked list of ALL pools ... used for ownership checks and routing
// free()/realloc()").
var registryHead *poolHeader

func registerPool(p *poolHeader) {
	p.next = registryHead
	registryHead = p
	stats.PoolsCreated++
}

func unregisterPool(p *poolHeader) {
	if registryHead == p {
		registryHead = p.next
		return
	}
	for cur := registryHead; cur != nil; cur = cur.next {
		if cur.next == p {
			cur.next = p.next
			return
		}
	}
}

// poolFromPtr resolves the pool owning addr by a linear walk of the
// registry, exactly as dam_pool_from_ptr (util.c) does. P (the number of
// live pools) stays small under spec's tiering, so this is the conforming
// baseline rather than a stopgap.
func poolFromPtr(addr uintptr) *poolHeader {
	for cur := registryHead; cur != nil; cur = cur.next {
		if cur.contains(addr) {
			return cur
		}
	}
	return nil
}

func resetRegistry() {
	for cur := registryHead; cur != nil; {
		next := cur.next
		munmapAnon(cur.base, cur.size)
		cur = next
	}
	registryHead = nil
}
