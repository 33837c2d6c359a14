// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dam

// Statistics is a read-only snapshot of dam's counters. Ported from
// dam_stats.h's dam_stats_t, which the original exposes via a
// read-only accessor rather than the mutable struct itself.
type Statistics struct {
	Allocations      uint64
	Frees            uint64
	Reallocs         uint64
	Splits           uint64
	Coalesces        uint64
	BytesAllocated   uint64
	BytesPeak        uint64
	CorruptionEvents uint32
	PoolsCreated     uint64
	BlocksSearched   uint64
}

// AvgBlocksSearched is the mean number of blocks the general tier's
// first-fit search examined per allocation, the same ratio
// print_allocator_stats prints (blocks_searched / allocations).
func (s Statistics) AvgBlocksSearched() float64 {
	if s.Allocations == 0 {
		return 0
	}
	return float64(s.BlocksSearched) / float64(s.Allocations)
}

// stats accumulates under globalLock; Stats takes a value copy.
var stats Statistics

func (s *Statistics) recordAlloc(n uint64) {
	s.Allocations++
	s.BytesAllocated += n
	if s.BytesAllocated > s.BytesPeak {
		s.BytesPeak = s.BytesAllocated
	}
}

func (s *Statistics) recordFree(n uint64) {
	s.Frees++
	if n > s.BytesAllocated {
		s.BytesAllocated = 0
	} else {
		s.BytesAllocated -= n
	}
}

// Stats returns a snapshot of dam's current counters.
func Stats() Statistics {
	globalLock.Lock()
	defer globalLock.Unlock()
	return stats
}

// ResetStats zeroes the mutable counters. Structural counts — PoolsCreated —
// survive a reset, matching reset_allocator_stats's "don't reset
// pools_created, that's structural info" behavior.
func ResetStats() {
	globalLock.Lock()
	defer globalLock.Unlock()
	pools := stats.PoolsCreated
	stats = Statistics{}
	stats.PoolsCreated = pools
}
