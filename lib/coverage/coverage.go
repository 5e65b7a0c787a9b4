//
// Copyright (C) 2015-2022 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

// Package coverage finds the regions of a read not covered by enough overlaps.
package coverage

import (
	"container/heap"
	"sort"

	"git.sr.ht/~vejnar/OverlapAbacus/lib/overlap"
)

// endHeap is a min-heap of the end positions of open intervals.
type endHeap []uint32

func (h endHeap) Len() int            { return len(h) }
func (h endHeap) Less(i, j int) bool  { return h[i] < h[j] }
func (h endHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *endHeap) Push(x interface{}) { *h = append(*h, x.(uint32)) }
func (h *endHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// Clamp bounds intervals to [0,length) and drops the ones left empty.
func Clamp(intervals []overlap.Interval, length uint32) []overlap.Interval {
	kept := make([]overlap.Interval, 0, len(intervals))
	for _, iv := range intervals {
		if iv.End > length {
			iv.End = length
		}
		if iv.Begin < iv.End {
			kept = append(kept, iv)
		}
	}
	return kept
}

// BadRegions returns the merged regions of a read of the given length where
// at most depth intervals are open, and their total length.
//
// Intervals are clamped to the read first. A read of length 0 has no region.
func BadRegions(intervals []overlap.Interval, length uint32, depth uint32) ([]overlap.Interval, uint64) {
	if length == 0 {
		return []overlap.Interval{}, 0
	}
	ivs := Clamp(intervals, length)
	sort.Sort(overlap.ByBegin(ivs))

	c := int(depth)
	var gaps []overlap.Interval
	var firstCovered, lastCovered uint32
	open := make(endHeap, 0, len(ivs))

	for _, iv := range ivs {
		for open.Len() > 0 && open[0] < iv.Begin {
			if open.Len() > c {
				lastCovered = open[0]
			}
			heap.Pop(&open)
		}
		if open.Len() <= c {
			if lastCovered != 0 {
				gaps = append(gaps, overlap.Interval{Begin: lastCovered, End: iv.Begin})
			} else {
				firstCovered = iv.Begin
			}
		}
		heap.Push(&open, iv.End)
	}

	for open.Len() > c {
		lastCovered = open[0]
		if lastCovered >= length {
			break
		}
		heap.Pop(&open)
	}

	regions := make([]overlap.Interval, 0, len(gaps)+2)
	if firstCovered != 0 {
		regions = append(regions, overlap.Interval{Begin: 0, End: firstCovered})
	}
	regions = append(regions, gaps...)
	if lastCovered != length {
		regions = append(regions, overlap.Interval{Begin: lastCovered, End: length})
	}

	regions = Merge(regions)
	return regions, Uncovered(regions)
}

// Merge collapses consecutive regions sharing the same begin into the one
// with the largest end. Regions must be ordered by begin.
func Merge(regions []overlap.Interval) []overlap.Interval {
	merged := make([]overlap.Interval, 0, len(regions))
	for _, r := range regions {
		if n := len(merged); n > 0 && merged[n-1].Begin == r.Begin {
			if r.End > merged[n-1].End {
				merged[n-1].End = r.End
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged
}

// Uncovered returns the total length of regions.
func Uncovered(regions []overlap.Interval) (total uint64) {
	for _, r := range regions {
		total += uint64(r.Len())
	}
	return
}
