//
// Copyright (C) 2015-2022 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package coverage

import (
	"fmt"

	"github.com/biogo/store/interval"

	"git.sr.ht/~vejnar/OverlapAbacus/lib/overlap"
)

// Integer-specific intervals

type intInterval struct {
	Start, End int
	UID        uintptr
}

func (i intInterval) Overlap(b interval.IntRange) bool {
	// Half-open interval indexing.
	return i.End > b.Start && i.Start < b.End
}

func (i intInterval) ID() uintptr {
	return i.UID
}

func (i intInterval) Range() interval.IntRange {
	return interval.IntRange{Start: i.Start, End: i.End}
}

func (i intInterval) String() string {
	return fmt.Sprintf("[%d,%d)#%d", i.Start, i.End, i.UID)
}

// Tree indexes the overlap intervals of one read.
type Tree struct {
	tree interval.IntTree
}

// BuildTree inserts each interval in a new tree.
func BuildTree(intervals []overlap.Interval) (*Tree, error) {
	t := &Tree{}
	for i, iv := range intervals {
		if iv.Begin >= iv.End {
			continue
		}
		err := t.tree.Insert(intInterval{Start: int(iv.Begin), End: int(iv.End), UID: uintptr(i)}, false)
		if err != nil {
			return nil, err
		}
	}
	t.tree.AdjustRanges()
	return t, nil
}

// Depth returns the number of intervals open at pos.
func (t *Tree) Depth(pos uint32) int {
	return len(t.tree.Get(intInterval{Start: int(pos), End: int(pos) + 1}))
}

// Audit returns the regions whose first position is covered by more than
// depth intervals.
func Audit(intervals []overlap.Interval, regions []overlap.Interval, depth uint32) ([]overlap.Interval, error) {
	var suspects []overlap.Interval
	if len(regions) == 0 {
		return suspects, nil
	}
	t, err := BuildTree(intervals)
	if err != nil {
		return suspects, err
	}
	for _, r := range regions {
		if r.Begin < r.End && t.Depth(r.Begin) > int(depth) {
			suspects = append(suspects, r)
		}
	}
	return suspects, nil
}
