//
// Copyright (C) 2015-2022 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package overlap

import (
	"fmt"
	"sort"
)

// Interval is a half-open [Begin,End) span in the coordinate space of one read.
type Interval struct {
	Begin, End uint32
}

// Len returns the length of the interval, 0 for degenerate intervals.
func (iv Interval) Len() uint32 {
	if iv.End < iv.Begin {
		return 0
	}
	return iv.End - iv.Begin
}

func (iv Interval) String() string {
	return fmt.Sprintf("[%d,%d)", iv.Begin, iv.End)
}

// Sorting functions: By Begin then End
// Use it with: sort.Sort(overlap.ByBegin(intervals))
type ByBegin []Interval

func (s ByBegin) Len() int      { return len(s) }
func (s ByBegin) Swap(i, j int) { s[i], s[j] = s[j], s[i] }
func (s ByBegin) Less(i, j int) bool {
	if s[i].Begin != s[j].Begin {
		return s[i].Begin < s[j].Begin
	}
	return s[i].End < s[j].End
}

// Sorted returns a sorted copy of intervals.
func Sorted(intervals []Interval) []Interval {
	s := make([]Interval, len(intervals))
	copy(s, intervals)
	sort.Sort(ByBegin(s))
	return s
}
