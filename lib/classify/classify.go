//
// Copyright (C) 2015-2022 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

// Package classify labels reads from their bad regions.
package classify

import (
	"fmt"

	"git.sr.ht/~vejnar/OverlapAbacus/lib/overlap"
)

type Label int8

const (
	NotBad Label = iota
	Chimeric
	NotCovered
)

var labelNames = [...]string{"NotBad", "Chimeric", "NotCovered"}

func (l Label) String() string {
	if int(l) < len(labelNames) && l >= 0 {
		return labelNames[l]
	}
	return fmt.Sprintf("Label(%d)", l)
}

// ParseLabel is the inverse of Label.String. The historical spelling
// "Not_covered" is accepted.
func ParseLabel(s string) (Label, error) {
	switch s {
	case "NotBad":
		return NotBad, nil
	case "Chimeric":
		return Chimeric, nil
	case "NotCovered", "Not_covered":
		return NotCovered, nil
	}
	return NotBad, fmt.Errorf("Unknown read label %q", s)
}

// BadPart is the bad-region list of a read with its length.
type BadPart struct {
	Regions []overlap.Interval
	Length  uint32
}

// Uncovered returns the total length of the bad regions.
func (bp *BadPart) Uncovered() (total uint64) {
	for _, r := range bp.Regions {
		total += uint64(r.Len())
	}
	return
}

// Label classifies the read with the not-covered fraction threshold.
func (bp *BadPart) Label(notCovered float64) Label {
	return Classify(bp.Regions, bp.Uncovered(), bp.Length, notCovered)
}

// Classify returns NotCovered when the uncovered fraction of the read is
// above notCovered, Chimeric when a bad region touches neither end of the
// read, NotBad otherwise. A read of length 0 is NotCovered.
func Classify(regions []overlap.Interval, uncovered uint64, length uint32, notCovered float64) Label {
	if length == 0 {
		return NotCovered
	}
	if float64(uncovered)/float64(length) > notCovered {
		return NotCovered
	}
	for _, r := range regions {
		if r.Begin != 0 && r.End != length {
			return Chimeric
		}
	}
	return NotBad
}
