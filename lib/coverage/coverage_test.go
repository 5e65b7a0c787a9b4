//
// Copyright (C) 2015-2022 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package coverage

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"git.sr.ht/~vejnar/OverlapAbacus/lib/overlap"
)

type iv = overlap.Interval

var badRegionsTests = []struct {
	name      string
	intervals []iv
	length    uint32
	depth     uint32
	regions   []iv
	uncovered uint64
}{
	{"both-ends", []iv{{Begin: 10, End: 990}}, 1000, 0, []iv{{Begin: 0, End: 10}, {Begin: 990, End: 1000}}, 20},
	{"mostly-uncovered", []iv{{Begin: 10, End: 90}}, 1000, 0, []iv{{Begin: 0, End: 10}, {Begin: 90, End: 1000}}, 920},
	{"middle-gap", []iv{{Begin: 10, End: 490}, {Begin: 510, End: 990}}, 1000, 0, []iv{{Begin: 0, End: 10}, {Begin: 490, End: 510}, {Begin: 990, End: 1000}}, 40},
	{"start-covered", []iv{{Begin: 0, End: 990}}, 1000, 0, []iv{{Begin: 990, End: 1000}}, 10},
	{"end-covered", []iv{{Begin: 10, End: 1000}}, 1000, 0, []iv{{Begin: 0, End: 10}}, 10},
	{"only-middle-gap", []iv{{Begin: 0, End: 490}, {Begin: 510, End: 1000}}, 1000, 0, []iv{{Begin: 490, End: 510}}, 20},
	{"depth-2", []iv{{Begin: 0, End: 425}, {Begin: 0, End: 450}, {Begin: 0, End: 475}, {Begin: 525, End: 1000}, {Begin: 550, End: 1000}, {Begin: 575, End: 1000}}, 1000, 2, []iv{{Begin: 425, End: 575}}, 150},
	{"no-overlap", []iv{}, 1000, 0, []iv{{Begin: 0, End: 1000}}, 1000},
	{"prior-gaps", []iv{{Begin: 4000, End: 4500}, {Begin: 5000, End: 5500}}, 10000, 0, []iv{{Begin: 0, End: 4000}, {Begin: 4500, End: 5000}, {Begin: 5500, End: 10000}}, 9000},
	{"extremities", []iv{{Begin: 500, End: 1500}, {Begin: 9000, End: 9500}}, 10000, 0, []iv{{Begin: 0, End: 500}, {Begin: 1500, End: 9000}, {Begin: 9500, End: 10000}}, 8500},
	{"depth-1-chimeric", []iv{{Begin: 2000, End: 4500}, {Begin: 2000, End: 4500}, {Begin: 5500, End: 8000}, {Begin: 5500, End: 8000}}, 10000, 1, []iv{{Begin: 0, End: 2000}, {Begin: 4500, End: 5500}, {Begin: 8000, End: 10000}}, 5000},
	{"depth-1-end", []iv{{Begin: 0, End: 2500}, {Begin: 0, End: 2500}, {Begin: 2500, End: 10000}}, 10000, 1, []iv{{Begin: 2500, End: 10000}}, 7500},
	{"depth-1-start", []iv{{Begin: 7500, End: 10000}, {Begin: 7500, End: 10000}, {Begin: 0, End: 7500}}, 10000, 1, []iv{{Begin: 0, End: 7500}}, 7500},
	{"clamped", []iv{{Begin: 0, End: 1500}, {Begin: 200, End: 100}, {Begin: 1200, End: 1200}}, 1000, 0, []iv{}, 0},
	{"touching", []iv{{Begin: 0, End: 500}, {Begin: 500, End: 1000}}, 1000, 0, []iv{}, 0},
	{"zero-length", []iv{{Begin: 0, End: 10}}, 0, 0, []iv{}, 0},
	{"chimeric-12000", []iv{{Begin: 20, End: 4500}, {Begin: 5500, End: 10000}}, 12000, 0, []iv{{Begin: 0, End: 20}, {Begin: 4500, End: 5500}, {Begin: 10000, End: 12000}}, 3020},
	{"start-10000", []iv{{Begin: 1000, End: 10000}}, 10000, 0, []iv{{Begin: 0, End: 1000}}, 1000},
	{"uncovered-9000", []iv{{Begin: 9000, End: 10000}}, 10000, 0, []iv{{Begin: 0, End: 9000}}, 9000},
}

func TestBadRegions(t *testing.T) {
	c := qt.New(t)
	for _, test := range badRegionsTests {
		c.Run(test.name, func(c *qt.C) {
			regions, uncovered := BadRegions(test.intervals, test.length, test.depth)
			c.Assert(regions, qt.DeepEquals, test.regions)
			c.Assert(uncovered, qt.Equals, test.uncovered)
		})
	}
}

func TestBadRegionsOrderIndependent(t *testing.T) {
	c := qt.New(t)
	a, _ := BadRegions([]iv{{Begin: 510, End: 990}, {Begin: 10, End: 490}}, 1000, 0)
	b, _ := BadRegions([]iv{{Begin: 10, End: 490}, {Begin: 510, End: 990}}, 1000, 0)
	c.Assert(a, qt.DeepEquals, b)
}

func TestBadRegionsInputUntouched(t *testing.T) {
	c := qt.New(t)
	in := []iv{{Begin: 510, End: 990}, {Begin: 10, End: 1490}}
	BadRegions(in, 1000, 0)
	c.Assert(in, qt.DeepEquals, []iv{{Begin: 510, End: 990}, {Begin: 10, End: 1490}})
}

func TestMerge(t *testing.T) {
	c := qt.New(t)
	got := Merge([]iv{{Begin: 0, End: 10}, {Begin: 0, End: 5}, {Begin: 20, End: 30}, {Begin: 20, End: 40}, {Begin: 20, End: 35}})
	c.Assert(got, qt.DeepEquals, []iv{{Begin: 0, End: 10}, {Begin: 20, End: 40}})
	c.Assert(Merge(nil), qt.HasLen, 0)
}

func TestClamp(t *testing.T) {
	c := qt.New(t)
	got := Clamp([]iv{{Begin: 0, End: 50}, {Begin: 90, End: 150}, {Begin: 100, End: 120}, {Begin: 30, End: 30}}, 100)
	c.Assert(got, qt.DeepEquals, []iv{{Begin: 0, End: 50}, {Begin: 90, End: 100}})
}
