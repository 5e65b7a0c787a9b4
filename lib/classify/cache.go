//
// Copyright (C) 2015-2022 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package classify

import (
	"sync"

	log "github.com/sirupsen/logrus"

	"git.sr.ht/~vejnar/OverlapAbacus/lib/coverage"
	"git.sr.ht/~vejnar/OverlapAbacus/lib/overlap"
)

// Source gives the bad part of reads.
type Source interface {
	BadPart(id string) (*BadPart, error)
	// Reads returns the known read identifiers sorted.
	Reads() []string
}

// FromOverlap computes bad parts from an overlap store.
type FromOverlap struct {
	store overlap.Store
	depth uint32
	// Audit re-checks each computed region against an interval tree.
	Audit bool
}

func NewFromOverlap(store overlap.Store, depth uint32) *FromOverlap {
	return &FromOverlap{store: store, depth: depth}
}

func (s *FromOverlap) BadPart(id string) (*BadPart, error) {
	ivs, err := s.store.Overlap(id)
	if err != nil {
		return nil, err
	}
	return Compute(id, ivs, s.store.Length(id), s.depth, s.Audit), nil
}

func (s *FromOverlap) Reads() []string {
	return overlap.ReadIDs(s.store)
}

// Compute runs the coverage sweep on the intervals of one read.
func Compute(id string, ivs []overlap.Interval, length uint32, depth uint32, audit bool) *BadPart {
	regions, _ := coverage.BadRegions(ivs, length, depth)
	if audit {
		suspects, err := coverage.Audit(coverage.Clamp(ivs, length), regions, depth)
		if err != nil {
			log.Warnf("Read %s: audit failed: %v", id, err)
		}
		for _, r := range suspects {
			log.Warnf("Read %s: bad region %v covered above depth %d", id, r, depth)
		}
	}
	return &BadPart{Regions: regions, Length: length}
}

type slot struct {
	once sync.Once
	bp   *BadPart
	err  error
}

// Cache memoizes the bad part of each read. Each read is computed at most
// once; concurrent callers for the same read wait for the first computation.
type Cache struct {
	src   Source
	mu    sync.Mutex
	slots map[string]*slot
}

func NewCache(src Source) *Cache {
	return &Cache{src: src, slots: make(map[string]*slot)}
}

// BadPart returns the memoized bad part of the read. The result is shared
// and must not be modified.
func (c *Cache) BadPart(id string) (*BadPart, error) {
	c.mu.Lock()
	s, ok := c.slots[id]
	if !ok {
		s = &slot{}
		c.slots[id] = s
	}
	c.mu.Unlock()
	s.once.Do(func() {
		s.bp, s.err = c.src.BadPart(id)
	})
	return s.bp, s.err
}

func (c *Cache) Reads() []string {
	return c.src.Reads()
}

// Len returns the number of reads looked up so far.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.slots)
}
