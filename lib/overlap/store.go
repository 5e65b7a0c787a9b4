//
// Copyright (C) 2015-2022 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

// Package overlap stores, for every read, its length and the intervals
// contributed by the pairwise overlaps referencing it.
package overlap

import (
	"sort"

	"gopkg.in/fatih/set.v0"
)

// Entry is the logical record of one read.
type Entry struct {
	Intervals []Interval
	Length    uint32
}

// Page is a bounded part of the read to entry mapping.
type Page map[string]*Entry

// IDs returns the read identifiers of the page in sorted order.
func (p Page) IDs() []string {
	ids := make([]string, 0, len(p))
	for id := range p {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Store holds the overlap intervals and length of each read.
//
// Lengths follow a first-write-wins policy: once a non-zero length is
// recorded for a read, later lengths are ignored. Unknown reads have no
// interval and a length of 0.
//
// Mutations must come from a single goroutine and must be finished before
// any lookup, Reads or Overlaps call.
type Store interface {
	// AddOverlap appends one interval to the read.
	AddOverlap(id string, iv Interval) error
	// AddLength records the read length if none was recorded yet.
	AddLength(id string, length uint32)
	// AddOverlapAndLength is AddLength followed by AddOverlap.
	AddOverlapAndLength(id string, iv Interval, length uint32) error
	// Overlap returns every interval added for the read.
	Overlap(id string) ([]Interval, error)
	// Length returns the read length, 0 if unknown.
	Length(id string) uint32
	// Reads returns the set of read identifiers.
	Reads() set.Interface
	// Overlaps moves the next page of the store into page, replacing its
	// content. It returns true once the store is exhausted.
	Overlaps(page *Page) (bool, error)
	// Close releases the resources of the store.
	Close() error
}

// ReadIDs returns the identifiers of the store sorted.
func ReadIDs(s Store) []string {
	reads := s.Reads()
	ids := make([]string, 0, reads.Size())
	reads.Each(func(item interface{}) bool {
		ids = append(ids, item.(string))
		return true
	})
	sort.Strings(ids)
	return ids
}
