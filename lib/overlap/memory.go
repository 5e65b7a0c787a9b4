//
// Copyright (C) 2015-2022 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package overlap

import (
	"gopkg.in/fatih/set.v0"
)

// InMemory keeps every read entry resident.
type InMemory struct {
	reads Page
}

func NewInMemory() *InMemory {
	return &InMemory{reads: make(Page)}
}

func (s *InMemory) entry(id string) *Entry {
	e, ok := s.reads[id]
	if !ok {
		e = &Entry{}
		s.reads[id] = e
	}
	return e
}

func (s *InMemory) AddOverlap(id string, iv Interval) error {
	e := s.entry(id)
	e.Intervals = append(e.Intervals, iv)
	return nil
}

func (s *InMemory) AddLength(id string, length uint32) {
	e := s.entry(id)
	if e.Length == 0 {
		e.Length = length
	}
}

func (s *InMemory) AddOverlapAndLength(id string, iv Interval, length uint32) error {
	e := s.entry(id)
	if e.Length == 0 {
		e.Length = length
	}
	e.Intervals = append(e.Intervals, iv)
	return nil
}

func (s *InMemory) Overlap(id string) ([]Interval, error) {
	e, ok := s.reads[id]
	if !ok {
		return []Interval{}, nil
	}
	ivs := make([]Interval, len(e.Intervals))
	copy(ivs, e.Intervals)
	return ivs, nil
}

func (s *InMemory) Length(id string) uint32 {
	if e, ok := s.reads[id]; ok {
		return e.Length
	}
	return 0
}

func (s *InMemory) Reads() set.Interface {
	ids := set.New(set.NonThreadSafe)
	for id := range s.reads {
		ids.Add(id)
	}
	return ids
}

// Overlaps hands the whole store over in a single page.
func (s *InMemory) Overlaps(page *Page) (bool, error) {
	*page = s.reads
	s.reads = make(Page)
	return true, nil
}

func (s *InMemory) Close() error {
	s.reads = make(Page)
	return nil
}
