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
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"
	"gopkg.in/fatih/set.v0"
)

var bucketOverlaps = []byte("overlaps")

// External buffers intervals in memory and flushes them to an embedded
// key-value database once the number of pending intervals reaches the
// buffer size. Read lengths stay in memory and act as the index of the store.
type External struct {
	dir  string
	path string
	db   *bolt.DB

	buffer     map[string][]Interval
	pending    int
	bufferSize int

	lengths  map[string]uint32
	pageSize int

	// Paged iteration
	keys     []string
	cursor   int
	draining bool
}

// NewExternal creates a store in a new temporary directory under prefix.
// The directory is removed by Close.
func NewExternal(prefix string, bufferSize, pageSize int) (*External, error) {
	if bufferSize < 1 {
		return nil, fmt.Errorf("Buffer size must be positive, got %d", bufferSize)
	}
	if pageSize < 1 {
		return nil, fmt.Errorf("Page size must be positive, got %d", pageSize)
	}
	if prefix != "" {
		if err := os.MkdirAll(prefix, 0755); err != nil {
			return nil, fmt.Errorf("Creation of overlap store directory %s impossible: %w", prefix, err)
		}
	}
	dir, err := os.MkdirTemp(prefix, "overlapabacus-")
	if err != nil {
		return nil, fmt.Errorf("Creation of overlap store directory in %s impossible: %w", prefix, err)
	}
	s := &External{
		dir:        dir,
		path:       filepath.Join(dir, "overlaps.db"),
		buffer:     make(map[string][]Interval),
		bufferSize: bufferSize,
		lengths:    make(map[string]uint32),
		pageSize:   pageSize,
	}
	s.db, err = bolt.Open(s.path, 0600, &bolt.Options{Timeout: time.Second, NoSync: true})
	if err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("Opening of overlap store %s impossible: %w", s.path, err)
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketOverlaps)
		return err
	})
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("Initialization of overlap store %s impossible: %w", s.path, err)
	}
	return s, nil
}

// Path returns the path of the database file.
func (s *External) Path() string {
	return s.path
}

// Pending returns the number of intervals waiting in the write buffer.
func (s *External) Pending() int {
	return s.pending
}

func (s *External) register(id string) {
	if _, ok := s.lengths[id]; !ok {
		s.lengths[id] = 0
	}
}

func (s *External) AddOverlap(id string, iv Interval) error {
	s.register(id)
	return s.push(id, iv)
}

func (s *External) AddLength(id string, length uint32) {
	if s.lengths[id] == 0 {
		s.lengths[id] = length
	}
}

func (s *External) AddOverlapAndLength(id string, iv Interval, length uint32) error {
	s.AddLength(id, length)
	return s.push(id, iv)
}

func (s *External) push(id string, iv Interval) error {
	s.buffer[id] = append(s.buffer[id], iv)
	s.pending++
	if s.pending >= s.bufferSize {
		return s.Flush()
	}
	return nil
}

// Flush merges the write buffer into the database.
func (s *External) Flush() error {
	log.Debugf("Clear buffer, %s pending values", humanize.Comma(int64(s.pending)))
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketOverlaps)
		for id, ivs := range s.buffer {
			key := []byte(id)
			stored, err := decodeIntervals(b.Get(key), make([]Interval, 0, len(ivs)))
			if err != nil {
				return fmt.Errorf("Read %s: %w", id, err)
			}
			stored = append(stored, ivs...)
			if err := b.Put(key, encodeIntervals(stored)); err != nil {
				return fmt.Errorf("Read %s: %w", id, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("Writing to overlap store %s failed: %w", s.path, err)
	}
	s.buffer = make(map[string][]Interval)
	s.pending = 0
	return nil
}

func (s *External) Overlap(id string) ([]Interval, error) {
	ivs := []Interval{}
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		ivs, err = decodeIntervals(tx.Bucket(bucketOverlaps).Get([]byte(id)), ivs)
		return err
	})
	if err != nil {
		return ivs, fmt.Errorf("Reading read %s from overlap store %s failed: %w", id, s.path, err)
	}
	return append(ivs, s.buffer[id]...), nil
}

func (s *External) Length(id string) uint32 {
	return s.lengths[id]
}

func (s *External) Reads() set.Interface {
	ids := set.New(set.NonThreadSafe)
	for id := range s.lengths {
		ids.Add(id)
	}
	return ids
}

// Overlaps drains the store by pages of at most pageSize reads, in read
// identifier order.
func (s *External) Overlaps(page *Page) (bool, error) {
	if !s.draining {
		if s.pending > 0 {
			if err := s.Flush(); err != nil {
				return false, err
			}
		}
		s.keys = make([]string, 0, len(s.lengths))
		for id := range s.lengths {
			s.keys = append(s.keys, id)
		}
		sort.Strings(s.keys)
		s.cursor = 0
		s.draining = true
	}
	end := s.cursor + s.pageSize
	if end > len(s.keys) {
		end = len(s.keys)
	}
	p := make(Page, end-s.cursor)
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketOverlaps)
		for _, id := range s.keys[s.cursor:end] {
			key := []byte(id)
			ivs, err := decodeIntervals(b.Get(key), []Interval{})
			if err != nil {
				return fmt.Errorf("Read %s: %w", id, err)
			}
			p[id] = &Entry{Intervals: ivs, Length: s.lengths[id]}
			delete(s.lengths, id)
			if err := b.Delete(key); err != nil {
				return fmt.Errorf("Read %s: %w", id, err)
			}
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("Paging overlap store %s failed: %w", s.path, err)
	}
	s.cursor = end
	*page = p
	if s.cursor >= len(s.keys) {
		s.keys = nil
		s.cursor = 0
		s.draining = false
		return true, nil
	}
	return false, nil
}

// Close closes the database and removes its directory.
func (s *External) Close() error {
	var err error
	if s.db != nil {
		err = s.db.Close()
		s.db = nil
	}
	if rerr := os.RemoveAll(s.dir); rerr != nil && err == nil {
		err = fmt.Errorf("Removal of overlap store directory %s failed: %w", s.dir, rerr)
	}
	return err
}
