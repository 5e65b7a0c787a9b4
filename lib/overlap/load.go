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
	"io"

	log "github.com/sirupsen/logrus"
)

// Record is one pairwise overlap normalized from any input format.
type Record struct {
	ReadA, ReadB         string
	LengthA, LengthB     uint32
	IntervalA, IntervalB Interval
}

// RecordReader is implemented by the overlap parsers.
type RecordReader interface {
	Read() (*Record, error)
}

// Add records both sides of the overlap in the store.
func Add(s Store, r *Record) error {
	if r.ReadA == "" || r.ReadB == "" {
		return fmt.Errorf("Overlap with empty read name")
	}
	for _, side := range [2]struct {
		id     string
		length uint32
		iv     Interval
	}{{r.ReadA, r.LengthA, r.IntervalA}, {r.ReadB, r.LengthB, r.IntervalB}} {
		if log.IsLevelEnabled(log.DebugLevel) {
			if known := s.Length(side.id); known != 0 && known != side.length {
				log.Debugf("Read %s: length %d ignored, keeping %d", side.id, side.length, known)
			}
		}
		if err := s.AddOverlapAndLength(side.id, side.iv, side.length); err != nil {
			return err
		}
	}
	return nil
}

// Load adds every record of rr to the store and returns the number of records.
func Load(s Store, rr RecordReader) (n uint64, err error) {
	for {
		r, err := rr.Read()
		if err == io.EOF {
			return n, nil
		} else if err != nil {
			return n, err
		}
		if err = Add(s, r); err != nil {
			return n, err
		}
		n++
	}
}
