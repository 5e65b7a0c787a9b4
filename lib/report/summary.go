//
// Copyright (C) 2015-2022 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package report

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"git.sr.ht/~vejnar/OverlapAbacus/lib/classify"
)

// Summary counts reads per label.
type Summary struct {
	mu        sync.Mutex
	counts    map[classify.Label]uint64
	Overlaps  uint64
	Uncovered uint64
}

func NewSummary() *Summary {
	return &Summary{counts: make(map[classify.Label]uint64)}
}

func (s *Summary) Add(r *classify.Result) {
	s.mu.Lock()
	s.counts[r.Label]++
	s.Uncovered += r.BadPart.Uncovered()
	s.mu.Unlock()
}

func (s *Summary) Count(l classify.Label) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[l]
}

func (s *Summary) Total() (n uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.counts {
		n += c
	}
	return
}

// WriteSummary writes the counts as JSON to pathReport, or to stdout if
// pathReport is "-".
func WriteSummary(pathReport string, s *Summary) error {
	countReport := map[string]uint64{
		"overlaps":         s.Overlaps,
		"uncovered_length": s.Uncovered,
	}
	for _, l := range []classify.Label{classify.NotBad, classify.Chimeric, classify.NotCovered} {
		countReport[l.String()] = s.Count(l)
	}
	report, _ := json.MarshalIndent(countReport, "", "  ")
	if pathReport != "-" {
		f, err := os.Create(pathReport)
		if err != nil {
			return err
		}
		if _, err = f.Write(report); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}
	fmt.Println(string(report))
	return nil
}
