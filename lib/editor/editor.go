//
// Copyright (C) 2015-2022 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

// Package editor rewrites sequence and overlap files according to the
// classification of their reads.
package editor

import (
	"errors"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"
	"gopkg.in/fatih/set.v0"

	"git.sr.ht/~vejnar/OverlapAbacus/lib/classify"
	"git.sr.ht/~vejnar/OverlapAbacus/lib/formats"
	"git.sr.ht/~vejnar/OverlapAbacus/lib/overlap"
)

var ErrUnsupported = errors.New("Operation not supported for this format")

type Operation int8

const (
	Filter Operation = iota
	Extract
	Split
	Scrubb
)

var operationNames = [...]string{"filter", "extract", "split", "scrubb"}

func (op Operation) String() string {
	return operationNames[op]
}

// Lookup gives the bad part of a read. classify.Cache implements it.
type Lookup interface {
	BadPart(id string) (*classify.BadPart, error)
}

// Stats counts the records read and written by an edit.
type Stats struct {
	In, Out uint64
	// Reads holds the identifiers of the reads written.
	Reads set.Interface
}

// Editor applies an operation using the bad parts of lookup.
type Editor struct {
	lookup     Lookup
	notCovered float64
}

func New(lookup Lookup, notCovered float64) *Editor {
	return &Editor{lookup: lookup, notCovered: notCovered}
}

// badPart returns the bad part of a read and its label. A read unknown to
// the classification has no overlap: it is fully uncovered over seqLen.
func (e *Editor) badPart(id string, seqLen int) (*classify.BadPart, classify.Label, error) {
	bp, err := e.lookup.BadPart(id)
	if err != nil {
		return nil, classify.NotCovered, err
	}
	if bp.Length == 0 && seqLen > 0 {
		bp = &classify.BadPart{Regions: []overlap.Interval{{Begin: 0, End: uint32(seqLen)}}, Length: uint32(seqLen)}
	}
	return bp, bp.Label(e.notCovered), nil
}

// Run reads r in format and writes the edited records to w.
func (e *Editor) Run(op Operation, r io.Reader, w io.Writer, path string, format formats.Format) (*Stats, error) {
	switch {
	case format.IsSequence():
		return e.sequences(op, r, w, path, format)
	case format == formats.PAF || format == formats.MHAP:
		if op != Filter && op != Extract {
			return nil, fmt.Errorf("%w: %s on %s", ErrUnsupported, op, format)
		}
		return e.overlaps(op, r, w, path, format)
	}
	return nil, fmt.Errorf("%w: %s on %s", ErrUnsupported, op, format)
}

func (e *Editor) overlaps(op Operation, r io.Reader, w io.Writer, path string, format formats.Format) (*Stats, error) {
	or, err := formats.NewOverlapReader(r, path, format)
	if err != nil {
		return nil, err
	}
	stats := &Stats{Reads: set.New(set.NonThreadSafe)}
	for {
		rec, err := or.Read()
		if err == io.EOF {
			return stats, nil
		} else if err != nil {
			return stats, err
		}
		stats.In++
		_, labelA, err := e.badPart(rec.ReadA, 0)
		if err != nil {
			return stats, err
		}
		_, labelB, err := e.badPart(rec.ReadB, 0)
		if err != nil {
			return stats, err
		}
		bothNotBad := labelA == classify.NotBad && labelB == classify.NotBad
		if bothNotBad == (op == Filter) {
			line := or.Line()
			if _, err = w.Write(line); err != nil {
				return stats, err
			}
			if line[len(line)-1] != '\n' {
				if _, err = w.Write([]byte{'\n'}); err != nil {
					return stats, err
				}
			}
			stats.Out++
			stats.Reads.Add(rec.ReadA, rec.ReadB)
		}
	}
}

func (e *Editor) sequences(op Operation, r io.Reader, w io.Writer, path string, format formats.Format) (*Stats, error) {
	sr, err := formats.NewSequenceReader(r, path, format)
	if err != nil {
		return nil, err
	}
	sw, err := formats.NewSequenceWriter(w, format)
	if err != nil {
		return nil, err
	}
	stats := &Stats{Reads: set.New(set.NonThreadSafe)}
	for {
		s, err := sr.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return stats, err
		}
		stats.In++
		bp, label, err := e.badPart(s.ID, len(s.Seq))
		if err != nil {
			return stats, err
		}
		var pieces [][2]int
		switch op {
		case Filter:
			if label == classify.NotBad {
				pieces = [][2]int{{0, -1}}
			}
		case Extract:
			if label != classify.NotBad {
				pieces = [][2]int{{0, -1}}
			}
		case Split:
			if label == classify.NotBad {
				pieces = [][2]int{{0, -1}}
			} else if label == classify.Chimeric {
				pieces = splitPieces(s, bp)
			}
		case Scrubb:
			if label == classify.NotBad {
				pieces = [][2]int{{0, -1}}
			} else if label == classify.Chimeric {
				pieces = scrubbPieces(s, bp)
			}
		}
		for _, p := range pieces {
			if p[1] < 0 {
				err = sw.WriteRecord(s)
			} else {
				err = sw.WritePart(s, p[0], p[1])
			}
			if err != nil {
				return stats, err
			}
			stats.Out++
		}
		if len(pieces) > 0 {
			stats.Reads.Add(s.ID)
		}
	}
	return stats, sw.Flush()
}

// splitPieces cuts a read at its internal bad regions. Positions past the
// end of the sequence stop the split.
func splitPieces(s *formats.Sequence, bp *classify.BadPart) [][2]int {
	positions := []int{0}
	for _, r := range bp.Regions {
		if r.Begin == 0 || r.End == bp.Length {
			continue
		}
		positions = append(positions, int(r.Begin), int(r.End))
	}
	positions = append(positions, int(bp.Length))
	var pieces [][2]int
	for i := 0; i+1 < len(positions); i += 2 {
		begin, end := positions[i], positions[i+1]
		if begin > len(s.Seq) || end > len(s.Seq) {
			log.Warnf("Read %s: split position %d is larger than the read (%d), this position and next are ignored", s.ID, end, len(s.Seq))
			break
		}
		pieces = append(pieces, [2]int{begin, end})
	}
	return pieces
}

// scrubbPieces returns the parts of a read outside of every bad region.
// A read without bad region is kept whole.
func scrubbPieces(s *formats.Sequence, bp *classify.BadPart) [][2]int {
	if len(bp.Regions) == 0 {
		return [][2]int{{0, -1}}
	}
	var pieces [][2]int
	pos := 0
	end := len(s.Seq)
	if int(bp.Length) < end {
		end = int(bp.Length)
	}
	for _, r := range bp.Regions {
		b := int(r.Begin)
		if b > end {
			b = end
		}
		if b > pos {
			pieces = append(pieces, [2]int{pos, b})
		}
		if int(r.End) > pos {
			pos = int(r.End)
		}
	}
	if pos < end {
		pieces = append(pieces, [2]int{pos, end})
	}
	return pieces
}
