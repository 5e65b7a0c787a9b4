//
// Copyright (C) 2015-2022 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

// Package esam turns SAM/BAM alignments of reads against reads into
// overlap records.
package esam

import (
	"fmt"
	"io"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"
	log "github.com/sirupsen/logrus"

	"git.sr.ht/~vejnar/OverlapAbacus/lib/overlap"
)

// PathSAM stores Path to SAM (Binary=false) or BAM (Binary=true) file.
type PathSAM struct {
	Path   string
	Binary bool
}

// Reader reads alignments and returns one overlap per primary alignment.
type Reader struct {
	rr      sam.RecordReader
	bam     *bam.Reader
	path    string
	nRecord int
	// MinMapQ skips alignments with a lower mapping quality.
	MinMapQ byte
	// Skipped counts the alignments not converted.
	Skipped uint64
}

// NewReader reads SAM or BAM from r. nWorker is the number of BGZF
// decompression goroutines.
func NewReader(r io.Reader, pathSAM PathSAM, nWorker int) (*Reader, error) {
	sr := &Reader{path: pathSAM.Path}
	var err error
	if pathSAM.Binary {
		sr.bam, err = bam.NewReader(r, nWorker)
		sr.rr = sr.bam
	} else {
		sr.rr, err = sam.NewReader(r)
	}
	if err != nil {
		return nil, fmt.Errorf("Opening %s failed: %w", pathSAM.Path, err)
	}
	return sr, nil
}

// Read returns the next overlap, io.EOF at the end of the alignments.
func (sr *Reader) Read() (*overlap.Record, error) {
	for {
		r, err := sr.rr.Read()
		if err == io.EOF {
			return nil, io.EOF
		} else if err != nil {
			return nil, fmt.Errorf("Reading %s at record %d failed: %w", sr.path, sr.nRecord+1, err)
		}
		sr.nRecord++
		if !Usable(r, sr.MinMapQ) {
			sr.Skipped++
			continue
		}
		qBegin, qEnd, qLength := QuerySpan(r)
		if qLength == 0 {
			sr.Skipped++
			log.Debugf("Alignment of %s without query length skipped", r.Name)
			continue
		}
		return &overlap.Record{
			ReadA:     r.Name,
			LengthA:   uint32(qLength),
			IntervalA: overlap.Interval{Begin: uint32(qBegin), End: uint32(qEnd)},
			ReadB:     r.Ref.Name(),
			LengthB:   uint32(r.Ref.Len()),
			IntervalB: overlap.Interval{Begin: uint32(r.Pos), End: uint32(r.End())},
		}, nil
	}
}

// Close releases the BGZF decompression goroutines.
func (sr *Reader) Close() error {
	if sr.bam != nil {
		return sr.bam.Close()
	}
	return nil
}

// Usable reports whether r is a mapped primary alignment of a read against
// another read.
func Usable(r *sam.Record, minMapQ byte) bool {
	if r.Flags&(sam.Unmapped|sam.Secondary|sam.Supplementary) != 0 {
		return false
	}
	if r.Ref == nil || r.Pos < 0 || r.MapQ < minMapQ {
		return false
	}
	return r.Name != r.Ref.Name()
}

// QuerySpan returns the aligned part of the read in its original
// orientation, and the read length including clipped bases.
func QuerySpan(r *sam.Record) (begin, end, length int) {
	var aligned, head, tail int
	inHead := true
	for _, co := range r.Cigar {
		t := co.Type()
		switch t {
		case sam.CigarSoftClipped, sam.CigarHardClipped:
			if inHead {
				head += co.Len()
			} else {
				tail += co.Len()
			}
		default:
			inHead = false
			aligned += co.Len() * t.Consumes().Query
		}
	}
	length = head + aligned + tail
	begin, end = head, head+aligned
	if r.Flags&sam.Reverse != 0 {
		begin, end = flip(begin, end, length)
	}
	return
}

// flip translates [begin,end) to the reverse strand of a sequence of length.
func flip(begin, end, length int) (int, int) {
	return length - end, length - begin
}
