//
// Copyright (C) 2015-2022 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package formats

import (
	"fmt"
	"io"
	"strings"

	"git.sr.ht/~vejnar/OverlapAbacus/lib/overlap"
)

const (
	pafMinColumns  = 12
	mhapNumColumns = 12
)

// OverlapReader is a record reader keeping the raw text of the last record.
type OverlapReader interface {
	overlap.RecordReader
	Line() []byte
}

// NewOverlapReader returns the reader of an overlap text format.
func NewOverlapReader(r io.Reader, path string, format Format) (OverlapReader, error) {
	switch format {
	case PAF:
		return NewPAFReader(r, path), nil
	case MHAP:
		return NewMHAPReader(r, path), nil
	}
	return nil, fmt.Errorf("%w: %s is not a text overlap format", ErrUnknownFormat, format)
}

// PAFReader reads tab separated PAF records:
// qname qlen qstart qend strand tname tlen tstart tend matches block mapq [tags].
type PAFReader struct {
	lineReader
}

func NewPAFReader(r io.Reader, path string) *PAFReader {
	return &PAFReader{lineReader: newLineReader(r, path)}
}

func (pr *PAFReader) Read() (*overlap.Record, error) {
	line, err := pr.next()
	if err != nil {
		return nil, err
	}
	fields := strings.Split(string(line), "\t")
	if len(fields) < pafMinColumns {
		return nil, pr.errorf("Expected at least %d columns, got %d", pafMinColumns, len(fields))
	}
	var rec overlap.Record
	rec.ReadA = fields[0]
	rec.ReadB = fields[5]
	if rec.LengthA, err = pr.uint32Field(fields, 1, "query length"); err != nil {
		return nil, err
	}
	if rec.IntervalA.Begin, err = pr.uint32Field(fields, 2, "query start"); err != nil {
		return nil, err
	}
	if rec.IntervalA.End, err = pr.uint32Field(fields, 3, "query end"); err != nil {
		return nil, err
	}
	if rec.LengthB, err = pr.uint32Field(fields, 6, "target length"); err != nil {
		return nil, err
	}
	if rec.IntervalB.Begin, err = pr.uint32Field(fields, 7, "target start"); err != nil {
		return nil, err
	}
	if rec.IntervalB.End, err = pr.uint32Field(fields, 8, "target end"); err != nil {
		return nil, err
	}
	for i, name := range [...]string{"matches", "block length", "mapping quality"} {
		if _, err = pr.uint32Field(fields, 9+i, name); err != nil {
			return nil, err
		}
	}
	return &rec, nil
}

// MHAPReader reads space separated MHAP records:
// a b error shared_mers strand_a beg_a end_a len_a strand_b beg_b end_b len_b.
type MHAPReader struct {
	lineReader
}

func NewMHAPReader(r io.Reader, path string) *MHAPReader {
	return &MHAPReader{lineReader: newLineReader(r, path)}
}

func (mr *MHAPReader) Read() (*overlap.Record, error) {
	line, err := mr.next()
	if err != nil {
		return nil, err
	}
	fields := strings.Fields(string(line))
	if len(fields) != mhapNumColumns {
		return nil, mr.errorf("Expected %d columns, got %d", mhapNumColumns, len(fields))
	}
	var rec overlap.Record
	rec.ReadA = fields[0]
	rec.ReadB = fields[1]
	if _, err = mr.floatField(fields, 2, "error"); err != nil {
		return nil, err
	}
	// Shared min-mers are an integer or a float depending on the overlapper
	if _, err = mr.floatField(fields, 3, "shared min-mers"); err != nil {
		return nil, err
	}
	if rec.IntervalA.Begin, err = mr.uint32Field(fields, 5, "begin a"); err != nil {
		return nil, err
	}
	if rec.IntervalA.End, err = mr.uint32Field(fields, 6, "end a"); err != nil {
		return nil, err
	}
	if rec.LengthA, err = mr.uint32Field(fields, 7, "length a"); err != nil {
		return nil, err
	}
	if rec.IntervalB.Begin, err = mr.uint32Field(fields, 9, "begin b"); err != nil {
		return nil, err
	}
	if rec.IntervalB.End, err = mr.uint32Field(fields, 10, "end b"); err != nil {
		return nil, err
	}
	if rec.LengthB, err = mr.uint32Field(fields, 11, "length b"); err != nil {
		return nil, err
	}
	return &rec, nil
}
