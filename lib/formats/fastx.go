//
// Copyright (C) 2015-2022 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package formats

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strconv"
)

// Sequence is a FASTA or FASTQ record. Qual is nil for FASTA.
type Sequence struct {
	ID   string
	Desc string
	Seq  []byte
	Qual []byte
}

// SequenceReader reads FASTA (multi-line sequences allowed) or FASTQ
// (four lines per record) files.
type SequenceReader struct {
	lineReader
	fastq   bool
	pending []byte
}

func NewSequenceReader(r io.Reader, path string, format Format) (*SequenceReader, error) {
	if !format.IsSequence() {
		return nil, errors.New("Sequence reader requires FASTA or FASTQ")
	}
	return &SequenceReader{lineReader: newLineReader(r, path), fastq: format == FASTQ}, nil
}

func splitHeader(header []byte) (id, desc string) {
	if i := bytes.IndexAny(header, " \t"); i >= 0 {
		return string(header[:i]), string(header[i+1:])
	}
	return string(header), ""
}

func (sr *SequenceReader) Read() (*Sequence, error) {
	if sr.fastq {
		return sr.readFastq()
	}
	return sr.readFasta()
}

func (sr *SequenceReader) readFasta() (*Sequence, error) {
	header := sr.pending
	sr.pending = nil
	if header == nil {
		line, err := sr.next()
		if err != nil {
			return nil, err
		}
		header = append([]byte(nil), line...)
	}
	if header[0] != '>' {
		return nil, sr.errorf("FASTA header must start with '>'")
	}
	s := &Sequence{Seq: []byte{}}
	s.ID, s.Desc = splitHeader(header[1:])
	for {
		line, err := sr.next()
		if err == io.EOF {
			return s, nil
		} else if err != nil {
			return nil, err
		}
		if line[0] == '>' {
			sr.pending = append([]byte(nil), line...)
			return s, nil
		}
		s.Seq = append(s.Seq, line...)
	}
}

func (sr *SequenceReader) readFastq() (*Sequence, error) {
	header, err := sr.next()
	if err != nil {
		return nil, err
	}
	if header[0] != '@' {
		return nil, sr.errorf("FASTQ header must start with '@'")
	}
	s := &Sequence{}
	s.ID, s.Desc = splitHeader(header[1:])
	var lines [3][]byte
	for i := range lines {
		raw, err := sr.r.ReadBytes('\n')
		if err != nil && (err != io.EOF || len(raw) == 0) {
			if err == io.EOF {
				return nil, sr.errorf("Truncated FASTQ record %s", s.ID)
			}
			return nil, err
		}
		sr.line++
		lines[i] = bytes.TrimRight(raw, "\r\n")
	}
	if len(lines[1]) == 0 || lines[1][0] != '+' {
		return nil, sr.errorf("FASTQ separator must start with '+'")
	}
	if len(lines[0]) != len(lines[2]) {
		return nil, sr.errorf("Sequence and quality of %s differ in length", s.ID)
	}
	s.Seq, s.Qual = lines[0], lines[2]
	return s, nil
}

// SequenceWriter writes FASTA records on a single line or FASTQ records.
type SequenceWriter struct {
	w     *bufio.Writer
	fastq bool
}

func NewSequenceWriter(w io.Writer, format Format) (*SequenceWriter, error) {
	if !format.IsSequence() {
		return nil, errors.New("Sequence writer requires FASTA or FASTQ")
	}
	return &SequenceWriter{w: bufio.NewWriter(w), fastq: format == FASTQ}, nil
}

// Write writes s under the name id.
func (sw *SequenceWriter) Write(id string, s *Sequence, seq, qual []byte) error {
	if sw.fastq {
		sw.w.WriteByte('@')
	} else {
		sw.w.WriteByte('>')
	}
	sw.w.WriteString(id)
	if s.Desc != "" {
		sw.w.WriteByte(' ')
		sw.w.WriteString(s.Desc)
	}
	sw.w.WriteByte('\n')
	sw.w.Write(seq)
	if sw.fastq {
		sw.w.WriteString("\n+\n")
		sw.w.Write(qual)
	}
	return sw.w.WriteByte('\n')
}

// WriteRecord writes s unchanged.
func (sw *SequenceWriter) WriteRecord(s *Sequence) error {
	return sw.Write(s.ID, s, s.Seq, s.Qual)
}

// WritePart writes s[begin:end] named id_begin_end.
func (sw *SequenceWriter) WritePart(s *Sequence, begin, end int) error {
	var qual []byte
	if sw.fastq {
		qual = s.Qual[begin:end]
	}
	return sw.Write(s.ID+"_"+strconv.Itoa(begin)+"_"+strconv.Itoa(end), s, s.Seq[begin:end], qual)
}

func (sw *SequenceWriter) Flush() error {
	return sw.w.Flush()
}
