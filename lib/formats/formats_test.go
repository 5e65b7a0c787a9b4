//
// Copyright (C) 2015-2022 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package formats

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"

	"git.sr.ht/~vejnar/OverlapAbacus/lib/overlap"
)

func TestDetect(t *testing.T) {
	c := qt.New(t)
	for name, want := range map[string]Format{
		"reads.paf":        PAF,
		"reads.paf.gz":     PAF,
		"reads.m4":         MHAP,
		"reads.mhap.zst":   MHAP,
		"reads.yacrd":      Yacrd,
		"report.json":      JSON,
		"reads.fastq.bz2":  FASTQ,
		"reads.fq":         FASTQ,
		"reads.fasta":      FASTA,
		"reads.fa.lz4":     FASTA,
		"align.bam":        BAM,
		"align.sam.gz":     SAM,
		"sample.paf":       PAF,
		"run.sample.fasta": FASTA,
	} {
		got, err := Detect(name)
		c.Assert(err, qt.IsNil)
		c.Assert(got, qt.Equals, want, qt.Commentf(name))
	}
	_, err := Detect("reads.txt")
	c.Assert(errors.Is(err, ErrUnknownFormat), qt.IsTrue)
}

func TestParseFormat(t *testing.T) {
	c := qt.New(t)
	f, err := ParseFormat("M4")
	c.Assert(err, qt.IsNil)
	c.Assert(f, qt.Equals, MHAP)
	c.Assert(f.String(), qt.Equals, "mhap")
	c.Assert(f.IsOverlap(), qt.IsTrue)
	_, err = ParseFormat("gfa")
	c.Assert(errors.Is(err, ErrUnknownFormat), qt.IsTrue)
}

const pafData = "1\t12000\t20\t4500\t-\t2\t10000\t5500\t10000\t0\t0\t255\ttp:A:P\n" +
	"\n" +
	"1\t12000\t5500\t10000\t-\t3\t10000\t0\t4500\t0\t0\t255"

func readAll(c *qt.C, rr overlap.RecordReader) []overlap.Record {
	var recs []overlap.Record
	for {
		r, err := rr.Read()
		if err == io.EOF {
			return recs
		}
		c.Assert(err, qt.IsNil)
		recs = append(recs, *r)
	}
}

func TestPAF(t *testing.T) {
	c := qt.New(t)
	pr := NewPAFReader(strings.NewReader(pafData), "test.paf")
	r, err := pr.Read()
	c.Assert(err, qt.IsNil)
	c.Assert(*r, qt.DeepEquals, overlap.Record{
		ReadA: "1", LengthA: 12000, IntervalA: overlap.Interval{Begin: 20, End: 4500},
		ReadB: "2", LengthB: 10000, IntervalB: overlap.Interval{Begin: 5500, End: 10000},
	})
	c.Assert(string(pr.Line()), qt.Equals, strings.SplitAfter(pafData, "\n")[0])
	c.Assert(readAll(c, pr), qt.HasLen, 1)
}

func TestPAFErrors(t *testing.T) {
	c := qt.New(t)
	for _, test := range []struct {
		data string
		line int
		msg  string
	}{
		{"1\t12000\t20\t4500\t-\t2\t10000\t5500\t10000\t0\t0\n", 1, ".*Expected at least 12 columns, got 11"},
		{"\n1\tlong\t20\t4500\t-\t2\t10000\t5500\t10000\t0\t0\t255\n", 2, ".*query length.*"},
		{"1\t12000\t20\t4500\t-\t2\t10000\t-5\t10000\t0\t0\t255\n", 1, ".*target start.*"},
	} {
		_, err := NewPAFReader(strings.NewReader(test.data), "bad.paf").Read()
		var perr *ParseError
		c.Assert(errors.As(err, &perr), qt.IsTrue)
		c.Assert(perr.Line, qt.Equals, test.line)
		c.Assert(perr.Path, qt.Equals, "bad.paf")
		c.Assert(err, qt.ErrorMatches, test.msg)
	}
}

func TestMHAP(t *testing.T) {
	c := qt.New(t)
	data := "1 2 0.1 2 0 20 4500 12000 0 5500 10000 10000\n" +
		"1 3 0.1 2.5 0 5500 10000 12000 0 0 4500 10000\n"
	rr, err := NewOverlapReader(strings.NewReader(data), "test.mhap", MHAP)
	c.Assert(err, qt.IsNil)
	recs := readAll(c, rr)
	c.Assert(recs, qt.DeepEquals, []overlap.Record{
		{ReadA: "1", LengthA: 12000, IntervalA: overlap.Interval{Begin: 20, End: 4500}, ReadB: "2", LengthB: 10000, IntervalB: overlap.Interval{Begin: 5500, End: 10000}},
		{ReadA: "1", LengthA: 12000, IntervalA: overlap.Interval{Begin: 5500, End: 10000}, ReadB: "3", LengthB: 10000, IntervalB: overlap.Interval{Begin: 0, End: 4500}},
	})

	_, err = NewMHAPReader(strings.NewReader("1 2 0.1 x 0 20 4500 12000 0 5500 10000 10000\n"), "bad.m4").Read()
	c.Assert(err, qt.ErrorMatches, "Parsing bad.m4 at line 1: shared min-mers: .*")

	_, err = NewOverlapReader(strings.NewReader(""), "x.fa", FASTA)
	c.Assert(errors.Is(err, ErrUnknownFormat), qt.IsTrue)
}

func TestFasta(t *testing.T) {
	c := qt.New(t)
	data := ">1 first read\nACTGG\nGGGG\n\n>2\nAC\n>3\n"
	sr, err := NewSequenceReader(strings.NewReader(data), "test.fa", FASTA)
	c.Assert(err, qt.IsNil)
	var seqs []*Sequence
	for {
		s, err := sr.Read()
		if err == io.EOF {
			break
		}
		c.Assert(err, qt.IsNil)
		seqs = append(seqs, s)
	}
	c.Assert(seqs, qt.DeepEquals, []*Sequence{
		{ID: "1", Desc: "first read", Seq: []byte("ACTGGGGGG")},
		{ID: "2", Seq: []byte("AC")},
		{ID: "3", Seq: []byte{}},
	})

	var buf bytes.Buffer
	sw, err := NewSequenceWriter(&buf, FASTA)
	c.Assert(err, qt.IsNil)
	c.Assert(sw.WriteRecord(seqs[0]), qt.IsNil)
	c.Assert(sw.WritePart(seqs[0], 2, 5), qt.IsNil)
	c.Assert(sw.Flush(), qt.IsNil)
	c.Assert(buf.String(), qt.Equals, ">1 first read\nACTGGGGGG\n>1_2_5 first read\nTGG\n")
}

func TestFastq(t *testing.T) {
	c := qt.New(t)
	data := "@1\nACTG\n+\n@@II\n@2 desc\nAC\n+2\nII\n"
	sr, err := NewSequenceReader(strings.NewReader(data), "test.fq", FASTQ)
	c.Assert(err, qt.IsNil)
	s, err := sr.Read()
	c.Assert(err, qt.IsNil)
	c.Assert(s, qt.DeepEquals, &Sequence{ID: "1", Seq: []byte("ACTG"), Qual: []byte("@@II")})
	s, err = sr.Read()
	c.Assert(err, qt.IsNil)
	c.Assert(s.Desc, qt.Equals, "desc")
	_, err = sr.Read()
	c.Assert(err, qt.Equals, io.EOF)

	var buf bytes.Buffer
	sw, err := NewSequenceWriter(&buf, FASTQ)
	c.Assert(err, qt.IsNil)
	c.Assert(sw.WritePart(&Sequence{ID: "1", Seq: []byte("ACTG"), Qual: []byte("@@II")}, 1, 3), qt.IsNil)
	c.Assert(sw.Flush(), qt.IsNil)
	c.Assert(buf.String(), qt.Equals, "@1_1_3\nCT\n+\n@I\n")

	_, err = mustReader(c, "@1\nACTG\n+\nII\n", FASTQ).Read()
	c.Assert(err, qt.ErrorMatches, ".*differ in length")
	_, err = mustReader(c, "@1\nACTG\n", FASTQ).Read()
	c.Assert(err, qt.ErrorMatches, ".*Truncated FASTQ record 1")
	_, err = mustReader(c, "ACTG\n", FASTA).Read()
	c.Assert(err, qt.ErrorMatches, ".*must start with '>'")
}

func mustReader(c *qt.C, data string, f Format) *SequenceReader {
	sr, err := NewSequenceReader(strings.NewReader(data), "test", f)
	c.Assert(err, qt.IsNil)
	return sr
}

func TestReadLengths(t *testing.T) {
	c := qt.New(t)
	var got []ReadLength
	n, err := ReadLengths(strings.NewReader("1\t22\t3\t60\t61\n2\t8\n"), "reads.fa.fai", func(rl ReadLength) error {
		got = append(got, rl)
		return nil
	})
	c.Assert(err, qt.IsNil)
	c.Assert(n, qt.Equals, 2)
	c.Assert(got, qt.DeepEquals, []ReadLength{{"1", 22}, {"2", 8}})

	_, err = ReadLengths(strings.NewReader("1\t22\n2\n"), "bad.fai", func(ReadLength) error { return nil })
	c.Assert(err, qt.ErrorMatches, "Parsing bad.fai at line 2: Expected at least 2 columns, got 1")
}
