//
// Copyright (C) 2015-2022 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"

	"git.sr.ht/~vejnar/OverlapAbacus/lib/classify"
	"git.sr.ht/~vejnar/OverlapAbacus/lib/config"
	"git.sr.ht/~vejnar/OverlapAbacus/lib/editor"
	"git.sr.ht/~vejnar/OverlapAbacus/lib/formats"
	"git.sr.ht/~vejnar/OverlapAbacus/lib/report"
	"git.sr.ht/~vejnar/OverlapAbacus/lib/xio"
)

// 1 and 2 cover each other, 3 and 4 share 100 bases, 5 has a gap between
// its overlaps with 6 and 7.
const testPAF = "1\t1000\t0\t1000\t+\t2\t1000\t0\t1000\t1000\t1000\t255\n" +
	"3\t1000\t0\t100\t+\t4\t1000\t0\t100\t100\t100\t60\n" +
	"5\t1000\t0\t400\t+\t6\t1000\t0\t400\t400\t400\t60\n" +
	"5\t1000\t600\t1000\t+\t7\t1000\t0\t400\t400\t400\t60\n"

var testLabels = map[string]classify.Label{
	"1": classify.NotBad,
	"2": classify.NotBad,
	"3": classify.NotCovered,
	"4": classify.NotCovered,
	"5": classify.Chimeric,
	"6": classify.NotBad,
	"7": classify.NotBad,
}

func testConfig(c *qt.C, onDisk bool) *config.Config {
	dir := c.TempDir()
	pathPAF := filepath.Join(dir, "reads.paf")
	c.Assert(os.WriteFile(pathPAF, []byte(testPAF), 0o644), qt.IsNil)
	cfg := &config.Config{
		Inputs:           []string{pathPAF},
		Output:           filepath.Join(dir, "out.yacrd"),
		NotCovered:       config.DefaultNotCovered,
		OnDiskBufferSize: 2,
		PageSize:         2,
		OutputFormat:     report.FormatPlain,
		PathReport:       filepath.Join(dir, "summary.json"),
		NumWorker:        2,
		Audit:            true,
	}
	if onDisk {
		cfg.OnDisk = dir
	}
	c.Assert(cfg.Validate(), qt.IsNil)
	return cfg
}

func readLabels(c *qt.C, path string) map[string]classify.Label {
	f, err := os.Open(path)
	c.Assert(err, qt.IsNil)
	defer f.Close()
	s, err := report.ReadPlain(f, path)
	c.Assert(err, qt.IsNil)
	labels := make(map[string]classify.Label)
	for _, id := range s.Reads() {
		r, _ := s.Result(id)
		labels[id] = r.Label
	}
	return labels
}

func TestIngest(t *testing.T) {
	c := qt.New(t)
	cfg := testConfig(c, false)
	s, n, err := loadOverlaps(context.Background(), cfg, cfg.Inputs)
	c.Assert(err, qt.IsNil)
	defer s.Close()
	c.Assert(n, qt.Equals, uint64(4))
	c.Assert(s.Reads().Size(), qt.Equals, 7)
	c.Assert(s.Length("6"), qt.Equals, uint32(1000))
	ivs, err := s.Overlap("5")
	c.Assert(err, qt.IsNil)
	c.Assert(ivs, qt.HasLen, 2)
}

func TestIngestCorrupt(t *testing.T) {
	c := qt.New(t)
	cfg := testConfig(c, false)
	c.Assert(os.WriteFile(cfg.Inputs[0], []byte(testPAF+"8\tx\t0\t1\t+\t9\t1\t0\t1\t1\t1\t1\n"), 0o644), qt.IsNil)
	_, _, err := loadOverlaps(context.Background(), cfg, cfg.Inputs)
	var perr *formats.ParseError
	c.Assert(err, qt.ErrorAs, &perr)
	c.Assert(perr.Line, qt.Equals, 5)
}

func TestDetect(t *testing.T) {
	for _, onDisk := range []bool{false, true} {
		c := qt.New(t)
		cfg := testConfig(c, onDisk)
		c.Assert(detect(context.Background(), cfg), qt.IsNil)
		c.Assert(readLabels(c, cfg.Output), qt.DeepEquals, testLabels)

		b, err := os.ReadFile(cfg.PathReport)
		c.Assert(err, qt.IsNil)
		var summary map[string]uint64
		c.Assert(json.Unmarshal(b, &summary), qt.IsNil)
		c.Assert(summary, qt.DeepEquals, map[string]uint64{
			"NotBad":           4,
			"Chimeric":         1,
			"NotCovered":       2,
			"overlaps":         4,
			"uncovered_length": 3200,
		})
	}
}

// randomPAF returns n overlaps between 20 reads of fixed lengths.
func randomPAF(n int) string {
	rnd := rand.New(rand.NewSource(42))
	var b strings.Builder
	span := func(length int) (int, int) {
		begin := rnd.Intn(length - 1)
		return begin, begin + 1 + rnd.Intn(length-begin)
	}
	for i := 0; i < n; i++ {
		a, t := rnd.Intn(20), rnd.Intn(20)
		la, lt := 1000+37*a, 1000+37*t
		ba, ea := span(la)
		bt, et := span(lt)
		fmt.Fprintf(&b, "r%d\t%d\t%d\t%d\t+\tr%d\t%d\t%d\t%d\t100\t100\t60\n", a, la, ba, ea, t, lt, bt, et)
	}
	return b.String()
}

func TestDetectStoresIdentical(t *testing.T) {
	paf := randomPAF(300)
	for _, format := range []string{report.FormatPlain, report.FormatJSON} {
		c := qt.New(t)
		var outputs [2][]byte
		for i, onDisk := range []bool{false, true} {
			cfg := testConfig(c, onDisk)
			c.Assert(os.WriteFile(cfg.Inputs[0], []byte(paf), 0o644), qt.IsNil)
			cfg.Coverage = 1
			cfg.OnDiskBufferSize = 7
			cfg.PageSize = 3
			cfg.OutputFormat = format
			c.Assert(detect(context.Background(), cfg), qt.IsNil)
			b, err := os.ReadFile(cfg.Output)
			c.Assert(err, qt.IsNil)
			outputs[i] = b
		}
		c.Assert(len(outputs[0]) > 0, qt.IsTrue)
		c.Assert(string(outputs[1]), qt.Equals, string(outputs[0]), qt.Commentf("format %s", format))
	}
}

func TestDetectFromReport(t *testing.T) {
	c := qt.New(t)
	cfg := testConfig(c, false)
	c.Assert(detect(context.Background(), cfg), qt.IsNil)

	// A stricter threshold relabels the previous report
	cfg.Inputs = []string{cfg.Output}
	cfg.Output = filepath.Join(c.TempDir(), "relabel.yacrd")
	cfg.NotCovered = 0.5
	c.Assert(detect(context.Background(), cfg), qt.IsNil)
	labels := readLabels(c, cfg.Output)
	c.Assert(labels["6"], qt.Equals, classify.NotCovered)
	c.Assert(labels["5"], qt.Equals, classify.Chimeric)
}

func TestDetectMixedInputs(t *testing.T) {
	c := qt.New(t)
	cfg := testConfig(c, false)
	cfg.Inputs = append(cfg.Inputs, filepath.Join(c.TempDir(), "old.yacrd"))
	c.Assert(detect(context.Background(), cfg), qt.ErrorMatches, "A report input .* can't be combined with other inputs")
}

func TestEditSplit(t *testing.T) {
	for _, onDisk := range []bool{false, true} {
		c := qt.New(t)
		cfg := testConfig(c, onDisk)
		dir := c.TempDir()
		pathIn := filepath.Join(dir, "reads.fasta")
		pathOut := filepath.Join(dir, "split.fasta.gz")
		seq := strings.Repeat("A", 1000)
		c.Assert(os.WriteFile(pathIn, []byte(">1\n"+seq+"\n>3\n"+seq+"\n>5 sample\n"+seq+"\n"), 0o644), qt.IsNil)

		ef := &editFlags{inputs: []string{pathIn}, outputs: []string{pathOut}}
		c.Assert(edit(context.Background(), cfg, editor.Split, ef), qt.IsNil)
		c.Assert(readLabels(c, cfg.Output), qt.DeepEquals, testLabels)

		rc, err := os.Open(pathOut)
		c.Assert(err, qt.IsNil)
		defer rc.Close()
		seqs := readSequences(c, rc, pathOut)
		c.Assert(seqs, qt.DeepEquals, map[string]int{"1": 1000, "5_0_400": 400, "5_600_1000": 400})
	}
}

func TestEditUnsupported(t *testing.T) {
	c := qt.New(t)
	cfg := testConfig(c, false)
	ef := &editFlags{inputs: []string{cfg.Inputs[0]}, outputs: []string{filepath.Join(c.TempDir(), "out.paf")}}
	c.Assert(edit(context.Background(), cfg, editor.Scrubb, ef), qt.ErrorIs, editor.ErrUnsupported)

	ef.outputs = nil
	c.Assert(edit(context.Background(), cfg, editor.Filter, ef), qt.ErrorMatches, "1 edit input.* but 0 edit output.*")
}

func readSequences(c *qt.C, r io.Reader, path string) map[string]int {
	zr, _, err := xio.NewReader(r)
	c.Assert(err, qt.IsNil)
	defer zr.Close()
	sr, err := formats.NewSequenceReader(zr, path, formats.FASTA)
	c.Assert(err, qt.IsNil)
	seqs := make(map[string]int)
	for {
		s, err := sr.Read()
		if err == io.EOF {
			break
		}
		c.Assert(err, qt.IsNil)
		seqs[s.ID] = len(s.Seq)
	}
	return seqs
}
