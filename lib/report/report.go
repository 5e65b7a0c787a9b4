//
// Copyright (C) 2015-2022 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

// Package report writes and reads read classification reports.
//
// The plain format has one line per read:
//
//	LABEL<TAB>id<TAB>length<TAB>gap_length,begin,end;...
//
// The JSON format is one object keyed by read id:
//
//	{"id": {"type": LABEL, "length": N, "gaps": [{"begin": b, "end": e}]}}
package report

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"git.sr.ht/~vejnar/OverlapAbacus/lib/classify"
	"git.sr.ht/~vejnar/OverlapAbacus/lib/overlap"
)

const (
	FormatPlain = "yacrd"
	FormatJSON  = "json"
)

// Writer writes classification results in report order.
type Writer interface {
	Write(r *classify.Result) error
	// Close terminates the report. It does not close the underlying writer.
	Close() error
}

// NewWriter returns a writer for format.
func NewWriter(w io.Writer, format string) (Writer, error) {
	switch format {
	case FormatPlain, "":
		return NewPlainWriter(w), nil
	case FormatJSON:
		return NewJSONWriter(w), nil
	}
	return nil, fmt.Errorf("Unknown report format %q", format)
}

// FormatGaps serializes regions as gap_length,begin,end entries joined by ';'.
func FormatGaps(regions []overlap.Interval) string {
	var b strings.Builder
	for i, r := range regions {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(strconv.FormatUint(uint64(r.Len()), 10))
		b.WriteByte(',')
		b.WriteString(strconv.FormatUint(uint64(r.Begin), 10))
		b.WriteByte(',')
		b.WriteString(strconv.FormatUint(uint64(r.End), 10))
	}
	return b.String()
}

type PlainWriter struct {
	w *bufio.Writer
}

func NewPlainWriter(w io.Writer) *PlainWriter {
	return &PlainWriter{w: bufio.NewWriter(w)}
}

func (pw *PlainWriter) Write(r *classify.Result) error {
	_, err := fmt.Fprintf(pw.w, "%s\t%s\t%d\t%s\n", r.Label, r.ID, r.BadPart.Length, FormatGaps(r.BadPart.Regions))
	return err
}

func (pw *PlainWriter) Close() error {
	return pw.w.Flush()
}

type jsonGap struct {
	Begin uint32 `json:"begin"`
	End   uint32 `json:"end"`
}

type jsonRecord struct {
	Type   string    `json:"type"`
	Length uint32    `json:"length"`
	Gaps   []jsonGap `json:"gaps"`
}

// JSONWriter streams a single JSON object, one member per line.
type JSONWriter struct {
	w     *bufio.Writer
	count int
}

func NewJSONWriter(w io.Writer) *JSONWriter {
	return &JSONWriter{w: bufio.NewWriter(w)}
}

func (jw *JSONWriter) Write(r *classify.Result) error {
	key, err := json.Marshal(r.ID)
	if err != nil {
		return err
	}
	rec := jsonRecord{Type: r.Label.String(), Length: r.BadPart.Length, Gaps: make([]jsonGap, len(r.BadPart.Regions))}
	for i, g := range r.BadPart.Regions {
		rec.Gaps[i] = jsonGap{Begin: g.Begin, End: g.End}
	}
	value, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if jw.count == 0 {
		jw.w.WriteString("{\n")
	} else {
		jw.w.WriteString(",\n")
	}
	jw.w.Write(key)
	jw.w.WriteString(": ")
	_, err = jw.w.Write(value)
	jw.count++
	return err
}

func (jw *JSONWriter) Close() error {
	if jw.count == 0 {
		jw.w.WriteString("{")
	}
	jw.w.WriteString("\n}\n")
	return jw.w.Flush()
}
