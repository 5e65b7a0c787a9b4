//
// Copyright (C) 2015-2022 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package report

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"git.sr.ht/~vejnar/OverlapAbacus/lib/classify"
	"git.sr.ht/~vejnar/OverlapAbacus/lib/overlap"
)

const maxLineLength = 64 * 1024 * 1024

// CorruptError reports an unparsable report line.
type CorruptError struct {
	Path string
	Line int
	Err  error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("Corrupt report %s at line %d: %v", e.Path, e.Line, e.Err)
}

func (e *CorruptError) Unwrap() error {
	return e.Err
}

// Source serves the bad parts stored in a previous report.
type Source struct {
	results map[string]*classify.Result
}

func (s *Source) BadPart(id string) (*classify.BadPart, error) {
	if r, ok := s.results[id]; ok {
		return r.BadPart, nil
	}
	return &classify.BadPart{Regions: []overlap.Interval{}}, nil
}

func (s *Source) Reads() []string {
	ids := make([]string, 0, len(s.results))
	for id := range s.results {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Result returns the report entry of a read, including its recorded label.
func (s *Source) Result(id string) (*classify.Result, bool) {
	r, ok := s.results[id]
	return r, ok
}

// Read parses a report in format. path is only used in errors.
func Read(r io.Reader, path string, format string) (*Source, error) {
	switch format {
	case FormatPlain, "":
		return ReadPlain(r, path)
	case FormatJSON:
		return ReadJSON(r, path)
	}
	return nil, fmt.Errorf("Unknown report format %q", format)
}

// ParseGaps is the inverse of FormatGaps.
func ParseGaps(s string) ([]overlap.Interval, error) {
	regions := []overlap.Interval{}
	if s == "" {
		return regions, nil
	}
	for _, entry := range strings.Split(s, ";") {
		fields := strings.Split(entry, ",")
		if len(fields) != 3 {
			return nil, fmt.Errorf("Gap %q must have 3 fields", entry)
		}
		var v [3]uint32
		for i, f := range fields {
			n, err := strconv.ParseUint(f, 10, 32)
			if err != nil {
				return nil, fmt.Errorf("Gap %q: %w", entry, err)
			}
			v[i] = uint32(n)
		}
		if v[1] > v[2] || v[0] != v[2]-v[1] {
			return nil, fmt.Errorf("Gap %q is inconsistent", entry)
		}
		regions = append(regions, overlap.Interval{Begin: v[1], End: v[2]})
	}
	return regions, nil
}

// ParsePlainLine parses one line of a plain report.
func ParsePlainLine(line string) (*classify.Result, error) {
	fields := strings.Split(line, "\t")
	if len(fields) != 4 {
		return nil, fmt.Errorf("Expected 4 fields, got %d", len(fields))
	}
	label, err := classify.ParseLabel(fields[0])
	if err != nil {
		return nil, err
	}
	if fields[1] == "" {
		return nil, errors.New("Empty read name")
	}
	length, err := strconv.ParseUint(fields[2], 10, 32)
	if err != nil {
		return nil, fmt.Errorf("Length: %w", err)
	}
	regions, err := ParseGaps(fields[3])
	if err != nil {
		return nil, err
	}
	return &classify.Result{ID: fields[1], Label: label, BadPart: &classify.BadPart{Regions: regions, Length: uint32(length)}}, nil
}

func ReadPlain(r io.Reader, path string) (*Source, error) {
	s := &Source{results: make(map[string]*classify.Result)}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineLength)
	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		res, err := ParsePlainLine(scanner.Text())
		if err != nil {
			return nil, &CorruptError{Path: path, Line: line, Err: err}
		}
		s.results[res.ID] = res
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("Reading report %s failed: %w", path, err)
	}
	return s, nil
}

func ReadJSON(r io.Reader, path string) (*Source, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("Reading report %s failed: %w", path, err)
	}
	var records map[string]jsonRecord
	if err := json.Unmarshal(data, &records); err != nil {
		var offset int64
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &syntaxErr) {
			offset = syntaxErr.Offset
		} else if errors.As(err, &typeErr) {
			offset = typeErr.Offset
		}
		if offset > int64(len(data)) {
			offset = int64(len(data))
		}
		return nil, &CorruptError{Path: path, Line: bytes.Count(data[:offset], []byte{'\n'}) + 1, Err: err}
	}
	s := &Source{results: make(map[string]*classify.Result, len(records))}
	for id, rec := range records {
		label, err := classify.ParseLabel(rec.Type)
		if err != nil {
			return nil, &CorruptError{Path: path, Err: fmt.Errorf("Read %s: %w", id, err)}
		}
		regions := make([]overlap.Interval, len(rec.Gaps))
		for i, g := range rec.Gaps {
			if g.Begin > g.End {
				return nil, &CorruptError{Path: path, Err: fmt.Errorf("Read %s: gap [%d,%d) is inconsistent", id, g.Begin, g.End)}
			}
			regions[i] = overlap.Interval{Begin: g.Begin, End: g.End}
		}
		s.results[id] = &classify.Result{ID: id, Label: label, BadPart: &classify.BadPart{Regions: regions, Length: rec.Length}}
	}
	return s, nil
}
