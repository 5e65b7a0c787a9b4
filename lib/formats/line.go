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
	"fmt"
	"io"
	"strconv"
)

// ParseError locates a malformed record.
type ParseError struct {
	Path string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("Parsing %s at line %d: %v", e.Path, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// lineReader returns the non-empty lines of r and keeps the last raw line.
type lineReader struct {
	r    *bufio.Reader
	path string
	line int
	raw  []byte
}

func newLineReader(r io.Reader, path string) lineReader {
	return lineReader{r: bufio.NewReaderSize(r, 1<<16), path: path}
}

// next returns the next non-empty line without its line terminator.
func (lr *lineReader) next() ([]byte, error) {
	for {
		raw, err := lr.r.ReadBytes('\n')
		if err == io.EOF && len(raw) == 0 {
			return nil, io.EOF
		} else if err != nil && err != io.EOF {
			return nil, fmt.Errorf("Reading %s failed: %w", lr.path, err)
		}
		lr.line++
		lr.raw = raw
		line := bytes.TrimRight(raw, "\r\n")
		if len(line) == 0 {
			continue
		}
		return line, nil
	}
}

func (lr *lineReader) errorf(format string, args ...interface{}) error {
	return &ParseError{Path: lr.path, Line: lr.line, Err: fmt.Errorf(format, args...)}
}

// Line returns the last line read, with its line terminator.
func (lr *lineReader) Line() []byte {
	return lr.raw
}

func (lr *lineReader) uint32Field(fields []string, i int, name string) (uint32, error) {
	v, err := strconv.ParseUint(fields[i], 10, 32)
	if err != nil {
		return 0, lr.errorf("%s: %w", name, err)
	}
	return uint32(v), nil
}

func (lr *lineReader) floatField(fields []string, i int, name string) (float64, error) {
	v, err := strconv.ParseFloat(fields[i], 64)
	if err != nil {
		return 0, lr.errorf("%s: %w", name, err)
	}
	return v, nil
}
