//
// Copyright (C) 2015-2022 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package formats

import (
	"io"
	"strings"
)

// ReadLength is one row of a length table.
type ReadLength struct {
	Name   string
	Length uint32
}

// ReadLengths parses a tabulated file with read name and length in the
// first two columns, such as a FASTA index (.fai), and calls fn for each row.
func ReadLengths(r io.Reader, path string, fn func(ReadLength) error) (n int, err error) {
	lr := newLineReader(r, path)
	for {
		line, err := lr.next()
		if err == io.EOF {
			return n, nil
		} else if err != nil {
			return n, err
		}
		fields := strings.Split(string(line), "\t")
		if len(fields) < 2 {
			return n, lr.errorf("Expected at least 2 columns, got %d", len(fields))
		}
		length, err := lr.uint32Field(fields, 1, "length")
		if err != nil {
			return n, err
		}
		if err = fn(ReadLength{Name: fields[0], Length: length}); err != nil {
			return n, err
		}
		n++
	}
}
