//
// Copyright (C) 2015-2022 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

// Package xio opens compressed inputs and outputs. The compression of an
// input is detected from its first bytes.
package xio

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4"
	log "github.com/sirupsen/logrus"
)

type Compression int8

const (
	None Compression = iota
	Gzip
	Zstd
	LZ4
	Snappy
	Bzip2
)

var compressionNames = [...]string{"none", "gzip", "zstd", "lz4", "snappy", "bzip2"}

func (c Compression) String() string {
	if c >= 0 && int(c) < len(compressionNames) {
		return compressionNames[c]
	}
	return compressionNames[None]
}

var magics = []struct {
	c     Compression
	magic []byte
}{
	{Gzip, []byte{0x1f, 0x8b}},
	{Zstd, []byte{0x28, 0xb5, 0x2f, 0xfd}},
	{LZ4, []byte{0x04, 0x22, 0x4d, 0x18}},
	{Snappy, []byte("\xff\x06\x00\x00sNaPpY")},
	{Bzip2, []byte("BZh")},
}

// Sniff returns the compression of br without consuming it.
func Sniff(br *bufio.Reader) (Compression, error) {
	head, err := br.Peek(10)
	if err != nil && err != io.EOF {
		return None, err
	}
	for _, m := range magics {
		if bytes.HasPrefix(head, m.magic) {
			return m.c, nil
		}
	}
	return None, nil
}

// FromExt returns the compression matching the extension of path.
func FromExt(path string) Compression {
	switch {
	case strings.HasSuffix(path, ".gz"):
		return Gzip
	case strings.HasSuffix(path, ".zst"):
		return Zstd
	case strings.HasSuffix(path, ".lz4"):
		return LZ4
	case strings.HasSuffix(path, ".sz"):
		return Snappy
	case strings.HasSuffix(path, ".bz2"):
		return Bzip2
	}
	return None
}

type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (rc *readCloser) Close() (err error) {
	for _, c := range rc.closers {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return
}

// NewReader decompresses r according to its first bytes.
func NewReader(r io.Reader) (io.ReadCloser, Compression, error) {
	br := bufio.NewReaderSize(r, 1<<16)
	c, err := Sniff(br)
	if err != nil {
		return nil, None, err
	}
	rc := &readCloser{}
	switch c {
	case None:
		rc.Reader = br
	case Gzip:
		gr, err := gzip.NewReader(br)
		if err != nil {
			return nil, c, err
		}
		rc.Reader = gr
		rc.closers = append(rc.closers, gr)
	case Zstd:
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, c, err
		}
		rc.Reader = zr
		rc.closers = append(rc.closers, zr.IOReadCloser())
	case LZ4:
		rc.Reader = lz4.NewReader(br)
	case Snappy:
		rc.Reader = snappy.NewReader(br)
	case Bzip2:
		rc.Reader = bzip2.NewReader(br)
	}
	return rc, c, nil
}

// Open opens path, or stdin if path is "-", and decompresses it.
func Open(path string) (io.ReadCloser, Compression, error) {
	if path == "-" {
		return NewReader(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, None, err
	}
	rc, c, err := NewReader(f)
	if err != nil {
		f.Close()
		return nil, c, fmt.Errorf("Opening %s failed: %w", path, err)
	}
	rc.(*readCloser).closers = append(rc.(*readCloser).closers, f)
	return rc, c, nil
}

type writeCloser struct {
	io.Writer
	closers []io.Closer
}

func (wc *writeCloser) Close() (err error) {
	for _, c := range wc.closers {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return
}

// NewWriter compresses to w. Closing the returned writer does not close w.
// Bzip2 has no encoder; the output is written uncompressed.
func NewWriter(w io.Writer, c Compression) (io.WriteCloser, error) {
	wc := &writeCloser{}
	switch c {
	case Gzip:
		gw := gzip.NewWriter(w)
		wc.Writer = gw
		wc.closers = append(wc.closers, gw)
	case Zstd:
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return nil, err
		}
		wc.Writer = zw
		wc.closers = append(wc.closers, zw)
	case LZ4:
		lw := lz4.NewWriter(w)
		wc.Writer = lw
		wc.closers = append(wc.closers, lw)
	case Snappy:
		sw := snappy.NewBufferedWriter(w)
		wc.Writer = sw
		wc.closers = append(wc.closers, sw)
	case Bzip2:
		log.Warn("Bzip2 compression is not available for output, writing uncompressed")
		wc.Writer = w
	default:
		wc.Writer = w
	}
	return wc, nil
}

// Create creates path, or uses stdout if path is "-", compressed with c.
func Create(path string, c Compression) (io.WriteCloser, error) {
	if path == "-" {
		return NewWriter(os.Stdout, c)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	wc, err := NewWriter(f, c)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("Creating %s failed: %w", path, err)
	}
	wc.(*writeCloser).closers = append(wc.(*writeCloser).closers, f)
	return wc, nil
}
