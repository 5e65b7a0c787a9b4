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
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"git.sr.ht/~vejnar/OverlapAbacus/lib/config"
	"git.sr.ht/~vejnar/OverlapAbacus/lib/esam"
	"git.sr.ht/~vejnar/OverlapAbacus/lib/formats"
	"git.sr.ht/~vejnar/OverlapAbacus/lib/overlap"
	"git.sr.ht/~vejnar/OverlapAbacus/lib/xio"
)

const (
	sRecordLength = 1000
	logEvery      = 1000000
)

// newStore returns the in-memory store, or the external store if ondisk is set.
func newStore(cfg *config.Config) (overlap.Store, error) {
	if cfg.OnDisk == "" {
		return overlap.NewInMemory(), nil
	}
	s, err := overlap.NewExternal(cfg.OnDisk, cfg.OnDiskBufferSize, cfg.PageSize)
	if err != nil {
		return nil, err
	}
	logStep("Overlaps stored in %s", s.Path())
	return s, nil
}

// loadLengths seeds the store with the read lengths of a table.
func loadLengths(s overlap.Store, path string) error {
	rc, _, err := xio.Open(path)
	if err != nil {
		return err
	}
	defer rc.Close()
	n, err := formats.ReadLengths(rc, path, func(rl formats.ReadLength) error {
		s.AddLength(rl.Name, rl.Length)
		return nil
	})
	if err != nil {
		return err
	}
	logStep("Loaded %s read lengths from %s", humanize.Comma(int64(n)), path)
	return nil
}

// openOverlaps opens an overlap input of any supported format.
func openOverlaps(cfg *config.Config, path string, format formats.Format) (overlap.RecordReader, io.Closer, error) {
	if format == formats.BAM {
		var f *os.File
		var err error
		if path == "-" {
			f = os.Stdin
		} else if f, err = os.Open(path); err != nil {
			return nil, nil, err
		}
		sr, err := esam.NewReader(f, esam.PathSAM{Path: path, Binary: true}, cfg.NumWorker)
		if err != nil {
			f.Close()
			return nil, nil, err
		}
		sr.MinMapQ = cfg.MinMapQ
		return sr, closers{sr, f}, nil
	}
	rc, comp, err := xio.Open(path)
	if err != nil {
		return nil, nil, err
	}
	if comp != xio.None {
		logStep("Reading %s compressed with %s", path, comp)
	}
	if format == formats.SAM {
		sr, err := esam.NewReader(rc, esam.PathSAM{Path: path}, cfg.NumWorker)
		if err != nil {
			rc.Close()
			return nil, nil, err
		}
		sr.MinMapQ = cfg.MinMapQ
		return sr, rc, nil
	}
	or, err := formats.NewOverlapReader(rc, path, format)
	if err != nil {
		rc.Close()
		return nil, nil, err
	}
	return or, rc, nil
}

type closers []io.Closer

func (cs closers) Close() (err error) {
	for _, c := range cs {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return
}

// ingest parses rr in one goroutine and adds the records to the store from
// another. Only the second goroutine mutates the store.
func ingest(ctx context.Context, s overlap.Store, rr overlap.RecordReader) (nRecord uint64, err error) {
	g, gctx := errgroup.WithContext(ctx)
	chRecord := make(chan []overlap.Record, 16)

	g.Go(func() error {
		defer close(chRecord)
		sRecord := make([]overlap.Record, 0, sRecordLength)
		for {
			r, err := rr.Read()
			if err == io.EOF {
				break
			} else if err != nil {
				return err
			}
			sRecord = append(sRecord, *r)
			if len(sRecord) == sRecordLength {
				select {
				case <-gctx.Done():
					return gctx.Err()
				case chRecord <- sRecord:
				}
				sRecord = make([]overlap.Record, 0, sRecordLength)
			}
		}
		if len(sRecord) > 0 {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case chRecord <- sRecord:
			}
		}
		return nil
	})

	g.Go(func() error {
		for sRecord := range chRecord {
			for i := range sRecord {
				if err := overlap.Add(s, &sRecord[i]); err != nil {
					return err
				}
				nRecord++
				if nRecord%logEvery == 0 {
					logStep("%s overlaps loaded", humanize.Comma(int64(nRecord)))
				}
			}
		}
		return nil
	})

	err = g.Wait()
	return nRecord, err
}

// loadOverlaps fills a new store from the overlap inputs.
func loadOverlaps(ctx context.Context, cfg *config.Config, inputs []string) (overlap.Store, uint64, error) {
	s, err := newStore(cfg)
	if err != nil {
		return nil, 0, err
	}
	if cfg.Lengths != "" {
		if err = loadLengths(s, cfg.Lengths); err != nil {
			s.Close()
			return nil, 0, err
		}
	}
	var nTotal uint64
	for _, path := range inputs {
		format, err := cfg.InputFormatOf(path)
		if err != nil {
			s.Close()
			return nil, 0, err
		}
		logStep("Opening %s (%s)", path, format)
		rr, c, err := openOverlaps(cfg, path, format)
		if err != nil {
			s.Close()
			return nil, 0, err
		}
		n, err := ingest(ctx, s, rr)
		c.Close()
		if err != nil {
			s.Close()
			return nil, 0, fmt.Errorf("Loading %s failed: %w", path, err)
		}
		nTotal += n
		logStep("Loaded %s overlaps from %s", humanize.Comma(int64(n)), path)
	}
	return s, nTotal, nil
}
