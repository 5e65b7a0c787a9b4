//
// Copyright (C) 2015-2022 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package classify

import (
	"context"

	"golang.org/x/sync/errgroup"

	"git.sr.ht/~vejnar/OverlapAbacus/lib/overlap"
)

const batchLength = 64

// Progress is notified of the number of reads done by each batch.
type Progress func(n int)

// forEach calls fn for every index in [0, n) using nWorker goroutines.
// Indices are sent in batches; fn must only write to the slot of its index.
func forEach(ctx context.Context, n int, nWorker int, fn func(i int) error, progress Progress) error {
	if nWorker < 1 {
		nWorker = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	chBatch := make(chan [2]int, nWorker*10)

	g.Go(func() error {
		defer close(chBatch)
		for start := 0; start < n; start += batchLength {
			end := start + batchLength
			if end > n {
				end = n
			}
			select {
			case <-gctx.Done():
				return gctx.Err()
			case chBatch <- [2]int{start, end}:
			}
		}
		return nil
	})

	for w := 0; w < nWorker; w++ {
		g.Go(func() error {
			for b := range chBatch {
				for i := b[0]; i < b[1]; i++ {
					if err := fn(i); err != nil {
						return err
					}
				}
				if progress != nil {
					progress(b[1] - b[0])
				}
				if err := gctx.Err(); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}

// ComputeAll fills the cache for every id using nWorker goroutines.
func (c *Cache) ComputeAll(ctx context.Context, ids []string, nWorker int, progress Progress) error {
	return forEach(ctx, len(ids), nWorker, func(i int) error {
		_, err := c.BadPart(ids[i])
		return err
	}, progress)
}

// Result is the bad part of one read with its label.
type Result struct {
	ID      string
	BadPart *BadPart
	Label   Label
}

// Stream consumes store page by page, computes the bad part of every read
// of a page with nWorker goroutines and calls emit for each read in sorted
// order within the page. The store is exhausted on return.
func Stream(ctx context.Context, store overlap.Store, depth uint32, notCovered float64, nWorker int, audit bool, emit func(*Result) error, progress Progress) error {
	var page overlap.Page
	for {
		done, err := store.Overlaps(&page)
		if err != nil {
			return err
		}
		ids := page.IDs()
		results := make([]Result, len(ids))
		err = forEach(ctx, len(ids), nWorker, func(i int) error {
			e := page[ids[i]]
			bp := Compute(ids[i], e.Intervals, e.Length, depth, audit)
			results[i] = Result{ID: ids[i], BadPart: bp, Label: bp.Label(notCovered)}
			return nil
		}, progress)
		if err != nil {
			return err
		}
		for i := range results {
			if err := emit(&results[i]); err != nil {
				return err
			}
		}
		if done {
			return nil
		}
	}
}
