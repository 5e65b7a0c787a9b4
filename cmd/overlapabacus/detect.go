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
	"runtime"

	"github.com/cheggaaa/pb/v3"
	"github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"

	"git.sr.ht/~vejnar/OverlapAbacus/lib/classify"
	"git.sr.ht/~vejnar/OverlapAbacus/lib/config"
	"git.sr.ht/~vejnar/OverlapAbacus/lib/overlap"
	"git.sr.ht/~vejnar/OverlapAbacus/lib/report"
	"git.sr.ht/~vejnar/OverlapAbacus/lib/xio"
)

// classification is either an overlap store or a previous report.
type classification struct {
	store    overlap.Store
	previous *report.Source
	summary  *report.Summary
}

func (cl *classification) Close() error {
	if cl.store != nil {
		return cl.store.Close()
	}
	return nil
}

// load reads the inputs: a single report, or any number of overlap files.
func load(ctx context.Context, cfg *config.Config) (*classification, error) {
	runtime.GOMAXPROCS(cfg.NumWorker * 2)
	cl := &classification{summary: report.NewSummary()}
	var overlapInputs []string
	for _, path := range cfg.Inputs {
		format, err := cfg.InputFormatOf(path)
		if err != nil {
			return nil, err
		}
		if !format.IsReport() {
			if !format.IsOverlap() {
				return nil, fmt.Errorf("Input %s is %s, not overlaps or a report", path, format)
			}
			overlapInputs = append(overlapInputs, path)
			continue
		}
		if len(cfg.Inputs) > 1 {
			return nil, fmt.Errorf("A report input (%s) can't be combined with other inputs", path)
		}
		rc, _, err := xio.Open(path)
		if err != nil {
			return nil, err
		}
		cl.previous, err = report.Read(rc, path, format.String())
		rc.Close()
		if err != nil {
			return nil, err
		}
		logStep("Loaded %s reads from report %s", humanize.Comma(int64(len(cl.previous.Reads()))), path)
	}
	if len(overlapInputs) > 0 {
		var err error
		cl.store, cl.summary.Overlaps, err = loadOverlaps(ctx, cfg, overlapInputs)
		if err != nil {
			return nil, err
		}
	}
	return cl, nil
}

func newProgress(total int) (*pb.ProgressBar, classify.Progress) {
	if !log.IsLevelEnabled(log.InfoLevel) || total == 0 {
		return nil, nil
	}
	bar := pb.Full.Start(total)
	return bar, func(n int) { bar.Add(n) }
}

// detect writes the report of every read. Overlap stores are consumed page
// by page.
func detect(ctx context.Context, cfg *config.Config) error {
	cl, err := load(ctx, cfg)
	if err != nil {
		return err
	}
	defer cl.Close()

	err = writeReport(cfg, cl.summary, func(emit func(*classify.Result) error) error {
		if cl.store == nil {
			return writeAll(ctx, cfg, classify.NewCache(cl.previous), emit)
		}
		total := cl.store.Reads().Size()
		logStep("Classifying %s reads", humanize.Comma(int64(total)))
		bar, progress := newProgress(total)
		err := classify.Stream(ctx, cl.store, cfg.Coverage, cfg.NotCovered, cfg.NumWorker, cfg.Audit, emit, progress)
		if bar != nil {
			bar.Finish()
		}
		return err
	})
	if err == nil {
		err = finish(cfg, cl.summary)
	}
	if err == nil {
		logStep("Done")
	}
	return err
}

// classifyAll computes every read and keeps the bad parts in a cache for
// the editors. The report is written as with detect.
func classifyAll(ctx context.Context, cfg *config.Config) (*classify.Cache, io.Closer, error) {
	cl, err := load(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	var cache *classify.Cache
	if cl.store != nil {
		src := classify.NewFromOverlap(cl.store, cfg.Coverage)
		src.Audit = cfg.Audit
		cache = classify.NewCache(src)
	} else {
		cache = classify.NewCache(cl.previous)
	}
	err = writeReport(cfg, cl.summary, func(emit func(*classify.Result) error) error {
		return writeAll(ctx, cfg, cache, emit)
	})
	if err == nil {
		err = finish(cfg, cl.summary)
	}
	if err != nil {
		cl.Close()
		return nil, nil, err
	}
	return cache, cl, nil
}

// writeReport opens the report output and passes run an emitter writing to
// it and counting into summary.
func writeReport(cfg *config.Config, summary *report.Summary, run func(emit func(*classify.Result) error) error) error {
	out, err := xio.Create(cfg.Output, xio.FromExt(cfg.Output))
	if err != nil {
		return err
	}
	w, err := report.NewWriter(out, cfg.OutputFormat)
	if err != nil {
		out.Close()
		return err
	}
	err = run(func(r *classify.Result) error {
		summary.Add(r)
		return w.Write(r)
	})
	if err == nil {
		err = w.Close()
	}
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("Writing report %s failed: %w", cfg.Output, err)
	}
	return nil
}

// writeAll computes every read of the cache and emits them in order.
func writeAll(ctx context.Context, cfg *config.Config, cache *classify.Cache, emit func(*classify.Result) error) error {
	ids := cache.Reads()
	logStep("Classifying %s reads", humanize.Comma(int64(len(ids))))
	bar, progress := newProgress(len(ids))
	err := cache.ComputeAll(ctx, ids, cfg.NumWorker, progress)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return err
	}
	for _, id := range ids {
		bp, err := cache.BadPart(id)
		if err != nil {
			return err
		}
		if err = emit(&classify.Result{ID: id, BadPart: bp, Label: bp.Label(cfg.NotCovered)}); err != nil {
			return err
		}
	}
	return nil
}

func finish(cfg *config.Config, summary *report.Summary) error {
	logStep("Classified %s reads: %s NotBad, %s Chimeric, %s NotCovered",
		humanize.Comma(int64(summary.Total())),
		humanize.Comma(int64(summary.Count(classify.NotBad))),
		humanize.Comma(int64(summary.Count(classify.Chimeric))),
		humanize.Comma(int64(summary.Count(classify.NotCovered))))
	if cfg.PathReport != "" {
		return report.WriteSummary(cfg.PathReport, summary)
	}
	return nil
}
