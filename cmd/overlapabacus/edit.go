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

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"git.sr.ht/~vejnar/OverlapAbacus/lib/config"
	"git.sr.ht/~vejnar/OverlapAbacus/lib/editor"
	"git.sr.ht/~vejnar/OverlapAbacus/lib/formats"
	"git.sr.ht/~vejnar/OverlapAbacus/lib/xio"
)

type editFlags struct {
	inputs  []string
	outputs []string
}

var editShort = map[editor.Operation]string{
	editor.Filter:  "Write only the records of NotBad reads",
	editor.Extract: "Write only the records of Chimeric or NotCovered reads",
	editor.Split:   "Cut Chimeric reads at their internal bad regions",
	editor.Scrubb:  "Remove all bad regions of reads",
}

func editCommands() []*cobra.Command {
	var cmds []*cobra.Command
	for _, op := range []editor.Operation{editor.Filter, editor.Extract, editor.Split, editor.Scrubb} {
		op := op
		ef := &editFlags{}
		cmd := &cobra.Command{
			Use:   op.String(),
			Short: editShort[op],
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := config.New(v)
				if err != nil {
					return err
				}
				return edit(cmd.Context(), cfg, op, ef)
			},
		}
		cmd.Flags().StringSliceVarP(&ef.inputs, "edit-input", "I", nil, "Path to sequence (FASTA, FASTQ) or overlap (PAF, MHAP) file(s) to edit")
		cmd.Flags().StringSliceVarP(&ef.outputs, "edit-output", "O", nil, "Path to edited output(s), one per edit input")
		cmd.MarkFlagRequired("edit-input")
		cmd.MarkFlagRequired("edit-output")
		cmds = append(cmds, cmd)
	}
	return cmds
}

func edit(ctx context.Context, cfg *config.Config, op editor.Operation, ef *editFlags) error {
	if len(ef.inputs) != len(ef.outputs) {
		return fmt.Errorf("%d edit input(s) but %d edit output(s)", len(ef.inputs), len(ef.outputs))
	}
	// Formats are checked before the classification
	fmts := make([]formats.Format, len(ef.inputs))
	for i, path := range ef.inputs {
		format, err := formats.Detect(path)
		if err != nil {
			return fmt.Errorf("Edit input %s: %w", path, err)
		}
		if !format.IsSequence() && format != formats.PAF && format != formats.MHAP {
			return fmt.Errorf("Edit input %s: %w: %s on %s", path, editor.ErrUnsupported, op, format)
		}
		fmts[i] = format
	}

	cache, closer, err := classifyAll(ctx, cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	ed := editor.New(cache, cfg.NotCovered)
	for i, path := range ef.inputs {
		if err := editFile(ed, op, path, ef.outputs[i], fmts[i]); err != nil {
			return err
		}
	}
	logStep("Done")
	return nil
}

// editFile runs op on one file. The output keeps the compression of the
// input unless its extension names one.
func editFile(ed *editor.Editor, op editor.Operation, pathIn, pathOut string, format formats.Format) error {
	rc, comp, err := xio.Open(pathIn)
	if err != nil {
		return err
	}
	defer rc.Close()
	if c := xio.FromExt(pathOut); c != xio.None {
		comp = c
	}
	wc, err := xio.Create(pathOut, comp)
	if err != nil {
		return err
	}
	stats, err := ed.Run(op, rc, wc, pathIn, format)
	if cerr := wc.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("%s of %s failed: %w", op, pathIn, err)
	}
	logStep("%s %s: %s records in, %s out from %s reads", op, pathIn,
		humanize.Comma(int64(stats.In)), humanize.Comma(int64(stats.Out)), humanize.Comma(int64(stats.Reads.Size())))
	return nil
}
