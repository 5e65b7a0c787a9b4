//
// Copyright (C) 2015-2022 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

// Package formats reads overlap files (PAF, MHAP), sequence files (FASTA,
// FASTQ) and read length tables.
package formats

import (
	"errors"
	"fmt"
	"strings"
)

type Format int8

const (
	Unknown Format = iota
	PAF
	MHAP
	SAM
	BAM
	FASTA
	FASTQ
	Yacrd
	JSON
)

var ErrUnknownFormat = errors.New("Unknown file format")

var formatNames = [...]string{"unknown", "paf", "mhap", "sam", "bam", "fasta", "fastq", "yacrd", "json"}

func (f Format) String() string {
	if f >= 0 && int(f) < len(formatNames) {
		return formatNames[f]
	}
	return formatNames[Unknown]
}

// IsOverlap reports whether f holds pairwise overlaps.
func (f Format) IsOverlap() bool {
	return f == PAF || f == MHAP || f == SAM || f == BAM
}

// IsReport reports whether f is a classification report.
func (f Format) IsReport() bool {
	return f == Yacrd || f == JSON
}

// IsSequence reports whether f holds sequences.
func (f Format) IsSequence() bool {
	return f == FASTA || f == FASTQ
}

// ParseFormat parses a format name. "m4" is an alias of "mhap", "fa" of
// "fasta" and "fq" of "fastq".
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "paf":
		return PAF, nil
	case "mhap", "m4":
		return MHAP, nil
	case "sam":
		return SAM, nil
	case "bam":
		return BAM, nil
	case "fasta", "fa":
		return FASTA, nil
	case "fastq", "fq":
		return FASTQ, nil
	case "yacrd":
		return Yacrd, nil
	case "json":
		return JSON, nil
	}
	return Unknown, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// Detect guesses the format from the extensions found in filename.
// Compression extensions are ignored as the format is matched anywhere in
// the name.
func Detect(filename string) (Format, error) {
	switch {
	case strings.Contains(filename, ".m4") || strings.Contains(filename, ".mhap"):
		return MHAP, nil
	case strings.Contains(filename, ".paf"):
		return PAF, nil
	case strings.Contains(filename, ".yacrd"):
		return Yacrd, nil
	case strings.Contains(filename, ".json"):
		return JSON, nil
	case strings.Contains(filename, ".fastq") || strings.Contains(filename, ".fq"):
		return FASTQ, nil
	case strings.Contains(filename, ".fasta") || strings.Contains(filename, ".fa"):
		return FASTA, nil
	case strings.HasSuffix(filename, ".bam"):
		return BAM, nil
	case strings.Contains(filename, ".sam"):
		return SAM, nil
	}
	return Unknown, fmt.Errorf("%w: %s", ErrUnknownFormat, filename)
}
