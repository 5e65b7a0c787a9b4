//
// Copyright (C) 2015-2022 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

// Package config holds the run settings unmarshalled from viper (flags,
// config file and OVERLAPABACUS_ environment variables).
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"git.sr.ht/~vejnar/OverlapAbacus/lib/formats"
	"git.sr.ht/~vejnar/OverlapAbacus/lib/report"
)

const (
	DefaultNotCovered       = 0.8
	DefaultOnDiskBufferSize = 64000000
	DefaultPageSize         = 100000
)

type Config struct {
	// Overlap, SAM/BAM or report files
	Inputs []string `mapstructure:"input"`
	// Report output, "-" for stdout
	Output string `mapstructure:"output"`

	// Coverage depth at or below which a position is bad
	Coverage uint32 `mapstructure:"coverage"`
	// Uncovered fraction above which a read is NotCovered
	NotCovered float64 `mapstructure:"not-covered"`

	// Directory of the external store, in-memory store if empty
	OnDisk           string `mapstructure:"ondisk"`
	OnDiskBufferSize int    `mapstructure:"ondisk-buffer-size"`
	PageSize         int    `mapstructure:"page-size"`

	InputFormat  string `mapstructure:"input-format"`
	OutputFormat string `mapstructure:"output-format"`

	// Read length table (.fai)
	Lengths string `mapstructure:"lengths"`
	// SAM/BAM minimum mapping quality
	MinMapQ uint8 `mapstructure:"min-mapq"`

	PathReport   string `mapstructure:"path_report"`
	Audit        bool   `mapstructure:"audit"`
	NumWorker    int    `mapstructure:"num_worker"`
	Verbose      bool   `mapstructure:"verbose"`
	VerboseLevel int    `mapstructure:"verbose_level"`
}

// SetDefaults registers the default values in v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("output", "-")
	v.SetDefault("coverage", 0)
	v.SetDefault("not-covered", DefaultNotCovered)
	v.SetDefault("ondisk-buffer-size", DefaultOnDiskBufferSize)
	v.SetDefault("page-size", DefaultPageSize)
	v.SetDefault("output-format", report.FormatPlain)
	v.SetDefault("num_worker", 1)
}

// New unmarshals and validates the settings of v.
func New(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("Unable to decode configuration: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	if len(c.Inputs) == 0 {
		return fmt.Errorf("At least one input is required")
	}
	if c.NotCovered < 0 || c.NotCovered > 1 {
		return fmt.Errorf("not-covered must be in [0,1], got %g", c.NotCovered)
	}
	if c.OnDiskBufferSize < 1 {
		return fmt.Errorf("ondisk-buffer-size must be positive, got %d", c.OnDiskBufferSize)
	}
	if c.PageSize < 1 {
		return fmt.Errorf("page-size must be positive, got %d", c.PageSize)
	}
	if c.NumWorker < 1 {
		return fmt.Errorf("num_worker must be positive, got %d", c.NumWorker)
	}
	if c.InputFormat != "" {
		if _, err := formats.ParseFormat(c.InputFormat); err != nil {
			return fmt.Errorf("input-format: %w", err)
		}
	}
	if c.OutputFormat != report.FormatPlain && c.OutputFormat != report.FormatJSON {
		return fmt.Errorf("output-format must be %s or %s, got %q", report.FormatPlain, report.FormatJSON, c.OutputFormat)
	}
	return nil
}

// InputFormatOf returns the format of an input, forced by input-format or
// detected from its name. Standard input defaults to PAF.
func (c *Config) InputFormatOf(path string) (formats.Format, error) {
	if c.InputFormat != "" {
		return formats.ParseFormat(c.InputFormat)
	}
	if path == "-" {
		return formats.PAF, nil
	}
	return formats.Detect(path)
}
