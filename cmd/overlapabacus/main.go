//
// Copyright (C) 2015-2022 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"git.sr.ht/~vejnar/OverlapAbacus/lib/config"
)

var version = "DEV"

var (
	v          = viper.New()
	configPath string
	timeStart  time.Time
)

var rootCmd = &cobra.Command{
	Use:   "overlapabacus",
	Short: "Detect chimeric and not covered long reads from their pairwise overlaps",
	Long: `Classify each read as Chimeric, NotCovered or NotBad from the coverage of
its overlaps (PAF, MHAP, SAM or BAM), and write a report. A previous report
can replace the overlaps. Subcommands edit sequence or overlap files with the
classification.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.New(v)
		if err != nil {
			return err
		}
		return detect(cmd.Context(), cfg)
	},
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&configPath, "config", "", "Path to config file (YAML, TOML or JSON)")
	f.StringSliceP("input", "i", nil, "Path to overlap (PAF, MHAP, SAM, BAM) or report file(s) (comma separated, - for stdin)")
	f.StringP("output", "o", "-", "Path to report output (stdout with -)")
	f.Uint32P("coverage", "c", 0, "Coverage depth at or below which a region is marked as bad")
	f.Float64P("not-covered", "n", config.DefaultNotCovered, "Uncovered fraction above which a read is marked as NotCovered")
	f.StringP("ondisk", "d", "", "Store overlaps on disk in this directory instead of memory")
	f.Int("ondisk-buffer-size", config.DefaultOnDiskBufferSize, "Number of intervals buffered in memory before writing to disk")
	f.Int("page-size", config.DefaultPageSize, "Number of reads classified per page")
	f.StringP("input-format", "F", "", "Force input format: paf, mhap (m4), sam, bam, yacrd or json")
	f.String("output-format", "yacrd", "Report format: yacrd or json")
	f.String("lengths", "", "Path to read length table (name and length tabulated, e.g. FASTA index)")
	f.Uint8("min-mapq", 0, "Minimum mapping quality of SAM/BAM alignments")
	f.String("path_report", "", "Write summary report to path (stdout with -)")
	f.Bool("audit", false, "Check bad regions with an interval tree")
	f.IntP("num_worker", "t", 1, "Number of worker(s)")
	f.BoolP("verbose", "v", false, "Verbose")
	f.Int("verbose_level", 0, "Verbose level")

	if err := v.BindPFlags(f); err != nil {
		log.Fatal(err)
	}
	config.SetDefaults(v)
	v.SetEnvPrefix("OVERLAPABACUS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	rootCmd.AddCommand(editCommands()...)
}

// setup reads the config file and sets the log level.
func setup(cmd *cobra.Command, args []string) error {
	timeStart = time.Now()
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("Reading config %s failed: %w", configPath, err)
		}
	}
	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
	switch {
	case v.GetInt("verbose_level") > 1:
		log.SetLevel(log.DebugLevel)
	case v.GetBool("verbose") || v.GetInt("verbose_level") == 1:
		log.SetLevel(log.InfoLevel)
	default:
		log.SetLevel(log.WarnLevel)
	}
	return nil
}

// logStep logs at Info level prefixed with the elapsed minutes.
func logStep(format string, args ...interface{}) {
	log.Infof("%.1fmin - "+format, append([]interface{}{time.Since(timeStart).Minutes()}, args...)...)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
