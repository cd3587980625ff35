package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cbegin/affchart-go"
	"github.com/cbegin/affchart-go/internal/analyzer"
	"github.com/cbegin/affchart-go/internal/chartio"
)

func init() {
	rootCmd.AddCommand(surveyCmd)
}

var surveyCmd = &cobra.Command{
	Use:   "survey <dir>",
	Short: "Runs the quality check over every chart under a directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		paths, err := chartio.FindCharts(args[0])
		if err != nil {
			return err
		}
		s := analyzer.NewSurvey(cfg.QualityWindowMs)
		for _, path := range paths {
			c, err := affchart.Load(path, cfg)
			if err != nil {
				// one broken chart should not end the survey
				logger.Warn("skipping chart", "path", path, "err", err)
				continue
			}
			if mirror {
				c = affchart.Mirror(c, cfg)
			}
			name, err := filepath.Rel(args[0], path)
			if err != nil {
				name = path
			}
			s.Add(name, analyzer.Quality(c, cfg.QualityWindowMs))
		}

		out := cmd.OutOrStdout()
		for _, p := range s.Problems {
			fmt.Fprintf(out, "%s: %d double taps, %d near misses\n", p.Name, p.Report.DoubleTaps(), p.Report.NearMisses())
		}
		fmt.Fprintf(out, "charts: %d, flagged: %d\n", s.Charts, s.ProblemCharts)
		fmt.Fprintf(out, "double taps: %d, flagged pairs: %d\n", s.Doubles, s.ProblemPairs)
		for _, d := range analyzer.SortedKeys(s.ByDelta) {
			fmt.Fprintf(out, "  %dms: %d\n", d, s.ByDelta[d])
		}
		return nil
	},
}
