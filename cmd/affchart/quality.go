package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cbegin/affchart-go/internal/analyzer"
)

func init() {
	rootCmd.AddCommand(qualityCmd)
}

var qualityCmd = &cobra.Command{
	Use:   "quality <file>",
	Short: "Reports onsets that collide or nearly collide",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, c, err := loadChart(args[0])
		if err != nil {
			return err
		}
		r := analyzer.Quality(c, cfg.QualityWindowMs)
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "onsets: %d\n", r.Onsets)
		fmt.Fprintf(out, "double taps: %d\n", r.DoubleTaps())
		fmt.Fprintf(out, "near misses (within %dms): %d\n", r.Window, r.NearMisses())
		for _, b := range r.NonNegative() {
			fmt.Fprintf(out, "  %dms: %d\n", b.Delta, b.Count)
		}
		return nil
	},
}
