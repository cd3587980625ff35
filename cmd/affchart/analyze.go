package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cbegin/affchart-go"
	"github.com/cbegin/affchart-go/internal/analyzer"
)

var showNotes bool

func init() {
	analyzeCmd.Flags().BoolVar(&showNotes, "notes", false, "list every quantized note")
	rootCmd.AddCommand(analyzeCmd)
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Prints durations, bar lines, note values and combo totals",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, c, err := loadChart(args[0])
		if err != nil {
			return err
		}
		res := affchart.Analyze(c, cfg)
		out := cmd.OutOrStdout()

		fmt.Fprintf(out, "base bpm: %g (%g beats per line)\n", res.BaseBPM, res.BaseBeatsPerLine)
		d := res.Durations
		fmt.Fprintf(out, "length: %gms (padded %gms), base bar %gms x %d\n", d.Real, d.Total, d.BaseSegment, d.BaseSegmentCount)

		t := res.Combo.Totals
		fmt.Fprintf(out, "combo: %d (tap %d, hold %d, arc %d, arctap %d)\n", t.Total, t.Tap, t.Hold, t.Arc, t.AirTap)
		for _, color := range analyzer.SortedKeys(t.ArcByColor) {
			fmt.Fprintf(out, "  arc color %d: %d\n", color, t.ArcByColor[color])
		}

		bars := make([]string, 0, len(res.Segments))
		for _, s := range res.Segments {
			bars = append(bars, fmt.Sprintf("%g", s))
		}
		fmt.Fprintf(out, "bar lines (%d): %s\n", len(res.Segments), strings.Join(bars, " "))

		for _, m := range res.TempoMarks {
			switch {
			case m.BPMChanged && m.Meter != "":
				fmt.Fprintf(out, "tempo @%d group %d: %g %s\n", m.Tick, m.Group, m.BPM, m.Meter)
			case m.BPMChanged:
				fmt.Fprintf(out, "tempo @%d group %d: %g\n", m.Tick, m.Group, m.BPM)
			default:
				fmt.Fprintf(out, "meter @%d group %d: %s\n", m.Tick, m.Group, m.Meter)
			}
		}
		for _, iv := range res.FourLane {
			fmt.Fprintf(out, "four-lane: [%g, %g)\n", iv.Start, iv.End)
		}

		counts := map[string]int{}
		for _, n := range res.Notes {
			counts[n.Label()]++
		}
		for _, label := range analyzer.SortedKeys(counts) {
			fmt.Fprintf(out, "note %-3s x%d\n", label, counts[label])
		}
		if showNotes {
			for _, n := range res.Notes {
				fmt.Fprintf(out, "  @%d +%d %s combo %d\n", n.TimePoint, n.Duration, n.Label(), res.Combo.At(n.TimePoint))
			}
		}
		return nil
	},
}
