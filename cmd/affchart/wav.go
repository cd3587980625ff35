package main

import (
	"github.com/spf13/cobra"

	"github.com/cbegin/affchart-go"
)

var wavOut string

func init() {
	wavCmd.Flags().StringVarP(&wavOut, "output", "o", "chart.wav", "output WAV path")
	rootCmd.AddCommand(wavCmd)
}

var wavCmd = &cobra.Command{
	Use:   "wav <file>",
	Short: "Renders the chart's click track to a float WAV file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, c, err := loadChart(args[0])
		if err != nil {
			return err
		}
		samples := affchart.RenderClickTrack(c, cfg)
		logger.Debug("rendered click track", "frames", len(samples)/2, "sample_rate", cfg.Audio.SampleRate)
		return writeOutput(wavOut, affchart.EncodeWAVFloat32LE(samples, cfg.Audio.SampleRate, 2))
	},
}
