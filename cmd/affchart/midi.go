package main

import (
	"bytes"

	"github.com/spf13/cobra"

	"github.com/cbegin/affchart-go/internal/midiexport"
)

var (
	midiOut     string
	midiChannel uint8
)

func init() {
	midiCmd.Flags().StringVarP(&midiOut, "output", "o", "chart.mid", "output MIDI path")
	midiCmd.Flags().Uint8Var(&midiChannel, "channel", midiexport.DefaultOptions().Channel, "MIDI channel 0-15")
	rootCmd.AddCommand(midiCmd)
}

var midiCmd = &cobra.Command{
	Use:   "midi <file>",
	Short: "Exports chart hits as a percussion MIDI file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, c, err := loadChart(args[0])
		if err != nil {
			return err
		}
		opts := midiexport.DefaultOptions()
		opts.Channel = midiChannel
		var buf bytes.Buffer
		if err := midiexport.Export(c, &buf, opts); err != nil {
			return err
		}
		return writeOutput(midiOut, buf.Bytes())
	},
}
