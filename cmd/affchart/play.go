package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cbegin/affchart-go"
)

var (
	playLoop   bool
	playLoops  int
	playVolume float64
	playFrom   int
)

func init() {
	playCmd.Flags().BoolVar(&playLoop, "loop", false, "loop playback; use with --loops to count then stop")
	playCmd.Flags().IntVar(&playLoops, "loops", 3, "when --loop, stop after N loops (0 = loop forever)")
	playCmd.Flags().Float64Var(&playVolume, "volume", 1.0, "master volume scalar")
	playCmd.Flags().IntVar(&playFrom, "from", 0, "start playback at this chart time in ms")
	rootCmd.AddCommand(playCmd)
}

var playCmd = &cobra.Command{
	Use:   "play <file>",
	Short: "Plays the chart's click track",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, c, err := loadChart(args[0])
		if err != nil {
			return err
		}
		pl, err := affchart.NewPlayer(cfg, affchart.WithLoopPlayback(playLoop))
		if err != nil {
			return err
		}
		pl.SetMasterVolume(playVolume)
		ch := pl.Watch()
		if err := pl.Play(c); err != nil {
			return err
		}
		if playFrom > 0 {
			if err := pl.Seek(playFrom); err != nil {
				return err
			}
			logger.Debug("seeked", "tick", playFrom)
		}
		out := cmd.OutOrStdout()
		loopCount := 0
	events:
		for event := range ch {
			switch event.Kind {
			case affchart.EventPlaybackEnded:
				fmt.Fprintln(out, "playback completed")
				break events
			case affchart.EventLoopCompleted:
				loopCount++
				fmt.Fprintf(out, "loop %d completed\n", loopCount)
				if playLoop && playLoops > 0 && loopCount >= playLoops {
					if err := pl.Stop(); err != nil {
						return err
					}
				}
			case affchart.EventBar:
				logger.Debug("bar", "tick", event.Tick)
			}
		}
		pl.Wait()
		return nil
	},
}
