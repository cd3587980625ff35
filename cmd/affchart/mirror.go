package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cbegin/affchart-go"
	"github.com/cbegin/affchart-go/internal/aff"
	"github.com/cbegin/affchart-go/internal/chartio"
)

var mirrorOut string

func init() {
	mirrorCmd.Flags().StringVarP(&mirrorOut, "output", "o", "", "output chart path (stdout when empty)")
	rootCmd.AddCommand(mirrorCmd)
}

var mirrorCmd = &cobra.Command{
	Use:   "mirror <file>",
	Short: "Writes a left-right mirrored copy of a chart",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		c, err := affchart.Load(args[0], cfg)
		if err != nil {
			return err
		}
		// --mirror on top of this command flips the chart back
		if !mirror {
			c = affchart.Mirror(c, cfg)
		}
		if mirrorOut == "" {
			_, err := fmt.Fprint(cmd.OutOrStdout(), aff.Format(c))
			return err
		}
		if err := chartio.WriteFile(mirrorOut, c); err != nil {
			return err
		}
		logger.Info("wrote mirrored chart", "path", mirrorOut)
		return nil
	},
}
