package main

import (
	"log/slog"
	"os"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/spf13/cobra"

	"github.com/cbegin/affchart-go"
	"github.com/cbegin/affchart-go/internal/aff"
	"github.com/cbegin/affchart-go/internal/config"
)

var (
	configPath string
	debug      bool
	mirror     bool
)

// logger is replaced by initLogger before any command runs.
var logger = slog.Default()

var rootCmd = &cobra.Command{
	Use:   "affchart",
	Short: "Inspect .aff rhythm-game charts",
	Long: `affchart parses .aff charts and reports bar lines, note values, combo
counts and timing collisions. It can also export a chart as MIDI or as a
click track.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initLogger(debug)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (defaults apply when empty)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "verbose logging")
	rootCmd.PersistentFlags().BoolVar(&mirror, "mirror", false, "mirror charts before processing")
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func initLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:     level,
		AddSource: debug,
	})
	logger = slog.New(h)
	slog.SetDefault(logger)
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}
	logger.Debug("config loaded", "path", configPath, "sample_rate", cfg.Audio.SampleRate)
	return cfg, nil
}

// loadChart reads a chart with the active config, mirrored when --mirror
// is set.
func loadChart(path string) (config.Config, *aff.Chart, error) {
	cfg, err := loadConfig()
	if err != nil {
		return config.Config{}, nil, err
	}
	c, err := affchart.Load(path, cfg)
	if err != nil {
		return config.Config{}, nil, err
	}
	if mirror {
		c = affchart.Mirror(c, cfg)
	}
	logger.Debug("chart loaded", "path", path, "events", len(c.Events), "groups", len(c.Groups), "mirrored", mirror)
	return cfg, c, nil
}

func writeOutput(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fault.Wrap(err, fmsg.With("error writing output file"))
	}
	logger.Info("wrote output", "path", path, "bytes", len(data))
	return nil
}
