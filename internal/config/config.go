// Package config holds the tunables shared by the parser, the analyzers and
// the click-track renderer, loaded from an optional YAML file.
package config

import (
	"os"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	"gopkg.in/yaml.v3"

	"github.com/cbegin/affchart-go/internal/aff"
	"github.com/cbegin/affchart-go/internal/analyzer"
	"github.com/cbegin/affchart-go/internal/click"
)

type Config struct {
	PreRollMs           float64 `yaml:"pre_roll_ms"`           // how far before the first timing bar lines reach
	QualityWindowMs     int     `yaml:"quality_window_ms"`     // half-width of the collision histogram
	QuantizeToleranceMs float64 `yaml:"quantize_tolerance_ms"` // slack when matching a gap to a note value
	CoincidentGapMs     int     `yaml:"coincident_gap_ms"`     // gaps up to this are simultaneous
	HeadTolerance       float64 `yaml:"head_tolerance"`        // position slack for chained arc junctions

	Parser Parser `yaml:"parser"`
	Audio  Audio  `yaml:"audio"`
}

type Parser struct {
	MinTrack    int    `yaml:"min_track"`
	MaxTrack    int    `yaml:"max_track"`
	NoInputFlag string `yaml:"noinput_flag"`
}

type Audio struct {
	SampleRate int     `yaml:"sample_rate"`
	ClickHz    float64 `yaml:"click_hz"`
	AccentHz   float64 `yaml:"accent_hz"` // pitch of clicks on bar lines
	ClickMs    float64 `yaml:"click_ms"`
	Gain       float64 `yaml:"gain"`
}

func Default() Config {
	opts := analyzer.DefaultOptions()
	pc := aff.DefaultParserConfig()
	cc := click.DefaultConfig()
	return Config{
		PreRollMs:           opts.PreRollMs,
		QualityWindowMs:     opts.QualityWindowMs,
		QuantizeToleranceMs: opts.QuantizeToleranceMs,
		CoincidentGapMs:     opts.CoincidentGapMs,
		HeadTolerance:       pc.HeadTolerance,
		Parser: Parser{
			MinTrack:    pc.MinTrack,
			MaxTrack:    pc.MaxTrack,
			NoInputFlag: pc.NoInputFlag,
		},
		Audio: Audio{
			SampleRate: cc.SampleRate,
			ClickHz:    cc.ClickHz,
			AccentHz:   cc.AccentHz,
			ClickMs:    cc.ClickMs,
			Gain:       cc.Gain,
		},
	}
}

// Load reads a YAML file over the defaults. Keys missing from the file keep
// their default values; an empty path yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, fault.Wrap(err, ftag.With(ftag.NotFound), fmsg.With("config file not found"))
		}
		return Config{}, fault.Wrap(err, fmsg.With("error reading config file"))
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fault.Wrap(err, ftag.With(ftag.InvalidArgument), fmsg.With("error parsing config file"))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	invalid := func(msg string) error {
		return fault.Wrap(fault.New(msg), ftag.With(ftag.InvalidArgument))
	}
	switch {
	case c.Parser.MinTrack > c.Parser.MaxTrack:
		return invalid("parser.min_track must not exceed parser.max_track")
	case c.Parser.NoInputFlag == "":
		return invalid("parser.noinput_flag must not be empty")
	case c.QualityWindowMs < 0:
		return invalid("quality_window_ms must not be negative")
	case c.QuantizeToleranceMs < 0:
		return invalid("quantize_tolerance_ms must not be negative")
	case c.Audio.SampleRate <= 0:
		return invalid("audio.sample_rate must be positive")
	case c.Audio.ClickMs <= 0:
		return invalid("audio.click_ms must be positive")
	}
	return nil
}

func (c Config) ParserConfig() aff.ParserConfig {
	return aff.ParserConfig{
		MinTrack:      c.Parser.MinTrack,
		MaxTrack:      c.Parser.MaxTrack,
		NoInputFlag:   c.Parser.NoInputFlag,
		HeadTolerance: c.HeadTolerance,
	}
}

func (c Config) AnalyzerOptions() analyzer.Options {
	return analyzer.Options{
		PreRollMs:           c.PreRollMs,
		QualityWindowMs:     c.QualityWindowMs,
		QuantizeToleranceMs: c.QuantizeToleranceMs,
		CoincidentGapMs:     c.CoincidentGapMs,
	}
}

func (c Config) ClickConfig() click.Config {
	return click.Config{
		SampleRate: c.Audio.SampleRate,
		ClickHz:    c.Audio.ClickHz,
		AccentHz:   c.Audio.AccentHz,
		ClickMs:    c.Audio.ClickMs,
		Gain:       c.Audio.Gain,
	}
}
