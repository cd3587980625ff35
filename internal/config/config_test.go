package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Southclaws/fault/ftag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "affchart.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadEmptyPathGivesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, -3000.0, cfg.PreRollMs)
	assert.Equal(t, 5, cfg.QualityWindowMs)
	assert.Equal(t, 48000, cfg.Audio.SampleRate)
}

func TestLoadOverlaysDefaults(t *testing.T) {
	cfg, err := Load(writeFile(t, `
quality_window_ms: 8
parser:
  noinput_flag: silent
audio:
  gain: 0.25
`))
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Equal(8, cfg.QualityWindowMs)
	assert.Equal("silent", cfg.Parser.NoInputFlag)
	assert.Equal(4, cfg.Parser.MaxTrack)
	assert.Equal(0.25, cfg.Audio.Gain)
	assert.Equal(1760.0, cfg.Audio.ClickHz)

	pc := cfg.ParserConfig()
	assert.Equal("silent", pc.NoInputFlag)
	assert.Equal(0.1, pc.HeadTolerance)
	assert.Equal(8, cfg.AnalyzerOptions().QualityWindowMs)
	assert.Equal(0.25, cfg.ClickConfig().Gain)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, ftag.NotFound, ftag.Get(err))

	_, err = Load(writeFile(t, "parser: [1, 2"))
	require.Error(t, err)
	assert.Equal(t, ftag.InvalidArgument, ftag.Get(err))

	_, err = Load(writeFile(t, "parser:\n  min_track: 5\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "min_track")
	assert.Equal(t, ftag.InvalidArgument, ftag.Get(err))
}
