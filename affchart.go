// Package affchart loads rhythm-game charts in the .aff line format and
// derives preview analytics from them: bar lines, note values, combo
// counts and timing collisions. It can also render a click track of the
// chart for listening checks.
package affchart

import (
	"encoding/binary"
	"math"

	"github.com/cbegin/affchart-go/internal/aff"
	"github.com/cbegin/affchart-go/internal/analyzer"
	"github.com/cbegin/affchart-go/internal/chartio"
	"github.com/cbegin/affchart-go/internal/click"
	"github.com/cbegin/affchart-go/internal/config"
)

// Parse reads chart text with the parser settings from cfg.
func Parse(text string, cfg config.Config) (*aff.Chart, error) {
	return aff.NewParser(cfg.ParserConfig()).Parse(text)
}

// Load reads and parses a chart file, decoding BOM-marked UTF-16 as well as
// UTF-8.
func Load(path string, cfg config.Config) (*aff.Chart, error) {
	return chartio.Load(path, cfg.ParserConfig())
}

// Mirror flips the chart left to right.
func Mirror(c *aff.Chart, cfg config.Config) *aff.Chart {
	return aff.Mirror(c, cfg.ParserConfig())
}

func Analyze(c *aff.Chart, cfg config.Config) *analyzer.Result {
	return analyzer.Analyze(c, cfg.AnalyzerOptions())
}

// Clicks schedules one click per note onset and an accented click on every
// bar line from tick 0 to the end of the chart.
func Clicks(c *aff.Chart, res *analyzer.Result) []click.Click {
	bars := make([]float64, 0, len(res.Segments))
	for _, s := range res.Segments {
		if s <= res.Durations.Real {
			bars = append(bars, s)
		}
	}
	return click.Schedule(analyzer.Onsets(c), bars)
}

// RenderClickTrack synthesizes the whole click track as interleaved stereo.
func RenderClickTrack(c *aff.Chart, cfg config.Config) []float32 {
	return click.Render(cfg.ClickConfig(), Clicks(c, Analyze(c, cfg)))
}

func EncodeWAVFloat32LE(samples []float32, sampleRate int, channels int) []byte {
	dataSize := len(samples) * 4
	byteRate := sampleRate * channels * 4
	blockAlign := channels * 4
	chunkSize := 36 + dataSize
	out := make([]byte, 44+dataSize)
	copy(out[0:], "RIFF")
	binary.LittleEndian.PutUint32(out[4:], uint32(chunkSize))
	copy(out[8:], "WAVE")
	copy(out[12:], "fmt ")
	binary.LittleEndian.PutUint32(out[16:], 16)
	binary.LittleEndian.PutUint16(out[20:], 3) // IEEE float
	binary.LittleEndian.PutUint16(out[22:], uint16(channels))
	binary.LittleEndian.PutUint32(out[24:], uint32(sampleRate))
	binary.LittleEndian.PutUint32(out[28:], uint32(byteRate))
	binary.LittleEndian.PutUint16(out[32:], uint16(blockAlign))
	binary.LittleEndian.PutUint16(out[34:], 32)
	copy(out[36:], "data")
	binary.LittleEndian.PutUint32(out[40:], uint32(dataSize))
	for i, s := range samples {
		binary.LittleEndian.PutUint32(out[44+i*4:], math.Float32bits(s))
	}
	return out
}
