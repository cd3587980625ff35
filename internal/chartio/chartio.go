// Package chartio reads and writes chart files on disk.
package chartio

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/cbegin/affchart-go/internal/aff"
)

// Ext is the chart file extension.
const Ext = ".aff"

// Decode converts raw chart bytes to text. A UTF-8 or UTF-16 byte order
// mark selects the encoding and is stripped; without one the bytes are
// taken as UTF-8.
func Decode(data []byte) (string, error) {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(dec, data)
	if err != nil {
		return "", fault.Wrap(err, ftag.With(ftag.InvalidArgument), fmsg.With("chart is not valid text"))
	}
	return string(out), nil
}

func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fault.Wrap(err, ftag.With(ftag.NotFound), fmsg.With("chart file not found"))
		}
		return "", fault.Wrap(err, fmsg.With("error reading chart file"))
	}
	return Decode(data)
}

// Load reads and parses a chart file. Parse failures keep their
// *aff.FormatError in the chain.
func Load(path string, cfg aff.ParserConfig) (*aff.Chart, error) {
	text, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	chart, err := aff.NewParser(cfg).Parse(text)
	if err != nil {
		return nil, fault.Wrap(err, ftag.With(ftag.InvalidArgument), fmsg.With("invalid chart "+filepath.Base(path)))
	}
	return chart, nil
}

// WriteFile serializes a chart as UTF-8, creating parent directories.
func WriteFile(path string, chart *aff.Chart) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fault.Wrap(err, fmsg.With("error creating output directory"))
	}
	f, err := os.Create(path)
	if err != nil {
		return fault.Wrap(err, fmsg.With("error creating chart file"))
	}
	w := aff.NewWriter(f)
	if err := w.WriteChart(chart); err != nil {
		f.Close()
		return fault.Wrap(err, fmsg.With("error writing chart file"))
	}
	if err := f.Close(); err != nil {
		return fault.Wrap(err, fmsg.With("error writing chart file"))
	}
	return nil
}

// FindCharts lists every chart file under dir in lexical order.
func FindCharts(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), Ext) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fault.Wrap(err, fmsg.With("error scanning "+dir))
	}
	slices.Sort(paths)
	return paths, nil
}
