package chartio

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"golang.org/x/text/encoding/unicode"

	"github.com/cbegin/affchart-go/internal/aff"
)

const chartText = "AudioOffset:10\n-\ntiming(0,150.00,4.00);\n(500,2);\nhold(1000,1400,3);\n"

func TestDecodeEncodings(t *testing.T) {
	utf16le, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().Bytes([]byte(chartText))
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	utf16be, err := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewEncoder().Bytes([]byte(chartText))
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	cases := map[string][]byte{
		"plain":    []byte(chartText),
		"utf8 bom": append([]byte{0xEF, 0xBB, 0xBF}, chartText...),
		"utf16le":  utf16le,
		"utf16be":  utf16be,
	}
	for name, data := range cases {
		got, err := Decode(data)
		if err != nil {
			t.Fatalf("%s: decode failed: %v", name, err)
		}
		if got != chartText {
			t.Fatalf("%s: decoded %q", name, got)
		}
	}
}

func TestLoadAndWriteFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.aff")
	if err := os.WriteFile(src, []byte(chartText), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(src, aff.DefaultParserConfig())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if c.AudioOffset != 10 || len(c.Events) != 3 {
		t.Fatalf("unexpected chart: %+v", c)
	}

	out := filepath.Join(dir, "nested", "out.aff")
	if err := WriteFile(out, c); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	again, err := Load(out, aff.DefaultParserConfig())
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if !reflect.DeepEqual(c.Events, again.Events) {
		t.Fatalf("events changed after write and reload")
	}
}

func TestLoadKeepsFormatError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.aff")
	if err := os.WriteFile(path, []byte("AudioOffset:0\n-\ntiming(0,100,4);\n(0,7);"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path, aff.DefaultParserConfig())
	var fe *aff.FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *aff.FormatError in chain, got %v", err)
	}
	if fe.Line != 4 || !errors.Is(err, aff.ErrTrackRange) {
		t.Fatalf("unexpected format error: %v", fe)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "none.aff"), aff.DefaultParserConfig())
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestFindCharts(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b/2.aff", "a/1.AFF", "a/notes.txt", "c.aff"} {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(chartText), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	got, err := FindCharts(dir)
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	want := []string{
		filepath.Join(dir, "a/1.AFF"),
		filepath.Join(dir, "b/2.aff"),
		filepath.Join(dir, "c.aff"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("found %v, want %v", got, want)
	}
}
