package aff

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Cursor reads terminator-bounded fields from a single chart line.
type Cursor struct {
	line string
	pos  int
}

func NewCursor(line string) *Cursor { return &Cursor{line: line} }

func (c *Cursor) Skip(n int) { c.pos += n }

func (c *Cursor) Pos() int { return c.pos }

// Rest returns the unread part of the line.
func (c *Cursor) Rest() string {
	if c.pos >= len(c.line) {
		return ""
	}
	return c.line[c.pos:]
}

// Current returns the byte under the cursor.
func (c *Cursor) Current() (byte, bool) {
	if c.pos < 0 || c.pos >= len(c.line) {
		return 0, false
	}
	return c.line[c.pos], true
}

// Peek returns the next n bytes without consuming them.
func (c *Cursor) Peek(n int) (string, bool) {
	if c.pos < 0 || c.pos+n > len(c.line) {
		return "", false
	}
	return c.line[c.pos : c.pos+n], true
}

// ReadString returns the text up to term and moves past it. An empty term
// reads to the end of the line, excluding the final ';'.
func (c *Cursor) ReadString(term string) (string, error) {
	if c.pos < 0 || c.pos > len(c.line) {
		return "", fmt.Errorf("%w: cursor at %d past end of line", ErrSyntax, c.pos)
	}
	if term == "" {
		end := len(c.line) - 1
		if end < c.pos {
			return "", fmt.Errorf("%w: nothing left to read at %d", ErrSyntax, c.pos)
		}
		v := c.line[c.pos:end]
		c.pos = len(c.line)
		return v, nil
	}
	idx := strings.Index(c.line[c.pos:], term)
	if idx < 0 {
		return "", fmt.Errorf("%w: missing %q after column %d", ErrSyntax, term, c.pos)
	}
	v := c.line[c.pos : c.pos+idx]
	c.pos += idx + len(term)
	return v, nil
}

func (c *Cursor) ReadInt(term string) (int, error) {
	s, err := c.ReadString(term)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", ErrSyntax, s)
	}
	return v, nil
}

func (c *Cursor) ReadFloat(term string) (float64, error) {
	s, err := c.ReadString(term)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("%w: %q is not a number", ErrSyntax, s)
	}
	return v, nil
}

func (c *Cursor) ReadBool(term string) (bool, error) {
	s, err := c.ReadString(term)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, fmt.Errorf("%w: %q is not a boolean", ErrSyntax, s)
}
