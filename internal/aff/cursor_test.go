package aff

import (
	"errors"
	"testing"
)

func TestCursorReadsFields(t *testing.T) {
	c := NewCursor("arc(100,-2.5,siso,TRUE);")
	c.Skip(len("arc("))
	if got, ok := c.Peek(3); !ok || got != "100" {
		t.Fatalf("peek = %q %v", got, ok)
	}
	n, err := c.ReadInt(",")
	if err != nil || n != 100 {
		t.Fatalf("ReadInt = %d, %v", n, err)
	}
	f, err := c.ReadFloat(",")
	if err != nil || f != -2.5 {
		t.Fatalf("ReadFloat = %v, %v", f, err)
	}
	s, err := c.ReadString(",")
	if err != nil || s != "siso" {
		t.Fatalf("ReadString = %q, %v", s, err)
	}
	b, err := c.ReadBool(")")
	if err != nil || !b {
		t.Fatalf("ReadBool = %v, %v", b, err)
	}
	if cur, ok := c.Current(); !ok || cur != ';' {
		t.Fatalf("current = %q %v", cur, ok)
	}
	if c.Rest() != ";" || c.Pos() != len("arc(100,-2.5,siso,TRUE)") {
		t.Fatalf("rest = %q at %d", c.Rest(), c.Pos())
	}
}

func TestCursorReadToEndDropsSemicolon(t *testing.T) {
	c := NewCursor("scenecontrol(1,a,'x,y');")
	c.Skip(len("scenecontrol("))
	if _, err := c.ReadString(","); err != nil {
		t.Fatal(err)
	}
	rest, err := c.ReadString("")
	if err != nil || rest != "a,'x,y')" {
		t.Fatalf("rest = %q, %v", rest, err)
	}
	if _, ok := c.Current(); ok {
		t.Fatal("cursor should be at end of line")
	}
}

func TestCursorFailures(t *testing.T) {
	cases := []struct {
		name string
		read func(c *Cursor) error
	}{
		{"missing terminator", func(c *Cursor) error { _, err := c.ReadInt(";"); return err }},
		{"not an int", func(c *Cursor) error { _, err := c.ReadInt(","); return err }},
		{"not a float", func(c *Cursor) error { c.Skip(2); _, err := c.ReadFloat(","); return err }},
		{"not a bool", func(c *Cursor) error { _, err := c.ReadBool(","); return err }},
		{"past end", func(c *Cursor) error { c.Skip(100); _, err := c.ReadString(","); return err }},
	}
	for _, tc := range cases {
		err := tc.read(NewCursor("x,y"))
		if !errors.Is(err, ErrSyntax) {
			t.Fatalf("%s: expected ErrSyntax, got %v", tc.name, err)
		}
	}
}
