package aff

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

const sampleChart = `AudioOffset:-120
-
timing(0,120.00,4.00);
(1000,1);
(500,2);
hold(1000,1500,4);
arc(2000,2500,0.00,1.00,s,1.00,1.00,0,none,false);
arc(2500,3000,1.00,0.50,siso,1.00,0.00,0,none,false);
arc(3000,3500,0.00,0.00,s,1.00,1.00,1,none,true)[arctap(3100),arctap(3050)];
camera(4000,0.00,0.00,0.00,0.00,0.00,0.00,qi,500);
scenecontrol(4000,enwidenlanes,1.00,1);
scenecontrol(4500,trackhide);
timing(4000,240.00,4.00);
timinggroup(){
timing(0,60.00,4.00);
(5000,3);
};
timinggroup(noinput){
timing(0,120.00,4.00);
(6000,2);
arc(6000,6500,0.00,1.00,s,1.00,1.00,0,none,false)[arctap(6100)];
};`

func mustParse(t *testing.T, src string) *Chart {
	t.Helper()
	c, err := NewParser(DefaultParserConfig()).Parse(src)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	return c
}

func TestParseSampleChart(t *testing.T) {
	c := mustParse(t, sampleChart)
	if c.AudioOffset != -120 {
		t.Fatalf("audio offset = %d, want -120", c.AudioOffset)
	}
	if c.DensityFactor != 1 {
		t.Fatalf("density factor = %v, want 1", c.DensityFactor)
	}
	if len(c.Groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(c.Groups))
	}
	if c.Groups[1].NoInput || !c.Groups[2].NoInput {
		t.Fatalf("unexpected noinput flags: %+v", c.Groups)
	}
	counts := map[EventKind]int{}
	for _, ev := range c.Events {
		counts[ev.Kind]++
	}
	// nothing from the noinput group survives
	want := map[EventKind]int{KindTiming: 3, KindTap: 3, KindHold: 1, KindArc: 3, KindCamera: 1, KindSceneControl: 2}
	if !reflect.DeepEqual(counts, want) {
		t.Fatalf("event counts = %v, want %v", counts, want)
	}
}

func TestParseSortsStableByTick(t *testing.T) {
	c := mustParse(t, sampleChart)
	for i := 1; i < len(c.Events); i++ {
		if c.Events[i].Tick < c.Events[i-1].Tick {
			t.Fatalf("events not sorted at %d: %d < %d", i, c.Events[i].Tick, c.Events[i-1].Tick)
		}
	}
	// tap (1000,1) precedes hold(1000,...) in the file and must stay first
	var at1000 []EventKind
	for _, ev := range c.Events {
		if ev.Tick == 1000 {
			at1000 = append(at1000, ev.Kind)
		}
	}
	if len(at1000) != 2 || at1000[0] != KindTap || at1000[1] != KindHold {
		t.Fatalf("tie order at 1000 = %v", at1000)
	}
}

func TestParseDeterministic(t *testing.T) {
	a := mustParse(t, sampleChart)
	b := mustParse(t, sampleChart)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("re-parsing produced a different chart")
	}
}

func TestParseArcTapsForceVoidAndKeepOrder(t *testing.T) {
	c := mustParse(t, sampleChart)
	for _, ev := range c.Events {
		if ev.Kind == KindArc && ev.Tick == 3000 {
			if !ev.Arc.Void {
				t.Fatalf("arc with arctaps must be void")
			}
			if !reflect.DeepEqual(ev.Arc.ArcTaps, []int{3100, 3050}) {
				t.Fatalf("arctaps = %v, want file order [3100 3050]", ev.Arc.ArcTaps)
			}
			return
		}
	}
	t.Fatalf("arc at 3000 not found")
}

func TestParseArcHeads(t *testing.T) {
	c := mustParse(t, sampleChart)
	heads := map[int]bool{}
	for _, ev := range c.Events {
		if ev.Kind == KindArc {
			heads[ev.Tick] = ev.Arc.HasHead
		}
	}
	if !heads[2000] {
		t.Fatalf("first arc should have a head")
	}
	if heads[2500] {
		t.Fatalf("arc continuing at 2500 should not have a head")
	}
	if !heads[3000] {
		t.Fatalf("arc at 3000 starts at a different position and color")
	}
}

func TestParseSceneControl(t *testing.T) {
	c := mustParse(t, `AudioOffset:0
-
timing(0,100.00,4.00);
scenecontrol(100,enwidenlanes,1.00,1);
scenecontrol(200,trackhide);
scenecontrol(300,text,'hello, world',2);
scenecontrol(400,bad,x);`)
	var scs []*SceneControl
	for _, ev := range c.Events {
		if ev.Kind == KindSceneControl {
			scs = append(scs, ev.SceneControl)
		}
	}
	if len(scs) != 4 {
		t.Fatalf("expected 4 scenecontrols, got %d", len(scs))
	}
	if scs[0].TypeName != "enwidenlanes" || len(scs[0].Params) != 2 || scs[0].Params[1].Number != 1 {
		t.Fatalf("unexpected enwidenlanes: %+v", scs[0])
	}
	if scs[1].TypeName != "trackhide" || len(scs[1].Params) != 0 {
		t.Fatalf("lenient parse expected, got %+v", scs[1])
	}
	if !scs[2].Params[0].IsText || scs[2].Params[0].Text != "hello, world" || scs[2].Params[1].Number != 2 {
		t.Fatalf("quoted parameter lost: %+v", scs[2].Params)
	}
	if scs[3].TypeName != "bad,x" || len(scs[3].Params) != 0 {
		t.Fatalf("unparseable params should fall back, got %+v", scs[3])
	}
}

func TestParseDensityFactorShiftsBaseTiming(t *testing.T) {
	c := mustParse(t, `AudioOffset:0
TimingPointDensityFactor:2
-
timing(0,180.00,4.00);
(0,1);`)
	if c.DensityFactor != 2 {
		t.Fatalf("density factor = %v, want 2", c.DensityFactor)
	}
	base, ok := c.BaseTiming()
	if !ok || base.Timing.BPM != 180 {
		t.Fatalf("base timing = %+v", base)
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		line int
		kind EventKind
		is   error
	}{
		{"bad audio offset", "AudioOffset:abc\n-\ntiming(0,100,4);", 1, KindUnknown, ErrSyntax},
		{"tap track", "AudioOffset:0\n-\ntiming(0,100,4);\n(0,7);", 4, KindTap, ErrTrackRange},
		{"hold track", "AudioOffset:0\n-\ntiming(0,100,4);\nhold(0,100,0);", 4, KindHold, ErrTrackRange},
		{"hold reversed", "AudioOffset:0\n-\ntiming(0,100,4);\nhold(100,0,1);", 4, KindHold, ErrNegativeDuration},
		{"arc reversed", "AudioOffset:0\n-\ntiming(0,100,4);\narc(500,100,0,1,s,1,1,0,none,false);", 4, KindArc, ErrNegativeDuration},
		{"arc bad bool", "AudioOffset:0\n-\ntiming(0,100,4);\narc(0,100,0,1,s,1,1,0,none,maybe);", 4, KindArc, ErrSyntax},
		{"zero base bpm", "AudioOffset:0\n-\ntiming(0,0,4);", 3, KindTiming, ErrZeroBaseBPM},
		{"negative bpl", "AudioOffset:0\n-\ntiming(0,100,4);\ntiming(100,100,-1);", 4, KindTiming, ErrNegativeBeatsPerLine},
		{"zero bpm in group", "AudioOffset:0\n-\ntiming(0,100,4);\ntiminggroup(){\ntiming(0,0,4);\n};", 5, KindTiming, ErrZeroBaseBPM},
		{"noinput still validated", "AudioOffset:0\n-\ntiming(0,100,4);\ntiminggroup(noinput){\n(0,9);\n};", 5, KindTap, ErrTrackRange},
		{"missing base timing", "AudioOffset:0\n-\n(0,1);", 3, KindTiming, ErrSyntax},
		{"density factor", "AudioOffset:0\nTimingPointDensityFactor:zero\n-\ntiming(0,100,4);", 2, KindUnknown, ErrSyntax},
		{"camera duration", "AudioOffset:0\n-\ntiming(0,100,4);\ncamera(0,0,0,0,0,0,0,l,-5);", 4, KindCamera, ErrNegativeDuration},
		{"noinput camera validated", "AudioOffset:0\n-\ntiming(0,100,4);\ntiminggroup(noinput){\ncamera(0,0,0,0,0,0,0,l,-5);\n};", 5, KindCamera, ErrNegativeDuration},
		{"bare audio offset", "5\n-\ntiming(0,100,4);", 1, KindUnknown, ErrMissingHeader},
		{"timing without semicolon", "AudioOffset:0\n-\ntiming(0,100,4)", 3, KindTiming, ErrSyntax},
		{"tap without semicolon", "AudioOffset:0\n-\ntiming(0,100,4);\n(0,1)", 4, KindTap, ErrSyntax},
		{"hold without semicolon", "AudioOffset:0\n-\ntiming(0,100,4);\nhold(0,100,1)", 4, KindHold, ErrSyntax},
		{"arctaps without semicolon", "AudioOffset:0\n-\ntiming(0,100,4);\narc(0,100,0,1,s,1,1,0,none,true)[arctap(50)]", 4, KindArc, ErrSyntax},
		{"camera without semicolon", "AudioOffset:0\n-\ntiming(0,100,4);\ncamera(0,0,0,0,0,0,0,l,5)", 4, KindCamera, ErrSyntax},
		{"scenecontrol without semicolon", "AudioOffset:0\n-\ntiming(0,100,4);\nscenecontrol(0,trackhide)", 4, KindSceneControl, ErrSyntax},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewParser(DefaultParserConfig()).Parse(tc.src)
			if err == nil {
				t.Fatalf("expected error")
			}
			var fe *FormatError
			if !errors.As(err, &fe) {
				t.Fatalf("expected *FormatError, got %T", err)
			}
			if fe.Line != tc.line {
				t.Fatalf("line = %d, want %d (%v)", fe.Line, tc.line, err)
			}
			if fe.Kind != tc.kind {
				t.Fatalf("kind = %v, want %v", fe.Kind, tc.kind)
			}
			if !errors.Is(err, tc.is) {
				t.Fatalf("expected errors.Is %v, got %v", tc.is, err)
			}
		})
	}
}

func TestParseValidationCarriesReasonAndRawLine(t *testing.T) {
	_, err := NewParser(DefaultParserConfig()).Parse("AudioOffset:0\n-\ntiming(0,100,4);\n  (0,7);  ")
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FormatError, got %v", err)
	}
	if fe.Raw != "(0,7);" {
		t.Fatalf("raw = %q", fe.Raw)
	}
	if !strings.Contains(fe.Reason, "track out of range") {
		t.Fatalf("reason = %q", fe.Reason)
	}
	if !strings.Contains(err.Error(), "line 4") || !strings.Contains(err.Error(), "tap") {
		t.Fatalf("message lacks location: %v", err)
	}
}

func TestParseUnmatchedGroup(t *testing.T) {
	_, err := NewParser(DefaultParserConfig()).Parse("AudioOffset:0\n-\ntiming(0,100,4);\ntiminggroup(){\n(0,1);")
	if !errors.Is(err, ErrUnmatchedGroup) {
		t.Fatalf("expected unmatched group error, got %v", err)
	}
}

func TestParseIgnoresUnknownLines(t *testing.T) {
	c := mustParse(t, "AudioOffset:0\r\n-\r\ntiming(0,100,4);\r\n// comment\r\nflick(0,1);\r\n(0,1);\r\n")
	if len(c.Events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(c.Events))
	}
}

func TestParseNoInputGroupDropsEveryEvent(t *testing.T) {
	c := mustParse(t, `AudioOffset:0
-
timing(0,100.00,4.00);
timinggroup(noinput){
timing(0,50.00,4.00);
camera(100,0.00,0.00,0.00,0.00,0.00,0.00,l,5);
scenecontrol(200,hidegroup,0.00,1);
(300,1);
};
(400,2);`)
	if len(c.Groups) != 2 || !c.Groups[1].NoInput {
		t.Fatalf("groups = %+v", c.Groups)
	}
	for _, ev := range c.Events {
		if ev.Group != 0 {
			t.Fatalf("event from noinput group kept: %s", FormatEvent(ev))
		}
	}
	if len(c.Events) != 2 {
		t.Fatalf("expected base timing and tap, got %d events", len(c.Events))
	}
}

func TestParseArcHeadTolerance(t *testing.T) {
	cases := []struct {
		xStart  string
		hasHead bool
	}{
		{"1.00", false},
		{"1.05", false},
		{"1.10", false},
		{"0.90", false},
		{"1.11", true},
		{"1.20", true},
	}
	for _, tc := range cases {
		src := "AudioOffset:0\n-\ntiming(0,100,4);\n" +
			"arc(0,500,0.00,1.00,s,0.00,1.00,0,none,false);\n" +
			"arc(500,1000," + tc.xStart + ",0.50,s,1.00,1.00,0,none,false);"
		c := mustParse(t, src)
		second := c.Events[len(c.Events)-1].Arc
		if second.HasHead != tc.hasHead {
			t.Fatalf("xStart %s: hasHead = %v, want %v", tc.xStart, second.HasHead, tc.hasHead)
		}
	}
}

func TestTimingIndex(t *testing.T) {
	c := mustParse(t, sampleChart)
	ix := NewTimingIndex(c)
	cases := []struct {
		tick, group int
		bpm         float64
		ok          bool
	}{
		{-50, 0, 120, true},
		{0, 0, 120, true},
		{3999, 0, 120, true},
		{4000, 0, 240, true},
		{9000, 0, 240, true},
		{5000, 1, 60, true},
		{0, 2, 0, false},
	}
	for _, tc := range cases {
		got, ok := ix.At(tc.tick, tc.group)
		if ok != tc.ok || got.BPM != tc.bpm {
			t.Fatalf("At(%d, %d) = %v %v, want %v %v", tc.tick, tc.group, got.BPM, ok, tc.bpm, tc.ok)
		}
		direct, dok := c.TimingAt(tc.tick, tc.group)
		if direct != got || dok != ok {
			t.Fatalf("TimingAt(%d, %d) disagrees with the index", tc.tick, tc.group)
		}
	}
}
