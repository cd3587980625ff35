package click

import (
	"math"
	"reflect"
	"testing"
)

func TestScheduleMergesBarsAndOnsets(t *testing.T) {
	got := Schedule([]int{500, 0, 250, 500, -20}, []float64{-2000, 0, 1999.6})
	want := []Click{
		{Tick: 0, Accent: true},
		{Tick: 250},
		{Tick: 500},
		{Tick: 2000, Accent: true},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("schedule = %+v, want %+v", got, want)
	}
}

func TestRenderPlacesClicks(t *testing.T) {
	cfg := Config{SampleRate: 1000, ClickHz: 100, AccentHz: 200, ClickMs: 10, Gain: 0.5}
	out := Render(cfg, []Click{{Tick: 0, Accent: true}, {Tick: 100}})
	if len(out) != (100+10)*2 {
		t.Fatalf("rendered %d samples, want %d", len(out), 220)
	}
	energy := func(from, to int) float64 {
		var e float64
		for f := from; f < to; f++ {
			e += float64(out[f*2] * out[f*2])
		}
		return e
	}
	if energy(0, 10) == 0 || energy(100, 110) == 0 {
		t.Fatalf("expected sound at both clicks")
	}
	if energy(10, 100) != 0 {
		t.Fatalf("expected silence between clicks")
	}
	for i := 0; i < len(out); i += 2 {
		if out[i] != out[i+1] {
			t.Fatalf("channels differ at frame %d", i/2)
		}
	}
}

func TestLimiterKeepsCeiling(t *testing.T) {
	cfg := Config{SampleRate: 8000, ClickHz: 440, AccentHz: 880, ClickMs: 50, Gain: 20}
	clicks := []Click{{Tick: 0}, {Tick: 0, Accent: true}, {Tick: 1}, {Tick: 2}}
	ceiling := float32(math.Pow(10, -1.0/20)) + 1e-6
	for i, s := range Render(cfg, clicks) {
		if s > ceiling || s < -ceiling {
			t.Fatalf("sample %d = %v exceeds ceiling", i, s)
		}
	}
}

func TestTrackEvents(t *testing.T) {
	cfg := Config{SampleRate: 1000, ClickHz: 100, AccentHz: 200, ClickMs: 5, Gain: 1}
	clicks := []Click{{Tick: 0}, {Tick: 20, Accent: true}}

	var heard []Click
	var events []EventKind
	tr := NewWithOptions(cfg, clicks, Options{
		OnClick: func(c Click) { heard = append(heard, c) },
		OnEvent: func(k EventKind) { events = append(events, k) },
	})
	buf := make([]float32, 2*64)
	tr.Process(buf)
	if !tr.Finished() {
		t.Fatalf("track should have finished after %d frames", tr.Frames())
	}
	if !reflect.DeepEqual(heard, clicks) {
		t.Fatalf("heard %+v", heard)
	}
	if !reflect.DeepEqual(events, []EventKind{EventPlaybackEnded}) {
		t.Fatalf("events = %v", events)
	}
	for _, s := range buf[2*tr.Frames():] {
		if s != 0 {
			t.Fatalf("expected silence after the end")
		}
	}
}

func TestTrackLoops(t *testing.T) {
	cfg := Config{SampleRate: 1000, ClickHz: 100, AccentHz: 200, ClickMs: 5, Gain: 1}
	loops, clicks := 0, 0
	tr := NewWithOptions(cfg, []Click{{Tick: 10}}, Options{
		Loop:    true,
		OnClick: func(Click) { clicks++ },
		OnEvent: func(k EventKind) {
			if k == EventLoopCompleted {
				loops++
			}
		},
	})
	// one pass is 15 frames
	tr.Process(make([]float32, 2*45))
	if loops != 3 || clicks != 3 {
		t.Fatalf("loops = %d clicks = %d, want 3 and 3", loops, clicks)
	}
	if tr.Finished() {
		t.Fatalf("looping track must not finish")
	}
}

func TestSetGain(t *testing.T) {
	tr := New(DefaultConfig(), nil)
	tr.SetGain(-1)
	if tr.Gain() != 0 {
		t.Fatalf("negative gain should clamp to 0, got %v", tr.Gain())
	}
}

func TestSeekFrameSkipsEarlierClicks(t *testing.T) {
	cfg := Config{SampleRate: 1000, ClickHz: 100, AccentHz: 200, ClickMs: 5, Gain: 1}
	var heard []int
	tr := NewWithOptions(cfg, []Click{{Tick: 0}, {Tick: 10}, {Tick: 20}}, Options{
		OnClick: func(c Click) { heard = append(heard, c.Tick) },
	})
	tr.Process(make([]float32, 2*30))
	if !tr.Finished() {
		t.Fatalf("track should have finished")
	}
	heard = nil
	tr.SeekFrame(10)
	if tr.Finished() {
		t.Fatalf("seeking should rearm the track")
	}
	tr.Process(make([]float32, 2*20))
	if !reflect.DeepEqual(heard, []int{10, 20}) {
		t.Fatalf("heard %v after seek, want [10 20]", heard)
	}
}
