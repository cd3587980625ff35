// Package click synthesizes a metronome-style click track from chart onsets.
// Output is interleaved stereo float32, ready for the audio stream or for
// offline WAV rendering.
package click

import (
	"math"
	"slices"
	"sort"
	"sync/atomic"
)

type Config struct {
	SampleRate int
	ClickHz    float64
	AccentHz   float64
	ClickMs    float64
	Gain       float64
}

func DefaultConfig() Config {
	return Config{
		SampleRate: 48000,
		ClickHz:    1760,
		AccentHz:   2640,
		ClickMs:    30,
		Gain:       0.5,
	}
}

// Click is one hit at Tick milliseconds. Accented clicks sound at the
// higher pitch.
type Click struct {
	Tick   int
	Accent bool
}

// Schedule merges note onsets and bar lines into one ordered click list.
// Bar lines are accented and an onset on a bar line shares its click.
// Anything before tick 0 is dropped.
func Schedule(onsets []int, bars []float64) []Click {
	accent := make(map[int]bool, len(onsets)+len(bars))
	for _, t := range onsets {
		if _, ok := accent[t]; !ok && t >= 0 {
			accent[t] = false
		}
	}
	for _, b := range bars {
		if t := int(math.Round(b)); t >= 0 {
			accent[t] = true
		}
	}
	out := make([]Click, 0, len(accent))
	for t, a := range accent {
		out = append(out, Click{Tick: t, Accent: a})
	}
	slices.SortFunc(out, func(a, b Click) int { return a.Tick - b.Tick })
	return out
}

type EventKind int

const (
	EventLoopCompleted EventKind = iota
	EventPlaybackEnded
)

type Options struct {
	// Loop restarts the track from tick 0 after the last click rings out.
	Loop    bool
	OnEvent func(EventKind)
	// OnClick runs on the audio thread when a click starts sounding.
	OnClick func(Click)
}

type voice struct {
	phase  float64
	step   float64
	left   int
	length int
}

// Track renders a click list. It implements the audio stream's sample
// source interface.
type Track struct {
	cfg      Config
	opts     Options
	clicks   []Click
	next     int
	frame    int64
	end      int64
	clickLen int
	voices   []voice
	limiter  *Limiter
	gain     atomic.Uint64
	ended    atomic.Bool
}

func New(cfg Config, clicks []Click) *Track {
	return NewWithOptions(cfg, clicks, Options{})
}

func NewWithOptions(cfg Config, clicks []Click, opts Options) *Track {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = DefaultConfig().SampleRate
	}
	t := &Track{
		cfg:      cfg,
		opts:     opts,
		clicks:   clicks,
		clickLen: max(1, int(cfg.ClickMs*float64(cfg.SampleRate)/1000)),
		limiter:  NewLimiter(cfg.SampleRate, -1, 50),
	}
	if n := len(clicks); n > 0 {
		t.end = t.frameOf(clicks[n-1].Tick) + int64(t.clickLen)
	}
	t.SetGain(cfg.Gain)
	return t
}

func (t *Track) frameOf(tick int) int64 {
	return int64(tick) * int64(t.cfg.SampleRate) / 1000
}

// Frames is the length of one pass over the track.
func (t *Track) Frames() int64 { return t.end }

// SetGain changes the output level; safe to call while the track plays.
func (t *Track) SetGain(g float64) {
	t.gain.Store(math.Float64bits(max(g, 0)))
}

func (t *Track) Gain() float64 {
	return math.Float64frombits(t.gain.Load())
}

func (t *Track) Finished() bool { return t.ended.Load() }

// SeekFrame restarts playback at frame within one pass. Clicks before the
// frame are skipped and ringing clicks are cut. Not safe to call
// concurrently with Process; the audio stream serializes both.
func (t *Track) SeekFrame(frame int64) {
	frame = max(0, min(frame, t.end))
	t.frame = frame
	t.next = sort.Search(len(t.clicks), func(i int) bool {
		return t.frameOf(t.clicks[i].Tick) >= frame
	})
	t.voices = t.voices[:0]
	t.limiter.Reset()
	t.ended.Store(false)
}

func (t *Track) Process(dst []float32) {
	gain := float32(t.Gain())
	frames := len(dst) / 2
	for f := 0; f < frames; f++ {
		if t.ended.Load() {
			dst[f*2], dst[f*2+1] = 0, 0
			continue
		}
		for t.next < len(t.clicks) && t.frameOf(t.clicks[t.next].Tick) <= t.frame {
			t.start(t.clicks[t.next])
			t.next++
		}
		s := t.render()
		l, r := t.limiter.Process(s*gain, s*gain)
		dst[f*2], dst[f*2+1] = l, r
		t.frame++
		if t.frame >= t.end {
			t.wrap()
		}
	}
}

func (t *Track) start(c Click) {
	hz := t.cfg.ClickHz
	if c.Accent {
		hz = t.cfg.AccentHz
	}
	t.voices = append(t.voices, voice{
		step:   2 * math.Pi * hz / float64(t.cfg.SampleRate),
		left:   t.clickLen,
		length: t.clickLen,
	})
	if t.opts.OnClick != nil {
		t.opts.OnClick(c)
	}
}

// render mixes the sounding voices with a quadratic decay.
func (t *Track) render() float32 {
	var sum float64
	alive := t.voices[:0]
	for _, v := range t.voices {
		env := float64(v.left) / float64(v.length)
		sum += math.Sin(v.phase) * env * env
		v.phase += v.step
		v.left--
		if v.left > 0 {
			alive = append(alive, v)
		}
	}
	t.voices = alive
	return float32(sum)
}

func (t *Track) wrap() {
	if t.opts.Loop && t.end > 0 {
		t.frame, t.next = 0, 0
		t.voices = t.voices[:0]
		if t.opts.OnEvent != nil {
			t.opts.OnEvent(EventLoopCompleted)
		}
		return
	}
	t.ended.Store(true)
	if t.opts.OnEvent != nil {
		t.opts.OnEvent(EventPlaybackEnded)
	}
}

// Render synthesizes the whole track offline.
func Render(cfg Config, clicks []Click) []float32 {
	t := New(cfg, clicks)
	out := make([]float32, t.Frames()*2)
	t.Process(out)
	return out
}
