// Package midiexport writes a chart's scorable notes as a Standard MIDI
// File: a conductor track carrying the base tempo map and a percussion
// track with one note per hit.
package midiexport

import (
	"io"
	"math"
	"slices"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/cbegin/affchart-go/internal/aff"
)

type Options struct {
	Resolution uint16
	Channel    uint8
	Velocity   uint8
	// TapMs is how long taps and arc-taps sound.
	TapMs int
}

func DefaultOptions() Options {
	return Options{Resolution: 480, Channel: 9, Velocity: 100, TapMs: 60}
}

// General MIDI percussion keys.
const (
	keyArcTap   uint8 = 42 // closed hi-hat
	keyArcBlue  uint8 = 51 // ride
	keyArcRed   uint8 = 53 // ride bell
	keyArcGreen uint8 = 59 // ride 2
)

// laneKeys maps ground lanes 0..5 (lanes 0 and 5 exist on six-lane charts)
// to drums.
var laneKeys = [...]uint8{35, 36, 38, 40, 41, 43}

func laneKey(track int) uint8 {
	if track < 0 || track >= len(laneKeys) {
		return laneKeys[1]
	}
	return laneKeys[track]
}

func arcKey(color int) uint8 {
	switch color {
	case 0:
		return keyArcBlue
	case 1:
		return keyArcRed
	default:
		return keyArcGreen
	}
}

// Note is one percussion hit in chart milliseconds.
type Note struct {
	Start, End int
	Key        uint8
}

// Notes lists the hits of non-noinput groups: taps, hold and arc heads,
// and arc-taps. Arcs continuing another arc add no note.
func Notes(c *aff.Chart, tapMs int) []Note {
	var out []Note
	for _, ev := range c.Events {
		if c.NoInput(ev.Group) {
			continue
		}
		switch ev.Kind {
		case aff.KindTap:
			out = append(out, Note{ev.Tick, ev.Tick + tapMs, laneKey(ev.Tap.Track)})
		case aff.KindHold:
			out = append(out, Note{ev.Tick, max(ev.Hold.EndTick, ev.Tick+tapMs), laneKey(ev.Hold.Track)})
		case aff.KindArc:
			a := ev.Arc
			if !a.Void && a.HasHead {
				out = append(out, Note{ev.Tick, max(a.EndTick, ev.Tick+tapMs), arcKey(a.Color)})
			}
			for _, t := range a.ArcTaps {
				out = append(out, Note{t, t + tapMs, keyArcTap})
			}
		}
	}
	return out
}

type tempoPoint struct {
	ms, ticks, bpm float64
}

// tempoMap converts chart milliseconds to MIDI ticks along the base group's
// timings. Stops (bpm 0) keep the previous tempo; negative tempos play
// forwards at their magnitude.
type tempoMap struct {
	res    float64
	points []tempoPoint
}

// MIDI stores tempo as 24-bit microseconds per quarter note, which cannot
// go below about 3.6bpm.
const minBPM = 4

func newTempoMap(c *aff.Chart, resolution uint16) *tempoMap {
	m := &tempoMap{res: float64(resolution)}
	for _, ev := range c.TimingsIn(0) {
		bpm := math.Abs(ev.Timing.BPM)
		if bpm == 0 {
			continue
		}
		bpm = max(bpm, minBPM)
		ms := max(float64(ev.Tick), 0)
		if n := len(m.points); n > 0 {
			if m.points[n-1].bpm == bpm {
				continue
			}
			if m.points[n-1].ms == ms {
				m.points[n-1].bpm = bpm
				continue
			}
			m.points = append(m.points, tempoPoint{ms: ms, ticks: m.ticksAt(ms), bpm: bpm})
			continue
		}
		m.points = append(m.points, tempoPoint{ms: 0, bpm: bpm})
	}
	if len(m.points) == 0 {
		m.points = append(m.points, tempoPoint{bpm: 120})
	}
	return m
}

func (m *tempoMap) ticksAt(ms float64) float64 {
	ms = max(ms, 0)
	i, _ := slices.BinarySearchFunc(m.points, ms, func(p tempoPoint, ms float64) int {
		if p.ms <= ms {
			return -1
		}
		return 1
	})
	p := m.points[max(i-1, 0)]
	return p.ticks + (ms-p.ms)*p.bpm/60000*m.res
}

func (m *tempoMap) tick(ms int) uint32 {
	return uint32(math.Round(m.ticksAt(float64(ms))))
}

type timed struct {
	tick uint32
	off  bool
	msg  []byte
}

// addTimed appends events to tr in tick order, note-offs first on ties.
func addTimed(tr *smf.Track, evs []timed) {
	slices.SortStableFunc(evs, func(a, b timed) int {
		switch {
		case a.tick != b.tick:
			return int(a.tick) - int(b.tick)
		case a.off && !b.off:
			return -1
		case !a.off && b.off:
			return 1
		}
		return 0
	})
	var last uint32
	for _, ev := range evs {
		tr.Add(ev.tick-last, ev.msg)
		last = ev.tick
	}
}

// Build assembles the MIDI file in memory.
func Build(c *aff.Chart, opts Options) (*smf.SMF, error) {
	if opts.Resolution == 0 {
		opts.Resolution = DefaultOptions().Resolution
	}
	if opts.Channel > 15 {
		return nil, fault.New("midi channel must be 0-15")
	}
	tm := newTempoMap(c, opts.Resolution)

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(opts.Resolution)

	var conductor smf.Track
	conductor.Add(0, smf.MetaTrackSequenceName("tempo"))
	if base, ok := c.BaseTiming(); ok {
		if beats := int(base.Timing.BeatsPerLine); beats > 0 && beats < 256 && float64(beats) == base.Timing.BeatsPerLine {
			conductor.Add(0, smf.MetaMeter(uint8(beats), 4))
		}
	}
	tempos := make([]timed, 0, len(tm.points))
	for _, p := range tm.points {
		tempos = append(tempos, timed{tick: uint32(math.Round(p.ticks)), msg: smf.MetaTempo(p.bpm)})
	}
	addTimed(&conductor, tempos)
	conductor.Close(0)

	notes := Notes(c, opts.TapMs)
	evs := make([]timed, 0, 2*len(notes))
	for _, n := range notes {
		on, off := tm.tick(n.Start), tm.tick(n.End)
		if off <= on {
			off = on + 1
		}
		evs = append(evs,
			timed{tick: on, msg: midi.NoteOn(opts.Channel, n.Key, opts.Velocity)},
			timed{tick: off, off: true, msg: midi.NoteOff(opts.Channel, n.Key)},
		)
	}
	var drums smf.Track
	drums.Add(0, smf.MetaTrackSequenceName("notes"))
	addTimed(&drums, evs)
	drums.Close(0)

	if err := s.Add(conductor); err != nil {
		return nil, fault.Wrap(err, fmsg.With("error adding tempo track"))
	}
	if err := s.Add(drums); err != nil {
		return nil, fault.Wrap(err, fmsg.With("error adding note track"))
	}
	return s, nil
}

// Export writes the chart as a MIDI file to w.
func Export(c *aff.Chart, w io.Writer, opts Options) error {
	s, err := Build(c, opts)
	if err != nil {
		return err
	}
	if _, err := s.WriteTo(w); err != nil {
		return fault.Wrap(err, fmsg.With("error writing midi file"))
	}
	return nil
}
