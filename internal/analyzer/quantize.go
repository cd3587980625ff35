package analyzer

import (
	"math"
	"slices"
	"strconv"

	"github.com/cbegin/affchart-go/internal/aff"
)

// Note is the musical value of the gap between two consecutive onsets.
type Note struct {
	TimePoint int
	Duration  int
	// Divide is the note value denominator (4 for a quarter note), -1 when
	// the gap matched nothing.
	Divide     int
	Dotted     bool
	BeyondFull bool
}

// Label renders the note value the way preview sheets print it: "8", "4.",
// "-" for unclassified gaps and "--" for gaps longer than a whole note.
func (n Note) Label() string {
	s := "-"
	if n.Divide > 0 {
		s = strconv.Itoa(n.Divide)
	}
	if n.Dotted {
		s += "."
	}
	if n.BeyondFull {
		s += "-"
	}
	return s
}

// InvDuration is the onset rate implied by the gap, in notes per second.
func (n Note) InvDuration() float64 {
	if n.Duration == 0 {
		return 0
	}
	return 1000 / float64(n.Duration)
}

// ClassifyGap matches a gap of d milliseconds at bpm against whole, plain
// and dotted note values. It reports false when nothing matched; a gap
// longer than a whole note counts as classified.
func ClassifyGap(tick, d int, bpm float64, tolerance float64) (Note, bool) {
	n := Note{TimePoint: tick, Duration: d, Divide: -1}
	if bpm == 0 {
		return n, false
	}
	whole := 240000 / math.Abs(bpm)
	length := float64(d)
	if length > whole {
		n.BeyondFull = true
		return n, true
	}
	if math.Abs(length-whole) <= tolerance {
		n.Divide = 1
		return n, true
	}
	for i := 2; i <= 64; i += divideStep(i) {
		plain := whole / float64(i)
		if math.Abs(length-plain) <= tolerance {
			n.Divide = i
			return n, true
		}
		if math.Abs(length-plain*1.5) <= tolerance {
			n.Divide = i
			n.Dotted = true
			return n, true
		}
	}
	return n, false
}

// divideStep walks 2,3,4,6,...,28,32,40,...,64.
func divideStep(i int) int {
	switch {
	case i < 4:
		return 1
	case i < 28:
		return 2
	case i < 32:
		return 4
	default:
		return 8
	}
}

// Onsets collects the sorted, de-duplicated note onset ticks used for note
// value classification. A non-void arc starting where the previous arc of
// its color ended continues that arc and adds no onset.
func Onsets(c *aff.Chart) []int {
	ticks := make([]int, 0, len(c.Events))
	lastEnd := map[int]int{}
	for _, ev := range c.Events {
		if c.NoInput(ev.Group) {
			continue
		}
		switch ev.Kind {
		case aff.KindTap, aff.KindHold:
			ticks = append(ticks, ev.Tick)
		case aff.KindArc:
			a := ev.Arc
			if !a.Void {
				if end, ok := lastEnd[a.Color]; !ok || end != ev.Tick {
					ticks = append(ticks, ev.Tick)
				}
				lastEnd[a.Color] = a.EndTick
			}
			ticks = append(ticks, a.ArcTaps...)
		}
	}
	slices.Sort(ticks)
	return slices.Compact(ticks)
}

// Quantize classifies every gap between consecutive onsets. The reference
// bpm is the base timing in effect at the gap start, with the chart's base
// bpm as a second attempt.
func Quantize(c *aff.Chart, opts Options) []Note {
	onsets := Onsets(c)
	var baseBPM float64
	if base, ok := c.BaseTiming(); ok {
		baseBPM = base.Timing.BPM
	}
	timings := aff.NewTimingIndex(c)
	notes := make([]Note, 0, len(onsets))
	for i := 0; i+1 < len(onsets); i++ {
		d := onsets[i+1] - onsets[i]
		if d <= opts.CoincidentGapMs {
			continue
		}
		cur, _ := timings.At(onsets[i], 0)
		n, ok := ClassifyGap(onsets[i], d, cur.BPM, opts.QuantizeToleranceMs)
		if !ok {
			n, _ = ClassifyGap(onsets[i], d, baseBPM, opts.QuantizeToleranceMs)
		}
		notes = append(notes, n)
	}
	return notes
}
