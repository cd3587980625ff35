// Package analyzer derives rhythm analytics from a parsed chart: bar
// boundaries, note-value classification, combo counts and timing-collision
// diagnostics.
//
// Every function reads the chart it is given and builds fresh results, so a
// chart may be re-analyzed after it has been mirrored or otherwise rebuilt.
package analyzer

import (
	"math"

	"github.com/cbegin/affchart-go/internal/aff"
)

type Options struct {
	// PreRollMs is how far before the first timing bar lines are back-filled.
	PreRollMs float64
	// QualityWindowMs is the half-width of the collision histogram.
	QualityWindowMs int
	// QuantizeToleranceMs is the slack allowed when matching a gap to a note value.
	QuantizeToleranceMs float64
	// CoincidentGapMs is the largest gap treated as simultaneous.
	CoincidentGapMs int
}

func DefaultOptions() Options {
	return Options{
		PreRollMs:           -3000,
		QualityWindowMs:     5,
		QuantizeToleranceMs: 3.5,
		CoincidentGapMs:     3,
	}
}

// Result bundles the analyses used by a preview renderer.
type Result struct {
	BaseBPM          float64
	BaseBeatsPerLine float64
	Durations        Durations
	Segments         []float64
	Notes            []Note
	Combo            *Combo
	TempoMarks       []TempoMark
	FourLane         []Interval
}

// Analyze runs every interactive analysis over the chart. The quality
// diagnostic is not included; call Quality for it.
func Analyze(c *aff.Chart, opts Options) *Result {
	res := &Result{}
	if base, ok := c.BaseTiming(); ok {
		res.BaseBPM = base.Timing.BPM
		res.BaseBeatsPerLine = base.Timing.BeatsPerLine
	}
	res.Durations = ChartDurations(c)
	res.Segments = Segments(c, res.Durations.Total, opts.PreRollMs)
	res.Notes = Quantize(c, opts)
	res.Combo = ComputeCombo(c)
	res.TempoMarks = TempoMarks(c, res.Durations.Total)
	res.FourLane = LaneIntervals(c, res.Durations.Total)
	return res
}

// Durations holds chart length figures in milliseconds.
type Durations struct {
	// Real is the last scorable or timing tick.
	Real float64
	// Total is Real plus a quarter of the base bar as trailing runway.
	Total float64
	// BaseSegment is the bar length of the base timing.
	BaseSegment float64
	// BaseSegmentCount is how many base bars cover [0, Total).
	BaseSegmentCount int
}

func ChartDurations(c *aff.Chart) Durations {
	var d Durations
	if base, ok := c.BaseTiming(); ok {
		d.BaseSegment = barLength(*base.Timing)
	}
	last := 0
	for _, ev := range c.Events {
		if c.NoInput(ev.Group) {
			continue
		}
		switch ev.Kind {
		case aff.KindTap, aff.KindTiming:
			last = max(last, ev.Tick)
		case aff.KindHold:
			last = max(last, ev.Hold.EndTick)
		case aff.KindArc:
			last = max(last, ev.Arc.EndTick)
		}
	}
	d.Real = float64(last)
	d.Total = d.Real + d.BaseSegment/4
	if d.BaseSegment > 0 {
		d.BaseSegmentCount = int(math.Ceil(d.Total / d.BaseSegment))
	}
	return d
}

// barLength is the length of one bar line at a timing, 0 when bpm is 0.
func barLength(t aff.Timing) float64 {
	if t.BPM == 0 {
		return 0
	}
	return 60000 / math.Abs(t.BPM) * t.BeatsPerLine
}

// localTiming finds the timing governing tick in group, falling back to the
// base group for groups without timings of their own.
func localTiming(ix *aff.TimingIndex, tick int, group int) aff.Timing {
	if t, ok := ix.At(tick, group); ok {
		return t
	}
	t, _ := ix.At(tick, 0)
	return t
}
