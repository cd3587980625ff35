package analyzer

import "github.com/cbegin/affchart-go/internal/aff"

// Onset is one hit moment tagged with the index of the event it came from.
type Onset struct {
	Tick   int
	Source int
}

// QualityReport is a histogram of signed tick deltas between onsets of
// different notes, restricted to [-Window, Window].
type QualityReport struct {
	Window    int
	Histogram map[int]int
	Onsets    int
}

// DoubleTaps counts ordered onset pairs landing on the same tick.
func (r QualityReport) DoubleTaps() int { return r.Histogram[0] }

// NearMisses counts ordered onset pairs that are close but not simultaneous.
func (r QualityReport) NearMisses() int {
	n := 0
	for d, c := range r.Histogram {
		if d != 0 {
			n += c
		}
	}
	return n
}

// qualityOnsets lists tap ticks, hold heads and arc-taps outside noinput
// groups. Arc-taps of one arc share the arc's source index.
func qualityOnsets(c *aff.Chart) []Onset {
	var out []Onset
	for i, ev := range c.Events {
		if c.NoInput(ev.Group) {
			continue
		}
		switch ev.Kind {
		case aff.KindTap, aff.KindHold:
			out = append(out, Onset{Tick: ev.Tick, Source: i})
		case aff.KindArc:
			for _, t := range ev.Arc.ArcTaps {
				out = append(out, Onset{Tick: t, Source: i})
			}
		}
	}
	return out
}

// Quality compares every onset against every other one, so it costs
// O(n^2) in the onset count. Every bucket in the window is present even
// when empty.
func Quality(c *aff.Chart, window int) QualityReport {
	window = max(window, 0)
	onsets := qualityOnsets(c)
	hist := make(map[int]int, 2*window+1)
	for d := -window; d <= window; d++ {
		hist[d] = 0
	}
	for _, a := range onsets {
		for _, b := range onsets {
			if a.Source == b.Source {
				continue
			}
			if d := b.Tick - a.Tick; d >= -window && d <= window {
				hist[d]++
			}
		}
	}
	return QualityReport{Window: window, Histogram: hist, Onsets: len(onsets)}
}

// ChartQuality is one surveyed chart whose onsets collide within 1ms.
type ChartQuality struct {
	Name   string
	Report QualityReport
}

// Survey rolls quality reports of many charts up into collision totals.
type Survey struct {
	Window int
	// Charts and ProblemCharts count surveyed and flagged charts.
	Charts        int
	ProblemCharts int
	// Doubles sums the zero-delta buckets of every chart.
	Doubles int
	// ProblemPairs sums positive buckets of flagged charts.
	ProblemPairs int
	// ByDelta sums non-negative buckets of flagged charts.
	ByDelta  map[int]int
	Problems []ChartQuality
}

func NewSurvey(window int) *Survey {
	s := &Survey{Window: window, ByDelta: map[int]int{}}
	for d := 0; d <= window; d++ {
		s.ByDelta[d] = 0
	}
	return s
}

// Add records a chart's report. A chart is a problem when any pair of its
// onsets is exactly 1ms apart.
func (s *Survey) Add(name string, r QualityReport) {
	s.Charts++
	s.Doubles += r.Histogram[0]
	if r.Histogram[1] == 0 {
		return
	}
	s.ProblemCharts++
	for d := 1; d <= s.Window; d++ {
		s.ProblemPairs += r.Histogram[d]
	}
	for d := 0; d <= s.Window; d++ {
		s.ByDelta[d] += r.Histogram[d]
	}
	s.Problems = append(s.Problems, ChartQuality{Name: name, Report: r})
}

type Bucket struct {
	Delta int
	Count int
}

// NonNegative lists the non-empty buckets at or above zero in delta order.
func (r QualityReport) NonNegative() []Bucket {
	var out []Bucket
	for _, d := range SortedKeys(r.Histogram) {
		if d >= 0 && r.Histogram[d] > 0 {
			out = append(out, Bucket{Delta: d, Count: r.Histogram[d]})
		}
	}
	return out
}
