package analyzer

import (
	"math"
	"slices"
	"sort"

	"github.com/cbegin/affchart-go/internal/aff"
)

// Totals counts scorable notes by type.
type Totals struct {
	Tap    int
	Hold   int
	Arc    int
	AirTap int
	Total  int
	// ArcByColor splits Arc by arc color.
	ArcByColor map[int]int
}

// ComboPoint is the combo reached once every note at Tick has been hit.
type ComboPoint struct {
	Tick  int
	Combo int
}

type Combo struct {
	Totals
	Timeline []ComboPoint
	// TapDensity maps a tick to the number of ground taps sharing it.
	TapDensity map[int]int
}

// At returns the combo reached at or before tick.
func (c *Combo) At(tick int) int {
	i := sort.Search(len(c.Timeline), func(i int) bool { return c.Timeline[i].Tick > tick })
	if i == 0 {
		return 0
	}
	return c.Timeline[i-1].Combo
}

// Steps is the number of combo ticks a long note spanning [start, end]
// yields at bpm. A note without its own head loses the first step to the
// note it continues.
func Steps(start, end int, hasHead bool, bpm float64, density float64) int {
	bpm = math.Abs(bpm)
	if bpm == 0 || density <= 0 {
		return 1
	}
	unit := 30000 / bpm / density
	if bpm >= 256 {
		unit = 60000 / bpm / density
	}
	steps := max(1, int(math.Floor(float64(end-start)/unit)))
	if !hasHead && steps > 1 {
		steps--
	}
	return steps
}

// stepTicks spreads n combo ticks evenly from start towards end.
func stepTicks(dst []int, start, end, n int) []int {
	d := end - start
	for k := range n {
		dst = append(dst, start+d*k/n)
	}
	return dst
}

// ComputeCombo builds the combo timeline and per-type totals of the
// scorable notes in non-noinput groups.
func ComputeCombo(c *aff.Chart) *Combo {
	res := &Combo{
		Totals:     Totals{ArcByColor: map[int]int{}},
		TapDensity: map[int]int{},
	}
	density := c.DensityFactor
	if density <= 0 {
		density = 1
	}
	timings := aff.NewTimingIndex(c)
	ticks := make([]int, 0, len(c.Events)*2)
	for _, ev := range c.Events {
		if c.NoInput(ev.Group) {
			continue
		}
		switch ev.Kind {
		case aff.KindTap:
			res.Tap++
			res.TapDensity[ev.Tick]++
			ticks = append(ticks, ev.Tick)
		case aff.KindHold:
			bpm := localTiming(timings, ev.Tick, ev.Group).BPM
			n := Steps(ev.Tick, ev.Hold.EndTick, true, bpm, density)
			res.Hold += n
			ticks = stepTicks(ticks, ev.Tick, ev.Hold.EndTick, n)
		case aff.KindArc:
			a := ev.Arc
			if !a.Void {
				bpm := localTiming(timings, ev.Tick, ev.Group).BPM
				n := Steps(ev.Tick, a.EndTick, a.HasHead, bpm, density)
				res.Arc += n
				res.ArcByColor[a.Color] += n
				ticks = stepTicks(ticks, ev.Tick, a.EndTick, n)
			}
			res.AirTap += len(a.ArcTaps)
			ticks = append(ticks, a.ArcTaps...)
		}
	}
	res.Total = res.Tap + res.Hold + res.Arc + res.AirTap

	slices.Sort(ticks)
	combo := 0
	for _, t := range ticks {
		combo++
		if n := len(res.Timeline); n > 0 && res.Timeline[n-1].Tick == t {
			res.Timeline[n-1].Combo = combo
			continue
		}
		res.Timeline = append(res.Timeline, ComboPoint{Tick: t, Combo: combo})
	}
	return res
}
