package analyzer

import "github.com/cbegin/affchart-go/internal/aff"

// Interval is the half-open tick range [Start, End).
type Interval struct {
	Start float64
	End   float64
}

func (iv Interval) Contains(tick float64) bool {
	return tick >= iv.Start && tick < iv.End
}

// LaneIntervals returns the parts of [0, total) played on the four-lane
// layout. Charts start on four lanes; scenecontrol(t,enwidenlanes,d,1)
// switches to six lanes at t and a toggle of 0 switches back.
func LaneIntervals(c *aff.Chart, total float64) []Interval {
	var out []Interval
	start, open := 0.0, true
	for _, ev := range c.Events {
		if ev.Kind != aff.KindSceneControl || ev.SceneControl.TypeName != "enwidenlanes" {
			continue
		}
		params := ev.SceneControl.Params
		if len(params) < 2 || params[1].IsText {
			continue
		}
		t := float64(ev.Tick)
		if t > total {
			break
		}
		switch enwiden := params[1].Number != 0; {
		case enwiden && open:
			if t > start {
				out = append(out, Interval{Start: start, End: t})
			}
			open = false
		case !enwiden && !open:
			start, open = t, true
		}
	}
	if open && total > start {
		out = append(out, Interval{Start: start, End: total})
	}
	return out
}

// InFourLane reports whether tick falls inside one of the intervals.
func InFourLane(intervals []Interval, tick float64) bool {
	for _, iv := range intervals {
		if iv.Contains(tick) {
			return true
		}
	}
	return false
}
