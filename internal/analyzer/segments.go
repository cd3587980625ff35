package analyzer

import (
	"slices"

	"github.com/cbegin/affchart-go/internal/aff"
)

// Segments returns the bar line timestamps of the base timing track in
// ascending order. total is the padded chart duration from ChartDurations.
func Segments(c *aff.Chart, total float64, preRoll float64) []float64 {
	timings := c.TimingsIn(0)
	out := make([]float64, 0, 64)
	for i := 0; i+1 < len(timings); i++ {
		cur, next := timings[i], timings[i+1]
		seg := barLength(*cur.Timing)
		if cur.Timing.BPM == 0 {
			seg = float64(next.Tick - cur.Tick)
		}
		if seg <= 0 {
			continue
		}
		for n := 0; ; n++ {
			t := float64(cur.Tick) + float64(n)*seg
			if t >= float64(next.Tick) {
				break
			}
			out = append(out, t)
		}
	}
	if len(timings) == 0 {
		return out
	}

	last := timings[len(timings)-1]
	start := float64(last.Tick)
	seg := barLength(*last.Timing)
	if last.Timing.BPM == 0 {
		seg = total - start
	}
	if seg <= 0 || start >= total {
		out = append(out, start)
	} else {
		// the closing line at or past total is kept so the last bar is bounded
		for n := 0; ; n++ {
			t := start + float64(n)*seg
			out = append(out, t)
			if t >= total {
				break
			}
		}
	}

	first := timings[0]
	delta := barLength(*first.Timing)
	if delta > 0 {
		pre := make([]float64, 0, 8)
		for n := 1; ; n++ {
			t := float64(first.Tick) - float64(n)*delta
			pre = append(pre, t)
			if t < preRoll {
				break
			}
		}
		slices.Reverse(pre)
		out = append(pre, out...)
	}
	return out
}
