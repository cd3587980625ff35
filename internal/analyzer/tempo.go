package analyzer

import (
	"strconv"

	"github.com/cbegin/affchart-go/internal/aff"
)

// TempoMark is a tempo or meter change worth printing next to the grid.
type TempoMark struct {
	Tick  int
	Group int
	BPM   float64
	// BPMChanged is false when only the meter changed.
	BPMChanged bool
	// Meter is empty when the meter did not change or has no short form.
	Meter string
}

// TempoMarks walks timings in chart order up to total. Group-local timings
// at tick 0 only restate the group's tempo and are skipped, as are the
// stop (0) and effect (>1000) tempos.
func TempoMarks(c *aff.Chart, total float64) []TempoMark {
	var (
		out             []TempoMark
		lastBPM, lastBL float64
	)
	for _, ev := range c.Events {
		if ev.Kind != aff.KindTiming {
			continue
		}
		if float64(ev.Tick) > total {
			break
		}
		if ev.Tick == 0 && ev.Group != 0 {
			continue
		}
		t := ev.Timing
		if t.BPM == 0 || t.BPM > 1000 {
			continue
		}
		m := TempoMark{Tick: ev.Tick, Group: ev.Group, BPM: t.BPM}
		if t.BPM != lastBPM {
			m.BPMChanged = true
			lastBPM = t.BPM
		}
		if t.BeatsPerLine != lastBL {
			if t.BPM > 0 {
				m.Meter = Meter(t.BeatsPerLine)
			}
			lastBL = t.BeatsPerLine
		}
		if m.BPMChanged || m.Meter != "" {
			out = append(out, m)
		}
	}
	return out
}

// Meter renders beats per line as a time signature: whole beats over 4,
// halves over 8 and quarters over 16. Other values give "".
func Meter(bpl float64) string {
	switch {
	case int(bpl*100)%100 == 0:
		return strconv.Itoa(int(bpl)) + "/4"
	case int(bpl*200)%100 == 0:
		return strconv.Itoa(int(bpl*2)) + "/8"
	case int(bpl*400)%100 == 0:
		return strconv.Itoa(int(bpl*4)) + "/16"
	}
	return ""
}
