package aff

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Writer serializes charts back into the line grammar read by Parser.
type Writer struct {
	w *bufio.Writer
}

func NewWriter(w io.Writer) *Writer { return &Writer{w: bufio.NewWriter(w)} }

// Format returns the chart as a document.
func Format(c *Chart) string {
	var b strings.Builder
	w := NewWriter(&b)
	_ = w.WriteChart(c)
	return b.String()
}

// WriteChart writes the header, the base group and then every timing group
// in id order. Empty groups are written too so group ids survive a re-parse.
func (w *Writer) WriteChart(c *Chart) error {
	fmt.Fprintf(w.w, "%s%d\n", audioOffsetPrefix, c.AudioOffset)
	if c.DensityFactor != 0 && c.DensityFactor != 1 {
		fmt.Fprintf(w.w, "%s%s\n", densityFactorPrefix, formatFloat(c.DensityFactor))
	}
	w.w.WriteString("-\n")

	base, ok := c.BaseTiming()
	if !ok {
		return fmt.Errorf("%w: chart has no base timing", ErrMissingHeader)
	}
	w.WriteEvent(base)
	skipped := false
	for _, ev := range c.Events {
		if ev.Group != 0 {
			continue
		}
		if !skipped && ev.Kind == KindTiming && ev.Tick == base.Tick && ev.Timing == base.Timing {
			skipped = true
			continue
		}
		w.WriteEvent(ev)
	}
	for id := 1; id < len(c.Groups); id++ {
		fmt.Fprintf(w.w, "timinggroup(%s){\n", c.Groups[id].Flags)
		for _, ev := range c.Events {
			if ev.Group == id {
				w.WriteEvent(ev)
			}
		}
		w.w.WriteString("};\n")
	}
	return w.w.Flush()
}

func (w *Writer) WriteEvent(ev Event) {
	w.w.WriteString(FormatEvent(ev))
	w.w.WriteByte('\n')
}

// FormatEvent renders one event as a chart line.
func FormatEvent(ev Event) string {
	switch ev.Kind {
	case KindTiming:
		return fmt.Sprintf("timing(%d,%s,%s);", ev.Tick, formatFloat(ev.Timing.BPM), formatFloat(ev.Timing.BeatsPerLine))
	case KindTap:
		return fmt.Sprintf("(%d,%d);", ev.Tick, ev.Tap.Track)
	case KindHold:
		return fmt.Sprintf("hold(%d,%d,%d);", ev.Tick, ev.Hold.EndTick, ev.Hold.Track)
	case KindArc:
		return formatArc(ev.Tick, ev.Arc)
	case KindCamera:
		cam := ev.Camera
		return fmt.Sprintf("camera(%d,%s,%s,%s,%s,%s,%s,%s,%d);", ev.Tick,
			formatFloat(cam.Move[0]), formatFloat(cam.Move[1]), formatFloat(cam.Move[2]),
			formatFloat(cam.Rotate[0]), formatFloat(cam.Rotate[1]), formatFloat(cam.Rotate[2]),
			cam.Easing, cam.Duration)
	case KindSceneControl:
		return formatSceneControl(ev.Tick, ev.SceneControl)
	}
	return ""
}

func formatArc(tick int, a *Arc) string {
	var b strings.Builder
	curve := a.CurveName
	if curve == "" {
		curve = a.Curve.String()
	}
	effect := a.Effect
	if effect == "" {
		effect = "none"
	}
	void := a.Void || len(a.ArcTaps) > 0
	fmt.Fprintf(&b, "arc(%d,%d,%s,%s,%s,%s,%s,%d,%s,%t)", tick, a.EndTick,
		formatFloat(a.XStart), formatFloat(a.XEnd), curve,
		formatFloat(a.YStart), formatFloat(a.YEnd), a.Color, effect, void)
	if len(a.ArcTaps) > 0 {
		b.WriteByte('[')
		for i, t := range a.ArcTaps {
			if i > 0 {
				b.WriteByte(',')
			}
			fmt.Fprintf(&b, "arctap(%d)", t)
		}
		b.WriteByte(']')
	}
	b.WriteByte(';')
	return b.String()
}

func formatSceneControl(tick int, sc *SceneControl) string {
	if len(sc.Params) == 0 {
		return fmt.Sprintf("scenecontrol(%d,%s);", tick, sc.TypeName)
	}
	parts := make([]string, 0, len(sc.Params))
	for _, p := range sc.Params {
		if p.IsText {
			parts = append(parts, "'"+p.Text+"'")
		} else {
			parts = append(parts, formatFloat(p.Number))
		}
	}
	return fmt.Sprintf("scenecontrol(%d,%s,%s);", tick, sc.TypeName, strings.Join(parts, ","))
}

// formatFloat keeps two decimals for round values and full precision
// otherwise, so a re-parse reads back the same number.
func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		return s + ".00"
	}
	return s
}
