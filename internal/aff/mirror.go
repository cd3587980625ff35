package aff

// Mirror returns a horizontally flipped copy of the chart: floor tracks are
// reversed, arc X positions are reflected and the two main arc colors swap.
// The receiver is left untouched.
func Mirror(c *Chart, cfg ParserConfig) *Chart {
	out := c.Clone()
	span := cfg.MinTrack + cfg.MaxTrack
	if cfg.MaxTrack <= 0 {
		def := DefaultParserConfig()
		span = def.MinTrack + def.MaxTrack
	}
	for i := range out.Events {
		ev := &out.Events[i]
		switch ev.Kind {
		case KindTap:
			ev.Tap.Track = span - ev.Tap.Track
		case KindHold:
			ev.Hold.Track = span - ev.Hold.Track
		case KindArc:
			a := ev.Arc
			a.XStart = 1 - a.XStart
			a.XEnd = 1 - a.XEnd
			switch a.Color {
			case 0:
				a.Color = 1
			case 1:
				a.Color = 0
			}
		}
	}
	MarkArcHeads(out.Events, cfg.HeadTolerance)
	return out
}
