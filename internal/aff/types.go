package aff

import (
	"slices"
	"sort"

	"github.com/cbegin/affchart-go/internal/arc"
)

type EventKind int

const (
	KindUnknown EventKind = iota
	KindTiming
	KindTap
	KindHold
	KindArc
	KindCamera
	KindSceneControl
	KindTimingGroup
	KindTimingGroupEnd
)

func (k EventKind) String() string {
	switch k {
	case KindTiming:
		return "timing"
	case KindTap:
		return "tap"
	case KindHold:
		return "hold"
	case KindArc:
		return "arc"
	case KindCamera:
		return "camera"
	case KindSceneControl:
		return "scenecontrol"
	case KindTimingGroup:
		return "timinggroup"
	case KindTimingGroupEnd:
		return "timinggroup end"
	default:
		return "unknown"
	}
}

// Event is one chart event. Kind selects which of the variant pointers is set;
// all others are nil.
type Event struct {
	Kind  EventKind
	Tick  int
	Group int

	Timing       *Timing
	Tap          *Tap
	Hold         *Hold
	Arc          *Arc
	Camera       *Camera
	SceneControl *SceneControl
}

type Timing struct {
	BPM          float64
	BeatsPerLine float64
}

type Tap struct {
	Track int
}

type Hold struct {
	EndTick int
	Track   int
}

type Arc struct {
	EndTick   int
	XStart    float64
	XEnd      float64
	YStart    float64
	YEnd      float64
	Curve     arc.CurveKind
	CurveName string
	Color     int
	Effect    string
	Void      bool
	ArcTaps   []int
	// HasHead is false when the arc continues a preceding arc at the same
	// position, so its first judgement is not counted twice.
	HasHead bool
}

type Camera struct {
	Move     [3]float64
	Rotate   [3]float64
	Easing   string
	Duration int
}

type SceneControl struct {
	TypeName string
	Params   []SceneParam
}

// SceneParam is either a quoted string or a number.
type SceneParam struct {
	IsText bool
	Text   string
	Number float64
}

type TimingGroup struct {
	ID      int
	Flags   string
	NoInput bool
}

type Chart struct {
	AudioOffset   int
	DensityFactor float64
	Events        []Event
	// Groups is indexed by group id; Groups[0] is the base group.
	Groups []TimingGroup
}

func (c *Chart) Group(id int) TimingGroup {
	if id < 0 || id >= len(c.Groups) {
		return TimingGroup{ID: id}
	}
	return c.Groups[id]
}

func (c *Chart) NoInput(id int) bool { return c.Group(id).NoInput }

// BaseTiming returns the first timing of group 0, which fixes the chart's
// base bpm and bar length.
func (c *Chart) BaseTiming() (Event, bool) {
	for _, ev := range c.Events {
		if ev.Kind == KindTiming && ev.Group == 0 {
			return ev, true
		}
	}
	return Event{}, false
}

// TimingsIn returns the timing events of one group in tick order.
func (c *Chart) TimingsIn(group int) []Event {
	out := make([]Event, 0, 8)
	for _, ev := range c.Events {
		if ev.Kind == KindTiming && ev.Group == group {
			out = append(out, ev)
		}
	}
	return out
}

// TimingAt returns the latest timing of group at or before tick. When none
// precedes tick the group's first timing is returned. Each call scans the
// chart; use a TimingIndex for repeated lookups.
func (c *Chart) TimingAt(tick int, group int) (Timing, bool) {
	return NewTimingIndex(c).At(tick, group)
}

// TimingIndex holds each group's timings in tick order for binary-search
// lookups. It reflects the chart at the time it was built.
type TimingIndex struct {
	groups map[int][]Event
}

func NewTimingIndex(c *Chart) *TimingIndex {
	ix := &TimingIndex{groups: map[int][]Event{}}
	for _, ev := range c.Events {
		if ev.Kind == KindTiming {
			ix.groups[ev.Group] = append(ix.groups[ev.Group], ev)
		}
	}
	for _, evs := range ix.groups {
		slices.SortStableFunc(evs, func(a, b Event) int { return a.Tick - b.Tick })
	}
	return ix
}

// At returns the latest timing of group at or before tick, or the group's
// first timing when none precedes tick.
func (ix *TimingIndex) At(tick int, group int) (Timing, bool) {
	evs := ix.groups[group]
	if len(evs) == 0 {
		return Timing{}, false
	}
	i := sort.Search(len(evs), func(i int) bool { return evs[i].Tick > tick })
	return *evs[max(i-1, 0)].Timing, true
}

// Clone returns a deep copy of the chart.
func (c *Chart) Clone() *Chart {
	out := &Chart{
		AudioOffset:   c.AudioOffset,
		DensityFactor: c.DensityFactor,
		Events:        make([]Event, len(c.Events)),
		Groups:        append([]TimingGroup(nil), c.Groups...),
	}
	for i, ev := range c.Events {
		out.Events[i] = ev.clone()
	}
	return out
}

func (e Event) clone() Event {
	out := Event{Kind: e.Kind, Tick: e.Tick, Group: e.Group}
	switch {
	case e.Timing != nil:
		v := *e.Timing
		out.Timing = &v
	case e.Tap != nil:
		v := *e.Tap
		out.Tap = &v
	case e.Hold != nil:
		v := *e.Hold
		out.Hold = &v
	case e.Arc != nil:
		v := *e.Arc
		if e.Arc.ArcTaps != nil {
			v.ArcTaps = append([]int(nil), e.Arc.ArcTaps...)
		}
		out.Arc = &v
	case e.Camera != nil:
		v := *e.Camera
		out.Camera = &v
	case e.SceneControl != nil:
		v := *e.SceneControl
		if e.SceneControl.Params != nil {
			v.Params = append([]SceneParam(nil), e.SceneControl.Params...)
		}
		out.SceneControl = &v
	}
	return out
}

type ParserConfig struct {
	MinTrack      int
	MaxTrack      int
	NoInputFlag   string
	HeadTolerance float64
}

func DefaultParserConfig() ParserConfig {
	return ParserConfig{
		MinTrack:      1,
		MaxTrack:      4,
		NoInputFlag:   "noinput",
		HeadTolerance: 0.1,
	}
}
