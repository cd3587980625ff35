package aff

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/cbegin/affchart-go/internal/arc"
)

const (
	audioOffsetPrefix   = "AudioOffset:"
	densityFactorPrefix = "TimingPointDensityFactor:"
)

type Parser struct{ cfg ParserConfig }

func NewParser(cfg ParserConfig) *Parser {
	if cfg.MaxTrack <= 0 {
		def := DefaultParserConfig()
		cfg.MinTrack, cfg.MaxTrack = def.MinTrack, def.MaxTrack
	}
	if cfg.NoInputFlag == "" {
		cfg.NoInputFlag = DefaultParserConfig().NoInputFlag
	}
	return &Parser{cfg: cfg}
}

// Parse reads a whole chart document.
func (p *Parser) Parse(input string) (*Chart, error) {
	return p.ParseLines(SplitLines(input))
}

// SplitLines splits a document on '\n', dropping '\r' line endings.
func SplitLines(input string) []string {
	lines := strings.Split(input, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

type parseState struct {
	events       []Event
	groups       []TimingGroup
	currentGroup int
	noInput      bool
}

func (p *Parser) ParseLines(lines []string) (*Chart, error) {
	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
		return nil, &FormatError{Line: 1, Err: fmt.Errorf("%w: expected %s<int>", ErrMissingHeader, audioOffsetPrefix)}
	}
	chart := &Chart{DensityFactor: 1}

	offset, err := parseHeaderInt(lines[0], audioOffsetPrefix)
	if err != nil {
		return nil, &FormatError{Line: 1, Raw: lines[0], Err: err}
	}
	chart.AudioOffset = offset

	first := 2
	if len(lines) > 1 && strings.HasPrefix(strings.TrimSpace(lines[1]), densityFactorPrefix) {
		f, err := parseHeaderFloat(lines[1], densityFactorPrefix)
		if err != nil {
			return nil, &FormatError{Line: 2, Raw: lines[1], Err: err}
		}
		if f <= 0 {
			return nil, &FormatError{Line: 2, Raw: lines[1], Reason: ErrDensityFactor.Error(), Err: ErrDensityFactor}
		}
		chart.DensityFactor = f
		first = 3
	}
	if len(lines) <= first {
		return nil, &FormatError{Line: first + 1, Kind: KindTiming, Err: fmt.Errorf("%w: expected the base timing event", ErrMissingHeader)}
	}

	st := &parseState{groups: []TimingGroup{{ID: 0}}}
	baseLine := strings.TrimSpace(lines[first])
	if err := p.parseTiming(baseLine, st); err != nil {
		return nil, wrapLine(KindTiming, baseLine, first+1, err)
	}

	for i := first + 1; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		kind := classify(line)
		var err error
		switch kind {
		case KindTiming:
			err = p.parseTiming(line, st)
		case KindTap:
			err = p.parseTap(line, st)
		case KindHold:
			err = p.parseHold(line, st)
		case KindArc:
			err = p.parseArc(line, st)
		case KindCamera:
			err = p.parseCamera(line, st)
		case KindSceneControl:
			err = p.parseSceneControl(line, st)
		case KindTimingGroup:
			p.openGroup(line, st)
		case KindTimingGroupEnd:
			st.currentGroup = 0
			st.noInput = false
		}
		if err != nil {
			return nil, wrapLine(kind, line, i+1, err)
		}
	}

	slices.SortStableFunc(st.events, func(a, b Event) int { return a.Tick - b.Tick })
	if st.currentGroup != 0 {
		return nil, &FormatError{Kind: KindTimingGroup, Reason: ErrUnmatchedGroup.Error(), Err: ErrUnmatchedGroup}
	}

	chart.Events = st.events
	chart.Groups = st.groups
	MarkArcHeads(chart.Events, p.cfg.HeadTolerance)
	return chart, nil
}

func classify(line string) EventKind {
	switch {
	case strings.HasPrefix(line, "("):
		return KindTap
	case strings.HasPrefix(line, "timing("):
		return KindTiming
	case strings.HasPrefix(line, "hold("):
		return KindHold
	case strings.HasPrefix(line, "arc("):
		return KindArc
	case strings.HasPrefix(line, "camera("):
		return KindCamera
	case strings.HasPrefix(line, "scenecontrol("):
		return KindSceneControl
	case strings.HasPrefix(line, "timinggroup("):
		return KindTimingGroup
	case strings.HasPrefix(line, "};"):
		return KindTimingGroupEnd
	}
	return KindUnknown
}

func parseHeaderInt(line, prefix string) (int, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(line), prefix)
	if !ok {
		return 0, fmt.Errorf("%w: expected %s<int>", ErrMissingHeader, prefix)
	}
	v, err := strconv.Atoi(strings.TrimSpace(rest))
	if err != nil {
		return 0, fmt.Errorf("%w: expected %s<int>", ErrSyntax, prefix)
	}
	return v, nil
}

func parseHeaderFloat(line, prefix string) (float64, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(line), prefix)
	if !ok {
		return 0, fmt.Errorf("%w: expected %s<float>", ErrMissingHeader, prefix)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(rest), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: expected %s<float>", ErrSyntax, prefix)
	}
	return v, nil
}

func (p *Parser) openGroup(line string, st *parseState) {
	id := len(st.groups)
	flags := ""
	c := NewCursor(line)
	c.Skip(len("timinggroup("))
	if s, err := c.ReadString(")"); err == nil {
		flags = strings.TrimSpace(s)
	}
	st.groups = append(st.groups, TimingGroup{ID: id, Flags: flags, NoInput: flags == p.cfg.NoInputFlag})
	st.currentGroup = id
	st.noInput = flags == p.cfg.NoInputFlag
}

// emit records a validated event. Nothing from a noinput group is kept.
func (st *parseState) emit(ev Event) {
	if st.noInput {
		return
	}
	ev.Group = st.currentGroup
	st.events = append(st.events, ev)
}

// expectEnd checks that the event's closing ')' is followed by ';'.
func expectEnd(c *Cursor) error {
	if cur, ok := c.Current(); !ok || cur != ';' {
		return fmt.Errorf("%w: missing ';' after column %d", ErrSyntax, c.Pos())
	}
	return nil
}

func (p *Parser) parseTiming(line string, st *parseState) error {
	c := NewCursor(line)
	c.Skip(len("timing("))
	tick, err := c.ReadInt(",")
	if err != nil {
		return err
	}
	bpm, err := c.ReadFloat(",")
	if err != nil {
		return err
	}
	bpl, err := c.ReadFloat(")")
	if err != nil {
		return err
	}
	if err := expectEnd(c); err != nil {
		return err
	}
	if bpl < 0 {
		return invalid(ErrNegativeBeatsPerLine)
	}
	if tick == 0 && bpm == 0 {
		return invalid(ErrZeroBaseBPM)
	}
	st.emit(Event{Kind: KindTiming, Tick: tick, Timing: &Timing{BPM: bpm, BeatsPerLine: bpl}})
	return nil
}

func (p *Parser) checkTrack(track int) error {
	if track < p.cfg.MinTrack || track > p.cfg.MaxTrack {
		return invalid(fmt.Errorf("%w: %d not in [%d,%d]", ErrTrackRange, track, p.cfg.MinTrack, p.cfg.MaxTrack))
	}
	return nil
}

func (p *Parser) parseTap(line string, st *parseState) error {
	c := NewCursor(line)
	c.Skip(1)
	tick, err := c.ReadInt(",")
	if err != nil {
		return err
	}
	track, err := c.ReadInt(")")
	if err != nil {
		return err
	}
	if err := expectEnd(c); err != nil {
		return err
	}
	if err := p.checkTrack(track); err != nil {
		return err
	}
	st.emit(Event{Kind: KindTap, Tick: tick, Tap: &Tap{Track: track}})
	return nil
}

func (p *Parser) parseHold(line string, st *parseState) error {
	c := NewCursor(line)
	c.Skip(len("hold("))
	tick, err := c.ReadInt(",")
	if err != nil {
		return err
	}
	end, err := c.ReadInt(",")
	if err != nil {
		return err
	}
	track, err := c.ReadInt(")")
	if err != nil {
		return err
	}
	if err := expectEnd(c); err != nil {
		return err
	}
	if err := p.checkTrack(track); err != nil {
		return err
	}
	if end < tick {
		return invalid(ErrNegativeDuration)
	}
	st.emit(Event{Kind: KindHold, Tick: tick, Hold: &Hold{EndTick: end, Track: track}})
	return nil
}

func (p *Parser) parseArc(line string, st *parseState) error {
	c := NewCursor(line)
	c.Skip(len("arc("))
	a := &Arc{HasHead: true}
	tick, err := c.ReadInt(",")
	if err != nil {
		return err
	}
	if a.EndTick, err = c.ReadInt(","); err != nil {
		return err
	}
	if a.XStart, err = c.ReadFloat(","); err != nil {
		return err
	}
	if a.XEnd, err = c.ReadFloat(","); err != nil {
		return err
	}
	if a.CurveName, err = c.ReadString(","); err != nil {
		return err
	}
	a.CurveName = strings.TrimSpace(a.CurveName)
	a.Curve, _ = arc.ParseCurveKind(a.CurveName)
	if a.YStart, err = c.ReadFloat(","); err != nil {
		return err
	}
	if a.YEnd, err = c.ReadFloat(","); err != nil {
		return err
	}
	if a.Color, err = c.ReadInt(","); err != nil {
		return err
	}
	if a.Effect, err = c.ReadString(","); err != nil {
		return err
	}
	if a.Void, err = c.ReadBool(")"); err != nil {
		return err
	}
	cur, ok := c.Current()
	if !ok {
		return fmt.Errorf("%w: arc is missing its terminating ';'", ErrSyntax)
	}
	if cur != ';' {
		taps, err := readArcTaps(c)
		if err != nil {
			return err
		}
		a.ArcTaps = taps
		a.Void = true
	}
	if a.EndTick < tick {
		return invalid(ErrNegativeDuration)
	}
	st.emit(Event{Kind: KindArc, Tick: tick, Arc: a})
	return nil
}

// readArcTaps reads "[arctap(t),arctap(t)...]" in file order.
func readArcTaps(c *Cursor) ([]int, error) {
	taps := make([]int, 0, 4)
	for {
		head, ok := c.Peek(len("[arctap("))
		if !ok || !strings.HasSuffix(head, "arctap(") {
			return nil, fmt.Errorf("%w: expected arctap( at column %d", ErrSyntax, c.Pos())
		}
		c.Skip(len(head))
		t, err := c.ReadInt(")")
		if err != nil {
			return nil, err
		}
		taps = append(taps, t)
		if cur, ok := c.Current(); !ok || cur != ',' {
			break
		}
	}
	if cur, ok := c.Current(); !ok || cur != ']' {
		return nil, fmt.Errorf("%w: unterminated arctap list", ErrSyntax)
	}
	c.Skip(1)
	if err := expectEnd(c); err != nil {
		return nil, err
	}
	return taps, nil
}

func (p *Parser) parseCamera(line string, st *parseState) error {
	c := NewCursor(line)
	c.Skip(len("camera("))
	tick, err := c.ReadInt(",")
	if err != nil {
		return err
	}
	cam := &Camera{}
	for i := range cam.Move {
		if cam.Move[i], err = c.ReadFloat(","); err != nil {
			return err
		}
	}
	for i := range cam.Rotate {
		if cam.Rotate[i], err = c.ReadFloat(","); err != nil {
			return err
		}
	}
	if cam.Easing, err = c.ReadString(","); err != nil {
		return err
	}
	if cam.Duration, err = c.ReadInt(")"); err != nil {
		return err
	}
	if err := expectEnd(c); err != nil {
		return err
	}
	if cam.Duration < 0 {
		return invalid(ErrNegativeDuration)
	}
	st.emit(Event{Kind: KindCamera, Tick: tick, Camera: cam})
	return nil
}

func (p *Parser) parseSceneControl(line string, st *parseState) error {
	if !strings.HasSuffix(line, ";") {
		return fmt.Errorf("%w: scenecontrol is missing its terminating ';'", ErrSyntax)
	}
	ev, err := parseSceneControlStrict(line)
	if err != nil {
		ev, err = parseSceneControlLenient(line)
		if err != nil {
			return err
		}
	}
	st.emit(ev)
	return nil
}

func parseSceneControlStrict(line string) (Event, error) {
	c := NewCursor(line)
	c.Skip(len("scenecontrol("))
	tick, err := c.ReadInt(",")
	if err != nil {
		return Event{}, err
	}
	name, err := c.ReadString(",")
	if err != nil {
		return Event{}, err
	}
	rest, err := c.ReadString("")
	if err != nil {
		return Event{}, err
	}
	end := strings.LastIndexByte(rest, ')')
	if end < 0 {
		return Event{}, fmt.Errorf("%w: scenecontrol without ')'", ErrSyntax)
	}
	params, err := parseSceneParams(rest[:end])
	if err != nil {
		return Event{}, err
	}
	return Event{
		Kind:         KindSceneControl,
		Tick:         tick,
		SceneControl: &SceneControl{TypeName: strings.TrimSpace(name), Params: params},
	}, nil
}

func parseSceneControlLenient(line string) (Event, error) {
	c := NewCursor(line)
	c.Skip(len("scenecontrol("))
	tick, err := c.ReadInt(",")
	if err != nil {
		return Event{}, err
	}
	name, err := c.ReadString(")")
	if err != nil {
		return Event{}, err
	}
	return Event{
		Kind:         KindSceneControl,
		Tick:         tick,
		SceneControl: &SceneControl{TypeName: strings.TrimSpace(name), Params: []SceneParam{}},
	}, nil
}

// parseSceneParams splits a comma list where quoted strings may themselves
// contain commas.
func parseSceneParams(body string) ([]SceneParam, error) {
	parts := strings.Split(body, ",")
	params := make([]SceneParam, 0, len(parts))
	quoted := ""
	inQuote := false
	for _, part := range parts {
		if part == "" {
			return nil, fmt.Errorf("%w: empty scenecontrol parameter", ErrSyntax)
		}
		opens := part[0] == '\''
		closes := part[len(part)-1] == '\'' && (inQuote || len(part) > 1)
		if opens || inQuote {
			if inQuote {
				quoted += ","
			}
			quoted += part
			inQuote = true
			if closes {
				params = append(params, SceneParam{IsText: true, Text: quoted[1 : len(quoted)-1]})
				quoted = ""
				inQuote = false
			}
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: scenecontrol parameter %q", ErrSyntax, part)
		}
		params = append(params, SceneParam{Number: v})
	}
	if inQuote {
		return nil, fmt.Errorf("%w: unterminated quoted parameter", ErrSyntax)
	}
	return params, nil
}

// headEpsilon absorbs float noise in positions written with two decimals,
// so an offset of exactly the tolerance still counts as a junction.
const headEpsilon = 1e-9

// MarkArcHeads clears HasHead on arcs that continue an earlier arc of the
// same group, color and voidness ending at their start tick and position.
// events must already be sorted by tick.
func MarkArcHeads(events []Event, tolerance float64) {
	if tolerance <= 0 {
		tolerance = DefaultParserConfig().HeadTolerance
	}
	endsAt := make(map[int][]int)
	for i := range events {
		a := events[i].Arc
		if a == nil {
			continue
		}
		a.HasHead = true
		for _, j := range endsAt[events[i].Tick] {
			b := events[j].Arc
			if events[j].Group != events[i].Group || b.Color != a.Color || b.Void != a.Void {
				continue
			}
			if math.Abs(b.XEnd-a.XStart) <= tolerance+headEpsilon && math.Abs(b.YEnd-a.YStart) <= tolerance+headEpsilon {
				a.HasHead = false
				break
			}
		}
		endsAt[a.EndTick] = append(endsAt[a.EndTick], i)
	}
}
