package affchart

import (
	"errors"
	"sync"
	"time"

	"github.com/cbegin/affchart-go/internal/aff"
	intaudio "github.com/cbegin/affchart-go/internal/audio"
	"github.com/cbegin/affchart-go/internal/click"
	"github.com/cbegin/affchart-go/internal/config"
)

// PlaybackEvent carries playback progress from Watch().
type PlaybackEvent struct {
	Kind int // EventLoopCompleted, EventPlaybackEnded or EventBar
	// Tick is the chart time of the bar line for EventBar.
	Tick int
}

const (
	EventLoopCompleted int = iota
	EventPlaybackEnded
	EventBar
)

type PlayerOption func(*playerConfig)

type playerConfig struct {
	loopPlayback bool
	sampleTap    func([]float32)
}

func defaultPlayerConfig() playerConfig {
	return playerConfig{}
}

func WithLoopPlayback(enabled bool) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.loopPlayback = enabled
	}
}

// WithSampleTap installs a callback invoked with each generated stereo buffer.
// The callback runs on the audio thread; keep work brief and non-blocking.
func WithSampleTap(tap func([]float32)) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.sampleTap = tap
	}
}

// Player plays a chart's click track on the system audio output.
type Player struct {
	mu           sync.Mutex
	cfg          config.Config
	track        *click.Track
	audio        *intaudio.Player
	volume       float64
	loopPlayback bool
	sampleTap    func([]float32)
	done         chan struct{}
	eventCh      chan PlaybackEvent
	eventChMu    sync.Mutex
}

// tappedTrack forwards a click track through the sample tap.
type tappedTrack struct {
	*click.Track
	tap func([]float32)
}

func (t tappedTrack) Process(dst []float32) {
	t.Track.Process(dst)
	if t.tap != nil {
		t.tap(dst)
	}
}

func NewPlayer(cfg config.Config, opts ...PlayerOption) (*Player, error) {
	if cfg.Audio.SampleRate <= 0 {
		return nil, errors.New("sample rate must be positive")
	}
	pc := defaultPlayerConfig()
	for _, opt := range opts {
		opt(&pc)
	}
	return &Player{
		cfg:          cfg,
		volume:       1,
		loopPlayback: pc.loopPlayback,
		sampleTap:    pc.sampleTap,
	}, nil
}

// PlayFile loads a chart file and starts playing it.
func (p *Player) PlayFile(path string) error {
	c, err := Load(path, p.cfg)
	if err != nil {
		return err
	}
	return p.Play(c)
}

func (p *Player) Play(c *aff.Chart) error {
	clicks := Clicks(c, Analyze(c, p.cfg))

	p.mu.Lock()
	prev := p.audio
	p.audio, p.track = nil, nil
	p.mu.Unlock()
	// Stop outside the lock: the audio thread may be finishing a callback.
	if prev != nil {
		_ = prev.Stop()
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// Signal any existing Wait() that the previous playback was replaced
	if p.done != nil {
		close(p.done)
	}
	p.done = make(chan struct{})

	track := click.NewWithOptions(p.cfg.ClickConfig(), clicks, click.Options{
		Loop: p.loopPlayback,
		OnEvent: func(kind click.EventKind) {
			switch kind {
			case click.EventLoopCompleted:
				p.sendEvent(PlaybackEvent{Kind: EventLoopCompleted})
			case click.EventPlaybackEnded:
				p.sendEvent(PlaybackEvent{Kind: EventPlaybackEnded})
				p.signalDone()
			}
		},
		OnClick: func(ck click.Click) {
			if ck.Accent {
				p.sendEvent(PlaybackEvent{Kind: EventBar, Tick: ck.Tick})
			}
		},
	})
	track.SetGain(p.cfg.Audio.Gain * p.volume)

	backend, err := intaudio.NewPlayer(p.cfg.Audio.SampleRate, tappedTrack{Track: track, tap: p.sampleTap})
	if err != nil {
		return err
	}
	p.track = track
	p.audio = backend
	p.audio.Play()
	return nil
}

func (p *Player) sendEvent(ev PlaybackEvent) {
	p.eventChMu.Lock()
	ch := p.eventCh
	p.eventChMu.Unlock()
	if ch != nil {
		select {
		case ch <- ev:
		default:
			// Channel full; drop event
		}
	}
}

func (p *Player) signalDone() {
	p.mu.Lock()
	done := p.done
	p.done = nil
	p.mu.Unlock()
	if done != nil {
		close(done)
	}
}

func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.audio != nil {
		p.audio.Pause()
	}
}

func (p *Player) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.audio != nil {
		p.audio.Play()
	}
}

// Position is the chart time currently audible, or 0 when stopped.
func (p *Player) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.audio == nil {
		return 0
	}
	return p.audio.Position()
}

// Seek moves playback to a chart tick in milliseconds. Clicks before it
// are skipped.
func (p *Player) Seek(tick int) error {
	p.mu.Lock()
	backend := p.audio
	p.mu.Unlock()
	if backend == nil {
		return errors.New("nothing is playing")
	}
	// The seek waits for the audio thread, which may call back into p.
	return backend.Seek(time.Duration(max(tick, 0)) * time.Millisecond)
}

func (p *Player) Stop() error {
	p.mu.Lock()
	if p.audio == nil {
		p.mu.Unlock()
		return nil
	}
	backend := p.audio
	p.audio = nil
	p.track = nil
	done := p.done
	p.done = nil
	p.mu.Unlock()
	err := backend.Stop()
	p.sendEvent(PlaybackEvent{Kind: EventPlaybackEnded})
	if done != nil {
		close(done)
	}
	return err
}

// Wait blocks until the current playback ends. When loop playback is enabled,
// Wait blocks until Stop is called.
// Wait returns immediately if no playback is active.
func (p *Player) Wait() {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Watch returns a channel that receives playback events:
//   - EventLoopCompleted: the click track wrapped around (when looping)
//   - EventPlaybackEnded: playback finished or was stopped
//   - EventBar: an accented bar-line click started sounding (Tick set)
//
// The channel is buffered (cap 8) and events are dropped when it is full.
// Only the most recent Watch() channel receives events; call Watch before Play.
func (p *Player) Watch() <-chan PlaybackEvent {
	ch := make(chan PlaybackEvent, 8)
	p.eventChMu.Lock()
	p.eventCh = ch
	p.eventChMu.Unlock()
	return ch
}

// SetMasterVolume sets a runtime volume scalar over the configured gain.
// 1.0 is default.
func (p *Player) SetMasterVolume(volume float64) {
	if volume < 0 {
		volume = 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = volume
	if p.track != nil {
		p.track.SetGain(p.cfg.Audio.Gain * volume)
	}
}

func (p *Player) MasterVolume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}
