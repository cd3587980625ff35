// Package audio plays generated stereo PCM through ebiten's audio context.
package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	ebitaudio "github.com/hajimehoshi/ebiten/v2/audio"
)

// Source fills dst with interleaved stereo float32 samples.
type Source interface {
	Process(dst []float32)
}

// Finisher is implemented by sources that run out. The stream reports
// io.EOF on the read that sees Finished.
type Finisher interface {
	Finished() bool
}

// FrameSeeker is implemented by sources that can restart at any frame.
type FrameSeeker interface {
	SeekFrame(frame int64)
}

// bytesPerFrame is one stereo float32 frame.
const bytesPerFrame = 8

// pcmStream serves a Source as the little-endian float32 byte stream ebiten
// reads, clamping every sample to [-1, 1]. It tracks its own position so
// the player can seek when the source supports it.
type pcmStream struct {
	mu      sync.Mutex
	src     Source
	scratch []float32
	frame   int64
}

func newPCMStream(src Source) *pcmStream {
	return &pcmStream{src: src}
}

func (s *pcmStream) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	frames := len(p) / bytesPerFrame
	if frames == 0 {
		return 0, nil
	}
	s.scratch = sizedScratch(s.scratch, frames*2)
	s.src.Process(s.scratch)
	encodeF32(p, s.scratch)
	s.frame += int64(frames)

	n := frames * bytesPerFrame
	if f, ok := s.src.(Finisher); ok && f.Finished() {
		return n, io.EOF
	}
	return n, nil
}

// Seek moves to a frame-aligned byte offset. Only seekable sources support
// it; io.SeekEnd is not supported because generated streams have no length
// ebiten can rely on.
func (s *pcmStream) Seek(offset int64, whence int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		offset += s.frame * bytesPerFrame
	default:
		return 0, fault.Wrap(fault.New("seek from end is not supported"), ftag.With(ftag.InvalidArgument))
	}
	if offset < 0 {
		return 0, fault.Wrap(fault.New("seek before start of stream"), ftag.With(ftag.InvalidArgument))
	}
	frame := offset / bytesPerFrame
	if frame == s.frame {
		return frame * bytesPerFrame, nil
	}
	fs, ok := s.src.(FrameSeeker)
	if !ok {
		return 0, fault.Wrap(fault.New("source cannot seek"), ftag.With(ftag.InvalidArgument))
	}
	fs.SeekFrame(frame)
	s.frame = frame
	return frame * bytesPerFrame, nil
}

func sizedScratch(buf []float32, n int) []float32 {
	if cap(buf) < n {
		return make([]float32, n)
	}
	return buf[:n]
}

func encodeF32(dst []byte, samples []float32) {
	for i, v := range samples {
		v = max(-1, min(1, v))
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(v))
	}
}

var contextMu sync.Mutex

// contextFor returns the process audio context, creating it on first use.
// ebiten allows a single context, so a second sample rate is an error.
func contextFor(sampleRate int) (*ebitaudio.Context, error) {
	contextMu.Lock()
	defer contextMu.Unlock()
	ctx := ebitaudio.CurrentContext()
	if ctx == nil {
		return ebitaudio.NewContext(sampleRate), nil
	}
	if ctx.SampleRate() != sampleRate {
		msg := fmt.Sprintf("audio output already runs at %d Hz, cannot open %d Hz", ctx.SampleRate(), sampleRate)
		return nil, fault.Wrap(fault.New(msg), ftag.With(ftag.InvalidArgument))
	}
	return ctx, nil
}

// Player streams one Source to the system output.
type Player struct {
	out *ebitaudio.Player
}

func NewPlayer(sampleRate int, src Source) (*Player, error) {
	ctx, err := contextFor(sampleRate)
	if err != nil {
		return nil, err
	}
	stream := newPCMStream(src)
	out, err := ctx.NewPlayerF32(stream)
	if err != nil {
		return nil, fault.Wrap(err, fmsg.With("error opening audio output"))
	}
	return &Player{out: out}, nil
}

func (p *Player) Play()           { p.out.Play() }
func (p *Player) Pause()          { p.out.Pause() }
func (p *Player) IsPlaying() bool { return p.out.IsPlaying() }

// Position is the stream time the listener hears now.
func (p *Player) Position() time.Duration { return p.out.Position() }

// Seek jumps to a stream time. The source must implement FrameSeeker.
func (p *Player) Seek(at time.Duration) error {
	if err := p.out.SetPosition(at); err != nil {
		return fault.Wrap(err, fmsg.With("error seeking audio output"))
	}
	return nil
}

func (p *Player) Stop() error {
	p.out.Pause()
	if err := p.out.Close(); err != nil {
		return fault.Wrap(err, fmsg.With("error closing audio output"))
	}
	return nil
}
