package pcplay

import (
	"context"
	"errors"
	"log"
	"sync"

	intaudio "github.com/cbegin/pcplay-go/internal/audio"
	intmml "github.com/cbegin/pcplay-go/internal/mml"
	intseq "github.com/cbegin/pcplay-go/internal/sequencer"
)

// EventKind identifies what a PlaybackEvent reports.
type EventKind = intseq.EventKind

const (
	EventSongEnded     = intseq.EventSongEnded
	EventScriptAborted = intseq.EventScriptAborted
	EventRunaway       = intseq.EventRunaway
)

// PlaybackEvent is delivered on the Watch() channel. Request matches the id
// returned by the Play call it belongs to; Err is nil for EventSongEnded.
type PlaybackEvent struct {
	Kind    EventKind
	Request uint64
	Err     error
}

// Params is the engine configuration (default octave, tempo, note length,
// articulation and loop guard).
type Params = intseq.Params

func DefaultParams() Params { return intseq.DefaultParams() }

var ErrClosed = errors.New("player is closed")

type PlayerOption func(*playerConfig)

type playerConfig struct {
	backend   string
	logger    *log.Logger
	params    Params
	sampleTap func([]int16)
}

func defaultPlayerConfig() playerConfig {
	return playerConfig{backend: intaudio.BackendEbiten, params: intseq.DefaultParams()}
}

// WithBackend selects the audio device: "ebiten" (default), "oto" or
// "headless".
func WithBackend(name string) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.backend = name
	}
}

// WithLogger sets where script faults are reported. Defaults to
// log.Default().
func WithLogger(logger *log.Logger) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.logger = logger
	}
}

func WithParams(params Params) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.params = params
	}
}

// WithSampleTap installs a callback invoked with each generated mono buffer.
// The callback runs on the audio thread; keep work brief and non-blocking.
func WithSampleTap(tap func([]int16)) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.sampleTap = tap
	}
}

// Player is the foreground control surface. Its methods are safe for
// concurrent use.
type Player struct {
	mu      sync.Mutex
	engine  *intseq.Engine
	backend intaudio.Backend
	logger  *log.Logger
	closed  bool
	last    uint64
	done    chan struct{} // closed when request last ends or is replaced

	eventCh   chan PlaybackEvent
	eventChMu sync.Mutex

	quit    chan struct{}
	drained chan struct{}
}

// NewPlayer opens the audio device at sampleRate and starts it pulling
// silence. The engine runs at whatever rate the device negotiated.
func NewPlayer(sampleRate int, opts ...PlayerOption) (*Player, error) {
	if sampleRate <= 0 {
		return nil, errors.New("sampleRate must be positive")
	}
	cfg := defaultPlayerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = log.Default()
	}
	backend, err := intaudio.Open(cfg.backend, sampleRate)
	if err != nil {
		return nil, err
	}
	engine := intseq.New(backend.SampleRate(), cfg.params)
	if cfg.sampleTap != nil {
		engine.SetSampleTap(cfg.sampleTap)
	}
	p := &Player{
		engine:  engine,
		backend: backend,
		logger:  cfg.logger,
		quit:    make(chan struct{}),
		drained: make(chan struct{}),
	}
	go p.drainEvents()
	if err := backend.Start(engine); err != nil {
		close(p.quit)
		<-p.drained
		_ = backend.Close()
		return nil, err
	}
	return p, nil
}

// SampleRate returns the negotiated device rate.
func (p *Player) SampleRate() int { return p.engine.SampleRate() }

// Play replaces whatever is playing with script. Malformed commands are not
// reported here; the engine drops the script when it reaches them and a
// EventScriptAborted follows on Watch().
func (p *Player) Play(script string) error {
	return p.publish(func() uint64 { return p.engine.Play(script) })
}

// PlayChecked validates the whole script before playing it.
func (p *Player) PlayChecked(script string) error {
	if _, err := intmml.Parse(script); err != nil {
		return err
	}
	return p.Play(script)
}

// PlayTone plays a single tone of freq Hz, replacing the current song.
func (p *Player) PlayTone(freq int, seconds float64) error {
	return p.publish(func() uint64 { return p.engine.PlayTone(freq, seconds) })
}

// Beep plays 400 Hz for 0.2 seconds.
func (p *Player) Beep() error {
	return p.publish(p.engine.Beep)
}

func (p *Player) publish(request func() uint64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	// Wake any Wait() so it follows the new request.
	if p.done != nil {
		close(p.done)
	}
	p.done = make(chan struct{})
	p.last = request()
	return nil
}

// signalDone releases Wait() once the latest request has ended.
func (p *Player) signalDone(id uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if id != p.last || p.done == nil {
		return
	}
	close(p.done)
	p.done = nil
}

// Stop silences playback at the next audio callback.
func (p *Player) Stop() error { return p.Play("") }

// LastRequest returns the id of the most recent Play, PlayTone or Beep.
func (p *Player) LastRequest() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

// Idle reports whether the last request has finished playing.
func (p *Player) Idle() bool { return p.engine.Idle() }

// Wait blocks until the current request finishes or ctx is done. A newer
// request published while waiting extends the wait.
func (p *Player) Wait(ctx context.Context) error {
	for {
		p.mu.Lock()
		done := p.done
		p.mu.Unlock()
		if done == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.quit:
			return ErrClosed
		case <-done:
		}
	}
}

// Watch returns a channel that receives playback events.
//
// The channel is buffered (cap 8); events are dropped when it is full.
// Only the most recent Watch() channel receives events.
func (p *Player) Watch() <-chan PlaybackEvent {
	ch := make(chan PlaybackEvent, 8)
	p.eventChMu.Lock()
	p.eventCh = ch
	p.eventChMu.Unlock()
	return ch
}

// Close stops the device. Further requests return ErrClosed.
func (p *Player) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	err := p.backend.Close()
	close(p.quit)
	<-p.drained
	return err
}

func (p *Player) drainEvents() {
	defer close(p.drained)
	for {
		select {
		case <-p.quit:
			return
		case ev := <-p.engine.Events():
			p.handleEvent(ev)
		}
	}
}

func (p *Player) handleEvent(ev intseq.Event) {
	err := ev.Err()
	switch ev.Kind {
	case EventScriptAborted:
		p.logger.Printf("pcplay: script aborted (request %d): %v", ev.Request, err)
	case EventRunaway:
		p.logger.Printf("pcplay: script dropped (request %d): %v", ev.Request, err)
	}
	p.signalDone(ev.Request)
	p.sendEvent(PlaybackEvent{Kind: ev.Kind, Request: ev.Request, Err: err})
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
