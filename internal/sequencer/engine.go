package sequencer

import (
	"math"
	"sync/atomic"

	"github.com/cbegin/pcplay-go/internal/wavetable"
)

type requestKind int

const (
	requestScript requestKind = iota
	requestTone
)

type request struct {
	id      uint64
	kind    requestKind
	script  string
	freq    int
	samples int
}

// Snapshot is a view of the engine taken on the audio thread.
type Snapshot struct {
	State
	Script string
	Cursor int
	Phase  float64
}

// Engine drives the sequencer and oscillator from the audio callback.
//
// Process must only be called from one goroutine (the audio thread). Play,
// PlayTone and Beep publish requests to it through an atomic pointer and
// must not be called concurrently with each other; the root Player
// serializes them.
type Engine struct {
	sampleRate int
	params     Params
	seq        *Sequencer
	osc        *wavetable.Oscillator
	events     chan Event
	sampleTap  func([]int16)

	pending   atomic.Pointer[request]
	requested atomic.Uint64
	finished  atomic.Uint64

	// Audio-thread only.
	current uint64
	active  bool
}

// New creates an engine for the negotiated device rate.
func New(sampleRate int, params Params) *Engine {
	params = params.normalized()
	return &Engine{
		sampleRate: sampleRate,
		params:     params,
		seq:        NewSequencer(sampleRate, params),
		osc:        wavetable.NewOscillator(sampleRate),
		events:     make(chan Event, params.EventBuffer),
	}
}

// SampleRate returns the rate all tempo and pitch math uses.
func (e *Engine) SampleRate() int { return e.sampleRate }

// Events returns the channel the audio thread reports to. Events are
// dropped when nobody drains it.
func (e *Engine) Events() <-chan Event { return e.events }

// SetSampleTap installs a callback run on the audio thread after each
// buffer. Install it before the audio device starts pulling.
func (e *Engine) SetSampleTap(tap func([]int16)) { e.sampleTap = tap }

// Play replaces the song script. Any note in flight is cut at the start of
// the next Process call.
func (e *Engine) Play(script string) uint64 {
	return e.publish(&request{kind: requestScript, script: script})
}

// PlayTone plays freq Hz for seconds, bypassing the sequencer.
func (e *Engine) PlayTone(freq int, seconds float64) uint64 {
	samples := 0
	if seconds > 0 {
		samples = int(math.Round(float64(e.sampleRate) * seconds))
	}
	return e.publish(&request{kind: requestTone, freq: freq, samples: samples})
}

// Beep plays the standard 400 Hz, 0.2 s tone.
func (e *Engine) Beep() uint64 { return e.PlayTone(400, 0.2) }

func (e *Engine) publish(r *request) uint64 {
	r.id = e.requested.Add(1)
	e.pending.Store(r)
	return r.id
}

// Idle reports whether the most recent request has finished. Safe from any
// goroutine.
func (e *Engine) Idle() bool {
	return e.finished.Load() == e.requested.Load()
}

// Snapshot copies the playback state. Audio thread only.
func (e *Engine) Snapshot() Snapshot {
	script, cursor := e.seq.Script()
	return Snapshot{
		State:  e.seq.State(),
		Script: script,
		Cursor: cursor,
		Phase:  e.osc.Phase(),
	}
}

// Process fills dst with the next len(dst) samples. It never blocks and
// never allocates.
func (e *Engine) Process(dst []int16) {
	if r := e.pending.Swap(nil); r != nil {
		e.apply(r)
	}
	n, budget := 0, e.params.CommandBudget
fill:
	for n < len(dst) {
		st := &e.seq.state
		if st.Remaining > 0 {
			w := e.osc.Render(dst[n:], st.Frequency, st.Remaining)
			e.seq.Consume(w)
			n += w
			continue
		}
		if budget == 0 {
			_, cursor := e.seq.Script()
			e.finish(EventRunaway, e.seq.abort(cursor, 0, ErrRunaway))
			break
		}
		outcome, err := e.seq.Step()
		switch outcome {
		case OutcomeEnd:
			e.finish(EventSongEnded, nil)
			break fill
		case OutcomeAbort:
			f, _ := err.(*Fault)
			e.finish(EventScriptAborted, f)
			break fill
		}
		if e.seq.state.Remaining == 0 {
			budget--
		}
	}
	clear(dst[n:])
	if e.sampleTap != nil {
		e.sampleTap(dst)
	}
}

func (e *Engine) apply(r *request) {
	switch r.kind {
	case requestScript:
		e.seq.Load(r.script)
	case requestTone:
		e.seq.LoadTone(r.freq, r.samples)
		e.osc.Reset()
	}
	e.current = r.id
	e.active = true
}

// finish retires the current request. Song ends are reported once; faults
// are always reported.
func (e *Engine) finish(kind EventKind, f *Fault) {
	if kind == EventSongEnded && !e.active {
		return
	}
	e.active = false
	e.finished.Store(e.current)
	ev := Event{Kind: kind, Request: e.current}
	if f != nil {
		ev.Fault = *f
	}
	select {
	case e.events <- ev:
	default:
		// Channel full; drop event
	}
}
