package sequencer

import (
	"math"

	"github.com/cbegin/pcplay-go/internal/mml"
	"github.com/cbegin/pcplay-go/internal/tables"
)

// Params holds the engine's start-up state and real-time limits.
type Params struct {
	Octave       int
	BPM          int
	Divisor      int
	Articulation mml.Articulation
	// CommandBudget bounds how many commands may resolve without producing
	// a sample during one Process call before the script is dropped.
	CommandBudget int
	// EventBuffer is the capacity of the event channel.
	EventBuffer int
}

// DefaultParams returns the power-on defaults: octave 4, 100 BPM quarter
// notes, normal articulation.
func DefaultParams() Params {
	return Params{
		Octave:        4,
		BPM:           100,
		Divisor:       4,
		Articulation:  mml.ArticulationNormal,
		CommandBudget: 1000,
		EventBuffer:   16,
	}
}

func (p Params) normalized() Params {
	def := DefaultParams()
	p.Octave = clampInt(p.Octave, mml.MinOctave, mml.MaxOctave)
	if p.BPM <= 0 {
		p.BPM = def.BPM
	}
	p.BPM = clampInt(p.BPM, mml.MinBPM, mml.MaxBPM)
	if p.Divisor <= 0 {
		p.Divisor = def.Divisor
	}
	p.Divisor = clampInt(p.Divisor, mml.MinDivisor, mml.MaxDivisor)
	if p.CommandBudget <= 0 {
		p.CommandBudget = def.CommandBudget
	}
	if p.EventBuffer <= 0 {
		p.EventBuffer = def.EventBuffer
	}
	return p
}

// State is the mutable playback state. Tempo is in samples per whole note;
// Frequency 0 is a rest.
type State struct {
	Octave       int
	Tempo        int
	Divisor      int
	Articulation mml.Articulation
	Frequency    int
	Remaining    int
}

// Outcome reports what a single Step did.
type Outcome int

const (
	OutcomeState Outcome = iota // state changed, nothing to play
	OutcomeNote                 // Frequency and Remaining describe a new note or rest
	OutcomeEnd                  // script exhausted
	OutcomeAbort                // script was malformed and has been dropped
)

// BPMToSamples converts quarter notes per minute into samples per whole note.
func BPMToSamples(sampleRate, bpm int) int {
	if bpm <= 0 {
		return 0
	}
	return int(math.Round(float64(sampleRate) * 240 / float64(bpm)))
}

// Sequencer walks a song script one command at a time. It is owned by the
// audio thread; nothing in it is safe for concurrent use.
type Sequencer struct {
	sampleRate int
	script     string
	cursor     int
	state      State
	fault      Fault
}

// NewSequencer creates a sequencer with an empty script.
func NewSequencer(sampleRate int, params Params) *Sequencer {
	params = params.normalized()
	return &Sequencer{
		sampleRate: sampleRate,
		state: State{
			Octave:       params.Octave,
			Tempo:        BPMToSamples(sampleRate, params.BPM),
			Divisor:      params.Divisor,
			Articulation: params.Articulation,
		},
	}
}

// State returns a copy of the playback state.
func (s *Sequencer) State() State { return s.state }

// Script returns the active script and the cursor into it.
func (s *Sequencer) Script() (string, int) { return s.script, s.cursor }

// Load replaces the script, rewinds the cursor and drops the current note.
func (s *Sequencer) Load(script string) {
	s.script = script
	s.cursor = 0
	s.state.Remaining = 0
}

// LoadTone clears the script and owes samples of a fixed frequency.
func (s *Sequencer) LoadTone(freq, samples int) {
	s.script = ""
	s.cursor = 0
	s.state.Frequency = max(freq, 0)
	s.state.Remaining = max(samples, 0)
}

// Consume marks n samples of the current note as played.
func (s *Sequencer) Consume(n int) {
	s.state.Remaining = max(s.state.Remaining-n, 0)
}

// Step resolves the next command. On OutcomeAbort the returned error is a
// *Fault describing the offending command.
func (s *Sequencer) Step() (Outcome, error) {
	cmd, next, err := mml.Next(s.script, s.cursor)
	if err != nil {
		return OutcomeAbort, s.abort(cmd.Offset, cmd.Letter, err)
	}
	s.cursor = next
	return dispatch[cmd.Kind](s, cmd), nil
}

// faultContextLen bounds how much of the script a Fault quotes.
const faultContextLen = 24

func (s *Sequencer) abort(offset int, letter byte, err error) *Fault {
	context := ""
	if offset < len(s.script) {
		context = s.script[offset:min(len(s.script), offset+faultContextLen)]
	}
	s.fault = Fault{Offset: offset, Command: letter, Context: context, Err: err}
	s.script = ""
	s.cursor = 0
	s.state.Remaining = 0
	return &s.fault
}

type handler func(*Sequencer, mml.Command) Outcome

var dispatch = [mml.KindCount]handler{
	mml.CmdEnd:          (*Sequencer).end,
	mml.CmdOctave:       (*Sequencer).setOctave,
	mml.CmdOctaveDown:   (*Sequencer).octaveDown,
	mml.CmdOctaveUp:     (*Sequencer).octaveUp,
	mml.CmdNote:         (*Sequencer).note,
	mml.CmdRest:         (*Sequencer).rest,
	mml.CmdNoteNumber:   (*Sequencer).noteNumber,
	mml.CmdLength:       (*Sequencer).setLength,
	mml.CmdArticulation: (*Sequencer).setArticulation,
	mml.CmdPlayMode:     (*Sequencer).playMode,
	mml.CmdTempo:        (*Sequencer).setTempo,
}

func (s *Sequencer) end(mml.Command) Outcome { return OutcomeEnd }

func (s *Sequencer) setOctave(cmd mml.Command) Outcome {
	s.state.Octave = cmd.Value
	return OutcomeState
}

func (s *Sequencer) octaveDown(mml.Command) Outcome {
	s.state.Octave = clampInt(s.state.Octave-1, mml.MinOctave, mml.MaxOctave)
	return OutcomeState
}

func (s *Sequencer) octaveUp(mml.Command) Outcome {
	s.state.Octave = clampInt(s.state.Octave+1, mml.MinOctave, mml.MaxOctave)
	return OutcomeState
}

func (s *Sequencer) note(cmd mml.Command) Outcome {
	freq := tables.NoteFrequency(s.state.Octave, cmd.Semitone)
	// +/- move the pitch by one Hz, not a semitone. Silent slots stay silent.
	if freq != tables.Silent {
		freq = max(freq+cmd.Shift, 0)
	}
	dur := s.noteLength(s.state.Divisor)
	if cmd.Dotted {
		dur = int(float64(dur) * (2.0 / 3.0))
	}
	s.state.Frequency = freq
	s.state.Remaining = dur
	return OutcomeNote
}

func (s *Sequencer) rest(cmd mml.Command) Outcome {
	s.state.Frequency = 0
	s.state.Remaining = s.noteLength(cmd.Value)
	return OutcomeNote
}

func (s *Sequencer) noteNumber(cmd mml.Command) Outcome {
	s.state.Frequency = tables.NumberFrequency(cmd.Value)
	s.state.Remaining = s.noteLength(s.state.Divisor)
	return OutcomeNote
}

func (s *Sequencer) setLength(cmd mml.Command) Outcome {
	s.state.Divisor = cmd.Value
	return OutcomeState
}

// Articulation is recorded but does not yet shape note spacing.
func (s *Sequencer) setArticulation(cmd mml.Command) Outcome {
	s.state.Articulation = cmd.Articulation
	return OutcomeState
}

func (s *Sequencer) playMode(mml.Command) Outcome { return OutcomeState }

func (s *Sequencer) setTempo(cmd mml.Command) Outcome {
	s.state.Tempo = BPMToSamples(s.sampleRate, cmd.Value)
	return OutcomeState
}

func (s *Sequencer) noteLength(divisor int) int {
	return int(float64(s.state.Tempo) / float64(divisor))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
