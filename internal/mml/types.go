package mml

import (
	"errors"
	"fmt"
)

// CommandKind tags the variant held by a Command.
type CommandKind int

const (
	CmdEnd CommandKind = iota
	CmdOctave
	CmdOctaveDown
	CmdOctaveUp
	CmdNote
	CmdRest
	CmdNoteNumber
	CmdLength
	CmdArticulation
	CmdPlayMode
	CmdTempo

	// KindCount is the number of command kinds; dispatch tables are sized by it.
	KindCount
)

var kindNames = [KindCount]string{
	CmdEnd:          "end",
	CmdOctave:       "octave",
	CmdOctaveDown:   "octave-down",
	CmdOctaveUp:     "octave-up",
	CmdNote:         "note",
	CmdRest:         "rest",
	CmdNoteNumber:   "note-number",
	CmdLength:       "length",
	CmdArticulation: "articulation",
	CmdPlayMode:     "play-mode",
	CmdTempo:        "tempo",
}

func (k CommandKind) String() string {
	if k < 0 || k >= KindCount {
		return fmt.Sprintf("CommandKind(%d)", int(k))
	}
	return kindNames[k]
}

// Articulation is the spacing policy between consecutive notes.
type Articulation int

const (
	ArticulationLegato Articulation = iota
	ArticulationNormal
	ArticulationStaccato
)

func (a Articulation) String() string {
	switch a {
	case ArticulationLegato:
		return "legato"
	case ArticulationNormal:
		return "normal"
	case ArticulationStaccato:
		return "staccato"
	default:
		return fmt.Sprintf("Articulation(%d)", int(a))
	}
}

// Play modes carried by CmdPlayMode (MF / MB).
const (
	PlayForeground = 0
	PlayBackground = 1
)

// Argument ranges. Values outside them are clamped, never rejected.
const (
	MinOctave     = 0
	MaxOctave     = 6
	MinDivisor    = 1
	MaxDivisor    = 64
	MinBPM        = 32
	MaxBPM        = 255
	MinNoteNumber = 0
	MaxNoteNumber = 84
)

// Command is one resolved instruction of a song script.
//
// Value holds the clamped numeric argument for CmdOctave (octave),
// CmdRest and CmdLength (divisor), CmdNoteNumber (note number), CmdTempo
// (quarter notes per minute) and CmdPlayMode (PlayForeground/PlayBackground).
type Command struct {
	Kind   CommandKind
	Offset int
	Letter byte
	Value  int

	// Note fields.
	Semitone int
	Shift    int
	Dotted   bool

	Articulation Articulation
}

var (
	ErrMissingArgument     = errors.New("missing numeric argument")
	ErrUnknownCommand      = errors.New("unknown command")
	ErrUnknownArticulation = errors.New("unknown articulation")
)

// SyntaxError locates a malformed command inside a script.
type SyntaxError struct {
	Offset  int
	Command byte
	Err     error
}

func (e *SyntaxError) Error() string {
	if e.Command == 0 {
		return fmt.Sprintf("mml: %v at offset %d", e.Err, e.Offset)
	}
	return fmt.Sprintf("mml: %v at offset %d (%q)", e.Err, e.Offset, e.Command)
}

func (e *SyntaxError) Unwrap() error { return e.Err }
