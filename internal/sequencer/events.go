package sequencer

import (
	"errors"
	"fmt"
)

// ErrRunaway reports a script that kept resolving commands without
// producing any audio.
var ErrRunaway = errors.New("command budget exhausted without producing audio")

// EventKind identifies engine lifecycle events.
type EventKind int

const (
	// EventSongEnded fires once when a request plays out to its end.
	EventSongEnded EventKind = iota
	// EventScriptAborted fires when a malformed command drops the script.
	EventScriptAborted
	// EventRunaway fires when the command budget drops the script.
	EventRunaway
)

func (k EventKind) String() string {
	switch k {
	case EventSongEnded:
		return "song-ended"
	case EventScriptAborted:
		return "script-aborted"
	case EventRunaway:
		return "runaway"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Fault describes why a script was dropped. Context quotes the script from
// the offending offset and shares memory with it.
type Fault struct {
	Offset  int
	Command byte
	Context string
	Err     error
}

func (f *Fault) Error() string {
	if f.Command == 0 {
		return fmt.Sprintf("%v at offset %d (%q)", f.Err, f.Offset, f.Context)
	}
	return fmt.Sprintf("%v at offset %d, command %q (%q)", f.Err, f.Offset, f.Command, f.Context)
}

func (f *Fault) Unwrap() error { return f.Err }

// Event is delivered from the audio thread. Request is the sequence number
// returned by the Play/PlayTone call the event belongs to.
type Event struct {
	Kind    EventKind
	Request uint64
	Fault   Fault
}

// Err returns the fault for abort events and nil otherwise.
func (e Event) Err() error {
	if e.Kind == EventSongEnded {
		return nil
	}
	f := e.Fault
	return &f
}
