package mml

import (
	"errors"
	"testing"
)

// Each production of the song grammar, one row per accepted spelling.
func TestConformance_GrammarProductions(t *testing.T) {
	cases := []struct {
		src  string
		kind CommandKind
	}{
		{"O4", CmdOctave},
		{"o0", CmdOctave},
		{"<", CmdOctaveDown},
		{">", CmdOctaveUp},
		{"A", CmdNote},
		{"g", CmdNote},
		{"c+", CmdNote},
		{"d-.", CmdNote},
		{"P8", CmdRest},
		{"p1", CmdRest},
		{"N0", CmdNoteNumber},
		{"n84", CmdNoteNumber},
		{"L4", CmdLength},
		{"l64", CmdLength},
		{"ML", CmdArticulation},
		{"mn", CmdArticulation},
		{"Ms", CmdArticulation},
		{"mF", CmdPlayMode},
		{"MB", CmdPlayMode},
		{"T255", CmdTempo},
		{"t32", CmdTempo},
	}
	for _, tc := range cases {
		cmd, next, err := Next(tc.src, 0)
		if err != nil {
			t.Fatalf("%q: unexpected error %v", tc.src, err)
		}
		if cmd.Kind != tc.kind {
			t.Fatalf("%q: kind %v, want %v", tc.src, cmd.Kind, tc.kind)
		}
		if next != len(tc.src) {
			t.Fatalf("%q: consumed %d bytes, want %d", tc.src, next, len(tc.src))
		}
	}
}

func TestConformance_EmptyAndBlankScriptsEnd(t *testing.T) {
	for _, src := range []string{"", "   ", "\n\t", "\x00CDE"} {
		cmds, err := Parse(src)
		if err != nil {
			t.Fatalf("%q: unexpected error %v", src, err)
		}
		if len(cmds) != 0 {
			t.Fatalf("%q: expected no commands, got %d", src, len(cmds))
		}
	}
}

func TestConformance_ParseStopsAtFirstFault(t *testing.T) {
	cmds, err := Parse("CDE H FGA")
	if !errors.Is(err, ErrUnknownCommand) {
		t.Fatalf("expected unknown command, got %v", err)
	}
	if len(cmds) != 3 {
		t.Fatalf("expected the 3 notes before the fault, got %d", len(cmds))
	}
}
