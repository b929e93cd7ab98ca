package mml

import (
	"errors"
	"strings"
	"testing"
)

func kinds(cmds []Command) []CommandKind {
	out := make([]CommandKind, len(cmds))
	for i, c := range cmds {
		out[i] = c.Kind
	}
	return out
}

func TestParseBasicMelody(t *testing.T) {
	cmds, err := Parse("T120 O4 L8 CDEFGAB")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(cmds) != 10 {
		t.Fatalf("expected 10 commands, got %d: %v", len(cmds), kinds(cmds))
	}
	if cmds[0].Kind != CmdTempo || cmds[0].Value != 120 {
		t.Fatalf("expected tempo 120 first, got %+v", cmds[0])
	}
	if cmds[1].Kind != CmdOctave || cmds[1].Value != 4 {
		t.Fatalf("expected octave 4, got %+v", cmds[1])
	}
	if cmds[2].Kind != CmdLength || cmds[2].Value != 8 {
		t.Fatalf("expected length 8, got %+v", cmds[2])
	}
	want := []int{0, 2, 4, 5, 7, 9, 11}
	for i, c := range cmds[3:] {
		if c.Kind != CmdNote || c.Semitone != want[i] {
			t.Fatalf("note %d = %+v, want semitone %d", i, c, want[i])
		}
	}
}

func TestParseIsCaseInsensitive(t *testing.T) {
	upper, err := Parse("T150O3L16MSCDE>C<P4N40")
	if err != nil {
		t.Fatalf("parse upper failed: %v", err)
	}
	low, err := Parse("t150o3l16mscde>c<p4n40")
	if err != nil {
		t.Fatalf("parse lower failed: %v", err)
	}
	if len(upper) != len(low) {
		t.Fatalf("length mismatch %d vs %d", len(upper), len(low))
	}
	for i := range upper {
		u, l := upper[i], low[i]
		u.Letter, l.Letter = 0, 0
		if u != l {
			t.Fatalf("command %d differs: %+v vs %+v", i, u, l)
		}
	}
}

func TestParseClampsArguments(t *testing.T) {
	cases := []struct {
		script string
		kind   CommandKind
		want   int
	}{
		{"O9", CmdOctave, 6},
		{"O-5", CmdOctave, 0},
		{"T10", CmdTempo, 32},
		{"T999", CmdTempo, 255},
		{"L0", CmdLength, 1},
		{"L100", CmdLength, 64},
		{"P0", CmdRest, 1},
		{"P65", CmdRest, 64},
		{"N-3", CmdNoteNumber, 0},
		{"N90", CmdNoteNumber, 84},
		{"T99999999999999999999", CmdTempo, 255},
	}
	for _, tc := range cases {
		cmds, err := Parse(tc.script)
		if err != nil {
			t.Fatalf("%s: parse failed: %v", tc.script, err)
		}
		if len(cmds) != 1 || cmds[0].Kind != tc.kind || cmds[0].Value != tc.want {
			t.Fatalf("%s: got %+v, want %v=%d", tc.script, cmds, tc.kind, tc.want)
		}
	}
}

func TestParseNoteSuffixes(t *testing.T) {
	cmds, err := Parse("C+ D- E. F+. G")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	want := []struct {
		shift  int
		dotted bool
	}{{1, false}, {-1, false}, {0, true}, {1, true}, {0, false}}
	if len(cmds) != len(want) {
		t.Fatalf("expected %d notes, got %d", len(want), len(cmds))
	}
	for i, w := range want {
		if cmds[i].Shift != w.shift || cmds[i].Dotted != w.dotted {
			t.Fatalf("note %d = %+v, want shift %d dotted %v", i, cmds[i], w.shift, w.dotted)
		}
	}
}

func TestParseArticulationAndPlayMode(t *testing.T) {
	cmds, err := Parse("ML MN MS MF MB")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	want := []Articulation{ArticulationLegato, ArticulationNormal, ArticulationStaccato}
	for i, a := range want {
		if cmds[i].Kind != CmdArticulation || cmds[i].Articulation != a {
			t.Fatalf("command %d = %+v, want %v", i, cmds[i], a)
		}
	}
	if cmds[3].Kind != CmdPlayMode || cmds[3].Value != PlayForeground {
		t.Fatalf("expected MF play mode, got %+v", cmds[3])
	}
	if cmds[4].Kind != CmdPlayMode || cmds[4].Value != PlayBackground {
		t.Fatalf("expected MB play mode, got %+v", cmds[4])
	}
}

func TestParseReportsMalformedCommands(t *testing.T) {
	cases := []struct {
		script string
		offset int
		want   error
	}{
		{"Q", 0, ErrUnknownCommand},
		{"CDE Z", 4, ErrUnknownCommand},
		{"O", 0, ErrMissingArgument},
		{"C Ox", 2, ErrMissingArgument},
		{"P", 0, ErrMissingArgument},
		{"N+", 0, ErrMissingArgument},
		{"L", 0, ErrMissingArgument},
		{"T", 0, ErrMissingArgument},
		{"MX", 0, ErrUnknownArticulation},
		{"M", 0, ErrUnknownArticulation},
	}
	for _, tc := range cases {
		_, err := Parse(tc.script)
		if !errors.Is(err, tc.want) {
			t.Fatalf("%q: got %v, want %v", tc.script, err, tc.want)
		}
		var se *SyntaxError
		if !errors.As(err, &se) {
			t.Fatalf("%q: expected *SyntaxError, got %T", tc.script, err)
		}
		if se.Offset != tc.offset {
			t.Fatalf("%q: offset %d, want %d", tc.script, se.Offset, tc.offset)
		}
	}
}

func TestNextSkipsWhitespaceAndStopsAtNUL(t *testing.T) {
	script := " \t\nC\x00D"
	cmd, next, err := Next(script, 0)
	if err != nil || cmd.Kind != CmdNote || next != 4 {
		t.Fatalf("first = %+v next=%d err=%v", cmd, next, err)
	}
	cmd, next2, err := Next(script, next)
	if err != nil || cmd.Kind != CmdEnd || next2 != next {
		t.Fatalf("expected end at NUL without advancing, got %+v next=%d err=%v", cmd, next2, err)
	}
}

func TestNextAllowsSpaceBeforeArgument(t *testing.T) {
	cmd, next, err := Next("O 3C", 0)
	if err != nil {
		t.Fatalf("next failed: %v", err)
	}
	if cmd.Kind != CmdOctave || cmd.Value != 3 || next != 3 {
		t.Fatalf("got %+v next=%d", cmd, next)
	}
}

func TestNextDoesNotAllocate(t *testing.T) {
	script := strings.Repeat("T120 O4 L8 C+. MS N40 P8 < > Q", 4)
	allocs := testing.AllocsPerRun(100, func() {
		at := 0
		for {
			cmd, next, err := Next(script, at)
			if err != nil || cmd.Kind == CmdEnd {
				return
			}
			at = next
		}
	})
	if allocs != 0 {
		t.Fatalf("Next allocated %.1f times per run", allocs)
	}
}
