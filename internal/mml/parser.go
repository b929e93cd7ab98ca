package mml

import "github.com/cbegin/pcplay-go/internal/tables"

// numberCap saturates argument parsing; every range above is far below it.
const numberCap = 1 << 20

// Next resolves the command that starts at or after byte offset at.
// Whitespace is skipped first. It returns the command and the offset just
// past it. End of input and NUL both yield CmdEnd without advancing.
//
// Next never allocates, so the audio thread can call it. On a malformed
// command it returns one of the package sentinels and the offset of the
// offending command.
func Next(script string, at int) (Command, int, error) {
	for at < len(script) && isSpace(script[at]) {
		at++
	}
	if at >= len(script) || script[at] == 0 {
		return Command{Kind: CmdEnd, Offset: at}, at, nil
	}
	letter := script[at]
	cmd := Command{Offset: at, Letter: letter}
	switch ch := lower(letter); {
	case ch == 'o':
		val, next, ok := parseSignedNumber(script, at+1)
		if !ok {
			return cmd, at, ErrMissingArgument
		}
		cmd.Kind = CmdOctave
		cmd.Value = clampInt(val, MinOctave, MaxOctave)
		return cmd, next, nil
	case ch == '<':
		cmd.Kind = CmdOctaveDown
		return cmd, at + 1, nil
	case ch == '>':
		cmd.Kind = CmdOctaveUp
		return cmd, at + 1, nil
	case ch >= 'a' && ch <= 'g':
		return parseNote(script, at, cmd)
	case ch == 'p':
		val, next, ok := parseSignedNumber(script, at+1)
		if !ok {
			return cmd, at, ErrMissingArgument
		}
		cmd.Kind = CmdRest
		cmd.Value = clampInt(val, MinDivisor, MaxDivisor)
		return cmd, next, nil
	case ch == 'n':
		val, next, ok := parseSignedNumber(script, at+1)
		if !ok {
			return cmd, at, ErrMissingArgument
		}
		cmd.Kind = CmdNoteNumber
		cmd.Value = clampInt(val, MinNoteNumber, MaxNoteNumber)
		return cmd, next, nil
	case ch == 'l':
		val, next, ok := parseSignedNumber(script, at+1)
		if !ok {
			return cmd, at, ErrMissingArgument
		}
		cmd.Kind = CmdLength
		cmd.Value = clampInt(val, MinDivisor, MaxDivisor)
		return cmd, next, nil
	case ch == 'm':
		return parseMusicMode(script, at, cmd)
	case ch == 't':
		val, next, ok := parseSignedNumber(script, at+1)
		if !ok {
			return cmd, at, ErrMissingArgument
		}
		cmd.Kind = CmdTempo
		cmd.Value = clampInt(val, MinBPM, MaxBPM)
		return cmd, next, nil
	default:
		return cmd, at, ErrUnknownCommand
	}
}

// Parse validates a whole script and returns its commands, excluding the
// terminating CmdEnd. The first malformed command is reported as a
// *SyntaxError.
func Parse(script string) ([]Command, error) {
	cmds := make([]Command, 0, 64)
	at := 0
	for {
		cmd, next, err := Next(script, at)
		if err != nil {
			return cmds, &SyntaxError{Offset: cmd.Offset, Command: cmd.Letter, Err: err}
		}
		if cmd.Kind == CmdEnd {
			return cmds, nil
		}
		cmds = append(cmds, cmd)
		at = next
	}
}

func parseNote(s string, at int, cmd Command) (Command, int, error) {
	semi, _ := tables.LetterSemitone(s[at])
	cmd.Kind = CmdNote
	cmd.Semitone = semi
	i := at + 1
	if i < len(s) {
		switch s[i] {
		case '+':
			cmd.Shift = 1
			i++
		case '-':
			cmd.Shift = -1
			i++
		}
	}
	if i < len(s) && s[i] == '.' {
		cmd.Dotted = true
		i++
	}
	return cmd, i, nil
}

func parseMusicMode(s string, at int, cmd Command) (Command, int, error) {
	if at+1 >= len(s) {
		return cmd, at, ErrUnknownArticulation
	}
	switch lower(s[at+1]) {
	case 'l':
		cmd.Kind, cmd.Articulation = CmdArticulation, ArticulationLegato
	case 'n':
		cmd.Kind, cmd.Articulation = CmdArticulation, ArticulationNormal
	case 's':
		cmd.Kind, cmd.Articulation = CmdArticulation, ArticulationStaccato
	case 'f':
		cmd.Kind, cmd.Value = CmdPlayMode, PlayForeground
	case 'b':
		cmd.Kind, cmd.Value = CmdPlayMode, PlayBackground
	default:
		return cmd, at, ErrUnknownArticulation
	}
	return cmd, at + 2, nil
}

// parseSignedNumber reads an integer argument the way strtol does: leading
// whitespace and one sign are allowed, at least one digit is required.
// Large magnitudes saturate at numberCap.
func parseSignedNumber(s string, at int) (int, int, bool) {
	i := at
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	sign := 1
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		if s[i] == '-' {
			sign = -1
		}
		i++
	}
	start, n := i, 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		if n < numberCap {
			n = n*10 + int(s[i]-'0')
		}
		i++
	}
	if i == start {
		return 0, at, false
	}
	return sign * min(n, numberCap), i, true
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

func lower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + 32
	}
	return b
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\n' || b == '\r' || b == '\t' || b == '\v' || b == '\f'
}
