package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/cbegin/pcplay-go/internal/mml"
)

const replPrompt = "mml> "

type controller interface {
	Play(script string) error
	PlayTone(freq int, seconds float64) error
	Beep() error
	Stop() error
}

// lineReader yields one line per call; io.EOF ends the session.
type lineReader func() (string, error)

// runREPL plays each line typed on stdin. A terminal gets line editing
// and history; anything else is read line by line.
func runREPL(ctx context.Context, ctrl controller) error {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		sc := bufio.NewScanner(os.Stdin)
		return replLoop(ctx, ctrl, func() (string, error) {
			if !sc.Scan() {
				if err := sc.Err(); err != nil {
					return "", err
				}
				return "", io.EOF
			}
			return sc.Text(), nil
		}, os.Stdout)
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("repl: %w", err)
	}
	defer term.Restore(fd, oldState)

	t := term.NewTerminal(struct {
		io.Reader
		io.Writer
	}{os.Stdin, os.Stdout}, replPrompt)
	// Raw mode needs \r\n; the terminal translates.
	logger.SetOutput(t)
	defer logger.SetOutput(os.Stderr)
	return replLoop(ctx, ctrl, t.ReadLine, t)
}

func replLoop(ctx context.Context, ctrl controller, next lineReader, out io.Writer) error {
	type result struct {
		line string
		err  error
	}
	lines := make(chan result)
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			line, err := next()
			select {
			case lines <- result{line, err}:
			case <-done:
				return
			}
			if err != nil {
				return
			}
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return nil
		case r := <-lines:
			if r.err == io.EOF {
				return nil
			}
			if r.err != nil {
				return r.err
			}
			quit, err := handleLine(ctrl, r.line)
			if err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
			}
			if quit {
				return nil
			}
		}
	}
}

// handleLine runs one REPL command. Anything that is not a command is
// played as a script.
func handleLine(ctrl controller, line string) (quit bool, err error) {
	line = strings.TrimSpace(line)
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	switch strings.ToLower(fields[0]) {
	case "quit", "exit":
		return true, nil
	case "stop":
		return false, ctrl.Stop()
	case "beep":
		return false, ctrl.Beep()
	case "tone":
		if len(fields) != 3 {
			return false, fmt.Errorf("usage: tone <hz> <seconds>")
		}
		freq, err := strconv.Atoi(fields[1])
		if err != nil {
			return false, fmt.Errorf("tone: bad frequency %q", fields[1])
		}
		secs, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return false, fmt.Errorf("tone: bad duration %q", fields[2])
		}
		return false, ctrl.PlayTone(freq, secs)
	case "check":
		_, err := mml.Parse(strings.TrimSpace(line[len(fields[0]):]))
		return false, err
	}
	return false, ctrl.Play(line)
}
