package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sqweek/dialog"
	"golang.design/x/clipboard"
)

const maxScriptBytes = 1 << 20

// resolveScript picks the script source: inline text, the clipboard, a file
// dialog, a path argument, then the built-in scale.
func resolveScript(cfg config) (string, error) {
	if strings.TrimSpace(cfg.inline) != "" {
		return cfg.inline, nil
	}
	if cfg.clipboard {
		return readClipboard()
	}
	if cfg.open || len(cfg.args) > 0 {
		cwd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		path, err := choosePath(cwd, cfg.args)
		if err != nil {
			return "", err
		}
		return readScript(path)
	}
	return defaultMML, nil
}

func readScript(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if len(data) > maxScriptBytes {
		return "", fmt.Errorf("%s: script larger than %d bytes", path, maxScriptBytes)
	}
	return string(data), nil
}

func readClipboard() (string, error) {
	if err := clipboard.Init(); err != nil {
		return "", fmt.Errorf("clipboard: %w", err)
	}
	data := clipboard.Read(clipboard.FmtText)
	if len(data) == 0 {
		return "", errors.New("clipboard holds no text")
	}
	if len(data) > maxScriptBytes {
		data = data[:maxScriptBytes]
	}
	return string(data), nil
}

// choosePath returns the file path either from the command-line args
// or from an interactive file dialog.
func choosePath(cwd string, args []string) (string, error) {
	if len(args) > 0 {
		absPath, err := filepath.Abs(args[0])
		if err != nil {
			return "", fmt.Errorf("cannot get absolute path: %w", err)
		}
		if err := validatePath(absPath); err != nil {
			return "", fmt.Errorf("passed argument is not a valid path: %w", err)
		}
		return absPath, nil
	}

	path, err := dialog.
		File().
		Title("Open MML script").
		Filter("MML scripts (*.mml, *.txt)", "mml", "txt").
		SetStartDir(cwd).
		Load()
	if err != nil {
		// Caller checks for dialog.ErrCancelled.
		return "", err
	}
	if path == "" {
		return "", dialog.ErrCancelled
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("cannot get absolute path: %w", err)
	}
	if err := validatePath(absPath); err != nil {
		return "", fmt.Errorf("dialog selection invalid: %w", err)
	}
	return absPath, nil
}

func validatePath(p string) error {
	info, err := os.Stat(p)
	if err != nil {
		return fmt.Errorf("cannot stat file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", p)
	}
	return nil
}
