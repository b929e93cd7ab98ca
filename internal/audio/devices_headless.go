//go:build headless

package audio

import "errors"

var errNoDevices = errors.New("built with the headless tag; only the headless backend is available")

func newEbitenBackend(int) (Backend, error) { return nil, errNoDevices }

func newOtoBackend(int) (Backend, error) { return nil, errNoDevices }
