package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
)

// Source produces mono signed 16-bit samples on demand.
type Source interface {
	Process(dst []int16)
}

// Backend is an audio device that pulls samples from a Source.
type Backend interface {
	// SampleRate is the rate the device actually runs at.
	SampleRate() int
	Start(source Source) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendEbiten   = "ebiten"
	BackendOto      = "oto"
	BackendHeadless = "headless"
)

var ErrUnknownBackend = errors.New("unknown audio backend")

// Open creates the named backend, requesting sampleRate. Callers must read
// the negotiated rate back with SampleRate.
func Open(name string, sampleRate int) (Backend, error) {
	if sampleRate <= 0 {
		return nil, errors.New("sampleRate must be positive")
	}
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", BackendEbiten:
		return newEbitenBackend(sampleRate)
	case BackendOto:
		return newOtoBackend(sampleRate)
	case BackendHeadless:
		return NewHeadless(sampleRate), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
}

type sourceBox struct{ Source }

// defaultFrames covers the buffer sizes the backends ask for, so Read does
// not allocate after construction.
const defaultFrames = 8192

// StreamReader adapts a Source to io.Reader, writing each mono sample to
// every output channel as little-endian int16.
type StreamReader struct {
	source   atomic.Pointer[sourceBox] // atomic for lock-free Read()
	channels int
	buf      []int16
}

func NewStreamReader(source Source, channels int) *StreamReader {
	if channels <= 0 {
		channels = 1
	}
	r := &StreamReader{channels: channels, buf: make([]int16, defaultFrames)}
	r.SetSource(source)
	return r
}

// SetSource swaps the source; nil plays silence.
func (r *StreamReader) SetSource(source Source) {
	if source == nil {
		r.source.Store(nil)
		return
	}
	r.source.Store(&sourceBox{source})
}

func (r *StreamReader) Read(p []byte) (int, error) {
	frameBytes := 2 * r.channels
	frames := len(p) / frameBytes
	if frames == 0 {
		return 0, nil
	}
	n := frames * frameBytes
	box := r.source.Load()
	if box == nil {
		clear(p[:n])
		return n, nil
	}
	if cap(r.buf) < frames {
		r.buf = make([]int16, frames)
	}
	samples := r.buf[:frames]
	box.Process(samples)
	for i, s := range samples {
		for c := 0; c < r.channels; c++ {
			binary.LittleEndian.PutUint16(p[(i*r.channels+c)*2:], uint16(s))
		}
	}
	return n, nil
}

func (r *StreamReader) Close() error { return nil }
