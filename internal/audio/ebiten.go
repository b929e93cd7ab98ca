//go:build !headless

package audio

import (
	"sync"
	"time"

	ebitaudio "github.com/hajimehoshi/ebiten/v2/audio"
)

const ebitenBufferSize = 50 * time.Millisecond

var (
	audioContextOnce sync.Once
	audioContext     *ebitaudio.Context
)

// sharedAudioContext returns the process-wide ebiten context. When the host
// program already created one, its rate wins over the requested one.
func sharedAudioContext(sampleRate int) *ebitaudio.Context {
	audioContextOnce.Do(func() {
		if ctx := ebitaudio.CurrentContext(); ctx != nil {
			audioContext = ctx
			return
		}
		audioContext = ebitaudio.NewContext(sampleRate)
	})
	return audioContext
}

type ebitenBackend struct {
	mu     sync.Mutex
	ctx    *ebitaudio.Context
	player *ebitaudio.Player
	reader *StreamReader
}

func newEbitenBackend(sampleRate int) (Backend, error) {
	return &ebitenBackend{ctx: sharedAudioContext(sampleRate)}, nil
}

func (b *ebitenBackend) SampleRate() int { return b.ctx.SampleRate() }

func (b *ebitenBackend) Start(source Source) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.player != nil {
		b.reader.SetSource(source)
		return nil
	}
	// ebiten mixes 16-bit stereo; duplicate the mono signal.
	reader := NewStreamReader(source, 2)
	pl, err := b.ctx.NewPlayer(reader)
	if err != nil {
		return err
	}
	pl.SetBufferSize(ebitenBufferSize)
	pl.Play()
	b.player = pl
	b.reader = reader
	return nil
}

func (b *ebitenBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.player == nil {
		return nil
	}
	b.player.Pause()
	err := b.player.Close()
	b.player = nil
	if cerr := b.reader.Close(); err == nil {
		err = cerr
	}
	return err
}
