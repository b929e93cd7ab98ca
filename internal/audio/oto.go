//go:build !headless

package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

const otoBufferSize = 20 * time.Millisecond

var (
	otoContextOnce sync.Once
	otoContext     *oto.Context
	otoContextRate int
	otoContextErr  error
)

// oto allows a single context per process; the first requested rate sticks.
func sharedOtoContext(sampleRate int) (*oto.Context, int, error) {
	otoContextOnce.Do(func() {
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: 1,
			Format:       oto.FormatSignedInt16LE,
			BufferSize:   otoBufferSize,
		})
		if err != nil {
			otoContextErr = fmt.Errorf("oto: %w", err)
			return
		}
		<-ready
		otoContext = ctx
		otoContextRate = sampleRate
	})
	return otoContext, otoContextRate, otoContextErr
}

type otoBackend struct {
	mu     sync.Mutex
	ctx    *oto.Context
	rate   int
	player *oto.Player
	reader *StreamReader
}

func newOtoBackend(sampleRate int) (Backend, error) {
	ctx, rate, err := sharedOtoContext(sampleRate)
	if err != nil {
		return nil, err
	}
	return &otoBackend{ctx: ctx, rate: rate}, nil
}

func (b *otoBackend) SampleRate() int { return b.rate }

func (b *otoBackend) Start(source Source) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.player != nil {
		b.reader.SetSource(source)
		return nil
	}
	reader := NewStreamReader(source, 1)
	pl := b.ctx.NewPlayer(reader)
	pl.Play()
	b.player = pl
	b.reader = reader
	return nil
}

func (b *otoBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.player == nil {
		return nil
	}
	b.player.Pause()
	b.reader.SetSource(nil)
	err := b.player.Close()
	b.player = nil
	return err
}
