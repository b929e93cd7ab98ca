package audio

import (
	"io"
	"sync"
	"time"
)

// DefaultHeadlessPeriod is how often the headless device pulls a buffer.
const DefaultHeadlessPeriod = 10 * time.Millisecond

// Headless pulls from its source in real time without a sound card. The
// rendered bytes go to Output, which defaults to io.Discard.
type Headless struct {
	Output io.Writer
	Period time.Duration

	rate   int
	mu     sync.Mutex
	reader *StreamReader
	stop   chan struct{}
	done   chan struct{}
}

func NewHeadless(sampleRate int) *Headless {
	return &Headless{rate: sampleRate, Period: DefaultHeadlessPeriod}
}

func (h *Headless) SampleRate() int { return h.rate }

func (h *Headless) Start(source Source) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.reader != nil {
		h.reader.SetSource(source)
		return nil
	}
	period := h.Period
	if period <= 0 {
		period = DefaultHeadlessPeriod
	}
	out := h.Output
	if out == nil {
		out = io.Discard
	}
	frames := int(int64(h.rate) * int64(period) / int64(time.Second))
	if frames < 1 {
		frames = 1
	}
	h.reader = NewStreamReader(source, 1)
	h.stop = make(chan struct{})
	h.done = make(chan struct{})
	go h.run(h.reader, out, make([]byte, frames*2), period, h.stop, h.done)
	return nil
}

func (h *Headless) run(r io.Reader, out io.Writer, buf []byte, period time.Duration, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			n, err := r.Read(buf)
			if n > 0 {
				if _, werr := out.Write(buf[:n]); werr != nil {
					return
				}
			}
			if err != nil {
				return
			}
		}
	}
}

func (h *Headless) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.reader == nil {
		return nil
	}
	close(h.stop)
	<-h.done
	h.reader = nil
	return nil
}
