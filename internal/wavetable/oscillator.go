package wavetable

import (
	"math"

	"github.com/cbegin/pcplay-go/internal/tables"
)

const tableLen = float64(tables.WaveformSize)

// Oscillator renders a single monophonic voice from the shared waveform
// table. Its phase survives across Render calls so a note split over many
// buffers keeps its pitch.
type Oscillator struct {
	table      *[tables.WaveformSize]int16
	sampleRate float64
	phase      float64 // current position in the wavetable [0, tableLen)
}

// NewOscillator creates an oscillator for the negotiated device rate.
func NewOscillator(sampleRate int) *Oscillator {
	return &Oscillator{
		table:      &tables.Waveform,
		sampleRate: float64(sampleRate),
	}
}

// SampleRate returns the rate the oscillator was built for.
func (o *Oscillator) SampleRate() int { return int(o.sampleRate) }

// Phase returns the current table position.
func (o *Oscillator) Phase() float64 { return o.phase }

// Reset moves the phase back to the start of the table.
func (o *Oscillator) Reset() { o.phase = 0 }

// Increment is the per-sample phase advance for freq Hz.
func (o *Oscillator) Increment(freq int) float64 {
	if freq <= 0 || o.sampleRate <= 0 {
		return 0
	}
	return tableLen / (o.sampleRate / float64(freq))
}

// Render writes up to min(len(dst), owed) samples of freq Hz into dst and
// returns how many it wrote. A zero frequency renders silence.
func (o *Oscillator) Render(dst []int16, freq int, owed int) int {
	n := min(len(dst), owed)
	if n <= 0 {
		return 0
	}
	if freq <= 0 {
		clear(dst[:n])
		return n
	}
	// Drop whole table laps so one subtraction wraps the phase.
	inc := math.Mod(o.Increment(freq), tableLen)
	phase := o.phase
	for i := 0; i < n; i++ {
		// Linear interpolation between adjacent samples.
		idx := int(phase)
		frac := phase - float64(idx)
		s0 := float64(o.table[idx&tables.WaveformMask])
		s1 := float64(o.table[(idx+1)&tables.WaveformMask])
		dst[i] = int16(s0*(1-frac) + s1*frac)

		phase += inc
		if phase >= tableLen {
			phase -= tableLen
		}
	}
	o.phase = phase
	return n
}
