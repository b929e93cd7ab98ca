package wavetable

import (
	"math"
	"testing"
	"time"

	"github.com/cbegin/pcplay-go/internal/tables"
)

func TestOscillatorRendersSignal(t *testing.T) {
	o := NewOscillator(44100)
	buf := make([]int16, 4096)
	n := o.Render(buf, 440, len(buf))
	if n != len(buf) {
		t.Fatalf("rendered %d samples, want %d", n, len(buf))
	}
	var energy float64
	for _, s := range buf {
		energy += math.Abs(float64(s))
	}
	if energy == 0 {
		t.Fatalf("expected non-zero output")
	}
	if buf[0] != tables.Waveform[0] {
		t.Fatalf("first sample at phase 0 = %d, want %d", buf[0], tables.Waveform[0])
	}
}

func TestOscillatorStopsAtOwedOrBufferLimit(t *testing.T) {
	o := NewOscillator(44100)
	buf := make([]int16, 100)
	if n := o.Render(buf, 440, 30); n != 30 {
		t.Fatalf("owed 30, rendered %d", n)
	}
	if n := o.Render(buf, 440, 1000); n != 100 {
		t.Fatalf("buffer 100, rendered %d", n)
	}
	if n := o.Render(buf, 440, 0); n != 0 {
		t.Fatalf("owed 0, rendered %d", n)
	}
}

func TestOscillatorRestIsSilent(t *testing.T) {
	o := NewOscillator(44100)
	buf := make([]int16, 64)
	for i := range buf {
		buf[i] = 123
	}
	phase := o.Phase()
	if n := o.Render(buf, 0, 40); n != 40 {
		t.Fatalf("rendered %d, want 40", n)
	}
	for i := 0; i < 40; i++ {
		if buf[i] != 0 {
			t.Fatalf("sample %d = %d, want 0", i, buf[i])
		}
	}
	if buf[40] != 123 {
		t.Fatalf("rest wrote past its owed count")
	}
	if o.Phase() != phase {
		t.Fatalf("rest moved phase from %v to %v", phase, o.Phase())
	}
}

func TestOscillatorPhaseStaysInTable(t *testing.T) {
	o := NewOscillator(8000)
	buf := make([]int16, 1024)
	for _, freq := range []int{39, 440, 3951, 4186, 7999, 20000} {
		for k := 0; k < 50; k++ {
			o.Render(buf, freq, len(buf))
			if p := o.Phase(); p < 0 || p >= tableLen {
				t.Fatalf("freq %d: phase %v escaped [0,%v)", freq, p, tableLen)
			}
		}
	}
}

func TestOscillatorPitchMatchesFrequency(t *testing.T) {
	const rate = 44100
	o := NewOscillator(rate)
	buf := make([]int16, rate)
	o.Render(buf, 440, len(buf))
	// The waveform crosses zero upwards once per period.
	crossings := 0
	for i := 1; i < len(buf); i++ {
		if buf[i-1] < 0 && buf[i] >= 0 {
			crossings++
		}
	}
	if crossings < 438 || crossings > 442 {
		t.Fatalf("expected ~440 periods in one second, got %d", crossings)
	}
}

func TestOscillatorIncrement(t *testing.T) {
	o := NewOscillator(44100)
	want := tableLen * 400 / 44100
	if got := o.Increment(400); math.Abs(got-want) > 1e-12 {
		t.Fatalf("increment = %v, want %v", got, want)
	}
	if got := o.Increment(0); got != 0 {
		t.Fatalf("rest increment = %v, want 0", got)
	}
}

func TestOscillatorResetPhase(t *testing.T) {
	o := NewOscillator(44100)
	buf := make([]int16, 17)
	o.Render(buf, 1000, len(buf))
	if o.Phase() == 0 {
		t.Fatalf("expected phase to advance")
	}
	o.Reset()
	if o.Phase() != 0 {
		t.Fatalf("reset left phase at %v", o.Phase())
	}
}

func TestOscillatorExtremeFrequencyIsBounded(t *testing.T) {
	o := NewOscillator(44100)
	buf := make([]int16, 512)
	start := time.Now()
	for i := 0; i < 86; i++ {
		if n := o.Render(buf, 10_000_000_000, len(buf)); n != len(buf) {
			t.Fatalf("rendered %d samples, want %d", n, len(buf))
		}
		if p := o.Phase(); p < 0 || p >= tableLen {
			t.Fatalf("phase %v escaped the table", p)
		}
	}
	// About one second of audio; one lap-by-lap wrap per sample would take
	// several seconds here.
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Fatalf("rendering 1e10 Hz took %v", elapsed)
	}
}
