package sequencer

import (
	"strings"
	"testing"
)

func BenchmarkEngineProcess(b *testing.B) {
	song := "T150 O4 L16 " + strings.Repeat("CDEFGAB>C<", 64)
	buf := make([]int16, 2048)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e := New(44100, DefaultParams())
		e.Play(song)
		e.Process(buf)
	}
}

func BenchmarkSequencerStep(b *testing.B) {
	s := NewSequencer(44100, DefaultParams())
	song := strings.Repeat("O4 L8 C+. MS N40 P8 < > T120 ", 32)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Load(song)
		for {
			out, _ := s.Step()
			if out == OutcomeEnd || out == OutcomeAbort {
				break
			}
			s.Consume(s.state.Remaining)
		}
	}
}
