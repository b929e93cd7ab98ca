package pcplay

import (
	"errors"
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	intseq "github.com/cbegin/pcplay-go/internal/sequencer"
)

// RenderChunk is the buffer size offline renders feed the engine, matching
// a typical device callback.
const RenderChunk = 1024

// RenderSamples plays script into a buffer of seconds worth of samples, using
// the same callback-driven engine as live playback.
func RenderSamples(script string, sampleRate int, seconds float64) []int16 {
	return RenderSamplesWithParams(script, sampleRate, seconds, intseq.DefaultParams())
}

func RenderSamplesWithParams(script string, sampleRate int, seconds float64, params Params) []int16 {
	engine := intseq.New(sampleRate, params)
	engine.Play(script)
	return render(engine, sampleRate, seconds)
}

// RenderTone renders a PlayTone request, padded with silence to seconds.
func RenderTone(freq int, duration float64, sampleRate int, seconds float64) []int16 {
	engine := intseq.New(sampleRate, intseq.DefaultParams())
	engine.PlayTone(freq, duration)
	return render(engine, sampleRate, seconds)
}

func render(engine *intseq.Engine, sampleRate int, seconds float64) []int16 {
	frames := int(float64(sampleRate) * seconds)
	if frames <= 0 {
		return nil
	}
	out := make([]int16, frames)
	for off := 0; off < frames; off += RenderChunk {
		end := min(off+RenderChunk, frames)
		engine.Process(out[off:end])
	}
	return out
}

// WriteWAV encodes mono 16-bit samples as a WAV file.
func WriteWAV(w io.WriteSeeker, samples []int16, sampleRate int) error {
	if sampleRate <= 0 {
		return errors.New("sampleRate must be positive")
	}
	enc := wav.NewEncoder(w, sampleRate, 16, 1, 1)
	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(s)
	}
	buf := &audio.IntBuffer{
		Data:           data,
		Format:         &audio.Format{SampleRate: sampleRate, NumChannels: 1},
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return err
	}
	return enc.Close()
}
