package fitcommon

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	dspresample "github.com/cwbudde/algo-dsp/dsp/resample"
	"github.com/cwbudde/wav"
	"github.com/go-audio/audio"
)

// ReadWAVMono loads a WAV file and folds the channels down to mono. It
// returns normalized samples and the file sample rate.
func ReadWAVMono(path string) ([]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, 0, fmt.Errorf("invalid wav file: %s", path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, err
	}
	if buf == nil || buf.Format == nil || buf.Format.NumChannels < 1 {
		return nil, 0, fmt.Errorf("invalid wav buffer: %s", path)
	}

	ch := buf.Format.NumChannels
	frames := len(buf.Data) / ch
	out := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < ch; c++ {
			sum += float64(buf.Data[i*ch+c])
		}
		out[i] = sum / float64(ch)
	}
	return out, buf.Format.SampleRate, nil
}

// ResampleIfNeeded converts in from fromRate to toRate, or returns it
// untouched when the rates already match.
func ResampleIfNeeded(in []float64, fromRate int, toRate int) ([]float64, error) {
	if fromRate == toRate {
		return in, nil
	}
	r, err := dspresample.NewForRates(
		float64(fromRate),
		float64(toRate),
		dspresample.WithQuality(dspresample.QualityBest),
	)
	if err != nil {
		return nil, err
	}
	return r.Process(in), nil
}

// WriteMonoWAV writes 16-bit mono PCM, creating parent directories as
// needed.
func WriteMonoWAV(path string, data []float32, sampleRate int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	defer enc.Close()

	buf := &audio.Float32Buffer{
		Format: &audio.Format{
			SampleRate:  sampleRate,
			NumChannels: 1,
		},
		Data:           data,
		SourceBitDepth: 16,
	}
	return enc.Write(buf)
}

// Mono32To64 widens a render buffer for the float64 analysis and resample
// paths.
func Mono32To64(in []float32) []float64 {
	out := make([]float64, len(in))
	for i, s := range in {
		out[i] = float64(s)
	}
	return out
}

// Mono64To32 narrows a processed buffer back to the WAV writer's format.
func Mono64To32(in []float64) []float32 {
	out := make([]float32, len(in))
	for i, s := range in {
		out[i] = float32(s)
	}
	return out
}

// MonoRMS returns the root mean square level of a buffer.
func MonoRMS(data []float32) float64 {
	if len(data) == 0 {
		return 0
	}
	var sum float64
	for _, s := range data {
		v := float64(s)
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(data)))
}
