package effects

import (
	"fmt"
	"os"

	dspconv "github.com/cwbudde/algo-dsp/dsp/conv"
	dspresample "github.com/cwbudde/algo-dsp/dsp/resample"
	"github.com/cwbudde/wav"
)

const cabinetPartSize = 128

// Cabinet colors the signal with a speaker impulse response using
// partitioned overlap-add convolution.
type Cabinet struct {
	sampleRate int
	irLen      int

	ola *dspconv.StreamingOverlapAddT[float32, complex64]
	out []float32
}

// NewCabinet creates a cabinet simulator with a passthrough response.
func NewCabinet(sampleRate int) *Cabinet {
	c := &Cabinet{sampleRate: sampleRate}
	c.SetIR([]float32{1.0})
	return c
}

// SetIR installs a new impulse response. An empty response falls back to
// passthrough.
func (c *Cabinet) SetIR(ir []float32) {
	if len(ir) == 0 {
		ir = []float32{1.0}
	}
	ola, err := dspconv.NewStreamingOverlapAdd32(ir, cabinetPartSize)
	if err != nil {
		return
	}
	c.ola = ola
	c.irLen = len(ir)
	c.out = make([]float32, cabinetPartSize)
	c.Reset()
}

// LoadIRWAV loads a speaker response from a WAV file, folding stereo files
// to mono and resampling to the cabinet rate.
func (c *Cabinet) LoadIRWAV(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return fmt.Errorf("invalid wav file: %s", path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return err
	}
	if buf == nil || buf.Format == nil || buf.Format.NumChannels < 1 {
		return fmt.Errorf("invalid wav buffer: %s", path)
	}

	numCh := buf.Format.NumChannels
	srcRate := buf.Format.SampleRate
	if srcRate <= 0 {
		return fmt.Errorf("invalid wav sample-rate: %d", srcRate)
	}
	frames := len(buf.Data) / numCh
	if frames == 0 {
		return fmt.Errorf("empty wav data: %s", path)
	}

	ir := make([]float32, frames)
	for i := 0; i < frames; i++ {
		var sum float32
		for ch := 0; ch < numCh; ch++ {
			sum += buf.Data[i*numCh+ch]
		}
		ir[i] = sum / float32(numCh)
	}

	ir, err = c.resampleIfNeeded(ir, srcRate)
	if err != nil {
		return err
	}
	c.SetIR(ir)
	return nil
}

// Process convolves input with the response and returns a buffer of the
// same length. Tail beyond the input length stays in the overlap history.
func (c *Cabinet) Process(input []float32) []float32 {
	output := make([]float32, len(input))
	if len(input) == 0 {
		return output
	}

	processed := 0
	for processed < len(input) {
		blockEnd := processed + cabinetPartSize
		if blockEnd > len(input) {
			blockEnd = len(input)
		}
		blockLen := blockEnd - processed
		block := input[processed:blockEnd]

		// The streaming convolver wants whole partitions; pad the last one.
		if blockLen < cabinetPartSize {
			padded := make([]float32, cabinetPartSize)
			copy(padded, block)
			block = padded
		}

		if err := c.ola.ProcessBlockTo(c.out, block); err != nil {
			copy(output[processed:blockEnd], input[processed:blockEnd])
			processed = blockEnd
			continue
		}
		copy(output[processed:blockEnd], c.out[:blockLen])
		processed = blockEnd
	}
	return output
}

// Reset clears the overlap history.
func (c *Cabinet) Reset() {
	if c.ola != nil {
		c.ola.Reset()
	}
}

func (c *Cabinet) resampleIfNeeded(in []float32, inRate int) ([]float32, error) {
	if inRate == c.sampleRate {
		return in, nil
	}
	r, err := dspresample.NewForRates(
		float64(inRate),
		float64(c.sampleRate),
		dspresample.WithQuality(dspresample.QualityBest),
	)
	if err != nil {
		return nil, err
	}

	in64 := make([]float64, len(in))
	for i, v := range in {
		in64[i] = float64(v)
	}
	out64 := r.Process(in64)
	out := make([]float32, len(out64))
	for i, v := range out64 {
		out[i] = float32(v)
	}
	return out, nil
}
