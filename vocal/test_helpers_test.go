package vocal

import "math"

func measureFundamentalFreq(samples []float32, sampleRate float32) float32 {
	startIdx := len(samples) / 10
	crossings := 0
	for i := startIdx + 1; i < len(samples); i++ {
		if (samples[i-1] < 0 && samples[i] >= 0) || (samples[i-1] >= 0 && samples[i] < 0) {
			crossings++
		}
	}
	if crossings == 0 {
		return 0
	}
	duration := float32(len(samples)-startIdx) / sampleRate
	return float32(crossings) / (2.0 * duration)
}

func windowRMS(samples []float32) float64 {
	var sum float64
	for _, s := range samples {
		v := float64(s)
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(samples)))
}

func findPeakNear(samples []float32, sampleRate int, centerHz float64, spanHz float64) float64 {
	n := len(samples)
	minBin := int((centerHz - spanHz) * float64(n) / float64(sampleRate))
	maxBin := int((centerHz + spanHz) * float64(n) / float64(sampleRate))
	if minBin < 1 {
		minBin = 1
	}
	nyquist := n / 2
	if maxBin > nyquist-1 {
		maxBin = nyquist - 1
	}
	if minBin >= maxBin {
		return 0
	}

	bestBin := minBin
	bestMag := 0.0
	for k := minBin; k <= maxBin; k++ {
		mag := dftBinMagnitude(samples, k)
		if mag > bestMag {
			bestMag = mag
			bestBin = k
		}
	}
	return float64(bestBin) * float64(sampleRate) / float64(n)
}

func dftBinMagnitude(samples []float32, bin int) float64 {
	n := len(samples)
	var re float64
	var im float64
	for i := 0; i < n; i++ {
		phase := -2.0 * math.Pi * float64(bin*i) / float64(n)
		x := float64(samples[i])
		re += x * math.Cos(phase)
		im += x * math.Sin(phase)
	}
	return math.Hypot(re, im)
}
