package vocal

func clampf(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func maxf(a float32, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func minf(a float32, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

// mapf linearly remaps x from [inMin,inMax] to [outMin,outMax].
func mapf(x, inMin, inMax, outMin, outMax float32) float32 {
	return (x-inMin)*(outMax-outMin)/(inMax-inMin) + outMin
}

// lerpf interpolates between a and b by t in [0,1].
func lerpf(a, b, t float32) float32 {
	return a + t*(b-a)
}
