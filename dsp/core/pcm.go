package core

// PCM16Scale is the full-scale divisor between signed 16-bit samples and
// the [-1, 1) float domain.
const PCM16Scale = 32768.0

// Int16ToFloat maps a signed 16-bit sample into [-1, 1).
func Int16ToFloat(s int16) float64 {
	return float64(s) / PCM16Scale
}

// FloatToInt16 scales x to 16-bit full scale, clamps and truncates towards
// zero. +1.0 maps to 32767, -1.0 to -32768.
func FloatToInt16(x float64) int16 {
	v := x * PCM16Scale
	if v >= 32767 {
		return 32767
	}

	if v <= -32768 {
		return -32768
	}

	if v != v {
		return 0
	}

	return int16(v)
}

// Deinterleave splits interleaved stereo 16-bit frames into planar float
// channels. It converts min(len(src)/2, len(left), len(right)) frames and
// returns that count.
func Deinterleave(left, right []float64, src []int16) int {
	n := len(src) / 2
	n = min(n, len(left), len(right))

	for i := range n {
		left[i] = Int16ToFloat(src[2*i])
		right[i] = Int16ToFloat(src[2*i+1])
	}

	return n
}

// Interleave writes planar float channels back into interleaved stereo
// 16-bit frames and returns the number of frames written.
func Interleave(dst []int16, left, right []float64) int {
	n := len(dst) / 2
	n = min(n, len(left), len(right))

	for i := range n {
		dst[2*i] = FloatToInt16(left[i])
		dst[2*i+1] = FloatToInt16(right[i])
	}

	return n
}
