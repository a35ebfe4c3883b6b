// Package audio converts between the 8-bit mu-law telephony encoding and
// 16-bit signed linear PCM. The transform is stateless and preserves sample
// count; no resampling happens here.
package audio

const (
	// SampleRate is the telephony sample rate in Hz.
	SampleRate = 8000

	// FrameMs is the duration of one inbound media frame.
	FrameMs = 20

	// mu-law bias added during encoding, removed during decoding.
	bias = 0x84
)

// decodeTable maps every mu-law byte to its linear PCM value. Built once at
// init so per-sample decoding is a single lookup.
var decodeTable [256]int16

func init() {
	for i := 0; i < 256; i++ {
		decodeTable[i] = decodeByte(byte(i))
	}
}

// decodeByte reconstructs a linear sample from one mu-law byte: invert the
// bits, split into 1 sign + 3 exponent + 4 mantissa, rebuild the magnitude
// around the bias, negate on sign.
func decodeByte(u byte) int16 {
	u = ^u
	sign := u & 0x80
	exp := (u >> 4) & 0x07
	mant := u & 0x0F
	value := (int(mant) << 3) + bias
	value <<= uint(exp)
	value -= bias
	if sign != 0 {
		return int16(-value)
	}
	return int16(value)
}

// DecodeMulaw expands mu-law bytes to 16-bit linear PCM, one sample per byte.
func DecodeMulaw(data []byte) []int16 {
	pcm := make([]int16, len(data))
	for i, b := range data {
		pcm[i] = decodeTable[b]
	}
	return pcm
}

// MulawToLinear decodes a single mu-law byte.
func MulawToLinear(u byte) int16 {
	return decodeTable[u]
}
