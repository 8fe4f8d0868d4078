package audio

import "encoding/binary"

// DecodeInt16LE converts little-endian 16-bit PCM bytes into float32
// samples in [-1, 1]. It converts as many whole samples as fit in dst and
// returns the number converted.
func DecodeInt16LE(dst []float32, src []byte) int {
	n := min(len(dst), len(src)/2)
	for i := range n {
		v := int16(binary.LittleEndian.Uint16(src[2*i:]))
		dst[i] = float32(v) / 32768.0
	}
	return n
}

// DecodeInt24LE converts little-endian signed 24-bit PCM bytes into
// float32 samples in [-1, 1].
func DecodeInt24LE(dst []float32, src []byte) int {
	n := min(len(dst), len(src)/3)
	for i := range n {
		v := int32(src[3*i]) | int32(src[3*i+1])<<8 | int32(src[3*i+2])<<16
		if v&0x800000 != 0 {
			v |= ^0xFFFFFF // sign extend
		}
		dst[i] = float32(v) / 8388608.0
	}
	return n
}

// Int16ToFloat32 converts int16 samples in place into dst.
func Int16ToFloat32(dst []float32, src []int16) int {
	n := min(len(dst), len(src))
	for i := range n {
		dst[i] = float32(src[i]) / 32768.0
	}
	return n
}

// Silence zeroes dst.
func Silence(dst []float32) {
	for i := range dst {
		dst[i] = 0
	}
}
