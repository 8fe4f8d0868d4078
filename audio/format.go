package audio

import (
	"fmt"
	"time"
)

// Format describes the PCM layout a decoder produces. It is fixed once a
// decoder has been opened; every frame the decoder emits conforms to it.
//
// The engine exchanges samples as interleaved float32 in [-1, 1] regardless
// of the source encoding; BitDepth and Float describe the source material
// (16-bit FLAC, 24-bit ALAC, ...) for observers and device configuration.
type Format struct {
	SampleRate int  // samples per second per channel, > 0
	Channels   int  // >= 1
	BitDepth   int  // bits per sample in the source encoding
	Float      bool // source samples are floating point
}

// Valid reports whether the format can describe a playable stream.
func (f Format) Valid() bool {
	return f.SampleRate > 0 && f.Channels >= 1
}

// Equal reports whether two formats can share a buffer and output device
// without reconfiguration. BitDepth is intentionally ignored: the engine
// interchange is float32, so only rate and channel layout matter for
// gapless compatibility.
func (f Format) Equal(other Format) bool {
	return f.SampleRate == other.SampleRate && f.Channels == other.Channels
}

// Duration converts a frame count to wall-clock time.
func (f Format) Duration(frames int64) time.Duration {
	if f.SampleRate <= 0 || frames < 0 {
		return 0
	}
	return time.Duration(frames) * time.Second / time.Duration(f.SampleRate)
}

// Frames converts a duration to the nearest frame count.
func (f Format) Frames(d time.Duration) int64 {
	if f.SampleRate <= 0 || d < 0 {
		return 0
	}
	return int64(d) * int64(f.SampleRate) / int64(time.Second)
}

func (f Format) String() string {
	enc := "int"
	if f.Float {
		enc = "float"
	}
	return fmt.Sprintf("%dHz/%dch/%dbit %s", f.SampleRate, f.Channels, f.BitDepth, enc)
}
