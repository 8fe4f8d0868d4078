// Package decoder defines the abstract contract every format adapter
// implements, and a registry that maps file extensions to adapter
// factories. The player consumes Decoders; it never knows which codec
// library sits behind one.
package decoder

import (
	"github.com/llehouerou/ripple/audio"
	"github.com/llehouerou/ripple/source"
)

// Decoder turns a byte source into a lazy sequence of PCM frames in one
// declared format.
//
// Lifecycle: a Decoder is created closed and bound to its source. Open
// validates the stream and determines the format; a failed Open leaves the
// decoder closed with the source released. After Open, ReadFrames produces
// frames until end of stream; Close releases the source and is safe to
// call more than once.
//
// A Decoder owns its source exclusively and is not safe for concurrent
// use; the player serializes all calls on the decode goroutine.
type Decoder interface {
	// Open validates the stream and returns its format. Errors wrap
	// audio.ErrFormat (bad header), audio.ErrUnsupported (unhandled
	// variant) or pass the underlying I/O error through.
	Open() (audio.Format, error)

	// ReadFrames fills dst (interleaved float32, len a multiple of the
	// channel count) and returns the number of whole frames produced.
	// Fewer frames than requested is not an error; (0, nil) or
	// (0, io.EOF) means true end of stream.
	ReadFrames(dst []float32) (int, error)

	// SeekFrame repositions decoding to the given frame and returns the
	// frame actually landed on, which may differ for compressed formats
	// without exact sample indices. Returns audio.ErrNotSeekable when
	// Seekable is false, leaving the position untouched.
	SeekFrame(frame int64) (int64, error)

	// CurrentFrame returns the next frame ReadFrames will produce.
	// Monotonically non-decreasing except across SeekFrame.
	CurrentFrame() int64

	// TotalFrames returns the stream length in frames, or -1 when
	// unknown (non-seekable or streamed sources).
	TotalFrames() int64

	// Seekable reports whether SeekFrame is usable.
	Seekable() bool

	// Close releases the source and codec state. No-op after the first
	// call. As a best-effort cancellation path, Close may also be called
	// while another goroutine is blocked in ReadFrames; implementations
	// must tolerate that and let the pending read fail out.
	Close() error
}

// Factory creates a closed Decoder bound to src.
type Factory func(src source.Source) Decoder
