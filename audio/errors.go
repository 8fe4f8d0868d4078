package audio

import "errors"

// Error taxonomy shared by decoders and the player. Adapters wrap the
// underlying library error with one of these sentinels so callers can
// classify failures with errors.Is.
var (
	// ErrFormat means the header or magic bytes did not match the format
	// family the decoder handles.
	ErrFormat = errors.New("audio: invalid format")

	// ErrUnsupported means the stream belongs to the right family but uses
	// a variant the adapter does not handle.
	ErrUnsupported = errors.New("audio: unsupported format variant")

	// ErrDecode means the codec library reported corruption mid-stream.
	ErrDecode = errors.New("audio: decode fault")

	// ErrNotSeekable is returned for seek requests on a decoder or source
	// that cannot reposition.
	ErrNotSeekable = errors.New("audio: not seekable")

	// ErrClosed is returned for operations on a closed decoder.
	ErrClosed = errors.New("audio: decoder closed")
)
