package source

import (
	"errors"
	"io"
)

// ErrClosed is returned for reads on a closed source.
var ErrClosed = errors.New("source: closed")

// Stream wraps an arbitrary reader as a non-seekable Source with unknown
// length, e.g. a network body or a pipe. TotalFrames of a decoder opened
// on a Stream is unknown and seeking reports ErrNotSeekable.
type Stream struct {
	rc io.ReadCloser
}

var _ Source = (*Stream)(nil)

// NewStream wraps rc. If rc is only an io.Reader, use io.NopCloser.
func NewStream(rc io.ReadCloser) *Stream {
	return &Stream{rc: rc}
}

func (s *Stream) Read(p []byte) (int, error) { return s.rc.Read(p) }

func (s *Stream) Seekable() bool { return false }

func (s *Stream) SeekBytes(int64) (int64, error) { return 0, ErrNotSeekable }

func (s *Stream) Length() int64 { return -1 }

func (s *Stream) Close() error { return s.rc.Close() }
