// Package source defines the byte-level input contract decoders consume,
// with file and in-memory implementations. A decoder owns its Source
// exclusively for the decoder's lifetime; Close is the cancellation path
// that unblocks a pending read best-effort.
package source

import (
	"errors"
	"io"
)

// ErrNotSeekable is returned by SeekBytes on a source that cannot
// reposition.
var ErrNotSeekable = errors.New("source: not seekable")

// Source is a byte-oriented readable, optionally seekable resource.
// Read returning (0, io.EOF) means end of stream; a short read is not an
// error by itself.
type Source interface {
	io.ReadCloser

	// Seekable reports whether SeekBytes can reposition the stream.
	Seekable() bool

	// SeekBytes repositions the stream to an absolute byte offset and
	// returns the offset actually landed on.
	SeekBytes(offset int64) (int64, error)

	// Length returns the total byte length, or -1 when unknown
	// (streamed/non-seekable inputs).
	Length() int64
}

// ReadSeeker adapts a seekable Source to the io.ReadSeeker many codec
// libraries require. It returns ErrNotSeekable for sources that cannot
// reposition.
func ReadSeeker(src Source) (io.ReadSeeker, error) {
	if !src.Seekable() {
		return nil, ErrNotSeekable
	}
	return &readSeeker{src: src}, nil
}

type readSeeker struct {
	src Source
	pos int64
}

func (r *readSeeker) Read(p []byte) (int, error) {
	n, err := r.src.Read(p)
	r.pos += int64(n)
	return n, err
}

func (r *readSeeker) Seek(offset int64, whence int) (int64, error) {
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = r.pos + offset
	case io.SeekEnd:
		length := r.src.Length()
		if length < 0 {
			return 0, ErrNotSeekable
		}
		target = length + offset
	default:
		return 0, errors.New("source: invalid whence")
	}
	if target < 0 {
		return 0, errors.New("source: negative seek offset")
	}
	landed, err := r.src.SeekBytes(target)
	if err != nil {
		return 0, err
	}
	r.pos = landed
	return landed, nil
}
