package source

import (
	"io"
	"os"
)

// File is a Source backed by a file on disk. Closing the file unblocks a
// read pending in another goroutine, which the player relies on to
// interrupt a stalled decode.
type File struct {
	f    *os.File
	size int64
}

var _ Source = (*File)(nil)

// OpenFile opens path as a playback source.
func OpenFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	return &File{f: f, size: info.Size()}, nil
}

func (s *File) Read(p []byte) (int, error) { return s.f.Read(p) }

func (s *File) Seekable() bool { return true }

func (s *File) SeekBytes(offset int64) (int64, error) {
	return s.f.Seek(offset, io.SeekStart)
}

func (s *File) Length() int64 { return s.size }

func (s *File) Close() error { return s.f.Close() }

// Name returns the path the source was opened from.
func (s *File) Name() string { return s.f.Name() }
