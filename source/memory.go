package source

import "bytes"

// Memory is a Source over an in-memory byte slice, mainly useful for tests
// and preloaded assets. Always seekable.
type Memory struct {
	r      *bytes.Reader
	closed bool
}

var _ Source = (*Memory)(nil)

// NewMemory wraps data as a source. The slice is not copied.
func NewMemory(data []byte) *Memory {
	return &Memory{r: bytes.NewReader(data)}
}

func (s *Memory) Read(p []byte) (int, error) {
	if s.closed {
		return 0, ErrClosed
	}
	return s.r.Read(p)
}

func (s *Memory) Seekable() bool { return true }

func (s *Memory) SeekBytes(offset int64) (int64, error) {
	if s.closed {
		return 0, ErrClosed
	}
	return s.r.Seek(offset, 0)
}

func (s *Memory) Length() int64 { return s.r.Size() }

func (s *Memory) Close() error {
	s.closed = true
	return nil
}
