// Package vorbis decodes Ogg/Vorbis streams via jfreymuth/oggvorbis.
// Importing the package registers it for the .ogg and .oga extensions.
package vorbis

import (
	"errors"
	"fmt"
	"io"

	"github.com/jfreymuth/oggvorbis"

	"github.com/llehouerou/ripple/audio"
	"github.com/llehouerou/ripple/decoder"
	"github.com/llehouerou/ripple/source"
)

func init() {
	decoder.Register(New, ".ogg", ".oga")
}

type vorbisDecoder struct {
	src      source.Source
	dec      *oggvorbis.Reader
	channels int
	total    int64
	seekable bool
	closed   bool
}

// New returns a closed Vorbis decoder bound to src.
func New(src source.Source) decoder.Decoder {
	return &vorbisDecoder{src: src, total: -1}
}

func (d *vorbisDecoder) Open() (audio.Format, error) {
	// oggvorbis sniffs for an io.ReadSeeker to enable seeking and the
	// length scan; hand it one when the source supports it.
	var r io.Reader = d.src
	if rs, err := source.ReadSeeker(d.src); err == nil {
		r = rs
		d.seekable = true
	}

	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		d.src.Close()
		return audio.Format{}, fmt.Errorf("vorbis: %w: %w", audio.ErrFormat, err)
	}

	d.dec = dec
	d.channels = dec.Channels()
	if d.seekable {
		d.total = dec.Length()
	}

	return audio.Format{
		SampleRate: dec.SampleRate(),
		Channels:   dec.Channels(),
		BitDepth:   16, // lossy source, notional depth
	}, nil
}

func (d *vorbisDecoder) ReadFrames(dst []float32) (int, error) {
	// Read returns the number of float32 values produced; whole frames
	// are guaranteed because len(dst) is a channel multiple.
	n, err := d.dec.Read(dst)
	if n == 0 {
		if err != nil && !errors.Is(err, io.EOF) {
			return 0, fmt.Errorf("vorbis: %w: %w", audio.ErrDecode, err)
		}
		return 0, io.EOF
	}
	return n / d.channels, nil
}

func (d *vorbisDecoder) SeekFrame(frame int64) (int64, error) {
	if !d.seekable {
		return d.dec.Position(), audio.ErrNotSeekable
	}
	if frame < 0 {
		frame = 0
	}
	if d.total >= 0 && frame > d.total {
		frame = d.total
	}
	if err := d.dec.SetPosition(frame); err != nil {
		return d.dec.Position(), fmt.Errorf("vorbis: seek: %w", err)
	}
	return d.dec.Position(), nil
}

func (d *vorbisDecoder) CurrentFrame() int64 { return d.dec.Position() }
func (d *vorbisDecoder) TotalFrames() int64  { return d.total }
func (d *vorbisDecoder) Seekable() bool      { return d.seekable }

func (d *vorbisDecoder) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	return d.src.Close()
}
