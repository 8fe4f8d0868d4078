// Package flac decodes FLAC streams via mewkiz/flac. Importing the
// package registers it for the .flac extension.
//
// All channels are interleaved into the output; downmixing is the
// player's business, not the decoder's.
package flac

import (
	"errors"
	"fmt"
	"io"

	goflac "github.com/mewkiz/flac"

	"github.com/llehouerou/ripple/audio"
	"github.com/llehouerou/ripple/decoder"
	"github.com/llehouerou/ripple/source"
)

func init() {
	decoder.Register(New, ".flac")
}

type flacDecoder struct {
	src    source.Source
	stream *goflac.Stream
	format audio.Format
	scale  float32

	// pending holds decoded samples from the last parsed frame that
	// didn't fit into the caller's buffer.
	pending []float32
	offset  int

	pos      int64
	total    int64
	seekable bool
	closed   bool
}

// New returns a closed FLAC decoder bound to src.
func New(src source.Source) decoder.Decoder {
	return &flacDecoder{src: src, total: -1}
}

func (d *flacDecoder) Open() (audio.Format, error) {
	var stream *goflac.Stream
	var err error

	if rs, rsErr := source.ReadSeeker(d.src); rsErr == nil {
		stream, err = goflac.NewSeek(rs)
		d.seekable = err == nil
	} else {
		stream, err = goflac.New(d.src)
	}
	if err != nil {
		d.src.Close()
		return audio.Format{}, fmt.Errorf("flac: %w: %w", audio.ErrFormat, err)
	}

	info := stream.Info
	d.stream = stream
	d.format = audio.Format{
		SampleRate: int(info.SampleRate),
		Channels:   int(info.NChannels),
		BitDepth:   int(info.BitsPerSample),
	}
	if !d.format.Valid() {
		d.src.Close()
		return audio.Format{}, fmt.Errorf("flac: %w: %s", audio.ErrFormat, d.format)
	}
	d.scale = float32(int64(1) << (info.BitsPerSample - 1))
	if info.NSamples > 0 {
		d.total = int64(info.NSamples)
	}
	return d.format, nil
}

func (d *flacDecoder) ReadFrames(dst []float32) (int, error) {
	ch := d.format.Channels
	filled := 0

	for filled < len(dst) {
		if d.offset < len(d.pending) {
			n := copy(dst[filled:], d.pending[d.offset:])
			n -= n % ch // only whole frames cross the boundary
			if n == 0 {
				break
			}
			d.offset += n
			filled += n
			continue
		}

		frame, err := d.stream.ParseNext()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return filled / ch, fmt.Errorf("flac: %w: %w", audio.ErrDecode, err)
		}

		// One subframe per channel; interleave.
		samples := len(frame.Subframes[0].Samples)
		need := samples * ch
		if cap(d.pending) < need {
			d.pending = make([]float32, need)
		}
		d.pending = d.pending[:need]
		for c := 0; c < ch; c++ {
			sub := frame.Subframes[c].Samples
			for i := 0; i < samples; i++ {
				d.pending[i*ch+c] = float32(sub[i]) / d.scale
			}
		}
		d.offset = 0
	}

	frames := filled / ch
	d.pos += int64(frames)
	if frames == 0 {
		return 0, io.EOF
	}
	return frames, nil
}

func (d *flacDecoder) SeekFrame(frame int64) (int64, error) {
	if !d.seekable {
		return d.pos, audio.ErrNotSeekable
	}
	if frame < 0 {
		frame = 0
	}
	if d.total >= 0 && frame > d.total {
		frame = d.total
	}
	landed, err := d.stream.Seek(uint64(frame))
	if err != nil {
		return d.pos, fmt.Errorf("flac: seek: %w", err)
	}
	d.pending = d.pending[:0]
	d.offset = 0
	d.pos = int64(landed)
	return d.pos, nil
}

func (d *flacDecoder) CurrentFrame() int64 { return d.pos }
func (d *flacDecoder) TotalFrames() int64  { return d.total }
func (d *flacDecoder) Seekable() bool      { return d.seekable }

func (d *flacDecoder) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	if d.stream != nil {
		d.stream.Close()
	}
	return d.src.Close()
}
