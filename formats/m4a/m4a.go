// Package m4a decodes MP4/M4A containers via llehouerou/go-m4a, handling
// both AAC (through go-faad2) and ALAC (through llehouerou/alac) tracks.
// Importing the package registers it for the .m4a and .mp4 extensions.
package m4a

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/llehouerou/alac"
	faad2 "github.com/llehouerou/go-faad2"
	m4a "github.com/llehouerou/go-m4a"

	"github.com/llehouerou/ripple/audio"
	"github.com/llehouerou/ripple/decoder"
	"github.com/llehouerou/ripple/source"
)

func init() {
	decoder.Register(New, ".m4a", ".mp4")
}

type m4aDecoder struct {
	src       source.Source
	container *m4a.Reader
	codec     m4a.CodecType
	format    audio.Format

	aacDec  *faad2.Decoder
	alacDec *alac.Alac

	// pending holds converted samples from the last container sample
	// that didn't fit into the caller's buffer.
	pending []float32
	offset  int

	sampleIdx int
	pos       int64
	total     int64
	closed    bool
}

// New returns a closed M4A decoder bound to src. The container index
// requires a seekable source; streamed input fails at Open.
func New(src source.Source) decoder.Decoder {
	return &m4aDecoder{src: src, total: -1}
}

func (d *m4aDecoder) Open() (audio.Format, error) {
	rs, err := source.ReadSeeker(d.src)
	if err != nil {
		d.src.Close()
		return audio.Format{}, fmt.Errorf("m4a: %w", err)
	}

	container, err := m4a.Open(rs)
	if err != nil {
		d.src.Close()
		return audio.Format{}, fmt.Errorf("m4a: %w: %w", audio.ErrFormat, err)
	}

	sampleRate := int(container.SampleRate())
	channels := int(container.Channels())
	bitDepth := 16
	if container.Codec() == m4a.CodecALAC && container.SampleSize() == 24 {
		bitDepth = 24
	}

	d.container = container
	d.codec = container.Codec()
	d.format = audio.Format{SampleRate: sampleRate, Channels: channels, BitDepth: bitDepth}
	if !d.format.Valid() {
		d.src.Close()
		return audio.Format{}, fmt.Errorf("m4a: %w: %s", audio.ErrFormat, d.format)
	}
	d.total = int64(container.Duration().Seconds() * float64(sampleRate))

	switch d.codec {
	case m4a.CodecAAC:
		dec, err := faad2.NewDecoder(context.Background())
		if err != nil {
			d.src.Close()
			return audio.Format{}, fmt.Errorf("m4a: aac: %w", err)
		}
		if err := dec.Init(context.Background(), container.CodecConfig()); err != nil {
			dec.Close(context.Background())
			d.src.Close()
			return audio.Format{}, fmt.Errorf("m4a: aac init: %w", err)
		}
		d.aacDec = dec

	case m4a.CodecALAC:
		dec, err := alac.NewWithConfig(alac.Config{
			SampleRate:  sampleRate,
			SampleSize:  int(container.SampleSize()),
			NumChannels: channels,
			FrameSize:   4096, // ALAC default
		})
		if err != nil {
			d.src.Close()
			return audio.Format{}, fmt.Errorf("m4a: alac: %w", err)
		}
		d.alacDec = dec

	case m4a.CodecUnknown:
		d.src.Close()
		return audio.Format{}, fmt.Errorf("m4a: %w: unknown codec in container", audio.ErrUnsupported)
	}

	return d.format, nil
}

func (d *m4aDecoder) ReadFrames(dst []float32) (int, error) {
	ch := d.format.Channels
	filled := 0

	for filled < len(dst) {
		if d.offset < len(d.pending) {
			n := copy(dst[filled:], d.pending[d.offset:])
			n -= n % ch
			if n == 0 {
				break
			}
			d.offset += n
			filled += n
			continue
		}

		if d.sampleIdx >= d.container.SampleCount() {
			break
		}

		data, err := d.container.ReadSample(d.sampleIdx)
		if err != nil {
			return filled / ch, fmt.Errorf("m4a: %w: %w", audio.ErrDecode, err)
		}
		d.sampleIdx++

		if err := d.decodeSample(data); err != nil {
			return filled / ch, err
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

// decodeSample runs one container sample through the codec and refills
// d.pending with interleaved float32.
func (d *m4aDecoder) decodeSample(data []byte) error {
	switch d.codec {
	case m4a.CodecAAC:
		pcm, err := d.aacDec.Decode(context.Background(), data)
		if err != nil {
			return fmt.Errorf("m4a: %w: %w", audio.ErrDecode, err)
		}
		if cap(d.pending) < len(pcm) {
			d.pending = make([]float32, len(pcm))
		}
		d.pending = d.pending[:len(pcm)]
		audio.Int16ToFloat32(d.pending, pcm)

	case m4a.CodecALAC:
		raw := d.alacDec.Decode(data)
		if d.format.BitDepth == 24 {
			if cap(d.pending) < len(raw)/3 {
				d.pending = make([]float32, len(raw)/3)
			}
			d.pending = d.pending[:len(raw)/3]
			audio.DecodeInt24LE(d.pending, raw)
		} else {
			if cap(d.pending) < len(raw)/2 {
				d.pending = make([]float32, len(raw)/2)
			}
			d.pending = d.pending[:len(raw)/2]
			audio.DecodeInt16LE(d.pending, raw)
		}

	case m4a.CodecUnknown:
		return fmt.Errorf("m4a: %w: unknown codec", audio.ErrUnsupported)
	}
	return nil
}

func (d *m4aDecoder) SeekFrame(frame int64) (int64, error) {
	if frame < 0 {
		frame = 0
	}
	if frame > d.total {
		frame = d.total
	}

	target := time.Duration(float64(frame) / float64(d.format.SampleRate) * float64(time.Second))
	d.sampleIdx = d.container.SeekToTime(target)
	d.pending = d.pending[:0]
	d.offset = 0

	landedAt := d.container.SampleTime(d.sampleIdx)
	d.pos = int64(landedAt.Seconds() * float64(d.format.SampleRate))
	return d.pos, nil
}

func (d *m4aDecoder) CurrentFrame() int64 { return d.pos }
func (d *m4aDecoder) TotalFrames() int64  { return d.total }
func (d *m4aDecoder) Seekable() bool      { return true }

func (d *m4aDecoder) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	if d.aacDec != nil {
		d.aacDec.Close(context.Background())
	}
	return d.src.Close()
}
