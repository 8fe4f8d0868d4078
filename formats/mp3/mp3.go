// Package mp3 decodes MPEG-1/2 Layer III streams via llehouerou/go-mp3.
// Importing the package registers it for the .mp3 extension.
package mp3

import (
	"errors"
	"fmt"
	"io"

	gomp3 "github.com/llehouerou/go-mp3"

	"github.com/llehouerou/ripple/audio"
	"github.com/llehouerou/ripple/decoder"
	"github.com/llehouerou/ripple/source"
)

func init() {
	decoder.Register(New, ".mp3")
}

// bytesPerFrame is fixed: go-mp3 always outputs 16-bit stereo.
const bytesPerFrame = 4

// pcmStream is the decoded 16-bit stereo byte stream go-mp3 exposes,
// narrowed so tests can stand in for the codec.
type pcmStream interface {
	io.Reader
	SampleRate() int
	SampleCount() int64
	SamplePosition() int64
	SeekToSample(int64) error
}

type mp3Decoder struct {
	src     source.Source
	dec     pcmStream
	readBuf []byte
	pos     int64
	total   int64
}

// New returns a closed MP3 decoder bound to src.
func New(src source.Source) decoder.Decoder {
	return &mp3Decoder{src: src, total: -1}
}

func (d *mp3Decoder) Open() (audio.Format, error) {
	dec, err := gomp3.NewDecoder(d.src)
	if err != nil {
		d.src.Close()
		return audio.Format{}, fmt.Errorf("mp3: %w: %w", audio.ErrFormat, err)
	}
	if dec.SampleRate() == 0 {
		d.src.Close()
		return audio.Format{}, fmt.Errorf("mp3: %w: zero sample rate", audio.ErrFormat)
	}

	d.dec = dec
	if d.src.Seekable() {
		if count := dec.SampleCount(); count > 0 {
			d.total = count
		}
	}

	return audio.Format{
		SampleRate: dec.SampleRate(),
		Channels:   2, // go-mp3 always outputs stereo
		BitDepth:   16,
	}, nil
}

func (d *mp3Decoder) ReadFrames(dst []float32) (int, error) {
	frames := len(dst) / 2
	need := frames * bytesPerFrame
	if cap(d.readBuf) < need {
		d.readBuf = make([]byte, need)
	}

	// A short tail is end of stream, not a fault. Anything else comes
	// from the underlying reader and passes through unclassified.
	n, err := io.ReadFull(d.dec, d.readBuf[:need])
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return 0, fmt.Errorf("mp3: read: %w", err)
	}

	samples := audio.DecodeInt16LE(dst, d.readBuf[:n-n%bytesPerFrame])
	got := samples / 2
	d.pos += int64(got)
	if got == 0 {
		return 0, io.EOF
	}
	return got, nil
}

func (d *mp3Decoder) SeekFrame(frame int64) (int64, error) {
	if !d.Seekable() {
		return d.pos, audio.ErrNotSeekable
	}
	if frame < 0 {
		frame = 0
	}
	if d.total >= 0 && frame > d.total {
		frame = d.total
	}
	if err := d.dec.SeekToSample(frame); err != nil {
		return d.pos, fmt.Errorf("mp3: seek: %w", err)
	}
	d.pos = d.dec.SamplePosition()
	return d.pos, nil
}

func (d *mp3Decoder) CurrentFrame() int64 { return d.pos }
func (d *mp3Decoder) TotalFrames() int64  { return d.total }
func (d *mp3Decoder) Seekable() bool      { return d.src.Seekable() }

func (d *mp3Decoder) Close() error {
	return d.src.Close()
}
