// Package wav decodes RIFF/WAVE PCM files via go-audio/wav. Importing the
// package registers it for the .wav extension.
package wav

import (
	"fmt"
	"io"

	gaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"

	"github.com/llehouerou/ripple/audio"
	"github.com/llehouerou/ripple/decoder"
	"github.com/llehouerou/ripple/source"
)

func init() {
	decoder.Register(New, ".wav", ".wave")
}

type wavDecoder struct {
	src    source.Source
	rs     io.ReadSeeker
	dec    *gowav.Decoder
	intBuf *gaudio.IntBuffer
	format audio.Format
	scale  float32
	pos    int64
	total  int64
	closed bool
}

// New returns a closed WAV decoder bound to src. WAV decoding needs a
// seekable source; streamed input fails at Open.
func New(src source.Source) decoder.Decoder {
	return &wavDecoder{src: src, total: -1}
}

func (d *wavDecoder) Open() (audio.Format, error) {
	rs, err := source.ReadSeeker(d.src)
	if err != nil {
		d.src.Close()
		return audio.Format{}, fmt.Errorf("wav: %w", err)
	}
	d.rs = rs

	if err := d.reset(); err != nil {
		d.src.Close()
		return audio.Format{}, err
	}

	d.format = audio.Format{
		SampleRate: int(d.dec.SampleRate),
		Channels:   int(d.dec.NumChans),
		BitDepth:   int(d.dec.BitDepth),
	}
	if !d.format.Valid() {
		d.src.Close()
		return audio.Format{}, fmt.Errorf("wav: %w: %s", audio.ErrFormat, d.format)
	}

	d.scale = float32(gaudio.IntMaxSignedValue(int(d.dec.BitDepth)))
	if bytesPerFrame := d.format.Channels * int(d.dec.BitDepth) / 8; bytesPerFrame > 0 {
		d.total = d.dec.PCMLen() / int64(bytesPerFrame)
	}
	return d.format, nil
}

// reset rewinds the source and forwards a fresh parser to the PCM chunk.
func (d *wavDecoder) reset() error {
	if _, err := d.rs.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("wav: rewind: %w", err)
	}
	dec := gowav.NewDecoder(d.rs)
	if !dec.IsValidFile() {
		return fmt.Errorf("wav: %w: not a RIFF/WAVE file", audio.ErrFormat)
	}
	if err := dec.FwdToPCM(); err != nil {
		return fmt.Errorf("wav: %w: no PCM chunk: %w", audio.ErrFormat, err)
	}
	d.dec = dec
	d.pos = 0
	return nil
}

func (d *wavDecoder) ReadFrames(dst []float32) (int, error) {
	want := len(dst)
	if d.intBuf == nil || cap(d.intBuf.Data) < want {
		d.intBuf = &gaudio.IntBuffer{
			Data: make([]int, want),
			Format: &gaudio.Format{
				NumChannels: d.format.Channels,
				SampleRate:  d.format.SampleRate,
			},
		}
	}
	d.intBuf.Data = d.intBuf.Data[:want]

	n, err := d.dec.PCMBuffer(d.intBuf)
	if err != nil && err != io.EOF {
		return 0, fmt.Errorf("wav: %w: %w", audio.ErrDecode, err)
	}
	if n == 0 {
		return 0, io.EOF
	}

	samples := n - n%d.format.Channels
	for i := range samples {
		dst[i] = float32(d.intBuf.Data[i]) / d.scale
	}
	frames := samples / d.format.Channels
	d.pos += int64(frames)
	return frames, nil
}

// SeekFrame rewinds the parser and skips forward in whole chunks. The PCM
// reader keeps internal byte accounting, so repositioning the source
// underneath it is not an option.
func (d *wavDecoder) SeekFrame(frame int64) (int64, error) {
	if frame < 0 {
		frame = 0
	}
	if d.total >= 0 && frame > d.total {
		frame = d.total
	}
	if err := d.reset(); err != nil {
		return d.pos, err
	}

	const skipFrames = 4096
	skip := &gaudio.IntBuffer{
		Data:   make([]int, skipFrames*d.format.Channels),
		Format: &gaudio.Format{NumChannels: d.format.Channels, SampleRate: d.format.SampleRate},
	}
	for d.pos < frame {
		want := frame - d.pos
		if want > skipFrames {
			want = skipFrames
		}
		skip.Data = skip.Data[:want*int64(d.format.Channels)]
		n, err := d.dec.PCMBuffer(skip)
		if err != nil && err != io.EOF {
			return d.pos, fmt.Errorf("wav: seek: %w", err)
		}
		if n == 0 {
			break // frame beyond actual PCM data
		}
		d.pos += int64(n / d.format.Channels)
	}
	return d.pos, nil
}

func (d *wavDecoder) CurrentFrame() int64 { return d.pos }
func (d *wavDecoder) TotalFrames() int64  { return d.total }
func (d *wavDecoder) Seekable() bool      { return true }

func (d *wavDecoder) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	return d.src.Close()
}
