// Package opus decodes Ogg/Opus streams via jj11hh/opus with an in-package
// Ogg page demuxer. Importing the package registers it for the .opus
// extension.
//
// Opus always decodes at 48kHz regardless of the input's original rate.
// Granule positions include the encoder's pre-skip, which is stripped from
// every position the adapter reports.
package opus

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	goopus "github.com/jj11hh/opus"

	"github.com/llehouerou/ripple/audio"
	"github.com/llehouerou/ripple/decoder"
	"github.com/llehouerou/ripple/source"
)

func init() {
	decoder.Register(New, ".opus")
}

const (
	fullRate     = 48000
	maxFrameSize = 5760 // 120ms at 48kHz, the largest Opus frame
	seekPreroll  = 3840 // 80ms of pre-roll so the decoder converges after a seek
)

var (
	errNoOpusHead      = errors.New("opus: missing OpusHead packet")
	errUnsupportedOpus = errors.New("opus: unsupported OpusHead version")
)

type opusDecoder struct {
	src source.Source
	pr  *pageReader
	dec *goopus.Decoder

	channels int
	preSkip  int64

	// packets queues the demuxed packets of the current page; pending
	// holds decoded samples that didn't fit the caller's buffer.
	packets   [][]byte
	packetIdx int
	pcm       []float32
	pending   []float32
	offset    int

	granule  int64 // container samples consumed so far
	skipTo   int64 // frames below this granule are dropped, not delivered
	total    int64
	seekable bool
	closed   bool
}

// New returns a closed Opus decoder bound to src.
func New(src source.Source) decoder.Decoder {
	return &opusDecoder{src: src, total: -1}
}

func (d *opusDecoder) Open() (audio.Format, error) {
	var r io.Reader = d.src
	if rs, err := source.ReadSeeker(d.src); err == nil {
		r = rs
		d.seekable = true
	}
	d.pr = newPageReader(r)

	if err := d.readStreamHeaders(); err != nil {
		d.src.Close()
		return audio.Format{}, err
	}

	if d.seekable {
		if err := d.pr.scanLastGranule(); err != nil {
			d.src.Close()
			return audio.Format{}, fmt.Errorf("opus: %w: %w", audio.ErrFormat, err)
		}
		d.total = d.pr.lastGranule - d.preSkip
		if d.total < 0 {
			d.total = 0
		}
	}

	dec, err := goopus.NewDecoder(fullRate, d.channels)
	if err != nil {
		d.src.Close()
		return audio.Format{}, fmt.Errorf("opus: %w", err)
	}
	d.dec = dec
	d.pcm = make([]float32, maxFrameSize*d.channels)
	d.skipTo = d.preSkip

	return audio.Format{SampleRate: fullRate, Channels: d.channels, BitDepth: 16}, nil
}

// readStreamHeaders consumes the OpusHead and OpusTags packets and records
// where the audio pages begin.
func (d *opusDecoder) readStreamHeaders() error {
	first, err := d.pr.readPage()
	if err != nil {
		return fmt.Errorf("opus: %w: %w", audio.ErrFormat, err)
	}
	if len(first.packets) == 0 {
		return fmt.Errorf("opus: %w: empty first page", audio.ErrFormat)
	}
	head := first.packets[0]
	if len(head) < 19 || string(head[:8]) != "OpusHead" {
		return fmt.Errorf("opus: %w", errNoOpusHead)
	}
	if head[8] != 1 {
		return fmt.Errorf("opus: %w: version %d", errUnsupportedOpus, head[8])
	}
	d.channels = int(head[9])
	d.preSkip = int64(binary.LittleEndian.Uint16(head[10:12]))
	if d.channels < 1 {
		return fmt.Errorf("opus: %w: %d channels", audio.ErrFormat, d.channels)
	}

	// The comment header occupies the following page(s); audio starts
	// after the page that completes it.
	for {
		pg, err := d.pr.readPage()
		if err != nil {
			return fmt.Errorf("opus: %w: %w", audio.ErrFormat, err)
		}
		if len(pg.packets) > 0 {
			break
		}
	}
	d.pr.dataStart = d.pr.offset
	return nil
}

func (d *opusDecoder) ReadFrames(dst []float32) (int, error) {
	ch := d.channels
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
			d.granule += int64(n / ch)
			continue
		}

		packet, err := d.nextPacket()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return filled / ch, fmt.Errorf("opus: %w: %w", audio.ErrDecode, err)
		}

		frames, err := d.dec.DecodeFloat32(packet, d.pcm)
		if err != nil {
			continue // damaged packet, the decoder conceals the gap
		}

		// Drop pre-skip and seek pre-roll frames before delivering.
		drop := d.skipTo - d.granule
		if drop > int64(frames) {
			drop = int64(frames)
		}
		if drop < 0 {
			drop = 0
		}
		d.granule += drop
		d.pending = d.pcm[drop*int64(ch) : frames*ch]
		d.offset = 0
	}

	frames := filled / ch
	if frames == 0 {
		return 0, io.EOF
	}
	return frames, nil
}

// nextPacket returns the next audio packet, pulling pages as needed.
func (d *opusDecoder) nextPacket() ([]byte, error) {
	for d.packetIdx >= len(d.packets) {
		pg, err := d.pr.readPage()
		if err != nil {
			return nil, err
		}
		d.packets = pg.packets
		d.packetIdx = 0
	}
	p := d.packets[d.packetIdx]
	d.packetIdx++
	return p, nil
}

func (d *opusDecoder) SeekFrame(frame int64) (int64, error) {
	if !d.seekable {
		return d.CurrentFrame(), audio.ErrNotSeekable
	}
	if frame < 0 {
		frame = 0
	}
	if d.total >= 0 && frame > d.total {
		frame = d.total
	}

	target := frame + d.preSkip
	start := target - seekPreroll
	if start < 0 {
		start = 0
	}
	resume, err := d.pr.seekTo(start)
	if err != nil {
		return d.CurrentFrame(), fmt.Errorf("opus: seek: %w", err)
	}

	d.granule = resume
	d.skipTo = target
	d.pending = nil
	d.offset = 0
	d.packets = nil
	d.packetIdx = 0
	return frame, nil
}

// CurrentFrame reports in output frames: container granule minus the
// pre-skip, looking ahead past any frames queued for dropping.
func (d *opusDecoder) CurrentFrame() int64 {
	g := d.granule
	if d.skipTo > g {
		g = d.skipTo
	}
	if g < d.preSkip {
		return 0
	}
	return g - d.preSkip
}

func (d *opusDecoder) TotalFrames() int64 { return d.total }
func (d *opusDecoder) Seekable() bool     { return d.seekable }

func (d *opusDecoder) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	return d.src.Close()
}
