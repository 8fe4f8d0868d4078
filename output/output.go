// Package output plays rendered audio through the platform device using
// ebitengine/oto. oto allows exactly one audio context per process, so the
// context is created on the first Open and shared by every Device after
// it; streams in a different format are channel-mapped and resampled into
// the context's format on the pull path.
package output

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/llehouerou/ripple/audio"
)

// Renderer is the pull side of the pipeline. Render fills dst with
// interleaved float32 frames and returns the number of real frames; the
// remainder is silence. It is invoked from the device's audio goroutine.
type Renderer interface {
	Render(dst []float32) int
}

// ErrClosed is returned for operations on a closed device.
var ErrClosed = errors.New("output: device closed")

// Option configures a Device.
type Option func(*options)

type options struct {
	bufferSize time.Duration
}

// WithBufferSize sets the device buffer length. Smaller buffers lower
// latency and raise the underrun risk. Zero keeps the platform default.
// Only the Open that creates the process-wide context applies it.
func WithBufferSize(d time.Duration) Option {
	return func(o *options) { o.bufferSize = d }
}

// The one context oto permits per process, plus the format it was
// created with. Guarded by ctxMu; never torn down once created.
var (
	ctxMu   sync.Mutex
	otoCtx  *oto.Context
	otoRate int
	otoCh   int
)

func sharedContext(format audio.Format, buffer time.Duration) (*oto.Context, int, int, error) {
	ctxMu.Lock()
	defer ctxMu.Unlock()
	if otoCtx == nil {
		c, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   format.SampleRate,
			ChannelCount: format.Channels,
			Format:       oto.FormatFloat32LE,
			BufferSize:   buffer,
		})
		if err != nil {
			return nil, 0, 0, err
		}
		<-ready
		otoCtx, otoRate, otoCh = c, format.SampleRate, format.Channels
	}
	return otoCtx, otoRate, otoCh, nil
}

// Device is an open audio output bound to one Renderer.
type Device struct {
	mu     sync.Mutex
	player *oto.Player
	format audio.Format
	closed bool
}

// Open binds r to the platform audio context and starts pulling from it.
// The first call creates the context for the given format and blocks
// until it is ready; later calls reuse it, converting when the stream
// format differs.
func Open(format audio.Format, r Renderer, opts ...Option) (*Device, error) {
	if !format.Valid() {
		return nil, fmt.Errorf("output: invalid format %s", format)
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	ctx, rate, ch, err := sharedContext(format, o.bufferSize)
	if err != nil {
		return nil, fmt.Errorf("output: %w", err)
	}

	d := &Device{format: format}
	d.player = ctx.NewPlayer(newPullReader(r, format, rate, ch))
	d.player.Play()
	return d, nil
}

// Format returns the stream format the device was opened with.
func (d *Device) Format() audio.Format { return d.format }

// Pause suspends the device without tearing it down.
func (d *Device) Pause() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.closed && d.player.IsPlaying() {
		d.player.Pause()
	}
}

// Resume restarts a paused device.
func (d *Device) Resume() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.closed && !d.player.IsPlaying() {
		d.player.Play()
	}
}

// SetVolume scales the device output; 1 is unity gain.
func (d *Device) SetVolume(v float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if v < 0 {
		v = 0
	}
	if !d.closed {
		d.player.SetVolume(v)
	}
}

// Volume returns the current device gain.
func (d *Device) Volume() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return 0
	}
	return d.player.Volume()
}

// Close stops pulling from the renderer and releases the device's player.
// The shared context stays up for the next Open.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	d.closed = true
	return d.player.Close()
}

// pullReader adapts a Renderer to the io.Reader oto pulls from,
// converting float32 frames to little-endian bytes. When the stream
// format differs from the context's it maps channels and linearly
// resamples, so one process-wide context serves every track. Buffers are
// reused, so the audio path stops allocating once they reach their
// working size.
type pullReader struct {
	r       Renderer
	srcRate int
	srcCh   int
	dstRate int
	dstCh   int

	scratch []float32 // raw frames straight from Render
	win     []float32 // dst-channel frames at the source rate
	out     []float32 // converted frames handed to the device
	cursor  float64   // fractional read position within win
}

func newPullReader(r Renderer, src audio.Format, dstRate, dstCh int) *pullReader {
	return &pullReader{
		r:       r,
		srcRate: src.SampleRate,
		srcCh:   src.Channels,
		dstRate: dstRate,
		dstCh:   dstCh,
	}
}

func (pr *pullReader) Read(p []byte) (int, error) {
	frames := len(p) / (4 * pr.dstCh)
	if frames == 0 {
		return 0, nil
	}

	buf := pr.frames(frames)
	for i, s := range buf {
		binary.LittleEndian.PutUint32(p[4*i:], math.Float32bits(s))
	}
	return len(buf) * 4, nil
}

// frames produces n frames in the context's format.
func (pr *pullReader) frames(n int) []float32 {
	if pr.srcRate == pr.dstRate && pr.srcCh == pr.dstCh {
		need := n * pr.dstCh
		if cap(pr.scratch) < need {
			pr.scratch = make([]float32, need)
		}
		buf := pr.scratch[:need]
		// Render pads short reads with silence, so buf is always fully
		// valid.
		pr.r.Render(buf)
		return buf
	}

	step := float64(pr.srcRate) / float64(pr.dstRate)
	needSrc := int(pr.cursor+step*float64(n)) + 2
	for len(pr.win)/pr.dstCh < needSrc {
		pr.fill()
	}

	if cap(pr.out) < n*pr.dstCh {
		pr.out = make([]float32, n*pr.dstCh)
	}
	out := pr.out[:n*pr.dstCh]

	pos := pr.cursor
	for i := 0; i < n; i++ {
		j := int(pos)
		frac := float32(pos - float64(j))
		a := pr.win[j*pr.dstCh:]
		b := pr.win[(j+1)*pr.dstCh:]
		for c := 0; c < pr.dstCh; c++ {
			out[i*pr.dstCh+c] = a[c] + (b[c]-a[c])*frac
		}
		pos += step
	}

	// Drop fully consumed source frames, keeping the interpolation pair
	// for the next call.
	if drop := int(pos); drop > 0 {
		kept := copy(pr.win, pr.win[drop*pr.dstCh:])
		pr.win = pr.win[:kept]
		pos -= float64(drop)
	}
	pr.cursor = pos
	return out
}

// fill renders one source chunk and appends it to the window in the
// context's channel layout.
func (pr *pullReader) fill() {
	const chunk = 512
	need := chunk * pr.srcCh
	if cap(pr.scratch) < need {
		pr.scratch = make([]float32, need)
	}
	buf := pr.scratch[:need]
	pr.r.Render(buf)

	for f := 0; f < chunk; f++ {
		frame := buf[f*pr.srcCh : (f+1)*pr.srcCh]
		switch {
		case pr.srcCh == pr.dstCh:
			pr.win = append(pr.win, frame...)
		case pr.dstCh == 1:
			var sum float32
			for _, s := range frame {
				sum += s
			}
			pr.win = append(pr.win, sum/float32(pr.srcCh))
		default:
			for c := 0; c < pr.dstCh; c++ {
				sc := c
				if sc >= pr.srcCh {
					sc = pr.srcCh - 1
				}
				pr.win = append(pr.win, frame[sc])
			}
		}
	}
}
