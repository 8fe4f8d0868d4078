package player

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/llehouerou/ripple/audio"
	"github.com/llehouerou/ripple/decoder"
	"github.com/llehouerou/ripple/ring"
)

var (
	// ErrEmptyQueue is returned by Play when nothing has been enqueued.
	ErrEmptyQueue = errors.New("player: queue is empty")

	// ErrNotPlaying is returned for seeks while stopped.
	ErrNotPlaying = errors.New("player: not playing")
)

// Options tune the pipeline. The defaults suit local file playback at
// 44.1/48 kHz; larger rings buy tolerance for slow sources at the cost of
// latency on seeks and stops.
type Options struct {
	// RingFrames is the ring buffer capacity in frames. Sized so
	// worst-case decode stalls (file I/O, codec spikes) fit before an
	// underrun reaches the render callback.
	RingFrames int

	// ChunkFrames is how many frames the decode goroutine asks a decoder
	// for per iteration. Small chunks keep transport commands responsive.
	ChunkFrames int

	// Backoff is how long the decode goroutine sleeps when the ring is
	// full or it is waiting on the render side.
	Backoff time.Duration
}

// Option mutates Options.
type Option func(*Options)

// WithRingFrames sets the ring buffer capacity in frames.
func WithRingFrames(frames int) Option {
	return func(o *Options) { o.RingFrames = frames }
}

// WithChunkFrames sets the per-iteration decode request size.
func WithChunkFrames(frames int) Option {
	return func(o *Options) { o.ChunkFrames = frames }
}

// WithBackoff sets the decode goroutine's wait when the ring is full.
func WithBackoff(d time.Duration) Option {
	return func(o *Options) { o.Backoff = d }
}

// session holds the channels of one decode-goroutine lifetime. A new
// session is created each time playback starts from Stopped.
type session struct {
	stop     chan struct{}
	wake     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func (s *session) requestStop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *session) stopped() bool {
	select {
	case <-s.stop:
		return true
	default:
		return false
	}
}

// Player coordinates a decode goroutine with a real-time render callback
// through a lock-free ring buffer. Transport controls may be called from
// any goroutine; they publish atomic state the decode goroutine applies at
// its own pace. The render callback reads atomics and the ring only,
// never a lock.
type Player struct {
	opts Options

	state       atomic.Int32  // State
	seekReturn  atomic.Int32  // State a completing seek restores
	pendingSeek atomic.Int64  // target frame, -1 when none
	underruns   atomic.Uint64 // short renders while producing
	rendered    atomic.Int64  // frames delivered to the render path, monotonic across tracks
	current     atomic.Int64  // active decoder position, decode-side snapshot
	total       atomic.Int64  // active decoder length, -1 unknown
	producing   atomic.Bool   // decode side expects to write more frames

	// Seek/stop discard protocol: decode bumps drainGen and waits for the
	// render callback to echo it into drainAck from its silence path
	// before resetting the ring.
	drainGen atomic.Uint64
	drainAck atomic.Uint64

	ringBuf atomic.Pointer[ring.Buffer]
	format  atomic.Pointer[audio.Format]

	mu         sync.Mutex // guards queue, active, session, trackIndex
	queue      []decoder.Decoder
	active     decoder.Decoder
	sess       *session
	trackIndex int // 0-based index of the active decoder in enqueue order

	subsMu sync.Mutex
	subs   []*Subscription
	closed bool
}

// New creates a stopped player with an empty queue.
func New(opts ...Option) *Player {
	o := Options{
		RingFrames:  8192,
		ChunkFrames: 1024,
		Backoff:     2 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(&o)
	}

	p := &Player{opts: o}
	p.pendingSeek.Store(-1)
	p.total.Store(-1)
	p.trackIndex = -1
	return p
}

// Enqueue appends an unopened decoder to the playback queue. Decoders are
// opened lazily on the decode goroutine, so Enqueue never blocks on I/O.
// Enqueueing while playing feeds the gapless handoff.
func (p *Player) Enqueue(dec decoder.Decoder) {
	p.mu.Lock()
	p.queue = append(p.queue, dec)
	sess := p.sess
	p.mu.Unlock()

	if sess != nil {
		nudge(sess.wake)
	}
}

// Play starts playback of the queued decoders, or resumes when paused.
// Returns ErrEmptyQueue when stopped with nothing enqueued.
func (p *Player) Play() error {
	p.mu.Lock()
	if p.sess != nil {
		p.mu.Unlock()
		p.Resume()
		return nil
	}
	if len(p.queue) == 0 {
		p.mu.Unlock()
		return ErrEmptyQueue
	}

	sess := &session{
		stop: make(chan struct{}),
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	p.sess = sess
	p.state.Store(int32(Playing))
	p.pendingSeek.Store(-1)
	p.mu.Unlock()

	go p.decodeLoop(sess)

	p.publishState(Stopped, Playing)
	return nil
}

// Pause suspends production and mutes the render path. Ring contents are
// retained; Resume picks up exactly where playback left off. A pause that
// lands while a seek is in flight overrides the state the seek would
// restore, so it is never lost.
func (p *Player) Pause() {
	for {
		switch State(p.state.Load()) {
		case Playing:
			if p.state.CompareAndSwap(int32(Playing), int32(Paused)) {
				p.publishState(Playing, Paused)
				return
			}
		case Seeking:
			if State(p.seekReturn.Load()) == Paused {
				return
			}
			if p.state.CompareAndSwap(int32(Seeking), int32(Paused)) {
				p.publishState(Playing, Paused)
				return
			}
			// The seek completed between load and swap; retry.
		default:
			return
		}
	}
}

// Resume continues paused playback.
func (p *Player) Resume() {
	for {
		switch State(p.state.Load()) {
		case Paused:
			if p.state.CompareAndSwap(int32(Paused), int32(Playing)) {
				p.wakeDecode()
				p.publishState(Paused, Playing)
				return
			}
		case Seeking:
			if State(p.seekReturn.Load()) == Playing {
				return
			}
			if p.state.CompareAndSwap(int32(Seeking), int32(Playing)) {
				p.wakeDecode()
				p.publishState(Paused, Playing)
				return
			}
		default:
			return
		}
	}
}

func (p *Player) wakeDecode() {
	p.mu.Lock()
	sess := p.sess
	p.mu.Unlock()
	if sess != nil {
		nudge(sess.wake)
	}
}

// Toggle switches between Playing and Paused; no-op while stopped.
func (p *Player) Toggle() {
	switch p.State() {
	case Playing:
		p.Pause()
	case Paused:
		p.Resume()
	case Stopped, Seeking:
		// Nothing to toggle
	}
}

// SeekTo requests repositioning of the active decoder to the given frame.
// The request is applied asynchronously by the decode goroutine; the
// landed position is reported through PositionChanged. Returns
// audio.ErrNotSeekable for non-seekable decoders without altering the
// position, and ErrNotPlaying while stopped.
func (p *Player) SeekTo(frame int64) error {
	p.mu.Lock()
	active := p.active
	sess := p.sess
	p.mu.Unlock()

	if sess == nil || active == nil {
		return ErrNotPlaying
	}
	if !active.Seekable() {
		return audio.ErrNotSeekable
	}
	if frame < 0 {
		frame = 0
	}

	p.pendingSeek.Store(frame)
	nudge(sess.wake)
	return nil
}

// Stop halts playback, resets the ring buffer and closes the active and
// all queued decoders. It blocks until the decode goroutine has wound
// down. Safe to call in any state.
func (p *Player) Stop() {
	p.mu.Lock()
	sess := p.sess
	active := p.active
	p.mu.Unlock()

	if sess == nil {
		return
	}
	sess.requestStop()
	nudge(sess.wake)
	if active != nil {
		// Best-effort cancellation: closing the decoder unblocks a read
		// stalled on source I/O so the decode goroutine can wind down
		// within bounded time. Close is a no-op if the loop got
		// there first.
		active.Close()
	}
	<-sess.done
}

// Close stops playback and tears down all subscriptions.
func (p *Player) Close() error {
	p.Stop()

	p.subsMu.Lock()
	if !p.closed {
		p.closed = true
		for _, s := range p.subs {
			s.close()
		}
		p.subs = nil
	}
	p.subsMu.Unlock()
	return nil
}

// State returns the current transport state. Seeking is internal and
// reported as the state that requested the seek.
func (p *Player) State() State {
	s := State(p.state.Load())
	if s == Seeking {
		return State(p.seekReturn.Load())
	}
	return s
}

// CurrentFrame returns the active decoder's position. Decode-side
// accounting: frames already buffered but not yet rendered are included.
func (p *Player) CurrentFrame() int64 { return p.current.Load() }

// TotalFrames returns the active decoder's length in frames, -1 unknown.
func (p *Player) TotalFrames() int64 { return p.total.Load() }

// Position returns CurrentFrame as wall-clock time in the active format.
func (p *Player) Position() time.Duration {
	return p.Format().Duration(p.CurrentFrame())
}

// Duration returns TotalFrames as wall-clock time, 0 when unknown.
func (p *Player) Duration() time.Duration {
	t := p.TotalFrames()
	if t < 0 {
		return 0
	}
	return p.Format().Duration(t)
}

// FramesRendered returns the total frames delivered to the render path.
// Monotonically increasing across gapless track boundaries.
func (p *Player) FramesRendered() int64 { return p.rendered.Load() }

// Underruns returns how many render calls found fewer frames buffered
// than requested while the decode side was still producing.
func (p *Player) Underruns() uint64 { return p.underruns.Load() }

// Format returns the format of the active stream, zero Format when none.
func (p *Player) Format() audio.Format {
	if f := p.format.Load(); f != nil {
		return *f
	}
	return audio.Format{}
}

// Subscribe returns a new event subscription. The caller should drain the
// channels; slow subscribers lose events instead of blocking playback.
func (p *Player) Subscribe() *Subscription {
	s := newSubscription()
	p.subsMu.Lock()
	if p.closed {
		p.subsMu.Unlock()
		s.close()
		return s
	}
	p.subs = append(p.subs, s)
	p.subsMu.Unlock()
	return s
}

func (p *Player) publish(send func(*Subscription)) {
	p.subsMu.Lock()
	subs := p.subs
	p.subsMu.Unlock()
	for _, s := range subs {
		send(s)
	}
}

func (p *Player) publishState(prev, cur State) {
	p.publish(func(s *Subscription) { s.sendState(StateChange{Previous: prev, Current: cur}) })
}

func (p *Player) publishError(op string, err error) {
	p.publish(func(s *Subscription) { s.sendError(ErrorEvent{Op: op, Err: err}) })
}

// nudge delivers a wake-up without ever blocking.
func nudge(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
