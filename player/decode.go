package player

import (
	"errors"
	"io"
	"time"

	"github.com/llehouerou/ripple/decoder"
	"github.com/llehouerou/ripple/ring"
)

// decodeLoop is the producer side of the pipeline. It owns the active
// decoder and the queue head, observes transport atomics between chunks,
// and is the only code allowed to reset the ring buffer (after the render
// callback has acknowledged it is in its silence state).
func (p *Player) decodeLoop(sess *session) {
	defer close(sess.done)

	var scratch []float32

	for {
		if sess.stopped() {
			p.shutdown(sess)
			return
		}

		if target := p.pendingSeek.Load(); target >= 0 {
			p.applySeek(sess, target)
			continue
		}

		if State(p.state.Load()) == Paused {
			p.waitWake(sess)
			continue
		}

		p.mu.Lock()
		active := p.active
		p.mu.Unlock()

		if active == nil {
			if !p.advance(sess) {
				if p.finish(sess) {
					return
				}
				continue
			}
			continue
		}

		rb := p.ringBuf.Load()
		writable := rb.FramesWritable()
		if writable == 0 {
			p.idle(sess)
			continue
		}

		want := p.opts.ChunkFrames
		if want > writable {
			want = writable
		}
		need := want * rb.Channels()
		if cap(scratch) < need {
			scratch = make([]float32, need)
		}

		n, err := active.ReadFrames(scratch[:need])
		if sess.stopped() {
			// Stop may have force-closed the decoder to unblock the
			// read; whatever came back is not worth reporting.
			continue
		}
		if n > 0 {
			p.writeRing(sess, rb, scratch[:n*rb.Channels()])
			p.current.Store(active.CurrentFrame())
		}

		switch {
		case err != nil && !errors.Is(err, io.EOF):
			// Mid-stream fault: report, drop this decoder and move on to
			// the next queued one, never leaving the ring inconsistent.
			p.publishError("decode", err)
			p.retire(active)
		case n == 0:
			// True end of stream: hand off to the next queued decoder
			// while the ring still holds this one's tail.
			p.retire(active)
		}
	}
}

// advance opens the next queued decoder and installs it as active,
// reconfiguring the ring when the format is incompatible with the
// previous stream. Returns false when the queue is exhausted.
func (p *Player) advance(sess *session) bool {
	for {
		p.mu.Lock()
		if len(p.queue) == 0 {
			p.mu.Unlock()
			return false
		}
		next := p.queue[0]
		p.queue = p.queue[1:]
		p.trackIndex++
		idx := p.trackIndex
		p.mu.Unlock()

		format, err := next.Open()
		if err != nil {
			p.publishError("open", err)
			next.Close()
			continue
		}

		prev := p.format.Load()
		rb := p.ringBuf.Load()
		if rb == nil || prev == nil || !prev.Equal(format) {
			if rb != nil && prev != nil {
				// Incompatible follow-up: let the old stream's tail
				// drain through the render callback, then rebuild the
				// ring for the new layout. An audible but explicit
				// reconfiguration, never a splice.
				p.waitDrained(sess, rb)
				if sess.stopped() {
					p.mu.Lock()
					p.queue = append([]decoder.Decoder{next}, p.queue...)
					p.mu.Unlock()
					return true // outer loop performs the shutdown
				}
				p.publish(func(s *Subscription) {
					s.sendFormat(FormatChange{Previous: *prev, Current: format})
				})
			}
			rb = ring.New(p.opts.RingFrames, format.Channels)
			p.ringBuf.Store(rb)
		}
		f := format
		p.format.Store(&f)

		p.mu.Lock()
		p.active = next
		p.mu.Unlock()

		p.total.Store(next.TotalFrames())
		p.current.Store(next.CurrentFrame())
		p.producing.Store(true)

		p.publish(func(s *Subscription) {
			s.sendTrack(TrackChange{Index: idx, Format: format, TotalFrames: next.TotalFrames()})
		})
		return true
	}
}

// retire closes the active decoder and clears it so the next iteration
// advances the queue.
func (p *Player) retire(dec decoder.Decoder) {
	p.producing.Store(false)
	if err := dec.Close(); err != nil {
		p.publishError("close", err)
	}
	p.mu.Lock()
	p.active = nil
	p.mu.Unlock()
}

// writeRing pushes src into the ring, waiting out a full buffer. A stop or
// seek request abandons the remainder; those frames are stale anyway.
func (p *Player) writeRing(sess *session, rb *ring.Buffer, src []float32) {
	ch := rb.Channels()
	for len(src) > 0 {
		if sess.stopped() || p.pendingSeek.Load() >= 0 {
			return
		}
		n := rb.Write(src)
		if n == 0 {
			if State(p.state.Load()) == Paused {
				p.waitWake(sess)
				continue
			}
			p.idle(sess)
			continue
		}
		src = src[n*ch:]
	}
}

// applySeek performs a pending seek request: silence the render path,
// wait for its acknowledgment, discard the stale buffer, reposition the
// decoder and restore the requesting state.
func (p *Player) applySeek(sess *session, target int64) {
	p.mu.Lock()
	active := p.active
	p.mu.Unlock()

	if active == nil || !active.Seekable() {
		p.pendingSeek.Store(-1)
		return
	}

	// Enter Seeking via CAS so a Pause or Resume landing between the load
	// and the store is observed instead of overwritten.
	var prev State
	for {
		prev = State(p.state.Load())
		if prev == Seeking {
			prev = Playing
		}
		p.seekReturn.Store(int32(prev))
		if p.state.CompareAndSwap(int32(prev), int32(Seeking)) {
			break
		}
	}

	p.awaitRenderAck()
	if rb := p.ringBuf.Load(); rb != nil {
		rb.Reset()
	}

	landed, err := active.SeekFrame(target)
	p.pendingSeek.Store(-1)
	if err != nil {
		p.publishError("seek", err)
	} else {
		p.current.Store(landed)
		p.publish(func(s *Subscription) { s.sendPosition(PositionChange{Frame: landed}) })
	}

	p.state.CompareAndSwap(int32(Seeking), int32(prev))
}

// finish handles end-of-queue: stop producing, let the ring drain through
// the render callback, then transition to Stopped. Returns false when a
// stop request or a freshly enqueued track arrives during the drain, in
// which case the caller keeps looping instead of exiting.
func (p *Player) finish(sess *session) bool {
	p.producing.Store(false)

	if rb := p.ringBuf.Load(); rb != nil {
		for rb.FramesReadable() > 0 {
			if sess.stopped() || p.queuedTracks() > 0 {
				return false
			}
			if State(p.state.Load()) == Paused {
				p.waitWake(sess)
				continue
			}
			p.idle(sess)
		}
	}
	if sess.stopped() || p.queuedTracks() > 0 {
		return false
	}

	prev := p.visibleState()
	p.state.Store(int32(Stopped))
	p.pendingSeek.Store(-1)

	p.mu.Lock()
	p.sess = nil
	p.mu.Unlock()

	if prev != Stopped {
		p.publishState(prev, Stopped)
	}
	return true
}

func (p *Player) queuedTracks() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

// shutdown handles an explicit Stop: silence the render path, reset the
// ring and release every decoder.
func (p *Player) shutdown(sess *session) {
	prev := p.visibleState()
	p.state.Store(int32(Stopped))
	p.producing.Store(false)

	p.awaitRenderAck()
	if rb := p.ringBuf.Load(); rb != nil {
		rb.Reset()
	}

	p.mu.Lock()
	active := p.active
	queue := p.queue
	p.active = nil
	p.queue = nil
	p.sess = nil
	p.mu.Unlock()

	if active != nil {
		if err := active.Close(); err != nil {
			p.publishError("close", err)
		}
	}
	for _, dec := range queue {
		dec.Close()
	}

	p.pendingSeek.Store(-1)
	p.current.Store(0)
	p.total.Store(-1)

	if prev != Stopped {
		p.publishState(prev, Stopped)
	}
}

// waitDrained blocks until the render side has consumed everything
// buffered, used before a format reconfiguration.
func (p *Player) waitDrained(sess *session, rb *ring.Buffer) {
	for rb.FramesReadable() > 0 && !sess.stopped() {
		if State(p.state.Load()) == Paused {
			p.waitWake(sess)
			continue
		}
		p.idle(sess)
	}
}

// awaitRenderAck waits, bounded, for the render callback to acknowledge it
// has observed the silence-inducing state and is no longer touching the
// ring. The bound covers hosts that stopped invoking the callback
// entirely, in which case there is no concurrent reader to wait for.
func (p *Player) awaitRenderAck() {
	gen := p.drainGen.Add(1)
	deadline := time.Now().Add(50 * time.Millisecond)
	for p.drainAck.Load() < gen && time.Now().Before(deadline) {
		time.Sleep(200 * time.Microsecond)
	}
}

// visibleState maps the internal Seeking state to the state observers see.
func (p *Player) visibleState() State {
	s := State(p.state.Load())
	if s == Seeking {
		return State(p.seekReturn.Load())
	}
	return s
}

// idle sleeps one backoff interval, interruptible by stop or wake.
func (p *Player) idle(sess *session) {
	select {
	case <-sess.stop:
	case <-sess.wake:
	case <-time.After(p.opts.Backoff):
	}
}

// waitWake blocks until a transport control nudges the loop or stop is
// requested.
func (p *Player) waitWake(sess *session) {
	select {
	case <-sess.stop:
	case <-sess.wake:
	}
}
