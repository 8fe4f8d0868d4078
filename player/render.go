package player

import "github.com/llehouerou/ripple/audio"

// Render is the real-time consumer side of the pipeline. The audio output
// invokes it for every device buffer; it must therefore never block, lock,
// allocate or perform I/O, and it always fills all of dst: buffered
// frames when playing, silence otherwise.
//
// It returns the number of real frames delivered. A short count while the
// decode side is producing is an underrun: the tail is zeroed, the
// underrun counter increments and the callback returns immediately.
//
// Render must be invoked from a single goroutine (the device callback);
// it is the ring buffer's only consumer.
func (p *Player) Render(dst []float32) int {
	if State(p.state.Load()) != Playing || p.pendingSeek.Load() >= 0 {
		// Silence path: acknowledge any pending discard so the decode
		// goroutine knows the ring is untouched from here on.
		p.drainAck.Store(p.drainGen.Load())
		audio.Silence(dst)
		return 0
	}

	rb := p.ringBuf.Load()
	if rb == nil {
		p.drainAck.Store(p.drainGen.Load())
		audio.Silence(dst)
		return 0
	}

	n := rb.Read(dst)
	samples := n * rb.Channels()
	if samples < len(dst) {
		audio.Silence(dst[samples:])
		if p.producing.Load() {
			p.underruns.Add(1)
		}
	}
	if n > 0 {
		p.rendered.Add(int64(n))
	}
	return n
}
