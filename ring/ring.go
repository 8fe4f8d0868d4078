// Package ring implements a lock-free single-producer/single-consumer ring
// buffer of interleaved audio frames. It decouples the decode goroutine
// (producer) from the real-time render callback (consumer): neither side
// ever blocks, locks or allocates.
//
// Correctness rests on two monotonically increasing atomic counters. The
// producer publishes writePos after copying samples in; the consumer
// publishes readPos after copying samples out. Go's sync/atomic gives the
// required release/acquire ordering, so each side always observes a
// position the other side has fully backed with data.
//
// Thread assignment is strict: Write is producer-only, Read is
// consumer-only, Reset is only legal while neither side is running (the
// player gates it on its seek/stop protocol).
package ring

import "sync/atomic"

// Buffer is an SPSC ring of interleaved float32 frames. Capacity is fixed
// at construction and need not be a power of two.
type Buffer struct {
	// Counters sit on separate cache lines so producer and consumer do
	// not false-share.
	writePos atomic.Uint64
	_        [56]byte
	readPos  atomic.Uint64
	_        [56]byte

	buf      []float32
	capacity uint64 // in frames
	channels int
}

// New creates a buffer holding capacity frames of the given channel count.
// Panics on a non-positive capacity or channel count, which is a
// programming error, not a runtime condition.
func New(capacity, channels int) *Buffer {
	if capacity <= 0 || channels <= 0 {
		panic("ring: capacity and channels must be positive")
	}
	return &Buffer{
		buf:      make([]float32, capacity*channels),
		capacity: uint64(capacity),
		channels: channels,
	}
}

// Capacity returns the buffer size in frames.
func (b *Buffer) Capacity() int { return int(b.capacity) }

// Channels returns the channel count a frame holds.
func (b *Buffer) Channels() int { return b.channels }

// FramesReadable returns a snapshot of the frames available to Read. The
// value may be stale by the time it is acted on; Read re-clamps, so a
// stale snapshot is benign.
func (b *Buffer) FramesReadable() int {
	d := b.writePos.Load() - b.readPos.Load()
	if d > b.capacity {
		return 0
	}
	return int(d)
}

// FramesWritable returns a snapshot of the frames available to Write.
func (b *Buffer) FramesWritable() int {
	used := b.writePos.Load() - b.readPos.Load()
	if used > b.capacity {
		return 0
	}
	return int(b.capacity - used)
}

// Write copies up to len(src)/channels frames into the buffer and returns
// the number of frames written. It never overwrites unread frames and
// never blocks. Producer goroutine only.
func (b *Buffer) Write(src []float32) int {
	w := b.writePos.Load()
	r := b.readPos.Load()

	used := w - r
	if used > b.capacity {
		// Counters crossed: a Reset raced an in-flight call on the
		// consumer side. Write nothing until Read realigns.
		return 0
	}
	free := b.capacity - used
	frames := uint64(len(src)) / uint64(b.channels)
	if frames > free {
		frames = free
	}
	if frames == 0 {
		return 0
	}

	pos := (w % b.capacity) * uint64(b.channels)
	n := frames * uint64(b.channels)
	first := uint64(len(b.buf)) - pos
	if first >= n {
		copy(b.buf[pos:pos+n], src[:n])
	} else {
		copy(b.buf[pos:], src[:first])
		copy(b.buf[:n-first], src[first:n])
	}

	b.writePos.Store(w + frames)
	return int(frames)
}

// Read copies up to len(dst)/channels frames out of the buffer and returns
// the number of frames read. Zero is a valid result meaning underrun; the
// caller supplies silence. Consumer goroutine only.
func (b *Buffer) Read(dst []float32) int {
	r := b.readPos.Load()
	w := b.writePos.Load()

	avail := w - r
	if avail > b.capacity {
		// Counters crossed after a mistimed Reset. Realign to empty
		// rather than reading wrapped garbage; costs one buffer.
		b.readPos.Store(w)
		return 0
	}
	frames := uint64(len(dst)) / uint64(b.channels)
	if frames > avail {
		frames = avail
	}
	if frames == 0 {
		return 0
	}

	pos := (r % b.capacity) * uint64(b.channels)
	n := frames * uint64(b.channels)
	first := uint64(len(b.buf)) - pos
	if first >= n {
		copy(dst[:n], b.buf[pos:pos+n])
	} else {
		copy(dst[:first], b.buf[pos:])
		copy(dst[first:n], b.buf[:n-first])
	}

	b.readPos.Store(r + frames)
	return int(frames)
}

// Reset drops all buffered frames. Only valid while neither producer nor
// consumer is operating; the caller must guarantee that structurally
// (e.g. the render callback is in its silence state). Should a call
// nevertheless race an in-flight Read, the counters may cross; Read and
// Write detect that and re-empty the buffer at the cost of one dropped
// buffer instead of streaming wrapped garbage.
func (b *Buffer) Reset() {
	b.readPos.Store(0)
	b.writePos.Store(0)
}
