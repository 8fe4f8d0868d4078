// Package player implements the streaming pipeline that coordinates a
// background decode goroutine with a real-time render callback.
//
// The two sides meet only in a lock-free SPSC ring buffer. The decode
// goroutine owns the decoder queue, pulls PCM from the active decoder and
// fills the ring; the render callback drains the ring and never blocks,
// locks, allocates or errors; on underrun it emits silence and counts it.
// Transport controls (Play, Pause, Stop, SeekTo) may come from any
// goroutine; they publish atomic state that the decode goroutine applies
// between chunks.
//
// Consecutive queued decoders with compatible formats hand off gaplessly:
// the next decoder is opened before the previous one's tail has drained,
// so the render callback sees one uninterrupted frame sequence.
package player
