package player

import (
	"time"

	"github.com/llehouerou/ripple/audio"
	"github.com/llehouerou/ripple/decoder"
)

// Transport defines the player contract for dependency injection and
// testing. All methods are safe to call from any goroutine.
type Transport interface {
	Enqueue(dec decoder.Decoder)
	Play() error
	Pause()
	Resume()
	Toggle()
	Stop()
	SeekTo(frame int64) error
	State() State
	CurrentFrame() int64
	TotalFrames() int64
	Position() time.Duration
	Duration() time.Duration
	FramesRendered() int64
	Underruns() uint64
	Format() audio.Format
	Subscribe() *Subscription
	Close() error
}

// Verify Player and Mock implement Transport at compile time.
var (
	_ Transport = (*Player)(nil)
	_ Transport = (*Mock)(nil)
)
