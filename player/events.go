package player

import "github.com/llehouerou/ripple/audio"

// StateChange is emitted when the transport state changes. Transient
// Seeking episodes are not reported; observers see the requesting state
// throughout.
type StateChange struct {
	Previous State
	Current  State
}

// TrackChange is emitted when decoding starts on a new queued decoder,
// including the gapless handoff at a track boundary.
type TrackChange struct {
	Index       int // 0-based position in the enqueue order
	Format      audio.Format
	TotalFrames int64 // -1 when unknown
}

// FormatChange is emitted when a queued decoder's format is incompatible
// with the previous one and the pipeline reconfigured after draining. The
// hosting output should reopen its device for the new format.
type FormatChange struct {
	Previous audio.Format
	Current  audio.Format
}

// PositionChange is emitted after a seek has been applied, with the frame
// the decoder actually landed on.
type PositionChange struct {
	Frame int64
}

// ErrorEvent is emitted for failures discovered on the decode goroutine.
// Errors never cross the render boundary.
type ErrorEvent struct {
	Op  string // "open", "decode", "seek", "close"
	Err error
}
