package player

// State represents the transport state machine.
//
// The state machine has four states with the following valid transitions:
//
//	┌──────────┐      play       ┌──────────┐
//	│  Stopped │ ───────────────▶│  Playing │◀──────┐
//	└──────────┘                 └──────────┘       │
//	     ▲                          │ │ │      seek │ done
//	     │ stop / end of queue      │ │ └───────▶┌─────────┐
//	     │                    pause │ │ stop     │ Seeking │
//	     │                          ▼ │          └─────────┘
//	     │                       ┌──────────┐       ▲
//	     └───────────────────────│  Paused  │───────┘
//	                  stop       └──────────┘  seek
//
// Valid transitions:
//   - Stopped → Playing (via Play, with at least one decoder enqueued)
//   - Playing → Paused  (via Pause)
//   - Paused  → Playing (via Resume)
//   - Playing/Paused → Seeking → same state (via SeekTo, applied by the
//     decode goroutine)
//   - Playing/Paused → Stopped (via Stop, or when the queue is exhausted
//     and the ring buffer has drained through the render callback)
//
// Invalid transitions are no-ops: pausing while stopped, resuming while
// playing, and so on. Seeking is transient and owned by the decode
// goroutine; transport calls never set it directly.
//
// The state lives in a single atomic so the render callback can observe
// transitions without locks.
type State int32

const (
	Stopped State = iota
	Playing
	Paused
	Seeking
)

// String returns the state name for debugging.
func (s State) String() string {
	switch s {
	case Stopped:
		return "Stopped"
	case Playing:
		return "Playing"
	case Paused:
		return "Paused"
	case Seeking:
		return "Seeking"
	default:
		return "Unknown"
	}
}

// IsActive returns true if playback is active (anything but Stopped).
func (s State) IsActive() bool {
	return s != Stopped
}

// CanPause returns true if the state allows pausing.
func (s State) CanPause() bool {
	return s == Playing
}

// CanResume returns true if the state allows resuming.
func (s State) CanResume() bool {
	return s == Paused
}
