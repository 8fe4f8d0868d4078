package player

import (
	"time"

	"github.com/llehouerou/ripple/audio"
	"github.com/llehouerou/ripple/decoder"
)

// Mock is a test double for Transport.
type Mock struct {
	state     State
	current   int64
	total     int64
	rendered  int64
	underruns uint64
	format    audio.Format
	playErr   error
	enqueued  []decoder.Decoder
	seekCalls []int64
	subs      []*Subscription
}

// NewMock creates a new mock transport for testing.
func NewMock() *Mock {
	return &Mock{state: Stopped, total: -1}
}

func (m *Mock) Enqueue(dec decoder.Decoder) { m.enqueued = append(m.enqueued, dec) }

func (m *Mock) Play() error {
	if m.playErr != nil {
		return m.playErr
	}
	if len(m.enqueued) == 0 {
		return ErrEmptyQueue
	}
	m.state = Playing
	return nil
}

func (m *Mock) Pause() {
	if m.state == Playing {
		m.state = Paused
	}
}

func (m *Mock) Resume() {
	if m.state == Paused {
		m.state = Playing
	}
}

func (m *Mock) Toggle() {
	switch m.state {
	case Playing:
		m.Pause()
	case Paused:
		m.Resume()
	case Stopped, Seeking:
		// Nothing to toggle
	}
}

func (m *Mock) Stop() { m.state = Stopped }

func (m *Mock) SeekTo(frame int64) error {
	if m.state == Stopped {
		return ErrNotPlaying
	}
	m.seekCalls = append(m.seekCalls, frame)
	m.current = frame
	return nil
}

func (m *Mock) State() State { return m.state }
func (m *Mock) CurrentFrame() int64 { return m.current }
func (m *Mock) TotalFrames() int64 { return m.total }
func (m *Mock) FramesRendered() int64 { return m.rendered }
func (m *Mock) Underruns() uint64 { return m.underruns }
func (m *Mock) Format() audio.Format { return m.format }

func (m *Mock) Position() time.Duration { return m.format.Duration(m.current) }

func (m *Mock) Duration() time.Duration {
	if m.total < 0 {
		return 0
	}
	return m.format.Duration(m.total)
}

func (m *Mock) Subscribe() *Subscription {
	s := newSubscription()
	m.subs = append(m.subs, s)
	return s
}

func (m *Mock) Close() error {
	for _, s := range m.subs {
		s.close()
	}
	m.subs = nil
	return nil
}

// Test helpers

func (m *Mock) SetState(s State) { m.state = s }
func (m *Mock) SetPlayError(err error) { m.playErr = err }
func (m *Mock) SetFormat(f audio.Format) { m.format = f }
func (m *Mock) SetPosition(frame int64) { m.current = frame }
func (m *Mock) SetTotalFrames(frames int64) { m.total = frames }
func (m *Mock) Enqueued() []decoder.Decoder { return m.enqueued }
func (m *Mock) SeekCalls() []int64 { return m.seekCalls }

// SimulateStateChange pushes a state change to all subscribers.
func (m *Mock) SimulateStateChange(prev, cur State) {
	m.state = cur
	for _, s := range m.subs {
		s.sendState(StateChange{Previous: prev, Current: cur})
	}
}
