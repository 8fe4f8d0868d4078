package player

import "testing"

func TestState_String(t *testing.T) {
	cases := []struct {
		state State
		want  string
	}{
		{Stopped, "Stopped"},
		{Playing, "Playing"},
		{Paused, "Paused"},
		{Seeking, "Seeking"},
		{State(99), "Unknown"},
	}
	for _, tc := range cases {
		if got := tc.state.String(); got != tc.want {
			t.Errorf("State(%d).String() = %q, want %q", tc.state, got, tc.want)
		}
	}
}

func TestState_Predicates(t *testing.T) {
	cases := []struct {
		state     State
		active    bool
		canPause  bool
		canResume bool
	}{
		{Stopped, false, false, false},
		{Playing, true, true, false},
		{Paused, true, false, true},
		{Seeking, true, false, false},
	}
	for _, tc := range cases {
		if got := tc.state.IsActive(); got != tc.active {
			t.Errorf("%s.IsActive() = %v, want %v", tc.state, got, tc.active)
		}
		if got := tc.state.CanPause(); got != tc.canPause {
			t.Errorf("%s.CanPause() = %v, want %v", tc.state, got, tc.canPause)
		}
		if got := tc.state.CanResume(); got != tc.canResume {
			t.Errorf("%s.CanResume() = %v, want %v", tc.state, got, tc.canResume)
		}
	}
}
