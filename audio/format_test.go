package audio

import (
	"testing"
	"time"
)

func TestFormat_Valid(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		want   bool
	}{
		{"cd quality", Format{SampleRate: 44100, Channels: 2, BitDepth: 16}, true},
		{"mono", Format{SampleRate: 8000, Channels: 1, BitDepth: 8}, true},
		{"zero rate", Format{SampleRate: 0, Channels: 2}, false},
		{"negative rate", Format{SampleRate: -1, Channels: 2}, false},
		{"zero channels", Format{SampleRate: 48000, Channels: 0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.format.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFormat_Equal(t *testing.T) {
	base := Format{SampleRate: 44100, Channels: 2, BitDepth: 16}

	tests := []struct {
		name  string
		other Format
		want  bool
	}{
		{"identical", Format{SampleRate: 44100, Channels: 2, BitDepth: 16}, true},
		{"different bit depth still compatible", Format{SampleRate: 44100, Channels: 2, BitDepth: 24}, true},
		{"different rate", Format{SampleRate: 48000, Channels: 2, BitDepth: 16}, false},
		{"different channels", Format{SampleRate: 44100, Channels: 1, BitDepth: 16}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.Equal(tt.other); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFormat_Duration(t *testing.T) {
	f := Format{SampleRate: 48000, Channels: 2}

	if got := f.Duration(48000); got != time.Second {
		t.Errorf("Duration(48000) = %v, want 1s", got)
	}
	if got := f.Duration(24000); got != 500*time.Millisecond {
		t.Errorf("Duration(24000) = %v, want 500ms", got)
	}
	if got := f.Duration(-1); got != 0 {
		t.Errorf("Duration(-1) = %v, want 0", got)
	}
}

func TestFormat_Frames(t *testing.T) {
	f := Format{SampleRate: 44100, Channels: 2}

	if got := f.Frames(time.Second); got != 44100 {
		t.Errorf("Frames(1s) = %d, want 44100", got)
	}
	if got := f.Frames(0); got != 0 {
		t.Errorf("Frames(0) = %d, want 0", got)
	}
}

func TestFormat_RoundTrip(t *testing.T) {
	f := Format{SampleRate: 44100, Channels: 2}
	const frames = 44100 * 3

	if got := f.Frames(f.Duration(frames)); got != frames {
		t.Errorf("Frames(Duration(%d)) = %d", frames, got)
	}
}
