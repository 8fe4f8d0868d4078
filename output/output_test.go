package output

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/llehouerou/ripple/audio"
)

// countingRenderer fills every sample with its running index.
type countingRenderer struct {
	next float32
}

func (r *countingRenderer) Render(dst []float32) int {
	for i := range dst {
		dst[i] = r.next
		r.next++
	}
	return len(dst) / 2
}

func stereo(rate int) audio.Format {
	return audio.Format{SampleRate: rate, Channels: 2, BitDepth: 16}
}

func mono(rate int) audio.Format {
	return audio.Format{SampleRate: rate, Channels: 1, BitDepth: 16}
}

func TestPullReader_ConvertsFloat32LE(t *testing.T) {
	pr := newPullReader(&countingRenderer{}, stereo(44100), 44100, 2)

	p := make([]byte, 16*4)
	n, err := pr.Read(p)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if n != len(p) {
		t.Fatalf("Read = %d bytes, want %d", n, len(p))
	}

	for i := range 16 {
		bits := binary.LittleEndian.Uint32(p[4*i:])
		got := math.Float32frombits(bits)
		if got != float32(i) {
			t.Errorf("sample %d = %v, want %d", i, got, i)
		}
	}
}

func TestPullReader_WholeFramesOnly(t *testing.T) {
	pr := newPullReader(&countingRenderer{}, stereo(44100), 44100, 2)

	// 9 bytes is barely one 8-byte stereo frame; the trailing byte must
	// stay untouched.
	p := make([]byte, 9)
	p[8] = 0xAB
	n, err := pr.Read(p)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if n != 8 {
		t.Errorf("Read = %d bytes, want 8", n)
	}
	if p[8] != 0xAB {
		t.Error("byte beyond the last whole frame was modified")
	}
}

func TestPullReader_TooSmallBuffer(t *testing.T) {
	pr := newPullReader(&countingRenderer{}, stereo(44100), 44100, 2)

	n, err := pr.Read(make([]byte, 7))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if n != 0 {
		t.Errorf("Read = %d bytes, want 0", n)
	}
}

func TestPullReader_UpmixMonoToStereo(t *testing.T) {
	pr := newPullReader(&countingRenderer{}, mono(44100), 44100, 2)

	got := pr.frames(4)
	want := []float32{0, 0, 1, 1, 2, 2, 3, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sample %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestPullReader_DownmixStereoToMono(t *testing.T) {
	pr := newPullReader(&countingRenderer{}, stereo(44100), 44100, 1)

	got := pr.frames(3)
	want := []float32{0.5, 2.5, 4.5}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("frame %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestPullReader_ResampleHalves(t *testing.T) {
	pr := newPullReader(&countingRenderer{}, mono(88200), 44100, 1)

	got := pr.frames(5)
	for i, v := range got {
		if v != float32(2*i) {
			t.Fatalf("frame %d = %v, want %v", i, v, 2*i)
		}
	}
}

func TestPullReader_ResampleDoubles(t *testing.T) {
	pr := newPullReader(&countingRenderer{}, mono(22050), 44100, 1)

	got := pr.frames(6)
	want := []float32{0, 0.5, 1, 1.5, 2, 2.5}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("frame %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestPullReader_ResampleContinuityAcrossReads(t *testing.T) {
	whole := newPullReader(&countingRenderer{}, mono(22050), 44100, 1)
	split := newPullReader(&countingRenderer{}, mono(22050), 44100, 1)

	want := append([]float32(nil), whole.frames(8)...)

	var got []float32
	got = append(got, split.frames(3)...)
	got = append(got, split.frames(5)...)

	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("frame %d = %v, want %v (split read diverged)", i, got[i], want[i])
		}
	}
}
