package decoder

import (
	"errors"
	"testing"

	"github.com/llehouerou/ripple/audio"
	"github.com/llehouerou/ripple/source"
)

// fakeDecoder records whether Open/Close ran.
type fakeDecoder struct {
	src     source.Source
	openErr error
	opened  bool
	closed  bool
}

func (d *fakeDecoder) Open() (audio.Format, error) {
	if d.openErr != nil {
		d.src.Close()
		return audio.Format{}, d.openErr
	}
	d.opened = true
	return audio.Format{SampleRate: 44100, Channels: 2, BitDepth: 16}, nil
}

func (d *fakeDecoder) ReadFrames([]float32) (int, error) { return 0, nil }
func (d *fakeDecoder) SeekFrame(int64) (int64, error)    { return 0, audio.ErrNotSeekable }
func (d *fakeDecoder) CurrentFrame() int64               { return 0 }
func (d *fakeDecoder) TotalFrames() int64                { return -1 }
func (d *fakeDecoder) Seekable() bool                    { return false }
func (d *fakeDecoder) Close() error                      { d.closed = true; return nil }

func TestRegistry_RegisterAndLookup(t *testing.T) {
	r := NewRegistry()
	r.Register(func(src source.Source) Decoder { return &fakeDecoder{src: src} }, ".mp3", "MP3")

	for _, ext := range []string{".mp3", "mp3", ".MP3"} {
		if _, ok := r.Lookup(ext); !ok {
			t.Errorf("Lookup(%q) not found", ext)
		}
	}
	if _, ok := r.Lookup(".wav"); ok {
		t.Error("Lookup(.wav) should not be found")
	}
}

func TestRegistry_Extensions(t *testing.T) {
	r := NewRegistry()
	f := func(src source.Source) Decoder { return &fakeDecoder{src: src} }
	r.Register(f, ".wav")
	r.Register(f, ".mp3")

	got := r.Extensions()
	want := []string{".mp3", ".wav"}
	if len(got) != len(want) {
		t.Fatalf("Extensions() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Extensions()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRegistry_Open(t *testing.T) {
	r := NewRegistry()
	var created *fakeDecoder
	r.Register(func(src source.Source) Decoder {
		created = &fakeDecoder{src: src}
		return created
	}, ".mp3")

	dec, format, err := r.Open(source.NewMemory([]byte("data")), "song.mp3")
	if err != nil {
		t.Fatal(err)
	}
	if dec != created || !created.opened {
		t.Error("Open did not open the created decoder")
	}
	if format.SampleRate != 44100 {
		t.Errorf("format = %v", format)
	}
}

func TestRegistry_OpenUnknownExtension(t *testing.T) {
	r := NewRegistry()
	src := source.NewMemory([]byte("data"))

	_, _, err := r.Open(src, "song.xyz")
	if !errors.Is(err, audio.ErrUnsupported) {
		t.Fatalf("err = %v, want ErrUnsupported", err)
	}
	// Source must be released on failure.
	if _, err := src.Read(make([]byte, 1)); !errors.Is(err, source.ErrClosed) {
		t.Error("source left open after failed Open")
	}
}

func TestRegistry_OpenFailurePropagates(t *testing.T) {
	r := NewRegistry()
	r.Register(func(src source.Source) Decoder {
		return &fakeDecoder{src: src, openErr: audio.ErrFormat}
	}, ".mp3")

	_, _, err := r.Open(source.NewMemory(nil), "bad.mp3")
	if !errors.Is(err, audio.ErrFormat) {
		t.Fatalf("err = %v, want ErrFormat", err)
	}
}

func TestRegistry_LaterRegistrationWins(t *testing.T) {
	r := NewRegistry()
	first := func(src source.Source) Decoder { return &fakeDecoder{src: src} }
	second := func(src source.Source) Decoder { return &fakeDecoder{src: src, openErr: audio.ErrFormat} }
	r.Register(first, ".mp3")
	r.Register(second, ".mp3")

	_, _, err := r.Open(source.NewMemory(nil), "a.mp3")
	if !errors.Is(err, audio.ErrFormat) {
		t.Error("override registration was not used")
	}
}
