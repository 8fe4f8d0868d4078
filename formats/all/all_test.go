package all

import (
	"testing"

	"github.com/llehouerou/ripple/decoder"
)

func TestAllExtensionsRegistered(t *testing.T) {
	want := []string{".flac", ".m4a", ".mp3", ".mp4", ".oga", ".ogg", ".opus", ".wav", ".wave"}
	got := decoder.Extensions()

	for _, ext := range want {
		found := false
		for _, g := range got {
			if g == ext {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("extension %s not registered", ext)
		}
	}
}
