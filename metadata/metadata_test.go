package metadata

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/llehouerou/ripple/formats/all"
)

// writeTestWAV writes an untagged 16-bit mono PCM file and returns its
// path.
func writeTestWAV(t *testing.T, frames, sampleRate int) string {
	t.Helper()

	var buf bytes.Buffer
	dataLen := frames * 2
	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(36+dataLen))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*2))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(2))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(dataLen))
	buf.Write(make([]byte, dataLen))

	path := filepath.Join(t.TempDir(), "tone.wav")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestReadTrackInfo_UntaggedFallsBackToFilename(t *testing.T) {
	path := writeTestWAV(t, 100, 8000)

	info, err := ReadTrackInfo(path)
	require.NoError(t, err)
	assert.Equal(t, "tone.wav", info.Title)
	assert.Empty(t, info.Artist)
}

func TestReadTrackInfo_MissingFile(t *testing.T) {
	_, err := ReadTrackInfo(filepath.Join(t.TempDir(), "nope.mp3"))
	assert.Error(t, err)
}

func TestReadFullInfo_Duration(t *testing.T) {
	path := writeTestWAV(t, 8000, 8000) // exactly one second

	info, err := ReadFullInfo(path)
	require.NoError(t, err)
	assert.Equal(t, time.Second, info.Duration)
}

func TestCoverArt_NoneEmbedded(t *testing.T) {
	path := writeTestWAV(t, 10, 8000)

	data, mime, err := CoverArt(path)
	// dhowden/tag may or may not parse a bare WAV; either nil art or an
	// unrecognized-format error is acceptable, embedded art is not.
	if err == nil {
		assert.Nil(t, data)
		assert.Empty(t, mime)
	}
}

func TestIsAudioFile(t *testing.T) {
	assert.True(t, IsAudioFile("/music/track.mp3"))
	assert.True(t, IsAudioFile("/music/track.FLAC"))
	assert.True(t, IsAudioFile("track.opus"))
	assert.False(t, IsAudioFile("notes.txt"))
	assert.False(t, IsAudioFile("archive"))
}
