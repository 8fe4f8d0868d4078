// Package metadata reads tag metadata (title, artist, cover art) from
// audio files via dhowden/tag. Playback never depends on it; hosts use it
// to label what the engine plays.
package metadata

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/dhowden/tag"

	"github.com/llehouerou/ripple/decoder"
	"github.com/llehouerou/ripple/source"
)

// TrackInfo is the tag metadata of one audio file.
type TrackInfo struct {
	Path        string
	Title       string
	Artist      string
	AlbumArtist string
	Album       string
	Year        int
	Track       int
	TrackTotal  int
	Genre       string
	Duration    time.Duration
}

// ReadTrackInfo reads tag metadata from path. A missing or unreadable tag
// is not an error; the result falls back to the file name.
func ReadTrackInfo(path string) (*TrackInfo, error) {
	src, err := source.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	info := &TrackInfo{Path: path, Title: filepath.Base(path)}

	rs, err := source.ReadSeeker(src)
	if err != nil {
		return info, nil
	}
	m, err := tag.ReadFrom(rs)
	if err != nil {
		return info, nil
	}

	if t := m.Title(); t != "" {
		info.Title = t
	}
	info.Artist = m.Artist()
	info.AlbumArtist = m.AlbumArtist()
	if info.AlbumArtist == "" {
		info.AlbumArtist = m.Artist()
	}
	info.Album = m.Album()
	info.Year = m.Year()
	info.Track, info.TrackTotal = m.Track()
	info.Genre = m.Genre()
	return info, nil
}

// ReadFullInfo reads tag metadata and determines the duration by opening
// the file with its registered decoder.
func ReadFullInfo(path string) (*TrackInfo, error) {
	info, err := ReadTrackInfo(path)
	if err != nil {
		return nil, err
	}

	dec, format, err := decoder.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("metadata: duration: %w", err)
	}
	defer dec.Close()

	if total := dec.TotalFrames(); total >= 0 {
		info.Duration = format.Duration(total)
	}
	return info, nil
}

// CoverArt reads embedded cover art. A file without art returns nil data
// and no error.
func CoverArt(path string) (data []byte, mimeType string, err error) {
	src, err := source.OpenFile(path)
	if err != nil {
		return nil, "", err
	}
	defer src.Close()

	rs, err := source.ReadSeeker(src)
	if err != nil {
		return nil, "", err
	}
	m, err := tag.ReadFrom(rs)
	if err != nil {
		return nil, "", err
	}

	pic := m.Picture()
	if pic == nil {
		return nil, "", nil
	}
	return pic.Data, pic.MIMEType, nil
}

// IsAudioFile reports whether a decoder is registered for path's
// extension.
func IsAudioFile(path string) bool {
	_, ok := decoder.Lookup(filepath.Ext(path))
	return ok
}
