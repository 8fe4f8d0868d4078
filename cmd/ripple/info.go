package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/llehouerou/ripple/decoder"
	"github.com/llehouerou/ripple/metadata"
)

type infoCmd struct {
	Files []string `arg:"" name:"file" help:"Audio files to inspect." type:"existingfile"`
}

func (c *infoCmd) Run(_ *Config) error {
	for i, path := range c.Files {
		if i > 0 {
			fmt.Println()
		}
		if err := printInfo(path); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

func printInfo(path string) error {
	st, err := os.Stat(path)
	if err != nil {
		return err
	}

	dec, format, err := decoder.OpenFile(path)
	if err != nil {
		return err
	}
	total := dec.TotalFrames()
	seekable := dec.Seekable()
	dec.Close()

	info, err := metadata.ReadTrackInfo(path)
	if err != nil {
		return err
	}

	fmt.Printf("File:      %s (%s)\n", filepath.Base(path), humanize.Bytes(uint64(st.Size())))
	fmt.Printf("Format:    %s\n", format)
	if total >= 0 {
		fmt.Printf("Length:    %s (%s frames)\n",
			fmtDuration(format.Duration(total)), humanize.Comma(total))
	} else {
		fmt.Printf("Length:    unknown\n")
	}
	if !seekable {
		fmt.Printf("Seekable:  no\n")
	}

	printTag := func(name, value string) {
		if value != "" {
			fmt.Printf("%-10s %s\n", name+":", value)
		}
	}
	printTag("Title", info.Title)
	printTag("Artist", info.Artist)
	if info.AlbumArtist != info.Artist {
		printTag("Album artist", info.AlbumArtist)
	}
	printTag("Album", info.Album)
	printTag("Genre", info.Genre)
	if info.Year > 0 {
		fmt.Printf("Year:      %d\n", info.Year)
	}
	if info.Track > 0 {
		if info.TrackTotal > 0 {
			fmt.Printf("Track:     %d/%d\n", info.Track, info.TrackTotal)
		} else {
			fmt.Printf("Track:     %d\n", info.Track)
		}
	}

	if art, mime, err := metadata.CoverArt(path); err == nil && len(art) > 0 {
		fmt.Printf("Cover:     %s, %s\n", mime, humanize.Bytes(uint64(len(art))))
	}
	return nil
}
