package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/llehouerou/ripple/decoder"
	"github.com/llehouerou/ripple/metadata"
	"github.com/llehouerou/ripple/output"
	"github.com/llehouerou/ripple/player"
	"github.com/llehouerou/ripple/source"
)

type playCmd struct {
	Files  []string      `arg:"" name:"file" help:"Audio files to play, in order." type:"existingfile"`
	Volume float64       `help:"Volume override, 0 to 1." default:"-1"`
	Seek   time.Duration `help:"Start position within the first track."`
}

func (c *playCmd) Run(cfg *Config) error {
	p := player.New(
		player.WithRingFrames(cfg.RingFrames),
		player.WithChunkFrames(cfg.ChunkFrames),
	)
	defer p.Close()

	// Decoders are created closed; the decode goroutine opens them when
	// their turn comes, so a corrupt file surfaces as an ErrorEvent and
	// playback moves on.
	var paths []string
	for _, path := range c.Files {
		factory, ok := decoder.Lookup(filepath.Ext(path))
		if !ok {
			log.Printf("skipping %s: unsupported extension", path)
			continue
		}
		src, err := source.OpenFile(path)
		if err != nil {
			log.Printf("skipping %s: %v", path, err)
			continue
		}
		p.Enqueue(factory(src))
		paths = append(paths, path)
	}
	if len(paths) == 0 {
		return fmt.Errorf("nothing to play")
	}

	sub := p.Subscribe()
	if err := p.Play(); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	volume := cfg.Volume
	if c.Volume >= 0 {
		volume = c.Volume
	}

	var dev *output.Device
	defer func() {
		if dev != nil {
			dev.Close()
		}
	}()

	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	seekPending := c.Seek > 0

	for {
		select {
		case ev := <-sub.TrackChanged:
			if dev == nil {
				d, err := output.Open(ev.Format, p,
					output.WithBufferSize(time.Duration(cfg.BufferMs)*time.Millisecond))
				if err != nil {
					p.Stop()
					return fmt.Errorf("open output: %w", err)
				}
				d.SetVolume(volume)
				dev = d
			}
			printNowPlaying(paths[ev.Index], ev)
			if seekPending {
				seekPending = false
				if err := p.SeekTo(ev.Format.Frames(c.Seek)); err != nil {
					log.Printf("seek: %v", err)
				}
			}

		case <-sub.FormatChanged:
			// The ring has drained; reopen the device for the new format
			// when the next TrackChange arrives.
			if dev != nil {
				dev.Close()
				dev = nil
			}

		case ev := <-sub.StateChanged:
			if ev.Current == player.Stopped {
				fmt.Println()
				if n := p.Underruns(); n > 0 {
					log.Printf("underruns: %d", n)
				}
				return nil
			}

		case ev := <-sub.Errors:
			log.Printf("%s: %v", ev.Op, ev.Err)

		case <-ticker.C:
			printProgress(p)

		case <-sigCh:
			fmt.Println()
			p.Stop()

		case <-sub.Done:
			return nil
		}
	}
}

func printNowPlaying(path string, ev player.TrackChange) {
	label := filepath.Base(path)
	if info, err := metadata.ReadTrackInfo(path); err == nil {
		if info.Artist != "" && info.Title != "" {
			label = info.Artist + " - " + info.Title
		} else if info.Title != "" {
			label = info.Title
		}
	}
	length := "?"
	if ev.TotalFrames >= 0 {
		length = fmtDuration(ev.Format.Duration(ev.TotalFrames))
	}
	fmt.Printf("\r\x1b[KPlaying: %s [%s, %s]\n", label, ev.Format, length)
}

func printProgress(p *player.Player) {
	pos := fmtDuration(p.Position())
	if total := p.TotalFrames(); total >= 0 {
		fmt.Printf("\r\x1b[K  %s / %s", pos, fmtDuration(p.Duration()))
	} else {
		fmt.Printf("\r\x1b[K  %s", pos)
	}
}
