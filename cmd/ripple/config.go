package main

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config tunes the playback pipeline. Every field has a working default;
// a config file only needs the keys being changed.
type Config struct {
	RingFrames  int     `koanf:"ring_frames"`
	ChunkFrames int     `koanf:"chunk_frames"`
	BufferMs    int     `koanf:"buffer_ms"`
	Volume      float64 `koanf:"volume"`
}

// loadConfig merges config files over the defaults, later paths winning.
// An explicit path replaces the lookup entirely.
func loadConfig(explicit string) (*Config, error) {
	k := koanf.New(".")

	for _, path := range configPaths(explicit) {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		RingFrames:  8192,
		ChunkFrames: 1024,
		BufferMs:    100,
		Volume:      1.0,
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func configPaths(explicit string) []string {
	if explicit != "" {
		return []string{explicit}
	}
	return []string{
		filepath.Join(xdg.ConfigHome, "ripple", "config.toml"),
		"config.toml",
	}
}
