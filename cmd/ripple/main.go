package main

import (
	"fmt"
	"log"
	"time"

	"github.com/alecthomas/kong"

	_ "github.com/llehouerou/ripple/formats/all"
)

// version is set via ldflags at build time.
var version = "dev"

var cli struct {
	Config string `help:"Config file path (overrides the default lookup)." type:"path"`

	Play playCmd `cmd:"" help:"Play audio files back to back, gaplessly."`
	Info infoCmd `cmd:"" help:"Show format, length and tag information."`

	Version kong.VersionFlag `help:"Show version information."`
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("ripple"),
		kong.Description("Gapless audio player for local files."),
		kong.Vars{"version": version},
		kong.UsageOnError(),
	)

	log.SetFlags(0)

	cfg, err := loadConfig(cli.Config)
	if err != nil {
		log.Fatalf("ripple: config: %v", err)
	}

	if err := ctx.Run(cfg); err != nil {
		log.Fatalf("ripple: %v", err)
	}
}

// fmtDuration renders d as m:ss (or h:mm:ss past the hour).
func fmtDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	s := (d - m*time.Minute) / time.Second
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
