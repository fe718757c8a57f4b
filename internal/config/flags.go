package config

import (
	"flag"
	"fmt"
	"strconv"
)

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagToken      = flag.String("token", "", "Tile service access token")
	flagLat        = flag.String("lat", "", "Initial latitude")
	flagLon        = flag.String("lon", "", "Initial longitude")
	flagZoom       = flag.Int("zoom", -1, "Initial zoom level")
	flagWindowed   = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
	flagPreview    = flag.String("preview", "", "Render the initial tile to this PNG file and exit")
	flagSave       = flag.Bool("save-config", false, "Write the effective settings, without the access token, to the user config file and exit")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// PreviewPath returns the headless preview output path, empty for the
// interactive viewer.
func PreviewPath() string {
	return *flagPreview
}

// SaveRequested reports whether -save-config was given.
func SaveRequested() bool {
	return *flagSave
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) error {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagToken != "" {
		cfg.Tiles.AccessToken = *flagToken
	}
	if *flagLat != "" {
		v, err := strconv.ParseFloat(*flagLat, 64)
		if err != nil {
			return fmt.Errorf("-lat: %w", err)
		}
		cfg.Terrain.InitialLatitude = v
	}
	if *flagLon != "" {
		v, err := strconv.ParseFloat(*flagLon, 64)
		if err != nil {
			return fmt.Errorf("-lon: %w", err)
		}
		cfg.Terrain.InitialLongitude = v
	}
	if *flagZoom >= 0 {
		cfg.Terrain.InitialZoom = *flagZoom
	}
	if *flagWindowed {
		cfg.Graphics.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Graphics.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Graphics.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Graphics.Height = *flagHeight
	}
	return nil
}
