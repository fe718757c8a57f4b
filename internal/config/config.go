// Package config handles viewer configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/multierr"
)

// ErrMissingCredential reports that no tile service access token is set.
var ErrMissingCredential = errors.New("tiles.access_token is not set (use -token or MAPBOX_ACCESS_TOKEN)")

// TokenEnv is the environment variable holding the access token.
const TokenEnv = "MAPBOX_ACCESS_TOKEN"

// Config holds all viewer settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Tiles    TilesConfig    `yaml:"tiles"`
	Terrain  TerrainConfig  `yaml:"terrain"`
	Camera   CameraConfig   `yaml:"camera"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display and rendering settings.
type GraphicsConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
}

// TilesConfig holds the elevation tile service settings.
type TilesConfig struct {
	ServiceURL  string        `yaml:"service_url"`
	Tileset     string        `yaml:"tileset"`
	Format      string        `yaml:"format"` // pngraw, png or webp
	AccessToken string        `yaml:"access_token"`
	Timeout     time.Duration `yaml:"timeout"`
}

// TerrainConfig holds the grid and the initial view.
type TerrainConfig struct {
	Divisions        int     `yaml:"divisions"`
	Size             float32 `yaml:"size"`
	TexOffset        float32 `yaml:"tex_offset"`
	InitialLatitude  float64 `yaml:"initial_latitude"`
	InitialLongitude float64 `yaml:"initial_longitude"`
	InitialZoom      int     `yaml:"initial_zoom"`
}

// CameraConfig holds fly camera settings.
type CameraConfig struct {
	FOV           float32 `yaml:"fov"`            // vertical, degrees
	MovementSpeed float32 `yaml:"movement_speed"` // units per second
	RollSpeed     float32 `yaml:"roll_speed"`     // radians per second
	LookSpeed     float32 `yaml:"look_speed"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
		},
		Tiles: TilesConfig{
			ServiceURL: "https://api.mapbox.com",
			Tileset:    "mapbox.terrain-rgb",
			Format:     "pngraw",
			Timeout:    30 * time.Second,
		},
		Terrain: TerrainConfig{
			Divisions: 512,
			Size:      200,
			TexOffset: 1.0 / 512.0,
		},
		Camera: CameraConfig{
			FOV:           80,
			MovementSpeed: 60,
			RollSpeed:     0.3,
			LookSpeed:     1,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// HasCredential reports whether an access token is configured.
func (c *Config) HasCredential() bool {
	return strings.TrimSpace(c.Tiles.AccessToken) != ""
}

// Validate checks the configuration. A missing token is reported as
// ErrMissingCredential alongside any other problems.
func (c *Config) Validate() error {
	var err error
	if !c.HasCredential() {
		err = multierr.Append(err, ErrMissingCredential)
	}
	if c.Graphics.Width <= 0 || c.Graphics.Height <= 0 {
		err = multierr.Append(err, fmt.Errorf("graphics: invalid size %dx%d", c.Graphics.Width, c.Graphics.Height))
	}
	switch c.Tiles.Format {
	case "pngraw", "png", "webp":
	default:
		err = multierr.Append(err, fmt.Errorf("tiles.format: unsupported %q", c.Tiles.Format))
	}
	if c.Tiles.Timeout <= 0 {
		err = multierr.Append(err, fmt.Errorf("tiles.timeout: must be positive, got %s", c.Tiles.Timeout))
	}
	if c.Terrain.Divisions < 1 {
		err = multierr.Append(err, fmt.Errorf("terrain.divisions: must be at least 1, got %d", c.Terrain.Divisions))
	}
	if c.Terrain.Size <= 0 {
		err = multierr.Append(err, fmt.Errorf("terrain.size: must be positive, got %g", c.Terrain.Size))
	}
	if c.Terrain.InitialZoom < 0 {
		err = multierr.Append(err, fmt.Errorf("terrain.initial_zoom: must not be negative, got %d", c.Terrain.InitialZoom))
	}
	return err
}
