// Package main is the entry point for the terrain viewer.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/terrainview/internal/config"
	"github.com/Faultbox/terrainview/internal/logger"
	"github.com/Faultbox/terrainview/internal/preview"
	"github.com/Faultbox/terrainview/internal/tile"
	"github.com/Faultbox/terrainview/internal/viewer"
)

func main() {
	os.Exit(run())
}

func run() int {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		return 1
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		return 1
	}
	defer logger.Sync()

	logger.Info("=== Terrain Viewer ===")
	logger.Sugar.Debugf("Config: %+v", redacted(cfg))

	if config.SaveRequested() {
		if err := cfg.Save(); err != nil {
			logger.Error("failed to save config", zap.Error(err))
			return 1
		}
		logger.Info("config saved", zap.String("path", config.UserConfigPath()))
		return 0
	}

	// A missing token is reported but the viewer still starts.
	for _, verr := range multierr.Errors(cfg.Validate()) {
		if errors.Is(verr, config.ErrMissingCredential) {
			logger.Error("configuration", zap.Error(verr))
			continue
		}
		logger.Error("invalid configuration", zap.Error(verr))
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	source := tile.Source{
		ServiceURL:  cfg.Tiles.ServiceURL,
		Tileset:     cfg.Tiles.Tileset,
		Format:      cfg.Tiles.Format,
		AccessToken: cfg.Tiles.AccessToken,
	}
	fetcher := tile.NewFetcher(source, nil, cfg.Tiles.Timeout)

	initial := tile.GeoPoint{
		Latitude:  cfg.Terrain.InitialLatitude,
		Longitude: cfg.Terrain.InitialLongitude,
		Zoom:      cfg.Terrain.InitialZoom,
	}

	if path := config.PreviewPath(); path != "" {
		if !source.HasCredential() {
			logger.Error("preview needs an access token", zap.Error(config.ErrMissingCredential))
			return 1
		}
		opts := preview.DefaultOptions()
		opts.Divisions = cfg.Terrain.Divisions
		opts.Size = cfg.Terrain.Size
		opts.TexOffset = cfg.Terrain.TexOffset
		if _, err := preview.Run(ctx, fetcher, initial, opts, path); err != nil {
			logger.Error("preview failed", zap.Error(err))
			return 1
		}
		return 0
	}

	v, err := viewer.New(cfg, fetcher)
	if err != nil {
		logger.Error("failed to create viewer", zap.Error(err))
		return 1
	}
	defer v.Close()

	if err := v.Run(ctx, os.Stdin); err != nil {
		logger.Error("viewer error", zap.Error(err))
		return 1
	}

	logger.Info("viewer closed normally")
	return 0
}

func redacted(cfg *config.Config) config.Config {
	out := *cfg
	if out.Tiles.AccessToken != "" {
		out.Tiles.AccessToken = "REDACTED"
	}
	return out
}
