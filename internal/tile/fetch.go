package tile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/terrainview/internal/engine/terrain"
	"github.com/Faultbox/terrainview/internal/logger"
)

// Source defaults for the Mapbox terrain-RGB tileset.
const (
	DefaultServiceURL = "https://api.mapbox.com"
	DefaultTileset    = "mapbox.terrain-rgb"
	DefaultFormat     = "pngraw"
)

// ErrBadStatus is returned when the tile service answers with a non-200 status.
var ErrBadStatus = errors.New("unexpected tile service status")

// maxTileBytes caps the body read for a single tile.
const maxTileBytes = 32 << 20

// Source describes where tile images come from.
type Source struct {
	ServiceURL  string
	Tileset     string
	Format      string // pngraw, png or webp
	AccessToken string
}

// DefaultSource returns the terrain-RGB source with the given token.
func DefaultSource(token string) Source {
	return Source{
		ServiceURL:  DefaultServiceURL,
		Tileset:     DefaultTileset,
		Format:      DefaultFormat,
		AccessToken: token,
	}
}

// HasCredential reports whether an access token is configured.
func (s Source) HasCredential() bool {
	return strings.TrimSpace(s.AccessToken) != ""
}

// URL returns the request URL for the tile at a.
func (s Source) URL(a Address) string {
	return s.url(a, s.AccessToken)
}

// RedactedURL is URL with the access token masked, for logs.
func (s Source) RedactedURL(a Address) string {
	return s.url(a, "REDACTED")
}

func (s Source) url(a Address, token string) string {
	return fmt.Sprintf("%s/v4/%s/%d/%d/%d@2x.%s?access_token=%s",
		strings.TrimRight(s.ServiceURL, "/"), s.Tileset, a.Z, a.X, a.Y, s.Format,
		url.QueryEscape(token))
}

// Fetcher downloads and decodes tile heightfields over HTTP.
type Fetcher struct {
	source Source
	client *http.Client
	log    *zap.Logger
}

// NewFetcher creates a fetcher for source. A nil client gets a client
// with the given timeout.
func NewFetcher(source Source, client *http.Client, timeout time.Duration) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &Fetcher{
		source: source,
		client: client,
		log:    logger.Named("tile"),
	}
}

// Source returns the fetcher's tile source.
func (f *Fetcher) Source() Source {
	return f.source
}

// HasCredential reports whether requests will carry an access token.
func (f *Fetcher) HasCredential() bool {
	return f.source.HasCredential()
}

// Fetch downloads the tile at a and decodes it into a heightfield.
func (f *Fetcher) Fetch(ctx context.Context, a Address) (*terrain.HeightField, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.source.URL(a), nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", a, err)
	}

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		// The url.Error from the client carries the token in its URL.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return nil, fmt.Errorf("fetching %s: %w", f.source.RedactedURL(a), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: %w: %s", f.source.RedactedURL(a), ErrBadStatus, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxTileBytes))
	if err != nil {
		return nil, fmt.Errorf("reading tile %s: %w", a, err)
	}

	hf, err := terrain.DecodeHeightField(data)
	if err != nil {
		return nil, fmt.Errorf("decoding tile %s: %w", a, err)
	}

	f.log.Debug("tile fetched",
		zap.Stringer("tile", a),
		zap.Int("bytes", len(data)),
		zap.Int("width", hf.Width),
		zap.Int("height", hf.Height),
		zap.Duration("elapsed", time.Since(start)),
	)
	return hf, nil
}
