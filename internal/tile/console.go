package tile

import (
	"bufio"
	"context"
	"io"
	"strings"

	"go.uber.org/zap"
)

// ReadPoints parses "lat lon zoom" lines from r and sends the points on
// out until r is exhausted or ctx is done. Blank lines and lines starting
// with # are skipped; malformed lines are logged and skipped.
func ReadPoints(ctx context.Context, r io.Reader, out chan<- GeoPoint, log *zap.Logger) error {
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		p, err := ParsePointFields(strings.Fields(strings.ReplaceAll(text, ",", " ")))
		if err != nil {
			log.Warn("ignoring console line", zap.Int("line", line), zap.String("input", text), zap.Error(err))
			continue
		}

		select {
		case out <- p:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return scanner.Err()
}
