package tile

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestReadPoints(t *testing.T) {
	input := strings.Join([]string{
		"46.55 7.98 10",
		"",
		"# comment",
		"not a number",
		"-33.9, 18.4",
		"1 2 3 4",
		"12",
	}, "\n")

	out := make(chan GeoPoint, 8)
	if err := ReadPoints(context.Background(), strings.NewReader(input), out, zap.NewNop()); err != nil {
		t.Fatalf("ReadPoints: %v", err)
	}
	close(out)

	var got []GeoPoint
	for p := range out {
		got = append(got, p)
	}

	want := []GeoPoint{
		{Latitude: 46.55, Longitude: 7.98, Zoom: 10},
		{Latitude: -33.9, Longitude: 18.4},
		{Latitude: 12},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d points %v, want %v", len(got), got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("point %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestReadPointsStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Unbuffered and never read: the send must give way to ctx.
	out := make(chan GeoPoint)
	err := ReadPoints(ctx, strings.NewReader("1 2 3\n"), out, zap.NewNop())
	if err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
