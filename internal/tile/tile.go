// Package tile maps geographic points to web-mercator tile addresses and
// fetches terrain-RGB tile images.
package tile

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
)

// GeoPoint is a location and zoom level requested by the user.
type GeoPoint struct {
	Latitude  float64 // degrees, [-90, 90]
	Longitude float64 // degrees, [-180, 180]
	Zoom      int
}

// Address identifies a single tile in the web-mercator tiling scheme.
type Address struct {
	X, Y, Z int
}

// String returns the address in z/x/y form.
func (a Address) String() string {
	return fmt.Sprintf("%d/%d/%d", a.Z, a.X, a.Y)
}

// Bound returns the geographic extent of the tile.
func (a Address) Bound() orb.Bound {
	return maptile.New(uint32(a.X), uint32(a.Y), maptile.Zoom(a.Z)).Bound()
}

// Locate returns the tile containing the point at the given zoom.
// Latitudes at the poles produce degenerate rows; they are not rejected.
func Locate(lon, lat float64, zoom int) Address {
	x, y := LocateFraction(lon, lat, zoom)
	return Address{
		X: int(math.Floor(x)),
		Y: int(math.Floor(y)),
		Z: zoom,
	}
}

// LocateFraction returns the fractional tile coordinates of the point.
// X is wrapped into [0, 2^zoom).
func LocateFraction(lon, lat float64, zoom int) (x, y float64) {
	sinLat := math.Sin(lat * math.Pi / 180)
	z2 := math.Pow(2, float64(zoom))

	x = z2 * (lon/360 + 0.5)
	y = z2 * (0.5 - 0.25*math.Log((1+sinLat)/(1-sinLat))/math.Pi)

	x = math.Mod(x, z2)
	if x < 0 {
		x += z2
	}
	return x, y
}

// LocatePoint is Locate for a GeoPoint.
func LocatePoint(p GeoPoint) Address {
	return Locate(p.Longitude, p.Latitude, p.Zoom)
}
