// Package ui provides the viewer's on-screen panels.
package ui

import (
	"strconv"

	"github.com/Faultbox/terrainview/internal/engine/ui2d"
	"github.com/Faultbox/terrainview/internal/tile"
)

// Panel geometry in points.
const (
	CoordsPanelX     = 10
	CoordsPanelY     = 10
	CoordsPanelWidth = 220
	coordsPanelH     = 214
	labelH           = 14
	fieldH           = 22
)

// CoordsPanel is the latitude / longitude / zoom entry form. Submitting it
// with the Update button or Enter yields the parsed point.
type CoordsPanel struct {
	lat    string
	lon    string
	zoom   string
	status string
	isErr  bool
}

// NewCoordsPanel creates a panel prefilled with p.
func NewCoordsPanel(p tile.GeoPoint) *CoordsPanel {
	return &CoordsPanel{
		lat:  strconv.FormatFloat(p.Latitude, 'f', -1, 64),
		lon:  strconv.FormatFloat(p.Longitude, 'f', -1, 64),
		zoom: strconv.Itoa(p.Zoom),
	}
}

// SetStatus sets the line shown under the button.
func (cp *CoordsPanel) SetStatus(msg string, isErr bool) {
	cp.status, cp.isErr = msg, isErr
}

// Render draws the panel and returns the requested point when the form was
// submitted with valid values. Invalid input is reported in the panel.
func (cp *CoordsPanel) Render(ctx *ui2d.Context) (tile.GeoPoint, bool) {
	submit := false
	field := func(id, label string, value *string) {
		ctx.Row(labelH)
		ctx.LabelColored(label, ui2d.ColorTextDim)
		ctx.Row(fieldH)
		var entered bool
		*value, _, entered = ctx.TextInput(id, 0, *value)
		submit = submit || entered
	}

	ctx.BeginWindow("coords", CoordsPanelX, CoordsPanelY, CoordsPanelWidth, coordsPanelH, "Location")
	field("lat", "Latitude", &cp.lat)
	field("lon", "Longitude", &cp.lon)
	field("zoom", "Zoom", &cp.zoom)
	ctx.Row(fieldH)
	if ctx.Button("update", 0, "Update") {
		submit = true
	}
	if cp.status != "" {
		ctx.Row(labelH)
		color := ui2d.ColorText
		if cp.isErr {
			color = ui2d.ColorError
		}
		ctx.LabelColored(cp.status, color)
	}
	ctx.EndWindow()

	if !submit {
		return tile.GeoPoint{}, false
	}
	p, err := tile.ParsePoint(cp.lat, cp.lon, cp.zoom)
	if err != nil {
		cp.SetStatus(err.Error(), true)
		return tile.GeoPoint{}, false
	}
	return p, true
}
