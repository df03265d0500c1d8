package render

import (
	"fmt"
	"image"
	"image/color"

	"github.com/edgevision/go-sscma/zone"
	"gocv.io/x/gocv"
)

// ZoneStyle defines how zone outlines are drawn
type ZoneStyle struct {
	// Color of an empty zone
	Color color.RGBA
	// OccupiedColor is used while one or more tracks are inside the zone
	OccupiedColor color.RGBA
	LineThickness int
	// ShowMargin also draws the exit boundary grown by the zone margin
	ShowMargin bool
}

// DefaultZoneStyle returns default zone style settings
func DefaultZoneStyle() ZoneStyle {
	return ZoneStyle{
		Color:         Cyan,
		OccupiedColor: Orange,
		LineThickness: 2,
		ShowMargin:    false,
	}
}

// Zones draws the outline of each monitored zone captioned with its name and
// number of occupants
func Zones(img *gocv.Mat, monitor *zone.Monitor, font Font, style ZoneStyle) {

	occupancy := monitor.Occupancy()

	for _, z := range monitor.Zones() {

		clr := style.Color
		if len(occupancy[z.Name]) > 0 {
			clr = style.OccupiedColor
		}

		outline := gocv.NewPointsVectorFromPoints([][]image.Point{z.Polygon})
		gocv.Polylines(img, outline, true, clr, style.LineThickness)
		outline.Close()

		if style.ShowMargin && z.Margin > 0 {
			margin := gocv.NewPointsVectorFromPoints(z.Outer())
			gocv.Polylines(img, margin, true, clr, 1)
			margin.Close()
		}

		text := fmt.Sprintf("%s (%d)", z.Name, len(occupancy[z.Name]))
		anchor := z.Polygon[0]

		gocv.PutTextWithParams(img, text, image.Pt(anchor.X+font.LeftPad, anchor.Y-font.BottomPad),
			font.Face, font.Scale, clr, font.Thickness, font.LineType, false)
	}
}
