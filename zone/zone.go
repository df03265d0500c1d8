// Package zone turns tracker output into region events.  A Zone is a
// polygon in image coordinates and a Monitor reports when tracks enter,
// leave or linger inside each zone.
package zone

import (
	"errors"
	"fmt"
	"image"

	clipper "github.com/ctessum/go.clipper"
	"github.com/edgevision/go-sscma/tracker"
)

// ErrPolygon is returned when a zone polygon has fewer than three vertices
var ErrPolygon = errors.New("zone polygon needs at least 3 points")

// Zone is a named polygon region of the image
type Zone struct {
	// Name identifies the zone in events
	Name string
	// Polygon is the zone boundary in image coordinates
	Polygon []image.Point
	// Margin is the distance in pixels a track must move past the boundary
	// before it is considered to have left the zone
	Margin int
	// outer is the polygon grown by Margin
	outer [][]image.Point
}

// New creates a zone and precomputes its exit boundary
func New(name string, polygon []image.Point, margin int) (*Zone, error) {

	if len(polygon) < 3 {
		return nil, fmt.Errorf("zone %q: %w", name, ErrPolygon)
	}

	z := &Zone{
		Name:    name,
		Polygon: append([]image.Point(nil), polygon...),
		Margin:  margin,
	}

	z.outer = grow(z.Polygon, margin)

	return z, nil
}

// Outer returns the exit boundary, the zone polygon grown by Margin
func (z *Zone) Outer() [][]image.Point {
	return z.outer
}

// Contains checks if the point lies inside the zone polygon
func (z *Zone) Contains(p image.Point) bool {
	return pointInPolygon(p, z.Polygon)
}

// withinMargin checks if the point lies inside the grown exit boundary
func (z *Zone) withinMargin(p image.Point) bool {
	for _, path := range z.outer {
		if pointInPolygon(p, path) {
			return true
		}
	}
	return false
}

// Anchor returns the point of a track tested against zones, the bottom
// centre of its box in caller coordinates
func Anchor(track *tracker.STrack) image.Point {
	rect := track.GetRect()
	return image.Point{
		X: int(rect.TLX() + rect.Width()/2),
		Y: int(rect.BRY()),
	}
}

// grow offsets the polygon outwards by margin pixels with rounded corners
func grow(polygon []image.Point, margin int) [][]image.Point {

	if margin <= 0 {
		return [][]image.Point{polygon}
	}

	// convert the polygon points to Clipper Path
	var path clipper.Path

	for _, pt := range polygon {
		path = append(path, &clipper.IntPoint{X: clipper.CInt(pt.X), Y: clipper.CInt(pt.Y)})
	}

	co := clipper.NewClipperOffset()
	co.AddPath(path, clipper.JtRound, clipper.EtClosedPolygon)

	solution := co.Execute(float64(margin))

	if len(solution) == 0 {
		return [][]image.Point{polygon}
	}

	outer := make([][]image.Point, 0, len(solution))

	for _, sol := range solution {
		points := make([]image.Point, 0, len(sol))
		for _, pt := range sol {
			points = append(points, image.Point{X: int(pt.X), Y: int(pt.Y)})
		}
		outer = append(outer, points)
	}

	return outer
}

// pointInPolygon is an even-odd ray casting test
func pointInPolygon(p image.Point, polygon []image.Point) bool {

	if len(polygon) < 3 {
		return false
	}

	x, y := float64(p.X), float64(p.Y)
	inside := false

	for i, j := 0, len(polygon)-1; i < len(polygon); j, i = i, i+1 {

		xi, yi := float64(polygon[i].X), float64(polygon[i].Y)
		xj, yj := float64(polygon[j].X), float64(polygon[j].Y)

		if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}

	return inside
}
