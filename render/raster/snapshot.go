// Package raster draws tracker output onto any draw.Image without OpenCV,
// for hosts where only a frame snapshot or debug PNG is needed.
package raster

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/edgevision/go-sscma/tracker"
	"github.com/edgevision/go-sscma/zone"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// labelPad is the padding in pixels around caption text
const labelPad = 2

// Snapshot draws the box of each track with a caption of its class name and
// track ID
func Snapshot(img draw.Image, tracks []*tracker.STrack, classNames []string) {

	face := basicfont.Face7x13

	for _, track := range tracks {

		r := track.GetRect()
		box := image.Rect(int(r.TLX()), int(r.TLY()), int(r.BRX()), int(r.BRY()))
		clr := TrackColor(track.GetTrackID())

		Rectangle(img, box, clr, 2)

		name := fmt.Sprintf("%d", track.GetLabel())
		if l := track.GetLabel(); l >= 0 && l < len(classNames) {
			name = classNames[l]
		}

		Caption(img, face, fmt.Sprintf("%s %d", name, track.GetTrackID()), box.Min, clr)
	}
}

// Zones draws the outline of each zone with its name
func Zones(img draw.Image, zones []*zone.Zone, clr color.RGBA) {

	face := basicfont.Face7x13

	for _, z := range zones {
		Polygon(img, z.Polygon, clr)
		Caption(img, face, z.Name, z.Polygon[0], clr)
	}
}

// Caption draws text on a filled background whose bottom left corner sits
// at the given point
func Caption(img draw.Image, face font.Face, text string, at image.Point, bg color.RGBA) {

	width := font.MeasureString(face, text).Ceil()
	metrics := face.Metrics()
	height := (metrics.Ascent + metrics.Descent).Ceil()

	rect := image.Rect(at.X, at.Y-height-2*labelPad, at.X+width+2*labelPad, at.Y)
	draw.Draw(img, rect, image.NewUniform(bg), image.Point{}, draw.Src)

	dr := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(White),
		Face: face,
		Dot:  fixed.P(at.X+labelPad, at.Y-labelPad-metrics.Descent.Ceil()),
	}
	dr.DrawString(text)
}

// Rectangle draws the outline of rect with the given line thickness, growing
// inwards
func Rectangle(img draw.Image, rect image.Rectangle, clr color.RGBA, thickness int) {

	if thickness <= 0 || rect.Empty() {
		return
	}

	z, origin := newRasterizer(img)
	outer := rect.Sub(origin)

	// outer edge clockwise, inner edge counter clockwise so the inside
	// cancels out
	z.MoveTo(float32(outer.Min.X), float32(outer.Min.Y))
	z.LineTo(float32(outer.Max.X), float32(outer.Min.Y))
	z.LineTo(float32(outer.Max.X), float32(outer.Max.Y))
	z.LineTo(float32(outer.Min.X), float32(outer.Max.Y))
	z.ClosePath()

	if inner := outer.Inset(thickness); !inner.Empty() {
		z.MoveTo(float32(inner.Min.X), float32(inner.Min.Y))
		z.LineTo(float32(inner.Min.X), float32(inner.Max.Y))
		z.LineTo(float32(inner.Max.X), float32(inner.Max.Y))
		z.LineTo(float32(inner.Max.X), float32(inner.Min.Y))
		z.ClosePath()
	}

	z.Draw(img, img.Bounds(), image.NewUniform(clr), image.Point{})
}

// Polygon draws a closed one pixel outline through the points
func Polygon(img draw.Image, points []image.Point, clr color.RGBA) {

	if len(points) == 0 {
		return
	}

	z, origin := newRasterizer(img)

	for i := range points {
		stroke(z, points[i].Sub(origin), points[(i+1)%len(points)].Sub(origin), 1)
	}

	z.Draw(img, img.Bounds(), image.NewUniform(clr), image.Point{})
}

// Line draws an anti-aliased one pixel line between the centers of the
// pixels a and b
func Line(img draw.Image, a, b image.Point, clr color.RGBA) {

	z, origin := newRasterizer(img)
	stroke(z, a.Sub(origin), b.Sub(origin), 1)

	z.Draw(img, img.Bounds(), image.NewUniform(clr), image.Point{})
}

// newRasterizer returns a rasterizer covering img and the image point its
// origin maps to
func newRasterizer(img draw.Image) (*vector.Rasterizer, image.Point) {
	b := img.Bounds()
	return vector.NewRasterizer(b.Dx(), b.Dy()), b.Min
}

// stroke adds the segment between the pixel centers of a and b to the path
// as a filled rectangle of the given width with square ends.  All segments
// wind the same way so overlapping joins stay fully covered.
func stroke(z *vector.Rasterizer, a, b image.Point, width float32) {

	ax, ay := float32(a.X)+0.5, float32(a.Y)+0.5
	bx, by := float32(b.X)+0.5, float32(b.Y)+0.5

	dx, dy := bx-ax, by-ay
	length := float32(math.Hypot(float64(dx), float64(dy)))

	if length == 0 {
		dx, dy, length = 1, 0, 1
	}

	half := width / 2

	// u runs along the segment, n across it
	ux, uy := dx/length*half, dy/length*half
	nx, ny := -uy, ux

	ax, ay = ax-ux, ay-uy
	bx, by = bx+ux, by+uy

	z.MoveTo(ax+nx, ay+ny)
	z.LineTo(bx+nx, by+ny)
	z.LineTo(bx-nx, by-ny)
	z.LineTo(ax-nx, ay-ny)
	z.ClosePath()
}
