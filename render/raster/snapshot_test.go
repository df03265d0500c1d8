package raster

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgevision/go-sscma/tracker"
	"github.com/edgevision/go-sscma/zone"
)

func blank(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{A: 255}), image.Point{}, draw.Src)
	return img
}

func TestSnapshot(t *testing.T) {
	img := blank(200, 200)

	track := tracker.NewSTrack(tracker.NewRect(40, 60, 80, 100), 1, 0.9, 1, 0)
	track.Activate(1, 3)

	Snapshot(img, []*tracker.STrack{track}, []string{"person"})

	clr := TrackColor(3)

	// box outline
	assert.Equal(t, clr, img.RGBAAt(40, 100))
	assert.Equal(t, clr, img.RGBAAt(41, 100))
	assert.Equal(t, clr, img.RGBAAt(80, 60))
	assert.Equal(t, clr, img.RGBAAt(119, 100))

	// interior untouched
	assert.Equal(t, color.RGBA{A: 255}, img.RGBAAt(80, 110))

	// caption sits above the box and contains white text
	white := 0
	for y := 40; y < 60; y++ {
		for x := 40; x < 120; x++ {
			if img.RGBAAt(x, y) == White {
				white++
			}
		}
	}
	assert.Greater(t, white, 0)
}

func TestZones(t *testing.T) {
	img := blank(100, 100)

	z, err := zone.New("door", []image.Point{{10, 30}, {90, 30}, {90, 90}, {10, 90}}, 0)
	require.NoError(t, err)

	clr := color.RGBA{R: 10, G: 20, B: 30, A: 255}
	Zones(img, []*zone.Zone{z}, clr)

	assert.Equal(t, clr, img.RGBAAt(50, 90))
	assert.Equal(t, clr, img.RGBAAt(90, 60))
	assert.Equal(t, clr, img.RGBAAt(10, 60))
}

func TestLineClipsToBounds(t *testing.T) {
	img := blank(10, 10)
	clr := color.RGBA{R: 255, A: 255}

	Line(img, image.Pt(-5, -5), image.Pt(20, 20), clr)

	// the diagonal is anti-aliased so only mostly covered
	for i := 0; i < 10; i++ {
		assert.Greater(t, img.RGBAAt(i, i).R, uint8(200))
	}

	assert.Equal(t, color.RGBA{A: 255}, img.RGBAAt(0, 9))
	assert.Equal(t, color.RGBA{A: 255}, img.RGBAAt(9, 0))
}

func TestLineAxisAligned(t *testing.T) {
	img := blank(20, 20)
	clr := color.RGBA{G: 255, A: 255}

	Line(img, image.Pt(2, 5), image.Pt(12, 5), clr)

	for x := 2; x <= 12; x++ {
		assert.Equal(t, clr, img.RGBAAt(x, 5))
	}

	assert.Equal(t, color.RGBA{A: 255}, img.RGBAAt(7, 4))
	assert.Equal(t, color.RGBA{A: 255}, img.RGBAAt(7, 6))
	assert.Equal(t, color.RGBA{A: 255}, img.RGBAAt(13, 5))
}

func TestRectangleThickness(t *testing.T) {
	img := blank(20, 20)
	clr := color.RGBA{B: 255, A: 255}

	Rectangle(img, image.Rect(2, 2, 18, 18), clr, 3)

	assert.Equal(t, clr, img.RGBAAt(2, 10))
	assert.Equal(t, clr, img.RGBAAt(4, 10))
	assert.Equal(t, color.RGBA{A: 255}, img.RGBAAt(5, 10))
	assert.Equal(t, clr, img.RGBAAt(17, 17))
	assert.Equal(t, color.RGBA{A: 255}, img.RGBAAt(1, 10))
	assert.Equal(t, color.RGBA{A: 255}, img.RGBAAt(18, 10))
}

func TestTrackColor(t *testing.T) {
	assert.Equal(t, TrackColor(1), TrackColor(1+len(palette)))
	assert.Equal(t, TrackColor(2), TrackColor(-2))
}
