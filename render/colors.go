package render

import (
	"image/color"

	"github.com/edgevision/go-sscma/render/raster"
)

// colors used for labels and overlays
var (
	White  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Yellow = color.RGBA{R: 255, G: 255, B: 50, A: 255}
	Pink   = color.RGBA{R: 255, G: 0, B: 255, A: 255}
	Cyan   = color.RGBA{R: 0, G: 212, B: 187, A: 255}
	Orange = color.RGBA{R: 255, G: 112, B: 31, A: 255}
)

// trackColor is the color a track is painted with, shared with the raster
// snapshot renderer so both outputs match
func trackColor(id int) color.RGBA {
	return raster.TrackColor(id)
}
