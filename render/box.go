package render

import (
	"fmt"
	"image"
	"image/color"

	"github.com/edgevision/go-sscma/postprocess"
	"github.com/edgevision/go-sscma/tracker"
	"gocv.io/x/gocv"
)

// boxLabel holds a label caption to draw once all boxes are rendered
type boxLabel struct {
	rect    image.Rectangle
	clr     color.RGBA
	text    string
	textPos image.Point
}

// className returns the label name for a class, falling back to the class
// number when no name is known
func className(classNames []string, class int) string {
	if class >= 0 && class < len(classNames) {
		return classNames[class]
	}
	return fmt.Sprintf("%d", class)
}

// placeLabel calculates where the caption of a box is drawn according to
// the font alignment
func placeLabel(box image.Rectangle, text string, clr color.RGBA, font Font,
	lineThickness int) boxLabel {

	textSize := gocv.GetTextSize(text, font.Face, font.Scale, font.Thickness)

	var centerX int

	switch font.Alignment {
	case Center:
		centerX = (box.Min.X + box.Max.X) / 2

	case Right:
		centerX = box.Max.X - (textSize.X / 2) - font.RightPad + (lineThickness / 2)

	case Left:
		fallthrough
	default:
		centerX = box.Min.X + (textSize.X / 2) + font.LeftPad - (lineThickness / 2)
	}

	return boxLabel{
		rect: image.Rect(centerX-textSize.X/2-font.LeftPad,
			box.Min.Y-textSize.Y-font.TopPad-font.BottomPad,
			centerX+textSize.X/2+font.RightPad, box.Min.Y),
		clr:     clr,
		text:    text,
		textPos: image.Pt(centerX-textSize.X/2, box.Min.Y-font.BottomPad),
	}
}

// drawLabels renders the captions last so they are the top most layer and
// are not overlapped by other boxes
func drawLabels(img *gocv.Mat, labels []boxLabel, font Font) {
	for _, label := range labels {
		gocv.Rectangle(img, label.rect, label.clr, -1)

		gocv.PutTextWithParams(img, label.text, label.textPos,
			font.Face, font.Scale, font.Color, font.Thickness,
			font.LineType, false)
	}
}

// DetectionBoxes renders the raw detector output, before tracking, with
// class name and score captions
func DetectionBoxes(img *gocv.Mat, detectResults []postprocess.DetectResult,
	classNames []string, font Font, lineThickness int) {

	labels := make([]boxLabel, 0, len(detectResults))

	for _, det := range detectResults {

		clr := trackColor(det.Class)

		rect := image.Rect(det.Box.Left, det.Box.Top, det.Box.Right, det.Box.Bottom)
		gocv.Rectangle(img, rect, clr, lineThickness)

		text := fmt.Sprintf("%s %.2f", className(classNames, det.Class), det.Probability)
		labels = append(labels, placeLabel(rect, text, clr, font, lineThickness))
	}

	drawLabels(img, labels, font)
}

// TrackerBoxes renders the bounding boxes of confirmed tracks captioned with
// the class name and track ID
func TrackerBoxes(img *gocv.Mat, trackResults []*tracker.STrack,
	classNames []string, font Font, lineThickness int) {

	labels := make([]boxLabel, 0, len(trackResults))

	for _, track := range trackResults {

		// box in the caller's image coordinates
		r := track.GetRect()
		rect := image.Rect(int(r.TLX()), int(r.TLY()), int(r.BRX()), int(r.BRY()))

		clr := trackColor(track.GetTrackID())
		gocv.Rectangle(img, rect, clr, lineThickness)

		text := fmt.Sprintf("%s %d", className(classNames, track.GetLabel()), track.GetTrackID())
		labels = append(labels, placeLabel(rect, text, clr, font, lineThickness))
	}

	drawLabels(img, labels, font)
}
