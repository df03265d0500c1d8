package postprocess

// DetectionResult is implemented by the output of a model post processor
type DetectionResult interface {
	GetDetectResults() []DetectResult
}

// BoxRect are the dimensions of the bounding box of a detect object
type BoxRect struct {
	Left   int
	Right  int
	Top    int
	Bottom int
}

// Width returns the width of the box
func (b BoxRect) Width() int {
	return b.Right - b.Left
}

// Height returns the height of the box
func (b BoxRect) Height() int {
	return b.Bottom - b.Top
}

// DetectResult defines the attributes of a single object detected
type DetectResult struct {
	// Class is the line number in the labels file the Model was trained on
	// defining the Class of the detected object
	Class int
	// Box are the bounding box dimensions of the object location
	Box BoxRect
	// Probability is the confidence score of the object detected
	Probability float32
	// ID is a unique ID assigned to the detection result
	ID int64
}

// Detections is a plain list of detection results
type Detections []DetectResult

// GetDetectResults returns the detection results
func (d Detections) GetDetectResults() []DetectResult {
	return d
}

// FilterClasses returns the detection results whose class is in allowed.
// An empty allow list keeps every result.
func FilterClasses(results []DetectResult, allowed []int) []DetectResult {

	if len(allowed) == 0 {
		return results
	}

	keep := make(map[int]bool, len(allowed))
	for _, c := range allowed {
		keep[c] = true
	}

	out := make([]DetectResult, 0, len(results))

	for _, res := range results {
		if keep[res.Class] {
			out = append(out, res)
		}
	}

	return out
}
