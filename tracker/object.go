package tracker

// Object represents an object detected by the upstream model that is fed
// to the BYTETracker
type Object struct {
	// Rect is the bounding box of the detected object in the caller's
	// coordinate space
	Rect Rect
	// Label is the class label of the object detected
	Label int
	// Prob is the confidence/probability of the object detected
	Prob float32
	// ID is a unique ID to give this object which can be used to match
	// the input detection object and tracked object
	ID int64
}

// NewObject is a constructor function for the Object struct
func NewObject(rect Rect, label int, prob float32, id int64) Object {
	return Object{
		Rect:  rect,
		Label: label,
		Prob:  prob,
		ID:    id,
	}
}

// valid reports whether the object has a finite score and a finite box with
// a positive width and height
func (o Object) valid() bool {

	if !isFinite32(o.Prob) || len(o.Rect.Tlwh) != 4 {
		return false
	}

	for _, v := range o.Rect.Tlwh {
		if !isFinite32(v) {
			return false
		}
	}

	return o.Rect.Width() > 0 && o.Rect.Height() > 0
}
