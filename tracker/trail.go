package tracker

import "sync"

// Point represents the x,y coordinates of the center box of a tracking
// rect/bounding box results
type Point struct {
	X, Y int
}

// Track represents a track history
type Track struct {
	points []Point
}

// Trail is the struct to keep a history of Track results used for drawing
// a trail
type Trail struct {
	// size is the maximum number of most recent points to keep in history
	size int
	// history of tracked points
	history map[int]*Track
	sync.Mutex
}

// NewTrail returns a new trail history track instance.  Size is the number
// of most recent trails to keep and specifies the maximum length of the trail
// to maintain
func NewTrail(size int) *Trail {
	return &Trail{
		size:    size,
		history: make(map[int]*Track),
	}
}

// Reset clears all history
func (t *Trail) Reset() {
	t.Lock()
	defer t.Unlock()

	t.history = make(map[int]*Track)
}

// Add a track to the history
func (t *Trail) Add(strack *STrack) {
	t.Lock()
	defer t.Unlock()

	id := strack.GetTrackID()

	// init map if no history exists yet for track id
	if _, exists := t.history[id]; !exists {
		t.history[id] = &Track{}
	}

	track := t.history[id]

	// find center point in caller space
	rect := strack.GetRect()
	x := rect.TLX() + rect.Width()/2
	y := rect.TLY() + rect.Height()/2

	track.points = append(track.points, Point{
		X: int(x),
		Y: int(y),
	})

	// check if history is exceeded and drop oldest point
	if len(track.points) > t.size {
		track.points = track.points[len(track.points)-t.size:]
	}
}

// GetPoints gets a copy of the point history for a specific track id
func (t *Trail) GetPoints(id int) []Point {
	t.Lock()
	defer t.Unlock()

	if track, exists := t.history[id]; exists {
		return append([]Point(nil), track.points...)
	}

	// no history yet
	return nil
}

// Prune drops the history of every track id not in keep
func (t *Trail) Prune(keep []int) {
	t.Lock()
	defer t.Unlock()

	live := make(map[int]bool, len(keep))
	for _, id := range keep {
		live[id] = true
	}

	for id := range t.history {
		if !live[id] {
			delete(t.history, id)
		}
	}
}

// Len returns the number of track ids with history
func (t *Trail) Len() int {
	t.Lock()
	defer t.Unlock()

	return len(t.history)
}
