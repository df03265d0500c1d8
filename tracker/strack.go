package tracker

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// STrackState represents the state of a tracked object
type STrackState int

const (
	// Object is newly detected
	New STrackState = 0
	// Object is currently being tracked
	Tracked STrackState = 1
	// Object has been lost
	Lost STrackState = 2
	// Object has been removed
	Removed STrackState = 3
)

// String returns the name of the track state
func (s STrackState) String() string {
	switch s {
	case New:
		return "new"
	case Tracked:
		return "tracked"
	case Lost:
		return "lost"
	case Removed:
		return "removed"
	}
	return fmt.Sprintf("STrackState(%d)", int(s))
}

const (
	// stdWeightPosition is the position noise weight relative to box height
	stdWeightPosition = 1.0 / 20
	// stdWeightVelocity is the velocity noise weight relative to box height
	stdWeightVelocity = 1.0 / 160
)

// STrack represents a single track of an object
type STrack struct {
	// Kalman filter used for tracking
	kalmanFilter *KalmanFilter
	// Mean state vector
	mean StateMean
	// Covariance matrix
	covariance StateCov
	// Bounding box of the tracked object in tracker space
	rect Rect
	// scale is the factor applied to caller coordinates on ingestion
	scale float32
	// Current state of the track
	state STrackState
	// Whether the track is activated
	isActivated bool
	// Detection score
	score float32
	// Unique ID for the track
	trackID int
	// Current frame ID
	frameID int
	// Frame ID when the track started
	startFrameID int
	// Length of the tracklet
	trackletLen int
	// Unique ID for the detection
	detectionID int64
	// label is the object label/class from the detection model
	label int
}

// NewSTrack creates a new STrack from a box already in tracker space.  The
// scale is the ingestion factor used to map the box back to caller space.
func NewSTrack(rect Rect, scale float32, score float32, detectionID int64,
	label int) *STrack {

	if scale <= 0 {
		scale = 1
	}

	return &STrack{
		kalmanFilter: NewKalmanFilter(stdWeightPosition, stdWeightVelocity),
		mean:         make(StateMean, 8),
		covariance:   NewStateCov(),
		rect:         NewRect(rect.X(), rect.Y(), rect.Width(), rect.Height()),
		scale:        scale,
		state:        New,
		score:        score,
		detectionID:  detectionID,
		label:        label,
	}
}

// GetRect returns the bounding box of the tracked object in the caller's
// coordinate space
func (s *STrack) GetRect() *Rect {
	r := s.rect.Scale(1 / s.scale)
	return &r
}

// GetTrackerRect returns the bounding box in the tracker's internal
// coordinate space
func (s *STrack) GetTrackerRect() *Rect {
	return &s.rect
}

// GetTlbr returns the caller space bounding box in Tlbr format
func (s *STrack) GetTlbr() Tlbr {
	return s.GetRect().GetTlbr()
}

// GetMean returns a copy of the Kalman state mean
func (s *STrack) GetMean() StateMean {
	m := make(StateMean, len(s.mean))
	copy(m, s.mean)
	return m
}

// GetSTrackState returns the current state of the track
func (s *STrack) GetSTrackState() STrackState {
	return s.state
}

// IsActivated returns whether the track is activated
func (s *STrack) IsActivated() bool {
	return s.isActivated
}

// GetScore returns the detection score
func (s *STrack) GetScore() float32 {
	return s.score
}

// GetTrackID returns the unique ID for the track
func (s *STrack) GetTrackID() int {
	return s.trackID
}

// GetFrameID returns the frame ID the track was last matched on
func (s *STrack) GetFrameID() int {
	return s.frameID
}

// GetDetectionID returns the unique ID for the detection
func (s *STrack) GetDetectionID() int64 {
	return s.detectionID
}

// GetLabel returns the object label/class of the last matched detection
func (s *STrack) GetLabel() int {
	return s.label
}

// GetStartFrameID returns the frame ID when the track started
func (s *STrack) GetStartFrameID() int {
	return s.startFrameID
}

// GetTrackletLength returns the length of the tracklet
func (s *STrack) GetTrackletLength() int {
	return s.trackletLen
}

// Duration returns the number of frames between the track's start and the
// frame it was last matched on
func (s *STrack) Duration() int {
	return s.frameID - s.startFrameID
}

// Activate initializes the track with the given frame ID and track ID.
// Tracks activated on the first frame are confirmed immediately, all others
// need one more match.
func (s *STrack) Activate(frameID, trackID int) {

	s.kalmanFilter.Initiate(s.mean, &s.covariance, DetectBox(s.rect.GetXyah()))

	s.updateRect()

	s.state = Tracked

	if frameID == 1 {
		s.isActivated = true
	}

	s.trackID = trackID
	s.frameID = frameID
	s.startFrameID = frameID
	s.trackletLen = 0
}

// ReActivate recovers a lost track with a new detection.  A newTrackID of
// zero or less keeps the current ID.
func (s *STrack) ReActivate(newTrack *STrack, frameID, newTrackID int) error {

	err := s.kalmanFilter.Update(s.mean, &s.covariance,
		DetectBox(newTrack.rect.GetXyah()))

	if err != nil {
		return fmt.Errorf("error re-activating track %d: %w", s.trackID, err)
	}

	s.updateRect()

	s.state = Tracked
	s.isActivated = true
	s.score = newTrack.GetScore()
	s.label = newTrack.GetLabel()
	s.detectionID = newTrack.GetDetectionID()

	if newTrackID > 0 {
		s.trackID = newTrackID
	}

	s.frameID = frameID
	s.trackletLen = 0

	return nil
}

// Predict predicts the next state of the track
func (s *STrack) Predict() {
	if s.state != Tracked {
		s.mean[7] = 0
	}

	s.kalmanFilter.Predict(s.mean, &s.covariance)

	s.updateRect()
}

// Update updates the track with a new detection
func (s *STrack) Update(newTrack *STrack, frameID int) error {

	err := s.kalmanFilter.Update(s.mean, &s.covariance,
		DetectBox(newTrack.rect.GetXyah()))

	if err != nil {
		return fmt.Errorf("error updating track %d: %w", s.trackID, err)
	}

	s.updateRect()

	s.state = Tracked
	s.isActivated = true
	s.score = newTrack.GetScore()
	s.label = newTrack.GetLabel()
	s.detectionID = newTrack.GetDetectionID()
	s.frameID = frameID
	s.trackletLen++

	return nil
}

// MarkAsLost marks the track as lost
func (s *STrack) MarkAsLost() {
	s.state = Lost
}

// MarkAsRemoved marks the track as removed
func (s *STrack) MarkAsRemoved() {
	s.state = Removed
}

// String returns a short description of the track
func (s *STrack) String() string {
	r := s.GetRect()
	return fmt.Sprintf("STrack{id=%d state=%s rect=[%.2f %.2f %.2f %.2f] score=%.2f label=%d}",
		s.trackID, s.state, r.TLX(), r.TLY(), r.BRX(), r.BRY(), s.score, s.label)
}

// strackSnapshot holds the mutable state of a track so a failed Update can
// be rolled back
type strackSnapshot struct {
	track       *STrack
	mean        StateMean
	covariance  *mat.Dense
	state       STrackState
	isActivated bool
	score       float32
	frameID     int
	trackletLen int
	detectionID int64
	label       int
}

func (s *STrack) snapshot() strackSnapshot {
	return strackSnapshot{
		track:       s,
		mean:        s.GetMean(),
		covariance:  mat.DenseCopyOf(s.covariance.Dense),
		state:       s.state,
		isActivated: s.isActivated,
		score:       s.score,
		frameID:     s.frameID,
		trackletLen: s.trackletLen,
		detectionID: s.detectionID,
		label:       s.label,
	}
}

func (snap strackSnapshot) restore() {
	s := snap.track
	copy(s.mean, snap.mean)
	s.covariance.Dense = snap.covariance
	s.state = snap.state
	s.isActivated = snap.isActivated
	s.score = snap.score
	s.frameID = snap.frameID
	s.trackletLen = snap.trackletLen
	s.detectionID = snap.detectionID
	s.label = snap.label
	s.updateRect()
}

// updateRect updates the bounding box of the tracked object based on the state mean.
func (s *STrack) updateRect() {
	s.rect.SetWidth(s.mean[2] * s.mean[3])
	s.rect.SetHeight(s.mean[3])
	s.rect.SetX(s.mean[0] - s.rect.Width()/2)
	s.rect.SetY(s.mean[1] - s.rect.Height()/2)
}
