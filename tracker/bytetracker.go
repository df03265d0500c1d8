package tracker

import (
	"fmt"
)

// BYTETracker represents the BYTE Tracker.  It is not safe for concurrent
// use, calls to Update and Reset must be serialized by the caller.
type BYTETracker struct {
	cfg Config
	// Maximum time an object can be lost before being removed
	maxTimeLost int
	// Current frame ID
	frameID int
	// Counter for assigning unique track IDs
	trackIDCount int
	// table owns all activated tracks that have not been removed
	table *trackTable
	// List of currently tracked objects
	trackedStracks []*STrack
	// List of lost objects
	lostStracks []*STrack
	// List of objects removed by the last Update
	removedStracks []*STrack
}

// NewBYTETracker initializes and returns a new BYTETracker
func NewBYTETracker(cfg Config) *BYTETracker {

	if cfg.ScaleFactor <= 0 {
		cfg.ScaleFactor = 1
	}

	return &BYTETracker{
		cfg:         cfg,
		maxTimeLost: cfg.MaxTimeLost(),
		table:       newTrackTable(),
	}
}

// Config returns the tracker configuration
func (bt *BYTETracker) Config() Config {
	return bt.cfg
}

// Reset clears the tracked data and resets everything
func (bt *BYTETracker) Reset() {
	bt.frameID = 0
	bt.trackIDCount = 0
	bt.table.reset()
	bt.trackedStracks = nil
	bt.lostStracks = nil
	bt.removedStracks = nil
}

// FrameID returns the number of frames processed since construction or the
// last Reset
func (bt *BYTETracker) FrameID() int {
	return bt.frameID
}

// Tracked returns all tracks in the tracked state, including those not yet
// confirmed
func (bt *BYTETracker) Tracked() []*STrack {
	return append([]*STrack(nil), bt.trackedStracks...)
}

// Lost returns the tracks currently lost but still eligible for recovery
func (bt *BYTETracker) Lost() []*STrack {
	return append([]*STrack(nil), bt.lostStracks...)
}

// Removed returns the tracks retired by the most recent Update call
func (bt *BYTETracker) Removed() []*STrack {
	return append([]*STrack(nil), bt.removedStracks...)
}

// Lookup returns the live track with the given ID
func (bt *BYTETracker) Lookup(trackID int) (*STrack, bool) {
	return bt.table.get(trackID)
}

// TrackIDs returns the IDs of all live (tracked or lost) tracks in
// ascending order
func (bt *BYTETracker) TrackIDs() []int {
	return bt.table.ids()
}

// Update updates the tracker with the detections of the next frame and
// returns the confirmed tracks.  Detections with a non-finite score or box,
// or a box without area, are ignored.  When an error is returned the tracker
// is left as it was before the call.
func (bt *BYTETracker) Update(objects []Object) (_ []*STrack, err error) {

	cp := bt.checkpoint()

	defer func() {
		if err != nil {
			bt.rollback(cp)
		}
	}()

	// Step 1: Get detections
	bt.frameID++

	var detStracks, detLowStracks []*STrack

	for _, object := range objects {

		// boxes without area have no aspect ratio to seed the filter with
		if !object.valid() {
			continue
		}

		strack := NewSTrack(object.Rect.Scale(bt.cfg.ScaleFactor),
			bt.cfg.ScaleFactor, object.Prob, object.ID, object.Label)

		if object.Prob >= bt.cfg.TrackThresh {
			detStracks = append(detStracks, strack)
		} else {
			detLowStracks = append(detLowStracks, strack)
		}
	}

	// split existing tracks into confirmed and unconfirmed
	var activeStracks, nonActiveStracks []*STrack

	for _, trackedStrack := range bt.trackedStracks {
		if !trackedStrack.IsActivated() {
			nonActiveStracks = append(nonActiveStracks, trackedStrack)
		} else {
			activeStracks = append(activeStracks, trackedStrack)
		}
	}

	strackPool := jointStracks(activeStracks, bt.lostStracks)

	// predict current pose by KF
	for _, strack := range strackPool {
		strack.Predict()
	}

	// Step 2: First association, with IoU
	var currentTrackedStracks, remainTrackedStracks, remainDetStracks, refindStracks []*STrack

	matchesIdx, unmatchTrackIdx, unmatchDetectionIdx, err := bt.linearAssignment(
		calcIouDistance(strackPool, detStracks),
		len(strackPool), len(detStracks), bt.cfg.MatchThresh,
	)

	if err != nil {
		return nil, fmt.Errorf("fatal error in linearAssignment call, step 2: %w", err)
	}

	for _, matchIdx := range matchesIdx {

		track := strackPool[matchIdx[0]]
		det := detStracks[matchIdx[1]]

		if track.GetSTrackState() == Tracked {
			if err := track.Update(det, bt.frameID); err != nil {
				return nil, fmt.Errorf("error updating track, step 2: %w", err)
			}
			currentTrackedStracks = append(currentTrackedStracks, track)
		} else {
			if err := track.ReActivate(det, bt.frameID, -1); err != nil {
				return nil, fmt.Errorf("error re-activating track, step 2: %w", err)
			}
			refindStracks = append(refindStracks, track)
		}
	}

	for _, unmatchIdx := range unmatchDetectionIdx {
		remainDetStracks = append(remainDetStracks, detStracks[unmatchIdx])
	}

	for _, unmatchIdx := range unmatchTrackIdx {
		if strackPool[unmatchIdx].GetSTrackState() == Tracked {
			remainTrackedStracks = append(remainTrackedStracks, strackPool[unmatchIdx])
		}
	}

	// Step 3: Second association, using low score dets
	var currentLostStracks []*STrack

	matchesIdx, unmatchTrackIdx, _, err = bt.linearAssignment(
		calcIouDistance(remainTrackedStracks, detLowStracks),
		len(remainTrackedStracks), len(detLowStracks), bt.cfg.LowMatchThresh,
	)

	if err != nil {
		return nil, fmt.Errorf("fatal error in linearAssignment call, step 3: %w", err)
	}

	for _, matchIdx := range matchesIdx {
		track := remainTrackedStracks[matchIdx[0]]
		det := detLowStracks[matchIdx[1]]

		if track.GetSTrackState() == Tracked {
			if err := track.Update(det, bt.frameID); err != nil {
				return nil, fmt.Errorf("error updating track, step 3: %w", err)
			}
			currentTrackedStracks = append(currentTrackedStracks, track)
		} else {
			if err := track.ReActivate(det, bt.frameID, -1); err != nil {
				return nil, fmt.Errorf("error re-activating track, step 3: %w", err)
			}
			refindStracks = append(refindStracks, track)
		}
	}

	for _, unmatchTrack := range unmatchTrackIdx {
		track := remainTrackedStracks[unmatchTrack]
		if track.GetSTrackState() != Lost {
			track.MarkAsLost()
			currentLostStracks = append(currentLostStracks, track)
		}
	}

	// Step 4: Deal with unconfirmed tracks, usually tracks with only one
	// beginning frame
	var currentRemovedStracks []*STrack

	matchesIdx, unmatchUnconfirmedIdx, unmatchDetectionIdx, err := bt.linearAssignment(
		calcIouDistance(nonActiveStracks, remainDetStracks),
		len(nonActiveStracks), len(remainDetStracks), bt.cfg.UnconfirmedMatchThresh,
	)

	if err != nil {
		return nil, fmt.Errorf("fatal error in linearAssignment call, step 4: %w", err)
	}

	for _, matchIdx := range matchesIdx {
		track := nonActiveStracks[matchIdx[0]]
		if err := track.Update(remainDetStracks[matchIdx[1]], bt.frameID); err != nil {
			return nil, fmt.Errorf("error updating track, step 4: %w", err)
		}
		currentTrackedStracks = append(currentTrackedStracks, track)
	}

	for _, unmatchIdx := range unmatchUnconfirmedIdx {
		track := nonActiveStracks[unmatchIdx]
		track.MarkAsRemoved()
		currentRemovedStracks = append(currentRemovedStracks, track)
	}

	// Step 5: Init new stracks
	for _, unmatchIdx := range unmatchDetectionIdx {
		track := remainDetStracks[unmatchIdx]
		if track.GetScore() < bt.cfg.HighThresh {
			continue
		}
		bt.trackIDCount++
		track.Activate(bt.frameID, bt.trackIDCount)
		bt.table.add(track)
		currentTrackedStracks = append(currentTrackedStracks, track)
	}

	// Step 6: Update state
	for _, lostStrack := range bt.lostStracks {
		if bt.frameID-lostStrack.GetFrameID() > bt.maxTimeLost {
			lostStrack.MarkAsRemoved()
			currentRemovedStracks = append(currentRemovedStracks, lostStrack)
		}
	}

	bt.trackedStracks = jointStracks(currentTrackedStracks, refindStracks)
	bt.lostStracks = subStracks(
		jointStracks(subStracks(bt.lostStracks, bt.trackedStracks), currentLostStracks),
		currentRemovedStracks,
	)

	trackedOut, lostOut, duplicates := bt.removeDuplicateStracks(bt.trackedStracks, bt.lostStracks)
	bt.trackedStracks = trackedOut
	bt.lostStracks = lostOut

	for _, dup := range duplicates {
		dup.MarkAsRemoved()
		currentRemovedStracks = append(currentRemovedStracks, dup)
	}

	for _, removed := range currentRemovedStracks {
		bt.table.drop(removed)
	}

	bt.removedStracks = currentRemovedStracks

	var outputStracks []*STrack
	for _, track := range bt.trackedStracks {
		if track.IsActivated() {
			outputStracks = append(outputStracks, track)
		}
	}

	return outputStracks, nil
}

// trackerCheckpoint is the tracker state captured at the start of Update
type trackerCheckpoint struct {
	frameID        int
	trackIDCount   int
	trackedStracks []*STrack
	lostStracks    []*STrack
	removedStracks []*STrack
	tracks         []strackSnapshot
}

func (bt *BYTETracker) checkpoint() trackerCheckpoint {

	cp := trackerCheckpoint{
		frameID:        bt.frameID,
		trackIDCount:   bt.trackIDCount,
		trackedStracks: bt.trackedStracks,
		lostStracks:    bt.lostStracks,
		removedStracks: bt.removedStracks,
		tracks:         make([]strackSnapshot, 0, len(bt.trackedStracks)+len(bt.lostStracks)),
	}

	for _, track := range bt.trackedStracks {
		cp.tracks = append(cp.tracks, track.snapshot())
	}

	for _, track := range bt.lostStracks {
		cp.tracks = append(cp.tracks, track.snapshot())
	}

	return cp
}

// rollback restores the state captured by checkpoint.  Tracks are only
// registered in the table once every Kalman update of the frame succeeded,
// so it never needs restoring.
func (bt *BYTETracker) rollback(cp trackerCheckpoint) {

	bt.frameID = cp.frameID
	bt.trackIDCount = cp.trackIDCount
	bt.trackedStracks = cp.trackedStracks
	bt.lostStracks = cp.lostStracks
	bt.removedStracks = cp.removedStracks

	for _, snap := range cp.tracks {
		snap.restore()
	}
}

// removeDuplicateStracks finds tracked and lost tracks covering the same
// object and drops the one that has been tracked for the shorter time.  It
// returns the surviving lists and the dropped tracks.
func (bt *BYTETracker) removeDuplicateStracks(aStracks []*STrack,
	bStracks []*STrack) (aRes, bRes, dropped []*STrack) {

	dists := calcIouDistance(aStracks, bStracks)

	aOverlapping := make([]bool, len(aStracks))
	bOverlapping := make([]bool, len(bStracks))

	for i := range dists {
		for j := range dists[i] {
			if !(dists[i][j] < bt.cfg.DuplicateThresh) {
				continue
			}

			timep := aStracks[i].Duration()
			timeq := bStracks[j].Duration()

			if timep > timeq {
				bOverlapping[j] = true
			} else {
				aOverlapping[i] = true
			}
		}
	}

	for i, overlapping := range aOverlapping {
		if overlapping {
			dropped = append(dropped, aStracks[i])
		} else {
			aRes = append(aRes, aStracks[i])
		}
	}

	for i, overlapping := range bOverlapping {
		if overlapping {
			dropped = append(dropped, bStracks[i])
		} else {
			bRes = append(bRes, bStracks[i])
		}
	}

	return aRes, bRes, dropped
}

// linearAssignment matches rows (tracks) to columns (detections) at minimum
// total cost.  Pairs costing more than thresh are returned unmatched.
func (bt *BYTETracker) linearAssignment(costMatrix [][]float32, rows,
	cols int, thresh float32) (matchesIdx [][2]int,
	unmatchTrackIdx, unmatchDetectionIdx []int, fatalErr error) {

	if len(costMatrix) == 0 {
		for i := 0; i < rows; i++ {
			unmatchTrackIdx = append(unmatchTrackIdx, i)
		}
		for i := 0; i < cols; i++ {
			unmatchDetectionIdx = append(unmatchDetectionIdx, i)
		}
		return
	}

	sol, fatalErr := LAPJV(costMatrix, true, thresh)

	if fatalErr != nil {
		return
	}

	detMatched := make([]bool, cols)

	for i, j := range sol.RowSol {
		if j >= 0 && costMatrix[i][j] <= thresh {
			matchesIdx = append(matchesIdx, [2]int{i, j})
			detMatched[j] = true
		} else {
			unmatchTrackIdx = append(unmatchTrackIdx, i)
		}
	}

	for j, matched := range detMatched {
		if !matched {
			unmatchDetectionIdx = append(unmatchDetectionIdx, j)
		}
	}

	return
}

// calcIous calculates the Intersection over Union (IoU) between two sets of rectangles
func calcIous(aRects, bRects []Rect) [][]float32 {

	var ious [][]float32
	if len(aRects)*len(bRects) == 0 {
		return ious
	}

	ious = make([][]float32, len(aRects))
	for i := range ious {
		ious[i] = make([]float32, len(bRects))
	}

	for bi := range bRects {
		for ai := range aRects {
			ious[ai][bi] = aRects[ai].CalcIoU(bRects[bi])
		}
	}
	return ious
}

// calcIouDistance calculates the IoU distance (1 - IoU) between two sets of
// tracks in tracker space
func calcIouDistance(aTracks, bTracks []*STrack) [][]float32 {

	aRects := make([]Rect, 0, len(aTracks))
	for _, track := range aTracks {
		aRects = append(aRects, track.rect)
	}

	bRects := make([]Rect, 0, len(bTracks))
	for _, track := range bTracks {
		bRects = append(bRects, track.rect)
	}

	costMatrix := calcIous(aRects, bRects)

	for _, row := range costMatrix {
		for j := range row {
			row[j] = 1 - row[j]
		}
	}

	return costMatrix
}

// Results splits tracker output into parallel slices of caller space boxes
// and track IDs
func Results(tracks []*STrack) ([]Rect, []int) {

	rects := make([]Rect, 0, len(tracks))
	ids := make([]int, 0, len(tracks))

	for _, track := range tracks {
		rects = append(rects, *track.GetRect())
		ids = append(ids, track.GetTrackID())
	}

	return rects, ids
}
