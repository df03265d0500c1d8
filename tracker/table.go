package tracker

import "sort"

// trackTable owns every live track of a BYTETracker keyed by track ID.  The
// tracked and lost lists only hold handles to tracks registered here, so a
// track moving between lists never changes owner.
type trackTable struct {
	tracks map[int]*STrack
}

func newTrackTable() *trackTable {
	return &trackTable{
		tracks: make(map[int]*STrack),
	}
}

// add registers an activated track
func (t *trackTable) add(track *STrack) {
	t.tracks[track.GetTrackID()] = track
}

// drop releases a removed track
func (t *trackTable) drop(track *STrack) {
	delete(t.tracks, track.GetTrackID())
}

// get returns the track with the given ID
func (t *trackTable) get(id int) (*STrack, bool) {
	track, ok := t.tracks[id]
	return track, ok
}

func (t *trackTable) len() int {
	return len(t.tracks)
}

// ids returns all registered track IDs in ascending order
func (t *trackTable) ids() []int {
	ids := make([]int, 0, len(t.tracks))
	for id := range t.tracks {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func (t *trackTable) reset() {
	t.tracks = make(map[int]*STrack)
}

// jointStracks combines two lists of tracks, avoiding duplicates and
// keeping the order of aTlist followed by the new entries of bTlist
func jointStracks(aTlist []*STrack, bTlist []*STrack) []*STrack {

	exists := make(map[int]bool, len(aTlist)+len(bTlist))
	res := make([]*STrack, 0, len(aTlist)+len(bTlist))

	for _, track := range aTlist {
		exists[track.GetTrackID()] = true
		res = append(res, track)
	}

	for _, track := range bTlist {
		tid := track.GetTrackID()

		if !exists[tid] {
			exists[tid] = true
			res = append(res, track)
		}
	}

	return res
}

// subStracks returns the tracks of aTlist whose IDs are not in bTlist,
// preserving the order of aTlist
func subStracks(aTlist []*STrack, bTlist []*STrack) []*STrack {

	drop := make(map[int]bool, len(bTlist))
	for _, track := range bTlist {
		drop[track.GetTrackID()] = true
	}

	res := make([]*STrack, 0, len(aTlist))
	for _, track := range aTlist {
		if !drop[track.GetTrackID()] {
			res = append(res, track)
		}
	}

	return res
}
