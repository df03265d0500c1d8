package zone

import (
	"fmt"
	"sort"
	"sync"

	"github.com/edgevision/go-sscma/tracker"
)

// EventKind is the type of zone event
type EventKind int

const (
	// Enter fires when a track's anchor moves inside a zone
	Enter EventKind = iota
	// Exit fires when a track leaves the grown zone boundary or is no
	// longer reported by the tracker
	Exit
	// Dwell fires once when a track has stayed in a zone for the
	// configured number of frames
	Dwell
)

func (k EventKind) String() string {
	switch k {
	case Enter:
		return "enter"
	case Exit:
		return "exit"
	case Dwell:
		return "dwell"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Event is a single zone transition of a track
type Event struct {
	Zone    string
	Kind    EventKind
	TrackID int
	Label   int
	FrameID int
}

func (e Event) String() string {
	return fmt.Sprintf("frame %d: track %d %s zone %s", e.FrameID, e.TrackID, e.Kind, e.Zone)
}

// presence records a track currently inside a zone
type presence struct {
	since   int
	label   int
	dwelled bool
}

// Monitor keeps per zone occupancy across frames
type Monitor struct {
	zones       []*Zone
	dwellFrames int
	occupants   []map[int]*presence
	sync.Mutex
}

// NewMonitor returns a monitor over the given zones.  A dwellFrames of zero
// disables Dwell events.
func NewMonitor(zones []*Zone, dwellFrames int) *Monitor {

	m := &Monitor{
		zones:       zones,
		dwellFrames: dwellFrames,
	}

	m.reset()

	return m
}

// Zones returns the monitored zones
func (m *Monitor) Zones() []*Zone {
	return m.zones
}

// Reset forgets all occupancy
func (m *Monitor) Reset() {
	m.Lock()
	defer m.Unlock()

	m.reset()
}

func (m *Monitor) reset() {
	m.occupants = make([]map[int]*presence, len(m.zones))
	for i := range m.occupants {
		m.occupants[i] = make(map[int]*presence)
	}
}

// Observe compares the tracks of a frame against each zone and returns the
// resulting events ordered by zone then track ID
func (m *Monitor) Observe(frameID int, tracks []*tracker.STrack) []Event {
	m.Lock()
	defer m.Unlock()

	sorted := append([]*tracker.STrack(nil), tracks...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].GetTrackID() < sorted[j].GetTrackID()
	})

	var events []Event

	for zi, z := range m.zones {

		occupants := m.occupants[zi]
		seen := make(map[int]bool, len(sorted))
		var zoneEvents []Event

		for _, track := range sorted {

			id := track.GetTrackID()
			seen[id] = true
			anchor := Anchor(track)
			p, inside := occupants[id]

			if !inside {
				if z.Contains(anchor) {
					occupants[id] = &presence{since: frameID, label: track.GetLabel()}
					zoneEvents = append(zoneEvents, Event{z.Name, Enter, id, track.GetLabel(), frameID})
				}
				continue
			}

			p.label = track.GetLabel()

			if !z.withinMargin(anchor) {
				delete(occupants, id)
				zoneEvents = append(zoneEvents, Event{z.Name, Exit, id, p.label, frameID})
				continue
			}

			if m.dwellFrames > 0 && !p.dwelled && frameID-p.since >= m.dwellFrames {
				p.dwelled = true
				zoneEvents = append(zoneEvents, Event{z.Name, Dwell, id, p.label, frameID})
			}
		}

		// tracks no longer reported have left
		for id, p := range occupants {
			if !seen[id] {
				delete(occupants, id)
				zoneEvents = append(zoneEvents, Event{z.Name, Exit, id, p.label, frameID})
			}
		}

		sort.SliceStable(zoneEvents, func(i, j int) bool {
			return zoneEvents[i].TrackID < zoneEvents[j].TrackID
		})

		events = append(events, zoneEvents...)
	}

	return events
}

// Occupancy returns the IDs of the tracks inside each zone keyed by zone name
func (m *Monitor) Occupancy() map[string][]int {
	m.Lock()
	defer m.Unlock()

	res := make(map[string][]int, len(m.zones))

	for zi, z := range m.zones {
		ids := make([]int, 0, len(m.occupants[zi]))
		for id := range m.occupants[zi] {
			ids = append(ids, id)
		}
		sort.Ints(ids)
		res[z.Name] = ids
	}

	return res
}
