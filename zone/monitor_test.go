package zone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgevision/go-sscma/tracker"
)

// trackAt returns a confirmed track whose anchor is at (x, y)
func trackAt(id int, x, y float32) *tracker.STrack {
	track := tracker.NewSTrack(tracker.NewRect(x-10, y-40, 20, 40), 1, 0.9, int64(id), 3)
	track.Activate(1, id)
	return track
}

func newTestMonitor(t *testing.T, dwell int) *Monitor {
	entry, err := New("entry", square(0, 0, 100), 10)
	require.NoError(t, err)

	exit, err := New("exit", square(200, 0, 100), 10)
	require.NoError(t, err)

	return NewMonitor([]*Zone{entry, exit}, dwell)
}

func TestMonitorEnterExit(t *testing.T) {
	m := newTestMonitor(t, 0)

	events := m.Observe(1, []*tracker.STrack{trackAt(1, 50, 50)})
	require.Len(t, events, 1)
	assert.Equal(t, Event{Zone: "entry", Kind: Enter, TrackID: 1, Label: 3, FrameID: 1}, events[0])

	// inside the margin is still occupied
	events = m.Observe(2, []*tracker.STrack{trackAt(1, 105, 50)})
	assert.Empty(t, events)
	assert.Equal(t, []int{1}, m.Occupancy()["entry"])

	events = m.Observe(3, []*tracker.STrack{trackAt(1, 250, 50)})
	require.Len(t, events, 2)
	assert.Equal(t, Event{Zone: "entry", Kind: Exit, TrackID: 1, Label: 3, FrameID: 3}, events[0])
	assert.Equal(t, Event{Zone: "exit", Kind: Enter, TrackID: 1, Label: 3, FrameID: 3}, events[1])

	occ := m.Occupancy()
	assert.Empty(t, occ["entry"])
	assert.Equal(t, []int{1}, occ["exit"])
}

func TestMonitorHysteresis(t *testing.T) {
	m := newTestMonitor(t, 0)

	m.Observe(1, []*tracker.STrack{trackAt(1, 95, 50)})

	// jitter across the boundary does not fire events
	for f := 2; f < 10; f++ {
		x := float32(95)
		if f%2 == 0 {
			x = 104
		}
		assert.Empty(t, m.Observe(f, []*tracker.STrack{trackAt(1, x, 50)}))
	}
}

func TestMonitorDisappearedTrack(t *testing.T) {
	m := newTestMonitor(t, 0)

	m.Observe(1, []*tracker.STrack{trackAt(2, 50, 50), trackAt(1, 60, 60)})

	events := m.Observe(2, nil)
	require.Len(t, events, 2)
	assert.Equal(t, 1, events[0].TrackID)
	assert.Equal(t, 2, events[1].TrackID)

	for _, e := range events {
		assert.Equal(t, Exit, e.Kind)
	}
}

func TestMonitorDwell(t *testing.T) {
	m := newTestMonitor(t, 3)

	var dwell []Event

	for f := 1; f <= 10; f++ {
		for _, e := range m.Observe(f, []*tracker.STrack{trackAt(1, 50, 50)}) {
			if e.Kind == Dwell {
				dwell = append(dwell, e)
			}
		}
	}

	require.Len(t, dwell, 1)
	assert.Equal(t, 4, dwell[0].FrameID)
}

func TestMonitorOrdering(t *testing.T) {
	m := newTestMonitor(t, 0)

	events := m.Observe(1, []*tracker.STrack{
		trackAt(5, 250, 50),
		trackAt(3, 50, 50),
		trackAt(1, 60, 50),
	})

	require.Len(t, events, 3)
	assert.Equal(t, "entry", events[0].Zone)
	assert.Equal(t, 1, events[0].TrackID)
	assert.Equal(t, "entry", events[1].Zone)
	assert.Equal(t, 3, events[1].TrackID)
	assert.Equal(t, "exit", events[2].Zone)
	assert.Equal(t, 5, events[2].TrackID)
}

func TestMonitorReset(t *testing.T) {
	m := newTestMonitor(t, 0)

	m.Observe(1, []*tracker.STrack{trackAt(1, 50, 50)})
	m.Reset()

	assert.Empty(t, m.Occupancy()["entry"])
	assert.Empty(t, m.Observe(2, nil))
	assert.Equal(t, "enter", Enter.String())
	assert.Len(t, m.Zones(), 2)
}
