package sscma

import (
	"fmt"
	"log"
	"sync"

	"github.com/edgevision/go-sscma/postprocess"
	"github.com/edgevision/go-sscma/postprocess/result"
	"github.com/edgevision/go-sscma/tracker"
	"github.com/edgevision/go-sscma/zone"
	"github.com/google/uuid"
)

// Options configures a Pipeline
type Options struct {
	// Tracker holds the BYTETracker parameters
	Tracker tracker.Config
	// NMSThreshold is the overlap above which lower scoring boxes of the
	// same class are suppressed, zero disables suppression
	NMSThreshold float32
	// Classes is an allow list of class IDs to track, empty tracks all
	Classes []int
	// TrailLength is the number of centre points kept per track
	TrailLength int
	// Zones are the regions monitored for events
	Zones []*zone.Zone
	// DwellFrames is the number of frames a track must stay in a zone
	// before a Dwell event fires, zero disables dwell events
	DwellFrames int
}

// DefaultOptions returns the default tracker settings with suppression
// enabled and a one second trail at 30 FPS
func DefaultOptions() Options {
	return Options{
		Tracker:      tracker.DefaultConfig(),
		NMSThreshold: 0.45,
		TrailLength:  30,
	}
}

// FrameResult is the outcome of processing one frame of detections
type FrameResult struct {
	// Session identifies the tracking run, it changes on Reset
	Session uuid.UUID
	// FrameID is the tracker frame number starting at 1
	FrameID int
	// Tracks are the confirmed tracks of this frame
	Tracks []*tracker.STrack
	// Boxes are the track boxes in caller coordinates, parallel to IDs
	Boxes []tracker.Rect
	// IDs are the track IDs, parallel to Boxes
	IDs []int
	// Removed are the IDs of tracks retired during this frame
	Removed []int
	// Events are the zone events raised by this frame
	Events []zone.Event
}

// Pipeline runs detector output through suppression, the tracker and zone
// monitoring.  Process and Reset are serialized so a Pipeline can be shared
// between goroutines.
type Pipeline struct {
	mu      sync.Mutex
	session uuid.UUID
	opts    Options
	ids     *result.IDGenerator
	tracker *tracker.BYTETracker
	trail   *tracker.Trail
	monitor *zone.Monitor
	logger  *log.Logger
}

// NewPipeline validates the options and returns a ready Pipeline
func NewPipeline(opts Options) (*Pipeline, error) {

	if err := opts.Tracker.Validate(); err != nil {
		return nil, fmt.Errorf("error creating pipeline: %w", err)
	}

	if opts.NMSThreshold < 0 || opts.NMSThreshold > 1 {
		return nil, fmt.Errorf("error creating pipeline: nms threshold must be within [0,1], got %f",
			opts.NMSThreshold)
	}

	if opts.TrailLength <= 0 {
		opts.TrailLength = 1
	}

	p := &Pipeline{
		session: uuid.New(),
		opts:    opts,
		ids:     result.NewIDGenerator(),
		tracker: tracker.NewBYTETracker(opts.Tracker),
		trail:   tracker.NewTrail(opts.TrailLength),
	}

	if len(opts.Zones) > 0 {
		p.monitor = zone.NewMonitor(opts.Zones, opts.DwellFrames)
	}

	return p, nil
}

// WithLogger sets a logger that receives track removals and zone events
func (p *Pipeline) WithLogger(logger *log.Logger) *Pipeline {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.logger = logger
	return p
}

// Session returns the ID of the current tracking run
func (p *Pipeline) Session() uuid.UUID {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.session
}

// Trail returns the track trail history
func (p *Pipeline) Trail() *tracker.Trail {
	return p.trail
}

// Monitor returns the zone monitor, nil when no zones are configured
func (p *Pipeline) Monitor() *zone.Monitor {
	return p.monitor
}

// Tracker returns the underlying tracker.  It must not be updated directly
// while the Pipeline is in use.
func (p *Pipeline) Tracker() *tracker.BYTETracker {
	return p.tracker
}

// ProcessResult runs a model post processor's output through the pipeline
func (p *Pipeline) ProcessResult(res postprocess.DetectionResult) (FrameResult, error) {
	return p.Process(res.GetDetectResults())
}

// Process runs one frame of detections through the pipeline.  The input
// slice is not modified.
func (p *Pipeline) Process(dets []postprocess.DetectResult) (FrameResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	frame := append([]postprocess.DetectResult(nil), dets...)

	p.ids.Assign(frame)

	if p.opts.NMSThreshold > 0 {
		frame = postprocess.NMS(frame, p.opts.NMSThreshold)
	}

	frame = postprocess.FilterClasses(frame, p.opts.Classes)

	tracks, err := p.tracker.Update(tracker.DetectionsToObjects(frame))

	if err != nil {
		return FrameResult{}, fmt.Errorf("error tracking frame %d: %w", p.tracker.FrameID(), err)
	}

	for _, track := range tracks {
		p.trail.Add(track)
	}

	// keep the history of lost tracks so a recovered track continues its trail
	p.trail.Prune(p.tracker.TrackIDs())

	res := FrameResult{
		Session: p.session,
		FrameID: p.tracker.FrameID(),
		Tracks:  tracks,
	}

	res.Boxes, res.IDs = tracker.Results(tracks)

	for _, removed := range p.tracker.Removed() {
		res.Removed = append(res.Removed, removed.GetTrackID())
	}

	if p.monitor != nil {
		res.Events = p.monitor.Observe(res.FrameID, tracks)
	}

	if p.logger != nil {
		if len(res.Removed) > 0 {
			p.logger.Printf("session %s frame %d: removed tracks %v", p.session, res.FrameID, res.Removed)
		}
		for _, e := range res.Events {
			p.logger.Printf("session %s %s", p.session, e)
		}
	}

	return res, nil
}

// Reset clears all tracking state and starts a new session
func (p *Pipeline) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.tracker.Reset()
	p.trail.Reset()
	p.ids.Reset()

	if p.monitor != nil {
		p.monitor.Reset()
	}

	p.session = uuid.New()
}
