package tracker

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is wrapped by every error returned from Config.Validate
var ErrInvalidConfig = errors.New("invalid tracker config")

// Config holds the BYTETracker parameters, fixed for the lifetime of a
// tracker instance
type Config struct {
	// FrameRate is the number of frames per second of the video source
	FrameRate int
	// TrackBuffer is the number of frames, at a nominal 30 FPS, a lost
	// track is kept for before being removed
	TrackBuffer int
	// TrackThresh splits detections into high and low confidence sets
	TrackThresh float32
	// HighThresh is the minimum score an unmatched detection needs to
	// start a new track
	HighThresh float32
	// MatchThresh is the cost (1 - IoU) limit of the first association
	MatchThresh float32
	// LowMatchThresh is the cost limit of the low score association
	LowMatchThresh float32
	// UnconfirmedMatchThresh is the cost limit used to confirm new tracks
	UnconfirmedMatchThresh float32
	// DuplicateThresh is the cost below which a tracked and lost track are
	// considered the same object
	DuplicateThresh float32
	// ScaleFactor is multiplied into detection boxes on ingestion and
	// divided out of track boxes on output
	ScaleFactor float32
}

// DefaultConfig returns the standard ByteTrack settings for a 30 FPS source
func DefaultConfig() Config {
	return Config{
		FrameRate:              30,
		TrackBuffer:            30,
		TrackThresh:            0.5,
		HighThresh:             0.6,
		MatchThresh:            0.8,
		LowMatchThresh:         0.5,
		UnconfirmedMatchThresh: 0.7,
		DuplicateThresh:        0.15,
		ScaleFactor:            1.0,
	}
}

// MaxTimeLost returns the number of frames a lost track survives, the
// track buffer normalized to the configured frame rate
func (c Config) MaxTimeLost() int {
	return int(float32(c.FrameRate) / 30.0 * float32(c.TrackBuffer))
}

// Validate checks the configuration for values the tracker can not work
// with.  The tracker itself does not call Validate.
func (c Config) Validate() error {

	if c.FrameRate <= 0 {
		return fmt.Errorf("%w: frame rate must be positive, got %d", ErrInvalidConfig, c.FrameRate)
	}

	if c.TrackBuffer < 0 {
		return fmt.Errorf("%w: track buffer must not be negative, got %d", ErrInvalidConfig, c.TrackBuffer)
	}

	if c.ScaleFactor <= 0 {
		return fmt.Errorf("%w: scale factor must be positive, got %f", ErrInvalidConfig, c.ScaleFactor)
	}

	thresholds := []struct {
		name string
		val  float32
	}{
		{"track thresh", c.TrackThresh},
		{"high thresh", c.HighThresh},
		{"match thresh", c.MatchThresh},
		{"low match thresh", c.LowMatchThresh},
		{"unconfirmed match thresh", c.UnconfirmedMatchThresh},
		{"duplicate thresh", c.DuplicateThresh},
	}

	for _, th := range thresholds {
		if th.val < 0 || th.val > 1 {
			return fmt.Errorf("%w: %s must be within [0,1], got %f", ErrInvalidConfig, th.name, th.val)
		}
	}

	return nil
}
