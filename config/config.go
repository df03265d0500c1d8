// Package config loads pipeline settings from a JSON file.  Every field is
// optional, omitted values keep the tracker and pipeline defaults so partial
// files are safe.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/edgevision/go-sscma"
	"github.com/edgevision/go-sscma/tracker"
	"github.com/edgevision/go-sscma/zone"
)

// ErrInvalid is wrapped by every validation error
var ErrInvalid = errors.New("invalid configuration")

// maxFileSize caps the size of a config file
const maxFileSize = 1 * 1024 * 1024

// TrackerParams are the optional BYTETracker overrides
type TrackerParams struct {
	FrameRate              *int     `json:"frame_rate,omitempty"`
	TrackBuffer            *int     `json:"track_buffer,omitempty"`
	TrackThresh            *float64 `json:"track_thresh,omitempty"`
	HighThresh             *float64 `json:"high_thresh,omitempty"`
	MatchThresh            *float64 `json:"match_thresh,omitempty"`
	LowMatchThresh         *float64 `json:"low_match_thresh,omitempty"`
	UnconfirmedMatchThresh *float64 `json:"unconfirmed_match_thresh,omitempty"`
	DuplicateThresh        *float64 `json:"duplicate_thresh,omitempty"`
	ScaleFactor            *float64 `json:"scale_factor,omitempty"`
}

// ZoneParams defines a monitored zone as a list of [x, y] vertices
type ZoneParams struct {
	Name    string   `json:"name"`
	Polygon [][2]int `json:"polygon"`
	Margin  int      `json:"margin,omitempty"`
}

// Config is the root of the JSON configuration
type Config struct {
	Tracker      TrackerParams `json:"tracker"`
	NMSThreshold *float64      `json:"nms_threshold,omitempty"`
	Classes      []int         `json:"classes,omitempty"`
	TrailLength  *int          `json:"trail_length,omitempty"`
	DwellFrames  *int          `json:"dwell_frames,omitempty"`
	Zones        []ZoneParams  `json:"zones,omitempty"`
}

// Empty returns a Config with every field unset
func Empty() *Config {
	return &Config{}
}

// Load reads a Config from a JSON file.  The file must have a .json
// extension and be under 1MB.
func Load(path string) (*Config, error) {

	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Empty()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", cleanPath, err)
	}

	return cfg, nil
}

// Validate checks the values that are set
func (c *Config) Validate() error {

	if err := c.TrackerConfig().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	if c.NMSThreshold != nil && (*c.NMSThreshold < 0 || *c.NMSThreshold > 1) {
		return fmt.Errorf("%w: nms_threshold must be between 0 and 1, got %f", ErrInvalid, *c.NMSThreshold)
	}

	if c.TrailLength != nil && *c.TrailLength < 1 {
		return fmt.Errorf("%w: trail_length must be positive, got %d", ErrInvalid, *c.TrailLength)
	}

	if c.DwellFrames != nil && *c.DwellFrames < 0 {
		return fmt.Errorf("%w: dwell_frames must be non-negative, got %d", ErrInvalid, *c.DwellFrames)
	}

	names := make(map[string]bool, len(c.Zones))

	for _, z := range c.Zones {
		if z.Name == "" {
			return fmt.Errorf("%w: zone name must be set", ErrInvalid)
		}
		if names[z.Name] {
			return fmt.Errorf("%w: duplicate zone name %q", ErrInvalid, z.Name)
		}
		names[z.Name] = true

		if len(z.Polygon) < 3 {
			return fmt.Errorf("%w: zone %q needs at least 3 points, got %d", ErrInvalid, z.Name, len(z.Polygon))
		}
		if z.Margin < 0 {
			return fmt.Errorf("%w: zone %q margin must be non-negative, got %d", ErrInvalid, z.Name, z.Margin)
		}
	}

	return nil
}

// TrackerConfig returns the tracker defaults overridden by any set values
func (c *Config) TrackerConfig() tracker.Config {

	cfg := tracker.DefaultConfig()
	p := c.Tracker

	if p.FrameRate != nil {
		cfg.FrameRate = *p.FrameRate
	}
	if p.TrackBuffer != nil {
		cfg.TrackBuffer = *p.TrackBuffer
	}

	setFloat := func(dst *float32, src *float64) {
		if src != nil {
			*dst = float32(*src)
		}
	}

	setFloat(&cfg.TrackThresh, p.TrackThresh)
	setFloat(&cfg.HighThresh, p.HighThresh)
	setFloat(&cfg.MatchThresh, p.MatchThresh)
	setFloat(&cfg.LowMatchThresh, p.LowMatchThresh)
	setFloat(&cfg.UnconfirmedMatchThresh, p.UnconfirmedMatchThresh)
	setFloat(&cfg.DuplicateThresh, p.DuplicateThresh)
	setFloat(&cfg.ScaleFactor, p.ScaleFactor)

	return cfg
}

// GetNMSThreshold returns the nms_threshold value or the default
func (c *Config) GetNMSThreshold() float32 {
	if c.NMSThreshold == nil {
		return sscma.DefaultOptions().NMSThreshold
	}
	return float32(*c.NMSThreshold)
}

// GetTrailLength returns the trail_length value or the default
func (c *Config) GetTrailLength() int {
	if c.TrailLength == nil {
		return sscma.DefaultOptions().TrailLength
	}
	return *c.TrailLength
}

// GetDwellFrames returns the dwell_frames value or 0, disabling dwell events
func (c *Config) GetDwellFrames() int {
	if c.DwellFrames == nil {
		return 0
	}
	return *c.DwellFrames
}

// BuildZones creates the configured zones
func (c *Config) BuildZones() ([]*zone.Zone, error) {

	zones := make([]*zone.Zone, 0, len(c.Zones))

	for _, zp := range c.Zones {

		polygon := make([]image.Point, 0, len(zp.Polygon))
		for _, pt := range zp.Polygon {
			polygon = append(polygon, image.Pt(pt[0], pt[1]))
		}

		z, err := zone.New(zp.Name, polygon, zp.Margin)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
		}

		zones = append(zones, z)
	}

	return zones, nil
}

// Options converts the configuration into pipeline options
func (c *Config) Options() (sscma.Options, error) {

	zones, err := c.BuildZones()
	if err != nil {
		return sscma.Options{}, err
	}

	return sscma.Options{
		Tracker:      c.TrackerConfig(),
		NMSThreshold: c.GetNMSThreshold(),
		Classes:      append([]int(nil), c.Classes...),
		TrailLength:  c.GetTrailLength(),
		Zones:        zones,
		DwellFrames:  c.GetDwellFrames(),
	}, nil
}
