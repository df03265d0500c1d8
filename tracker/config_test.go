package tracker

import (
	"errors"
	"testing"
)

func TestConfigMaxTimeLost(t *testing.T) {

	cfg := DefaultConfig()
	if cfg.MaxTimeLost() != 30 {
		t.Errorf("expected 30, got %d", cfg.MaxTimeLost())
	}

	cfg.FrameRate = 15
	if cfg.MaxTimeLost() != 15 {
		t.Errorf("expected 15 at half frame rate, got %d", cfg.MaxTimeLost())
	}

	cfg.FrameRate = 60
	cfg.TrackBuffer = 10
	if cfg.MaxTimeLost() != 20 {
		t.Errorf("expected 20, got %d", cfg.MaxTimeLost())
	}
}

func TestConfigValidate(t *testing.T) {

	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}

	mutations := map[string]func(c *Config){
		"frame rate":   func(c *Config) { c.FrameRate = 0 },
		"track buffer": func(c *Config) { c.TrackBuffer = -1 },
		"scale":        func(c *Config) { c.ScaleFactor = 0 },
		"track thresh": func(c *Config) { c.TrackThresh = 1.5 },
		"match thresh": func(c *Config) { c.MatchThresh = -0.1 },
	}

	for name, mutate := range mutations {
		cfg := DefaultConfig()
		mutate(&cfg)

		if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("%s: expected ErrInvalidConfig, got %v", name, err)
		}
	}
}

func TestNewBYTETrackerScaleDefault(t *testing.T) {

	cfg := DefaultConfig()
	cfg.ScaleFactor = 0

	bt := NewBYTETracker(cfg)
	if bt.Config().ScaleFactor != 1 {
		t.Errorf("expected non positive scale to default to 1, got %f", bt.Config().ScaleFactor)
	}
}
