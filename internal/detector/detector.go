// Package detector turns camera frames into hand landmark sets using an
// external hand tracker.
package detector

import (
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/landmark"
)

// Detector defines the interface for hand detection implementations.
type Detector interface {
	// Detect analyzes a video frame and returns detected hands.
	// Returns an empty slice if no hands are detected.
	Detect(frame *gocv.Mat) ([]landmark.Hand, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for hand detection.
type Config struct {
	// MaxHands is the maximum number of hands to detect (default: 2).
	MaxHands int `yaml:"max_hands"`

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64 `yaml:"min_confidence"`

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64 `yaml:"min_tracking_confidence"`

	// ScriptPath overrides the location of mediapipe_service.py.
	ScriptPath string `yaml:"script_path"`

	// IdleTimeout stops the tracker process after this long without frames.
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MaxHands:        2,
		MinConfidence:   0.7,
		MinTrackingConf: 0.5,
		IdleTimeout:     30 * time.Second,
	}
}
