// Package distance estimates how far a hand is from the camera.
package distance

import (
	"math"

	"github.com/ayusman/mudra/internal/landmark"
)

// Default estimator constants.
const (
	// DefaultHandWidthCM is the assumed real wrist-to-middle-MCP length.
	DefaultHandWidthCM = 8.0
	// DefaultFocalFactor approximates the focal length in pixels as a
	// multiple of the image width. It is not calibrated per camera.
	DefaultFocalFactor = 1.2
	DefaultMinCM       = 10.0
	DefaultMaxCM       = 100.0
)

// Config holds the pinhole model parameters.
type Config struct {
	HandWidthCM float64 `yaml:"hand_width_cm"`
	FocalFactor float64 `yaml:"focal_factor"`
	MinCM       float64 `yaml:"min_cm"`
	MaxCM       float64 `yaml:"max_cm"`
}

// DefaultConfig returns a Config with the standard constants.
func DefaultConfig() Config {
	return Config{
		HandWidthCM: DefaultHandWidthCM,
		FocalFactor: DefaultFocalFactor,
		MinCM:       DefaultMinCM,
		MaxCM:       DefaultMaxCM,
	}
}

// Estimator turns the apparent size of a hand into a distance in centimeters.
// It is a rough heuristic: the output is reproducible and bounded, not
// physically accurate.
type Estimator struct {
	config Config
}

// NewEstimator creates an Estimator. Non-positive fields fall back to the
// defaults.
func NewEstimator(config Config) *Estimator {
	d := DefaultConfig()
	if config.HandWidthCM <= 0 {
		config.HandWidthCM = d.HandWidthCM
	}
	if config.FocalFactor <= 0 {
		config.FocalFactor = d.FocalFactor
	}
	if config.MinCM <= 0 {
		config.MinCM = d.MinCM
	}
	if config.MaxCM <= 0 {
		config.MaxCM = d.MaxCM
	}
	if config.MinCM > config.MaxCM {
		config.MinCM, config.MaxCM = config.MaxCM, config.MinCM
	}
	return &Estimator{config: config}
}

// Config returns the parameters in use.
func (e *Estimator) Config() Config {
	return e.config
}

// Estimate returns the camera-to-hand distance for a landmark set seen in a
// width x height image. The result is clamped to [MinCM, MaxCM] and rounded
// to one decimal place. It returns 0 when the geometry is degenerate: a
// non-positive image size or wrist and middle MCP at the same pixel.
func (e *Estimator) Estimate(s landmark.Set, width, height int) float64 {
	px := HandWidthPixels(s, width, height)
	if px <= 0 || math.IsNaN(px) {
		return 0
	}

	focal := float64(width) * e.config.FocalFactor
	return e.FromPixels(px, focal)
}

// FromPixels applies the pinhole model to a measured hand width and a focal
// length, both in pixels.
func (e *Estimator) FromPixels(handWidthPx, focalPx float64) float64 {
	if handWidthPx <= 0 {
		return 0
	}

	d := e.config.HandWidthCM * focalPx / handWidthPx
	d = math.Max(e.config.MinCM, math.Min(e.config.MaxCM, d))
	return math.Round(d*10) / 10
}

// HandWidthPixels returns the wrist to middle MCP distance in pixels.
func HandWidthPixels(s landmark.Set, width, height int) float64 {
	if width <= 0 || height <= 0 {
		return 0
	}

	w := float64(width)
	h := float64(height)
	wrist := s[landmark.Wrist]
	mcp := s[landmark.MiddleMCP]

	return math.Hypot((wrist.X-mcp.X)*w, (wrist.Y-mcp.Y)*h)
}
