// Package landmark provides the hand landmark data model used by gesture recognition.
package landmark

import (
	"math"

	"github.com/m-mizutani/goerr/v2"
)

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// ErrInvalidLandmarkSet is returned when a landmark sequence does not hold
// exactly NumLandmarks points.
var ErrInvalidLandmarkSet = goerr.New("invalid landmark set")

// Landmark is a single tracked point. X and Y are normalized to the image
// (0-1, y grows downward); Z is depth relative to the wrist.
type Landmark struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Set is the full 21-point skeleton of one hand for one frame.
type Set [NumLandmarks]Landmark

// NewSet validates the point count and copies points into a Set.
func NewSet(points []Landmark) (Set, error) {
	var s Set
	if len(points) != NumLandmarks {
		return s, goerr.Wrap(ErrInvalidLandmarkSet, "wrong landmark count",
			goerr.V("count", len(points)),
			goerr.V("expected", NumLandmarks),
		)
	}
	copy(s[:], points)
	return s, nil
}

// Points returns the landmarks as a slice, in index order.
func (s Set) Points() []Landmark {
	out := make([]Landmark, NumLandmarks)
	copy(out, s[:])
	return out
}

// Hand is one detected hand as reported by the hand tracker.
type Hand struct {
	Points     Set     `json:"points"`
	Handedness string  `json:"handedness"` // "Left" or "Right"
	Score      float64 `json:"score"`
}

// Mirror returns the hand flipped horizontally (x -> 1-x) with the
// handedness label swapped, i.e. the same pose made by the other hand.
func (h Hand) Mirror() Hand {
	m := Hand{Score: h.Score}
	switch h.Handedness {
	case "Left":
		m.Handedness = "Right"
	case "Right":
		m.Handedness = "Left"
	default:
		m.Handedness = h.Handedness
	}
	for i, p := range h.Points {
		m.Points[i] = Landmark{X: 1 - p.X, Y: p.Y, Z: p.Z}
	}
	return m
}

// Planar returns the Euclidean distance between a and b in the image plane,
// ignoring depth.
func Planar(a, b Landmark) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
