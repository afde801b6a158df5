package gesture

import (
	"math"

	"github.com/ayusman/mudra/internal/landmark"
)

// FingerStates holds the open (extended) or closed (curled) state of each finger.
type FingerStates struct {
	Thumb  bool `json:"thumb"`
	Index  bool `json:"index"`
	Middle bool `json:"middle"`
	Ring   bool `json:"ring"`
	Pinky  bool `json:"pinky"`
}

// Count returns the number of open fingers.
func (f FingerStates) Count() int {
	n := 0
	for _, open := range []bool{f.Thumb, f.Index, f.Middle, f.Ring, f.Pinky} {
		if open {
			n++
		}
	}
	return n
}

// Features is everything the classifier looks at for one hand.
type Features struct {
	Fingers FingerStates `json:"fingers"`

	// ThumbIndexGap is the planar distance between the thumb and index tips.
	ThumbIndexGap float64 `json:"thumb_index_gap"`
	// IndexMiddleGap is the planar distance between the index and middle tips.
	IndexMiddleGap float64 `json:"index_middle_gap"`
	// TipSpreadX is the horizontal separation of the index and middle tips.
	TipSpreadX float64 `json:"tip_spread_x"`

	// ThumbUp and ThumbDown report the thumb tip strictly above or below its
	// MCP joint in image space. Both are false when level.
	ThumbUp   bool `json:"thumb_up"`
	ThumbDown bool `json:"thumb_down"`
}

// Extract validates that points is a complete landmark set and derives its
// features.
func Extract(points []landmark.Landmark) (Features, error) {
	set, err := landmark.NewSet(points)
	if err != nil {
		return Features{}, err
	}
	return ExtractSet(set), nil
}

// ExtractSet derives features from a landmark set.
//
// A finger other than the thumb is open when its tip is strictly above (lower
// y than) its PIP joint. The thumb is open when its tip lies farther from the
// index MCP knuckle than the thumb MCP does. That measure uses only planar
// distances, so it gives the same answer for left and right hands and for a
// thumb pointing sideways, up or down.
func ExtractSet(s landmark.Set) Features {
	f := Features{
		Fingers: FingerStates{
			Thumb:  thumbOpen(s),
			Index:  fingerOpen(s, landmark.IndexTip, landmark.IndexPIP),
			Middle: fingerOpen(s, landmark.MiddleTip, landmark.MiddlePIP),
			Ring:   fingerOpen(s, landmark.RingTip, landmark.RingPIP),
			Pinky:  fingerOpen(s, landmark.PinkyTip, landmark.PinkyPIP),
		},
		ThumbIndexGap:  landmark.Planar(s[landmark.ThumbTip], s[landmark.IndexTip]),
		IndexMiddleGap: landmark.Planar(s[landmark.IndexTip], s[landmark.MiddleTip]),
		TipSpreadX:     math.Abs(s[landmark.IndexTip].X - s[landmark.MiddleTip].X),
		ThumbUp:        s[landmark.ThumbTip].Y < s[landmark.ThumbMCP].Y,
		ThumbDown:      s[landmark.ThumbTip].Y > s[landmark.ThumbMCP].Y,
	}
	return f
}

func fingerOpen(s landmark.Set, tip, pip int) bool {
	return s[tip].Y < s[pip].Y
}

func thumbOpen(s landmark.Set) bool {
	anchor := s[landmark.IndexMCP]
	return landmark.Planar(s[landmark.ThumbTip], anchor) > landmark.Planar(s[landmark.ThumbMCP], anchor)
}
