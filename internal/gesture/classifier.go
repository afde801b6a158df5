// Package gesture extracts finger features from hand landmarks and classifies
// them into a fixed set of gestures with an ordered rule table.
package gesture

import (
	"github.com/ayusman/mudra/internal/landmark"
)

// Gesture is a classifier output label. The value is the display string.
type Gesture string

const (
	OpenHand       Gesture = "Open Hand"
	Fist           Gesture = "Fist"
	Peace          Gesture = "Peace Sign"
	Pointing       Gesture = "Pointing"
	ThumbsUp       Gesture = "Thumbs Up"
	ThumbsDown     Gesture = "Thumbs Down"
	CallMe         Gesture = "Call Me"
	Rock           Gesture = "Rock"
	MiddleFinger   Gesture = "Middle Finger"
	OkSign         Gesture = "OK Sign"
	FingersCrossed Gesture = "Fingers Crossed"
	ILoveYou       Gesture = "I Love You"

	// Unrecognized is returned when no rule matches.
	Unrecognized Gesture = "Unrecognized"

	// NoHand is the result label when the tracker found no hand. The
	// classifier never produces it.
	NoHand Gesture = "No hand detected"
)

// String returns the display string.
func (g Gesture) String() string {
	return string(g)
}

// Detected reports whether g is a real detection rather than one of the
// NoHand or Unrecognized sentinels.
func (g Gesture) Detected() bool {
	return g != NoHand && g != Unrecognized && g != ""
}

// Thresholds tune the proximity-based rules. Distances are in normalized
// image coordinates.
type Thresholds struct {
	// Pinch is the maximum thumb-to-index tip distance for OkSign.
	Pinch float64 `json:"pinch" yaml:"pinch"`
	// Cross is the maximum horizontal index-to-middle tip spread for FingersCrossed.
	Cross float64 `json:"cross" yaml:"cross"`
}

// DefaultThresholds returns the standard threshold values.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Pinch: 0.05,
		Cross: 0.02,
	}
}

// Rule is one row of the classification table.
type Rule struct {
	Name    string
	Gesture Gesture
	Match   func(f Features, t Thresholds) bool
}

// Order matters: the first matching rule wins. New gestures are appended.
//
// ILoveYou's conditions are a subset of Rock's, so with this ordering Rock
// always wins and the ILoveYou row never fires.
var rules = []Rule{
	{"open_hand", OpenHand, func(f Features, _ Thresholds) bool {
		return f.Fingers == FingerStates{true, true, true, true, true}
	}},
	{"fist", Fist, func(f Features, _ Thresholds) bool {
		return f.Fingers == FingerStates{}
	}},
	{"peace", Peace, func(f Features, _ Thresholds) bool {
		c := f.Fingers
		return c.Index && c.Middle && !c.Ring && !c.Pinky
	}},
	{"pointing", Pointing, func(f Features, _ Thresholds) bool {
		return f.Fingers == FingerStates{Index: true}
	}},
	{"thumbs_up", ThumbsUp, func(f Features, _ Thresholds) bool {
		return f.ThumbUp && fourClosed(f.Fingers)
	}},
	{"thumbs_down", ThumbsDown, func(f Features, _ Thresholds) bool {
		return f.ThumbDown && fourClosed(f.Fingers)
	}},
	{"call_me", CallMe, func(f Features, _ Thresholds) bool {
		return f.Fingers == FingerStates{Thumb: true, Pinky: true}
	}},
	{"rock", Rock, func(f Features, _ Thresholds) bool {
		c := f.Fingers
		return c.Index && c.Pinky && !c.Middle && !c.Ring
	}},
	{"middle_finger", MiddleFinger, func(f Features, _ Thresholds) bool {
		return f.Fingers == FingerStates{Middle: true}
	}},
	{"ok_sign", OkSign, func(f Features, t Thresholds) bool {
		c := f.Fingers
		return f.ThumbIndexGap < t.Pinch && c.Middle && c.Ring && c.Pinky
	}},
	{"fingers_crossed", FingersCrossed, func(f Features, t Thresholds) bool {
		c := f.Fingers
		return c.Index && c.Middle && f.TipSpreadX < t.Cross
	}},
	{"i_love_you", ILoveYou, func(f Features, _ Thresholds) bool {
		c := f.Fingers
		return c.Thumb && c.Index && c.Pinky && !c.Middle && !c.Ring
	}},
}

func fourClosed(c FingerStates) bool {
	return !c.Index && !c.Middle && !c.Ring && !c.Pinky
}

// Classifier maps features to a gesture. It holds no mutable state and is
// safe for concurrent use.
type Classifier struct {
	thresholds Thresholds
}

// NewClassifier creates a Classifier. Zero threshold fields fall back to the
// defaults.
func NewClassifier(t Thresholds) *Classifier {
	d := DefaultThresholds()
	if t.Pinch <= 0 {
		t.Pinch = d.Pinch
	}
	if t.Cross <= 0 {
		t.Cross = d.Cross
	}
	return &Classifier{thresholds: t}
}

// Thresholds returns the thresholds in use.
func (c *Classifier) Thresholds() Thresholds {
	return c.thresholds
}

// Classify returns the gesture of the first rule that matches f, or
// Unrecognized.
func (c *Classifier) Classify(f Features) Gesture {
	g, _ := c.Explain(f)
	return g
}

// Explain is Classify that also returns the name of the rule that fired.
// The name is empty when nothing matched.
func (c *Classifier) Explain(f Features) (Gesture, string) {
	for _, r := range rules {
		if r.Match(f, c.thresholds) {
			return r.Gesture, r.Name
		}
	}
	return Unrecognized, ""
}

// ClassifySet extracts features from s and classifies them.
func (c *Classifier) ClassifySet(s landmark.Set) (Gesture, Features) {
	f := ExtractSet(s)
	return c.Classify(f), f
}

// Rules returns a copy of the rule table in evaluation order.
func (c *Classifier) Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}
