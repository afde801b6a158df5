package landmark

// ThumbPose describes where the thumb points in a synthetic pose.
type ThumbPose int

const (
	// ThumbTucked folds the thumb across the palm.
	ThumbTucked ThumbPose = iota
	// ThumbSide extends the thumb sideways, away from the palm.
	ThumbSide
	// ThumbRaised points the thumb straight up.
	ThumbRaised
	// ThumbLowered points the thumb straight down.
	ThumbLowered
)

// Pose is a builder for synthetic right-hand landmark sets with the palm
// facing the camera and the fingers pointing up.
type Pose struct {
	Thumb  ThumbPose
	Index  bool
	Middle bool
	Ring   bool
	Pinky  bool
}

var (
	poseWrist = Landmark{X: 0.50, Y: 0.80, Z: 0.0}

	// MCP knuckles and the sideways lean of each extended finger.
	fingerBases = [4]struct {
		mcp  int
		base Landmark
		lean float64
	}{
		{IndexMCP, Landmark{X: 0.55, Y: 0.68}, 0.015},
		{MiddleMCP, Landmark{X: 0.50, Y: 0.66}, 0.0},
		{RingMCP, Landmark{X: 0.45, Y: 0.68}, -0.015},
		{PinkyMCP, Landmark{X: 0.40, Y: 0.70}, -0.03},
	}
)

// Hand builds the landmark set for the pose.
func (p Pose) Hand() Hand {
	h := Hand{Handedness: "Right", Score: 0.95}
	h.Points[Wrist] = poseWrist

	open := [4]bool{p.Index, p.Middle, p.Ring, p.Pinky}
	for i, f := range fingerBases {
		b := f.base
		h.Points[f.mcp] = b
		if open[i] {
			h.Points[f.mcp+1] = Landmark{X: b.X + f.lean, Y: b.Y - 0.13}
			h.Points[f.mcp+2] = Landmark{X: b.X + 1.5*f.lean, Y: b.Y - 0.23}
			h.Points[f.mcp+3] = Landmark{X: b.X + 2*f.lean, Y: b.Y - 0.33}
		} else {
			// Curled: tip folds back below the PIP joint.
			h.Points[f.mcp+1] = Landmark{X: b.X, Y: b.Y - 0.02, Z: -0.05}
			h.Points[f.mcp+2] = Landmark{X: b.X - 0.03, Y: b.Y, Z: -0.04}
			h.Points[f.mcp+3] = Landmark{X: b.X - 0.05, Y: b.Y + 0.02, Z: -0.02}
		}
	}

	h.Points[ThumbCMC] = Landmark{X: 0.55, Y: 0.75}
	h.Points[ThumbMCP] = Landmark{X: 0.58, Y: 0.70}
	switch p.Thumb {
	case ThumbSide:
		h.Points[ThumbIP] = Landmark{X: 0.64, Y: 0.65}
		h.Points[ThumbTip] = Landmark{X: 0.70, Y: 0.60}
	case ThumbRaised:
		h.Points[ThumbIP] = Landmark{X: 0.58, Y: 0.55}
		h.Points[ThumbTip] = Landmark{X: 0.58, Y: 0.40}
	case ThumbLowered:
		h.Points[ThumbIP] = Landmark{X: 0.58, Y: 0.80}
		h.Points[ThumbTip] = Landmark{X: 0.58, Y: 0.90}
	default:
		h.Points[ThumbIP] = Landmark{X: 0.56, Y: 0.70}
		h.Points[ThumbTip] = Landmark{X: 0.54, Y: 0.69}
	}

	return h
}

// OpenPalmLandmarks returns a hand with all five fingers extended.
func OpenPalmLandmarks() Hand {
	return Pose{Thumb: ThumbSide, Index: true, Middle: true, Ring: true, Pinky: true}.Hand()
}

// FistLandmarks returns a closed fist with the thumb tucked over the fingers.
func FistLandmarks() Hand {
	return Pose{}.Hand()
}

// ThumbsUpLandmarks returns a fist with the thumb pointing up.
func ThumbsUpLandmarks() Hand {
	return Pose{Thumb: ThumbRaised}.Hand()
}

// ThumbsDownLandmarks returns a fist with the thumb pointing down.
func ThumbsDownLandmarks() Hand {
	return Pose{Thumb: ThumbLowered}.Hand()
}

// PeaceLandmarks returns index and middle extended in a V.
func PeaceLandmarks() Hand {
	return Pose{Index: true, Middle: true}.Hand()
}

// PointingLandmarks returns only the index finger extended.
func PointingLandmarks() Hand {
	return Pose{Index: true}.Hand()
}

// CallMeLandmarks returns thumb and pinky extended.
func CallMeLandmarks() Hand {
	return Pose{Thumb: ThumbSide, Pinky: true}.Hand()
}

// RockLandmarks returns index and pinky extended with the thumb tucked.
func RockLandmarks() Hand {
	return Pose{Index: true, Pinky: true}.Hand()
}

// MiddleFingerLandmarks returns only the middle finger extended.
func MiddleFingerLandmarks() Hand {
	return Pose{Middle: true}.Hand()
}

// ILoveYouLandmarks returns thumb, index and pinky extended.
func ILoveYouLandmarks() Hand {
	return Pose{Thumb: ThumbSide, Index: true, Pinky: true}.Hand()
}

// OkSignLandmarks returns the index curled onto the thumb tip with the
// remaining three fingers extended.
func OkSignLandmarks() Hand {
	h := Pose{Middle: true, Ring: true, Pinky: true}.Hand()
	h.Points[IndexPIP] = Landmark{X: 0.57, Y: 0.60}
	h.Points[IndexDIP] = Landmark{X: 0.58, Y: 0.64}
	h.Points[IndexTip] = Landmark{X: 0.60, Y: 0.66}
	h.Points[ThumbIP] = Landmark{X: 0.61, Y: 0.67}
	h.Points[ThumbTip] = Landmark{X: 0.62, Y: 0.65}
	return h
}

// FingersCrossedLandmarks returns index and middle extended with their tips
// overlapping, ring extended and pinky curled.
func FingersCrossedLandmarks() Hand {
	h := Pose{Index: true, Middle: true, Ring: true}.Hand()
	h.Points[IndexDIP] = Landmark{X: 0.52, Y: 0.45}
	h.Points[IndexTip] = Landmark{X: 0.51, Y: 0.35}
	return h
}

// ThreeFingersLandmarks returns index, middle and ring extended and spread,
// a pose no rule names.
func ThreeFingersLandmarks() Hand {
	return Pose{Index: true, Middle: true, Ring: true}.Hand()
}
