package distance

import (
	"math"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/ayusman/mudra/internal/landmark"
)

// handAt places the wrist and middle MCP at the given pixel positions in a
// width x height image.
func handAt(width, height int, wx, wy, mx, my float64) landmark.Set {
	var s landmark.Set
	s[landmark.Wrist] = landmark.Landmark{X: wx / float64(width), Y: wy / float64(height)}
	s[landmark.MiddleMCP] = landmark.Landmark{X: mx / float64(width), Y: my / float64(height)}
	return s
}

func TestEstimator_Estimate(t *testing.T) {
	e := NewEstimator(DefaultConfig())

	t.Run("close hand clamps to max", func(t *testing.T) {
		// hand width 30px, focal 480 -> 8*480/30 = 128cm -> 100
		s := handAt(400, 300, 100, 100, 130, 100)
		gt.True(t, math.Abs(HandWidthPixels(s, 400, 300)-30) < 1e-9)
		gt.Equal(t, e.Estimate(s, 400, 300), 100.0)
	})

	t.Run("in range", func(t *testing.T) {
		// hand width 96px in a 640px image: 8*768/96 = 64cm
		s := handAt(640, 480, 320, 400, 320, 304)
		gt.Equal(t, e.Estimate(s, 640, 480), 64.0)
	})

	t.Run("rounds to one decimal", func(t *testing.T) {
		// 8*768/70 = 87.771...
		s := handAt(640, 480, 100, 100, 170, 100)
		gt.Equal(t, e.Estimate(s, 640, 480), 87.8)
	})

	t.Run("large hand clamps to min", func(t *testing.T) {
		s := handAt(640, 480, 0, 0, 640, 480)
		gt.Equal(t, e.Estimate(s, 640, 480), 10.0)
	})

	t.Run("tiny hand saturates at max", func(t *testing.T) {
		s := handAt(640, 480, 100, 100, 100.0001, 100)
		gt.Equal(t, e.Estimate(s, 640, 480), 100.0)
	})

	t.Run("zero hand width is degenerate", func(t *testing.T) {
		s := handAt(640, 480, 100, 100, 100, 100)
		gt.Equal(t, e.Estimate(s, 640, 480), 0.0)
	})

	t.Run("zero image size is degenerate", func(t *testing.T) {
		s := handAt(640, 480, 100, 100, 170, 100)
		gt.Equal(t, e.Estimate(s, 0, 480), 0.0)
		gt.Equal(t, e.Estimate(s, 640, 0), 0.0)
	})
}

func TestEstimator_FromPixels(t *testing.T) {
	e := NewEstimator(DefaultConfig())

	for _, px := range []float64{1e-9, 0.5, 1, 10} {
		gt.Equal(t, e.FromPixels(px, 480), 100.0)
	}
	for _, px := range []float64{1000, 1e6, 1e12} {
		gt.Equal(t, e.FromPixels(px, 480), 10.0)
	}
	gt.Equal(t, e.FromPixels(0, 480), 0.0)
	gt.Equal(t, e.FromPixels(-3, 480), 0.0)
}

func TestEstimator_Deterministic(t *testing.T) {
	e := NewEstimator(DefaultConfig())
	s := landmark.OpenPalmLandmarks().Points

	first := e.Estimate(s, 1280, 720)
	for i := 0; i < 50; i++ {
		gt.Equal(t, e.Estimate(s, 1280, 720), first)
	}
	gt.True(t, first >= DefaultMinCM && first <= DefaultMaxCM)
}

func TestNewEstimator_Defaults(t *testing.T) {
	t.Run("zero config", func(t *testing.T) {
		e := NewEstimator(Config{})
		gt.Equal(t, e.Config(), DefaultConfig())
	})

	t.Run("swapped bounds", func(t *testing.T) {
		e := NewEstimator(Config{MinCM: 80, MaxCM: 20})
		gt.Equal(t, e.Config().MinCM, 20.0)
		gt.Equal(t, e.Config().MaxCM, 80.0)
	})
}
