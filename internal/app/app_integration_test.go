package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/history"
	"github.com/ayusman/mudra/internal/landmark"
	"github.com/ayusman/mudra/internal/recognizer"
)

func newTestApp(t *testing.T) (*App, *detector.MockDetector, *history.Recorder) {
	t.Helper()

	rec := history.NewRecorder(history.DefaultCapacity)
	a := New(Config{
		Recognizer: recognizer.New(nil, nil, rec),
	})

	mock := detector.NewMockDetector()
	a.SetDetector(mock)
	return a, mock, rec
}

func TestApp_ProcessFrame(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	a, mock, rec := newTestApp(t)
	mock.SetHands([]landmark.Hand{landmark.ThumbsUpLandmarks()})

	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	res, err := a.ProcessFrame(context.Background(), &frame)
	gt.NoError(t, err)
	gt.Equal(t, res.Gesture, gesture.ThumbsUp)
	// Frame geometry comes from the Mat: 0.14 * 480px wrist to middle MCP.
	gt.Equal(t, res.Distance, 91.4)
	gt.Equal(t, rec.Len(), 1)
	gt.Equal(t, a.FramesProcessed(), int64(1))
}

func TestApp_ProcessFrame_NoHand(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	a, _, rec := newTestApp(t)

	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	res, err := a.ProcessFrame(context.Background(), &frame)
	gt.NoError(t, err)
	gt.Equal(t, res.Gesture, gesture.NoHand)
	gt.Equal(t, rec.Len(), 0)
}

func TestApp_ProcessFrame_DetectorError(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	a, mock, rec := newTestApp(t)
	detectErr := errors.New("tracker crashed")
	mock.SetError(detectErr)

	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	_, err := a.ProcessFrame(context.Background(), &frame)
	gt.Error(t, err)
	gt.True(t, errors.Is(err, detectErr))
	gt.Equal(t, rec.Len(), 0)
	gt.Equal(t, a.FramesProcessed(), int64(0))
}

func TestApp_Pipeline(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	a, mock, rec := newTestApp(t)
	mock.SetHands([]landmark.Hand{landmark.PeaceLandmarks()})

	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	cam := capture.NewMockCamera([]*gocv.Mat{&frame}, true)
	cam.SetFPS(50)
	a.SetCamera(cam)

	t.Run("disabled pipeline reads no frames", func(t *testing.T) {
		gt.NoError(t, a.Start(context.Background()))
		time.Sleep(100 * time.Millisecond)
		gt.Equal(t, mock.Calls(), 0)
		a.Stop()
	})

	t.Run("enabled pipeline records detections", func(t *testing.T) {
		a.SetEnabled(true)
		gt.NoError(t, a.Start(context.Background()))
		defer a.Stop()

		deadline := time.Now().Add(2 * time.Second)
		for rec.Len() < 3 && time.Now().Before(deadline) {
			time.Sleep(20 * time.Millisecond)
		}

		gt.True(t, rec.Len() >= 3)
		for _, e := range rec.Entries() {
			gt.Equal(t, e.Gesture, gesture.Peace)
		}
	})
}

func TestApp_StopWithoutStart(t *testing.T) {
	a, _, _ := newTestApp(t)
	a.SetCamera(capture.NewMockCamera(nil, false))
	a.Stop()
	gt.False(t, a.IsEnabled())
}
