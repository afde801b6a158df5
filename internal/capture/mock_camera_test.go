package capture

import (
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"gocv.io/x/gocv"
)

func TestMockCamera_Playback(t *testing.T) {
	frame1 := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame1.Close()
	frame2 := gocv.NewMatWithSize(240, 320, gocv.MatTypeCV8UC3)
	defer frame2.Close()

	cam := NewMockCamera([]*gocv.Mat{&frame1, &frame2}, false)

	_, err := cam.ReadFrame()
	gt.True(t, errors.Is(err, ErrCameraNotOpen))

	gt.NoError(t, cam.Open())
	defer cam.Close()

	f1, err := cam.ReadFrame()
	gt.NoError(t, err)
	gt.Equal(t, f1.Cols(), 640)
	f1.Close()

	f2, err := cam.ReadFrame()
	gt.NoError(t, err)
	gt.Equal(t, f2.Cols(), 320)
	f2.Close()

	_, err = cam.ReadFrame()
	gt.True(t, errors.Is(err, ErrNoFrame))
}

func TestMockCamera_Loop(t *testing.T) {
	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	cam := NewMockCamera([]*gocv.Mat{&frame}, true)
	gt.NoError(t, cam.Open())
	defer cam.Close()

	for i := 0; i < 5; i++ {
		f, err := cam.ReadFrame()
		gt.NoError(t, err)
		f.Close()
	}
}

func TestMockCamera_Empty(t *testing.T) {
	cam := NewMockCamera(nil, true)
	gt.NoError(t, cam.Open())

	_, err := cam.ReadFrame()
	gt.True(t, errors.Is(err, ErrNoFrame))
}
