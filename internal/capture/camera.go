// Package capture reads frames from a camera device using GoCV (OpenCV).
package capture

import (
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"gocv.io/x/gocv"
)

// Default camera settings
const (
	DefaultFPS    = 5
	DefaultWidth  = 640
	DefaultHeight = 480
)

var (
	// ErrCameraNotOpen is returned when trying to read from a camera that is not open.
	ErrCameraNotOpen = goerr.New("camera is not open")
	// ErrNoFrame is returned when the device produced no usable frame.
	ErrNoFrame = goerr.New("no frame available")
)

// Config selects the capture device and requested frame geometry.
type Config struct {
	DeviceID int `yaml:"device_id"`
	FPS      int `yaml:"fps"`
	Width    int `yaml:"width"`
	Height   int `yaml:"height"`
}

// DefaultConfig returns the first camera at 640x480, 5 frames per second.
func DefaultConfig() Config {
	return Config{
		DeviceID: 0,
		FPS:      DefaultFPS,
		Width:    DefaultWidth,
		Height:   DefaultHeight,
	}
}

// Camera defines the interface for camera capture implementations.
type Camera interface {
	Open() error
	Close() error
	ReadFrame() (*gocv.Mat, error)
	SetFPS(fps int)
	FPS() int
	IsOpen() bool
}

// cameraImpl manages video capture from a camera device using GoCV.
type cameraImpl struct {
	config  Config
	capture *gocv.VideoCapture
	mu      sync.Mutex
	running bool
}

// NewCamera creates a Camera for the configured device. Zero fields take
// their defaults.
func NewCamera(config Config) Camera {
	def := DefaultConfig()
	if config.FPS <= 0 {
		config.FPS = def.FPS
	}
	if config.Width <= 0 {
		config.Width = def.Width
	}
	if config.Height <= 0 {
		config.Height = def.Height
	}
	return &cameraImpl{config: config}
}

// Open opens the camera and requests the configured resolution. The device
// may deliver a different size; consumers read it from each frame.
func (c *cameraImpl) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil
	}

	capture, err := gocv.OpenVideoCapture(c.config.DeviceID)
	if err != nil {
		return goerr.Wrap(err, "failed to open camera", goerr.V("device", c.config.DeviceID))
	}

	capture.Set(gocv.VideoCaptureFrameWidth, float64(c.config.Width))
	capture.Set(gocv.VideoCaptureFrameHeight, float64(c.config.Height))
	capture.Set(gocv.VideoCaptureFPS, float64(c.config.FPS))

	c.capture = capture
	c.running = true

	return nil
}

// Close closes the camera and releases resources.
func (c *cameraImpl) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		c.running = false
		return nil
	}

	err := c.capture.Close()
	c.capture = nil
	c.running = false

	if err != nil {
		return goerr.Wrap(err, "failed to close camera", goerr.V("device", c.config.DeviceID))
	}
	return nil
}

// ReadFrame reads a single frame from the camera.
// The caller is responsible for closing the returned Mat.
func (c *cameraImpl) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	if ok := c.capture.Read(&mat); !ok {
		mat.Close()
		return nil, goerr.Wrap(ErrNoFrame, "read failed", goerr.V("device", c.config.DeviceID))
	}

	if mat.Empty() {
		mat.Close()
		return nil, goerr.Wrap(ErrNoFrame, "captured frame is empty", goerr.V("device", c.config.DeviceID))
	}

	return &mat, nil
}

// SetFPS sets the frames per second for capture.
// Values less than or equal to 0 are ignored.
func (c *cameraImpl) SetFPS(fps int) {
	if fps <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.config.FPS = fps

	if c.capture != nil {
		c.capture.Set(gocv.VideoCaptureFPS, float64(fps))
	}
}

// FPS returns the current frames per second setting.
func (c *cameraImpl) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.config.FPS
}

// IsOpen returns true if the camera is currently open and running.
func (c *cameraImpl) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.running
}
