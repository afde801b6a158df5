// Package app runs the live camera pipeline: frames are read from a camera,
// passed to the hand detector and the detected hands are recognized.
package app

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/m-mizutani/goerr/v2"
	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/logging"
	"github.com/ayusman/mudra/internal/recognizer"
)

// Config holds configuration options for the application.
type Config struct {
	Camera     capture.Config
	Detector   detector.Config
	Recognizer *recognizer.Recognizer
	Logger     *slog.Logger
}

// App owns the camera, the detector and the pipeline goroutine.
type App struct {
	config     Config
	camera     capture.Camera
	detector   detector.Detector
	recognizer *recognizer.Recognizer
	logger     *slog.Logger
	enabled    bool
	mu         sync.RWMutex
	stopCh     chan struct{}
	doneCh     chan struct{}

	frames   atomic.Int64
	failures atomic.Int64
}

// New creates a new App instance with the given configuration.
func New(config Config) *App {
	logger := config.Logger
	if logger == nil {
		logger = logging.Default()
	}
	rec := config.Recognizer
	if rec == nil {
		rec = recognizer.New(nil, nil, nil)
	}

	a := &App{
		config:     config,
		camera:     capture.NewCamera(config.Camera),
		recognizer: rec,
		logger:     logger,
	}

	// Try MediaPipe first, fall back to mock detector
	if mp, err := detector.NewMediaPipeDetector(config.Detector); err == nil {
		a.detector = mp
		logger.Info("using MediaPipe hand detection")
	} else {
		logger.Warn("MediaPipe not available, using mock detector", "error", err)
		a.detector = detector.NewMockDetector()
	}

	return a
}

// SetEnabled enables or disables gesture detection.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled returns whether gesture detection is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetDetector sets the hand detector implementation to use.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// SetCamera replaces the camera. It has no effect on a running pipeline.
func (a *App) SetCamera(c capture.Camera) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.camera = c
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.camera
}

// Detector returns the hand detector.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}

// Recognizer returns the recognizer frames are passed to.
func (a *App) Recognizer() *recognizer.Recognizer {
	return a.recognizer
}

// FramesProcessed returns the number of frames recognized so far.
func (a *App) FramesProcessed() int64 {
	return a.frames.Load()
}

// Failures returns the number of frames dropped because of errors.
func (a *App) Failures() int64 {
	return a.failures.Load()
}

// Start opens the camera and begins the detection pipeline. Calling Start on
// a running App does nothing.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return goerr.Wrap(err, "failed to start pipeline")
	}

	a.stopCh = make(chan struct{})
	a.doneCh = make(chan struct{})
	go a.runPipeline(logging.With(ctx, a.logger), a.camera, a.stopCh, a.doneCh)

	a.logger.Info("detection pipeline started", "fps", a.camera.FPS())
	return nil
}

// Stop halts the detection pipeline and releases resources.
func (a *App) Stop() {
	a.mu.Lock()
	stopCh, doneCh := a.stopCh, a.doneCh
	a.stopCh, a.doneCh = nil, nil
	camera, det := a.camera, a.detector
	a.mu.Unlock()

	if stopCh != nil {
		close(stopCh)
		<-doneCh
	}

	if err := camera.Close(); err != nil {
		a.logger.Warn("error closing camera", "error", err)
	}

	if det != nil {
		if err := det.Close(); err != nil {
			a.logger.Warn("error closing detector", "error", err)
		}
	}

	a.logger.Info("detection pipeline stopped",
		"frames", a.FramesProcessed(),
		"failures", a.Failures(),
	)
}

// ProcessFrame detects hands in frame and recognizes them. The frame size
// passed to distance estimation is read from the Mat. The caller keeps
// ownership of frame.
func (a *App) ProcessFrame(ctx context.Context, frame *gocv.Mat) (recognizer.Result, error) {
	det := a.Detector()
	if det == nil {
		return recognizer.Result{}, goerr.New("no detector configured")
	}

	hands, err := det.Detect(frame)
	if err != nil {
		return recognizer.Result{}, goerr.Wrap(err, "failed to detect hands")
	}

	res, err := a.recognizer.Process(ctx, hands, frame.Cols(), frame.Rows())
	if err != nil {
		return recognizer.Result{}, err
	}

	a.frames.Add(1)
	return res, nil
}
