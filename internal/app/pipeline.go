package app

import (
	"context"
	"time"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/logging"
)

// runPipeline is the main detection loop. Every tick it reads one frame,
// runs detection and recognition, and releases the frame. Errors are logged
// and the frame is skipped; the loop only exits when stopCh is closed or ctx
// is done.
func (a *App) runPipeline(ctx context.Context, camera capture.Camera, stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	logger := logging.From(ctx)

	fps := camera.FPS()
	if fps <= 0 {
		fps = capture.DefaultFPS
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !a.IsEnabled() {
				continue
			}

			frame, err := camera.ReadFrame()
			if err != nil {
				a.failures.Add(1)
				logger.Debug("error reading frame", "error", err)
				continue
			}

			_, err = a.ProcessFrame(ctx, frame)
			frame.Close()
			if err != nil {
				a.failures.Add(1)
				logger.Warn("frame dropped", "error", err)
			}
		}
	}
}
