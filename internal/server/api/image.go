package api

import (
	"io"
	"log/slog"
	"net/http"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/logging"
	"github.com/ayusman/mudra/internal/recognizer"
)

// maxImageBody bounds uploaded frames.
const maxImageBody = 10 << 20

// ImageHandler runs hand detection on an uploaded image and recognizes the
// result. The form field is "image".
type ImageHandler struct {
	detector   detector.Detector
	recognizer *recognizer.Recognizer
	logger     *slog.Logger
}

// NewImageHandler creates an ImageHandler.
func NewImageHandler(d detector.Detector, r *recognizer.Recognizer, logger *slog.Logger) *ImageHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &ImageHandler{detector: d, recognizer: r, logger: logger}
}

// ServeHTTP handles POST /detect.
func (h *ImageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImageBody)
	file, _, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no image provided")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read image")
		return
	}

	frame, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil || frame.Empty() {
		if err == nil {
			frame.Close()
		}
		writeError(w, http.StatusBadRequest, "image could not be decoded")
		return
	}
	defer frame.Close()

	hands, err := h.detector.Detect(&frame)
	if err != nil {
		h.logger.Error("hand detection failed", "error", err)
		writeError(w, http.StatusInternalServerError, "hand detection failed")
		return
	}

	ctx := logging.With(r.Context(), h.logger)
	res, err := h.recognizer.Process(ctx, hands, frame.Cols(), frame.Rows())
	if err != nil {
		h.logger.Error("recognition failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to process hands")
		return
	}

	writeJSON(w, http.StatusOK, res)
}
