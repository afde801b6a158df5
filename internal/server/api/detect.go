package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/ayusman/mudra/internal/landmark"
	"github.com/ayusman/mudra/internal/logging"
	"github.com/ayusman/mudra/internal/recognizer"
)

// maxDetectBody bounds request bodies; a 21-point hand is well under 2KB.
const maxDetectBody = 1 << 20

// DetectHandler classifies landmark sets posted by an external hand tracker.
type DetectHandler struct {
	recognizer *recognizer.Recognizer
	logger     *slog.Logger
}

// NewDetectHandler creates a DetectHandler.
func NewDetectHandler(r *recognizer.Recognizer, logger *slog.Logger) *DetectHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &DetectHandler{recognizer: r, logger: logger}
}

type detectRequest struct {
	Width  int                    `json:"width"`
	Height int                    `json:"height"`
	Hands  []recognizer.HandInput `json:"hands"`
}

// ServeHTTP handles POST /api/detect.
func (h *DetectHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req detectRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxDetectBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Width <= 0 || req.Height <= 0 {
		writeError(w, http.StatusBadRequest, "width and height must be positive")
		return
	}

	ctx := logging.With(r.Context(), h.logger)
	res, err := h.recognizer.ProcessInput(ctx, req.Hands, req.Width, req.Height)
	if err != nil {
		if errors.Is(err, landmark.ErrInvalidLandmarkSet) {
			writeError(w, http.StatusBadRequest, "each hand needs exactly 21 landmarks")
			return
		}
		h.logger.Error("detect failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to process hands")
		return
	}

	writeJSON(w, http.StatusOK, res)
}
