package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ayusman/mudra/internal/history"
	"github.com/ayusman/mudra/internal/logging"
	"github.com/ayusman/mudra/internal/store"
)

// ExportFilename is the attachment name used by the CSV export.
const ExportFilename = "gesture_log.csv"

// HistoryHandler serves the in-memory history log and, when an archive is
// configured, the persisted history.
type HistoryHandler struct {
	recorder *history.Recorder
	archive  *store.HistoryRepository
	logger   *slog.Logger
}

// NewHistoryHandler creates a HistoryHandler. archive may be nil.
func NewHistoryHandler(rec *history.Recorder, archive *store.HistoryRepository, logger *slog.Logger) *HistoryHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &HistoryHandler{recorder: rec, archive: archive, logger: logger}
}

type historyResponse struct {
	Entries  []history.Entry `json:"entries"`
	Capacity int             `json:"capacity"`
}

// List handles GET /api/history.
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	writeJSON(w, http.StatusOK, historyResponse{
		Entries:  h.recorder.Entries(),
		Capacity: h.recorder.Capacity(),
	})
}

// Stats handles GET /api/stats.
func (h *HistoryHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	writeJSON(w, http.StatusOK, h.recorder.Stats())
}

// Export handles GET /export-log.
func (h *HistoryHandler) Export(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename="+ExportFilename)
	if err := h.recorder.WriteCSV(w); err != nil {
		h.logger.Warn("failed to write CSV export", "error", err)
	}
}

type archiveResponse struct {
	Entries []history.Entry `json:"entries"`
	Total   int64           `json:"total"`
}

// Archive handles GET /api/history/archive?limit=N. Entries are oldest first.
func (h *HistoryHandler) Archive(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	if h.archive == nil {
		writeError(w, http.StatusNotFound, "history archive is not configured")
		return
	}

	limit := 100
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	entries, err := h.archive.Recent(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to read archive", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to read archive")
		return
	}
	total, err := h.archive.Count(r.Context())
	if err != nil {
		h.logger.Error("failed to count archive", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to read archive")
		return
	}

	if entries == nil {
		entries = []history.Entry{}
	}
	writeJSON(w, http.StatusOK, archiveResponse{Entries: entries, Total: total})
}
