package api

import (
	"net/http"

	"github.com/ayusman/mudra/internal/gesture"
)

// GestureHandler lists the classifier's rule table.
type GestureHandler struct {
	classifier *gesture.Classifier
}

// NewGestureHandler creates a GestureHandler for c.
func NewGestureHandler(c *gesture.Classifier) *GestureHandler {
	return &GestureHandler{classifier: c}
}

type ruleResponse struct {
	Priority int             `json:"priority"`
	Name     string          `json:"name"`
	Gesture  gesture.Gesture `json:"gesture"`
}

type listGesturesResponse struct {
	Rules      []ruleResponse     `json:"rules"`
	Thresholds gesture.Thresholds `json:"thresholds"`
	Fallback   gesture.Gesture    `json:"fallback"`
}

// ServeHTTP handles GET /api/gestures.
func (h *GestureHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	rules := h.classifier.Rules()
	resp := listGesturesResponse{
		Rules:      make([]ruleResponse, len(rules)),
		Thresholds: h.classifier.Thresholds(),
		Fallback:   gesture.Unrecognized,
	}
	for i, rule := range rules {
		resp.Rules[i] = ruleResponse{
			Priority: i + 1,
			Name:     rule.Name,
			Gesture:  rule.Gesture,
		}
	}

	writeJSON(w, http.StatusOK, resp)
}
