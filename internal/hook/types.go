// Package hook runs external commands when configured gestures are recognized.
//
// A hook lives in its own directory under the hooks directory and is
// described by a hook.yaml manifest:
//
//	name: volume
//	executable: run.sh
//	gestures: ["Thumbs Up", "Thumbs Down"]
//
// The executable receives a Request as JSON on stdin and must print a
// Response as JSON on stdout.
package hook

import (
	"time"

	"github.com/ayusman/mudra/internal/gesture"
)

// ManifestFile is the manifest name looked up in each hook directory.
const ManifestFile = "hook.yaml"

// Manifest describes a hook.
type Manifest struct {
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description" json:"description,omitempty"`
	Executable  string   `yaml:"executable" json:"executable"`
	Gestures    []string `yaml:"gestures" json:"gestures"`
}

// Hook is a discovered hook with its resolved location.
type Hook struct {
	Manifest   Manifest
	Path       string
	Executable string
}

// Handles reports whether the hook is bound to g.
func (h *Hook) Handles(g gesture.Gesture) bool {
	for _, name := range h.Manifest.Gestures {
		if name == g.String() {
			return true
		}
	}
	return false
}

// Request is written to the hook's stdin.
type Request struct {
	ID        string          `json:"id"`
	Gesture   gesture.Gesture `json:"gesture"`
	Distance  float64         `json:"distance"`
	Timestamp time.Time       `json:"timestamp"`
}

// Response is read from the hook's stdout.
type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}
