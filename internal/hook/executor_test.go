package hook

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/ayusman/mudra/internal/gesture"
)

const testManifest = "name: test\nexecutable: run.sh\ngestures: [\"Peace Sign\"]\n"

func testHook(t *testing.T, script string) *Hook {
	t.Helper()
	path := writeHook(t, t.TempDir(), "test", testManifest, script)
	return &Hook{
		Manifest:   Manifest{Name: "test", Executable: "run.sh", Gestures: []string{"Peace Sign"}},
		Path:       path,
		Executable: filepath.Join(path, "run.sh"),
	}
}

var testRequest = Request{
	ID:        "req-1",
	Gesture:   gesture.Peace,
	Distance:  91.4,
	Timestamp: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
}

func TestExecutor_Success(t *testing.T) {
	h := testHook(t, "cat > received.json\necho '{\"success\":true}'\n")

	resp, err := NewExecutor(5*time.Second).Execute(context.Background(), h, testRequest)
	gt.NoError(t, err)
	gt.True(t, resp.Success)

	// The request arrives on stdin and the hook runs in its own directory.
	raw, err := os.ReadFile(filepath.Join(h.Path, "received.json"))
	gt.NoError(t, err)
	var got Request
	gt.NoError(t, json.Unmarshal(raw, &got))
	gt.Equal(t, got.ID, "req-1")
	gt.Equal(t, got.Gesture, gesture.Peace)
	gt.Equal(t, got.Distance, 91.4)
	gt.True(t, got.Timestamp.Equal(testRequest.Timestamp))
}

func TestExecutor_ReportedFailure(t *testing.T) {
	h := testHook(t, "echo '{\"success\":false,\"error\":\"device busy\"}'\n")

	resp, err := NewExecutor(0).Execute(context.Background(), h, testRequest)
	gt.True(t, errors.Is(err, ErrHookFailed))
	gt.True(t, resp != nil)
	gt.Equal(t, resp.Error, "device busy")
}

func TestExecutor_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("non-zero exit", func(t *testing.T) {
		h := testHook(t, "echo boom >&2\nexit 3\n")
		_, err := NewExecutor(0).Execute(ctx, h, testRequest)
		gt.Error(t, err)
	})

	t.Run("malformed response", func(t *testing.T) {
		h := testHook(t, "echo not-json\n")
		_, err := NewExecutor(0).Execute(ctx, h, testRequest)
		gt.Error(t, err)
		gt.False(t, errors.Is(err, ErrHookFailed))
	})

	t.Run("missing executable", func(t *testing.T) {
		h := testHook(t, "")
		_, err := NewExecutor(0).Execute(ctx, h, testRequest)
		gt.Error(t, err)
	})

	t.Run("timeout", func(t *testing.T) {
		h := testHook(t, "exec sleep 5\n")
		start := time.Now()
		_, err := NewExecutor(100*time.Millisecond).Execute(ctx, h, testRequest)
		gt.True(t, errors.Is(err, ErrTimeout))
		gt.True(t, time.Since(start) < 4*time.Second)
	})
}
