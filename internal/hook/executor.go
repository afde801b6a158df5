package hook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os/exec"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// DefaultTimeout bounds a single hook run.
const DefaultTimeout = 5 * time.Second

var (
	// ErrTimeout is returned when a hook runs longer than the executor timeout.
	ErrTimeout = goerr.New("hook timed out")
	// ErrHookFailed is returned when a hook reports success=false.
	ErrHookFailed = goerr.New("hook reported failure")
)

// Executor runs hooks with a timeout.
type Executor struct {
	timeout time.Duration
}

// NewExecutor creates an Executor. A timeout <= 0 uses DefaultTimeout.
func NewExecutor(timeout time.Duration) *Executor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Executor{timeout: timeout}
}

// Execute runs h with req on stdin in the hook's directory and parses its
// stdout as a Response. A response with success=false is returned together
// with an error wrapping ErrHookFailed.
func (e *Executor) Execute(ctx context.Context, h *Hook, req Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal hook request")
	}

	cmd := exec.CommandContext(ctx, h.Executable)
	cmd.Dir = h.Path
	cmd.Stdin = bytes.NewReader(payload)
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, goerr.Wrap(ErrTimeout, "hook execution",
			goerr.V("hook", h.Manifest.Name),
			goerr.V("timeout", e.timeout.String()),
		)
	}
	if runErr != nil {
		return nil, goerr.Wrap(runErr, "hook execution failed",
			goerr.V("hook", h.Manifest.Name),
			goerr.V("stderr", stderr.String()),
		)
	}

	var resp Response
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		return nil, goerr.Wrap(err, "failed to parse hook response",
			goerr.V("hook", h.Manifest.Name),
			goerr.V("stdout", stdout.String()),
		)
	}
	if !resp.Success {
		return &resp, goerr.Wrap(ErrHookFailed, resp.Error, goerr.V("hook", h.Manifest.Name))
	}
	return &resp, nil
}
