package detector

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/landmark"
	"github.com/ayusman/mudra/internal/logging"
)

// ErrScriptNotFound is returned when mediapipe_service.py cannot be located.
var ErrScriptNotFound = goerr.New("mediapipe_service.py not found")

// MediaPipeDetector implements Detector using a Python MediaPipe subprocess.
//
// Frames are sent as a 4-byte big-endian length followed by JPEG bytes; the
// service answers with one JSON line per frame.
type MediaPipeDetector struct {
	config     Config
	scriptPath string
	cmd        *exec.Cmd
	stdin      io.WriteCloser
	stdout     *bufio.Reader
	mu         sync.Mutex
	started    bool
	lastUsed   time.Time
	idleTimer  *time.Timer
}

// NewMediaPipeDetector creates a new MediaPipe detector.
// The Python process is started lazily on first detection.
func NewMediaPipeDetector(config Config) (*MediaPipeDetector, error) {
	scriptPath := config.ScriptPath
	if scriptPath == "" {
		scriptPath = findMediaPipeScript()
	}
	if scriptPath == "" {
		return nil, ErrScriptNotFound
	}
	if _, err := os.Stat(scriptPath); err != nil {
		return nil, goerr.Wrap(ErrScriptNotFound, "script path not accessible", goerr.V("path", scriptPath))
	}
	if config.IdleTimeout <= 0 {
		config.IdleTimeout = DefaultConfig().IdleTimeout
	}

	return &MediaPipeDetector{
		config:     config,
		scriptPath: scriptPath,
	}, nil
}

// Detect analyzes a frame and returns detected hands.
func (d *MediaPipeDetector) Detect(frame *gocv.Mat) ([]landmark.Hand, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.ensureStarted(); err != nil {
		return nil, err
	}

	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode frame")
	}
	defer buf.Close()

	data := buf.GetBytes()

	length := make([]byte, 4)
	binary.BigEndian.PutUint32(length, uint32(len(data)))

	if _, err := d.stdin.Write(length); err != nil {
		return nil, goerr.Wrap(err, "failed to write frame length")
	}
	if _, err := d.stdin.Write(data); err != nil {
		return nil, goerr.Wrap(err, "failed to write frame data", goerr.V("bytes", len(data)))
	}

	line, err := d.stdout.ReadString('\n')
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read tracker response")
	}

	hands, err := parseResponse([]byte(line), d.config.MaxHands)
	if err != nil {
		return nil, err
	}

	d.lastUsed = time.Now()
	d.resetIdleTimer()

	return hands, nil
}

// Close shuts down the Python process.
func (d *MediaPipeDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.shutdown()
}

func (d *MediaPipeDetector) ensureStarted() error {
	if d.started {
		return nil
	}

	pythonPath := findVenvPython()
	if pythonPath == "" {
		pythonPath = "python3"
	}

	d.cmd = exec.Command(pythonPath, d.scriptPath,
		"--max-hands", strconv.Itoa(d.config.MaxHands),
		"--min-detection-confidence", strconv.FormatFloat(d.config.MinConfidence, 'f', -1, 64),
		"--min-tracking-confidence", strconv.FormatFloat(d.config.MinTrackingConf, 'f', -1, 64),
	)

	stdin, err := d.cmd.StdinPipe()
	if err != nil {
		return goerr.Wrap(err, "failed to create stdin pipe")
	}

	stdout, err := d.cmd.StdoutPipe()
	if err != nil {
		return goerr.Wrap(err, "failed to create stdout pipe")
	}

	d.cmd.Stderr = os.Stderr

	if err := d.cmd.Start(); err != nil {
		return goerr.Wrap(err, "failed to start mediapipe service",
			goerr.V("python", pythonPath),
			goerr.V("script", d.scriptPath),
		)
	}

	logging.Default().Info("mediapipe service started",
		"pid", d.cmd.Process.Pid,
		"script", d.scriptPath,
	)

	d.stdin = stdin
	d.stdout = bufio.NewReader(stdout)
	d.started = true
	d.lastUsed = time.Now()

	return nil
}

func (d *MediaPipeDetector) shutdown() error {
	if !d.started {
		return nil
	}

	if d.idleTimer != nil {
		d.idleTimer.Stop()
		d.idleTimer = nil
	}

	if d.stdin != nil {
		d.stdin.Close()
	}

	err := d.cmd.Wait()
	d.started = false
	d.cmd = nil
	d.stdin = nil
	d.stdout = nil

	if err != nil {
		return goerr.Wrap(err, "mediapipe service exited with error")
	}
	return nil
}

func (d *MediaPipeDetector) resetIdleTimer() {
	if d.idleTimer != nil {
		d.idleTimer.Stop()
	}
	d.idleTimer = time.AfterFunc(d.config.IdleTimeout, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		if err := d.shutdown(); err != nil {
			logging.Default().Warn("idle shutdown of mediapipe service failed", "error", err)
		}
	})
}

func findMediaPipeScript() string {
	execPath, err := os.Executable()
	var execDir string
	if err == nil {
		execDir = filepath.Dir(execPath)
	}

	candidates := []string{
		"scripts/mediapipe_service.py",
		"../scripts/mediapipe_service.py",
		filepath.Join(execDir, "scripts/mediapipe_service.py"),
		filepath.Join(os.Getenv("HOME"), ".mudra/scripts/mediapipe_service.py"),
	}

	return firstExisting(candidates)
}

// findVenvPython looks for a Python interpreter in a virtual environment.
func findVenvPython() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}
	execDir := filepath.Dir(execPath)

	candidates := []string{
		"venv/bin/python",
		"../venv/bin/python",
		"../../venv/bin/python",
		filepath.Join(execDir, "venv/bin/python"),
		filepath.Join(os.Getenv("HOME"), ".mudra/venv/bin/python"),
	}

	return firstExisting(candidates)
}

func firstExisting(candidates []string) string {
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			absPath, err := filepath.Abs(path)
			if err == nil {
				return absPath
			}
			return path
		}
	}
	return ""
}

// trackerResponse is the JSON line written by the Python service.
type trackerResponse struct {
	Hands []trackerHand `json:"hands"`
}

type trackerHand struct {
	Points     []landmark.Landmark `json:"points"`
	Handedness string              `json:"handedness"`
	Score      float64             `json:"score"`
}

// parseResponse decodes one tracker line. Hands with an incomplete skeleton
// are dropped; at most maxHands hands are returned when maxHands > 0.
func parseResponse(line []byte, maxHands int) ([]landmark.Hand, error) {
	var resp trackerResponse
	if err := json.Unmarshal(line, &resp); err != nil {
		return nil, goerr.Wrap(err, "failed to parse tracker response")
	}

	hands := make([]landmark.Hand, 0, len(resp.Hands))
	for i, h := range resp.Hands {
		set, err := landmark.NewSet(h.Points)
		if err != nil {
			logging.Default().Warn("dropping incomplete hand", "index", i, "error", err)
			continue
		}
		hands = append(hands, landmark.Hand{
			Points:     set,
			Handedness: h.Handedness,
			Score:      h.Score,
		})
		if maxHands > 0 && len(hands) == maxHands {
			break
		}
	}
	return hands, nil
}
