// Package config loads mudra's YAML configuration.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"gopkg.in/yaml.v3"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/distance"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/history"
	"github.com/ayusman/mudra/internal/hook"
	"github.com/ayusman/mudra/internal/logging"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = goerr.New("invalid configuration")

// Config is the full configuration tree.
type Config struct {
	Server     ServerConfig       `yaml:"server"`
	Store      StoreConfig        `yaml:"store"`
	History    HistoryConfig      `yaml:"history"`
	Classifier gesture.Thresholds `yaml:"classifier"`
	Distance   distance.Config    `yaml:"distance"`
	Camera     CameraConfig       `yaml:"camera"`
	Detector   detector.Config    `yaml:"detector"`
	Hooks      HooksConfig        `yaml:"hooks"`
	Log        LogConfig          `yaml:"log"`
}

type ServerConfig struct {
	Addr      string `yaml:"addr"`
	StaticDir string `yaml:"static_dir"`
}

// StoreConfig locates the SQLite archive. An empty Path disables archiving.
type StoreConfig struct {
	Path string `yaml:"path"`
}

type HistoryConfig struct {
	Capacity int `yaml:"capacity"`
}

// CameraConfig embeds the capture settings with the pipeline switch.
type CameraConfig struct {
	Enabled        bool `yaml:"enabled"`
	capture.Config `yaml:",inline"`
}

// HooksConfig controls gesture hooks. An empty Dir disables them.
type HooksConfig struct {
	Dir      string        `yaml:"dir"`
	Timeout  time.Duration `yaml:"timeout"`
	Cooldown time.Duration `yaml:"cooldown"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// DefaultStorePath returns ~/.mudra/mudra.db, or "" when the home directory
// is unknown.
func DefaultStorePath() string {
	return inDataDir("mudra.db")
}

// DefaultHooksDir returns ~/.mudra/hooks, or "" when the home directory is
// unknown.
func DefaultHooksDir() string {
	return inDataDir("hooks")
}

func inDataDir(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".mudra", name)
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr: ":8080",
		},
		Store: StoreConfig{
			Path: DefaultStorePath(),
		},
		History: HistoryConfig{
			Capacity: history.DefaultCapacity,
		},
		Classifier: gesture.DefaultThresholds(),
		Distance:   distance.DefaultConfig(),
		Camera: CameraConfig{
			Config: capture.DefaultConfig(),
		},
		Detector: detector.DefaultConfig(),
		Hooks: HooksConfig{
			Dir:      DefaultHooksDir(),
			Timeout:  hook.DefaultTimeout,
			Cooldown: hook.DefaultCooldown,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads path over Default(). Keys missing from the file keep their
// default values. The result is validated.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, goerr.Wrap(err, "failed to read config file", goerr.V("file", path))
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, goerr.Wrap(err, "failed to parse config file", goerr.V("file", path))
	}

	if err := cfg.Validate(); err != nil {
		return cfg, goerr.Wrap(err, "config file rejected", goerr.V("file", path))
	}

	return cfg, nil
}

// Validate reports the first inconsistent setting.
func (c Config) Validate() error {
	invalid := func(key string, value any) error {
		return goerr.Wrap(ErrInvalidConfig, "bad value", goerr.V("key", key), goerr.V("value", value))
	}

	if c.History.Capacity <= 0 {
		return invalid("history.capacity", c.History.Capacity)
	}
	if c.Classifier.Pinch <= 0 {
		return invalid("classifier.pinch", c.Classifier.Pinch)
	}
	if c.Classifier.Cross <= 0 {
		return invalid("classifier.cross", c.Classifier.Cross)
	}
	if c.Distance.HandWidthCM <= 0 {
		return invalid("distance.hand_width_cm", c.Distance.HandWidthCM)
	}
	if c.Distance.FocalFactor <= 0 {
		return invalid("distance.focal_factor", c.Distance.FocalFactor)
	}
	if c.Distance.MinCM < 0 || c.Distance.MaxCM <= c.Distance.MinCM {
		return invalid("distance.max_cm", c.Distance.MaxCM)
	}
	if c.Camera.FPS <= 0 {
		return invalid("camera.fps", c.Camera.FPS)
	}
	if c.Detector.MaxHands <= 0 {
		return invalid("detector.max_hands", c.Detector.MaxHands)
	}
	if c.Detector.MinConfidence < 0 || c.Detector.MinConfidence > 1 {
		return invalid("detector.min_confidence", c.Detector.MinConfidence)
	}
	if c.Detector.MinTrackingConf < 0 || c.Detector.MinTrackingConf > 1 {
		return invalid("detector.min_tracking_confidence", c.Detector.MinTrackingConf)
	}
	if c.Hooks.Timeout <= 0 {
		return invalid("hooks.timeout", c.Hooks.Timeout.String())
	}
	if c.Hooks.Cooldown < 0 {
		return invalid("hooks.cooldown", c.Hooks.Cooldown.String())
	}
	if _, ok := logging.ParseLevel(c.Log.Level); !ok {
		return invalid("log.level", c.Log.Level)
	}
	return nil
}
