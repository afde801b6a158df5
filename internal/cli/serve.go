package cli

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/distance"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/history"
	"github.com/ayusman/mudra/internal/hook"
	"github.com/ayusman/mudra/internal/logging"
	"github.com/ayusman/mudra/internal/recognizer"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/store"
)

func serveCommand() *cli.Command {
	var (
		opts      options
		addr      string
		staticDir string
		capacity  int64
		camera    bool
		deviceID  int64
		fps       int64
		hooksDir  string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Aliases:     []string{"a"},
			Usage:       "HTTP listen address",
			Sources:     cli.EnvVars("MUDRA_ADDR"),
			Destination: &addr,
		},
		&cli.StringFlag{
			Name:        "static-dir",
			Usage:       "Directory of static web files",
			Sources:     cli.EnvVars("MUDRA_STATIC_DIR"),
			Destination: &staticDir,
		},
		&cli.IntFlag{
			Name:        "history-capacity",
			Usage:       "Number of detections kept in the history log",
			Sources:     cli.EnvVars("MUDRA_HISTORY_CAPACITY"),
			Destination: &capacity,
		},
		&cli.BoolFlag{
			Name:        "camera",
			Usage:       "Run the live camera pipeline",
			Sources:     cli.EnvVars("MUDRA_CAMERA"),
			Destination: &camera,
		},
		&cli.IntFlag{
			Name:        "device",
			Usage:       "Camera device ID",
			Sources:     cli.EnvVars("MUDRA_CAMERA_DEVICE"),
			Destination: &deviceID,
		},
		&cli.IntFlag{
			Name:        "fps",
			Usage:       "Camera frames per second",
			Sources:     cli.EnvVars("MUDRA_CAMERA_FPS"),
			Destination: &fps,
		},
		&cli.StringFlag{
			Name:        "hooks-dir",
			Usage:       "Directory of gesture hooks (empty disables hooks)",
			Sources:     cli.EnvVars("MUDRA_HOOKS_DIR"),
			Destination: &hooksDir,
		},
	}
	flags = append(flags, globalFlags(&opts)...)
	flags = append(flags, storeFlags(&opts)...)

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the recognition HTTP API",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := opts.load(c)
			if err != nil {
				return err
			}
			if c.IsSet("addr") {
				cfg.Server.Addr = addr
			}
			if c.IsSet("static-dir") {
				cfg.Server.StaticDir = staticDir
			}
			if c.IsSet("history-capacity") {
				cfg.History.Capacity = int(capacity)
			}
			if c.IsSet("camera") {
				cfg.Camera.Enabled = camera
			}
			if c.IsSet("device") {
				cfg.Camera.DeviceID = int(deviceID)
			}
			if c.IsSet("fps") {
				cfg.Camera.FPS = int(fps)
			}
			if c.IsSet("hooks-dir") {
				cfg.Hooks.Dir = hooksDir
			}
			if err := cfg.Validate(); err != nil {
				return goerr.Wrap(err, "invalid serve options")
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, c, cfg)
		},
	}
}

func serve(ctx context.Context, c *cli.Command, cfg config.Config) error {
	ctx, logger := setupLogger(ctx, c, cfg)

	recOpts := []history.Option{}
	var archive *store.HistoryRepository
	if cfg.Store.Path != "" {
		st, err := openStore(cfg.Store.Path)
		if err != nil {
			return err
		}
		defer st.Close()
		archive = st.History()
		recOpts = append(recOpts, history.WithSink(archive))
		logger.Info("archiving history", "path", cfg.Store.Path)
	}

	rec := history.NewRecorder(cfg.History.Capacity, recOpts...)
	if archive != nil {
		recent, err := archive.Recent(ctx, rec.Capacity())
		if err != nil {
			return goerr.Wrap(err, "failed to restore history")
		}
		rec.Restore(recent)
		logger.Info("history restored", "entries", len(recent))
	}

	hub := server.NewResultsHub(logger)
	publishers := recognizer.Publishers{hub}

	if cfg.Hooks.Dir != "" {
		hooks := hook.NewManager(cfg.Hooks.Dir)
		if err := hooks.Discover(logging.With(ctx, logger)); err != nil {
			return err
		}
		if len(hooks.List()) > 0 {
			dispatcher := hook.NewDispatcher(hooks,
				hook.NewExecutor(cfg.Hooks.Timeout),
				hook.WithCooldown(cfg.Hooks.Cooldown),
			)
			dispatcher.Start(logging.With(ctx, logger))
			defer dispatcher.Close()
			publishers = append(publishers, dispatcher)
		}
	}

	r := recognizer.New(
		gesture.NewClassifier(cfg.Classifier),
		distance.NewEstimator(cfg.Distance),
		rec,
		recognizer.WithPublisher(publishers),
	)

	srvCfg := server.Config{
		StaticDir:  cfg.Server.StaticDir,
		Recognizer: r,
		Archive:    archive,
		Hub:        hub,
		Logger:     logger,
	}
	if srvCfg.StaticDir == "" {
		srvCfg.StaticDir = findWebDir()
	}
	if srvCfg.StaticDir != "" {
		logger.Info("serving static files", "dir", srvCfg.StaticDir)
	}

	if cfg.Camera.Enabled {
		pipeline := app.New(app.Config{
			Camera:     cfg.Camera.Config,
			Detector:   cfg.Detector,
			Recognizer: r,
			Logger:     logger,
		})
		if err := pipeline.Start(ctx); err != nil {
			return err
		}
		pipeline.SetEnabled(true)
		defer pipeline.Stop()
		srvCfg.Detector = pipeline.Detector()
	} else if d, err := detector.NewMediaPipeDetector(cfg.Detector); err == nil {
		defer d.Close()
		srvCfg.Detector = d
	} else {
		logger.Info("image uploads disabled", "reason", err)
	}

	return server.New(srvCfg).ListenAndServe(logging.With(ctx, logger), cfg.Server.Addr)
}

func openStore(path string) (*store.Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, goerr.Wrap(err, "failed to create data directory", goerr.V("path", path))
	}
	return store.New(path)
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.mudra/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".mudra", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
