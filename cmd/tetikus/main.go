package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	goflags "github.com/jessevdk/go-flags"

	"kafji.net/tetikus/inputsource"
	"kafji.net/tetikus/logging"
	"kafji.net/tetikus/tetikus/capture"
	"kafji.net/tetikus/tetikus/config"
	"kafji.net/tetikus/tetikus/csvlog"
	"kafji.net/tetikus/tetikus/view"
)

var slog = logging.New("tetikus/main")

const version = "0.2.0"

const drainInterval = 100 * time.Millisecond

type options struct {
	File     string        `long:"file" description:"Log file path (default: timestamped name in the log directory)"`
	Dir      string        `long:"dir" description:"Directory for timestamped log files (default: last used, then current directory)"`
	Duration time.Duration `long:"duration" description:"Stop capturing after this long (default: run until interrupted)"`

	NearClickMS int     `long:"near-click-ms" description:"Near-click window in milliseconds" default:"-1"`
	CombatCPS   float64 `long:"combat-cps" description:"Left-clicks per second to call it combat" default:"-1"`
	Coords      bool    `long:"coords" description:"Record cursor coordinates and wheel deltas"`
	NoCoords    bool    `long:"no-coords" description:"Leave coordinate columns blank"`

	Settings string `long:"settings" description:"Settings file path (default: per-user location)"`
	LogLevel string `long:"log-level" description:"debug, info, warn, or error"`
	Version  bool   `long:"version" short:"V" description:"Show version and exit"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "tetikus:", err)
		os.Exit(1)
	}
}

func run() error {
	var opts options
	parser := goflags.NewParser(&opts, goflags.Default)
	parser.Name = "tetikus"
	parser.LongDescription = "System-wide mouse event logger for diagnosing input hardware during fast click sequences."
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*goflags.Error); ok && flagsErr.Type == goflags.ErrHelp {
			return nil
		}
		return err
	}
	if opts.Version {
		fmt.Println("tetikus", version)
		return nil
	}

	logging.Init(os.Stderr)

	settingsPath := opts.Settings
	if settingsPath == "" {
		settingsPath = config.DefaultPath()
	}
	store := config.NewStore(settingsPath)
	cfg := store.Load()

	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}
	logging.SetLogLevel(cfg.LogLevel)

	// command line flags override saved settings for this run
	if opts.NearClickMS >= 0 {
		cfg.NearClickMS = opts.NearClickMS
	}
	if opts.CombatCPS >= 0 {
		cfg.CombatCPS = opts.CombatCPS
	}
	if opts.Coords {
		cfg.CoordsEnabled = true
	}
	if opts.NoCoords {
		cfg.CoordsEnabled = false
	}

	path := opts.File
	if path == "" {
		dir := opts.Dir
		if dir == "" {
			dir = cfg.LastLogDir
		}
		if dir == "" {
			wd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to resolve working directory: %w", err)
			}
			dir = wd
		}
		path = capture.LogPath(dir, time.Now())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if opts.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Duration)
		defer cancel()
	}

	var logWriter *csvlog.Writer
	session := capture.NewSession(capture.Options{
		StartSource: func() capture.Source { return inputsource.Start() },
		OpenLog: func(p string) (capture.RecordWriter, error) {
			w, err := csvlog.Open(p, nil)
			if err != nil {
				return nil, err
			}
			logWriter = w
			return w, nil
		},
	})

	err := session.Start(
		path,
		capture.Thresholds{NearClickMS: cfg.NearClickMS, CombatCPS: cfg.CombatCPS},
		cfg.CoordsEnabled,
	)
	if err != nil {
		return fmt.Errorf("failed to start capture: %w", err)
	}
	slog.Info("capture started",
		"log", path,
		"near_click_ms", cfg.NearClickMS,
		"combat_cps", cfg.CombatCPS,
		"coords", cfg.CoordsEnabled,
	)

	v := view.New(os.Stdout, logWriter.Records(), session.CPS)
	viewDone := make(chan struct{})
	go func() {
		v.Run(drainInterval)
		close(viewDone)
	}()

	watcher := store.Watch(ctx)
	configs := watcher.Configs()

	for running := true; running; {
		select {
		case <-ctx.Done():
			running = false

		case c, ok := <-configs:
			if !ok {
				if ctx.Err() == nil {
					slog.Warn("settings watcher stopped", "error", watcher.Err())
				}
				configs = nil
				continue
			}
			slog.Info("settings changed",
				"near_click_ms", c.NearClickMS,
				"combat_cps", c.CombatCPS,
				"coords", c.CoordsEnabled,
			)
			session.SetNearClickMS(c.NearClickMS)
			session.SetCombatCPS(c.CombatCPS)
			session.SetCoordsEnabled(c.CoordsEnabled)
			logging.SetLogLevel(c.LogLevel)
			cfg = c
		}
	}

	session.Stop()
	<-viewDone

	cfg.LastLogDir = filepath.Dir(path)
	store.Save(cfg)

	slog.Info("capture stopped", "log", path, "events", v.Count(), "view_dropped", logWriter.Dropped())
	return nil
}
