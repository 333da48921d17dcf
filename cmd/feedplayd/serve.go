package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"feedplay/internal/config"
	"feedplay/internal/feed"
	"feedplay/internal/httpapi"
	"feedplay/internal/media"
	"feedplay/internal/metrics"
	"feedplay/internal/player"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd() *cobra.Command {
	var (
		configPath string
		flags      config.Config
		cors       string
	)
	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Serve a feed session over HTTP",
		Example: "  feedplayd serve --feed ./videos.json\n  feedplayd serve --config feedplayd.yaml --watch",
		RunE: func(cmd *cobra.Command, args []string) error {
			var cfg config.Config
			if configPath != "" {
				loaded, err := config.Load(configPath)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				cfg = loaded
			}
			fs := cmd.Flags()
			if fs.Changed("addr") || cfg.Addr == "" {
				cfg.Addr = flags.Addr
			}
			if fs.Changed("feed") {
				cfg.FeedFile = flags.FeedFile
			}
			if fs.Changed("watch") {
				cfg.WatchFeed = flags.WatchFeed
			}
			if fs.Changed("start") {
				cfg.StartIndex = flags.StartIndex
			}
			if fs.Changed("window-size") {
				cfg.WindowSize = flags.WindowSize
			}
			if fs.Changed("ffprobe") {
				cfg.FFprobeBin = flags.FFprobeBin
			}
			if fs.Changed("log-level") {
				cfg.LogLevel = flags.LogLevel
			}
			if fs.Changed("log-file") {
				cfg.LogFile = flags.LogFile
			}
			if fs.Changed("log-requests") {
				cfg.LogRequests = flags.LogRequests
			}
			if fs.Changed("cors-origins") {
				cfg.CORSOrigins = splitCSV(cors)
			}
			return serve(cmd.Context(), cfg.Defaults())
		},
	}
	f := cmd.Flags()
	f.StringVar(&configPath, "config", envStr("FEEDPLAY_CONFIG", ""), "Config file (.yaml, .json or .toml)")
	f.StringVar(&flags.Addr, "addr", envStr("FEEDPLAY_ADDR", config.DefaultAddr), "HTTP listen address, e.g. :8080")
	f.StringVar(&flags.FeedFile, "feed", "", "Feed manifest (.json, .yaml or .toml)")
	f.BoolVar(&flags.WatchFeed, "watch", false, "Append new manifest entries when the file changes")
	f.IntVar(&flags.StartIndex, "start", 0, "Feed position to open at")
	f.IntVar(&flags.WindowSize, "window-size", config.DefaultWindowSize, "Preload window size")
	f.StringVar(&flags.FFprobeBin, "ffprobe", "", "ffprobe binary used to resolve unknown durations")
	f.StringVar(&flags.LogLevel, "log-level", config.DefaultLogLevel, "Log level: debug|info|warn|error")
	f.StringVar(&flags.LogFile, "log-file", "", "Rotating log file (in addition to stderr)")
	f.StringVar(&flags.LogRequests, "log-requests", "", "Per-request action logging: off|error|info|debug")
	f.StringVar(&cors, "cors-origins", "", "Comma-separated allowed CORS origins (enables CORS)")
	return cmd
}

func serve(parent context.Context, cfg config.Config) error {
	if parent == nil {
		parent = context.Background()
	}
	log, closer := newLogger(cfg.LogLevel, cfg.LogFile)
	defer closer.Close()

	if cfg.FeedFile == "" {
		return errors.New("no feed manifest: set --feed or feed_file")
	}
	store := feed.NewStore()
	videos, err := feed.LoadManifest(cfg.FeedFile)
	if err != nil {
		return fmt.Errorf("load feed: %w", err)
	}
	if _, err := store.Replace(videos); err != nil {
		return err
	}
	log.Info().Str("feed", cfg.FeedFile).Int("items", store.Len()).Msg("feed loaded")

	provider := media.NewProvider(media.Config{
		PrefetchBytes: cfg.PrefetchBytes,
		FFprobeBin:    cfg.FFprobeBin,
		DurationHint:  durationHint(store),
		WarmTimeout:   cfg.OpenTimeout(),
		Logger:        &log,
	})
	sess, err := player.NewSession(store, player.Config{
		Provider:     provider,
		Publisher:    metrics.Publisher{},
		Logger:       &log,
		WindowSize:   cfg.WindowSize,
		TickInterval: cfg.TickInterval(),
		OpenTimeout:  cfg.OpenTimeout(),
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpapi.SetLogger(log)
	if cfg.LogRequests != "" {
		httpapi.SetRequestLogLevel(cfg.LogRequests)
	}
	httpapi.SetBaseContext(ctx)
	httpapi.SetMaxBodyBytes(cfg.MaxBodyBytes)
	httpapi.SetActionTimeout(cfg.ActionTimeout())
	httpapi.SetCORSOptions(len(cfg.CORSOrigins) > 0, cfg.CORSOrigins, nil, nil)
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.NewMux(sess),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// the loop outlives gctx so the session can release its resources on it
	loopCtx, stopLoop := context.WithCancel(context.Background())
	defer stopLoop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return sess.Run(loopCtx) })
	g.Go(func() error {
		log.Info().Str("addr", cfg.Addr).Str("session", sess.ID()).Msg("feedplayd listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	if cfg.WatchFeed {
		w := feed.NewWatcher(cfg.FeedFile, store, log, func(int) {
			if err := sess.FeedGrew(gctx); err != nil {
				log.Warn().Err(err).Msg("re-anchor after append failed")
			}
		})
		g.Go(func() error { return w.Run(gctx) })
	}
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := sess.Close(shutdownCtx); err != nil && !errors.Is(err, player.ErrLoopStopped) {
			log.Warn().Err(err).Msg("session close")
		}
		stopLoop()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("graceful shutdown error")
		}
		return nil
	})

	// an empty feed defers the start until the watcher appends items
	openCtx, cancel := context.WithTimeout(ctx, cfg.OpenTimeout())
	if err := sess.Open(openCtx, cfg.StartIndex); err != nil {
		log.Warn().Err(err).Int("start", cfg.StartIndex).Msg("open feed failed")
	}
	cancel()

	err = g.Wait()
	log.Info().Msg("feedplayd stopped")
	return err
}

// durationHint resolves durations from the manifest so ffprobe only runs for
// entries that did not declare one.
func durationHint(store *feed.Store) func(string) time.Duration {
	return func(locator string) time.Duration {
		item, ok := store.Lookup(locator)
		if !ok || item.Duration <= 0 {
			return 0
		}
		return time.Duration(item.Duration * float64(time.Second))
	}
}
