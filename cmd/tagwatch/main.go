package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lodthe/tagwatch/internal/matcher"
	"github.com/lodthe/tagwatch/internal/metrics"
	"github.com/lodthe/tagwatch/internal/notify"
	"github.com/lodthe/tagwatch/internal/opsapi"
	"github.com/lodthe/tagwatch/internal/state"
	"github.com/lodthe/tagwatch/internal/tagcache"
	"github.com/lodthe/tagwatch/internal/tracker"
	"github.com/lodthe/tagwatch/internal/watcher"
	"github.com/lodthe/tagwatch/internal/workloads"
	"github.com/lodthe/tagwatch/pkg/dockerhub"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

const shutdownTimeout = 5 * time.Second

func main() {
	// Listen to termination signals.
	ctx, cancel := context.WithCancel(context.Background())
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// Initialize config.
	config, err := LoadConfig()
	if err != nil {
		zlog.Fatal().Err(err).Msg("config cannot be loaded")
	}

	// Initialize logger.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	if config.LogFormat == PrettyLogFormat {
		zlog.Logger = zlog.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	lvl, err := zerolog.ParseLevel(config.LogLevel)
	if err != nil {
		zlog.Fatal().Err(err).Msg("invalid log level")
	}

	zlog.Logger = zlog.Logger.Level(lvl)
	logger := zlog.Logger

	// Open the durable version state and load it into memory.
	store, err := state.Open(ctx, config.StatePath)
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to open the state store")
	}
	defer store.Close()

	entries, err := store.Load(ctx)
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to load persisted state")
	}

	logger.Info().Int("tracked_images", len(entries)).Msg("persisted state has been loaded")

	// Initialize the registry side: the Hub client and the catalog cache.
	var hubOpts []dockerhub.Option
	if config.DockerHub.Username != "" {
		hubOpts = append(hubOpts, dockerhub.Auth(config.DockerHub.Username, config.DockerHub.Password))
	}
	hubOpts = append(hubOpts, dockerhub.HTTPClient(&http.Client{Timeout: 30 * time.Second}))

	hubCli := dockerhub.NewClient(dockerhub.DockerHubURL, config.DockerHub.MaxRPS, hubOpts...)
	catalogCache := tagcache.New(logger, hubCli)

	// The workload lister talks to the local Docker Engine.
	lister, err := workloads.NewLister(logger, config.Docker.DaemonURL)
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to create the workload lister")
	}

	// The notification channel is the whole point of the process:
	// failing to authenticate here is fatal.
	sink, err := notify.NewDiscordSink(config.Discord.Token, config.Discord.ChannelID)
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to connect to the notification channel")
	}

	versionTracker := tracker.New(logger, store, entries)

	w := watcher.New(logger, watcher.Config{Interval: config.PollInterval},
		lister, catalogCache, matcher.Match, versionTracker, sink, metrics.NewWatcherExporter())
	go w.Run(ctx)

	// Expose the ops endpoints.
	srv := &http.Server{
		Addr:              config.OpsAddress,
		Handler:           opsapi.NewRouter(w),
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
	go func() {
		zlog.Info().Str("address", config.OpsAddress).Msg("starting the ops server")

		err := srv.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			zlog.Fatal().Err(err).Msg("ops server listen failed")
		}
	}()

	// Export Prometheus metrics.
	go func() {
		zlog.Info().Str("address", config.PrometheusExportAddress).Msg("starting the prometheus exporter")

		metricSrv := &http.Server{
			Addr:              config.PrometheusExportAddress,
			Handler:           http.DefaultServeMux,
			ReadTimeout:       10 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
		}

		http.DefaultServeMux.Handle("/metrics", promhttp.Handler())
		err := metricSrv.ListenAndServe()
		if err != nil {
			zlog.Error().Err(err).Msg("prometheus exporter failed")
		}
	}()

	<-stop
	cancel()

	shutdownCtx, shutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdown()

	err = srv.Shutdown(shutdownCtx)
	if err != nil {
		zlog.Error().Err(err).Msg("ops server shutdown failed")
	}
}
