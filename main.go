package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"image-browser/internal/filesystem"
	"image-browser/internal/gallery"
	"image-browser/internal/handlers"
	"image-browser/internal/history"
	"image-browser/internal/locator"
	"image-browser/internal/logging"
	"image-browser/internal/media"
	"image-browser/internal/memory"
	"image-browser/internal/metrics"
	"image-browser/internal/middleware"
	"image-browser/internal/resources"
	"image-browser/internal/source"
	"image-browser/internal/startup"
	"image-browser/internal/walker"
	"image-browser/internal/watch"
)

func main() {
	startTime := time.Now()

	// Size the Go heap before anything allocates
	memResult := memory.ConfigureFromEnv()

	// Load configuration
	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}
	startup.LogMemoryConfig(memResult)

	// Metrics
	metrics.SetAppInfo(startup.Version, startup.Commit, startup.GoVersion)
	metrics.InitializeMetrics()
	filesystem.SetObserver(metrics.NewFilesystemObserver())

	// Rasterizers
	vipsErr := media.InitVips()
	startup.LogRasterizerInit(media.IsVipsAvailable(), vipsErr)
	defer media.ShutdownVips()

	// Reading history (optional)
	hist := openHistory(config)
	if hist != nil {
		defer hist.Close()
	}

	// Resource engine
	startup.LogGalleryInit(config)
	blobs := locator.NewStore()
	blobs.SetObserver(metrics.NewLocatorObserver())

	manager, err := resources.NewManager(resources.NewProducer(blobs), resources.Options{
		PreviewCapacity: config.PreviewCacheLimit,
		PreloadDistance: config.LightboxPreloadDistance,
		ReleaseDistance: config.LightboxReleaseDistance,
		Observer:        metrics.NewCacheObserver(),
	})
	if err != nil {
		startup.LogFatal("Failed to create resource manager: %v", err)
	}

	src, err := collectionSource(config)
	if err != nil {
		startup.LogFatal("Failed to read collection source: %v", err)
	}

	scanner := walker.New(walker.Options{ProbeDimensions: config.ProbeDimensions})
	g := gallery.New(manager, scanner, src)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g.Start(ctx)

	// Directory watcher
	var watcher *watch.Watcher
	if root := watchRoot(g.Source()); config.WatchEnabled && root != "" {
		watcher, err = watch.New(root, config.WatchDebounce, g.TriggerReload)
		if err != nil {
			startup.LogWatchInit(true, 0, config.WatchDebounce, err)
		} else {
			startup.LogWatchInit(true, watcher.Directories(), config.WatchDebounce, nil)
		}
	} else {
		startup.LogWatchInit(false, 0, 0, nil)
	}

	// Memory pressure sheds previews
	monitor := memory.NewMonitor(memory.DefaultConfig(), manager)
	monitor.Start()

	collector := metrics.NewCollector(g, 30*time.Second)
	collector.Start()

	// Routes and middleware
	h := handlers.New(g, blobs, hist)
	router := h.Router()
	router.Use(middleware.Metrics(middleware.DefaultMetricsConfig()))

	startup.LogHTTPRoutes(router, config.LogStaticFiles, config.LogHealthChecks)

	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogStaticFiles = config.LogStaticFiles
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	loggedHandler := middleware.Logger(loggingConfig)(router)

	compressionConfig := middleware.DefaultCompressionConfig()
	handler := middleware.Compression(compressionConfig)(loggedHandler)

	srv := &http.Server{
		Addr:         config.ListenAddr(),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", h.MetricsHandler())
		metricsSrv = &http.Server{
			Addr:              config.BindAddress + ":" + config.MetricsPort,
			Handler:           metricsMux,
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	shutdownDone := make(chan struct{})
	go handleShutdown(shutdownDone, shutdownTargets{
		server:        srv,
		metricsServer: metricsSrv,
		cancel:        cancel,
		watcher:       watcher,
		monitor:       monitor,
		collector:     collector,
		manager:       manager,
	})

	startup.LogServerStarted(startup.ServerConfig{
		BindAddress:     config.BindAddress,
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		startup.LogFatal("Server error: %v", err)
	}
	<-shutdownDone
}

// openHistory opens the reading history database, or returns nil when
// history is disabled or the database cannot be opened.
func openHistory(config *startup.Config) *history.Store {
	if !config.HistoryEnabled {
		startup.LogHistoryInit(false, "", 0)
		return nil
	}

	start := time.Now()
	hist, err := history.Open(context.Background(), config.DatabasePath)
	if err != nil {
		logging.Error("Failed to open history database: %v", err)
		startup.LogHistoryInit(false, "", 0)
		return nil
	}
	startup.LogHistoryInit(true, hist.Path(), time.Since(start))
	return hist
}

// collectionSource builds the gallery source: the media directory, or the
// files named by FILE_LIST.
func collectionSource(config *startup.Config) (gallery.Source, error) {
	if config.FileList == "" {
		return gallery.DirSource(config.MediaDir), nil
	}

	paths, err := source.ReadFileList(config.FileList)
	if err != nil {
		return gallery.Source{}, err
	}
	logging.Info("  File list holds %d entries", len(paths))
	return gallery.FileListSource(source.FileList(paths, config.MediaDir), config.FileList), nil
}

// watchRoot returns the directory to watch for src, or "" when src is not
// backed by an OS directory tree.
func watchRoot(src gallery.Source) string {
	if src.IsFileList() {
		return ""
	}
	return source.OSPath(src.Root)
}

type shutdownTargets struct {
	server        *http.Server
	metricsServer *http.Server
	cancel        context.CancelFunc
	watcher       *watch.Watcher
	monitor       *memory.Monitor
	collector     *metrics.Collector
	manager       *resources.Manager
}

func handleShutdown(done chan<- struct{}, t shutdownTargets) {
	defer close(done)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if t.watcher != nil {
		startup.LogShutdownStep("Stopping directory watcher")
		t.watcher.Stop()
		startup.LogShutdownStepComplete("Directory watcher stopped")
	}

	startup.LogShutdownStep("Stopping background scans")
	t.cancel()
	t.monitor.Stop()
	t.collector.Stop()
	startup.LogShutdownStepComplete("Background work stopped")

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := t.server.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	if t.metricsServer != nil {
		if err := t.metricsServer.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		}
	}

	startup.LogShutdownStep("Releasing locators")
	t.manager.ReleaseAll()
	startup.LogShutdownStepComplete("Locators released")

	startup.LogShutdownComplete()
}
