package startup

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"image-browser/internal/cache"
	"image-browser/internal/logging"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// Defaults for the resource caches and the directory watcher.
const (
	DefaultBindAddress   = "127.0.0.1"
	DefaultWatchDebounce = 2 * time.Second
)

// ErrInvalidCacheConfig is returned when the cache settings cannot build a
// working preview or lightbox cache.
var ErrInvalidCacheConfig = errors.New("invalid cache configuration")

// Config holds all application configuration
type Config struct {
	MediaDir        string
	FileList        string
	DatabaseDir     string
	BindAddress     string
	Port            string
	MetricsPort     string
	MetricsEnabled  bool
	LogStaticFiles  bool
	LogHealthChecks bool

	PreviewCacheLimit       int
	LightboxPreloadDistance int
	LightboxReleaseDistance int
	ProbeDimensions         bool

	WatchEnabled  bool
	WatchDebounce time.Duration

	// Derived paths
	DatabasePath string

	// Feature flags based on directory availability
	HistoryEnabled bool
}

// ListenAddr returns the address the application server binds to.
func (c *Config) ListenAddr() string {
	return c.BindAddress + ":" + c.Port
}

// LoadConfig loads and validates configuration from environment variables
func LoadConfig() (*Config, error) {
	printBanner()
	logSystemInfo()

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	mediaDir := getEnv("MEDIA_DIR", "/media")
	fileList := getEnv("FILE_LIST", "")
	databaseDir := getEnv("DATABASE_DIR", "/database")
	bindAddress := getEnv("BIND_ADDRESS", DefaultBindAddress)
	port := getEnv("PORT", "8080")
	metricsPort := getEnv("METRICS_PORT", "9090")
	metricsEnabled := getEnvBool("METRICS_ENABLED", true)
	logStaticFiles := getEnvBool("LOG_STATIC_FILES", false)
	logHealthChecks := getEnvBool("LOG_HEALTH_CHECKS", true)
	previewLimit := getEnvInt("PREVIEW_CACHE_LIMIT", cache.DefaultCapacity)
	preload := getEnvInt("LIGHTBOX_PRELOAD_DISTANCE", cache.DefaultPreloadDistance)
	release := getEnvInt("LIGHTBOX_RELEASE_DISTANCE", cache.DefaultReleaseDistance)
	probe := getEnvBool("PROBE_DIMENSIONS", false)
	watchEnabled := getEnvBool("WATCH_ENABLED", true)
	watchDebounce := getEnvDuration("WATCH_DEBOUNCE", DefaultWatchDebounce)

	logging.Info("  MEDIA_DIR:                  %s", mediaDir)
	logging.Info("  FILE_LIST:                  %s", orNone(fileList))
	logging.Info("  DATABASE_DIR:               %s", databaseDir)
	logging.Info("  BIND_ADDRESS:               %s", bindAddress)
	logging.Info("  PORT:                       %s", port)
	logging.Info("  METRICS_PORT:               %s", metricsPort)
	logging.Info("  METRICS_ENABLED:            %v", metricsEnabled)
	logging.Info("  PREVIEW_CACHE_LIMIT:        %d", previewLimit)
	logging.Info("  LIGHTBOX_PRELOAD_DISTANCE:  %d", preload)
	logging.Info("  LIGHTBOX_RELEASE_DISTANCE:  %d", release)
	logging.Info("  PROBE_DIMENSIONS:           %v", probe)
	logging.Info("  WATCH_ENABLED:              %v", watchEnabled)
	logging.Info("  WATCH_DEBOUNCE:             %s", watchDebounce)
	logging.Info("  LOG_STATIC_FILES:           %v", logStaticFiles)
	logging.Info("  LOG_HEALTH_CHECKS:          %v", logHealthChecks)
	logging.Info("  LOG_LEVEL:                  %s", logging.GetLevel())

	if err := validateCache(previewLimit, preload, release); err != nil {
		return nil, err
	}

	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DIRECTORY SETUP")
	logging.Info("------------------------------------------------------------")

	mediaDir, err := filepath.Abs(mediaDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve media directory path: %w", err)
	}
	logging.Info("  Media directory (absolute): %s", mediaDir)

	databaseDir, err = filepath.Abs(databaseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database directory path: %w", err)
	}
	logging.Info("  Database directory (absolute): %s", databaseDir)

	if fileList != "" {
		fileList, err = filepath.Abs(fileList)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve file list path: %w", err)
		}
		if _, err := os.Stat(fileList); err != nil {
			return nil, fmt.Errorf("file list error: %w", err)
		}
		logging.Info("  File list (absolute): %s", fileList)
		// A manifest has no directory tree to watch.
		watchEnabled = false
	} else if err := checkDirectory(mediaDir, "media"); err != nil {
		logging.Warn("  Media directory issue: %v", err)
	}

	config := &Config{
		MediaDir:                mediaDir,
		FileList:                fileList,
		DatabaseDir:             databaseDir,
		BindAddress:             bindAddress,
		Port:                    port,
		MetricsPort:             metricsPort,
		MetricsEnabled:          metricsEnabled,
		LogStaticFiles:          logStaticFiles,
		LogHealthChecks:         logHealthChecks,
		PreviewCacheLimit:       previewLimit,
		LightboxPreloadDistance: preload,
		LightboxReleaseDistance: release,
		ProbeDimensions:         probe,
		WatchEnabled:            watchEnabled,
		WatchDebounce:           watchDebounce,
		DatabasePath:            filepath.Join(databaseDir, "history.db"),
	}

	// Reading history is optional
	config.HistoryEnabled = setupOptionalDir(databaseDir, "history")

	// Summary
	logging.Info("")
	logging.Info("  Feature availability:")
	logging.Info("    Source:      %s", sourceString(config))
	logging.Info("    History:     %s", enabledString(config.HistoryEnabled))
	logging.Info("    Watching:    %s", enabledString(config.WatchEnabled))
	logging.Info("    Metrics:     %s", enabledString(config.MetricsEnabled))

	return config, nil
}

func validateCache(previewLimit, preload, release int) error {
	if previewLimit < 1 {
		return fmt.Errorf("%w: PREVIEW_CACHE_LIMIT must be at least 1, got %d", ErrInvalidCacheConfig, previewLimit)
	}
	if preload < 0 {
		return fmt.Errorf("%w: LIGHTBOX_PRELOAD_DISTANCE must not be negative, got %d", ErrInvalidCacheConfig, preload)
	}
	if release <= preload {
		return fmt.Errorf("%w: LIGHTBOX_RELEASE_DISTANCE (%d) must be greater than LIGHTBOX_PRELOAD_DISTANCE (%d)",
			ErrInvalidCacheConfig, release, preload)
	}
	return nil
}

func setupOptionalDir(path, name string) bool {
	logging.Debug("  Setting up %s directory: %s", name, path)

	if err := os.MkdirAll(path, 0o755); err != nil {
		logging.Warn("    Failed to create %s directory: %v", name, err)
		logging.Warn("    %s will be disabled", name)
		return false
	}

	if err := testWriteAccess(path); err != nil {
		logging.Warn("    %s directory is not writable: %v", name, err)
		logging.Warn("    %s will be disabled", name)
		return false
	}

	logging.Debug("    [OK] %s directory ready", name)
	return true
}

func enabledString(enabled bool) string {
	if enabled {
		return "ENABLED"
	}
	return "DISABLED"
}

func sourceString(config *Config) string {
	if config.FileList != "" {
		return "file list " + config.FileList
	}
	return "directory " + config.MediaDir
}

func orNone(value string) string {
	if value == "" {
		return "(none)"
	}
	return value
}

func printBanner() {
	banner := `
------------------------------------------------------------
    ____                              ____
   /  _/___ ___  ____ _____ ____     / __ )_________ _      __________  _____
   / // __ '__ \/ __ '/ __ '/ _ \   / __  / ___/ __ \ | /| / / ___/ _ \/ ___/
 _/ // / / / / / /_/ / /_/ /  __/  / /_/ / /  / /_/ / |/ |/ (__  )  __/ /
/___/_/ /_/ /_/\__,_/\__, /\___/  /_____/_/   \____/|__/|__/____/\___/_/
                    /____/
------------------------------------------------------------`
	fmt.Println(banner)
	logging.Info("  Version:    %s", Version)
	logging.Info("  Commit:     %s", Commit)
	logging.Info("  Build Time: %s", BuildTime)
	logging.Info("  Started:    %s", time.Now().Format(time.RFC1123))
	logging.Info("")
}

func logSystemInfo() {
	logging.Info("------------------------------------------------------------")
	logging.Info("SYSTEM INFORMATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Go version:      %s", runtime.Version())
	logging.Info("  OS/Arch:         %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs available:  %d", runtime.NumCPU())
	logging.Info("  GOMAXPROCS:      %d", runtime.GOMAXPROCS(0))

	if runtime.GOMAXPROCS(0) < runtime.NumCPU() {
		logging.Info("  (Container CPU limit detected)")
	}

	if logging.IsDebugEnabled() {
		logging.Debug("  Goroutines:      %d", runtime.NumGoroutine())

		if wd, err := os.Getwd(); err == nil {
			logging.Debug("  Working dir:     %s", wd)
		}

		if hostname, err := os.Hostname(); err == nil {
			logging.Debug("  Hostname:        %s", hostname)
		}
	}

	logging.Info("")
}

// checkDirectory verifies the media directory without creating it; it is
// expected to be mounted.
func checkDirectory(path, name string) error {
	logging.Debug("  Checking %s directory: %s", name, path)

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path exists but is not a directory")
	}

	logging.Debug("    [OK] Directory exists")

	if logging.IsDebugEnabled() {
		entries, err := os.ReadDir(path)
		if err == nil {
			fileCount := 0
			dirCount := 0
			for _, e := range entries {
				if e.IsDir() {
					dirCount++
				} else {
					fileCount++
				}
			}
			logging.Debug("    Contents: %d files, %d directories (top level)", fileCount, dirCount)
		}
	}

	return nil
}

func testWriteAccess(dir string) error {
	testFile := filepath.Join(dir, ".write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
		return err
	}
	if err := os.Remove(testFile); err != nil {
		logging.Warn("failed to remove write test file %s: %v", testFile, err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("Invalid boolean value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		logging.Warn("Invalid integer value for %s: %q, using default: %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed <= 0 {
		logging.Warn("Invalid duration value for %s: %q, using default: %s", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}
