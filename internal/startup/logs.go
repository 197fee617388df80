package startup

import (
	"sort"
	"strings"
	"time"

	"image-browser/internal/logging"
	"image-browser/internal/memory"

	"github.com/gorilla/mux"
)

// RouteInfo contains information about a registered route
type RouteInfo struct {
	Method string
	Path   string
	Name   string
}

func section(title string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("%s", title)
	logging.Info("------------------------------------------------------------")
}

// LogMemoryConfig logs the outcome of memory.ConfigureFromEnv.
func LogMemoryConfig(result memory.ConfigResult) {
	section("MEMORY CONFIGURATION")
	if !result.Configured {
		logging.Info("  GOMEMLIMIT:      not configured (set MEMORY_LIMIT or GOMEMLIMIT)")
		return
	}
	logging.Info("  GOMEMLIMIT:      %s (source: %s)", memory.FormatBytes(result.GoMemLimit), result.Source)
	if result.ContainerLimit > 0 {
		logging.Info("  Container limit: %s", memory.FormatBytes(result.ContainerLimit))
		logging.Info("  Ratio:           %.0f%%", result.Ratio*100)
	}
}

// LogRasterizerInit logs which rasterizers serve static previews.
func LogRasterizerInit(vipsAvailable bool, err error) {
	section("RASTERIZER INITIALIZATION")
	if vipsAvailable {
		logging.Info("  [OK] libvips initialized")
	} else {
		logging.Warn("  libvips unavailable: %v", err)
		logging.Warn("  Static previews will be decoded in pure Go")
	}
	logging.Info("  Pure Go fallback: imaging (gif, png, jpeg, bmp, webp)")
}

// LogHistoryInit logs reading history initialization
func LogHistoryInit(enabled bool, path string, duration time.Duration) {
	section("HISTORY INITIALIZATION")
	if !enabled {
		logging.Warn("  Reading history disabled (database directory not writable)")
		logging.Warn("  Viewer positions will not be restored")
		return
	}
	logging.Info("  Database:        %s", path)
	logging.Info("  [OK] History initialized in %v", duration)
}

// LogGalleryInit logs the resource manager and collection source setup
func LogGalleryInit(config *Config) {
	section("GALLERY INITIALIZATION")
	logging.Info("  Source:            %s", sourceString(config))
	logging.Info("  Preview capacity:  %d", config.PreviewCacheLimit)
	logging.Info("  Lightbox window:   preload %d, release %d",
		config.LightboxPreloadDistance, config.LightboxReleaseDistance)
	logging.Info("  Probe dimensions:  %v", config.ProbeDimensions)
	logging.Info("  Starting initial scan...")
}

// LogWatchInit logs directory watcher initialization
func LogWatchInit(enabled bool, directories int, debounce time.Duration, err error) {
	section("WATCHER INITIALIZATION")
	switch {
	case err != nil:
		logging.Warn("  Directory watcher failed to start: %v", err)
		logging.Warn("  Use POST /api/rescan to pick up changes")
	case !enabled:
		logging.Info("  Directory watching disabled")
	default:
		logging.Info("  Watching %d directories (debounce %v)", directories, debounce)
		logging.Info("  [OK] Watcher started")
	}
}

// GetRoutes extracts all registered routes from a mux.Router
func GetRoutes(router *mux.Router) ([]RouteInfo, error) {
	var routes []RouteInfo

	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		pathTemplate, err := route.GetPathTemplate()
		if err != nil {
			pathTemplate, err = route.GetPathRegexp()
			if err != nil {
				return err
			}
		}

		methods, err := route.GetMethods()
		if err != nil {
			// Prefix routes such as the blob server have no methods
			methods = []string{"*"}
		}

		name := route.GetName()

		for _, method := range methods {
			routes = append(routes, RouteInfo{
				Method: method,
				Path:   pathTemplate,
				Name:   name,
			})
		}

		return nil
	})

	return routes, err
}

// LogHTTPRoutes logs all registered HTTP routes dynamically
func LogHTTPRoutes(router *mux.Router, logStaticFiles, logHealthChecks bool) {
	section("HTTP SERVER SETUP")

	if logging.IsDebugEnabled() {
		routes, err := GetRoutes(router)
		if err != nil {
			logging.Warn("error walking routes: %v", err)
		}

		logging.Debug("  Registered routes (%d total):", len(routes))
		logging.Debug("")

		groups := make(map[string][]RouteInfo)
		for _, route := range routes {
			prefix := getRouteGroup(route.Path)
			groups[prefix] = append(groups[prefix], route)
		}

		groupKeys := make([]string, 0, len(groups))
		for k := range groups {
			groupKeys = append(groupKeys, k)
		}
		sort.Strings(groupKeys)

		for _, group := range groupKeys {
			if group != "" {
				logging.Debug("  [%s]", group)
			} else {
				logging.Debug("  [root]")
			}

			for _, route := range groups[group] {
				logging.Debug("    %-6s %s", route.Method, route.Path)
			}
			logging.Debug("")
		}
	}

	logging.Info("  HTTP logging enabled")
	if logStaticFiles {
		logging.Info("    Blob logging: ON")
	} else {
		logging.Info("    Blob logging: OFF (set LOG_STATIC_FILES=true to enable)")
	}
	if logHealthChecks {
		logging.Info("    Health check logging: ON")
	} else {
		logging.Info("    Health check logging: OFF (set LOG_HEALTH_CHECKS=true to enable)")
	}
}

// getRouteGroup extracts a group name from a route path
func getRouteGroup(path string) string {
	path = strings.TrimPrefix(path, "/")

	parts := strings.SplitN(path, "/", 2)
	first := parts[0]

	if first == "api" && len(parts) > 1 {
		subParts := strings.SplitN(parts[1], "/", 2)
		return "api/" + subParts[0]
	}

	return first
}

// ServerConfig holds configuration for the server startup log
type ServerConfig struct {
	BindAddress     string
	Port            string
	MetricsPort     string
	MetricsEnabled  bool
	StartupDuration time.Duration
}

// LogServerStarted logs successful server start with all endpoint information
func LogServerStarted(config ServerConfig) {
	section("SERVER STARTED")
	logging.Info("  Startup time:    %v", config.StartupDuration)
	logging.Info("")
	logging.Info("  Endpoints:")
	logging.Info("    Application:   http://%s:%s", config.BindAddress, config.Port)
	if config.MetricsEnabled {
		logging.Info("    Metrics:       http://%s:%s/metrics", config.BindAddress, config.MetricsPort)
	} else {
		logging.Info("    Metrics:       DISABLED")
	}
	logging.Info("")
	logging.Info("  Press Ctrl+C to stop the server")
	logging.Info("------------------------------------------------------------")
	logging.Info("")
}

// LogShutdownInitiated logs shutdown start
func LogShutdownInitiated(signal string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SHUTDOWN INITIATED (received %s)", signal)
	logging.Info("------------------------------------------------------------")
}

// LogShutdownStep logs a shutdown step
func LogShutdownStep(step string) {
	logging.Debug("  %s...", step)
}

// LogShutdownStepComplete logs a completed shutdown step
func LogShutdownStepComplete(step string) {
	logging.Info("  [OK] %s", step)
}

// LogShutdownComplete logs shutdown completion
func LogShutdownComplete() {
	logging.Info("  [OK] Shutdown complete")
}

// LogFatal logs a fatal error and exits
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}
