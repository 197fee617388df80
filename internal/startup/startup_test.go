package startup

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gorilla/mux"
)

func TestGetBuildInfo(t *testing.T) {
	info := GetBuildInfo()

	if info.Version == "" {
		t.Error("Expected Version to be set")
	}
	if info.OS == "" {
		t.Error("Expected OS to be set")
	}
	if info.Arch == "" {
		t.Error("Expected Arch to be set")
	}
	if info.GoVersion != GoVersion {
		t.Errorf("Expected GoVersion=%s, got %s", GoVersion, info.GoVersion)
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("TEST_SET_VAR", "custom")
	t.Setenv("TEST_EMPTY_VAR", "")

	tests := []struct {
		name string
		key  string
		want string
	}{
		{"Returns env value when set", "TEST_SET_VAR", "custom"},
		{"Returns default when env var is empty", "TEST_EMPTY_VAR", "default"},
		{"Returns default when env var not set", "TEST_UNSET_VAR_IMAGE_BROWSER", "default"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := getEnv(tt.key, "default"); got != tt.want {
				t.Errorf("getEnv(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		name         string
		value        string
		defaultValue bool
		want         bool
	}{
		{"unset uses default", "", true, true},
		{"true", "true", false, true},
		{"false", "false", true, false},
		{"one", "1", false, true},
		{"zero", "0", true, false},
		{"invalid uses default", "maybe", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_BOOL", tt.value)
			if got := getEnvBool("TEST_BOOL", tt.defaultValue); got != tt.want {
				t.Errorf("getEnvBool(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  int
	}{
		{"unset uses default", "", 7},
		{"valid", "42", 42},
		{"negative", "-3", -3},
		{"invalid uses default", "lots", 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_INT", tt.value)
			if got := getEnvInt("TEST_INT", 7); got != tt.want {
				t.Errorf("getEnvInt(%q) = %d, want %d", tt.value, got, tt.want)
			}
		})
	}
}

func TestGetEnvDuration(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{"unset uses default", "", 2 * time.Second},
		{"valid", "500ms", 500 * time.Millisecond},
		{"invalid uses default", "soon", 2 * time.Second},
		{"non-positive uses default", "0s", 2 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_DURATION", tt.value)
			if got := getEnvDuration("TEST_DURATION", 2*time.Second); got != tt.want {
				t.Errorf("getEnvDuration(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestValidateCache(t *testing.T) {
	tests := []struct {
		name                    string
		limit, preload, release int
		wantErr                 bool
	}{
		{"defaults", 200, 1, 2, false},
		{"zero preload", 10, 0, 1, false},
		{"zero limit", 0, 1, 2, true},
		{"negative preload", 10, -1, 2, true},
		{"release equals preload", 10, 2, 2, true},
		{"release below preload", 10, 3, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateCache(tt.limit, tt.preload, tt.release)
			if (err != nil) != tt.wantErr {
				t.Fatalf("validateCache() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidCacheConfig) {
				t.Errorf("error %v is not ErrInvalidCacheConfig", err)
			}
		})
	}
}

func setConfigEnv(t *testing.T, media, database string) {
	t.Helper()
	t.Setenv("MEDIA_DIR", media)
	t.Setenv("DATABASE_DIR", database)
	t.Setenv("FILE_LIST", "")
	t.Setenv("BIND_ADDRESS", "")
	t.Setenv("PORT", "")
	t.Setenv("PREVIEW_CACHE_LIMIT", "")
	t.Setenv("LIGHTBOX_PRELOAD_DISTANCE", "")
	t.Setenv("LIGHTBOX_RELEASE_DISTANCE", "")
	t.Setenv("WATCH_ENABLED", "")
	t.Setenv("WATCH_DEBOUNCE", "")
}

func TestLoadConfigDefaults(t *testing.T) {
	media := t.TempDir()
	database := filepath.Join(t.TempDir(), "db")
	setConfigEnv(t, media, database)

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if config.MediaDir != media {
		t.Errorf("MediaDir = %q, want %q", config.MediaDir, media)
	}
	if config.ListenAddr() != "127.0.0.1:8080" {
		t.Errorf("ListenAddr() = %q", config.ListenAddr())
	}
	if config.PreviewCacheLimit != 200 || config.LightboxPreloadDistance != 1 || config.LightboxReleaseDistance != 2 {
		t.Errorf("cache config = %d/%d/%d", config.PreviewCacheLimit,
			config.LightboxPreloadDistance, config.LightboxReleaseDistance)
	}
	if !config.WatchEnabled || config.WatchDebounce != DefaultWatchDebounce {
		t.Errorf("watch = %v/%v", config.WatchEnabled, config.WatchDebounce)
	}
	if !config.HistoryEnabled {
		t.Error("expected history to be enabled for a writable database directory")
	}
	if config.DatabasePath != filepath.Join(database, "history.db") {
		t.Errorf("DatabasePath = %q", config.DatabasePath)
	}
	if _, err := os.Stat(database); err != nil {
		t.Errorf("database directory not created: %v", err)
	}
}

func TestLoadConfigFileListDisablesWatching(t *testing.T) {
	dir := t.TempDir()
	list := filepath.Join(dir, "files.txt")
	if err := os.WriteFile(list, []byte("a.png\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	setConfigEnv(t, dir, filepath.Join(dir, "db"))
	t.Setenv("FILE_LIST", list)

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if config.FileList != list {
		t.Errorf("FileList = %q, want %q", config.FileList, list)
	}
	if config.WatchEnabled {
		t.Error("expected watching to be disabled for a file list")
	}
}

func TestLoadConfigMissingFileList(t *testing.T) {
	dir := t.TempDir()
	setConfigEnv(t, dir, filepath.Join(dir, "db"))
	t.Setenv("FILE_LIST", filepath.Join(dir, "missing.txt"))

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for a missing file list")
	}
}

func TestLoadConfigInvalidWindow(t *testing.T) {
	dir := t.TempDir()
	setConfigEnv(t, dir, filepath.Join(dir, "db"))
	t.Setenv("LIGHTBOX_PRELOAD_DISTANCE", "3")
	t.Setenv("LIGHTBOX_RELEASE_DISTANCE", "2")

	_, err := LoadConfig()
	if !errors.Is(err, ErrInvalidCacheConfig) {
		t.Fatalf("LoadConfig() error = %v, want ErrInvalidCacheConfig", err)
	}
}

func TestSetupOptionalDirNotWritable(t *testing.T) {
	parent := t.TempDir()
	blocker := filepath.Join(parent, "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	// A path below a regular file cannot be created.
	if setupOptionalDir(filepath.Join(blocker, "db"), "history") {
		t.Error("expected setupOptionalDir to fail below a regular file")
	}
}

func TestGetRoutes(t *testing.T) {
	noop := func(http.ResponseWriter, *http.Request) {}
	router := mux.NewRouter()
	router.HandleFunc("/api/images", noop).Methods(http.MethodGet).Name("images")
	router.HandleFunc("/api/preview/{id:.+}", noop).Methods(http.MethodGet, http.MethodDelete)
	router.PathPrefix("/blob/").HandlerFunc(noop)

	routes, err := GetRoutes(router)
	if err != nil {
		t.Fatalf("GetRoutes() error = %v", err)
	}
	if len(routes) != 4 {
		t.Fatalf("got %d routes, want 4: %+v", len(routes), routes)
	}
	if routes[0] != (RouteInfo{Method: http.MethodGet, Path: "/api/images", Name: "images"}) {
		t.Errorf("routes[0] = %+v", routes[0])
	}
	if routes[3].Method != "*" || routes[3].Path != "/blob/" {
		t.Errorf("routes[3] = %+v", routes[3])
	}
}

func TestGetRouteGroup(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/preview/{id:.+}", "api/preview"},
		{"/api/images", "api/images"},
		{"/blob/", "blob"},
		{"/healthz", "healthz"},
		{"/", ""},
	}

	for _, tt := range tests {
		if got := getRouteGroup(tt.path); got != tt.want {
			t.Errorf("getRouteGroup(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
