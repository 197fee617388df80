package handlers

import (
	"net/http"

	"image-browser/internal/gallery"
	"image-browser/internal/history"
	"image-browser/internal/locator"

	"github.com/gorilla/mux"
)

// Handlers serves the image browser API.
type Handlers struct {
	gallery *gallery.Gallery
	blobs   *locator.Store
	history *history.Store
}

// New creates the handlers. hist may be nil when reading history is
// disabled.
func New(g *gallery.Gallery, blobs *locator.Store, hist *history.Store) *Handlers {
	return &Handlers{
		gallery: g,
		blobs:   blobs,
		history: hist,
	}
}

// Router registers every route on a new mux.Router.
func (h *Handlers) Router() *mux.Router {
	r := mux.NewRouter()

	// Health check and version routes
	r.HandleFunc("/healthz", h.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/livez", h.LivenessCheck).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods(http.MethodGet)
	r.HandleFunc("/version", h.GetVersion).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	// Collection
	api.HandleFunc("/images", h.ListImages).Methods(http.MethodGet)
	api.HandleFunc("/albums", h.ListAlbums).Methods(http.MethodGet)
	api.HandleFunc("/rescan", h.Rescan).Methods(http.MethodPost)
	api.HandleFunc("/stats", h.GetStats).Methods(http.MethodGet)

	// Resource lifecycle; image ids contain slashes
	api.HandleFunc("/preview/{id:.+}", h.GetPreview).Methods(http.MethodGet)
	api.HandleFunc("/preview/{id:.+}", h.ReleasePreview).Methods(http.MethodDelete)
	api.HandleFunc("/lightbox/sync", h.SyncLightbox).Methods(http.MethodPost)
	api.HandleFunc("/lightbox/slide/{id:.+}", h.GetLightboxSlide).Methods(http.MethodGet)
	api.HandleFunc("/lightbox", h.CloseLightbox).Methods(http.MethodDelete)
	api.HandleFunc("/resources", h.ReleaseResources).Methods(http.MethodDelete)

	// Reading history
	api.HandleFunc("/history", h.GetHistory).Methods(http.MethodGet)
	api.HandleFunc("/history", h.RecordHistory).Methods(http.MethodPost)

	// Locator bytes
	r.PathPrefix(locator.Prefix).HandlerFunc(h.ServeBlob).Methods(http.MethodGet, http.MethodHead)

	return r
}
