package handlers

import (
	"net/http"

	"image-browser/internal/album"
	"image-browser/internal/gallery"
	"image-browser/internal/media"
	"image-browser/internal/resources"
)

// ImagesResponse lists the images under an album path.
type ImagesResponse struct {
	Path    string                   `json:"path"`
	Ready   bool                     `json:"ready"`
	Total   int                      `json:"total"`
	Images  []*media.ImageDescriptor `json:"images"`
	Message string                   `json:"message,omitempty"`
}

// ListImages returns the images of the collection, optionally restricted
// to an album with ?path=.
func (h *Handlers) ListImages(w http.ResponseWriter, r *http.Request) {
	path := album.NormalizePath(r.URL.Query().Get("path"))

	images := h.gallery.Images(path)
	if images == nil {
		images = []*media.ImageDescriptor{}
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, ImagesResponse{
		Path:    path,
		Ready:   h.gallery.IsReady(),
		Total:   len(images),
		Images:  images,
		Message: gallery.UserMessage(h.gallery.LastError()),
	})
}

// ListAlbums returns every album with its cover and image count.
func (h *Handlers) ListAlbums(w http.ResponseWriter, _ *http.Request) {
	albums := h.gallery.Albums()
	if albums == nil {
		albums = []album.Summary{}
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, albums)
}

// Rescan starts a background reload of the collection.
func (h *Handlers) Rescan(w http.ResponseWriter, _ *http.Request) {
	h.gallery.TriggerReload()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	writeJSON(w, map[string]string{"status": "rescanning"})
}

// StatsResponse combines collection status and cache occupancy.
type StatsResponse struct {
	Gallery gallery.Status  `json:"gallery"`
	Cache   resources.Stats `json:"cache"`
}

// GetStats returns collection and cache statistics.
func (h *Handlers) GetStats(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	writeJSON(w, StatsResponse{
		Gallery: h.gallery.Status(),
		Cache:   h.gallery.Manager().Stats(),
	})
}
