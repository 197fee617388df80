package handlers

import (
	"errors"
	"net/http"

	"image-browser/internal/album"
	"image-browser/internal/logging"
	"image-browser/internal/media"
	"image-browser/internal/resources"

	"github.com/gorilla/mux"
)

// Preview states reported to the client.
const (
	stateReady   = "ready"
	stateLoading = "loading"
)

// PreviewResponse reports a preview locator. A failed production answers
// with the loading state and no URL; the client keeps its placeholder.
type PreviewResponse struct {
	ID    media.ID `json:"id"`
	State string   `json:"state"`
	URL   string   `json:"url,omitempty"`
}

// GetPreview returns the preview locator for an image, producing it on
// first use.
func (h *Handlers) GetPreview(w http.ResponseWriter, r *http.Request) {
	id := media.ID(mux.Vars(r)["id"])

	l, err := h.gallery.Manager().EnsurePreviewURL(r.Context(), id)
	if errors.Is(err, resources.ErrUnknownImage) {
		writeJSONError(w, "Image not found", http.StatusNotFound)
		return
	}

	response := PreviewResponse{ID: id, State: stateReady, URL: string(l)}
	if err != nil {
		logging.Debug("preview for %s not available: %v", id, err)
		response = PreviewResponse{ID: id, State: stateLoading}
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, response)
}

// ReleasePreview frees the preview locator of an image. Releasing an
// absent preview is not an error.
func (h *Handlers) ReleasePreview(w http.ResponseWriter, r *http.Request) {
	h.gallery.Manager().ReleasePreviewURL(media.ID(mux.Vars(r)["id"]))
	writeJSONStatus(w, "released")
}

// LightboxRequest moves the viewer cursor. When ID is set it takes
// precedence over Index.
type LightboxRequest struct {
	Path  string   `json:"path"`
	Index int      `json:"index"`
	ID    media.ID `json:"id,omitempty"`
}

// LightboxResponse lists the slides of the viewed album. Slides outside
// the resident window carry a blank source.
type LightboxResponse struct {
	Path   string            `json:"path"`
	Index  int               `json:"index"`
	Slides []resources.Slide `json:"slides"`
}

// SyncLightbox synchronises the viewer window with the cursor and returns
// the slides.
func (h *Handlers) SyncLightbox(w http.ResponseWriter, r *http.Request) {
	var req LightboxRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	path := album.NormalizePath(req.Path)
	items := h.gallery.Images(path)
	index := clampIndex(req.Index, len(items))
	if req.ID != "" {
		found := false
		for i, img := range items {
			if img.ID == req.ID {
				index, found = i, true
				break
			}
		}
		if !found {
			writeJSONError(w, "Image not found", http.StatusNotFound)
			return
		}
	}

	urls, err := h.gallery.Manager().SyncLightboxWindow(r.Context(), items, index)
	if err != nil {
		logging.Debug("lightbox sync for %q canceled: %v", path, err)
		writeJSONError(w, "Request canceled", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, LightboxResponse{
		Path:   path,
		Index:  index,
		Slides: resources.Slides(items, urls),
	})
}

// GetLightboxSlide reports the resident viewer locator of an image without
// producing it. Images outside the window report the loading state.
func (h *Handlers) GetLightboxSlide(w http.ResponseWriter, r *http.Request) {
	id := media.ID(mux.Vars(r)["id"])
	manager := h.gallery.Manager()

	if _, ok := manager.Image(id); !ok {
		writeJSONError(w, "Image not found", http.StatusNotFound)
		return
	}

	response := PreviewResponse{ID: id, State: stateLoading}
	if l, ok := manager.LightboxURL(id); ok {
		response = PreviewResponse{ID: id, State: stateReady, URL: string(l)}
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, response)
}

// CloseLightbox releases every viewer locator.
func (h *Handlers) CloseLightbox(w http.ResponseWriter, _ *http.Request) {
	h.gallery.Manager().ReleaseAllLightboxURLs()
	writeJSONStatus(w, "released")
}

// ReleaseResources releases every locator of both caches.
func (h *Handlers) ReleaseResources(w http.ResponseWriter, _ *http.Request) {
	h.gallery.Manager().ReleaseAll()
	writeJSONStatus(w, "released")
}

// ServeBlob serves the bytes behind a locator.
func (h *Handlers) ServeBlob(w http.ResponseWriter, r *http.Request) {
	h.blobs.ServeHTTP(w, r)
}

func clampIndex(index, n int) int {
	if index < 0 || n == 0 {
		return 0
	}
	if index >= n {
		return n - 1
	}
	return index
}
