package handlers

import (
	"net/http"
	"time"

	"image-browser/internal/album"
	"image-browser/internal/history"
	"image-browser/internal/logging"
	"image-browser/internal/media"
)

// HistoryResponse describes where the reader left the current collection.
// RestorePath is the image to reopen, empty when nothing can be restored.
type HistoryResponse struct {
	Enabled     bool                 `json:"enabled"`
	SourceKey   string               `json:"sourceKey,omitempty"`
	State       *history.SourceState `json:"state,omitempty"`
	RestorePath string               `json:"restorePath,omitempty"`
}

// HistoryRequest records the image currently shown in the viewer.
type HistoryRequest struct {
	RelativePath string `json:"relativePath"`
	Index        int    `json:"index"`
}

// GetHistory returns the saved position for the current collection. With
// ?path= the restore target is the album's own last position.
func (h *Handlers) GetHistory(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")

	if h.history == nil {
		writeJSON(w, HistoryResponse{Enabled: false})
		return
	}

	key := h.gallery.SourceKey()
	state, err := h.history.Get(r.Context(), key)
	if err != nil {
		logging.Error("failed to read history for %s: %v", key, err)
		writeJSONError(w, "Failed to read history", http.StatusInternalServerError)
		return
	}

	response := HistoryResponse{Enabled: true, SourceKey: key, State: &state}

	path := album.NormalizePath(r.URL.Query().Get("path"))
	pointer := state.LastViewed
	if path != "" {
		if p, ok := state.Albums[path]; ok {
			pointer = &p
		} else {
			pointer = nil
		}
	}
	if pointer != nil {
		response.RestorePath = history.ResolveRestorePath(relativePaths(h.gallery.Images(path)),
			pointer.RelativePath, pointer.Index)
	}

	writeJSON(w, response)
}

// RecordHistory saves the viewer position for the current collection.
func (h *Handlers) RecordHistory(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		writeJSONError(w, "Reading history is disabled", http.StatusServiceUnavailable)
		return
	}

	var req HistoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.RelativePath == "" {
		writeJSONError(w, "relativePath is required", http.StatusBadRequest)
		return
	}

	key := h.gallery.SourceKey()
	changed, err := h.history.Record(r.Context(), key, req.RelativePath, req.Index, time.Now())
	if err != nil {
		logging.Error("failed to record history for %s: %v", key, err)
		writeJSONError(w, "Failed to record history", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]bool{"changed": changed})
}

func relativePaths(images []*media.ImageDescriptor) []string {
	paths := make([]string, len(images))
	for i, img := range images {
		paths[i] = img.RelativePath
	}
	return paths
}
