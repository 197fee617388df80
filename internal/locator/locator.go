package locator

import (
	"bytes"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Prefix is the URL path under which locators are served.
const Prefix = "/blob/"

// Locator names bytes held by a Store.
type Locator string

// ID returns the identifier part of the locator.
func (l Locator) ID() string {
	return strings.TrimPrefix(string(l), Prefix)
}

// Observer receives store size changes. Implementations are provided by
// the metrics package.
type Observer interface {
	ObserveLocators(count int, bytes int64)
}

type blob struct {
	data     []byte
	mimeType string
	created  time.Time
}

// Store maps locator ids to bytes. It is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	blobs    map[string]*blob
	bytes    int64
	observer Observer
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{blobs: make(map[string]*blob)}
}

// SetObserver registers an observer for size changes.
func (s *Store) SetObserver(o Observer) {
	s.mu.Lock()
	s.observer = o
	s.mu.Unlock()
}

// Create registers data and returns a fresh locator for it. Every call
// returns a distinct locator, even for identical bytes.
func (s *Store) Create(data []byte, mimeType string) Locator {
	id := uuid.NewString()

	s.mu.Lock()
	s.blobs[id] = &blob{data: data, mimeType: mimeType, created: time.Now()}
	s.bytes += int64(len(data))
	s.notifyLocked()
	s.mu.Unlock()

	return Locator(Prefix + id)
}

// Revoke frees the bytes behind l. It reports whether l was live.
func (s *Store) Revoke(l Locator) bool {
	id := l.ID()

	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.blobs[id]
	if !ok {
		return false
	}
	delete(s.blobs, id)
	s.bytes -= int64(len(b.data))
	s.notifyLocked()
	return true
}

// Lookup returns the bytes and MIME type behind l.
func (s *Store) Lookup(l Locator) ([]byte, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.blobs[l.ID()]
	if !ok {
		return nil, "", false
	}
	return b.data, b.mimeType, true
}

// Len returns the number of live locators.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}

// Bytes returns the total size of live locators.
func (s *Store) Bytes() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bytes
}

func (s *Store) notifyLocked() {
	if s.observer != nil {
		s.observer.ObserveLocators(len(s.blobs), s.bytes)
	}
}

// ServeHTTP serves the bytes behind the locator named by the request path.
// Revoked locators answer 404.
func (s *Store) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !strings.HasPrefix(r.URL.Path, Prefix) {
		http.NotFound(w, r)
		return
	}

	s.mu.RLock()
	b, ok := s.blobs[strings.TrimPrefix(r.URL.Path, Prefix)]
	s.mu.RUnlock()
	if !ok {
		http.NotFound(w, r)
		return
	}

	if b.mimeType != "" {
		w.Header().Set("Content-Type", b.mimeType)
	}
	// Locators are immutable: a new production always gets a new id.
	w.Header().Set("Cache-Control", "private, max-age=31536000, immutable")
	http.ServeContent(w, r, "", b.created, bytes.NewReader(b.data))
}
