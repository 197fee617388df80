package history

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestMakeSourceKey(t *testing.T) {
	if got := MakeSourceKey(nil); got != EmptySourceKey {
		t.Errorf("MakeSourceKey(nil) = %q, want %q", got, EmptySourceKey)
	}

	a := MakeSourceKey([]string{"b/2.jpg", "a/10.jpg", "a/2.jpg"})
	b := MakeSourceKey([]string{"a/2.jpg", "b/2.jpg", "a/10.jpg"})
	if a != b {
		t.Errorf("key depends on input order: %q vs %q", a, b)
	}
	if !strings.HasPrefix(a, "source:3:") {
		t.Errorf("key %q does not carry the image count", a)
	}

	c := MakeSourceKey([]string{"a/2.jpg", "b/2.jpg", "a/11.jpg"})
	if a == c {
		t.Errorf("different collections share key %q", a)
	}
}

func TestMakeSourceKeyDoesNotReorderInput(t *testing.T) {
	paths := []string{"z.jpg", "a.jpg"}
	MakeSourceKey(paths)
	if paths[0] != "z.jpg" {
		t.Errorf("input reordered: %v", paths)
	}
}

func TestResolveRestorePath(t *testing.T) {
	paths := []string{"a.jpg", "b.jpg", "c.jpg"}

	tests := []struct {
		name         string
		paths        []string
		relativePath string
		index        int
		want         string
	}{
		{"path present", paths, "c.jpg", 0, "c.jpg"},
		{"path gone falls back to index", paths, "gone.jpg", 1, "b.jpg"},
		{"no path uses index", paths, "", 0, "a.jpg"},
		{"index out of range", paths, "gone.jpg", 3, ""},
		{"negative index", paths, "", -1, ""},
		{"empty collection", nil, "a.jpg", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveRestorePath(tt.paths, tt.relativePath, tt.index); got != tt.want {
				t.Errorf("ResolveRestorePath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGetUnknown(t *testing.T) {
	s := setupTestStore(t)

	state, err := s.Get(context.Background(), "source:1:missing")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if state.LastViewed != nil || len(state.Albums) != 0 || state.RecentAlbumPath != "" {
		t.Errorf("Get(unknown) = %+v, want empty", state)
	}
}

func TestRecordAndGet(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	key := "source:3:abc"
	at := time.UnixMilli(1_700_000_000_000)

	changed, err := s.Record(ctx, key, "album-a/page-2.jpg", 1, at)
	if err != nil || !changed {
		t.Fatalf("Record() = %v, %v; want true, nil", changed, err)
	}

	state, err := s.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if state.LastViewed == nil || state.LastViewed.RelativePath != "album-a/page-2.jpg" || state.LastViewed.Index != 1 {
		t.Fatalf("LastViewed = %+v", state.LastViewed)
	}
	if !state.LastViewed.ViewedAt.Equal(at) {
		t.Errorf("ViewedAt = %v, want %v", state.LastViewed.ViewedAt, at)
	}
	if state.RecentAlbumPath != "album-a" {
		t.Errorf("RecentAlbumPath = %q, want album-a", state.RecentAlbumPath)
	}
	if p, ok := state.Albums["album-a"]; !ok || p.RelativePath != "album-a/page-2.jpg" {
		t.Errorf("Albums = %+v", state.Albums)
	}
	if !state.UpdatedAt.Equal(at) {
		t.Errorf("UpdatedAt = %v, want %v", state.UpdatedAt, at)
	}
}

func TestRecordUnchangedIsNoop(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	key := "source:2:abc"
	first := time.UnixMilli(1000)

	if _, err := s.Record(ctx, key, "album/a.jpg", 0, first); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	changed, err := s.Record(ctx, key, "album/a.jpg", 0, time.UnixMilli(2000))
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if changed {
		t.Error("recording the same position reported a change")
	}

	state, _ := s.Get(ctx, key)
	if !state.UpdatedAt.Equal(first) {
		t.Errorf("UpdatedAt = %v, want unchanged %v", state.UpdatedAt, first)
	}
}

func TestRecordRootImageKeepsRecentAlbum(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	key := "source:2:abc"

	s.Record(ctx, key, "album/a.jpg", 1, time.UnixMilli(1000))
	s.Record(ctx, key, "root.jpg", 0, time.UnixMilli(2000))

	state, err := s.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if state.LastViewed.RelativePath != "root.jpg" {
		t.Errorf("LastViewed = %+v", state.LastViewed)
	}
	if state.RecentAlbumPath != "album" {
		t.Errorf("RecentAlbumPath = %q, want album", state.RecentAlbumPath)
	}
	if _, ok := state.Albums[""]; ok {
		t.Error("root image recorded as an album position")
	}
}

func TestRecordEmptyKey(t *testing.T) {
	s := setupTestStore(t)
	changed, err := s.Record(context.Background(), "", "a.jpg", 0, time.Now())
	if err != nil || changed {
		t.Errorf("Record(\"\") = %v, %v; want false, nil", changed, err)
	}
}

func TestRecordPrunesOldest(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	for i := 0; i < MaxSources+5; i++ {
		key := fmt.Sprintf("source:1:%04d", i)
		if _, err := s.Record(ctx, key, "album/a.jpg", 0, time.UnixMilli(int64(1000+i))); err != nil {
			t.Fatalf("Record(%d) error = %v", i, err)
		}
	}

	count, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != MaxSources {
		t.Errorf("Count() = %d, want %d", count, MaxSources)
	}

	oldest, _ := s.Get(ctx, "source:1:0000")
	if oldest.LastViewed != nil || len(oldest.Albums) != 0 {
		t.Errorf("oldest entry survived pruning: %+v", oldest)
	}
	newest, _ := s.Get(ctx, fmt.Sprintf("source:1:%04d", MaxSources+4))
	if newest.LastViewed == nil {
		t.Error("newest entry was pruned")
	}
}

func TestOpenPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	s, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	s.Record(ctx, "source:1:x", "a.jpg", 0, time.UnixMilli(1))
	s.Close()

	s, err = Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer s.Close()

	state, _ := s.Get(ctx, "source:1:x")
	if state.LastViewed == nil || state.LastViewed.RelativePath != "a.jpg" {
		t.Errorf("state after reopen = %+v", state)
	}
}
