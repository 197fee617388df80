package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"image-browser/internal/album"
	"image-browser/internal/logging"
	"image-browser/internal/metrics"
)

// MaxSources is how many collections are remembered.
const MaxSources = 30

const defaultTimeout = 5 * time.Second

// Pointer is a position inside a collection.
type Pointer struct {
	RelativePath string    `json:"relativePath"`
	Index        int       `json:"index"`
	ViewedAt     time.Time `json:"viewedAt"`
}

// SourceState is everything remembered about one collection.
type SourceState struct {
	LastViewed      *Pointer           `json:"lastViewed"`
	Albums          map[string]Pointer `json:"albums"`
	RecentAlbumPath string             `json:"recentAlbumPath,omitempty"`
	UpdatedAt       time.Time          `json:"updatedAt"`
}

// Store persists reading positions in SQLite.
type Store struct {
	db     *sql.DB
	dbPath string
	mu     sync.RWMutex
}

// Open opens or creates the history database at dbPath. The parent
// directory must exist.
func Open(ctx context.Context, dbPath string) (*Store, error) {
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close history database after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to connect to history database: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{db: db, dbPath: dbPath}
	if err := s.initialize(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close history database after initialization failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}

	logging.Info("History database initialized at %s", dbPath)
	return s, nil
}

func (s *Store) initialize(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS sources (
		source_key TEXT PRIMARY KEY,
		last_path TEXT,
		last_index INTEGER,
		last_viewed_at INTEGER,
		recent_album TEXT,
		updated_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sources_updated_at ON sources(updated_at);

	CREATE TABLE IF NOT EXISTS album_positions (
		source_key TEXT NOT NULL,
		album_path TEXT NOT NULL,
		relative_path TEXT NOT NULL,
		idx INTEGER NOT NULL,
		viewed_at INTEGER NOT NULL,
		PRIMARY KEY (source_key, album_path)
	);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

// Get returns the remembered state for key. Unknown keys yield an empty
// state.
func (s *Store) Get(ctx context.Context, key string) (state SourceState, err error) {
	defer func() { recordOperation("get", err) }()

	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return s.load(ctx, s.db, key)
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *Store) load(ctx context.Context, q querier, key string) (SourceState, error) {
	state := SourceState{Albums: make(map[string]Pointer)}

	var (
		lastPath    sql.NullString
		lastIndex   sql.NullInt64
		lastViewed  sql.NullInt64
		recentAlbum sql.NullString
		updatedAt   int64
	)
	err := q.QueryRowContext(ctx, `
		SELECT last_path, last_index, last_viewed_at, recent_album, updated_at
		FROM sources WHERE source_key = ?
	`, key).Scan(&lastPath, &lastIndex, &lastViewed, &recentAlbum, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return state, nil
	}
	if err != nil {
		return state, fmt.Errorf("failed to load history for %s: %w", key, err)
	}

	if lastPath.Valid && lastIndex.Valid {
		state.LastViewed = &Pointer{
			RelativePath: lastPath.String,
			Index:        int(lastIndex.Int64),
			ViewedAt:     time.UnixMilli(lastViewed.Int64),
		}
	}
	state.RecentAlbumPath = recentAlbum.String
	state.UpdatedAt = time.UnixMilli(updatedAt)

	rows, err := q.QueryContext(ctx, `
		SELECT album_path, relative_path, idx, viewed_at
		FROM album_positions WHERE source_key = ?
	`, key)
	if err != nil {
		return state, fmt.Errorf("failed to load album positions for %s: %w", key, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			albumPath string
			p         Pointer
			viewedAt  int64
		)
		if err := rows.Scan(&albumPath, &p.RelativePath, &p.Index, &viewedAt); err != nil {
			return state, fmt.Errorf("failed to scan album position: %w", err)
		}
		p.ViewedAt = time.UnixMilli(viewedAt)
		state.Albums[albumPath] = p
	}
	return state, rows.Err()
}

// Record stores relativePath at index as the last viewed image of key and
// of its album. Recording the position already stored is a no-op and
// reports false. An empty key is ignored.
func (s *Store) Record(ctx context.Context, key, relativePath string, index int, viewedAt time.Time) (changed bool, err error) {
	if key == "" {
		return false, nil
	}
	defer func() { recordOperation("record", err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin history transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				err = errors.Join(err, fmt.Errorf("rollback also failed: %w", rbErr))
			}
		}
	}()

	current, err := s.load(ctx, tx, key)
	if err != nil {
		return false, err
	}

	albumPath := album.PathOf(relativePath)
	if unchanged(current, albumPath, relativePath, index) {
		return false, tx.Commit()
	}

	ms := viewedAt.UnixMilli()
	var recent any
	if albumPath != "" {
		recent = albumPath
	}

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO sources (source_key, last_path, last_index, last_viewed_at, recent_album, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(source_key) DO UPDATE SET
			last_path = excluded.last_path,
			last_index = excluded.last_index,
			last_viewed_at = excluded.last_viewed_at,
			recent_album = COALESCE(excluded.recent_album, sources.recent_album),
			updated_at = excluded.updated_at
	`, key, relativePath, index, ms, recent, ms); err != nil {
		return false, fmt.Errorf("failed to record position: %w", err)
	}

	if albumPath != "" {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO album_positions (source_key, album_path, relative_path, idx, viewed_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(source_key, album_path) DO UPDATE SET
				relative_path = excluded.relative_path,
				idx = excluded.idx,
				viewed_at = excluded.viewed_at
		`, key, albumPath, relativePath, index, ms); err != nil {
			return false, fmt.Errorf("failed to record album position: %w", err)
		}
	}

	if err = prune(ctx, tx); err != nil {
		return false, err
	}

	if err = tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit history: %w", err)
	}
	return true, nil
}

func unchanged(current SourceState, albumPath, relativePath string, index int) bool {
	last := current.LastViewed
	if last == nil || last.RelativePath != relativePath || last.Index != index {
		return false
	}
	if albumPath == "" {
		return true
	}
	p, ok := current.Albums[albumPath]
	return ok && p.RelativePath == relativePath && p.Index == index
}

func prune(ctx context.Context, tx *sql.Tx) error {
	result, err := tx.ExecContext(ctx, `
		DELETE FROM sources WHERE source_key NOT IN (
			SELECT source_key FROM sources ORDER BY updated_at DESC LIMIT ?
		)
	`, MaxSources)
	if err != nil {
		return fmt.Errorf("failed to prune history: %w", err)
	}

	if n, _ := result.RowsAffected(); n > 0 {
		logging.Debug("Pruned %d history entries", n)
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM album_positions WHERE source_key NOT IN (SELECT source_key FROM sources)
		`); err != nil {
			return fmt.Errorf("failed to prune album positions: %w", err)
		}
	}
	return nil
}

// Count returns the number of remembered collections.
func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sources").Scan(&count)
	return count, err
}

func recordOperation(operation string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.HistoryOperationsTotal.WithLabelValues(operation, status).Inc()
}
