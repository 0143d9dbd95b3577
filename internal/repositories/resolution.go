package repositories

import (
	"database/sql"
	"errors"
	"fmt"
)

// DefaultMaxEntries bounds the resolution cache when the configuration does
// not specify a limit.
const DefaultMaxEntries = 1024

// ResolutionRepository implements services.ResolutionStore on SQLite.
//
// Rows record the last time a resolution was read; inserts past the size
// bound prune the least recently used rows. Duplicate inserts for a query are
// ignored, so the first successful resolution wins.
type ResolutionRepository struct {
	db         *sql.DB
	maxEntries int
}

// NewResolutionRepository creates a repository bounded to maxEntries rows.
// maxEntries <= 0 selects [DefaultMaxEntries].
func NewResolutionRepository(db *sql.DB, maxEntries int) *ResolutionRepository {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &ResolutionRepository{db: db, maxEntries: maxEntries}
}

// Get returns the cached URL for query and refreshes its recency.
func (r *ResolutionRepository) Get(query string) (string, bool, error) {
	var url string
	err := r.db.QueryRow("SELECT url FROM resolutions WHERE query = ?", query).Scan(&url)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read resolution: %w", err)
	}

	if _, err := r.db.Exec("UPDATE resolutions SET last_used = CURRENT_TIMESTAMP WHERE query = ?", query); err != nil {
		return "", false, fmt.Errorf("failed to touch resolution: %w", err)
	}

	return url, true, nil
}

// Put records a resolution. Existing entries for the query are kept as-is.
func (r *ResolutionRepository) Put(query, url string) error {
	_, err := r.db.Exec(
		"INSERT INTO resolutions (query, url) VALUES (?, ?) ON CONFLICT(query) DO NOTHING",
		query, url,
	)
	if err != nil {
		return fmt.Errorf("failed to store resolution: %w", err)
	}

	return r.prune()
}

// prune deletes rows past the size bound, least recently used first.
func (r *ResolutionRepository) prune() error {
	_, err := r.db.Exec(`DELETE FROM resolutions WHERE id IN (
		SELECT id FROM resolutions ORDER BY last_used DESC LIMIT -1 OFFSET ?
	)`, r.maxEntries)
	if err != nil {
		return fmt.Errorf("failed to prune resolutions: %w", err)
	}
	return nil
}

// Count returns the number of cached resolutions.
func (r *ResolutionRepository) Count() (int, error) {
	var n int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM resolutions").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count resolutions: %w", err)
	}
	return n, nil
}
