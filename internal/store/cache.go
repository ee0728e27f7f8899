package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Ujjwal-Bajpayee/synapse/internal/linkedin"
)

// CacheSearch stores discovery results for the exact (job description,
// search query) pair. A later write for the same pair overwrites.
func (s *Store) CacheSearch(ctx context.Context, jobDescription, searchQuery string, stubs []linkedin.CandidateStub) error {
	results, err := json.Marshal(stubs)
	if err != nil {
		return fmt.Errorf("encoding cached results: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO search_cache (job_description, search_query, results, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(job_description, search_query) DO UPDATE SET
			results = excluded.results,
			created_at = excluded.created_at
	`, jobDescription, searchQuery, string(results), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("caching search results: %w", err)
	}

	return nil
}

// CachedSearch returns cached discovery results for the pair, or ok=false
// when the entry is absent or older than ttl. Expired entries read as a
// miss; they are overwritten on the next CacheSearch.
func (s *Store) CachedSearch(ctx context.Context, jobDescription, searchQuery string, ttl time.Duration) ([]linkedin.CandidateStub, bool, error) {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	var results, createdAtRaw string
	err := s.db.QueryRowContext(ctx, `
		SELECT results, created_at FROM search_cache
		WHERE job_description = ? AND search_query = ?
	`, jobDescription, searchQuery).Scan(&results, &createdAtRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading search cache: %w", err)
	}

	createdAt, err := time.Parse(time.RFC3339Nano, createdAtRaw)
	if err != nil || time.Since(createdAt) > ttl {
		// An unparseable timestamp is treated as expired.
		return nil, false, nil
	}

	var stubs []linkedin.CandidateStub
	if err := json.Unmarshal([]byte(results), &stubs); err != nil {
		return nil, false, fmt.Errorf("decoding cached results: %w", err)
	}

	return stubs, true, nil
}
