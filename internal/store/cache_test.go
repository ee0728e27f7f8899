package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ujjwal-Bajpayee/synapse/internal/linkedin"
)

func TestCacheSearchRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	stubs := []linkedin.CandidateStub{
		{Name: "Jane Doe", ProfileURL: "https://linkedin.com/in/jane-doe", Headline: "Staff Engineer"},
		{Name: "John Smith", ProfileURL: "https://linkedin.com/in/john-smith"},
	}

	require.NoError(t, s.CacheSearch(ctx, "job text", "site:linkedin.com/in/ job text", stubs))

	got, ok, err := s.CachedSearch(ctx, "job text", "site:linkedin.com/in/ job text", time.Hour)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, stubs, got)
}

func TestCachedSearchMissOnUnknownPair(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CacheSearch(ctx, "job text", "query", []linkedin.CandidateStub{{Name: "X", ProfileURL: "https://linkedin.com/in/x"}}))

	// The pair is exact: a different description or query is a miss.
	_, ok, err := s.CachedSearch(ctx, "other job", "query", time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = s.CachedSearch(ctx, "job text", "other query", time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCachedSearchExpiry(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CacheSearch(ctx, "job text", "query", []linkedin.CandidateStub{{Name: "X", ProfileURL: "https://linkedin.com/in/x"}}))

	// Age the entry past the TTL.
	stale := time.Now().UTC().Add(-25 * time.Hour).Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx, `UPDATE search_cache SET created_at = ?`, stale)
	require.NoError(t, err)

	_, ok, err := s.CachedSearch(ctx, "job text", "query", 24*time.Hour)
	require.NoError(t, err)
	assert.False(t, ok, "expired entries must read as a miss")
}

func TestCacheSearchOverwrite(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CacheSearch(ctx, "job", "query", []linkedin.CandidateStub{{Name: "Old", ProfileURL: "https://linkedin.com/in/old"}}))
	require.NoError(t, s.CacheSearch(ctx, "job", "query", []linkedin.CandidateStub{{Name: "New", ProfileURL: "https://linkedin.com/in/new"}}))

	got, ok, err := s.CachedSearch(ctx, "job", "query", time.Hour)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "New", got[0].Name)
}

func TestCachedSearchUnparseableTimestamp(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CacheSearch(ctx, "job", "query", []linkedin.CandidateStub{{Name: "X", ProfileURL: "https://linkedin.com/in/x"}}))

	_, err := s.db.ExecContext(ctx, `UPDATE search_cache SET created_at = 'not a timestamp'`)
	require.NoError(t, err)

	_, ok, err := s.CachedSearch(ctx, "job", "query", time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)
}
