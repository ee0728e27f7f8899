// Package store persists candidates, outreach messages, and the TTL'd
// discovery cache in a local SQLite database.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Ujjwal-Bajpayee/synapse/internal/ai"
	"github.com/Ujjwal-Bajpayee/synapse/internal/linkedin"
)

// DefaultCacheTTL is how long cached discovery results stay valid.
const DefaultCacheTTL = 24 * time.Hour

// Store wraps the SQLite database. Safe for concurrent use; conflicting
// upserts to the same profile URL resolve last-write-wins.
type Store struct {
	db *sql.DB
}

// Candidate is the persisted record for one profile, keyed by ProfileURL.
// Detail, Score, and Breakdown are optional and filled in as the pipeline
// learns more.
type Candidate struct {
	ID         int64
	ProfileURL string
	Name       string
	Headline   string
	Detail     *linkedin.ProfileDetail
	Score      *float64
	Breakdown  *ai.Breakdown
}

// Open opens or creates the database at path and ensures the schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS search_cache (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			job_description TEXT NOT NULL,
			search_query TEXT NOT NULL,
			results TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(job_description, search_query)
		)`,
		`CREATE TABLE IF NOT EXISTS candidates (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			profile_url TEXT UNIQUE NOT NULL,
			name TEXT NOT NULL,
			headline TEXT,
			profile TEXT,
			score REAL,
			score_breakdown TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS outreach_messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			candidate_id INTEGER,
			job_description TEXT,
			message TEXT,
			sent_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (candidate_id) REFERENCES candidates (id)
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	return nil
}

// SaveCandidate upserts the candidate by profile URL and returns its row id.
// Optional fields that are nil leave any previously stored value intact.
func (s *Store) SaveCandidate(ctx context.Context, c *Candidate) (int64, error) {
	if c == nil || c.ProfileURL == "" {
		return 0, errors.New("candidate with a profile url is required")
	}

	detailJSON, err := marshalNullable(c.Detail)
	if err != nil {
		return 0, fmt.Errorf("encoding profile detail: %w", err)
	}
	breakdownJSON, err := marshalNullable(c.Breakdown)
	if err != nil {
		return 0, fmt.Errorf("encoding score breakdown: %w", err)
	}

	var score sql.NullFloat64
	if c.Score != nil {
		score = sql.NullFloat64{Float64: *c.Score, Valid: true}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO candidates (profile_url, name, headline, profile, score, score_breakdown)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(profile_url) DO UPDATE SET
			name = excluded.name,
			headline = excluded.headline,
			profile = COALESCE(excluded.profile, profile),
			score = COALESCE(excluded.score, score),
			score_breakdown = COALESCE(excluded.score_breakdown, score_breakdown),
			updated_at = CURRENT_TIMESTAMP
	`, c.ProfileURL, c.Name, c.Headline, detailJSON, score, breakdownJSON)
	if err != nil {
		return 0, fmt.Errorf("upserting candidate: %w", err)
	}

	var id int64
	err = s.db.QueryRowContext(ctx, `SELECT id FROM candidates WHERE profile_url = ?`, c.ProfileURL).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("reading candidate id: %w", err)
	}

	return id, nil
}

// GetCandidate returns the stored record for the profile URL, or nil when
// the candidate is unknown.
func (s *Store) GetCandidate(ctx context.Context, profileURL string) (*Candidate, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, profile_url, name, headline, profile, score, score_breakdown
		FROM candidates WHERE profile_url = ?
	`, profileURL)

	c, err := scanCandidate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading candidate: %w", err)
	}

	return c, nil
}

// TopCandidates returns the best scored candidates, highest score first.
func (s *Store) TopCandidates(ctx context.Context, limit int) ([]*Candidate, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, profile_url, name, headline, profile, score, score_breakdown
		FROM candidates
		WHERE score IS NOT NULL
		ORDER BY score DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying top candidates: %w", err)
	}
	defer rows.Close()

	var candidates []*Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning top candidate: %w", err)
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return candidates, nil
}

// scanCandidate reads one candidate row. JSON columns that fail to decode
// are dropped, not fatal.
func scanCandidate(row interface{ Scan(dest ...any) error }) (*Candidate, error) {
	var (
		c             Candidate
		headline      sql.NullString
		detailJSON    sql.NullString
		score         sql.NullFloat64
		breakdownJSON sql.NullString
	)
	if err := row.Scan(&c.ID, &c.ProfileURL, &c.Name, &headline, &detailJSON, &score, &breakdownJSON); err != nil {
		return nil, err
	}

	c.Headline = headline.String
	if score.Valid {
		c.Score = &score.Float64
	}
	if detailJSON.Valid && detailJSON.String != "" {
		var detail linkedin.ProfileDetail
		if err := json.Unmarshal([]byte(detailJSON.String), &detail); err == nil {
			c.Detail = &detail
		}
	}
	if breakdownJSON.Valid && breakdownJSON.String != "" {
		var breakdown ai.Breakdown
		if err := json.Unmarshal([]byte(breakdownJSON.String), &breakdown); err == nil {
			c.Breakdown = &breakdown
		}
	}

	return &c, nil
}

// SaveOutreach records a generated outreach message for a candidate.
func (s *Store) SaveOutreach(ctx context.Context, candidateID int64, jobDescription, message string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO outreach_messages (candidate_id, job_description, message)
		VALUES (?, ?, ?)
	`, candidateID, jobDescription, message)
	if err != nil {
		return fmt.Errorf("saving outreach message: %w", err)
	}
	return nil
}

func marshalNullable(v any) (sql.NullString, error) {
	switch value := v.(type) {
	case *linkedin.ProfileDetail:
		if value == nil {
			return sql.NullString{}, nil
		}
	case *ai.Breakdown:
		if value == nil {
			return sql.NullString{}, nil
		}
	}

	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}
