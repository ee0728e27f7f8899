// Package linkedin discovers candidate profiles for a job description.
// Two backends are supported: a search-engine scrape and a structured
// profile-search API. Discovery never fails outright; it degrades to an
// empty result set.
package linkedin

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout bounds a single backend call.
	DefaultTimeout = 30 * time.Second
	// DefaultScrapeRate is searches per rolling minute for the scrape backend.
	DefaultScrapeRate = 10
	// DefaultAPIRate is calls per rolling minute for the structured API backend.
	DefaultAPIRate = 60
)

// CandidateStub is the minimal discovered identity of a candidate.
// ProfileURL uniquely identifies a candidate everywhere in the system.
type CandidateStub struct {
	Name           string `json:"name"`
	ProfileURL     string `json:"profile_url"`
	Headline       string `json:"headline"`
	Location       string `json:"location,omitempty"`
	CurrentCompany string `json:"current_company,omitempty"`
	JobTitle       string `json:"job_title,omitempty"`
}

// Position is one entry in a profile's experience history.
type Position struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Duration    string `json:"duration"`
	Description string `json:"description"`
}

// ProfileDetail is the optional enrichment of a stub, fetched lazily from
// the profile page.
type ProfileDetail struct {
	Summary    string     `json:"summary"`
	Experience []Position `json:"experience"`
	Education  []string   `json:"education"`
	Skills     []string   `json:"skills"`
	Location   string     `json:"location"`
}

// ProfileExtractor pulls structured profile fields out of raw page HTML.
// The LLM-backed extractor in internal/ai/gemini implements this; it is
// used when selector-based extraction comes up empty.
type ProfileExtractor interface {
	ExtractProfile(ctx context.Context, profileURL, html string) (*ProfileDetail, error)
}

// Config holds discovery settings. Zero values fall back to package defaults.
type Config struct {
	// ScrapeBaseURL is the search engine endpoint for the scrape backend.
	ScrapeBaseURL string
	// APIBaseURL and APIKey configure the structured search backend.
	APIBaseURL string
	APIKey     string
	// UserAgent is sent on scrape and enrichment requests.
	UserAgent string
	// Timeout bounds each backend call.
	Timeout time.Duration
	// ScrapeRatePerMin and APIRatePerMin are call ceilings per rolling minute.
	ScrapeRatePerMin int
	APIRatePerMin    int
}

// Source discovers candidates with ordered backend fallback: the scrape
// backend first, the structured API when scraping yields nothing.
type Source struct {
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger
	extractor  ProfileExtractor

	scrapeLimiter *rate.Limiter
	apiLimiter    *rate.Limiter
}

// New creates a discovery source. extractor may be nil; enrichment then
// relies on selector extraction only.
func New(cfg Config, logger *zap.Logger, extractor ProfileExtractor) *Source {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.ScrapeRatePerMin <= 0 {
		cfg.ScrapeRatePerMin = DefaultScrapeRate
	}
	if cfg.APIRatePerMin <= 0 {
		cfg.APIRatePerMin = DefaultAPIRate
	}
	if cfg.ScrapeBaseURL == "" {
		cfg.ScrapeBaseURL = defaultScrapeBaseURL
	}
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = defaultAPIBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Source{
		cfg:        cfg,
		logger:     logger,
		extractor:  extractor,
		httpClient: &http.Client{Timeout: cfg.Timeout},

		scrapeLimiter: newMinuteLimiter(cfg.ScrapeRatePerMin),
		apiLimiter:    newMinuteLimiter(cfg.APIRatePerMin),
	}
}

// newMinuteLimiter builds a limiter permitting n calls per rolling minute.
// Callers block on Wait instead of failing when the ceiling is reached.
func newMinuteLimiter(n int) *rate.Limiter {
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(n)), n)
}

// Discover returns up to limit candidate stubs for the job description.
// It tries the scrape backend first and falls back to the structured API
// when scraping returns nothing. It never returns an error: transport,
// parse, and timeout problems all degrade to an empty slice.
func (s *Source) Discover(ctx context.Context, jobDescription string, limit int) []CandidateStub {
	query := BuildQuery(jobDescription)

	stubs := s.searchViaScrape(ctx, query, limit)
	if len(stubs) == 0 {
		s.logger.Info("scrape search empty, falling back to profile API")
		stubs = s.searchViaAPI(ctx, query, jobDescription, limit)
	}

	if len(stubs) > limit {
		stubs = stubs[:limit]
	}
	return stubs
}
