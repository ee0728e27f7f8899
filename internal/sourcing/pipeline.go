// Package sourcing coordinates candidate discovery, concurrent rubric
// scoring, ranking, and outreach generation for one or many job
// descriptions.
package sourcing

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Ujjwal-Bajpayee/synapse/internal/ai"
	"github.com/Ujjwal-Bajpayee/synapse/internal/linkedin"
	"github.com/Ujjwal-Bajpayee/synapse/internal/store"
)

const (
	// DefaultWorkers bounds concurrent scoring tasks across all in-flight jobs.
	DefaultWorkers = 5
	// DefaultTaskTimeout bounds one candidate's enrich-and-score task.
	DefaultTaskTimeout = 30 * time.Second
	// DefaultJobTimeout bounds one whole job inside a batch.
	DefaultJobTimeout = 5 * time.Minute
	// DefaultTopN is how many candidates receive outreach messages.
	DefaultTopN = 10
)

// Source discovers candidate stubs and fetches profile enrichment.
type Source interface {
	Discover(ctx context.Context, jobDescription string, limit int) []linkedin.CandidateStub
	FetchDetail(ctx context.Context, profileURL string) (*linkedin.ProfileDetail, error)
}

// Persistence is the subset of the store the pipeline relies on.
type Persistence interface {
	SaveCandidate(ctx context.Context, c *store.Candidate) (int64, error)
	GetCandidate(ctx context.Context, profileURL string) (*store.Candidate, error)
	SaveOutreach(ctx context.Context, candidateID int64, jobDescription, message string) error
	CacheSearch(ctx context.Context, jobDescription, searchQuery string, stubs []linkedin.CandidateStub) error
	CachedSearch(ctx context.Context, jobDescription, searchQuery string, ttl time.Duration) ([]linkedin.CandidateStub, bool, error)
}

// Config carries the pipeline's tunables. Zero values select defaults.
type Config struct {
	Workers     int
	TaskTimeout time.Duration
	JobTimeout  time.Duration
	CacheTTL    time.Duration
	TopN        int
}

func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
	if c.TaskTimeout <= 0 {
		c.TaskTimeout = DefaultTaskTimeout
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = DefaultJobTimeout
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = store.DefaultCacheTTL
	}
	if c.TopN <= 0 {
		c.TopN = DefaultTopN
	}
	return c
}

// Agent runs the sourcing pipeline. One agent may serve many jobs
// concurrently; all of them share one bounded scoring pool.
type Agent struct {
	source   Source
	scorer   ai.Scorer
	composer ai.Composer
	db       Persistence
	logger   *zap.Logger
	cfg      Config

	// scoreSem is the shared scoring worker pool. Job-level dispatch is
	// deliberately unbounded so nested fan-out cannot starve the pool.
	scoreSem chan struct{}
}

func NewAgent(source Source, scorer ai.Scorer, composer ai.Composer, db Persistence, logger *zap.Logger, cfg Config) *Agent {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Agent{
		source:   source,
		scorer:   scorer,
		composer: composer,
		db:       db,
		logger:   logger,
		cfg:      cfg,
		scoreSem: make(chan struct{}, cfg.Workers),
	}
}

// ProcessJob sources, scores, ranks, and drafts outreach for one job
// description. topN <= 0 selects the configured default.
func (a *Agent) ProcessJob(ctx context.Context, jobDescription string, topN int) JobResult {
	if topN <= 0 {
		topN = a.cfg.TopN
	}

	logger := a.logger.With(zap.String("job", truncateJob(jobDescription)))
	logger.Info("starting sourcing run", zap.Int("top_n", topN))

	stubs := a.discover(ctx, jobDescription, topN)
	if len(stubs) == 0 {
		logger.Info("discovery exhausted", zap.String("result", ErrNoCandidatesText))
		return errorResult(jobDescription, ErrNoCandidatesText)
	}
	logger.Info("discovery finished", zap.Int("candidates", len(stubs)))

	scored := a.scoreAll(ctx, jobDescription, stubs)

	// Stable sort keeps discovery order for equal scores.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	top := topN
	if top > len(scored) {
		top = len(scored)
	}
	topCandidates := a.generateOutreach(ctx, jobDescription, scored[:top])

	result := JobResult{
		JobDescription: jobDescription,
		Candidates:     scored,
		TopCandidates:  topCandidates,
		Summary: Summary{
			TotalCandidates:    len(scored),
			TopCandidatesCount: len(topCandidates),
			AverageScore:       averageScore(scored),
		},
	}

	logger.Info("sourcing run finished",
		zap.Int("total", result.Summary.TotalCandidates),
		zap.Float64("average_score", result.Summary.AverageScore),
	)

	return result
}

// discover returns candidate stubs for the job, consulting the cache before
// any backend and writing back non-empty fresh results.
func (a *Agent) discover(ctx context.Context, jobDescription string, limit int) []linkedin.CandidateStub {
	searchQuery := linkedin.CacheQuery(jobDescription)

	cached, ok, err := a.db.CachedSearch(ctx, jobDescription, searchQuery, a.cfg.CacheTTL)
	if err != nil {
		a.logger.Warn("search cache read failed", zap.Error(err))
	}
	if ok {
		a.logger.Info("using cached search results", zap.Int("candidates", len(cached)))
		if len(cached) > limit {
			cached = cached[:limit]
		}
		return cached
	}

	stubs := a.source.Discover(ctx, jobDescription, limit)
	if len(stubs) > 0 {
		if err := a.db.CacheSearch(ctx, jobDescription, searchQuery, stubs); err != nil {
			a.logger.Warn("search cache write failed", zap.Error(err))
		}
	}

	return stubs
}

// scoreAll fans scoring tasks out over the shared bounded pool. Every stub
// yields exactly one ScoredCandidate: a task that times out or panics is
// abandoned and a neutral evaluation substituted.
func (a *Agent) scoreAll(ctx context.Context, jobDescription string, stubs []linkedin.CandidateStub) []ScoredCandidate {
	scored := make([]ScoredCandidate, len(stubs))

	g := new(errgroup.Group)
	for i, stub := range stubs {
		g.Go(func() error {
			eval := a.scoreWithTimeout(ctx, jobDescription, stub)
			scored[i] = ScoredCandidate{
				CandidateStub: stub,
				Score:         eval.Score,
				Breakdown:     eval.Breakdown,
			}
			return nil
		})
	}
	_ = g.Wait() // tasks never return errors, they degrade to neutral

	return scored
}

// scoreWithTimeout runs one scoring task on the pool, bounded by the
// per-candidate timeout. The abandoned task keeps its worker until it
// returns on its own.
func (a *Agent) scoreWithTimeout(ctx context.Context, jobDescription string, stub linkedin.CandidateStub) ai.Evaluation {
	select {
	case a.scoreSem <- struct{}{}:
	case <-ctx.Done():
		return ai.Neutral()
	}

	taskCtx, cancel := context.WithTimeout(ctx, a.cfg.TaskTimeout)
	defer cancel()

	done := make(chan ai.Evaluation, 1)
	go func() {
		defer func() { <-a.scoreSem }()
		defer func() {
			if r := recover(); r != nil {
				a.logger.Error("scoring task panicked",
					zap.String("candidate", stub.ProfileURL),
					zap.Any("panic", r),
				)
				done <- ai.Neutral()
			}
		}()
		done <- a.scoreOne(taskCtx, jobDescription, stub)
	}()

	select {
	case eval := <-done:
		return eval
	case <-taskCtx.Done():
		a.logger.Warn("scoring task timed out, using neutral score",
			zap.String("candidate", stub.ProfileURL),
		)
		return ai.Neutral()
	}
}

// scoreOne enriches (best effort), scores, and persists one candidate.
func (a *Agent) scoreOne(ctx context.Context, jobDescription string, stub linkedin.CandidateStub) ai.Evaluation {
	detail := a.lookupOrFetchDetail(ctx, stub)

	eval := a.scorer.Score(ctx, jobDescription, &ai.Candidate{Stub: stub, Detail: detail})

	breakdown := eval.Breakdown
	if _, err := a.db.SaveCandidate(ctx, &store.Candidate{
		ProfileURL: stub.ProfileURL,
		Name:       stub.Name,
		Headline:   stub.Headline,
		Detail:     detail,
		Score:      &eval.Score,
		Breakdown:  &breakdown,
	}); err != nil {
		a.logger.Warn("persisting score failed",
			zap.String("candidate", stub.ProfileURL),
			zap.Error(err),
		)
	}

	return eval
}

// lookupOrFetchDetail returns persisted enrichment for the stub, fetching
// and persisting it once when absent. Failures are swallowed; scoring then
// proceeds on stub data alone.
func (a *Agent) lookupOrFetchDetail(ctx context.Context, stub linkedin.CandidateStub) *linkedin.ProfileDetail {
	if rec, err := a.db.GetCandidate(ctx, stub.ProfileURL); err == nil && rec != nil && rec.Detail != nil {
		return rec.Detail
	}

	detail, err := a.source.FetchDetail(ctx, stub.ProfileURL)
	if err != nil || detail.Empty() {
		if err != nil {
			a.logger.Debug("profile enrichment failed",
				zap.String("candidate", stub.ProfileURL),
				zap.Error(err),
			)
		}
		return nil
	}

	if _, err := a.db.SaveCandidate(ctx, &store.Candidate{
		ProfileURL: stub.ProfileURL,
		Name:       stub.Name,
		Headline:   stub.Headline,
		Detail:     detail,
	}); err != nil {
		a.logger.Debug("persisting enrichment failed",
			zap.String("candidate", stub.ProfileURL),
			zap.Error(err),
		)
	}

	return detail
}

// generateOutreach drafts messages for the top candidates sequentially.
// Message quality matters more than throughput here, so this stage is not
// pooled. A failure yields the template message, never an abort.
func (a *Agent) generateOutreach(ctx context.Context, jobDescription string, top []ScoredCandidate) []ScoredCandidate {
	out := make([]ScoredCandidate, len(top))
	for i, candidate := range top {
		message := a.composer.Compose(ctx, jobDescription, &ai.Candidate{Stub: candidate.CandidateStub}, ai.Evaluation{
			Score:     candidate.Score,
			Breakdown: candidate.Breakdown,
		})

		candidate.OutreachMessage = message
		out[i] = candidate

		breakdown := candidate.Breakdown
		id, err := a.db.SaveCandidate(ctx, &store.Candidate{
			ProfileURL: candidate.ProfileURL,
			Name:       candidate.Name,
			Headline:   candidate.Headline,
			Score:      &candidate.Score,
			Breakdown:  &breakdown,
		})
		if err != nil {
			a.logger.Warn("persisting top candidate failed",
				zap.String("candidate", candidate.ProfileURL),
				zap.Error(err),
			)
			continue
		}
		if err := a.db.SaveOutreach(ctx, id, jobDescription, message); err != nil {
			a.logger.Warn("persisting outreach message failed",
				zap.String("candidate", candidate.ProfileURL),
				zap.Error(err),
			)
		}
	}

	return out
}

func averageScore(scored []ScoredCandidate) float64 {
	if len(scored) == 0 {
		return 0
	}
	var sum float64
	for _, c := range scored {
		sum += c.Score
	}
	return sum / float64(len(scored))
}

const jobLogLen = 80

func truncateJob(jobDescription string) string {
	runes := []rune(jobDescription)
	if len(runes) > jobLogLen {
		return string(runes[:jobLogLen]) + "..."
	}
	return jobDescription
}
