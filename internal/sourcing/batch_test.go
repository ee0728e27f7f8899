package sourcing

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Ujjwal-Bajpayee/synapse/internal/linkedin"
)

// jobKeyedSource returns candidates only for job descriptions it knows,
// with optional per-job delays.
type jobKeyedSource struct {
	mu     sync.Mutex
	byJob  map[string][]linkedin.CandidateStub
	delays map[string]time.Duration
}

func (s *jobKeyedSource) Discover(ctx context.Context, jobDescription string, limit int) []linkedin.CandidateStub {
	s.mu.Lock()
	delay := s.delays[jobDescription]
	stubs := s.byJob[jobDescription]
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil
		}
	}
	if len(stubs) > limit {
		stubs = stubs[:limit]
	}
	return stubs
}

func (s *jobKeyedSource) FetchDetail(context.Context, string) (*linkedin.ProfileDetail, error) {
	return nil, context.Canceled
}

func TestProcessBatchKeepsInputOrder(t *testing.T) {
	jobs := []string{"go engineer", "data scientist", "product manager"}
	source := &jobKeyedSource{byJob: map[string][]linkedin.CandidateStub{
		"go engineer":     {{Name: "Go Dev", ProfileURL: "https://linkedin.com/in/go-dev"}},
		"data scientist":  {{Name: "DS", ProfileURL: "https://linkedin.com/in/ds"}},
		"product manager": {{Name: "PM", ProfileURL: "https://linkedin.com/in/pm"}},
	}}
	scorer := &stubScorer{scores: map[string]float64{
		"https://linkedin.com/in/go-dev": 8,
		"https://linkedin.com/in/ds":     7,
		"https://linkedin.com/in/pm":     6,
	}}
	agent := newTestAgent(source, scorer, newMemoryStore(), Config{})

	results := agent.ProcessBatch(context.Background(), jobs, 1)

	if len(results) != len(jobs) {
		t.Fatalf("expected %d results, got %d", len(jobs), len(results))
	}
	for i, job := range jobs {
		if results[i].JobDescription != job {
			t.Fatalf("result %d out of order: got %q, want %q", i, results[i].JobDescription, job)
		}
		if results[i].Error != "" {
			t.Fatalf("job %q unexpectedly failed: %s", job, results[i].Error)
		}
	}
	if results[0].TopCandidates[0].Name != "Go Dev" {
		t.Fatalf("unexpected top candidate for first job: %+v", results[0].TopCandidates)
	}
}

func TestProcessBatchIsolatesFailedJobs(t *testing.T) {
	jobs := []string{"has candidates", "has nobody"}
	source := &jobKeyedSource{byJob: map[string][]linkedin.CandidateStub{
		"has candidates": {{Name: "Jane", ProfileURL: "https://linkedin.com/in/jane"}},
	}}
	scorer := &stubScorer{scores: map[string]float64{"https://linkedin.com/in/jane": 8}}
	agent := newTestAgent(source, scorer, newMemoryStore(), Config{})

	results := agent.ProcessBatch(context.Background(), jobs, 1)

	if results[0].Error != "" {
		t.Fatalf("healthy job must not be affected by a failing sibling: %s", results[0].Error)
	}
	if results[1].Error != "No candidates found" {
		t.Fatalf("expected the no-candidates error for the empty job, got %q", results[1].Error)
	}
	if len(results[1].Candidates) != 0 {
		t.Fatalf("failed job must report no candidates, got %+v", results[1].Candidates)
	}
}

func TestProcessBatchJobTimeout(t *testing.T) {
	jobs := []string{"fast job", "slow job"}
	source := &jobKeyedSource{
		byJob: map[string][]linkedin.CandidateStub{
			"fast job": {{Name: "Jane", ProfileURL: "https://linkedin.com/in/jane"}},
			"slow job": {{Name: "John", ProfileURL: "https://linkedin.com/in/john"}},
		},
		delays: map[string]time.Duration{"slow job": 500 * time.Millisecond},
	}
	scorer := &stubScorer{scores: map[string]float64{
		"https://linkedin.com/in/jane": 8,
		"https://linkedin.com/in/john": 8,
	}}
	agent := newTestAgent(source, scorer, newMemoryStore(), Config{JobTimeout: 50 * time.Millisecond})

	results := agent.ProcessBatch(context.Background(), jobs, 1)

	if results[0].Error != "" {
		t.Fatalf("fast job must finish inside the timeout: %s", results[0].Error)
	}
	if results[1].Error == "" || !strings.Contains(results[1].Error, "deadline") {
		t.Fatalf("expected a deadline error for the slow job, got %q", results[1].Error)
	}
}

func TestProcessBatchSharedPoolAcrossJobs(t *testing.T) {
	// More jobs than scoring workers: dispatch must not deadlock even
	// though every job contends for the same pool.
	jobs := make([]string, 8)
	byJob := make(map[string][]linkedin.CandidateStub, len(jobs))
	scores := make(map[string]float64)
	for i := range jobs {
		jobs[i] = "job " + string(rune('a'+i))
		url := "https://linkedin.com/in/c" + string(rune('a'+i))
		byJob[jobs[i]] = []linkedin.CandidateStub{{Name: "C", ProfileURL: url}}
		scores[url] = 7
	}
	agent := newTestAgent(&jobKeyedSource{byJob: byJob}, &stubScorer{scores: scores}, newMemoryStore(), Config{Workers: 2})

	done := make(chan []JobResult, 1)
	go func() { done <- agent.ProcessBatch(context.Background(), jobs, 1) }()

	select {
	case results := <-done:
		for i := range results {
			if results[i].Error != "" {
				t.Fatalf("job %d failed: %s", i, results[i].Error)
			}
			if results[i].Candidates[0].Score != 7 {
				t.Fatalf("job %d got wrong score: %v", i, results[i].Candidates[0].Score)
			}
		}
	case <-time.After(5 * time.Second):
		t.Fatal("batch processing deadlocked")
	}
}

func TestErrorResultShape(t *testing.T) {
	result := errorResult("some job", "boom")

	if result.JobDescription != "some job" || result.Error != "boom" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.Candidates == nil || result.TopCandidates == nil {
		t.Fatalf("candidate slices must be empty, not nil")
	}
	if result.Summary != (Summary{}) {
		t.Fatalf("expected zero summary, got %+v", result.Summary)
	}
}
