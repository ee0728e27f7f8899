package sourcing

import (
	"github.com/Ujjwal-Bajpayee/synapse/internal/ai"
	"github.com/Ujjwal-Bajpayee/synapse/internal/linkedin"
)

// ScoredCandidate is a discovered stub plus its rubric evaluation and,
// for top candidates, the generated outreach message. Immutable once
// produced within one pipeline run.
type ScoredCandidate struct {
	linkedin.CandidateStub
	Score           float64      `json:"score"`
	Breakdown       ai.Breakdown `json:"score_breakdown"`
	OutreachMessage string       `json:"outreach_message,omitempty"`
}

// Summary aggregates one job's run.
type Summary struct {
	TotalCandidates    int     `json:"total_candidates"`
	TopCandidatesCount int     `json:"top_candidates_count"`
	AverageScore       float64 `json:"average_score"`
}

// JobResult is the outcome of sourcing one job description. Candidates is
// always sorted descending by score; TopCandidates is a prefix of it with
// outreach messages attached. Error is set only on total failure.
type JobResult struct {
	JobDescription string            `json:"job_description"`
	Candidates     []ScoredCandidate `json:"candidates"`
	TopCandidates  []ScoredCandidate `json:"top_candidates"`
	Summary        Summary           `json:"summary"`
	Error          string            `json:"error,omitempty"`
}

// ErrNoCandidatesText is the reported condition when discovery exhausts
// both backends with nothing to show.
const ErrNoCandidatesText = "No candidates found"

func errorResult(jobDescription, errText string) JobResult {
	return JobResult{
		JobDescription: jobDescription,
		Candidates:     []ScoredCandidate{},
		TopCandidates:  []ScoredCandidate{},
		Error:          errText,
	}
}
