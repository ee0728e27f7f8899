package ai

import (
	"context"
	"fmt"
	"math"

	"github.com/Ujjwal-Bajpayee/synapse/internal/linkedin"
)

// Breakdown holds the per-criterion rubric scores, each on a 0-10 scale.
type Breakdown struct {
	Education  float64 `json:"education"`
	Trajectory float64 `json:"trajectory"`
	Company    float64 `json:"company"`
	Skills     float64 `json:"skills"`
	Location   float64 `json:"location"`
	Tenure     float64 `json:"tenure"`
}

// Evaluation is the outcome of scoring one candidate against one job
// description. Score is the weighted composite of Breakdown.
type Evaluation struct {
	Score     float64   `json:"score"`
	Breakdown Breakdown `json:"breakdown"`
}

// NeutralScore is used whenever the scoring backend cannot produce a usable
// result. Callers must not be able to tell a neutral result from a real one.
const NeutralScore = 5.0

// Neutral returns the default evaluation: 5.0 overall and for every criterion.
func Neutral() Evaluation {
	return Evaluation{
		Score: NeutralScore,
		Breakdown: Breakdown{
			Education:  NeutralScore,
			Trajectory: NeutralScore,
			Company:    NeutralScore,
			Skills:     NeutralScore,
			Location:   NeutralScore,
			Tenure:     NeutralScore,
		},
	}
}

// Weights configures the relative importance of each rubric criterion.
// They must sum to 1.
type Weights struct {
	Education  float64 `mapstructure:"education"`
	Trajectory float64 `mapstructure:"trajectory"`
	Company    float64 `mapstructure:"company"`
	Skills     float64 `mapstructure:"skills"`
	Location   float64 `mapstructure:"location"`
	Tenure     float64 `mapstructure:"tenure"`
}

// DefaultWeights returns the standard sourcing rubric weights.
func DefaultWeights() Weights {
	return Weights{
		Education:  0.20,
		Trajectory: 0.20,
		Company:    0.15,
		Skills:     0.25,
		Location:   0.10,
		Tenure:     0.10,
	}
}

const weightsTolerance = 1e-6

// Validate checks that the weights form a proper convex combination.
func (w Weights) Validate() error {
	sum := w.Education + w.Trajectory + w.Company + w.Skills + w.Location + w.Tenure
	if math.Abs(sum-1.0) > weightsTolerance {
		return fmt.Errorf("rubric weights must sum to 1.0, got %v", sum)
	}
	return nil
}

// Composite computes the weighted overall score from a breakdown. The
// composite returned by the generation backend is advisory only; this value
// is authoritative.
func (w Weights) Composite(b Breakdown) float64 {
	return b.Education*w.Education +
		b.Trajectory*w.Trajectory +
		b.Company*w.Company +
		b.Skills*w.Skills +
		b.Location*w.Location +
		b.Tenure*w.Tenure
}

// Generator produces text for a prompt. Implementations are expected to
// rate-limit themselves and honor the context deadline.
type Generator interface {
	Generate(ctx context.Context, prompt string, temperature float32, maxTokens int32) (string, error)
}

// Scorer evaluates a candidate against a job description. Implementations
// never fail: any backend or parse problem degrades to Neutral().
type Scorer interface {
	Score(ctx context.Context, jobDescription string, candidate *Candidate) Evaluation
}

// Composer drafts a personalized outreach message for a scored candidate.
// Implementations never fail: problems degrade to a fixed template.
type Composer interface {
	Compose(ctx context.Context, jobDescription string, candidate *Candidate, eval Evaluation) string
}

// Candidate carries everything the scorer and composer may reference.
// Detail is optional enrichment and may be nil.
type Candidate struct {
	Stub   linkedin.CandidateStub
	Detail *linkedin.ProfileDetail
}
