package ai

import (
	"math"
	"testing"
)

func TestDefaultWeightsValidate(t *testing.T) {
	if err := DefaultWeights().Validate(); err != nil {
		t.Fatalf("default weights must validate: %v", err)
	}
}

func TestWeightsValidateRejectsBadSum(t *testing.T) {
	w := DefaultWeights()
	w.Skills = 0.5

	if err := w.Validate(); err == nil {
		t.Fatalf("expected validation error for weights summing to %v", 1.25)
	}
}

func TestWeightsValidateTolerance(t *testing.T) {
	w := Weights{
		Education:  0.1,
		Trajectory: 0.2,
		Company:    0.2,
		Skills:     0.2,
		Location:   0.2,
		Tenure:     0.1,
	}

	if err := w.Validate(); err != nil {
		t.Fatalf("weights within tolerance must validate: %v", err)
	}
}

func TestComposite(t *testing.T) {
	w := DefaultWeights()
	b := Breakdown{Education: 10, Trajectory: 10, Company: 10, Skills: 10, Location: 10, Tenure: 10}

	if got := w.Composite(b); math.Abs(got-10.0) > 1e-9 {
		t.Fatalf("perfect breakdown must compose to 10, got %v", got)
	}

	b = Breakdown{Education: 10}
	if got := w.Composite(b); math.Abs(got-2.0) > 1e-9 {
		t.Fatalf("expected 10 * 0.20 = 2.0, got %v", got)
	}
}

func TestNeutral(t *testing.T) {
	eval := Neutral()

	if eval.Score != NeutralScore {
		t.Fatalf("expected neutral score %v, got %v", NeutralScore, eval.Score)
	}
	if got := DefaultWeights().Composite(eval.Breakdown); math.Abs(got-NeutralScore) > 1e-9 {
		t.Fatalf("neutral breakdown must compose back to %v, got %v", NeutralScore, got)
	}
}
