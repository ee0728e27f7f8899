package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/Ujjwal-Bajpayee/synapse/internal/ai"
	"github.com/Ujjwal-Bajpayee/synapse/internal/linkedin"
)

type stubGenerator struct {
	response        string
	err             error
	lastPrompt      string
	lastTemperature float32
	calls           int
}

func (s *stubGenerator) Generate(_ context.Context, prompt string, temperature float32, _ int32) (string, error) {
	s.calls++
	s.lastPrompt = prompt
	s.lastTemperature = temperature
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func testCandidate() *ai.Candidate {
	return &ai.Candidate{
		Stub: linkedin.CandidateStub{
			Name:       "Jane Doe",
			ProfileURL: "https://linkedin.com/in/jane-doe",
			Headline:   "Staff Engineer at Acme",
			Location:   "Remote",
		},
		Detail: &linkedin.ProfileDetail{
			Summary:   "Distributed systems engineer.",
			Skills:    []string{"Go", "Kubernetes"},
			Education: []string{"MIT"},
			Experience: []linkedin.Position{
				{Title: "Staff Engineer", Company: "Acme", Duration: "3 yrs"},
			},
		},
	}
}

func TestScorerParsesRubricResponse(t *testing.T) {
	stub := &stubGenerator{response: `{
		"score": 8.5,
		"breakdown": {
			"education": 9.0,
			"trajectory": 8.0,
			"company": 8.0,
			"skills": 9.0,
			"location": 10.0,
			"tenure": 7.0
		}
	}`}
	scorer := NewScorer(stub, ai.DefaultWeights(), zap.NewNop(), 0)

	eval := scorer.Score(context.Background(), "Senior Go engineer", testCandidate())

	if eval.Breakdown.Education != 9.0 {
		t.Fatalf("expected education 9.0, got %v", eval.Breakdown.Education)
	}
	if eval.Breakdown.Tenure != 7.0 {
		t.Fatalf("expected tenure 7.0, got %v", eval.Breakdown.Tenure)
	}

	want := ai.DefaultWeights().Composite(eval.Breakdown)
	if eval.Score != want {
		t.Fatalf("expected composite %v recomputed from breakdown, got %v", want, eval.Score)
	}

	if !strings.Contains(stub.lastPrompt, "Jane Doe") {
		t.Fatalf("expected candidate name in prompt")
	}
	if !strings.Contains(stub.lastPrompt, "Staff Engineer at Acme (3 yrs)") {
		t.Fatalf("expected experience entry in prompt, got: %s", stub.lastPrompt)
	}
	if stub.lastTemperature != scoringTemperature {
		t.Fatalf("expected scoring temperature %v, got %v", scoringTemperature, stub.lastTemperature)
	}
}

func TestScorerStripsCodeFences(t *testing.T) {
	stub := &stubGenerator{response: "```json\n{\"score\": 6, \"breakdown\": {\"education\": 6, \"trajectory\": 6, \"company\": 6, \"skills\": 6, \"location\": 6, \"tenure\": 6}}\n```"}
	scorer := NewScorer(stub, ai.DefaultWeights(), zap.NewNop(), 0)

	eval := scorer.Score(context.Background(), "job", testCandidate())

	if eval.Breakdown.Skills != 6 {
		t.Fatalf("expected fenced JSON to parse, got breakdown %+v", eval.Breakdown)
	}
}

func TestScorerNeutralOnGarbage(t *testing.T) {
	cases := []struct {
		name     string
		response string
		err      error
	}{
		{name: "not json", response: "I think this candidate is great!"},
		{name: "missing breakdown", response: `{"score": 8.0}`},
		{name: "missing field", response: `{"score": 8, "breakdown": {"education": 8}}`},
		{name: "non numeric field", response: `{"score": 8, "breakdown": {"education": "n/a", "trajectory": 6, "company": 6, "skills": 6, "location": 6, "tenure": 6}}`},
		{name: "generator error", err: errors.New("quota exceeded")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stub := &stubGenerator{response: tc.response, err: tc.err}
			scorer := NewScorer(stub, ai.DefaultWeights(), zap.NewNop(), 0)

			eval := scorer.Score(context.Background(), "job", testCandidate())

			neutral := ai.Neutral()
			if eval != neutral {
				t.Fatalf("expected neutral evaluation, got %+v", eval)
			}
		})
	}
}

func TestScorerClampsOutOfRangeScores(t *testing.T) {
	stub := &stubGenerator{response: `{"score": 42, "breakdown": {"education": 15, "trajectory": -3, "company": 5, "skills": 5, "location": 5, "tenure": 5}}`}
	scorer := NewScorer(stub, ai.DefaultWeights(), zap.NewNop(), 0)

	eval := scorer.Score(context.Background(), "job", testCandidate())

	if eval.Breakdown.Education != 10 {
		t.Fatalf("expected education clamped to 10, got %v", eval.Breakdown.Education)
	}
	if eval.Breakdown.Trajectory != 0 {
		t.Fatalf("expected trajectory clamped to 0, got %v", eval.Breakdown.Trajectory)
	}
}

func TestScorerAcceptsNumericStrings(t *testing.T) {
	stub := &stubGenerator{response: `{"score": "7.5", "breakdown": {"education": "7", "trajectory": "7", "company": "7", "skills": "7", "location": "7", "tenure": "7"}}`}
	scorer := NewScorer(stub, ai.DefaultWeights(), zap.NewNop(), 0)

	eval := scorer.Score(context.Background(), "job", testCandidate())

	if eval.Breakdown.Company != 7 {
		t.Fatalf("expected string numbers to coerce, got %+v", eval.Breakdown)
	}
}

func TestScorerHandlesMissingDetail(t *testing.T) {
	stub := &stubGenerator{response: `{"score": 5, "breakdown": {"education": 5, "trajectory": 5, "company": 5, "skills": 5, "location": 5, "tenure": 5}}`}
	scorer := NewScorer(stub, ai.DefaultWeights(), zap.NewNop(), 0)

	candidate := testCandidate()
	candidate.Detail = nil

	scorer.Score(context.Background(), "job", candidate)

	if !strings.Contains(stub.lastPrompt, "Remote") {
		t.Fatalf("expected stub location in prompt when detail is missing")
	}
}

func TestExtractJSON(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: `{"a": 1}`, want: `{"a": 1}`},
		{name: "json fence", in: "```json\n{\"a\": 1}\n```", want: `{"a": 1}`},
		{name: "bare fence", in: "```\n{\"a\": 1}\n```", want: `{"a": 1}`},
		{name: "padded", in: "  {\"a\": 1}  ", want: `{"a": 1}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := extractJSON(tc.in); got != tc.want {
				t.Fatalf("extractJSON(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
