package gemini

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	_ "embed"

	"go.uber.org/zap"

	"github.com/Ujjwal-Bajpayee/synapse/internal/ai"
	"github.com/Ujjwal-Bajpayee/synapse/internal/util"
)

//go:embed score_prompt.md
var scorePromptTemplate string

const (
	// scoringTemperature keeps rubric results deterministic and consistent.
	scoringTemperature = 0.3
	scoringMaxTokens   = 512

	defaultMaxLogLength = 200

	minRubricScore = 0.0
	maxRubricScore = 10.0
)

type contentGenerator interface {
	Generate(ctx context.Context, prompt string, temperature float32, maxTokens int32) (string, error)
}

// Scorer evaluates candidates against a job description using the fixed
// weighted rubric. It never fails: transport and parse problems degrade to
// the neutral evaluation.
type Scorer struct {
	generator contentGenerator
	weights   ai.Weights
	logger    *zap.Logger
	maxLogLen int
}

// NewScorer builds a rubric scorer on top of the generator. The weights are
// validated by the caller; they determine the composite score.
func NewScorer(generator contentGenerator, weights ai.Weights, logger *zap.Logger, maxLogLength int) *Scorer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scorer{
		generator: generator,
		weights:   weights,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

// Score evaluates one candidate. The composite score is recomputed from the
// returned breakdown via the configured weights; the backend's own composite
// is only logged when it disagrees.
func (s *Scorer) Score(ctx context.Context, jobDescription string, candidate *ai.Candidate) ai.Evaluation {
	prompt := buildScorePrompt(jobDescription, candidate)

	s.logger.Debug("rubric scoring request",
		zap.String("candidate", candidate.Stub.ProfileURL),
		zap.String("prompt_preview", util.TruncateForLog(prompt, s.maxLogLen)),
	)

	raw, err := s.generator.Generate(ctx, prompt, scoringTemperature, scoringMaxTokens)
	if err != nil {
		s.logger.Warn("rubric scoring failed, using neutral score",
			zap.String("candidate", candidate.Stub.ProfileURL),
			zap.Error(err),
		)
		return ai.Neutral()
	}

	eval, ok := parseEvaluation(raw)
	if !ok {
		s.logger.Warn("rubric response unparseable, using neutral score",
			zap.String("candidate", candidate.Stub.ProfileURL),
			zap.String("response_preview", util.TruncateForLog(raw, s.maxLogLen)),
		)
		return ai.Neutral()
	}

	composite := s.weights.Composite(eval.Breakdown)
	if math.Abs(composite-eval.Score) > 0.5 {
		s.logger.Debug("backend composite diverges from weighted breakdown",
			zap.String("candidate", candidate.Stub.ProfileURL),
			zap.Float64("backend_score", eval.Score),
			zap.Float64("weighted_score", composite),
		)
	}
	eval.Score = composite

	return eval
}

func buildScorePrompt(jobDescription string, candidate *ai.Candidate) string {
	replacements := []string{
		"{{JOB_DESCRIPTION}}", jobDescription,
		"{{NAME}}", candidate.Stub.Name,
		"{{HEADLINE}}", candidate.Stub.Headline,
		"{{EDUCATION}}", strings.Join(detailEducation(candidate), "; "),
		"{{EXPERIENCE}}", detailExperience(candidate),
		"{{SKILLS}}", strings.Join(detailSkills(candidate), ", "),
		"{{LOCATION}}", detailLocation(candidate),
		"{{SUMMARY}}", detailSummary(candidate),
	}

	return strings.NewReplacer(replacements...).Replace(scorePromptTemplate)
}

func detailEducation(c *ai.Candidate) []string {
	if c.Detail == nil {
		return nil
	}
	return c.Detail.Education
}

func detailSkills(c *ai.Candidate) []string {
	if c.Detail == nil {
		return nil
	}
	return c.Detail.Skills
}

func detailSummary(c *ai.Candidate) string {
	if c.Detail == nil {
		return ""
	}
	return c.Detail.Summary
}

func detailLocation(c *ai.Candidate) string {
	if c.Detail != nil && c.Detail.Location != "" {
		return c.Detail.Location
	}
	return c.Stub.Location
}

func detailExperience(c *ai.Candidate) string {
	if c.Detail == nil || len(c.Detail.Experience) == 0 {
		return ""
	}
	entries := make([]string, 0, len(c.Detail.Experience))
	for _, pos := range c.Detail.Experience {
		entry := pos.Title
		if pos.Company != "" {
			entry += " at " + pos.Company
		}
		if pos.Duration != "" {
			entry += " (" + pos.Duration + ")"
		}
		entries = append(entries, entry)
	}
	return strings.Join(entries, "; ")
}

// parseEvaluation validates the backend's response against the expected
// shape. The output is untrusted text: every field is checked before use.
func parseEvaluation(raw string) (ai.Evaluation, bool) {
	cleaned := extractJSON(raw)

	var data struct {
		Score     json.RawMessage            `json:"score"`
		Breakdown map[string]json.RawMessage `json:"breakdown"`
	}
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return ai.Evaluation{}, false
	}
	if data.Breakdown == nil {
		return ai.Evaluation{}, false
	}

	breakdown := ai.Breakdown{}
	fields := map[string]*float64{
		"education":  &breakdown.Education,
		"trajectory": &breakdown.Trajectory,
		"company":    &breakdown.Company,
		"skills":     &breakdown.Skills,
		"location":   &breakdown.Location,
		"tenure":     &breakdown.Tenure,
	}
	for name, target := range fields {
		value, ok := coerceFloat(data.Breakdown[name])
		if !ok {
			return ai.Evaluation{}, false
		}
		*target = clampScore(value)
	}

	score, ok := coerceFloat(data.Score)
	if !ok {
		score = 0
	}

	return ai.Evaluation{Score: clampScore(score), Breakdown: breakdown}, true
}

func clampScore(v float64) float64 {
	return math.Min(maxRubricScore, math.Max(minRubricScore, v))
}

// extractJSON strips markdown code fences the model sometimes wraps its
// JSON in.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func coerceFloat(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 {
		return 0, false
	}

	var number float64
	if err := json.Unmarshal(raw, &number); err == nil {
		if math.IsNaN(number) || math.IsInf(number, 0) {
			return 0, false
		}
		return number, true
	}

	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return 0, false
	}
	number, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || math.IsNaN(number) || math.IsInf(number, 0) {
		return 0, false
	}
	return number, true
}
