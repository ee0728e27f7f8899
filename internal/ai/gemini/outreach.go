package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	_ "embed"

	"go.uber.org/zap"

	"github.com/Ujjwal-Bajpayee/synapse/internal/ai"
	"github.com/Ujjwal-Bajpayee/synapse/internal/util"
)

//go:embed outreach_prompt.md
var outreachPromptTemplate string

const (
	// outreachTemperature favors varied, natural-sounding messages.
	outreachTemperature = 0.7
	outreachMaxTokens   = 512
)

// Composer drafts personalized outreach messages for top candidates. It
// never fails: an empty or failed generation degrades to a fixed template.
type Composer struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewComposer(generator contentGenerator, logger *zap.Logger, maxLogLength int) *Composer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Composer{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

// Compose returns a short personalized message for the candidate, or the
// fallback template when generation yields nothing usable.
func (c *Composer) Compose(ctx context.Context, jobDescription string, candidate *ai.Candidate, eval ai.Evaluation) string {
	breakdownJSON, err := json.Marshal(eval.Breakdown)
	if err != nil {
		breakdownJSON = []byte("{}")
	}

	prompt := strings.NewReplacer(
		"{{JOB_DESCRIPTION}}", jobDescription,
		"{{NAME}}", candidate.Stub.Name,
		"{{HEADLINE}}", candidate.Stub.Headline,
		"{{SCORE}}", strconv.FormatFloat(eval.Score, 'f', 1, 64),
		"{{BREAKDOWN}}", string(breakdownJSON),
	).Replace(outreachPromptTemplate)

	message, err := c.generator.Generate(ctx, prompt, outreachTemperature, outreachMaxTokens)
	if err != nil || strings.TrimSpace(message) == "" {
		c.logger.Warn("outreach generation failed, using template message",
			zap.String("candidate", candidate.Stub.ProfileURL),
			zap.Error(err),
		)
		return FallbackMessage(candidate.Stub.Name)
	}

	c.logger.Debug("outreach message generated",
		zap.String("candidate", candidate.Stub.ProfileURL),
		zap.String("message_preview", util.TruncateForLog(message, c.maxLogLen)),
	)

	return strings.TrimSpace(message)
}

// FallbackMessage is the fixed template used when generation fails. An
// empty name falls back to a generic greeting.
func FallbackMessage(name string) string {
	if strings.TrimSpace(name) == "" {
		name = "there"
	}
	return fmt.Sprintf("Hi %s, I came across your profile and would love to connect regarding a potential opportunity.", name)
}
