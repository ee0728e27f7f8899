package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	_ "embed"

	"go.uber.org/zap"

	"github.com/Ujjwal-Bajpayee/synapse/internal/linkedin"
)

//go:embed extract_prompt.md
var extractPromptTemplate string

// extractionTemperature keeps field extraction as literal as possible.
const extractionTemperature = 0.1

// Extractor recovers structured profile fields from raw page HTML when
// selector-based scraping fails. It implements linkedin.ProfileExtractor.
type Extractor struct {
	generator contentGenerator
	logger    *zap.Logger
}

func NewExtractor(generator contentGenerator, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{generator: generator, logger: logger}
}

// ExtractProfile asks the model for a structured rendition of the page.
// Unlike the scorer and composer this surfaces errors: the caller already
// has a selector-based result to fall back on.
func (e *Extractor) ExtractProfile(ctx context.Context, profileURL, html string) (*linkedin.ProfileDetail, error) {
	prompt := strings.NewReplacer(
		"{{PROFILE_URL}}", profileURL,
		"{{RAW_HTML}}", html,
	).Replace(extractPromptTemplate)

	raw, err := e.generator.Generate(ctx, prompt, extractionTemperature, 0)
	if err != nil {
		return nil, fmt.Errorf("profile extraction: %w", err)
	}

	var detail linkedin.ProfileDetail
	if err := json.Unmarshal([]byte(extractJSON(raw)), &detail); err != nil {
		e.logger.Debug("profile extraction returned malformed json",
			zap.String("profile_url", profileURL),
			zap.Error(err),
		)
		return nil, fmt.Errorf("parse extracted profile: %w", err)
	}

	return &detail, nil
}
