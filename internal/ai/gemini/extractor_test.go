package gemini

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
)

func TestExtractorParsesProfile(t *testing.T) {
	stub := &stubGenerator{response: `{
		"summary": "Platform engineer.",
		"experience": [{"title": "SRE", "company": "Acme", "duration": "2 yrs"}],
		"education": ["Stanford"],
		"skills": ["Go"],
		"location": "Berlin"
	}`}
	extractor := NewExtractor(stub, zap.NewNop())

	detail, err := extractor.ExtractProfile(context.Background(), "https://linkedin.com/in/x", "<html></html>")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if detail.Summary != "Platform engineer." {
		t.Fatalf("unexpected summary: %q", detail.Summary)
	}
	if len(detail.Experience) != 1 || detail.Experience[0].Company != "Acme" {
		t.Fatalf("unexpected experience: %+v", detail.Experience)
	}
	if detail.Location != "Berlin" {
		t.Fatalf("unexpected location: %q", detail.Location)
	}
}

func TestExtractorSurfacesErrors(t *testing.T) {
	stub := &stubGenerator{err: errors.New("backend down")}
	extractor := NewExtractor(stub, zap.NewNop())

	if _, err := extractor.ExtractProfile(context.Background(), "https://linkedin.com/in/x", "<html></html>"); err == nil {
		t.Fatalf("expected error from failed generation")
	}

	stub = &stubGenerator{response: "this is not json"}
	extractor = NewExtractor(stub, zap.NewNop())

	if _, err := extractor.ExtractProfile(context.Background(), "https://linkedin.com/in/x", "<html></html>"); err == nil {
		t.Fatalf("expected error from malformed response")
	}
}
