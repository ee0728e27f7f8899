package linkedin

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// maxExtractorHTML caps how much raw page HTML is handed to the LLM
// extractor fallback.
const maxExtractorHTML = 2000

// FetchDetail fetches the candidate's profile page and extracts a
// ProfileDetail. Selector-based extraction runs first; when it produces
// nothing useful and an extractor is configured, the raw HTML is handed to
// the extractor instead.
func (s *Source) FetchDetail(ctx context.Context, profileURL string) (*ProfileDetail, error) {
	if !ValidProfileURL(profileURL) {
		return nil, fmt.Errorf("invalid profile url: %s", profileURL)
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, profileURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", s.cfg.UserAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch profile: bad status %s", resp.Status)
	}

	html, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read profile page: %w", err)
	}

	detail := extractDetail(string(html))
	if !detail.Empty() {
		return detail, nil
	}

	if s.extractor != nil {
		s.logger.Debug("selector extraction empty, trying llm extractor", zap.String("profile_url", profileURL))
		snippet := []rune(string(html))
		if len(snippet) > maxExtractorHTML {
			snippet = snippet[:maxExtractorHTML]
		}
		extracted, err := s.extractor.ExtractProfile(ctx, profileURL, string(snippet))
		if err == nil && extracted != nil && !extracted.Empty() {
			return extracted, nil
		}
	}

	return detail, nil
}

// Empty reports whether no field of the detail carries information.
func (d *ProfileDetail) Empty() bool {
	return d == nil ||
		(d.Summary == "" && d.Location == "" &&
			len(d.Experience) == 0 && len(d.Education) == 0 && len(d.Skills) == 0)
}

// extractDetail pulls profile fields out of page HTML via CSS selectors.
// Public profile markup shifts often, so every selector list is best-effort.
func extractDetail(html string) *ProfileDetail {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return &ProfileDetail{}
	}

	detail := &ProfileDetail{
		Summary:  firstText(doc, ".pv-shared-text-with-see-more", ".pv-about__summary-text", `[data-section="summary"]`),
		Location: firstText(doc, ".text-body-small.inline.t-black--light.break-words", ".pv-text-details__left-panel .text-body-small"),
	}

	doc.Find(`section[data-section="experience"] li`).Each(func(_ int, sel *goquery.Selection) {
		title := strings.TrimSpace(sel.Find("h3").First().Text())
		company := strings.TrimSpace(sel.Find("p.pv-entity__secondary-title").First().Text())
		if title == "" || company == "" {
			return
		}
		detail.Experience = append(detail.Experience, Position{Title: title, Company: company})
	})

	doc.Find(`section[data-section="education"] h3`).Each(func(_ int, sel *goquery.Selection) {
		if school := strings.TrimSpace(sel.Text()); school != "" {
			detail.Education = append(detail.Education, school)
		}
	})

	doc.Find(`section[data-section="skills"] span.pv-skill-category-entity__name-text`).Each(func(_ int, sel *goquery.Selection) {
		if skill := strings.TrimSpace(sel.Text()); skill != "" {
			detail.Skills = append(detail.Skills, skill)
		}
	})

	return detail
}

func firstText(doc *goquery.Document, selectors ...string) string {
	for _, selector := range selectors {
		if text := strings.TrimSpace(doc.Find(selector).First().Text()); text != "" {
			return text
		}
	}
	return ""
}
