package linkedin

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

const (
	defaultScrapeBaseURL = "https://www.google.com/search"
	defaultUserAgent     = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/58.0.3029.110 Safari/537.3"
)

// searchViaScrape queries a web search engine scoped to profile pages and
// parses result anchors. Any failure degrades to an empty slice.
func (s *Source) searchViaScrape(ctx context.Context, query SearchQuery, limit int) []CandidateStub {
	if err := s.scrapeLimiter.Wait(ctx); err != nil {
		return nil
	}

	terms := query.Title
	if query.Location != "" {
		terms += " " + query.Location
	}
	if len(query.Keywords) > 0 {
		terms += " " + strings.Join(query.Keywords, " ")
	}

	searchURL := s.cfg.ScrapeBaseURL + "?q=" + url.QueryEscape("site:linkedin.com/in "+terms)

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", s.cfg.UserAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Debug("scrape search failed", zap.Error(err))
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.logger.Debug("scrape search bad status", zap.String("status", resp.Status))
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		s.logger.Debug("scrape search parse failed", zap.Error(err))
		return nil
	}

	return parseSearchResults(doc, limit)
}

// parseSearchResults walks result anchors and keeps those pointing at valid
// profile URLs with a usable name.
func parseSearchResults(doc *goquery.Document, limit int) []CandidateStub {
	var stubs []CandidateStub
	seen := make(map[string]bool)

	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		profileURL := unwrapRedirect(href)
		if profileURL == "" || !ValidProfileURL(profileURL) || seen[profileURL] {
			return true
		}

		text := strings.TrimSpace(sel.Text())
		name := resultName(text)
		if name == "" {
			return true
		}

		seen[profileURL] = true
		stubs = append(stubs, CandidateStub{
			Name:       name,
			ProfileURL: profileURL,
			Headline:   resultHeadline(text),
		})

		return len(stubs) < limit
	})

	return stubs
}

// unwrapRedirect extracts the target profile URL from a search engine
// redirect link, or returns the href itself when it is already direct.
func unwrapRedirect(href string) string {
	if href == "" {
		return ""
	}

	if strings.Contains(href, "google.com/url?") {
		parsed, err := url.Parse(href)
		if err != nil {
			return ""
		}
		target := parsed.Query().Get("q")
		if strings.Contains(target, profilePathMarker) {
			return target
		}
		return ""
	}

	if strings.Contains(href, profilePathMarker) {
		return href
	}
	return ""
}

var junkNames = map[string]bool{
	"click here": true,
	"unknown":    true,
	"linkedin":   true,
	"profile":    true,
}

func resultName(text string) string {
	name := text
	for _, sep := range []string{" - ", " | ", " at "} {
		name = strings.Split(name, sep)[0]
	}
	name = strings.TrimSpace(name)

	if name == "" || junkNames[strings.ToLower(name)] {
		return ""
	}
	return name
}

func resultHeadline(text string) string {
	if idx := strings.Index(text, " - "); idx != -1 {
		rest := text[idx+3:]
		return strings.TrimSpace(strings.Split(rest, " | ")[0])
	}
	if idx := strings.Index(text, " | "); idx != -1 {
		return strings.TrimSpace(text[idx+3:])
	}
	return ""
}
