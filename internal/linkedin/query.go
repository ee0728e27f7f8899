package linkedin

import (
	"regexp"
	"strings"
)

// SearchQuery is the normalized search input derived from a job description.
type SearchQuery struct {
	Title    string
	Location string
	Keywords []string
}

const (
	maxKeywords     = 5
	maxCompanyTerms = 3
	// queryTruncateLen caps how much of the job description ends up in a
	// raw keyword query string.
	queryTruncateLen = 120
)

// knownLocations is the small fixed set of geographic tokens recognized in
// job descriptions. Term extraction is heuristic, not semantic.
var knownLocations = regexp.MustCompile(`(?i)\b(US|USA|United States|UK|Canada|India|Germany|France|Remote)\b`)

// vocabulary lists role and skill words matched verbatim (case-insensitive)
// against the job description text.
var vocabulary = []string{
	"software engineer", "developer", "manager", "director", "lead",
	"python", "javascript", "java", "react", "node.js", "aws",
	"data scientist", "analyst", "product manager", "designer",
	"senior", "full stack", "backend", "frontend", "devops",
}

var (
	titlePatterns = []*regexp.Regexp{
		regexp.MustCompile(`[A-Z][a-zA-Z]+( [A-Z][a-zA-Z]+)*`),
		regexp.MustCompile(`[A-Z][a-z]+( [A-Z][a-z]+)*`),
		regexp.MustCompile(`[A-Z][a-zA-Z]+`),
	}
	companyPattern = regexp.MustCompile(`\b[A-Z][a-zA-Z\s&]+(?:Inc|Corp|LLC|Ltd|Company|Technologies|Systems|Startup)\b`)
)

// BuildQuery derives a short title, an optional location token, and up to
// five keyword terms from free-form job description text. Unusual input is
// allowed to produce low-quality or empty terms.
func BuildQuery(jobDescription string) SearchQuery {
	return SearchQuery{
		Title:    extractTitle(jobDescription),
		Location: extractLocation(jobDescription),
		Keywords: extractKeywords(jobDescription),
	}
}

func extractTitle(text string) string {
	for _, pattern := range titlePatterns {
		match := strings.TrimSpace(pattern.FindString(text))
		if len(match) > 3 {
			return match
		}
	}

	// No capitalized phrase found: use the first few words.
	words := strings.Fields(text)
	if len(words) > 3 {
		words = words[:3]
	}
	return strings.Join(words, " ")
}

func extractLocation(text string) string {
	return knownLocations.FindString(text)
}

func extractKeywords(text string) []string {
	var keywords []string

	lower := strings.ToLower(text)
	for _, term := range vocabulary {
		if strings.Contains(lower, term) {
			keywords = append(keywords, term)
		}
	}

	companies := companyPattern.FindAllString(text, -1)
	if len(companies) > maxCompanyTerms {
		companies = companies[:maxCompanyTerms]
	}
	for _, company := range companies {
		keywords = append(keywords, strings.TrimSpace(company))
	}

	if len(keywords) == 0 {
		keywords = []string{"professional", "experience"}
	}

	if len(keywords) > maxKeywords {
		keywords = keywords[:maxKeywords]
	}
	return keywords
}

// RawQuery returns the keyword string sent verbatim to backends, truncated
// so long descriptions stay within query length limits.
func RawQuery(jobDescription string) string {
	runes := []rune(jobDescription)
	if len(runes) > queryTruncateLen {
		runes = runes[:queryTruncateLen]
	}
	return string(runes)
}

// cacheQueryTruncateLen caps the description portion of the cache key.
const cacheQueryTruncateLen = 100

// CacheQuery is the exact search-query string cache entries are keyed by,
// paired with the untouched job description.
func CacheQuery(jobDescription string) string {
	runes := []rune(jobDescription)
	if len(runes) > cacheQueryTruncateLen {
		runes = runes[:cacheQueryTruncateLen]
	}
	return "site:linkedin.com/in/ " + string(runes)
}
