package linkedin

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
)

const defaultAPIBaseURL = "https://fresh-linkedin-profile-data.p.rapidapi.com/google-full-profiles"

type apiRequest struct {
	Name        string `json:"name"`
	CompanyName string `json:"company_name"`
	JobTitle    string `json:"job_title"`
	Location    string `json:"location"`
	Keywords    string `json:"keywords"`
	Limit       int    `json:"limit"`
}

type apiResponse struct {
	Data []map[string]any `json:"data"`
}

// apiProfile mirrors one item of the structured search response.
type apiProfile struct {
	FullName   string `mapstructure:"full_name"`
	ProfileURL string `mapstructure:"linkedin_url"`
	Headline   string `mapstructure:"headline"`
	Location   string `mapstructure:"location"`
	Company    string `mapstructure:"company"`
	JobTitle   string `mapstructure:"job_title"`
}

// searchViaAPI queries the structured profile-search API. Any failure
// degrades to an empty slice.
func (s *Source) searchViaAPI(ctx context.Context, query SearchQuery, jobDescription string, limit int) []CandidateStub {
	if err := s.apiLimiter.Wait(ctx); err != nil {
		return nil
	}

	payload, err := json.Marshal(apiRequest{
		JobTitle: query.Title,
		Location: query.Location,
		Keywords: RawQuery(jobDescription),
		Limit:    limit,
	})
	if err != nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.APIBaseURL, bytes.NewReader(payload))
	if err != nil {
		return nil
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-rapidapi-host", apiHost(s.cfg.APIBaseURL))
	req.Header.Set("x-rapidapi-key", s.cfg.APIKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Debug("profile api search failed", zap.Error(err))
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.logger.Debug("profile api bad status", zap.String("status", resp.Status))
		return nil
	}

	var response apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		s.logger.Debug("profile api decode failed", zap.Error(err))
		return nil
	}

	stubs := make([]CandidateStub, 0, len(response.Data))
	for _, item := range response.Data {
		var profile apiProfile
		if err := mapstructure.Decode(item, &profile); err != nil {
			continue
		}
		if !ValidProfileURL(profile.ProfileURL) {
			continue
		}
		stubs = append(stubs, CandidateStub{
			Name:           profile.FullName,
			ProfileURL:     profile.ProfileURL,
			Headline:       profile.Headline,
			Location:       profile.Location,
			CurrentCompany: profile.Company,
			JobTitle:       profile.JobTitle,
		})
	}

	return stubs
}

func apiHost(base string) string {
	parsed, err := url.Parse(strings.TrimSpace(base))
	if err != nil {
		return ""
	}
	return parsed.Host
}
