package linkedin

import (
	"net/url"
	"strings"
)

const profilePathMarker = "/in/"

// ValidProfileURL reports whether raw is an acceptable candidate profile
// URL: http(s) scheme, the profile path marker, and a non-empty segment
// identifying the profile. Anything else is discarded by callers.
func ValidProfileURL(raw string) bool {
	if raw == "" {
		return false
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}

	idx := strings.Index(parsed.Path, profilePathMarker)
	if idx == -1 {
		return false
	}

	slug := strings.Trim(parsed.Path[idx+len(profilePathMarker):], "/")
	return slug != ""
}
