package urlutil

import (
	"net/url"
	"strings"
)

// Normalize canonicalizes an absolute URL:
//   - scheme and host are lowercased
//   - the fragment is stripped
//   - default ports (:80 for http, :443 for https) are stripped
//   - an empty path collapses to "/"
//   - a single trailing slash is stripped from any non-root path
//   - the query string is left untouched
//
// Malformed input is returned unchanged; normalization is best effort
// and never fails.
func Normalize(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	if port := u.Port(); port != "" {
		if (u.Scheme == "http" && port == "80") || (u.Scheme == "https" && port == "443") {
			u.Host = u.Hostname()
		}
	}

	switch {
	case u.Path == "":
		u.Path = "/"
	case u.Path != "/" && strings.HasSuffix(u.Path, "/"):
		u.Path = strings.TrimSuffix(u.Path, "/")
	}

	return u.String()
}

// ResolveAndNormalize resolves href against base and normalizes the
// result. An unparsable href yields an empty string.
func ResolveAndNormalize(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	return Normalize(base.ResolveReference(ref).String())
}

// Host returns the lowercased host (including any non-default port) of
// the given URL, or an empty string when it cannot be parsed.
func Host(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Host)
}

// SameHost reports whether two URLs share a host after normalization.
func SameHost(a, b string) bool {
	ha, hb := Host(a), Host(b)
	return ha != "" && ha == hb
}

// HasExcludedExtension reports whether the URL path ends in one of the
// given filename extensions. Matching is case-insensitive; extensions
// include the leading dot (".pdf").
func HasExcludedExtension(raw string, extensions []string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	path := strings.ToLower(u.Path)
	for _, ext := range extensions {
		if ext != "" && strings.HasSuffix(path, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}
