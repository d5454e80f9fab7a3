package source

import (
	"net/url"
	"regexp"
	"strings"
)

// CodePattern matches a catalog code: a letter run and a digit run joined by
// a hyphen, case-insensitive. Extraction results are normalized to uppercase.
var CodePattern = regexp.MustCompile(`(?i)([A-Z]+-\d+)`)

// ExtractCode runs the code pattern against the candidate texts in priority
// order (most specific first, typically title then URL) and returns the first
// match, uppercased. Returns an empty string when no candidate matches.
func ExtractCode(candidates ...string) string {
	for _, text := range candidates {
		if text == "" {
			continue
		}
		if match := CodePattern.FindString(text); match != "" {
			return strings.ToUpper(match)
		}
	}
	return ""
}

// NormalizeCode uppercases and trims a code-like string without validating it
// against the pattern. Used for codes read from dedicated markup elements.
func NormalizeCode(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// ResolveURL resolves a possibly-relative link against the adapter's base
// URL. Detail URLs leaving an adapter must always be absolute.
func ResolveURL(base, href string) string {
	if href == "" {
		return ""
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return baseURL.ResolveReference(ref).String()
}
