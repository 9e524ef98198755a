// Package urldetect finds http and https URLs in free text.
package urldetect

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"
)

// urlPattern matches greedily up to whitespace or one of < > " '.
var urlPattern = regexp.MustCompile(`(?i)https?://[^\s<>"']+`)

// markerStart opens an inline link marker. A URL typed right before a
// marker ends where the marker begins.
const markerStart = "{{link:"

// Match is one URL occurrence. Start and End are byte offsets into the
// scanned text, so text[Start:End] is the matched substring.
type Match struct {
	URL   *url.URL
	Start int
	End   int
}

// Raw returns the matched substring as it appeared in the text.
func (m Match) Raw(text string) string {
	return text[m.Start:m.End]
}

// ExtractMatches returns every URL occurrence left to right. Matches are
// maximal and never overlap. Candidates that do not parse are skipped.
func ExtractMatches(text string) []Match {
	locs := urlPattern.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}
	matches := make([]Match, 0, len(locs))
	for _, loc := range locs {
		if i := strings.Index(text[loc[0]:loc[1]], markerStart); i >= 0 {
			loc[1] = loc[0] + i
		}
		u, err := url.Parse(text[loc[0]:loc[1]])
		if err != nil {
			continue
		}
		matches = append(matches, Match{URL: u, Start: loc[0], End: loc[1]})
	}
	return matches
}

// ExtractURLs returns the parsed URLs of ExtractMatches in order.
func ExtractURLs(text string) []*url.URL {
	matches := ExtractMatches(text)
	urls := make([]*url.URL, 0, len(matches))
	for _, m := range matches {
		urls = append(urls, m.URL)
	}
	return urls
}

// RemoveURLs deletes every URL occurrence, collapses whitespace runs to a
// single space and trims the result.
func RemoveURLs(text string) string {
	cleaned := urlPattern.ReplaceAllString(text, "")
	return strings.Join(strings.Fields(cleaned), " ")
}

// IsSingleURL reports whether the trimmed text is exactly one http(s) URL:
// a single match spanning the whole string.
func IsSingleURL(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || strings.IndexFunc(trimmed, unicode.IsSpace) >= 0 {
		return false
	}
	matches := ExtractMatches(trimmed)
	if len(matches) != 1 || matches[0].Start != 0 || matches[0].End != len(trimmed) {
		return false
	}
	switch strings.ToLower(matches[0].URL.Scheme) {
	case "http", "https":
		return true
	}
	return false
}
