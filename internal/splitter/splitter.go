// Package splitter turns raw input into a short title, an optional
// description and the link table for both.
package splitter

import (
	"strings"
	"unicode"

	"jetgrind/internal/domain"
	"jetgrind/internal/marker"
	"jetgrind/internal/urldetect"
)

// CharacterLimit is the maximum title length, counted in characters of
// the marker-substituted text.
const CharacterLimit = 60

// Result is the outcome of Split.
type Result struct {
	Title       string
	Description string
	Links       []domain.Link
}

// Split trims input and divides it into title and description. A lone URL
// becomes a title of its host with a single link and no marker.
func Split(input string) Result {
	trimmed := strings.TrimSpace(input)

	if urldetect.IsSingleURL(trimmed) {
		if urls := urldetect.ExtractURLs(trimmed); len(urls) > 0 {
			link := domain.NewLink(urls[0])
			return Result{
				Title: domain.HostOrRaw(urls[0], trimmed),
				Links: []domain.Link{link},
			}
		}
	}

	markerText, links := marker.Encode(trimmed)
	runes := []rune(markerText)
	if len(runes) <= CharacterLimit {
		return Result{Title: markerText, Links: links}
	}

	cut := lastSpace(runes, CharacterLimit)
	if cut <= 0 {
		cut = avoidToken(markerText, runes, CharacterLimit)
	}
	return Result{
		Title:       strings.TrimSpace(string(runes[:cut])),
		Description: strings.TrimSpace(string(runes[cut:])),
		Links:       links,
	}
}

// lastSpace returns the index of the last whitespace rune at or before
// limit, or -1.
func lastSpace(runes []rune, limit int) int {
	if limit >= len(runes) {
		limit = len(runes) - 1
	}
	for i := limit; i >= 0; i-- {
		if unicode.IsSpace(runes[i]) {
			return i
		}
	}
	return -1
}

// avoidToken moves a hard cut at rune index cut back to the start of any
// marker token it would split. A token is shorter than CharacterLimit, so
// the moved cut is never zero.
func avoidToken(text string, runes []rune, cut int) int {
	byteCut := len(string(runes[:cut]))
	for _, occ := range marker.FindTokens(text) {
		if byteCut <= occ.Start || byteCut >= occ.End {
			continue
		}
		// Tokens are ASCII, so rune and byte offsets move together inside one.
		return cut - (byteCut - occ.Start)
	}
	return cut
}
