// Package marker converts item text between three forms: plain text with
// literal URLs, marker text where URLs are replaced by {{link:<uuid>}}
// tokens, and rich content where tokens become inline pill runs.
package marker

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

const (
	tokenPrefix = "{{link:"
	tokenSuffix = "}}"
)

var tokenPattern = regexp.MustCompile(`\{\{link:([0-9A-Fa-f]{8}-[0-9A-Fa-f]{4}-[0-9A-Fa-f]{4}-[0-9A-Fa-f]{4}-[0-9A-Fa-f]{12})\}\}`)

// TokenLen is the length in bytes (and runes) of every marker token.
const TokenLen = len(tokenPrefix) + 36 + len(tokenSuffix)

// Token returns the canonical marker for id.
func Token(id uuid.UUID) string {
	return tokenPrefix + strings.ToUpper(id.String()) + tokenSuffix
}

// Occurrence is a marker token found in text. Start and End are byte offsets.
type Occurrence struct {
	ID    uuid.UUID
	Start int
	End   int
}

// FindTokens returns every well-formed marker token left to right.
func FindTokens(text string) []Occurrence {
	locs := tokenPattern.FindAllStringSubmatchIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}
	out := make([]Occurrence, 0, len(locs))
	for _, loc := range locs {
		id, err := uuid.Parse(text[loc[2]:loc[3]])
		if err != nil {
			continue
		}
		out = append(out, Occurrence{ID: id, Start: loc[0], End: loc[1]})
	}
	return out
}

// ParseToken reports the id carried by s when s is exactly one marker token.
func ParseToken(s string) (uuid.UUID, bool) {
	loc := tokenPattern.FindStringSubmatchIndex(s)
	if loc == nil || loc[0] != 0 || loc[1] != len(s) {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(s[loc[2]:loc[3]])
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// ContainsMarkers reports whether text holds at least one well-formed token.
func ContainsMarkers(text string) bool {
	return tokenPattern.MatchString(text)
}

// ReferencedIDs lists the ids referenced by tokens in first-occurrence order.
func ReferencedIDs(text string) []uuid.UUID {
	seen := make(map[uuid.UUID]bool)
	var ids []uuid.UUID
	for _, occ := range FindTokens(text) {
		if seen[occ.ID] {
			continue
		}
		seen[occ.ID] = true
		ids = append(ids, occ.ID)
	}
	return ids
}
