package marker

import (
	"jetgrind/internal/domain"
	"jetgrind/internal/urldetect"
)

// Encode replaces every URL in text with a marker token, minting one link
// per distinct URL in order of first appearance.
func Encode(text string) (string, []domain.Link) {
	out, links, _ := replaceURLs(text, nil)
	return out, links
}

// MigrateRawURLs upgrades text that may still hold literal URLs. Each URL
// becomes a marker for the existing link with the same URL, or for a newly
// minted one. Referenced links come first in text order; existing links
// that nothing references are kept at the end. Text without URLs is
// returned unchanged along with existing.
func MigrateRawURLs(text string, existing []domain.Link) (string, []domain.Link) {
	out, referenced, changed := replaceURLs(text, existing)
	if !changed {
		return text, existing
	}

	links := referenced
	for _, l := range existing {
		if !containsID(links, l) {
			links = append(links, l)
		}
	}
	return out, links
}

// replaceURLs splices markers over URL matches right to left so earlier
// offsets stay valid. The returned links follow left-to-right text order.
func replaceURLs(text string, existing []domain.Link) (string, []domain.Link, bool) {
	matches := urldetect.ExtractMatches(text)
	if len(matches) == 0 {
		return text, []domain.Link{}, false
	}

	byURL := make(map[string]domain.Link, len(existing))
	for _, l := range existing {
		if _, dup := byURL[l.URL]; !dup {
			byURL[l.URL] = l
		}
	}

	// Resolve links left to right so the first occurrence of a URL wins.
	resolved := make([]domain.Link, len(matches))
	links := make([]domain.Link, 0, len(matches))
	for i, m := range matches {
		key := m.URL.String()
		link, ok := byURL[key]
		if !ok {
			link = domain.NewLink(m.URL)
			byURL[key] = link
		}
		resolved[i] = link
		if !containsID(links, link) {
			links = append(links, link)
		}
	}

	out := text
	for i := len(matches) - 1; i >= 0; i-- {
		m := matches[i]
		out = out[:m.Start] + Token(resolved[i].ID) + out[m.End:]
	}
	return out, links, true
}

func containsID(links []domain.Link, link domain.Link) bool {
	for _, l := range links {
		if l.ID == link.ID {
			return true
		}
	}
	return false
}

// EncodeEdit prepares edited title and description text for storage.
// Literal URLs become markers, reusing links from current by URL, and the
// returned table holds only links the new text references, in order of
// first reference.
func EncodeEdit(title, description string, current []domain.Link) (string, string, []domain.Link) {
	title, links := MigrateRawURLs(title, current)
	description, links = MigrateRawURLs(description, links)

	kept := []domain.Link{}
	for _, id := range ReferencedIDs(title + " " + description) {
		link, ok := domain.FindLink(links, id)
		if ok && !containsID(kept, link) {
			kept = append(kept, link)
		}
	}
	return title, description, kept
}
