package domain

import (
	"net/url"

	"github.com/google/uuid"
)

// Link represents a URL detected inside a to-do item's text.
// Items reference links from their title and description through marker tokens.
type Link struct {
	// ID is generated when the URL is first detected and never changes.
	ID uuid.UUID `json:"id"`

	// URL is the absolute URL. It is the identity used for dedup within one edit.
	URL string `json:"url"`

	// DisplayTitle is the label shown on the pill. Defaults to the URL's host.
	DisplayTitle string `json:"displayTitle"`

	// FaviconData is the cached favicon image, absent until fetched.
	FaviconData []byte `json:"faviconData,omitempty"`

	// IsTitleFetched reports whether a page title fetch has finished for this link.
	IsTitleFetched bool `json:"isTitleFetched"`
}

// NewLink mints a link with a fresh id for u.
func NewLink(u *url.URL) Link {
	raw := u.String()
	return Link{
		ID:           uuid.New(),
		URL:          raw,
		DisplayTitle: HostOrRaw(u, raw),
	}
}

// HostOrRaw returns the host of u, or fallback when u has none.
func HostOrRaw(u *url.URL, fallback string) string {
	if u != nil {
		if host := u.Hostname(); host != "" {
			return host
		}
	}
	return fallback
}

// HasFavicon reports whether favicon bytes are cached on the link.
func (l Link) HasFavicon() bool {
	return len(l.FaviconData) > 0
}

// Clone returns a copy that does not share the favicon buffer.
func (l Link) Clone() Link {
	if l.FaviconData != nil {
		l.FaviconData = append([]byte(nil), l.FaviconData...)
	}
	return l
}

// CloneLinks deep-copies a link table. A nil table clones to an empty one.
func CloneLinks(links []Link) []Link {
	out := make([]Link, len(links))
	for i, l := range links {
		out[i] = l.Clone()
	}
	return out
}

// FindLink looks a link up by id.
func FindLink(links []Link, id uuid.UUID) (Link, bool) {
	for _, l := range links {
		if l.ID == id {
			return l, true
		}
	}
	return Link{}, false
}
