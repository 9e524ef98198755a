package scraper

import (
	"context"
	"net/url"
)

// Fetcher retrieves link metadata. Failures are reported as ok == false;
// callers keep their fallback display.
type Fetcher interface {
	// FetchFavicon returns favicon image bytes for the URL's host.
	FetchFavicon(ctx context.Context, u *url.URL) (data []byte, ok bool)

	// FetchPageTitle returns the page's title.
	FetchPageTitle(ctx context.Context, u *url.URL) (title string, ok bool)
}

// TitleSource loads a page and extracts its title.
type TitleSource interface {
	ScrapeTitle(ctx context.Context, pageURL string) (string, error)
}
