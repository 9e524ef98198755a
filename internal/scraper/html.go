package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
)

const defaultUserAgent = "Mozilla/5.0 (compatible; JetGrind/1.0)"

// ErrNoTitle is returned when a page has no usable title.
var ErrNoTitle = errors.New("page has no title")

// HTTPTitleSource fetches pages over plain HTTP and reads the title with goquery.
type HTTPTitleSource struct {
	client    *http.Client
	userAgent string
	log       logrus.FieldLogger
}

// NewHTTPTitleSource creates a title source using client.
func NewHTTPTitleSource(client *http.Client, logger logrus.FieldLogger) *HTTPTitleSource {
	return &HTTPTitleSource{
		client:    client,
		userAgent: defaultUserAgent,
		log:       logger.WithField("component", "title_source"),
	}
}

// ScrapeTitle returns the page's <title>, falling back to og:title.
func (s *HTTPTitleSource) ScrapeTitle(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	title := cleanTitle(doc.Find("title").First().Text())
	if title == "" {
		if og, exists := doc.Find("meta[property='og:title']").Attr("content"); exists {
			title = cleanTitle(og)
		}
	}
	if title == "" {
		return "", ErrNoTitle
	}
	s.log.WithFields(logrus.Fields{"url": pageURL, "title": title}).Debug("Extracted title")
	return title, nil
}

// cleanTitle collapses whitespace runs, including newlines inside <title>.
func cleanTitle(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
