package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/sirupsen/logrus"
)

// RodTitleSource renders pages in a headless browser before reading the
// title, for sites that set it from JavaScript.
type RodTitleSource struct {
	log logrus.FieldLogger
}

// NewRodTitleSource creates a browser-backed title source.
func NewRodTitleSource(logger logrus.FieldLogger) *RodTitleSource {
	return &RodTitleSource{
		log: logger.WithField("component", "browser_title_source"),
	}
}

// ScrapeTitle launches a browser, loads pageURL and returns its title.
// The caller's context bounds the whole operation.
func (s *RodTitleSource) ScrapeTitle(ctx context.Context, pageURL string) (title string, err error) {
	log := s.log.WithField("url", pageURL)

	path, exists := launcher.LookPath()
	if !exists {
		return "", errors.New("rod browser dependency not found")
	}
	l := launcher.New().Bin(path).Context(ctx)
	controlURL, err := l.Launch()
	if err != nil {
		return "", fmt.Errorf("failed to launch browser: %w", err)
	}
	defer l.Cleanup()

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err = browser.Connect(); err != nil {
		return "", fmt.Errorf("failed to connect to browser: %w", err)
	}
	defer func() {
		if closeErr := browser.Close(); closeErr != nil {
			log.WithError(closeErr).Debug("Error closing rod browser instance")
		}
	}()

	page, err := browser.Page(proto.TargetCreateTarget{URL: pageURL})
	if err != nil {
		return "", fmt.Errorf("failed to create page: %w", err)
	}
	defer func() {
		if closeErr := page.Close(); closeErr != nil {
			log.WithError(closeErr).Debug("Error closing rod page")
		}
	}()

	if err = page.WaitLoad(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("title scrape timed out for %s: %w", pageURL, ctx.Err())
		}
		return "", fmt.Errorf("failed waiting for page load: %w", err)
	}

	info, err := page.Info()
	if err != nil {
		return "", fmt.Errorf("failed to read page info: %w", err)
	}
	title = cleanTitle(strings.TrimSpace(info.Title))
	if title == "" {
		return "", ErrNoTitle
	}
	log.WithField("title", title).Debug("Extracted title")
	return title, nil
}
