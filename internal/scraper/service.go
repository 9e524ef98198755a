package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"jetgrind/internal/registry"
)

const (
	// DefaultTimeout bounds every network call.
	DefaultTimeout = 5 * time.Second

	// DefaultFaviconEndpoint is formatted with the link's host.
	DefaultFaviconEndpoint = "https://www.google.com/s2/favicons?domain=%s&sz=32"

	maxFaviconBytes = 1 << 20
)

// Options configures a MetadataFetcher. Zero values select defaults.
type Options struct {
	Timeout         time.Duration
	FaviconEndpoint string
	Client          *http.Client
	Titles          TitleSource
}

// MetadataFetcher implements Fetcher over HTTP. Results are cached in the
// shared registry: favicons by host, titles by exact URL. Concurrent
// requests for the same key share one network call.
type MetadataFetcher struct {
	client          *http.Client
	titles          TitleSource
	reg             *registry.Registry
	faviconEndpoint string
	timeout         time.Duration
	group           singleflight.Group
	log             logrus.FieldLogger
}

// NewMetadataFetcher creates a fetcher backed by reg.
func NewMetadataFetcher(reg *registry.Registry, opts Options, logger logrus.FieldLogger) *MetadataFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.FaviconEndpoint == "" {
		opts.FaviconEndpoint = DefaultFaviconEndpoint
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: opts.Timeout}
	}
	if opts.Titles == nil {
		opts.Titles = NewHTTPTitleSource(opts.Client, logger)
	}
	return &MetadataFetcher{
		client:          opts.Client,
		titles:          opts.Titles,
		reg:             reg,
		faviconEndpoint: opts.FaviconEndpoint,
		timeout:         opts.Timeout,
		log:             logger.WithField("component", "metadata_fetcher"),
	}
}

// FetchFavicon returns the favicon for u's host, consulting the cache first.
func (f *MetadataFetcher) FetchFavicon(ctx context.Context, u *url.URL) ([]byte, bool) {
	host := u.Hostname()
	if host == "" {
		return nil, false
	}
	if data, ok := f.reg.Favicon(host); ok {
		return data, true
	}

	log := f.log.WithField("host", host)
	v, err, _ := f.group.Do("favicon:"+host, func() (interface{}, error) {
		if data, ok := f.reg.Favicon(host); ok {
			return data, nil
		}
		data, err := f.downloadFavicon(ctx, host)
		if err != nil {
			return nil, err
		}
		f.reg.StoreFavicon(host, data)
		return data, nil
	})
	if err != nil {
		log.WithError(err).Debug("Favicon fetch failed")
		return nil, false
	}
	return v.([]byte), true
}

func (f *MetadataFetcher) downloadFavicon(ctx context.Context, host string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	endpoint := fmt.Sprintf(f.faviconEndpoint, url.QueryEscape(host))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", defaultUserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch favicon: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFaviconBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read favicon: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty favicon response")
	}
	return data, nil
}

// FetchPageTitle returns the title of the page at u, consulting the cache first.
func (f *MetadataFetcher) FetchPageTitle(ctx context.Context, u *url.URL) (string, bool) {
	key := u.String()
	if title, ok := f.reg.Title(key); ok {
		return title, true
	}

	log := f.log.WithField("url", key)
	v, err, _ := f.group.Do("title:"+key, func() (interface{}, error) {
		if title, ok := f.reg.Title(key); ok {
			return title, nil
		}
		ctx, cancel := context.WithTimeout(ctx, f.timeout)
		defer cancel()
		title, err := f.titles.ScrapeTitle(ctx, key)
		if err != nil {
			return nil, err
		}
		f.reg.StoreTitle(key, title)
		return title, nil
	})
	if err != nil {
		log.WithError(err).Debug("Title fetch failed")
		return "", false
	}
	return v.(string), true
}
