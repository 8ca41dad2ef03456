package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	"github.com/pfrederiksen/course-plan/internal/logger"
	"github.com/pfrederiksen/course-plan/internal/storage"
)

// UserAgent is sent unless WithUserAgent overrides it
const UserAgent = "course-plan/1.0 (github.com/pfrederiksen/course-plan)"

// Scraper handles fetching programplan pages
type Scraper struct {
	client    *http.Client
	userAgent string
}

// Option configures a Scraper
type Option func(*Scraper)

// WithUserAgent sets the User-Agent header sent with the request
func WithUserAgent(ua string) Option {
	return func(s *Scraper) {
		if ua != "" {
			s.userAgent = ua
		}
	}
}

// WithTimeout bounds the whole request. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Scraper) {
		s.client.Timeout = d
	}
}

// New creates a new Scraper instance
func New(opts ...Option) *Scraper {
	s := &Scraper{
		client:    &http.Client{},
		userAgent: UserAgent,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fetch requests url and returns its body transcoded to UTF-8. The caller must close it.
func (s *Scraper) Fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching page: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if errors.Is(err, io.EOF) {
		// Empty page; the resolver reports what is missing.
		return resp.Body, nil
	}
	if err != nil {
		resp.Body.Close()
		return nil, fmt.Errorf("detecting charset: %w", err)
	}

	return readCloser{Reader: body, Closer: resp.Body}, nil
}

type readCloser struct {
	io.Reader
	io.Closer
}

// Fetcher is the part of Scraper that EnsureCached needs
type Fetcher interface {
	Fetch(ctx context.Context, url string) (io.ReadCloser, error)
}

// EnsureCached downloads url into cache unless a cached copy exists and refresh is false.
// It reports whether a download happened.
func EnsureCached(ctx context.Context, f Fetcher, cache *storage.Cache, url string, refresh bool) (bool, error) {
	exists, err := cache.Exists()
	if err != nil {
		return false, err
	}
	if exists {
		if !refresh {
			logger.Info("Found cached page, skipping download", logger.Fields{"path": cache.Path()})
			return false, nil
		}
		logger.Warn("Discarding cached page", logger.Fields{"path": cache.Path()})
		if err := cache.Remove(); err != nil {
			return false, err
		}
	}

	logger.Info("Downloading page", logger.Fields{"url": url, "path": cache.Path()})

	body, err := f.Fetch(ctx, url)
	if err != nil {
		return false, err
	}
	defer body.Close()

	if err := cache.Write(body); err != nil {
		return false, err
	}
	return true, nil
}

// ParseDocument parses an HTML page into a goquery document
func ParseDocument(r io.Reader) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return doc, nil
}

// LoadCached parses the document held in cache
func LoadCached(cache *storage.Cache) (*goquery.Document, error) {
	rc, err := cache.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return ParseDocument(rc)
}
