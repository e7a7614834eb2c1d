package crawler

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/juju/clock"
	"github.com/sirupsen/logrus"

	"github.com/amosWeiskopf/sitecrawl/internal/logging"
	"github.com/amosWeiskopf/sitecrawl/internal/models"
	"github.com/amosWeiskopf/sitecrawl/pkg/analyzer"
	"github.com/amosWeiskopf/sitecrawl/pkg/extractor"
	"github.com/amosWeiskopf/sitecrawl/pkg/fetcher"
	"github.com/amosWeiskopf/sitecrawl/pkg/robots"
)

// Crawler walks a single site breadth-first, one request at a time.
type Crawler struct {
	req        models.CrawlRequest
	fetcher    PageFetcher
	loadRobots RobotsLoader
	analyzer   TextAnalyzer
	clock      clock.Clock
	logger     *logrus.Entry
	httpClient *http.Client

	// mu serializes Crawl calls on the same value.
	mu sync.Mutex
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithFetcher replaces the HTTP fetch client.
func WithFetcher(f PageFetcher) Option {
	return func(c *Crawler) { c.fetcher = f }
}

// WithRobotsLoader replaces how robots.txt is obtained.
func WithRobotsLoader(l RobotsLoader) Option {
	return func(c *Crawler) { c.loadRobots = l }
}

// WithAnalyzer sets the word counter used when text extraction is on.
func WithAnalyzer(a TextAnalyzer) Option {
	return func(c *Crawler) { c.analyzer = a }
}

// WithClock sets the clock used for politeness delays and retry backoff.
func WithClock(clk clock.Clock) Option {
	return func(c *Crawler) { c.clock = clk }
}

// WithLogger sets the log entry the crawl logs through.
func WithLogger(l *logrus.Entry) Option {
	return func(c *Crawler) { c.logger = l }
}

// WithHTTPClient sets the client shared by page and robots fetches.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Crawler) { c.httpClient = hc }
}

// New validates req and builds a Crawler. Collaborators not supplied by
// opts are built from req.
func New(req models.CrawlRequest, opts ...Option) (*Crawler, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid crawl request: %w", err)
	}

	c := &Crawler{req: req}
	for _, opt := range opts {
		opt(c)
	}

	if c.clock == nil {
		c.clock = clock.WallClock
	}
	if c.logger == nil {
		c.logger = logging.Discard()
	}
	if c.httpClient == nil {
		c.httpClient = fetcher.NewHTTPClient()
	}
	if c.fetcher == nil {
		policy := fetcher.DefaultRetryPolicy()
		policy.Retries = req.Retries
		if req.BackoffBase > 0 {
			policy.BaseDelay = req.BackoffBase
		}
		c.fetcher = fetcher.New(fetcher.Options{
			UserAgent:         req.UserAgent,
			Timeout:           req.Timeout,
			MaxBodyBytes:      req.MaxBodyBytes,
			Retry:             policy,
			RequestsPerSecond: req.RequestsPerSecond,
			Client:            c.httpClient,
			Clock:             c.clock,
			Logger:            c.logger,
		})
	}
	if c.loadRobots == nil {
		c.loadRobots = c.defaultRobotsLoader()
	}
	if c.analyzer == nil && req.ExtractText {
		c.analyzer = analyzer.New()
	}
	return c, nil
}

func (c *Crawler) defaultRobotsLoader() RobotsLoader {
	if !c.req.RespectRobots {
		return func(_ context.Context, startURL string) RobotsPolicy {
			robotsURL, _ := robots.URLFor(startURL)
			return robots.Disabled(robotsURL)
		}
	}
	return func(ctx context.Context, startURL string) RobotsPolicy {
		return robots.Load(ctx, c.httpClient, startURL, c.req.UserAgent, c.req.Timeout)
	}
}

// Crawl visits at most MaxPages URLs reachable from the start URL without
// leaving its host. Per-page failures are recorded in the result; the only
// error returned is a cancelled ctx, alongside the partial result.
func (c *Crawler) Crawl(ctx context.Context) (*models.CrawlResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := &models.CrawlResult{
		CrawlID:    uuid.NewString(),
		StartURL:   c.req.StartURL,
		FailedURLs: []string{},
		Pages:      []models.PageRecord{},
		StartedAt:  c.clock.Now(),
	}
	logger := c.logger.WithFields(logrus.Fields{
		"crawl_id":  result.CrawlID,
		"start_url": c.req.StartURL,
	})

	policy := c.loadRobots(ctx, c.req.StartURL)
	result.RobotsURL = policy.URL()
	result.RobotsEnabled = policy.Enabled()
	if !policy.Enabled() {
		entry := logger.WithField("robots_url", policy.URL())
		if e, ok := policy.(interface{ Err() error }); ok && e.Err() != nil {
			entry = entry.WithError(e.Err())
		}
		entry.Info("robots.txt not enforced")
	}

	front := newFrontier()
	front.push(c.req.StartURL)

	var err error
	for front.visitedCount() < c.req.MaxPages {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("crawl interrupted: %w", ctxErr)
			break
		}
		pageURL, ok := front.pop()
		if !ok {
			break
		}
		if !front.markVisited(pageURL) {
			continue
		}

		record := c.visit(ctx, logger, policy, front, pageURL)
		result.Pages = append(result.Pages, record)
		if record.Failed() {
			result.FailedURLs = append(result.FailedURLs, pageURL)
		}

		if front.visitedCount() >= c.req.MaxPages || !front.hasNext() {
			break
		}
		if sleepErr := c.sleep(ctx, c.req.Delay); sleepErr != nil {
			err = fmt.Errorf("crawl interrupted: %w", sleepErr)
			break
		}
	}

	result.CrawledPages = len(result.Pages)
	result.FailedCount = len(result.FailedURLs)
	result.FinishedAt = c.clock.Now()

	logger.WithFields(logrus.Fields{
		"crawled": result.CrawledPages,
		"failed":  result.FailedCount,
		"elapsed": result.Duration().String(),
	}).Info("crawl finished")

	return result, err
}

// visit produces the record for one URL and queues its in-scope links.
func (c *Crawler) visit(ctx context.Context, logger *logrus.Entry, policy RobotsPolicy, front *frontier, pageURL string) models.PageRecord {
	log := logger.WithField("url", pageURL)

	if !policy.Allowed(pageURL) {
		log.Info("blocked by robots.txt")
		return models.BlockedRecord(pageURL)
	}

	out := c.fetcher.Fetch(ctx, pageURL)
	if !out.OK() {
		log.WithError(out.Err).WithField("attempts", out.Attempts).Warn("fetch failed")
		return models.FailedRecord(pageURL, out.Err)
	}

	status := out.Status
	record := models.PageRecord{
		URL:         pageURL,
		Status:      &status,
		ContentType: out.ContentType,
	}

	if len(out.Body) > 0 {
		parsed := extractor.Extract(pageURL, out.Body)
		record.Title = parsed.Title
		for _, link := range parsed.Links {
			if !SameDomain(c.req.StartURL, link) {
				continue
			}
			record.LinksFound++
			front.push(link)
		}
		if c.analyzer != nil {
			record.WordCount = c.analyzer.WordCount(pageURL, out.Body)
		}
	}

	log.WithFields(logrus.Fields{
		"status":      status,
		"title":       record.Title,
		"links_found": record.LinksFound,
		"attempts":    out.Attempts,
	}).Debug("page crawled")
	return record
}

func (c *Crawler) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-c.clock.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
