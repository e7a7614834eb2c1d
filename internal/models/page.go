package models

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
)

// DefaultUserAgent is sent when neither the config nor USER_AGENT provide one.
const DefaultUserAgent = "web-crawler-starter/1.0"

const (
	DefaultMaxPages = 20
	DefaultDelay    = 500 * time.Millisecond
	DefaultRetries  = 2
	DefaultTimeout  = 12 * time.Second
)

// CrawlRequest is the immutable input of a crawl.
type CrawlRequest struct {
	StartURL          string        `json:"start_url" yaml:"start_url"`
	MaxPages          int           `json:"max_pages" yaml:"max_pages"`
	Delay             time.Duration `json:"delay" yaml:"delay"`
	Retries           int           `json:"retries" yaml:"retries"`
	UserAgent         string        `json:"user_agent" yaml:"user_agent"`
	Timeout           time.Duration `json:"timeout" yaml:"timeout"`
	RespectRobots     bool          `json:"respect_robots" yaml:"respect_robots"`
	RequestsPerSecond float64       `json:"requests_per_second,omitempty" yaml:"requests_per_second,omitempty"`
	ExtractText       bool          `json:"extract_text,omitempty" yaml:"extract_text,omitempty"`
	MaxBodyBytes      int64         `json:"max_body_bytes,omitempty" yaml:"max_body_bytes,omitempty"`
	BackoffBase       time.Duration `json:"backoff_base,omitempty" yaml:"backoff_base,omitempty"`
}

// DefaultCrawlRequest returns a request for startURL with every other field defaulted.
func DefaultCrawlRequest(startURL string) CrawlRequest {
	return CrawlRequest{
		StartURL:      startURL,
		MaxPages:      DefaultMaxPages,
		Delay:         DefaultDelay,
		Retries:       DefaultRetries,
		UserAgent:     DefaultUserAgent,
		Timeout:       DefaultTimeout,
		RespectRobots: true,
	}
}

// Validate reports every problem with the request at once.
func (r CrawlRequest) Validate() error {
	var result *multierror.Error

	if strings.TrimSpace(r.StartURL) == "" {
		result = multierror.Append(result, errors.New("start url is required"))
	} else if u, err := url.Parse(r.StartURL); err != nil {
		result = multierror.Append(result, fmt.Errorf("invalid start url: %w", err))
	} else if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		result = multierror.Append(result, fmt.Errorf("start url %q must be an absolute http(s) url", r.StartURL))
	}
	if r.MaxPages <= 0 {
		result = multierror.Append(result, fmt.Errorf("max pages must be positive (got %d)", r.MaxPages))
	}
	if r.Delay < 0 {
		result = multierror.Append(result, fmt.Errorf("delay must not be negative (got %s)", r.Delay))
	}
	if r.Retries < 0 {
		result = multierror.Append(result, fmt.Errorf("retries must not be negative (got %d)", r.Retries))
	}
	if strings.TrimSpace(r.UserAgent) == "" {
		result = multierror.Append(result, errors.New("user agent must be set"))
	}
	if r.Timeout <= 0 {
		result = multierror.Append(result, fmt.Errorf("timeout must be positive (got %s)", r.Timeout))
	}
	if r.RequestsPerSecond < 0 {
		result = multierror.Append(result, fmt.Errorf("requests per second must not be negative (got %v)", r.RequestsPerSecond))
	}
	return result.ErrorOrNil()
}

// PageRecord is the outcome of visiting a single URL.
type PageRecord struct {
	URL             string `json:"url" yaml:"url"`
	Status          *int   `json:"status" yaml:"status"`
	Title           string `json:"title" yaml:"title"`
	LinksFound      int    `json:"links_found" yaml:"links_found"`
	BlockedByRobots bool   `json:"blocked_by_robots" yaml:"blocked_by_robots"`
	Error           string `json:"error,omitempty" yaml:"error,omitempty"`
	ContentType     string `json:"content_type,omitempty" yaml:"content_type,omitempty"`
	WordCount       int    `json:"word_count,omitempty" yaml:"word_count,omitempty"`
}

// BlockedRecord builds the record for a URL rejected by robots.txt.
func BlockedRecord(pageURL string) PageRecord {
	return PageRecord{URL: pageURL, BlockedByRobots: true}
}

// FailedRecord builds the record for a URL whose fetch failed.
func FailedRecord(pageURL string, err error) PageRecord {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return PageRecord{URL: pageURL, Error: msg}
}

// Failed reports whether the page ended in a fetch error.
func (p PageRecord) Failed() bool {
	return p.Error != ""
}

// StatusCode returns the HTTP status, or 0 when none was received.
func (p PageRecord) StatusCode() int {
	if p.Status == nil {
		return 0
	}
	return *p.Status
}

// CrawlResult aggregates every record of one crawl.
type CrawlResult struct {
	CrawlID       string       `json:"crawl_id,omitempty" yaml:"crawl_id,omitempty"`
	StartURL      string       `json:"start_url" yaml:"start_url"`
	RobotsURL     string       `json:"robots_url" yaml:"robots_url"`
	RobotsEnabled bool         `json:"robots_enabled" yaml:"robots_enabled"`
	CrawledPages  int          `json:"crawled_pages" yaml:"crawled_pages"`
	FailedCount   int          `json:"failed_count" yaml:"failed_count"`
	FailedURLs    []string     `json:"failed_urls" yaml:"failed_urls"`
	Pages         []PageRecord `json:"pages" yaml:"pages"`
	StartedAt     time.Time    `json:"started_at,omitempty" yaml:"started_at,omitempty"`
	FinishedAt    time.Time    `json:"finished_at,omitempty" yaml:"finished_at,omitempty"`
}

// Duration is the wall time between start and finish.
func (r *CrawlResult) Duration() time.Duration {
	if r.FinishedAt.IsZero() || r.StartedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
