package crawler

//go:generate mockgen -package mocks -destination mocks/mocks.go github.com/amosWeiskopf/sitecrawl/pkg/crawler PageFetcher,RobotsPolicy

import (
	"context"

	"github.com/amosWeiskopf/sitecrawl/pkg/fetcher"
)

// PageFetcher performs one logical GET, retries included.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) fetcher.Outcome
}

// RobotsPolicy decides which URLs may be fetched.
type RobotsPolicy interface {
	// Enabled reports whether a policy was loaded and is being enforced.
	Enabled() bool

	// URL is the robots.txt location the policy was loaded from.
	URL() string

	// Allowed reports whether url may be fetched.
	Allowed(url string) bool
}

// RobotsLoader fetches the robots policy for the origin of startURL.
type RobotsLoader func(ctx context.Context, startURL string) RobotsPolicy

// TextAnalyzer counts readable words in an HTML page.
type TextAnalyzer interface {
	WordCount(pageURL string, body []byte) int
}
