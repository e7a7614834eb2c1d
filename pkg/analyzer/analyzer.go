package analyzer

import (
	"bytes"
	"fmt"
	"html"
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/markusmobius/go-trafilatura"
	"github.com/microcosm-cc/bluemonday"

	"github.com/amosWeiskopf/sitecrawl/internal/models"
	"github.com/amosWeiskopf/sitecrawl/pkg/utils"
)

// Analyzer extracts readable text from pages and summarises crawl results.
type Analyzer struct {
	// bluemonday policies are not safe for concurrent use.
	policyPool sync.Pool
}

// New creates a new Analyzer instance
func New() *Analyzer {
	return &Analyzer{
		policyPool: sync.Pool{
			New: func() interface{} {
				policy := bluemonday.StrictPolicy()
				policy.AddSpaceWhenStrippingTag(true)
				return policy
			},
		},
	}
}

// MainText returns the readable text of an HTML page. trafilatura finds the
// main content; when it yields nothing every tag is stripped instead.
func (a *Analyzer) MainText(pageURL string, body []byte) string {
	opts := trafilatura.Options{}
	if u, err := url.Parse(pageURL); err == nil {
		opts.OriginalURL = u
	}

	result, err := trafilatura.Extract(bytes.NewReader(body), opts)
	if err == nil && result != nil {
		if text := utils.CleanText(result.ContentText); text != "" {
			return text
		}
	}
	return a.stripTags(body)
}

// WordCount counts the words of the page's readable text.
func (a *Analyzer) WordCount(pageURL string, body []byte) int {
	return utils.CountWords(a.MainText(pageURL, body))
}

func (a *Analyzer) stripTags(body []byte) string {
	policy := a.policyPool.Get().(*bluemonday.Policy)
	defer a.policyPool.Put(policy)
	return utils.CleanText(html.UnescapeString(string(policy.SanitizeBytes(body))))
}

// Summary condenses a crawl result for reports.
type Summary struct {
	StartURL       string
	Pages          int
	Succeeded      int
	Failed         int
	Blocked        int
	NonHTML        int
	WithTitle      int
	LinksFound     int
	Words          int
	StatusClasses  map[string]int
	DuplicateTitle []string
}

// Summarize walks every record of result once.
func Summarize(result *models.CrawlResult) Summary {
	s := Summary{StatusClasses: make(map[string]int)}
	if result == nil {
		return s
	}
	s.StartURL = result.StartURL
	s.Pages = len(result.Pages)

	titles := make(map[string]int)
	for _, page := range result.Pages {
		switch {
		case page.BlockedByRobots:
			s.Blocked++
			continue
		case page.Failed():
			s.Failed++
			continue
		}

		s.Succeeded++
		s.StatusClasses[StatusClass(page.StatusCode())]++
		s.LinksFound += page.LinksFound
		s.Words += page.WordCount
		if page.ContentType != "" && !strings.Contains(strings.ToLower(page.ContentType), "html") {
			s.NonHTML++
		}
		if page.Title != "" {
			s.WithTitle++
			titles[page.Title]++
		}
	}

	for title, n := range titles {
		if n > 1 {
			s.DuplicateTitle = append(s.DuplicateTitle, title)
		}
	}
	sort.Strings(s.DuplicateTitle)
	return s
}

// StatusClass buckets a status code as "2xx", "3xx" and so on.
func StatusClass(code int) string {
	if code < 100 || code > 599 {
		return "unknown"
	}
	return fmt.Sprintf("%dxx", code/100)
}

// SortedClasses lists the status classes present in s in ascending order.
func (s Summary) SortedClasses() []string {
	classes := make([]string, 0, len(s.StatusClasses))
	for class := range s.StatusClasses {
		classes = append(classes, class)
	}
	sort.Strings(classes)
	return classes
}
