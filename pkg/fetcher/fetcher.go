package fetcher

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/juju/clock"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/amosWeiskopf/sitecrawl/internal/logging"
)

// Kind tags an Outcome.
type Kind int

const (
	// Success means a response was received with a non-retryable status.
	Success Kind = iota + 1
	// Failure means no usable response was received.
	Failure
)

func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case Failure:
		return "failure"
	default:
		return "unknown"
	}
}

// Outcome is the result of one logical GET.
type Outcome struct {
	Kind        Kind
	Status      int
	ContentType string
	// Body is only populated for HTML responses.
	Body     []byte
	Attempts int
	Err      error
}

// OK reports whether the fetch produced a response.
func (o Outcome) OK() bool {
	return o.Kind == Success
}

// Options controls HTTP fetching behaviour.
type Options struct {
	UserAgent    string
	Timeout      time.Duration
	MaxBodyBytes int64
	Retry        RetryPolicy
	// RequestsPerSecond throttles every attempt when positive.
	RequestsPerSecond float64
	Client            *http.Client
	Clock             clock.Clock
	Logger            *logrus.Entry
}

// Client performs bounded GETs with retry and backoff.
type Client struct {
	client       *http.Client
	userAgent    string
	timeout      time.Duration
	maxBodyBytes int64
	retry        RetryPolicy
	limiter      *rate.Limiter
	clock        clock.Clock
	logger       *logrus.Entry
}

// New builds a Client from opts, filling in defaults.
func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 12 * time.Second
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 10 * 1024 * 1024
	}
	if opts.Client == nil {
		opts.Client = NewHTTPClient()
	}
	if opts.Clock == nil {
		opts.Clock = clock.WallClock
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Retry.Retries < 0 {
		opts.Retry.Retries = 0
	}

	c := &Client{
		client:       opts.Client,
		userAgent:    opts.UserAgent,
		timeout:      opts.Timeout,
		maxBodyBytes: opts.MaxBodyBytes,
		retry:        opts.Retry,
		clock:        opts.Clock,
		logger:       opts.Logger,
	}
	if opts.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}
	return c
}

// NewHTTPClient returns the pooled client used when none is supplied.
// Per-attempt deadlines come from the request context, not Client.Timeout.
func NewHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           (&net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
			TLSHandshakeTimeout:   10 * time.Second,
			MaxIdleConns:          50,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       30 * time.Second,
			ExpectContinueTimeout: time.Second,
		},
	}
}

// attempt is what a single request produced.
type attempt struct {
	status      int
	contentType string
	body        []byte
	retryAfter  time.Duration
}

// Fetch issues a GET for rawURL, retrying transient failures. It never
// returns a Go error; failures are reported through the Outcome.
func (c *Client) Fetch(ctx context.Context, rawURL string) Outcome {
	logger := c.logger.WithField("url", rawURL)
	maxAttempts := c.retry.Retries + 1

	var (
		lastErr error
		wait    time.Duration
	)
	for n := 1; n <= maxAttempts; n++ {
		if n > 1 {
			if err := c.sleep(ctx, wait); err != nil {
				return Outcome{Kind: Failure, Attempts: n - 1, Err: err}
			}
		}
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return Outcome{Kind: Failure, Attempts: n - 1, Err: err}
			}
		}

		res, err := c.do(ctx, rawURL)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil || !isRetryableError(err) {
				return Outcome{Kind: Failure, Attempts: n, Err: err}
			}
			wait = c.retry.Backoff(n)
			logger.WithError(err).WithField("attempt", n).Debug("transient fetch error")
			continue
		}

		if c.retry.RetryableStatus(res.status) {
			lastErr = fmt.Errorf("%w: %d %s", ErrRetryableStatus, res.status, http.StatusText(res.status))
			wait = c.retry.Backoff(n)
			if res.retryAfter > 0 {
				wait = c.retry.capDelay(res.retryAfter)
			}
			logger.WithFields(logrus.Fields{"attempt": n, "status": res.status}).Debug("retryable status")
			continue
		}

		return Outcome{
			Kind:        Success,
			Status:      res.status,
			ContentType: res.contentType,
			Body:        res.body,
			Attempts:    n,
		}
	}

	return Outcome{
		Kind:     Failure,
		Attempts: maxAttempts,
		Err:      fmt.Errorf("giving up after %d attempts: %w", maxAttempts, lastErr),
	}
}

func (c *Client) do(ctx context.Context, rawURL string) (*attempt, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	res := &attempt{
		status:      resp.StatusCode,
		contentType: resp.Header.Get("Content-Type"),
	}
	if c.retry.RetryableStatus(resp.StatusCode) {
		res.retryAfter = retryAfter(resp.Header.Get("Retry-After"), c.clock.Now())
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))
		return res, nil
	}
	if !IsHTML(res.contentType) {
		return res, nil
	}

	body, err := c.readBody(resp)
	if err != nil {
		return nil, err
	}
	res.body = body
	return res, nil
}

// readBody decodes the response and keeps at most maxBodyBytes of it.
func (c *Client) readBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader = resp.Body
	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("gzip decode: %w", err)
		}
		defer gz.Close()
		reader = gz
	case "deflate":
		fl := flate.NewReader(resp.Body)
		defer fl.Close()
		reader = fl
	case "br":
		reader = brotli.NewReader(resp.Body)
	}

	body, err := io.ReadAll(io.LimitReader(reader, c.maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

func (c *Client) sleep(ctx context.Context, d time.Duration) error {
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

// IsHTML reports whether a Content-Type header denotes an HTML document.
func IsHTML(contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.Contains(ct, "text/html") || strings.Contains(ct, "application/xhtml+xml")
}

