package fetcher

import (
	"context"
	"errors"
	"io"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// ErrRetryableStatus marks a failure caused by a transient HTTP status that
// persisted after every retry.
var ErrRetryableStatus = errors.New("retryable http status")

// RetryPolicy decides which attempts are repeated and how long to wait.
type RetryPolicy struct {
	// Retries is the number of attempts made after the first one.
	Retries int
	// BaseDelay is the wait before the first retry.
	BaseDelay time.Duration
	// Multiplier grows the wait on each further retry.
	Multiplier float64
	// MaxDelay caps any single wait, including Retry-After values.
	MaxDelay time.Duration
	// Statuses are retried; everything else returns immediately.
	Statuses []int
}

// DefaultRetryPolicy retries twice on 429/500/502/503/504 with 0.5s, 1s waits.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Retries:    2,
		BaseDelay:  500 * time.Millisecond,
		Multiplier: 2,
		MaxDelay:   10 * time.Second,
		Statuses: []int{
			http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout,
		},
	}
}

// Backoff returns the wait before retry number n (1-based).
func (p RetryPolicy) Backoff(n int) time.Duration {
	if n < 1 || p.BaseDelay <= 0 {
		return 0
	}
	mult := p.Multiplier
	if mult < 1 {
		mult = 1
	}
	f := float64(p.BaseDelay) * math.Pow(mult, float64(n-1))
	if p.MaxDelay > 0 && f > float64(p.MaxDelay) {
		return p.MaxDelay
	}
	if f > math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(f)
}

// RetryableStatus reports whether code is in the retry set.
func (p RetryPolicy) RetryableStatus(code int) bool {
	for _, s := range p.Statuses {
		if s == code {
			return true
		}
	}
	return false
}

func (p RetryPolicy) capDelay(d time.Duration) time.Duration {
	if p.MaxDelay > 0 && d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}

// isRetryableError reports whether a transport error is transient:
// refused or reset connections, DNS failures, and timeouts.
func isRetryableError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// retryAfter parses a Retry-After header given in seconds or as an HTTP date.
func retryAfter(header string, now time.Time) time.Duration {
	header = strings.TrimSpace(header)
	if header == "" {
		return 0
	}
	if secs, err := strconv.Atoi(header); err == nil {
		if secs <= 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(header); err == nil {
		if d := at.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}
