package robots

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/temoto/robotstxt"
)

// maxPolicyBytes bounds how much of robots.txt is read.
const maxPolicyBytes = 512 * 1024

// Gate answers allow/deny questions for one origin. A Gate whose policy
// could not be loaded allows everything.
type Gate struct {
	url         string
	agent       string
	enabled     bool
	disallowAll bool
	data        *robotstxt.RobotsData
	err         error
}

// URLFor returns {scheme}://{host}/robots.txt for the origin of rawURL.
func URLFor(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("url %q has no origin", rawURL)
	}
	return u.Scheme + "://" + u.Host + "/robots.txt", nil
}

// Disabled returns a gate that allows every URL. Enabled reports false.
func Disabled(robotsURL string) *Gate {
	return &Gate{url: robotsURL}
}

// Load fetches the robots policy for the origin of startURL exactly once.
// It never retries. Any failure yields a fail-open gate whose Err explains
// why enforcement is off.
func Load(ctx context.Context, client *http.Client, startURL, userAgent string, timeout time.Duration) *Gate {
	robotsURL, err := URLFor(startURL)
	if err != nil {
		return &Gate{err: err}
	}
	gate := &Gate{url: robotsURL, agent: userAgent}

	if client == nil {
		client = http.DefaultClient
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		gate.err = fmt.Errorf("build robots request: %w", err)
		return gate
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := client.Do(req)
	if err != nil {
		gate.err = fmt.Errorf("fetch robots.txt: %w", err)
		return gate
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		gate.enabled = true
		gate.disallowAll = true
		return gate
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		// No policy published: everything is allowed.
		gate.enabled = true
		gate.data, _ = robotstxt.FromBytes(nil)
		return gate
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		gate.err = fmt.Errorf("robots.txt returned status %d", resp.StatusCode)
		return gate
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPolicyBytes))
	if err != nil {
		gate.err = fmt.Errorf("read robots.txt: %w", err)
		return gate
	}
	data, err := robotstxt.FromBytes(body)
	if err != nil {
		gate.err = fmt.Errorf("parse robots.txt: %w", err)
		return gate
	}

	gate.enabled = true
	gate.data = data
	return gate
}

// URL is the robots.txt location this gate was built for.
func (g *Gate) URL() string {
	return g.url
}

// Enabled reports whether a policy was loaded and is being enforced.
func (g *Gate) Enabled() bool {
	return g.enabled
}

// Err explains why the gate is disabled. It is nil for enabled gates.
func (g *Gate) Err() error {
	if g.enabled {
		return nil
	}
	if g.err == nil {
		return errors.New("robots.txt enforcement disabled")
	}
	return g.err
}

// Allowed reports whether the configured agent may fetch rawURL.
func (g *Gate) Allowed(rawURL string) bool {
	if !g.enabled {
		return true
	}
	if g.disallowAll {
		return false
	}
	if g.data == nil {
		return true
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return true
	}
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return g.data.TestAgent(path, g.agent)
}
