package crawler

import (
	"net/url"
	"strings"
)

// SameDomain reports whether candidate shares reference's network authority
// (host and port). Scheme, path and query are ignored.
func SameDomain(reference, candidate string) bool {
	ref, err := url.Parse(reference)
	if err != nil || ref.Host == "" {
		return false
	}
	cand, err := url.Parse(candidate)
	if err != nil {
		return false
	}
	return strings.EqualFold(ref.Host, cand.Host)
}
