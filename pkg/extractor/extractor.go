package extractor

import (
	"bytes"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ParseResult holds what a crawl needs from one HTML document.
type ParseResult struct {
	// Title is the first non-empty <title> text, trimmed.
	Title string
	// Links are absolute http(s) anchor targets in document order.
	// Duplicates are kept.
	Links []string
}

// Extract parses body as HTML and returns its title and the anchor targets
// resolved against baseURL. Broken markup never fails: the parser repairs
// what it can and whatever was recovered is returned.
func Extract(baseURL string, body []byte) ParseResult {
	var result ParseResult

	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return result
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		base = nil
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Namespace == "" {
			switch n.DataAtom {
			case atom.A:
				if link, ok := resolveLink(base, attr(n, "href")); ok {
					result.Links = append(result.Links, link)
				}
			case atom.Title:
				if result.Title == "" {
					result.Title = strings.TrimSpace(textContent(n))
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return result
}

// resolveLink turns an href into an absolute http(s) URL.
func resolveLink(base *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || base == nil {
		return "", false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	abs := base.ResolveReference(ref)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return "", false
	}
	return abs.String(), true
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return b.String()
}
