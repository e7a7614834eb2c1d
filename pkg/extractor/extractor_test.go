package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name      string
		baseURL   string
		html      string
		wantTitle string
		wantLinks []string
	}{
		{
			name:    "relative and absolute links",
			baseURL: "https://example.com/docs/index.html",
			html: `<html><head><title>  Docs Home </title></head><body>
				<a href="intro.html">Intro</a>
				<a href="/about">About</a>
				<a href="https://other.org/x">Other</a>
				<a href="//cdn.example.com/lib">Protocol relative</a>
			</body></html>`,
			wantTitle: "Docs Home",
			wantLinks: []string{
				"https://example.com/docs/intro.html",
				"https://example.com/about",
				"https://other.org/x",
				"https://cdn.example.com/lib",
			},
		},
		{
			name:    "non http schemes and empty hrefs dropped",
			baseURL: "http://example.com/",
			html: `<a href="mailto:a@example.com">mail</a>
				<a href="javascript:void(0)">js</a>
				<a href="ftp://example.com/file">ftp</a>
				<a href="   ">blank</a>
				<a>no href</a>
				<a href="  /kept  ">kept</a>`,
			wantLinks: []string{"http://example.com/kept"},
		},
		{
			name:      "duplicates kept in document order",
			baseURL:   "http://example.com/",
			html:      `<a href="/a">1</a><a href="/b">2</a><a href="/a">3</a>`,
			wantLinks: []string{"http://example.com/a", "http://example.com/b", "http://example.com/a"},
		},
		{
			name:      "first non-empty title wins",
			baseURL:   "http://example.com/",
			html:      `<html><head><title>   </title><title>Second</title></head></html>`,
			wantTitle: "Second",
		},
		{
			name:      "svg title ignored",
			baseURL:   "http://example.com/",
			html:      `<html><body><svg><title>Icon</title></svg></body></html>`,
			wantTitle: "",
		},
		{
			name:      "html entities decoded",
			baseURL:   "http://example.com/",
			html:      `<title>Fish &amp; Chips</title>`,
			wantTitle: "Fish & Chips",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.baseURL, []byte(tt.html))
			assert.Equal(t, tt.wantTitle, got.Title)
			assert.Equal(t, tt.wantLinks, got.Links)
		})
	}
}

func TestExtractMalformedMarkup(t *testing.T) {
	got := Extract("http://example.com/dir/", []byte(`<html><body><a href="page">x<div><p></span><a href="/other"`))
	assert.Contains(t, got.Links, "http://example.com/dir/page")
	for _, link := range got.Links {
		assert.Regexp(t, `^http://example\.com/`, link)
	}
}

func TestExtractEmptyDocument(t *testing.T) {
	got := Extract("http://example.com/", nil)
	assert.Empty(t, got.Title)
	assert.Empty(t, got.Links)
}

func TestExtractUnparseableBase(t *testing.T) {
	got := Extract("http://[::1", []byte(`<title>T</title><a href="/x">x</a>`))
	assert.Equal(t, "T", got.Title)
	assert.Empty(t, got.Links)
}

func TestExtractKeepsQueryAndFragment(t *testing.T) {
	got := Extract("http://example.com/a/", []byte(`<a href="b?q=1#frag">x</a>`))
	assert.Equal(t, []string{"http://example.com/a/b?q=1#frag"}, got.Links)
}
