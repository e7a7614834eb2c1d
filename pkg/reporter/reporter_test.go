package reporter

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/amosWeiskopf/sitecrawl/internal/models"
)

func intPtr(v int) *int { return &v }

func sampleResult() *models.CrawlResult {
	started := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return &models.CrawlResult{
		CrawlID:       "6f1c7a2e-2b1e-4c53-9a57-0f4b8f3d2a10",
		StartURL:      "https://example.com/",
		RobotsURL:     "https://example.com/robots.txt",
		RobotsEnabled: true,
		CrawledPages:  4,
		FailedCount:   1,
		FailedURLs:    []string{"https://example.com/down"},
		Pages: []models.PageRecord{
			{URL: "https://example.com/", Status: intPtr(200), Title: "Home, sweet \"home\"", LinksFound: 3, ContentType: "text/html"},
			models.BlockedRecord("https://example.com/private"),
			models.FailedRecord("https://example.com/down", assert.AnError),
			{URL: "https://example.com/about", Status: intPtr(200), Title: "<b>Tom & Jerry</b>", ContentType: "text/html", WordCount: 12},
		},
		StartedAt:  started,
		FinishedAt: started.Add(1500 * time.Millisecond),
	}
}

func TestParseFormats(t *testing.T) {
	formats, err := ParseFormats([]string{"json", "CSV", "yml", "md", "json", "db", "html"})
	require.NoError(t, err)
	assert.Equal(t, []Format{FormatJSON, FormatCSV, FormatYAML, FormatMarkdown, FormatSQLite, FormatHTML}, formats)

	formats, err = ParseFormats([]string{"json", "pdf", "xml"})
	require.Error(t, err)
	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	assert.Len(t, merr.Errors, 2)
	assert.Equal(t, []Format{FormatJSON}, formats)
}

func TestFormatFileNames(t *testing.T) {
	seen := make(map[string]bool)
	for _, f := range AllFormats {
		name := f.FileName()
		require.NotEmpty(t, name, f)
		assert.False(t, seen[name], "duplicate file name %s", name)
		seen[name] = true
	}
	assert.Equal(t, "crawl_result.json", FormatJSON.FileName())
	assert.Equal(t, "crawl_result.csv", FormatCSV.FileName())
}

func TestGenerateCSV(t *testing.T) {
	data, err := Generate(FormatCSV, sampleResult())
	require.NoError(t, err)

	want := "url,status,title,links_found,blocked_by_robots,error\n" +
		"https://example.com/,200,\"Home, sweet \"\"home\"\"\",3,false,\n" +
		"https://example.com/private,,,0,true,\n" +
		"https://example.com/down,,,0,false," + assert.AnError.Error() + "\n" +
		"https://example.com/about,200,<b>Tom & Jerry</b>,0,false,\n"
	if diff := cmp.Diff(want, string(data)); diff != "" {
		t.Errorf("csv mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateJSON(t *testing.T) {
	data, err := Generate(FormatJSON, sampleResult())
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "https://example.com/", doc["start_url"])
	assert.Equal(t, true, doc["robots_enabled"])
	assert.EqualValues(t, 4, doc["crawled_pages"])
	assert.EqualValues(t, 1, doc["failed_count"])

	pages := doc["pages"].([]interface{})
	require.Len(t, pages, 4)
	blocked := pages[1].(map[string]interface{})
	assert.Contains(t, blocked, "status")
	assert.Nil(t, blocked["status"])
	assert.Equal(t, true, blocked["blocked_by_robots"])
	assert.NotContains(t, blocked, "error")
}

func TestGenerateYAML(t *testing.T) {
	data, err := Generate(FormatYAML, sampleResult())
	require.NoError(t, err)

	var got models.CrawlResult
	require.NoError(t, yaml.Unmarshal(data, &got))
	if diff := cmp.Diff(sampleResult().Pages, got.Pages); diff != "" {
		t.Errorf("pages mismatch (-want +got):\n%s", diff)
	}
	assert.Contains(t, string(data), "blocked_by_robots: true")
}

func TestGenerateMarkdown(t *testing.T) {
	data, err := Generate(FormatMarkdown, sampleResult())
	require.NoError(t, err)
	out := string(data)

	assert.Contains(t, out, "# Crawl Report")
	assert.Contains(t, out, "## Summary")
	assert.Contains(t, out, "## Status Codes")
	assert.Contains(t, out, "## Failed URLs")
	assert.Contains(t, out, "https://example.com/private")
	assert.Contains(t, out, "blocked")
	assert.Contains(t, out, "1.5s")
	assert.NotContains(t, out, "not enforced")
}

func TestGenerateMarkdownRobotsNotEnforced(t *testing.T) {
	result := sampleResult()
	result.RobotsEnabled = false
	result.FailedURLs = []string{}

	data, err := Generate(FormatMarkdown, result)
	require.NoError(t, err)
	assert.Contains(t, string(data), "not enforced")
	assert.NotContains(t, string(data), "## Failed URLs")
}

func TestGenerateHTMLEscapes(t *testing.T) {
	data, err := Generate(FormatHTML, sampleResult())
	require.NoError(t, err)
	out := string(data)

	assert.Contains(t, out, "Crawl Report for https://example.com/")
	assert.Contains(t, out, "&lt;b&gt;Tom &amp; Jerry&lt;/b&gt;")
	assert.NotContains(t, out, "<b>Tom")
	assert.Contains(t, out, `class="blocked"`)
	assert.Contains(t, out, `class="failed"`)
}

func TestGenerateUnsupported(t *testing.T) {
	_, err := Generate(FormatSQLite, sampleResult())
	assert.Error(t, err)
}

func TestWriteAllFormats(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	r := New(dir, AllFormats)

	paths, err := r.Write(context.Background(), sampleResult())
	require.NoError(t, err)
	require.Len(t, paths, len(AllFormats))
	for i, f := range AllFormats {
		assert.Equal(t, filepath.Join(dir, f.FileName()), paths[i])
		info, err := os.Stat(paths[i])
		require.NoError(t, err)
		assert.Positive(t, info.Size(), f)
	}
}

func TestWriteKeepsGoingAfterFailure(t *testing.T) {
	dir := t.TempDir()
	// A directory where the CSV file should go makes that write fail.
	require.NoError(t, os.Mkdir(filepath.Join(dir, FormatCSV.FileName()), 0o750))

	r := New(dir, []Format{FormatCSV, FormatJSON, Format("bogus")})
	paths, err := r.Write(context.Background(), sampleResult())
	require.Error(t, err)

	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	assert.Len(t, merr.Errors, 2)
	assert.Equal(t, []string{filepath.Join(dir, FormatJSON.FileName())}, paths)
}

func TestWriteNilResult(t *testing.T) {
	_, err := New(t.TempDir(), AllFormats).Write(context.Background(), nil)
	assert.Error(t, err)
}

func TestStoreSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	store, err := OpenStore(filepath.Join(t.TempDir(), "history", FormatSQLite.FileName()))
	require.NoError(t, err)
	defer store.Close()

	result := sampleResult()
	id, err := store.Save(ctx, result)
	require.NoError(t, err)
	assert.Equal(t, result.CrawlID, id)

	pages, err := store.Pages(ctx, id)
	require.NoError(t, err)
	if diff := cmp.Diff(result.Pages, pages); diff != "" {
		t.Errorf("pages mismatch (-want +got):\n%s", diff)
	}

	crawls, err := store.Crawls(ctx)
	require.NoError(t, err)
	require.Len(t, crawls, 1)
	assert.Equal(t, result.StartURL, crawls[0].StartURL)
	assert.True(t, crawls[0].RobotsEnabled)
	assert.Equal(t, 4, crawls[0].CrawledPages)
	assert.True(t, crawls[0].StartedAt.Equal(result.StartedAt))

	_, err = store.Save(ctx, result)
	assert.Error(t, err, "crawl ids are unique")
}

func TestStoreAssignsMissingID(t *testing.T) {
	ctx := context.Background()
	store, err := OpenStore(filepath.Join(t.TempDir(), "crawl_history.db"))
	require.NoError(t, err)
	defer store.Close()

	result := sampleResult()
	result.CrawlID = ""
	id, err := store.Save(ctx, result)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	pages, err := store.Pages(ctx, id)
	require.NoError(t, err)
	assert.Len(t, pages, len(result.Pages))
}

func TestStoreLoad(t *testing.T) {
	ctx := context.Background()
	store, err := OpenStore(filepath.Join(t.TempDir(), "crawl_history.db"))
	require.NoError(t, err)
	defer store.Close()

	result := sampleResult()
	_, err = store.Save(ctx, result)
	require.NoError(t, err)

	got, err := store.Load(ctx, result.CrawlID)
	require.NoError(t, err)
	if diff := cmp.Diff(result, got); diff != "" {
		t.Errorf("loaded crawl mismatch (-want +got):\n%s", diff)
	}

	_, err = store.Load(ctx, "missing")
	assert.ErrorIs(t, err, ErrCrawlNotFound)
}
