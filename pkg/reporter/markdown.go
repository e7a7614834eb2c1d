package reporter

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/nao1215/markdown"

	"github.com/amosWeiskopf/sitecrawl/internal/models"
	"github.com/amosWeiskopf/sitecrawl/pkg/analyzer"
	"github.com/amosWeiskopf/sitecrawl/pkg/utils"
)

const maxTitleCell = 80

func generateMarkdown(result *models.CrawlResult) ([]byte, error) {
	var buf bytes.Buffer
	md := markdown.NewMarkdown(&buf)
	summary := analyzer.Summarize(result)

	md.H1("Crawl Report")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Start URL", "`" + result.StartURL + "`"},
			{"Crawl ID", result.CrawlID},
			{"Started", formatTime(result.StartedAt)},
			{"Duration", result.Duration().Round(time.Millisecond).String()},
			{"Robots", robotsText(result)},
		},
	})
	md.PlainText("")
	if !result.RobotsEnabled {
		md.Warningf("robots.txt was not enforced for this crawl (%s).", result.RobotsURL)
		md.PlainText("")
	}

	md.H2("Summary")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Count"},
		Rows: [][]string{
			{"Pages crawled", strconv.Itoa(result.CrawledPages)},
			{"Succeeded", strconv.Itoa(summary.Succeeded)},
			{"Failed", strconv.Itoa(summary.Failed)},
			{"Blocked by robots.txt", strconv.Itoa(summary.Blocked)},
			{"Non-HTML", strconv.Itoa(summary.NonHTML)},
			{"Pages with a title", strconv.Itoa(summary.WithTitle)},
			{"In-domain links found", strconv.Itoa(summary.LinksFound)},
		},
	})
	md.PlainText("")

	if classes := summary.SortedClasses(); len(classes) > 0 {
		md.H2("Status Codes")
		md.PlainText("")
		rows := make([][]string, 0, len(classes))
		for _, class := range classes {
			rows = append(rows, []string{class, strconv.Itoa(summary.StatusClasses[class])})
		}
		md.Table(markdown.TableSet{Header: []string{"Class", "Pages"}, Rows: rows})
		md.PlainText("")
	}

	if len(summary.DuplicateTitle) > 0 {
		md.H2("Duplicate Titles")
		md.PlainText("")
		md.BulletList(summary.DuplicateTitle...)
		md.PlainText("")
	}

	md.H2("Pages")
	md.PlainText("")
	rows := make([][]string, 0, len(result.Pages))
	for _, p := range result.Pages {
		rows = append(rows, []string{
			utils.EscapeTableCell(p.URL),
			statusText(p),
			utils.EscapeTableCell(utils.TruncateText(p.Title, maxTitleCell)),
			strconv.Itoa(p.LinksFound),
			utils.EscapeTableCell(p.Error),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"URL", "Status", "Title", "Links", "Error"},
		Rows:   rows,
	})
	md.PlainText("")

	if len(result.FailedURLs) > 0 {
		md.H2("Failed URLs")
		md.PlainText("")
		md.BulletList(result.FailedURLs...)
		md.PlainText("")
	}

	md.HorizontalRule()
	md.PlainTextf("Generated by sitecrawl at %s", formatTime(result.FinishedAt))

	if err := md.Build(); err != nil {
		return nil, fmt.Errorf("failed to build markdown: %w", err)
	}
	return buf.Bytes(), nil
}

func statusText(p models.PageRecord) string {
	switch {
	case p.BlockedByRobots:
		return "blocked"
	case p.Failed():
		return "failed"
	case p.Status == nil:
		return "-"
	default:
		return strconv.Itoa(*p.Status)
	}
}

func robotsText(result *models.CrawlResult) string {
	if result.RobotsEnabled {
		return "enforced (" + result.RobotsURL + ")"
	}
	return "not enforced"
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04:05 MST")
}
