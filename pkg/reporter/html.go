package reporter

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/amosWeiskopf/sitecrawl/internal/models"
	"github.com/amosWeiskopf/sitecrawl/pkg/analyzer"
)

var htmlReport = template.Must(template.New("report").Funcs(template.FuncMap{
	"status": statusText,
	"when":   formatTime,
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Crawl Report - {{.Result.StartURL}}</title>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Arial, sans-serif;
            line-height: 1.5;
            color: #333;
            max-width: 1200px;
            margin: 0 auto;
            padding: 20px;
            background: #f5f5f5;
        }
        .header {
            background: #3a4a6b;
            color: white;
            padding: 1.5rem 2rem;
            border-radius: 8px;
            margin-bottom: 1.5rem;
        }
        .card {
            background: white;
            border-radius: 8px;
            padding: 1.5rem;
            margin-bottom: 1.5rem;
            box-shadow: 0 2px 8px rgba(0,0,0,0.08);
        }
        .grid {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(160px, 1fr));
            gap: 1rem;
        }
        .metric { text-align: center; padding: 1rem; background: #f8f9fa; border-radius: 6px; }
        .metric .value { font-size: 1.8rem; font-weight: bold; color: #3a4a6b; }
        .metric .label { color: #666; font-size: 0.9rem; }
        table { width: 100%; border-collapse: collapse; font-size: 0.9rem; }
        th, td { text-align: left; padding: 0.4rem 0.6rem; border-bottom: 1px solid #eee; word-break: break-all; }
        tr.blocked td { color: #8a6d3b; }
        tr.failed td { color: #a94442; }
    </style>
</head>
<body>
    <div class="header">
        <h1>Crawl Report for {{.Result.StartURL}}</h1>
        <p>Started {{when .Result.StartedAt}} &middot; robots.txt {{if .Result.RobotsEnabled}}enforced{{else}}not enforced{{end}}</p>
    </div>

    <div class="card">
        <h2>Summary</h2>
        <div class="grid">
            <div class="metric"><div class="value">{{.Result.CrawledPages}}</div><div class="label">Pages crawled</div></div>
            <div class="metric"><div class="value">{{.Summary.Succeeded}}</div><div class="label">Succeeded</div></div>
            <div class="metric"><div class="value">{{.Summary.Failed}}</div><div class="label">Failed</div></div>
            <div class="metric"><div class="value">{{.Summary.Blocked}}</div><div class="label">Blocked</div></div>
            <div class="metric"><div class="value">{{.Summary.LinksFound}}</div><div class="label">Links found</div></div>
        </div>
    </div>

    <div class="card">
        <h2>Pages</h2>
        <table>
            <tr><th>URL</th><th>Status</th><th>Title</th><th>Links</th><th>Error</th></tr>
            {{range .Result.Pages}}
            <tr class="{{if .BlockedByRobots}}blocked{{else if .Failed}}failed{{end}}">
                <td>{{.URL}}</td><td>{{status .}}</td><td>{{.Title}}</td><td>{{.LinksFound}}</td><td>{{.Error}}</td>
            </tr>
            {{end}}
        </table>
    </div>

    {{if .Result.FailedURLs}}
    <div class="card">
        <h2>Failed URLs</h2>
        <ul>
            {{range .Result.FailedURLs}}
            <li>{{.}}</li>
            {{end}}
        </ul>
    </div>
    {{end}}
</body>
</html>
`))

func generateHTML(result *models.CrawlResult) ([]byte, error) {
	data := struct {
		Result  *models.CrawlResult
		Summary analyzer.Summary
	}{
		Result:  result,
		Summary: analyzer.Summarize(result),
	}

	var buf bytes.Buffer
	if err := htmlReport.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.Bytes(), nil
}
