package reporter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/amosWeiskopf/sitecrawl/internal/models"
)

// csvHeader is the column order of crawl_result.csv.
var csvHeader = []string{"url", "status", "title", "links_found", "blocked_by_robots", "error"}

func generateCSV(result *models.CrawlResult) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, p := range result.Pages {
		status := ""
		if p.Status != nil {
			status = strconv.Itoa(*p.Status)
		}
		row := []string{
			p.URL,
			status,
			p.Title,
			strconv.Itoa(p.LinksFound),
			strconv.FormatBool(p.BlockedByRobots),
			p.Error,
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write csv row for %s: %w", p.URL, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
