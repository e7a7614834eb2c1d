package reporter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/amosWeiskopf/sitecrawl/internal/logging"
	"github.com/amosWeiskopf/sitecrawl/internal/models"
)

// Format names an output written by the Reporter.
type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatSQLite   Format = "sqlite"
)

// AllFormats lists every supported format in write order.
var AllFormats = []Format{FormatJSON, FormatCSV, FormatYAML, FormatMarkdown, FormatHTML, FormatSQLite}

// ParseFormat accepts a format name or one of its common aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	case "sqlite", "db":
		return FormatSQLite, nil
	default:
		return "", fmt.Errorf("unsupported format: %s", s)
	}
}

// ParseFormats parses every name, reporting all unsupported ones together.
func ParseFormats(names []string) ([]Format, error) {
	var (
		formats []Format
		result  *multierror.Error
		seen    = make(map[Format]bool)
	)
	for _, name := range names {
		f, err := ParseFormat(name)
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		if !seen[f] {
			seen[f] = true
			formats = append(formats, f)
		}
	}
	return formats, result.ErrorOrNil()
}

// FileName is the file each format is written to inside the output directory.
func (f Format) FileName() string {
	switch f {
	case FormatJSON:
		return "crawl_result.json"
	case FormatCSV:
		return "crawl_result.csv"
	case FormatYAML:
		return "crawl_result.yaml"
	case FormatMarkdown:
		return "crawl_report.md"
	case FormatHTML:
		return "crawl_report.html"
	case FormatSQLite:
		return "crawl_history.db"
	default:
		return ""
	}
}

// Reporter handles report generation in various formats
type Reporter struct {
	dir     string
	formats []Format
	logger  *logrus.Entry
}

// Option configures a Reporter.
type Option func(*Reporter)

// WithLogger sets the entry reports are logged through.
func WithLogger(l *logrus.Entry) Option {
	return func(r *Reporter) { r.logger = l }
}

// New creates a Reporter writing formats into dir.
func New(dir string, formats []Format, opts ...Option) *Reporter {
	r := &Reporter{dir: dir, formats: formats}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logging.Discard()
	}
	return r
}

// Write writes result in every configured format and returns the paths it
// produced. A failing format does not stop the others; all errors are
// returned together.
func (r *Reporter) Write(ctx context.Context, result *models.CrawlResult) ([]string, error) {
	if result == nil {
		return nil, fmt.Errorf("nothing to report")
	}
	if len(r.formats) == 0 {
		return nil, nil
	}
	if err := os.MkdirAll(r.dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	var (
		written []string
		errs    *multierror.Error
	)
	for _, format := range r.formats {
		path := filepath.Join(r.dir, format.FileName())
		if err := r.writeOne(ctx, format, path, result); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s report: %w", format, err))
			continue
		}
		r.logger.WithFields(logrus.Fields{"format": format, "path": path}).Info("report written")
		written = append(written, path)
	}
	return written, errs.ErrorOrNil()
}

func (r *Reporter) writeOne(ctx context.Context, format Format, path string, result *models.CrawlResult) error {
	if format == FormatSQLite {
		store, err := OpenStore(path)
		if err != nil {
			return err
		}
		_, saveErr := store.Save(ctx, result)
		if closeErr := store.Close(); saveErr == nil {
			saveErr = closeErr
		}
		return saveErr
	}

	data, err := Generate(format, result)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// Generate renders result in a file-based format.
func Generate(format Format, result *models.CrawlResult) ([]byte, error) {
	switch format {
	case FormatJSON:
		return generateJSON(result)
	case FormatCSV:
		return generateCSV(result)
	case FormatYAML:
		return generateYAML(result)
	case FormatMarkdown:
		return generateMarkdown(result)
	case FormatHTML:
		return generateHTML(result)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// generateJSON creates a JSON formatted report
func generateJSON(result *models.CrawlResult) ([]byte, error) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}
	return append(data, '\n'), nil
}

func generateYAML(result *models.CrawlResult) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(result); err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}
	return buf.Bytes(), nil
}
