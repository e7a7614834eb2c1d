package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/amosWeiskopf/sitecrawl/internal/models"
)

// AppName names the config file and its XDG directory.
const AppName = "sitecrawl"

// Config holds all application configuration
type Config struct {
	// Crawler configuration
	Crawler CrawlerConfig `mapstructure:"crawler"`

	// Output configuration
	Output OutputConfig `mapstructure:"output"`

	// Logging configuration
	Logging LoggingConfig `mapstructure:"logging"`
}

// CrawlerConfig holds crawler-specific configuration
type CrawlerConfig struct {
	StartURL          string        `mapstructure:"start_url"`
	MaxPages          int           `mapstructure:"max_pages"`
	Delay             float64       `mapstructure:"delay"` // seconds
	Retries           int           `mapstructure:"retries"`
	UserAgent         string        `mapstructure:"user_agent"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RespectRobots     bool          `mapstructure:"respect_robots"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	ExtractText       bool          `mapstructure:"extract_text"`
	MaxBodyBytes      int64         `mapstructure:"max_body_bytes"`
	BackoffBase       time.Duration `mapstructure:"backoff_base"`
}

// OutputConfig selects where and how results are written
type OutputConfig struct {
	Dir     string   `mapstructure:"dir"`
	Formats []string `mapstructure:"formats"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "text"
}

// flagKeys maps config keys to the CLI flags that may override them.
var flagKeys = map[string]string{
	"crawler.start_url":      "start-url",
	"crawler.max_pages":      "max-pages",
	"crawler.delay":          "delay",
	"crawler.retries":        "retries",
	"crawler.user_agent":     "user-agent",
	"crawler.extract_text":   "extract-text",
	"crawler.respect_robots": "respect-robots",
	"output.dir":             "output-dir",
	"output.formats":         "format",
	"logging.level":          "log-level",
	"logging.format":         "log-format",
}

// Load reads configuration from defaults, an optional YAML file, the
// environment and finally flags, in increasing priority. An empty
// configPath searches ".", "./config" and the XDG config directory.
func Load(configPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(AppName)
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath(filepath.Join(xdg.ConfigHome, AppName))
	}

	setDefaults(v)

	if err := bindEnvVars(v); err != nil {
		return nil, err
	}

	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return nil, err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is not an error, we'll use defaults and env
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.normalise()

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Crawler defaults
	v.SetDefault("crawler.start_url", "")
	v.SetDefault("crawler.max_pages", models.DefaultMaxPages)
	v.SetDefault("crawler.delay", models.DefaultDelay.Seconds())
	v.SetDefault("crawler.retries", models.DefaultRetries)
	v.SetDefault("crawler.user_agent", models.DefaultUserAgent)
	v.SetDefault("crawler.timeout", models.DefaultTimeout.String())
	v.SetDefault("crawler.respect_robots", true)
	v.SetDefault("crawler.requests_per_second", 0)
	v.SetDefault("crawler.extract_text", false)
	v.SetDefault("crawler.max_body_bytes", 10*1024*1024)
	v.SetDefault("crawler.backoff_base", "500ms")

	// Output defaults
	v.SetDefault("output.dir", "output")
	v.SetDefault("output.formats", []string{"json", "csv"})

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// bindEnvVars binds environment variables
func bindEnvVars(v *viper.Viper) error {
	v.SetEnvPrefix("SITECRAWL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// USER_AGENT is honoured without the prefix as well.
	if err := v.BindEnv("crawler.user_agent", "SITECRAWL_CRAWLER_USER_AGENT", "USER_AGENT"); err != nil {
		return fmt.Errorf("bind env: %w", err)
	}
	return nil
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for key, name := range flagKeys {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

func (c *Config) normalise() {
	c.Crawler.StartURL = strings.TrimSpace(c.Crawler.StartURL)
	c.Crawler.UserAgent = strings.TrimSpace(c.Crawler.UserAgent)
	if c.Crawler.UserAgent == "" {
		c.Crawler.UserAgent = models.DefaultUserAgent
	}
	c.Output.Dir = strings.TrimSpace(c.Output.Dir)

	formats := make([]string, 0, len(c.Output.Formats))
	for _, f := range c.Output.Formats {
		// Flags and env may deliver "json,csv" as a single element.
		for _, part := range strings.Split(f, ",") {
			if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
				formats = append(formats, part)
			}
		}
	}
	c.Output.Formats = formats
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
}

// Request converts the crawler section into the crawl input.
func (c *Config) Request() models.CrawlRequest {
	return models.CrawlRequest{
		StartURL:          c.Crawler.StartURL,
		MaxPages:          c.Crawler.MaxPages,
		Delay:             time.Duration(c.Crawler.Delay * float64(time.Second)),
		Retries:           c.Crawler.Retries,
		UserAgent:         c.Crawler.UserAgent,
		Timeout:           c.Crawler.Timeout,
		RespectRobots:     c.Crawler.RespectRobots,
		RequestsPerSecond: c.Crawler.RequestsPerSecond,
		ExtractText:       c.Crawler.ExtractText,
		MaxBodyBytes:      c.Crawler.MaxBodyBytes,
		BackoffBase:       c.Crawler.BackoffBase,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	var result *multierror.Error

	if err := c.Request().Validate(); err != nil {
		var merr *multierror.Error
		if errors.As(err, &merr) {
			result = multierror.Append(result, merr.Errors...)
		} else {
			result = multierror.Append(result, err)
		}
	}
	if len(c.Output.Formats) > 0 && c.Output.Dir == "" {
		result = multierror.Append(result, errors.New("output.dir must be set when formats are requested"))
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		result = multierror.Append(result, fmt.Errorf("logging.format must be json or text (got %q)", c.Logging.Format))
	}

	return result.ErrorOrNil()
}
