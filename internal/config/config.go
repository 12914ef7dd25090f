// Package config handles loading and validating the application configuration
// from YAML files with environment variable substitution.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/donaldgifford/competitor-price-matcher/pkg/match"
	domain "github.com/donaldgifford/competitor-price-matcher/pkg/types"
)

// Store drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Target sources.
const (
	SourceStore   = "store"
	SourceSheet   = "sheet"
	SourceCatalog = "catalog"
)

// DefaultDenyDomains are excluded from wildcard scopes that do not name
// their own deny set: marketplaces, resellers and aggregators whose prices
// are not a competitor's own.
var DefaultDenyDomains = []string{
	"ebay.com",
	"amazon.com",
	"walmart.com",
	"aliexpress.com",
	"temu.com",
	"facebook.com",
	"google.com",
	"pinterest.com",
	"reddit.com",
	"youtube.com",
}

// Config is the top-level application configuration.
type Config struct {
	Server        ServerConfig             `yaml:"server"`
	Store         StoreConfig              `yaml:"store"`
	Search        SearchConfig             `yaml:"search"`
	Fetch         FetchConfig              `yaml:"fetch"`
	Catalog       CatalogConfig            `yaml:"catalog"`
	Pacing        PacingConfig             `yaml:"pacing"`
	Matching      MatchingConfig           `yaml:"matching"`
	Scopes        []domain.CompetitorScope `yaml:"scopes"`
	Targets       TargetsConfig            `yaml:"targets"`
	Output        OutputConfig             `yaml:"output"`
	Schedule      ScheduleConfig           `yaml:"schedule"`
	Notifications NotificationsConfig      `yaml:"notifications"`
	Logging       LoggingConfig            `yaml:"logging"`
	Telemetry     TelemetryConfig          `yaml:"telemetry"`
}

// ServerConfig defines the Echo HTTP server settings.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// StoreConfig selects and configures the results store.
type StoreConfig struct {
	Driver   string         `yaml:"driver"` // postgres, sqlite
	Postgres DatabaseConfig `yaml:"postgres"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
}

// DatabaseConfig defines PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
	PoolSize int    `yaml:"pool_size"`
}

// DSN returns a PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s pool_max_conns=%d",
		d.Host, d.Port, d.Name, d.User, d.Password, d.SSLMode, d.PoolSize,
	)
}

// SQLiteConfig defines the local database file.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// SearchConfig defines the web search API settings. The API key normally
// comes from the environment via ${SERPAPI_API_KEY}.
type SearchConfig struct {
	APIKey     string `yaml:"api_key"`
	Endpoint   string `yaml:"endpoint"`
	Engine     string `yaml:"engine"` // google, google_shopping
	Country    string `yaml:"country"`
	Language   string `yaml:"language"`
	Num        int    `yaml:"num"`
	MaxRetries int    `yaml:"max_retries"`
}

// FetchConfig defines page fetching behavior.
type FetchConfig struct {
	UserAgent      string        `yaml:"user_agent"`
	Timeout        time.Duration `yaml:"timeout"`
	MaxRetries     int           `yaml:"max_retries"`
	MaxBodyBytes   int64         `yaml:"max_body_bytes"`
	MaxPageFetches int           `yaml:"max_page_fetches"`
}

// CatalogConfig defines the store catalog API used as a target source.
type CatalogConfig struct {
	Shop     string `yaml:"shop"`
	Token    string `yaml:"token"`
	Endpoint string `yaml:"endpoint"`
	PageSize int    `yaml:"page_size"`
	MaxPages int    `yaml:"max_pages"`
}

// PacingConfig defines the shared outbound request budget.
type PacingConfig struct {
	RequestsPerMinute int           `yaml:"requests_per_minute"`
	Burst             int           `yaml:"burst"`
	DailyLimit        int64         `yaml:"daily_limit"`
	CostThreshold     float64       `yaml:"cost_threshold"`
	CostPause         time.Duration `yaml:"cost_pause"`
}

// MatchingConfig tunes query tiers and the candidate gates.
type MatchingConfig struct {
	Tiers       []string `yaml:"tiers"`
	PriceFloor  float64  `yaml:"price_floor"`
	MinKeywords int      `yaml:"min_keywords"`
	Stopwords   []string `yaml:"stopwords"`
}

// DomainTiers returns the configured tiers as domain values.
func (m *MatchingConfig) DomainTiers() []domain.Tier {
	tiers := make([]domain.Tier, 0, len(m.Tiers))
	for _, t := range m.Tiers {
		tiers = append(tiers, domain.Tier(strings.ToUpper(strings.TrimSpace(t))))
	}
	return tiers
}

// TargetsConfig selects where batch targets come from.
type TargetsConfig struct {
	Source    string `yaml:"source"` // store, sheet, catalog
	SheetPath string `yaml:"sheet_path"`
}

// OutputConfig defines optional result sinks besides the store.
type OutputConfig struct {
	SheetPath string `yaml:"sheet_path"`
}

// ScheduleConfig defines the batch cadence.
type ScheduleConfig struct {
	Enabled     bool          `yaml:"enabled"`
	Interval    time.Duration `yaml:"interval"`
	PruneSpec   string        `yaml:"prune_spec"`
	Concurrency int           `yaml:"concurrency"`
	Retention   time.Duration `yaml:"retention"`
}

// NotificationsConfig defines notification targets.
type NotificationsConfig struct {
	Discord    WebhookConfig `yaml:"discord"`
	Slack      WebhookConfig `yaml:"slack"`
	ReportLink string        `yaml:"report_link"`
}

// WebhookConfig defines a chat webhook.
type WebhookConfig struct {
	Enabled    bool   `yaml:"enabled"`
	WebhookURL string `yaml:"webhook_url"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// TelemetryConfig defines OpenTelemetry export settings.
type TelemetryConfig struct {
	Enabled        bool          `yaml:"enabled"`
	Endpoint       string        `yaml:"endpoint"`
	Insecure       bool          `yaml:"insecure"`
	ServiceName    string        `yaml:"service_name"`
	SampleRatio    float64       `yaml:"sample_ratio"`
	MetricInterval time.Duration `yaml:"metric_interval"`
}

// Load reads and parses a YAML config file, performing environment variable
// substitution and validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the YAML content.
	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	applyServerDefaults(&cfg.Server)
	applyStoreDefaults(&cfg.Store)
	applySearchDefaults(&cfg.Search)
	applyFetchDefaults(&cfg.Fetch)
	applyCatalogDefaults(&cfg.Catalog)
	applyPacingDefaults(&cfg.Pacing)
	applyMatchingDefaults(&cfg.Matching)
	applyScopeDefaults(cfg)
	applyTargetsDefaults(&cfg.Targets)
	applyScheduleDefaults(&cfg.Schedule)
	applyLoggingDefaults(&cfg.Logging)
	applyTelemetryDefaults(&cfg.Telemetry)
}

func applyServerDefaults(s *ServerConfig) {
	if s.Host == "" {
		s.Host = "0.0.0.0"
	}
	if s.Port == 0 {
		s.Port = 8080
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = 30 * time.Second
	}
	if s.WriteTimeout == 0 {
		// A synchronous resolve walks every tier of every scope.
		s.WriteTimeout = 5 * time.Minute
	}
}

func applyStoreDefaults(s *StoreConfig) {
	if s.Driver == "" {
		s.Driver = DriverSQLite
	}
	if s.Postgres.Port == 0 {
		s.Postgres.Port = 5432
	}
	if s.Postgres.SSLMode == "" {
		s.Postgres.SSLMode = "disable"
	}
	if s.Postgres.PoolSize == 0 {
		s.Postgres.PoolSize = 10
	}
	if s.SQLite.Path == "" {
		s.SQLite.Path = "price-matcher.db"
	}
}

func applySearchDefaults(s *SearchConfig) {
	if s.Engine == "" {
		s.Engine = "google"
	}
	if s.Country == "" {
		s.Country = "us"
	}
	if s.Language == "" {
		s.Language = "en"
	}
	if s.Num == 0 {
		s.Num = 10
	}
	if s.MaxRetries == 0 {
		s.MaxRetries = 3
	}
}

func applyFetchDefaults(f *FetchConfig) {
	if f.Timeout == 0 {
		f.Timeout = 20 * time.Second
	}
	if f.MaxRetries == 0 {
		f.MaxRetries = 3
	}
	if f.MaxBodyBytes == 0 {
		f.MaxBodyBytes = 3 << 20
	}
	if f.MaxPageFetches == 0 {
		f.MaxPageFetches = 3
	}
}

func applyCatalogDefaults(c *CatalogConfig) {
	if c.PageSize == 0 {
		c.PageSize = 50
	}
}

func applyPacingDefaults(p *PacingConfig) {
	if p.RequestsPerMinute == 0 {
		p.RequestsPerMinute = 40
	}
	if p.Burst == 0 {
		p.Burst = 1
	}
	if p.CostThreshold == 0 {
		p.CostThreshold = 200
	}
	if p.CostPause == 0 {
		p.CostPause = 2 * time.Second
	}
}

func applyMatchingDefaults(m *MatchingConfig) {
	if len(m.Tiers) == 0 {
		m.Tiers = []string{
			string(domain.TierGTIN),
			string(domain.TierBrandMPN),
			string(domain.TierMPN),
			string(domain.TierBrandName),
		}
	}
	if m.PriceFloor == 0 {
		m.PriceFloor = 40
	}
	if m.MinKeywords == 0 {
		m.MinKeywords = 2
	}
	if m.Stopwords == nil {
		m.Stopwords = slices.Clone(match.DefaultStopwords)
	}
}

// applyScopeDefaults falls back to one market-wide scope and gives wildcard
// scopes without a deny set the default one.
func applyScopeDefaults(cfg *Config) {
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = []domain.CompetitorScope{{
			ID:   "market",
			Name: "Market-wide",
			Mode: domain.ScopeWildcard,
		}}
	}
	for i := range cfg.Scopes {
		s := &cfg.Scopes[i]
		s.Mode = domain.ScopeMode(strings.ToLower(string(s.Mode)))
		if s.Name == "" {
			s.Name = s.ID
		}
		if s.IsWildcard() && len(s.Deny) == 0 {
			s.Deny = append([]string(nil), DefaultDenyDomains...)
		}
	}
}

func applyTargetsDefaults(t *TargetsConfig) {
	if t.Source == "" {
		t.Source = SourceStore
	}
}

func applyScheduleDefaults(s *ScheduleConfig) {
	if s.Interval == 0 {
		s.Interval = 24 * time.Hour
	}
	if s.PruneSpec == "" {
		s.PruneSpec = "@daily"
	}
	if s.Concurrency == 0 {
		s.Concurrency = 1
	}
	if s.Retention == 0 {
		s.Retention = 30 * 24 * time.Hour
	}
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

func applyTelemetryDefaults(t *TelemetryConfig) {
	if t.Endpoint == "" {
		t.Endpoint = "localhost:4317"
	}
	if t.ServiceName == "" {
		t.ServiceName = "competitor-price-matcher"
	}
	if t.SampleRatio == 0 {
		t.SampleRatio = 1
	}
	if t.MetricInterval == 0 {
		t.MetricInterval = time.Minute
	}
}

func validate(cfg *Config) error {
	var errs []error

	switch cfg.Store.Driver {
	case DriverPostgres:
		pg := cfg.Store.Postgres
		if pg.Host == "" {
			errs = append(errs, fmt.Errorf("store.postgres.host is required when driver is postgres"))
		}
		if pg.Name == "" {
			errs = append(errs, fmt.Errorf("store.postgres.name is required when driver is postgres"))
		}
		if pg.User == "" {
			errs = append(errs, fmt.Errorf("store.postgres.user is required when driver is postgres"))
		}
	case DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("store.driver must be one of: postgres, sqlite (got %q)", cfg.Store.Driver))
	}

	switch cfg.Search.Engine {
	case "google", "google_shopping":
	default:
		errs = append(errs, fmt.Errorf("search.engine must be one of: google, google_shopping (got %q)", cfg.Search.Engine))
	}

	if cfg.Fetch.MaxPageFetches < 0 {
		errs = append(errs, fmt.Errorf("fetch.max_page_fetches must not be negative"))
	}
	if cfg.Pacing.RequestsPerMinute < 0 {
		errs = append(errs, fmt.Errorf("pacing.requests_per_minute must not be negative"))
	}

	errs = append(errs, validateTiers(cfg.Matching.Tiers)...)
	errs = append(errs, validateScopes(cfg.Scopes)...)

	switch cfg.Targets.Source {
	case SourceStore:
	case SourceSheet:
		if cfg.Targets.SheetPath == "" {
			errs = append(errs, fmt.Errorf("targets.sheet_path is required when source is sheet"))
		}
	case SourceCatalog:
		if cfg.Catalog.Shop == "" && cfg.Catalog.Endpoint == "" {
			errs = append(errs, fmt.Errorf("catalog.shop or catalog.endpoint is required when source is catalog"))
		}
	default:
		errs = append(errs, fmt.Errorf("targets.source must be one of: store, sheet, catalog (got %q)", cfg.Targets.Source))
	}

	if cfg.Schedule.Interval < time.Minute {
		errs = append(errs, fmt.Errorf("schedule.interval must be at least 1m (got %s)", cfg.Schedule.Interval))
	}

	if cfg.Notifications.Discord.Enabled && cfg.Notifications.Discord.WebhookURL == "" {
		errs = append(errs, fmt.Errorf("notifications.discord.webhook_url is required when discord is enabled"))
	}
	if cfg.Notifications.Slack.Enabled && cfg.Notifications.Slack.WebhookURL == "" {
		errs = append(errs, fmt.Errorf("notifications.slack.webhook_url is required when slack is enabled"))
	}

	if r := cfg.Telemetry.SampleRatio; r < 0 || r > 1 {
		errs = append(errs, fmt.Errorf("telemetry.sample_ratio must be between 0 and 1 (got %g)", r))
	}

	return errors.Join(errs...)
}

func validateTiers(tiers []string) []error {
	var errs []error
	for _, t := range tiers {
		switch domain.Tier(strings.ToUpper(strings.TrimSpace(t))) {
		case domain.TierGTIN, domain.TierBrandMPN, domain.TierMPN, domain.TierBrandName:
		default:
			errs = append(errs, fmt.Errorf("matching.tiers: unknown tier %q", t))
		}
	}
	return errs
}

func validateScopes(scopes []domain.CompetitorScope) []error {
	var errs []error
	seen := make(map[string]bool, len(scopes))
	for i := range scopes {
		s := &scopes[i]
		if err := s.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("scopes[%d]: %w", i, err))
			continue
		}
		if seen[s.ID] {
			errs = append(errs, fmt.Errorf("scopes[%d]: duplicate scope id %q", i, s.ID))
		}
		seen[s.ID] = true
	}
	return errs
}
