package config

import (
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Settings is the root configuration for landscout. It is built once at
// startup and threaded through constructors; nothing reads it globally.
type Settings struct {
	Crawler   CrawlerSettings   `mapstructure:"crawler"   yaml:"crawler"`
	Fetcher   FetcherSettings   `mapstructure:"fetcher"   yaml:"fetcher"`
	Extract   ExtractSettings   `mapstructure:"extract"   yaml:"extract"`
	Media     MediaSettings     `mapstructure:"media"     yaml:"media"`
	Browser   BrowserSettings   `mapstructure:"browser"   yaml:"browser"`
	Quality   QualitySettings   `mapstructure:"quality"   yaml:"quality"`
	LLM       LLMSettings       `mapstructure:"llm"       yaml:"llm"`
	Sentiment SentimentSettings `mapstructure:"sentiment" yaml:"sentiment"`
	Domain    DomainSettings    `mapstructure:"domain"    yaml:"domain"`
	Store     StoreSettings     `mapstructure:"store"     yaml:"store"`
	Redis     RedisSettings     `mapstructure:"redis"     yaml:"redis"`
	Logging   LoggingSettings   `mapstructure:"logging"   yaml:"logging"`
}

// CrawlerSettings controls the crawl engine.
type CrawlerSettings struct {
	Concurrency      int           `mapstructure:"concurrency"       yaml:"concurrency"`
	BatchLimit       int           `mapstructure:"batch_limit"       yaml:"batch_limit"`
	ProgressInterval int           `mapstructure:"progress_interval" yaml:"progress_interval"`
	RequestTimeout   time.Duration `mapstructure:"request_timeout"   yaml:"request_timeout"`
	Languages        []string      `mapstructure:"languages"         yaml:"languages"`
}

// FetcherSettings controls the shared HTTP client.
type FetcherSettings struct {
	UserAgent       string        `mapstructure:"user_agent"        yaml:"user_agent"`
	FollowRedirects bool          `mapstructure:"follow_redirects"  yaml:"follow_redirects"`
	MaxRedirects    int           `mapstructure:"max_redirects"     yaml:"max_redirects"`
	MaxBodySize     int64         `mapstructure:"max_body_size"     yaml:"max_body_size"`
	TLSInsecure     bool          `mapstructure:"tls_insecure"      yaml:"tls_insecure"`
	IdleConnTimeout time.Duration `mapstructure:"idle_conn_timeout" yaml:"idle_conn_timeout"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"    yaml:"max_idle_conns"`
}

// ExtractSettings controls the extraction cascade.
type ExtractSettings struct {
	ArchiveBaseURL string        `mapstructure:"archive_base_url" yaml:"archive_base_url"`
	ArchiveTimeout time.Duration `mapstructure:"archive_timeout"  yaml:"archive_timeout"`
	MinReadable    int           `mapstructure:"min_readable"     yaml:"min_readable"`
}

// MediaSettings controls media discovery and analysis.
type MediaSettings struct {
	AnalyzeMedia    bool          `mapstructure:"analyze_media"     yaml:"analyze_media"`
	MaxFileSizeMB   int64         `mapstructure:"max_file_size_mb"  yaml:"max_file_size_mb"`
	NDominantColors int           `mapstructure:"n_dominant_colors" yaml:"n_dominant_colors"`
	ExtractColors   bool          `mapstructure:"extract_colors"    yaml:"extract_colors"`
	FetchTimeout    time.Duration `mapstructure:"fetch_timeout"     yaml:"fetch_timeout"`
}

// BrowserSettings controls the headless browser used for dynamic media.
type BrowserSettings struct {
	Enabled    bool          `mapstructure:"enabled"     yaml:"enabled"`
	MaxRetries int           `mapstructure:"max_retries" yaml:"max_retries"`
	NavTimeout time.Duration `mapstructure:"nav_timeout" yaml:"nav_timeout"`
}

// QualitySettings controls the quality scorer. Weights must sum to 1.
type QualitySettings struct {
	Enabled         bool    `mapstructure:"enabled"          yaml:"enabled"`
	WeightAccess    float64 `mapstructure:"weight_access"    yaml:"weight_access"`
	WeightStructure float64 `mapstructure:"weight_structure" yaml:"weight_structure"`
	WeightRichness  float64 `mapstructure:"weight_richness"  yaml:"weight_richness"`
	WeightCoherence float64 `mapstructure:"weight_coherence" yaml:"weight_coherence"`
	WeightIntegrity float64 `mapstructure:"weight_integrity" yaml:"weight_integrity"`
}

// LLMSettings controls the OpenRouter relevance validator.
type LLMSettings struct {
	Enabled bool          `mapstructure:"enabled"  yaml:"enabled"`
	BaseURL string        `mapstructure:"base_url" yaml:"base_url"`
	APIKey  string        `mapstructure:"api_key"  yaml:"api_key"`
	Model   string        `mapstructure:"model"    yaml:"model"`
	Timeout time.Duration `mapstructure:"timeout"  yaml:"timeout"`
}

// SentimentSettings controls the external sentiment enricher.
type SentimentSettings struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	UseLLM  bool   `mapstructure:"use_llm" yaml:"use_llm"`
	Model   string `mapstructure:"model"   yaml:"model"`
}

// DomainSettings controls the single-domain crawler.
type DomainSettings struct {
	Timeout   time.Duration `mapstructure:"timeout"    yaml:"timeout"`
	UserAgent string        `mapstructure:"user_agent" yaml:"user_agent"`
}

// StoreSettings controls the SQLite store.
type StoreSettings struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// RedisSettings controls the progress broadcaster.
type RedisSettings struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Addr    string `mapstructure:"addr"    yaml:"addr"`
	DB      int    `mapstructure:"db"      yaml:"db"`
}

// LoggingSettings controls logging behavior.
type LoggingSettings struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Default returns a Settings with sensible defaults.
func Default() *Settings {
	return &Settings{
		Crawler: CrawlerSettings{
			Concurrency:      10,
			BatchLimit:       50,
			ProgressInterval: 10,
			RequestTimeout:   30 * time.Second,
			Languages:        []string{"fr", "en"},
		},
		Fetcher: FetcherSettings{
			UserAgent:       "landscout/" + Version,
			FollowRedirects: true,
			MaxRedirects:    10,
			MaxBodySize:     10 * 1024 * 1024, // 10MB
			IdleConnTimeout: 90 * time.Second,
			MaxIdleConns:    100,
		},
		Extract: ExtractSettings{
			ArchiveBaseURL: "http://archive.org/wayback/available",
			ArchiveTimeout: 20 * time.Second,
			MinReadable:    100,
		},
		Media: MediaSettings{
			AnalyzeMedia:    false,
			MaxFileSizeMB:   10,
			NDominantColors: 5,
			ExtractColors:   true,
			FetchTimeout:    30 * time.Second,
		},
		Browser: BrowserSettings{
			Enabled:    false,
			MaxRetries: 2,
			NavTimeout: 20 * time.Second,
		},
		Quality: QualitySettings{
			Enabled:         false,
			WeightAccess:    0.30,
			WeightStructure: 0.15,
			WeightRichness:  0.25,
			WeightCoherence: 0.20,
			WeightIntegrity: 0.10,
		},
		LLM: LLMSettings{
			Enabled: false,
			BaseURL: "https://openrouter.ai/api",
			Timeout: 60 * time.Second,
		},
		Sentiment: SentimentSettings{
			Enabled: false,
		},
		Domain: DomainSettings{
			Timeout:   15 * time.Second,
			UserAgent: "landscout-domain/" + Version,
		},
		Store: StoreSettings{
			Path: "landscout.db",
		},
		Redis: RedisSettings{
			Enabled: false,
			Addr:    "localhost:6379",
		},
		Logging: LoggingSettings{
			Level:  "info",
			Format: "text",
		},
	}
}
