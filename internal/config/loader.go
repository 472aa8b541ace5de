package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from file and environment.
// Priority (highest to lowest): env vars > config file > defaults.
func Load(configPath string) (*Settings, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigType("yaml")

	setDefaults(v, cfg)

	v.SetEnvPrefix("LANDSCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("landscout")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".landscout"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configPath != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is okay if not explicitly specified
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// setDefaults registers default values in viper.
func setDefaults(v *viper.Viper, cfg *Settings) {
	v.SetDefault("crawler.concurrency", cfg.Crawler.Concurrency)
	v.SetDefault("crawler.batch_limit", cfg.Crawler.BatchLimit)
	v.SetDefault("crawler.progress_interval", cfg.Crawler.ProgressInterval)
	v.SetDefault("crawler.request_timeout", cfg.Crawler.RequestTimeout)
	v.SetDefault("crawler.languages", cfg.Crawler.Languages)

	v.SetDefault("fetcher.user_agent", cfg.Fetcher.UserAgent)
	v.SetDefault("fetcher.follow_redirects", cfg.Fetcher.FollowRedirects)
	v.SetDefault("fetcher.max_redirects", cfg.Fetcher.MaxRedirects)
	v.SetDefault("fetcher.max_body_size", cfg.Fetcher.MaxBodySize)
	v.SetDefault("fetcher.idle_conn_timeout", cfg.Fetcher.IdleConnTimeout)
	v.SetDefault("fetcher.max_idle_conns", cfg.Fetcher.MaxIdleConns)

	v.SetDefault("extract.archive_base_url", cfg.Extract.ArchiveBaseURL)
	v.SetDefault("extract.archive_timeout", cfg.Extract.ArchiveTimeout)
	v.SetDefault("extract.min_readable", cfg.Extract.MinReadable)

	v.SetDefault("media.analyze_media", cfg.Media.AnalyzeMedia)
	v.SetDefault("media.max_file_size_mb", cfg.Media.MaxFileSizeMB)
	v.SetDefault("media.n_dominant_colors", cfg.Media.NDominantColors)
	v.SetDefault("media.extract_colors", cfg.Media.ExtractColors)
	v.SetDefault("media.fetch_timeout", cfg.Media.FetchTimeout)

	v.SetDefault("browser.enabled", cfg.Browser.Enabled)
	v.SetDefault("browser.max_retries", cfg.Browser.MaxRetries)
	v.SetDefault("browser.nav_timeout", cfg.Browser.NavTimeout)

	v.SetDefault("quality.enabled", cfg.Quality.Enabled)
	v.SetDefault("quality.weight_access", cfg.Quality.WeightAccess)
	v.SetDefault("quality.weight_structure", cfg.Quality.WeightStructure)
	v.SetDefault("quality.weight_richness", cfg.Quality.WeightRichness)
	v.SetDefault("quality.weight_coherence", cfg.Quality.WeightCoherence)
	v.SetDefault("quality.weight_integrity", cfg.Quality.WeightIntegrity)

	v.SetDefault("llm.enabled", cfg.LLM.Enabled)
	v.SetDefault("llm.base_url", cfg.LLM.BaseURL)
	v.SetDefault("llm.timeout", cfg.LLM.Timeout)

	v.SetDefault("sentiment.enabled", cfg.Sentiment.Enabled)
	v.SetDefault("sentiment.use_llm", cfg.Sentiment.UseLLM)

	v.SetDefault("domain.timeout", cfg.Domain.Timeout)
	v.SetDefault("domain.user_agent", cfg.Domain.UserAgent)

	v.SetDefault("store.path", cfg.Store.Path)

	v.SetDefault("redis.enabled", cfg.Redis.Enabled)
	v.SetDefault("redis.addr", cfg.Redis.Addr)
	v.SetDefault("redis.db", cfg.Redis.DB)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
}
