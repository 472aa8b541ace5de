package config

import (
	"fmt"
	"math"
	"net/url"
)

// knownLanguages are the language tags the text pipeline understands.
var knownLanguages = map[string]bool{
	"fr": true, "en": true, "es": true, "de": true, "it": true, "pt": true, "nl": true,
}

// Validate checks the configuration for invalid values. It is called once at
// startup; a failing configuration refuses to boot.
func Validate(cfg *Settings) error {
	if cfg.Crawler.Concurrency < 1 {
		return fmt.Errorf("crawler.concurrency must be >= 1, got %d", cfg.Crawler.Concurrency)
	}
	if cfg.Crawler.Concurrency > 1000 {
		return fmt.Errorf("crawler.concurrency must be <= 1000, got %d", cfg.Crawler.Concurrency)
	}
	if cfg.Crawler.BatchLimit < 1 {
		return fmt.Errorf("crawler.batch_limit must be >= 1, got %d", cfg.Crawler.BatchLimit)
	}
	if cfg.Crawler.RequestTimeout <= 0 {
		return fmt.Errorf("crawler.request_timeout must be > 0")
	}
	if len(cfg.Crawler.Languages) == 0 {
		return fmt.Errorf("crawler.languages must not be empty")
	}
	for _, lang := range cfg.Crawler.Languages {
		if !knownLanguages[lang] {
			return fmt.Errorf("crawler.languages: unknown language tag %q", lang)
		}
	}

	if cfg.Fetcher.MaxBodySize <= 0 {
		return fmt.Errorf("fetcher.max_body_size must be > 0")
	}
	if cfg.Fetcher.MaxRedirects < 0 {
		return fmt.Errorf("fetcher.max_redirects must be >= 0")
	}

	if cfg.Extract.MinReadable < 1 {
		return fmt.Errorf("extract.min_readable must be >= 1, got %d", cfg.Extract.MinReadable)
	}
	if cfg.Extract.ArchiveBaseURL != "" {
		if _, err := url.Parse(cfg.Extract.ArchiveBaseURL); err != nil {
			return fmt.Errorf("extract.archive_base_url: %w", err)
		}
	}

	if cfg.Media.MaxFileSizeMB < 1 {
		return fmt.Errorf("media.max_file_size_mb must be >= 1, got %d", cfg.Media.MaxFileSizeMB)
	}
	if cfg.Media.NDominantColors < 1 || cfg.Media.NDominantColors > 32 {
		return fmt.Errorf("media.n_dominant_colors must be 1-32, got %d", cfg.Media.NDominantColors)
	}

	if cfg.Browser.MaxRetries < 0 {
		return fmt.Errorf("browser.max_retries must be >= 0")
	}

	sum := cfg.Quality.WeightAccess + cfg.Quality.WeightStructure +
		cfg.Quality.WeightRichness + cfg.Quality.WeightCoherence + cfg.Quality.WeightIntegrity
	if math.Abs(sum-1.0) > 1e-6 {
		return fmt.Errorf("quality weights must sum to 1.0, got %.4f", sum)
	}
	for name, w := range map[string]float64{
		"weight_access":    cfg.Quality.WeightAccess,
		"weight_structure": cfg.Quality.WeightStructure,
		"weight_richness":  cfg.Quality.WeightRichness,
		"weight_coherence": cfg.Quality.WeightCoherence,
		"weight_integrity": cfg.Quality.WeightIntegrity,
	} {
		if w < 0 {
			return fmt.Errorf("quality.%s must be >= 0, got %.4f", name, w)
		}
	}

	if cfg.LLM.Enabled {
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("llm.api_key is required when llm.enabled is true")
		}
		if cfg.LLM.Model == "" {
			return fmt.Errorf("llm.model is required when llm.enabled is true")
		}
	}

	if cfg.Domain.Timeout <= 0 {
		return fmt.Errorf("domain.timeout must be > 0")
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be debug/info/warn/error, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" && cfg.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be 'text' or 'json', got %q", cfg.Logging.Format)
	}

	return nil
}

// ValidateURL checks if a URL string is valid for crawling.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}
	return nil
}
