package graph

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/landscout/landscout/internal/config"
	"github.com/landscout/landscout/internal/extract"
)

// dynamicSrcAttrs are probed in order on rendered media elements.
var dynamicSrcAttrs = []string{"src", "data-src", "data-lazy-src", "data-original", "data-url"}

// DynamicScraper drives a headless browser to harvest media from
// JS-rendered pages the static walk cannot see.
type DynamicScraper struct {
	browser *rod.Browser
	cfg     *config.BrowserSettings
	logger  *slog.Logger
}

// NewDynamicScraper launches a headless Chromium and connects to it.
func NewDynamicScraper(cfg *config.Settings, logger *slog.Logger) (*DynamicScraper, error) {
	launchURL, err := launcher.New().
		Headless(true).
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Set("no-sandbox").
		Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(launchURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	return &DynamicScraper{
		browser: browser,
		cfg:     &cfg.Browser,
		logger:  logger.With("component", "dynamic_media"),
	}, nil
}

// Close shuts the browser down.
func (d *DynamicScraper) Close() error {
	if d.browser != nil {
		return d.browser.Close()
	}
	return nil
}

// ScrapeMedia loads pageURL in the browser and collects rendered media
// sources, resolved URLs deduplicated. Navigation retries up to the
// configured budget; a final failure returns an empty list and an error the
// caller logs but never propagates into the crawl.
func (d *DynamicScraper) ScrapeMedia(ctx context.Context, pageURL string) ([]extract.MediaRef, error) {
	var lastErr error
	for attempt := 0; attempt <= d.cfg.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		refs, err := d.scrapeOnce(pageURL)
		if err == nil {
			return refs, nil
		}
		lastErr = err
		d.logger.Debug("dynamic scrape attempt failed",
			"url", pageURL, "attempt", attempt, "error", err)
	}
	return nil, fmt.Errorf("dynamic scrape %s: %w", pageURL, lastErr)
}

func (d *DynamicScraper) scrapeOnce(pageURL string) ([]extract.MediaRef, error) {
	page, err := stealth.Page(d.browser)
	if err != nil {
		page, err = d.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
		if err != nil {
			return nil, fmt.Errorf("open page: %w", err)
		}
	}
	defer page.Close()

	if err := page.Timeout(d.cfg.NavTimeout).Navigate(pageURL); err != nil {
		return nil, fmt.Errorf("navigate: %w", err)
	}
	if err := page.Timeout(d.cfg.NavTimeout).WaitStable(300 * time.Millisecond); err != nil {
		d.logger.Debug("page stability timeout, continuing", "url", pageURL)
	}

	seen := make(map[string]bool)
	var refs []extract.MediaRef
	collect := func(selector, kind string) error {
		elements, err := page.Elements(selector)
		if err != nil {
			return err
		}
		for _, el := range elements {
			for _, attr := range dynamicSrcAttrs {
				value, err := el.Attribute(attr)
				if err != nil || value == nil || strings.TrimSpace(*value) == "" {
					continue
				}
				resolved := Canonicalize(pageURL, *value)
				if resolved == "" || seen[resolved] {
					break
				}
				seen[resolved] = true
				refs = append(refs, extract.MediaRef{URL: resolved, Type: kind})
				break
			}
		}
		return nil
	}

	if err := collect("img", extract.MediaImage); err != nil {
		return nil, err
	}
	if err := collect("video", extract.MediaVideo); err != nil {
		return nil, err
	}
	if err := collect("audio", extract.MediaAudio); err != nil {
		return nil, err
	}
	return refs, nil
}
