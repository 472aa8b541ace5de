package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/landscout/landscout/internal/config"
	"github.com/landscout/landscout/internal/fetcher"
)

// availabilityResponse mirrors the wayback availability API payload.
type availabilityResponse struct {
	ArchivedSnapshots struct {
		Closest struct {
			URL       string `json:"url"`
			Available bool   `json:"available"`
		} `json:"closest"`
	} `json:"archived_snapshots"`
}

// LookupSnapshot asks the archive availability API for the closest snapshot
// of pageURL. An empty string means no snapshot.
func LookupSnapshot(ctx context.Context, client *fetcher.Client, cfg *config.ExtractSettings, pageURL string) (string, error) {
	lookupURL := fmt.Sprintf("%s?url=%s", cfg.ArchiveBaseURL, url.QueryEscape(pageURL))

	ctx, cancel := context.WithTimeout(ctx, cfg.ArchiveTimeout)
	defer cancel()

	res := client.Get(ctx, lookupURL)
	if res.Err != nil {
		return "", fmt.Errorf("archive lookup: %w", res.Err)
	}
	if !res.OK() {
		return "", fmt.Errorf("archive lookup: HTTP %d", res.StatusCode)
	}

	var payload availabilityResponse
	if err := json.Unmarshal(res.Body, &payload); err != nil {
		return "", fmt.Errorf("archive lookup: decode: %w", err)
	}
	return payload.ArchivedSnapshots.Closest.URL, nil
}

// FetchSnapshot downloads the snapshot HTML through the archive.
func FetchSnapshot(ctx context.Context, client *fetcher.Client, cfg *config.ExtractSettings, snapshotURL string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.ArchiveTimeout)
	defer cancel()

	res := client.Get(ctx, snapshotURL)
	if res.Err != nil {
		return "", fmt.Errorf("archive fetch: %w", res.Err)
	}
	if !res.OK() {
		return "", fmt.Errorf("archive fetch: HTTP %d", res.StatusCode)
	}
	return string(res.Body), nil
}

func (c *Cascade) lookupSnapshot(ctx context.Context, pageURL string) (string, error) {
	return LookupSnapshot(ctx, c.client, c.cfg, pageURL)
}

func (c *Cascade) fetchSnapshot(ctx context.Context, snapshotURL string) (string, error) {
	return FetchSnapshot(ctx, c.client, c.cfg, snapshotURL)
}
