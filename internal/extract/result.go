// Package extract turns raw HTML plus its URL into readable content through
// a strict cascade: primary extractor, web-archive fallback, then two
// heuristic DOM rungs. The cascade never fails to the caller; when every
// rung misses it returns SourceFailed with the raw HTML preserved.
package extract

import "time"

// Source tags identifying which rung produced the readable content.
const (
	SourcePrimary        = "primary"
	SourceArchive        = "archive"
	SourceHeuristicSmart = "heuristic_smart"
	SourceHeuristicBasic = "heuristic_basic"
	SourceFailed         = "failed"
)

// Media kinds as they appear in media markers and Media rows.
const (
	MediaImage = "image"
	MediaVideo = "video"
	MediaAudio = "audio"
)

// MediaRef is a media asset discovered during extraction, already resolved
// to an absolute URL.
type MediaRef struct {
	URL  string
	Type string
}

// Result is the outcome of one extraction cascade run.
type Result struct {
	Readable     string // markdown (primary/archive) or plain text (heuristics)
	ReadableHTML string // HTML rendering of the readable content, primary/archive only
	Content      string // the raw HTML that was seen
	SourceTag    string

	Title        string
	Description  string
	Keywords     string
	Language     string
	CanonicalURL string
	PublishedAt  *time.Time

	MediaList []MediaRef
	Links     []string

	// FilteredHTML is the pruned subtree the heuristic rungs extracted from;
	// the graph builder walks it instead of the full page.
	FilteredHTML string
}

// Readable length gates per rung.
const (
	minReadableDefault = 100
	minReadableSmart   = 200
)
