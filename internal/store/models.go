package store

import "time"

// Land is a user-scoped research topic: seed URLs, language tags, and a
// weighted lemma dictionary materialized in land_dictionaries.
type Land struct {
	ID          int64
	Name        string
	Description string
	Languages   []string
	StartURLs   []string
	CreatedAt   time.Time
}

// Word is a `(language, word)` entry shared across lands. Lemma is the
// normalized form relevance matches against.
type Word struct {
	ID        int64
	Language  string
	Word      string
	Lemma     string
	Frequency float64
}

// DictionaryEntry is a land_dictionaries row joined with its word.
type DictionaryEntry struct {
	WordID int64
	Word   string
	Lemma  string
	Weight float64
}

// Domain is a netloc-scoped aggregate under a land.
type Domain struct {
	ID           int64
	LandID       int64
	Name         string
	Title        *string
	Description  *string
	Keywords     *string
	Language     *string
	HTTPStatus   *int
	SourceMethod *string
	FetchedAt    *time.Time
	CreatedAt    time.Time
}

// Expression is a URL under a land, identified by (land_id, url_hash).
type Expression struct {
	ID       int64
	LandID   int64
	DomainID *int64
	URL      string
	URLHash  string
	Depth    int

	CreatedAt    time.Time
	CrawledAt    *time.Time
	ApprovedAt   *time.Time
	ReadableAt   *time.Time
	PublishedAt  *time.Time
	LastModified *time.Time

	HTTPStatus    *int
	ContentType   *string
	ContentLength *int64
	Etag          *string

	Title        *string
	Description  *string
	Keywords     *string
	CanonicalURL *string
	Language     *string
	Content      *string
	Readable     *string
	SourceTag    *string

	WordCount   *int
	ReadingTime *int
	Relevance   *float64
	QualityScore *float64

	SentimentScore *float64
	SentimentLabel *string

	// ValidLLM carries the external validator verdict verbatim: "oui", "non",
	// or nil when not validated.
	ValidLLM   *string
	ValidModel *string
}

// Link types for expression_links rows.
const (
	LinkInternal = "internal"
	LinkExternal = "external"
)

// ExpressionLink is a directed edge between two expressions of the same land.
type ExpressionLink struct {
	SourceID   int64
	TargetID   int64
	AnchorText *string
	RelAttr    *string
	LinkType   string
}

// Media types.
const (
	MediaImage = "image"
	MediaVideo = "video"
	MediaAudio = "audio"
)

// Media is a media asset discovered on an expression, identified by
// (expression_id, url_hash). Analysis fields stay nil until processed.
type Media struct {
	ID           int64
	ExpressionID int64
	URL          string
	URLHash      string
	Type         string

	Width           *int
	Height          *int
	Format          *string
	ColorMode       *string
	MimeType        *string
	FileSize        *int64
	AspectRatio     *float64
	HasTransparency *bool
	ImageHash       *string
	DominantColors  *string // JSON [{rgb, percentage}]
	WebsafeColors   *string // JSON {hex: percentage}
	EXIF            *string // JSON

	IsProcessed     bool
	ProcessingError *string
	CreatedAt       time.Time
}

// Job statuses.
const (
	JobPending   = "pending"
	JobRunning   = "running"
	JobCompleted = "completed"
	JobFailed    = "failed"
	JobCancelled = "cancelled"
)

// CrawlJob is an opaque unit of background work with a progress channel.
type CrawlJob struct {
	ID           string
	LandID       int64
	JobType      string
	Status       string
	Parameters   *string
	ResultData   *string
	ErrorMessage *string
	Channel      string
	CreatedAt    time.Time
	StartedAt    *time.Time
	CompletedAt  *time.Time
}
