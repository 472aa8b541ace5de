package store

// schemaSQL is the base DDL. Schema evolution goes through migrations.go;
// never edit a released table definition in place.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS lands (
    id INTEGER PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    description TEXT NOT NULL DEFAULT '',
    languages TEXT NOT NULL DEFAULT 'fr',
    start_urls TEXT NOT NULL DEFAULT '',
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS words (
    id INTEGER PRIMARY KEY,
    language TEXT NOT NULL,
    word TEXT NOT NULL,
    lemma TEXT NOT NULL,
    frequency REAL NOT NULL DEFAULT 0,
    UNIQUE(language, word)
);
CREATE INDEX IF NOT EXISTS idx_words_lemma ON words(language, lemma);

CREATE TABLE IF NOT EXISTS land_dictionaries (
    land_id INTEGER NOT NULL REFERENCES lands(id) ON DELETE CASCADE,
    word_id INTEGER NOT NULL REFERENCES words(id) ON DELETE CASCADE,
    weight REAL NOT NULL DEFAULT 1.0,
    PRIMARY KEY (land_id, word_id)
);

CREATE TABLE IF NOT EXISTS domains (
    id INTEGER PRIMARY KEY,
    land_id INTEGER NOT NULL REFERENCES lands(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    title TEXT,
    description TEXT,
    keywords TEXT,
    language TEXT,
    http_status INTEGER,
    source_method TEXT,
    fetched_at DATETIME,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE(name, land_id)
);

CREATE TABLE IF NOT EXISTS expressions (
    id INTEGER PRIMARY KEY,
    land_id INTEGER NOT NULL REFERENCES lands(id) ON DELETE CASCADE,
    domain_id INTEGER REFERENCES domains(id),
    url TEXT NOT NULL,
    url_hash TEXT NOT NULL,
    depth INTEGER NOT NULL DEFAULT 0,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    crawled_at DATETIME,
    approved_at DATETIME,
    readable_at DATETIME,
    published_at DATETIME,
    last_modified DATETIME,
    http_status INTEGER,
    content_type TEXT,
    content_length INTEGER,
    etag TEXT,
    title TEXT,
    description TEXT,
    keywords TEXT,
    canonical_url TEXT,
    language TEXT,
    content TEXT,
    readable TEXT,
    source_tag TEXT,
    word_count INTEGER,
    reading_time INTEGER,
    relevance REAL,
    quality_score REAL,
    sentiment_score REAL,
    sentiment_label TEXT,
    valid_llm TEXT,
    valid_model TEXT,
    UNIQUE(land_id, url_hash),
    UNIQUE(land_id, url)
);
CREATE INDEX IF NOT EXISTS idx_expressions_crawlable
    ON expressions(land_id, depth, created_at) WHERE approved_at IS NULL;

CREATE TABLE IF NOT EXISTS expression_links (
    source_id INTEGER NOT NULL REFERENCES expressions(id) ON DELETE CASCADE,
    target_id INTEGER NOT NULL REFERENCES expressions(id) ON DELETE CASCADE,
    anchor_text TEXT,
    rel_attr TEXT,
    link_type TEXT NOT NULL DEFAULT 'external',
    PRIMARY KEY (source_id, target_id),
    CHECK (source_id != target_id)
);
CREATE INDEX IF NOT EXISTS idx_links_target ON expression_links(target_id);

CREATE TABLE IF NOT EXISTS media (
    id INTEGER PRIMARY KEY,
    expression_id INTEGER NOT NULL REFERENCES expressions(id) ON DELETE CASCADE,
    url TEXT NOT NULL,
    url_hash TEXT NOT NULL,
    type TEXT NOT NULL DEFAULT 'image',
    width INTEGER,
    height INTEGER,
    format TEXT,
    color_mode TEXT,
    mime_type TEXT,
    file_size INTEGER,
    aspect_ratio REAL,
    has_transparency INTEGER,
    image_hash TEXT,
    dominant_colors TEXT,
    websafe_colors TEXT,
    exif TEXT,
    is_processed INTEGER NOT NULL DEFAULT 0,
    processing_error TEXT,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE(expression_id, url_hash)
);

CREATE TABLE IF NOT EXISTS crawl_jobs (
    id TEXT PRIMARY KEY,
    land_id INTEGER NOT NULL,
    job_type TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'pending',
    parameters TEXT,
    result_data TEXT,
    error_message TEXT,
    channel TEXT NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    started_at DATETIME,
    completed_at DATETIME
);
`
