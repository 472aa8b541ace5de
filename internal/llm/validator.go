// Package llm holds the external relevance validator. The crawl engine
// treats any validator failure as "validation skipped": relevance stays
// untouched and the verdict columns stay null.
package llm

import (
	"context"

	"github.com/landscout/landscout/internal/store"
)

// Verdict is the validator outcome for one expression.
type Verdict struct {
	IsRelevant       bool
	ModelUsed        string
	PromptTokens     int
	CompletionTokens int
}

// Validator judges whether an expression is on-topic for its land.
type Validator interface {
	Validate(ctx context.Context, expr *store.Expression, land *store.Land) (*Verdict, error)
}
