package quality

import (
	"strings"
	"testing"
	"time"

	"github.com/landscout/landscout/internal/config"
)

func ptr[T any](v T) *T { return &v }

func testScorer() *Scorer {
	return New(config.Default())
}

// perfectExpression mirrors the well-formed document every block rewards.
func perfectExpression() *ExpressionView {
	now := time.Now()
	published := now.AddDate(0, -1, 0)
	return &ExpressionView{
		HTTPStatus:    ptr(200),
		ContentType:   ptr("text/html; charset=utf-8"),
		CrawledAt:     &now,
		Title:         ptr("Un article de fond"),
		Description:   ptr("Une description détaillée qui dépasse vingt caractères."),
		Keywords:      ptr("climat, énergie"),
		CanonicalURL:  ptr("https://example.com/article"),
		WordCount:     ptr(1500),
		ContentLength: ptr(int64(12000)),
		ReadingTime:   ptr(7),
		Language:      ptr("fr"),
		Relevance:     ptr(4.5),
		PublishedAt:   &published,
		ValidLLM:      ptr("oui"),
		Readable:      ptr(strings.Repeat("contenu lisible ", 125)), // 2000 chars
		ApprovedAt:    &now,
	}
}

func TestComputePerfectDocument(t *testing.T) {
	res := testScorer().Compute(perfectExpression(), []string{"fr", "en"})
	if res.Score < 0.85 {
		t.Errorf("score = %v, want ≥ 0.85 (%s)", res.Score, res.Reason)
	}
	if res.Category != CategoryExcellent {
		t.Errorf("category = %q, want %q", res.Category, CategoryExcellent)
	}
	if len(res.Flags) != 0 {
		t.Errorf("flags = %v, want none", res.Flags)
	}
}

func TestComputeClientErrorGates(t *testing.T) {
	expr := perfectExpression()
	expr.HTTPStatus = ptr(404)
	res := testScorer().Compute(expr, []string{"fr"})
	if res.Score != 0 {
		t.Errorf("score = %v, want 0 for 404", res.Score)
	}
	if res.Category != CategoryVeryWeak {
		t.Errorf("category = %q", res.Category)
	}
}

func TestComputePDFGates(t *testing.T) {
	expr := perfectExpression()
	expr.ContentType = ptr("application/pdf")
	res := testScorer().Compute(expr, []string{"fr"})
	if res.Score != 0 {
		t.Errorf("score = %v, want 0 for pdf", res.Score)
	}
	if !hasFlag(res.Flags, "non_html_pdf") {
		t.Errorf("flags = %v, want non_html_pdf", res.Flags)
	}
}

func TestComputeNotCrawledGates(t *testing.T) {
	expr := perfectExpression()
	expr.CrawledAt = nil
	if res := testScorer().Compute(expr, []string{"fr"}); res.Score != 0 {
		t.Errorf("score = %v, want 0 without crawled_at", res.Score)
	}
}

func TestComputeRedirectFlag(t *testing.T) {
	expr := perfectExpression()
	expr.HTTPStatus = ptr(301)
	res := testScorer().Compute(expr, []string{"fr"})
	if !hasFlag(res.Flags, "redirect") {
		t.Errorf("flags = %v, want redirect", res.Flags)
	}
	if res.Score <= 0 || res.Score >= 1 {
		t.Errorf("score = %v, want inside (0,1)", res.Score)
	}
}

func TestComputeWrongLanguage(t *testing.T) {
	expr := perfectExpression()
	expr.Language = ptr("de")
	res := testScorer().Compute(expr, []string{"fr", "en"})
	if !hasFlag(res.Flags, "wrong_language") {
		t.Errorf("flags = %v, want wrong_language", res.Flags)
	}
}

func TestComputeLLMRejected(t *testing.T) {
	expr := perfectExpression()
	expr.ValidLLM = ptr("non")
	res := testScorer().Compute(expr, []string{"fr"})
	if !hasFlag(res.Flags, "llm_rejected") {
		t.Errorf("flags = %v, want llm_rejected", res.Flags)
	}
}

func TestComputeShortContentFlags(t *testing.T) {
	expr := perfectExpression()
	expr.WordCount = ptr(50)
	res := testScorer().Compute(expr, []string{"fr"})
	if !hasFlag(res.Flags, "very_short_content") {
		t.Errorf("flags = %v, want very_short_content", res.Flags)
	}

	expr.WordCount = ptr(100)
	res = testScorer().Compute(expr, []string{"fr"})
	if !hasFlag(res.Flags, "short_content") {
		t.Errorf("flags = %v, want short_content", res.Flags)
	}
}

func TestComputeFutureDate(t *testing.T) {
	expr := perfectExpression()
	future := time.Now().AddDate(1, 0, 0)
	expr.PublishedAt = &future
	res := testScorer().Compute(expr, []string{"fr"})
	if !hasFlag(res.Flags, "future_date") {
		t.Errorf("flags = %v, want future_date", res.Flags)
	}
}

func TestComputeBounds(t *testing.T) {
	empty := &ExpressionView{
		HTTPStatus: ptr(200),
		CrawledAt:  ptr(time.Now()),
	}
	res := testScorer().Compute(empty, nil)
	if res.Score < 0 || res.Score > 1 {
		t.Errorf("score = %v, out of [0,1]", res.Score)
	}
}

func TestCategorize(t *testing.T) {
	cases := map[float64]string{
		0.85: CategoryExcellent,
		0.65: CategoryGood,
		0.45: CategoryAverage,
		0.25: CategoryWeak,
		0.05: CategoryVeryWeak,
	}
	for score, want := range cases {
		if got := categorize(score); got != want {
			t.Errorf("categorize(%v) = %q, want %q", score, got, want)
		}
	}
}

func hasFlag(flags []string, want string) bool {
	for _, f := range flags {
		if f == want {
			return true
		}
	}
	return false
}
