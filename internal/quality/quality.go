// Package quality computes a deterministic [0,1] score for a crawled
// expression from five weighted blocks: access, structure, richness,
// coherence and integrity. Pure function of its inputs.
package quality

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/landscout/landscout/internal/config"
)

// ExpressionView is the read-only slice of an expression the scorer needs.
// Pointer fields distinguish "missing" from zero values.
type ExpressionView struct {
	HTTPStatus    *int
	ContentType   *string
	CrawledAt     *time.Time
	Title         *string
	Description   *string
	Keywords      *string
	CanonicalURL  *string
	WordCount     *int
	ContentLength *int64
	ReadingTime   *int // minutes
	Language      *string
	Relevance     *float64
	PublishedAt   *time.Time
	ValidLLM      *string
	Readable      *string
	ApprovedAt    *time.Time
}

// Result is the scorer output.
type Result struct {
	Score    float64
	Category string
	Flags    []string
	Reason   string
	Details  map[string]float64
}

// Categories, thresholds descending.
const (
	CategoryExcellent = "Excellent"
	CategoryGood      = "Bon"
	CategoryAverage   = "Moyen"
	CategoryWeak      = "Faible"
	CategoryVeryWeak  = "Très faible"
)

// Scorer carries the block weights. Weight validation happens at boot.
type Scorer struct {
	weights config.QualitySettings
}

// New builds a scorer from the quality settings.
func New(cfg *config.Settings) *Scorer {
	return &Scorer{weights: cfg.Quality}
}

// Compute scores one expression against its land's accepted languages.
func (s *Scorer) Compute(expr *ExpressionView, landLanguages []string) *Result {
	res := &Result{Details: make(map[string]float64)}

	access, fatal := s.accessScore(expr, res)
	res.Details["access"] = access
	if fatal {
		res.Score = 0
		res.Category = categorize(0)
		return res
	}

	structure := s.structureScore(expr)
	richness := s.richnessScore(expr, res)
	coherence := s.coherenceScore(expr, landLanguages, res)
	integrity := s.integrityScore(expr, res)

	res.Details["structure"] = structure
	res.Details["richness"] = richness
	res.Details["coherence"] = coherence
	res.Details["integrity"] = integrity

	score := access*s.weights.WeightAccess +
		structure*s.weights.WeightStructure +
		richness*s.weights.WeightRichness +
		coherence*s.weights.WeightCoherence +
		integrity*s.weights.WeightIntegrity
	res.Score = clamp01(math.Round(score*10000) / 10000)
	res.Category = categorize(res.Score)
	res.Reason = fmt.Sprintf("access=%.2f structure=%.2f richness=%.2f coherence=%.2f integrity=%.2f",
		access, structure, richness, coherence, integrity)
	return res
}

// accessScore is the gate block; fatal means the whole score collapses to 0.
func (s *Scorer) accessScore(expr *ExpressionView, res *Result) (score float64, fatal bool) {
	if expr.HTTPStatus == nil || expr.CrawledAt == nil {
		res.Reason = "not crawled"
		return 0, true
	}

	status := *expr.HTTPStatus
	switch {
	case status >= 200 && status < 300:
		score = 1.0
	case status >= 300 && status < 400:
		score = 0.5
		res.Flags = append(res.Flags, "redirect")
	default:
		res.Reason = fmt.Sprintf("http status %d", status)
		return 0, true
	}

	if expr.ContentType != nil {
		ct := strings.ToLower(*expr.ContentType)
		if strings.Contains(ct, "application/pdf") {
			res.Flags = append(res.Flags, "non_html_pdf")
			res.Reason = "pdf content"
			return 0, true
		}
		if !strings.Contains(ct, "html") && !strings.Contains(ct, "xml") {
			score *= 0.3
		}
	}
	return score, false
}

func (s *Scorer) structureScore(expr *ExpressionView) float64 {
	var score float64
	if strPresent(expr.Title) {
		score += 0.4
	}
	if expr.Description != nil && len(*expr.Description) > 20 {
		score += 0.3
	}
	if strPresent(expr.Keywords) {
		score += 0.15
	}
	if strPresent(expr.CanonicalURL) {
		score += 0.15
	}
	return score
}

// richnessScore blends word count, text/HTML ratio and reading time with
// sub-weights 0.5/0.3/0.2. Missing inputs contribute a neutral 0.5.
func (s *Scorer) richnessScore(expr *ExpressionView, res *Result) float64 {
	wordScore := 0.5
	if expr.WordCount != nil {
		wc := float64(*expr.WordCount)
		switch {
		case wc < 80:
			wordScore = 0.1
			res.Flags = append(res.Flags, "very_short_content")
		case wc < 150:
			wordScore = 0.3
			res.Flags = append(res.Flags, "short_content")
		case wc <= 5000:
			d := wc - 1500
			wordScore = math.Exp(-(d * d) / (2 * 1500 * 1500))
		default:
			// Linear decay from 0.8 toward a floor of 0.5.
			wordScore = math.Max(0.5, 0.8-(wc-5000)/20000)
		}
	}

	ratioScore := 0.5
	if expr.Readable != nil && expr.ContentLength != nil && *expr.ContentLength > 0 {
		ratio := float64(len(*expr.Readable)) / float64(*expr.ContentLength)
		switch {
		case ratio < 0.05:
			ratioScore = 0.2
			res.Flags = append(res.Flags, "poor_text_ratio")
		case ratio < 0.1:
			ratioScore = 0.5
		case ratio <= 0.3:
			ratioScore = 1.0
		default:
			ratioScore = 0.9
		}
	}

	timeScore := 0.5
	if expr.ReadingTime != nil {
		seconds := float64(*expr.ReadingTime) * 60
		switch {
		case seconds < 15:
			timeScore = 0.2
		case seconds < 30:
			timeScore = 0.5
		case seconds <= 15*60:
			timeScore = 1.0
		case seconds <= 25*60:
			timeScore = 0.8
		default:
			timeScore = 0.3
		}
	}

	return wordScore*0.5 + ratioScore*0.3 + timeScore*0.2
}

// coherenceScore blends language fit, normalized relevance and freshness
// with sub-weights 0.4/0.4/0.2.
func (s *Scorer) coherenceScore(expr *ExpressionView, landLanguages []string, res *Result) float64 {
	langScore := 0.5
	if expr.Language != nil && *expr.Language != "" {
		langScore = 0
		for _, lang := range landLanguages {
			if strings.EqualFold(lang, *expr.Language) {
				langScore = 1.0
				break
			}
		}
		if langScore == 0 {
			res.Flags = append(res.Flags, "wrong_language")
		}
	}

	relScore := 0.0
	if expr.Relevance != nil {
		relScore = math.Min(*expr.Relevance/5, 1.0)
	}
	if relScore < 0.5 {
		res.Flags = append(res.Flags, "low_relevance")
	}

	freshScore := 0.5
	if expr.PublishedAt != nil {
		age := time.Since(*expr.PublishedAt)
		switch {
		case age < 0:
			freshScore = 0
			res.Flags = append(res.Flags, "future_date")
		case age < 365*24*time.Hour:
			freshScore = 1.0
		case age < 2*365*24*time.Hour:
			freshScore = 0.9
		case age < 5*365*24*time.Hour:
			freshScore = 0.7
		default:
			freshScore = 0.5
			res.Flags = append(res.Flags, "old_content")
		}
	}

	return langScore*0.4 + relScore*0.4 + freshScore*0.2
}

// integrityScore blends the LLM verdict (0.4), readable presence (0.4) and
// approval (0.2).
func (s *Scorer) integrityScore(expr *ExpressionView, res *Result) float64 {
	var score float64

	switch {
	case expr.ValidLLM == nil:
		score += 0.2
	case *expr.ValidLLM == "oui":
		score += 0.4
	case *expr.ValidLLM == "non":
		res.Flags = append(res.Flags, "llm_rejected")
	default:
		score += 0.2
	}

	switch {
	case expr.Readable == nil || *expr.Readable == "":
		res.Flags = append(res.Flags, "no_readable")
	case len(*expr.Readable) > 100:
		score += 0.4
	default:
		score += 0.2
		res.Flags = append(res.Flags, "short_readable")
	}

	if expr.ApprovedAt != nil {
		score += 0.2
	}
	return score
}

func categorize(score float64) string {
	switch {
	case score >= 0.8:
		return CategoryExcellent
	case score >= 0.6:
		return CategoryGood
	case score >= 0.4:
		return CategoryAverage
	case score >= 0.2:
		return CategoryWeak
	default:
		return CategoryVeryWeak
	}
}

func strPresent(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
