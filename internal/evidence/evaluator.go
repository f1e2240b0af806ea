// Package evidence annotates extracted claims with evidence-quality
// tiers, assertion types, and supporting/missing-evidence notes.
//
// Quality only ever moves toward low within one pass. Re-running the
// evaluator on its own output never raises a tier, which keeps the
// recompute-and-diff persistence contract stable.
package evidence

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/avolkov/recordlens/internal/model"
)

// Evaluator applies the per-claim downgrade rules and emits the
// document-level evidence flags.
type Evaluator struct {
	cfg    model.AnalysisConfig
	logger *slog.Logger
}

func NewEvaluator(cfg model.AnalysisConfig, logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{cfg: cfg, logger: logger}
}

// Evaluate annotates every claim in place and returns the annotated list
// plus aggregate flags. ocrScore is the overall extraction confidence
// when known; fullText, when supplied, is used to backfill missing
// source snippets.
func (e *Evaluator) Evaluate(claims []model.Claim, ocrScore *float64, fullText string) ([]model.Claim, []model.Flag) {
	lowCount := 0
	for i := range claims {
		e.evaluateClaim(&claims[i], ocrScore, fullText)
		if claims[i].EvidenceQuality == model.QualityLow {
			lowCount++
		}
	}

	var flags []model.Flag
	if lowCount > 0 {
		severity := model.SeverityInfo
		if float64(lowCount) > e.cfg.WeakEvidenceRatio*float64(len(claims)) {
			severity = model.SeverityWarning
		}
		flags = append(flags, model.NewFinding(
			model.FlagClaimWeakEvidence,
			fmt.Sprintf("%d of %d claims have low evidence quality", lowCount, len(claims)),
			severity,
		))
	}
	if ocrScore != nil && *ocrScore < e.cfg.LowOCRSectionScore {
		flags = append(flags, model.NewFinding(
			model.FlagOCRLowConfidenceSection,
			fmt.Sprintf("overall text recognition confidence %.2f is below %.2f", *ocrScore, e.cfg.LowOCRSectionScore),
			model.SeverityWarning,
		))
	}

	e.logger.Debug("evidence evaluation complete", "claims", len(claims), "low_quality", lowCount, "flags", len(flags))
	return claims, flags
}

// evaluateClaim applies the independent, additive downgrades. Each
// trigger moves quality one tier toward low; the incoming tier acts as
// a floor so a previous pass's downgrades survive re-evaluation.
func (e *Evaluator) evaluateClaim(c *model.Claim, ocrScore *float64, fullText string) {
	e.backfillSnippet(c, fullText)

	quality := model.QualityHigh
	var notes, missing []string
	var basis []string

	if _, ok := model.ResolveClaimDate(c); ok {
		basis = append(basis, "dated")
	} else {
		quality = quality.Downgrade()
		notes = append(notes, "no parseable date")
		missing = append(missing, "date")
	}

	if e.traceable(c) {
		basis = append(basis, "traceable to source")
	} else {
		quality = quality.Downgrade()
		notes = append(notes, "no source reference")
		missing = append(missing, "source reference")
	}

	if ocrScore != nil && *ocrScore < e.cfg.MinOCRConfidence {
		quality = quality.Downgrade()
		notes = append(notes, fmt.Sprintf("recognition confidence %.2f below %.2f", *ocrScore, e.cfg.MinOCRConfidence))
	}

	if words := c.WordCount(); words < 3 {
		quality = quality.Downgrade()
		notes = append(notes, "claim text under three words")
		if words < 2 {
			// A single word carries even less context and drops the
			// tier a second time.
			quality = quality.Downgrade()
		}
	}

	quality = quality.Worse(c.EvidenceQuality)
	c.EvidenceQuality = quality
	c.EvidenceNotes = strings.Join(notes, "; ")
	c.Basis = basis
	c.MissingEvidence = missing

	c.Confidence = e.adjustConfidence(c.Confidence, quality)
	c.AssertionType = assertionType(quality, e.traceable(c))
	c.Reliability = &model.Reliability{
		Level:     string(quality),
		Rationale: reliabilityRationale(quality, notes),
	}
	if c.AssertionType == model.AssertionPossibility {
		c.Caution = model.DefaultCaution
	}
}

// traceable applies the configured snippet-length floor on top of the
// claim's own traceability rule.
func (e *Evaluator) traceable(c *model.Claim) bool {
	if c.Source == nil {
		return false
	}
	if c.Source.Page > 0 || len(c.Source.LineRange) == 2 {
		return true
	}
	return len(strings.TrimSpace(c.Source.Snippet)) > e.cfg.MinTraceableSnippet
}

func (e *Evaluator) adjustConfidence(prior float64, quality model.EvidenceQuality) float64 {
	if prior == 0 {
		prior = e.cfg.DefaultConfidence
	}
	penalty := 0.0
	switch quality {
	case model.QualityLow:
		penalty = 0.4
	case model.QualityMedium:
		penalty = 0.2
	}
	adjusted := prior - penalty
	if adjusted < e.cfg.MinAdjustedConfidence {
		adjusted = e.cfg.MinAdjustedConfidence
	}
	return adjusted
}

// backfillSnippet locates the claim value in the full extracted text and
// attaches a fixed-size window as the snippet when the source has none.
func (e *Evaluator) backfillSnippet(c *model.Claim, fullText string) {
	if fullText == "" || c.Value == "" {
		return
	}
	if c.Source != nil && c.Source.Snippet != "" {
		return
	}

	needle := c.Value
	if len(needle) > e.cfg.SnippetSearchPrefix {
		needle = needle[:e.cfg.SnippetSearchPrefix]
	}
	idx := strings.Index(fullText, needle)
	if idx < 0 {
		return
	}

	end := idx + e.cfg.SnippetWindow
	if end > len(fullText) {
		end = len(fullText)
	}
	if c.Source == nil {
		c.Source = &model.Source{}
	}
	c.Source.Snippet = fullText[idx:end]
}

func assertionType(quality model.EvidenceQuality, traceable bool) model.AssertionType {
	switch {
	case quality == model.QualityHigh && traceable:
		return model.AssertionFact
	case quality == model.QualityMedium:
		return model.AssertionInterpretation
	default:
		return model.AssertionPossibility
	}
}

func reliabilityRationale(quality model.EvidenceQuality, notes []string) string {
	if len(notes) == 0 {
		return "dated and traceable claim with no downgrade triggers"
	}
	return fmt.Sprintf("%s evidence quality: %s", quality, strings.Join(notes, "; "))
}
