// Package pipeline wires the extraction and analysis stages into the
// document analysis entry points used by the host.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/avolkov/recordlens/internal/evidence"
	"github.com/avolkov/recordlens/internal/extract"
	"github.com/avolkov/recordlens/internal/model"
	"github.com/avolkov/recordlens/internal/ocr"
	"github.com/avolkov/recordlens/internal/reason"
	"github.com/avolkov/recordlens/internal/score"
	"github.com/avolkov/recordlens/internal/timeline"
)

// Analyzer composes all analysis stages. Construct once per host process
// and share; every method is safe for concurrent use since each stage is
// a pure function over its inputs.
type Analyzer struct {
	extraction *extract.Pipeline
	evidence   *evidence.Evaluator
	timeline   *timeline.Engine
	reasoning  *reason.Analyzer
	scoring    *score.Scorer
	logger     *slog.Logger
}

// New builds an analyzer. port may be nil when only Annotate is used;
// runner is the injectable rasterizer (nil for the real binary).
func New(cfg *model.Config, port ocr.Port, runner extract.Runner, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	a := &Analyzer{
		evidence:  evidence.NewEvaluator(cfg.Analysis, logger),
		timeline:  timeline.NewEngine(cfg.Analysis, logger),
		reasoning: reason.NewAnalyzer(reason.DefaultRules(), logger),
		scoring:   score.NewScorer(cfg.Analysis, logger),
		logger:    logger,
	}
	if port != nil {
		a.extraction = extract.NewPipeline(cfg.Extraction, port, runner, logger)
	}
	return a
}

// Annotate runs the analysis stages over already-extracted claims. This
// is the recompute path: identical inputs always produce an identical
// annotation set, which the storage collaborator relies on for its
// diff-before-write contract. Claims are annotated in place.
func (a *Analyzer) Annotate(claims []model.Claim, breakdown *model.ScoreBreakdown, fullText string) model.Annotations {
	var ocrScore *float64
	if breakdown != nil {
		ocrScore = breakdown.OCRScore
	}

	evaluated, flags := a.evidence.Evaluate(claims, ocrScore, fullText)
	events, timelineFlags := a.timeline.Build(evaluated)
	flags = append(flags, timelineFlags...)
	reasoning := a.reasoning.Analyze(evaluated, events)
	quality := a.scoring.Evaluate(evaluated, events, flags, reasoning)

	return model.Annotations{
		Claims:              evaluated,
		Flags:               flags,
		Timeline:            events,
		QualityFindings:     quality.Findings,
		ReasoningFindings:   reasoning,
		MedicalQualityScore: quality.Score,
	}
}

// AnalyzeDocument extracts text from raw document bytes and then runs
// the full analysis. The extraction result rides along in the report so
// the caller can inspect mode and metrics.
func (a *Analyzer) AnalyzeDocument(ctx context.Context, documentID string, document []byte, claims []model.Claim, breakdown *model.ScoreBreakdown, forceEnhanced bool) (*model.Report, error) {
	extraction, err := a.extraction.Extract(ctx, document, forceEnhanced)
	if err != nil {
		return nil, err
	}

	annotations := a.Annotate(claims, breakdown, extraction.Text)
	annotations.OCRMode = extraction.Mode

	a.logger.Info("document analyzed",
		"document_id", documentID,
		"mode", extraction.Mode,
		"score", annotations.MedicalQualityScore,
		"claims", len(annotations.Claims))

	return &model.Report{
		DocumentID:  documentID,
		AnalyzedAt:  time.Now().UTC(),
		Annotations: annotations,
		Extraction:  extraction,
	}, nil
}
