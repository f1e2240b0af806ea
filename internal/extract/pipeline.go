package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/avolkov/recordlens/internal/model"
	"github.com/avolkov/recordlens/internal/ocr"
	"github.com/avolkov/recordlens/internal/worker"
)

// pageBreak separates recognized pages in the reassembled text
const pageBreak = "\n\f\n"

// Pipeline composes strategy selection, local parsing, page rendering,
// preprocessing, and the OCR port into the dual-pass extraction protocol.
// It holds no mutable state across invocations.
type Pipeline struct {
	cfg      model.ExtractionConfig
	selector *StrategySelector
	metrics  *MetricsScorer
	pre      *Preprocessor
	renderer *PageRenderer
	port     ocr.Port
	logger   *slog.Logger
}

// NewPipeline wires the pipeline from host-provided ports. The runner is
// injectable for tests; nil means the real rasterizer binary.
func NewPipeline(cfg model.ExtractionConfig, port ocr.Port, runner Runner, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		cfg:      cfg,
		selector: NewStrategySelector(cfg),
		metrics:  NewMetricsScorer(cfg),
		pre:      NewPreprocessor(cfg.DeskewMaxDeg, cfg.DeskewStepDeg),
		renderer: NewPageRenderer(runner, cfg.RenderDPI, cfg.MaxOCRPages, logger),
		port:     port,
		logger:   logger,
	}
}

// Extract runs the dual-pass decision protocol over raw document bytes.
func (p *Pipeline) Extract(ctx context.Context, document []byte, forceEnhanced bool) (*model.ExtractionResult, error) {
	// 1. Cheap local parse. A corrupt document is not fatal here; it
	// just means zero local text, which forces the enhanced path.
	local := p.parseLocal(document)

	// 2. Strategy decision before any heavy work.
	mode, reason := p.selector.Select(local.Text, local.PageCount, int64(len(document)), forceEnhanced)
	p.logger.Debug("extraction strategy selected", "mode", mode, "reason", reason, "pages", local.PageCount)

	// 3. Base short-circuit: plausible local text means no OCR call at all.
	if mode == model.ModeBase && len(local.Text) > p.cfg.ShortCircuitChars {
		metrics := p.metrics.Score(local.Text)
		return &model.ExtractionResult{
			Text:       local.Text,
			Mode:       model.ModeBase,
			Metrics:    metrics,
			PageCount:  local.PageCount,
			Comparison: model.Comparison{BaseScore: metrics.Score},
		}, nil
	}

	// 4. Dual pass: recognize the raw document and the preprocessed
	// page renders, then score both outputs.
	baseText, baseErr := p.basePass(ctx, document)
	if errors.Is(baseErr, ocr.ErrConfigMissing) {
		return nil, baseErr
	}

	enhText, enhErr := p.enhancedPass(ctx, document)
	if errors.Is(enhErr, ocr.ErrConfigMissing) {
		return nil, enhErr
	}

	var baseScore, enhScore model.ExtractionMetrics
	if baseErr == nil {
		baseScore = p.metrics.Score(baseText)
	}
	if enhErr == nil {
		enhScore = p.metrics.Score(enhText)
	}

	pageCount := local.PageCount
	if pageCount == 0 {
		pageCount = 1
	}

	// 5. Selection: higher metrics score wins, ties favor enhanced.
	if enhErr == nil && (baseErr != nil || enhScore.Score >= baseScore.Score) {
		score := enhScore.Score
		return &model.ExtractionResult{
			Text:      enhText,
			Mode:      model.ModeEnhanced,
			Metrics:   enhScore,
			PageCount: pageCount,
			Comparison: model.Comparison{
				BaseScore:     baseScore.Score,
				EnhancedScore: &score,
			},
		}, nil
	}

	comparison := model.Comparison{BaseScore: baseScore.Score}
	if enhErr == nil {
		score := enhScore.Score
		comparison.EnhancedScore = &score
	}

	if baseErr == nil && baseText != "" {
		return &model.ExtractionResult{
			Text:       baseText,
			Mode:       model.ModeBase,
			Metrics:    baseScore,
			PageCount:  pageCount,
			Comparison: comparison,
		}, nil
	}

	// Both recognition passes came up short; non-empty local text is
	// still better than nothing.
	if local.Text != "" {
		metrics := p.metrics.Score(local.Text)
		comparison.BaseScore = metrics.Score
		return &model.ExtractionResult{
			Text:       local.Text,
			Mode:       model.ModeBase,
			Metrics:    metrics,
			PageCount:  local.PageCount,
			Comparison: comparison,
		}, nil
	}

	return &model.ExtractionResult{
		Text:       baseText,
		Mode:       model.ModeBase,
		Metrics:    baseScore,
		PageCount:  pageCount,
		Comparison: comparison,
	}, nil
}

// parseLocal extracts embedded text without any network call
func (p *Pipeline) parseLocal(document []byte) *ParsedDocument {
	var (
		doc *ParsedDocument
		err error
	)
	switch sniffFormat(document) {
	case "pdf":
		doc, err = parsePDF(document)
	case "html":
		doc, err = parseHTML(document)
	default:
		doc, err = parseText(document)
	}
	if err != nil {
		p.logger.Debug("local parse failed", "error", err)
		return &ParsedDocument{}
	}
	return doc
}

// basePass sends the raw document straight to the recognition service
func (p *Pipeline) basePass(ctx context.Context, document []byte) (string, error) {
	text, err := p.port.Analyze(ctx, document)
	if err != nil {
		return "", fmt.Errorf("base pass: %w", err)
	}
	return text, nil
}

// enhancedPass renders pages, preprocesses each, and recognizes them
// individually. Pages are independent, so the work is spread over a
// bounded pool and reassembled by page index.
func (p *Pipeline) enhancedPass(ctx context.Context, document []byte) (string, error) {
	pages, err := p.renderer.Render(ctx, document)
	if err != nil {
		return "", fmt.Errorf("enhanced pass: %w", err)
	}

	texts, err := worker.Map(ctx, len(pages), p.cfg.PageWorkers, func(ctx context.Context, i int) (string, error) {
		cleaned := p.pre.Process(pages[i])
		encoded, err := EncodePNG(cleaned)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i+1, err)
		}
		text, err := p.port.Analyze(ctx, encoded)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i+1, err)
		}
		return text, nil
	})
	if err != nil {
		return "", fmt.Errorf("enhanced pass: %w", err)
	}

	joined := strings.TrimSpace(strings.Join(texts, pageBreak))
	if joined == "" {
		return "", fmt.Errorf("enhanced pass: %w", ocr.ErrEmpty)
	}
	return joined, nil
}
