package extract

import (
	"fmt"

	"github.com/avolkov/recordlens/internal/model"
)

// StrategySelector decides between base and enhanced extraction before
// any heavy work runs, from a cheap local text sample alone.
type StrategySelector struct {
	cfg model.ExtractionConfig
}

// NewStrategySelector creates a selector with the given thresholds
func NewStrategySelector(cfg model.ExtractionConfig) *StrategySelector {
	return &StrategySelector{cfg: cfg}
}

// Select picks the extraction mode. Enhanced wins if forced, if the local
// text density falls below the per-page minimum, if the sample is full of
// garbage characters, or if the file is too large to be a digital export.
func (s *StrategySelector) Select(sample string, pageCount int, byteSize int64, forceEnhanced bool) (model.ExtractionMode, string) {
	if forceEnhanced {
		return model.ModeEnhanced, "enhanced forced by caller"
	}

	pages := pageCount
	if pages < 1 {
		pages = 1
	}
	density := float64(len(sample)) / float64(pages)
	if density < s.cfg.MinCharsPerPage {
		return model.ModeEnhanced, fmt.Sprintf("text density %.0f chars/page below %.0f", density, s.cfg.MinCharsPerPage)
	}

	if ratio := nonPrintableRatio(sample); ratio > s.cfg.MaxWeirdCharRatio {
		return model.ModeEnhanced, fmt.Sprintf("weird character ratio %.2f exceeds %.2f", ratio, s.cfg.MaxWeirdCharRatio)
	}

	if byteSize > s.cfg.MaxBaseFileBytes {
		return model.ModeEnhanced, fmt.Sprintf("file size %d exceeds %d bytes", byteSize, s.cfg.MaxBaseFileBytes)
	}

	return model.ModeBase, "local text looks plausible"
}
