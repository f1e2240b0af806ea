// Package extract turns a medical-legal document into plain text: local
// parsing for digital documents, rendered-and-recognized pages for scans,
// and a metrics-driven choice between the two.
package extract

import (
	"fmt"
	"strings"

	"github.com/avolkov/recordlens/internal/model"
)

// MetricsScorer scores raw extracted text for plausibility. The score
// starts at 1.0 and loses a fixed penalty per defect; every triggered
// penalty appends a human-readable reason.
type MetricsScorer struct {
	cfg model.ExtractionConfig
}

// NewMetricsScorer creates a scorer with the given thresholds
func NewMetricsScorer(cfg model.ExtractionConfig) *MetricsScorer {
	return &MetricsScorer{cfg: cfg}
}

// Score rates the text in [0, 1]
func (s *MetricsScorer) Score(text string) model.ExtractionMetrics {
	score := 1.0
	var reasons []string

	if ratio := nonPrintableRatio(text); ratio > s.cfg.MaxNonPrintableRatio {
		score -= 0.3
		reasons = append(reasons, fmt.Sprintf("non-printable character ratio %.2f exceeds %.2f", ratio, s.cfg.MaxNonPrintableRatio))
	}
	if ratio := shortLineRatio(text); ratio > s.cfg.MaxShortLineRatio {
		score -= 0.2
		reasons = append(reasons, fmt.Sprintf("short-line ratio %.2f exceeds %.2f", ratio, s.cfg.MaxShortLineRatio))
	}
	if ratio := digitRatio(text); ratio > s.cfg.MaxDigitRatio {
		score -= 0.1
		reasons = append(reasons, fmt.Sprintf("digit ratio %.2f exceeds %.2f", ratio, s.cfg.MaxDigitRatio))
	}
	if len(text) < s.cfg.MinTextLength {
		score -= 0.2
		reasons = append(reasons, fmt.Sprintf("text length %d below %d", len(text), s.cfg.MinTextLength))
	}

	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return model.ExtractionMetrics{Score: score, Reasons: reasons}
}

// nonPrintableRatio is the fraction of bytes outside printable ASCII,
// not counting ordinary whitespace.
func nonPrintableRatio(text string) float64 {
	if len(text) == 0 {
		return 0
	}
	weird := 0
	for _, b := range []byte(text) {
		if b == '\n' || b == '\r' || b == '\t' || b == ' ' {
			continue
		}
		if b < 0x20 || b > 0x7e {
			weird++
		}
	}
	return float64(weird) / float64(len(text))
}

// shortLineRatio is the fraction of lines with 1-9 characters. Heavily
// fragmented output is the usual signature of column-confused recognition.
func shortLineRatio(text string) float64 {
	lines := strings.Split(text, "\n")
	total := 0
	short := 0
	for _, line := range lines {
		n := len(strings.TrimRight(line, "\r"))
		if n == 0 {
			continue
		}
		total++
		if n <= 9 {
			short++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(short) / float64(total)
}

func digitRatio(text string) float64 {
	if len(text) == 0 {
		return 0
	}
	digits := 0
	for _, b := range []byte(text) {
		if b >= '0' && b <= '9' {
			digits++
		}
	}
	return float64(digits) / float64(len(text))
}
