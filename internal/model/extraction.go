package model

// ExtractionMode records which extraction strategy produced the text
type ExtractionMode string

const (
	ModeBase     ExtractionMode = "base"
	ModeEnhanced ExtractionMode = "enhanced"
)

// ExtractionMetrics scores raw extracted text for plausibility
type ExtractionMetrics struct {
	Score   float64  `json:"score"` // 0-1, higher is more plausible
	Reasons []string `json:"reasons,omitempty"`
}

// Comparison records the scores of both extraction passes so the
// selection is auditable after the fact.
type Comparison struct {
	BaseScore     float64  `json:"base_score"`
	EnhancedScore *float64 `json:"enhanced_score,omitempty"`
}

// ExtractionResult is the output of the extraction pipeline
type ExtractionResult struct {
	Text       string            `json:"text"`
	Mode       ExtractionMode    `json:"mode"`
	Metrics    ExtractionMetrics `json:"metrics"`
	PageCount  int               `json:"page_count"`
	Comparison Comparison        `json:"comparison"`
}
