package model

import "time"

// ScoreBreakdown is supplied by the upstream claim source alongside the
// claim array. Only the OCR sub-score feeds this pipeline.
type ScoreBreakdown struct {
	OCRScore *float64 `json:"ocr_score,omitempty"` // 0-1 overall OCR confidence
	Reasons  []string `json:"reasons,omitempty"`
}

// QualityResult is the quality scorer's output: findings plus a single
// 0-100 score.
type QualityResult struct {
	Score    int       `json:"score"`
	Findings []Finding `json:"findings"`
}

// Annotations is the full derived annotation set for one document. Every
// field is recomputed per analysis pass from the stored claim array and
// score breakdown; the storage collaborator writes back only fields whose
// serialized form differs from the stored value.
type Annotations struct {
	Claims              []Claim         `json:"claims"`
	Flags               []Flag          `json:"flags"`
	Timeline            []TimelineEvent `json:"timeline"`
	QualityFindings     []Finding       `json:"quality_findings"`
	ReasoningFindings   []Finding       `json:"reasoning_findings"`
	MedicalQualityScore int             `json:"medical_quality_score"`
	OCRMode             ExtractionMode  `json:"ocr_mode,omitempty"`
}

// Report is the enriched document object handed to the consumer surface
type Report struct {
	DocumentID  string            `json:"document_id,omitempty"`
	AnalyzedAt  time.Time         `json:"analyzed_at"`
	Annotations Annotations       `json:"annotations"`
	Extraction  *ExtractionResult `json:"extraction,omitempty"`
}
