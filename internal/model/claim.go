package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Claim represents a single extracted medical-legal assertion
type Claim struct {
	ID         string  `json:"id"`                   // Stable identifier assigned upstream
	Type       string  `json:"type"`                 // Declared claim type (e.g. "Diagnosis", "Exam")
	Value      string  `json:"value"`                // The claim text itself
	Date       string  `json:"date,omitempty"`       // Explicit date, if the upstream step found one
	Confidence float64 `json:"confidence,omitempty"` // 0-1, adjusted by the evidence evaluator
	Source     *Source `json:"source,omitempty"`     // Traceability back into the document

	// Annotations written by the evidence evaluator. Quality only ever
	// moves toward low within one evaluation pass, never toward high.
	EvidenceQuality EvidenceQuality `json:"evidence_quality,omitempty"`
	EvidenceNotes   string          `json:"evidence_notes,omitempty"`
	AssertionType   AssertionType   `json:"assertion_type,omitempty"`
	Basis           []string        `json:"basis,omitempty"`
	MissingEvidence []string        `json:"missing_evidence,omitempty"`
	Reliability     *Reliability    `json:"reliability,omitempty"`
	Caution         string          `json:"caution,omitempty"`
}

// Source locates a claim inside the extracted document text
type Source struct {
	Page      int    `json:"page,omitempty"`
	LineRange []int  `json:"line_range,omitempty"` // [first, last], exactly two elements when present
	Snippet   string `json:"snippet,omitempty"`
}

// Traceable reports whether the claim can be located in the document:
// a page number, a two-element line range, or a snippet longer than
// eight characters.
func (c *Claim) Traceable() bool {
	if c.Source == nil {
		return false
	}
	if c.Source.Page > 0 {
		return true
	}
	if len(c.Source.LineRange) == 2 {
		return true
	}
	return len(strings.TrimSpace(c.Source.Snippet)) > 8
}

// WordCount counts whitespace-separated words in the claim value
func (c *Claim) WordCount() int {
	return len(strings.Fields(c.Value))
}

// EvidenceQuality is the three-tier confidence rating for a claim
type EvidenceQuality string

const (
	QualityHigh   EvidenceQuality = "high"
	QualityMedium EvidenceQuality = "medium"
	QualityLow    EvidenceQuality = "low"
)

// rank orders tiers high(0) → medium(1) → low(2)
func (q EvidenceQuality) rank() int {
	switch q {
	case QualityMedium:
		return 1
	case QualityLow:
		return 2
	default:
		return 0
	}
}

// Downgrade moves the quality exactly one tier toward low, clamped at low
func (q EvidenceQuality) Downgrade() EvidenceQuality {
	if q == QualityHigh || q == "" {
		return QualityMedium
	}
	return QualityLow
}

// Worse returns the lower of two tiers. Used to guarantee an evaluation
// pass never raises quality that a previous pass already lowered.
func (q EvidenceQuality) Worse(other EvidenceQuality) EvidenceQuality {
	if other == "" {
		return q
	}
	if other.rank() > q.rank() {
		return other
	}
	return q
}

// AssertionType classifies a claim or finding as a verified fact, a
// professional interpretation, or a mere possibility
type AssertionType string

const (
	AssertionFact           AssertionType = "FACT"
	AssertionInterpretation AssertionType = "INTERPRETATION"
	AssertionPossibility    AssertionType = "POSSIBILITY"
)

// Reliability carries a level plus the rationale behind it
type Reliability struct {
	Level     string `json:"level"`
	Rationale string `json:"rationale"`
}

// ParseClaims decodes the claim array produced by the upstream extraction
// step. Claims arrive as semi-structured data; anything without an id and
// a value is rejected at this boundary rather than propagated into the
// pipeline.
func ParseClaims(data []byte) ([]Claim, error) {
	var claims []Claim
	if err := json.Unmarshal(data, &claims); err != nil {
		return nil, fmt.Errorf("decode claims: %w", err)
	}
	for i := range claims {
		c := &claims[i]
		if strings.TrimSpace(c.ID) == "" {
			return nil, fmt.Errorf("claim %d: missing id", i)
		}
		if strings.TrimSpace(c.Value) == "" {
			return nil, fmt.Errorf("claim %q: missing value", c.ID)
		}
		if c.Source != nil && len(c.Source.LineRange) != 0 && len(c.Source.LineRange) != 2 {
			// Normalize malformed line ranges instead of carrying them through.
			c.Source.LineRange = nil
		}
		switch c.EvidenceQuality {
		case "", QualityHigh, QualityMedium, QualityLow:
		default:
			return nil, fmt.Errorf("claim %q: unknown evidence quality %q", c.ID, c.EvidenceQuality)
		}
	}
	return claims, nil
}
