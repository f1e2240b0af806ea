package evidence

import (
	"strings"
	"testing"

	"github.com/avolkov/recordlens/internal/model"
)

func floatPtr(v float64) *float64 { return &v }

func newEvaluator() *Evaluator {
	return NewEvaluator(model.DefaultConfig().Analysis, nil)
}

func TestEvaluateFullyEvidencedClaim(t *testing.T) {
	claims := []model.Claim{{
		ID:    "c1",
		Type:  "Diagnosis",
		Value: "lumbar disc herniation confirmed on MRI",
		Date:  "2023-04-12",
		Source: &model.Source{
			Page:    3,
			Snippet: "MRI of 2023-04-12 shows lumbar disc herniation at L4-L5",
		},
	}}

	annotated, flags := newEvaluator().Evaluate(claims, floatPtr(0.9), "")

	c := annotated[0]
	if c.EvidenceQuality != model.QualityHigh {
		t.Errorf("quality = %q, want high", c.EvidenceQuality)
	}
	if c.AssertionType != model.AssertionFact {
		t.Errorf("assertion = %q, want FACT", c.AssertionType)
	}
	if c.Confidence != 0.75 {
		t.Errorf("confidence = %v, want default 0.75 with no penalty", c.Confidence)
	}
	if len(flags) != 0 {
		t.Errorf("flags = %v, want none", flags)
	}
}

func TestEvaluateDowngrades(t *testing.T) {
	tests := []struct {
		name        string
		claim       model.Claim
		ocrScore    *float64
		wantQuality model.EvidenceQuality
		wantType    model.AssertionType
	}{
		{
			name: "missing date drops to medium",
			claim: model.Claim{
				ID:     "c1",
				Type:   "Exam",
				Value:  "detailed orthopedic examination of the knee",
				Source: &model.Source{Page: 2},
			},
			wantQuality: model.QualityMedium,
			wantType:    model.AssertionInterpretation,
		},
		{
			name: "missing date and source drops to low",
			claim: model.Claim{
				ID:    "c2",
				Type:  "Exam",
				Value: "detailed orthopedic examination of the knee",
			},
			wantQuality: model.QualityLow,
			wantType:    model.AssertionPossibility,
		},
		{
			name: "short generic claim with poor recognition",
			claim: model.Claim{
				ID:    "c3",
				Type:  "Exam",
				Value: "general exam",
			},
			ocrScore:    floatPtr(0.45),
			wantQuality: model.QualityLow,
			wantType:    model.AssertionPossibility,
		},
		{
			name: "dated and traceable but single word",
			claim: model.Claim{
				ID:     "c4",
				Type:   "Procedure",
				Value:  "arthroscopy",
				Date:   "2023-02-01",
				Source: &model.Source{Page: 5},
			},
			wantQuality: model.QualityLow,
			wantType:    model.AssertionPossibility,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			annotated, _ := newEvaluator().Evaluate([]model.Claim{tt.claim}, tt.ocrScore, "")
			c := annotated[0]
			if c.EvidenceQuality != tt.wantQuality {
				t.Errorf("quality = %q, want %q (notes: %s)", c.EvidenceQuality, tt.wantQuality, c.EvidenceNotes)
			}
			if c.AssertionType != tt.wantType {
				t.Errorf("assertion = %q, want %q", c.AssertionType, tt.wantType)
			}
		})
	}
}

func TestEvaluateUndatedNeverHigh(t *testing.T) {
	claims := []model.Claim{{
		ID:     "c1",
		Type:   "Treatment",
		Value:  "prescribed physical therapy twice a week",
		Source: &model.Source{Page: 1, LineRange: []int{10, 14}},
	}}

	annotated, _ := newEvaluator().Evaluate(claims, nil, "")
	if annotated[0].EvidenceQuality == model.QualityHigh {
		t.Errorf("undated claim rated high, want at most medium")
	}
}

func TestEvaluateIsMonotonic(t *testing.T) {
	claims := []model.Claim{
		{ID: "c1", Type: "Exam", Value: "general exam"},
		{ID: "c2", Type: "Diagnosis", Value: "hypertension diagnosed during routine check", Date: "2022-08-10", Source: &model.Source{Page: 1}},
	}

	first, _ := newEvaluator().Evaluate(claims, floatPtr(0.45), "")
	// Second pass runs with good recognition; quality must not recover.
	second, _ := newEvaluator().Evaluate(first, floatPtr(0.95), "")

	for i := range second {
		if second[i].EvidenceQuality.Worse(first[i].EvidenceQuality) != second[i].EvidenceQuality {
			t.Errorf("claim %s: quality rose from %q to %q on re-evaluation",
				second[i].ID, first[i].EvidenceQuality, second[i].EvidenceQuality)
		}
	}
}

func TestWeakEvidenceFlagSeverity(t *testing.T) {
	strong := model.Claim{
		ID: "s", Type: "Diagnosis", Value: "confirmed fracture of the left radius",
		Date: "2023-01-05", Source: &model.Source{Page: 1},
	}
	weak := model.Claim{ID: "w", Type: "Note", Value: "note"}

	tests := []struct {
		name         string
		claims       []model.Claim
		wantSeverity model.Severity
	}{
		{"minority low stays info", []model.Claim{strong, strong, strong, weak}, model.SeverityInfo},
		{"majority low escalates", []model.Claim{strong, weak, weak}, model.SeverityWarning},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := make([]model.Claim, len(tt.claims))
			copy(claims, tt.claims)
			for i := range claims {
				claims[i].ID = claims[i].ID + string(rune('0'+i))
			}

			_, flags := newEvaluator().Evaluate(claims, nil, "")
			var found *model.Flag
			for i := range flags {
				if flags[i].Code == model.FlagClaimWeakEvidence {
					found = &flags[i]
				}
			}
			if found == nil {
				t.Fatalf("no %s flag emitted", model.FlagClaimWeakEvidence)
			}
			if found.Severity != tt.wantSeverity {
				t.Errorf("severity = %q, want %q", found.Severity, tt.wantSeverity)
			}
		})
	}
}

func TestLowOCRSectionFlag(t *testing.T) {
	claims := []model.Claim{{
		ID: "c1", Type: "Diagnosis", Value: "confirmed fracture of the left radius",
		Date: "2023-01-05", Source: &model.Source{Page: 1},
	}}

	_, flags := newEvaluator().Evaluate(claims, floatPtr(0.4), "")
	found := false
	for _, f := range flags {
		if f.Code == model.FlagOCRLowConfidenceSection {
			found = true
		}
	}
	if !found {
		t.Errorf("flags = %v, want %s", flags, model.FlagOCRLowConfidenceSection)
	}
}

func TestSnippetBackfill(t *testing.T) {
	fullText := "Patient presented on 2023-03-14. Examination of the lumbar spine revealed restricted flexion and paravertebral tenderness consistent with the reported injury. Follow-up advised."
	claims := []model.Claim{{
		ID:    "c1",
		Type:  "Exam",
		Value: "Examination of the lumbar spine revealed restricted flexion",
		Date:  "2023-03-14",
	}}

	annotated, _ := newEvaluator().Evaluate(claims, nil, fullText)

	c := annotated[0]
	if c.Source == nil || c.Source.Snippet == "" {
		t.Fatalf("snippet not backfilled")
	}
	if !strings.HasPrefix(c.Source.Snippet, "Examination of the lumbar spine") {
		t.Errorf("snippet = %q, want window starting at the claim value", c.Source.Snippet)
	}
	if len(c.Source.Snippet) > 160 {
		t.Errorf("snippet length = %d, want at most 160", len(c.Source.Snippet))
	}
	// The backfilled snippet restores traceability, so quality stays high.
	if c.EvidenceQuality != model.QualityHigh {
		t.Errorf("quality = %q, want high after backfill (notes: %s)", c.EvidenceQuality, c.EvidenceNotes)
	}
}
