package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/avolkov/recordlens/internal/model"
)

// ChangedFields compares two annotation sets field by field on their
// serialized form and returns the names of the fields that differ, in a
// fixed order. The storage collaborator writes back only these fields,
// so an unchanged recompute produces no write at all.
func ChangedFields(prev, next *model.Annotations) ([]string, error) {
	fields := []struct {
		name         string
		prevV, nextV any
	}{
		{"claims", prev.Claims, next.Claims},
		{"flags", prev.Flags, next.Flags},
		{"timeline", prev.Timeline, next.Timeline},
		{"quality_findings", prev.QualityFindings, next.QualityFindings},
		{"reasoning_findings", prev.ReasoningFindings, next.ReasoningFindings},
		{"medical_quality_score", prev.MedicalQualityScore, next.MedicalQualityScore},
		{"ocr_mode", prev.OCRMode, next.OCRMode},
	}

	var changed []string
	for _, f := range fields {
		a, err := json.Marshal(f.prevV)
		if err != nil {
			return nil, fmt.Errorf("marshal stored %s: %w", f.name, err)
		}
		b, err := json.Marshal(f.nextV)
		if err != nil {
			return nil, fmt.Errorf("marshal computed %s: %w", f.name, err)
		}
		if !bytes.Equal(a, b) {
			changed = append(changed, f.name)
		}
	}
	return changed, nil
}
