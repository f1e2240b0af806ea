package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/avolkov/recordlens/internal/model"
)

// RenderJSON serializes a report for machine consumers. Struct field
// order is fixed, so identical reports serialize identically.
func RenderJSON(report *model.Report) ([]byte, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	return append(data, '\n'), nil
}

// RenderMarkdown produces the human-readable summary printed by the CLI.
func RenderMarkdown(report *model.Report) string {
	var sb strings.Builder
	ann := &report.Annotations

	sb.WriteString("# Document Analysis Report\n\n")
	if report.DocumentID != "" {
		fmt.Fprintf(&sb, "Document: %s\n", report.DocumentID)
	}
	fmt.Fprintf(&sb, "Quality score: %d/100\n", ann.MedicalQualityScore)
	if report.Extraction != nil {
		fmt.Fprintf(&sb, "Extraction: %s mode, metrics %.2f, %d page(s)\n",
			report.Extraction.Mode, report.Extraction.Metrics.Score, report.Extraction.PageCount)
	}

	if len(ann.Timeline) > 0 {
		sb.WriteString("\n## Timeline\n\n")
		for _, ev := range ann.Timeline {
			date := ev.Date
			if date == "" {
				date = "undated"
			}
			fmt.Fprintf(&sb, "- **%s** [%s] %s", date, ev.Type, firstLine(ev.Description))
			if ev.AggregatedCount > 1 {
				fmt.Fprintf(&sb, " (%d aggregated)", ev.AggregatedCount)
			}
			sb.WriteByte('\n')
		}
	}

	writeFindings(&sb, "Flags", ann.Flags)
	writeFindings(&sb, "Reasoning findings", ann.ReasoningFindings)
	writeFindings(&sb, "Quality findings", ann.QualityFindings)

	if len(ann.Claims) > 0 {
		sb.WriteString("\n## Claims\n\n")
		for _, c := range ann.Claims {
			fmt.Fprintf(&sb, "- %s (%s): %s (evidence %s, confidence %.2f)\n",
				c.ID, c.Type, c.Value, c.EvidenceQuality, c.Confidence)
		}
	}

	sb.WriteByte('\n')
	sb.WriteString(model.DefaultCaution)
	sb.WriteByte('\n')
	return sb.String()
}

func writeFindings(sb *strings.Builder, title string, findings []model.Finding) {
	if len(findings) == 0 {
		return
	}
	fmt.Fprintf(sb, "\n## %s\n\n", title)
	for _, f := range findings {
		fmt.Fprintf(sb, "- `%s` (%s): %s", f.Code, f.Severity, f.Message)
		if f.Domain != "" {
			fmt.Fprintf(sb, " [%s]", f.Domain)
		}
		sb.WriteByte('\n')
	}
}

func firstLine(s string) string {
	s = strings.TrimPrefix(s, "- ")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return s
}
