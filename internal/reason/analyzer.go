// Package reason detects contradictions and missing-test patterns across
// evaluated claims and the constructed timeline. Core checks run first;
// pluggable specialty rule sets run after and merge into the same list,
// each tagged with its domain.
package reason

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/avolkov/recordlens/internal/model"
)

// Rule is one pluggable specialty rule set. Rules must be deterministic
// over their inputs and side-effect free.
type Rule interface {
	Domain() string
	Evaluate(claims []model.Claim, events []model.TimelineEvent) []model.Finding
}

// DefaultRules returns the built-in specialty rule sets.
func DefaultRules() []Rule {
	return []Rule{cardiologyRules{}, obstetricsRules{}}
}

// Analyzer runs the core contradiction checks plus its rule sets.
type Analyzer struct {
	rules  []Rule
	logger *slog.Logger
}

func NewAnalyzer(rules []Rule, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{rules: rules, logger: logger}
}

// Analyze returns the combined core and specialty findings.
func (a *Analyzer) Analyze(claims []model.Claim, events []model.TimelineEvent) []model.Finding {
	var findings []model.Finding
	findings = append(findings, diagnosisContradictions(claims)...)
	findings = append(findings, workCapacityContradictions(claims)...)
	findings = append(findings, treatmentGaps(events)...)

	for _, rule := range a.rules {
		for _, f := range rule.Evaluate(claims, events) {
			f.Domain = rule.Domain()
			findings = append(findings, f)
		}
	}

	a.logger.Debug("reasoning analysis complete", "claims", len(claims), "events", len(events), "findings", len(findings))
	return findings
}

// diagnosisContradictions pairs diagnosis claims with differing values
// dated in the same calendar month.
func diagnosisContradictions(claims []model.Claim) []model.Finding {
	var findings []model.Finding
	for i := range claims {
		if !typeContains(&claims[i], "diagnos") {
			continue
		}
		di, ok := model.ResolveClaimDate(&claims[i])
		if !ok {
			continue
		}
		for j := i + 1; j < len(claims); j++ {
			if !typeContains(&claims[j], "diagnos") {
				continue
			}
			if sameValue(claims[i].Value, claims[j].Value) {
				continue
			}
			dj, ok := model.ResolveClaimDate(&claims[j])
			if !ok || !di.SameMonth(dj) {
				continue
			}

			f := model.NewFinding(
				model.FindingContradictionDiagnosis,
				fmt.Sprintf("differing diagnoses documented in %s: %q vs %q", di.Time.Format("2006-01"), claims[i].Value, claims[j].Value),
				model.SeverityWarning,
			)
			f.RelatedClaimIDs = []string{claims[i].ID, claims[j].ID}
			f.AssertionType = model.AssertionInterpretation
			f.Basis = []string{"two diagnosis claims dated in the same calendar month"}
			f.MissingEvidence = []string{"clarifying record reconciling the diagnoses"}
			f.Reliability = &model.Reliability{
				Level:     "medium",
				Rationale: "rule-based match on claim types and dates; wording differences may be benign",
			}
			f.Caution = model.DefaultCaution
			findings = append(findings, f)
		}
	}
	return findings
}

// workCapacityContradictions pairs a work-capacity claim with a
// disability claim sharing a calendar month.
func workCapacityContradictions(claims []model.Claim) []model.Finding {
	var findings []model.Finding
	for i := range claims {
		if !typeContains(&claims[i], "work") {
			continue
		}
		di, ok := model.ResolveClaimDate(&claims[i])
		if !ok {
			continue
		}
		for j := range claims {
			if !typeContains(&claims[j], "disab") {
				continue
			}
			dj, ok := model.ResolveClaimDate(&claims[j])
			if !ok || !di.SameMonth(dj) {
				continue
			}

			f := model.NewFinding(
				model.FindingContradictionWorkCapacity,
				fmt.Sprintf("work capacity and disability both documented in %s", di.Time.Format("2006-01")),
				model.SeverityWarning,
			)
			f.RelatedClaimIDs = []string{claims[i].ID, claims[j].ID}
			f.AssertionType = model.AssertionInterpretation
			f.Basis = []string{"work-capacity and disability claims dated in the same calendar month"}
			f.MissingEvidence = []string{"assessment explaining the overlapping statements"}
			f.Reliability = &model.Reliability{
				Level:     "medium",
				Rationale: "rule-based match on claim types and dates",
			}
			f.Caution = model.DefaultCaution
			findings = append(findings, f)
		}
	}
	return findings
}

// treatmentGaps flags treatment-family events with no later follow-up.
func treatmentGaps(events []model.TimelineEvent) []model.Finding {
	var findings []model.Finding
	for i, ev := range events {
		switch ev.Type {
		case model.EventTreatment, model.EventMedication, model.EventPhysiotherapy:
		default:
			continue
		}
		followed := false
		for j := i + 1; j < len(events); j++ {
			if events[j].Type == model.EventFollowUp {
				followed = true
				break
			}
		}
		if followed {
			continue
		}

		f := model.NewFinding(
			model.FindingTreatmentGap,
			fmt.Sprintf("treatment %q has no documented follow-up", firstLine(ev.Description)),
			model.SeverityInfo,
		)
		f.RelatedClaimIDs = eventClaimIDs(ev)
		f.AssertionType = model.AssertionPossibility
		f.MissingEvidence = []string{"follow-up or review record after the treatment"}
		f.Reliability = &model.Reliability{
			Level:     "low",
			Rationale: "absence of a follow-up event may reflect incomplete records rather than missing care",
		}
		findings = append(findings, f)
	}
	return findings
}

func typeContains(c *model.Claim, needle string) bool {
	return strings.Contains(strings.ToLower(c.Type), needle)
}

func sameValue(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func firstLine(s string) string {
	s = strings.TrimPrefix(s, "- ")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return s
}

func eventClaimIDs(ev model.TimelineEvent) []string {
	var ids []string
	for _, r := range ev.References {
		if r.ID != "" {
			ids = append(ids, r.ID)
		}
	}
	return ids
}

// claimCorpus joins all claim text into one lowercase haystack for the
// specialty keyword rules.
func claimCorpus(claims []model.Claim) string {
	var sb strings.Builder
	for i := range claims {
		sb.WriteString(claims[i].Type)
		sb.WriteByte(' ')
		sb.WriteString(claims[i].Value)
		sb.WriteByte(' ')
		if claims[i].Source != nil {
			sb.WriteString(claims[i].Source.Snippet)
			sb.WriteByte(' ')
		}
	}
	return strings.ToLower(sb.String())
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}

// matchingClaimIDs returns the ids of claims whose text contains any of
// the needles, in claim order.
func matchingClaimIDs(claims []model.Claim, needles []string) []string {
	var ids []string
	for i := range claims {
		text := strings.ToLower(claims[i].Type + " " + claims[i].Value)
		if containsAny(text, needles) {
			ids = append(ids, claims[i].ID)
		}
	}
	return ids
}
