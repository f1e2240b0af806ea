// Package score aggregates every upstream signal into quality findings
// plus a single 0-100 document score. The formula is deterministic and
// clamped; identical inputs always reproduce the same score.
package score

import (
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strings"

	"github.com/avolkov/recordlens/internal/model"
)

// Score weights. They sum to 100 before the reasoning penalty.
const (
	weightDated         = 20.0
	weightTraceable     = 20.0
	weightSpecific      = 15.0
	weightConsistent    = 15.0
	weightFlags         = 15.0
	weightTimeline      = 10.0
	weightEvidence      = 5.0
	weightReasoningCost = 10.0
)

var numberRe = regexp.MustCompile(`\d+(?:\.\d+)?`)

// genericValues hide nothing on their own but count toward the
// too-general ratio.
var genericValues = []string{"note", "general", "record", "entry", "exam", "visit"}

// Scorer computes the document quality result.
type Scorer struct {
	cfg    model.AnalysisConfig
	logger *slog.Logger
}

func NewScorer(cfg model.AnalysisConfig, logger *slog.Logger) *Scorer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scorer{cfg: cfg, logger: logger}
}

// Evaluate produces the quality findings and the aggregate score.
func (s *Scorer) Evaluate(claims []model.Claim, events []model.TimelineEvent, flags []model.Flag, reasoning []model.Finding) model.QualityResult {
	if len(claims) == 0 {
		f := model.NewFinding(
			model.FindingOpinionNoClaims,
			"no claims could be extracted from the document",
			model.SeverityWarning,
		)
		return model.QualityResult{Score: s.cfg.NoClaimsScore, Findings: []model.Finding{f}}
	}

	total := float64(len(claims))
	dated, traceable, generic, lowEvidence := 0, 0, 0, 0
	for i := range claims {
		c := &claims[i]
		if _, ok := model.ResolveClaimDate(c); ok {
			dated++
		}
		if c.Traceable() {
			traceable++
		}
		if isGeneric(c) {
			generic++
		}
		if c.EvidenceQuality == model.QualityLow {
			lowEvidence++
		}
	}

	datedRatio := float64(dated) / total
	traceableRatio := float64(traceable) / total
	genericRatio := float64(generic) / total
	lowEvidenceRatio := float64(lowEvidence) / total

	distinctDisability := distinctDisabilityValues(claims)
	contradictionPenalty := math.Min(1, 0.5*float64(max(distinctDisability-1, 0)))

	gapCount := countFlags(flags, model.FlagTimelineGap)
	timelineHealth := 1 - math.Min(1, 0.34*float64(gapCount))

	criticalFlags := 0
	for _, f := range flags {
		if f.Severity == model.SeverityCritical {
			criticalFlags++
		}
	}
	flagPenalty := 0.0
	if len(flags) > 0 {
		flagPenalty = float64(criticalFlags) / float64(len(flags))
	}

	reasoningPenalty := 0.0
	for _, f := range reasoning {
		switch f.Severity {
		case model.SeverityWarning:
			reasoningPenalty += 0.25
		case model.SeverityCritical:
			reasoningPenalty += 0.5
		}
	}
	reasoningPenalty = math.Min(1, reasoningPenalty)

	findings := s.thresholdFindings(
		datedRatio, traceableRatio, genericRatio, lowEvidenceRatio,
		distinctDisability, gapCount, flagPenalty,
	)

	raw := weightDated*datedRatio +
		weightTraceable*traceableRatio +
		weightSpecific*(1-genericRatio) +
		weightConsistent*(1-contradictionPenalty) +
		weightFlags*(1-flagPenalty) +
		weightTimeline*timelineHealth +
		weightEvidence*(1-lowEvidenceRatio) -
		weightReasoningCost*reasoningPenalty

	result := int(math.Round(raw))
	if result < 0 {
		result = 0
	}
	if result > 100 {
		result = 100
	}

	if needsExpert(findings, flags, reasoning) {
		f := model.NewFinding(
			model.FindingHumanExpertRequired,
			"automated analysis detected conditions that require review by a qualified expert",
			model.SeverityCritical,
		)
		f.AssertionType = model.AssertionPossibility
		findings = append(findings, f)
	}

	s.logger.Debug("quality score computed",
		"score", result,
		"dated_ratio", datedRatio,
		"traceable_ratio", traceableRatio,
		"findings", len(findings))

	return model.QualityResult{Score: result, Findings: findings}
}

// thresholdFindings emits one finding per breached threshold. Severity
// scales with how far the ratio exceeds (or falls short of) its
// threshold: more than twice the allowed distance is critical.
func (s *Scorer) thresholdFindings(datedRatio, traceableRatio, genericRatio, lowEvidenceRatio float64, distinctDisability, gapCount int, flagPenalty float64) []model.Finding {
	var findings []model.Finding

	if datedRatio < s.cfg.MinDatedRatio {
		findings = append(findings, model.NewFinding(
			model.FindingOpinionLacksDates,
			fmt.Sprintf("only %.0f%% of claims carry a resolvable date", 100*datedRatio),
			shortfallSeverity(datedRatio, s.cfg.MinDatedRatio),
		))
	}
	if traceableRatio < s.cfg.MinTraceableRatio {
		findings = append(findings, model.NewFinding(
			model.FindingOpinionWeakTraceability,
			fmt.Sprintf("only %.0f%% of claims can be traced to the document", 100*traceableRatio),
			shortfallSeverity(traceableRatio, s.cfg.MinTraceableRatio),
		))
	}
	if genericRatio > s.cfg.MaxGenericRatio {
		findings = append(findings, model.NewFinding(
			model.FindingOpinionTooGeneral,
			fmt.Sprintf("%.0f%% of claims are too generic to assess", 100*genericRatio),
			excessSeverity(genericRatio, s.cfg.MaxGenericRatio),
		))
	}
	if lowEvidenceRatio > s.cfg.MaxLowEvidenceRatio {
		findings = append(findings, model.NewFinding(
			model.FindingOpinionWeakEvidence,
			fmt.Sprintf("%.0f%% of claims have low evidence quality", 100*lowEvidenceRatio),
			excessSeverity(lowEvidenceRatio, s.cfg.MaxLowEvidenceRatio),
		))
	}
	if distinctDisability > 1 {
		severity := model.SeverityWarning
		if distinctDisability > 2 {
			severity = model.SeverityCritical
		}
		findings = append(findings, model.NewFinding(
			model.FindingOpinionInternalContradictions,
			fmt.Sprintf("%d different disability percentages documented", distinctDisability),
			severity,
		))
	}
	if gapCount > 0 {
		severity := model.SeverityWarning
		if gapCount > 2 {
			severity = model.SeverityCritical
		}
		findings = append(findings, model.NewFinding(
			model.FindingOpinionFragmentedTimeline,
			fmt.Sprintf("timeline contains %d documentation gaps", gapCount),
			severity,
		))
	}
	if flagPenalty > s.cfg.MaxCriticalFlagRatio {
		findings = append(findings, model.NewFinding(
			model.FindingOpinionFlagOverload,
			fmt.Sprintf("%.0f%% of extraction flags are critical", 100*flagPenalty),
			excessSeverity(flagPenalty, s.cfg.MaxCriticalFlagRatio),
		))
	}
	return findings
}

// excessSeverity grades a ratio that exceeded a maximum: more than twice
// the threshold is critical.
func excessSeverity(ratio, threshold float64) model.Severity {
	if threshold > 0 && ratio > 2*threshold {
		return model.SeverityCritical
	}
	return model.SeverityWarning
}

// shortfallSeverity grades a ratio that fell below a minimum: less than
// half the threshold is critical.
func shortfallSeverity(ratio, threshold float64) model.Severity {
	if ratio < threshold/2 {
		return model.SeverityCritical
	}
	return model.SeverityWarning
}

func isGeneric(c *model.Claim) bool {
	if c.WordCount() < 3 {
		return true
	}
	value := strings.ToLower(strings.TrimSpace(c.Value))
	for _, g := range genericValues {
		if value == g {
			return true
		}
	}
	return false
}

// distinctDisabilityValues counts distinct numbers across disability
// claims, the internal-contradiction signal. Order of appearance is
// irrelevant to the count, so map storage is safe here.
func distinctDisabilityValues(claims []model.Claim) int {
	seen := make(map[string]bool)
	for i := range claims {
		if !strings.Contains(strings.ToLower(claims[i].Type), "disab") {
			continue
		}
		for _, n := range numberRe.FindAllString(claims[i].Value, -1) {
			seen[n] = true
		}
	}
	return len(seen)
}

func countFlags(flags []model.Flag, code string) int {
	n := 0
	for _, f := range flags {
		if f.Code == code {
			n++
		}
	}
	return n
}

func needsExpert(quality []model.Finding, flags []model.Flag, reasoning []model.Finding) bool {
	for _, f := range reasoning {
		if f.Severity == model.SeverityCritical {
			return true
		}
	}
	for _, f := range flags {
		if f.Severity == model.SeverityCritical || f.Code == model.FlagOCRLowConfidenceSection {
			return true
		}
	}
	for _, f := range quality {
		if f.Severity == model.SeverityCritical {
			return true
		}
	}
	return false
}
