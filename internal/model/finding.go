package model

// Severity ranks flags and findings
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// DefaultCaution is the standing disclaimer attached to every critical
// finding. Findings never assert medical truth; they describe how well
// the record supports its own claims.
const DefaultCaution = "Automated rule-based assessment of documentation quality, not a medical or legal conclusion. Review by a qualified professional is required."

// Finding is a structured, severity-ranked observation about document
// completeness, internal consistency, or medical-legal risk. Quality
// flags and reasoning findings share this shape; both are derived and
// must be recomputable from claims, timeline, and flags alone.
type Finding struct {
	Code            string        `json:"code"`
	Message         string        `json:"message"`
	Severity        Severity      `json:"severity"`
	RelatedClaimIDs []string      `json:"related_claim_ids,omitempty"`
	Domain          string        `json:"domain,omitempty"` // Specialty rule set that produced it
	AssertionType   AssertionType `json:"assertion_type,omitempty"`
	Basis           []string      `json:"basis,omitempty"`
	MissingEvidence []string      `json:"missing_evidence,omitempty"`
	Reliability     *Reliability  `json:"reliability,omitempty"`
	Caution         string        `json:"caution,omitempty"`
}

// Flag is an alias kept for readers: extraction and timeline stages call
// their outputs flags, the reasoning and quality stages call them findings.
type Flag = Finding

// NewFinding builds a finding and enforces the invariant that critical
// severity always carries a non-empty caution disclaimer.
func NewFinding(code, message string, severity Severity) Finding {
	f := Finding{Code: code, Message: message, Severity: severity}
	if severity == SeverityCritical {
		f.Caution = DefaultCaution
	}
	return f
}

// Flag codes emitted by the evidence evaluator and timeline engine.
const (
	FlagClaimWeakEvidence       = "CLAIM_WEAK_EVIDENCE"
	FlagOCRLowConfidenceSection = "OCR_LOW_CONFIDENCE_SECTION"
	FlagEventWithoutDate        = "EVENT_WITHOUT_DATE"
	FlagTimelineGap             = "TIMELINE_GAP"
	FlagDensePeriod             = "DENSE_PERIOD"
	FlagTimelineTooGeneric      = "TIMELINE_TOO_GENERIC"
)

// Finding codes emitted by the reasoning analyzer.
const (
	FindingContradictionDiagnosis    = "CONTRADICTION_DIAGNOSIS"
	FindingContradictionWorkCapacity = "CONTRADICTION_WORK_CAPACITY"
	FindingTreatmentGap              = "TREATMENT_GAP"
	FindingMissingKeyTest            = "MISSING_KEY_TEST"
	FindingBleedingWithoutUltrasound = "BLEEDING_WITHOUT_ULTRASOUND"
)

// Finding codes emitted by the quality scorer.
const (
	FindingOpinionNoClaims               = "OPINION_NO_CLAIMS"
	FindingOpinionLacksDates             = "OPINION_LACKS_DATES"
	FindingOpinionWeakTraceability       = "OPINION_WEAK_TRACEABILITY"
	FindingOpinionTooGeneral             = "OPINION_TOO_GENERAL"
	FindingOpinionWeakEvidence           = "OPINION_WEAK_EVIDENCE"
	FindingOpinionInternalContradictions = "OPINION_INTERNAL_CONTRADICTIONS"
	FindingOpinionFragmentedTimeline     = "OPINION_FRAGMENTED_TIMELINE"
	FindingOpinionFlagOverload           = "OPINION_FLAG_OVERLOAD"
	FindingHumanExpertRequired           = "HUMAN_EXPERT_REQUIRED"
)
