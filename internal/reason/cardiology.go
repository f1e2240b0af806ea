package reason

import "github.com/avolkov/recordlens/internal/model"

var (
	cardiacSymptoms = []string{"chest pain", "angina", "palpitation", "myocardial", "cardiac", "heart attack"}
	cardiacKeyTests = []string{"ecg", "ekg", "electrocardiogram", "echocardiogram", "troponin", "stress test", "angiograph"}
)

// cardiologyRules flags documented cardiac symptoms with none of the key
// diagnostic tests anywhere in the record.
type cardiologyRules struct{}

func (cardiologyRules) Domain() string { return "cardiology" }

func (cardiologyRules) Evaluate(claims []model.Claim, _ []model.TimelineEvent) []model.Finding {
	corpus := claimCorpus(claims)
	if !containsAny(corpus, cardiacSymptoms) || containsAny(corpus, cardiacKeyTests) {
		return nil
	}

	f := model.NewFinding(
		model.FindingMissingKeyTest,
		"cardiac symptoms documented without ECG, troponin, or comparable key test",
		model.SeverityWarning,
	)
	f.RelatedClaimIDs = matchingClaimIDs(claims, cardiacSymptoms)
	f.AssertionType = model.AssertionPossibility
	f.Basis = []string{"cardiac symptom terms present in claim text"}
	f.MissingEvidence = []string{"ECG or laboratory cardiac workup"}
	f.Reliability = &model.Reliability{
		Level:     "medium",
		Rationale: "keyword-based screen; tests may exist in records not provided",
	}
	f.Caution = model.DefaultCaution
	return []model.Finding{f}
}
