package reason

import "github.com/avolkov/recordlens/internal/model"

var (
	obstetricContext = []string{"pregnan", "gestation", "trimester", "obstetric", "prenatal"}
	bleedingTerms    = []string{"bleeding", "hemorrhage", "haemorrhage", "spotting"}
	ultrasoundTerms  = []string{"ultrasound", "sonograph", "doppler"}
)

// obstetricsRules flags bleeding documented in a pregnancy context with
// no ultrasound anywhere in the record.
type obstetricsRules struct{}

func (obstetricsRules) Domain() string { return "obstetrics" }

func (obstetricsRules) Evaluate(claims []model.Claim, _ []model.TimelineEvent) []model.Finding {
	corpus := claimCorpus(claims)
	if !containsAny(corpus, obstetricContext) || !containsAny(corpus, bleedingTerms) {
		return nil
	}
	if containsAny(corpus, ultrasoundTerms) {
		return nil
	}

	f := model.NewFinding(
		model.FindingBleedingWithoutUltrasound,
		"bleeding documented during pregnancy without an ultrasound examination",
		model.SeverityWarning,
	)
	f.RelatedClaimIDs = matchingClaimIDs(claims, bleedingTerms)
	f.AssertionType = model.AssertionPossibility
	f.Basis = []string{"bleeding and pregnancy terms present in claim text"}
	f.MissingEvidence = []string{"ultrasound examination record"}
	f.Reliability = &model.Reliability{
		Level:     "medium",
		Rationale: "keyword-based screen; imaging may exist in records not provided",
	}
	f.Caution = model.DefaultCaution
	return []model.Finding{f}
}
