package timeline

import (
	"testing"

	"github.com/avolkov/recordlens/internal/model"
)

func newEngine() *Engine {
	return NewEngine(model.DefaultConfig().Analysis, nil)
}

func hasFlag(flags []model.Flag, code string) *model.Flag {
	for i := range flags {
		if flags[i].Code == code {
			return &flags[i]
		}
	}
	return nil
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		claim model.Claim
		want  model.EventType
	}{
		{"medication in value", model.Claim{Type: "Treatment", Value: "prescribed ibuprofen medication daily"}, model.EventMedication},
		{"imaging in snippet", model.Claim{Type: "Exam", Value: "scan of the right shoulder", Source: &model.Source{Snippet: "MRI of the right shoulder"}}, model.EventImaging},
		{"physiotherapy beats declared type", model.Claim{Type: "Treatment", Value: "physiotherapy sessions twice weekly"}, model.EventPhysiotherapy},
		{"follow-up", model.Claim{Type: "Visit", Value: "follow-up appointment scheduled"}, model.EventFollowUp},
		{"declared diagnosis", model.Claim{Type: "Diagnosis", Value: "lumbar disc herniation"}, model.EventDiagnosis},
		{"declared exam", model.Claim{Type: "Examination", Value: "knee stability check"}, model.EventExamination},
		{"declared surgery", model.Claim{Type: "Surgery", Value: "arthroscopic repair"}, model.EventProcedure},
		{"declared disability", model.Claim{Type: "Disability", Value: "30 percent permanent impairment"}, model.EventDisability},
		{"unknown type defaults", model.Claim{Type: "Remark", Value: "patient arrived on time"}, model.EventGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classify(&tt.claim); got != tt.want {
				t.Errorf("classify() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildDenseClusterAndGap(t *testing.T) {
	claims := []model.Claim{
		{ID: "c1", Type: "Treatment", Value: "physical therapy session for lower back", Date: "2023-01-02"},
		{ID: "c2", Type: "Treatment", Value: "physical therapy session, improved mobility", Date: "2023-01-05"},
		{ID: "c3", Type: "Treatment", Value: "physical therapy session, persistent pain", Date: "2023-01-09"},
		{ID: "c4", Type: "Treatment", Value: "physical therapy session, reduced swelling", Date: "2023-01-12"},
		{ID: "c5", Type: "Treatment", Value: "physical therapy session, discharge planned", Date: "2023-01-17"},
		{ID: "c6", Type: "Treatment", Value: "renewed therapy after relapse", Date: "2024-08-20"},
		{ID: "c7", Type: "Assessment", Value: "capacity assessment still outstanding"},
	}

	events, flags := newEngine().Build(claims)

	if len(events) == 0 {
		t.Fatal("no visible events")
	}
	first := events[0]
	if first.AggregatedCount <= 1 {
		t.Errorf("first event AggregatedCount = %d, want > 1", first.AggregatedCount)
	}
	if first.DatePrecision != model.PrecisionDay {
		t.Errorf("first event precision = %q, want day", first.DatePrecision)
	}
	if hasFlag(flags, model.FlagTimelineGap) == nil {
		t.Errorf("flags %v missing %s", flags, model.FlagTimelineGap)
	}
	if hasFlag(flags, model.FlagDensePeriod) == nil {
		t.Errorf("flags %v missing %s", flags, model.FlagDensePeriod)
	}
	if hasFlag(flags, model.FlagEventWithoutDate) == nil {
		t.Errorf("flags %v missing %s for the undated claim", flags, model.FlagEventWithoutDate)
	}
}

func TestBuildOrdering(t *testing.T) {
	claims := []model.Claim{
		{ID: "late", Type: "Diagnosis", Value: "post-traumatic arthritis confirmed", Date: "2023-09-01"},
		{ID: "undated", Type: "Assessment", Value: "capacity assessment pending review"},
		{ID: "early", Type: "Procedure", Value: "open reduction internal fixation", Date: "2021-03-15"},
	}

	events, _ := newEngine().Build(claims)

	if len(events) != 3 {
		t.Fatalf("visible events = %d, want 3", len(events))
	}
	if events[0].ID != "evt-early" || events[1].ID != "evt-late" {
		t.Errorf("dated order = [%s %s], want chronological", events[0].ID, events[1].ID)
	}
	if events[2].ID != "evt-undated" {
		t.Errorf("undated event not appended last, got %s", events[2].ID)
	}
}

func TestMergePrecisionUpgrade(t *testing.T) {
	claims := []model.Claim{
		{ID: "c1", Type: "Treatment", Value: "therapy block started 2022-05"},
		{ID: "c2", Type: "Treatment", Value: "therapy session attended", Date: "2022-05-20"},
	}

	events, _ := newEngine().Build(claims)

	if len(events) != 1 {
		t.Fatalf("events = %d, want 1 merged", len(events))
	}
	ev := events[0]
	if ev.AggregatedCount != 2 {
		t.Errorf("AggregatedCount = %d, want 2", ev.AggregatedCount)
	}
	if ev.DatePrecision != model.PrecisionDay {
		t.Errorf("precision = %q, want day after upgrade", ev.DatePrecision)
	}
	if len(ev.References) != 2 {
		t.Errorf("references = %d, want union of both claims", len(ev.References))
	}
}

func TestMergeRespectsSubjectBuckets(t *testing.T) {
	claims := []model.Claim{
		{ID: "c1", Type: "Diagnosis", Value: "ligament tear diagnosed", Date: "2023-02-01"},
		{ID: "c2", Type: "Treatment", Value: "immobilization with brace", Date: "2023-02-03"},
	}

	events, _ := newEngine().Build(claims)
	if len(events) != 2 {
		t.Errorf("events = %d, want 2 (different subject buckets must not merge)", len(events))
	}
}

func TestGapDowngradedByInterveningUndatedClaim(t *testing.T) {
	claims := []model.Claim{
		{ID: "c1", Type: "Treatment", Value: "initial therapy prescribed", Date: "2022-01-10"},
		{ID: "c2", Type: "Assessment", Value: "progress assessment without recorded date"},
		{ID: "c3", Type: "Treatment", Value: "therapy resumed after break", Date: "2023-04-02"},
	}

	_, flags := newEngine().Build(claims)

	gap := hasFlag(flags, model.FlagTimelineGap)
	if gap == nil {
		t.Fatalf("flags %v missing %s", flags, model.FlagTimelineGap)
	}
	if gap.Severity != model.SeverityInfo {
		t.Errorf("gap severity = %q, want info when an undated claim sits inside the gap", gap.Severity)
	}
}

func TestHiddenEventsReattachReferences(t *testing.T) {
	claims := []model.Claim{
		{ID: "good", Type: "Diagnosis", Value: "confirmed meniscus tear on imaging", Date: "2023-03-10"},
		{ID: "generic", Type: "Remark", Value: "note", Date: "2023-03-12"},
	}

	events, _ := newEngine().Build(claims)

	if len(events) != 1 {
		t.Fatalf("visible events = %d, want 1", len(events))
	}
	found := false
	for _, r := range events[0].References {
		if r.ID == "generic" {
			found = true
		}
	}
	if !found {
		t.Errorf("hidden event references not attached to nearest visible event: %v", events[0].References)
	}
}

func TestTooGenericFlag(t *testing.T) {
	claims := []model.Claim{
		{ID: "c1", Type: "Diagnosis", Value: "confirmed meniscus tear on imaging", Date: "2023-03-10"},
		{ID: "c2", Type: "Remark", Value: "note", Date: "2023-06-20"},
		{ID: "c3", Type: "Remark", Value: "entry", Date: "2023-09-01"},
	}

	_, flags := newEngine().Build(claims)
	if hasFlag(flags, model.FlagTimelineTooGeneric) == nil {
		t.Errorf("flags %v missing %s", flags, model.FlagTimelineTooGeneric)
	}
}
