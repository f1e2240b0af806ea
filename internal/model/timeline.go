package model

// DatePrecision tags how precisely an event's date could be resolved
type DatePrecision string

const (
	PrecisionDay     DatePrecision = "day"
	PrecisionMonth   DatePrecision = "month"
	PrecisionYear    DatePrecision = "year"
	PrecisionUnknown DatePrecision = "unknown"
)

// EventType classifies a timeline event. The advanced types are matched
// against the full claim text first; the fallback types against the
// declared claim type only.
type EventType string

const (
	EventMedication    EventType = "MEDICATION"
	EventImaging       EventType = "IMAGING"
	EventPhysiotherapy EventType = "PHYSIOTHERAPY"
	EventFollowUp      EventType = "FOLLOW_UP"
	EventDiagnosis     EventType = "DIAGNOSIS"
	EventExamination   EventType = "EXAMINATION"
	EventProcedure     EventType = "PROCEDURE"
	EventTreatment     EventType = "TREATMENT"
	EventAssessment    EventType = "ASSESSMENT"
	EventWorkCapacity  EventType = "WORK_CAPACITY"
	EventDisability    EventType = "DISABILITY"
	EventGeneric       EventType = "EVENT"
)

// Reference points a timeline event back at the claims it aggregates
type Reference struct {
	ID          string  `json:"id,omitempty"`
	Description string  `json:"description,omitempty"`
	Source      *Source `json:"source,omitempty"`
}

// TimelineEvent is one or more merged claims represented as a single
// chronological entry with a precision-tagged date.
type TimelineEvent struct {
	ID              string        `json:"id"`
	Date            string        `json:"date,omitempty"` // Resolved date in the precision's natural form
	DatePrecision   DatePrecision `json:"date_precision"`
	Type            EventType     `json:"type"`
	Description     string        `json:"description"`
	Source          *Source       `json:"source,omitempty"`
	References      []Reference   `json:"references"`
	AggregatedCount int           `json:"aggregated_count"`
	Hidden          bool          `json:"hidden"`
}
