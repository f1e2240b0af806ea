// Package timeline turns evaluated claims into a deduplicated, clustered,
// chronologically ordered event list with gap and density flags.
package timeline

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/avolkov/recordlens/internal/model"
)

// typeRule pairs a lowercase substring with the event type it classifies.
// Rules are an explicit ordered list evaluated top-down; first match wins.
type typeRule struct {
	pattern string
	label   model.EventType
}

// advancedRules run against the full claim text and catch domain types
// that a generic declared type like "Treatment" would otherwise hide.
var advancedRules = []typeRule{
	{"medication", model.EventMedication},
	{"prescri", model.EventMedication},
	{"mri", model.EventImaging},
	{"x-ray", model.EventImaging},
	{"ultrasound", model.EventImaging},
	{"imaging", model.EventImaging},
	{"physiother", model.EventPhysiotherapy},
	{"physical therapy", model.EventPhysiotherapy},
	{"follow-up", model.EventFollowUp},
	{"follow up", model.EventFollowUp},
	{"review", model.EventFollowUp},
}

// fallbackRules run against the declared claim type only.
var fallbackRules = []typeRule{
	{"diagnos", model.EventDiagnosis},
	{"exam", model.EventExamination},
	{"surg", model.EventProcedure},
	{"procedure", model.EventProcedure},
	{"operation", model.EventProcedure},
	{"therap", model.EventTreatment},
	{"treatment", model.EventTreatment},
	{"work capacity", model.EventWorkCapacity},
	{"work_capacity", model.EventWorkCapacity},
	{"disability", model.EventDisability},
	{"assess", model.EventAssessment},
}

// subjectBucket maps an event type to the coarse bucket used for merge
// eligibility. Buckets never appear in output.
func subjectBucket(eventType model.EventType) string {
	switch eventType {
	case model.EventProcedure:
		return "procedure"
	case model.EventTreatment, model.EventMedication, model.EventPhysiotherapy:
		return "treatment"
	case model.EventFollowUp:
		return "follow"
	case model.EventImaging, model.EventExamination, model.EventDiagnosis:
		return "diagnostics"
	case model.EventAssessment, model.EventWorkCapacity, model.EventDisability:
		return "assessment"
	default:
		return "general"
	}
}

// genericTerms hide an event whose description is one of these.
var genericTerms = []string{"note", "general", "record", "entry", "document", "misc"}

// event is the engine's working representation before hidden filtering.
type event struct {
	model.TimelineEvent
	resolved    model.ResolvedDate
	dated       bool
	minClaimIdx int  // earliest source-order position of any merged claim
	allLow      bool // every contributing claim has low evidence quality
}

// Engine builds timelines. Instances are stateless and safe to share.
type Engine struct {
	cfg    model.AnalysisConfig
	logger *slog.Logger
}

func NewEngine(cfg model.AnalysisConfig, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{cfg: cfg, logger: logger}
}

// Build constructs the visible timeline and its flags from evaluated
// claims. Dated events come first, sorted by resolved timestamp; undated
// events follow in their original claim order.
func (e *Engine) Build(claims []model.Claim) ([]model.TimelineEvent, []model.Flag) {
	var flags []model.Flag

	events := make([]*event, 0, len(claims))
	var undatedIdx []int
	for i := range claims {
		ev := e.eventFromClaim(&claims[i], i)
		events = append(events, ev)
		if !ev.dated {
			undatedIdx = append(undatedIdx, i)
			flags = append(flags, model.NewFinding(
				model.FlagEventWithoutDate,
				fmt.Sprintf("claim %s has no resolvable date", claims[i].ID),
				model.SeverityInfo,
			))
		}
	}

	dated, undated := splitDated(events)
	sort.SliceStable(dated, func(a, b int) bool {
		return dated[a].resolved.Time.Before(dated[b].resolved.Time)
	})

	dated = e.merge(dated)
	flags = append(flags, e.gapFlags(dated, undatedIdx)...)
	if f, ok := e.densityFlag(dated); ok {
		flags = append(flags, f)
	}

	all := append(dated, undated...)
	visible, hiddenCount := e.applyHidden(all)
	if len(all) > 0 && float64(hiddenCount) > e.cfg.HiddenEventRatio*float64(len(all)) {
		flags = append(flags, model.NewFinding(
			model.FlagTimelineTooGeneric,
			fmt.Sprintf("%d of %d timeline events are too generic to display", hiddenCount, len(all)),
			model.SeverityWarning,
		))
	}

	e.logger.Debug("timeline built", "claims", len(claims), "events", len(visible), "hidden", hiddenCount, "flags", len(flags))

	out := make([]model.TimelineEvent, len(visible))
	for i, ev := range visible {
		out[i] = ev.TimelineEvent
	}
	return out, flags
}

func (e *Engine) eventFromClaim(c *model.Claim, idx int) *event {
	resolved, ok := model.ResolveClaimDate(c)

	ev := &event{
		TimelineEvent: model.TimelineEvent{
			ID:              "evt-" + c.ID,
			DatePrecision:   resolved.Precision,
			Type:            classify(c),
			Description:     strings.TrimSpace(c.Value),
			Source:          c.Source,
			AggregatedCount: 1,
			References: []model.Reference{{
				ID:          c.ID,
				Description: c.Value,
				Source:      c.Source,
			}},
		},
		resolved:    resolved,
		dated:       ok,
		minClaimIdx: idx,
		allLow:      c.EvidenceQuality == model.QualityLow,
	}
	if ok {
		ev.Date = resolved.String()
	}
	return ev
}

// classify runs the advanced rules over the full claim text, then the
// fallback rules over the declared type only.
func classify(c *model.Claim) model.EventType {
	full := strings.ToLower(c.Type + " " + c.Value)
	if c.Source != nil {
		full += " " + strings.ToLower(c.Source.Snippet)
	}
	for _, r := range advancedRules {
		if strings.Contains(full, r.pattern) {
			return r.label
		}
	}
	declared := strings.ToLower(c.Type)
	for _, r := range fallbackRules {
		if strings.Contains(declared, r.pattern) {
			return r.label
		}
	}
	return model.EventGeneric
}

func splitDated(events []*event) (dated, undated []*event) {
	for _, ev := range events {
		if ev.dated {
			dated = append(dated, ev)
		} else {
			undated = append(undated, ev)
		}
	}
	return dated, undated
}

// merge folds each dated event into its predecessor when both share a
// subject bucket and fall inside the merge window, or share an equally
// coarse date.
func (e *Engine) merge(dated []*event) []*event {
	var merged []*event
	for _, ev := range dated {
		if len(merged) > 0 && e.mergeable(merged[len(merged)-1], ev) {
			mergeInto(merged[len(merged)-1], ev)
			continue
		}
		merged = append(merged, ev)
	}
	return merged
}

func (e *Engine) mergeable(acc, next *event) bool {
	if subjectBucket(acc.Type) != subjectBucket(next.Type) {
		return false
	}
	if model.DaysBetween(acc.resolved.Time, next.resolved.Time) <= e.cfg.MergeWindowDays {
		return true
	}
	if acc.resolved.Precision == model.PrecisionYear && next.resolved.Precision == model.PrecisionYear {
		return acc.resolved.Time.Year() == next.resolved.Time.Year()
	}
	if acc.resolved.Precision == model.PrecisionMonth && next.resolved.Precision == model.PrecisionMonth {
		return acc.resolved.SameMonth(next.resolved)
	}
	return false
}

func mergeInto(acc, next *event) {
	if !strings.HasPrefix(acc.Description, "- ") {
		acc.Description = "- " + acc.Description
	}
	acc.Description += "\n- " + next.Description
	acc.References = unionReferences(acc.References, next.References)
	acc.AggregatedCount += next.AggregatedCount
	if next.resolved.Precision == model.PrecisionDay && acc.resolved.Precision != model.PrecisionDay {
		acc.resolved.Precision = model.PrecisionDay
		acc.resolved.Time = next.resolved.Time
		acc.DatePrecision = model.PrecisionDay
		acc.Date = acc.resolved.String()
	}
	if next.minClaimIdx < acc.minClaimIdx {
		acc.minClaimIdx = next.minClaimIdx
	}
	acc.allLow = acc.allLow && next.allLow
}

func unionReferences(a, b []model.Reference) []model.Reference {
	seen := make(map[string]bool, len(a))
	for _, r := range a {
		seen[r.ID] = true
	}
	for _, r := range b {
		if r.ID != "" && seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		a = append(a, r)
	}
	return a
}

// gapFlags walks merged dated events in order and flags long gaps. A gap
// with an undated claim originally positioned between the two events is
// downgraded to info, since undocumented evidence may fill it.
func (e *Engine) gapFlags(dated []*event, undatedIdx []int) []model.Flag {
	var flags []model.Flag
	for i := 1; i < len(dated); i++ {
		prev, next := dated[i-1], dated[i]
		days := model.DaysBetween(prev.resolved.Time, next.resolved.Time)
		if days <= e.cfg.GapDays {
			continue
		}

		severity := model.SeverityWarning
		lo, hi := prev.minClaimIdx, next.minClaimIdx
		if lo > hi {
			lo, hi = hi, lo
		}
		for _, idx := range undatedIdx {
			if idx > lo && idx < hi {
				severity = model.SeverityInfo
				break
			}
		}

		f := model.NewFinding(
			model.FlagTimelineGap,
			fmt.Sprintf("%d days without documented events between %s and %s", days, prev.Date, next.Date),
			severity,
		)
		f.RelatedClaimIDs = referenceIDs(prev, next)
		flags = append(flags, f)
	}
	return flags
}

// densityFlag scans dated events with a forward window and reports the
// first cluster of DensityMinEvents within DensityWindowDays. At most one
// flag per run.
func (e *Engine) densityFlag(dated []*event) (model.Flag, bool) {
	for i := range dated {
		j := i
		for j+1 < len(dated) &&
			model.DaysBetween(dated[i].resolved.Time, dated[j+1].resolved.Time) <= e.cfg.DensityWindowDays {
			j++
		}
		count := 0
		for k := i; k <= j; k++ {
			count += dated[k].AggregatedCount
		}
		if count >= e.cfg.DensityMinEvents {
			f := model.NewFinding(
				model.FlagDensePeriod,
				fmt.Sprintf("%d documented events within %d days starting %s", count, e.cfg.DensityWindowDays, dated[i].Date),
				model.SeverityInfo,
			)
			f.RelatedClaimIDs = referenceIDs(dated[i:j+1]...)
			return f, true
		}
	}
	return model.Flag{}, false
}

// applyHidden filters generic events out of the visible timeline and
// re-attaches their references to the nearest visible event by timestamp
// distance. Hidden events without a timestamp attach to the first visible
// event; so does a tie, since the first visible event encountered wins.
func (e *Engine) applyHidden(all []*event) (visible []*event, hiddenCount int) {
	var hidden []*event
	for _, ev := range all {
		if e.isHidden(ev) {
			ev.Hidden = true
			hidden = append(hidden, ev)
			continue
		}
		visible = append(visible, ev)
	}

	for _, h := range hidden {
		target := e.nearestVisible(h, visible)
		if target != nil {
			target.References = unionReferences(target.References, h.References)
		}
	}
	return visible, len(hidden)
}

func (e *Engine) isHidden(ev *event) bool {
	desc := strings.TrimSpace(ev.Description)
	if desc == "" || len(desc) < e.cfg.MinDescription {
		return true
	}
	if ev.Type == model.EventGeneric {
		return true
	}
	lower := strings.ToLower(desc)
	for _, term := range genericTerms {
		if lower == term {
			return true
		}
	}
	return ev.allLow
}

func (e *Engine) nearestVisible(h *event, visible []*event) *event {
	if len(visible) == 0 {
		return nil
	}
	if !h.dated {
		return visible[0]
	}

	var best *event
	bestDays := 0
	for _, v := range visible {
		if !v.dated {
			continue
		}
		days := model.DaysBetween(h.resolved.Time, v.resolved.Time)
		if best == nil || days < bestDays {
			best, bestDays = v, days
		}
	}
	if best == nil {
		return visible[0]
	}
	return best
}

func referenceIDs(events ...*event) []string {
	var ids []string
	seen := make(map[string]bool)
	for _, ev := range events {
		for _, r := range ev.References {
			if r.ID == "" || seen[r.ID] {
				continue
			}
			seen[r.ID] = true
			ids = append(ids, r.ID)
		}
	}
	return ids
}
