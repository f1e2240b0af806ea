package model

import (
	"regexp"
	"strconv"
	"time"
)

// Date patterns tried in order: full date, year-month, bare year.
// Years are restricted to 1900-2099 so page numbers and amounts do not
// masquerade as dates.
var (
	reDayDate   = regexp.MustCompile(`\b(19\d{2}|20\d{2})-(0[1-9]|1[0-2])-(0[1-9]|[12]\d|3[01])\b`)
	reMonthDate = regexp.MustCompile(`\b(19\d{2}|20\d{2})-(0[1-9]|1[0-2])\b`)
	reYear      = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)
)

// ResolvedDate is a parsed date plus the precision it was parsed at
type ResolvedDate struct {
	Time      time.Time
	Precision DatePrecision
}

// String renders the date in its precision's natural form
func (d ResolvedDate) String() string {
	switch d.Precision {
	case PrecisionDay:
		return d.Time.Format("2006-01-02")
	case PrecisionMonth:
		return d.Time.Format("2006-01")
	case PrecisionYear:
		return d.Time.Format("2006")
	default:
		return ""
	}
}

// SameMonth reports whether two resolved dates fall in the same calendar month
func (d ResolvedDate) SameMonth(other ResolvedDate) bool {
	return d.Time.Year() == other.Time.Year() && d.Time.Month() == other.Time.Month()
}

// ParseDate extracts the first date-like pattern from text. Day precision
// wins over month precision, which wins over a bare year.
func ParseDate(text string) (ResolvedDate, bool) {
	if m := reDayDate.FindStringSubmatch(text); m != nil {
		t, err := time.Parse("2006-01-02", m[0])
		if err == nil {
			return ResolvedDate{Time: t, Precision: PrecisionDay}, true
		}
	}
	if m := reMonthDate.FindStringSubmatch(text); m != nil {
		t, err := time.Parse("2006-01", m[0])
		if err == nil {
			return ResolvedDate{Time: t, Precision: PrecisionMonth}, true
		}
	}
	if m := reYear.FindStringSubmatch(text); m != nil {
		year, _ := strconv.Atoi(m[0])
		return ResolvedDate{
			Time:      time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
			Precision: PrecisionYear,
		}, true
	}
	return ResolvedDate{Precision: PrecisionUnknown}, false
}

// ResolveClaimDate tries, in order, the explicit date field, the claim
// value, the source snippet, and the claim type. First match wins.
func ResolveClaimDate(c *Claim) (ResolvedDate, bool) {
	candidates := []string{c.Date, c.Value}
	if c.Source != nil {
		candidates = append(candidates, c.Source.Snippet)
	}
	candidates = append(candidates, c.Type)
	for _, text := range candidates {
		if text == "" {
			continue
		}
		if d, ok := ParseDate(text); ok {
			return d, true
		}
	}
	return ResolvedDate{Precision: PrecisionUnknown}, false
}

// DaysBetween returns the absolute distance between two timestamps in days
func DaysBetween(a, b time.Time) int {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return int(d.Hours() / 24)
}
