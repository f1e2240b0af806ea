package extract

import (
	"strings"
	"testing"

	"github.com/avolkov/recordlens/internal/model"
)

func newScorer() *MetricsScorer {
	return NewMetricsScorer(model.DefaultConfig().Extraction)
}

func TestScoreCleanText(t *testing.T) {
	text := strings.Repeat("The patient attended the scheduled follow-up examination. ", 10)

	m := newScorer().Score(text)

	if m.Score != 1.0 {
		t.Errorf("score = %v, want 1.0 (reasons: %v)", m.Score, m.Reasons)
	}
	if len(m.Reasons) != 0 {
		t.Errorf("reasons = %v, want none", m.Reasons)
	}
}

func TestScorePenalties(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantScore float64
	}{
		{
			"short text",
			"Brief note about the visit.",
			0.8,
		},
		{
			"garbage characters",
			strings.Repeat("\x01\x02\x03\x04 odd ", 60),
			0.7,
		},
		{
			"fragmented lines",
			strings.Repeat("ab\ncd\nef\n", 40),
			0.8,
		},
		{
			"numeric noise",
			strings.Repeat("04012023 1234567 ", 20),
			0.9,
		},
		{
			"empty text",
			"",
			0.8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newScorer().Score(tt.text)
			if m.Score != tt.wantScore {
				t.Errorf("score = %v, want %v (reasons: %v)", m.Score, tt.wantScore, m.Reasons)
			}
			if len(m.Reasons) == 0 {
				t.Errorf("no reasons recorded for penalized text")
			}
		})
	}
}

func TestScoreNeverBelowZero(t *testing.T) {
	// Trip every penalty at once: garbage, fragments, digits, and brevity.
	text := "\x01\x02\n1\n2\n3\n"

	m := newScorer().Score(text)
	if m.Score < 0 || m.Score > 1 {
		t.Errorf("score = %v, want within [0, 1]", m.Score)
	}
}
