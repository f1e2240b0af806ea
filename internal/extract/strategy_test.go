package extract

import (
	"strings"
	"testing"

	"github.com/avolkov/recordlens/internal/model"
)

func TestSelect(t *testing.T) {
	dense := strings.Repeat("Plausible digital text from a well-formed export. ", 10)

	tests := []struct {
		name      string
		sample    string
		pageCount int
		byteSize  int64
		force     bool
		want      model.ExtractionMode
	}{
		{"forced", dense, 1, 1024, true, model.ModeEnhanced},
		{"dense digital text", dense, 1, 1024, false, model.ModeBase},
		{"low density", "short", 3, 1024, false, model.ModeEnhanced},
		{"empty sample", "", 1, 1024, false, model.ModeEnhanced},
		{"garbage sample", strings.Repeat("\x01\x02\x03 x ", 80), 1, 1024, false, model.ModeEnhanced},
		{"oversized file", dense, 1, 9 << 20, false, model.ModeEnhanced},
		{"zero pages counts as one", dense, 0, 1024, false, model.ModeBase},
	}

	selector := NewStrategySelector(model.DefaultConfig().Extraction)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mode, reason := selector.Select(tt.sample, tt.pageCount, tt.byteSize, tt.force)
			if mode != tt.want {
				t.Errorf("Select() = %q (%s), want %q", mode, reason, tt.want)
			}
			if reason == "" {
				t.Error("no reason returned")
			}
		})
	}
}
