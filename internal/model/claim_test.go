package model

import (
	"strings"
	"testing"
)

func TestTraceable(t *testing.T) {
	tests := []struct {
		name  string
		claim Claim
		want  bool
	}{
		{"no source", Claim{}, false},
		{"page number", Claim{Source: &Source{Page: 3}}, true},
		{"line range", Claim{Source: &Source{LineRange: []int{4, 9}}}, true},
		{"long snippet", Claim{Source: &Source{Snippet: "a long enough snippet"}}, true},
		{"short snippet", Claim{Source: &Source{Snippet: "tiny"}}, false},
		{"whitespace snippet", Claim{Source: &Source{Snippet: "             "}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.claim.Traceable(); got != tt.want {
				t.Errorf("Traceable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestQualityDowngrade(t *testing.T) {
	tests := []struct {
		in   EvidenceQuality
		want EvidenceQuality
	}{
		{QualityHigh, QualityMedium},
		{QualityMedium, QualityLow},
		{QualityLow, QualityLow},
		{"", QualityMedium},
	}
	for _, tt := range tests {
		if got := tt.in.Downgrade(); got != tt.want {
			t.Errorf("%q.Downgrade() = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestQualityWorse(t *testing.T) {
	tests := []struct {
		a, b, want EvidenceQuality
	}{
		{QualityHigh, QualityLow, QualityLow},
		{QualityLow, QualityHigh, QualityLow},
		{QualityMedium, QualityMedium, QualityMedium},
		{QualityMedium, "", QualityMedium},
	}
	for _, tt := range tests {
		if got := tt.a.Worse(tt.b); got != tt.want {
			t.Errorf("%q.Worse(%q) = %q, want %q", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestParseClaims(t *testing.T) {
	data := []byte(`[
		{"id": "c1", "type": "Diagnosis", "value": "fracture", "date": "2023-01-05",
		 "source": {"page": 2, "line_range": [10, 12], "snippet": "fracture confirmed"}},
		{"id": "c2", "type": "Exam", "value": "general exam"}
	]`)

	claims, err := ParseClaims(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(claims) != 2 {
		t.Fatalf("claims = %d, want 2", len(claims))
	}
	if claims[0].Source == nil || claims[0].Source.Page != 2 {
		t.Errorf("source not decoded: %+v", claims[0].Source)
	}
}

func TestParseClaimsRejects(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{"missing id", `[{"value": "something"}]`, "missing id"},
		{"missing value", `[{"id": "c1"}]`, "missing value"},
		{"unknown quality", `[{"id": "c1", "value": "v", "evidence_quality": "great"}]`, "unknown evidence quality"},
		{"not json", `{{{`, "decode claims"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseClaims([]byte(tt.data))
			if err == nil {
				t.Fatal("no error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestParseClaimsNormalizesLineRange(t *testing.T) {
	data := []byte(`[{"id": "c1", "value": "v", "source": {"line_range": [1, 2, 3]}}]`)

	claims, err := ParseClaims(data)
	if err != nil {
		t.Fatal(err)
	}
	if claims[0].Source.LineRange != nil {
		t.Errorf("malformed line range kept: %v", claims[0].Source.LineRange)
	}
}
