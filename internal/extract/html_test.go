package extract

import (
	"strings"
	"testing"
)

func TestParseHTML(t *testing.T) {
	doc := []byte(`<!DOCTYPE html>
<html><head><title>Record</title><style>p { color: red }</style></head>
<body>
<script>var tracking = true;</script>
<h1>Discharge Summary</h1>
<p>Patient admitted on 2023-02-01.</p>
<p>Discharged after observation.</p>
</body></html>`)

	parsed, err := parseHTML(doc)
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(parsed.Text, "Discharge Summary") {
		t.Errorf("text missing heading: %q", parsed.Text)
	}
	if !strings.Contains(parsed.Text, "Patient admitted on 2023-02-01.") {
		t.Errorf("text missing paragraph: %q", parsed.Text)
	}
	if strings.Contains(parsed.Text, "tracking") {
		t.Errorf("script content leaked into text: %q", parsed.Text)
	}
	if strings.Contains(parsed.Text, "color: red") {
		t.Errorf("style content leaked into text: %q", parsed.Text)
	}
	if parsed.PageCount != 1 {
		t.Errorf("page count = %d, want 1", parsed.PageCount)
	}
}

func TestParseTextCountsFormFeedPages(t *testing.T) {
	parsed, err := parseText([]byte("page one\fpage two\fpage three"))
	if err != nil {
		t.Fatal(err)
	}
	if parsed.PageCount != 3 {
		t.Errorf("page count = %d, want 3", parsed.PageCount)
	}
	if strings.Contains(parsed.Text, "\f") {
		t.Errorf("form feeds left in text: %q", parsed.Text)
	}
}

func TestSniffFormat(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"pdf", "%PDF-1.7 rest of document", "pdf"},
		{"html doctype", "<!DOCTYPE html><html></html>", "html"},
		{"html tag", "  <HTML><body></body></HTML>", "html"},
		{"plain text", "Just a plain note.", "text"},
		{"empty", "", "text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sniffFormat([]byte(tt.data)); got != tt.want {
				t.Errorf("sniffFormat() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodePDFLiteral(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`plain text`, "plain text"},
		{`with \(escaped\) parens`, "with (escaped) parens"},
		{`line\nbreak`, "line\nbreak"},
		{`octal \040space`, "octal  space"},
		{`back\\slash`, `back\slash`},
	}
	for _, tt := range tests {
		if got := decodePDFLiteral([]byte(tt.in)); got != tt.want {
			t.Errorf("decodePDFLiteral(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTextFromContentStream(t *testing.T) {
	stream := []byte("BT\n/F1 12 Tf\n(Patient presented with acute pain) Tj\nT*\n(Prescribed rest and follow-up) Tj\nET\n")

	text := textFromContentStream(stream)

	if !strings.Contains(text, "Patient presented with acute pain") {
		t.Errorf("missing first show-text operand: %q", text)
	}
	if !strings.Contains(text, "Prescribed rest and follow-up") {
		t.Errorf("missing second show-text operand: %q", text)
	}
}
