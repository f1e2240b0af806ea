package extract

import (
	"strings"

	"golang.org/x/net/html"
)

// parseHTML extracts visible text from an HTML document, skipping
// script/style subtrees. Medical records exported from portal systems
// frequently arrive as single-page HTML.
func parseHTML(data []byte) (*ParsedDocument, error) {
	doc, err := html.Parse(strings.NewReader(string(data)))
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			case "p", "div", "br", "li", "tr", "h1", "h2", "h3", "h4", "h5", "h6":
				if sb.Len() > 0 {
					sb.WriteByte('\n')
				}
			}
		}
		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				if sb.Len() > 0 && !strings.HasSuffix(sb.String(), "\n") {
					sb.WriteByte(' ')
				}
				sb.WriteString(text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return &ParsedDocument{Text: strings.TrimSpace(sb.String()), PageCount: 1}, nil
}

// parseText passes plain text through with whitespace normalization only
func parseText(data []byte) (*ParsedDocument, error) {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	// Form feeds mark page boundaries in text exports.
	pages := 1 + strings.Count(text, "\f")
	text = strings.ReplaceAll(text, "\f", "\n")
	return &ParsedDocument{Text: strings.TrimSpace(text), PageCount: pages}, nil
}

// sniffFormat detects the document format from magic bytes and content
func sniffFormat(data []byte) string {
	switch {
	case len(data) > 4 && string(data[:4]) == "%PDF":
		return "pdf"
	case looksLikeHTML(data):
		return "html"
	default:
		return "text"
	}
}

func looksLikeHTML(data []byte) bool {
	head := strings.ToLower(string(data[:min(len(data), 512)]))
	return strings.Contains(head, "<html") || strings.Contains(head, "<!doctype html")
}
