package ingest

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"golang.org/x/net/html"
)

// maxExamples caps how many style example messages one upload contributes.
const maxExamples = 20

// ExtractText pulls plain text out of an uploaded writing sample. PDF and
// HTML get real extraction; everything else is treated as plain text.
func ExtractText(data []byte, contentType string) (string, error) {
	switch {
	case strings.HasPrefix(contentType, "application/pdf"):
		return extractPDF(data)
	case strings.HasPrefix(contentType, "text/html"):
		return extractHTML(data)
	default:
		return string(data), nil
	}
}

func extractPDF(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}
	reader, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extracting pdf text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(reader); err != nil {
		return "", fmt.Errorf("reading pdf text: %w", err)
	}
	return buf.String(), nil
}

func extractHTML(data []byte) (string, error) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("parsing html: %w", err)
	}

	var sb strings.Builder
	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				sb.WriteString(text)
				sb.WriteString("\n")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(doc)
	return sb.String(), nil
}

// SplitExamples turns extracted text into individual example messages: one
// per non-empty line with leading quote markers stripped, capped at
// maxExamples. Lines too short to carry any style signal are dropped.
func SplitExamples(text string) []string {
	var examples []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, `>"'`)
		line = strings.TrimSpace(line)
		if len(line) < 3 {
			continue
		}
		examples = append(examples, line)
		if len(examples) == maxExamples {
			break
		}
	}
	return examples
}
