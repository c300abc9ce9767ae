package generate

import "strings"

// delimiter separates candidate responses in raw backend output: a line
// consisting of exactly three hyphens.
const delimiter = "---"

// Parse splits raw backend output into candidate responses and repairs
// stylistic leakage the prompt constraints ban: em-dashes and double hyphens
// become commas, then comma spacing is normalized. Empty segments are
// dropped; order is preserved. Repair is a fixed point, so re-parsing parsed
// output is a no-op.
func Parse(raw string) []string {
	var out []string
	for _, seg := range splitOnDelimiterLines(raw) {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		out = append(out, repair(seg))
	}
	return out
}

// splitOnDelimiterLines cuts the text at lines that are exactly "---".
func splitOnDelimiterLines(raw string) []string {
	var segments []string
	var current []string
	for line := range strings.Lines(raw) {
		if strings.TrimRight(line, "\r\n") == delimiter {
			segments = append(segments, strings.Join(current, ""))
			current = current[:0]
			continue
		}
		current = append(current, line)
	}
	segments = append(segments, strings.Join(current, ""))
	return segments
}

func repair(s string) string {
	s = strings.ReplaceAll(s, "—", ",")
	s = strings.ReplaceAll(s, "--", ",")
	for {
		prev := s
		s = strings.ReplaceAll(s, " , ", ", ")
		s = strings.ReplaceAll(s, ",,", ",")
		if s == prev {
			return s
		}
	}
}
