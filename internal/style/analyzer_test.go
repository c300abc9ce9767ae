package style

import (
	"strings"
	"testing"
)

func TestAnalyzeEmpty(t *testing.T) {
	if got := Analyze(nil); got != "" {
		t.Errorf("Analyze(nil) = %q, want empty", got)
	}
	if got := Analyze([]string{}); got != "" {
		t.Errorf("Analyze([]) = %q, want empty", got)
	}
}

func TestAnalyzeShortMessagesAllSignals(t *testing.T) {
	got := Analyze([]string{"hi?", "HI!!", "😀 sup?"})

	for _, want := range []string{
		"short, concise messages",
		"Uses emojis occasionally",
		"Often asks questions",
		"Uses exclamation marks for emphasis",
		"Sometimes uses CAPS for emphasis",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Analyze result %q missing %q", got, want)
		}
	}
}

func TestAnalyzeLongMessages(t *testing.T) {
	long := strings.Repeat("this is a fairly verbose sentence. ", 6)
	got := Analyze([]string{long, long})
	if !strings.Contains(got, "detailed, longer messages") {
		t.Errorf("Analyze = %q, want long classification", got)
	}
	if strings.Contains(got, "emojis") {
		t.Errorf("Analyze = %q, should not report emojis", got)
	}
}

func TestAnalyzeMediumMessages(t *testing.T) {
	msg := strings.Repeat("word ", 20) // 100 chars
	got := Analyze([]string{msg})
	if !strings.Contains(got, "medium-length messages") {
		t.Errorf("Analyze = %q, want medium classification", got)
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	in := []string{"yeah ok", "nah not really", "WAIT what?"}
	a, b := Analyze(in), Analyze(in)
	if a != b {
		t.Errorf("Analyze not deterministic: %q vs %q", a, b)
	}
}

func TestAnalyzeCapsNeedsTwoLetters(t *testing.T) {
	got := Analyze([]string{"I think so"})
	if strings.Contains(got, "CAPS") {
		t.Errorf("Analyze = %q, single capital letters should not count as caps usage", got)
	}
}
