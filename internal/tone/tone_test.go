package tone

import (
	"strings"
	"testing"
)

func TestProfilesTotalOverToneSet(t *testing.T) {
	for _, tn := range All {
		p := Lookup(tn)
		if p.Description == "" {
			t.Errorf("tone %q has empty description", tn)
		}
	}
}

func TestLookupUnknownFallsBackToCasual(t *testing.T) {
	got := Lookup(Tone("sarcastic"))
	want := Lookup(Casual)
	if got.Description != want.Description {
		t.Errorf("unknown tone description = %q, want casual description", got.Description)
	}
}

func TestValid(t *testing.T) {
	if !Valid(Cunning) {
		t.Error("Valid(cunning) = false, want true")
	}
	if Valid(Tone("girly")) {
		t.Error("Valid(girly) = true, want false")
	}
}

func TestEnhancedNotesSubset(t *testing.T) {
	withNotes := map[Tone]bool{Cunning: true, CalmCollected: true, Nerd: true}
	for _, tn := range All {
		p := Lookup(tn)
		if withNotes[tn] && p.EnhancedNotes == "" {
			t.Errorf("tone %q should carry enhanced notes", tn)
		}
		if !withNotes[tn] && p.EnhancedNotes != "" {
			t.Errorf("tone %q unexpectedly carries enhanced notes", tn)
		}
	}
}

func TestTraitsRanges(t *testing.T) {
	for _, tn := range All {
		tr := GetTraits(tn)
		for name, v := range map[string]int{
			"FallacyDetectionSkill": tr.FallacyDetectionSkill,
			"TacticalSubtlety":      tr.TacticalSubtlety,
			"EmotionalControl":      tr.EmotionalControl,
			"AnalyticalThinking":    tr.AnalyticalThinking,
		} {
			if v < 0 || v > 100 {
				t.Errorf("tone %q: %s = %d, want 0-100", tn, name, v)
			}
		}
	}
}

func TestCunningTraits(t *testing.T) {
	tr := GetTraits(Cunning)
	if !tr.DetectsFallacies || !tr.UsesFallacies || !tr.UsesUnderhandedTactics {
		t.Errorf("cunning traits = %+v, want all boolean traits set", tr)
	}
	if tr.FallacyDetectionSkill != 95 {
		t.Errorf("cunning FallacyDetectionSkill = %d, want 95", tr.FallacyDetectionSkill)
	}
}

func TestCatalogSizes(t *testing.T) {
	if len(Fallacies) != 10 {
		t.Errorf("len(Fallacies) = %d, want 10", len(Fallacies))
	}
	if len(Tactics) != 10 {
		t.Errorf("len(Tactics) = %d, want 10", len(Tactics))
	}
}

func TestDetectFallacy(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"you only say that because you work for them", "Ad Hominem"},
		{"so you're saying we should ban everything?", "Straw Man"},
		{"either you support this or you hate progress", "False Dichotomy"},
		{"everyone knows this is how it works", "Bandwagon"},
	}
	for _, c := range cases {
		f, ok := DetectFallacy(c.text)
		if !ok {
			t.Errorf("DetectFallacy(%q) found nothing, want %s", c.text, c.want)
			continue
		}
		if f.Name != c.want {
			t.Errorf("DetectFallacy(%q) = %s, want %s", c.text, f.Name, c.want)
		}
	}
}

func TestDetectFallacyNoMatch(t *testing.T) {
	if _, ok := DetectFallacy("the weather is nice today"); ok {
		t.Error("DetectFallacy matched neutral text")
	}
}

func TestRandomTacticFiltersBySubtlety(t *testing.T) {
	for range 20 {
		got := RandomTactic("high")
		if got.Subtlety != "high" {
			t.Fatalf("RandomTactic(high) returned subtlety %q", got.Subtlety)
		}
	}
}

func TestRandomTacticUnknownLevelUsesFullCatalog(t *testing.T) {
	got := RandomTactic("extreme")
	found := false
	for _, tac := range Tactics {
		if tac.Name == got.Name {
			found = true
		}
	}
	if !found {
		t.Errorf("RandomTactic returned %q, not in catalog", got.Name)
	}
}

func TestDescriptionsMentionBehavior(t *testing.T) {
	if !strings.Contains(Describe(CalmCollected), "logical fallacies") {
		t.Error("calm-collected description should mention fallacy detection")
	}
}
