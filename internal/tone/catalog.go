package tone

import (
	"math/rand"
	"regexp"
)

// Fallacy is a named logical fallacy with a detection hint.
type Fallacy struct {
	Name        string
	Description string
	Example     string
	Detection   string
}

// Tactic is a named underhanded debate tactic.
type Tactic struct {
	Name        string
	Description string
	Subtlety    string // "high", "medium", or "low"
	Usage       string
}

// Fallacies is the reference catalog used for tone-specific prompt
// embellishment and the best-effort text labeler.
var Fallacies = []Fallacy{
	{
		Name:        "Ad Hominem",
		Description: "Attacking the person rather than the argument",
		Example:     "You only say that because you work for them",
		Detection:   "Focus on whether the argument addresses the actual point, not the person",
	},
	{
		Name:        "Straw Man",
		Description: "Misrepresenting someone's argument to make it easier to attack",
		Example:     "So you're saying we should just let everyone do whatever they want?",
		Detection:   "Check if the response actually addresses your real position",
	},
	{
		Name:        "False Dichotomy",
		Description: "Presenting only two options when more exist",
		Example:     "Either you support this or you don't care about progress",
		Detection:   "Look for artificial limitations in choices presented",
	},
	{
		Name:        "Slippery Slope",
		Description: "Assuming one event will lead to extreme consequences",
		Example:     "If we allow this, soon everything will be chaos",
		Detection:   "Examine if the chain of events is actually probable",
	},
	{
		Name:        "Appeal to Authority",
		Description: "Using authority as evidence without actual proof",
		Example:     "This expert said it, so it must be true",
		Detection:   "Check if expertise is relevant and if evidence is provided",
	},
	{
		Name:        "Circular Reasoning",
		Description: "Using the conclusion as part of the premise",
		Example:     "It's true because it says it's true",
		Detection:   "Look for arguments that assume what they're trying to prove",
	},
	{
		Name:        "Red Herring",
		Description: "Introducing irrelevant information to distract",
		Example:     "But what about this completely different issue?",
		Detection:   "Stay focused on the original topic being discussed",
	},
	{
		Name:        "Bandwagon",
		Description: "Arguing something is true because many believe it",
		Example:     "Everyone knows this is how it works",
		Detection:   "Popular opinion doesn't equal truth",
	},
	{
		Name:        "Moving the Goalposts",
		Description: "Changing criteria for proof when original criteria are met",
		Example:     "Okay but that doesn't prove this other thing",
		Detection:   "Track if requirements keep changing after being satisfied",
	},
	{
		Name:        "Gaslighting",
		Description: "Making someone question their own perception or memory",
		Example:     "You never said that, you're imagining things",
		Detection:   "Trust your memory and keep records of what was said",
	},
}

// Tactics is the reference catalog of manipulative debate moves.
var Tactics = []Tactic{
	{
		Name:        "Subtle Reframing",
		Description: "Slightly shifting the context to favor your position",
		Subtlety:    "high",
		Usage:       "I think what you're really asking is...",
	},
	{
		Name:        "Selective Agreement",
		Description: "Agreeing with minor points while undermining the main argument",
		Subtlety:    "high",
		Usage:       "You make some good points, though the real issue is...",
	},
	{
		Name:        "Concern Trolling",
		Description: "Pretending to be worried while actually criticizing",
		Subtlety:    "medium",
		Usage:       "I'm just concerned that this approach might...",
	},
	{
		Name:        "Poisoning the Well",
		Description: "Preemptively discrediting opposing arguments",
		Subtlety:    "medium",
		Usage:       "Before you bring up the usual talking points...",
	},
	{
		Name:        "Sealioning",
		Description: "Persistent requests for evidence in bad faith",
		Subtlety:    "low",
		Usage:       "Can you provide sources for every single claim?",
	},
	{
		Name:        "Gish Gallop",
		Description: "Overwhelming with many weak arguments",
		Subtlety:    "low",
		Usage:       "First, second, third, fourth... (rapid-fire points)",
	},
	{
		Name:        "False Compromise",
		Description: "Suggesting a middle ground that actually favors your position",
		Subtlety:    "high",
		Usage:       "How about we meet in the middle... (but closer to my side)",
	},
	{
		Name:        "Weaponized Empathy",
		Description: "Using emotional appeals to avoid logical scrutiny",
		Subtlety:    "medium",
		Usage:       "I just feel like you're not considering the human element",
	},
	{
		Name:        "Strategic Ambiguity",
		Description: "Being intentionally vague to avoid commitment",
		Subtlety:    "high",
		Usage:       "It depends on what you mean by...",
	},
	{
		Name:        "Kafkatrapping",
		Description: "Denial of accusation is taken as evidence of guilt",
		Subtlety:    "medium",
		Usage:       "The fact you're denying it proves my point",
	},
}

// RandomFallacy picks a catalog entry for flavor text.
func RandomFallacy() Fallacy {
	return Fallacies[rand.Intn(len(Fallacies))]
}

// RandomTactic picks a catalog entry, optionally filtered by subtlety level.
// An empty or unmatched level draws from the whole catalog.
func RandomTactic(subtlety string) Tactic {
	var filtered []Tactic
	if subtlety != "" {
		for _, t := range Tactics {
			if t.Subtlety == subtlety {
				filtered = append(filtered, t)
			}
		}
	}
	if len(filtered) == 0 {
		filtered = Tactics
	}
	return filtered[rand.Intn(len(filtered))]
}

// fallacyPatterns maps surface-form indicators to catalog names.
// First match wins, in list order.
var fallacyPatterns = []struct {
	re   *regexp.Regexp
	name string
}{
	{regexp.MustCompile(`(?i)you only|because you|you're just`), "Ad Hominem"},
	{regexp.MustCompile(`(?i)so you're saying|so you think`), "Straw Man"},
	{regexp.MustCompile(`(?i)either.*or|you're either`), "False Dichotomy"},
	{regexp.MustCompile(`(?i)if we allow|this will lead to|soon.*will`), "Slippery Slope"},
	{regexp.MustCompile(`(?i)expert.*said|authority.*says|studies show`), "Appeal to Authority"},
	{regexp.MustCompile(`(?i)everyone knows|most people|common knowledge`), "Bandwagon"},
	{regexp.MustCompile(`(?i)what about|but.*instead`), "Red Herring"},
	{regexp.MustCompile(`(?i)you never said|didn't happen|imagining`), "Gaslighting"},
}

// DetectFallacy labels the first fallacy whose indicator pattern matches the
// text. Best effort; returns false when nothing matches.
func DetectFallacy(text string) (Fallacy, bool) {
	for _, p := range fallacyPatterns {
		if p.re.MatchString(text) {
			for _, f := range Fallacies {
				if f.Name == p.name {
					return f, true
				}
			}
		}
	}
	return Fallacy{}, false
}
