package generate

import (
	"fmt"
	"strings"

	"github.com/levibean95-hub/keyboard-warrior/internal/prompt"
	"github.com/levibean95-hub/keyboard-warrior/internal/tone"
)

// canned holds the generic per-tone response sets used when no context
// signal is available and as the padding source for under-delivery.
var canned = map[tone.Tone][]string{
	tone.CalmCollected: {
		"I notice you're using an ad hominem approach rather than addressing the evidence. Let's return to the facts at hand.",
		"That's an interesting example of circular reasoning. The actual data points to a different conclusion entirely.",
		"You're presenting a false dichotomy. There are several other well-documented options we should consider.",
	},
	tone.Aggressive: {
		"You're completely missing the point here.",
		"Seriously? That's your argument?",
		"You can't seriously believe that.",
	},
	tone.Cunning: {
		"Interesting perspective, though I wonder if you've considered the implications when we apply that same reasoning to your earlier point about X.",
		"You make a compelling case. Of course, one might argue that's precisely what someone would say if they were avoiding the real issue.",
		"I appreciate your passion on this. Help me understand, when you say X, are you suggesting Y? Because that would be quite the admission.",
	},
	tone.Playful: {
		"Okay but that's literally not what happened lol",
		"Wait are you seriously saying that? That's wild",
		"Idk about that one bestie, you're missing key details",
	},
	tone.Nerd: {
		"Actually, that's a textbook example of post hoc ergo propter hoc fallacy. The peer-reviewed literature demonstrates no causal relationship.",
		"Your argument contains three distinct logical fallacies: straw man, false dichotomy, and appeal to emotion. Let me address the actual data.",
		"According to a 2023 meta-analysis of 47 studies with n=12,000, the effect size is actually inverse to your claim (p<0.001).",
	},
	tone.Casual: {
		"Yeah but that's not how it works in practice.",
		"Nah man, that's not quite right.",
		"There's more to it than that.",
	},
	tone.Professional: {
		"I must respectfully disagree based on the available data.",
		"I'd like to offer an alternative viewpoint.",
		"We should consider the long-term implications of that approach.",
	},
	tone.Custom: {
		"Your response here, tailored to your unique style.",
		"Express yourself in your own distinctive way.",
		"Share your perspective with your personal touch.",
	},
}

// Canned returns a fresh copy of the generic 3-response set for the tone.
// Unknown tones get the casual set.
func Canned(t tone.Tone) []string {
	set, ok := canned[t]
	if !ok {
		set = canned[tone.Casual]
	}
	out := make([]string, len(set))
	copy(out, set)
	return out
}

// requestShape classifies a request for the enhanced fallback templates.
type requestShape int

const (
	shapeGeneric requestShape = iota
	shapeConversation
	shapePositions
)

func classifyShape(req Request) (requestShape, string) {
	if strings.Contains(req.Context, prompt.ConversationMarker) {
		if last := lastOpponentMessage(req.Context); last != "" {
			return shapeConversation, last
		}
		return shapeGeneric, ""
	}
	if req.OpponentPosition != "" && req.UserPosition != "" {
		return shapePositions, ""
	}
	return shapeGeneric, ""
}

// lastOpponentMessage scans the transcript backwards for the most recent
// line tagged as the opponent's turn.
func lastOpponentMessage(context string) string {
	lines := strings.Split(context, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if rest, ok := strings.CutPrefix(lines[i], "Opponent:"); ok {
			return strings.TrimSpace(rest)
		}
	}
	return ""
}

// extractTopic produces a short topic phrase from a stated position: quotes
// stripped, truncated to 30 characters, cut at the first sentence-ending
// punctuation.
func extractTopic(text string) string {
	cleaned := strings.NewReplacer(`'`, "", `"`, "").Replace(text)
	cleaned = strings.TrimSpace(cleaned)
	if runes := []rune(cleaned); len(runes) > 30 {
		cleaned = string(runes[:30]) + "..."
	}
	if i := strings.IndexAny(cleaned, ".!?"); i >= 0 {
		cleaned = cleaned[:i]
	}
	return strings.TrimSpace(cleaned)
}

// Contextual returns the enhanced, context-aware canned set for the request:
// conversation-shaped requests get replies to the opponent's latest message,
// position-pair requests get topic-templated lines, and anything else falls
// back to the generic set. Deterministic for identical inputs.
func Contextual(req Request) []string {
	t := req.Tone
	if !tone.Valid(t) {
		t = tone.Casual
	}
	// Custom carries no canned voice of its own; serve the generic casual
	// set instead of the placeholder lines.
	if t == tone.Custom {
		return Canned(tone.Casual)
	}

	shape, _ := classifyShape(req)
	switch shape {
	case shapeConversation:
		if set, ok := conversational[t]; ok {
			return append([]string(nil), set...)
		}
	case shapePositions:
		if tmpl, ok := positional[t]; ok {
			opp := extractTopic(req.OpponentPosition)
			user := extractTopic(req.UserPosition)
			return []string{
				fmt.Sprintf(tmpl[0], templateArgs(tmpl[0], opp, user)...),
				fmt.Sprintf(tmpl[1], templateArgs(tmpl[1], opp, user)...),
				fmt.Sprintf(tmpl[2], templateArgs(tmpl[2], opp, user)...),
			}
		}
	}
	return Canned(t)
}

// conversational holds replies for the conversation-in-progress shape.
var conversational = map[tone.Tone][]string{
	tone.CalmCollected: {
		"I understand your point, but the evidence suggests otherwise. Let's look at the facts objectively.",
		"That's an interesting perspective. However, when we examine the data, a different pattern emerges.",
		"I appreciate your input, though I believe we should consider the broader implications here.",
	},
	tone.Aggressive: {
		"That's absolutely ridiculous. You can't seriously believe that nonsense.",
		"Are you even listening to yourself? That makes zero sense.",
		"Wrong. Completely wrong. Let me explain why you're mistaken.",
	},
	tone.Cunning: {
		"Fascinating argument. Of course, if we apply that same logic to your earlier point, it contradicts everything you just said.",
		"You raise an excellent point. I'm curious though, how do you reconcile that with the documented evidence to the contrary?",
		"I see what you're trying to do here. Clever, but not clever enough. Let me show you what you missed.",
	},
	tone.Playful: {
		"Lol okay but that's literally not how any of this works though 😂",
		"Wait wait wait... you're seriously going with that? That's actually hilarious",
		"Bestie, I love the confidence but you're missing like... everything important here",
	},
	tone.Nerd: {
		"Actually, that's a textbook example of the Dunning-Kruger effect. The empirical data from multiple peer-reviewed studies contradicts your assertion.",
		"Your argument contains three logical fallacies: ad hominem, straw man, and false equivalence. Let me address the actual data.",
		"According to a comprehensive meta-analysis, your position has been thoroughly debunked. Here's what the research actually shows.",
	},
	tone.Casual: {
		"Yeah nah, that's not really how it works though.",
		"I mean, sure, but you're kinda missing the whole point here.",
		"Okay but like, that doesn't actually make sense when you think about it.",
	},
	tone.Professional: {
		"I respectfully disagree with that assessment. The available data suggests a different conclusion.",
		"While I understand your perspective, I believe we should consider alternative viewpoints on this matter.",
		"Thank you for sharing your thoughts. However, I must point out several inaccuracies in that analysis.",
	},
}

// positional holds topic-templated lines for the explicit position-pair
// shape. %[1]s is the opponent topic, %[2]s the user topic.
var positional = map[tone.Tone][3]string{
	tone.CalmCollected: {
		"While I respect your stance on %[1]s, the evidence clearly supports %[2]s.",
		"Let's examine this logically. Your position has merit, but overlooks several crucial factors.",
		"I see where you're coming from, but the data tells a different story entirely.",
	},
	tone.Aggressive: {
		"Your argument about %[1]s is completely flawed. Here's why you're wrong.",
		"That's the worst take I've heard. The facts completely demolish your position.",
		"You clearly don't understand this topic. Let me educate you on reality.",
	},
	tone.Cunning: {
		"Your position on %[1]s is intriguing. Though one might wonder if you've considered how it undermines your credibility.",
		"I appreciate your passion. It's exactly what someone would show when they know their argument is weak.",
		"Interesting strategy, defending %[1]s. Almost like you're avoiding the real issue entirely.",
	},
	tone.Playful: {
		"Not you trying to defend %[1]s 💀 that's wild",
		"The way you're completely missing the point is actually impressive ngl",
		"Tell me you don't understand %[2]s without telling me... oh wait you just did",
	},
	tone.Nerd: {
		"The academic consensus on %[2]s is clear. Your position ignores decades of research.",
		"Statistically speaking, your argument about %[1]s has a p-value that would make any researcher laugh.",
		"From a theoretical standpoint, %[2]s is supported by multiple frameworks while your position lacks empirical backing.",
	},
	tone.Casual: {
		"Look, I get what you're saying about %[1]s, but it just doesn't add up.",
		"That's cool and all, but %[2]s makes way more sense honestly.",
		"I hear you, but there's like a bunch of stuff you're not considering.",
	},
	tone.Professional: {
		"Regarding your position on %[1]s, I believe %[2]s offers a more comprehensive solution.",
		"From a strategic standpoint, the evidence strongly favors %[2]s over your proposed approach.",
		"While your proposal has merit, the data indicates that %[2]s would yield superior outcomes.",
	},
}

// templateArgs supplies both topics to fmt even when a template only uses
// one, avoiding EXTRA errors from unused arguments.
func templateArgs(tmpl, opp, user string) []any {
	if !strings.Contains(tmpl, "%") {
		return nil
	}
	return []any{opp, user}
}
