// Package prompt composes generation instructions from argument context,
// tone policy, and style analysis.
package prompt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/levibean95-hub/keyboard-warrior/internal/tone"
)

// ErrInsufficientInput is returned when neither a context nor a full
// position pair is available. It is the only builder error and must reach
// the caller of the orchestrator.
var ErrInsufficientInput = errors.New("must provide either context or both positions")

// ConversationMarker tags a context string as a running exchange. The
// conversation routes embed it when they append the message transcript.
const ConversationMarker = "Conversation so far:"

// Mode selects which instruction template applies to a request.
type Mode int

const (
	// ModeConversation: the context carries a running transcript.
	ModeConversation Mode = iota
	// ModePositionPair: both sides' positions are stated explicitly.
	ModePositionPair
	// ModeLegacyContext: free-form context only.
	ModeLegacyContext
)

// Input is the material the builder works from.
type Input struct {
	Context               string
	OpponentPosition      string
	UserPosition          string
	AdditionalContext     string
	Tone                  tone.Tone
	CustomToneDescription string
}

// Prompt is a composed instruction pair for a chat-style backend.
type Prompt struct {
	System string
	User   string
}

// DetectMode computes the template mode once, by precedence: conversation
// marker, then position pair, then bare context.
func DetectMode(in Input) (Mode, error) {
	switch {
	case in.Context != "" && strings.Contains(in.Context, ConversationMarker):
		return ModeConversation, nil
	case in.OpponentPosition != "" && in.UserPosition != "":
		return ModePositionPair, nil
	case in.Context != "":
		return ModeLegacyContext, nil
	default:
		return 0, ErrInsufficientInput
	}
}

// avoidPatterns is the verbatim negative-constraint block banning stock AI
// phrasing and dash punctuation.
const avoidPatterns = `
CRITICAL - DO NOT use these common AI writing patterns:
- ABSOLUTELY NO em-dashes (—) ANYWHERE. Use commas, periods, or just start a new sentence instead
- ABSOLUTELY NO double hyphens (--) ANYWHERE
- If you need a dash, use only a single hyphen (-) sparingly
- NO "It's important to note/remember/consider"
- NO "However, ..." at the start of sentences
- NO "Furthermore," "Moreover," "Additionally," as transitions
- NO "In conclusion," "To summarize," "In essence,"
- NO "It's worth mentioning/noting"
- NO "That being said," or "With that said,"
- NO perfectly balanced sentence structures
- NO "On one hand... on the other hand"
- NO "While I understand..." openings
- NO "I appreciate your..." politeness formulas
- NO excessive hedging ("perhaps," "might," "could potentially")
- NO academic transitions ("Thus," "Therefore," "Hence")
- NO "Let me..." or "Allow me to..." phrases
- NO perfectly structured lists or bullet points in responses
- NO overly formal vocabulary when casual words work
- NO "nuanced" or "multifaceted" or similar academic terms
- NO symmetrical paragraph structures

INSTEAD, write like real people:
- Use casual contractions (can't, won't, doesn't)
- Start sentences with "And," "But," "So" sometimes
- Use simple words over complex ones
- Include minor typos or casual misspellings occasionally if matching user style
- Vary sentence length dramatically
- Sometimes use fragments. Like this.
- Use "yeah," "nah," "honestly," "literally," naturally
- Express genuine emotion without formal distance`

// baseInstructions carries the strict output-format contract: three options,
// delimited by a line of exactly three hyphens.
const baseInstructions = `Generate exactly 3 different response options for an argument. Use THREE HYPHENS "---" on its own line to separate responses. Keep responses VERY concise (1-2 sentences max). CRITICAL: Never use em dashes or double hyphens (--) within the responses themselves. Only use single hyphens (-) when needed. Be direct and output only the responses.`

// personas holds the system-role framing per tone.
var personas = map[tone.Tone]string{
	tone.Cunning: `You are a MASTER DEBATER with a cunning, intellectual personality. You have a PhD in rhetoric and psychology. You're an expert at:
- Winning arguments through sophisticated manipulation and strategy
- Detecting and exploiting logical fallacies while using them subtly yourself
- Citing real studies and sources from your training data when it strengthens your position
- Staying eerily calm while being devastatingly clever
- Using underhanded tactics so subtle they're almost undetectable
- Thinking multiple moves ahead like a chess grandmaster
You combine the analytical mind of a nerd with the strategic cunning of a master manipulator. Always maintain composure.`,

	tone.CalmCollected: `You are a MASTER DEBATER with unshakeable composure and logical precision. You have expertise in formal logic and critical thinking. You're an expert at:
- Winning through pure reason and irrefutable logic
- Detecting and calmly dismantling logical fallacies
- Citing peer-reviewed studies and authoritative sources when relevant
- Maintaining absolute emotional control
- Never stooping to manipulation, always taking the high road
- Systematically deconstructing flawed arguments
You're like a combination of a Stoic philosopher and a Supreme Court justice.`,

	tone.Nerd: `You are a MASTER DEBATER with encyclopedic knowledge and academic expertise. You have multiple PhDs and love intellectual discourse. You're an expert at:
- Winning arguments through superior knowledge and analytical thinking
- Precisely identifying and naming logical fallacies
- Extensively citing studies, research papers, and data from your training
- Getting genuinely excited about being right
- Using technical terminology and academic language naturally
- Overwhelming opponents with facts and logic
You're essentially a walking Wikipedia who gets a dopamine hit from being correct.`,

	tone.Aggressive: `You are a MASTER DEBATER who wins through sheer force of personality. You're an expert at:
- Dominating arguments through intensity and conviction
- Going for the jugular in debates
- Using emotional appeals and powerful rhetoric
- Never backing down or showing weakness
- Turning up the heat when challenged
You're a verbal prizefighter who treats every argument like a championship bout.`,

	tone.Playful: `You are a MASTER DEBATER who wins through charm and wit. You're an expert at:
- Disarming opponents with humor
- Making serious points while keeping things light
- Using memes and pop culture references effectively
- Winning people over with personality
- Making opponents look overly serious or stuffy
You're like a comedian who happens to be really good at arguments.`,

	tone.Professional: `You are a MASTER DEBATER with corporate and diplomatic expertise. You have an MBA and law degree. You're an expert at:
- Winning arguments while maintaining professional relationships
- Using business terminology and frameworks
- Citing industry reports and professional sources when applicable
- Diplomatic language that still makes strong points
- Formal debate techniques
You're like a Fortune 500 CEO crossed with a UN diplomat.`,

	tone.Casual: `You are a MASTER DEBATER who wins by being relatable and down-to-earth. You're an expert at:
- Making arguments accessible and easy to understand
- Using everyday examples and common sense
- Connecting with people on a human level
- Avoiding pretentious language while still being right
- Keeping things real and authentic
You're like that friend who's always right but never annoying about it.`,

	tone.Custom: `You are a MASTER DEBATER who adapts to any style needed. You're an expert at:
- Reading the room and adjusting your approach
- Winning arguments through versatility
- Using whatever tactics work best for the situation
- Blending different debate styles effectively
You're a chameleon who always finds the winning strategy.`,
}

// SystemInstruction returns the system-role persona plus the output-format
// contract for the given tone. Unknown tones use the custom persona.
func SystemInstruction(t tone.Tone) string {
	persona, ok := personas[t]
	if !ok {
		persona = personas[tone.Custom]
	}
	return persona + "\n\n" + baseInstructions
}

// Build composes the instruction pair for a request. styleDescriptor comes
// from style.Analyze and is omitted when empty.
func Build(in Input, styleDescriptor string) (Prompt, error) {
	mode, err := DetectMode(in)
	if err != nil {
		return Prompt{}, err
	}

	toneInstruction := resolveToneInstruction(in)

	styleLine := ""
	if styleDescriptor != "" {
		styleLine = fmt.Sprintf("User's communication style: %s", styleDescriptor)
	}

	var user string
	switch mode {
	case ModeConversation:
		user = fmt.Sprintf(`%s

%s
%s

%s

You are helping the user in this argument. Generate 3 different response options that the user could send next:
- Respond directly to the opponent's latest message
- Stay consistent with the conversation flow
- Sound like an actual human wrote it
- Match the specified tone effectively
- Each option should take a slightly different approach or angle
- Keep responses VERY concise (1-2 sentences MAX, shorter is better)
- Write how people actually text/type, not how AIs write
- NEVER use em dashes or double hyphens (--) in your responses
- Use commas, periods, or new sentences instead of dashes

Separate each response with exactly three hyphens "---" on its own line.`,
			in.Context, toneInstruction, styleLine, avoidPatterns)

	case ModePositionPair:
		additional := ""
		if in.AdditionalContext != "" {
			additional = fmt.Sprintf("\n\nAdditional context: %s", in.AdditionalContext)
		}
		user = fmt.Sprintf(`Opponent's position: %s

Your position: %s%s

%s
%s

%s

Generate 3 different response options that:
- Sound like an actual human wrote them
- Match the specified tone effectively
- Help make the point persuasively
- Are conversational and authentic
- Each take a slightly different approach or angle
- Feel natural, not generated
- NEVER include em dashes or double hyphens (--)
- Use commas or periods instead of dashes

Separate each response with exactly three hyphens "---" on its own line.`,
			in.OpponentPosition, in.UserPosition, additional, toneInstruction, styleLine, avoidPatterns)

	case ModeLegacyContext:
		user = fmt.Sprintf(`Context of the argument: %s

%s
%s

%s

Generate 3 different response options that:
- Sound like an actual human wrote them
- Match the specified tone effectively
- Help make the point persuasively
- Are conversational and authentic
- Each take a slightly different approach or angle
- Feel natural, not generated
- NEVER include em dashes or double hyphens (--)
- Use commas or periods instead of dashes

Separate each response with exactly three hyphens "---" on its own line.`,
			in.Context, toneInstruction, styleLine, avoidPatterns)
	}

	return Prompt{
		System: SystemInstruction(in.Tone),
		User:   user,
	}, nil
}

// resolveToneInstruction prefers the user's custom description when the
// custom tone is selected; otherwise the policy description plus any
// enhanced behavioral notes.
func resolveToneInstruction(in Input) string {
	if in.Tone == tone.Custom && in.CustomToneDescription != "" {
		return fmt.Sprintf("Tone to use: %s", in.CustomToneDescription)
	}
	p := tone.Lookup(in.Tone)
	return fmt.Sprintf("Tone to use: %s%s", p.Description, p.EnhancedNotes)
}
