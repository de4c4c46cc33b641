// Package safety implements the rule-based content classifier that gates
// every inbound message before it can reach the LLM. It is a pure function
// over a single message: no state, no I/O, no learned model.
package safety

import (
	"regexp"
	"strings"

	"life-story-companion/internal/domain/model"
)

// Verdict is the routing decision for one message.
type Verdict struct {
	Safe     bool
	Category model.SafetyCategory // set iff !Safe
	// Confidence is binary for now: 1.0 whenever a rule fired.
	Confidence float64
	// MatchedPatterns lists every pattern in the winning group that matched,
	// in group order. Diagnostic only; routing is per group.
	MatchedPatterns []string
}

type ruleGroup struct {
	category model.SafetyCategory
	patterns []*regexp.Regexp
}

// Groups are evaluated in this exact order and the first group with a match
// wins, so a message matching both a medical and a crisis pattern routes as
// medical. Product has been asked whether crisis should outrank the others;
// until that is answered the historical order stands.
var groups = []ruleGroup{
	{model.CategoryMedical, compile(
		`\b(?:diagnose|diagnosis|treatment|medicine|medication|prescription|pills|disease|illness|symptoms|pain|hurt|doctor|hospital|emergency)\b`,
		`\b(?:what.{0,10}wrong.{0,10}me|am.{0,5}i.{0,5}sick|feel.{0,10}unwell|health.{0,10}problem)\b`,
		`\b(?:should.{0,5}i.{0,5}take|what.{0,10}medicine|medical.{0,10}advice)\b`,
	)},
	{model.CategoryLegal, compile(
		`\b(?:legal|lawyer|attorney|court|sue|lawsuit|contract|will|testament|legal.{0,10}advice)\b`,
		`\b(?:what.{0,10}my.{0,10}rights|can.{0,5}i.{0,5}sue|legal.{0,10}help)\b`,
	)},
	{model.CategoryCrisis, compile(
		`\b(?:kill.{0,10}myself|end.{0,10}my.{0,10}life|want.{0,10}to.{0,10}die|suicide|suicidal)\b`,
		`\b(?:hurt.{0,10}myself|harm.{0,10}myself|don.t.{0,10}want.{0,10}to.{0,10}live)\b`,
		`\b(?:emergency|help.{0,5}me|crisis|desperate)\b`,
	)},
	{model.CategoryInappropriate, compile(
		`\b(?:ignore.{0,10}instructions|pretend.{0,10}you.{0,10}are|act.{0,10}like|roleplay)\b`,
	)},
}

func compile(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile(`(?i)`+p))
	}
	return out
}

// Classify checks one message against all rule groups. An empty message is a
// valid input and comes back safe.
func Classify(message string) Verdict {
	normalized := strings.ToLower(strings.TrimSpace(message))

	for _, g := range groups {
		var matched []string
		for _, p := range g.patterns {
			if p.MatchString(normalized) {
				matched = append(matched, p.String())
			}
		}
		if len(matched) > 0 {
			return Verdict{
				Safe:            false,
				Category:        g.category,
				Confidence:      1.0,
				MatchedPatterns: matched,
			}
		}
	}
	return Verdict{Safe: true}
}
