package classifier

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/agentrouter/core"
)

// Rule maps an agent id to the keywords that indicate it should handle a
// request. Rules are ranked: earlier rules win score ties.
type Rule struct {
	AgentID  string
	Keywords []string
}

// Keyword is a deterministic, offline classifier scoring each agent by the
// number of its keywords contained in the user input. The highest score wins,
// ties break toward the earliest rule, and a zero score defers to the default
// agent. It makes no network calls and is reproducible by construction.
type Keyword struct {
	rules []Rule
}

var _ Classifier = (*Keyword)(nil)

// NewKeyword constructs a Keyword classifier from ranked rules.
func NewKeyword(rules ...Rule) *Keyword {
	return &Keyword{rules: rules}
}

// DefaultRules returns the stock rule set covering the standard domain
// agents (banking, document, stock, knowledge).
func DefaultRules() []Rule {
	return []Rule{
		{AgentID: "banking", Keywords: []string{"account", "bank", "onboarding", "kyc", "customer", "deposit", "withdraw"}},
		{AgentID: "document", Keywords: []string{"document", "passport", "statement", "extract", "validate", "pdf", "image"}},
		{AgentID: "stock", Keywords: []string{"stock", "price", "market", "invest", "share", "dividend", "chart"}},
		{AgentID: "knowledge", Keywords: []string{"knowledge", "search", "dataset", "catalog", "metadata", "data product", "documentation"}},
	}
}

// Classify implements Classifier.
func (k *Keyword) Classify(_ context.Context, input string, _ []core.Turn, agents []core.Descriptor) (core.Decision, error) {
	if len(k.rules) == 0 {
		return core.Decision{}, fmt.Errorf("%w: keyword classifier has no rules", core.ErrClassification)
	}

	available := make(map[string]bool, len(agents))
	for _, d := range agents {
		available[strings.ToLower(d.ID)] = true
	}

	lower := strings.ToLower(input)

	best := -1
	bestScore := 0
	total := 0
	for i, rule := range k.rules {
		if !available[strings.ToLower(rule.AgentID)] {
			continue
		}
		score := 0
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				score++
			}
		}
		total += score
		// Strictly greater keeps the earliest rule on ties.
		if score > bestScore {
			bestScore = score
			best = i
		}
	}

	if best < 0 || bestScore == 0 {
		// No specialized agent matches; defer to the default. The sentinel
		// carries no confidence of its own.
		return core.Decision{Raw: "no keyword match"}, nil
	}

	rule := k.rules[best]
	return core.Decision{
		AgentID:    strings.ToLower(rule.AgentID),
		Confidence: float64(bestScore) / float64(total),
		Raw:        fmt.Sprintf("keyword match for %s (%d hits)", rule.AgentID, bestScore),
	}, nil
}
