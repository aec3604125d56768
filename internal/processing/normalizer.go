// Package processing canonicalizes raw recognized text. Normalization is
// an ordered chain of named rules; each rule is a pure string transform
// with no failure modes, so malformed input at worst normalizes to "".
package processing

import "time"

// NormalizationRule is a single text canonicalization step.
type NormalizationRule interface {
	Name() string
	Description() string
	Apply(text string) string
}

// NormalizationResult summarizes what one Normalize call did.
type NormalizationResult struct {
	OriginalLength   int           `json:"original_length"`
	NormalizedLength int           `json:"normalized_length"`
	RulesApplied     []string      `json:"rules_applied"`
	ProcessingTime   time.Duration `json:"processing_time"`
}

// Normalizer applies rules in a fixed order. The default chain
// guarantees the output contains no run of two or more horizontal
// whitespace characters and no run of two or more blank lines.
type Normalizer struct {
	rules []NormalizationRule
}

// NewNormalizer returns a normalizer with the default rule chain.
func NewNormalizer() *Normalizer {
	return &Normalizer{
		rules: []NormalizationRule{
			&LineEndingRule{},
			&ReplacementCharRule{},
			&HorizontalWhitespaceRule{},
			&BlankLineRule{},
			&TrimRule{},
		},
	}
}

// Normalize canonicalizes raw recognized text.
func (n *Normalizer) Normalize(text string) string {
	out, _ := n.NormalizeWithResult(text)
	return out
}

// NormalizeWithResult canonicalizes text and reports which rules changed it.
func (n *Normalizer) NormalizeWithResult(text string) (string, *NormalizationResult) {
	start := time.Now()
	result := &NormalizationResult{
		OriginalLength: len(text),
		RulesApplied:   []string{},
	}

	out := text
	for _, rule := range n.rules {
		before := out
		out = rule.Apply(out)
		if out != before {
			result.RulesApplied = append(result.RulesApplied, rule.Name())
		}
	}

	result.NormalizedLength = len(out)
	result.ProcessingTime = time.Since(start)
	return out, result
}

// Rules returns the rule names in application order.
func (n *Normalizer) Rules() []string {
	names := make([]string, 0, len(n.rules))
	for _, rule := range n.rules {
		names = append(names, rule.Name())
	}
	return names
}
