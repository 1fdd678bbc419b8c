package retrieval

import (
	"fmt"
	"strings"

	"github.com/kchia/component-forge/internal/corpus"
	forgeerrors "github.com/kchia/component-forge/internal/errors"
)

// rankDecayFactor controls how fast confidence falls off down the batch.
const rankDecayFactor = 0.12

// Explainer attaches confidence, match highlights, and a deterministic
// templated explanation to each fused result. No model calls: everything
// derives from ranking numbers and set intersections, so explanations are
// fast, reproducible, and testable in isolation.
type Explainer struct{}

// NewExplainer creates an explainer.
func NewExplainer() *Explainer {
	return &Explainer{}
}

// Explain computes highlights and the explanation sentence for one result.
// Malformed pattern metadata returns an explanation error; callers degrade
// that single item rather than failing the batch.
func (e *Explainer) Explain(fused *FusedResult, pattern *corpus.Pattern, req *Requirement) (MatchHighlights, string, error) {
	highlights, err := e.highlight(pattern, req)
	if err != nil {
		return MatchHighlights{}, "", err
	}

	return highlights, e.narrate(fused, pattern, highlights), nil
}

// GenericExplanation is the degraded single-item fallback used when a
// pattern's metadata cannot be read.
func (e *Explainer) GenericExplanation(fused *FusedResult, pattern *corpus.Pattern) string {
	return fmt.Sprintf("%s ranked #%d by combined lexical and semantic relevance.",
		pattern.Name, fused.FinalRank)
}

// Confidence derives a bounded score from the final score and rank.
// Monotone non-increasing in rank within one batch; saturates toward 1.0
// only when a pattern tops both channels.
func (e *Explainer) Confidence(fused *FusedResult) float64 {
	base := fused.FinalScore
	if fused.Weights.Semantic == 0 {
		// Raw BM25 is unbounded; squash it into [0, 1).
		base = base / (1 + base)
	}

	decay := 1.0 / (1.0 + rankDecayFactor*float64(fused.FinalRank-1))
	confidence := base * decay

	if confidence < 0 {
		return 0
	}
	if confidence > 1 {
		return 1
	}
	return confidence
}

// highlight intersects the requested feature names with the pattern's
// declared metadata, preserving the requirement's ordering.
func (e *Explainer) highlight(pattern *corpus.Pattern, req *Requirement) (MatchHighlights, error) {
	props, err := pattern.Props()
	if err != nil {
		return MatchHighlights{}, forgeerrors.ExplanationError("failed to read pattern props", err)
	}
	variants, err := pattern.Variants()
	if err != nil {
		return MatchHighlights{}, forgeerrors.ExplanationError("failed to read pattern variants", err)
	}
	a11y, err := pattern.A11yFeatures()
	if err != nil {
		return MatchHighlights{}, forgeerrors.ExplanationError("failed to read pattern a11y features", err)
	}

	return MatchHighlights{
		MatchedProps:    intersectNames(req.Props, props),
		MatchedVariants: intersectNames(req.Variants, variants),
		MatchedA11y:     intersectNames(req.Accessibility, a11y),
	}, nil
}

// narrate builds the templated explanation sentence, citing which
// channels drove the match and the highlighted feature overlaps.
func (e *Explainer) narrate(fused *FusedResult, pattern *corpus.Pattern, highlights MatchHighlights) string {
	var b strings.Builder
	b.WriteString(pattern.Name)

	switch {
	case fused.LexicalRank > 0 && fused.SemanticRank > 0:
		b.WriteString(" matched on both keyword overlap and semantic similarity")
	case fused.SemanticRank > 0:
		b.WriteString(" matched on semantic similarity to the described component")
	default:
		b.WriteString(" matched on keyword overlap with the requirement")
	}
	fmt.Fprintf(&b, " (rank %d).", fused.FinalRank)

	if len(fused.MatchedTerms) > 0 && fused.LexicalRank > 0 {
		fmt.Fprintf(&b, " Matched terms: %s.", strings.Join(fused.MatchedTerms, ", "))
	}
	if len(highlights.MatchedProps) > 0 {
		fmt.Fprintf(&b, " Matching props: %s.", strings.Join(highlights.MatchedProps, ", "))
	}
	if len(highlights.MatchedVariants) > 0 {
		fmt.Fprintf(&b, " Matching variants: %s.", strings.Join(highlights.MatchedVariants, ", "))
	}
	if len(highlights.MatchedA11y) > 0 {
		fmt.Fprintf(&b, " Matching accessibility features: %s.", strings.Join(highlights.MatchedA11y, ", "))
	}

	return b.String()
}

// intersectNames returns the requested names that appear in declared,
// compared case-insensitively, in request order. Always non-nil so the
// JSON form is [] rather than null.
func intersectNames(requested, declared []string) []string {
	matched := make([]string, 0, len(requested))
	declaredSet := make(map[string]struct{}, len(declared))
	for _, d := range declared {
		declaredSet[strings.ToLower(strings.TrimSpace(d))] = struct{}{}
	}

	seen := make(map[string]struct{})
	for _, r := range requested {
		key := strings.ToLower(strings.TrimSpace(r))
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		if _, ok := declaredSet[key]; ok {
			seen[key] = struct{}{}
			matched = append(matched, r)
		}
	}
	return matched
}
