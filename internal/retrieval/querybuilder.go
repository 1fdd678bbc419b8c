package retrieval

import (
	"strings"

	forgeerrors "github.com/kchia/component-forge/internal/errors"
)

// Validate checks the requirement at the system boundary so downstream
// components never probe for missing fields.
func (r *Requirement) Validate() error {
	if strings.TrimSpace(r.ComponentType) == "" {
		return forgeerrors.ValidationError("requirement is missing component_type", nil).
			WithSuggestion("set component_type to the UI component kind, e.g. \"Button\"")
	}
	return nil
}

// BuildQuery turns a validated requirement into the per-channel queries.
//
// The lexical query is a deduplicated bag of feature names, maximizing
// token overlap with pattern tags and descriptions. The semantic query is
// a synthesized sentence describing the component for embedding.
func BuildQuery(req *Requirement) (Query, error) {
	if err := req.Validate(); err != nil {
		return Query{}, err
	}

	return Query{
		Lexical:  buildLexicalQuery(req),
		Semantic: buildSemanticQuery(req),
		Filters:  Filters{ComponentType: strings.TrimSpace(req.ComponentType)},
	}, nil
}

func buildLexicalQuery(req *Requirement) string {
	seen := make(map[string]struct{})
	var terms []string

	add := func(values ...string) {
		for _, v := range values {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			key := strings.ToLower(v)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			terms = append(terms, v)
		}
	}

	add(req.ComponentType)
	add(req.Props...)
	add(req.Variants...)
	add(req.Accessibility...)
	if req.Description != "" {
		add(strings.Fields(req.Description)...)
	}

	return strings.Join(terms, " ")
}

func buildSemanticQuery(req *Requirement) string {
	var b strings.Builder
	b.WriteString("A ")
	b.WriteString(req.ComponentType)
	b.WriteString(" component")

	if len(req.Props) > 0 {
		b.WriteString(" with props ")
		b.WriteString(joinNames(req.Props))
	}
	if len(req.Variants) > 0 {
		b.WriteString(", supporting variants ")
		b.WriteString(joinNames(req.Variants))
	}
	if len(req.Accessibility) > 0 {
		b.WriteString(", with accessibility features ")
		b.WriteString(joinNames(req.Accessibility))
	}
	if desc := strings.TrimSpace(req.Description); desc != "" {
		b.WriteString(". ")
		b.WriteString(desc)
	}

	return b.String()
}

func joinNames(names []string) string {
	cleaned := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			cleaned = append(cleaned, n)
		}
	}
	return strings.Join(cleaned, ", ")
}
