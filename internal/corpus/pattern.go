// Package corpus loads and serves the component pattern library.
//
// The library is an immutable snapshot: loads produce a new Library value
// and the Store swaps it in atomically, so in-flight searches always see
// a consistent view.
package corpus

import (
	"fmt"
	"strings"
)

// Pattern is a single curated component pattern.
type Pattern struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Framework   string `json:"framework,omitempty"`
	Library     string `json:"library,omitempty"`
	Code        string `json:"code,omitempty"`

	// Metadata carries the curation fields: props, variants, a11y.
	// It is a loose bag because library files come from external curation
	// and individual entries may be malformed without invalidating the
	// whole pattern.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Props returns the pattern's prop names from metadata.
// Entries may be plain strings or objects with a "name" field.
func (p *Pattern) Props() ([]string, error) {
	return p.metadataNames("props")
}

// Variants returns the pattern's variant names from metadata.
func (p *Pattern) Variants() ([]string, error) {
	return p.metadataNames("variants")
}

// A11yFeatures returns the pattern's accessibility feature names.
func (p *Pattern) A11yFeatures() ([]string, error) {
	return p.metadataNames("a11y")
}

// metadataNames extracts a list of names from a metadata key. Supports
// []string-style lists and lists of {"name": ...} objects, which is how
// curated libraries describe props with types attached.
func (p *Pattern) metadataNames(key string) ([]string, error) {
	if p.Metadata == nil {
		return nil, nil
	}
	raw, ok := p.Metadata[key]
	if !ok || raw == nil {
		return nil, nil
	}

	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("pattern %s: metadata.%s is not a list", p.ID, key)
	}

	names := make([]string, 0, len(list))
	for i, item := range list {
		switch v := item.(type) {
		case string:
			names = append(names, v)
		case map[string]any:
			name, ok := v["name"].(string)
			if !ok {
				return nil, fmt.Errorf("pattern %s: metadata.%s[%d] has no name", p.ID, key, i)
			}
			names = append(names, name)
		default:
			return nil, fmt.Errorf("pattern %s: metadata.%s[%d] is neither string nor object", p.ID, key, i)
		}
	}
	return names, nil
}

// Document assembles the searchable text for the lexical index: the
// pattern's descriptive fields plus whatever metadata names parse cleanly.
// Malformed metadata sections are skipped rather than failing the index.
func (p *Pattern) Document() string {
	var b strings.Builder
	b.WriteString(p.Name)
	b.WriteByte('\n')
	b.WriteString(p.Category)
	b.WriteByte('\n')
	b.WriteString(p.Description)
	if p.Framework != "" {
		b.WriteByte('\n')
		b.WriteString(p.Framework)
	}
	if p.Library != "" {
		b.WriteByte('\n')
		b.WriteString(p.Library)
	}
	for _, key := range []string{"props", "variants", "a11y"} {
		names, err := p.metadataNames(key)
		if err != nil || len(names) == 0 {
			continue
		}
		b.WriteByte('\n')
		b.WriteString(strings.Join(names, " "))
	}
	return b.String()
}

// Validate checks the fields every pattern must have.
func (p *Pattern) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("pattern has empty id")
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("pattern %s has empty name", p.ID)
	}
	return nil
}
