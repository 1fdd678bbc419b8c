package corpus

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
)

// PropExtractor pulls prop names out of a pattern's TSX source so that
// library entries without curated props metadata still get lexical and
// highlight coverage. It looks for interface or type-alias declarations
// whose name ends in "Props".
type PropExtractor struct {
	parser *sitter.Parser
}

// NewPropExtractor creates an extractor for TSX sources.
func NewPropExtractor() *PropExtractor {
	p := sitter.NewParser()
	p.SetLanguage(tsx.GetLanguage())
	return &PropExtractor{parser: p}
}

// Close releases parser resources.
func (e *PropExtractor) Close() {
	if e.parser != nil {
		e.parser.Close()
	}
}

// Extract parses code and returns the prop names declared in Props
// interfaces or type aliases, in declaration order.
func (e *PropExtractor) Extract(ctx context.Context, code string) ([]string, error) {
	if strings.TrimSpace(code) == "" {
		return nil, nil
	}

	source := []byte(code)
	tree, err := e.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pattern code: %w", err)
	}
	if tree == nil {
		return nil, fmt.Errorf("failed to parse pattern code: nil tree")
	}
	defer tree.Close()

	var props []string
	seen := make(map[string]bool)
	collect := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			props = append(props, name)
		}
	}

	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		switch n.Type() {
		case "interface_declaration":
			if name := n.ChildByFieldName("name"); name != nil &&
				strings.HasSuffix(name.Content(source), "Props") {
				collectMembers(n.ChildByFieldName("body"), source, collect)
				return
			}
		case "type_alias_declaration":
			if name := n.ChildByFieldName("name"); name != nil &&
				strings.HasSuffix(name.Content(source), "Props") {
				collectMembers(n.ChildByFieldName("value"), source, collect)
				return
			}
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			walk(n.NamedChild(i))
		}
	}
	walk(tree.RootNode())

	return props, nil
}

// collectMembers gathers property_signature names under an interface body
// or object type node.
func collectMembers(n *sitter.Node, source []byte, collect func(string)) {
	if n == nil {
		return
	}
	if n.Type() == "property_signature" {
		if name := n.ChildByFieldName("name"); name != nil {
			collect(name.Content(source))
		}
		return
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		collectMembers(n.NamedChild(i), source, collect)
	}
}

// EnrichProps fills in metadata props for patterns that lack them, using
// prop names extracted from the pattern's code. Patterns with curated
// props metadata are left alone. Returns the number of patterns enriched.
func EnrichProps(ctx context.Context, lib *Library) int {
	extractor := NewPropExtractor()
	defer extractor.Close()

	enriched := 0
	for i := range lib.patterns {
		p := &lib.patterns[i]
		if p.Code == "" {
			continue
		}
		if names, err := p.Props(); err == nil && len(names) > 0 {
			continue
		}

		extracted, err := extractor.Extract(ctx, p.Code)
		if err != nil || len(extracted) == 0 {
			continue
		}

		if p.Metadata == nil {
			p.Metadata = make(map[string]any)
		}
		list := make([]any, len(extracted))
		for j, name := range extracted {
			list[j] = name
		}
		p.Metadata["props"] = list
		enriched++
	}
	return enriched
}
