//go:build ignore

// Command generate-corpus produces a synthetic pattern library for load and
// relevance testing.
// Usage: go run scripts/generate-corpus.go -patterns 500 -output testdata/patterns-large.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
)

var (
	numPatterns = flag.Int("patterns", 500, "Number of patterns to generate")
	outputPath  = flag.String("output", "testdata/patterns-large.json", "Output file")
	seed        = flag.Int64("seed", 42, "Random seed for reproducibility")
)

var componentNames = []string{
	"Button", "Card", "Input", "Select", "Modal", "Tooltip", "Badge",
	"Avatar", "Tabs", "Accordion", "Alert", "Breadcrumb", "Checkbox",
	"Dialog", "Drawer", "Dropdown", "Pagination", "Popover", "Progress",
	"Radio", "Slider", "Spinner", "Switch", "Table", "Toast",
}

var categories = []string{"form", "layout", "navigation", "feedback", "overlay", "data-display"}

var libraries = []string{"shadcn/ui", "radix-ui", "headlessui", "chakra-ui"}

var propPool = []string{
	"variant", "size", "disabled", "className", "children", "value",
	"onChange", "placeholder", "open", "onOpenChange", "orientation",
	"defaultValue", "asChild", "loading",
}

var variantPool = []string{
	"default", "primary", "secondary", "destructive", "outline", "ghost",
	"link", "sm", "md", "lg",
}

var a11yPool = []string{
	"aria-label", "aria-describedby", "aria-expanded", "role attribute",
	"focus trap", "keyboard navigation", "screen reader announcements",
}

type pattern struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Category    string         `json:"category"`
	Description string         `json:"description"`
	Framework   string         `json:"framework"`
	Library     string         `json:"library"`
	Code        string         `json:"code"`
	Metadata    map[string]any `json:"metadata"`
}

type library struct {
	Patterns []pattern `json:"patterns"`
}

func main() {
	flag.Parse()
	rng := rand.New(rand.NewSource(*seed))

	lib := library{Patterns: make([]pattern, 0, *numPatterns)}
	for i := 0; i < *numPatterns; i++ {
		name := componentNames[i%len(componentNames)]
		src := libraries[rng.Intn(len(libraries))]
		id := fmt.Sprintf("%s-%s-%d", slug(src), strings.ToLower(name), i)

		props := sample(rng, propPool, 3+rng.Intn(4))
		variants := sample(rng, variantPool, 2+rng.Intn(3))
		a11y := sample(rng, a11yPool, 1+rng.Intn(3))

		lib.Patterns = append(lib.Patterns, pattern{
			ID:       id,
			Name:     name,
			Category: categories[rng.Intn(len(categories))],
			Description: fmt.Sprintf("A %s component supporting %s, with %s.",
				name, strings.Join(variants, " and "), strings.Join(a11y, ", ")),
			Framework: "react",
			Library:   src,
			Code: fmt.Sprintf("const %s = ({ %s }) => <div>%s</div>;",
				name, strings.Join(props, ", "), name),
			Metadata: map[string]any{
				"props":    props,
				"variants": variants,
				"a11y":     a11y,
			},
		})
	}

	if err := os.MkdirAll(filepath.Dir(*outputPath), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "mkdir: %v\n", err)
		os.Exit(1)
	}
	f, err := os.Create(*outputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(lib); err != nil {
		fmt.Fprintf(os.Stderr, "encode: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %d patterns to %s\n", len(lib.Patterns), *outputPath)
}

func sample(rng *rand.Rand, pool []string, n int) []string {
	idx := rng.Perm(len(pool))
	if n > len(pool) {
		n = len(pool)
	}
	out := make([]string, 0, n)
	for _, i := range idx[:n] {
		out = append(out, pool[i])
	}
	return out
}

func slug(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "/", "-")
	return s
}
