package index

import (
	"regexp"
	"strings"
	"unicode"
)

// DefaultStopWords are filler terms common in requirement text and pattern
// descriptions that carry no ranking signal.
var DefaultStopWords = []string{
	"a", "an", "the", "and", "or", "with", "for", "of", "to", "in", "on",
	"is", "that", "this", "it", "its", "as", "by", "be", "can",
	"component", "components", "element", "ui",
}

// wordRegex matches alphanumeric runs; hyphens and other punctuation split.
var wordRegex = regexp.MustCompile(`[a-zA-Z0-9_]+`)

// Tokenize splits requirement and pattern text into search terms. Handles
// camelCase prop names (onClick), kebab-case a11y features (aria-label),
// and snake_case, lowercasing everything and dropping single characters.
func Tokenize(text string) []string {
	var tokens []string

	for _, word := range wordRegex.FindAllString(text, -1) {
		for _, t := range splitIdentifier(word) {
			lower := strings.ToLower(t)
			if len(lower) >= 2 {
				tokens = append(tokens, lower)
			}
		}
	}

	return tokens
}

// splitIdentifier splits snake_case then camelCase.
func splitIdentifier(token string) []string {
	if strings.Contains(token, "_") {
		var result []string
		for _, part := range strings.Split(token, "_") {
			if part != "" {
				result = append(result, splitCamelCase(part)...)
			}
		}
		return result
	}
	return splitCamelCase(token)
}

// splitCamelCase splits camelCase and PascalCase, keeping acronym runs
// together: "onClick" -> ["on", "Click"], "ARIALabel" -> ["ARIA", "Label"].
func splitCamelCase(s string) []string {
	if s == "" {
		return []string{}
	}

	var result []string
	var current strings.Builder

	runes := []rune(s)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prevIsLower := unicode.IsLower(runes[i-1])
			nextIsLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if prevIsLower || nextIsLower {
				if current.Len() > 0 {
					result = append(result, current.String())
					current.Reset()
				}
			}
		}
		current.WriteRune(r)
	}

	if current.Len() > 0 {
		result = append(result, current.String())
	}

	return result
}

// FilterStopWords removes stop words from a token list.
func FilterStopWords(tokens []string, stopWords map[string]struct{}) []string {
	result := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if _, stop := stopWords[strings.ToLower(t)]; !stop {
			result = append(result, t)
		}
	}
	return result
}

// BuildStopWordMap converts a stop word slice to a lookup map.
func BuildStopWordMap(stopWords []string) map[string]struct{} {
	m := make(map[string]struct{}, len(stopWords))
	for _, w := range stopWords {
		m[strings.ToLower(w)] = struct{}{}
	}
	return m
}
