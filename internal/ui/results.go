package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kchia/component-forge/internal/retrieval"
)

// confidenceBarWidth is the width of the confidence bar in characters.
const confidenceBarWidth = 20

// ResultRenderer writes retrieval responses as human-readable terminal
// output. JSON output bypasses this entirely.
type ResultRenderer struct {
	out    io.Writer
	styles Styles
}

// NewResultRenderer creates a renderer. Color is disabled automatically
// when out is not a terminal.
func NewResultRenderer(out io.Writer, noColor bool) *ResultRenderer {
	if !IsTerminal(out) {
		noColor = true
	}
	return &ResultRenderer{
		out:    out,
		styles: GetStyles(noColor),
	}
}

// Render writes the full response: ranked patterns then the retrieval
// metadata footer.
func (r *ResultRenderer) Render(resp *retrieval.Response) {
	if len(resp.Patterns) == 0 {
		r.printf("%s\n", r.styles.Warning.Render("No matching patterns found."))
		r.renderFooter(&resp.Metadata)
		return
	}

	r.printf("%s\n\n", r.styles.Header.Render(
		fmt.Sprintf("Top %d patterns", len(resp.Patterns))))

	for i := range resp.Patterns {
		r.renderResult(&resp.Patterns[i])
	}

	r.renderFooter(&resp.Metadata)
}

func (r *ResultRenderer) renderResult(res *retrieval.ExplainedResult) {
	r.printf("%s %s %s\n",
		r.styles.Rank.Render(fmt.Sprintf("%d.", res.Ranking.FinalRank)),
		r.styles.Name.Render(res.Pattern.Name),
		r.styles.Dim.Render(fmt.Sprintf("(%s)", res.Pattern.ID)))

	bar := renderConfidenceBar(res.Confidence, confidenceBarWidth)
	r.printf("   %s %s\n",
		r.confidenceStyle(res.Confidence).Render(bar),
		r.styles.Rank.Render(fmt.Sprintf("%.0f%% confidence", res.Confidence*100)))

	r.printf("   %s\n", r.styles.Highlight.Render(res.Explanation))

	ranking := res.Ranking
	detail := fmt.Sprintf("bm25 %.3f (rank %s)  semantic %.3f (rank %s)  final %.3f",
		ranking.LexicalScore, rankLabel(ranking.LexicalRank),
		ranking.SemanticScore, rankPtrLabel(ranking.SemanticRank),
		ranking.FinalScore)
	r.printf("   %s\n\n", r.styles.Dim.Render(detail))
}

func (r *ResultRenderer) renderFooter(meta *retrieval.Metadata) {
	footer := fmt.Sprintf("methods: %s  weights: %.1f/%.1f  searched: %d  latency: %.1fms",
		strings.Join(meta.MethodsUsed, "+"),
		meta.Weights.Lexical, meta.Weights.Semantic,
		meta.TotalPatternsSearched,
		meta.LatencyMS)
	r.printf("%s\n", r.styles.Dim.Render(footer))
}

func (r *ResultRenderer) confidenceStyle(confidence float64) lipgloss.Style {
	switch {
	case confidence >= 0.7:
		return r.styles.Confidence
	case confidence >= 0.4:
		return r.styles.MidConf
	default:
		return r.styles.LowConf
	}
}

func (r *ResultRenderer) printf(format string, args ...any) {
	// Write errors to a console are not actionable.
	_, _ = fmt.Fprintf(r.out, format, args...)
}

// renderConfidenceBar draws a fixed-width bar proportional to confidence.
func renderConfidenceBar(confidence float64, width int) string {
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	filled := int(confidence * float64(width))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func rankLabel(rank int) string {
	if rank <= 0 {
		return "-"
	}
	return fmt.Sprintf("%d", rank)
}

func rankPtrLabel(rank *int) string {
	if rank == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *rank)
}
