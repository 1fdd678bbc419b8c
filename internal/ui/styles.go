// Package ui renders retrieval results for the terminal.
package ui

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Color palette. Single lime accent with gray support colors.
const (
	ColorLime     = "154" // Primary accent - pattern names, high confidence
	ColorLimeDim  = "106" // Dimmed lime - confidence bars
	ColorWhite    = "255" // Headers
	ColorGray     = "245" // Secondary text, explanations
	ColorDarkGray = "238" // Separators, ranking details
	ColorRed      = "196" // Errors, low confidence
	ColorYellow   = "220" // Warnings, medium confidence
)

// Styles holds the render styles for result output.
type Styles struct {
	Header     lipgloss.Style
	Name       lipgloss.Style
	Rank       lipgloss.Style
	Confidence lipgloss.Style
	LowConf    lipgloss.Style
	MidConf    lipgloss.Style
	Highlight  lipgloss.Style
	Dim        lipgloss.Style
	Warning    lipgloss.Style
	Error      lipgloss.Style
}

// DefaultStyles returns the styled palette for terminal output.
func DefaultStyles() Styles {
	return Styles{
		Header:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorWhite)),
		Name:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorLime)),
		Rank:       lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGray)),
		Confidence: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorLime)),
		LowConf:    lipgloss.NewStyle().Foreground(lipgloss.Color(ColorRed)),
		MidConf:    lipgloss.NewStyle().Foreground(lipgloss.Color(ColorYellow)),
		Highlight:  lipgloss.NewStyle().Foreground(lipgloss.Color(ColorLimeDim)),
		Dim:        lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDarkGray)),
		Warning:    lipgloss.NewStyle().Foreground(lipgloss.Color(ColorYellow)),
		Error:      lipgloss.NewStyle().Foreground(lipgloss.Color(ColorRed)),
	}
}

// NoColorStyles returns unstyled output for pipes and CI.
func NoColorStyles() Styles {
	return Styles{
		Header:     lipgloss.NewStyle(),
		Name:       lipgloss.NewStyle(),
		Rank:       lipgloss.NewStyle(),
		Confidence: lipgloss.NewStyle(),
		LowConf:    lipgloss.NewStyle(),
		MidConf:    lipgloss.NewStyle(),
		Highlight:  lipgloss.NewStyle(),
		Dim:        lipgloss.NewStyle(),
		Warning:    lipgloss.NewStyle(),
		Error:      lipgloss.NewStyle(),
	}
}

// GetStyles returns the palette for the color preference.
func GetStyles(noColor bool) Styles {
	if noColor {
		return NoColorStyles()
	}
	return DefaultStyles()
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}
