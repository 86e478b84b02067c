// Package ui renders terminal output for the corpora tool: download
// progress, spinners, and the interactive package picker. Every
// component has a plain-text fallback for non-TTY use.
package ui

// ThemeColors holds the color pair used for gradients and accents.
type ThemeColors struct {
	Primary   string
	Secondary string
}

// Theme configures UI rendering.
type Theme struct {
	Colors  ThemeColors
	NoColor bool
}

// NewTheme returns the default theme.
func NewTheme(noColor bool) *Theme {
	return &Theme{
		Colors: ThemeColors{
			Primary:   "#00B8A9",
			Secondary: "#5B5FEF",
		},
		NoColor: noColor,
	}
}
