package ui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/corpora-dev/corpora/internal/index"
)

// ErrPickerCancelled indicates the user aborted the package picker.
var ErrPickerCancelled = errors.New("ui: selection cancelled")

// PickPackages shows a multi-select over the given packages and returns
// the chosen ids. installed marks packages already present, which are
// labelled but still selectable for reinstall.
func PickPackages(theme *Theme, pkgs []*index.Package, installed map[string]bool) ([]string, error) {
	opts := make([]huh.Option[string], 0, len(pkgs))
	for _, p := range pkgs {
		label := fmt.Sprintf("%s: %s (%s)", p.ID, p.Name, HumanBytes(p.Size))
		if installed[p.ID] {
			label += " [installed]"
		}
		opts = append(opts, huh.NewOption(label, p.ID))
	}

	var selected []string
	field := huh.NewMultiSelect[string]().
		Title("Select packages to download").
		Description("space toggles, enter confirms").
		Options(opts...).
		Value(&selected)

	form := huh.NewForm(huh.NewGroup(field)).
		WithTheme(pickerTheme(theme)).
		WithAccessible(false)

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil, ErrPickerCancelled
		}
		return nil, fmt.Errorf("ui: picker: %w", err)
	}
	return selected, nil
}

// pickerTheme maps the tool theme onto a huh theme.
func pickerTheme(theme *Theme) *huh.Theme {
	t := huh.ThemeBase()
	if theme.NoColor {
		return t
	}

	primary := lipgloss.Color(theme.Colors.Primary)
	secondary := lipgloss.Color(theme.Colors.Secondary)

	t.Focused.Title = t.Focused.Title.Foreground(primary).Bold(true)
	t.Focused.Description = t.Focused.Description.Foreground(secondary)
	t.Focused.MultiSelectSelector = t.Focused.MultiSelectSelector.Foreground(primary).SetString("▸ ")
	t.Focused.SelectedOption = t.Focused.SelectedOption.Foreground(primary)
	t.Focused.SelectedPrefix = lipgloss.NewStyle().Foreground(primary).SetString("◆ ")
	t.Focused.UnselectedPrefix = lipgloss.NewStyle().SetString("◇ ")
	return t
}
