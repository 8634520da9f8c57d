package tui

import (
	"log/slog"
	"strings"

	"github.com/charmbracelet/lipgloss"
	darkmode "github.com/thiagokokada/dark-mode-go"
)

type ThemePreference int

const (
	ThemeAuto ThemePreference = iota
	ThemeLight
	ThemeDark
)

func (p ThemePreference) String() string {
	switch p {
	case ThemeLight:
		return "light"
	case ThemeDark:
		return "dark"
	default:
		return "auto"
	}
}

func ThemePreferenceFromString(raw string) ThemePreference {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case ThemeDark.String():
		return ThemeDark
	case ThemeLight.String():
		return ThemeLight
	default:
		return ThemeAuto
	}
}

type colorPalette struct {
	Name        string
	ChromaStyle string
	DiffAdd     string
	DiffDel     string
	DiffHeader  string
	Border      string
	Accent      string
	Muted       string
	Error       string
}

var (
	lightPalette = colorPalette{
		Name:        "light",
		ChromaStyle: "github",
		DiffAdd:     "#dff5de",
		DiffDel:     "#f9d6d5",
		DiffHeader:  "#e4e4e4",
		Border:      "#9a9a9a",
		Accent:      "#005f87",
		Muted:       "#6c6c6c",
		Error:       "#af0000",
	}
	darkPalette = colorPalette{
		Name:        "dark",
		ChromaStyle: "github-dark",
		DiffAdd:     "#1f3d2b",
		DiffDel:     "#3d1f29",
		DiffHeader:  "#2f2f2f",
		Border:      "#5f5f5f",
		Accent:      "#5fafff",
		Muted:       "#8a8a8a",
		Error:       "#ff5f5f",
	}
	detectDarkMode = darkmode.IsDarkMode
)

func paletteForPreference(pref ThemePreference) colorPalette {
	switch pref {
	case ThemeDark:
		return darkPalette
	case ThemeLight:
		return lightPalette
	default:
		if detectDarkMode != nil {
			if dark, err := detectDarkMode(); err == nil {
				if dark {
					return darkPalette
				}
			} else {
				slog.Debug("detect dark-mode", slog.Any("error", err))
			}
		}
		return lightPalette
	}
}

func (p colorPalette) isDark() bool {
	return p.Name == darkPalette.Name
}

// theme holds the rendered styles for one palette.
type theme struct {
	palette colorPalette

	tabActive   lipgloss.Style
	tabInactive lipgloss.Style
	selected    lipgloss.Style
	panel       lipgloss.Style
	title       lipgloss.Style
	muted       lipgloss.Style
	errorText   lipgloss.Style
	popup       lipgloss.Style
	diffAdd     lipgloss.Style
	diffDel     lipgloss.Style
	diffHeader  lipgloss.Style
}

// newTheme builds styles for p. highlight is the selection background taken
// from the engine config.
func newTheme(p colorPalette, highlight string) theme {
	border := lipgloss.Color(p.Border)
	accent := lipgloss.Color(p.Accent)
	return theme{
		palette:     p,
		tabActive:   lipgloss.NewStyle().Bold(true).Foreground(accent).Underline(true).Padding(0, 1),
		tabInactive: lipgloss.NewStyle().Foreground(lipgloss.Color(p.Muted)).Padding(0, 1),
		selected:    lipgloss.NewStyle().Background(lipgloss.Color(highlight)),
		panel:       lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(border),
		title:       lipgloss.NewStyle().Bold(true).Foreground(accent),
		muted:       lipgloss.NewStyle().Foreground(lipgloss.Color(p.Muted)),
		errorText:   lipgloss.NewStyle().Foreground(lipgloss.Color(p.Error)),
		popup:       lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(accent).Padding(0, 1),
		diffAdd:     lipgloss.NewStyle().Background(lipgloss.Color(p.DiffAdd)),
		diffDel:     lipgloss.NewStyle().Background(lipgloss.Color(p.DiffDel)),
		diffHeader:  lipgloss.NewStyle().Background(lipgloss.Color(p.DiffHeader)).Bold(true),
	}
}
