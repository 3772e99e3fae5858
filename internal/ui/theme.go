package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/mopidy-bridge/internal/state"
)

// Theme defines colors for the terminal.
type Theme struct {
	Name string

	Background string
	Surface    string

	Text    string
	Muted   string
	Accent  string
	Success string
	Warning string
	Danger  string

	// Outcome badge colors, keyed by state.Outcome
	OutcomeColors map[state.Outcome]string
}

// Styles returns Lipgloss styles for this theme.
func (t Theme) Styles() Styles {
	return Styles{
		Header: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Text)).
			Padding(0, 1),

		Logo: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Warning)).
			Bold(true),

		Prompt: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Accent)).
			Bold(true),

		Text: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Text)),

		MutedText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Muted)),

		SuccessText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Success)),

		WarningText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Warning)),

		DangerText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Danger)).
			Bold(true),

		outcomeColors: t.OutcomeColors,
		background:    t.Background,
		muted:         t.Muted,
	}
}

// Styles contains pre-built Lipgloss styles for the theme.
type Styles struct {
	Header lipgloss.Style
	Logo   lipgloss.Style
	Prompt lipgloss.Style

	Text        lipgloss.Style
	MutedText   lipgloss.Style
	SuccessText lipgloss.Style
	WarningText lipgloss.Style
	DangerText  lipgloss.Style

	outcomeColors map[state.Outcome]string
	background    string
	muted         string
}

// OutcomeStyle returns a badge style for the given outcome.
func (s Styles) OutcomeStyle(outcome state.Outcome) lipgloss.Style {
	color := s.outcomeColors[outcome]
	if color == "" {
		color = s.muted
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(s.background)).
		Background(lipgloss.Color(color)).
		Padding(0, 1)
}

var themes = map[string]Theme{
	"Nightfox": nightfoxTheme(),
	"Kanagawa": kanagawaTheme(),
	"Slate":    slateTheme(),
}

var themeOrder = []string{"Nightfox", "Kanagawa", "Slate"}

// GetTheme returns a theme by name.
func GetTheme(name string) Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return nightfoxTheme()
}

// NextTheme returns the next theme name in the cycle.
func NextTheme(current string) string {
	for i, name := range themeOrder {
		if name == current {
			return themeOrder[(i+1)%len(themeOrder)]
		}
	}
	return themeOrder[0]
}

// ThemeNames returns available theme names.
func ThemeNames() []string {
	return themeOrder
}

func nightfoxTheme() Theme {
	// Nightfox palette: https://github.com/EdenEast/nightfox.nvim
	return Theme{
		Name:       "Nightfox",
		Background: "#131a24", // bg0
		Surface:    "#192330", // bg1
		Text:       "#cdcecf", // fg1
		Muted:      "#738091", // comment
		Accent:     "#719cd6", // blue
		Success:    "#81b29a", // green
		Warning:    "#dbc074", // yellow
		Danger:     "#c94f6d", // red
		OutcomeColors: map[state.Outcome]string{
			state.OutcomeDone:       "#81b29a",
			state.OutcomeDiscarded:  "#738091",
			state.OutcomeInvalidURL: "#dbc074",
			state.OutcomeNotFound:   "#f4a261",
			state.OutcomeFailed:     "#c94f6d",
		},
	}
}

func kanagawaTheme() Theme {
	// Kanagawa palette: https://github.com/rebelot/kanagawa.nvim
	return Theme{
		Name:       "Kanagawa",
		Background: "#16161D", // sumiInk0
		Surface:    "#1F1F28", // sumiInk3
		Text:       "#DCD7BA", // fujiWhite
		Muted:      "#727169", // fujiGray
		Accent:     "#7E9CD8", // crystalBlue
		Success:    "#98BB6C", // springGreen
		Warning:    "#E6C384", // carpYellow
		Danger:     "#E46876", // waveRed
		OutcomeColors: map[state.Outcome]string{
			state.OutcomeDone:       "#98BB6C",
			state.OutcomeDiscarded:  "#727169",
			state.OutcomeInvalidURL: "#E6C384",
			state.OutcomeNotFound:   "#FFA066",
			state.OutcomeFailed:     "#E46876",
		},
	}
}

func slateTheme() Theme {
	// Tailwind CSS Slate/Sky palette: https://tailwindcss.com/docs/colors
	return Theme{
		Name:       "Slate",
		Background: "#020617", // slate-950
		Surface:    "#0f172a", // slate-900
		Text:       "#f1f5f9", // slate-100
		Muted:      "#94a3b8", // slate-400
		Accent:     "#38bdf8", // sky-400
		Success:    "#22c55e", // green-500
		Warning:    "#f59e0b", // amber-500
		Danger:     "#ef4444", // red-500
		OutcomeColors: map[state.Outcome]string{
			state.OutcomeDone:       "#16a34a",
			state.OutcomeDiscarded:  "#64748b",
			state.OutcomeInvalidURL: "#f59e0b",
			state.OutcomeNotFound:   "#f97316",
			state.OutcomeFailed:     "#dc2626",
		},
	}
}
