package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/willcgage/wirelessboard/internal/version"
)

// Application branding constants
const (
	AppName   = "WIRELESSBOARD WATCH"
	GitHubURL = "github.com/willcgage/wirelessboard"
)

// AppVersion returns the application version from the centralized version package
func AppVersion() string {
	return version.Version
}

// Layout constants for responsive terminal width
const (
	DefaultTerminalWidth  = 96
	DefaultTerminalHeight = 28
	MinTableHeight        = 3
)

// Color palette
var (
	PrimaryColor   = lipgloss.Color("#7D56F4") // Purple
	SecondaryColor = lipgloss.Color("#43BF6D") // Green
	WarningColor   = lipgloss.Color("#FFA500") // Orange
	ErrorColor     = lipgloss.Color("#FF0000") // Red

	TextColor      = lipgloss.Color("#FFFFFF") // White
	SubtleColor    = lipgloss.Color("#626262") // Gray
	BorderColor    = lipgloss.Color("#7D56F4") // Purple (same as primary)
	HighlightColor = lipgloss.Color("#43BF6D") // Green (same as secondary)
)

// Common styles
var (
	// Title style for prominent headings
	TitleStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true).
			Padding(1, 0)

	// Subtitle style for secondary text
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			Italic(true)

	// Spinner style
	SpinnerStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor)

	// Live badge style for the streaming connection state
	LiveStyle = lipgloss.NewStyle().
			Foreground(SecondaryColor).
			Bold(true)

	// Polling badge style for the HTTP fallback state
	PollingStyle = lipgloss.NewStyle().
			Foreground(WarningColor).
			Bold(true)

	// Error text style for inline problems
	ErrorTextStyle = lipgloss.NewStyle().
			Foreground(ErrorColor)

	// Warning text style for the empty-results hint
	WarningTextStyle = lipgloss.NewStyle().
				Foreground(WarningColor).
				Bold(true)
)

// BuildHeaderContent creates header content with app name and GitHub URL
func BuildHeaderContent(serverAddr string) string {
	left := lipgloss.NewStyle().
		Foreground(TextColor).
		Bold(true).
		Render(AppName + " v" + AppVersion())

	middle := ""
	if serverAddr != "" {
		middle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			Render(" " + serverAddr)
	}

	right := lipgloss.NewStyle().
		Foreground(SubtleColor).
		Render("  " + GitHubURL)

	return lipgloss.JoinHorizontal(lipgloss.Top, left, middle, right)
}

// RenderFrame wraps screen content in the application chrome: a bordered
// full-terminal panel with a header row on top and the context-sensitive
// help footer pinned below the content.
func RenderFrame(content, footerText, serverAddr string, terminalWidth, terminalHeight int) string {
	headerStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.Border{Bottom: "─"}).
		BorderForeground(BorderColor).
		Width(terminalWidth - 4).
		Padding(0, 1)

	footerStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.Border{Top: "─"}).
		BorderForeground(BorderColor).
		Width(terminalWidth - 4).
		Padding(0, 1)

	contentStyle := lipgloss.NewStyle().
		Width(terminalWidth - 4)

	inner := lipgloss.JoinVertical(
		lipgloss.Left,
		headerStyle.Render(BuildHeaderContent(serverAddr)),
		contentStyle.Render(content),
		footerStyle.Render(lipgloss.NewStyle().Foreground(SubtleColor).Render(footerText)),
	)

	bordered := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(BorderColor).
		Width(terminalWidth - 2).
		Height(terminalHeight - 2).
		AlignVertical(lipgloss.Top).
		Render(inner)

	return lipgloss.Place(
		terminalWidth,
		terminalHeight,
		lipgloss.Left,
		lipgloss.Top,
		bordered,
	)
}
