package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// UI styles
var (
	welcomeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7C3AED")).
			Bold(true).
			Align(lipgloss.Center).
			Width(80)

	taglineStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3B82F6")).
			Italic(true).
			Align(lipgloss.Center).
			Width(80).
			MarginBottom(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F59E0B"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3B82F6"))

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))
)

// DisplayWelcomeBanner shows the welcome banner
func DisplayWelcomeBanner() {
	banner := `
██╗   ██╗ █████╗ ██╗     ██╗   ██╗ █████╗ ██████╗  ██████╗ ██████╗
██║   ██║██╔══██╗██║     ██║   ██║██╔══██╗██╔══██╗██╔═══██╗██╔══██╗
██║   ██║███████║██║     ██║   ██║███████║██║  ██║██║   ██║██████╔╝
╚██╗ ██╔╝██╔══██║██║     ██║   ██║██╔══██║██║  ██║██║   ██║██╔══██╗
 ╚████╔╝ ██║  ██║███████╗╚██████╔╝██║  ██║██████╔╝╚██████╔╝██║  ██║
  ╚═══╝  ╚═╝  ╚═╝╚══════╝ ╚═════╝ ╚═╝  ╚═╝╚═════╝  ╚═════╝ ╚═╝  ╚═╝
`

	fmt.Print(welcomeStyle.Render(banner))
	fmt.Println()
	fmt.Println(taglineStyle.Render("📊 Intrinsic value analysis through discounted cash flow 📊"))
	fmt.Println()
}

// ClearScreen clears the terminal screen
func ClearScreen() {
	fmt.Print("\033[2J\033[H")
}

// DisplayError shows an error with the usual suspects listed underneath.
func DisplayError(err error) {
	fmt.Println(errorStyle.Render(fmt.Sprintf("❌ Error: %v", err)))
	fmt.Println(hintStyle.Render("   Likely causes:"))
	fmt.Println(hintStyle.Render("   • unknown or delisted ticker symbol"))
	fmt.Println(hintStyle.Render("   • no network access to Yahoo Finance"))
	fmt.Println(hintStyle.Render("   • the provider is rate limiting requests, retry in a minute"))
}

// DisplayWarning shows a warning message
func DisplayWarning(message string) {
	fmt.Println(warnStyle.Render("⚠️  " + message))
}

// DisplaySuccess shows a success message
func DisplaySuccess(message string) {
	fmt.Println(successStyle.Render("✅ " + message))
}

// DisplayInfo shows an info message
func DisplayInfo(message string) {
	fmt.Println(infoStyle.Render("ℹ️  " + message))
}

// DisplayRule prints a horizontal separator
func DisplayRule() {
	fmt.Println(hintStyle.Render(strings.Repeat("─", 76)))
}
