package ui

import "github.com/charmbracelet/lipgloss"

// Colors used in the application.
var (
	colorPrimary   = lipgloss.Color("62")  // Purple
	colorSecondary = lipgloss.Color("241") // Gray
	colorMuted     = lipgloss.Color("240") // Darker gray
	colorHighlight = lipgloss.Color("212") // Pink
	colorSuccess   = lipgloss.Color("78")  // Green
	colorPartial   = lipgloss.Color("220") // Yellow
	colorError     = lipgloss.Color("196") // Red
)

// Title style for the app header.
var Title = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight).
	Padding(0, 1)

// InputBox wraps the search input.
var InputBox = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorPrimary).
	Padding(0, 1)

// Chip style for a selected item.
var Chip = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("236")).
	Padding(0, 1).
	MarginRight(1)

// ActiveChip style for the selected item under the cursor.
var ActiveChip = lipgloss.NewStyle().
	Bold(true).
	Strikethrough(true).
	Foreground(lipgloss.Color("255")).
	Background(colorPrimary).
	Padding(0, 1).
	MarginRight(1)

// Badge marks the best combination.
var Badge = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("0")).
	Background(colorHighlight).
	Padding(0, 1)

// CardHeader style for the package count / coverage / price line.
var CardHeader = lipgloss.NewStyle().
	Foreground(colorSecondary)

// CardHeaderValue style for numbers in the header line.
var CardHeaderValue = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255"))

// Card frames one combination.
var Card = lipgloss.NewStyle().
	Border(lipgloss.NormalBorder()).
	BorderForeground(colorMuted).
	Padding(0, 1)

// TableBorder colors the matrix grid.
var TableBorder = lipgloss.NewStyle().
	Foreground(colorMuted)

// TableHeader style for package names.
var TableHeader = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorPrimary).
	Align(lipgloss.Center).
	Padding(0, 1)

// TableCell style for matrix cells.
var TableCell = lipgloss.NewStyle().
	Align(lipgloss.Center).
	Padding(0, 1)

// TableKey style for the coverage key column.
var TableKey = lipgloss.NewStyle().
	Padding(0, 1)

// TablePrice style for the price footer row.
var TablePrice = lipgloss.NewStyle().
	Foreground(colorSecondary).
	Align(lipgloss.Center).
	Padding(0, 1)

// Coverage indicator styles.
var (
	CoverageNone    = lipgloss.NewStyle().Foreground(colorMuted)
	CoveragePartial = lipgloss.NewStyle().Foreground(colorPartial)
	CoverageFull    = lipgloss.NewStyle().Foreground(colorSuccess)
)

// StatusBar style for the bottom status bar.
var StatusBar = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("236")).
	Padding(0, 1)

// StatusBarKey style for key hints in status bar.
var StatusBarKey = lipgloss.NewStyle().
	Foreground(colorHighlight).
	Bold(true)

// StatusBarText style for descriptive text in status bar.
var StatusBarText = lipgloss.NewStyle().
	Foreground(colorSecondary)

// ErrorStyle for notices.
var ErrorStyle = lipgloss.NewStyle().
	Foreground(colorError).
	Bold(true).
	Padding(0, 1)

// HelpStyle for muted hint text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(colorMuted).
	Padding(0, 1)

// DebugPanel frames the debug overlay.
var DebugPanel = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorPrimary).
	Padding(1, 2)

// DebugHeaderStyle for section headers inside the debug overlay.
var DebugHeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight)
