// Package cli provides styled terminal output using lipgloss.
package cli

import (
	"github.com/Veraticus/raseed/internal/heatmap"
	"github.com/Veraticus/raseed/internal/period"
	"github.com/charmbracelet/lipgloss"
)

var (
	// PrimaryColor is the main theme color.
	PrimaryColor = lipgloss.Color("#4285F4")
	// SuccessColor indicates successful operations.
	SuccessColor = lipgloss.Color("#34A853")
	// WarningColor indicates warnings or caution messages.
	WarningColor = lipgloss.Color("#FBBC05")
	// ErrorColor indicates errors or failure messages.
	ErrorColor = lipgloss.Color("#EA4335")
	// InfoColor indicates informational messages.
	InfoColor = lipgloss.Color("#95E1D3") // Light teal
	// SubtleColor indicates less prominent UI elements.
	SubtleColor = lipgloss.Color("#666666") // Gray

	// TitleStyle is used for section titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor).
			MarginBottom(1)

	// SubtitleStyle is used for secondary headings.
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)

	// SuccessStyle formats success messages.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor)

	// WarningStyle formats warning messages.
	WarningStyle = lipgloss.NewStyle().
			Foreground(WarningColor)

	// ErrorStyle formats error messages.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor)

	// InfoStyle formats informational messages.
	InfoStyle = lipgloss.NewStyle().
			Foreground(InfoColor)

	// SubtleStyle formats less prominent text.
	SubtleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)

	// BoldStyle makes text bold.
	BoldStyle = lipgloss.NewStyle().
			Bold(true)

	// BoxStyle is used for bordered content boxes.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#333")).
			Padding(1, 2)

	// TableHeaderStyle is used for table headers.
	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(SubtleColor)

	// SelectedStyle highlights the selected heatmap day or list row.
	SelectedStyle = lipgloss.NewStyle().
			Reverse(true)
)

// bucketColors maps heatmap buckets onto a green intensity ramp.
var bucketColors = map[heatmap.Bucket]lipgloss.Color{
	heatmap.BucketEmpty:    lipgloss.Color("#3A3A3A"),
	heatmap.BucketLow:      lipgloss.Color("#9BE9A8"),
	heatmap.BucketMedium:   lipgloss.Color("#40C463"),
	heatmap.BucketHigh:     lipgloss.Color("#30A14E"),
	heatmap.BucketVeryHigh: lipgloss.Color("#216E39"),
}

// Icons.
const (
	SuccessIcon = "✓"
	ErrorIcon   = "✗"
	WarningIcon = "⚠️"
	InfoIcon    = "ℹ️"
	ReceiptIcon = "🧾"
	ChartIcon   = "📊"
	FolderIcon  = "🗄️"
	CheckIcon   = "✅"
)

// BucketStyle returns the style for a heatmap bucket.
func BucketStyle(b heatmap.Bucket) lipgloss.Style {
	color, ok := bucketColors[b]
	if !ok {
		color = bucketColors[heatmap.BucketEmpty]
	}
	return lipgloss.NewStyle().Foreground(color)
}

// TrendStyle colors spending changes: up is bad, down is good.
func TrendStyle(t period.Trend) lipgloss.Style {
	switch t {
	case period.TrendUp:
		return ErrorStyle
	case period.TrendDown:
		return SuccessStyle
	default:
		return SubtleStyle
	}
}

// TrendArrow returns a glyph for the trend direction.
func TrendArrow(t period.Trend) string {
	switch t {
	case period.TrendUp:
		return "▲"
	case period.TrendDown:
		return "▼"
	default:
		return "■"
	}
}

// FormatSuccess formats a success message with icon.
func FormatSuccess(message string) string {
	return SuccessStyle.Render(SuccessIcon + " " + message)
}

// FormatError formats an error message with icon.
func FormatError(message string) string {
	return ErrorStyle.Render(ErrorIcon + " " + message)
}

// FormatWarning formats a warning message with icon.
func FormatWarning(message string) string {
	return WarningStyle.Render(WarningIcon + " " + message)
}

// FormatInfo formats an info message with icon.
func FormatInfo(message string) string {
	return InfoStyle.Render(InfoIcon + " " + message)
}

// FormatTitle formats a title with the receipt icon.
func FormatTitle(title string) string {
	return TitleStyle.Render(ReceiptIcon + " " + title)
}

// RenderBox renders content in a styled box.
func RenderBox(title, content string) string {
	boxTitle := TitleStyle.
		UnsetMargins().
		Render(title)

	boxContent := lipgloss.JoinVertical(
		lipgloss.Left,
		boxTitle,
		content,
	)

	return BoxStyle.Render(boxContent)
}
