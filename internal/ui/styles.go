// Package ui provides terminal styling for chanwork CLI output.
// Uses the Ayu color theme with adaptive light/dark mode support.
package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tdvu/chanwork/internal/types"
)

// Ayu theme color palette
// Dark: https://terminalcolors.com/themes/ayu/dark/
// Light: https://terminalcolors.com/themes/ayu/light/
var (
	ColorDone = lipgloss.AdaptiveColor{
		Light: "#86b300", // ayu light bright green
		Dark:  "#c2d94c", // ayu dark bright green
	}
	ColorPending = lipgloss.AdaptiveColor{
		Light: "#f2ae49", // ayu light bright yellow
		Dark:  "#ffb454", // ayu dark bright yellow
	}
	ColorUrgent = lipgloss.AdaptiveColor{
		Light: "#f07171", // ayu light bright red
		Dark:  "#f07178", // ayu dark bright red
	}
	ColorMuted = lipgloss.AdaptiveColor{
		Light: "#828c99", // ayu light muted
		Dark:  "#6c7680", // ayu dark muted
	}
	ColorAccent = lipgloss.AdaptiveColor{
		Light: "#399ee6", // ayu light bright blue
		Dark:  "#59c2ff", // ayu dark bright blue
	}
)

// Status styles - consistent across all commands
var (
	DoneStyle    = lipgloss.NewStyle().Foreground(ColorDone)
	PendingStyle = lipgloss.NewStyle().Foreground(ColorPending)
	UrgentStyle  = lipgloss.NewStyle().Foreground(ColorUrgent)
	MutedStyle   = lipgloss.NewStyle().Foreground(ColorMuted)
	AccentStyle  = lipgloss.NewStyle().Foreground(ColorAccent)
)

// CategoryStyle for section headers - bold with accent color
var CategoryStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)

// Status icons
const (
	IconDone     = "✓"
	IconPending  = "◐"
	IconOpen     = "○"
	IconSkip     = "-"
	IconPriority = "!"
)

// Separators
const (
	SeparatorLight = "──────────────────────────────────────────"
)

// bucketStyles maps each counter bucket to its display style.
var bucketStyles = map[types.Bucket]lipgloss.Style{
	types.BucketOpen:          AccentStyle,
	types.BucketPendingReview: PendingStyle,
	types.BucketCompleted:     DoneStyle,
}

// RenderBucket renders a bucket name in its semantic color.
func RenderBucket(b types.Bucket) string {
	if style, ok := bucketStyles[b]; ok {
		return style.Render(string(b))
	}
	return string(b)
}

// StatusIcon returns the icon for a work-item status.
func StatusIcon(s types.Status) string {
	switch s {
	case types.StatusNew, types.StatusConfirmed:
		return IconOpen
	case types.StatusDone:
		return IconPending
	case types.StatusCompleted:
		return IconDone
	}
	return "?"
}

// RenderStatus renders a status name in the color of its bucket.
func RenderStatus(s types.Status) string {
	bucket, ok := types.BucketOf(s)
	if !ok {
		return string(s)
	}
	return bucketStyles[bucket].Render(string(s))
}

// RenderMuted renders text with muted (gray) styling
func RenderMuted(s string) string {
	return MutedStyle.Render(s)
}

// RenderAccent renders text with accent (blue) styling
func RenderAccent(s string) string {
	return AccentStyle.Render(s)
}

// RenderPriority renders the priority marker in urgent styling.
func RenderPriority() string {
	return UrgentStyle.Render(IconPriority)
}

// RenderCategory renders a category header in uppercase with accent color
func RenderCategory(s string) string {
	return CategoryStyle.Render(strings.ToUpper(s))
}

// RenderSeparator renders the light separator line in muted color
func RenderSeparator() string {
	return MutedStyle.Render(SeparatorLight)
}
