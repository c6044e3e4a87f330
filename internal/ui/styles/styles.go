// Package styles contains Lip Gloss style definitions.
package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Semantic color names - Text hierarchy
	TextPrimaryColor   = lipgloss.AdaptiveColor{Light: "#2D3436", Dark: "#CCCCCC"} // Main text
	TextSecondaryColor = lipgloss.AdaptiveColor{Light: "#636E72", Dark: "#BBBBBB"} // Hashes, counts
	TextMutedColor     = lipgloss.AdaptiveColor{Light: "#999999", Dark: "#696969"} // Hints, help text, footers

	// Semantic color names - Status
	StatusSuccessColor = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	StatusWarningColor = lipgloss.AdaptiveColor{Light: "#FECA57", Dark: "#FECA57"}
	StatusErrorColor   = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF8787"}

	// Diff colors
	DiffAddedColor   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	DiffRemovedColor = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF8787"}
	DiffContextColor = lipgloss.AdaptiveColor{Light: "#636E72", Dark: "#999999"}
	DiffHunkColor    = lipgloss.AdaptiveColor{Light: "#1E66F5", Dark: "#89B4FA"}

	// Word-level emphasis inside changed lines
	DiffAddedEmphasisBg   = lipgloss.AdaptiveColor{Light: "#D4F7DF", Dark: "#1C4428"}
	DiffRemovedEmphasisBg = lipgloss.AdaptiveColor{Light: "#FBDADA", Dark: "#542527"}

	// Change kind markers in the stat view
	KindModifiedColor = lipgloss.AdaptiveColor{Light: "#FECA57", Dark: "#FECA57"}
	KindAddedColor    = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	KindDeletedColor  = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF8787"}
	KindRenamedColor  = lipgloss.AdaptiveColor{Light: "#54A0FF", Dark: "#54A0FF"}
	KindBinaryColor   = lipgloss.AdaptiveColor{Light: "#999999", Dark: "#777777"}

	// Worktree row accent in the commit log
	WorktreeColor = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}

	// Selection indicator color (used for ">" prefix in lists)
	SelectionIndicatorColor = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#FFFFFF"}

	// Selection indicator style
	SelectionIndicatorStyle = lipgloss.NewStyle().Bold(true).Foreground(SelectionIndicatorColor)

	// List rows
	SelectedRowStyle = lipgloss.NewStyle().Bold(true).Foreground(TextPrimaryColor)
	RowStyle         = lipgloss.NewStyle().Foreground(TextSecondaryColor)
	SearchMatchStyle = lipgloss.NewStyle().Bold(true).Foreground(StatusWarningColor)

	// Diff lines
	AddedLineStyle   = lipgloss.NewStyle().Foreground(DiffAddedColor)
	RemovedLineStyle = lipgloss.NewStyle().Foreground(DiffRemovedColor)
	ContextLineStyle = lipgloss.NewStyle().Foreground(DiffContextColor)
	HunkHeaderStyle  = lipgloss.NewStyle().Foreground(DiffHunkColor).Bold(true)

	AddedEmphasisStyle   = lipgloss.NewStyle().Foreground(DiffAddedColor).Background(DiffAddedEmphasisBg)
	RemovedEmphasisStyle = lipgloss.NewStyle().Foreground(DiffRemovedColor).Background(DiffRemovedEmphasisBg)

	// Status bar
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(TextSecondaryColor).
			Padding(0, 1)

	// Header line above each view
	HeaderStyle = lipgloss.NewStyle().
			Foreground(TextPrimaryColor).
			Bold(true).
			Padding(0, 1)

	// Transient notices (fetch errors, watcher degradation)
	NoticeStyle = lipgloss.NewStyle().
			Foreground(StatusWarningColor).
			Padding(0, 1)

	// Error display
	ErrorStyle = lipgloss.NewStyle().
			Foreground(StatusErrorColor).
			Bold(true).
			Padding(1, 2)
)
