// Package styles contains Lip Gloss style definitions.
package styles

import "github.com/charmbracelet/lipgloss"

// ColorToken represents a named, themeable color.
type ColorToken string

// Color tokens organized by category.
// These are the keys users can override in their config.
const (
	// Text hierarchy
	TokenTextPrimary   ColorToken = "text.primary"
	TokenTextSecondary ColorToken = "text.secondary"
	TokenTextMuted     ColorToken = "text.muted"

	// Status indicators
	TokenStatusSuccess ColorToken = "status.success"
	TokenStatusWarning ColorToken = "status.warning"
	TokenStatusError   ColorToken = "status.error"

	// Diff
	TokenDiffAdded   ColorToken = "diff.added"
	TokenDiffRemoved ColorToken = "diff.removed"
	TokenDiffContext ColorToken = "diff.context"
	TokenDiffHunk    ColorToken = "diff.hunk"

	// Misc
	TokenWorktree ColorToken = "worktree"
)

// AllTokens returns all valid color tokens for validation.
func AllTokens() []ColorToken {
	return []ColorToken{
		TokenTextPrimary,
		TokenTextSecondary,
		TokenTextMuted,
		TokenStatusSuccess,
		TokenStatusWarning,
		TokenStatusError,
		TokenDiffAdded,
		TokenDiffRemoved,
		TokenDiffContext,
		TokenDiffHunk,
		TokenWorktree,
	}
}

// ApplyOverrides applies custom theme colors keyed by token. Unknown keys
// are returned so the caller can warn about them; empty values are ignored.
func ApplyOverrides(colors map[string]string) []string {
	var unknown []string
	for key, value := range colors {
		if value == "" {
			continue
		}
		c := lipgloss.AdaptiveColor{Light: value, Dark: value}
		switch ColorToken(key) {
		case TokenTextPrimary:
			TextPrimaryColor = c
			SelectedRowStyle = SelectedRowStyle.Foreground(c)
			HeaderStyle = HeaderStyle.Foreground(c)
		case TokenTextSecondary:
			TextSecondaryColor = c
			RowStyle = RowStyle.Foreground(c)
			StatusBarStyle = StatusBarStyle.Foreground(c)
		case TokenTextMuted:
			TextMutedColor = c
		case TokenStatusSuccess:
			StatusSuccessColor = c
		case TokenStatusWarning:
			StatusWarningColor = c
			NoticeStyle = NoticeStyle.Foreground(c)
		case TokenStatusError:
			StatusErrorColor = c
			ErrorStyle = ErrorStyle.Foreground(c)
		case TokenDiffAdded:
			DiffAddedColor = c
			AddedLineStyle = AddedLineStyle.Foreground(c)
			AddedEmphasisStyle = AddedEmphasisStyle.Foreground(c)
			KindAddedColor = c
		case TokenDiffRemoved:
			DiffRemovedColor = c
			RemovedLineStyle = RemovedLineStyle.Foreground(c)
			RemovedEmphasisStyle = RemovedEmphasisStyle.Foreground(c)
			KindDeletedColor = c
		case TokenDiffContext:
			DiffContextColor = c
			ContextLineStyle = ContextLineStyle.Foreground(c)
		case TokenDiffHunk:
			DiffHunkColor = c
			HunkHeaderStyle = HunkHeaderStyle.Foreground(c)
		case TokenWorktree:
			WorktreeColor = c
		default:
			unknown = append(unknown, key)
		}
	}
	return unknown
}
