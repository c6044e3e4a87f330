// Package ui renders the three explorer views as styled strings. All
// rendering is pure: frames in, text out, no state.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/truncate"

	"loupe/internal/diff"
	"loupe/internal/nav"
	"loupe/internal/ui/styles"
)

const selectionPrefix = "> "

// RenderCommitLog draws the commit history list, with branch graph lanes
// when showGraph is set. The returned string has exactly height lines. It
// mutates the frame's scroll so the selection stays visible across
// resizes.
func RenderCommitLog(f *nav.CommitLogFrame, showGraph bool, width, height int) string {
	total := f.Rows()
	if total == 0 {
		return padLines(styles.StatusBarStyle.Render("no commits yet"), height)
	}

	var nodes []CommitNode
	graphWidth := 0
	if showGraph && len(f.Commits) > 0 {
		nodes = BuildCommitGraph(f.Commits)
		graphWidth = graphColumnWidth(nodes)
	}

	start, end, scroll := visibleWindow(f.Selected, f.Scroll, height, total)
	f.Scroll = scroll

	var b strings.Builder
	for i := start; i < end; i++ {
		if i > start {
			b.WriteByte('\n')
		}
		b.WriteString(renderCommitRow(f, nodes, graphWidth, i, width))
	}
	content := b.String()

	bar := RenderScrollbar(ScrollbarConfig{TotalLines: total, ViewportHeight: height, ScrollOffset: scroll})
	return joinWithScrollbar(padLines(content, height), bar)
}

func renderCommitRow(f *nav.CommitLogFrame, nodes []CommitNode, graphWidth, i, width int) string {
	selected := i == f.Selected
	prefix := "  "
	if selected {
		prefix = styles.SelectionIndicatorStyle.Render(selectionPrefix)
	}

	if f.WorktreeRow && i == 0 {
		gutter := ""
		if graphWidth > 0 {
			gutter = strings.Repeat(" ", graphWidth+1)
		}
		label := lipgloss.NewStyle().Foreground(styles.WorktreeColor).Bold(selected).Render("@ working tree")
		return prefix + gutter + truncate.StringWithTail(label, uint(max(0, width-2-graphWidth)), "…")
	}

	idx := i
	if f.WorktreeRow {
		idx--
	}
	c := f.Commits[idx]

	gutter := ""
	if graphWidth > 0 && idx < len(nodes) {
		gutter = renderGraphCell(nodes[idx], graphWidth) + " "
	}

	hash := lipgloss.NewStyle().Foreground(styles.TextSecondaryColor).Render(c.ShortHash)
	date := lipgloss.NewStyle().Foreground(styles.TextMutedColor).Render(c.Date.Format("2006-01-02"))
	subject := c.Subject
	switch {
	case selected:
		subject = styles.SelectedRowStyle.Render(subject)
	case f.MatchesSearch(i):
		subject = styles.SearchMatchStyle.Render(subject)
	}
	author := lipgloss.NewStyle().Foreground(styles.TextMutedColor).Render(c.Author)

	row := gutter + fmt.Sprintf("%s %s %s %s", hash, date, subject, author)
	return prefix + truncate.StringWithTail(row, uint(max(0, width-2)), "…")
}

// RenderStat draws the changed-file list for one reference.
func RenderStat(f *nav.StatFrame, width, height int) string {
	if len(f.Files) == 0 {
		return padLines(styles.StatusBarStyle.Render("no changes"), height)
	}

	start, end, scroll := visibleWindow(f.Selected, f.Scroll, height, len(f.Files))
	f.Scroll = scroll

	var b strings.Builder
	for i := start; i < end; i++ {
		if i > start {
			b.WriteByte('\n')
		}
		b.WriteString(renderStatRow(f.Files[i], i == f.Selected, width))
	}

	bar := RenderScrollbar(ScrollbarConfig{TotalLines: len(f.Files), ViewportHeight: height, ScrollOffset: scroll})
	return joinWithScrollbar(padLines(b.String(), height), bar)
}

func renderStatRow(fc diff.FileChange, selected bool, width int) string {
	prefix := "  "
	if selected {
		prefix = styles.SelectionIndicatorStyle.Render(selectionPrefix)
	}

	marker := lipgloss.NewStyle().Foreground(kindColor(fc.Kind)).Bold(true).Render(fc.Kind.String())

	path := fc.Path
	if fc.Kind == diff.ChangeRenamed && fc.OldPath != "" {
		path = fc.OldPath + " → " + fc.Path
	}
	if selected {
		path = styles.SelectedRowStyle.Render(path)
	} else {
		path = styles.RowStyle.Render(path)
	}

	counts := renderCounts(fc)
	row := fmt.Sprintf("%s %s %s", marker, path, counts)
	return prefix + truncate.StringWithTail(row, uint(max(0, width-2)), "…")
}

func renderCounts(fc diff.FileChange) string {
	if fc.Kind == diff.ChangeBinary {
		return lipgloss.NewStyle().Foreground(styles.KindBinaryColor).Render("bin")
	}
	added := styles.AddedLineStyle.Render(fmt.Sprintf("+%d", fc.Added))
	removed := styles.RemovedLineStyle.Render(fmt.Sprintf("-%d", fc.Removed))
	return added + " " + removed
}

func kindColor(k diff.ChangeKind) lipgloss.AdaptiveColor {
	switch k {
	case diff.ChangeAdded:
		return styles.KindAddedColor
	case diff.ChangeDeleted:
		return styles.KindDeletedColor
	case diff.ChangeRenamed:
		return styles.KindRenamedColor
	case diff.ChangeBinary:
		return styles.KindBinaryColor
	default:
		return styles.KindModifiedColor
	}
}

// RenderDiff draws one file's unified diff, scrolled to the frame's
// offset. Word-level highlighting is applied to adjacent removal and
// addition pairs when wordDiff is enabled.
func RenderDiff(f *nav.DiffFrame, wordDiff bool, width, height int) string {
	if f.Diff.Binary {
		return padLines(styles.StatusBarStyle.Render("binary file differs"), height)
	}
	if len(f.Diff.Hunks) == 0 {
		return padLines(styles.StatusBarStyle.Render("no changes"), height)
	}

	var wd fileWordDiff
	if wordDiff {
		wd = computeFileWordDiff(f.Diff)
	}

	lines := flattenDiff(f.Diff, wd, wordDiff, width)
	start, end, _ := visibleWindow(-1, f.Scroll, height, len(lines))

	content := strings.Join(lines[start:end], "\n")
	bar := RenderScrollbar(ScrollbarConfig{TotalLines: len(lines), ViewportHeight: height, ScrollOffset: start})
	return joinWithScrollbar(padLines(content, height), bar)
}

// flattenDiff renders every hunk into display lines: one header per hunk
// followed by gutter line numbers and the prefixed content lines.
func flattenDiff(fd diff.FileDiff, wd fileWordDiff, wordDiff bool, width int) []string {
	gutterStyle := lipgloss.NewStyle().Foreground(styles.TextMutedColor)

	out := make([]string, 0, fd.LineCount())
	for hi, h := range fd.Hunks {
		header := fmt.Sprintf("@@ -%d,%d +%d,%d @@", h.OldStart, h.OldLines, h.NewStart, h.NewLines)
		if h.Heading != "" {
			header += " " + h.Heading
		}
		out = append(out, truncate.StringWithTail(styles.HunkHeaderStyle.Render(header), uint(width), "…"))

		oldN, newN := h.OldStart, h.NewStart
		for li, line := range h.Lines {
			var gutter string
			switch line.Kind {
			case diff.LineRemoved:
				gutter = fmt.Sprintf("%4d      ", oldN)
				oldN++
			case diff.LineAdded:
				gutter = fmt.Sprintf("     %4d ", newN)
				newN++
			default:
				gutter = fmt.Sprintf("%4d %4d ", oldN, newN)
				oldN++
				newN++
			}

			var segments []wordSegment
			if wordDiff {
				segments = wd.segmentsForLine(hi, li, line.Kind)
			}
			rendered := gutterStyle.Render(gutter) + renderDiffLine(line, segments)
			out = append(out, truncate.StringWithTail(rendered, uint(width), "…"))
		}
	}
	return out
}

func renderDiffLine(line diff.Line, segments []wordSegment) string {
	switch line.Kind {
	case diff.LineAdded:
		if len(segments) > 0 {
			return styles.AddedLineStyle.Render("+") + renderSegments(segments, styles.AddedLineStyle, styles.AddedEmphasisStyle)
		}
		return styles.AddedLineStyle.Render("+" + line.Text)
	case diff.LineRemoved:
		if len(segments) > 0 {
			return styles.RemovedLineStyle.Render("-") + renderSegments(segments, styles.RemovedLineStyle, styles.RemovedEmphasisStyle)
		}
		return styles.RemovedLineStyle.Render("-" + line.Text)
	default:
		return styles.ContextLineStyle.Render(" " + line.Text)
	}
}

func renderSegments(segments []wordSegment, base, emphasis lipgloss.Style) string {
	var b strings.Builder
	for _, seg := range segments {
		if seg.Type == segmentUnchanged {
			b.WriteString(base.Render(seg.Text))
		} else {
			b.WriteString(emphasis.Render(seg.Text))
		}
	}
	return b.String()
}

// RenderStatusBar draws a single status line with left-aligned and
// right-aligned halves.
func RenderStatusBar(left, right string, width int) string {
	gap := width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return styles.StatusBarStyle.Render(left + strings.Repeat(" ", gap) + right)
}

// RenderHeader draws the title line above the active view.
func RenderHeader(title string, width int) string {
	return truncate.StringWithTail(styles.HeaderStyle.Render(title), uint(width), "…")
}

// padLines pads content with blank lines so it spans exactly height rows.
func padLines(content string, height int) string {
	lines := strings.Split(content, "\n")
	if len(lines) >= height {
		return strings.Join(lines[:height], "\n")
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// joinWithScrollbar attaches a scrollbar column to the right of content.
func joinWithScrollbar(content, bar string) string {
	if bar == "" {
		return content
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, content, bar)
}

// FormatAge renders a compact relative timestamp for the status bar.
func FormatAge(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := now.Sub(t)
	switch {
	case d < time.Second:
		return "just now"
	case d < time.Minute:
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

// PadRight pads s with spaces to the given display width.
func PadRight(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}
