package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"loupe/internal/git"
	"loupe/internal/ui/styles"
)

// CommitNode places one commit in the branch graph drawn beside the log.
type CommitNode struct {
	// Open is how many branch tracks are open at this commit.
	Open int
	// Closed is how many tracks this commit closed.
	Closed int
	// Lane is the horizontal track index the commit sits on.
	Lane int
	// Merge marks a commit with more than one parent.
	Merge bool
}

// openBranch is a track awaiting the commit named by hash. count tracks
// how many children converge on it.
type openBranch struct {
	hash  string
	count int
}

// BuildCommitGraph assigns every commit a lane, walking the log newest
// first. A commit whose hash is awaited by an open track lands on that
// track and closes it; its parents open (or join) tracks of their own.
func BuildCommitGraph(commits []git.Commit) []CommitNode {
	var open []openBranch
	nodes := make([]CommitNode, 0, len(commits))

	for _, c := range commits {
		lane := -1
		closed := 0
		parents := c.Parents

		if x := branchIndex(open, c.Hash); x != -1 {
			closed = open[x].count
			if len(parents) > 0 {
				first := parents[0]
				parents = parents[1:]
				if y := branchIndex(open, first); y != -1 {
					// The first parent already has a track; fold this
					// one into it, keeping this track's slot.
					old := open[y]
					open = append(open[:y], open[y+1:]...)
					if y < x {
						x--
					}
					open[x] = openBranch{hash: old.hash, count: old.count + 1}
				} else {
					open[x] = openBranch{hash: first, count: 1}
				}
				lane = x
			}
		}

		for _, p := range parents {
			if y := branchIndex(open, p); y != -1 {
				open[y].count++
			} else {
				open = append(open, openBranch{hash: p, count: 1})
			}
		}

		total := 0
		for _, b := range open {
			total += b.count
		}
		if total == 0 {
			// A root commit with no remaining tracks still occupies a lane.
			total = 1
		}
		if lane == -1 {
			lane = total - 1
			if lane < 0 {
				lane = 0
			}
		}
		nodes = append(nodes, CommitNode{
			Open:   total,
			Closed: closed,
			Lane:   lane,
			Merge:  len(c.Parents) > 1,
		})
	}
	return nodes
}

func branchIndex(open []openBranch, hash string) int {
	for i, b := range open {
		if b.hash == hash {
			return i
		}
	}
	return -1
}

// graphColumnWidth returns the character width needed to draw every row,
// capped so a wild merge history cannot eat the screen.
func graphColumnWidth(nodes []CommitNode) int {
	const maxLanes = 8
	lanes := 1
	for _, n := range nodes {
		if n.Open > lanes {
			lanes = n.Open
		}
	}
	if lanes > maxLanes {
		lanes = maxLanes
	}
	return lanes*2 - 1
}

// renderGraphCell draws one row of the graph column: a bullet on the
// commit's lane, continuation lines on every other open track.
func renderGraphCell(node CommitNode, width int) string {
	lineStyle := lipgloss.NewStyle().Foreground(styles.TextMutedColor)

	var b strings.Builder
	cells := 0
	for j := 0; j < node.Open && cells+1 <= width; j++ {
		if j > 0 {
			b.WriteByte(' ')
			cells++
			if cells >= width {
				break
			}
		}
		switch {
		case j != node.Lane:
			b.WriteString(lineStyle.Render("│"))
		case node.Merge:
			b.WriteString("●")
		default:
			b.WriteString("○")
		}
		cells++
	}
	for cells < width {
		b.WriteByte(' ')
		cells++
	}
	return b.String()
}
