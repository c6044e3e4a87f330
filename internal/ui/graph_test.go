package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loupe/internal/git"
)

func linearHistory() []git.Commit {
	return []git.Commit{
		{Hash: "a", Parents: []string{"b"}},
		{Hash: "b", Parents: []string{"c"}},
		{Hash: "c"},
	}
}

func TestBuildCommitGraph_LinearHistory(t *testing.T) {
	nodes := BuildCommitGraph(linearHistory())
	require.Len(t, nodes, 3)

	for i, n := range nodes {
		assert.Equal(t, 1, n.Open, "row %d", i)
		assert.Equal(t, 0, n.Lane, "row %d", i)
		assert.False(t, n.Merge, "row %d", i)
	}
	assert.Equal(t, 0, nodes[0].Closed)
	assert.Equal(t, 1, nodes[1].Closed)
	assert.Equal(t, 1, nodes[2].Closed)
}

func TestBuildCommitGraph_SingleCommit(t *testing.T) {
	nodes := BuildCommitGraph([]git.Commit{{Hash: "a"}})
	require.Len(t, nodes, 1)
	assert.Equal(t, 1, nodes[0].Open)
	assert.Equal(t, 0, nodes[0].Lane)
}

func TestBuildCommitGraph_MergeOpensTwoTracks(t *testing.T) {
	commits := []git.Commit{
		{Hash: "m", Parents: []string{"b", "c"}},
		{Hash: "b", Parents: []string{"d"}},
		{Hash: "c", Parents: []string{"d"}},
		{Hash: "d"},
	}

	nodes := BuildCommitGraph(commits)
	require.Len(t, nodes, 4)

	assert.True(t, nodes[0].Merge)
	assert.Equal(t, 2, nodes[0].Open, "merge opens a track per parent")

	assert.Equal(t, 0, nodes[1].Lane)
	assert.Equal(t, 1, nodes[1].Closed)

	// Both sides converge on d, which closes them together.
	assert.Equal(t, 1, nodes[2].Closed)
	assert.Equal(t, 2, nodes[3].Closed)
}

func TestGraphColumnWidth(t *testing.T) {
	assert.Equal(t, 1, graphColumnWidth([]CommitNode{{Open: 1}}))
	assert.Equal(t, 3, graphColumnWidth([]CommitNode{{Open: 1}, {Open: 2}}))
	assert.Equal(t, 15, graphColumnWidth([]CommitNode{{Open: 40}}), "width is capped")
}

func TestRenderGraphCell(t *testing.T) {
	assert.Equal(t, "○", renderGraphCell(CommitNode{Open: 1, Lane: 0}, 1))
	assert.Equal(t, "●", renderGraphCell(CommitNode{Open: 1, Lane: 0, Merge: true}, 1))
	assert.Equal(t, "○ │", renderGraphCell(CommitNode{Open: 2, Lane: 0}, 3))
	assert.Equal(t, "│ ○", renderGraphCell(CommitNode{Open: 2, Lane: 1}, 3))
	assert.Equal(t, "○    ", renderGraphCell(CommitNode{Open: 1, Lane: 0}, 5), "padded to the column width")
}
