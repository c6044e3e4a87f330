package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loupe/internal/diff"
)

func TestTokenize(t *testing.T) {
	assert.Nil(t, tokenize(""))
	assert.Equal(t, []string{"foo"}, tokenize("foo"))
	assert.Equal(t, []string{"foo", ".", "bar", "(", ")"}, tokenize("foo.bar()"))
	assert.Equal(t, []string{"a", " ", "b"}, tokenize("a b"))
}

func TestComputeWordDiff_EmptyInputs(t *testing.T) {
	assert.Empty(t, computeWordDiff("", "").OldSegments)

	wd := computeWordDiff("", "new line")
	require.Len(t, wd.NewSegments, 1)
	assert.Equal(t, segmentAdded, wd.NewSegments[0].Type)

	wd = computeWordDiff("old line", "")
	require.Len(t, wd.OldSegments, 1)
	assert.Equal(t, segmentDeleted, wd.OldSegments[0].Type)
}

func TestComputeWordDiff_SingleWordChange(t *testing.T) {
	wd := computeWordDiff("count := total + 1", "count := total + 2")

	joinOld := joinSegments(wd.OldSegments)
	joinNew := joinSegments(wd.NewSegments)
	assert.Equal(t, "count := total + 1", joinOld, "segments reassemble the old line")
	assert.Equal(t, "count := total + 2", joinNew, "segments reassemble the new line")

	assert.True(t, hasSegment(wd.OldSegments, segmentDeleted, "1"))
	assert.True(t, hasSegment(wd.NewSegments, segmentAdded, "2"))
	assert.True(t, hasSegment(wd.OldSegments, segmentUnchanged, "count"))
}

func TestFindLinePairs(t *testing.T) {
	hunk := diff.Hunk{Lines: []diff.Line{
		{Kind: diff.LineContext, Text: "ctx"},
		{Kind: diff.LineRemoved, Text: "old"},
		{Kind: diff.LineAdded, Text: "new"},
		{Kind: diff.LineAdded, Text: "extra"},
		{Kind: diff.LineRemoved, Text: "gone"},
	}}

	pairs := findLinePairs(hunk)
	require.Len(t, pairs, 1)
	assert.Equal(t, 1, pairs[0].RemovedIdx)
	assert.Equal(t, 2, pairs[0].AddedIdx)
}

func TestComputeHunkWordDiff_SkipsLongLines(t *testing.T) {
	long := strings.Repeat("x", wordDiffMaxLineLength+1)
	hunk := diff.Hunk{Lines: []diff.Line{
		{Kind: diff.LineRemoved, Text: long},
		{Kind: diff.LineAdded, Text: long + "y"},
	}}

	result := computeHunkWordDiff(t.Context(), hunk)
	assert.Empty(t, result.Results)
}

func TestComputeFileWordDiff_MapsByHunkAndLine(t *testing.T) {
	fd := diff.FileDiff{Hunks: []diff.Hunk{
		{Lines: []diff.Line{
			{Kind: diff.LineRemoved, Text: "a = 1"},
			{Kind: diff.LineAdded, Text: "a = 2"},
		}},
		{Lines: []diff.Line{
			{Kind: diff.LineContext, Text: "unchanged"},
		}},
	}}

	wd := computeFileWordDiff(fd)
	assert.False(t, wd.TimedOut)

	assert.NotNil(t, wd.segmentsForLine(0, 0, diff.LineRemoved))
	assert.NotNil(t, wd.segmentsForLine(0, 1, diff.LineAdded))
	assert.Nil(t, wd.segmentsForLine(1, 0, diff.LineContext))
	assert.Nil(t, wd.segmentsForLine(0, 0, diff.LineContext), "context kind never maps to segments")
}

func joinSegments(segments []wordSegment) string {
	var b strings.Builder
	for _, s := range segments {
		b.WriteString(s.Text)
	}
	return b.String()
}

func hasSegment(segments []wordSegment, kind segmentType, text string) bool {
	for _, s := range segments {
		if s.Type == kind && strings.Contains(s.Text, text) {
			return true
		}
	}
	return false
}
