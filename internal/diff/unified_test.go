package diff

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

const sampleDiff = `diff --git a/greet.go b/greet.go
index 83db48f..bf269f4 100644
--- a/greet.go
+++ b/greet.go
@@ -1,4 +1,5 @@ package main
 func greet() string {
-	return "hello"
+	return "hello, world"
+	// TODO(doc): explain greeting
 }
`

func TestParseUnifiedDiff_Basic(t *testing.T) {
	fd, err := ParseUnifiedDiff(sampleDiff)
	require.NoError(t, err)

	assert.Equal(t, "greet.go", fd.Path)
	assert.False(t, fd.Binary)
	require.Len(t, fd.Hunks, 1)

	h := fd.Hunks[0]
	assert.Equal(t, 1, h.OldStart)
	assert.Equal(t, 4, h.OldLines)
	assert.Equal(t, 1, h.NewStart)
	assert.Equal(t, 5, h.NewLines)
	assert.Equal(t, "package main", h.Heading)

	require.Len(t, h.Lines, 5)
	assert.Equal(t, LineContext, h.Lines[0].Kind)
	assert.Equal(t, LineRemoved, h.Lines[1].Kind)
	assert.Equal(t, LineAdded, h.Lines[2].Kind)
	assert.Equal(t, LineAdded, h.Lines[3].Kind)
	assert.Equal(t, LineContext, h.Lines[4].Kind)
}

func TestParseUnifiedDiff_StartsAtHunk(t *testing.T) {
	fd, err := ParseUnifiedDiff("@@ -1,1 +1,1 @@\n-a\n+b\n")
	require.NoError(t, err)
	assert.Empty(t, fd.Path)
	require.Len(t, fd.Hunks, 1)
	assert.Len(t, fd.Hunks[0].Lines, 2)
}

func TestParseUnifiedDiff_HunkHeaderWithoutCounts(t *testing.T) {
	fd, err := ParseUnifiedDiff("@@ -3 +3 @@\n-a\n+b\n")
	require.NoError(t, err)
	require.Len(t, fd.Hunks, 1)
	assert.Equal(t, 1, fd.Hunks[0].OldLines)
	assert.Equal(t, 1, fd.Hunks[0].NewLines)
}

func TestParseUnifiedDiff_Empty(t *testing.T) {
	fd, err := ParseUnifiedDiff("")
	require.NoError(t, err)
	assert.Empty(t, fd.Hunks)
	assert.False(t, fd.Binary)
}

func TestParseUnifiedDiff_TrailingBlankLines(t *testing.T) {
	fd, err := ParseUnifiedDiff("@@ -1,1 +1,1 @@\n-a\n+b\n\n\n")
	require.NoError(t, err)
	require.Len(t, fd.Hunks, 1)
	assert.Len(t, fd.Hunks[0].Lines, 2)
}

func TestParseUnifiedDiff_EmptyContextLineMidHunk(t *testing.T) {
	fd, err := ParseUnifiedDiff("@@ -1,3 +1,3 @@\n-a\n\n+b\n")
	require.NoError(t, err)
	require.Len(t, fd.Hunks, 1)
	require.Len(t, fd.Hunks[0].Lines, 3)
	assert.Equal(t, LineContext, fd.Hunks[0].Lines[1].Kind)
	assert.Empty(t, fd.Hunks[0].Lines[1].Text)
}

func TestParseUnifiedDiff_Binary(t *testing.T) {
	raw := "diff --git a/logo.png b/logo.png\n" +
		"index 83db48f..bf269f4 100644\n" +
		"Binary files a/logo.png and b/logo.png differ\n"

	fd, err := ParseUnifiedDiff(raw)
	require.NoError(t, err)
	assert.True(t, fd.Binary)
	assert.Equal(t, "logo.png", fd.Path)
	assert.Empty(t, fd.Hunks)
}

func TestParseUnifiedDiff_IndexHeaderForms(t *testing.T) {
	// git appends the mode when it is unchanged, omits it otherwise, and
	// lists every parent blob for merge diffs.
	for _, index := range []string{
		"index 83db48f..bf269f4 100644",
		"index 83db48f..bf269f4",
		"index 83db48f,9f4d96d..bf269f4",
	} {
		raw := "diff --git a/x.go b/x.go\n" + index + "\n" +
			"--- a/x.go\n+++ b/x.go\n@@ -1,1 +1,1 @@\n-a\n+b\n"
		fd, err := ParseUnifiedDiff(raw)
		require.NoError(t, err, index)
		assert.Equal(t, "x.go", fd.Path)
	}
}

func TestParseUnifiedDiff_Rename(t *testing.T) {
	raw := "diff --git a/old.go b/new.go\n" +
		"similarity index 95%\n" +
		"rename from old.go\n" +
		"rename to new.go\n" +
		"--- a/old.go\n" +
		"+++ b/new.go\n" +
		"@@ -1,1 +1,1 @@\n" +
		"-x\n" +
		"+y\n"

	fd, err := ParseUnifiedDiff(raw)
	require.NoError(t, err)
	assert.Equal(t, "new.go", fd.Path)
	require.Len(t, fd.Hunks, 1)
}

func TestParseUnifiedDiff_NoNewlineMarker(t *testing.T) {
	fd, err := ParseUnifiedDiff("@@ -1,1 +1,1 @@\n-a\n+b\n\\ No newline at end of file\n")
	require.NoError(t, err)
	require.Len(t, fd.Hunks, 1)
	assert.Len(t, fd.Hunks[0].Lines, 2)
}

func TestParseUnifiedDiff_MalformedHunkLine(t *testing.T) {
	_, err := ParseUnifiedDiff("@@ -1,1 +1,1 @@\n?bogus\n")
	require.ErrorIs(t, err, ErrMalformedInput)
}

func TestParseUnifiedDiff_MalformedHeader(t *testing.T) {
	_, err := ParseUnifiedDiff("totally not a diff\n")
	require.ErrorIs(t, err, ErrMalformedInput)
}

func TestRenderUnifiedDiff_RoundTripHandBuilt(t *testing.T) {
	fd := FileDiff{
		Path: "pkg/list.go",
		Hunks: []Hunk{
			{
				OldStart: 10, OldLines: 3, NewStart: 10, NewLines: 4,
				Heading: "func clamp",
				Lines: []Line{
					{Kind: LineContext, Text: "func clamp(i, n int) int {"},
					{Kind: LineRemoved, Text: "\tif i > n {"},
					{Kind: LineAdded, Text: "\tif i >= n {"},
					{Kind: LineAdded, Text: "\t\ti = n - 1"},
					{Kind: LineContext, Text: "}"},
				},
			},
			{
				OldStart: 40, OldLines: 1, NewStart: 41, NewLines: 1,
				Lines: []Line{
					{Kind: LineContext, Text: ""},
				},
			},
		},
	}

	rendered := RenderUnifiedDiff(fd)
	reparsed, err := ParseUnifiedDiff(rendered)
	require.NoError(t, err)
	assert.Equal(t, fd, reparsed)
}

// Property: render followed by parse is the identity on structured diffs.
func TestProperty_RenderParseRoundTrip(t *testing.T) {
	lineGen := rapid.Custom(func(rt *rapid.T) Line {
		return Line{
			Kind: LineKind(rapid.IntRange(0, 2).Draw(rt, "kind")),
			// No newlines or leading parser-significant bytes are possible
			// in real git output lines, which never contain "\n".
			Text: rapid.StringMatching(`[ -~]{0,60}`).Draw(rt, "text"),
		}
	})
	hunkGen := rapid.Custom(func(rt *rapid.T) Hunk {
		return Hunk{
			OldStart: rapid.IntRange(0, 9999).Draw(rt, "oldStart"),
			OldLines: rapid.IntRange(0, 999).Draw(rt, "oldLines"),
			NewStart: rapid.IntRange(0, 9999).Draw(rt, "newStart"),
			NewLines: rapid.IntRange(0, 999).Draw(rt, "newLines"),
			Heading:  rapid.StringMatching(`[a-zA-Z0-9_ ]{0,20}`).Draw(rt, "heading"),
			Lines:    rapid.SliceOfN(lineGen, 1, 8).Draw(rt, "lines"),
		}
	})

	rapid.Check(t, func(rt *rapid.T) {
		fd := FileDiff{
			Path:  rapid.StringMatching(`[a-z]{1,8}(/[a-z]{1,8}){0,2}\.[a-z]{1,3}`).Draw(rt, "path"),
			Hunks: rapid.SliceOfN(hunkGen, 1, 4).Draw(rt, "hunks"),
		}
		normalizeHeadings(&fd)

		rendered := RenderUnifiedDiff(fd)
		reparsed, err := ParseUnifiedDiff(rendered)
		require.NoError(rt, err)
		require.Equal(rt, fd, reparsed)
	})
}

// normalizeHeadings trims headings the way the parser does, so generated
// values stay inside the parser's canonical form.
func normalizeHeadings(fd *FileDiff) {
	for i := range fd.Hunks {
		fd.Hunks[i].Heading = strings.TrimSpace(fd.Hunks[i].Heading)
	}
}
