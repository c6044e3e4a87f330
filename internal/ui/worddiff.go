package ui

import (
	"context"
	"strings"
	"time"
	"unicode"

	"github.com/sergi/go-diff/diffmatchpatch"

	"loupe/internal/diff"
)

// Word diff constants for performance bounds.
const (
	// wordDiffMaxLineLength skips word diff for lines exceeding this length.
	wordDiffMaxLineLength = 500
	// wordDiffMaxPairs limits word diff computation to first N pairs per hunk.
	wordDiffMaxPairs = 100
	// wordDiffTimeout is the maximum time allowed for word diff per file.
	wordDiffTimeout = 50 * time.Millisecond
)

// segmentType indicates whether a segment is unchanged, added, or deleted.
type segmentType int

const (
	segmentUnchanged segmentType = iota
	segmentAdded
	segmentDeleted
)

// wordSegment represents a run of text with its diff status.
type wordSegment struct {
	Type segmentType
	Text string
}

// wordDiffResult contains the word-level diff results for a line pair.
type wordDiffResult struct {
	OldSegments []wordSegment
	NewSegments []wordSegment
}

// linePair is an adjacent removal+addition pair eligible for word diffing.
type linePair struct {
	RemovedIdx int
	AddedIdx   int
}

// tokenize splits a line into words, whitespace runs, and punctuation.
// Example: "foo.bar()" becomes ["foo", ".", "bar", "(", ")"]
func tokenize(line string) []string {
	if line == "" {
		return nil
	}

	var tokens []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}

	for _, r := range line {
		switch {
		case unicode.IsSpace(r), unicode.IsPunct(r), unicode.IsSymbol(r):
			flush()
			tokens = append(tokens, string(r))
		default:
			current.WriteRune(r)
		}
	}
	flush()

	return tokens
}

// computeWordDiff computes a word-level diff between two lines.
func computeWordDiff(oldLine, newLine string) wordDiffResult {
	if oldLine == "" && newLine == "" {
		return wordDiffResult{}
	}
	if oldLine == "" {
		return wordDiffResult{NewSegments: []wordSegment{{Type: segmentAdded, Text: newLine}}}
	}
	if newLine == "" {
		return wordDiffResult{OldSegments: []wordSegment{{Type: segmentDeleted, Text: oldLine}}}
	}

	dmp := diffmatchpatch.New()

	// Diff at token granularity by joining tokens with a delimiter the
	// input cannot contain.
	oldText := strings.Join(tokenize(oldLine), "\x00")
	newText := strings.Join(tokenize(newLine), "\x00")

	diffs := dmp.DiffMain(oldText, newText, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var oldSegments, newSegments []wordSegment
	for _, d := range diffs {
		text := strings.ReplaceAll(d.Text, "\x00", "")
		if text == "" {
			continue
		}
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			oldSegments = append(oldSegments, wordSegment{Type: segmentUnchanged, Text: text})
			newSegments = append(newSegments, wordSegment{Type: segmentUnchanged, Text: text})
		case diffmatchpatch.DiffDelete:
			oldSegments = append(oldSegments, wordSegment{Type: segmentDeleted, Text: text})
		case diffmatchpatch.DiffInsert:
			newSegments = append(newSegments, wordSegment{Type: segmentAdded, Text: text})
		}
	}

	return wordDiffResult{OldSegments: oldSegments, NewSegments: newSegments}
}

// findLinePairs finds adjacent removal+addition pairs in a hunk.
func findLinePairs(hunk diff.Hunk) []linePair {
	var pairs []linePair
	for i := 0; i < len(hunk.Lines)-1; i++ {
		if hunk.Lines[i].Kind == diff.LineRemoved && hunk.Lines[i+1].Kind == diff.LineAdded {
			pairs = append(pairs, linePair{RemovedIdx: i, AddedIdx: i + 1})
			i++
		}
	}
	return pairs
}

// hunkWordDiff maps line index within a hunk to its word diff result.
type hunkWordDiff struct {
	Results map[int]wordDiffResult
}

func computeHunkWordDiff(ctx context.Context, hunk diff.Hunk) hunkWordDiff {
	result := hunkWordDiff{Results: make(map[int]wordDiffResult)}

	pairs := findLinePairs(hunk)
	if len(pairs) == 0 {
		return result
	}
	if len(pairs) > wordDiffMaxPairs {
		pairs = pairs[:wordDiffMaxPairs]
	}

	for _, pair := range pairs {
		select {
		case <-ctx.Done():
			return result
		default:
		}

		removed := hunk.Lines[pair.RemovedIdx].Text
		added := hunk.Lines[pair.AddedIdx].Text
		if len(removed) > wordDiffMaxLineLength || len(added) > wordDiffMaxLineLength {
			continue
		}

		wd := computeWordDiff(removed, added)
		result.Results[pair.RemovedIdx] = wd
		result.Results[pair.AddedIdx] = wd
	}

	return result
}

// fileWordDiff contains word diff results for all hunks in a file.
type fileWordDiff struct {
	HunkDiffs map[int]hunkWordDiff
	TimedOut  bool
}

// computeFileWordDiff computes word-level diffs for an entire file,
// enforcing the per-file timeout.
func computeFileWordDiff(fd diff.FileDiff) fileWordDiff {
	result := fileWordDiff{HunkDiffs: make(map[int]hunkWordDiff)}
	if len(fd.Hunks) == 0 {
		return result
	}

	ctx, cancel := context.WithTimeout(context.Background(), wordDiffTimeout)
	defer cancel()

	for i, hunk := range fd.Hunks {
		select {
		case <-ctx.Done():
			result.TimedOut = true
			return result
		default:
		}

		hd := computeHunkWordDiff(ctx, hunk)
		if len(hd.Results) > 0 {
			result.HunkDiffs[i] = hd
		}
	}

	return result
}

// segmentsForLine returns word segments for a line if word diff was computed.
func (f fileWordDiff) segmentsForLine(hunkIdx, lineIdx int, kind diff.LineKind) []wordSegment {
	hd, ok := f.HunkDiffs[hunkIdx]
	if !ok {
		return nil
	}
	wd, ok := hd.Results[lineIdx]
	if !ok {
		return nil
	}
	switch kind {
	case diff.LineRemoved:
		return wd.OldSegments
	case diff.LineAdded:
		return wd.NewSegments
	default:
		return nil
	}
}
