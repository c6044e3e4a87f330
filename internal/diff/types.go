// Package diff parses git stat and unified diff output into structured records.
// All parsing is pure: raw text in, records out, no I/O.
package diff

import "errors"

// ErrMalformedInput is returned when raw text does not match the expected
// line-prefix grammar.
var ErrMalformedInput = errors.New("malformed diff input")

// ChangeKind classifies a file-level change.
type ChangeKind int

const (
	ChangeModified ChangeKind = iota
	ChangeAdded
	ChangeDeleted
	ChangeRenamed
	ChangeBinary
)

// String returns a single-character marker used in the stat view gutter.
func (k ChangeKind) String() string {
	switch k {
	case ChangeAdded:
		return "A"
	case ChangeDeleted:
		return "D"
	case ChangeRenamed:
		return "R"
	case ChangeBinary:
		return "B"
	default:
		return "M"
	}
}

// FileChange is one entry of a stat listing.
type FileChange struct {
	Path    string
	OldPath string // set when Kind == ChangeRenamed
	Kind    ChangeKind
	Added   int
	Removed int
}

// StatView is the file-level change summary computed against one reference.
type StatView struct {
	Ref   string
	Files []FileChange
}

// LineKind classifies a single diff line.
type LineKind int

const (
	LineContext LineKind = iota
	LineAdded
	LineRemoved
)

// Line is one line inside a hunk, without its +/-/space prefix.
type Line struct {
	Kind LineKind
	Text string
}

// Hunk is a contiguous run of changes with its @@ range metadata.
type Hunk struct {
	OldStart int
	OldLines int
	NewStart int
	NewLines int
	Heading  string // trailing section heading on the @@ line, may be empty
	Lines    []Line
}

// FileDiff is the unified diff of one file. A binary file carries the
// Binary marker and no hunks. A file with zero hunks is an empty diff,
// not an error.
type FileDiff struct {
	Path   string
	Binary bool
	Hunks  []Hunk
}

// LineCount returns the total number of rendered lines across all hunks,
// including one header line per hunk. Used for scroll clamping.
func (d FileDiff) LineCount() int {
	n := 0
	for _, h := range d.Hunks {
		n += 1 + len(h.Lines)
	}
	return n
}
