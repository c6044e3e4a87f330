// Package git talks to the local repository through the git CLI.
package git

import (
	"context"
	"errors"
	"time"
)

// WorktreeRef is the pseudo-reference for the current on-disk state, as
// opposed to a concrete historical commit. Stat and diff requests against
// it compare HEAD to the working tree, and only this reference is subject
// to live refresh.
const WorktreeRef = "@worktree"

// Error taxonomy for repository operations. Callers branch on these with
// errors.Is; the concrete error carries the underlying git stderr.
var (
	// ErrRepoUnavailable means git is missing or the path is not a repository.
	ErrRepoUnavailable = errors.New("repository unavailable")
	// ErrInvalidRef means the requested reference does not resolve.
	ErrInvalidRef = errors.New("invalid reference")
	// ErrPathNotFound means the requested path is unknown to the comparison.
	ErrPathNotFound = errors.New("path not found")
)

// Commit is one entry of the log listing. Immutable once fetched.
type Commit struct {
	Hash      string
	ShortHash string
	Author    string
	Date      time.Time
	Subject   string
	// Parents holds the parent hashes, first parent first. More than one
	// marks a merge; none marks a root commit.
	Parents []string
}

// Client is the repository access boundary. Implementations return raw
// plumbing text; parsing into structured records happens in internal/diff.
type Client interface {
	// ListCommits returns up to limit commits, most recent first.
	// limit <= 0 means no limit.
	ListCommits(ctx context.Context, limit int) ([]Commit, error)
	// StatAgainst returns raw `diff --raw --numstat` text comparing ref to
	// the working tree. ref is a commit hash or WorktreeRef.
	StatAgainst(ctx context.Context, ref string) (string, error)
	// DiffOf returns the raw unified diff of a single path against ref.
	DiffOf(ctx context.Context, ref, path string) (string, error)
	// WorktreeDirty reports whether the working tree has any uncommitted
	// changes, including untracked files.
	WorktreeDirty(ctx context.Context) (bool, error)
}
