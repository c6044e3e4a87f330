package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"loupe/internal/log"
)

// field separator used in the log pretty format; never appears in commit
// metadata.
const logFieldSep = "\x1f"

// Compile-time check that CLIClient implements Client.
var _ Client = (*CLIClient)(nil)

// CLIClient implements Client by shelling out to the git binary.
type CLIClient struct {
	workDir string
}

// NewCLIClient creates a client rooted at workDir.
func NewCLIClient(workDir string) *CLIClient {
	return &CLIClient{workDir: workDir}
}

// RepoRoot resolves the repository top-level directory for workDir.
// Fails with ErrRepoUnavailable when workDir is not inside a repository.
func (c *CLIClient) RepoRoot(ctx context.Context) (string, error) {
	out, err := c.run(ctx, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// ListCommits returns the commit log, most recent first.
func (c *CLIClient) ListCommits(ctx context.Context, limit int) ([]Commit, error) {
	args := []string{"log", "--pretty=format:%H" + logFieldSep + "%h" + logFieldSep + "%an" + logFieldSep + "%at" + logFieldSep + "%P" + logFieldSep + "%s"}
	if limit > 0 {
		args = append(args, fmt.Sprintf("-n%d", limit))
	}
	out, err := c.run(ctx, args...)
	if err != nil {
		// An empty repository has no HEAD yet; treat it as an empty log.
		if strings.Contains(err.Error(), "does not have any commits") {
			return nil, nil
		}
		return nil, err
	}
	return parseLog(out)
}

// StatAgainst returns combined --raw/--numstat output comparing ref to the
// working tree.
func (c *CLIClient) StatAgainst(ctx context.Context, ref string) (string, error) {
	return c.run(ctx, "diff", "--find-renames", "--raw", "--numstat", resolveRef(ref))
}

// DiffOf returns the unified diff of one path against ref.
func (c *CLIClient) DiffOf(ctx context.Context, ref, path string) (string, error) {
	out, err := c.run(ctx, "diff", "--find-renames", resolveRef(ref), "--", path)
	if err != nil {
		return "", err
	}
	// git reports nothing for paths outside the comparison; distinguish a
	// genuinely clean file from a bogus path.
	if strings.TrimSpace(out) == "" {
		known, kerr := c.pathKnown(ctx, path)
		if kerr == nil && !known {
			return "", fmt.Errorf("%w: %s", ErrPathNotFound, path)
		}
	}
	return out, nil
}

// WorktreeDirty reports whether `status --porcelain` lists anything.
func (c *CLIClient) WorktreeDirty(ctx context.Context) (bool, error) {
	out, err := c.run(ctx, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

func (c *CLIClient) pathKnown(ctx context.Context, path string) (bool, error) {
	out, err := c.run(ctx, "ls-files", "--error-unmatch", "--", path)
	if err != nil {
		return false, nil //nolint:nilerr // unmatched pathspec is the "unknown" answer
	}
	return strings.TrimSpace(out) != "", nil
}

// resolveRef maps the worktree sentinel onto HEAD, the baseline the live
// view diffs against.
func resolveRef(ref string) string {
	if ref == WorktreeRef {
		return "HEAD"
	}
	return ref
}

func (c *CLIClient) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...) //nolint:gosec // G204: args come from controlled sources
	if c.workDir != "" {
		cmd.Dir = c.workDir
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.Debug(log.CatGit, "running git", "args", strings.Join(args, " "))
	if err := cmd.Run(); err != nil {
		return "", classifyGitError(args, strings.TrimSpace(stderr.String()), err)
	}
	return stdout.String(), nil
}

// classifyGitError maps git failures onto the package error taxonomy so
// the UI can decide between a fatal startup error and a transient notice.
func classifyGitError(args []string, stderr string, err error) error {
	lower := strings.ToLower(stderr)
	switch {
	case errors.Is(err, exec.ErrNotFound):
		return fmt.Errorf("%w: git binary not found", ErrRepoUnavailable)
	case strings.Contains(lower, "not a git repository"):
		return fmt.Errorf("%w: %s", ErrRepoUnavailable, stderr)
	case strings.Contains(lower, "unknown revision"),
		strings.Contains(lower, "bad revision"),
		strings.Contains(lower, "ambiguous argument"):
		return fmt.Errorf("%w: %s", ErrInvalidRef, stderr)
	case strings.Contains(lower, "did not match any file"),
		strings.Contains(lower, "pathspec"):
		return fmt.Errorf("%w: %s", ErrPathNotFound, stderr)
	}
	if stderr != "" {
		return fmt.Errorf("git %s: %s", strings.Join(args, " "), stderr)
	}
	return fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
}

func parseLog(out string) ([]Commit, error) {
	var commits []Commit
	for _, line := range strings.Split(out, "\n") {
		if line == "" {
			continue
		}
		fields := strings.Split(line, logFieldSep)
		if len(fields) != 6 {
			return nil, fmt.Errorf("unexpected log line %q", line)
		}
		ts, err := strconv.ParseInt(fields[3], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad commit timestamp %q: %w", fields[3], err)
		}
		commits = append(commits, Commit{
			Hash:      fields[0],
			ShortHash: fields[1],
			Author:    fields[2],
			Date:      time.Unix(ts, 0),
			Parents:   strings.Fields(fields[4]),
			Subject:   fields[5],
		})
	}
	return commits, nil
}
