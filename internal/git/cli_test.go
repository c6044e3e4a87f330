package git

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loupe/internal/testutil"
)

func TestParseLog(t *testing.T) {
	out := "abc123full\x1fabc123\x1fAda\x1f1700000000\x1fdef456full feed99full\x1fadd parser\n" +
		"def456full\x1fdef456\x1fGrace\x1f1690000000\x1f\x1finitial commit\n"

	commits, err := parseLog(out)
	require.NoError(t, err)
	require.Len(t, commits, 2)

	assert.Equal(t, "abc123full", commits[0].Hash)
	assert.Equal(t, "abc123", commits[0].ShortHash)
	assert.Equal(t, "Ada", commits[0].Author)
	assert.Equal(t, "add parser", commits[0].Subject)
	assert.Equal(t, int64(1700000000), commits[0].Date.Unix())
	assert.Equal(t, []string{"def456full", "feed99full"}, commits[0].Parents)

	assert.Empty(t, commits[1].Parents, "root commit has no parents")
}

func TestParseLog_Empty(t *testing.T) {
	commits, err := parseLog("")
	require.NoError(t, err)
	assert.Empty(t, commits)
}

func TestParseLog_BadLine(t *testing.T) {
	_, err := parseLog("only\x1fthree\x1ffields\n")
	require.Error(t, err)
}

func TestResolveRef(t *testing.T) {
	assert.Equal(t, "HEAD", resolveRef(WorktreeRef))
	assert.Equal(t, "abc123", resolveRef("abc123"))
}

func TestClassifyGitError(t *testing.T) {
	tests := []struct {
		name   string
		stderr string
		want   error
	}{
		{"not a repo", "fatal: not a git repository (or any of the parent directories)", ErrRepoUnavailable},
		{"unknown revision", "fatal: ambiguous argument 'nope': unknown revision or path not in the working tree.", ErrInvalidRef},
		{"bad revision", "fatal: bad revision 'zzz'", ErrInvalidRef},
		{"pathspec", "fatal: pathspec 'missing.txt' did not match any files", ErrPathNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classifyGitError([]string{"diff"}, tt.stderr, errors.New("exit status 128"))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestClassifyGitError_GitMissing(t *testing.T) {
	err := classifyGitError([]string{"log"}, "", exec.ErrNotFound)
	assert.ErrorIs(t, err, ErrRepoUnavailable)
}

func TestCLIClient_EndToEnd(t *testing.T) {
	testutil.RequireGit(t)
	repo := testutil.NewGitRepo(t)
	repo.WriteFile("a.txt", "one\ntwo\n")
	repo.Commit("first")
	repo.WriteFile("a.txt", "one\ntwo\nthree\n")
	repo.WriteFile("b.txt", "new file\n")

	client := NewCLIClient(repo.Root)
	ctx := context.Background()

	root, err := client.RepoRoot(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, root)

	commits, err := client.ListCommits(ctx, 10)
	require.NoError(t, err)
	require.Len(t, commits, 1)
	assert.Equal(t, "first", commits[0].Subject)
	assert.Empty(t, commits[0].Parents)

	dirty, err := client.WorktreeDirty(ctx)
	require.NoError(t, err)
	assert.True(t, dirty)

	stat, err := client.StatAgainst(ctx, WorktreeRef)
	require.NoError(t, err)
	assert.Contains(t, stat, "a.txt")

	diff, err := client.DiffOf(ctx, WorktreeRef, "a.txt")
	require.NoError(t, err)
	assert.True(t, strings.Contains(diff, "+three"))
}

func TestCLIClient_InvalidRef(t *testing.T) {
	testutil.RequireGit(t)
	repo := testutil.NewGitRepo(t)
	repo.WriteFile("a.txt", "x\n")
	repo.Commit("first")

	client := NewCLIClient(repo.Root)
	_, err := client.StatAgainst(context.Background(), "nonexistent-ref")
	assert.ErrorIs(t, err, ErrInvalidRef)
}

func TestCLIClient_NotARepo(t *testing.T) {
	testutil.RequireGit(t)
	client := NewCLIClient(t.TempDir())
	_, err := client.ListCommits(context.Background(), 1)
	assert.ErrorIs(t, err, ErrRepoUnavailable)
}

func TestCLIClient_PathNotFound(t *testing.T) {
	testutil.RequireGit(t)
	repo := testutil.NewGitRepo(t)
	repo.WriteFile("a.txt", "x\n")
	repo.Commit("first")

	client := NewCLIClient(repo.Root)
	_, err := client.DiffOf(context.Background(), WorktreeRef, "no-such-file.txt")
	assert.ErrorIs(t, err, ErrPathNotFound)
}
