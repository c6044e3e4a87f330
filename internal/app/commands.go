package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"loupe/internal/cache"
	"loupe/internal/diff"
	"loupe/internal/git"
)

// diffRequest identifies one single-file diff fetch.
type diffRequest struct {
	Ref  string
	Path string
}

// newStatFetch adapts the git client into the read-through cache's fetch
// function: raw plumbing text in, parsed stat view out.
func newStatFetch(client git.Client) func(context.Context, string) (diff.StatView, error) {
	return func(ctx context.Context, ref string) (diff.StatView, error) {
		raw, err := client.StatAgainst(ctx, ref)
		if err != nil {
			return diff.StatView{}, err
		}
		files, err := diff.ParseStat(raw)
		if err != nil {
			return diff.StatView{}, err
		}
		return diff.StatView{Ref: ref, Files: files}, nil
	}
}

func newDiffFetch(client git.Client) func(context.Context, diffRequest) (diff.FileDiff, error) {
	return func(ctx context.Context, req diffRequest) (diff.FileDiff, error) {
		raw, err := client.DiffOf(ctx, req.Ref, req.Path)
		if err != nil {
			return diff.FileDiff{}, err
		}
		fd, err := diff.ParseUnifiedDiff(raw)
		if err != nil {
			return diff.FileDiff{}, err
		}
		if fd.Path == "" {
			fd.Path = req.Path
		}
		return fd, nil
	}
}

// loadCommits fetches the history and the worktree dirty flag in one
// command. Results carry the token so superseded fetches are dropped.
func loadCommits(ctx context.Context, client git.Client, limit int, token uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		commits, err := client.ListCommits(ctx, limit)
		if err != nil {
			return commitsLoadedMsg{token: token, err: err}
		}
		dirty, err := client.WorktreeDirty(ctx)
		if err != nil {
			return commitsLoadedMsg{token: token, err: err}
		}
		return commitsLoadedMsg{token: token, commits: commits, dirty: dirty}
	}
}

// loadStat fetches the changed-file list for ref through the cache.
// Worktree comparisons bypass the cache; historical ones are immutable
// and served from it after the first fetch.
func loadStat(ctx context.Context, rt *cache.ReadThrough[diff.StatView, string], ref string, token uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		sv, err := rt.Get(ctx, "stat:"+ref, ref, cache.DefaultExpiration, ref == git.WorktreeRef)
		if err != nil {
			return statLoadedMsg{token: token, ref: ref, err: err}
		}
		return statLoadedMsg{token: token, ref: ref, stat: sv}
	}
}

// loadDiff fetches one file's unified diff through the cache.
func loadDiff(ctx context.Context, rt *cache.ReadThrough[diff.FileDiff, diffRequest], ref, path string, token uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		req := diffRequest{Ref: ref, Path: path}
		fd, err := rt.Get(ctx, "diff:"+ref+":"+path, req, cache.DefaultExpiration, ref == git.WorktreeRef)
		if err != nil {
			return diffLoadedMsg{token: token, ref: ref, path: path, err: err}
		}
		return diffLoadedMsg{token: token, ref: ref, path: path, diff: fd}
	}
}
