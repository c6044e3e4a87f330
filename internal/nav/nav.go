// Package nav owns the view stack for the three-level drill-down: commit
// log, stat view, file diff. It is pure state: fetching happens elsewhere
// and results arrive through Push and the Reconcile operations.
package nav

import (
	"strings"

	"loupe/internal/diff"
	"loupe/internal/git"
	"loupe/internal/log"
)

// Kind identifies a frame variant. The set is closed; every switch over
// it handles all three cases.
type Kind int

const (
	KindCommitLog Kind = iota
	KindStat
	KindDiff
)

// NoSelection marks an empty list. A valid selection is always in
// [0, len) of its list.
const NoSelection = -1

// CommitLogFrame is the bottom frame, always present.
type CommitLogFrame struct {
	Commits []git.Commit
	// WorktreeRow is true when a synthetic "working tree" entry precedes
	// the commits at index 0.
	WorktreeRow bool
	Selected    int
	Scroll      int
	// Search is the active query; matching rows are highlighted and
	// SearchNext/SearchPrev jump between them.
	Search string
}

// Rows returns the number of selectable rows including the worktree row.
func (f *CommitLogFrame) Rows() int {
	n := len(f.Commits)
	if f.WorktreeRow {
		n++
	}
	return n
}

// RefAt maps a row index onto a commit hash or the worktree sentinel.
func (f *CommitLogFrame) RefAt(i int) (string, bool) {
	if i < 0 || i >= f.Rows() {
		return "", false
	}
	if f.WorktreeRow {
		if i == 0 {
			return git.WorktreeRef, true
		}
		i--
	}
	return f.Commits[i].Hash, true
}

// MatchesSearch reports whether row i matches the active query,
// case-insensitively, against hash, author and subject.
func (f *CommitLogFrame) MatchesSearch(i int) bool {
	if f.Search == "" {
		return false
	}
	q := strings.ToLower(f.Search)
	if f.WorktreeRow && i == 0 {
		return strings.Contains("working tree", q)
	}
	idx := i
	if f.WorktreeRow {
		idx--
	}
	if idx < 0 || idx >= len(f.Commits) {
		return false
	}
	c := f.Commits[idx]
	for _, s := range []string{c.Hash, c.ShortHash, c.Author, c.Subject} {
		if strings.Contains(strings.ToLower(s), q) {
			return true
		}
	}
	return false
}

// SearchNext moves the selection to the first matching row below it. The
// selection stays put when nothing below matches.
func (f *CommitLogFrame) SearchNext() {
	if f.Search == "" {
		return
	}
	for i := f.Selected + 1; i < f.Rows(); i++ {
		if f.MatchesSearch(i) {
			f.Selected = i
			return
		}
	}
}

// SearchPrev moves the selection to the first matching row above it.
func (f *CommitLogFrame) SearchPrev() {
	if f.Search == "" || f.Selected <= 0 {
		return
	}
	for i := f.Selected - 1; i >= 0; i-- {
		if f.MatchesSearch(i) {
			f.Selected = i
			return
		}
	}
}

// StatFrame shows the files changed between Ref and the working tree.
type StatFrame struct {
	Ref      string
	Files    []diff.FileChange
	Selected int
	Scroll   int
}

// DiffFrame shows one file's unified diff. It has no selectable list;
// Select events scroll it instead.
type DiffFrame struct {
	Ref    string
	Path   string
	Diff   diff.FileDiff
	Scroll int
	// Height is the last known viewport height, used to clamp scrolling.
	Height int
}

// Frame is the closed variant set over the three view kinds.
type Frame interface {
	Kind() Kind
}

func (*CommitLogFrame) Kind() Kind { return KindCommitLog }
func (*StatFrame) Kind() Kind      { return KindStat }
func (*DiffFrame) Kind() Kind      { return KindDiff }

// Stack is the navigation stack. It is never empty; the bottom frame is
// always the commit log and depth never exceeds three.
type Stack struct {
	frames []Frame
}

// NewStack creates a stack with the commit log as its only frame.
func NewStack(root *CommitLogFrame) *Stack {
	clampSelection(root)
	return &Stack{frames: []Frame{root}}
}

// Top returns the active frame.
func (s *Stack) Top() Frame { return s.frames[len(s.frames)-1] }

// Depth returns the stack depth, always in {1, 2, 3}.
func (s *Stack) Depth() int { return len(s.frames) }

// CommitLog returns the bottom frame.
func (s *Stack) CommitLog() *CommitLogFrame {
	return s.frames[0].(*CommitLogFrame)
}

// StatFrame returns the stat frame if one is on the stack.
func (s *Stack) StatFrame() (*StatFrame, bool) {
	if len(s.frames) < 2 {
		return nil, false
	}
	f, ok := s.frames[1].(*StatFrame)
	return f, ok
}

// DiffFrame returns the diff frame if it is the active frame.
func (s *Stack) DiffFrame() (*DiffFrame, bool) {
	f, ok := s.Top().(*DiffFrame)
	return f, ok
}

// Push places a new frame on top. Pushing beyond depth three or out of
// drill-down order is a programming error and is ignored.
func (s *Stack) Push(f Frame) {
	if len(s.frames) >= 3 || int(f.Kind()) != len(s.frames) {
		log.Warn(log.CatNav, "push ignored", "kind", f.Kind(), "depth", len(s.frames))
		return
	}
	switch fr := f.(type) {
	case *StatFrame:
		clampSelection(fr)
	case *DiffFrame:
		fr.Scroll = clampScroll(fr.Scroll, fr.Diff.LineCount(), fr.Height)
	}
	s.frames = append(s.frames, f)
}

// Pop removes the top frame. At depth one it is a no-op and reports false.
func (s *Stack) Pop() bool {
	if len(s.frames) == 1 {
		return false
	}
	s.frames = s.frames[:len(s.frames)-1]
	return true
}

// Select moves the top frame's selection by delta, clamped to the valid
// range. On the diff frame, which has no selectable list, it scrolls.
func (s *Stack) Select(delta int) {
	switch f := s.Top().(type) {
	case *CommitLogFrame:
		f.Selected = moveSelection(f.Selected, delta, f.Rows())
	case *StatFrame:
		f.Selected = moveSelection(f.Selected, delta, len(f.Files))
	case *DiffFrame:
		f.Scroll = clampScroll(f.Scroll+delta, f.Diff.LineCount(), f.Height)
	}
}

// ReconcileStat replaces the stat frame's file list with a freshly
// fetched one, provided the frame still shows the same ref. The selection
// is re-derived by path identity: if the previously selected path
// survived the refresh it stays selected regardless of position;
// otherwise the old numeric index is clamped into the new range. If the
// active frame is a diff of a file that vanished from the refreshed list,
// it is popped; the return value reports that pop so the caller can show
// a notice.
func (s *Stack) ReconcileStat(sv diff.StatView) (popped bool) {
	stat, ok := s.StatFrame()
	if !ok || stat.Ref != sv.Ref {
		return false
	}

	var selectedPath string
	if stat.Selected != NoSelection && stat.Selected < len(stat.Files) {
		selectedPath = stat.Files[stat.Selected].Path
	}

	prev := stat.Selected
	stat.Files = sv.Files
	stat.Selected = selectionByPath(sv.Files, selectedPath, prev)
	clampSelection(stat)

	if d, ok := s.DiffFrame(); ok && !containsPath(sv.Files, d.Path) {
		s.Pop()
		return true
	}
	return false
}

// ReconcileDiff replaces the active diff frame's content if it still
// shows the same ref and path, preserving the scroll offset clamped to
// the new length. Results for any other frame are stale and dropped.
func (s *Stack) ReconcileDiff(ref, path string, fd diff.FileDiff) bool {
	d, ok := s.DiffFrame()
	if !ok || d.Ref != ref || d.Path != path {
		return false
	}
	d.Diff = fd
	d.Scroll = clampScroll(d.Scroll, fd.LineCount(), d.Height)
	return true
}

// ReconcileCommits replaces the commit log contents, keeping the selected
// commit by hash identity where possible.
func (s *Stack) ReconcileCommits(commits []git.Commit, worktreeRow bool) {
	f := s.CommitLog()

	var selectedHash string
	if ref, ok := f.RefAt(f.Selected); ok {
		selectedHash = ref
	}

	prev := f.Selected
	f.Commits = commits
	f.WorktreeRow = worktreeRow

	f.Selected = NoSelection
	for i := 0; i < f.Rows(); i++ {
		if ref, ok := f.RefAt(i); ok && ref == selectedHash {
			f.Selected = i
			break
		}
	}
	if f.Selected == NoSelection {
		f.Selected = prev
	}
	clampSelection(f)
}

func selectionByPath(files []diff.FileChange, path string, fallback int) int {
	if path != "" {
		for i, fc := range files {
			if fc.Path == path {
				return i
			}
		}
	}
	return fallback
}

func containsPath(files []diff.FileChange, path string) bool {
	for _, fc := range files {
		if fc.Path == path {
			return true
		}
	}
	return false
}

// moveSelection shifts a selection by delta inside [0, n), mapping the
// empty list onto NoSelection and adopting a selection when the list
// becomes non-empty.
func moveSelection(sel, delta, n int) int {
	if n == 0 {
		return NoSelection
	}
	if sel == NoSelection {
		sel = 0
	}
	sel += delta
	if sel < 0 {
		return 0
	}
	if sel >= n {
		return n - 1
	}
	return sel
}

func clampScroll(scroll, total, height int) int {
	maxScroll := total - height
	if maxScroll < 0 {
		maxScroll = 0
	}
	if scroll > maxScroll {
		scroll = maxScroll
	}
	if scroll < 0 {
		scroll = 0
	}
	return scroll
}

// clampSelection restores the selection invariant on a list frame after
// any mutation of its list.
func clampSelection(f Frame) {
	switch fr := f.(type) {
	case *CommitLogFrame:
		fr.Selected = clampIndex(fr.Selected, fr.Rows())
		fr.Scroll = clampScroll(fr.Scroll, fr.Rows(), 0)
	case *StatFrame:
		fr.Selected = clampIndex(fr.Selected, len(fr.Files))
		fr.Scroll = clampScroll(fr.Scroll, len(fr.Files), 0)
	case *DiffFrame:
	}
}

func clampIndex(i, n int) int {
	if n == 0 {
		return NoSelection
	}
	if i == NoSelection {
		return 0
	}
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
