package app

import (
	"github.com/google/uuid"

	"loupe/internal/diff"
	"loupe/internal/git"
)

// Fetch results arrive as messages carrying the request token they were
// issued with. A result whose token no longer matches the model's current
// token for that target was superseded while in flight and is dropped.

type commitsLoadedMsg struct {
	token   uuid.UUID
	commits []git.Commit
	dirty   bool
	err     error
}

type statLoadedMsg struct {
	token uuid.UUID
	ref   string
	stat  diff.StatView
	err   error
}

type diffLoadedMsg struct {
	token uuid.UUID
	ref   string
	path  string
	diff  diff.FileDiff
	err   error
}

// clearNoticeMsg expires the transient status-bar notice.
type clearNoticeMsg struct {
	id int
}
