// Package app wires the navigation stack, the repository client, and the
// filesystem watcher into a single Bubble Tea model. The update loop is
// the only mutator of view state: fetches run as commands and deliver
// results as messages, watcher signals arrive as messages, and every
// result is reconciled against what the user is looking at now.
package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"loupe/internal/cache"
	"loupe/internal/config"
	"loupe/internal/diff"
	"loupe/internal/git"
	"loupe/internal/keys"
	"loupe/internal/log"
	"loupe/internal/nav"
	"loupe/internal/pubsub"
	"loupe/internal/ui"
	"loupe/internal/watcher"
)

const noticeTimeout = 4 * time.Second

// Options configures a new Model.
type Options struct {
	Client git.Client
	Config config.Config
	// RepoRoot is the absolute repository path, shown in the header.
	RepoRoot string
	// Listener delivers coalesced change signals; nil disables live
	// refresh and the status bar reports the degradation.
	Listener *pubsub.ContinuousListener[watcher.Signal]
	// ConfigPath, when set, lets the auto-refresh toggle persist.
	ConfigPath string
}

// Model is the root Bubble Tea model.
type Model struct {
	ctx    context.Context
	client git.Client
	cfg    config.Config

	repoRoot   string
	configPath string

	keys keys.KeyMap
	help help.Model

	stack    *nav.Stack
	listener *pubsub.ContinuousListener[watcher.Signal]

	statCache *cache.ReadThrough[diff.StatView, string]
	diffCache *cache.ReadThrough[diff.FileDiff, diffRequest]

	// One in-flight token per fetch target. A result with a stale token
	// was superseded and is dropped.
	commitsToken uuid.UUID
	statToken    uuid.UUID
	diffToken    uuid.UUID

	width, height int

	autoRefresh   bool
	watchDegraded bool
	loading       bool
	lastRefresh   time.Time

	notice   string
	noticeID int

	// searching is true while the user is typing a query; searchDraft is
	// the text typed so far. The committed query lives on the commit log
	// frame so the renderer can highlight matches.
	searching   bool
	searchDraft string

	fatalErr error
	quitting bool
}

// New builds the root model. The context bounds every fetch the model
// issues; cancelling it on shutdown releases in-flight git processes.
func New(ctx context.Context, opts Options) Model {
	return Model{
		ctx:          ctx,
		commitsToken: uuid.New(),
		client:       opts.Client,
		cfg:          opts.Config,
		repoRoot:     opts.RepoRoot,
		configPath:   opts.ConfigPath,
		keys:         keys.DefaultKeyMap(),
		help:         help.New(),
		stack: nav.NewStack(&nav.CommitLogFrame{
			Selected: nav.NoSelection,
		}),
		listener: opts.Listener,
		statCache: cache.NewReadThrough(
			cache.NewInMemory[diff.StatView]("stat", cache.DefaultExpiration, cache.DefaultCleanupInterval),
			newStatFetch(opts.Client),
		),
		diffCache: cache.NewReadThrough(
			cache.NewInMemory[diff.FileDiff]("diff", cache.DefaultExpiration, cache.DefaultCleanupInterval),
			newDiffFetch(opts.Client),
		),
		autoRefresh:   opts.Config.AutoRefresh,
		watchDegraded: opts.Listener == nil,
	}
}

// Init kicks off the initial history fetch and arms the watcher listener.
// The initial fetch token is minted in New so the result is accepted.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{loadCommits(m.ctx, m.client, m.cfg.LogLimit, m.commitsToken)}
	if m.listener != nil {
		cmds = append(cmds, m.listener.Listen())
	}
	return tea.Batch(cmds...)
}

// Update is the single mutator of navigation state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		if d, ok := m.stack.DiffFrame(); ok {
			d.Height = m.bodyHeight()
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case pubsub.Event[watcher.Signal]:
		return m.handleSignal()

	case commitsLoadedMsg:
		return m.handleCommitsLoaded(msg)

	case statLoadedMsg:
		return m.handleStatLoaded(msg)

	case diffLoadedMsg:
		return m.handleDiffLoaded(msg)

	case clearNoticeMsg:
		if msg.id == m.noticeID {
			m.notice = ""
		}
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		return m.handleSearchKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.stack.Select(-1)
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.stack.Select(+1)
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		if _, ok := m.stack.DiffFrame(); ok {
			m.stack.Select(-m.bodyHeight())
		}
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		if _, ok := m.stack.DiffFrame(); ok {
			m.stack.Select(+m.bodyHeight())
		}
		return m, nil

	case key.Matches(msg, m.keys.Top):
		if d, ok := m.stack.DiffFrame(); ok {
			d.Scroll = 0
		}
		return m, nil

	case key.Matches(msg, m.keys.Bottom):
		if d, ok := m.stack.DiffFrame(); ok {
			m.stack.Select(d.Diff.LineCount())
		}
		return m, nil

	case key.Matches(msg, m.keys.Enter):
		return m.drillDown()

	case key.Matches(msg, m.keys.Back):
		top := m.stack.Top()
		if m.stack.Pop() {
			// Results still in flight for the popped view must not
			// recreate it when they land.
			switch top.(type) {
			case *nav.StatFrame:
				m.statToken = uuid.New()
				m.diffToken = uuid.New()
			case *nav.DiffFrame:
				m.diffToken = uuid.New()
			}
			m.loading = false
		} else if f, ok := top.(*nav.CommitLogFrame); ok && f.Search != "" {
			f.Search = ""
		}
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		return m.refreshActive()

	case key.Matches(msg, m.keys.ToggleAuto):
		return m.toggleAutoRefresh()

	case key.Matches(msg, m.keys.Search):
		if _, ok := m.stack.Top().(*nav.CommitLogFrame); ok {
			m.searching = true
			m.searchDraft = ""
		}
		return m, nil

	case key.Matches(msg, m.keys.NextMatch):
		if f, ok := m.stack.Top().(*nav.CommitLogFrame); ok {
			f.SearchNext()
		}
		return m, nil

	case key.Matches(msg, m.keys.PrevMatch):
		if f, ok := m.stack.Top().(*nav.CommitLogFrame); ok {
			f.SearchPrev()
		}
		return m, nil
	}

	return m, nil
}

// handleSearchKey consumes every key while the query is being typed.
func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f, ok := m.stack.Top().(*nav.CommitLogFrame)
	if !ok {
		m.searching = false
		return m, nil
	}

	switch msg.Type {
	case tea.KeyEsc, tea.KeyCtrlC:
		m.searching = false
		m.searchDraft = ""
		f.Search = ""

	case tea.KeyEnter:
		m.searching = false
		f.Search = m.searchDraft
		m.searchDraft = ""
		if f.Search != "" && !f.MatchesSearch(f.Selected) {
			f.SearchNext()
		}

	case tea.KeyBackspace:
		if len(m.searchDraft) > 0 {
			m.searchDraft = m.searchDraft[:len(m.searchDraft)-1]
		}

	case tea.KeyRunes, tea.KeySpace:
		m.searchDraft += string(msg.Runes)
	}
	return m, nil
}

// drillDown activates the selected row: commit log selection fetches its
// stat view, stat selection fetches the file's diff. The frame is pushed
// when the fetch lands, not before.
func (m Model) drillDown() (tea.Model, tea.Cmd) {
	switch f := m.stack.Top().(type) {
	case *nav.CommitLogFrame:
		ref, ok := f.RefAt(f.Selected)
		if !ok {
			return m, nil
		}
		m.statToken = uuid.New()
		m.loading = true
		log.Debug(log.CatUI, "drill into stat", "ref", ref)
		return m, loadStat(m.ctx, m.statCache, ref, m.statToken)

	case *nav.StatFrame:
		if f.Selected == nav.NoSelection {
			return m, nil
		}
		path := f.Files[f.Selected].Path
		m.diffToken = uuid.New()
		m.loading = true
		log.Debug(log.CatUI, "drill into diff", "ref", f.Ref, "path", path)
		return m, loadDiff(m.ctx, m.diffCache, f.Ref, path, m.diffToken)
	}
	return m, nil
}

// refreshActive re-fetches whatever the user is looking at.
func (m Model) refreshActive() (tea.Model, tea.Cmd) {
	switch f := m.stack.Top().(type) {
	case *nav.CommitLogFrame:
		m.commitsToken = uuid.New()
		return m, loadCommits(m.ctx, m.client, m.cfg.LogLimit, m.commitsToken)
	case *nav.StatFrame:
		m.statToken = uuid.New()
		return m, loadStat(m.ctx, m.statCache, f.Ref, m.statToken)
	case *nav.DiffFrame:
		m.diffToken = uuid.New()
		return m, loadDiff(m.ctx, m.diffCache, f.Ref, f.Path, m.diffToken)
	}
	return m, nil
}

func (m Model) toggleAutoRefresh() (tea.Model, tea.Cmd) {
	m.autoRefresh = !m.autoRefresh
	state := "off"
	if m.autoRefresh {
		state = "on"
	}
	if m.configPath != "" {
		if err := config.SaveAutoRefresh(m.configPath, m.autoRefresh); err != nil {
			log.ErrorErr(log.CatConfig, "failed to persist auto_refresh", err)
		}
	}
	return m.withNotice("auto-refresh " + state)
}

// handleSignal reacts to a coalesced filesystem change. Only views of the
// working tree are refreshed; historical views are immutable. The listen
// command is always re-armed.
func (m Model) handleSignal() (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{m.listener.Listen()}
	if !m.autoRefresh {
		return m, tea.Batch(cmds...)
	}

	log.Debug(log.CatUI, "change signal", "depth", m.stack.Depth())

	// The dirty flag on the worktree row can flip on any change.
	m.commitsToken = uuid.New()
	cmds = append(cmds, loadCommits(m.ctx, m.client, m.cfg.LogLimit, m.commitsToken))

	if stat, ok := m.stack.StatFrame(); ok && stat.Ref == git.WorktreeRef {
		m.statToken = uuid.New()
		cmds = append(cmds, loadStat(m.ctx, m.statCache, stat.Ref, m.statToken))
	}
	if d, ok := m.stack.DiffFrame(); ok && d.Ref == git.WorktreeRef {
		m.diffToken = uuid.New()
		cmds = append(cmds, loadDiff(m.ctx, m.diffCache, d.Ref, d.Path, m.diffToken))
	}

	return m, tea.Batch(cmds...)
}

func (m Model) handleCommitsLoaded(msg commitsLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.token != m.commitsToken {
		log.Debug(log.CatUI, "stale commits result dropped")
		return m, nil
	}
	if msg.err != nil {
		return m.fetchFailed("history", msg.err)
	}

	m.lastRefresh = time.Now()
	m.stack.ReconcileCommits(msg.commits, msg.dirty)
	return m, nil
}

func (m Model) handleStatLoaded(msg statLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.token != m.statToken {
		log.Debug(log.CatUI, "stale stat result dropped", "ref", msg.ref)
		return m, nil
	}
	m.loading = false
	if msg.err != nil {
		return m.fetchFailed("changes", msg.err)
	}

	m.lastRefresh = time.Now()

	// A result for the frame on the stack is a refresh; a result while the
	// commit log is on top is the pending drill-down.
	if stat, ok := m.stack.StatFrame(); ok && stat.Ref == msg.ref {
		if popped := m.stack.ReconcileStat(msg.stat); popped {
			return m.withNotice("file no longer changed, returned to file list")
		}
		return m, nil
	}
	if m.stack.Depth() == 1 {
		m.stack.Push(&nav.StatFrame{Ref: msg.ref, Files: msg.stat.Files, Selected: nav.NoSelection})
	}
	return m, nil
}

func (m Model) handleDiffLoaded(msg diffLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.token != m.diffToken {
		log.Debug(log.CatUI, "stale diff result dropped", "path", msg.path)
		return m, nil
	}
	m.loading = false
	if msg.err != nil {
		if errors.Is(msg.err, git.ErrPathNotFound) {
			return m.withNotice(fmt.Sprintf("%s is no longer part of this change", msg.path))
		}
		return m.fetchFailed("diff", msg.err)
	}

	m.lastRefresh = time.Now()

	if m.stack.ReconcileDiff(msg.ref, msg.path, msg.diff) {
		return m, nil
	}
	if stat, ok := m.stack.StatFrame(); ok && m.stack.Depth() == 2 && stat.Ref == msg.ref {
		m.stack.Push(&nav.DiffFrame{
			Ref:    msg.ref,
			Path:   msg.path,
			Diff:   msg.diff,
			Height: m.bodyHeight(),
		})
	}
	return m, nil
}

// fetchFailed keeps the last good view on screen and reports the failure
// in the status bar. A vanished repository is fatal.
func (m Model) fetchFailed(what string, err error) (tea.Model, tea.Cmd) {
	log.ErrorErr(log.CatUI, "fetch failed", err, "target", what)
	if errors.Is(err, git.ErrRepoUnavailable) {
		m.fatalErr = err
		return m, tea.Quit
	}
	return m.withNotice(fmt.Sprintf("failed to load %s: %v", what, err))
}

func (m Model) withNotice(text string) (tea.Model, tea.Cmd) {
	m.notice = text
	m.noticeID++
	id := m.noticeID
	return m, tea.Tick(noticeTimeout, func(time.Time) tea.Msg {
		return clearNoticeMsg{id: id}
	})
}

// FatalErr reports the error that terminated the session, if any.
func (m Model) FatalErr() error { return m.fatalErr }

func (m Model) bodyHeight() int {
	h := m.height - 2 // header + status bar
	if m.help.ShowAll {
		h -= 3
	}
	if h < 1 {
		h = 1
	}
	return h
}

// View renders header, active view, optional help, and status bar.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "loading..."
	}

	header := ui.RenderHeader(m.headerTitle(), m.width)

	var body string
	switch f := m.stack.Top().(type) {
	case *nav.CommitLogFrame:
		body = ui.RenderCommitLog(f, m.cfg.UI.CommitGraph, m.width, m.bodyHeight())
	case *nav.StatFrame:
		body = ui.RenderStat(f, m.width, m.bodyHeight())
	case *nav.DiffFrame:
		f.Height = m.bodyHeight()
		body = ui.RenderDiff(f, m.cfg.UI.WordDiff, m.width, m.bodyHeight())
	}

	out := header + "\n" + body
	if m.help.ShowAll {
		out += "\n" + m.help.View(m.keys)
	}
	if m.cfg.UI.ShowStatusBar {
		out += "\n" + ui.RenderStatusBar(m.statusLeft(), m.statusRight(), m.width)
	}
	return out
}

func (m Model) headerTitle() string {
	repo := filepath.Base(m.repoRoot)
	switch f := m.stack.Top().(type) {
	case *nav.CommitLogFrame:
		return fmt.Sprintf("%s · history", repo)
	case *nav.StatFrame:
		return fmt.Sprintf("%s · changes · %s", repo, refLabel(f.Ref))
	case *nav.DiffFrame:
		return fmt.Sprintf("%s · %s · %s", repo, refLabel(f.Ref), f.Path)
	}
	return repo
}

func (m Model) statusLeft() string {
	if m.searching {
		return "/" + m.searchDraft
	}
	if m.notice != "" {
		return m.notice
	}
	if f, ok := m.stack.Top().(*nav.CommitLogFrame); ok && f.Search != "" {
		return fmt.Sprintf("/%s · n next · N prev · esc clear", f.Search)
	}
	if m.loading {
		return "loading..."
	}
	switch {
	case m.watchDegraded:
		return "watch unavailable, press r to refresh"
	case !m.autoRefresh:
		return "auto-refresh off"
	default:
		return "watching"
	}
}

func (m Model) statusRight() string {
	age := ui.FormatAge(m.lastRefresh, time.Now())
	if age == "" {
		return "? help"
	}
	return age + " · ? help"
}

func refLabel(ref string) string {
	if ref == git.WorktreeRef {
		return "working tree"
	}
	if len(ref) > 8 {
		return ref[:8]
	}
	return ref
}
