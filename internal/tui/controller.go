package tui

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/thiagokokada/jjk-go/internal/event"
	"github.com/thiagokokada/jjk-go/internal/jj"
	"github.com/thiagokokada/jjk-go/internal/jj/backend"
	"github.com/thiagokokada/jjk-go/internal/task"
)

type tab int

const (
	tabLog tab = iota
	tabFiles
	tabBookmarks
	tabCommandLog
	tabCount
)

var tabNames = [tabCount]string{"Log", "Files", "Bookmarks", "Command log"}

// Options tune the controller independently of the terminal.
type Options struct {
	Theme  ThemePreference
	Syntax bool
	Revset string
}

// Controller owns all front-end state. It is driven from a single goroutine:
// keys and repository changes come in through handleKey and
// onRepositoryDirty, frames go out through view.
type Controller struct {
	svc     *jj.Service
	history *backend.History
	env     jj.Env
	th      theme
	syntax  bool
	revset  string

	tab        tab
	diffFormat jj.DiffFormat

	// head is the revision the user is looking at. It is only replaced after
	// a successful resolution.
	head        jj.Head
	headDesc    string
	headDescErr error

	log       jj.LogOutput
	logErr    error
	logScroll int

	files        []jj.File
	conflicts    []jj.Conflict
	filesErr     error
	fileSelected int
	fileScroll   int

	bookmarks        []jj.BookmarkLine
	bookmarksErr     error
	bookmarkSelected int
	bookmarkScroll   int
	allRemotes       bool

	recordSelected int
	recordScroll   int

	details       string
	detailsErr    error
	detailsScroll int

	popup  popup
	status string
	quit   bool
	width  int
	height int
}

func newController(svc *jj.Service, history *backend.History, env jj.Env, opts Options) *Controller {
	return &Controller{
		svc:        svc,
		history:    history,
		env:        env,
		th:         newTheme(paletteForPreference(opts.Theme), env.Config.HighlightColor()),
		syntax:     opts.Syntax,
		revset:     opts.Revset,
		diffFormat: env.Config.DiffFormat(),
		width:      80,
		height:     24,
	}
}

// start selects the working-copy revision and loads every view.
func (c *Controller) start() {
	head, err := c.svc.Current()
	if err != nil {
		c.showError("Could not load working copy", err)
	} else {
		c.head = head
	}
	c.reload()
}

func (c *Controller) resize(width, height int) {
	if width > 0 && height > 0 {
		c.width, c.height = width, height
	}
}

// reload re-reads the log and the data of the active tab. Query errors are
// kept and rendered in place of the data.
func (c *Controller) reload() {
	c.log, c.logErr = c.svc.Log(c.revset)
	c.loadHeadDescription()
	c.loadTab()
}

func (c *Controller) loadHeadDescription() {
	if c.head.ContentID == "" {
		return
	}
	c.headDesc, c.headDescErr = c.svc.Description(c.head.ContentID)
	if c.headDescErr != nil {
		slog.Debug("load description", slog.Any("error", c.headDescErr))
	}
}

func (c *Controller) loadTab() {
	switch c.tab {
	case tabLog:
		c.loadHeadDetails()
	case tabFiles:
		c.loadFiles()
	case tabBookmarks:
		c.loadBookmarks()
	case tabCommandLog:
		c.loadRecordDetails()
	}
}

func (c *Controller) setDetails(out string, err error) {
	if err == nil && c.syntax && c.diffFormat == jj.DiffGit {
		out = highlightGitDiff(out, c.th)
	}
	c.details, c.detailsErr = out, err
	c.detailsScroll = 0
}

func (c *Controller) loadHeadDetails() {
	if c.head.ContentID == "" {
		c.setDetails("", nil)
		return
	}
	c.setDetails(c.svc.Show(c.head.ContentID, c.diffFormat, false))
}

func (c *Controller) loadFiles() {
	c.files, c.filesErr = c.svc.Files(c.head)
	conflicts, err := c.svc.Conflicts(c.head.ContentID)
	if err != nil {
		slog.Debug("load conflicts", slog.Any("error", err))
	}
	c.conflicts = conflicts
	c.fileSelected = clamp(c.fileSelected, len(c.files))
	c.loadFileDetails()
}

func (c *Controller) loadFileDetails() {
	if c.filesErr != nil || len(c.files) == 0 {
		c.setDetails("", nil)
		return
	}
	out, ok, err := c.svc.FileDiff(c.head, c.files[c.fileSelected], c.diffFormat, false)
	if !ok && err == nil {
		out = c.files[c.fileSelected].Line
	}
	c.setDetails(out, err)
}

func (c *Controller) loadBookmarks() {
	c.bookmarks, c.bookmarksErr = c.svc.Bookmarks(c.allRemotes)
	c.bookmarkSelected = clamp(c.bookmarkSelected, len(c.bookmarks))
	c.loadBookmarkDetails()
}

func (c *Controller) selectedBookmark() (jj.Bookmark, bool) {
	if c.bookmarkSelected >= len(c.bookmarks) || c.bookmarks[c.bookmarkSelected].Bookmark == nil {
		return jj.Bookmark{}, false
	}
	return *c.bookmarks[c.bookmarkSelected].Bookmark, true
}

func (c *Controller) loadBookmarkDetails() {
	b, ok := c.selectedBookmark()
	if !ok {
		c.setDetails("", nil)
		return
	}
	c.setDetails(c.svc.BookmarkShow(b, c.diffFormat, false))
}

func (c *Controller) loadRecordDetails() {
	records := c.history.Snapshot()
	c.recordSelected = clamp(c.recordSelected, len(records))
	if len(records) == 0 {
		c.setDetails("", nil)
		return
	}
	c.details, c.detailsErr = renderRecord(records[c.recordSelected]), nil
	c.detailsScroll = 0
}

func clamp(i, n int) int {
	if i >= n {
		i = n - 1
	}
	return max(i, 0)
}

// syncHead follows the held head across rewrites. When the front-end itself
// abandoned it, the working copy is selected instead.
func (c *Controller) syncHead(abandoned bool) error {
	if c.head.LogicalID == "" {
		abandoned = true
	}
	latest, err := c.svc.ResolveLatest(c.head)
	if err != nil && abandoned {
		latest, err = c.svc.Current()
	}
	if err != nil {
		return err
	}
	c.head = latest
	return nil
}

// mutate runs a repository mutation, then resynchronises the held head and
// reloads. On failure nothing is reloaded and the held head is kept.
func (c *Controller) mutate(errTitle string, abandonsHead bool, run func() error) {
	if err := run(); err != nil {
		c.showError(errTitle, err)
		return
	}
	if err := c.syncHead(abandonsHead); err != nil {
		c.showError("Could not follow revision", err)
	}
	c.reload()
}

func (c *Controller) onRepositoryDirty() {
	old, oldDesc := c.head, c.headDesc
	if err := c.syncHead(false); err != nil {
		c.showError("Repository changed", err)
	}
	c.reload()
	if c.headDescErr != nil || old.Same(c.head) || old.LogicalID != c.head.LogicalID || oldDesc == c.headDesc {
		return
	}
	drift, err := jj.DescriptionDrift(old, c.head, oldDesc, c.headDesc)
	if err != nil || drift == "" {
		return
	}
	c.status = fmt.Sprintf("description of %s changed", c.head.LogicalID)
	if c.popup == nil {
		c.popup = &messagePopup{heading: "Description changed", text: drift}
	}
}

func errorText(err error) string {
	var cmdErr *backend.CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Render("")
	}
	return err.Error()
}

func (c *Controller) showError(title string, err error) {
	slog.Debug("showing error", slog.String("title", title), slog.Any("error", err))
	c.popup = &messagePopup{heading: title, text: errorText(err), isError: true}
}

func (c *Controller) showMessage(title, text string) {
	c.popup = &messagePopup{heading: title, text: strings.TrimRight(text, "\n")}
}

// pollTask delivers the result of the running task, if any.
func (c *Controller) pollTask() {
	lp, ok := c.popup.(*loaderPopup)
	if !ok {
		return
	}
	r, done := lp.task.Poll()
	if !done {
		return
	}
	c.popup = nil
	lp.onDone(c, r)
}

// startGitTask runs a push or fetch in the background behind a loader popup.
func (c *Controller) startGitTask(name string, op func() (string, error)) {
	heading := name
	remotes, err := jj.Remotes(c.env.Root)
	switch {
	case err != nil:
		slog.Debug("list remotes", slog.Any("error", err))
	case len(remotes) == 0:
		c.showMessage(name, "No git remotes configured")
		return
	default:
		names := make([]string, 0, len(remotes))
		for _, r := range remotes {
			names = append(names, r.Name)
		}
		heading = fmt.Sprintf("%s (%s)", name, strings.Join(names, ", "))
	}
	c.popup = &loaderPopup{
		heading: heading,
		task:    task.Start(name, op),
		onDone: func(c *Controller, r task.Result) {
			syncErr := c.syncHead(false)
			c.reload()
			switch {
			case r.Err != nil:
				c.showError(name+" error", r.Err)
			case strings.TrimSpace(r.Output) != "":
				c.showMessage(name, r.Output)
			case syncErr != nil:
				c.showError("Could not follow revision", syncErr)
			}
		},
	}
}

func (c *Controller) handleKey(k event.Key) {
	if c.popup != nil {
		if c.popup.handleKey(c, k) {
			c.popup = nil
		}
		return
	}
	key := k.String()
	for _, b := range c.bindings() {
		if b.key == key {
			b.run(c)
			return
		}
	}
}

func (c *Controller) switchTab(t tab) {
	if t == c.tab {
		return
	}
	c.tab = t
	c.loadTab()
}

func (c *Controller) selectHeadOffset(delta int) {
	heads := c.log.Heads
	if len(heads) == 0 {
		return
	}
	i := slices.IndexFunc(heads, c.head.Same)
	if i < 0 {
		i = 0
	} else {
		i = min(max(i+delta, 0), len(heads)-1)
	}
	c.head = heads[i]
	c.loadHeadDescription()
	c.loadHeadDetails()
}

func (c *Controller) focusCurrent() {
	head, err := c.svc.Current()
	if err != nil {
		c.showError("Could not load working copy", err)
		return
	}
	c.head = head
	c.reload()
}

func (c *Controller) scrollDetails(delta int) {
	c.detailsScroll = max(c.detailsScroll+delta, 0)
}

func (c *Controller) cycleDiffFormat() {
	c.diffFormat = c.diffFormat.Next()
	c.status = "diff format: " + string(c.diffFormat)
	c.loadTab()
}

func (c *Controller) requireMutable(action string) bool {
	if c.head.Immutable {
		c.showMessage(action, fmt.Sprintf("%s is immutable", c.head.LogicalID))
		return false
	}
	return true
}
