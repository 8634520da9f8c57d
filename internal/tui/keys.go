package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/thiagokokada/jjk-go/internal/jj"
)

type binding struct {
	key  string
	help string
	run  func(c *Controller)
}

// bindings returns the active tab's bindings followed by the global ones.
func (c *Controller) bindings() []binding {
	global := []binding{
		{key: "q", help: "quit", run: func(c *Controller) { c.quit = true }},
		{key: "ctrl+c", help: "quit", run: func(c *Controller) { c.quit = true }},
		{key: "1", help: "log tab", run: func(c *Controller) { c.switchTab(tabLog) }},
		{key: "2", help: "files tab", run: func(c *Controller) { c.switchTab(tabFiles) }},
		{key: "3", help: "bookmarks tab", run: func(c *Controller) { c.switchTab(tabBookmarks) }},
		{key: "4", help: "command log tab", run: func(c *Controller) { c.switchTab(tabCommandLog) }},
		{key: "tab", help: "next tab", run: func(c *Controller) { c.switchTab((c.tab + 1) % tabCount) }},
		{key: "shift+tab", help: "previous tab", run: func(c *Controller) { c.switchTab((c.tab + tabCount - 1) % tabCount) }},
		{key: "r", help: "refresh", run: func(c *Controller) { c.onRepositoryDirty() }},
		{key: "?", help: "help", run: (*Controller).showHelp},
		{key: ":", help: "run a jj command", run: (*Controller).openCommandPopup},
		{key: "ctrl+d", help: "scroll details down", run: func(c *Controller) { c.scrollDetails(c.height / 2) }},
		{key: "ctrl+u", help: "scroll details up", run: func(c *Controller) { c.scrollDetails(-c.height / 2) }},
		{key: "J", help: "scroll details down one line", run: func(c *Controller) { c.scrollDetails(1) }},
		{key: "K", help: "scroll details up one line", run: func(c *Controller) { c.scrollDetails(-1) }},
	}
	var local []binding
	switch c.tab {
	case tabLog:
		local = logBindings()
	case tabFiles:
		local = filesBindings()
	case tabBookmarks:
		local = bookmarkBindings()
	case tabCommandLog:
		local = commandLogBindings()
	}
	return append(local, global...)
}

func moveBindings(move func(c *Controller, delta int)) []binding {
	return []binding{
		{key: "j", help: "next", run: func(c *Controller) { move(c, 1) }},
		{key: "down", help: "next", run: func(c *Controller) { move(c, 1) }},
		{key: "k", help: "previous", run: func(c *Controller) { move(c, -1) }},
		{key: "up", help: "previous", run: func(c *Controller) { move(c, -1) }},
	}
}

func logBindings() []binding {
	return append(moveBindings((*Controller).selectHeadOffset),
		binding{key: "@", help: "select the working copy", run: (*Controller).focusCurrent},
		binding{key: "d", help: "cycle diff format", run: (*Controller).cycleDiffFormat},
		binding{key: "n", help: "new change on top of the selection", run: (*Controller).newChange},
		binding{key: "e", help: "edit the selection", run: (*Controller).editChange},
		binding{key: "a", help: "abandon the selection", run: (*Controller).confirmAbandon},
		binding{key: "s", help: "squash @ into the selection", run: (*Controller).confirmSquash},
		binding{key: "D", help: "describe the selection", run: (*Controller).openDescribePopup},
		binding{key: "R", help: "rebase the selection", run: (*Controller).openRebasePopup},
		binding{key: "b", help: "set generated bookmark on the selection", run: (*Controller).setGeneratedBookmark},
		binding{key: "p", help: "git push the selection", run: func(c *Controller) { c.push(false) }},
		binding{key: "P", help: "git push all bookmarks", run: func(c *Controller) { c.push(true) }},
		binding{key: "f", help: "git fetch", run: func(c *Controller) { c.fetch(false) }},
		binding{key: "F", help: "git fetch all remotes", run: func(c *Controller) { c.fetch(true) }},
		binding{key: "enter", help: "show files of the selection", run: func(c *Controller) { c.switchTab(tabFiles) }},
	)
}

func filesBindings() []binding {
	return append(moveBindings(func(c *Controller, delta int) {
		if len(c.files) == 0 {
			return
		}
		c.fileSelected = clamp(c.fileSelected+delta, len(c.files))
		c.loadFileDetails()
	}),
		binding{key: "d", help: "cycle diff format", run: (*Controller).cycleDiffFormat},
		binding{key: "x", help: "untrack file (must be ignored)", run: (*Controller).untrackFile},
	)
}

func bookmarkBindings() []binding {
	return append(moveBindings(func(c *Controller, delta int) {
		if len(c.bookmarks) == 0 {
			return
		}
		c.bookmarkSelected = clamp(c.bookmarkSelected+delta, len(c.bookmarks))
		c.loadBookmarkDetails()
	}),
		binding{key: "a", help: "toggle remote bookmarks", run: func(c *Controller) {
			c.allRemotes = !c.allRemotes
			c.loadBookmarks()
		}},
		binding{key: "d", help: "cycle diff format", run: (*Controller).cycleDiffFormat},
		binding{key: "c", help: "create bookmark on the held revision", run: (*Controller).openCreateBookmarkPopup},
		binding{key: "R", help: "rename bookmark", run: (*Controller).openRenameBookmarkPopup},
		binding{key: "m", help: "move bookmark to the held revision", run: (*Controller).moveBookmark},
		binding{key: "t", help: "track remote bookmark", run: func(c *Controller) { c.trackBookmark(true) }},
		binding{key: "u", help: "untrack remote bookmark", run: func(c *Controller) { c.trackBookmark(false) }},
		binding{key: "x", help: "delete bookmark", run: func(c *Controller) { c.confirmRemoveBookmark(false) }},
		binding{key: "X", help: "forget bookmark", run: func(c *Controller) { c.confirmRemoveBookmark(true) }},
		binding{key: "enter", help: "select bookmark revision in log", run: (*Controller).jumpToBookmark},
	)
}

func commandLogBindings() []binding {
	return moveBindings(func(c *Controller, delta int) {
		c.recordSelected += delta
		c.loadRecordDetails()
	})
}

func (c *Controller) showHelp() {
	var b strings.Builder
	seen := map[string]bool{}
	for _, bind := range c.bindings() {
		if seen[bind.help] {
			continue
		}
		seen[bind.help] = true
		fmt.Fprintf(&b, "%-10s %s\n", bind.key, bind.help)
	}
	c.popup = &messagePopup{heading: "Help: " + tabNames[c.tab], text: strings.TrimRight(b.String(), "\n")}
}

func (c *Controller) openCommandPopup() {
	c.popup = &inputPopup{
		heading: "Command",
		prompt:  "jj ",
		onSubmit: func(c *Controller, value string) {
			args := strings.Fields(value)
			if len(args) == 0 {
				return
			}
			var out string
			c.mutate("Command error", false, func() error {
				var err error
				out, err = c.svc.Run(args)
				return err
			})
			if c.popup == nil && strings.TrimSpace(out) != "" {
				c.showMessage("jj "+value, out)
			}
		},
	}
}

func (c *Controller) newChange() {
	if err := c.svc.New(string(c.head.ContentID)); err != nil {
		c.showError("New error", err)
		return
	}
	c.focusCurrent()
}

func (c *Controller) editChange() {
	if !c.requireMutable("Edit") {
		return
	}
	c.mutate("Edit error", false, func() error {
		return c.svc.Edit(string(c.head.ContentID))
	})
}

func (c *Controller) confirmAbandon() {
	if !c.requireMutable("Abandon") {
		return
	}
	target := c.head
	c.popup = &confirmPopup{
		heading: "Abandon",
		text:    fmt.Sprintf("Are you sure you want to abandon %s?", target.LogicalID),
		onYes: func(c *Controller) {
			c.mutate("Abandon error", true, func() error {
				return c.svc.Abandon(target.ContentID)
			})
		},
	}
}

func (c *Controller) confirmSquash() {
	if !c.requireMutable("Squash") {
		return
	}
	if immutable, err := c.svc.IsImmutable("@"); err != nil {
		c.showError("Squash error", err)
		return
	} else if immutable {
		c.showMessage("Squash", "The working copy is immutable")
		return
	}
	target := c.head
	c.popup = &confirmPopup{
		heading: "Squash",
		text:    fmt.Sprintf("Are you sure you want to squash @ into %s?", target.LogicalID),
		onYes: func(c *Controller) {
			c.mutate("Squash error", false, func() error {
				return c.svc.Squash(target.ContentID)
			})
		},
	}
}

func (c *Controller) openDescribePopup() {
	if !c.requireMutable("Describe") {
		return
	}
	first, _, _ := strings.Cut(c.headDesc, "\n")
	target := c.head
	c.popup = &inputPopup{
		heading: "Describe " + string(target.LogicalID),
		prompt:  "> ",
		value:   []rune(first),
		onSubmit: func(c *Controller, value string) {
			c.mutate("Describe error", false, func() error {
				return c.svc.Describe(string(target.ContentID), value)
			})
		},
	}
}

func (c *Controller) openRebasePopup() {
	if !c.requireMutable("Rebase") {
		return
	}
	c.popup = newRebasePopup(c.head)
}

func (c *Controller) setGeneratedBookmark() {
	name := jj.GeneratedBookmarkName(c.env.Config.BookmarkPrefix(), c.head)
	existing, err := c.svc.BookmarkList(false)
	if err != nil {
		c.showError("Bookmark error", err)
		return
	}
	exists := slices.ContainsFunc(existing, func(b jj.Bookmark) bool {
		return b.Name == name && !b.IsRemote()
	})
	target := c.head.ContentID
	c.mutate("Bookmark error", false, func() error {
		if exists {
			return c.svc.BookmarkSet(name, target)
		}
		_, err := c.svc.BookmarkCreateAt(name, target)
		return err
	})
	if c.popup == nil {
		c.status = "bookmark " + name + " set"
	}
}

func (c *Controller) push(all bool) {
	target := c.head.ContentID
	c.startGitTask("Git push", func() (string, error) {
		return c.svc.GitPush(all, true, target)
	})
}

func (c *Controller) fetch(allRemotes bool) {
	c.startGitTask("Git fetch", func() (string, error) {
		return c.svc.GitFetch(allRemotes)
	})
}

func (c *Controller) untrackFile() {
	if len(c.files) == 0 {
		return
	}
	f := c.files[c.fileSelected]
	c.mutate("Untrack error", false, func() error {
		_, _, err := c.svc.FileUntrack(f)
		return err
	})
}

func (c *Controller) openCreateBookmarkPopup() {
	target := c.head.ContentID
	c.popup = &inputPopup{
		heading: "Create bookmark at " + string(c.head.LogicalID),
		prompt:  "name: ",
		onSubmit: func(c *Controller, value string) {
			name := strings.TrimSpace(value)
			if name == "" {
				return
			}
			c.mutate("Bookmark error", false, func() error {
				_, err := c.svc.BookmarkCreateAt(name, target)
				return err
			})
		},
	}
}

func (c *Controller) localSelectedBookmark(action string) (jj.Bookmark, bool) {
	b, ok := c.selectedBookmark()
	if !ok {
		return jj.Bookmark{}, false
	}
	if b.IsRemote() {
		c.showMessage(action, "Select a local bookmark")
		return jj.Bookmark{}, false
	}
	return b, true
}

func (c *Controller) openRenameBookmarkPopup() {
	b, ok := c.localSelectedBookmark("Rename")
	if !ok {
		return
	}
	c.popup = &inputPopup{
		heading: "Rename " + b.Name,
		prompt:  "new name: ",
		value:   []rune(b.Name),
		onSubmit: func(c *Controller, value string) {
			name := strings.TrimSpace(value)
			if name == "" || name == b.Name {
				return
			}
			c.mutate("Bookmark error", false, func() error {
				return c.svc.BookmarkRename(b.Name, name)
			})
		},
	}
}

func (c *Controller) moveBookmark() {
	b, ok := c.localSelectedBookmark("Move")
	if !ok {
		return
	}
	target := c.head.ContentID
	c.mutate("Bookmark error", false, func() error {
		return c.svc.BookmarkSet(b.Name, target)
	})
}

func (c *Controller) trackBookmark(track bool) {
	b, ok := c.selectedBookmark()
	if !ok {
		return
	}
	if !b.IsRemote() {
		c.showMessage("Track", "Select a remote bookmark")
		return
	}
	c.mutate("Bookmark error", false, func() error {
		if track {
			return c.svc.BookmarkTrack(b)
		}
		return c.svc.BookmarkUntrack(b)
	})
}

func (c *Controller) confirmRemoveBookmark(forget bool) {
	b, ok := c.localSelectedBookmark("Delete")
	if !ok {
		return
	}
	verb := "delete"
	if forget {
		verb = "forget"
	}
	c.popup = &confirmPopup{
		heading: "Bookmark " + verb,
		text:    fmt.Sprintf("Are you sure you want to %s %s?", verb, b.Name),
		onYes: func(c *Controller) {
			c.mutate("Bookmark error", false, func() error {
				if forget {
					return c.svc.BookmarkForget(b.Name)
				}
				return c.svc.BookmarkDelete(b.Name)
			})
		},
	}
}

func (c *Controller) jumpToBookmark() {
	b, ok := c.selectedBookmark()
	if !ok {
		return
	}
	head, err := c.svc.HeadForBookmark(b)
	if err != nil {
		c.showError("Bookmark error", err)
		return
	}
	c.head = head
	c.loadHeadDescription()
	c.switchTab(tabLog)
}
