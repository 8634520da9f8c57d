package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/thiagokokada/jjk-go/internal/jj"
	"github.com/thiagokokada/jjk-go/internal/jj/backend"
)

// view renders one full frame of c.width x c.height cells.
func (c *Controller) view() string {
	bodyHeight := max(c.height-2, 3)
	var body string
	if c.popup != nil {
		body = lipgloss.Place(c.width, bodyHeight, lipgloss.Center, lipgloss.Center, c.renderPopup(bodyHeight))
	} else {
		listWidth := c.width / 2
		listTitle, listLines, selected := c.listContent()
		list := c.renderPanel(listTitle, listLines, listWidth, bodyHeight, c.listScroll(selected, bodyHeight-3))
		details := c.renderPanel(c.detailsTitle(), c.detailsLines(), c.width-listWidth, bodyHeight, c.detailsScroll)
		body = lipgloss.JoinHorizontal(lipgloss.Top, list, details)
	}
	return lipgloss.JoinVertical(lipgloss.Left, c.renderTabs(), body, c.renderStatus())
}

func (c *Controller) renderTabs() string {
	parts := make([]string, 0, len(tabNames))
	for i, name := range tabNames {
		label := fmt.Sprintf("%d %s", i+1, name)
		if tab(i) == c.tab {
			parts = append(parts, c.th.tabActive.Render(label))
		} else {
			parts = append(parts, c.th.tabInactive.Render(label))
		}
	}
	return ansi.Truncate(strings.Join(parts, " "), c.width, "")
}

func (c *Controller) renderStatus() string {
	parts := []string{"@ " + c.head.String(), "diff: " + string(c.diffFormat)}
	if c.revset != "" {
		parts = append(parts, "revset: "+c.revset)
	}
	if c.status != "" {
		parts = append(parts, c.status)
	}
	parts = append(parts, "? help")
	return c.th.muted.Render(ansi.Truncate(strings.Join(parts, " | "), c.width, "…"))
}

// renderPopup draws the open popup; body lines past maxHeight are dropped.
func (c *Controller) renderPopup(maxHeight int) string {
	width := min(max(c.width*2/3, 20), c.width-2)
	lines := strings.Split(c.popup.body(c.th), "\n")
	if limit := max(maxHeight-4, 1); len(lines) > limit {
		lines = append(lines[:limit-1], "…")
	}
	for i, line := range lines {
		lines[i] = ansi.Truncate(line, width-4, "…")
	}
	title := c.th.title.Render(c.popup.title())
	return c.th.popup.Width(width - 2).Render(title + "\n\n" + strings.Join(lines, "\n"))
}

// listContent returns the lines of the active tab's list and the index of
// the first selected line.
func (c *Controller) listContent() (string, []string, int) {
	switch c.tab {
	case tabFiles:
		return c.filesContent()
	case tabBookmarks:
		return c.bookmarksContent()
	case tabCommandLog:
		return c.commandLogContent()
	default:
		return c.logContent()
	}
}

func (c *Controller) logContent() (string, []string, int) {
	title := "Log"
	if c.revset != "" {
		title += " (" + c.revset + ")"
	} else if rs := c.env.Config.LogRevset(); rs != "" {
		title += " (" + rs + ")"
	}
	if c.logErr != nil {
		return title, c.errorLines(c.logErr), -1
	}
	lines := splitLines(c.log.Graph)
	selected := -1
	for i := range lines {
		h, ok := c.log.HeadAt(i)
		if !ok || !h.Same(c.head) {
			continue
		}
		if selected < 0 {
			selected = i
		}
		lines[i] = c.th.selected.Render(ansi.Strip(lines[i]))
	}
	return title, lines, selected
}

func (c *Controller) filesContent() (string, []string, int) {
	title := "Files of " + string(c.head.LogicalID)
	if c.filesErr != nil {
		return title, c.errorLines(c.filesErr), -1
	}
	if len(c.files) == 0 {
		return title, []string{c.th.muted.Render("(no changes)")}, -1
	}
	conflicted := map[string]bool{}
	for _, cf := range c.conflicts {
		conflicted[cf.Path] = true
	}
	lines := make([]string, 0, len(c.files))
	for i, f := range c.files {
		line := f.Line
		if conflicted[f.TargetPath()] {
			line += " (conflict)"
		}
		if i == c.fileSelected {
			line = c.th.selected.Render(line)
		} else {
			line = diffTypeStyle(f.Type).Render(line)
		}
		lines = append(lines, line)
	}
	return title, lines, c.fileSelected
}

func diffTypeStyle(t jj.DiffType) lipgloss.Style {
	switch t {
	case jj.DiffAdded:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case jj.DiffDeleted:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case jj.DiffModified, jj.DiffRenamed, jj.DiffCopied:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	default:
		return lipgloss.NewStyle()
	}
}

func (c *Controller) bookmarksContent() (string, []string, int) {
	title := "Bookmarks"
	if c.allRemotes {
		title += " (all remotes)"
	}
	if c.bookmarksErr != nil {
		return title, c.errorLines(c.bookmarksErr), -1
	}
	if len(c.bookmarks) == 0 {
		return title, []string{c.th.muted.Render("(no bookmarks)")}, -1
	}
	lines := make([]string, 0, len(c.bookmarks))
	for i, b := range c.bookmarks {
		line := b.Text
		if i == c.bookmarkSelected {
			line = c.th.selected.Render(ansi.Strip(line))
		}
		lines = append(lines, line)
	}
	return title, lines, c.bookmarkSelected
}

func (c *Controller) commandLogContent() (string, []string, int) {
	records := c.history.Snapshot()
	if len(records) == 0 {
		return "Command log", []string{c.th.muted.Render("(no commands yet)")}, -1
	}
	lines := make([]string, 0, len(records))
	for i, rec := range records {
		line := recordSummary(rec)
		switch {
		case i == c.recordSelected:
			line = c.th.selected.Render(line)
		case rec.Failed():
			line = c.th.errorText.Render(line)
		}
		lines = append(lines, line)
	}
	return fmt.Sprintf("Command log (%d)", len(records)), lines, c.recordSelected
}

func recordSummary(rec backend.CommandRecord) string {
	status := "ok"
	switch {
	case rec.Output == nil:
		status = "spawn failed"
	case rec.Output.ExitCode != 0:
		status = fmt.Sprintf("exit %d", rec.Output.ExitCode)
	}
	return fmt.Sprintf("%s %s %s [%s, %s]",
		rec.IssuedAt.Format(time.TimeOnly),
		rec.Program,
		strings.Join(rec.Args, " "),
		status,
		rec.Duration.Round(time.Millisecond),
	)
}

func renderRecord(rec backend.CommandRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "$ %s %s\n", rec.Program, strings.Join(rec.Args, " "))
	if rec.Err != nil {
		fmt.Fprintf(&b, "\nerror: %v\n", rec.Err)
	}
	if rec.Output != nil {
		if len(rec.Output.Stdout) > 0 {
			b.WriteString("\n")
			b.Write(rec.Output.Stdout)
		}
		if len(rec.Output.Stderr) > 0 {
			b.WriteString("\nstderr:\n")
			b.Write(rec.Output.Stderr)
		}
		fmt.Fprintf(&b, "\nexit code: %d", rec.Output.ExitCode)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (c *Controller) detailsTitle() string {
	switch c.tab {
	case tabFiles:
		if len(c.files) > 0 && c.fileSelected < len(c.files) {
			return c.files[c.fileSelected].TargetPath()
		}
	case tabBookmarks:
		if b, ok := c.selectedBookmark(); ok {
			return b.String()
		}
	case tabCommandLog:
		return "Output"
	}
	return "Details"
}

func (c *Controller) detailsLines() []string {
	if c.detailsErr != nil {
		return c.errorLines(c.detailsErr)
	}
	return splitLines(c.details)
}

func (c *Controller) errorLines(err error) []string {
	lines := splitLines(errorText(err))
	for i, line := range lines {
		lines[i] = c.th.errorText.Render(line)
	}
	return lines
}

func splitLines(s string) []string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// listScroll returns the first visible line so that selected stays in a
// window of height lines.
func (c *Controller) listScroll(selected, height int) int {
	scroll := c.scrollFor()
	if selected < 0 || height <= 0 {
		return *scroll
	}
	if selected < *scroll {
		*scroll = selected
	}
	if selected >= *scroll+height {
		*scroll = selected - height + 1
	}
	return *scroll
}

func (c *Controller) scrollFor() *int {
	switch c.tab {
	case tabFiles:
		return &c.fileScroll
	case tabBookmarks:
		return &c.bookmarkScroll
	case tabCommandLog:
		return &c.recordScroll
	default:
		return &c.logScroll
	}
}

// renderPanel draws a bordered box of exactly width x height cells showing
// its title and then lines from offset on.
func (c *Controller) renderPanel(title string, lines []string, width, height, offset int) string {
	innerW := max(width-2, 1)
	innerH := max(height-2, 1)
	offset = min(offset, max(len(lines)-1, 0))
	visible := make([]string, 0, innerH)
	visible = append(visible, ansi.Truncate(c.th.title.Render(title), innerW, "…"))
	for i := offset; i < len(lines) && len(visible) < innerH; i++ {
		visible = append(visible, ansi.Truncate(lines[i], innerW, ""))
	}
	return c.th.panel.Width(innerW).Height(innerH).MaxHeight(height).Render(strings.Join(visible, "\n"))
}
