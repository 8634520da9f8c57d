package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/x/input"

	"github.com/thiagokokada/jjk-go/internal/event"
	"github.com/thiagokokada/jjk-go/internal/jj"
	"github.com/thiagokokada/jjk-go/internal/task"
)

// popup is a modal dialog. While one is open it receives every key.
type popup interface {
	title() string
	body(th theme) string
	// handleKey returns true when the popup must close.
	handleKey(c *Controller, k event.Key) bool
}

type messagePopup struct {
	heading string
	text    string
	isError bool
}

func (p *messagePopup) title() string { return p.heading }

func (p *messagePopup) body(th theme) string {
	text := p.text
	if p.isError {
		text = th.errorText.Render(text)
	}
	return text + "\n\n" + th.muted.Render("Enter/Esc: close")
}

func (p *messagePopup) handleKey(_ *Controller, k event.Key) bool {
	switch k.String() {
	case "enter", "esc", "q", "space":
		return true
	}
	return false
}

type confirmPopup struct {
	heading string
	text    string
	onYes   func(c *Controller)
}

func (p *confirmPopup) title() string { return p.heading }

func (p *confirmPopup) body(th theme) string {
	return p.text + "\n\n" + th.muted.Render("y/Enter: confirm    n/Esc: cancel")
}

func (p *confirmPopup) handleKey(c *Controller, k event.Key) bool {
	switch k.String() {
	case "y", "enter":
		// Close first so onYes may open a follow-up popup.
		c.popup = nil
		p.onYes(c)
		return false
	case "n", "esc", "q":
		return true
	}
	return false
}

// inputPopup is a single-line text prompt.
type inputPopup struct {
	heading  string
	prompt   string
	value    []rune
	onSubmit func(c *Controller, value string)
}

func (p *inputPopup) title() string { return p.heading }

func (p *inputPopup) body(th theme) string {
	return p.prompt + string(p.value) + "█\n\n" + th.muted.Render("Enter: submit    Esc: cancel")
}

func (p *inputPopup) handleKey(c *Controller, k event.Key) bool {
	switch {
	case k.Code == input.KeyEscape:
		return true
	case k.Code == input.KeyEnter:
		c.popup = nil
		p.onSubmit(c, string(p.value))
		return false
	case k.Code == input.KeyBackspace:
		if len(p.value) > 0 {
			p.value = p.value[:len(p.value)-1]
		}
	case k.String() == "ctrl+u":
		p.value = nil
	case k.Text != "" && !k.Mod.Contains(input.ModCtrl) && !k.Mod.Contains(input.ModAlt):
		p.value = append(p.value, []rune(k.Text)...)
	}
	return false
}

// loaderPopup shows a spinner while a task runs. It swallows every key and
// only closes once pollTask delivers the result.
type loaderPopup struct {
	heading string
	task    *task.Task
	onDone  func(c *Controller, r task.Result)
}

var loaderSpinner = spinner.Dot

func (p *loaderPopup) title() string { return p.heading }

func (p *loaderPopup) body(th theme) string {
	elapsed := p.task.Elapsed()
	frame := loaderSpinner.Frames[int(elapsed/loaderSpinner.FPS)%len(loaderSpinner.Frames)]
	return fmt.Sprintf("%s %s (%s)\n\n%s",
		frame,
		p.task.Name(),
		elapsed.Truncate(time.Second),
		th.muted.Render("waiting for the command to finish"),
	)
}

func (p *loaderPopup) handleKey(*Controller, event.Key) bool {
	return false
}

type rebaseOption[T comparable] struct {
	key   string
	mode  T
	label string
}

var (
	rebaseSources = []rebaseOption[jj.SourceMode]{
		{key: "b", mode: jj.SourceBranch, label: "-b branch"},
		{key: "s", mode: jj.SourceDescendants, label: "-s with descendants"},
		{key: "r", mode: jj.SourceRevision, label: "-r revision only"},
	}
	rebaseTargets = []rebaseOption[jj.TargetMode]{
		{key: "d", mode: jj.TargetDestination, label: "-d onto @ as new branch"},
		{key: "a", mode: jj.TargetAfter, label: "-A after @"},
		{key: "B", mode: jj.TargetBefore, label: "-B before @"},
	}
)

// rebasePopup moves the held revision relative to the working copy.
type rebasePopup struct {
	source  jj.Head
	srcMode jj.SourceMode
	tgtMode jj.TargetMode
}

func newRebasePopup(source jj.Head) *rebasePopup {
	return &rebasePopup{source: source, srcMode: jj.SourceBranch, tgtMode: jj.TargetDestination}
}

func (p *rebasePopup) title() string { return "Rebase" }

func (p *rebasePopup) body(th theme) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Rebase %s\n\n", p.source.LogicalID)
	for _, o := range rebaseSources {
		b.WriteString(radio(o.mode == p.srcMode, o.key, o.label))
	}
	b.WriteByte('\n')
	for _, o := range rebaseTargets {
		b.WriteString(radio(o.mode == p.tgtMode, o.key, o.label))
	}
	b.WriteString("\n" + th.muted.Render("Enter: rebase    Esc: cancel"))
	return b.String()
}

func radio(on bool, key, label string) string {
	mark := " "
	if on {
		mark = "*"
	}
	return fmt.Sprintf("(%s) %s: %s\n", mark, key, label)
}

func (p *rebasePopup) handleKey(c *Controller, k event.Key) bool {
	key := k.String()
	for _, o := range rebaseSources {
		if o.key == key {
			p.srcMode = o.mode
			return false
		}
	}
	for _, o := range rebaseTargets {
		if o.key == key {
			p.tgtMode = o.mode
			return false
		}
	}
	switch key {
	case "esc", "q":
		return true
	case "enter":
		c.popup = nil
		c.mutate("Rebase error", false, func() error {
			return c.svc.Rebase(p.srcMode, string(p.source.ContentID), p.tgtMode, "@")
		})
	}
	return false
}
