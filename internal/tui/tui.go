// Package tui is the terminal front-end: a tabbed log, files, bookmarks and
// command log browser driven by keys and repository change notifications.
package tui

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/charmbracelet/x/term"

	"github.com/thiagokokada/jjk-go/internal/event"
	"github.com/thiagokokada/jjk-go/internal/jj"
	"github.com/thiagokokada/jjk-go/internal/jj/backend"
)

var ErrNotTerminal = errors.New("standard input is not a terminal")

// RunConfig wires the front-end to an engine and a terminal.
type RunConfig struct {
	Service *jj.Service
	History *backend.History
	Env     jj.Env
	Options Options

	IdleInterval time.Duration
	NotifyDelay  time.Duration
	// Watch enables file system notifications for the repository store.
	Watch bool
}

// Run takes over the terminal until the user quits.
func Run(cfg RunConfig) error {
	in, out := os.Stdin, os.Stdout
	fd := in.Fd()
	if !term.IsTerminal(fd) {
		return ErrNotTerminal
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("enable raw mode: %w", err)
	}
	defer func() {
		if err := term.Restore(fd, state); err != nil {
			slog.Error("restore terminal", slog.Any("error", err))
		}
	}()

	io.WriteString(out, ansi.SetAltScreenSaveCursorMode+ansi.HideCursor+ansi.CursorHomePosition+ansi.EraseEntireScreen)
	defer io.WriteString(out, ansi.ShowCursor+ansi.ResetAltScreenSaveCursorMode)

	events := event.New(cfg.IdleInterval, cfg.NotifyDelay)
	defer events.Close()
	if err := events.LaunchInput(in); err != nil {
		return err
	}
	if cfg.Watch {
		dir := filepath.Join(cfg.Env.Root, ".jj")
		if err := events.LaunchWatcher(dir); err != nil {
			slog.Warn("watch repository", slog.String("dir", dir), slog.Any("error", err))
		}
	}

	c := newController(cfg.Service, cfg.History, cfg.Env, cfg.Options)
	if w, h, err := term.GetSize(out.Fd()); err == nil {
		c.resize(w, h)
	}
	c.start()
	return loop(c, events, out, func() (int, int, error) { return term.GetSize(out.Fd()) })
}

type eventSource interface {
	TryRecv() (event.AppEvent, bool)
}

func loop(c *Controller, events eventSource, out io.Writer, size func() (int, int, error)) error {
	var last string
	for !c.quit {
		c.pollTask()
		if w, h, err := size(); err == nil {
			c.resize(w, h)
		}
		if frame := c.view(); frame != last {
			if _, err := io.WriteString(out, ansi.CursorHomePosition+ansi.EraseEntireScreen+strings.ReplaceAll(frame, "\n", "\r\n")); err != nil {
				return fmt.Errorf("draw frame: %w", err)
			}
			last = frame
		}
		ev, ok := events.TryRecv()
		if !ok {
			continue
		}
		switch ev := ev.(type) {
		case event.UserInput:
			c.handleKey(ev.Key)
		case event.RepositoryDirty:
			// A running task reloads when it completes.
			if _, busy := c.popup.(*loaderPopup); busy {
				slog.Debug("repository changed while a task runs, ignoring")
				continue
			}
			slog.Debug("repository changed")
			c.onRepositoryDirty()
		}
	}
	return nil
}
