// Package event merges terminal input and repository change notifications
// into a single polling interface for the front-end loop.
package event

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/x/input"
	"github.com/fsnotify/fsnotify"
)

const (
	// DefaultIdleInterval caps how often TryRecv reports an idle tick.
	DefaultIdleInterval = time.Second
	// DefaultNotifyDelay is the window after a delivered event during which
	// repository changes are attributed to the front-end itself.
	DefaultNotifyDelay = 100 * time.Millisecond

	queueSize = 64
)

// AppEvent is either UserInput or RepositoryDirty.
type AppEvent interface {
	appEvent()
}

// Key is one decoded key press. Bindings match on its String form, e.g. "j",
// "D", "ctrl+c", "shift+tab" or "space".
type Key = input.Key

// UserInput carries one decoded key press.
type UserInput struct {
	Key Key
}

// RepositoryDirty reports a change under the repository metadata directory.
type RepositoryDirty struct{}

func (UserInput) appEvent()       {}
func (RepositoryDirty) appEvent() {}

// Source multiplexes the input and watch producers. TryRecv must only be
// called from a single goroutine.
type Source struct {
	events chan AppEvent

	// watchEnabled is open only while TryRecv waits on events.
	watchEnabled atomic.Bool

	idle        time.Duration
	notifyDelay time.Duration

	lastEventAt time.Time
	lastWasNone bool

	mu      sync.Mutex
	watcher *fsnotify.Watcher
}

// New returns a Source with no producers. Zero durations select the defaults.
func New(idle, notifyDelay time.Duration) *Source {
	if idle <= 0 {
		idle = DefaultIdleInterval
	}
	if notifyDelay <= 0 {
		notifyDelay = DefaultNotifyDelay
	}
	return &Source{
		events:      make(chan AppEvent, queueSize),
		idle:        idle,
		notifyDelay: notifyDelay,
		lastEventAt: time.Now(),
	}
}

// TryRecv waits for the next event. The wait is zero when the previous call
// delivered an event and the idle interval otherwise. It returns false when
// nothing arrived in time.
//
// A RepositoryDirty arriving within the notify delay of the last delivered
// event is dropped and the wait continues until the same deadline.
func (s *Source) TryRecv() (AppEvent, bool) {
	var timeout time.Duration
	if s.lastWasNone {
		timeout = s.idle
	}
	deadline := time.Now().Add(timeout)
	for {
		ev, ok := s.wait(time.Until(deadline))
		if !ok {
			s.lastWasNone = true
			return nil, false
		}
		if _, dirty := ev.(RepositoryDirty); dirty && time.Since(s.lastEventAt) < s.notifyDelay {
			slog.Debug("ignoring repository change after own event")
			continue
		}
		s.lastEventAt = time.Now()
		s.lastWasNone = false
		return ev, true
	}
}

func (s *Source) wait(d time.Duration) (AppEvent, bool) {
	s.watchEnabled.Store(true)
	defer s.watchEnabled.Store(false)
	if d <= 0 {
		select {
		case ev := <-s.events:
			return ev, true
		default:
			return nil, false
		}
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case ev := <-s.events:
		return ev, true
	case <-timer.C:
		return nil, false
	}
}

func (s *Source) send(ev AppEvent) {
	s.events <- ev
}

// Close stops the watch producer. The input producer runs until its reader
// fails.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watcher == nil {
		return nil
	}
	err := s.watcher.Close()
	s.watcher = nil
	return err
}
