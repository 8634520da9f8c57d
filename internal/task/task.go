// Package task runs a single long engine command off the front-end loop.
package task

import (
	"log/slog"
	"time"
)

// Result is the outcome of a finished task.
type Result struct {
	Output string
	Err    error
}

// Task is a running background operation. It cannot be cancelled: once
// started, the operation runs to completion even if nobody polls it again.
type Task struct {
	name    string
	started time.Time
	done    chan Result
	result  *Result
}

// Start runs op on a new goroutine.
func Start(name string, op func() (string, error)) *Task {
	t := &Task{name: name, started: time.Now(), done: make(chan Result, 1)}
	slog.Debug("task started", slog.String("task", name))
	go func() {
		out, err := op()
		slog.Debug("task finished",
			slog.String("task", name),
			slog.Duration("duration", time.Since(t.started)),
			slog.Bool("failed", err != nil),
		)
		t.done <- Result{Output: out, Err: err}
	}()
	return t
}

func (t *Task) Name() string {
	return t.name
}

// Elapsed is the time since the task started.
func (t *Task) Elapsed() time.Duration {
	return time.Since(t.started)
}

// Poll returns the result once the operation finished. It never blocks and
// keeps returning the same result after the first success.
func (t *Task) Poll() (Result, bool) {
	if t.result != nil {
		return *t.result, true
	}
	select {
	case r := <-t.done:
		t.result = &r
		return r, true
	default:
		return Result{}, false
	}
}

// Wait blocks until the operation finished.
func (t *Task) Wait() Result {
	if t.result != nil {
		return *t.result
	}
	r := <-t.done
	t.result = &r
	return r
}
