package backend

import (
	"slices"
	"sync"
	"time"
)

// Output is a copy of what a finished process produced.
type Output struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Success reports whether the process exited with status zero.
func (o Output) Success() bool {
	return o.ExitCode == 0
}

// CommandRecord is one entry of the command history. Records are never
// modified after they have been appended.
type CommandRecord struct {
	Program string
	Args    []string
	// Output is nil when the process could not be spawned; Err is set then.
	Output   *Output
	Err      error
	IssuedAt time.Time
	Duration time.Duration
}

// Failed reports whether the invocation did not exit successfully.
func (r CommandRecord) Failed() bool {
	return r.Output == nil || !r.Output.Success()
}

// History is an append-only log of engine invocations, safe for concurrent
// use.
type History struct {
	mu      sync.RWMutex
	records []CommandRecord
}

func NewHistory() *History {
	return &History{}
}

// Append stores rec and returns its index.
func (h *History) Append(rec CommandRecord) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, rec)
	return len(h.records) - 1
}

func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.records)
}

// At returns the record stored at index i.
func (h *History) At(i int) (CommandRecord, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if i < 0 || i >= len(h.records) {
		return CommandRecord{}, false
	}
	return h.records[i], true
}

func (h *History) Last() (CommandRecord, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.records) == 0 {
		return CommandRecord{}, false
	}
	return h.records[len(h.records)-1], true
}

// Snapshot returns a copy of all records in append order.
func (h *History) Snapshot() []CommandRecord {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.Clone(h.records)
}
