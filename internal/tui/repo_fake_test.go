package tui

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/thiagokokada/jjk-go/internal/jj"
	"github.com/thiagokokada/jjk-go/internal/jj/backend"
)

// fakeRepo is a tiny in-memory engine. It understands the queries the
// controller issues and rewrites heads the way the engine would: a new
// content id whose evolution log lists the previous one.
type fakeRepo struct {
	mu sync.Mutex

	heads   []jj.Head
	current jj.LogicalID
	desc    map[jj.ContentID]string
	evolog  map[jj.ContentID][]jj.ContentID
	failing map[string]error
	gates   map[string]chan struct{}
	calls   [][]string
	rewrite int
}

func newFakeRepo(current jj.LogicalID, heads ...jj.Head) *fakeRepo {
	return &fakeRepo{
		heads:   heads,
		current: current,
		desc:    map[jj.ContentID]string{},
		evolog:  map[jj.ContentID][]jj.ContentID{},
		failing: map[string]error{},
		gates:   map[string]chan struct{}{},
	}
}

func (r *fakeRepo) Execute(args []string, _, _ bool) (string, error) {
	r.wait(args[0])
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.handle(args)
}

func (r *fakeRepo) ExecuteVoid(args []string) error {
	r.wait(args[0])
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := r.handle(args)
	return err
}

func (r *fakeRepo) handle(args []string) (string, error) {
	r.calls = append(r.calls, slices.Clone(args))
	if err, ok := r.failing[args[0]]; ok {
		return "", err
	}
	if err, ok := r.failing[args[0]+" "+flagValue(args, "--template")]; ok {
		return "", err
	}
	switch args[0] {
	case "log":
		return r.log(args)
	case "evolog":
		id := jj.ContentID(flagValue(args, "-r"))
		return contentLines(r.evolution(id)), nil
	case "show":
		return "show " + args[1] + "\n", nil
	case "abandon":
		r.abandonLocked(jj.ContentID(args[1]))
	case "describe":
		r.describeLocked(jj.ContentID(args[1]), args[3])
	}
	return "", nil
}

func (r *fakeRepo) log(args []string) (string, error) {
	rev := flagValue(args, "-r")
	tmpl := flagValue(args, "--template")
	var b strings.Builder
	switch {
	case tmpl == "builtin_log_compact":
		for _, h := range r.heads {
			fmt.Fprintf(&b, "○  %s %s\n│  %s\n", h.LogicalID, h.ContentID, r.desc[h.ContentID])
		}
	case tmpl == "description":
		b.WriteString(r.desc[jj.ContentID(rev)] + "\n")
	case tmpl == "immutable":
		b.WriteString("false")
	case strings.HasPrefix(rev, "change_id("):
		id := jj.LogicalID(strings.TrimSuffix(strings.TrimPrefix(rev, "change_id("), ")"))
		for _, h := range r.heads {
			if h.LogicalID == id {
				b.WriteString(jj.FormatHead(h) + "\n")
			}
		}
	case rev == "@":
		i := slices.IndexFunc(r.heads, func(h jj.Head) bool { return h.LogicalID == r.current })
		if i < 0 {
			return "", &backend.CommandError{Kind: backend.KindStatus, Stderr: "no working copy", ExitCode: 1}
		}
		b.WriteString(jj.FormatHead(r.heads[i]) + "\n")
	default:
		for _, h := range r.heads {
			fmt.Fprintf(&b, "%s \n%s\n", jj.FormatHead(h), jj.FormatHead(h))
		}
	}
	return b.String(), nil
}

func (r *fakeRepo) evolution(id jj.ContentID) []jj.ContentID {
	if ids, ok := r.evolog[id]; ok {
		return ids
	}
	return []jj.ContentID{id}
}

func (r *fakeRepo) abandonLocked(id jj.ContentID) {
	r.heads = slices.DeleteFunc(r.heads, func(h jj.Head) bool { return h.ContentID == id })
	if !slices.ContainsFunc(r.heads, func(h jj.Head) bool { return h.LogicalID == r.current }) && len(r.heads) > 0 {
		r.current = r.heads[0].LogicalID
	}
}

func (r *fakeRepo) describeLocked(id jj.ContentID, msg string) {
	i := slices.IndexFunc(r.heads, func(h jj.Head) bool { return h.ContentID == id })
	if i < 0 {
		return
	}
	r.rewrite++
	next := jj.ContentID(fmt.Sprintf("%s-r%d", id, r.rewrite))
	r.evolog[next] = append([]jj.ContentID{next}, r.evolution(id)...)
	r.desc[next] = msg
	r.heads[i].ContentID = next
}

// Abandon and Describe simulate changes made by another process.

func (r *fakeRepo) Abandon(id jj.ContentID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.abandonLocked(id)
}

func (r *fakeRepo) Describe(id jj.ContentID, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.describeLocked(id, msg)
}

func (r *fakeRepo) wait(command string) {
	r.mu.Lock()
	gate, ok := r.gates[command]
	r.mu.Unlock()
	if ok {
		<-gate
	}
}

// Hold blocks command until the returned release is called.
func (r *fakeRepo) Hold(command string) (release func()) {
	gate := make(chan struct{})
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gates[command] = gate
	return func() { close(gate) }
}

// Fail makes command fail with err. A key of the form "log <template>" only
// fails log queries using that template.
func (r *fakeRepo) Fail(command string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failing[command] = err
}

func (r *fakeRepo) Head(id jj.LogicalID) (jj.Head, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := slices.IndexFunc(r.heads, func(h jj.Head) bool { return h.LogicalID == id })
	if i < 0 {
		return jj.Head{}, false
	}
	return r.heads[i], true
}

// Called reports whether a command starting with prefix was issued.
func (r *fakeRepo) Called(prefix ...string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.ContainsFunc(r.calls, func(args []string) bool {
		return len(args) >= len(prefix) && slices.Equal(args[:len(prefix)], prefix)
	})
}

func flagValue(args []string, flag string) string {
	i := slices.Index(args, flag)
	if i < 0 || i+1 >= len(args) {
		return ""
	}
	return args[i+1]
}

func contentLines(ids []jj.ContentID) string {
	var b strings.Builder
	for _, id := range ids {
		b.WriteString(string(id) + "\n")
	}
	return b.String()
}
