package jj

import (
	"errors"
	"strings"
	"sync"

	"github.com/thiagokokada/jjk-go/internal/jj/backend"
)

type fakeCall struct {
	Args  []string
	Color bool
	Quiet bool
	Void  bool
}

// fakeExecutor answers commands from responses, keyed by the args joined with
// a single space. Unknown commands fail with a status error.
type fakeExecutor struct {
	mu        sync.Mutex
	responses map[string]fakeResponse
	calls     []fakeCall
}

type fakeResponse struct {
	out string
	err error
}

func newFakeExecutor() *fakeExecutor {
	return &fakeExecutor{responses: map[string]fakeResponse{}}
}

func (f *fakeExecutor) on(out string, args ...string) *fakeExecutor {
	f.responses[strings.Join(args, " ")] = fakeResponse{out: out}
	return f
}

func (f *fakeExecutor) fail(err error, args ...string) *fakeExecutor {
	f.responses[strings.Join(args, " ")] = fakeResponse{err: err}
	return f
}

func (f *fakeExecutor) Execute(args []string, color, quiet bool) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fakeCall{Args: args, Color: color, Quiet: quiet})
	return f.lookup(args)
}

func (f *fakeExecutor) ExecuteVoid(args []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fakeCall{Args: args, Color: true, Quiet: true, Void: true})
	_, err := f.lookup(args)
	return err
}

func (f *fakeExecutor) lookup(args []string) (string, error) {
	resp, ok := f.responses[strings.Join(args, " ")]
	if !ok {
		return "", &backend.CommandError{
			Kind:     backend.KindStatus,
			Stderr:   "unexpected command: " + strings.Join(args, " "),
			ExitCode: 1,
		}
	}
	return resp.out, resp.err
}

func (f *fakeExecutor) callArgs() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.Args)
	}
	return out
}

var errFake = errors.New("fake failure")

// Helpers producing the exact argument lists the tracker issues.

func headsForArgs(id LogicalID) []string {
	return []string{"log", "--no-graph", "-r", "change_id(" + string(id) + ")", "--template", headTemplate + ` ++ "\n"`}
}

func evologArgs(id ContentID) []string {
	return []string{"evolog", "--no-graph", "--template", `commit.commit_id() ++ "\n"`, "-r", string(id)}
}

func singleHeadArgs(revision string) []string {
	return []string{"log", "--no-graph", "--template", headTemplate + ` ++ "\n"`, "-r", revision, "--limit", "1"}
}

func headLines(heads ...Head) string {
	var b strings.Builder
	for _, h := range heads {
		b.WriteString(FormatHead(h))
		b.WriteByte('\n')
	}
	return b.String()
}
