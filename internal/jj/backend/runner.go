package backend

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"slices"
	"strings"
	"time"
	"unicode/utf8"
)

// DefaultBin is the engine executable looked up in PATH.
const DefaultBin = "jj"

// Runner invokes the engine and records every invocation in History.
type Runner struct {
	// Bin is the engine executable.
	Bin string
	// Root is the working directory of every invocation.
	Root string
	// ExtraConfig entries are passed as `--config <entry>` pairs.
	ExtraConfig []string
	// ForceNoColor ignores color requests; used by tests so output can be
	// compared verbatim.
	ForceNoColor bool

	History *History
}

func NewRunner(bin, root string) *Runner {
	if bin == "" {
		bin = DefaultBin
	}
	return &Runner{Bin: bin, Root: root, History: NewHistory()}
}

// OutputArgs returns the flags appended to every invocation.
func OutputArgs(color, quiet bool) []string {
	args := []string{"--no-pager", "--color"}
	if color {
		args = append(args, "always")
	} else {
		args = append(args, "never")
	}
	if quiet {
		args = append(args, "--quiet")
	}
	return args
}

// Execute runs the engine with args followed by the output flags and returns
// its stdout.
func (r *Runner) Execute(args []string, color, quiet bool) (string, error) {
	cmdArgs := slices.Clone(args)
	cmdArgs = append(cmdArgs, OutputArgs(color && !r.ForceNoColor, quiet)...)
	for _, cfg := range r.ExtraConfig {
		cmdArgs = append(cmdArgs, "--config", cfg)
	}
	return r.run(r.Bin, cmdArgs)
}

// ExecuteVoid runs a command whose output is not needed by the caller. Color
// is enabled so the command log shows the output as the engine renders it.
func (r *Runner) ExecuteVoid(args []string) error {
	_, err := r.Execute(args, true, true)
	return err
}

func (r *Runner) run(program string, args []string) (string, error) {
	cmd := exec.Command(program, args...)
	cmd.Dir = r.Root
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	issued := time.Now()
	runErr := cmd.Run()
	duration := time.Since(issued)

	rec := CommandRecord{
		Program:  program,
		Args:     slices.Clone(args),
		IssuedAt: issued,
		Duration: duration,
	}
	var exitErr *exec.ExitError
	spawnFailed := runErr != nil && !errors.As(runErr, &exitErr)
	if spawnFailed {
		rec.Err = runErr
	} else {
		rec.Output = &Output{
			Stdout:   bytes.Clone(stdout.Bytes()),
			Stderr:   bytes.Clone(stderr.Bytes()),
			ExitCode: cmd.ProcessState.ExitCode(),
		}
	}
	if r.History != nil {
		r.History.Append(rec)
	}

	slog.Debug("engine command",
		slog.String("program", program),
		slog.String("args", strings.Join(args, " ")),
		slog.Duration("duration", duration),
		slog.Any("error", runErr),
	)

	if spawnFailed {
		return "", &CommandError{Kind: KindOutput, ExitCode: -1, Err: runErr}
	}
	if runErr != nil {
		return "", &CommandError{
			Kind:     KindStatus,
			Stderr:   strings.ToValidUTF8(stderr.String(), "�"),
			ExitCode: exitErr.ExitCode(),
			Err:      runErr,
		}
	}
	if !utf8.Valid(stdout.Bytes()) {
		return "", &CommandError{
			Kind:     KindUTF8,
			ExitCode: 0,
			Err:      fmt.Errorf("%w (%d bytes)", ErrInvalidUTF8, stdout.Len()),
		}
	}
	return stdout.String(), nil
}

// RemoveEndLine drops one trailing "\n" or "\r\n".
func RemoveEndLine(s string) string {
	if !strings.HasSuffix(s, "\n") {
		return s
	}
	return strings.TrimSuffix(s[:len(s)-1], "\r")
}
