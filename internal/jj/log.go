package jj

import (
	"fmt"
	"slices"
	"strings"

	"github.com/thiagokokada/jjk-go/internal/jj/backend"
)

// LogOutput is a rendered log plus the mapping from its lines to heads.
type LogOutput struct {
	// Graph is the colored `builtin_log_compact` rendering.
	Graph string
	// GraphHeads maps each line of Graph to the head it belongs to, or nil
	// for decorative lines (elided revisions, graph connectors).
	GraphHeads []*Head
	// Heads lists every head of GraphHeads once, in display order.
	Heads []Head
}

// HeadAt returns the head rendered at line i.
func (l LogOutput) HeadAt(i int) (Head, bool) {
	if i < 0 || i >= len(l.GraphHeads) || l.GraphHeads[i] == nil {
		return Head{}, false
	}
	return *l.GraphHeads[i], true
}

// LineOf returns the first graph line rendering h.
func (l LogOutput) LineOf(h Head) (int, bool) {
	for i, gh := range l.GraphHeads {
		if gh != nil && gh.Same(h) {
			return i, true
		}
	}
	return 0, false
}

func revsetArgs(revset string) []string {
	if revset == "" {
		return nil
	}
	return []string{"-r", revset}
}

// Log renders the log twice: once colored with the compact builtin template
// for display, and once with the head template laid out on the same two lines
// per change so every display line can be mapped to its head.
func (s *Service) Log(revset string) (LogOutput, error) {
	args := revsetArgs(revset)
	graph, err := s.exec.Execute(
		append([]string{"log", "--template", "builtin_log_compact"}, args...),
		true,
		true,
	)
	if err != nil {
		return LogOutput{}, err
	}
	headsOut, err := s.exec.Execute(
		append([]string{
			"log",
			"--template",
			fmt.Sprintf(`%s ++ " " ++ bookmarks ++ "\n" ++ %s`, headTemplate, headTemplate),
		}, args...),
		false,
		true,
	)
	if err != nil {
		return LogOutput{}, err
	}
	return buildLogOutput(graph, headsOut), nil
}

func buildLogOutput(graph, headsOut string) LogOutput {
	out := LogOutput{Graph: graph}
	for line := range strings.Lines(headsOut) {
		h, err := ParseHead(line)
		if err != nil {
			out.GraphHeads = append(out.GraphHeads, nil)
			continue
		}
		out.GraphHeads = append(out.GraphHeads, &h)
		if !slices.ContainsFunc(out.Heads, h.Same) {
			out.Heads = append(out.Heads, h)
		}
	}
	return out
}

// Show renders a revision with its diff.
func (s *Service) Show(id ContentID, format DiffFormat, ignoreWorkingCopy bool) (string, error) {
	args := append([]string{"show", string(id)}, format.Args()...)
	if ignoreWorkingCopy {
		args = append(args, "--ignore-working-copy")
	}
	out, err := s.exec.Execute(args, true, true)
	if err != nil {
		return "", err
	}
	return backend.RemoveEndLine(out), nil
}

// Description returns the full description of a revision.
func (s *Service) Description(id ContentID) (string, error) {
	out, err := s.exec.Execute([]string{
		"log",
		"--no-graph",
		"--template", "description",
		"-r", string(id),
		"--limit", "1",
	}, false, true)
	if err != nil {
		return "", fmt.Errorf("failed getting description of %s: %w", id, err)
	}
	return backend.RemoveEndLine(out), nil
}
