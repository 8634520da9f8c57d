package jj

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/thiagokokada/jjk-go/internal/jj/backend"
)

// IdentityError is returned when a previously seen head cannot be mapped to
// any live head. It signals a real inconsistency (e.g. the change was
// abandoned elsewhere) and is never resolved by guessing.
type IdentityError struct {
	Old        Head
	Candidates []Head
}

func (e *IdentityError) Error() string {
	ids := make([]string, 0, len(e.Candidates))
	for _, c := range e.Candidates {
		ids = append(ids, string(c.ContentID))
	}
	msg := fmt.Sprintf("could not find latest version of %s %s", e.Old.LogicalID, e.Old.ContentID)
	if len(ids) > 0 {
		msg += fmt.Sprintf(" (candidates: %s)", strings.Join(ids, ", "))
	} else {
		msg += " (no live revisions)"
	}
	return msg
}

// Tracker locates revisions and follows them across rewrites.
type Tracker struct {
	exec Executor
}

func NewTracker(exec Executor) *Tracker {
	return &Tracker{exec: exec}
}

func (t *Tracker) singleHead(revision, what string) (Head, error) {
	out, err := t.exec.Execute([]string{
		"log",
		"--no-graph",
		"--template", headTemplate + ` ++ "\n"`,
		"-r", revision,
		"--limit", "1",
	}, false, true)
	if err != nil {
		return Head{}, fmt.Errorf("failed getting %s: %w", what, err)
	}
	return ParseHead(backend.RemoveEndLine(out))
}

// Current returns the working-copy head (`@`).
func (t *Tracker) Current() (Head, error) {
	return t.singleHead("@", "current head")
}

// Parent returns the first parent of the given revision.
func (t *Tracker) Parent(id ContentID) (Head, error) {
	return t.singleHead(string(id)+"-", "parent of "+string(id))
}

// HeadForBookmark returns the head a bookmark points to.
func (t *Tracker) HeadForBookmark(b Bookmark) (Head, error) {
	return t.singleHead(b.String(), "bookmark head "+b.String())
}

// IsImmutable reports whether the engine forbids rewriting revision.
func (t *Tracker) IsImmutable(revision string) (bool, error) {
	out, err := t.exec.Execute([]string{
		"log",
		"--no-graph",
		"--template", "immutable",
		"-r", revision,
		"--limit", "1",
	}, false, true)
	if err != nil {
		return false, fmt.Errorf("failed checking if revision is immutable: %s: %w", revision, err)
	}
	switch v := backend.RemoveEndLine(out); v {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, &ParseError{Template: "immutable", Text: v, Reason: "expected true or false"}
	}
}

// HeadsFor returns every live head of a logical revision, in engine order.
// More than one head means the change is divergent.
func (t *Tracker) HeadsFor(id LogicalID) ([]Head, error) {
	out, err := t.exec.Execute([]string{
		"log",
		"--no-graph",
		"-r", fmt.Sprintf("change_id(%s)", id),
		"--template", headTemplate + ` ++ "\n"`,
	}, false, true)
	if err != nil {
		return nil, err
	}
	return ParseHeads(out)
}

// Evolution returns the content ids recorded in the evolution log of a
// revision, newest first. The revision itself is the first entry.
func (t *Tracker) Evolution(id ContentID) ([]ContentID, error) {
	out, err := t.exec.Execute([]string{
		"evolog",
		"--no-graph",
		"--template", `commit.commit_id() ++ "\n"`,
		"-r", string(id),
	}, false, true)
	if err != nil {
		return nil, fmt.Errorf("failed getting evolution of %s: %w", id, err)
	}
	var ids []ContentID
	for line := range strings.Lines(out) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		ids = append(ids, ContentID(line))
	}
	return ids, nil
}

// ResolveLatest maps a possibly stale head to the live head it evolved into.
//
// When several divergent heads list old in their evolution log, the first one
// in engine order is returned.
func (t *Tracker) ResolveLatest(old Head) (Head, error) {
	candidates, err := t.HeadsFor(old.LogicalID)
	if err != nil {
		return Head{}, fmt.Errorf("failed resolving latest version of %s %s: %w", old.LogicalID, old.ContentID, err)
	}
	if i := slices.IndexFunc(candidates, old.Same); i >= 0 {
		return candidates[i], nil
	}
	for _, candidate := range candidates {
		evolution, err := t.Evolution(candidate.ContentID)
		if err != nil {
			return Head{}, err
		}
		if slices.Contains(evolution, old.ContentID) {
			slog.Debug("resolved rewritten head",
				slog.String("change", string(old.LogicalID)),
				slog.String("from", string(old.ContentID)),
				slog.String("to", string(candidate.ContentID)),
			)
			return candidate, nil
		}
	}
	return Head{}, &IdentityError{Old: old, Candidates: candidates}
}
