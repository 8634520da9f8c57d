package jj

import (
	"fmt"
)

// New creates an empty change on top of revision and moves `@` there.
func (s *Service) New(revision string) error {
	if err := s.exec.ExecuteVoid([]string{"new", revision}); err != nil {
		return fmt.Errorf("failed executing jj new: %w", err)
	}
	return nil
}

// Edit makes revision the working-copy change.
func (s *Service) Edit(revision string) error {
	if err := s.exec.ExecuteVoid([]string{"edit", revision}); err != nil {
		return fmt.Errorf("failed executing jj edit: %w", err)
	}
	return nil
}

func (s *Service) Abandon(id ContentID) error {
	if err := s.exec.ExecuteVoid([]string{"abandon", string(id)}); err != nil {
		return fmt.Errorf("failed executing jj abandon: %w", err)
	}
	return nil
}

func (s *Service) Describe(revision, message string) error {
	if err := s.exec.ExecuteVoid([]string{"describe", revision, "-m", message}); err != nil {
		return fmt.Errorf("failed executing jj describe: %w", err)
	}
	return nil
}

// Squash moves the changes of `@` into id, keeping id's description.
func (s *Service) Squash(id ContentID) error {
	if err := s.exec.ExecuteVoid([]string{"squash", "--into", string(id), "--use-destination-message"}); err != nil {
		return fmt.Errorf("failed executing jj squash: %w", err)
	}
	return nil
}

// SourceMode selects which revisions a rebase moves.
type SourceMode string

const (
	// SourceBranch moves the whole branch relative to the destination (-b).
	SourceBranch SourceMode = "-b"
	// SourceDescendants moves the revision and its descendants (-s).
	SourceDescendants SourceMode = "-s"
	// SourceRevision moves only the revision (-r).
	SourceRevision SourceMode = "-r"
)

// TargetMode selects where a rebase places the moved revisions.
type TargetMode string

const (
	TargetDestination TargetMode = "-d"
	TargetAfter       TargetMode = "-A"
	TargetBefore      TargetMode = "-B"
)

func (s *Service) Rebase(srcMode SourceMode, src string, tgtMode TargetMode, tgt string) error {
	if err := s.exec.ExecuteVoid([]string{"rebase", string(srcMode), src, string(tgtMode), tgt}); err != nil {
		return fmt.Errorf("failed executing jj rebase: %w", err)
	}
	return nil
}

// BookmarkCreate creates a local bookmark at `@`.
func (s *Service) BookmarkCreate(name string) (Bookmark, error) {
	if err := s.exec.ExecuteVoid([]string{"bookmark", "create", name}); err != nil {
		return Bookmark{}, err
	}
	return Bookmark{Name: name, Present: true}, nil
}

// BookmarkCreateAt creates a local bookmark at id.
func (s *Service) BookmarkCreateAt(name string, id ContentID) (Bookmark, error) {
	if err := s.exec.ExecuteVoid([]string{"bookmark", "create", name, "-r", string(id)}); err != nil {
		return Bookmark{}, err
	}
	return Bookmark{Name: name, Present: true}, nil
}

// BookmarkSet moves an existing bookmark to id, backwards if needed.
func (s *Service) BookmarkSet(name string, id ContentID) error {
	return s.exec.ExecuteVoid([]string{"bookmark", "set", name, "-r", string(id), "--allow-backwards"})
}

func (s *Service) BookmarkRename(oldName, newName string) error {
	return s.exec.ExecuteVoid([]string{"bookmark", "rename", oldName, newName})
}

func (s *Service) BookmarkDelete(name string) error {
	return s.exec.ExecuteVoid([]string{"bookmark", "delete", name})
}

func (s *Service) BookmarkForget(name string) error {
	return s.exec.ExecuteVoid([]string{"bookmark", "forget", name})
}

func (s *Service) BookmarkTrack(b Bookmark) error {
	return s.exec.ExecuteVoid([]string{"bookmark", "track", b.String()})
}

func (s *Service) BookmarkUntrack(b Bookmark) error {
	return s.exec.ExecuteVoid([]string{"bookmark", "untrack", b.String()})
}

// GitPush pushes either every bookmark or the bookmarks pointing at id. The
// engine's report is returned for display.
func (s *Service) GitPush(all, allowNew bool, id ContentID) (string, error) {
	args := []string{"git", "push"}
	if allowNew {
		args = append(args, "--allow-new")
	}
	if all {
		args = append(args, "--all")
	} else {
		args = append(args, "-r", string(id))
	}
	return s.exec.Execute(args, true, true)
}

func (s *Service) GitFetch(allRemotes bool) (string, error) {
	args := []string{"git", "fetch"}
	if allRemotes {
		args = append(args, "--all-remotes")
	}
	return s.exec.Execute(args, true, true)
}
