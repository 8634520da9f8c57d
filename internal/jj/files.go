package jj

import (
	"fmt"
	"strings"

	"github.com/thiagokokada/jjk-go/internal/jj/backend"
)

// Files lists the files changed by a revision.
func (s *Service) Files(h Head) ([]File, error) {
	out, err := s.exec.Execute([]string{"diff", "-r", string(h.ContentID), "--summary"}, false, true)
	if err != nil {
		return nil, err
	}
	var files []File
	for line := range strings.Lines(out) {
		files = append(files, ParseFile(line))
	}
	return files, nil
}

// Conflicts lists the conflicted paths of a revision. `jj resolve --list`
// exits with status 2 when there is nothing to list.
func (s *Service) Conflicts(id ContentID) ([]Conflict, error) {
	out, err := s.exec.Execute([]string{"resolve", "--list", "-r", string(id)}, false, true)
	if backend.IsStatus(err, 2) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed getting conflicts: %w", err)
	}
	var conflicts []Conflict
	for line := range strings.Lines(out) {
		if c, ok := ParseConflict(line); ok {
			conflicts = append(conflicts, c)
		}
	}
	return conflicts, nil
}

// FileDiff renders the diff of a single file of a revision. It returns false
// when f carries no decodable path.
func (s *Service) FileDiff(h Head, f File, format DiffFormat, ignoreWorkingCopy bool) (string, bool, error) {
	path := f.TargetPath()
	if path == "" {
		return "", false, nil
	}
	args := append([]string{"diff", "-r", string(h.ContentID), fileset(path)}, format.Args()...)
	if ignoreWorkingCopy {
		args = append(args, "--ignore-working-copy")
	}
	out, err := s.exec.Execute(args, true, true)
	if err != nil {
		return "", false, err
	}
	return out, true, nil
}

// FileUntrack stops tracking f. The file must already be ignored.
func (s *Service) FileUntrack(f File) (string, bool, error) {
	path := f.TargetPath()
	if path == "" {
		return "", false, nil
	}
	out, err := s.exec.Execute([]string{"file", "untrack", fileset(path)}, false, true)
	if err != nil {
		return "", false, err
	}
	return out, true, nil
}
