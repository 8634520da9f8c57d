package jj

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/thiagokokada/jjk-go/internal/jj/backend"
)

// BookmarkLine is one line of the colored bookmark list. Bookmark is nil when
// the matching templated line could not be decoded.
type BookmarkLine struct {
	Text     string
	Bookmark *Bookmark
}

// bookmarkListTargets keeps `jj bookmark list` to one line per bookmark so
// colored and templated outputs can be zipped.
const bookmarkListTargets = `template-aliases.'format_ref_targets(ref)' = '''
if(ref.conflict(),
  " " ++ label("conflict", "(conflicted)"),
  ": " ++ format_commit_summary_with_refs(ref.normal_target(), ""),
)
'''`

func allRemotesArgs(all bool) []string {
	if all {
		return []string{"--all-remotes"}
	}
	return nil
}

// Bookmarks returns the colored bookmark list, newest first. Lines whose
// record could not be decoded are kept at the end.
func (s *Service) Bookmarks(all bool) ([]BookmarkLine, error) {
	colored, err := s.exec.Execute(
		append([]string{"bookmark", "list", "--config-toml", bookmarkListTargets}, allRemotesArgs(all)...),
		true,
		true,
	)
	if err != nil {
		return nil, err
	}
	templated, err := s.exec.Execute(
		append([]string{"bookmark", "list", "-T", bookmarkTemplate + ` ++ "\n"`}, allRemotesArgs(all)...),
		false,
		true,
	)
	if err != nil {
		return nil, err
	}
	return zipBookmarkLines(colored, templated), nil
}

func zipBookmarkLines(colored, templated string) []BookmarkLine {
	coloredLines := slices.Collect(strings.Lines(colored))
	var lines []BookmarkLine
	i := 0
	for raw := range strings.Lines(templated) {
		if i >= len(coloredLines) {
			break
		}
		line := BookmarkLine{Text: backend.RemoveEndLine(coloredLines[i])}
		if b, err := ParseBookmark(raw); err == nil {
			line.Bookmark = &b
		}
		lines = append(lines, line)
		i++
	}
	slices.SortStableFunc(lines, func(a, b BookmarkLine) int {
		switch {
		case a.Bookmark != nil && b.Bookmark != nil:
			return cmp.Compare(b.Bookmark.Timestamp, a.Bookmark.Timestamp)
		case a.Bookmark != nil:
			return -1
		case b.Bookmark != nil:
			return 1
		default:
			return 0
		}
	})
	return lines
}

// BookmarkList returns the present bookmarks, newest first.
func (s *Service) BookmarkList(all bool) ([]Bookmark, error) {
	out, err := s.exec.Execute(
		append([]string{
			"bookmark", "list",
			"-T", fmt.Sprintf(`if(present, %s ++ "\n", "")`, bookmarkTemplate),
		}, allRemotesArgs(all)...),
		false,
		true,
	)
	if err != nil {
		return nil, err
	}
	var bookmarks []Bookmark
	for line := range strings.Lines(out) {
		if b, err := ParseBookmark(line); err == nil {
			bookmarks = append(bookmarks, b)
		}
	}
	slices.SortStableFunc(bookmarks, func(a, b Bookmark) int {
		return cmp.Compare(b.Timestamp, a.Timestamp)
	})
	return bookmarks, nil
}

// BookmarkShow renders the revision a bookmark points to.
func (s *Service) BookmarkShow(b Bookmark, format DiffFormat, ignoreWorkingCopy bool) (string, error) {
	args := append([]string{"show", b.String()}, format.Args()...)
	if ignoreWorkingCopy {
		args = append(args, "--ignore-working-copy")
	}
	out, err := s.exec.Execute(args, true, true)
	if err != nil {
		return "", err
	}
	return backend.RemoveEndLine(out), nil
}

const generatedIDLen = 12

// GeneratedBookmarkName builds a push bookmark name from a prefix and the
// first characters of the change id.
func GeneratedBookmarkName(prefix string, h Head) string {
	id := string(h.LogicalID)
	if len(id) > generatedIDLen {
		id = id[:generatedIDLen]
	}
	return prefix + id
}
