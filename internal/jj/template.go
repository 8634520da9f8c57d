package jj

import (
	"fmt"
	"strconv"
	"strings"
)

// LogicalID is the engine's change id. It survives rewrites of a change.
type LogicalID string

// ContentID is the engine's commit id. It changes whenever a change is
// rewritten.
type ContentID string

// Head is one concrete snapshot of a logical revision.
type Head struct {
	LogicalID LogicalID
	ContentID ContentID
	Divergent bool
	Immutable bool
}

// Same reports whether h and other refer to the same snapshot. Flags are not
// compared: they describe the snapshot, they do not identify it.
func (h Head) Same(other Head) bool {
	return h.LogicalID == other.LogicalID && h.ContentID == other.ContentID
}

func (h Head) String() string {
	return fmt.Sprintf("%s %s", h.LogicalID, h.ContentID)
}

// headTemplate renders `[change_id|commit_id|divergent|immutable]`.
const headTemplate = `"[" ++ change_id ++ "|" ++ commit_id ++ "|" ++ divergent ++ "|" ++ immutable ++ "]"`

const headFields = 4

// ParseError reports engine output that did not match the requested template.
// It usually means the installed engine version is incompatible.
type ParseError struct {
	Template string
	Text     string
	Reason   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s parse error: %s: %q", e.Template, e.Reason, e.Text)
}

// bracketFields extracts the `|`-separated fields of the first `[...]` group
// in text and checks their count. Graph characters before the group and
// anything after it (e.g. bookmark names) are ignored.
func bracketFields(template, text string, want int) ([]string, error) {
	start := strings.IndexByte(text, '[')
	if start < 0 {
		return nil, &ParseError{Template: template, Text: text, Reason: "missing ["}
	}
	end := strings.IndexByte(text[start:], ']')
	if end < 0 {
		return nil, &ParseError{Template: template, Text: text, Reason: "missing ]"}
	}
	fields := strings.Split(text[start+1:start+end], "|")
	if len(fields) != want {
		return nil, &ParseError{
			Template: template,
			Text:     text,
			Reason:   fmt.Sprintf("expected %d fields, got %d", want, len(fields)),
		}
	}
	return fields, nil
}

func parseBool(template, text, field string) (bool, error) {
	switch field {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, &ParseError{Template: template, Text: text, Reason: fmt.Sprintf("invalid boolean %q", field)}
	}
}

// ParseHead decodes one line rendered with the head template.
func ParseHead(text string) (Head, error) {
	const name = "head"
	fields, err := bracketFields(name, text, headFields)
	if err != nil {
		return Head{}, err
	}
	if fields[0] == "" || fields[1] == "" {
		return Head{}, &ParseError{Template: name, Text: text, Reason: "empty id"}
	}
	divergent, err := parseBool(name, text, fields[2])
	if err != nil {
		return Head{}, err
	}
	immutable, err := parseBool(name, text, fields[3])
	if err != nil {
		return Head{}, err
	}
	return Head{
		LogicalID: LogicalID(fields[0]),
		ContentID: ContentID(fields[1]),
		Divergent: divergent,
		Immutable: immutable,
	}, nil
}

// FormatHead renders h the way the engine renders headTemplate.
func FormatHead(h Head) string {
	return fmt.Sprintf("[%s|%s|%t|%t]", h.LogicalID, h.ContentID, h.Divergent, h.Immutable)
}

// ParseHeads decodes every non-empty line of out. A single bad line fails the
// whole decode.
func ParseHeads(out string) ([]Head, error) {
	var heads []Head
	for line := range strings.Lines(out) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		h, err := ParseHead(line)
		if err != nil {
			return nil, err
		}
		heads = append(heads, h)
	}
	return heads, nil
}

// Bookmark is a local or remote bookmark.
type Bookmark struct {
	Name      string
	Remote    string
	Present   bool
	Timestamp int64
}

// String renders name or name@remote, the syntax the engine accepts as a
// revision.
func (b Bookmark) String() string {
	if b.Remote == "" {
		return b.Name
	}
	return b.Name + "@" + b.Remote
}

func (b Bookmark) IsRemote() bool {
	return b.Remote != ""
}

// bookmarkTemplate renders `[name@remote|present|timestamp]`.
const bookmarkTemplate = `"[" ++ name ++ "@" ++ remote ++ "|" ++ present ++ "|" ++ self.normal_target().committer().timestamp().format("%s") ++ "]"`

// ParseBookmark decodes one line rendered with bookmarkTemplate.
func ParseBookmark(text string) (Bookmark, error) {
	const name = "bookmark"
	line := strings.TrimRight(text, "\r\n")
	if !strings.HasPrefix(line, "[") || !strings.HasSuffix(line, "]") {
		return Bookmark{}, &ParseError{Template: name, Text: text, Reason: "not a bracketed record"}
	}
	fields, err := bracketFields(name, line, 3)
	if err != nil {
		return Bookmark{}, err
	}
	// Bookmark names may contain '@' only as the remote separator; the
	// template always emits it, so the last one splits name and remote.
	at := strings.LastIndexByte(fields[0], '@')
	if at < 0 {
		return Bookmark{}, &ParseError{Template: name, Text: text, Reason: "missing @"}
	}
	present, err := parseBool(name, text, fields[1])
	if err != nil {
		return Bookmark{}, err
	}
	ts, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		return Bookmark{}, &ParseError{Template: name, Text: text, Reason: fmt.Sprintf("invalid timestamp %q", fields[2])}
	}
	return Bookmark{
		Name:      fields[0][:at],
		Remote:    fields[0][at+1:],
		Present:   present,
		Timestamp: ts,
	}, nil
}

// FormatBookmark renders b the way the engine renders bookmarkTemplate.
func FormatBookmark(b Bookmark) string {
	return fmt.Sprintf("[%s@%s|%t|%d]", b.Name, b.Remote, b.Present, b.Timestamp)
}

// DiffType is the change kind of a file in a diff summary.
type DiffType uint8

const (
	DiffNone DiffType = iota
	DiffAdded
	DiffModified
	DiffDeleted
	DiffRenamed
	DiffCopied
)

func parseDiffType(s string) DiffType {
	switch s {
	case "A":
		return DiffAdded
	case "M":
		return DiffModified
	case "D":
		return DiffDeleted
	case "R":
		return DiffRenamed
	case "C":
		return DiffCopied
	default:
		return DiffNone
	}
}

func (d DiffType) String() string {
	switch d {
	case DiffAdded:
		return "A"
	case DiffModified:
		return "M"
	case DiffDeleted:
		return "D"
	case DiffRenamed:
		return "R"
	case DiffCopied:
		return "C"
	default:
		return "?"
	}
}

// File is one line of `jj diff --summary`. Path is empty when the line could
// not be decoded; the raw line is always kept for display.
type File struct {
	Line string
	Path string
	Type DiffType
}

// ParseFile decodes a diff summary line such as `M src/main.go` or
// `R {old.go => new.go}`.
func ParseFile(line string) File {
	line = strings.TrimRight(line, "\r\n")
	f := File{Line: line}
	kind, path, ok := strings.Cut(line, " ")
	if !ok || len(kind) != 1 || path == "" {
		return f
	}
	f.Type = parseDiffType(kind)
	f.Path = path
	return f
}

// TargetPath returns the path on the revision's side, resolving renames of
// the form `prefix/{old => new}/suffix`.
func (f File) TargetPath() string {
	if f.Type != DiffRenamed && f.Type != DiffCopied {
		return f.Path
	}
	open := strings.IndexByte(f.Path, '{')
	closing := strings.LastIndexByte(f.Path, '}')
	if open < 0 || closing < open {
		return f.Path
	}
	_, newPart, ok := strings.Cut(f.Path[open+1:closing], " => ")
	if !ok {
		return f.Path
	}
	joined := f.Path[:open] + newPart + f.Path[closing+1:]
	return strings.ReplaceAll(joined, "//", "/")
}

// Conflict is one path listed by `jj resolve --list`.
type Conflict struct {
	Path string
}

// ParseConflict decodes `path    description` lines.
func ParseConflict(line string) (Conflict, bool) {
	line = strings.TrimRight(line, "\r\n")
	path, _, ok := strings.Cut(line, "    ")
	if !ok || path == "" {
		return Conflict{}, false
	}
	return Conflict{Path: path}, true
}

// fileset quotes path as a jj fileset expression.
func fileset(path string) string {
	return `file:"` + strings.ReplaceAll(path, `"`, `\"`) + `"`
}
