package tui

import (
	"strings"
)

// diffPathFromLine returns the new-side path of a `diff --git` header.
func diffPathFromLine(line string) (string, bool) {
	const prefix = "diff --git "
	if !strings.HasPrefix(line, prefix) {
		return "", false
	}
	segment := strings.TrimSpace(line[len(prefix):])
	tokens := diffLineTokens(segment)
	if len(tokens) < 2 {
		return "", true
	}
	return normalizeDiffPath(tokens[1]), true
}

// diffLineTokens splits on blanks, honouring double-quoted paths with
// backslash escapes.
func diffLineTokens(s string) []string {
	var tokens []string
	for {
		s = strings.TrimLeft(s, " \t")
		if s == "" {
			break
		}
		if s[0] == '"' {
			var buf strings.Builder
			escaped := false
			i := 1
			for i < len(s) {
				ch := s[i]
				i++
				if escaped {
					buf.WriteByte(ch)
					escaped = false
					continue
				}
				if ch == '\\' {
					escaped = true
					continue
				}
				if ch == '"' {
					break
				}
				buf.WriteByte(ch)
			}
			tokens = append(tokens, buf.String())
			s = s[i:]
			continue
		}
		end := strings.IndexAny(s, " \t")
		if end < 0 {
			end = len(s)
		}
		tokens = append(tokens, s[:end])
		s = s[end:]
	}
	return tokens
}

func normalizeDiffPath(token string) string {
	token = strings.TrimPrefix(token, "a/")
	return strings.TrimPrefix(token, "b/")
}

// diffLineCode returns the source text of a hunk line without its marker.
func diffLineCode(line string) (string, bool) {
	if line == "" {
		return "", false
	}
	switch line[0] {
	case '+', '-', ' ':
		if strings.HasPrefix(line, "+++") || strings.HasPrefix(line, "---") {
			return "", false
		}
		return line[1:], true
	default:
		return "", false
	}
}

type diffLineKind uint8

const (
	diffLineContext diffLineKind = iota
	diffLineAdd
	diffLineDel
	diffLineHeader
)

func classifyDiffLine(line string) diffLineKind {
	switch {
	case strings.HasPrefix(line, "diff --git"), strings.HasPrefix(line, "@@"):
		return diffLineHeader
	case strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++"):
		return diffLineAdd
	case strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "---"):
		return diffLineDel
	default:
		return diffLineContext
	}
}
