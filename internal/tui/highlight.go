//go:build !nosyntaxhighlight

package tui

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// highlightGitDiff re-colors a `--git` diff: hunk lines get the palette's
// add/delete backgrounds and their code is tokenised by the lexer matching
// the file name of the enclosing `diff --git` header.
func highlightGitDiff(content string, th theme) string {
	style := styleForPalette(th.palette)
	lines := strings.Split(ansi.Strip(content), "\n")
	var lexer chroma.Lexer
	for i, line := range lines {
		if path, ok := diffPathFromLine(line); ok {
			lexer = lexerForPath(path)
			lines[i] = th.diffHeader.Render(line)
			continue
		}
		kind := classifyDiffLine(line)
		var base lipgloss.Style
		switch kind {
		case diffLineHeader:
			lines[i] = th.diffHeader.Render(line)
			continue
		case diffLineAdd:
			base = th.diffAdd
		case diffLineDel:
			base = th.diffDel
		default:
			base = lipgloss.NewStyle()
		}
		code, ok := diffLineCode(line)
		if !ok {
			continue
		}
		lines[i] = base.Render(line[:1]) + highlightCode(lexer, style, code, base)
	}
	return strings.Join(lines, "\n")
}

func highlightCode(lexer chroma.Lexer, style *chroma.Style, code string, base lipgloss.Style) string {
	if lexer == nil || style == nil || code == "" {
		return base.Render(code)
	}
	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return base.Render(code)
	}
	var b strings.Builder
	for _, token := range iterator.Tokens() {
		if token.Value == "" {
			continue
		}
		st := base
		if color := colorFromEntry(style.Get(token.Type)); color != "" {
			st = st.Foreground(lipgloss.Color(color))
		}
		b.WriteString(st.Render(token.Value))
	}
	return b.String()
}

func styleForPalette(p colorPalette) *chroma.Style {
	if st := styles.Get(p.ChromaStyle); st != nil {
		return st
	}
	return styles.Fallback
}

func colorFromEntry(entry chroma.StyleEntry) string {
	if entry.Colour.IsSet() {
		return "#" + strings.TrimPrefix(strings.ToLower(entry.Colour.String()), "#")
	}
	return ""
}

func lexerForPath(path string) chroma.Lexer {
	if path == "" {
		return nil
	}
	lexer := lexers.Match(path)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	return chroma.Coalesce(lexer)
}
