package jj

import "strings"

// DiffFormat selects how diffs are rendered by the engine.
type DiffFormat string

const (
	DiffColorWords DiffFormat = "color-words"
	DiffGit        DiffFormat = "git"
	DiffSummary    DiffFormat = "summary"
	DiffStat       DiffFormat = "stat"
)

var diffFormats = []DiffFormat{DiffColorWords, DiffGit, DiffSummary, DiffStat}

// ParseDiffFormat accepts the names used in the engine's `ui.diff.format`
// setting.
func ParseDiffFormat(raw string) (DiffFormat, bool) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	for _, f := range diffFormats {
		if string(f) == raw {
			return f, true
		}
	}
	return "", false
}

// Args returns the flags selecting f on `jj diff` and `jj show`.
func (f DiffFormat) Args() []string {
	switch f {
	case DiffGit:
		return []string{"--git"}
	case DiffSummary:
		return []string{"--summary"}
	case DiffStat:
		return []string{"--stat"}
	default:
		return []string{"--color-words"}
	}
}

// Next cycles through the supported formats.
func (f DiffFormat) Next() DiffFormat {
	for i, other := range diffFormats {
		if other == f {
			return diffFormats[(i+1)%len(diffFormats)]
		}
	}
	return DiffColorWords
}
