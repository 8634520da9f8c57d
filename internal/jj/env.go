package jj

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/thiagokokada/jjk-go/internal/jj/backend"
)

// Engine config keys read by the front-end.
const (
	KeyDiffFormat     = "jjk.diff-format"
	KeyUIDiffFormat   = "ui.diff.format"
	KeyHighlightColor = "jjk.highlight-color"
	KeyBookmarkPrefix = "git.push-bookmark-prefix"
	KeyLogRevset      = "revsets.log"
)

const (
	DefaultHighlightColor = "#323296"
	DefaultBookmarkPrefix = "push-"
)

// configListTemplate renders each setting as a standalone TOML document with
// the full dotted name quoted as a single key.
const configListTemplate = `"\"" ++ name ++ "\"=" ++ value ++ "\n"`

// Config holds the engine settings that affect the front-end.
type Config struct {
	values map[string]any
}

// NewConfig builds a Config from flattened `name -> value` pairs.
func NewConfig(values map[string]any) Config {
	return Config{values: values}
}

func (c Config) String(key string) (string, bool) {
	v, ok := c.values[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Keys returns every decoded key, sorted.
func (c Config) Keys() []string {
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// DiffFormat prefers the tool-specific key over the engine's own default.
func (c Config) DiffFormat() DiffFormat {
	for _, key := range []string{KeyDiffFormat, KeyUIDiffFormat} {
		if raw, ok := c.String(key); ok {
			if f, ok := ParseDiffFormat(raw); ok {
				return f
			}
		}
	}
	return DiffColorWords
}

func (c Config) HighlightColor() string {
	if s, ok := c.String(KeyHighlightColor); ok && s != "" {
		return s
	}
	return DefaultHighlightColor
}

func (c Config) BookmarkPrefix() string {
	if s, ok := c.String(KeyBookmarkPrefix); ok {
		return s
	}
	return DefaultBookmarkPrefix
}

// LogRevset is the engine's default log revset, empty when unset.
func (c Config) LogRevset() string {
	s, _ := c.String(KeyLogRevset)
	return s
}

// Env describes the repository the front-end operates on.
type Env struct {
	Root   string
	Config Config
}

// ErrNoRepository is returned when the start directory is not inside a jj
// repository.
var ErrNoRepository = errors.New("no jj repository found")

// OpenEnv locates the repository root and reads the engine configuration.
// exec must run commands inside (or below) the repository.
func OpenEnv(exec Executor) (Env, error) {
	root, err := exec.Execute([]string{"root"}, false, true)
	if err != nil {
		return Env{}, fmt.Errorf("%w: %w", ErrNoRepository, err)
	}
	out, err := exec.Execute([]string{"config", "list", "--include-defaults", "--template", configListTemplate}, false, true)
	if err != nil {
		slog.Debug("templated config list failed, retrying plain", slog.Any("error", err))
		out, err = exec.Execute([]string{"config", "list", "--include-defaults"}, false, true)
		if err != nil {
			return Env{}, fmt.Errorf("failed to get jj config: %w", err)
		}
	}
	return Env{Root: backend.RemoveEndLine(root), Config: ParseConfigList(out)}, nil
}

// ParseConfigList decodes `jj config list` output line by line. Values that
// span several lines (e.g. multi-line templates) are skipped.
func ParseConfigList(out string) Config {
	values := map[string]any{}
	for line := range strings.Lines(out) {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		var doc map[string]any
		if err := toml.Unmarshal([]byte(line), &doc); err != nil {
			slog.Debug("skipping config line", slog.String("line", line), slog.Any("error", err))
			continue
		}
		flatten("", doc, values)
	}
	return Config{values: values}
}

func flatten(prefix string, doc map[string]any, into map[string]any) {
	for k, v := range doc {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := v.(map[string]any); ok {
			flatten(key, nested, into)
			continue
		}
		into[key] = v
	}
}
