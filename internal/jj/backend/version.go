package backend

import (
	"fmt"
	"strconv"
	"strings"
)

// Minimum supported jj version. 0.33.0 changed the evolog template language
// (`commit.commit_id()` instead of `commit_id`).
var minJJVersion = jjVersion{major: 0, minor: 33, patch: 0}

// IgnoreVersionHint is appended to version errors.
const IgnoreVersionHint = "If you want to continue anyway, use --ignore-jj-version"

type jjVersion struct {
	major int
	minor int
	patch int
}

func MinJJVersion() string {
	return minJJVersion.String()
}

func (v jjVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", v.major, v.minor, v.patch)
}

func (v jjVersion) less(other jjVersion) bool {
	if v.major != other.major {
		return v.major < other.major
	}
	if v.minor != other.minor {
		return v.minor < other.minor
	}
	return v.patch < other.patch
}

// parseJJVersionOutput accepts the output of `jj version`, e.g.
//   - "jj 0.33.0"
//   - "jj 0.34.0-2c6a4a1f0e5c58ee0e64de1ed5a5b1a0c0b3c4f1"
//   - "jj 0.35.0-nightly"
func parseJJVersionOutput(out string) (jjVersion, bool) {
	s := strings.TrimSpace(out)
	rest, ok := strings.CutPrefix(s, "jj ")
	if !ok {
		return jjVersion{}, false
	}
	rest = strings.TrimSpace(rest)
	end := 0
	for end < len(rest) {
		c := rest[end]
		if (c >= '0' && c <= '9') || c == '.' {
			end++
			continue
		}
		break
	}
	rest = strings.Trim(rest[:end], ".")
	parts := strings.Split(rest, ".")
	if len(parts) < 2 {
		return jjVersion{}, false
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return jjVersion{}, false
	}
	minor, err := strconv.Atoi(parts[1])
	if err != nil {
		return jjVersion{}, false
	}
	patch := 0
	if len(parts) >= 3 {
		if p, err := strconv.Atoi(parts[2]); err == nil {
			patch = p
		}
	}
	return jjVersion{major: major, minor: minor, patch: patch}, true
}

func validateJJVersionOutput(out string) error {
	if !strings.HasPrefix(strings.TrimSpace(out), "jj ") {
		return fmt.Errorf("jj version string was not recognized: %q", strings.TrimSpace(out))
	}
	got, ok := parseJJVersionOutput(out)
	if !ok {
		return fmt.Errorf("unable to compare version %q to %q\n%s", strings.TrimSpace(out), minJJVersion, IgnoreVersionHint)
	}
	if got.less(minJJVersion) {
		return fmt.Errorf("jj version is too old (%s). Must be at least %s\n%s", got, minJJVersion, IgnoreVersionHint)
	}
	return nil
}

// CheckVersion asks the engine for its version and fails when it is older
// than MinJJVersion. The invocation is recorded like any other command.
func (r *Runner) CheckVersion() (string, error) {
	out, err := r.Execute([]string{"version"}, false, false)
	if err != nil {
		return "", fmt.Errorf("run jj version: %w", err)
	}
	out = RemoveEndLine(out)
	if err := validateJJVersionOutput(out); err != nil {
		return out, err
	}
	return out, nil
}
