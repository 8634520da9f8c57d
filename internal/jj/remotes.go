package jj

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	gitlib "github.com/go-git/go-git/v5"
)

// Remote is a git remote of the repository's backing git store.
type Remote struct {
	Name string
	URLs []string
}

// GitDir returns the git directory backing the jj repository at root.
//
// `.jj/repo` is either the repo directory or, for secondary workspaces, a
// file holding its path. The store's `git_target` file holds the git
// directory relative to the store.
func GitDir(root string) (string, error) {
	jjDir := filepath.Join(root, ".jj")
	repoDir := filepath.Join(jjDir, "repo")
	info, err := os.Stat(repoDir)
	if err != nil {
		return "", fmt.Errorf("stat jj repo: %w", err)
	}
	if !info.IsDir() {
		target, err := os.ReadFile(repoDir)
		if err != nil {
			return "", fmt.Errorf("read jj repo pointer: %w", err)
		}
		repoDir = resolveRelative(jjDir, string(target))
	}
	storeDir := filepath.Join(repoDir, "store")
	target, err := os.ReadFile(filepath.Join(storeDir, "git_target"))
	if err != nil {
		return "", fmt.Errorf("read git target: %w", err)
	}
	return resolveRelative(storeDir, string(target)), nil
}

func resolveRelative(base, target string) string {
	target = strings.TrimSpace(target)
	if filepath.IsAbs(target) {
		return filepath.Clean(target)
	}
	return filepath.Join(base, target)
}

// Remotes lists the git remotes of the repository at root, sorted by name.
func Remotes(root string) ([]Remote, error) {
	gitDir, err := GitDir(root)
	if err != nil {
		return nil, err
	}
	repo, err := gitlib.PlainOpen(gitDir)
	if err != nil {
		return nil, fmt.Errorf("open git store: %w", err)
	}
	remotes, err := repo.Remotes()
	if err != nil {
		return nil, fmt.Errorf("list remotes: %w", err)
	}
	out := make([]Remote, 0, len(remotes))
	for _, r := range remotes {
		cfg := r.Config()
		out = append(out, Remote{Name: cfg.Name, URLs: slices.Clone(cfg.URLs)})
	}
	slices.SortFunc(out, func(a, b Remote) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out, nil
}
