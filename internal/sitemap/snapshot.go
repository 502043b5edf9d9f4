package sitemap

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// ErrNoSnapshot means the file has no committed version.
var ErrNoSnapshot = errors.New("no committed snapshot")

// Snapshotter returns the last committed content of a file on disk.
type Snapshotter interface {
	Committed(path string) ([]byte, error)
}

// NoSnapshots reports every file as uncommitted, so every page counts as
// changed.
type NoSnapshots struct{}

func (NoSnapshots) Committed(string) ([]byte, error) { return nil, ErrNoSnapshot }

// GitSnapshotter reads files from the HEAD commit of a git repository.
type GitSnapshotter struct {
	root string
	tree *object.Tree
}

// NewGitSnapshotter opens the repository containing dir.
func NewGitSnapshotter(dir string) (*GitSnapshotter, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open repository for %s: %w", dir, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("worktree: %w", err)
	}
	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("resolve HEAD: %w", err)
	}
	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return nil, fmt.Errorf("HEAD commit: %w", err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("HEAD tree: %w", err)
	}
	root, err := resolve(wt.Filesystem.Root())
	if err != nil {
		return nil, err
	}
	return &GitSnapshotter{root: root, tree: tree}, nil
}

func resolve(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		return real, nil
	}
	return abs, nil
}

// Committed returns the HEAD version of path, which may be absolute or
// relative to the working directory.
func (g *GitSnapshotter) Committed(path string) ([]byte, error) {
	abs, err := resolve(path)
	if err != nil {
		return nil, err
	}
	rel, err := filepath.Rel(g.root, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return nil, fmt.Errorf("%s is outside the repository: %w", path, ErrNoSnapshot)
	}
	f, err := g.tree.File(filepath.ToSlash(rel))
	if err != nil {
		if errors.Is(err, object.ErrFileNotFound) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("read %s at HEAD: %w", rel, err)
	}
	contents, err := f.Contents()
	if err != nil {
		return nil, fmt.Errorf("read %s at HEAD: %w", rel, err)
	}
	return []byte(contents), nil
}
