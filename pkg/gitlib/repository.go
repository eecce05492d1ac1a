package gitlib

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	git2go "github.com/libgit2/git2go/v34"
)

// ErrUnbornHead is returned when HEAD points to a branch without commits.
var ErrUnbornHead = errors.New("HEAD has no commits")

// Repository wraps a libgit2 repository.
type Repository struct {
	repo *git2go.Repository
	path string
}

// OpenRepository opens a git repository at the given local path.
func OpenRepository(path string) (*Repository, error) {
	repo, err := git2go.OpenRepository(path)
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}

	return &Repository{repo: repo, path: path}, nil
}

// Path returns the repository path.
func (r *Repository) Path() string {
	return r.path
}

// Name returns the base name of the repository path without a trailing
// ".git", e.g. "linux" for "/src/linux.git".
func (r *Repository) Name() string {
	return RepositoryName(r.path)
}

// RepositoryName derives a repository name from a path.
func RepositoryName(path string) string {
	base := filepath.Base(filepath.Clean(path))
	if base == ".git" {
		base = filepath.Base(filepath.Dir(filepath.Clean(path)))
	}

	return strings.TrimSuffix(base, ".git")
}

// Free releases the repository resources.
func (r *Repository) Free() {
	if r.repo != nil {
		r.repo.Free()
		r.repo = nil
	}
}

// Head returns the HEAD reference target.
func (r *Repository) Head() (Hash, error) {
	ref, err := r.repo.Head()
	if err != nil {
		if git2go.IsErrorCode(err, git2go.ErrorCodeUnbornBranch) || git2go.IsErrorCode(err, git2go.ErrorCodeNotFound) {
			return Hash{}, ErrUnbornHead
		}

		return Hash{}, fmt.Errorf("get HEAD: %w", err)
	}
	defer ref.Free()

	return HashFromOid(ref.Target()), nil
}

// LogOptions configures the commit log iteration.
type LogOptions struct {
	Since       *time.Time // Only include commits after this time.
	FirstParent bool       // Follow only first parent (git log --first-parent).
}

// Log returns a commit iterator starting from HEAD. It returns
// ErrUnbornHead for a repository without commits.
func (r *Repository) Log(opts *LogOptions) (*CommitIter, error) {
	head, err := r.Head()
	if err != nil {
		return nil, err
	}

	walk, err := r.repo.Walk()
	if err != nil {
		return nil, fmt.Errorf("create revwalk: %w", err)
	}

	err = walk.Push(head.ToOid())
	if err != nil {
		walk.Free()

		return nil, fmt.Errorf("push HEAD to revwalk: %w", err)
	}

	walk.Sorting(git2go.SortTime | git2go.SortTopological)

	iter := &CommitIter{walk: walk, repo: r}

	if opts != nil {
		if opts.FirstParent {
			walk.SimplifyFirstParent()
		}

		iter.since = opts.Since
	}

	return iter, nil
}
