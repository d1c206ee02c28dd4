// Package gitio reads per-file revision stacks out of a Git repository
// using go-git. A stack is the content of one file at a base commit
// followed by its content at every commit on the first-parent chain up
// to a head, oldest first, which is exactly the shape the history
// engine consumes.
package gitio

import (
	"fmt"
	"sort"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Repository wraps a go-git repository.
type Repository struct {
	repo *git.Repository
	path string
}

// Open opens an existing Git repository.
func Open(repoPath string) (*Repository, error) {
	repo, err := git.PlainOpen(repoPath)
	if err != nil {
		return nil, fmt.Errorf("opening repository: %w", err)
	}
	return &Repository{repo: repo, path: repoPath}, nil
}

// ResolveRef resolves a git reference (branch name, tag, or commit
// hash) to a commit.
func (r *Repository) ResolveRef(refName string) (*object.Commit, error) {
	if refName == "HEAD" {
		ref, err := r.repo.Head()
		if err != nil {
			return nil, fmt.Errorf("resolving HEAD: %w", err)
		}
		commit, err := r.repo.CommitObject(ref.Hash())
		if err != nil {
			return nil, fmt.Errorf("getting commit: %w", err)
		}
		return commit, nil
	}

	ref, err := r.repo.Reference(plumbing.NewBranchReferenceName(refName), true)
	if err == nil {
		commit, err := r.repo.CommitObject(ref.Hash())
		if err != nil {
			return nil, fmt.Errorf("getting commit: %w", err)
		}
		return commit, nil
	}

	ref, err = r.repo.Reference(plumbing.NewTagReferenceName(refName), true)
	if err == nil {
		commit, err := r.repo.CommitObject(ref.Hash())
		if err != nil {
			return nil, fmt.Errorf("getting commit: %w", err)
		}
		return commit, nil
	}

	hash := plumbing.NewHash(refName)
	commit, err := r.repo.CommitObject(hash)
	if err != nil {
		return nil, fmt.Errorf("resolving ref %q: not a branch, tag, or commit hash", refName)
	}
	return commit, nil
}

// FirstParentChain returns the commits strictly after base up to and
// including head, following first parents only, oldest first. Merges
// contribute only their first-parent side; base must be an ancestor on
// that chain.
func (r *Repository) FirstParentChain(base, head *object.Commit) ([]*object.Commit, error) {
	var chain []*object.Commit
	cur := head
	for cur.Hash != base.Hash {
		chain = append(chain, cur)
		if cur.NumParents() == 0 {
			return nil, fmt.Errorf("base %s is not a first-parent ancestor of %s", base.Hash, head.Hash)
		}
		parent, err := cur.Parent(0)
		if err != nil {
			return nil, fmt.Errorf("getting first parent of %s: %w", cur.Hash, err)
		}
		cur = parent
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

// FileText returns the content of one file at a commit. A file absent
// from the commit's tree reads as empty with present=false.
func (r *Repository) FileText(commit *object.Commit, path string) (text string, present bool, err error) {
	tree, err := commit.Tree()
	if err != nil {
		return "", false, fmt.Errorf("getting tree: %w", err)
	}
	f, err := tree.File(path)
	if err == object.ErrFileNotFound {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("getting file %s: %w", path, err)
	}
	content, err := f.Contents()
	if err != nil {
		return "", false, fmt.Errorf("reading file %s: %w", path, err)
	}
	return content, true, nil
}

// FileStack returns the file's text at base and then at each commit,
// oldest first. Absent files read as empty, so a file created midway
// yields leading empty revisions.
func (r *Repository) FileStack(base *object.Commit, chain []*object.Commit, path string) ([]string, error) {
	texts := make([]string, 0, len(chain)+1)
	baseText, _, err := r.FileText(base, path)
	if err != nil {
		return nil, err
	}
	texts = append(texts, baseText)
	for _, c := range chain {
		text, _, err := r.FileText(c, path)
		if err != nil {
			return nil, err
		}
		texts = append(texts, text)
	}
	return texts, nil
}

// ChangedFiles returns the sorted paths touched by any commit of the
// chain relative to its first parent.
func (r *Repository) ChangedFiles(base *object.Commit, chain []*object.Commit) ([]string, error) {
	seen := make(map[string]bool)
	prev := base
	for _, c := range chain {
		prevTree, err := prev.Tree()
		if err != nil {
			return nil, fmt.Errorf("getting tree of %s: %w", prev.Hash, err)
		}
		tree, err := c.Tree()
		if err != nil {
			return nil, fmt.Errorf("getting tree of %s: %w", c.Hash, err)
		}
		changes, err := prevTree.Diff(tree)
		if err != nil {
			return nil, fmt.Errorf("computing diff: %w", err)
		}
		for _, change := range changes {
			if change.From.Name != "" {
				seen[change.From.Name] = true
			}
			if change.To.Name != "" {
				seen[change.To.Name] = true
			}
		}
		prev = c
	}

	paths := make([]string, 0, len(seen))
	for p := range seen {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths, nil
}
