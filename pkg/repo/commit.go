package repo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/odvcencio/strata/pkg/object"
	"go.uber.org/zap"
)

// CommitTree writes a commit object for tree with the given parents. Author
// and committer come from user.name and user.email. No ref is touched.
func (r *Repo) CommitTree(tree object.Hash, parents []object.Hash, message string) (object.Hash, error) {
	if _, err := r.Store.ReadTree(tree); err != nil {
		return "", fmt.Errorf("commit tree: %w", err)
	}
	for _, p := range parents {
		if _, err := r.Store.ReadCommit(p); err != nil {
			return "", fmt.Errorf("commit tree: parent: %w", err)
		}
	}
	if !strings.HasSuffix(message, "\n") {
		message += "\n"
	}

	sig := r.Config.Identity(r.now())
	h, err := r.Store.WriteObject(object.NewCommit(tree, parents, sig, sig, message))
	if err != nil {
		return "", fmt.Errorf("commit tree: write commit: %w", err)
	}
	return h, nil
}

// Commit records tree as a new commit on top of HEAD and advances HEAD
// (the current branch, or HEAD itself when detached).
//
//  1. Resolve HEAD to get the parent commit (absent for the first commit)
//  2. Write the commit object
//  3. Move the branch with a compare-and-swap against the old parent
func (r *Repo) Commit(tree object.Hash, message string) (object.Hash, error) {
	var parents []object.Hash
	parent, err := r.ResolveRef("HEAD")
	switch {
	case err == nil:
		parents = append(parents, parent)
	case errors.Is(err, ErrRefNotFound):
		// First commit on this branch.
	default:
		return "", fmt.Errorf("commit: %w", err)
	}

	h, err := r.CommitTree(tree, parents, message)
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	reason := "commit: "
	if len(parents) == 0 {
		reason = "commit (initial): "
	}
	subject, _, _ := strings.Cut(strings.TrimSpace(message), "\n")
	if err := r.updateRef("HEAD", h, &parent, reason+subject); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	r.logger.Debug("commit created", zap.String("hash", string(h)), zap.Int("parents", len(parents)))
	return h, nil
}

// Log walks history from start, newest first, returning at most limit
// commits (limit <= 0 means all).
func (r *Repo) Log(start object.Hash, limit int) ([]object.CommitEntry, error) {
	entries, err := object.Log(r.Store, start, limit)
	if err != nil {
		return nil, fmt.Errorf("log: %w", err)
	}
	return entries, nil
}
