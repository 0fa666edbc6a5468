package repo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/odvcencio/strata/pkg/object"
)

// CreateBranch creates a new branch pointing at the given commit. Returns
// an error if the branch already exists.
func (r *Repo) CreateBranch(name string, target object.Hash) error {
	refName := "refs/heads/" + name
	noRef := object.Hash("")
	if err := r.updateRef(refName, target, &noRef, "branch: Created from "+string(target)); err != nil {
		if errors.Is(err, ErrRefCASMismatch) {
			return fmt.Errorf("create branch: branch %q already exists", name)
		}
		return fmt.Errorf("create branch %q: %w", name, err)
	}
	return nil
}

// ListBranches returns branch names sorted alphabetically.
func (r *Repo) ListBranches() ([]string, error) {
	refs, err := r.ListRefs("refs/heads")
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	names := make([]string, 0, len(refs))
	for _, ref := range refs {
		names = append(names, strings.TrimPrefix(ref.Name, "refs/heads/"))
	}
	return names, nil
}
