package repo

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/odvcencio/strata/pkg/object"
)

// maxPeelDepth bounds tag-to-tag chains when peeling.
const maxPeelDepth = 32

// FindObject resolves a user-supplied name to an object hash. Accepted
// forms are HEAD, full or abbreviated (at least 4 characters) hashes,
// refs/... paths, and short tag, branch or remote names. A name that
// matches several objects fails with an *object.AmbiguousError.
//
// When want is non-empty the result is peeled until it has that type:
// annotated tags are followed to their target and commits to their tree.
// The "<rev>:<path>" form names the entry at path in rev's tree.
func (r *Repo) FindObject(name string, want object.ObjectType) (object.Hash, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("find object: empty name")
	}

	if rev, path, ok := strings.Cut(name, ":"); ok {
		h, err := r.findEntryAtPath(rev, path)
		if err != nil {
			return "", err
		}
		return r.Peel(h, want)
	}

	candidates, err := r.nameCandidates(name)
	if err != nil {
		return "", err
	}
	switch len(candidates) {
	case 0:
		return "", fmt.Errorf("find object %q: %w", name, object.ErrNotFound)
	case 1:
		return r.Peel(candidates[0], want)
	default:
		return "", &object.AmbiguousError{Prefix: name, Candidates: candidates}
	}
}

func (r *Repo) nameCandidates(name string) ([]object.Hash, error) {
	if name == "HEAD" {
		h, err := r.ResolveRef("HEAD")
		if err != nil {
			return nil, err
		}
		return []object.Hash{h}, nil
	}

	// A full hash is taken at face value.
	if h, err := object.ParseHash(name); err == nil {
		return []object.Hash{h}, nil
	}

	var out []object.Hash
	add := func(h object.Hash) {
		if !slices.Contains(out, h) {
			out = append(out, h)
		}
	}

	lower := strings.ToLower(name)
	if len(lower) >= object.MinPrefixLen && isHexString(lower) {
		hashes, err := r.Store.Candidates(lower)
		if err != nil {
			return nil, err
		}
		for _, h := range hashes {
			add(h)
		}
	}

	refNames := []string{"refs/tags/" + name, "refs/heads/" + name, "refs/remotes/" + name}
	if strings.HasPrefix(name, "refs/") {
		refNames = []string{name}
	}
	for _, ref := range refNames {
		h, err := r.ResolveRef(ref)
		if err != nil {
			if errors.Is(err, ErrRefNotFound) || errors.Is(err, ErrInvalidRefName) {
				continue
			}
			return nil, err
		}
		add(h)
	}
	slices.Sort(out)
	return out, nil
}

// Peel follows h until it names an object of type want. An empty want
// returns h unchanged.
func (r *Repo) Peel(h object.Hash, want object.ObjectType) (object.Hash, error) {
	if want == "" {
		return h, nil
	}
	for range maxPeelDepth {
		obj, err := r.Store.ReadObject(h)
		if err != nil {
			return "", err
		}
		if obj.Type() == want {
			return h, nil
		}
		switch o := obj.(type) {
		case *object.Tag:
			h = o.Target()
		case *object.Commit:
			if want != object.TypeTree {
				return "", fmt.Errorf("peel %s: %w: commit is not a %s", h, object.ErrTypeMismatch, want)
			}
			h = o.TreeHash()
		default:
			return "", fmt.Errorf("peel %s: %w: %s is not a %s", h, object.ErrTypeMismatch, obj.Type(), want)
		}
	}
	return "", fmt.Errorf("peel %s: tag chain longer than %d", h, maxPeelDepth)
}

func (r *Repo) findEntryAtPath(rev, path string) (object.Hash, error) {
	if rev == "" {
		rev = "HEAD"
	}
	tree, err := r.FindObject(rev, object.TypeTree)
	if err != nil {
		return "", err
	}
	path = strings.Trim(path, "/")
	if path == "" {
		return tree, nil
	}
	entry, ok, err := r.TreeEntryAtPath(tree, path)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("find object %s:%s: %w", rev, path, object.ErrNotFound)
	}
	return entry.Hash, nil
}

// TreeEntryAtPath looks up a slash-separated path inside a tree. Directory
// entries are returned too.
func (r *Repo) TreeEntryAtPath(treeHash object.Hash, relPath string) (object.TreeEntry, bool, error) {
	parts := strings.Split(relPath, "/")
	current := treeHash

	for i, part := range parts {
		treeObj, err := r.Store.ReadTree(current)
		if err != nil {
			return object.TreeEntry{}, false, fmt.Errorf("read tree %s: %w", current, err)
		}
		entry, found := treeObj.Lookup(part)
		if !found {
			return object.TreeEntry{}, false, nil
		}
		if i == len(parts)-1 {
			return entry, true, nil
		}
		if !entry.Mode.IsDir() {
			return object.TreeEntry{}, false, nil
		}
		current = entry.Hash
	}
	return object.TreeEntry{}, false, nil
}

func isHexString(s string) bool {
	for _, c := range s {
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f') {
			return false
		}
	}
	return true
}
