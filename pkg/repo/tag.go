package repo

import (
	"fmt"
	"strings"

	"github.com/odvcencio/strata/pkg/object"
)

// CreateTag creates or updates a lightweight tag: a ref under refs/tags/
// pointing straight at target, with no tag object.
func (r *Repo) CreateTag(name string, target object.Hash, force bool) error {
	name = strings.TrimSpace(name)
	if err := validateTagName(name); err != nil {
		return fmt.Errorf("create tag: %w", err)
	}
	if !r.Store.Has(target) {
		return fmt.Errorf("create tag: target %s: %w", target, object.ErrNotFound)
	}
	if err := r.updateTagRef(name, target, force); err != nil {
		return fmt.Errorf("create tag: %w", err)
	}
	return nil
}

// CreateAnnotatedTag writes a tag object for target and points
// refs/tags/<name> at it.
func (r *Repo) CreateAnnotatedTag(name string, target object.Hash, message string, force bool) (object.Hash, error) {
	name = strings.TrimSpace(name)
	if err := validateTagName(name); err != nil {
		return "", fmt.Errorf("create annotated tag: %w", err)
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return "", fmt.Errorf("create annotated tag: message is required")
	}

	targetObj, err := r.Store.ReadObject(target)
	if err != nil {
		return "", fmt.Errorf("create annotated tag: read target: %w", err)
	}

	tag := object.NewTag(target, targetObj.Type(), name, r.Config.Identity(r.now()), message+"\n")
	tagHash, err := r.Store.WriteObject(tag)
	if err != nil {
		return "", fmt.Errorf("create annotated tag: write tag object: %w", err)
	}
	if err := r.updateTagRef(name, tagHash, force); err != nil {
		return "", fmt.Errorf("create annotated tag: %w", err)
	}
	return tagHash, nil
}

func (r *Repo) updateTagRef(name string, h object.Hash, force bool) error {
	refName := "refs/tags/" + name
	if force {
		return r.UpdateRef(refName, h)
	}
	noRef := object.Hash("")
	if err := r.UpdateRefCAS(refName, h, &noRef); err != nil {
		return fmt.Errorf("tag %q already exists: %w", name, err)
	}
	return nil
}

// DeleteTag removes refs/tags/<name>. A tag object it pointed at stays in
// the store.
func (r *Repo) DeleteTag(name string) error {
	name = strings.TrimSpace(name)
	if err := validateTagName(name); err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	if err := r.DeleteRef("refs/tags/" + name); err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	return nil
}

// ResolveTag resolves a tag name under refs/tags/ to the hash the ref holds
// (a tag object for annotated tags).
func (r *Repo) ResolveTag(name string) (object.Hash, error) {
	name = strings.TrimSpace(name)
	if err := validateTagName(name); err != nil {
		return "", fmt.Errorf("resolve tag: %w", err)
	}
	return r.ResolveRef("refs/tags/" + name)
}

// ListTags lists tag names sorted alphabetically.
func (r *Repo) ListTags() ([]string, error) {
	refs, err := r.ListRefs("refs/tags")
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	names := make([]string, 0, len(refs))
	for _, ref := range refs {
		names = append(names, strings.TrimPrefix(ref.Name, "refs/tags/"))
	}
	return names, nil
}

func validateTagName(name string) error {
	if name == "" {
		return fmt.Errorf("tag name is required")
	}
	if strings.HasPrefix(name, "/") || strings.HasSuffix(name, "/") {
		return fmt.Errorf("invalid tag name %q", name)
	}
	if strings.Contains(name, "..") {
		return fmt.Errorf("invalid tag name %q", name)
	}
	if strings.ContainsAny(name, " \t\n\r") {
		return fmt.Errorf("invalid tag name %q", name)
	}
	return nil
}
