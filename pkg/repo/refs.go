package repo

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/odvcencio/strata/pkg/object"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	symrefPrefix = "ref: "
	// maxSymrefDepth bounds "ref: " indirection chains.
	maxSymrefDepth = 10

	refLockRetryDelay = 5 * time.Millisecond
	refLockWaitLimit  = 2 * time.Second
)

var (
	ErrRefNotFound    = fmt.Errorf("ref %w", object.ErrNotFound)
	ErrRefCASMismatch = errors.New("ref compare-and-swap mismatch")
	ErrInvalidRefName = errors.New("invalid ref name")
	ErrSymrefLoop     = errors.New("symbolic ref loop")

	ErrRefUpdatedButReflogAppendFailed = errors.New("ref updated but reflog append failed")
)

// RefUpdateReflogError indicates the ref file update succeeded, but appending
// the corresponding reflog entry failed.
type RefUpdateReflogError struct {
	Ref     string
	OldHash object.Hash
	NewHash object.Hash
	Err     error
}

func (e *RefUpdateReflogError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("update ref %q: %s (old=%s new=%s): %v",
		e.Ref, ErrRefUpdatedButReflogAppendFailed, e.OldHash, e.NewHash, e.Err)
}

func (e *RefUpdateReflogError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func (e *RefUpdateReflogError) Is(target error) bool {
	return target == ErrRefUpdatedButReflogAppendFailed
}

// Ref is a resolved reference.
type Ref struct {
	Name string // full name, e.g. "refs/heads/master"
	Hash object.Hash
}

func (r *Repo) refPath(name string) string {
	return filepath.Join(r.GitDir, filepath.FromSlash(name))
}

func validateRefName(name string) error {
	if name == "HEAD" {
		return nil
	}
	if !strings.HasPrefix(name, "refs/") || strings.HasSuffix(name, "/") ||
		strings.Contains(name, "..") || strings.Contains(name, "//") ||
		strings.HasSuffix(name, ".lock") || strings.ContainsAny(name, " \t\n\r~^:?*[\\") {
		return fmt.Errorf("%w: %q", ErrInvalidRefName, name)
	}
	return nil
}

// readRefFile returns the raw content of a ref file without its trailing
// newline.
func (r *Repo) readRefFile(name string) (string, error) {
	data, err := os.ReadFile(r.refPath(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrRefNotFound, name)
		}
		return "", fmt.Errorf("read ref %s: %w", name, err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

// Head reads .git/HEAD. If the content starts with "ref: ", it returns the
// ref path (e.g., "refs/heads/master"). Otherwise it returns the raw content
// as a detached hash string.
func (r *Repo) Head() (string, error) {
	content, err := r.readRefFile("HEAD")
	if err != nil {
		return "", fmt.Errorf("head: %w", err)
	}
	if target, ok := strings.CutPrefix(content, symrefPrefix); ok {
		return target, nil
	}
	return content, nil
}

// CurrentBranch returns the branch HEAD points at, or "" when detached.
func (r *Repo) CurrentBranch() (string, error) {
	head, err := r.Head()
	if err != nil {
		return "", fmt.Errorf("current branch: %w", err)
	}
	if name, ok := strings.CutPrefix(head, "refs/heads/"); ok {
		return name, nil
	}
	return "", nil
}

// ResolveRef resolves a ref name to an object hash, following symbolic
// "ref: " indirections.
//
// Name forms:
//  1. "HEAD".
//  2. Names starting with "refs/" are read from .git/<name>.
//  3. Anything else is looked up as refs/heads/<name>.
func (r *Repo) ResolveRef(name string) (object.Hash, error) {
	if name != "HEAD" && !strings.HasPrefix(name, "refs/") {
		name = "refs/heads/" + name
	}
	if err := validateRefName(name); err != nil {
		return "", fmt.Errorf("resolve ref: %w", err)
	}

	seen := make([]string, 0, 2)
	for depth := 0; ; depth++ {
		if depth >= maxSymrefDepth || slices.Contains(seen, name) {
			return "", fmt.Errorf("resolve ref %q: %w: %s", seen[0], ErrSymrefLoop, strings.Join(append(seen, name), " -> "))
		}
		seen = append(seen, name)

		content, err := r.readRefFile(name)
		if err != nil {
			return "", fmt.Errorf("resolve ref %q: %w", seen[0], err)
		}
		if target, ok := strings.CutPrefix(content, symrefPrefix); ok {
			name = strings.TrimSpace(target)
			if err := validateRefName(name); err != nil {
				return "", fmt.Errorf("resolve ref %q: %w", seen[0], err)
			}
			continue
		}
		h, err := object.ParseHash(content)
		if err != nil {
			return "", fmt.Errorf("resolve ref %q: %w", seen[0], err)
		}
		return h, nil
	}
}

// UpdateRef points name at h. If name is a symbolic ref (such as HEAD on a
// branch), the ref it points at is updated instead.
func (r *Repo) UpdateRef(name string, h object.Hash) error {
	return r.UpdateRefCAS(name, h, nil)
}

// UpdateRefCAS writes h to the named ref under the repository's ref lock,
// replacing the file atomically. If expectedOld is non-nil the update only
// succeeds when the current value equals *expectedOld; "" means the ref must
// not exist yet.
//
// Branch and HEAD updates are journaled under .git/logs after the rename; if
// that append fails the ref update stands and a *RefUpdateReflogError is
// returned.
func (r *Repo) UpdateRefCAS(name string, h object.Hash, expectedOld *object.Hash) error {
	return r.updateRef(name, h, expectedOld, "update")
}

func (r *Repo) updateRef(name string, h object.Hash, expectedOld *object.Hash, reason string) error {
	if err := validateRefName(name); err != nil {
		return fmt.Errorf("update ref: %w", err)
	}
	if _, err := object.ParseHash(string(h)); err != nil {
		return fmt.Errorf("update ref %q: %w", name, err)
	}

	return r.withRefLock(func() error {
		target, err := r.symrefTarget(name)
		if err != nil {
			return fmt.Errorf("update ref %q: %w", name, err)
		}

		oldHash, err := r.ResolveRef(target)
		if err != nil && !errors.Is(err, ErrRefNotFound) {
			return fmt.Errorf("update ref %q: read old hash: %w", name, err)
		}
		if expectedOld != nil && oldHash != *expectedOld {
			return fmt.Errorf("update ref %q: %w (expected %q, found %q)", name, ErrRefCASMismatch, *expectedOld, oldHash)
		}

		path := r.refPath(target)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("update ref %q: mkdir: %w", name, err)
		}
		if err := writeFileAtomic(path, []byte(string(h)+"\n"), ".ref-tmp-*"); err != nil {
			return fmt.Errorf("update ref %q: %w", name, err)
		}
		r.logger.Debug("ref updated",
			zap.String("ref", target),
			zap.String("old", string(oldHash)),
			zap.String("new", string(h)),
		)

		var logErr error
		if target != name {
			logErr = r.appendReflog(name, oldHash, h, reason)
		}
		logErr = multierr.Append(logErr, r.appendReflog(target, oldHash, h, reason))
		if logErr != nil {
			return &RefUpdateReflogError{Ref: target, OldHash: oldHash, NewHash: h, Err: logErr}
		}
		return nil
	})
}

// SetSymbolicRef makes name an indirection to target, e.g. HEAD -> refs/heads/dev.
func (r *Repo) SetSymbolicRef(name, target string) error {
	if err := validateRefName(name); err != nil {
		return fmt.Errorf("set symbolic ref: %w", err)
	}
	if err := validateRefName(target); err != nil {
		return fmt.Errorf("set symbolic ref: %w", err)
	}
	return r.withRefLock(func() error {
		path := r.refPath(name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("set symbolic ref %q: mkdir: %w", name, err)
		}
		if err := writeFileAtomic(path, []byte(symrefPrefix+target+"\n"), ".ref-tmp-*"); err != nil {
			return fmt.Errorf("set symbolic ref %q: %w", name, err)
		}
		return nil
	})
}

// DeleteRef removes a direct ref file. Objects it pointed at are untouched.
func (r *Repo) DeleteRef(name string) error {
	if err := validateRefName(name); err != nil || name == "HEAD" {
		return fmt.Errorf("delete ref: %w: %q", ErrInvalidRefName, name)
	}
	return r.withRefLock(func() error {
		if err := os.Remove(r.refPath(name)); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("delete ref: %w: %s", ErrRefNotFound, name)
			}
			return fmt.Errorf("delete ref %q: %w", name, err)
		}
		if err := os.Remove(r.reflogPath(name)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("delete ref %q: reflog: %w", name, err)
		}
		return nil
	})
}

// symrefTarget follows symbolic indirections from name to the direct ref
// that should receive an update. Missing refs end the chain.
func (r *Repo) symrefTarget(name string) (string, error) {
	for depth := 0; depth < maxSymrefDepth; depth++ {
		content, err := r.readRefFile(name)
		if errors.Is(err, ErrRefNotFound) {
			return name, nil
		}
		if err != nil {
			return "", err
		}
		target, ok := strings.CutPrefix(content, symrefPrefix)
		if !ok {
			return name, nil
		}
		name = strings.TrimSpace(target)
		if err := validateRefName(name); err != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("%w at %s", ErrSymrefLoop, name)
}

// withRefLock serializes ref mutations across processes with an advisory
// lock on .git/refs.lock.
func (r *Repo) withRefLock(fn func() error) (retErr error) {
	lock := flock.New(filepath.Join(r.GitDir, "refs.lock"))
	ctx, cancel := context.WithTimeout(context.Background(), refLockWaitLimit)
	defer cancel()

	locked, err := lock.TryLockContext(ctx, refLockRetryDelay)
	if err != nil {
		return fmt.Errorf("ref lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("ref lock: timeout waiting for %s", lock.Path())
	}
	defer func() {
		retErr = multierr.Append(retErr, lock.Unlock())
	}()
	return fn()
}

// ListRefs lists references under .git/refs, resolved to hashes and sorted
// by name. prefix narrows the listing, e.g. "refs/tags".
func (r *Repo) ListRefs(prefix string) ([]Ref, error) {
	root := filepath.Join(r.GitDir, "refs")
	dir := root
	if prefix = strings.Trim(prefix, "/"); prefix != "" {
		if !strings.HasPrefix(prefix, "refs") {
			return nil, fmt.Errorf("list refs: %w: %q", ErrInvalidRefName, prefix)
		}
		dir = r.refPath(prefix)
	}

	var refs []Ref
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".") || strings.HasSuffix(d.Name(), ".lock") {
			return nil
		}
		rel, err := filepath.Rel(r.GitDir, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		h, err := r.ResolveRef(name)
		if err != nil {
			return err
		}
		refs = append(refs, Ref{Name: name, Hash: h})
		return nil
	})
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list refs: %w", err)
	}
	slices.SortFunc(refs, func(a, b Ref) int { return strings.Compare(a.Name, b.Name) })
	return refs, nil
}
