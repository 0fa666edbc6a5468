package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/odvcencio/strata/pkg/object"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Checkout materializes the tree named by treeish (a commit, tag or tree)
// into dest. dest must be missing or an empty directory; Checkout never
// overwrites existing files.
//
//  1. Resolve treeish to a tree.
//  2. Walk the tree lazily, writing each file as it is reached.
//  3. Recreate symlinks and executable bits from entry modes.
func (r *Repo) Checkout(treeish, dest string) error {
	tree, err := r.FindObject(treeish, object.TypeTree)
	if err != nil {
		return fmt.Errorf("checkout: %w", err)
	}

	if err := ensureEmptyDir(dest); err != nil {
		return fmt.Errorf("checkout: %w", err)
	}

	n := 0
	for f, err := range object.WalkTree(r.Store, tree) {
		if err != nil {
			return fmt.Errorf("checkout: %w", err)
		}
		if err := r.checkoutFile(dest, f); err != nil {
			return fmt.Errorf("checkout %q: %w", f.Path, err)
		}
		n++
	}
	r.logger.Debug("checkout finished", zap.String("tree", string(tree)), zap.Int("files", n))
	return nil
}

func (r *Repo) checkoutFile(dest string, f object.TreeFile) error {
	rel := filepath.FromSlash(f.Path)
	if !filepath.IsLocal(rel) {
		return fmt.Errorf("path escapes %s", dest)
	}
	if err := makeParentDirs(dest, filepath.Dir(rel)); err != nil {
		return err
	}
	absPath := filepath.Join(dest, rel)

	if f.Mode == object.ModeGitlink {
		// The commit lives in another repository; leave an empty directory.
		return os.Mkdir(absPath, 0o755)
	}

	blob, err := r.Store.ReadBlob(f.Hash)
	if err != nil {
		return err
	}
	if f.Mode == object.ModeSymlink {
		return os.Symlink(filepath.FromSlash(string(blob.Data)), absPath)
	}
	out, err := os.OpenFile(absPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, f.Mode.Perm())
	if err != nil {
		return err
	}
	_, err = out.Write(blob.Data)
	return multierr.Append(err, out.Close())
}

// makeParentDirs creates each directory of rel under dest. A component that
// already exists must be a real directory; following a symlink written
// earlier in the same checkout could place files outside dest.
func makeParentDirs(dest, rel string) error {
	if rel == "." {
		return nil
	}
	dir := dest
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		dir = filepath.Join(dir, part)
		info, err := os.Lstat(dir)
		switch {
		case errors.Is(err, os.ErrNotExist):
			if err := os.Mkdir(dir, 0o755); err != nil {
				return err
			}
		case err != nil:
			return err
		case info.Mode()&os.ModeSymlink != 0:
			return fmt.Errorf("%s is a symlink", dir)
		case !info.IsDir():
			return fmt.Errorf("%s is not a directory", dir)
		}
	}
	return nil
}

func ensureEmptyDir(dir string) error {
	info, err := os.Stat(dir)
	if errors.Is(err, os.ErrNotExist) {
		return os.MkdirAll(dir, 0o755)
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	if len(entries) > 0 {
		return fmt.Errorf("%s is not empty", dir)
	}
	return nil
}
