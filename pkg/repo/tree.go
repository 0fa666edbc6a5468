package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	gitignore "github.com/denormal/go-gitignore"
	"github.com/odvcencio/strata/pkg/object"
	"go.uber.org/zap"
)

// IgnoreFileName holds the ignore patterns honored by WriteTreeFromDir.
const IgnoreFileName = ".gitignore"

// WriteTreeFromDir stores every file under dir as blobs and trees and
// returns the root tree hash. The control directory is skipped, as are
// paths matched by dir/.gitignore and directories that contain no files.
func (r *Repo) WriteTreeFromDir(dir string) (object.Hash, error) {
	ignore, err := loadIgnore(dir)
	if err != nil {
		return "", fmt.Errorf("write tree: %w", err)
	}
	b := &treeBuilder{repo: r, root: dir, ignore: ignore}
	h, _, err := b.writeDir(dir, true)
	if err != nil {
		return "", fmt.Errorf("write tree: %w", err)
	}
	return h, nil
}

// loadIgnore compiles root/.gitignore. A missing file yields nil.
func loadIgnore(root string) (gitignore.GitIgnore, error) {
	f, err := os.Open(filepath.Join(root, IgnoreFileName))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", IgnoreFileName, err)
	}
	defer f.Close()
	// Malformed patterns are skipped; the rest still apply.
	return gitignore.New(f, root, func(gitignore.Error) bool { return true }), nil
}

type treeBuilder struct {
	repo   *Repo
	root   string
	ignore gitignore.GitIgnore
}

func (b *treeBuilder) ignored(path string, isDir bool) bool {
	if b.ignore == nil {
		return false
	}
	rel, err := filepath.Rel(b.root, path)
	if err != nil {
		return false
	}
	m := b.ignore.Relative(filepath.ToSlash(rel), isDir)
	return m != nil && m.Ignore()
}

// writeDir builds a Tree for one directory and writes it to the store.
// It reports false when the directory holds nothing worth recording.
func (b *treeBuilder) writeDir(dir string, top bool) (object.Hash, bool, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return "", false, err
	}

	var entries []object.TreeEntry
	for _, de := range dirEntries {
		name := de.Name()
		if name == ControlDirName {
			continue
		}
		path := filepath.Join(dir, name)
		info, err := os.Lstat(path)
		if err != nil {
			return "", false, err
		}

		mode := object.FileModeOf(info.Mode())
		if b.ignored(path, mode.IsDir()) {
			b.repo.logger.Debug("ignored", zap.String("path", path))
			continue
		}

		var h object.Hash
		switch {
		case mode.IsDir():
			sub, ok, err := b.writeDir(path, false)
			if err != nil {
				return "", false, err
			}
			if !ok {
				continue
			}
			h = sub
		case mode == object.ModeSymlink:
			target, err := os.Readlink(path)
			if err != nil {
				return "", false, err
			}
			if h, err = b.repo.Store.WriteObject(&object.Blob{Data: []byte(filepath.ToSlash(target))}); err != nil {
				return "", false, err
			}
		case info.Mode().IsRegular():
			data, err := os.ReadFile(path)
			if err != nil {
				return "", false, err
			}
			if h, err = b.repo.Store.WriteObject(&object.Blob{Data: data}); err != nil {
				return "", false, err
			}
		default:
			b.repo.logger.Debug("skipping special file", zap.String("path", path))
			continue
		}
		entries = append(entries, object.TreeEntry{Mode: mode, Name: name, Hash: h})
	}

	if len(entries) == 0 && !top {
		return "", false, nil
	}
	h, err := b.repo.Store.WriteObject(&object.Tree{Entries: entries})
	if err != nil {
		return "", false, fmt.Errorf("write tree %s: %w", dir, err)
	}
	return h, true, nil
}

// FlattenTree lists every file under a tree with its full path.
func (r *Repo) FlattenTree(h object.Hash) ([]object.TreeFile, error) {
	files, err := object.FlattenTree(r.Store, h)
	if err != nil {
		return nil, fmt.Errorf("flatten tree: %w", err)
	}
	return files, nil
}
