package repo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/odvcencio/strata/pkg/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func commitWorktree(t *testing.T, r *Repo, message string) object.Hash {
	t.Helper()
	tree, err := r.WriteTreeFromDir(r.RootDir)
	require.NoError(t, err)
	h, err := r.Commit(tree, message)
	require.NoError(t, err)
	return h
}

func TestWriteTreeFromDir(t *testing.T) {
	r := initTestRepo(t)
	writeFile(t, r.RootDir, "README.md", "# hi\n")
	writeFile(t, r.RootDir, "pkg/util/util.go", "package util\n")
	writeFile(t, r.RootDir, "run.sh", "#!/bin/sh\n")
	require.NoError(t, os.Chmod(filepath.Join(r.RootDir, "run.sh"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(r.RootDir, "empty", "nested"), 0o755))
	require.NoError(t, os.Symlink("README.md", filepath.Join(r.RootDir, "link")))

	tree, err := r.WriteTreeFromDir(r.RootDir)
	require.NoError(t, err)

	files, err := r.FlattenTree(tree)
	require.NoError(t, err)
	got := make(map[string]object.FileMode, len(files))
	for _, f := range files {
		got[f.Path] = f.Mode
	}
	assert.Equal(t, map[string]object.FileMode{
		"README.md":        object.ModeFile,
		"link":             object.ModeSymlink,
		"pkg/util/util.go": object.ModeFile,
		"run.sh":           object.ModeExecutable,
	}, got)

	again, err := r.WriteTreeFromDir(r.RootDir)
	require.NoError(t, err)
	assert.Equal(t, tree, again, "identical content yields the identical tree")

	link, ok, err := r.TreeEntryAtPath(tree, "link")
	require.NoError(t, err)
	require.True(t, ok)
	target, err := r.Store.ReadBlob(link.Hash)
	require.NoError(t, err)
	assert.Equal(t, "README.md", string(target.Data))
}

func TestWriteTreeFromEmptyDir(t *testing.T) {
	r := initTestRepo(t)
	tree, err := r.WriteTreeFromDir(r.RootDir)
	require.NoError(t, err)
	assert.Equal(t, object.Hash("4b825dc642cb6eb9a060e54bf8d69288fbee4904"), tree)
}

func TestCommitAdvancesBranch(t *testing.T) {
	r := initTestRepo(t)
	writeFile(t, r.RootDir, "a.txt", "one\n")
	first := commitWorktree(t, r, "first")

	writeFile(t, r.RootDir, "a.txt", "two\n")
	second := commitWorktree(t, r, "second")

	head, err := r.ResolveRef("HEAD")
	require.NoError(t, err)
	assert.Equal(t, second, head)

	c, err := r.Store.ReadCommit(second)
	require.NoError(t, err)
	assert.Equal(t, []object.Hash{first}, c.Parents())
	assert.Equal(t, "second\n", c.MessageString())
	author, err := c.Author()
	require.NoError(t, err)
	assert.Equal(t, "Test Author", author.Name)
	assert.Equal(t, int64(1700000000), author.When.Unix())

	root, err := r.Store.ReadCommit(first)
	require.NoError(t, err)
	assert.Empty(t, root.Parents())
}

func TestCommitDetachedHead(t *testing.T) {
	r := initTestRepo(t)
	writeFile(t, r.RootDir, "a.txt", "one\n")
	first := commitWorktree(t, r, "first")

	require.NoError(t, os.WriteFile(filepath.Join(r.GitDir, "HEAD"), []byte(string(first)+"\n"), 0o644))
	writeFile(t, r.RootDir, "b.txt", "detached\n")
	second := commitWorktree(t, r, "on detached head")

	head, err := r.Head()
	require.NoError(t, err)
	assert.Equal(t, string(second), head)
	master, err := r.ResolveRef("master")
	require.NoError(t, err)
	assert.Equal(t, first, master, "branch untouched while detached")
}

func TestCommitTreeValidatesInputs(t *testing.T) {
	r := initTestRepo(t)
	blob := blobHash(t, r, "not a tree")
	_, err := r.CommitTree(blob, nil, "msg")
	assert.ErrorIs(t, err, object.ErrTypeMismatch)

	tree, err := r.WriteTreeFromDir(r.RootDir)
	require.NoError(t, err)
	_, err = r.CommitTree(tree, []object.Hash{object.HashObject(object.TypeCommit, []byte("ghost"))}, "msg")
	assert.ErrorIs(t, err, object.ErrNotFound)
}

func TestLogMergeHistory(t *testing.T) {
	r := initTestRepo(t)
	tree, err := r.WriteTreeFromDir(r.RootDir)
	require.NoError(t, err)

	a, err := r.CommitTree(tree, nil, "a")
	require.NoError(t, err)
	b, err := r.CommitTree(tree, []object.Hash{a}, "b")
	require.NoError(t, err)
	c, err := r.CommitTree(tree, []object.Hash{a}, "c")
	require.NoError(t, err)
	d, err := r.CommitTree(tree, []object.Hash{b, c}, "d")
	require.NoError(t, err)

	entries, err := r.Log(d, 0)
	require.NoError(t, err)
	var got []object.Hash
	for _, e := range entries {
		got = append(got, e.Hash)
	}
	assert.Equal(t, []object.Hash{d, b, c, a}, got)

	limited, err := r.Log(d, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestWriteTreeFromDirHonorsIgnoreFile(t *testing.T) {
	r := initTestRepo(t)
	writeFile(t, r.RootDir, ".gitignore", "# generated\n*.log\nbuild\n")
	writeFile(t, r.RootDir, "main.go", "package main\n")
	writeFile(t, r.RootDir, "debug.log", "noise\n")
	writeFile(t, r.RootDir, "build/out.bin", "bin\n")
	writeFile(t, r.RootDir, "docs/notes.log", "noise\n")

	tree, err := r.WriteTreeFromDir(r.RootDir)
	require.NoError(t, err)
	files, err := r.FlattenTree(tree)
	require.NoError(t, err)

	var paths []string
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	assert.Equal(t, []string{".gitignore", "main.go"}, paths)
}
