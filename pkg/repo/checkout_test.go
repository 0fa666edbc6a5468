package repo

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zlib"
	"github.com/odvcencio/strata/pkg/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckoutRestoresTree(t *testing.T) {
	r := initTestRepo(t)
	writeFile(t, r.RootDir, "README.md", "# project\n")
	writeFile(t, r.RootDir, "src/main.go", "package main\n")
	writeFile(t, r.RootDir, "bin/tool", "#!/bin/sh\necho hi\n")
	require.NoError(t, os.Chmod(filepath.Join(r.RootDir, "bin", "tool"), 0o755))
	require.NoError(t, os.Symlink("README.md", filepath.Join(r.RootDir, "link")))
	commitWorktree(t, r, "snapshot")

	dest := filepath.Join(t.TempDir(), "out")
	require.NoError(t, r.Checkout("HEAD", dest))

	data, err := os.ReadFile(filepath.Join(dest, "src", "main.go"))
	require.NoError(t, err)
	assert.Equal(t, "package main\n", string(data))

	info, err := os.Stat(filepath.Join(dest, "bin", "tool"))
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&0o100, "executable bit restored")

	target, err := os.Readlink(filepath.Join(dest, "link"))
	require.NoError(t, err)
	assert.Equal(t, "README.md", target)

	// Round trip: the checked-out copy hashes to the same tree.
	orig, err := r.FindObject("HEAD", object.TypeTree)
	require.NoError(t, err)
	copyTree, err := r.WriteTreeFromDir(dest)
	require.NoError(t, err)
	assert.Equal(t, orig, copyTree)
}

func TestCheckoutRefusesNonEmptyDir(t *testing.T) {
	r := initTestRepo(t)
	writeFile(t, r.RootDir, "a.txt", "a\n")
	commitWorktree(t, r, "snapshot")

	dest := t.TempDir()
	writeFile(t, dest, "existing", "keep me\n")
	assert.Error(t, r.Checkout("HEAD", dest))

	data, err := os.ReadFile(filepath.Join(dest, "existing"))
	require.NoError(t, err)
	assert.Equal(t, "keep me\n", string(data))
}

func TestCheckoutFromTreeHash(t *testing.T) {
	r := initTestRepo(t)
	writeFile(t, r.RootDir, "x/y.txt", "y\n")
	tree, err := r.WriteTreeFromDir(r.RootDir)
	require.NoError(t, err)

	dest := filepath.Join(t.TempDir(), "out")
	require.NoError(t, r.Checkout(string(tree), dest))
	data, err := os.ReadFile(filepath.Join(dest, "x", "y.txt"))
	require.NoError(t, err)
	assert.Equal(t, "y\n", string(data))
}

// storeRaw writes envelope as a loose object without the store's admission
// checks, the way a hostile peer or a damaged disk could.
func storeRaw(t *testing.T, r *Repo, envelope []byte) object.Hash {
	t.Helper()
	h := object.HashEnvelope(envelope)
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	_, err := zw.Write(envelope)
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	path := filepath.Join(r.Store.Dir(), string(h[:2]), string(h[2:]))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o444))
	return h
}

func TestCheckoutRejectsSymlinkAndDirWithSameName(t *testing.T) {
	r := initTestRepo(t)
	outside := t.TempDir()
	evil := blobHash(t, r, "escaped\n")
	sub, err := r.Store.WriteObject(&object.Tree{Entries: []object.TreeEntry{{Mode: object.ModeFile, Name: "evil", Hash: evil}}})
	require.NoError(t, err)
	target := blobHash(t, r, outside)

	var payload []byte
	payload = append(payload, "120000 a\x00"...)
	payload = append(payload, target.Bytes()...)
	payload = append(payload, "40000 a\x00"...)
	payload = append(payload, sub.Bytes()...)
	root := storeRaw(t, r, object.Frame(object.TypeTree, payload))

	dest := filepath.Join(t.TempDir(), "out")
	err = r.Checkout(string(root), dest)
	assert.ErrorIs(t, err, object.ErrMalformedTree)
	_, err = os.Lstat(filepath.Join(outside, "evil"))
	assert.True(t, os.IsNotExist(err), "nothing written outside dest")
}

func TestCheckoutFileRefusesSymlinkedParent(t *testing.T) {
	r := initTestRepo(t)
	outside := t.TempDir()
	dest := t.TempDir()
	require.NoError(t, os.Symlink(outside, filepath.Join(dest, "a")))

	blob := blobHash(t, r, "escaped\n")
	err := r.checkoutFile(dest, object.TreeFile{Path: "a/evil", Hash: blob, Mode: object.ModeFile})
	assert.Error(t, err)
	_, err = os.Lstat(filepath.Join(outside, "evil"))
	assert.True(t, os.IsNotExist(err), "nothing written outside dest")
}

func TestCheckoutFileNeverOverwrites(t *testing.T) {
	r := initTestRepo(t)
	dest := t.TempDir()
	writeFile(t, dest, "f", "original\n")

	blob := blobHash(t, r, "replacement\n")
	assert.Error(t, r.checkoutFile(dest, object.TreeFile{Path: "f", Hash: blob, Mode: object.ModeFile}))
	data, err := os.ReadFile(filepath.Join(dest, "f"))
	require.NoError(t, err)
	assert.Equal(t, "original\n", string(data))
}
