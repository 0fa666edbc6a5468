package repo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/odvcencio/strata/pkg/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommitWritesReflog(t *testing.T) {
	r := initTestRepo(t)
	writeFile(t, r.RootDir, "a.txt", "one\n")
	first := commitWorktree(t, r, "first")
	writeFile(t, r.RootDir, "a.txt", "two\n")
	second := commitWorktree(t, r, "second\n\nbody text")

	entries, err := r.ReadReflog("master", 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, second, entries[0].NewHash)
	assert.Equal(t, first, entries[0].OldHash)
	assert.Equal(t, "commit: second", entries[0].Reason)
	assert.Equal(t, zeroHash, entries[1].OldHash)
	assert.Equal(t, "commit (initial): first", entries[1].Reason)
	assert.Equal(t, "Test Author", entries[1].Identity.Name)
	assert.Equal(t, int64(1700000000), entries[1].Identity.When.Unix())

	head, err := r.ReadReflog("HEAD", 1)
	require.NoError(t, err)
	require.Len(t, head, 1)
	assert.Equal(t, second, head[0].NewHash)
}

func TestReflogSkipsTagsAndDeletedRefs(t *testing.T) {
	r := initTestRepo(t)
	h := blobHash(t, r, "x")
	require.NoError(t, r.UpdateRef("refs/tags/v1", h))
	entries, err := r.ReadReflog("refs/tags/v1", 0)
	require.NoError(t, err)
	assert.Empty(t, entries)

	require.NoError(t, r.CreateBranch("topic", h))
	entries, err = r.ReadReflog("topic", 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "branch: Created from "+string(h), entries[0].Reason)

	require.NoError(t, r.DeleteRef("refs/heads/topic"))
	entries, err = r.ReadReflog("topic", 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestReflogAppendFailureKeepsRefUpdate(t *testing.T) {
	r := initTestRepo(t)
	h := blobHash(t, r, "x")
	// A file where the logs directory should be makes the append fail.
	require.NoError(t, os.WriteFile(filepath.Join(r.GitDir, "logs"), nil, 0o644))

	err := r.UpdateRef("refs/heads/main", h)
	require.ErrorIs(t, err, ErrRefUpdatedButReflogAppendFailed)
	var logErr *RefUpdateReflogError
	require.ErrorAs(t, err, &logErr)
	assert.Equal(t, "refs/heads/main", logErr.Ref)
	assert.Equal(t, object.Hash(""), logErr.OldHash)

	got, err := r.ResolveRef("main")
	require.NoError(t, err)
	assert.Equal(t, h, got)
}
