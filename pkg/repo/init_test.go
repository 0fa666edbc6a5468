package repo

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/odvcencio/strata/pkg/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testClock = WithClock(func() time.Time { return time.Unix(1700000000, 0).UTC() })

func initTestRepo(t *testing.T) *Repo {
	t.Helper()
	r, err := Init(t.TempDir(), testClock)
	require.NoError(t, err)
	r.Config.Set("user", "name", "Test Author")
	r.Config.Set("user", "email", "test@example.com")
	require.NoError(t, r.Config.Save())
	return r
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestInitCreatesStructure(t *testing.T) {
	dir := t.TempDir()
	r, err := Init(dir)
	require.NoError(t, err)

	gitDir := filepath.Join(dir, ".git")
	assert.Equal(t, gitDir, r.GitDir)
	for _, d := range []string{"objects", "refs/heads", "refs/tags", "branches"} {
		info, err := os.Stat(filepath.Join(gitDir, filepath.FromSlash(d)))
		require.NoError(t, err, d)
		assert.True(t, info.IsDir(), d)
	}

	head, err := os.ReadFile(filepath.Join(gitDir, "HEAD"))
	require.NoError(t, err)
	assert.Equal(t, "ref: refs/heads/master\n", string(head))

	cfg, err := LoadConfig(filepath.Join(gitDir, "config"))
	require.NoError(t, err)
	v, err := cfg.FormatVersion()
	require.NoError(t, err)
	assert.Equal(t, 0, v)
	assert.Equal(t, "false", cfg.Get("core", "bare"))
}

func TestInitExistingRepoFails(t *testing.T) {
	dir := t.TempDir()
	_, err := Init(dir)
	require.NoError(t, err)
	_, err = Init(dir)
	assert.Error(t, err)
}

func TestOpenWalksUpward(t *testing.T) {
	r := initTestRepo(t)
	nested := filepath.Join(r.RootDir, "a", "b", "c")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	opened, err := Open(nested)
	require.NoError(t, err)
	assert.Equal(t, r.RootDir, opened.RootDir)
	assert.Equal(t, r.GitDir, opened.GitDir)
	assert.Equal(t, "Test Author", opened.Config.Get("user", "name"))
}

func TestOpenNotARepository(t *testing.T) {
	_, err := Open(t.TempDir())
	assert.ErrorIs(t, err, ErrNotRepository)
}

func TestOpenRefusesUnknownFormatVersion(t *testing.T) {
	r := initTestRepo(t)
	r.Config.Set("core", "repositoryformatversion", "1")
	require.NoError(t, r.Config.Save())

	_, err := Open(r.RootDir)
	assert.ErrorIs(t, err, ErrUnsupportedFormatVersion)

	r.Config.Set("core", "repositoryformatversion", "banana")
	require.NoError(t, r.Config.Save())
	_, err = Open(r.RootDir)
	assert.ErrorIs(t, err, ErrUnsupportedFormatVersion)
}

func TestOpenRequiresConfig(t *testing.T) {
	r := initTestRepo(t)
	require.NoError(t, os.Remove(filepath.Join(r.GitDir, "config")))
	_, err := Open(r.RootDir)
	assert.Error(t, err)
}

func TestRepoStoreIsUnderObjects(t *testing.T) {
	r := initTestRepo(t)
	h, err := r.Store.WriteObject(&object.Blob{Data: []byte("x")})
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(r.GitDir, "objects", string(h[:2]), string(h[2:])))
	assert.NoError(t, err)
}

func TestConfigIdentity(t *testing.T) {
	r := initTestRepo(t)
	when := time.Unix(42, 0).UTC()
	sig := r.Config.Identity(when)
	assert.Equal(t, "Test Author", sig.Name)
	assert.Equal(t, "test@example.com", sig.Email)
	assert.Equal(t, when, sig.When)

	blank, err := Init(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "unknown", blank.Config.Identity(when).Name)
}
