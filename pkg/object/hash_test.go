package object

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashEnvelopeKnownDigests(t *testing.T) {
	tests := []struct {
		name    string
		objType ObjectType
		payload string
		want    Hash
	}{
		{"empty blob", TypeBlob, "", "e69de29bb2d1d6434b8b29ae775ad8c2e48c5391"},
		{"hello world blob", TypeBlob, "hello world\n", "3b18e512dba79e4c8300dd08aeb37f8e728b8dad"},
		{"empty tree", TypeTree, "", "4b825dc642cb6eb9a060e54bf8d69288fbee4904"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			env := Frame(tc.objType, []byte(tc.payload))
			assert.Equal(t, tc.want, HashEnvelope(env))
			assert.Equal(t, tc.want, HashObject(tc.objType, []byte(tc.payload)))
		})
	}
}

func TestHashEnvelopeDeterminism(t *testing.T) {
	env := Frame(TypeBlob, []byte("same bytes"))
	h1 := HashEnvelope(env)
	h2 := HashEnvelope(append([]byte(nil), env...))
	assert.Equal(t, h1, h2)
	assert.Len(t, string(h1), HashHexSize)

	assert.NotEqual(t, h1, HashObject(TypeTree, []byte("same bytes")), "type tag is part of the digest")
}

func TestParseHash(t *testing.T) {
	h, err := ParseHash("  3B18E512DBA79E4C8300DD08AEB37F8E728B8DAD\n")
	require.NoError(t, err)
	assert.Equal(t, Hash("3b18e512dba79e4c8300dd08aeb37f8e728b8dad"), h)

	for _, bad := range []string{"", "3b18", "zz18e512dba79e4c8300dd08aeb37f8e728b8dad", "3b18e512dba79e4c8300dd08aeb37f8e728b8dad00"} {
		_, err := ParseHash(bad)
		assert.ErrorIs(t, err, ErrInvalidHash, bad)
	}
}

func TestHashBytesRoundTrip(t *testing.T) {
	h := HashObject(TypeBlob, []byte("x"))
	raw := h.Bytes()
	require.Len(t, raw, HashSize)
	back, err := HashFromBytes(raw)
	require.NoError(t, err)
	assert.Equal(t, h, back)

	assert.Nil(t, Hash("nothex").Bytes())
	_, err = HashFromBytes([]byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrInvalidHash)
}

func TestResolve(t *testing.T) {
	a := Hash("abcdef0000000000000000000000000000000000")
	b := Hash("abcdef1111111111111111111111111111111111")
	c := Hash("123456aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	candidates := []Hash{a, b, c}

	t.Run("unique prefix", func(t *testing.T) {
		got, err := Resolve("1234", candidates)
		require.NoError(t, err)
		assert.Equal(t, c, got)
	})

	t.Run("ambiguous prefix carries candidates", func(t *testing.T) {
		_, err := Resolve("abcdef", candidates)
		require.ErrorIs(t, err, ErrAmbiguous)
		var amb *AmbiguousError
		require.True(t, errors.As(err, &amb))
		assert.Equal(t, []Hash{a, b}, amb.Candidates)
		assert.Equal(t, "abcdef", amb.Prefix)
	})

	t.Run("longer prefix disambiguates", func(t *testing.T) {
		got, err := Resolve("ABCDEF1", candidates)
		require.NoError(t, err)
		assert.Equal(t, b, got)
	})

	t.Run("no match", func(t *testing.T) {
		_, err := Resolve("ffff", candidates)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("too short", func(t *testing.T) {
		_, err := Resolve("abc", candidates)
		assert.ErrorIs(t, err, ErrInvalidHash)
	})

	t.Run("full hash bypasses candidates", func(t *testing.T) {
		full := "ffffffffffffffffffffffffffffffffffffffff"
		got, err := Resolve(full, nil)
		require.NoError(t, err)
		assert.Equal(t, Hash(full), got)
	})

	t.Run("duplicate candidates are not ambiguous", func(t *testing.T) {
		got, err := Resolve("1234", []Hash{c, c})
		require.NoError(t, err)
		assert.Equal(t, c, got)
	})
}
