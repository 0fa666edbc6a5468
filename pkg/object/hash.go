package object

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"slices"
	"strings"
)

const (
	// HashSize is the length of a raw digest in bytes.
	HashSize = sha1.Size
	// HashHexSize is the length of a rendered digest.
	HashHexSize = 2 * HashSize
	// MinPrefixLen is the shortest abbreviation Resolve accepts.
	MinPrefixLen = 4
)

// HashEnvelope computes the digest of a framed object.
func HashEnvelope(envelope []byte) Hash {
	sum := sha1.Sum(envelope)
	return Hash(hex.EncodeToString(sum[:]))
}

// HashObject computes the digest of the envelope "type len\0payload"
// without building the envelope.
func HashObject(objType ObjectType, payload []byte) Hash {
	h := sha1.New()
	h.Write(frameHeader(objType, len(payload)))
	h.Write(payload)
	return Hash(hex.EncodeToString(h.Sum(nil)))
}

// ParseHash validates s as a full hex digest and lowercases it.
func ParseHash(s string) (Hash, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) != HashHexSize || !isHex(s) {
		return "", fmt.Errorf("%w: %q", ErrInvalidHash, s)
	}
	return Hash(s), nil
}

// HashFromBytes renders a raw digest.
func HashFromBytes(b []byte) (Hash, error) {
	if len(b) != HashSize {
		return "", fmt.Errorf("%w: %d raw bytes", ErrInvalidHash, len(b))
	}
	return Hash(hex.EncodeToString(b)), nil
}

// Bytes returns the raw digest. It returns nil if h is not a valid hash.
func (h Hash) Bytes() []byte {
	b, err := hex.DecodeString(string(h))
	if err != nil || len(b) != HashSize {
		return nil
	}
	return b
}

// Short returns the first n characters of h.
func (h Hash) Short(n int) string {
	if len(h) <= n {
		return string(h)
	}
	return string(h[:n])
}

// IsZero reports whether h is unset.
func (h Hash) IsZero() bool {
	return h == ""
}

// Resolve picks the single candidate that starts with prefix. A full-length
// prefix is returned as-is without looking at candidates.
func Resolve(prefix string, candidates []Hash) (Hash, error) {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if len(prefix) == HashHexSize {
		return ParseHash(prefix)
	}
	if len(prefix) < MinPrefixLen || len(prefix) > HashHexSize || !isHex(prefix) {
		return "", fmt.Errorf("%w: prefix %q", ErrInvalidHash, prefix)
	}

	var matches []Hash
	for _, c := range candidates {
		if strings.HasPrefix(string(c), prefix) && !slices.Contains(matches, c) {
			matches = append(matches, c)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("resolve %q: %w", prefix, ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		slices.Sort(matches)
		return "", &AmbiguousError{Prefix: prefix, Candidates: matches}
	}
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f') {
			return false
		}
	}
	return true
}
