package object

import (
	"bytes"
	"fmt"
	"io/fs"
	"slices"
	"strings"
)

// FileMode is the octal mode string of a tree entry.
type FileMode string

const (
	ModeFile       FileMode = "100644"
	ModeExecutable FileMode = "100755"
	ModeSymlink    FileMode = "120000"
	ModeDir        FileMode = "40000"
	ModeGitlink    FileMode = "160000"
)

// ParseFileMode accepts only the closed set of tree entry modes.
func ParseFileMode(s string) (FileMode, bool) {
	switch m := FileMode(s); m {
	case ModeFile, ModeExecutable, ModeSymlink, ModeDir, ModeGitlink:
		return m, true
	}
	return "", false
}

// IsDir reports whether the entry is a subtree.
func (m FileMode) IsDir() bool { return m == ModeDir }

// ObjectType is the kind of object the entry points at. Gitlinks point at
// commits in another repository.
func (m FileMode) ObjectType() ObjectType {
	switch m {
	case ModeDir:
		return TypeTree
	case ModeGitlink:
		return TypeCommit
	default:
		return TypeBlob
	}
}

// Perm maps the mode to filesystem permission bits for checkout.
func (m FileMode) Perm() fs.FileMode {
	switch m {
	case ModeExecutable:
		return 0o755
	case ModeDir, ModeGitlink:
		return fs.ModeDir | 0o755
	case ModeSymlink:
		return fs.ModeSymlink | 0o777
	default:
		return 0o644
	}
}

// FileModeOf derives the tree mode for a filesystem entry.
func FileModeOf(fm fs.FileMode) FileMode {
	switch {
	case fm.IsDir():
		return ModeDir
	case fm&fs.ModeSymlink != 0:
		return ModeSymlink
	case fm&0o111 != 0:
		return ModeExecutable
	default:
		return ModeFile
	}
}

// treeSortKey is the canonical collation key: subtree names compare as if
// they ended in "/".
func treeSortKey(e TreeEntry) string {
	if e.Mode.IsDir() {
		return e.Name + "/"
	}
	return e.Name
}

// SortTreeEntries orders entries canonically in place.
func SortTreeEntries(entries []TreeEntry) {
	slices.SortStableFunc(entries, func(a, b TreeEntry) int {
		return strings.Compare(treeSortKey(a), treeSortKey(b))
	})
}

// MarshalTree serializes a Tree. Entries are written in canonical order,
// each as:
//
//	<mode> <name>\0<20 raw digest bytes>
//
// The entries must pass ValidateTree; Store.WriteObject checks that before
// anything is written.
func MarshalTree(tr *Tree) []byte {
	sorted := slices.Clone(tr.Entries)
	SortTreeEntries(sorted)

	var buf bytes.Buffer
	for _, e := range sorted {
		buf.WriteString(string(e.Mode))
		buf.WriteByte(' ')
		buf.WriteString(e.Name)
		buf.WriteByte(0)
		raw := e.Hash.Bytes()
		if raw == nil {
			raw = make([]byte, HashSize)
		}
		buf.Write(raw)
	}
	return buf.Bytes()
}

// ValidateTree reports whether tr encodes to a payload that UnmarshalTree
// decodes back to the same entries: known modes, single-component names
// that appear once, and canonical lowercase digests.
func ValidateTree(tr *Tree) error {
	seen := make(map[string]struct{}, len(tr.Entries))
	for _, e := range tr.Entries {
		if _, ok := ParseFileMode(string(e.Mode)); !ok {
			return fmt.Errorf("%w: unknown mode %q for %q", ErrMalformedTree, e.Mode, e.Name)
		}
		if err := validateEntryName(e.Name); err != nil {
			return err
		}
		if h, err := ParseHash(string(e.Hash)); err != nil || h != e.Hash {
			return fmt.Errorf("%w: invalid digest %q for %q", ErrMalformedTree, e.Hash, e.Name)
		}
		if _, dup := seen[e.Name]; dup {
			return fmt.Errorf("%w: duplicate entry name %q", ErrMalformedTree, e.Name)
		}
		seen[e.Name] = struct{}{}
	}
	return nil
}

// UnmarshalTree parses a tree payload. Entries must be in canonical order
// with no name repeated, so re-encoding a decoded tree reproduces the
// payload byte for byte.
func UnmarshalTree(data []byte) (*Tree, error) {
	tr := &Tree{}
	seen := make(map[string]struct{})
	rest := data
	for len(rest) > 0 {
		sp := bytes.IndexByte(rest, ' ')
		if sp < 0 {
			return nil, fmt.Errorf("unmarshal tree: %w: truncated entry at offset %d", ErrMalformedTree, len(data)-len(rest))
		}
		mode, ok := ParseFileMode(string(rest[:sp]))
		if !ok {
			return nil, fmt.Errorf("unmarshal tree: %w: unknown mode %q", ErrMalformedTree, rest[:sp])
		}
		rest = rest[sp+1:]

		nul := bytes.IndexByte(rest, 0)
		if nul < 0 {
			return nil, fmt.Errorf("unmarshal tree: %w: unterminated name", ErrMalformedTree)
		}
		name := string(rest[:nul])
		if err := validateEntryName(name); err != nil {
			return nil, fmt.Errorf("unmarshal tree: %w", err)
		}
		rest = rest[nul+1:]

		if len(rest) < HashSize {
			return nil, fmt.Errorf("unmarshal tree: %w: truncated digest for %q", ErrMalformedTree, name)
		}
		h, _ := HashFromBytes(rest[:HashSize])
		rest = rest[HashSize:]

		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("unmarshal tree: %w: duplicate entry name %q", ErrMalformedTree, name)
		}
		seen[name] = struct{}{}
		e := TreeEntry{Mode: mode, Name: name, Hash: h}
		if n := len(tr.Entries); n > 0 && treeSortKey(tr.Entries[n-1]) >= treeSortKey(e) {
			return nil, fmt.Errorf("unmarshal tree: %w: %q out of order after %q", ErrMalformedTree, name, tr.Entries[n-1].Name)
		}
		tr.Entries = append(tr.Entries, e)
	}
	return tr, nil
}

func validateEntryName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, "/\x00") {
		return fmt.Errorf("%w: invalid entry name %q", ErrMalformedTree, name)
	}
	return nil
}

// Lookup returns the entry with the given name.
func (t *Tree) Lookup(name string) (TreeEntry, bool) {
	for _, e := range t.Entries {
		if e.Name == name {
			return e, true
		}
	}
	return TreeEntry{}, false
}
