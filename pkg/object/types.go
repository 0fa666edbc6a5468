package object

// Hash is a 40-character lowercase hex-encoded SHA-1 digest of an object
// envelope. It is both the object's identity and its storage key.
type Hash string

// ObjectType identifies the kind of object stored.
type ObjectType string

const (
	TypeBlob   ObjectType = "blob"
	TypeTree   ObjectType = "tree"
	TypeCommit ObjectType = "commit"
	TypeTag    ObjectType = "tag"
)

// ParseObjectType maps a type tag to one of the four object kinds.
func ParseObjectType(s string) (ObjectType, bool) {
	switch t := ObjectType(s); t {
	case TypeBlob, TypeTree, TypeCommit, TypeTag:
		return t, true
	}
	return "", false
}

// Object is the closed set of object kinds: *Blob, *Tree, *Commit and *Tag.
type Object interface {
	Type() ObjectType
	sealed()
}

// Blob holds raw file data.
type Blob struct {
	Data []byte
}

func (*Blob) Type() ObjectType { return TypeBlob }
func (*Blob) sealed()          {}

// Tree holds a directory listing. Entries are written in canonical order
// regardless of their order here.
type Tree struct {
	Entries []TreeEntry
}

func (*Tree) Type() ObjectType { return TypeTree }
func (*Tree) sealed()          {}

// TreeEntry is one entry in a tree object.
type TreeEntry struct {
	Mode FileMode
	Name string
	Hash Hash
}

// Commit is a snapshot plus parent linkage, stored as an ordered header.
type Commit struct {
	Header
}

func (*Commit) Type() ObjectType { return TypeCommit }
func (*Commit) sealed()          {}

// Tag is an annotated tag object pointing at another object.
type Tag struct {
	Header
}

func (*Tag) Type() ObjectType { return TypeTag }
func (*Tag) sealed()          {}
