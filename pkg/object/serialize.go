package object

import "fmt"

// Marshal serializes obj to its payload bytes.
func Marshal(obj Object) []byte {
	switch o := obj.(type) {
	case *Blob:
		return MarshalBlob(o)
	case *Tree:
		return MarshalTree(o)
	case *Commit:
		return o.Header.Marshal()
	case *Tag:
		return o.Header.Marshal()
	default:
		panic(fmt.Sprintf("object: unknown object kind %T", obj))
	}
}

// Unmarshal parses payload according to objType.
func Unmarshal(objType ObjectType, payload []byte) (Object, error) {
	switch objType {
	case TypeBlob:
		return UnmarshalBlob(payload)
	case TypeTree:
		return UnmarshalTree(payload)
	case TypeCommit:
		return UnmarshalCommit(payload)
	case TypeTag:
		return UnmarshalTag(payload)
	default:
		return nil, corrupt(fmt.Sprintf("unknown object type %q", objType))
	}
}

// Validate reports whether obj survives an Encode/Decode round trip
// unchanged. Only trees carry constraints that the types do not enforce.
func Validate(obj Object) error {
	if tr, ok := obj.(*Tree); ok {
		return ValidateTree(tr)
	}
	return nil
}

// Encode frames obj into its envelope. Its digest is HashEnvelope(Encode(obj)).
func Encode(obj Object) []byte {
	return Frame(obj.Type(), Marshal(obj))
}

// Decode unframes and parses an envelope.
func Decode(envelope []byte) (Object, error) {
	objType, payload, err := Unframe(envelope)
	if err != nil {
		return nil, err
	}
	return Unmarshal(objType, payload)
}

// ---------------------------------------------------------------------------
// Blob
// ---------------------------------------------------------------------------

// MarshalBlob serializes a Blob to raw bytes (identity).
func MarshalBlob(b *Blob) []byte {
	out := make([]byte, len(b.Data))
	copy(out, b.Data)
	return out
}

// UnmarshalBlob deserializes raw bytes into a Blob.
func UnmarshalBlob(data []byte) (*Blob, error) {
	out := make([]byte, len(data))
	copy(out, data)
	return &Blob{Data: out}, nil
}

// ---------------------------------------------------------------------------
// Commit
// ---------------------------------------------------------------------------

// NewCommit builds a commit with headers in canonical order:
// tree, parent..., author, committer.
func NewCommit(tree Hash, parents []Hash, author, committer Signature, message string) *Commit {
	c := &Commit{}
	c.Add("tree", string(tree))
	for _, p := range parents {
		c.Add("parent", string(p))
	}
	c.Add("author", author.String())
	c.Add("committer", committer.String())
	c.Message = []byte(message)
	return c
}

// UnmarshalCommit parses a commit payload. The tree header is mandatory.
func UnmarshalCommit(data []byte) (*Commit, error) {
	h, err := ParseHeader(data)
	if err != nil {
		return nil, fmt.Errorf("unmarshal commit: %w", err)
	}
	if _, ok := h.Get("tree"); !ok {
		return nil, fmt.Errorf("unmarshal commit: %w: missing tree", ErrMalformedHeader)
	}
	return &Commit{Header: *h}, nil
}

// TreeHash returns the commit's root tree.
func (c *Commit) TreeHash() Hash {
	v, _ := c.Get("tree")
	return Hash(v)
}

// Parents returns the parent commits in header order.
func (c *Commit) Parents() []Hash {
	vals := c.GetAll("parent")
	out := make([]Hash, len(vals))
	for i, v := range vals {
		out[i] = Hash(v)
	}
	return out
}

// Author parses the author header.
func (c *Commit) Author() (Signature, error) {
	v, ok := c.Get("author")
	if !ok {
		return Signature{}, fmt.Errorf("%w: missing author", ErrMalformedHeader)
	}
	return ParseSignature(v)
}

// Committer parses the committer header, falling back to the author.
func (c *Commit) Committer() (Signature, error) {
	v, ok := c.Get("committer")
	if !ok {
		return c.Author()
	}
	return ParseSignature(v)
}

// CommitTime is the committer timestamp in unix seconds, or 0 if the
// committer header is missing or unparsable.
func (c *Commit) CommitTime() int64 {
	sig, err := c.Committer()
	if err != nil {
		return 0
	}
	return sig.When.Unix()
}

// ---------------------------------------------------------------------------
// Tag
// ---------------------------------------------------------------------------

// NewTag builds an annotated tag object.
func NewTag(target Hash, targetType ObjectType, name string, tagger Signature, message string) *Tag {
	t := &Tag{}
	t.Add("object", string(target))
	t.Add("type", string(targetType))
	t.Add("tag", name)
	t.Add("tagger", tagger.String())
	t.Message = []byte(message)
	return t
}

// UnmarshalTag parses a tag payload. The object header is mandatory.
func UnmarshalTag(data []byte) (*Tag, error) {
	h, err := ParseHeader(data)
	if err != nil {
		return nil, fmt.Errorf("unmarshal tag: %w", err)
	}
	if _, ok := h.Get("object"); !ok {
		return nil, fmt.Errorf("unmarshal tag: %w: missing object", ErrMalformedHeader)
	}
	return &Tag{Header: *h}, nil
}

// Target returns the tagged object's hash.
func (t *Tag) Target() Hash {
	v, _ := t.Get("object")
	return Hash(v)
}

// TargetType returns the declared type of the tagged object.
func (t *Tag) TargetType() ObjectType {
	v, _ := t.Get("type")
	return ObjectType(v)
}

// Name returns the tag name.
func (t *Tag) Name() string {
	v, _ := t.Get("tag")
	return v
}

// Tagger parses the tagger header.
func (t *Tag) Tagger() (Signature, error) {
	v, ok := t.Get("tagger")
	if !ok {
		return Signature{}, fmt.Errorf("%w: missing tagger", ErrMalformedHeader)
	}
	return ParseSignature(v)
}
