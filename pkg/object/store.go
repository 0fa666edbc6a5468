package object

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/klauspost/compress/zlib"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Getter reads envelopes by digest. Walkers only need this much.
type Getter interface {
	Get(h Hash) ([]byte, error)
}

// Database is the full object store contract shared by Store and MemStore.
type Database interface {
	Getter
	Put(envelope []byte) (Hash, error)
	Has(h Hash) bool
	Candidates(prefix string) ([]Hash, error)
}

// checkEnvelope is the admission check shared by every Database: the frame
// must be well formed and a tree payload must decode.
func checkEnvelope(envelope []byte) error {
	objType, payload, err := Unframe(envelope)
	if err != nil {
		return err
	}
	if objType == TypeTree {
		if _, err := UnmarshalTree(payload); err != nil {
			return err
		}
	}
	return nil
}

var (
	_ Database = (*Store)(nil)
	_ Database = (*MemStore)(nil)
)

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the store's logger.
func WithLogger(logger *zap.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithCompressionLevel sets the zlib level used for new objects.
func WithCompressionLevel(level int) StoreOption {
	return func(s *Store) {
		s.level = level
	}
}

// Store is a content-addressed object store with a 2-character fan-out
// directory layout: <dir>/ab/cdef0123... Each file holds the
// zlib-compressed envelope. The store is append-only.
type Store struct {
	dir    string
	level  int
	logger *zap.Logger
}

// NewStore creates a Store rooted at the given objects directory. Shard
// directories are created lazily on first write.
func NewStore(dir string, opts ...StoreOption) *Store {
	s := &Store{
		dir:    dir,
		level:  zlib.DefaultCompression,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the objects directory.
func (s *Store) Dir() string {
	return s.dir
}

// objectPath returns the filesystem path for a given hash.
func (s *Store) objectPath(h Hash) string {
	return filepath.Join(s.dir, string(h[:2]), string(h[2:]))
}

// Has reports whether the store contains an object with the given hash.
func (s *Store) Has(h Hash) bool {
	if _, err := ParseHash(string(h)); err != nil {
		return false
	}
	_, err := os.Stat(s.objectPath(h))
	return err == nil
}

// Put stores an envelope and returns its digest. Storing an object that is
// already present is a no-op. Writes are atomic: the compressed envelope is
// written to a temp file in the shard directory and renamed into place.
func (s *Store) Put(envelope []byte) (Hash, error) {
	if err := checkEnvelope(envelope); err != nil {
		return "", fmt.Errorf("object put: %w", err)
	}
	h := HashEnvelope(envelope)

	// Fast path: already exists.
	if s.Has(h) {
		s.logger.Debug("object exists", zap.String("hash", string(h)))
		return h, nil
	}

	dir := filepath.Join(s.dir, string(h[:2]))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("object put mkdir: %w", err)
	}
	if err := s.writeAtomic(dir, s.objectPath(h), envelope); err != nil {
		return "", fmt.Errorf("object put %s: %w", h, err)
	}
	s.logger.Debug("object stored", zap.String("hash", string(h)), zap.Int("size", len(envelope)))
	return h, nil
}

func (s *Store) writeAtomic(dir, dest string, envelope []byte) (retErr error) {
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("tmpfile: %w", err)
	}
	tmpName := tmp.Name()
	closed := false
	defer func() {
		if retErr == nil {
			return
		}
		if !closed {
			retErr = multierr.Append(retErr, tmp.Close())
		}
		retErr = multierr.Append(retErr, os.Remove(tmpName))
	}()

	zw, err := zlib.NewWriterLevel(tmp, s.level)
	if err != nil {
		return fmt.Errorf("compress: %w", err)
	}
	if _, err := zw.Write(envelope); err != nil {
		return fmt.Errorf("compress: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("compress close: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	closed = true
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	// A concurrent writer may have renamed identical bytes into place
	// first; replacing them is harmless.
	if err := os.Rename(tmpName, dest); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

// Get retrieves an object's envelope by hash.
func (s *Store) Get(h Hash) ([]byte, error) {
	if _, err := ParseHash(string(h)); err != nil {
		return nil, fmt.Errorf("object get: %w", err)
	}
	raw, err := os.ReadFile(s.objectPath(h))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("object get %s: %w", h, ErrNotFound)
		}
		return nil, fmt.Errorf("object get %s: %w", h, err)
	}

	zr, err := zlib.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, &CorruptError{Hash: h, Reason: "decompress", Declared: -1, Actual: -1, Err: err}
	}
	envelope, err := io.ReadAll(zr)
	if cerr := zr.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, &CorruptError{Hash: h, Reason: "decompress", Declared: -1, Actual: -1, Err: err}
	}

	if _, _, err := Unframe(envelope); err != nil {
		return nil, withHash(err, h)
	}
	return envelope, nil
}

func withHash(err error, h Hash) error {
	var ce *CorruptError
	if errors.As(err, &ce) && ce.Hash == "" {
		ce.Hash = h
	}
	return err
}

// Candidates lists stored hashes beginning with prefix. The prefix must
// cover at least the shard directory name.
func (s *Store) Candidates(prefix string) ([]Hash, error) {
	prefix = strings.ToLower(prefix)
	if len(prefix) < 2 || !isHex(prefix) {
		return nil, fmt.Errorf("object candidates: %w: prefix %q", ErrInvalidHash, prefix)
	}
	entries, err := os.ReadDir(filepath.Join(s.dir, prefix[:2]))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("object candidates: %w", err)
	}

	var out []Hash
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || len(name) != HashHexSize-2 || !isHex(name) {
			continue
		}
		if strings.HasPrefix(name, prefix[2:]) {
			out = append(out, Hash(prefix[:2]+name))
		}
	}
	return out, nil
}

// ResolvePrefix expands an abbreviated hash to the single stored object it
// names. Full-length hashes are returned without touching the disk.
func (s *Store) ResolvePrefix(prefix string) (Hash, error) {
	if len(prefix) == HashHexSize {
		return ParseHash(prefix)
	}
	if len(prefix) < MinPrefixLen {
		return "", fmt.Errorf("%w: prefix %q shorter than %d", ErrInvalidHash, prefix, MinPrefixLen)
	}
	candidates, err := s.Candidates(prefix)
	if err != nil {
		return "", err
	}
	return Resolve(prefix, candidates)
}

// All enumerates every stored hash in sorted order.
func (s *Store) All() iter.Seq2[Hash, error] {
	return func(yield func(Hash, error) bool) {
		shards, err := os.ReadDir(s.dir)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				yield("", fmt.Errorf("object list: %w", err))
			}
			return
		}
		for _, shard := range shards {
			if !shard.IsDir() || len(shard.Name()) != 2 || !isHex(shard.Name()) {
				continue
			}
			hashes, err := s.Candidates(shard.Name())
			if err != nil {
				yield("", err)
				return
			}
			slices.Sort(hashes)
			for _, h := range hashes {
				if !yield(h, nil) {
					return
				}
			}
		}
	}
}

// ---------------------------------------------------------------------------
// Typed convenience methods
// ---------------------------------------------------------------------------

// Write frames and stores a payload.
func (s *Store) Write(objType ObjectType, payload []byte) (Hash, error) {
	return s.Put(Frame(objType, payload))
}

// Read retrieves an object by hash, returning its type and payload.
func (s *Store) Read(h Hash) (ObjectType, []byte, error) {
	envelope, err := s.Get(h)
	if err != nil {
		return "", nil, err
	}
	return Unframe(envelope)
}

// WriteObject validates, encodes and stores obj.
func (s *Store) WriteObject(obj Object) (Hash, error) {
	if err := Validate(obj); err != nil {
		return "", fmt.Errorf("write object: %w", err)
	}
	return s.Put(Encode(obj))
}

// ReadObject reads and decodes an object.
func (s *Store) ReadObject(h Hash) (Object, error) {
	return Load(s, h)
}

// ReadBlob reads and deserializes a Blob.
func (s *Store) ReadBlob(h Hash) (*Blob, error) {
	return loadAs[*Blob](s, h, TypeBlob)
}

// ReadTree reads and deserializes a Tree.
func (s *Store) ReadTree(h Hash) (*Tree, error) {
	return LoadTree(s, h)
}

// ReadCommit reads and deserializes a Commit.
func (s *Store) ReadCommit(h Hash) (*Commit, error) {
	return LoadCommit(s, h)
}

// ReadTag reads and deserializes a Tag.
func (s *Store) ReadTag(h Hash) (*Tag, error) {
	return loadAs[*Tag](s, h, TypeTag)
}

// Load reads and decodes the object h from any Getter.
func Load(g Getter, h Hash) (Object, error) {
	envelope, err := g.Get(h)
	if err != nil {
		return nil, err
	}
	obj, err := Decode(envelope)
	if err != nil {
		return nil, fmt.Errorf("object %s: %w", h, withHash(err, h))
	}
	return obj, nil
}

// LoadTree reads h and requires it to be a tree.
func LoadTree(g Getter, h Hash) (*Tree, error) {
	return loadAs[*Tree](g, h, TypeTree)
}

// LoadCommit reads h and requires it to be a commit.
func LoadCommit(g Getter, h Hash) (*Commit, error) {
	return loadAs[*Commit](g, h, TypeCommit)
}

func loadAs[T Object](g Getter, h Hash, want ObjectType) (T, error) {
	var zero T
	obj, err := Load(g, h)
	if err != nil {
		return zero, err
	}
	out, ok := obj.(T)
	if !ok {
		return zero, fmt.Errorf("object %s: %w: got %q, want %q", h, ErrTypeMismatch, obj.Type(), want)
	}
	return out, nil
}
