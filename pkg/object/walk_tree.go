package object

import (
	"errors"
	"fmt"
	"iter"
	"path"
)

// DefaultMaxTreeDepth bounds subtree recursion in WalkTree.
const DefaultMaxTreeDepth = 1000

// TreeFile is one non-directory entry reached by WalkTree.
type TreeFile struct {
	Path string // forward-slash path relative to the root tree
	Hash Hash
	Mode FileMode
}

type walkTreeConfig struct {
	maxDepth int
	prefix   string
}

// WalkTreeOption configures WalkTree.
type WalkTreeOption func(*walkTreeConfig)

// WithMaxDepth overrides DefaultMaxTreeDepth.
func WithMaxDepth(n int) WalkTreeOption {
	return func(c *walkTreeConfig) { c.maxDepth = n }
}

// WithPathPrefix prepends prefix to every yielded path.
func WithPathPrefix(prefix string) WalkTreeOption {
	return func(c *walkTreeConfig) { c.prefix = prefix }
}

// WalkTree lazily enumerates every file, symlink and gitlink under root in
// tree order. Subtrees are read only when the walk reaches them. On error
// the sequence yields the error once and stops.
func WalkTree(g Getter, root Hash, opts ...WalkTreeOption) iter.Seq2[TreeFile, error] {
	cfg := walkTreeConfig{maxDepth: DefaultMaxTreeDepth}
	for _, opt := range opts {
		opt(&cfg)
	}
	return func(yield func(TreeFile, error) bool) {
		w := treeWalker{g: g, maxDepth: cfg.maxDepth, yield: yield}
		if err := w.walk(root, cfg.prefix, 0); err != nil && err != errStopWalk {
			yield(TreeFile{}, err)
		}
	}
}

// errStopWalk unwinds the recursion when the consumer stops early.
var errStopWalk = errors.New("walk stopped")

type treeWalker struct {
	g        Getter
	maxDepth int
	yield    func(TreeFile, error) bool
}

func (w *treeWalker) walk(h Hash, prefix string, depth int) error {
	if depth > w.maxDepth {
		return fmt.Errorf("walk tree %s at %q: %w (limit %d)", h, prefix, ErrDepthExceeded, w.maxDepth)
	}
	tree, err := LoadTree(w.g, h)
	if err != nil {
		return fmt.Errorf("walk tree: %w", err)
	}
	for _, e := range tree.Entries {
		full := e.Name
		if prefix != "" {
			full = path.Join(prefix, e.Name)
		}
		if e.Mode.IsDir() {
			if err := w.walk(e.Hash, full, depth+1); err != nil {
				return err
			}
			continue
		}
		if !w.yield(TreeFile{Path: full, Hash: e.Hash, Mode: e.Mode}, nil) {
			return errStopWalk
		}
	}
	return nil
}

// FlattenTree collects WalkTree into a slice.
func FlattenTree(g Getter, root Hash) ([]TreeFile, error) {
	var out []TreeFile
	for f, err := range WalkTree(g, root) {
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}
