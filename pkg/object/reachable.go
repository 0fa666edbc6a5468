package object

import (
	"fmt"
	"slices"
	"strings"
)

// ReachableSet returns all object hashes reachable from roots by following
// object references. Gitlink entries point outside the store and are not
// followed. A referenced object that is missing is an error.
func ReachableSet(g Getter, roots []Hash) (map[Hash]struct{}, error) {
	roots = uniqueNormalizedHashes(roots)
	out := make(map[Hash]struct{}, len(roots))

	stack := slices.Clone(roots)
	for len(stack) > 0 {
		h := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := out[h]; ok {
			continue
		}

		obj, err := Load(g, h)
		if err != nil {
			return nil, fmt.Errorf("reachable set: %w", err)
		}
		out[h] = struct{}{}
		stack = append(stack, referencedHashes(obj)...)
	}
	return out, nil
}

func referencedHashes(obj Object) []Hash {
	switch o := obj.(type) {
	case *Blob:
		return nil
	case *Tag:
		return []Hash{o.Target()}
	case *Commit:
		refs := make([]Hash, 0, 1+len(o.Parents()))
		refs = append(refs, o.TreeHash())
		return append(refs, o.Parents()...)
	case *Tree:
		refs := make([]Hash, 0, len(o.Entries))
		for _, e := range o.Entries {
			if e.Mode == ModeGitlink {
				continue
			}
			refs = append(refs, e.Hash)
		}
		return refs
	default:
		panic(fmt.Sprintf("object: unknown object kind %T", obj))
	}
}

func uniqueNormalizedHashes(in []Hash) []Hash {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[Hash]struct{}, len(in))
	out := make([]Hash, 0, len(in))
	for _, h := range in {
		h = Hash(strings.ToLower(strings.TrimSpace(string(h))))
		if h == "" {
			continue
		}
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}
	slices.Sort(out)
	return out
}
