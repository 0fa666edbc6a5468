package object

import (
	"fmt"
	"path/filepath"
	"testing"
)

func BenchmarkStoreWriteUniqueBlob(b *testing.B) {
	store := NewStore(filepath.Join(b.TempDir(), "store"))
	seed := []byte("0123456789abcdef0123456789abcdef")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		payload := []byte(fmt.Sprintf("blob-%d-%x", i, seed))
		if _, err := store.Write(TypeBlob, payload); err != nil {
			b.Fatalf("Write: %v", err)
		}
	}
}

func BenchmarkStoreReadBlob(b *testing.B) {
	store := NewStore(filepath.Join(b.TempDir(), "store"))
	payload := []byte("package main\n\nfunc main() { println(\"hello\") }\n")
	hash, err := store.Write(TypeBlob, payload)
	if err != nil {
		b.Fatalf("Write: %v", err)
	}

	b.SetBytes(int64(len(payload)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		typ, data, err := store.Read(hash)
		if err != nil {
			b.Fatalf("Read: %v", err)
		}
		if typ != TypeBlob {
			b.Fatalf("type = %q, want %q", typ, TypeBlob)
		}
		if len(data) != len(payload) {
			b.Fatalf("len(data) = %d, want %d", len(data), len(payload))
		}
	}
}

func BenchmarkHashObject(b *testing.B) {
	payload := make([]byte, 64<<10)
	for i := range payload {
		payload[i] = byte(i)
	}
	b.SetBytes(int64(len(payload)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = HashObject(TypeBlob, payload)
	}
}

func benchTree(n int) *Tree {
	tr := &Tree{Entries: make([]TreeEntry, n)}
	for i := range tr.Entries {
		name := fmt.Sprintf("file-%04d.go", i)
		tr.Entries[i] = TreeEntry{Mode: ModeFile, Name: name, Hash: HashObject(TypeBlob, []byte(name))}
	}
	return tr
}

func BenchmarkDecodeTree(b *testing.B) {
	envelope := Encode(benchTree(512))
	b.SetBytes(int64(len(envelope)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Decode(envelope); err != nil {
			b.Fatalf("Decode: %v", err)
		}
	}
}

func BenchmarkWalkTree(b *testing.B) {
	store := NewMemStore()
	leaf, err := store.Put(Encode(benchTree(64)))
	if err != nil {
		b.Fatalf("Put: %v", err)
	}
	root := &Tree{}
	for i := 0; i < 16; i++ {
		root.Entries = append(root.Entries, TreeEntry{Mode: ModeDir, Name: fmt.Sprintf("dir-%02d", i), Hash: leaf})
	}
	rootHash, err := store.Put(Encode(root))
	if err != nil {
		b.Fatalf("Put: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		n := 0
		for _, err := range WalkTree(store, rootHash) {
			if err != nil {
				b.Fatalf("WalkTree: %v", err)
			}
			n++
		}
		if n != 16*64 {
			b.Fatalf("walked %d files, want %d", n, 16*64)
		}
	}
}
