package application

import (
	"testing"
	"time"

	"refsync/internal/domain"
)

func TestDiffCache(t *testing.T) {
	src := domain.LibraryRef{Application: "zotero", Type: "user", ID: "1", CollectionKey: "ROOT"}
	tgt := domain.LibraryRef{Application: "citavi", Type: "project", ID: "p1", CollectionKey: "T"}
	key := DiffKey(src, tgt)

	c := NewDiffCache(0)
	if _, ok := c.Get(key); ok {
		t.Fatal("empty cache returned an entry")
	}

	c.Put(key, DiffEntry{Diff: []string{"k1"}})
	c.Put(key, DiffEntry{Diff: []string{"k2", "k3"}})

	e, ok := c.Get(key)
	if !ok {
		t.Fatal("entry not found")
	}
	if len(e.Diff) != 2 || e.Diff[0] != "k2" {
		t.Errorf("Diff = %v, want the last entry put", e.Diff)
	}
	if e.CreatedAt.IsZero() {
		t.Error("CreatedAt not stamped")
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}

	c.Delete(key)
	if _, ok := c.Get(key); ok || c.Len() != 0 {
		t.Error("entry survived Delete")
	}
}

func TestDiffCache_Expiry(t *testing.T) {
	c := NewDiffCache(20 * time.Millisecond)
	c.Put("k", DiffEntry{Diff: []string{"a"}})

	time.Sleep(60 * time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Error("expired entry returned")
	}
}

func TestDiffKey(t *testing.T) {
	a := domain.LibraryRef{Application: "zotero", Type: "user", ID: "1", CollectionKey: "A"}
	b := domain.LibraryRef{Application: "citavi", Type: "project", ID: "p1", CollectionKey: "B"}

	if DiffKey(a, b) == DiffKey(b, a) {
		t.Error("DiffKey must depend on direction")
	}
	other := b
	other.CollectionKey = "C"
	if DiffKey(a, b) == DiffKey(a, other) {
		t.Error("DiffKey must depend on the target collection")
	}
}
