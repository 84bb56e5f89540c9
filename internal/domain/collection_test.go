package domain

import (
	"errors"
	"slices"
	"testing"
)

func sampleCollections() []Collection {
	return []Collection{
		{Key: "ROOT", Name: "Papers"},
		{Key: "A", Name: "Alpha", ParentKey: "ROOT"},
		{Key: "B", Name: "Beta", ParentKey: "ROOT"},
		{Key: "C", Name: "Gamma", ParentKey: "A"},
		{Key: "OTHER", Name: "Other root"},
	}
}

func TestNewCollectionTree(t *testing.T) {
	tests := []struct {
		name    string
		nodes   []Collection
		wantErr bool
		errMsg  string
	}{
		{
			name:  "valid forest",
			nodes: sampleCollections(),
		},
		{
			name:  "empty",
			nodes: nil,
		},
		{
			name: "dangling parent",
			nodes: []Collection{
				{Key: "A", Name: "Alpha", ParentKey: "MISSING"},
			},
			wantErr: true,
			errMsg:  "parent MISSING not found",
		},
		{
			name: "two node cycle",
			nodes: []Collection{
				{Key: "A", Name: "Alpha", ParentKey: "B"},
				{Key: "B", Name: "Beta", ParentKey: "A"},
			},
			wantErr: true,
			errMsg:  "cycle detected",
		},
		{
			name: "self parent",
			nodes: []Collection{
				{Key: "A", Name: "Alpha", ParentKey: "A"},
			},
			wantErr: true,
			errMsg:  "cycle detected",
		},
		{
			name: "duplicate key",
			nodes: []Collection{
				{Key: "A", Name: "Alpha"},
				{Key: "A", Name: "Alpha again"},
			},
			wantErr: true,
			errMsg:  "duplicate key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, err := NewCollectionTree(tt.nodes)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error containing %q, got nil", tt.errMsg)
				}
				var treeErr *TreeError
				if !errors.As(err, &treeErr) {
					t.Errorf("expected *TreeError, got %T", err)
				}
				if !contains(err.Error(), tt.errMsg) {
					t.Errorf("expected error containing %q, got %q", tt.errMsg, err.Error())
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tree.Len() != len(tt.nodes) {
				t.Errorf("expected %d nodes, got %d", len(tt.nodes), tree.Len())
			}
		})
	}
}

func TestCollectionTree_DepthIsBounded(t *testing.T) {
	tree, err := NewCollectionTree(sampleCollections())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	maxDepth := 0
	tree.Walk(func(c Collection, depth int) {
		got, err := tree.Depth(c.Key)
		if err != nil {
			t.Fatalf("Depth(%s) failed: %v", c.Key, err)
		}
		if got != depth {
			t.Errorf("Depth(%s) = %d, walk depth %d", c.Key, got, depth)
		}
		maxDepth = max(maxDepth, got)
	})

	if maxDepth != 2 {
		t.Errorf("expected tree depth 2, got %d", maxDepth)
	}
}

func TestCollectionTree_Navigation(t *testing.T) {
	tree, err := NewCollectionTree(sampleCollections())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := tree.Roots(); !slices.Equal(got, []string{"OTHER", "ROOT"}) {
		t.Errorf("Roots() = %v", got)
	}
	if got := tree.ChildKeys("ROOT"); !slices.Equal(got, []string{"A", "B"}) {
		t.Errorf("ChildKeys(ROOT) = %v", got)
	}
	if got := tree.ChildKeys("C"); len(got) != 0 {
		t.Errorf("ChildKeys(C) = %v, want empty", got)
	}
	if got := tree.Path("C"); got != "Papers / Alpha / Gamma" {
		t.Errorf("Path(C) = %q", got)
	}

	children := tree.Children("ROOT")
	if len(children) != 2 || children[0].Name != "Alpha" {
		t.Errorf("Children(ROOT) = %v", children)
	}

	// ChildKeys hands out a copy
	keys := tree.ChildKeys("ROOT")
	keys[0] = "mutated"
	if tree.ChildKeys("ROOT")[0] != "A" {
		t.Error("ChildKeys exposed internal state")
	}
}

func TestCollectionTree_Flatten(t *testing.T) {
	tree, err := NewCollectionTree(sampleCollections())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	nodes := tree.Flatten()
	var keys []string
	for _, n := range nodes {
		keys = append(keys, n.Key)
	}
	if want := []string{"OTHER", "ROOT", "A", "C", "B"}; !slices.Equal(keys, want) {
		t.Errorf("Flatten() keys = %v, want %v", keys, want)
	}
	if nodes[3].Depth != 2 || nodes[3].Path != "Papers / Alpha / Gamma" {
		t.Errorf("Flatten()[3] = %+v", nodes[3])
	}
}

func contains(s, substr string) bool {
	return len(s) >= len(substr) && (s == substr || len(substr) == 0 ||
		(len(s) > 0 && len(substr) > 0 && findSubstring(s, substr)))
}

func findSubstring(s, substr string) bool {
	for i := 0; i <= len(s)-len(substr); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
