package domain

import (
	"fmt"
	"slices"
	"strings"
)

// Collection is a node in a library's collection forest
type Collection struct {
	Key       string `json:"key" yaml:"key"`
	Name      string `json:"name" yaml:"name"`
	ParentKey string `json:"parentKey,omitempty" yaml:"parent_key,omitempty"` // empty for roots
	Version   int    `json:"version,omitempty" yaml:"version,omitempty"`
}

// IsRoot reports whether the collection has no parent
func (c Collection) IsRoot() bool {
	return c.ParentKey == ""
}

// CollectionTree is a validated collection forest for one library snapshot
type CollectionTree struct {
	nodes    map[string]Collection
	children map[string][]string
	roots    []string
}

// TreeError describes why a set of collections does not form a forest
type TreeError struct {
	Key    string
	Reason string
}

func (e *TreeError) Error() string {
	return fmt.Sprintf("invalid collection tree at %s: %s", e.Key, e.Reason)
}

// NewCollectionTree builds a forest from the given nodes. Every non-root
// parent must resolve to a node of the same snapshot and cycles are rejected.
func NewCollectionTree(nodes []Collection) (*CollectionTree, error) {
	t := &CollectionTree{
		nodes:    make(map[string]Collection, len(nodes)),
		children: make(map[string][]string),
	}

	for _, n := range nodes {
		if n.Key == "" {
			return nil, &TreeError{Key: n.Name, Reason: "collection has no key"}
		}
		if _, dup := t.nodes[n.Key]; dup {
			return nil, &TreeError{Key: n.Key, Reason: "duplicate key"}
		}
		t.nodes[n.Key] = n
	}

	for _, n := range nodes {
		if n.IsRoot() {
			t.roots = append(t.roots, n.Key)
			continue
		}
		if _, ok := t.nodes[n.ParentKey]; !ok {
			return nil, &TreeError{Key: n.Key, Reason: fmt.Sprintf("parent %s not found", n.ParentKey)}
		}
		t.children[n.ParentKey] = append(t.children[n.ParentKey], n.Key)
	}

	for key := range t.nodes {
		if _, err := t.Depth(key); err != nil {
			return nil, err
		}
	}

	slices.Sort(t.roots)
	for k := range t.children {
		slices.Sort(t.children[k])
	}

	return t, nil
}

// Len returns the number of collections in the tree
func (t *CollectionTree) Len() int {
	return len(t.nodes)
}

// Get returns the collection with the given key
func (t *CollectionTree) Get(key string) (Collection, bool) {
	c, ok := t.nodes[key]
	return c, ok
}

// Roots returns the keys of all root collections, sorted
func (t *CollectionTree) Roots() []string {
	return slices.Clone(t.roots)
}

// ChildKeys returns the keys of the direct children of key, sorted
func (t *CollectionTree) ChildKeys(key string) []string {
	return slices.Clone(t.children[key])
}

// Children returns the direct children of key
func (t *CollectionTree) Children(key string) []Collection {
	keys := t.children[key]
	out := make([]Collection, 0, len(keys))
	for _, k := range keys {
		out = append(out, t.nodes[k])
	}
	return out
}

// Depth follows parent pointers from key to its root. Roots have depth 0.
// The walk is bounded by the number of nodes, so a cycle is reported
// instead of looping.
func (t *CollectionTree) Depth(key string) (int, error) {
	node, ok := t.nodes[key]
	if !ok {
		return 0, &TreeError{Key: key, Reason: "not found"}
	}
	depth := 0
	for !node.IsRoot() {
		depth++
		if depth > len(t.nodes) {
			return 0, &TreeError{Key: key, Reason: "cycle detected"}
		}
		node = t.nodes[node.ParentKey]
	}
	return depth, nil
}

// Path returns the names from the root down to key, joined with " / "
func (t *CollectionTree) Path(key string) string {
	var names []string
	node, ok := t.nodes[key]
	for ok && len(names) <= len(t.nodes) {
		names = append(names, node.Name)
		if node.IsRoot() {
			break
		}
		node, ok = t.nodes[node.ParentKey]
	}
	slices.Reverse(names)
	return strings.Join(names, " / ")
}

// Walk visits every collection depth-first, roots in key order
func (t *CollectionTree) Walk(fn func(c Collection, depth int)) {
	var visit func(key string, depth int)
	visit = func(key string, depth int) {
		fn(t.nodes[key], depth)
		for _, child := range t.children[key] {
			visit(child, depth+1)
		}
	}
	for _, root := range t.roots {
		visit(root, 0)
	}
}

// CollectionNode is a collection with its position in the tree
type CollectionNode struct {
	Collection `yaml:",inline"`
	Depth      int    `json:"depth" yaml:"depth"`
	Path       string `json:"path" yaml:"path"`
}

// Flatten lists the tree in Walk order
func (t *CollectionTree) Flatten() []CollectionNode {
	out := make([]CollectionNode, 0, len(t.nodes))
	t.Walk(func(c Collection, depth int) {
		out = append(out, CollectionNode{Collection: c, Depth: depth, Path: t.Path(c.Key)})
	})
	return out
}
