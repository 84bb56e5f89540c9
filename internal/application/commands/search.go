package commands

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"refsync/internal/application"
	"refsync/internal/domain"
	"refsync/internal/ports"
)

// CollectionMatch is a collection ranked against a query
type CollectionMatch struct {
	domain.CollectionNode `yaml:",inline"`
	Score                 int `json:"score" yaml:"score"`
}

// FindCollectionsCommand looks collections up by approximate name
type FindCollectionsCommand struct {
	adapters ports.AdapterResolver
	Library  domain.LibraryRef
	Query    string
}

// NewFindCollectionsCommand creates a new FindCollectionsCommand
func NewFindCollectionsCommand(adapters ports.AdapterResolver, lib domain.LibraryRef, query string) *FindCollectionsCommand {
	return &FindCollectionsCommand{
		adapters: adapters,
		Library:  lib,
		Query:    query,
	}
}

// Validate checks the library and the query
func (c *FindCollectionsCommand) Validate() error {
	if err := application.ValidateLibraryRef("", c.Library, false); err != nil {
		return err
	}
	return application.ValidateRequired("query", strings.TrimSpace(c.Query))
}

// Execute loads the tree and ranks its collections
func (c *FindCollectionsCommand) Execute(ctx context.Context) ([]CollectionMatch, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	tree, err := NewListCollectionsCommand(c.adapters, c.Library).Execute(ctx)
	if err != nil {
		return nil, err
	}
	return RankCollections(tree.Flatten(), c.Query), nil
}

// FuzzyScore rates how well query matches target. 0 means no match.
// Substring matches beat in-order character matches; a prefix match
// scores highest. Comparison is case-folded.
func FuzzyScore(target, query string) int {
	t := []rune(domain.FoldName(target))
	q := []rune(domain.FoldName(query))
	if len(q) == 0 {
		return 0
	}

	if ts, qs := string(t), string(q); strings.Contains(ts, qs) {
		score := 100
		if strings.HasPrefix(ts, qs) {
			score += 50
		}
		return score
	}

	score, qi, prev := 0, 0, -2
	for i := 0; i < len(t) && qi < len(q); i++ {
		if t[i] != q[qi] {
			continue
		}
		if prev == i-1 {
			score += 10
		}
		if i == 0 {
			score += 15
		} else if strings.ContainsRune(" /-_.", t[i-1]) {
			score += 10
		}
		score++
		prev = i
		qi++
	}
	if qi == len(q) {
		return score
	}
	return 0
}

// RankCollections keeps the nodes matching query by name, path or key,
// best first. Ties keep tree order.
func RankCollections(nodes []domain.CollectionNode, query string) []CollectionMatch {
	matches := make([]CollectionMatch, 0, len(nodes))
	for _, n := range nodes {
		best := max(FuzzyScore(n.Name, query), FuzzyScore(n.Path, query), FuzzyScore(n.Key, query))
		if best > 0 {
			matches = append(matches, CollectionMatch{CollectionNode: n, Score: best})
		}
	}
	slices.SortStableFunc(matches, func(a, b CollectionMatch) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return matches
}
