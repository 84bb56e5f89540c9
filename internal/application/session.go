package application

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"refsync/internal/domain"
	"refsync/internal/ports"
)

// Side selects the source or the target half of a sync session
type Side int

const (
	SideSource Side = iota
	SideTarget
)

func (s Side) String() string {
	if s == SideTarget {
		return "target"
	}
	return "source"
}

// SyncSession holds the state of one sync request: both library
// references, their adapters, and the collection trees once loaded.
// A session lives for a single request/response round trip.
type SyncSession struct {
	Source domain.LibraryRef
	Target domain.LibraryRef

	SourceAdapter ports.LibraryAdapter
	TargetAdapter ports.LibraryAdapter

	sourceTree       *domain.CollectionTree
	targetTree       *domain.CollectionTree
	sourceCollection *domain.Collection
	targetCollection *domain.Collection
}

// NewSyncSession resolves the adapters for source and target
func NewSyncSession(resolver ports.AdapterResolver, source, target domain.LibraryRef) (*SyncSession, error) {
	src, err := resolver.Adapter(source.Application)
	if err != nil {
		return nil, err
	}
	tgt, err := resolver.Adapter(target.Application)
	if err != nil {
		return nil, err
	}
	return &SyncSession{
		Source:        source,
		Target:        target,
		SourceAdapter: src,
		TargetAdapter: tgt,
	}, nil
}

// Loaded reports whether both trees and collections are cached
func (s *SyncSession) Loaded() bool {
	return s.sourceTree != nil && s.targetTree != nil &&
		s.sourceCollection != nil && s.targetCollection != nil
}

// Load fetches both collection trees and both selected collections
// concurrently. It is a no-op once the session is loaded. Any failed
// fetch cancels the others and nothing is cached.
func (s *SyncSession) Load(ctx context.Context) error {
	if s.Loaded() {
		return nil
	}

	var (
		srcNodes, tgtNodes []domain.Collection
		srcColl, tgtColl   *domain.Collection
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		srcNodes, err = s.SourceAdapter.Collections(gctx, s.Source)
		return WrapAdapterError(s.SourceAdapter, "list collections", err)
	})
	g.Go(func() error {
		var err error
		srcColl, err = s.SourceAdapter.Collection(gctx, s.Source, s.Source.CollectionKey)
		return WrapAdapterError(s.SourceAdapter, "get collection", err)
	})
	g.Go(func() error {
		var err error
		tgtNodes, err = s.TargetAdapter.Collections(gctx, s.Target)
		return WrapAdapterError(s.TargetAdapter, "list collections", err)
	})
	g.Go(func() error {
		var err error
		tgtColl, err = s.TargetAdapter.Collection(gctx, s.Target, s.Target.CollectionKey)
		return WrapAdapterError(s.TargetAdapter, "get collection", err)
	})
	if err := g.Wait(); err != nil {
		return err
	}

	srcTree, err := domain.NewCollectionTree(srcNodes)
	if err != nil {
		return fmt.Errorf("source collections: %w", err)
	}
	tgtTree, err := domain.NewCollectionTree(tgtNodes)
	if err != nil {
		return fmt.Errorf("target collections: %w", err)
	}

	s.sourceTree, s.targetTree = srcTree, tgtTree
	s.sourceCollection, s.targetCollection = srcColl, tgtColl
	return nil
}

// Tree returns the cached collection tree of one side
func (s *SyncSession) Tree(side Side) (*domain.CollectionTree, error) {
	tree := s.sourceTree
	if side == SideTarget {
		tree = s.targetTree
	}
	if tree == nil {
		return nil, fmt.Errorf("%s: %w", side, ErrTreeNotLoaded)
	}
	return tree, nil
}

// SelectedCollection returns the collection the request names for one side
func (s *SyncSession) SelectedCollection(side Side) (*domain.Collection, error) {
	c := s.sourceCollection
	if side == SideTarget {
		c = s.targetCollection
	}
	if c == nil {
		return nil, fmt.Errorf("%s: %w", side, ErrTreeNotLoaded)
	}
	return c, nil
}

// CollectionChildKeys returns the sorted child keys of a collection from
// the cached tree. It does no I/O and fails with ErrTreeNotLoaded before
// Load has succeeded.
func (s *SyncSession) CollectionChildKeys(side Side, key string) ([]string, error) {
	tree, err := s.Tree(side)
	if err != nil {
		return nil, err
	}
	if _, ok := tree.Get(key); !ok {
		return nil, fmt.Errorf("%s collection %s: %w", side, key, ErrNotFound)
	}
	return tree.ChildKeys(key), nil
}

// Adapter returns the adapter of one side
func (s *SyncSession) Adapter(side Side) ports.LibraryAdapter {
	if side == SideTarget {
		return s.TargetAdapter
	}
	return s.SourceAdapter
}

// Ref returns the library reference of one side
func (s *SyncSession) Ref(side Side) domain.LibraryRef {
	if side == SideTarget {
		return s.Target
	}
	return s.Source
}

// WrapAdapterError wraps err as an AdapterError for a's application.
// It returns nil for a nil err.
func WrapAdapterError(a ports.LibraryAdapter, op string, err error) error {
	if err == nil {
		return nil
	}
	return &AdapterError{Application: a.Application(), Op: op, Err: err}
}
