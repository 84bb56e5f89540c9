package memory

import (
	"context"
	"slices"
	"sync"

	"refsync/internal/domain"
	"refsync/internal/ports"
)

var _ ports.LinkStore = (*LinkStore)(nil)

// LinkStore keeps links in a slice. Like the SQLite store it does not
// enforce uniqueness of the natural key.
type LinkStore struct {
	mu    sync.RWMutex
	links []domain.Link
	err   error
}

// NewLinkStore creates an empty link store
func NewLinkStore() *LinkStore {
	return &LinkStore{}
}

// Fail makes every subsequent call return err. nil clears it.
func (s *LinkStore) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *LinkStore) Open(string) error { return nil }
func (s *LinkStore) Close() error      { return nil }

func (s *LinkStore) TargetKey(ctx context.Context, sourceLibURI, sourceKey, targetLibURI string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.err != nil {
		return "", false, s.err
	}
	for i := len(s.links) - 1; i >= 0; i-- {
		l := s.links[i]
		if l.SourceLibURI == sourceLibURI && l.SourceKey == sourceKey && l.TargetLibURI == targetLibURI {
			return l.TargetKey, true, nil
		}
	}
	return "", false, nil
}

func (s *LinkStore) SaveLink(ctx context.Context, link domain.Link) error {
	return s.SaveLinks(ctx, []domain.Link{link})
}

func (s *LinkStore) SaveLinks(ctx context.Context, links []domain.Link) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return s.err
	}
	s.links = append(s.links, links...)
	return nil
}

func (s *LinkStore) RemoveLink(ctx context.Context, link domain.Link) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return s.err
	}
	s.links = slices.DeleteFunc(s.links, func(l domain.Link) bool {
		return l.SourceLibURI == link.SourceLibURI &&
			l.SourceKey == link.SourceKey &&
			l.TargetLibURI == link.TargetLibURI &&
			(link.TargetKey == "" || l.TargetKey == link.TargetKey)
	})
	return nil
}

func (s *LinkStore) Links(ctx context.Context, filter domain.LinkFilter) ([]domain.Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.err != nil {
		return nil, s.err
	}
	var out []domain.Link
	for _, l := range s.links {
		if filter.SourceLibURI != "" && l.SourceLibURI != filter.SourceLibURI {
			continue
		}
		if filter.TargetLibURI != "" && l.TargetLibURI != filter.TargetLibURI {
			continue
		}
		if filter.SourceKey != "" && l.SourceKey != filter.SourceKey {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}
