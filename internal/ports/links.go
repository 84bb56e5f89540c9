package ports

import (
	"context"

	"refsync/internal/domain"
)

// LinkStore persists source→target identity links between libraries.
// Uniqueness per (source library, source key, target library) is not
// enforced here: callers check TargetKey before SaveLink.
type LinkStore interface {
	// Lifecycle
	Open(path string) error
	Close() error

	// TargetKey resolves a linked target key. ok is false when no link
	// exists; err is reserved for storage faults.
	TargetKey(ctx context.Context, sourceLibURI, sourceKey, targetLibURI string) (key string, ok bool, err error)

	SaveLink(ctx context.Context, link domain.Link) error

	// SaveLinks inserts a batch atomically
	SaveLinks(ctx context.Context, links []domain.Link) error

	// RemoveLink deletes the association. Removing a missing link is not an error.
	RemoveLink(ctx context.Context, link domain.Link) error

	Links(ctx context.Context, filter domain.LinkFilter) ([]domain.Link, error)
}
