package ports

import (
	"context"
	"time"

	"refsync/internal/domain"
)

// LibraryAdapter is the capability interface every reference manager
// integration implements. The sync engine is written only against it.
type LibraryAdapter interface {
	// Application returns the application name the adapter serves (e.g. "zotero")
	Application() string

	// Libraries lists every library the adapter can reach
	Libraries(ctx context.Context) ([]domain.Library, error)

	// Collection queries
	Collections(ctx context.Context, lib domain.LibraryRef) ([]domain.Collection, error)
	Collection(ctx context.Context, lib domain.LibraryRef, key string) (*domain.Collection, error)

	// Item queries. Items are returned in the global vocabulary.
	CollectionItemIDs(ctx context.Context, lib domain.LibraryRef, key string) ([]string, error)
	CollectionItems(ctx context.Context, lib domain.LibraryRef, key string, fields ...string) ([]domain.Item, error)
	ModificationDates(ctx context.Context, lib domain.LibraryRef, ids []string) ([]time.Time, error)

	// CanCreateCollection reports whether AddCollection is supported.
	// Callers check it before invoking AddCollection.
	CanCreateCollection() bool

	// AddCollection creates a collection and returns its key. Adapters
	// without the capability return application.ErrNotImplemented.
	AddCollection(ctx context.Context, lib domain.LibraryRef, c domain.Collection) (string, error)

	// AddItem creates a global item inside a collection and returns its key
	AddItem(ctx context.Context, lib domain.LibraryRef, collectionKey string, item domain.Item) (string, error)
}

// AdapterResolver looks adapters up by application name
type AdapterResolver interface {
	Adapter(application string) (LibraryAdapter, error)
	Adapters() []LibraryAdapter
}
