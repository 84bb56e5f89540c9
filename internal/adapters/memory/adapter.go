// Package memory implements an in-process library adapter. It backs the
// tests and the demo fixtures of the CLI.
package memory

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"refsync/internal/application"
	"refsync/internal/domain"
	"refsync/internal/ports"
)

var _ ports.LibraryAdapter = (*Adapter)(nil)

type library struct {
	info        domain.Library
	collections map[string]domain.Collection
	items       map[string]domain.Item
	modified    map[string]time.Time
}

// Adapter keeps libraries, collections and global items in memory
type Adapter struct {
	mu          sync.RWMutex
	application string
	canCreate   bool
	libraries   map[string]*library
	failures    map[string]error
	now         func() time.Time
}

// Option configures an Adapter
type Option func(*Adapter)

// WithCollectionCreation toggles the AddCollection capability
func WithCollectionCreation(enabled bool) Option {
	return func(a *Adapter) {
		a.canCreate = enabled
	}
}

// WithClock sets the clock used to stamp item modification dates
func WithClock(now func() time.Time) Option {
	return func(a *Adapter) {
		a.now = now
	}
}

// New creates an empty adapter for application
func New(application string, opts ...Option) *Adapter {
	a := &Adapter{
		application: application,
		canCreate:   true,
		libraries:   make(map[string]*library),
		failures:    make(map[string]error),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AddLibrary registers a library. Application is forced to the adapter's.
func (a *Adapter) AddLibrary(info domain.Library) domain.LibraryRef {
	a.mu.Lock()
	defer a.mu.Unlock()

	info.Application = a.application
	ref := info.Ref()
	a.libraries[ref.URI()] = &library{
		info:        info,
		collections: make(map[string]domain.Collection),
		items:       make(map[string]domain.Item),
		modified:    make(map[string]time.Time),
	}
	return ref
}

// PutCollection stores a collection as is
func (a *Adapter) PutCollection(ref domain.LibraryRef, c domain.Collection) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	lib, err := a.library(ref)
	if err != nil {
		return err
	}
	lib.collections[c.Key] = c
	return nil
}

// PutItem stores a global item. Items without an id get a fresh key.
func (a *Adapter) PutItem(ref domain.LibraryRef, item domain.Item) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	lib, err := a.library(ref)
	if err != nil {
		return "", err
	}
	stored := item.Clone()
	key := stored.String(domain.FieldID)
	if key == "" {
		key = newKey()
		stored[domain.FieldID] = key
	}
	lib.items[key] = stored
	lib.modified[key] = a.now()
	return key, nil
}

// FailOn makes every call of op ("Collections", "CollectionItems", ...)
// return err. A nil err clears the failure.
func (a *Adapter) FailOn(op string, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err == nil {
		delete(a.failures, op)
		return
	}
	a.failures[op] = err
}

func (a *Adapter) Application() string {
	return a.application
}

func (a *Adapter) Libraries(ctx context.Context) ([]domain.Library, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if err := a.failure("Libraries"); err != nil {
		return nil, err
	}
	out := make([]domain.Library, 0, len(a.libraries))
	for _, lib := range a.libraries {
		out = append(out, lib.info)
	}
	slices.SortFunc(out, func(x, y domain.Library) int {
		return strings.Compare(x.ID, y.ID)
	})
	return out, nil
}

func (a *Adapter) Collections(ctx context.Context, ref domain.LibraryRef) ([]domain.Collection, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if err := a.failure("Collections"); err != nil {
		return nil, err
	}
	lib, err := a.library(ref)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Collection, 0, len(lib.collections))
	for _, c := range lib.collections {
		out = append(out, c)
	}
	slices.SortFunc(out, func(x, y domain.Collection) int {
		return strings.Compare(x.Key, y.Key)
	})
	return out, nil
}

func (a *Adapter) Collection(ctx context.Context, ref domain.LibraryRef, key string) (*domain.Collection, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if err := a.failure("Collection"); err != nil {
		return nil, err
	}
	lib, err := a.library(ref)
	if err != nil {
		return nil, err
	}
	c, ok := lib.collections[key]
	if !ok {
		return nil, fmt.Errorf("collection %s: %w", key, application.ErrNotFound)
	}
	return &c, nil
}

func (a *Adapter) CollectionItemIDs(ctx context.Context, ref domain.LibraryRef, key string) ([]string, error) {
	items, err := a.CollectionItems(ctx, ref, key, domain.FieldID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.String(domain.FieldID))
	}
	return ids, nil
}

// CollectionItems returns the items filed in collection key, ordered by
// key. fields restricts the returned fields; the id is always kept.
func (a *Adapter) CollectionItems(ctx context.Context, ref domain.LibraryRef, key string, fields ...string) ([]domain.Item, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if err := a.failure("CollectionItems"); err != nil {
		return nil, err
	}
	lib, err := a.library(ref)
	if err != nil {
		return nil, err
	}
	if _, ok := lib.collections[key]; !ok {
		return nil, fmt.Errorf("collection %s: %w", key, application.ErrNotFound)
	}

	var out []domain.Item
	for _, id := range slices.Sorted(maps.Keys(lib.items)) {
		it := lib.items[id]
		colls, _ := it[domain.FieldCollections].([]string)
		if !slices.Contains(colls, key) {
			continue
		}
		out = append(out, it.Project(fields...))
	}
	return out, nil
}

func (a *Adapter) ModificationDates(ctx context.Context, ref domain.LibraryRef, ids []string) ([]time.Time, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if err := a.failure("ModificationDates"); err != nil {
		return nil, err
	}
	lib, err := a.library(ref)
	if err != nil {
		return nil, err
	}
	out := make([]time.Time, 0, len(ids))
	for _, id := range ids {
		ts, ok := lib.modified[id]
		if !ok {
			return nil, fmt.Errorf("item %s: %w", id, application.ErrNotFound)
		}
		out = append(out, ts)
	}
	return out, nil
}

func (a *Adapter) CanCreateCollection() bool {
	return a.canCreate
}

func (a *Adapter) AddCollection(ctx context.Context, ref domain.LibraryRef, c domain.Collection) (string, error) {
	if !a.canCreate {
		return "", application.ErrNotImplemented
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.failure("AddCollection"); err != nil {
		return "", err
	}
	lib, err := a.library(ref)
	if err != nil {
		return "", err
	}
	if c.ParentKey != "" {
		if _, ok := lib.collections[c.ParentKey]; !ok {
			return "", fmt.Errorf("parent collection %s: %w", c.ParentKey, application.ErrNotFound)
		}
	}
	c.Key = newKey()
	lib.collections[c.Key] = c
	return c.Key, nil
}

func (a *Adapter) AddItem(ctx context.Context, ref domain.LibraryRef, collectionKey string, item domain.Item) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.failure("AddItem"); err != nil {
		return "", err
	}
	lib, err := a.library(ref)
	if err != nil {
		return "", err
	}
	if _, ok := lib.collections[collectionKey]; !ok {
		return "", fmt.Errorf("collection %s: %w", collectionKey, application.ErrNotFound)
	}

	stored := item.Clone()
	key := newKey()
	stored[domain.FieldID] = key
	stored[domain.FieldCollections] = []string{collectionKey}
	lib.items[key] = stored
	lib.modified[key] = a.now()
	return key, nil
}

// Item returns a copy of a stored item
func (a *Adapter) Item(ref domain.LibraryRef, key string) (domain.Item, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	lib, err := a.library(ref)
	if err != nil {
		return nil, false
	}
	it, ok := lib.items[key]
	if !ok {
		return nil, false
	}
	return it.Clone(), true
}

// library must be called with the lock held
func (a *Adapter) library(ref domain.LibraryRef) (*library, error) {
	lib, ok := a.libraries[ref.URI()]
	if !ok {
		return nil, fmt.Errorf("library %s: %w", ref.URI(), application.ErrNotFound)
	}
	return lib, nil
}

func (a *Adapter) failure(op string) error {
	return a.failures[op]
}

// newKey returns an 8 character upper-case key in the style of remote
// library keys
func newKey() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
