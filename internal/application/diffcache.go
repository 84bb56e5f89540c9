package application

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"refsync/internal/domain"
)

// DefaultDiffTTL is how long a computed item diff stays usable
const DefaultDiffTTL = 30 * time.Minute

// DiffEntry is the item diff computed for one source/target collection pair
type DiffEntry struct {
	Diff      []string      // identifiers missing from the target, source order
	Same      []string      // identifiers present on both sides
	Items     []domain.Item // source items behind Diff, same order
	CreatedAt time.Time
}

// DiffCache keeps item diffs between the syncCollectionItems and
// addItemsToTargetCollection round trips. Entries are overwritten wholesale
// per key and expire after the TTL.
type DiffCache struct {
	store *gocache.Cache
}

// NewDiffCache creates a cache. A non-positive ttl uses DefaultDiffTTL.
// Expired entries are purged every two TTLs.
func NewDiffCache(ttl time.Duration) *DiffCache {
	if ttl <= 0 {
		ttl = DefaultDiffTTL
	}
	return &DiffCache{store: gocache.New(ttl, 2*ttl)}
}

// DiffKey builds the cache key of a source/target collection pair
func DiffKey(source, target domain.LibraryRef) string {
	return source.URI() + "#" + source.CollectionKey + "|" + target.URI() + "#" + target.CollectionKey
}

// Put stores an entry with the default TTL, stamping CreatedAt
func (c *DiffCache) Put(key string, entry DiffEntry) {
	entry.CreatedAt = time.Now()
	c.store.Set(key, entry, gocache.DefaultExpiration)
}

// Get returns a live entry
func (c *DiffCache) Get(key string) (DiffEntry, bool) {
	v, ok := c.store.Get(key)
	if !ok {
		return DiffEntry{}, false
	}
	e, ok := v.(DiffEntry)
	return e, ok
}

// Delete removes an entry
func (c *DiffCache) Delete(key string) {
	c.store.Delete(key)
}

// Len returns the number of stored entries, expired but unpurged ones included
func (c *DiffCache) Len() int {
	return c.store.ItemCount()
}
