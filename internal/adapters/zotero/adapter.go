// Package zotero implements the library adapter for the Zotero Web API.
// Items cross the adapter boundary in the global vocabulary; the
// Zotero dictionary translates them on the way in and out.
package zotero

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"refsync/internal/application"
	"refsync/internal/domain"
	"refsync/internal/logging"
	"refsync/internal/ports"
	"refsync/internal/schema"
)

// Application is the adapter name used in library references
const Application = "zotero"

// keysPerRequest is the API limit for itemKey filters
const keysPerRequest = 50

var _ ports.LibraryAdapter = (*Adapter)(nil)

type collectionData struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	// false for top-level collections, a key otherwise
	ParentCollection any `json:"parentCollection"`
}

type groupData struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Adapter serves one Zotero user and the groups the user belongs to
type Adapter struct {
	client     *Client
	userID     string
	translator *schema.Translator
}

// New creates an adapter for userID using client
func New(client *Client, userID string) *Adapter {
	return &Adapter{
		client:     client,
		userID:     userID,
		translator: schema.NewTranslator(schema.Zotero()),
	}
}

func (a *Adapter) Application() string {
	return Application
}

// Libraries returns the personal library followed by the user's groups
func (a *Adapter) Libraries(ctx context.Context) ([]domain.Library, error) {
	libs := []domain.Library{{
		ID:          a.userID,
		Name:        "My Library",
		Type:        "user",
		Application: Application,
	}}

	groups, err := a.client.getAll(ctx, "/users/"+url.PathEscape(a.userID)+"/groups", nil)
	if err != nil {
		return nil, err
	}
	for _, obj := range groups {
		var g groupData
		if err := json.Unmarshal(obj.Data, &g); err != nil {
			return nil, fmt.Errorf("failed to decode group: %w", err)
		}
		libs = append(libs, domain.Library{
			ID:          strconv.Itoa(g.ID),
			Name:        g.Name,
			Type:        "group",
			Application: Application,
		})
	}
	return libs, nil
}

func (a *Adapter) Collections(ctx context.Context, lib domain.LibraryRef) ([]domain.Collection, error) {
	prefix, err := libraryPath(lib)
	if err != nil {
		return nil, err
	}
	objs, err := a.client.getAll(ctx, prefix+"/collections", nil)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Collection, 0, len(objs))
	for _, obj := range objs {
		c, err := decodeCollection(obj)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (a *Adapter) Collection(ctx context.Context, lib domain.LibraryRef, key string) (*domain.Collection, error) {
	prefix, err := libraryPath(lib)
	if err != nil {
		return nil, err
	}
	var obj object
	if _, err := a.client.getJSON(ctx, prefix+"/collections/"+url.PathEscape(key), nil, &obj); err != nil {
		return nil, err
	}
	c, err := decodeCollection(obj)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (a *Adapter) CollectionItemIDs(ctx context.Context, lib domain.LibraryRef, key string) ([]string, error) {
	prefix, err := libraryPath(lib)
	if err != nil {
		return nil, err
	}
	body, err := a.client.getText(ctx, prefix+"/collections/"+url.PathEscape(key)+"/items/top", url.Values{"format": {"keys"}})
	if err != nil {
		return nil, err
	}
	return strings.Fields(body), nil
}

// CollectionItems returns the top-level items of a collection. Notes and
// attachments are children in Zotero and never reach the sync engine.
func (a *Adapter) CollectionItems(ctx context.Context, lib domain.LibraryRef, key string, fields ...string) ([]domain.Item, error) {
	prefix, err := libraryPath(lib)
	if err != nil {
		return nil, err
	}
	objs, err := a.client.getAll(ctx, prefix+"/collections/"+url.PathEscape(key)+"/items/top", nil)
	if err != nil {
		return nil, err
	}

	logger := logging.FromContext(ctx)
	out := make([]domain.Item, 0, len(objs))
	for _, obj := range objs {
		var native domain.Item
		if err := json.Unmarshal(obj.Data, &native); err != nil {
			return nil, fmt.Errorf("failed to decode item %s: %w", obj.Key, err)
		}
		global, warnings := a.translator.ToGlobal(native)
		schema.LogWarnings(logger, Application, obj.Key, warnings)
		global[domain.FieldID] = obj.Key
		out = append(out, global.Project(fields...))
	}
	return out, nil
}

// ModificationDates looks items up in batches and returns their
// dateModified in the order of ids
func (a *Adapter) ModificationDates(ctx context.Context, lib domain.LibraryRef, ids []string) ([]time.Time, error) {
	prefix, err := libraryPath(lib)
	if err != nil {
		return nil, err
	}

	modified := make(map[string]time.Time, len(ids))
	for batch := range slices.Chunk(ids, keysPerRequest) {
		objs, err := a.client.getAll(ctx, prefix+"/items", url.Values{"itemKey": {strings.Join(batch, ",")}})
		if err != nil {
			return nil, err
		}
		for _, obj := range objs {
			var data struct {
				DateModified string `json:"dateModified"`
			}
			if err := json.Unmarshal(obj.Data, &data); err != nil {
				return nil, fmt.Errorf("failed to decode item %s: %w", obj.Key, err)
			}
			ts, err := time.Parse(time.RFC3339, data.DateModified)
			if err != nil {
				return nil, fmt.Errorf("item %s has invalid dateModified %q: %w", obj.Key, data.DateModified, err)
			}
			modified[obj.Key] = ts
		}
	}

	out := make([]time.Time, 0, len(ids))
	for _, id := range ids {
		ts, ok := modified[id]
		if !ok {
			return nil, fmt.Errorf("item %s: %w", id, application.ErrNotFound)
		}
		out = append(out, ts)
	}
	return out, nil
}

func (a *Adapter) CanCreateCollection() bool {
	return true
}

func (a *Adapter) AddCollection(ctx context.Context, lib domain.LibraryRef, c domain.Collection) (string, error) {
	prefix, err := libraryPath(lib)
	if err != nil {
		return "", err
	}
	payload := map[string]any{"name": c.Name, "parentCollection": false}
	if c.ParentKey != "" {
		payload["parentCollection"] = c.ParentKey
	}
	return a.client.create(ctx, prefix+"/collections", payload)
}

// AddItem translates item to Zotero fields and files it in collectionKey
func (a *Adapter) AddItem(ctx context.Context, lib domain.LibraryRef, collectionKey string, item domain.Item) (string, error) {
	prefix, err := libraryPath(lib)
	if err != nil {
		return "", err
	}

	native, warnings := a.translator.ToLocal(item)
	schema.LogWarnings(logging.FromContext(ctx), Application, item.String(domain.FieldID), warnings)

	// Server-assigned
	delete(native, "key")
	delete(native, "version")
	delete(native, "dateModified")
	native["collections"] = []string{collectionKey}

	return a.client.create(ctx, prefix+"/items", native)
}

// libraryPath returns the URL prefix of a user or group library
func libraryPath(lib domain.LibraryRef) (string, error) {
	if lib.ID == "" {
		return "", &application.ValidationError{Field: "library id", Message: "is required"}
	}
	switch lib.Type {
	case "user":
		return "/users/" + url.PathEscape(lib.ID), nil
	case "group":
		return "/groups/" + url.PathEscape(lib.ID), nil
	default:
		return "", fmt.Errorf("zotero library type %q: %w", lib.Type, application.ErrInvalidRequest)
	}
}

func decodeCollection(obj object) (domain.Collection, error) {
	var data collectionData
	if err := json.Unmarshal(obj.Data, &data); err != nil {
		return domain.Collection{}, fmt.Errorf("failed to decode collection %s: %w", obj.Key, err)
	}
	c := domain.Collection{Key: obj.Key, Name: data.Name, Version: obj.Version}
	if parent, ok := data.ParentCollection.(string); ok {
		c.ParentKey = parent
	}
	return c, nil
}
