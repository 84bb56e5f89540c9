// Package citavi implements the library adapter for Citavi projects,
// reached through the local automation bridge. Categories play the role
// of collections. The bridge cannot create categories.
package citavi

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"refsync/internal/application"
	"refsync/internal/domain"
	"refsync/internal/logging"
	"refsync/internal/ports"
	"refsync/internal/schema"
)

// Application is the adapter name used in library references
const Application = "citavi"

var _ ports.LibraryAdapter = (*Adapter)(nil)

type project struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type category struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ParentID string `json:"parentId,omitempty"`
}

type modification struct {
	ID         string    `json:"id"`
	ModifiedOn time.Time `json:"modifiedOn"`
}

// Adapter exposes the projects open in the bridge as libraries
type Adapter struct {
	bridge     *Bridge
	translator *schema.Translator
}

// New creates an adapter on top of bridge
func New(bridge *Bridge) *Adapter {
	return &Adapter{
		bridge:     bridge,
		translator: schema.NewTranslator(schema.Citavi()),
	}
}

func (a *Adapter) Application() string {
	return Application
}

func (a *Adapter) Libraries(ctx context.Context) ([]domain.Library, error) {
	var projects []project
	if err := a.bridge.get(ctx, "/projects", nil, &projects); err != nil {
		return nil, err
	}
	libs := make([]domain.Library, 0, len(projects))
	for _, p := range projects {
		libs = append(libs, domain.Library{ID: p.ID, Name: p.Name, Type: "project", Application: Application})
	}
	return libs, nil
}

func (a *Adapter) Collections(ctx context.Context, lib domain.LibraryRef) ([]domain.Collection, error) {
	prefix, err := projectPath(lib)
	if err != nil {
		return nil, err
	}
	var cats []category
	if err := a.bridge.get(ctx, prefix+"/categories", nil, &cats); err != nil {
		return nil, err
	}
	out := make([]domain.Collection, 0, len(cats))
	for _, c := range cats {
		out = append(out, c.collection())
	}
	return out, nil
}

func (a *Adapter) Collection(ctx context.Context, lib domain.LibraryRef, key string) (*domain.Collection, error) {
	prefix, err := projectPath(lib)
	if err != nil {
		return nil, err
	}
	var c category
	if err := a.bridge.get(ctx, prefix+"/categories/"+url.PathEscape(key), nil, &c); err != nil {
		return nil, err
	}
	coll := c.collection()
	return &coll, nil
}

func (a *Adapter) CollectionItemIDs(ctx context.Context, lib domain.LibraryRef, key string) ([]string, error) {
	items, err := a.references(ctx, lib, key, url.Values{"fields": {"Id"}})
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.String("Id"))
	}
	return ids, nil
}

func (a *Adapter) CollectionItems(ctx context.Context, lib domain.LibraryRef, key string, fields ...string) ([]domain.Item, error) {
	natives, err := a.references(ctx, lib, key, nil)
	if err != nil {
		return nil, err
	}

	logger := logging.FromContext(ctx)
	out := make([]domain.Item, 0, len(natives))
	for _, native := range natives {
		global, warnings := a.translator.ToGlobal(native)
		schema.LogWarnings(logger, Application, native.String("Id"), warnings)
		out = append(out, global.Project(fields...))
	}
	return out, nil
}

func (a *Adapter) references(ctx context.Context, lib domain.LibraryRef, key string, query url.Values) ([]domain.Item, error) {
	prefix, err := projectPath(lib)
	if err != nil {
		return nil, err
	}
	var natives []domain.Item
	if err := a.bridge.get(ctx, prefix+"/categories/"+url.PathEscape(key)+"/references", query, &natives); err != nil {
		return nil, err
	}
	return natives, nil
}

func (a *Adapter) ModificationDates(ctx context.Context, lib domain.LibraryRef, ids []string) ([]time.Time, error) {
	prefix, err := projectPath(lib)
	if err != nil {
		return nil, err
	}
	var mods []modification
	if err := a.bridge.post(ctx, prefix+"/references/modified", map[string][]string{"ids": ids}, &mods); err != nil {
		return nil, err
	}

	byID := make(map[string]time.Time, len(mods))
	for _, m := range mods {
		byID[m.ID] = m.ModifiedOn
	}
	out := make([]time.Time, 0, len(ids))
	for _, id := range ids {
		ts, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("reference %s: %w", id, application.ErrNotFound)
		}
		out = append(out, ts)
	}
	return out, nil
}

func (a *Adapter) CanCreateCollection() bool {
	return false
}

func (a *Adapter) AddCollection(context.Context, domain.LibraryRef, domain.Collection) (string, error) {
	return "", fmt.Errorf("citavi categories: %w", application.ErrNotImplemented)
}

func (a *Adapter) AddItem(ctx context.Context, lib domain.LibraryRef, collectionKey string, item domain.Item) (string, error) {
	prefix, err := projectPath(lib)
	if err != nil {
		return "", err
	}

	native, warnings := a.translator.ToLocal(item)
	schema.LogWarnings(logging.FromContext(ctx), Application, item.String(domain.FieldID), warnings)
	delete(native, "Id")
	delete(native, "Categories")

	var created struct {
		ID string `json:"id"`
	}
	path := prefix + "/categories/" + url.PathEscape(collectionKey) + "/references"
	if err := a.bridge.post(ctx, path, native, &created); err != nil {
		return "", err
	}
	if created.ID == "" {
		return "", fmt.Errorf("citavi bridge POST %s: response has no id", path)
	}
	return created.ID, nil
}

func (c category) collection() domain.Collection {
	return domain.Collection{Key: c.ID, Name: c.Name, ParentKey: c.ParentID}
}

func projectPath(lib domain.LibraryRef) (string, error) {
	if strings.TrimSpace(lib.ID) == "" {
		return "", &application.ValidationError{Field: "project id", Message: "is required"}
	}
	return "/projects/" + url.PathEscape(lib.ID), nil
}
