package commands

import (
	"context"
	"errors"
	"testing"

	"refsync/internal/adapters/memory"
	"refsync/internal/adapters/registry"
	"refsync/internal/application"
	"refsync/internal/domain"
)

func TestListLibrariesCommand(t *testing.T) {
	ctx := context.Background()
	zot := memory.New("zotero")
	zot.AddLibrary(domain.Library{ID: "2", Name: "Lab group", Type: "group"})
	zot.AddLibrary(domain.Library{ID: "1", Name: "My Library", Type: "user"})
	cit := memory.New("citavi")
	cit.AddLibrary(domain.Library{ID: "p1", Name: "Thesis", Type: "project"})
	reg := registry.New(zot, cit)

	libs, err := NewListLibrariesCommand(reg, "").Execute(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"Thesis", "Lab group", "My Library"}
	if len(libs) != len(want) {
		t.Fatalf("got %d libraries, want %d", len(libs), len(want))
	}
	for i, name := range want {
		if libs[i].Name != name {
			t.Errorf("libs[%d] = %s, want %s", i, libs[i].Name, name)
		}
	}

	only, err := NewListLibrariesCommand(reg, "citavi").Execute(ctx)
	if err != nil || len(only) != 1 || only[0].Application != "citavi" {
		t.Errorf("filtered listing = %v, %v", only, err)
	}

	zot.FailOn("Libraries", errors.New("403 forbidden"))
	if _, err := NewListLibrariesCommand(reg, "").Execute(ctx); err == nil {
		t.Error("expected adapter failure to surface")
	}
}

func TestListCollectionsCommand(t *testing.T) {
	f := newSyncFixture(t, false)
	lib := f.srcRef
	lib.CollectionKey = ""

	tree, err := NewListCollectionsCommand(f.reg, lib).Execute(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree.Len() != 4 {
		t.Errorf("expected 4 collections, got %d", tree.Len())
	}
	if got := tree.ChildKeys("ROOT"); len(got) != 3 {
		t.Errorf("ChildKeys(ROOT) = %v", got)
	}

	// Dangling parent is rejected as an invalid tree
	if err := f.source.PutCollection(f.srcRef, domain.Collection{Key: "x", Name: "Orphan", ParentKey: "gone"}); err != nil {
		t.Fatal(err)
	}
	_, err = NewListCollectionsCommand(f.reg, lib).Execute(context.Background())
	var treeErr *domain.TreeError
	if !errors.As(err, &treeErr) {
		t.Errorf("expected TreeError, got %v", err)
	}

	_, err = NewListCollectionsCommand(f.reg, domain.LibraryRef{Application: "zotero"}).Execute(context.Background())
	var valErr *application.ValidationError
	if !errors.As(err, &valErr) {
		t.Errorf("expected ValidationError, got %v", err)
	}
}

func TestLinkCommands(t *testing.T) {
	ctx := context.Background()
	store := memory.NewLinkStore()
	link := domain.Link{SourceLibURI: "zotero://user/1", SourceKey: "S1", TargetLibURI: "citavi://project/p1", TargetKey: "T1"}
	if err := store.SaveLink(ctx, link); err != nil {
		t.Fatal(err)
	}

	res, err := NewGetLinkCommand(store, link.SourceLibURI, link.SourceKey, link.TargetLibURI).Execute(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Found || res.TargetKey != "T1" {
		t.Errorf("GetLink = %+v", res)
	}

	missing, err := NewGetLinkCommand(store, link.SourceLibURI, "S9", link.TargetLibURI).Execute(ctx)
	if err != nil || missing.Found {
		t.Errorf("missing link = %+v, %v", missing, err)
	}

	if _, err := NewGetLinkCommand(store, "", "S1", link.TargetLibURI).Execute(ctx); err == nil {
		t.Error("expected validation error for empty source library")
	}

	for i := 0; i < 2; i++ {
		if err := NewRemoveLinkCommand(store, link).Execute(ctx); err != nil {
			t.Fatalf("remove #%d failed: %v", i+1, err)
		}
	}

	all, err := NewListLinksCommand(store, domain.LinkFilter{}).Execute(ctx)
	if err != nil || len(all) != 0 {
		t.Errorf("links after remove = %v, %v", all, err)
	}

	store.Fail(errors.New("locked"))
	_, err = NewListLinksCommand(store, domain.LinkFilter{}).Execute(ctx)
	var storageErr *application.StorageError
	if !errors.As(err, &storageErr) {
		t.Errorf("expected StorageError, got %v", err)
	}
}

func TestTranslateCommand(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		to      string
		item    domain.Item
		field   string
		want    any
		wantErr bool
	}{
		{
			name:  "zotero to citavi",
			from:  "zotero",
			to:    "citavi",
			item:  domain.Item{"itemType": "bookSection", "title": "Chapter", "bookTitle": "Book"},
			field: "Volume",
			want:  "Book",
		},
		{
			name:  "global to zotero",
			from:  Global,
			to:    "zotero",
			item:  domain.Item{"itemType": "software", "title": "refsync"},
			field: "itemType",
			want:  "computerProgram",
		},
		{
			name:    "unknown dictionary",
			from:    "endnote",
			to:      Global,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := NewTranslateCommand(tt.from, tt.to, tt.item).Execute(context.Background())
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.Output[tt.field] != tt.want {
				t.Errorf("Output[%s] = %v, want %v", tt.field, res.Output[tt.field], tt.want)
			}
		})
	}
}

func TestImportLinksCommand(t *testing.T) {
	ctx := context.Background()
	store := memory.NewLinkStore()
	batch := []domain.Link{
		{SourceLibURI: "zotero://user/1", SourceKey: "S1", TargetLibURI: "citavi://project/p1", TargetKey: "T1"},
		{SourceLibURI: "zotero://user/1", SourceKey: "S2", TargetLibURI: "citavi://project/p1", TargetKey: "T2"},
	}

	n, err := NewImportLinksCommand(store, batch).Execute(ctx)
	if err != nil || n != 2 {
		t.Fatalf("Execute() = %d, %v", n, err)
	}
	all, _ := store.Links(ctx, domain.LinkFilter{})
	if len(all) != 2 {
		t.Errorf("expected 2 stored links, got %d", len(all))
	}

	if n, err := NewImportLinksCommand(store, nil).Execute(ctx); err != nil || n != 0 {
		t.Errorf("empty import = %d, %v", n, err)
	}

	invalid := append([]domain.Link{}, batch[0])
	invalid = append(invalid, domain.Link{SourceLibURI: "zotero://user/1", SourceKey: "S3", TargetLibURI: "citavi://project/p1"})
	_, err = NewImportLinksCommand(store, invalid).Execute(ctx)
	var valErr *application.ValidationError
	if !errors.As(err, &valErr) || !contains(err.Error(), "link 2") {
		t.Errorf("expected ValidationError for link 2, got %v", err)
	}
	if all, _ := store.Links(ctx, domain.LinkFilter{}); len(all) != 2 {
		t.Errorf("invalid batch was partly stored: %d links", len(all))
	}

	store.Fail(errors.New("locked"))
	_, err = NewImportLinksCommand(store, batch).Execute(ctx)
	var storageErr *application.StorageError
	if !errors.As(err, &storageErr) {
		t.Errorf("expected StorageError, got %v", err)
	}
}
