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

type syncFixture struct {
	source *memory.Adapter
	target *memory.Adapter
	links  *memory.LinkStore
	diffs  *application.DiffCache
	reg    *registry.Registry
	srcRef domain.LibraryRef
	tgtRef domain.LibraryRef
}

// newSyncFixture builds a source collection "Papers" with children a, b, c
// and a target collection with child a only
func newSyncFixture(t *testing.T, targetCanCreate bool) *syncFixture {
	t.Helper()

	f := &syncFixture{
		source: memory.New("zotero"),
		target: memory.New("citavi", memory.WithCollectionCreation(targetCanCreate)),
		links:  memory.NewLinkStore(),
		diffs:  application.NewDiffCache(0),
	}
	f.reg = registry.New(f.source, f.target)

	f.srcRef = f.source.AddLibrary(domain.Library{ID: "1", Name: "My Library", Type: "user"})
	f.srcRef.CollectionKey = "ROOT"
	f.tgtRef = f.target.AddLibrary(domain.Library{ID: "p1", Name: "Thesis", Type: "project"})
	f.tgtRef.CollectionKey = "T"

	mustPut := func(err error) {
		if err != nil {
			t.Fatalf("fixture setup failed: %v", err)
		}
	}
	mustPut(f.source.PutCollection(f.srcRef, domain.Collection{Key: "ROOT", Name: "Papers"}))
	mustPut(f.source.PutCollection(f.srcRef, domain.Collection{Key: "a", Name: "Alpha", ParentKey: "ROOT"}))
	mustPut(f.source.PutCollection(f.srcRef, domain.Collection{Key: "b", Name: "Beta", ParentKey: "ROOT"}))
	mustPut(f.source.PutCollection(f.srcRef, domain.Collection{Key: "c", Name: "Gamma", ParentKey: "ROOT"}))
	mustPut(f.target.PutCollection(f.tgtRef, domain.Collection{Key: "T", Name: "Papers"}))
	mustPut(f.target.PutCollection(f.tgtRef, domain.Collection{Key: "a", Name: "Alpha", ParentKey: "T"}))

	return f
}

func (f *syncFixture) putItems(t *testing.T) {
	t.Helper()
	items := []struct {
		side  *memory.Adapter
		ref   domain.LibraryRef
		key   string
		sync  string
		title string
	}{
		{f.source, f.srcRef, "S1", "k1", "First"},
		{f.source, f.srcRef, "S2", "k2", "Second"},
		{f.source, f.srcRef, "S3", "k3", "Third"},
		{f.target, f.tgtRef, "X2", "k2", "Second (target copy)"},
	}
	for _, it := range items {
		_, err := it.side.PutItem(it.ref, domain.Item{
			domain.FieldID:          it.key,
			domain.FieldSyncID:      it.sync,
			domain.FieldTitle:       it.title,
			domain.FieldCollections: []string{it.ref.CollectionKey},
		})
		if err != nil {
			t.Fatalf("PutItem failed: %v", err)
		}
	}
}

func (f *syncFixture) command(action domain.Action) *SyncCommand {
	return NewSyncCommand(f.reg, f.links, f.diffs, SyncRequest{
		Source: f.srcRef,
		Target: f.tgtRef,
		Action: action,
	})
}

func (f *syncFixture) run(t *testing.T, action domain.Action) *domain.SyncResponse {
	t.Helper()
	resp, err := f.command(action).Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute(%s) failed: %v", action, err)
	}
	return resp
}

func TestSyncRequest_Validate(t *testing.T) {
	src := domain.LibraryRef{Application: "zotero", Type: "user", ID: "1", CollectionKey: "ROOT"}
	tgt := domain.LibraryRef{Application: "citavi", Type: "project", ID: "p1", CollectionKey: "T"}

	tests := []struct {
		name    string
		req     SyncRequest
		wantErr bool
		errMsg  string
	}{
		{name: "valid", req: SyncRequest{Source: src, Target: tgt}},
		{
			name:    "missing source collection",
			req:     SyncRequest{Source: domain.LibraryRef{Application: "zotero", Type: "user", ID: "1"}, Target: tgt},
			wantErr: true,
			errMsg:  "source.collection key is required",
		},
		{
			name:    "missing target application",
			req:     SyncRequest{Source: src, Target: domain.LibraryRef{Type: "project", ID: "p1", CollectionKey: "T"}},
			wantErr: true,
			errMsg:  "target.application is required",
		},
		{
			name:    "same collection",
			req:     SyncRequest{Source: src, Target: src},
			wantErr: true,
			errMsg:  "same collection",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error containing %q", tt.errMsg)
				}
				if !contains(err.Error(), tt.errMsg) {
					t.Errorf("expected error containing %q, got %q", tt.errMsg, err.Error())
				}
				if !errors.Is(err, application.ErrInvalidRequest) {
					t.Errorf("expected ErrInvalidRequest, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestSyncCommand_StageTableCoversEveryAction(t *testing.T) {
	actions := []domain.Action{
		domain.ActionStart,
		domain.ActionStartSyncCollections,
		domain.ActionSyncCollectionsCreateChildren,
		domain.ActionSyncCollectionsChildrenConfirmed,
		domain.ActionSyncCollectionItems,
		domain.ActionAddItemsToTargetCollection,
	}
	for _, a := range actions {
		if _, ok := stages[a]; !ok {
			t.Errorf("no handler for %s", a)
		}
	}
	if len(stages) != len(actions) {
		t.Errorf("expected %d handlers, got %d", len(actions), len(stages))
	}
}

func TestSyncCommand_WorkflowProgression(t *testing.T) {
	ctx := context.Background()
	f := newSyncFixture(t, false)

	cmd := f.command(domain.ActionStart)
	session, err := application.NewSyncSession(f.reg, f.srcRef, f.tgtRef)
	if err != nil {
		t.Fatalf("NewSyncSession failed: %v", err)
	}
	cmd.session = session

	// Equal names: start decides nothing and moves on
	tr, err := cmd.start(ctx)
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if tr.response != nil {
		t.Errorf("expected no response for equal names, got %+v", tr.response)
	}
	if tr.next != domain.ActionStartSyncCollections {
		t.Errorf("start next = %s, want startSyncCollections", tr.next)
	}

	// Source has a, b, c; target has a and cannot create collections
	tr, err = cmd.startSyncCollections(ctx)
	if err != nil {
		t.Fatalf("startSyncCollections failed: %v", err)
	}
	if tr.response == nil || tr.response.ResponseAction != domain.ResponseConfirm {
		t.Fatalf("expected confirm response, got %+v", tr.response)
	}
	if tr.response.Action != domain.ActionSyncCollectionItems {
		t.Errorf("action = %s, want syncCollectionItems", tr.response.Action)
	}

	// The same round trip through Execute
	resp := f.run(t, domain.ActionStart)
	if resp.ResponseAction != domain.ResponseConfirm || resp.Action != domain.ActionSyncCollectionItems {
		t.Errorf("Execute(start) = %+v", resp)
	}
}

func TestSyncCommand_DifferentNamesNeedConfirmation(t *testing.T) {
	f := newSyncFixture(t, false)
	if err := f.target.PutCollection(f.tgtRef, domain.Collection{Key: "T", Name: "Literature"}); err != nil {
		t.Fatal(err)
	}

	resp := f.run(t, domain.ActionStart)
	if resp.ResponseAction != domain.ResponseConfirm {
		t.Fatalf("expected confirm, got %+v", resp)
	}
	if resp.Action != domain.ActionStartSyncCollections {
		t.Errorf("action = %s, want startSyncCollections", resp.Action)
	}
	if !contains(resp.ResponseData, "different names") {
		t.Errorf("unexpected message %q", resp.ResponseData)
	}
}

func TestSyncCommand_CreatesMissingSubcollections(t *testing.T) {
	ctx := context.Background()
	f := newSyncFixture(t, true)

	resp := f.run(t, domain.ActionStart)
	if resp.Action != domain.ActionSyncCollectionsCreateChildren {
		t.Fatalf("Execute(start) = %+v, want confirm -> syncCollectionsCreateChildren", resp)
	}

	resp = f.run(t, resp.Action)
	if resp.Action != domain.ActionSyncCollectionsChildrenConfirmed {
		t.Fatalf("Execute(createChildren) = %+v", resp)
	}
	if !contains(resp.ResponseData, "Beta, Gamma") {
		t.Errorf("expected missing names in %q", resp.ResponseData)
	}
	if contains(resp.ResponseData, "Alpha") {
		t.Errorf("existing child listed as missing: %q", resp.ResponseData)
	}

	// Creation falls through to the item stage; no items means in sync
	resp = f.run(t, resp.Action)
	if resp.ResponseAction != domain.ResponseAlert || resp.ResponseData != "Collections are already in sync" {
		t.Errorf("Execute(confirmed) = %+v", resp)
	}

	colls, err := f.target.Collections(ctx, f.tgtRef)
	if err != nil {
		t.Fatal(err)
	}
	children := 0
	for _, c := range colls {
		if c.ParentKey == "T" {
			children++
		}
	}
	if children != 3 {
		t.Errorf("expected 3 target children after creation, got %d", children)
	}

	for _, srcKey := range []string{"b", "c"} {
		if _, ok, _ := f.links.TargetKey(ctx, f.srcRef.URI(), srcKey, f.tgtRef.URI()); !ok {
			t.Errorf("no collection link saved for %s", srcKey)
		}
	}

	// Second run: counts match, straight to items
	resp = f.run(t, domain.ActionStart)
	if resp.ResponseData != "Collections are already in sync" {
		t.Errorf("second run = %+v", resp)
	}
}

func TestSyncCommand_ItemDiffAndCopy(t *testing.T) {
	ctx := context.Background()
	f := newSyncFixture(t, false)
	f.putItems(t)

	resp := f.run(t, domain.ActionSyncCollectionItems)
	if resp.ResponseAction != domain.ResponseConfirm || resp.Action != domain.ActionAddItemsToTargetCollection {
		t.Fatalf("Execute(syncCollectionItems) = %+v", resp)
	}
	if resp.ResponseData != "Add 2 items to target?" {
		t.Errorf("unexpected message %q", resp.ResponseData)
	}

	entry, ok := f.diffs.Get(application.DiffKey(f.srcRef, f.tgtRef))
	if !ok {
		t.Fatal("diff not cached")
	}
	if len(entry.Diff) != 2 || entry.Diff[0] != "k1" || entry.Diff[1] != "k3" {
		t.Errorf("Diff = %v, want [k1 k3]", entry.Diff)
	}
	if len(entry.Same) != 1 || entry.Same[0] != "k2" {
		t.Errorf("Same = %v, want [k2]", entry.Same)
	}

	var progress []int
	cmd := f.command(domain.ActionAddItemsToTargetCollection)
	cmd.Progress = func(done, total int) {
		if total != 2 {
			t.Errorf("progress total = %d, want 2", total)
		}
		progress = append(progress, done)
	}
	resp, err := cmd.Execute(ctx)
	if err != nil {
		t.Fatalf("Execute(addItems) failed: %v", err)
	}
	if resp.ResponseAction != domain.ResponseAlert || !contains(resp.ResponseData, "Added 2 items") {
		t.Errorf("Execute(addItems) = %+v", resp)
	}
	if len(progress) != 2 {
		t.Errorf("expected 2 progress calls, got %v", progress)
	}

	ids, err := f.target.CollectionItemIDs(ctx, f.tgtRef, "T")
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 3 {
		t.Errorf("expected 3 target items, got %d", len(ids))
	}

	for _, srcKey := range []string{"S1", "S3"} {
		key, ok, _ := f.links.TargetKey(ctx, f.srcRef.URI(), srcKey, f.tgtRef.URI())
		if !ok {
			t.Errorf("no link for %s", srcKey)
			continue
		}
		copied, found := f.target.Item(f.tgtRef, key)
		if !found {
			t.Errorf("linked target item %s missing", key)
			continue
		}
		if cols, _ := copied[domain.FieldCollections].([]string); len(cols) != 1 || cols[0] != "T" {
			t.Errorf("copied item filed in %v", cols)
		}
	}

	// Cached diff is consumed
	resp = f.run(t, domain.ActionAddItemsToTargetCollection)
	if !contains(resp.ResponseData, "restart") {
		t.Errorf("expected restart alert, got %+v", resp)
	}

	// Now in sync
	resp = f.run(t, domain.ActionSyncCollectionItems)
	if resp.ResponseData != "Collections are already in sync" {
		t.Errorf("expected in-sync alert, got %+v", resp)
	}
}

func TestSyncCommand_SkipsLinkedItems(t *testing.T) {
	ctx := context.Background()
	f := newSyncFixture(t, false)
	f.putItems(t)

	// S1 was copied before but its title changed on the target side
	if err := f.links.SaveLink(ctx, domain.Link{
		SourceLibURI: f.srcRef.URI(),
		SourceKey:    "S1",
		TargetLibURI: f.tgtRef.URI(),
		TargetKey:    "OLD",
	}); err != nil {
		t.Fatal(err)
	}

	f.run(t, domain.ActionSyncCollectionItems)
	resp := f.run(t, domain.ActionAddItemsToTargetCollection)
	if !contains(resp.ResponseData, "Added 1 items") || !contains(resp.ResponseData, "1 already linked") {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestSyncCommand_MatchesTitleWhenTargetHasNoSyncID(t *testing.T) {
	ctx := context.Background()
	f := newSyncFixture(t, false)

	if _, err := f.source.PutItem(f.srcRef, domain.Item{
		domain.FieldID:          "S1",
		domain.FieldSyncID:      "sid-1",
		domain.FieldTitle:       "Origin",
		domain.FieldCollections: []string{"ROOT"},
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := f.target.PutItem(f.tgtRef, domain.Item{
		domain.FieldID:          "T1",
		domain.FieldTitle:       "Origin",
		domain.FieldCollections: []string{"T"},
	}); err != nil {
		t.Fatal(err)
	}

	resp := f.run(t, domain.ActionSyncCollectionItems)
	if resp.ResponseAction != domain.ResponseAlert || resp.ResponseData != "Collections are already in sync" {
		t.Fatalf("Execute(syncCollectionItems) = %+v", resp)
	}

	ids, err := f.target.CollectionItemIDs(ctx, f.tgtRef, "T")
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 1 || ids[0] != "T1" {
		t.Errorf("target items = %v, want [T1]", ids)
	}
}

func TestSyncCommand_UnknownAction(t *testing.T) {
	f := newSyncFixture(t, false)

	resp := f.run(t, domain.Action("rewind"))
	if resp.ResponseAction != domain.ResponseAlert || resp.ResponseData != "Unknown action" {
		t.Errorf("Execute(rewind) = %+v", resp)
	}
	if f.diffs.Len() != 0 {
		t.Error("unknown action touched the diff cache")
	}
}

func TestSyncCommand_EmptyActionMeansStart(t *testing.T) {
	f := newSyncFixture(t, false)

	resp := f.run(t, domain.ActionNone)
	if resp.Action != domain.ActionSyncCollectionItems {
		t.Errorf("Execute(\"\") = %+v", resp)
	}
}

func TestSyncCommand_AdapterFailureAborts(t *testing.T) {
	f := newSyncFixture(t, false)
	f.putItems(t)
	boom := errors.New("connection refused")
	f.target.FailOn("CollectionItems", boom)

	_, err := f.command(domain.ActionSyncCollectionItems).Execute(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped adapter error, got %v", err)
	}
	var adapterErr *application.AdapterError
	if !errors.As(err, &adapterErr) || adapterErr.Application != "citavi" {
		t.Errorf("expected citavi AdapterError, got %#v", err)
	}
	if f.diffs.Len() != 0 {
		t.Error("failed stage cached a diff")
	}
}

func TestSyncCommand_TreeFetchFailureAborts(t *testing.T) {
	f := newSyncFixture(t, false)
	f.source.FailOn("Collections", errors.New("timeout"))

	_, err := f.command(domain.ActionStart).Execute(context.Background())
	var adapterErr *application.AdapterError
	if !errors.As(err, &adapterErr) || adapterErr.Application != "zotero" {
		t.Errorf("expected zotero AdapterError, got %v", err)
	}
}

func TestSyncCommand_LinkStoreFailureAborts(t *testing.T) {
	f := newSyncFixture(t, false)
	f.putItems(t)
	f.run(t, domain.ActionSyncCollectionItems)

	f.links.Fail(errors.New("disk full"))
	_, err := f.command(domain.ActionAddItemsToTargetCollection).Execute(context.Background())
	var storageErr *application.StorageError
	if !errors.As(err, &storageErr) {
		t.Errorf("expected StorageError, got %v", err)
	}
}

func TestSyncCommand_UnknownApplication(t *testing.T) {
	f := newSyncFixture(t, false)
	cmd := f.command(domain.ActionStart)
	cmd.Request.Target.Application = "endnote"

	_, err := cmd.Execute(context.Background())
	if !errors.Is(err, application.ErrUnknownApplication) {
		t.Errorf("expected ErrUnknownApplication, got %v", err)
	}
}

func contains(s, substr string) bool {
	return len(s) >= len(substr) && (s == substr || len(substr) == 0 ||
		(len(s) > 0 && len(substr) > 0 && findSubstring(s, substr)))
}

func findSubstring(s, substr string) bool {
	for i := 0; i <= len(s)-len(substr); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
