package domain

import (
	"slices"
	"testing"
)

func TestDiffItems(t *testing.T) {
	tagged := func(sid, title string) Item { return Item{FieldSyncID: sid, FieldTitle: title} }
	titled := func(title string) Item { return Item{FieldTitle: title} }

	tests := []struct {
		name     string
		source   []Item
		target   []Item
		wantDiff []string
		wantSame []string
	}{
		{
			name:     "partial overlap by sync id",
			source:   []Item{tagged("k1", "A"), tagged("k2", "B"), tagged("k3", "C")},
			target:   []Item{tagged("k2", "B renamed")},
			wantDiff: []string{"k1", "k3"},
			wantSame: []string{"k2"},
		},
		{
			name:     "empty target",
			source:   []Item{tagged("k1", "A")},
			target:   nil,
			wantDiff: []string{"k1"},
			wantSame: []string{},
		},
		{
			name:     "duplicates collapse",
			source:   []Item{tagged("k1", "A"), tagged("k1", "A"), tagged("k2", "B")},
			target:   []Item{tagged("k2", "B")},
			wantDiff: []string{"k1"},
			wantSame: []string{"k2"},
		},
		{
			name:     "tagged source matches untagged target by title",
			source:   []Item{tagged("sid-1", "Origin")},
			target:   []Item{titled("origin")},
			wantDiff: []string{},
			wantSame: []string{"sid-1"},
		},
		{
			name:     "untagged source matches tagged target by title",
			source:   []Item{titled("Origin")},
			target:   []Item{tagged("sid-9", "Origin")},
			wantDiff: []string{},
			wantSame: []string{"origin"},
		},
		{
			name:     "different sync ids do not match on title",
			source:   []Item{tagged("sid-1", "Origin")},
			target:   []Item{tagged("sid-2", "Origin")},
			wantDiff: []string{"sid-1"},
			wantSame: []string{},
		},
		{
			name:     "items without identity are skipped",
			source:   []Item{{FieldID: "X"}, titled("Kept")},
			target:   nil,
			wantDiff: []string{"kept"},
			wantSame: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DiffItems(tt.source, tt.target)
			if !slices.Equal(got.Diff, tt.wantDiff) {
				t.Errorf("Diff = %v, want %v", got.Diff, tt.wantDiff)
			}
			if !slices.Equal(got.Same, tt.wantSame) {
				t.Errorf("Same = %v, want %v", got.Same, tt.wantSame)
			}
			if len(got.Missing) != len(got.Diff) {
				t.Errorf("Missing has %d items, Diff has %d", len(got.Missing), len(got.Diff))
			}
		})
	}
}

func TestSyncIdentifier(t *testing.T) {
	tests := []struct {
		name string
		item Item
		want string
	}{
		{
			name: "sync id wins",
			item: Item{FieldSyncID: "abc", FieldTitle: "Title"},
			want: "abc",
		},
		{
			name: "title fallback is case folded",
			item: Item{FieldTitle: "On  the Origin of Species"},
			want: "on the origin of species",
		},
		{
			name: "blank sync id falls back",
			item: Item{FieldSyncID: "  ", FieldTitle: "X"},
			want: "x",
		},
		{
			name: "nothing",
			item: Item{},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SyncIdentifier(tt.item); got != tt.want {
				t.Errorf("SyncIdentifier() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestActionStageOrder(t *testing.T) {
	ordered := []Action{
		ActionStart,
		ActionStartSyncCollections,
		ActionSyncCollectionsCreateChildren,
		ActionSyncCollectionsChildrenConfirmed,
		ActionSyncCollectionItems,
		ActionAddItemsToTargetCollection,
	}
	for i := 1; i < len(ordered); i++ {
		if ordered[i].Stage() <= ordered[i-1].Stage() {
			t.Errorf("%s should come after %s", ordered[i], ordered[i-1])
		}
	}
	if Action("bogus").IsKnown() {
		t.Error("unknown action reported as known")
	}
}

func TestParseLibraryRef(t *testing.T) {
	tests := []struct {
		input   string
		want    LibraryRef
		wantErr bool
	}{
		{input: "zotero:group:42:ABCD", want: LibraryRef{Application: "zotero", Type: "group", ID: "42", CollectionKey: "ABCD"}},
		{input: "citavi:project:p1", want: LibraryRef{Application: "citavi", Type: "project", ID: "p1"}},
		{input: "zotero:group", wantErr: true},
		{input: "zotero::42", wantErr: true},
		{input: "a:b:c:d:e", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLibraryRef(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
			if got.String() != tt.input {
				t.Errorf("String() = %q, want %q", got.String(), tt.input)
			}
		})
	}

	ref := LibraryRef{Application: "zotero", Type: "group", ID: "42", CollectionKey: "X"}
	if ref.URI() != "zotero://group/42" {
		t.Errorf("URI() = %q", ref.URI())
	}
}

func TestCreatorsFrom(t *testing.T) {
	fromString := CreatorsFrom("Darwin, Charles; Royal Society")
	want := []Creator{{LastName: "Darwin", FirstName: "Charles"}, {Name: "Royal Society"}}
	if !slices.Equal(fromString, want) {
		t.Errorf("CreatorsFrom(string) = %v, want %v", fromString, want)
	}

	fromJSON := CreatorsFrom([]any{
		map[string]any{"firstName": "Ada", "lastName": "Lovelace"},
		"ignored",
	})
	if len(fromJSON) != 1 || fromJSON[0].Display() != "Lovelace, Ada" {
		t.Errorf("CreatorsFrom([]any) = %v", fromJSON)
	}
}
