package domain

import (
	"reflect"
	"testing"
)

func TestItem_Project(t *testing.T) {
	item := Item{
		FieldID:          "A1",
		FieldTitle:       "Title",
		FieldKeywords:    []string{"x"},
		FieldPublisher:   "Pub",
		FieldItemType:    "book",
		FieldCollections: []string{"C"},
	}

	tests := []struct {
		name   string
		fields []string
		want   Item
	}{
		{
			name: "no fields copies everything",
			want: item,
		},
		{
			name:   "id is always kept",
			fields: []string{FieldTitle},
			want:   Item{FieldID: "A1", FieldTitle: "Title"},
		},
		{
			name:   "missing fields are skipped",
			fields: []string{FieldKeywords, "nope"},
			want:   Item{FieldID: "A1", FieldKeywords: []string{"x"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := item.Project(tt.fields...)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Project(%v) = %v, want %v", tt.fields, got, tt.want)
			}
		})
	}

	projected := item.Project(FieldKeywords)
	projected[FieldKeywords].([]string)[0] = "changed"
	if item[FieldKeywords].([]string)[0] != "x" {
		t.Error("Project must not share slices with the source item")
	}
}

func TestItem_Accessors(t *testing.T) {
	item := Item{FieldItemType: "thesis", FieldTitle: 42}

	if got := item.ItemType(); got != "thesis" {
		t.Errorf("ItemType() = %q", got)
	}
	if got := item.String(FieldTitle); got != "" {
		t.Errorf("String() of a non-string = %q, want empty", got)
	}
	if !IsGlobalField(FieldSyncID) || IsGlobalField("creators") {
		t.Error("IsGlobalField misclassifies fields")
	}
	if !IsItemType(DefaultItemType) || IsItemType("hologram") {
		t.Error("IsItemType misclassifies types")
	}
}
