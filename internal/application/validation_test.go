package application

import (
	"errors"
	"testing"

	"refsync/internal/domain"
)

func TestValidateRequired(t *testing.T) {
	tests := []struct {
		name      string
		fieldName string
		value     string
		wantErr   bool
	}{
		{
			name:      "valid value",
			fieldName: "collectionKey",
			value:     "ABCD1234",
			wantErr:   false,
		},
		{
			name:      "empty string",
			fieldName: "collectionKey",
			value:     "",
			wantErr:   true,
		},
		{
			name:      "whitespace only",
			fieldName: "collectionKey",
			value:     "   ",
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRequired(tt.fieldName, tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRequired() error = %v, wantErr %v", err, tt.wantErr)
			}

			if err != nil {
				var valErr *ValidationError
				if !errors.As(err, &valErr) {
					t.Fatalf("expected ValidationError, got %T", err)
				}
				if valErr.Field != tt.fieldName {
					t.Errorf("expected field %s, got %s", tt.fieldName, valErr.Field)
				}
				if valErr.Message != "collection key is required" {
					t.Errorf("unexpected message %q", valErr.Message)
				}
				if !errors.Is(err, ErrInvalidRequest) {
					t.Error("validation errors should match ErrInvalidRequest")
				}
			}
		})
	}
}

func TestValidateLibraryRef(t *testing.T) {
	full := domain.LibraryRef{Application: "zotero", Type: "group", ID: "42", CollectionKey: "ABCD"}

	tests := []struct {
		name              string
		ref               domain.LibraryRef
		requireCollection bool
		wantField         string
	}{
		{name: "complete", ref: full, requireCollection: true},
		{
			name:              "collection optional",
			ref:               domain.LibraryRef{Application: "zotero", Type: "group", ID: "42"},
			requireCollection: false,
		},
		{
			name:              "missing collection",
			ref:               domain.LibraryRef{Application: "zotero", Type: "group", ID: "42"},
			requireCollection: true,
			wantField:         "source.collectionKey",
		},
		{
			name:      "missing application",
			ref:       domain.LibraryRef{Type: "group", ID: "42"},
			wantField: "source.application",
		},
		{
			name:      "missing id",
			ref:       domain.LibraryRef{Application: "citavi", Type: "project"},
			wantField: "source.id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLibraryRef("source.", tt.ref, tt.requireCollection)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var valErr *ValidationError
			if !errors.As(err, &valErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if valErr.Field != tt.wantField {
				t.Errorf("expected field %s, got %s", tt.wantField, valErr.Field)
			}
		})
	}
}

func TestValidateLink(t *testing.T) {
	link := domain.Link{SourceLibURI: "zotero://user/1", SourceKey: "K1", TargetLibURI: "citavi://project/p"}
	if err := ValidateLink(link); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	link.SourceKey = ""
	err := ValidateLink(link)
	var valErr *ValidationError
	if !errors.As(err, &valErr) || valErr.Field != "sourceKey" {
		t.Errorf("expected sourceKey validation error, got %v", err)
	}
}
