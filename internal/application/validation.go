package application

import (
	"fmt"
	"strings"

	"refsync/internal/domain"
)

// ValidateRequired checks if a string field is non-empty (after trimming whitespace).
// Returns a ValidationError if the field is empty.
func ValidateRequired(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("%s is required", formatFieldName(fieldName)),
		}
	}
	return nil
}

// formatFieldName converts camelCase field names to space-separated words
// for more readable error messages (e.g., "collectionKey" -> "collection key")
func formatFieldName(fieldName string) string {
	replacements := map[string]string{
		"collectionKey": "collection key",
		"sourceKey":     "source key",
		"targetKey":     "target key",
		"sourceLibUri":  "source library URI",
		"targetLibUri":  "target library URI",
		"id":            "library ID",
	}

	prefix := ""
	if i := strings.LastIndex(fieldName, "."); i >= 0 {
		prefix, fieldName = fieldName[:i+1], fieldName[i+1:]
	}
	if formatted, ok := replacements[fieldName]; ok {
		return prefix + formatted
	}
	return prefix + fieldName
}

// ValidateLibraryRef checks that a reference names an application, a
// library type and a library ID. requireCollection additionally demands
// a collection key. prefix is prepended to field names ("source.").
func ValidateLibraryRef(prefix string, ref domain.LibraryRef, requireCollection bool) error {
	checks := []struct {
		field string
		value string
	}{
		{"application", ref.Application},
		{"type", ref.Type},
		{"id", ref.ID},
	}
	if requireCollection {
		checks = append(checks, struct {
			field string
			value string
		}{"collectionKey", ref.CollectionKey})
	}

	for _, c := range checks {
		if err := ValidateRequired(prefix+c.field, c.value); err != nil {
			return err
		}
	}
	return nil
}

// ValidateLink checks that every part of a link's natural key is set
func ValidateLink(link domain.Link) error {
	if err := ValidateRequired("sourceLibUri", link.SourceLibURI); err != nil {
		return err
	}
	if err := ValidateRequired("sourceKey", link.SourceKey); err != nil {
		return err
	}
	return ValidateRequired("targetLibUri", link.TargetLibURI)
}
