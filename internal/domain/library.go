package domain

import (
	"fmt"
	"strings"
)

// Library is one reference library exposed by an application
type Library struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type" yaml:"type"`               // e.g. "user", "group", "project"
	Application string `json:"application" yaml:"application"` // adapter name, e.g. "zotero"
}

// Ref returns a reference to the library without a collection
func (l Library) Ref() LibraryRef {
	return LibraryRef{Application: l.Application, Type: l.Type, ID: l.ID}
}

// LibraryRef addresses a library, and optionally one collection in it
type LibraryRef struct {
	Application   string `json:"application"`
	Type          string `json:"type"`
	ID            string `json:"id"`
	CollectionKey string `json:"collectionKey,omitempty"`
}

// URI identifies the library independently of the collection,
// e.g. "zotero://group/4711". It is the library part of a link's natural key.
func (r LibraryRef) URI() string {
	return fmt.Sprintf("%s://%s/%s", r.Application, r.Type, r.ID)
}

// String renders the reference in the "application:type:id:collection" form
func (r LibraryRef) String() string {
	s := r.Application + ":" + r.Type + ":" + r.ID
	if r.CollectionKey != "" {
		s += ":" + r.CollectionKey
	}
	return s
}

// ParseLibraryRef parses "application:type:id[:collection]"
func ParseLibraryRef(s string) (LibraryRef, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 3 || len(parts) > 4 {
		return LibraryRef{}, fmt.Errorf("invalid library reference %q: expected application:type:id[:collection]", s)
	}
	for _, p := range parts[:3] {
		if p == "" {
			return LibraryRef{}, fmt.Errorf("invalid library reference %q: empty component", s)
		}
	}
	ref := LibraryRef{Application: parts[0], Type: parts[1], ID: parts[2]}
	if len(parts) == 4 {
		ref.CollectionKey = parts[3]
	}
	return ref, nil
}

// ParseLibraryURI parses the "application://type/id" form returned by URI
func ParseLibraryURI(uri string) (LibraryRef, error) {
	app, rest, ok := strings.Cut(uri, "://")
	typ, id, ok2 := strings.Cut(rest, "/")
	if !ok || !ok2 || app == "" || typ == "" || id == "" {
		return LibraryRef{}, fmt.Errorf("invalid library URI %q: expected application://type/id", uri)
	}
	return LibraryRef{Application: app, Type: typ, ID: id}, nil
}
