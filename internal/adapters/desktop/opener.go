package desktop

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"

	"refsync/internal/application"
	"refsync/internal/domain"
	"refsync/internal/ports"
)

// Opener implements ports.ItemOpener through the desktop applications'
// URI schemes
type Opener struct {
	run func(name string, args ...string) error
}

var _ ports.ItemOpener = (*Opener)(nil)

// NewOpener creates a new desktop opener
func NewOpener() *Opener {
	return &Opener{
		run: func(name string, args ...string) error {
			return exec.Command(name, args...).Run()
		},
	}
}

// Open shows the item in its application
func (o *Opener) Open(lib domain.LibraryRef, itemKey string) error {
	uri, err := BuildURI(lib, itemKey)
	if err != nil {
		return err
	}
	return o.openURI(uri)
}

// BuildURI constructs the URI selecting an item. Only Zotero registers a
// URI scheme; it selects items in the user library or a group.
func BuildURI(lib domain.LibraryRef, itemKey string) (string, error) {
	if itemKey == "" {
		return "", &application.ValidationError{Field: "key", Message: "item key is required"}
	}
	if lib.Application != "zotero" {
		return "", fmt.Errorf("open %s items: %w", lib.Application, application.ErrNotImplemented)
	}

	switch lib.Type {
	case "user":
		return "zotero://select/library/items/" + url.PathEscape(itemKey), nil
	case "group":
		return fmt.Sprintf("zotero://select/groups/%s/items/%s", url.PathEscape(lib.ID), url.PathEscape(itemKey)), nil
	default:
		return "", fmt.Errorf("unknown zotero library type %q: %w", lib.Type, application.ErrInvalidRequest)
	}
}

func (o *Opener) openURI(uri string) error {
	switch runtime.GOOS {
	case "darwin":
		return o.run("open", uri)
	case "linux":
		return o.run("xdg-open", uri)
	case "windows":
		return o.run("cmd", "/c", "start", "", uri)
	default:
		return fmt.Errorf("unsupported operating system: %s", runtime.GOOS)
	}
}
