package ports

import "refsync/internal/domain"

// ItemOpener shows an item in the desktop application that owns it
type ItemOpener interface {
	Open(lib domain.LibraryRef, itemKey string) error
}
