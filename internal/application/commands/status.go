package commands

import (
	"context"
	"time"

	"refsync/internal/application"
	"refsync/internal/domain"
	"refsync/internal/ports"
)

// CollectionStatus summarizes the items filed in one collection
type CollectionStatus struct {
	Library      domain.LibraryRef `json:"library" yaml:"library"`
	ItemCount    int               `json:"itemCount" yaml:"item_count"`
	LastModified time.Time         `json:"lastModified,omitzero" yaml:"last_modified,omitempty"`
	LastItem     string            `json:"lastItem,omitempty" yaml:"last_item,omitempty"`
}

// CollectionStatusCommand reports how many items a collection holds and
// which one changed last
type CollectionStatusCommand struct {
	adapters ports.AdapterResolver
	Library  domain.LibraryRef
}

// NewCollectionStatusCommand creates a new CollectionStatusCommand
func NewCollectionStatusCommand(adapters ports.AdapterResolver, lib domain.LibraryRef) *CollectionStatusCommand {
	return &CollectionStatusCommand{
		adapters: adapters,
		Library:  lib,
	}
}

// Validate checks the library reference, collection key included
func (c *CollectionStatusCommand) Validate() error {
	return application.ValidateLibraryRef("", c.Library, true)
}

// Execute lists the collection's item ids and their modification dates
func (c *CollectionStatusCommand) Execute(ctx context.Context) (*CollectionStatus, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	a, err := c.adapters.Adapter(c.Library.Application)
	if err != nil {
		return nil, err
	}
	ids, err := a.CollectionItemIDs(ctx, c.Library, c.Library.CollectionKey)
	if err != nil {
		return nil, application.WrapAdapterError(a, "list item ids", err)
	}

	status := &CollectionStatus{Library: c.Library, ItemCount: len(ids)}
	if len(ids) == 0 {
		return status, nil
	}

	dates, err := a.ModificationDates(ctx, c.Library, ids)
	if err != nil {
		return nil, application.WrapAdapterError(a, "modification dates", err)
	}
	for i, ts := range dates {
		if ts.After(status.LastModified) {
			status.LastModified = ts
			status.LastItem = ids[i]
		}
	}
	return status, nil
}
