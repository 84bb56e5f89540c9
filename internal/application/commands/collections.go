package commands

import (
	"context"
	"fmt"

	"refsync/internal/application"
	"refsync/internal/domain"
	"refsync/internal/ports"
)

// ListCollectionsCommand loads the collection forest of one library
type ListCollectionsCommand struct {
	adapters ports.AdapterResolver
	Library  domain.LibraryRef
}

// NewListCollectionsCommand creates a new ListCollectionsCommand
func NewListCollectionsCommand(adapters ports.AdapterResolver, lib domain.LibraryRef) *ListCollectionsCommand {
	return &ListCollectionsCommand{
		adapters: adapters,
		Library:  lib,
	}
}

// Validate checks the library reference
func (c *ListCollectionsCommand) Validate() error {
	return application.ValidateLibraryRef("", c.Library, false)
}

// Execute fetches the collections and validates them as a tree
func (c *ListCollectionsCommand) Execute(ctx context.Context) (*domain.CollectionTree, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	a, err := c.adapters.Adapter(c.Library.Application)
	if err != nil {
		return nil, err
	}
	nodes, err := a.Collections(ctx, c.Library)
	if err != nil {
		return nil, application.WrapAdapterError(a, "list collections", err)
	}

	tree, err := domain.NewCollectionTree(nodes)
	if err != nil {
		return nil, fmt.Errorf("collections of %s: %w", c.Library.URI(), err)
	}
	return tree, nil
}
