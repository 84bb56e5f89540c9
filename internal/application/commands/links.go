package commands

import (
	"context"
	"fmt"

	"refsync/internal/application"
	"refsync/internal/domain"
	"refsync/internal/logging"
	"refsync/internal/ports"
)

// LinkResult contains the outcome of a link lookup
type LinkResult struct {
	TargetKey string `json:"targetKey,omitempty"`
	Found     bool   `json:"found"`
}

// GetLinkCommand resolves the target key linked to a source item
type GetLinkCommand struct {
	links        ports.LinkStore
	SourceLibURI string
	SourceKey    string
	TargetLibURI string
}

// NewGetLinkCommand creates a new GetLinkCommand
func NewGetLinkCommand(links ports.LinkStore, sourceLibURI, sourceKey, targetLibURI string) *GetLinkCommand {
	return &GetLinkCommand{
		links:        links,
		SourceLibURI: sourceLibURI,
		SourceKey:    sourceKey,
		TargetLibURI: targetLibURI,
	}
}

// Validate checks the natural key
func (c *GetLinkCommand) Validate() error {
	return application.ValidateLink(domain.Link{
		SourceLibURI: c.SourceLibURI,
		SourceKey:    c.SourceKey,
		TargetLibURI: c.TargetLibURI,
	})
}

// Execute runs the lookup. A missing link is not an error.
func (c *GetLinkCommand) Execute(ctx context.Context) (*LinkResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	key, ok, err := c.links.TargetKey(ctx, c.SourceLibURI, c.SourceKey, c.TargetLibURI)
	if err != nil {
		return nil, &application.StorageError{Op: "lookup link", Err: err}
	}
	return &LinkResult{TargetKey: key, Found: ok}, nil
}

// RemoveLinkCommand deletes a link. Removing a missing link succeeds.
type RemoveLinkCommand struct {
	links ports.LinkStore
	Link  domain.Link
}

// NewRemoveLinkCommand creates a new RemoveLinkCommand
func NewRemoveLinkCommand(links ports.LinkStore, link domain.Link) *RemoveLinkCommand {
	return &RemoveLinkCommand{
		links: links,
		Link:  link,
	}
}

// Validate checks the natural key
func (c *RemoveLinkCommand) Validate() error {
	return application.ValidateLink(c.Link)
}

// Execute removes the link
func (c *RemoveLinkCommand) Execute(ctx context.Context) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := c.links.RemoveLink(ctx, c.Link); err != nil {
		return &application.StorageError{Op: "remove link", Err: err}
	}
	return nil
}

// ListLinksCommand lists stored links
type ListLinksCommand struct {
	links  ports.LinkStore
	Filter domain.LinkFilter
}

// NewListLinksCommand creates a new ListLinksCommand
func NewListLinksCommand(links ports.LinkStore, filter domain.LinkFilter) *ListLinksCommand {
	return &ListLinksCommand{
		links:  links,
		Filter: filter,
	}
}

// Execute runs the listing
func (c *ListLinksCommand) Execute(ctx context.Context) ([]domain.Link, error) {
	links, err := c.links.Links(ctx, c.Filter)
	if err != nil {
		return nil, &application.StorageError{Op: "list links", Err: err}
	}
	return links, nil
}

// ImportLinksCommand restores links, e.g. from an export snapshot.
// The batch is saved atomically: either every link is stored or none.
type ImportLinksCommand struct {
	links ports.LinkStore
	Links []domain.Link
}

// NewImportLinksCommand creates a new ImportLinksCommand
func NewImportLinksCommand(links ports.LinkStore, batch []domain.Link) *ImportLinksCommand {
	return &ImportLinksCommand{
		links: links,
		Links: batch,
	}
}

// Validate checks every link, including its target key
func (c *ImportLinksCommand) Validate() error {
	for i, link := range c.Links {
		err := application.ValidateLink(link)
		if err == nil {
			err = application.ValidateRequired("targetKey", link.TargetKey)
		}
		if err != nil {
			return fmt.Errorf("link %d: %w", i+1, err)
		}
	}
	return nil
}

// Execute saves the batch and returns how many links were stored
func (c *ImportLinksCommand) Execute(ctx context.Context) (int, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}
	if len(c.Links) == 0 {
		return 0, nil
	}
	if err := c.links.SaveLinks(ctx, c.Links); err != nil {
		return 0, &application.StorageError{Op: "import links", Err: err}
	}
	logging.FromContext(ctx).Info().Int("links", len(c.Links)).Msg("links imported")
	return len(c.Links), nil
}
