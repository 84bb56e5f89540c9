package commands

import (
	"context"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"refsync/internal/application"
	"refsync/internal/domain"
	"refsync/internal/ports"
)

// ListLibrariesCommand lists the libraries of every configured adapter
type ListLibrariesCommand struct {
	adapters    ports.AdapterResolver
	Application string // optional filter
}

// NewListLibrariesCommand creates a new ListLibrariesCommand
func NewListLibrariesCommand(adapters ports.AdapterResolver, application string) *ListLibrariesCommand {
	return &ListLibrariesCommand{
		adapters:    adapters,
		Application: application,
	}
}

// Execute queries the adapters concurrently. Results are ordered by
// application, then name.
func (c *ListLibrariesCommand) Execute(ctx context.Context) ([]domain.Library, error) {
	var targets []ports.LibraryAdapter
	if c.Application != "" {
		a, err := c.adapters.Adapter(c.Application)
		if err != nil {
			return nil, err
		}
		targets = []ports.LibraryAdapter{a}
	} else {
		targets = c.adapters.Adapters()
	}

	results := make([][]domain.Library, len(targets))
	g, gctx := errgroup.WithContext(ctx)
	for i, a := range targets {
		g.Go(func() error {
			libs, err := a.Libraries(gctx)
			if err != nil {
				return application.WrapAdapterError(a, "list libraries", err)
			}
			results[i] = libs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []domain.Library
	for _, libs := range results {
		all = append(all, libs...)
	}
	slices.SortStableFunc(all, func(x, y domain.Library) int {
		if c := strings.Compare(x.Application, y.Application); c != 0 {
			return c
		}
		return strings.Compare(x.Name, y.Name)
	})
	return all, nil
}
