package cmd

import (
	"bufio"
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"refsync/internal/adapters/memory"
	"refsync/internal/adapters/registry"
	"refsync/internal/adapters/sqlite"
	"refsync/internal/application"
	"refsync/internal/application/commands"
	"refsync/internal/bootstrap"
	"refsync/internal/domain"
)

func setupRuntime(t *testing.T) commands.SyncRequest {
	t.Helper()
	color.NoColor = true

	source := memory.New("zotero")
	target := memory.New("citavi")
	srcRef := source.AddLibrary(domain.Library{ID: "1", Name: "My Library", Type: "user"})
	tgtRef := target.AddLibrary(domain.Library{ID: "p1", Name: "Thesis", Type: "project"})
	require.NoError(t, source.PutCollection(srcRef, domain.Collection{Key: "ROOT", Name: "Papers"}))
	require.NoError(t, target.PutCollection(tgtRef, domain.Collection{Key: "T", Name: "Articles"}))
	for _, title := range []string{"First", "Second"} {
		_, err := source.PutItem(srcRef, domain.Item{
			domain.FieldTitle:       title,
			domain.FieldCollections: []string{"ROOT"},
		})
		require.NoError(t, err)
	}

	links := sqlite.NewLinkStore()
	require.NoError(t, links.Open(filepath.Join(t.TempDir(), "links.db")))
	t.Cleanup(func() { _ = links.Close() })

	rt = &bootstrap.Runtime{
		Adapters: registry.New(source, target),
		Links:    links,
		Diffs:    application.NewDiffCache(0),
		Logger:   zerolog.Nop(),
	}
	t.Cleanup(func() { rt = nil })

	srcRef.CollectionKey = "ROOT"
	tgtRef.CollectionKey = "T"
	return commands.SyncRequest{Source: srcRef, Target: tgtRef}
}

func TestRunSync_ConfirmsEachStep(t *testing.T) {
	req := setupRuntime(t)
	var out bytes.Buffer

	in := bufio.NewReader(strings.NewReader("y\ny\n"))
	require.NoError(t, runSync(&cobra.Command{}, req, in, &out))

	text := out.String()
	assert.Contains(t, text, "Collections have different names, continue? [y/N]")
	assert.Contains(t, text, "Add 2 items to target? [y/N]")
	assert.Contains(t, text, "Added 2 items to the target collection")

	links, err := rt.Links.Links(context.Background(), domain.LinkFilter{})
	require.NoError(t, err)
	assert.Len(t, links, 2)
}

func TestRunSync_Cancel(t *testing.T) {
	req := setupRuntime(t)
	var out bytes.Buffer

	in := bufio.NewReader(strings.NewReader("n\n"))
	require.NoError(t, runSync(&cobra.Command{}, req, in, &out))
	assert.Contains(t, out.String(), "Sync cancelled")

	links, err := rt.Links.Links(context.Background(), domain.LinkFilter{})
	require.NoError(t, err)
	assert.Empty(t, links)
}

func TestRunSync_Yes(t *testing.T) {
	req := setupRuntime(t)
	syncYes = true
	t.Cleanup(func() { syncYes = false })

	var out bytes.Buffer
	require.NoError(t, runSync(&cobra.Command{}, req, bufio.NewReader(strings.NewReader("")), &out))
	assert.Contains(t, out.String(), "Added 2 items")
}

func TestOutputFormat_Set(t *testing.T) {
	var f outputFormat
	require.NoError(t, f.Set("yaml"))
	assert.Equal(t, outputYAML, f)
	assert.Error(t, f.Set("csv"))
}

func TestRender(t *testing.T) {
	libs := []domain.Library{{ID: "1", Name: "My Library", Type: "user", Application: "zotero"}}

	var yamlOut bytes.Buffer
	require.NoError(t, render(&yamlOut, outputYAML, libs, nil))
	assert.Contains(t, yamlOut.String(), "name: My Library")

	var jsonOut bytes.Buffer
	require.NoError(t, render(&jsonOut, outputJSON, libs, nil))
	assert.Contains(t, jsonOut.String(), `"application": "zotero"`)
}
