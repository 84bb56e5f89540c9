package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"refsync/internal/domain"
)

func openTestStore(t *testing.T) *LinkStore {
	t.Helper()
	s := NewLinkStore()
	if err := s.Open(filepath.Join(t.TempDir(), "links.db")); err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})
	return s
}

func TestLinkStore_SaveThenTargetKey(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	link := domain.Link{
		SourceLibURI: "zotero://group/42",
		SourceKey:    "ABCD1234",
		TargetLibURI: "citavi://project/p1",
		TargetKey:    "c3f1",
		CreatedAt:    time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	if err := s.SaveLink(ctx, link); err != nil {
		t.Fatalf("SaveLink failed: %v", err)
	}

	key, ok, err := s.TargetKey(ctx, link.SourceLibURI, link.SourceKey, link.TargetLibURI)
	if err != nil {
		t.Fatalf("TargetKey failed: %v", err)
	}
	if !ok || key != "c3f1" {
		t.Errorf("TargetKey() = %q, %v; want c3f1, true", key, ok)
	}

	// Never saved triple
	_, ok, err = s.TargetKey(ctx, link.SourceLibURI, "OTHER", link.TargetLibURI)
	if err != nil {
		t.Fatalf("TargetKey failed: %v", err)
	}
	if ok {
		t.Error("expected no link for unsaved triple")
	}

	// Direction matters
	_, ok, _ = s.TargetKey(ctx, link.TargetLibURI, link.SourceKey, link.SourceLibURI)
	if ok {
		t.Error("expected no link for reversed libraries")
	}

	links, err := s.Links(ctx, domain.LinkFilter{})
	if err != nil {
		t.Fatalf("Links failed: %v", err)
	}
	if len(links) != 1 || !links[0].CreatedAt.Equal(link.CreatedAt) {
		t.Errorf("Links() = %+v", links)
	}
}

func TestLinkStore_DuplicatesAreAdvisory(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	base := domain.Link{SourceLibURI: "zotero://user/1", SourceKey: "K", TargetLibURI: "citavi://project/p"}
	first, second := base, base
	first.TargetKey = "old"
	second.TargetKey = "new"

	if err := s.SaveLinks(ctx, []domain.Link{first, second}); err != nil {
		t.Fatalf("SaveLinks failed: %v", err)
	}

	key, ok, err := s.TargetKey(ctx, base.SourceLibURI, base.SourceKey, base.TargetLibURI)
	if err != nil || !ok {
		t.Fatalf("TargetKey() = %v, %v", ok, err)
	}
	if key != "new" {
		t.Errorf("expected most recent link, got %q", key)
	}

	links, _ := s.Links(ctx, domain.LinkFilter{SourceKey: "K"})
	if len(links) != 2 {
		t.Errorf("expected both rows kept, got %d", len(links))
	}
}

func TestLinkStore_RemoveLinkIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	link := domain.Link{SourceLibURI: "zotero://user/1", SourceKey: "K", TargetLibURI: "citavi://project/p", TargetKey: "T"}
	if err := s.SaveLink(ctx, link); err != nil {
		t.Fatalf("SaveLink failed: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := s.RemoveLink(ctx, link); err != nil {
			t.Fatalf("RemoveLink #%d failed: %v", i+1, err)
		}
	}

	if _, ok, _ := s.TargetKey(ctx, link.SourceLibURI, link.SourceKey, link.TargetLibURI); ok {
		t.Error("link still present after RemoveLink")
	}
}

func TestLinkStore_LinksFilter(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	links := []domain.Link{
		{SourceLibURI: "zotero://user/1", SourceKey: "A", TargetLibURI: "citavi://project/p", TargetKey: "1"},
		{SourceLibURI: "zotero://user/1", SourceKey: "B", TargetLibURI: "citavi://project/q", TargetKey: "2"},
		{SourceLibURI: "zotero://group/9", SourceKey: "C", TargetLibURI: "citavi://project/p", TargetKey: "3"},
	}
	if err := s.SaveLinks(ctx, links); err != nil {
		t.Fatalf("SaveLinks failed: %v", err)
	}

	tests := []struct {
		name   string
		filter domain.LinkFilter
		want   []string
	}{
		{name: "all", filter: domain.LinkFilter{}, want: []string{"A", "B", "C"}},
		{name: "by source", filter: domain.LinkFilter{SourceLibURI: "zotero://user/1"}, want: []string{"A", "B"}},
		{name: "by target", filter: domain.LinkFilter{TargetLibURI: "citavi://project/p"}, want: []string{"A", "C"}},
		{name: "no match", filter: domain.LinkFilter{SourceKey: "Z"}, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Links(ctx, tt.filter)
			if err != nil {
				t.Fatalf("Links failed: %v", err)
			}
			var keys []string
			for _, l := range got {
				keys = append(keys, l.SourceKey)
			}
			if len(keys) != len(tt.want) {
				t.Fatalf("got %v, want %v", keys, tt.want)
			}
			for i := range keys {
				if keys[i] != tt.want[i] {
					t.Errorf("got %v, want %v", keys, tt.want)
				}
			}
		})
	}
}

func TestDefaultPath_UsesXDGDataHome(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg")
	if got := DefaultPath(); got != filepath.Join("/tmp/xdg", "refsync", "links.db") {
		t.Errorf("DefaultPath() = %q", got)
	}
}
