package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"refsync/internal/application/commands"
	"refsync/internal/domain"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	apps := make([]string, 0)
	for _, a := range s.deps.Adapters.Adapters() {
		apps = append(apps, a.Application())
	}
	ok(w, map[string]any{
		"status":       "healthy",
		"service":      "refsync",
		"uptime":       time.Since(s.started).Round(time.Second).String(),
		"applications": apps,
		"pendingDiffs": s.deps.Diffs.Len(),
	})
}

// GET /api/v1/libraries?application=zotero
func (s *Server) handleLibraries(w http.ResponseWriter, r *http.Request) {
	libs, err := commands.NewListLibrariesCommand(s.deps.Adapters, r.URL.Query().Get("application")).Execute(r.Context())
	if err != nil {
		failFrom(w, r, err)
		return
	}
	ok(w, libs)
}

func (s *Server) handleCollections(w http.ResponseWriter, r *http.Request) {
	lib := domain.LibraryRef{
		Application: r.PathValue("application"),
		Type:        r.PathValue("type"),
		ID:          r.PathValue("id"),
	}
	tree, err := commands.NewListCollectionsCommand(s.deps.Adapters, lib).Execute(r.Context())
	if err != nil {
		failFrom(w, r, err)
		return
	}
	ok(w, tree.Flatten())
}

// handleSync runs one round trip of the workflow. Failures are reported
// as "error" triples so clients handle a single response shape.
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	var req commands.SyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, domain.ErrorResponse(err))
		return
	}

	resp, err := commands.NewSyncCommand(s.deps.Adapters, s.deps.Links, s.deps.Diffs, req).Execute(r.Context())
	if err != nil {
		status, code := statusFor(err)
		logFailure(r, err, status, code)
		writeJSON(w, status, domain.ErrorResponse(err))
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// GET /api/v1/links looks a single link up when the whole natural key is
// given, and lists links matching the given parts otherwise
func (s *Server) handleLinks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	link := linkFromQuery(r)

	if link.SourceLibURI != "" && link.SourceKey != "" && link.TargetLibURI != "" && q.Get("list") == "" {
		res, err := commands.NewGetLinkCommand(s.deps.Links, link.SourceLibURI, link.SourceKey, link.TargetLibURI).Execute(r.Context())
		if err != nil {
			failFrom(w, r, err)
			return
		}
		ok(w, res)
		return
	}

	links, err := commands.NewListLinksCommand(s.deps.Links, domain.LinkFilter{
		SourceLibURI: link.SourceLibURI,
		SourceKey:    link.SourceKey,
		TargetLibURI: link.TargetLibURI,
	}).Execute(r.Context())
	if err != nil {
		failFrom(w, r, err)
		return
	}
	if links == nil {
		links = []domain.Link{}
	}
	ok(w, links)
}

func (s *Server) handleRemoveLink(w http.ResponseWriter, r *http.Request) {
	link := linkFromQuery(r)
	if err := commands.NewRemoveLinkCommand(s.deps.Links, link).Execute(r.Context()); err != nil {
		failFrom(w, r, err)
		return
	}
	ok(w, map[string]any{"removed": true})
}

func linkFromQuery(r *http.Request) domain.Link {
	q := r.URL.Query()
	return domain.Link{
		SourceLibURI: q.Get("sourceLibUri"),
		SourceKey:    q.Get("sourceKey"),
		TargetLibURI: q.Get("targetLibUri"),
		TargetKey:    q.Get("targetKey"),
	}
}
