package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"refsync/internal/application"
	"refsync/internal/domain"
	"refsync/internal/logging"
	"refsync/internal/ports"
)

// SyncRequest starts or resumes a sync workflow between two collections
type SyncRequest struct {
	Source domain.LibraryRef `json:"source"`
	Target domain.LibraryRef `json:"target"`
	Action domain.Action     `json:"action"`
}

// Validate checks that both sides name a collection. An empty action
// means start.
func (r SyncRequest) Validate() error {
	if err := application.ValidateLibraryRef("source.", r.Source, true); err != nil {
		return err
	}
	if err := application.ValidateLibraryRef("target.", r.Target, true); err != nil {
		return err
	}
	if r.Source.URI() == r.Target.URI() && r.Source.CollectionKey == r.Target.CollectionKey {
		return &application.ValidationError{
			Field:   "target",
			Message: "source and target are the same collection",
		}
	}
	return nil
}

// ProgressFunc is called after each item copied in the final stage
type ProgressFunc func(done, total int)

// transition is the outcome of one stage. A nil response means no
// decision is needed and the workflow continues with next right away.
type transition struct {
	next     domain.Action
	response *domain.SyncResponse
}

type stageHandler func(c *SyncCommand, ctx context.Context) (transition, error)

// stages is the state-transition table of the workflow
var stages = map[domain.Action]stageHandler{
	domain.ActionStart:                            (*SyncCommand).start,
	domain.ActionStartSyncCollections:             (*SyncCommand).startSyncCollections,
	domain.ActionSyncCollectionsCreateChildren:    (*SyncCommand).createChildren,
	domain.ActionSyncCollectionsChildrenConfirmed: (*SyncCommand).createChildrenConfirmed,
	domain.ActionSyncCollectionItems:              (*SyncCommand).syncCollectionItems,
	domain.ActionAddItemsToTargetCollection:       (*SyncCommand).addItemsToTargetCollection,
}

// SyncCommand runs one round trip of the sync workflow. It executes
// stages until one needs the caller's decision, then returns that
// decision as a SyncResponse. The caller resumes by sending a new
// request with the returned action.
type SyncCommand struct {
	adapters ports.AdapterResolver
	links    ports.LinkStore
	diffs    *application.DiffCache
	Request  SyncRequest
	Progress ProgressFunc

	session *application.SyncSession
	now     func() time.Time
}

// NewSyncCommand creates a new SyncCommand
func NewSyncCommand(adapters ports.AdapterResolver, links ports.LinkStore, diffs *application.DiffCache, req SyncRequest) *SyncCommand {
	return &SyncCommand{
		adapters: adapters,
		links:    links,
		diffs:    diffs,
		Request:  req,
		now:      time.Now,
	}
}

// Validate checks the request
func (c *SyncCommand) Validate() error {
	if c.diffs == nil || c.links == nil || c.adapters == nil {
		return fmt.Errorf("sync command is missing dependencies: %w", application.ErrInvalidRequest)
	}
	return c.Request.Validate()
}

// Execute runs stages from the requested action on. Adapter and link
// store failures abort the round trip and are returned as errors;
// surfaces turn them into "error" responses.
func (c *SyncCommand) Execute(ctx context.Context) (*domain.SyncResponse, error) {
	action := c.Request.Action
	if action == domain.ActionNone {
		action = domain.ActionStart
	}
	if !action.IsKnown() {
		return domain.Alert("Unknown action"), nil
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	session, err := application.NewSyncSession(c.adapters, c.Request.Source, c.Request.Target)
	if err != nil {
		return nil, err
	}
	c.session = session

	log := logging.FromContext(ctx)
	for {
		log.Debug().Str("action", string(action)).Str("source", c.Request.Source.String()).Str("target", c.Request.Target.String()).Msg("sync stage")

		tr, err := stages[action](c, ctx)
		if err != nil {
			log.Error().Err(err).Str("action", string(action)).Msg("sync stage failed")
			return nil, err
		}
		if tr.next != domain.ActionNone && tr.next.Stage() <= action.Stage() {
			return nil, &application.TransitionError{From: string(action), To: string(tr.next)}
		}
		if tr.response != nil {
			return tr.response, nil
		}
		if tr.next == domain.ActionNone {
			return nil, &application.TransitionError{From: string(action), To: "nothing"}
		}
		action = tr.next
	}
}

func (c *SyncCommand) start(ctx context.Context) (transition, error) {
	if err := c.session.Load(ctx); err != nil {
		return transition{}, err
	}
	src, tgt, err := c.selected()
	if err != nil {
		return transition{}, err
	}

	next := domain.ActionStartSyncCollections
	if src.Name != tgt.Name {
		return transition{
			next:     next,
			response: domain.Confirm("Collections have different names, continue?", next),
		}, nil
	}
	return transition{next: next}, nil
}

func (c *SyncCommand) startSyncCollections(ctx context.Context) (transition, error) {
	if err := c.session.Load(ctx); err != nil {
		return transition{}, err
	}
	srcKeys, err := c.session.CollectionChildKeys(application.SideSource, c.Request.Source.CollectionKey)
	if err != nil {
		return transition{}, err
	}
	tgtKeys, err := c.session.CollectionChildKeys(application.SideTarget, c.Request.Target.CollectionKey)
	if err != nil {
		return transition{}, err
	}

	if len(srcKeys) <= len(tgtKeys) {
		return transition{next: domain.ActionSyncCollectionItems}, nil
	}

	if !c.session.TargetAdapter.CanCreateCollection() {
		next := domain.ActionSyncCollectionItems
		msg := fmt.Sprintf(
			"Source collection has %d subcollections, target has %d. %s cannot create collections, sync items only?",
			len(srcKeys), len(tgtKeys), c.session.TargetAdapter.Application(),
		)
		return transition{next: next, response: domain.Confirm(msg, next)}, nil
	}

	next := domain.ActionSyncCollectionsCreateChildren
	msg := fmt.Sprintf(
		"Source collection has %d subcollections, target has %d. Create the missing ones?",
		len(srcKeys), len(tgtKeys),
	)
	return transition{next: next, response: domain.Confirm(msg, next)}, nil
}

func (c *SyncCommand) createChildren(ctx context.Context) (transition, error) {
	if err := c.session.Load(ctx); err != nil {
		return transition{}, err
	}
	missing, err := c.missingChildren(ctx)
	if err != nil {
		return transition{}, err
	}
	if len(missing) == 0 {
		return transition{next: domain.ActionSyncCollectionItems}, nil
	}

	names := make([]string, 0, len(missing))
	for _, m := range missing {
		names = append(names, m.Name)
	}
	next := domain.ActionSyncCollectionsChildrenConfirmed
	msg := "The following subcollections will be created: " + strings.Join(names, ", ")
	return transition{next: next, response: domain.Confirm(msg, next)}, nil
}

// createChildrenConfirmed creates the missing subcollections under the
// target collection and links them to their source counterparts
func (c *SyncCommand) createChildrenConfirmed(ctx context.Context) (transition, error) {
	next := transition{next: domain.ActionSyncCollectionItems}
	log := logging.FromContext(ctx)

	target := c.session.TargetAdapter
	if !target.CanCreateCollection() {
		log.Warn().Str("application", target.Application()).Msg("target cannot create collections, skipping")
		return next, nil
	}
	if err := c.session.Load(ctx); err != nil {
		return transition{}, err
	}
	missing, err := c.missingChildren(ctx)
	if err != nil {
		return transition{}, err
	}

	srcURI, tgtURI := c.Request.Source.URI(), c.Request.Target.URI()
	for _, child := range missing {
		key, err := target.AddCollection(ctx, c.Request.Target, domain.Collection{
			Name:      child.Name,
			ParentKey: c.Request.Target.CollectionKey,
		})
		if err != nil {
			return transition{}, application.WrapAdapterError(target, "add collection", err)
		}
		link := domain.Link{
			SourceLibURI: srcURI,
			SourceKey:    child.Key,
			TargetLibURI: tgtURI,
			TargetKey:    key,
			CreatedAt:    c.now(),
		}
		if err := c.links.SaveLink(ctx, link); err != nil {
			return transition{}, &application.StorageError{Op: "save link", Err: err}
		}
		log.Info().Str("collection", child.Name).Str("key", key).Msg("created subcollection")
	}
	return next, nil
}

// missingChildren lists the source subcollections without a target
// counterpart. A target child matches when it has the same key, is the
// linked copy, or has the same case-folded name.
func (c *SyncCommand) missingChildren(ctx context.Context) ([]domain.Collection, error) {
	srcTree, err := c.session.Tree(application.SideSource)
	if err != nil {
		return nil, err
	}
	tgtTree, err := c.session.Tree(application.SideTarget)
	if err != nil {
		return nil, err
	}

	tgtChildren := tgtTree.Children(c.Request.Target.CollectionKey)
	byKey := make(map[string]struct{}, len(tgtChildren))
	byName := make(map[string]struct{}, len(tgtChildren))
	for _, t := range tgtChildren {
		byKey[t.Key] = struct{}{}
		byName[domain.FoldName(t.Name)] = struct{}{}
	}

	srcURI, tgtURI := c.Request.Source.URI(), c.Request.Target.URI()
	var missing []domain.Collection
	for _, s := range srcTree.Children(c.Request.Source.CollectionKey) {
		if _, ok := byKey[s.Key]; ok {
			continue
		}
		if _, ok := byName[domain.FoldName(s.Name)]; ok {
			continue
		}
		linked, ok, err := c.links.TargetKey(ctx, srcURI, s.Key, tgtURI)
		if err != nil {
			return nil, &application.StorageError{Op: "lookup link", Err: err}
		}
		if ok {
			if _, exists := byKey[linked]; exists {
				continue
			}
		}
		missing = append(missing, s)
	}
	return missing, nil
}

func (c *SyncCommand) syncCollectionItems(ctx context.Context) (transition, error) {
	var srcItems, tgtItems []domain.Item

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		srcItems, err = c.session.SourceAdapter.CollectionItems(gctx, c.Request.Source, c.Request.Source.CollectionKey)
		return application.WrapAdapterError(c.session.SourceAdapter, "list items", err)
	})
	g.Go(func() error {
		var err error
		tgtItems, err = c.session.TargetAdapter.CollectionItems(gctx, c.Request.Target, c.Request.Target.CollectionKey)
		return application.WrapAdapterError(c.session.TargetAdapter, "list items", err)
	})
	if err := g.Wait(); err != nil {
		return transition{}, err
	}

	log := logging.FromContext(ctx)
	for _, it := range srcItems {
		if domain.SyncIdentifier(it) == "" {
			log.Warn().Str("key", it.String(domain.FieldID)).Msg("source item has neither sync id nor title, skipping")
		}
	}

	d := domain.DiffItems(srcItems, tgtItems)
	entry := application.DiffEntry{Diff: d.Diff, Same: d.Same, Items: d.Missing}
	c.diffs.Put(application.DiffKey(c.Request.Source, c.Request.Target), entry)

	log.Debug().Int("diff", len(d.Diff)).Int("same", len(d.Same)).Msg("item diff computed")

	if len(d.Diff) == 0 {
		return transition{response: domain.Alert("Collections are already in sync")}, nil
	}
	next := domain.ActionAddItemsToTargetCollection
	msg := fmt.Sprintf("Add %d items to target?", len(d.Diff))
	return transition{next: next, response: domain.Confirm(msg, next)}, nil
}

// addItemsToTargetCollection copies the cached diff into the target
// collection. Items that already have a link are skipped.
func (c *SyncCommand) addItemsToTargetCollection(ctx context.Context) (transition, error) {
	key := application.DiffKey(c.Request.Source, c.Request.Target)
	entry, ok := c.diffs.Get(key)
	if !ok {
		return transition{response: domain.Alert("No pending changes for these collections, please restart the sync")}, nil
	}

	target := c.session.TargetAdapter
	srcURI, tgtURI := c.Request.Source.URI(), c.Request.Target.URI()
	log := logging.FromContext(ctx)

	added, skipped := 0, 0
	for i, it := range entry.Items {
		srcKey := it.String(domain.FieldID)
		if srcKey != "" {
			_, linked, err := c.links.TargetKey(ctx, srcURI, srcKey, tgtURI)
			if err != nil {
				return transition{}, &application.StorageError{Op: "lookup link", Err: err}
			}
			if linked {
				skipped++
				c.progress(i+1, len(entry.Items))
				continue
			}
		}

		copied := it.Clone()
		delete(copied, domain.FieldID)
		delete(copied, domain.FieldCollections)

		newKey, err := target.AddItem(ctx, c.Request.Target, c.Request.Target.CollectionKey, copied)
		if err != nil {
			return transition{}, application.WrapAdapterError(target, "add item", err)
		}
		if srcKey != "" {
			link := domain.Link{
				SourceLibURI: srcURI,
				SourceKey:    srcKey,
				TargetLibURI: tgtURI,
				TargetKey:    newKey,
				CreatedAt:    c.now(),
			}
			if err := c.links.SaveLink(ctx, link); err != nil {
				return transition{}, &application.StorageError{Op: "save link", Err: err}
			}
		}
		added++
		c.progress(i+1, len(entry.Items))
	}
	c.diffs.Delete(key)

	log.Info().Int("added", added).Int("skipped", skipped).Msg("items synced")

	msg := fmt.Sprintf("Added %d items to the target collection", added)
	if skipped > 0 {
		msg += fmt.Sprintf(", %d already linked items skipped", skipped)
	}
	return transition{response: domain.Alert(msg)}, nil
}

func (c *SyncCommand) selected() (*domain.Collection, *domain.Collection, error) {
	src, err := c.session.SelectedCollection(application.SideSource)
	if err != nil {
		return nil, nil, err
	}
	tgt, err := c.session.SelectedCollection(application.SideTarget)
	if err != nil {
		return nil, nil, err
	}
	return src, tgt, nil
}

func (c *SyncCommand) progress(done, total int) {
	if c.Progress != nil {
		c.Progress(done, total)
	}
}
