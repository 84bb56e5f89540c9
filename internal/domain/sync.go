package domain

import (
	"strings"

	"golang.org/x/text/cases"
)

// Action names a stage of the sync workflow
type Action string

const (
	ActionStart                            Action = "start"
	ActionStartSyncCollections             Action = "startSyncCollections"
	ActionSyncCollectionsCreateChildren    Action = "syncCollectionsCreateChildren"
	ActionSyncCollectionsChildrenConfirmed Action = "syncCollectionsCreateChildrenConfirmed"
	ActionSyncCollectionItems              Action = "syncCollectionItems"
	ActionAddItemsToTargetCollection       Action = "addItemsToTargetCollection"
	ActionNone                             Action = ""
)

// stageOrder fixes the forward order of the workflow stages
var stageOrder = map[Action]int{
	ActionStart:                            0,
	ActionStartSyncCollections:             1,
	ActionSyncCollectionsCreateChildren:    2,
	ActionSyncCollectionsChildrenConfirmed: 3,
	ActionSyncCollectionItems:              4,
	ActionAddItemsToTargetCollection:       5,
}

// Stage returns the position of the action in the workflow, or -1
func (a Action) Stage() int {
	if n, ok := stageOrder[a]; ok {
		return n
	}
	return -1
}

// IsKnown reports whether the action is a workflow stage
func (a Action) IsKnown() bool {
	return a.Stage() >= 0
}

// ResponseAction tells the caller what to do with a sync response
type ResponseAction string

const (
	ResponseConfirm ResponseAction = "confirm"
	ResponseAlert   ResponseAction = "alert"
	ResponseError   ResponseAction = "error"
)

// SyncResponse is returned for every sync invocation. A "confirm" response
// is resumed by invoking the workflow again with Action.
type SyncResponse struct {
	ResponseAction ResponseAction `json:"responseAction"`
	ResponseData   string         `json:"responseData"`
	Action         Action         `json:"action"`
}

// Confirm builds a response asking the caller to confirm before next
func Confirm(message string, next Action) *SyncResponse {
	return &SyncResponse{ResponseAction: ResponseConfirm, ResponseData: message, Action: next}
}

// Alert builds a terminal informational response
func Alert(message string) *SyncResponse {
	return &SyncResponse{ResponseAction: ResponseAlert, ResponseData: message}
}

// ErrorResponse converts a failed invocation into a terminal response
func ErrorResponse(err error) *SyncResponse {
	return &SyncResponse{ResponseAction: ResponseError, ResponseData: err.Error()}
}

// IsTerminal reports whether the workflow ends with this response
func (r *SyncResponse) IsTerminal() bool {
	return r.ResponseAction != ResponseConfirm || r.Action == ActionNone
}

// ItemDiff is the outcome of comparing source items against target items
type ItemDiff struct {
	Diff    []string `json:"diff"` // in source, missing from target
	Same    []string `json:"same"` // in both
	Missing []Item   `json:"-"`    // source items behind Diff, same order
}

// DiffItems compares source items with target items, keeping source order
// and dropping duplicate identifiers. Two items are compared by sync id
// when both carry one, else by folded title. Source items with neither
// are left out of both lists.
func DiffItems(source, target []Item) ItemDiff {
	idx := newItemIndex(target)
	seen := make(map[string]struct{}, len(source))
	d := ItemDiff{Diff: []string{}, Same: []string{}, Missing: []Item{}}
	for _, it := range source {
		id := SyncIdentifier(it)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if idx.contains(it) {
			d.Same = append(d.Same, id)
		} else {
			d.Diff = append(d.Diff, id)
			d.Missing = append(d.Missing, it)
		}
	}
	return d
}

type itemIndex struct {
	syncIDs  map[string]struct{}
	titles   map[string]struct{} // all target titles
	untagged map[string]struct{} // titles of target items without a sync id
}

func newItemIndex(items []Item) itemIndex {
	idx := itemIndex{
		syncIDs:  make(map[string]struct{}, len(items)),
		titles:   make(map[string]struct{}, len(items)),
		untagged: make(map[string]struct{}, len(items)),
	}
	for _, it := range items {
		title := FoldName(it.String(FieldTitle))
		sid := syncID(it)
		if sid != "" {
			idx.syncIDs[sid] = struct{}{}
		}
		if title == "" {
			continue
		}
		idx.titles[title] = struct{}{}
		if sid == "" {
			idx.untagged[title] = struct{}{}
		}
	}
	return idx
}

func (x itemIndex) contains(it Item) bool {
	title := FoldName(it.String(FieldTitle))
	if sid := syncID(it); sid != "" {
		if _, ok := x.syncIDs[sid]; ok {
			return true
		}
		_, ok := x.untagged[title]
		return title != "" && ok
	}
	_, ok := x.titles[title]
	return title != "" && ok
}

func syncID(it Item) string {
	return strings.TrimSpace(it.String(FieldSyncID))
}

// SyncIdentifier returns the identifier an item is reported under in an
// ItemDiff: the sync id when an adapter populates it, else the case-folded
// title. Title matching is a best-effort heuristic and is not
// collision-free.
func SyncIdentifier(it Item) string {
	if id := syncID(it); id != "" {
		return id
	}
	return FoldName(it.String(FieldTitle))
}

// FoldName normalizes a display name for comparison
func FoldName(s string) string {
	return cases.Fold().String(strings.Join(strings.Fields(s), " "))
}
