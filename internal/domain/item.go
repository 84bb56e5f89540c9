package domain

import "slices"

// Item is a reference record keyed by field name. The same shape is used
// for global items and for native (service-specific) records; which
// vocabulary the keys belong to depends on where the item came from.
type Item map[string]any

// Global field names used throughout the sync engine
const (
	FieldID           = "id"
	FieldItemType     = "itemType"
	FieldTitle        = "title"
	FieldAuthors      = "authors"
	FieldEditors      = "editors"
	FieldTranslators  = "translators"
	FieldDate         = "date"
	FieldPages        = "pages"
	FieldPublisher    = "publisher"
	FieldURL          = "url"
	FieldCollections  = "collections"
	FieldSyncID       = "syncId"
	FieldKeywords     = "keywords"
	FieldDateModified = "dateModified"
)

// DefaultItemType is used whenever an item type has no mapping
const DefaultItemType = "journalArticle"

// GlobalFields is the canonical global field vocabulary
var GlobalFields = []string{
	FieldID,
	FieldItemType,
	FieldTitle,
	"subtitle",
	"shortTitle",
	FieldAuthors,
	FieldEditors,
	FieldTranslators,
	FieldDate,
	"originalDate",
	FieldPages,
	"numberOfPages",
	FieldPublisher,
	"place",
	FieldURL,
	"doi",
	"isbn",
	"issn",
	"pmid",
	"pmcid",
	"arxivId",
	"volume",
	"numberOfVolumes",
	"issue",
	"edition",
	"series",
	"seriesNumber",
	"seriesTitle",
	"journal",
	"journalAbbreviation",
	"conferenceName",
	"proceedingsTitle",
	"institution",
	"thesisType",
	"reportNumber",
	"reportType",
	"websiteTitle",
	"websiteType",
	"medium",
	"runningTime",
	"patentNumber",
	"country",
	"court",
	"docketNumber",
	"language",
	"abstract",
	FieldKeywords,
	"notes",
	"extra",
	"accessDate",
	"archive",
	"archiveLocation",
	"callNumber",
	"libraryCatalog",
	"rights",
	FieldCollections,
	"dateAdded",
	FieldDateModified,
	FieldSyncID,
	"custom1",
	"custom2",
	"custom3",
	"custom4",
	"custom5",
	"custom6",
	"custom7",
	"custom8",
	"custom9",
	"chapter",
	"genre",
	"versionNumber",
	"system",
}

// ItemTypes is the global item type vocabulary
var ItemTypes = []string{
	"journalArticle",
	"book",
	"bookSection",
	"conferencePaper",
	"thesis",
	"report",
	"webpage",
	"newspaperArticle",
	"magazineArticle",
	"encyclopediaArticle",
	"dictionaryEntry",
	"patent",
	"manuscript",
	"presentation",
	"letter",
	"interview",
	"film",
	"audioRecording",
	"videoRecording",
	"software",
	"dataset",
	"preprint",
	"map",
	"artwork",
	"case",
	"statute",
	"document",
}

var globalFieldSet = toSet(GlobalFields)

// IsGlobalField reports whether name belongs to the global vocabulary
func IsGlobalField(name string) bool {
	_, ok := globalFieldSet[name]
	return ok
}

// IsItemType reports whether name is a known global item type
func IsItemType(name string) bool {
	return slices.Contains(ItemTypes, name)
}

// String returns the string value of field, or "" when unset or not a string
func (it Item) String(field string) string {
	s, _ := it[field].(string)
	return s
}

// ItemType returns the global item type, or "" when unset
func (it Item) ItemType() string {
	return it.String(FieldItemType)
}

// Clone returns a shallow copy of the item with slice values copied
func (it Item) Clone() Item {
	out := make(Item, len(it))
	for k, v := range it {
		out[k] = CloneValue(v)
	}
	return out
}

// Project returns a copy restricted to fields plus the id. With no
// fields the whole item is copied.
func (it Item) Project(fields ...string) Item {
	if len(fields) == 0 {
		return it.Clone()
	}
	out := Item{}
	if id, ok := it[FieldID]; ok {
		out[FieldID] = id
	}
	for _, f := range fields {
		if v, ok := it[f]; ok {
			out[f] = CloneValue(v)
		}
	}
	return out
}

// CloneValue copies the slice types an item can hold so that the copy
// can be appended to without touching the original
func CloneValue(v any) any {
	switch val := v.(type) {
	case []string:
		return slices.Clone(val)
	case []Creator:
		return slices.Clone(val)
	case []any:
		return slices.Clone(val)
	default:
		return v
	}
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
