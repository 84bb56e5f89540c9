package schema

import "refsync/internal/domain"

// ZoteroCreator is one entry of the Zotero "creators" array
type ZoteroCreator struct {
	CreatorType string `json:"creatorType"`
	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
	Name        string `json:"name,omitempty"`
}

// ZoteroTag is one entry of the Zotero "tags" array
type ZoteroTag struct {
	Tag  string `json:"tag"`
	Type int    `json:"type,omitempty"`
}

// Zotero creator roles that feed the global creator fields. Other roles
// (reviewedAuthor, recipient, ...) have no global equivalent.
var zoteroRoles = map[string]string{
	"author":       domain.FieldAuthors,
	"bookAuthor":   domain.FieldAuthors,
	"contributor":  domain.FieldAuthors,
	"inventor":     domain.FieldAuthors,
	"programmer":   domain.FieldAuthors,
	"presenter":    domain.FieldAuthors,
	"director":     domain.FieldAuthors,
	"interviewee":  domain.FieldAuthors,
	"cartographer": domain.FieldAuthors,
	"artist":       domain.FieldAuthors,
	"performer":    domain.FieldAuthors,
	"editor":       domain.FieldEditors,
	"seriesEditor": domain.FieldEditors,
	"translator":   domain.FieldTranslators,
}

// Zotero returns the dictionary for the Zotero Web API item schema
func Zotero() *Dictionary {
	fields := map[string]Rule{
		domain.FieldID:           Literal("key"),
		domain.FieldTitle:        Literal("title"),
		"shortTitle":             Literal("shortTitle"),
		domain.FieldAuthors:      Computed(zoteroCreatorsFor("author"), "creators"),
		domain.FieldEditors:      Computed(zoteroCreatorsFor("editor"), "creators"),
		domain.FieldTranslators:  Computed(zoteroCreatorsFor("translator"), "creators"),
		domain.FieldDate:         Literal("date"),
		domain.FieldPages:        Literal("pages"),
		"numberOfPages":          Literal("numPages"),
		domain.FieldPublisher:    Literal("publisher"),
		"place":                  Literal("place"),
		domain.FieldURL:          Literal("url"),
		"doi":                    Literal("DOI"),
		"isbn":                   Literal("ISBN"),
		"issn":                   Literal("ISSN"),
		"volume":                 Computed(zoteroVolume, "volume", "bookTitle"),
		"numberOfVolumes":        Literal("numberOfVolumes"),
		"issue":                  Literal("issue"),
		"edition":                Literal("edition"),
		"series":                 Literal("series"),
		"seriesNumber":           Literal("seriesNumber"),
		"seriesTitle":            Literal("seriesTitle"),
		"journal":                Literal("publicationTitle"),
		"journalAbbreviation":    Literal("journalAbbreviation"),
		"conferenceName":         Literal("conferenceName"),
		"proceedingsTitle":       Literal("proceedingsTitle"),
		"institution":            Computed(zoteroInstitution, "institution", "university"),
		"thesisType":             Literal("thesisType"),
		"reportNumber":           Literal("reportNumber"),
		"reportType":             Literal("reportType"),
		"websiteTitle":           Literal("websiteTitle"),
		"websiteType":            Literal("websiteType"),
		"medium":                 Literal("medium"),
		"runningTime":            Literal("runningTime"),
		"patentNumber":           Literal("patentNumber"),
		"country":                Literal("country"),
		"court":                  Literal("court"),
		"docketNumber":           Literal("docketNumber"),
		"language":               Literal("language"),
		"abstract":               Literal("abstractNote"),
		domain.FieldKeywords:     Computed(zoteroTags, "tags"),
		"extra":                  Literal("extra"),
		"accessDate":             Literal("accessDate"),
		"archive":                Literal("archive"),
		"archiveLocation":        Literal("archiveLocation"),
		"callNumber":             Literal("callNumber"),
		"libraryCatalog":         Literal("libraryCatalog"),
		"rights":                 Literal("rights"),
		domain.FieldCollections:  Literal("collections"),
		"dateAdded":              Literal("dateAdded"),
		domain.FieldDateModified: Literal("dateModified"),
		"genre":                  Literal("genre"),
		"versionNumber":          Literal("versionNumber"),
		"system":                 Literal("system"),

		"subtitle":         Absent(),
		"originalDate":     Absent(),
		"pmid":             Absent(),
		"pmcid":            Absent(),
		"arxivId":          Absent(),
		"notes":            Absent(),
		"chapter":          Absent(),
		domain.FieldSyncID: Absent(),
		"custom1":          Absent(),
		"custom2":          Absent(),
		"custom3":          Absent(),
		"custom4":          Absent(),
		"custom5":          Absent(),
		"custom6":          Absent(),
		"custom7":          Absent(),
		"custom8":          Absent(),
		"custom9":          Absent(),
	}

	inverse := map[string]Rule{
		"creators":    Computed(zoteroCreatorsToGlobal, domain.FieldAuthors, domain.FieldEditors, domain.FieldTranslators),
		"tags":        Computed(zoteroTagsToGlobal, domain.FieldKeywords),
		"volume":      Literal("volume"),
		"bookTitle":   Literal("volume"),
		"institution": Literal("institution"),
		"university":  Literal("institution"),
	}

	types := make(map[string]string, len(domain.ItemTypes))
	for _, t := range domain.ItemTypes {
		types[t] = t
	}
	types["software"] = "computerProgram"

	return NewDictionary("zotero", "itemType", fields, inverse, NewTypeMap(types, nil))
}

func zoteroCreatorsFor(role string) ComputeFunc {
	return func(v any, _ domain.Item) []Field {
		creators := domain.CreatorsFrom(v)
		if len(creators) == 0 {
			return nil
		}
		out := make([]ZoteroCreator, 0, len(creators))
		for _, c := range creators {
			out = append(out, ZoteroCreator{
				CreatorType: role,
				FirstName:   c.FirstName,
				LastName:    c.LastName,
				Name:        c.Name,
			})
		}
		return []Field{{Name: "creators", Value: out}}
	}
}

func zoteroCreatorsToGlobal(v any, _ domain.Item) []Field {
	byField := make(map[string][]domain.Creator)
	for _, c := range zoteroCreatorList(v) {
		field := zoteroRoles[c.CreatorType]
		if field == "" {
			continue
		}
		byField[field] = append(byField[field], domain.Creator{
			FirstName: c.FirstName,
			LastName:  c.LastName,
			Name:      c.Name,
		})
	}

	var out []Field
	for _, field := range []string{domain.FieldAuthors, domain.FieldEditors, domain.FieldTranslators} {
		if creators, ok := byField[field]; ok {
			out = append(out, Field{Name: field, Value: creators})
		}
	}
	return out
}

// zoteroCreatorList accepts typed creators or the JSON-decoded form
func zoteroCreatorList(v any) []ZoteroCreator {
	switch val := v.(type) {
	case []ZoteroCreator:
		return val
	case []any:
		out := make([]ZoteroCreator, 0, len(val))
		for _, e := range val {
			m, ok := e.(map[string]any)
			if !ok {
				continue
			}
			c := ZoteroCreator{}
			c.CreatorType, _ = m["creatorType"].(string)
			c.FirstName, _ = m["firstName"].(string)
			c.LastName, _ = m["lastName"].(string)
			c.Name, _ = m["name"].(string)
			out = append(out, c)
		}
		return out
	default:
		return nil
	}
}

func zoteroTags(v any, _ domain.Item) []Field {
	keywords := stringList(v)
	if len(keywords) == 0 {
		return nil
	}
	tags := make([]ZoteroTag, 0, len(keywords))
	for _, k := range keywords {
		tags = append(tags, ZoteroTag{Tag: k})
	}
	return []Field{{Name: "tags", Value: tags}}
}

func zoteroTagsToGlobal(v any, _ domain.Item) []Field {
	var keywords []string
	switch val := v.(type) {
	case []ZoteroTag:
		for _, t := range val {
			keywords = append(keywords, t.Tag)
		}
	case []any:
		for _, e := range val {
			if m, ok := e.(map[string]any); ok {
				if tag, _ := m["tag"].(string); tag != "" {
					keywords = append(keywords, tag)
				}
			}
		}
	}
	if len(keywords) == 0 {
		return nil
	}
	return []Field{{Name: domain.FieldKeywords, Value: keywords}}
}

// book sections keep the containing book's title in the volume slot
func zoteroVolume(v any, item domain.Item) []Field {
	if item.ItemType() == "bookSection" {
		return []Field{{Name: "bookTitle", Value: v}}
	}
	return []Field{{Name: "volume", Value: v}}
}

func zoteroInstitution(v any, item domain.Item) []Field {
	if item.ItemType() == "thesis" {
		return []Field{{Name: "university", Value: v}}
	}
	return []Field{{Name: "institution", Value: v}}
}
