package schema

import (
	"fmt"
	"strings"

	"refsync/internal/domain"
)

// Citavi returns the dictionary for the Citavi object model as exposed by
// the local automation bridge. Citavi has fewer reference types than the
// global vocabulary, so several global types collapse onto one native type
// and read back as its canonical global type.
func Citavi() *Dictionary {
	fields := map[string]Rule{
		domain.FieldID:           Literal("Id"),
		domain.FieldTitle:        Literal("Title"),
		"subtitle":               Literal("Subtitle"),
		"shortTitle":             Literal("ShortTitle"),
		domain.FieldAuthors:      Computed(citaviPersons("Authors"), "Authors"),
		domain.FieldEditors:      Computed(citaviPersons("Editors"), "Editors"),
		domain.FieldTranslators:  Computed(citaviPersons("Translators"), "Translators"),
		domain.FieldDate:         Literal("Date"),
		domain.FieldPages:        Literal("PageRange"),
		"numberOfPages":          Literal("PageCount"),
		domain.FieldPublisher:    Literal("Publishers"),
		"place":                  Literal("PlaceOfPublication"),
		domain.FieldURL:          Literal("OnlineAddress"),
		"doi":                    Literal("Doi"),
		"isbn":                   Literal("Isbn"),
		"pmid":                   Literal("PubMedId"),
		"volume":                 Literal("Volume"),
		"numberOfVolumes":        Literal("NumberOfVolumes"),
		"issue":                  Literal("Number"),
		"edition":                Literal("Edition"),
		"seriesTitle":            Literal("SeriesTitle"),
		"journal":                Literal("Periodical"),
		"language":               Literal("Language"),
		"abstract":               Literal("Abstract"),
		"notes":                  Literal("Notes"),
		"accessDate":             Literal("AccessDate"),
		"archive":                Literal("StorageMedium"),
		"institution":            Literal("Organizations"),
		domain.FieldKeywords:     Computed(citaviKeywords, "Keywords"),
		domain.FieldCollections:  Literal("Categories"),
		"dateAdded":              Literal("CreatedOn"),
		domain.FieldDateModified: Literal("ModifiedOn"),
		domain.FieldSyncID:       Literal("CustomField9"),

		"issn":           Absent(),
		"pmcid":          Absent(),
		"arxivId":        Absent(),
		"extra":          Absent(),
		"conferenceName": Absent(),
		"custom9":        Absent(),
	}
	for i := 1; i <= 8; i++ {
		fields[fmt.Sprintf("custom%d", i)] = Literal(fmt.Sprintf("CustomField%d", i))
	}

	inverse := map[string]Rule{
		"Authors":     Computed(citaviPersonsToGlobal(domain.FieldAuthors), domain.FieldAuthors),
		"Editors":     Computed(citaviPersonsToGlobal(domain.FieldEditors), domain.FieldEditors),
		"Translators": Computed(citaviPersonsToGlobal(domain.FieldTranslators), domain.FieldTranslators),
		"Keywords":    Computed(citaviKeywordsToGlobal, domain.FieldKeywords),
		"Year":        Computed(citaviYear, domain.FieldDate),
	}

	types := NewTypeMap(map[string]string{
		"journalArticle":   "JournalArticle",
		"magazineArticle":  "JournalArticle",
		"newspaperArticle": "NewspaperArticle",
		"book":             "Book",
		"bookSection":      "Contribution",
		"conferencePaper":  "ConferenceProceedings",
		"thesis":           "Thesis",
		"webpage":          "InternetDocument",
		"report":           "UnpublishedWork",
		"preprint":         "UnpublishedWork",
		"patent":           "Patent",
		"manuscript":       "Manuscript",
		"presentation":     "Lecture",
		"letter":           "PersonalCommunication",
		"interview":        "InterviewMaterial",
		"film":             "Movie",
		"audioRecording":   "AudioOrVideoDocument",
		"videoRecording":   "AudioOrVideoDocument",
		"software":         "ComputerProgram",
		"map":              "Map",
		"case":             "CourtDecision",
		"statute":          "StatuteOrRegulation",
	}, map[string]string{
		"UnpublishedWork": "report",
	})

	return NewDictionary("citavi", "ReferenceType", fields, inverse, types)
}

// citaviPersons renders creators as "Last, First; Last, First". A creator
// with only a last name keeps its trailing comma so it does not read back
// as an institution.
func citaviPersons(target string) ComputeFunc {
	return func(v any, _ domain.Item) []Field {
		creators := domain.CreatorsFrom(v)
		if len(creators) == 0 {
			return nil
		}
		names := make([]string, 0, len(creators))
		var lossy []string
		for _, c := range creators {
			if d := citaviPerson(c); d != "" {
				names = append(names, d)
			}
			if !citaviPersonRoundTrips(c) {
				lossy = append(lossy, c.Display())
			}
		}
		f := Field{Name: target, Value: domain.JoinList(names)}
		if len(lossy) > 0 {
			f.Lossy = fmt.Sprintf("separator in creator name will not round-trip: %s", strings.Join(lossy, " | "))
		}
		return []Field{f}
	}
}

func citaviPerson(c domain.Creator) string {
	if c.Name == "" && c.FirstName == "" && c.LastName != "" {
		return c.LastName + ","
	}
	return c.Display()
}

func citaviPersonRoundTrips(c domain.Creator) bool {
	if c.Name != "" {
		return !strings.ContainsAny(c.Name, ",;")
	}
	return !strings.Contains(c.LastName+c.FirstName, ";") && !strings.Contains(c.LastName, ",")
}

func citaviPersonsToGlobal(field string) ComputeFunc {
	return func(v any, _ domain.Item) []Field {
		creators := domain.CreatorsFrom(v)
		if len(creators) == 0 {
			return nil
		}
		return []Field{{Name: field, Value: creators}}
	}
}

func citaviKeywords(v any, _ domain.Item) []Field {
	keywords := stringList(v)
	if len(keywords) == 0 {
		return nil
	}
	return []Field{{Name: "Keywords", Value: domain.JoinList(keywords)}}
}

func citaviKeywordsToGlobal(v any, _ domain.Item) []Field {
	keywords := stringList(v)
	if len(keywords) == 0 {
		return nil
	}
	return []Field{{Name: domain.FieldKeywords, Value: keywords}}
}

// Year only stands in for a missing Date
func citaviYear(v any, item domain.Item) []Field {
	if item.String("Date") != "" {
		return nil
	}
	year, ok := stringValue(v)
	if !ok || year == "" {
		return nil
	}
	return []Field{{Name: domain.FieldDate, Value: year}}
}
