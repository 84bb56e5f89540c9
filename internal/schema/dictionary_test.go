package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"refsync/internal/domain"
)

func TestDictionaries_UseGlobalVocabulary(t *testing.T) {
	for _, dict := range []*Dictionary{Zotero(), Citavi()} {
		t.Run(dict.Name(), func(t *testing.T) {
			mapped := dict.MappedGlobalFields()
			require.NotEmpty(t, mapped)
			for _, f := range mapped {
				assert.True(t, domain.IsGlobalField(f), "%s maps unknown global field %q", dict.Name(), f)
			}
			assert.Contains(t, dict.NativeFields(), dict.TypeField())
		})
	}
}

func TestTypeMap(t *testing.T) {
	m := NewTypeMap(map[string]string{
		"journalArticle":  "Article",
		"magazineArticle": "Article",
		"report":          "Grey",
		"preprint":        "Grey",
	}, map[string]string{"Grey": "report"})

	assert.Equal(t, "Article", m.ToLocal("magazineArticle"))
	assert.Equal(t, "Article", m.ToLocal("unmapped"), "unknown types use the default type's native name")
	assert.Equal(t, "journalArticle", m.ToGlobal("Article"), "first global type wins the inverse")
	assert.Equal(t, "report", m.ToGlobal("Grey"), "explicit inverse overrides")
	assert.Equal(t, domain.DefaultItemType, m.ToGlobal("Nope"))
}

func TestRule_Apply(t *testing.T) {
	item := domain.Item{"itemType": "book"}

	assert.Nil(t, Absent().Apply("x", item))

	lit := Literal("dest").Apply([]string{"a"}, item)
	require.Len(t, lit, 1)
	assert.Equal(t, Field{Name: "dest", Value: []string{"a"}}, lit[0])

	rule := Computed(func(v any, _ domain.Item) []Field {
		return []Field{
			{Name: "allowed", Value: v},
			{Name: "undeclared", Value: v},
			{Name: "allowed", Value: nil},
		}
	}, "allowed")
	got := rule.Apply("v", item)
	assert.Equal(t, []Field{{Name: "allowed", Value: "v"}}, got)
	assert.Equal(t, "computed", rule.Kind().String())
}

func TestZotero_CreatorRoles(t *testing.T) {
	tr := NewTranslator(Zotero())
	global, _ := tr.ToGlobal(domain.Item{
		"creators": []ZoteroCreator{
			{CreatorType: "author", LastName: "Hopper", FirstName: "Grace"},
			{CreatorType: "seriesEditor", LastName: "Knuth", FirstName: "Donald"},
			{CreatorType: "translator", Name: "Babel Inc."},
			{CreatorType: "reviewedAuthor", LastName: "Nobody"},
		},
	})

	assert.Equal(t, []domain.Creator{{LastName: "Hopper", FirstName: "Grace"}}, global["authors"])
	assert.Equal(t, []domain.Creator{{LastName: "Knuth", FirstName: "Donald"}}, global["editors"])
	assert.Equal(t, []domain.Creator{{Name: "Babel Inc."}}, global["translators"])
}
