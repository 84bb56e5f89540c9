package schema

import (
	"maps"
	"slices"

	"refsync/internal/domain"
)

// TypeMap maps global item types to native ones and back
type TypeMap struct {
	toLocal  map[string]string
	toGlobal map[string]string
}

// NewTypeMap builds a type map. The inverse direction is derived from
// toLocal; when several global types share a native type the
// alphabetically first one wins unless inverse names it explicitly.
func NewTypeMap(toLocal map[string]string, inverse map[string]string) TypeMap {
	m := TypeMap{
		toLocal:  maps.Clone(toLocal),
		toGlobal: make(map[string]string, len(toLocal)),
	}
	for _, global := range slices.Sorted(maps.Keys(toLocal)) {
		native := toLocal[global]
		if _, taken := m.toGlobal[native]; !taken {
			m.toGlobal[native] = global
		}
	}
	maps.Copy(m.toGlobal, inverse)
	return m
}

// ToLocal returns the native type for a global type. Unknown types map
// to the native name of domain.DefaultItemType.
func (m TypeMap) ToLocal(global string) string {
	if native, ok := m.toLocal[global]; ok {
		return native
	}
	return m.toLocal[domain.DefaultItemType]
}

// ToGlobal returns the global type for a native type, defaulting to
// domain.DefaultItemType
func (m TypeMap) ToGlobal(native string) string {
	if global, ok := m.toGlobal[native]; ok {
		return global
	}
	return domain.DefaultItemType
}

// Dictionary is the bidirectional field and type mapping of one
// application. It holds no state beyond its tables.
type Dictionary struct {
	name      string
	typeField string
	toLocal   map[string]Rule
	toGlobal  map[string]Rule
	types     TypeMap
	native    map[string]struct{}
}

// NewDictionary assembles a dictionary.
//
// fields maps global field names to rules. Literal rules are inverted
// automatically; inverse adds or overrides native→global rules, which is
// where computed rules need their counterpart. typeField is the native
// name of the item type field; it is translated through types.
func NewDictionary(name, typeField string, fields, inverse map[string]Rule, types TypeMap) *Dictionary {
	d := &Dictionary{
		name:      name,
		typeField: typeField,
		toLocal:   make(map[string]Rule, len(fields)+1),
		toGlobal:  make(map[string]Rule, len(fields)+len(inverse)+1),
		types:     types,
		native:    make(map[string]struct{}),
	}

	for _, global := range slices.Sorted(maps.Keys(fields)) {
		if global == domain.FieldItemType {
			continue
		}
		rule := fields[global]
		d.toLocal[global] = rule
		for _, t := range rule.Targets() {
			d.native[t] = struct{}{}
		}
		if rule.Kind() == RuleLiteral {
			if _, taken := d.toGlobal[rule.Name()]; !taken {
				d.toGlobal[rule.Name()] = Literal(global)
			}
		}
	}

	for nativeName, rule := range inverse {
		d.toGlobal[nativeName] = rule
		d.native[nativeName] = struct{}{}
	}

	d.toLocal[domain.FieldItemType] = Computed(func(v any, _ domain.Item) []Field {
		s, _ := stringValue(v)
		return []Field{{Name: typeField, Value: types.ToLocal(s)}}
	}, typeField)
	d.toGlobal[typeField] = Computed(func(v any, _ domain.Item) []Field {
		s, _ := stringValue(v)
		return []Field{{Name: domain.FieldItemType, Value: types.ToGlobal(s)}}
	}, domain.FieldItemType)
	d.native[typeField] = struct{}{}

	return d
}

// Name returns the application the dictionary belongs to
func (d *Dictionary) Name() string {
	return d.name
}

// TypeField returns the native name of the item type field
func (d *Dictionary) TypeField() string {
	return d.typeField
}

// Types returns the type map
func (d *Dictionary) Types() TypeMap {
	return d.types
}

// LocalRule returns the rule translating a global field to native
func (d *Dictionary) LocalRule(global string) (Rule, bool) {
	r, ok := d.toLocal[global]
	return r, ok
}

// GlobalRule returns the rule translating a native field to global
func (d *Dictionary) GlobalRule(native string) (Rule, bool) {
	r, ok := d.toGlobal[native]
	return r, ok
}

// IsNativeField reports whether name belongs to the native vocabulary
func (d *Dictionary) IsNativeField(name string) bool {
	_, ok := d.native[name]
	return ok
}

// NativeFields returns the native vocabulary, sorted
func (d *Dictionary) NativeFields() []string {
	return slices.Sorted(maps.Keys(d.native))
}

// MappedGlobalFields returns the global fields that have a non-absent rule
func (d *Dictionary) MappedGlobalFields() []string {
	var out []string
	for _, f := range slices.Sorted(maps.Keys(d.toLocal)) {
		if d.toLocal[f].Kind() != RuleAbsent {
			out = append(out, f)
		}
	}
	return out
}

var builtin = map[string]func() *Dictionary{
	"zotero": Zotero,
	"citavi": Citavi,
}

// Lookup returns the shipped dictionary of an application
func Lookup(application string) (*Dictionary, bool) {
	newDict, ok := builtin[application]
	if !ok {
		return nil, false
	}
	return newDict(), true
}
