package schema

import (
	"encoding/json"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strconv"

	"github.com/rs/zerolog"

	"refsync/internal/domain"
)

// Warning reports a value that was discarded while merging two source
// fields onto one destination field, or one that will not survive a
// round trip. It is a data-quality signal, not an error.
type Warning struct {
	Field  string `json:"field"`  // source field whose value was dropped
	Target string `json:"target"` // destination field it collided on
	Reason string `json:"reason"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s -> %s: %s", w.Field, w.Target, w.Reason)
}

// MarshalZerologObject lets warnings be logged as structured objects
func (w Warning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("field", w.Field).Str("target", w.Target).Str("reason", w.Reason)
}

// LogWarnings reports translation warnings for one item at warn level
func LogWarnings(logger *zerolog.Logger, dictionary, itemID string, warnings []Warning) {
	for _, w := range warnings {
		logger.Warn().
			Str("dictionary", dictionary).
			Str("item", itemID).
			Object("warning", w).
			Msg("translation warning")
	}
}

// Translator converts items between the global vocabulary and the
// native vocabulary of one dictionary
type Translator struct {
	dict *Dictionary
}

// NewTranslator creates a translator for dict
func NewTranslator(dict *Dictionary) *Translator {
	return &Translator{dict: dict}
}

// Dictionary returns the dictionary the translator uses
func (t *Translator) Dictionary() *Dictionary {
	return t.dict
}

// ToGlobal translates a native item into a global one. Native keys
// without a rule are dropped. The result always carries an item type.
func (t *Translator) ToGlobal(item domain.Item) (domain.Item, []Warning) {
	out, warnings := translate(item, t.dict.GlobalRule, domain.IsGlobalField)
	if out.ItemType() == "" {
		out[domain.FieldItemType] = domain.DefaultItemType
	}
	return out, warnings
}

// ToLocal translates a global item into the native vocabulary. Global
// keys without a rule, or with an absent rule, are dropped.
func (t *Translator) ToLocal(item domain.Item) (domain.Item, []Warning) {
	return translate(item, t.dict.LocalRule, t.dict.IsNativeField)
}

// translate visits source keys in sorted order, so collisions merge in
// a deterministic order
func translate(item domain.Item, lookup func(string) (Rule, bool), allowed func(string) bool) (domain.Item, []Warning) {
	out := make(domain.Item, len(item))
	var warnings []Warning

	for _, key := range slices.Sorted(maps.Keys(item)) {
		rule, ok := lookup(key)
		if !ok {
			continue
		}
		for _, f := range rule.Apply(normalize(item[key]), item) {
			if !allowed(f.Name) {
				continue
			}
			if f.Lossy != "" {
				warnings = append(warnings, Warning{Field: key, Target: f.Name, Reason: f.Lossy})
			}
			if w := mergeField(out, key, f); w != nil {
				warnings = append(warnings, *w)
			}
		}
	}

	return out, warnings
}

// mergeField stores f in out. On collision strings are joined with "; "
// and slices of the same type are concatenated; any other combination
// keeps the existing value and returns a warning.
func mergeField(out domain.Item, source string, f Field) *Warning {
	existing, ok := out[f.Name]
	if !ok || isUnset(existing) {
		out[f.Name] = f.Value
		return nil
	}
	if isUnset(f.Value) {
		return nil
	}

	if a, ok := existing.(string); ok {
		if b, ok := f.Value.(string); ok {
			out[f.Name] = a + "; " + b
			return nil
		}
	}

	ev, nv := reflect.ValueOf(existing), reflect.ValueOf(f.Value)
	if ev.Kind() == reflect.Slice && nv.Kind() == reflect.Slice && ev.Type() == nv.Type() {
		merged := reflect.MakeSlice(ev.Type(), 0, ev.Len()+nv.Len())
		merged = reflect.AppendSlice(merged, ev)
		merged = reflect.AppendSlice(merged, nv)
		out[f.Name] = merged.Interface()
		return nil
	}

	return &Warning{
		Field:  source,
		Target: f.Name,
		Reason: fmt.Sprintf("cannot merge %T into %T, value discarded", f.Value, existing),
	}
}

func isUnset(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return s == ""
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Slice && rv.Len() == 0
}

// normalize turns JSON-decoded scalars into strings and homogeneous
// []any string lists into []string. Other values pass through.
func normalize(v any) any {
	switch val := v.(type) {
	case float64, int, int64, json.Number:
		s, _ := stringValue(val)
		return s
	case []any:
		out := make([]string, 0, len(val))
		for _, e := range val {
			s, ok := e.(string)
			if !ok {
				return v
			}
			out = append(out, s)
		}
		return out
	default:
		return v
	}
}

// stringValue renders scalar values as strings. JSON-decoded numbers
// arrive as float64 or json.Number.
func stringValue(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case int:
		return strconv.Itoa(val), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case json.Number:
		return val.String(), true
	default:
		return "", false
	}
}

// stringList accepts []string, JSON-decoded []any of strings, or a
// "; "-separated string
func stringList(v any) []string {
	switch val := v.(type) {
	case []string:
		return slices.Clone(val)
	case []any:
		out := make([]string, 0, len(val))
		for _, e := range val {
			if s, ok := stringValue(e); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		return domain.SplitList(val)
	default:
		return nil
	}
}
