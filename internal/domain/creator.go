package domain

import "strings"

// Creator is a person or institution credited on a reference
type Creator struct {
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Name      string `json:"name,omitempty"` // single-field name for institutions
}

// Display returns "Last, First", or the single-field name
func (c Creator) Display() string {
	if c.Name != "" {
		return c.Name
	}
	if c.FirstName == "" {
		return c.LastName
	}
	return c.LastName + ", " + c.FirstName
}

// ParseCreator parses a "Last, First" string. A string without a comma is
// treated as a single-field name.
func ParseCreator(s string) Creator {
	s = strings.TrimSpace(s)
	last, first, ok := strings.Cut(s, ",")
	if !ok {
		return Creator{Name: s}
	}
	return Creator{
		LastName:  strings.TrimSpace(last),
		FirstName: strings.TrimSpace(first),
	}
}

// CreatorsFrom converts a value held in an item into a creator list.
// It accepts []Creator, a JSON-decoded []any of objects, or a
// semicolon-separated string.
func CreatorsFrom(v any) []Creator {
	switch val := v.(type) {
	case []Creator:
		return val
	case []any:
		out := make([]Creator, 0, len(val))
		for _, e := range val {
			m, ok := e.(map[string]any)
			if !ok {
				continue
			}
			first, _ := m["firstName"].(string)
			last, _ := m["lastName"].(string)
			name, _ := m["name"].(string)
			out = append(out, Creator{FirstName: first, LastName: last, Name: name})
		}
		return out
	case string:
		var out []Creator
		for _, part := range SplitList(val) {
			out = append(out, ParseCreator(part))
		}
		return out
	default:
		return nil
	}
}

// SplitList splits a "; "-separated list, dropping empty entries
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ";") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// JoinList joins values with "; "
func JoinList(values []string) string {
	return strings.Join(values, "; ")
}
