// Package names maps logical names (variables, procedures, helpers) to
// collision-free identifiers for one generation run.
package names

import (
	"fmt"
	"strings"
)

// Category scopes a logical name.
type Category string

const (
	Variable          Category = "VARIABLE"
	Procedure         Category = "PROCEDURE"
	DeveloperVariable Category = "DEVELOPER_VARIABLE"
)

// VariableResolver maps a variable id to the user-facing variable name.
type VariableResolver interface {
	VariableName(id string) (string, bool)
}

// Entry is one assigned identifier, reported in assignment order.
type Entry struct {
	Category Category `json:"category"`
	Logical  string   `json:"logical"`
	Text     string   `json:"text"`
}

// DB hands out identifiers. Identical (logical name, category) pairs always
// yield identical text; distinct logical names within a category never
// share text, and nothing ever equals a reserved word.
type DB struct {
	reserved  map[string]struct{}
	byName    map[string]string
	taken     map[Category]map[string]struct{}
	entries   []Entry
	variables VariableResolver
}

// New builds a DB with the given reserved words.
func New(reserved []string) *DB {
	db := &DB{reserved: make(map[string]struct{}, len(reserved))}
	for _, w := range reserved {
		db.reserved[w] = struct{}{}
	}
	db.Reset()
	return db
}

// Reset drops every assignment. Reserved words survive.
func (db *DB) Reset() {
	db.byName = make(map[string]string)
	db.taken = make(map[Category]map[string]struct{})
	db.entries = nil
	db.variables = nil
}

// SetVariableMap lets Variable lookups accept variable ids.
func (db *DB) SetVariableMap(r VariableResolver) {
	db.variables = r
}

// IsReserved reports whether word is in the reserved set.
func (db *DB) IsReserved(word string) bool {
	_, ok := db.reserved[word]
	return ok
}

// GetName returns the identifier for name in category, assigning one on
// first use. For the Variable category name may be a variable id.
// Lookups ignore case, so "Foo" and "foo" share one identifier, as they do
// in the editor.
func (db *DB) GetName(name string, category Category) string {
	if category == Variable && db.variables != nil {
		if resolved, ok := db.variables.VariableName(name); ok {
			name = resolved
		}
	}
	key := strings.ToLower(name) + "_" + string(category)
	if text, ok := db.byName[key]; ok {
		return text
	}
	text := db.claim(name, category, false)
	db.byName[key] = text
	db.entries = append(db.entries, Entry{Category: category, Logical: name, Text: text})
	return text
}

// GetDistinctName returns a fresh identifier derived from seed. The result
// collides with nothing assigned so far in any category.
func (db *DB) GetDistinctName(seed string, category Category) string {
	return db.claim(seed, category, true)
}

// Entries lists logical-name assignments in the order they were made.
func (db *DB) Entries() []Entry {
	out := make([]Entry, len(db.entries))
	copy(out, db.entries)
	return out
}

func (db *DB) claim(name string, category Category, global bool) string {
	base := SafeName(name)
	candidate := base
	for n := 2; db.conflicts(candidate, category, global); n++ {
		candidate = fmt.Sprintf("%s%d", base, n)
	}
	set, ok := db.taken[category]
	if !ok {
		set = make(map[string]struct{})
		db.taken[category] = set
	}
	set[candidate] = struct{}{}
	return candidate
}

func (db *DB) conflicts(text string, category Category, global bool) bool {
	if db.IsReserved(text) {
		return true
	}
	if !global {
		_, ok := db.taken[category][text]
		return ok
	}
	for _, set := range db.taken {
		if _, ok := set[text]; ok {
			return true
		}
	}
	return false
}

// SafeName turns arbitrary text into a legal identifier. Spaces become
// underscores, characters that URI encoding would escape become their
// escaped byte values, any other non-word character becomes an underscore,
// and a leading digit gets a "my_" prefix.
func SafeName(name string) string {
	if name == "" {
		return "unnamed"
	}
	var sb strings.Builder
	for _, b := range []byte(name) {
		switch {
		case isWordByte(b):
			sb.WriteByte(b)
		case b == ' ' || strings.IndexByte(uriKeep, b) >= 0:
			sb.WriteByte('_')
		default:
			fmt.Fprintf(&sb, "_%02X", b)
		}
	}
	out := sb.String()
	if out[0] >= '0' && out[0] <= '9' {
		out = "my_" + out
	}
	return out
}

// uriKeep holds the non-word ASCII bytes that URI encoding leaves alone.
const uriKeep = ";,/?:@&=+$-.!~*'()#"

func isWordByte(b byte) bool {
	return b == '_' || (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
