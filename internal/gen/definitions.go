package gen

import "regexp"

// Definition is one top-level chunk emitted before the program body.
type Definition struct {
	Key  string `json:"key"`
	Code string `json:"code"`
}

// definitions keeps entries in first-registration order.
type definitions struct {
	index   map[string]int
	entries []Definition
}

func newDefinitions() *definitions {
	return &definitions{index: make(map[string]int)}
}

// put stores code under key unless the key is taken. It reports whether it
// stored anything.
func (d *definitions) put(key, code string) bool {
	if _, ok := d.index[key]; ok {
		return false
	}
	d.index[key] = len(d.entries)
	d.entries = append(d.entries, Definition{Key: key, Code: code})
	return true
}

func (d *definitions) get(key string) (string, bool) {
	i, ok := d.index[key]
	if !ok {
		return "", false
	}
	return d.entries[i].Code, true
}

func (d *definitions) list() []Definition {
	out := make([]Definition, len(d.entries))
	copy(out, d.entries)
	return out
}

var importLine = regexp.MustCompile(`^import\s`)

// split separates import lines from everything else.
func (d *definitions) split() (imports, others []string) {
	for _, e := range d.entries {
		if importLine.MatchString(e.Code) {
			imports = append(imports, e.Code)
		} else {
			others = append(others, e.Code)
		}
	}
	return imports, others
}
