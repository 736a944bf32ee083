package names

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type varMap map[string]string

func (m varMap) VariableName(id string) (string, bool) {
	name, ok := m[id]
	return name, ok
}

func TestNames_SafeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "unnamed"},
		{"count", "count"},
		{"item count", "item_count"},
		{"2fast", "my_2fast"},
		{"a-b", "a_b"},
		{"50%", "my_50_25"},
		{"café", "caf_C3_A9"},
		{"x[0]", "x_5B0_5D"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SafeName(tt.in))
		})
	}
}

func TestNames_GetName_StableReLookup(t *testing.T) {
	db := New(nil)

	first := db.GetName("total", Variable)
	second := db.GetName("total", Variable)

	assert.Equal(t, "total", first)
	assert.Equal(t, first, second)
	assert.Len(t, db.Entries(), 1)
}

func TestNames_GetName_CaseInsensitiveKey(t *testing.T) {
	db := New(nil)

	assert.Equal(t, "Total", db.GetName("Total", Variable))
	assert.Equal(t, "Total", db.GetName("total", Variable))
}

func TestNames_GetName_CollisionFreedom(t *testing.T) {
	db := New([]string{"for", "while"})

	logical := []string{"for", "for ", "for!", "while", "x", "x ", "x?", "2", "my_2"}
	seen := make(map[string]string)
	for _, name := range logical {
		text := db.GetName(name, Variable)
		assert.False(t, db.IsReserved(text), "reserved word handed out for %q", name)
		if prev, dup := seen[text]; dup {
			t.Fatalf("%q and %q both mapped to %q", prev, name, text)
		}
		seen[text] = name
	}
	assert.Equal(t, "for2", db.GetName("for", Variable))
	assert.Equal(t, "while2", db.GetName("while", Variable))
}

func TestNames_GetName_CategoriesAreIndependent(t *testing.T) {
	db := New(nil)

	assert.Equal(t, "draw", db.GetName("draw", Variable))
	assert.Equal(t, "draw", db.GetName("draw", Procedure))
}

func TestNames_GetName_ResolvesVariableIDs(t *testing.T) {
	db := New(nil)
	db.SetVariableMap(varMap{"v1": "counter", "v2": "counter total"})

	assert.Equal(t, "counter", db.GetName("v1", Variable))
	assert.Equal(t, "counter_total", db.GetName("v2", Variable))
	// ids are only resolved for variables
	assert.Equal(t, "v1", db.GetName("v1", Procedure))

	entries := db.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, Entry{Category: Variable, Logical: "counter", Text: "counter"}, entries[0])
}

func TestNames_GetDistinctName(t *testing.T) {
	db := New([]string{"count2"})
	require.Equal(t, "count", db.GetName("count", Variable))

	// temporaries avoid every category, and each other
	assert.Equal(t, "count3", db.GetDistinctName("count", Variable))
	assert.Equal(t, "count4", db.GetDistinctName("count", Variable))

	require.Equal(t, "math_sum", db.GetName("math_sum", Procedure))
	assert.Equal(t, "math_sum2", db.GetDistinctName("math_sum", Variable))
}

func TestNames_Reset(t *testing.T) {
	db := New([]string{"print"})
	db.GetName("x", Variable)
	db.GetDistinctName("x", Variable)

	db.Reset()

	assert.Empty(t, db.Entries())
	assert.Equal(t, "x", db.GetName("x", Variable))
	assert.Equal(t, "print2", db.GetName("print", Procedure))
}

func TestNames_ManyNamesStayDistinct(t *testing.T) {
	db := New(nil)
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		text := db.GetDistinctName("tmp", Variable)
		require.False(t, seen[text], fmt.Sprintf("duplicate %s", text))
		seen[text] = true
	}
}
