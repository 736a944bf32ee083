package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AppKaki/blockly-ulisp/internal/workspace"
)

func items(b *workspace.Block, n int) *workspace.Block {
	b.Extra.ItemCount = n
	return b
}

func TestText_JoinAndAppend(t *testing.T) {
	assert.Equal(t, "''", newFixture(items(blk("text_join"), 0)).expr(t))

	one := withValue(items(blk("text_join"), 1), "ADD0", get("vx"))
	assert.Equal(t, "x.toString()", newFixture(one).variable("vx", "x").expr(t))

	two := withValue(withValue(items(blk("text_join"), 2), "ADD0", text("a")), "ADD1", get("vx"))
	assert.Equal(t, "['a',x].join()", newFixture(two).variable("vx", "x").expr(t))

	appendTo := withValue(withVar(blk("text_append"), "VAR", "vx"), "TEXT", text("a"))
	assert.Equal(t, "x = [x, 'a'].join();\n", newFixture(appendTo).variable("vx", "x").expr(t))

	assert.Equal(t, "'a' + '\\n' + \n'b'", newFixture(blk("text_multiline", "TEXT", "a\nb")).expr(t))
}

func TestText_Simple(t *testing.T) {
	abc := func() *workspace.Block { return text("abc") }
	tests := []struct {
		name string
		b    *workspace.Block
		want string
	}{
		{"length", withValue(blk("text_length"), "VALUE", abc()), "'abc'.length"},
		{"is empty", blk("text_isEmpty"), "''.isEmpty"},
		{"upper", withValue(blk("text_changeCase", "CASE", "UPPERCASE"), "TEXT", abc()), "'abc'.toUpperCase()"},
		{"trim both", withValue(blk("text_trim", "MODE", "BOTH"), "TEXT", abc()), "'abc'.trim()"},
		{"trim left", withValue(blk("text_trim", "MODE", "LEFT"), "TEXT", abc()), `'abc'.replaceFirst(new RegExp(r'^\s+'), '')`},
		{"replace", withValue(withValue(withValue(blk("text_replace"), "TEXT", abc()), "FROM", text("b")), "TO", text("c")), "'abc'.replaceAll('b', 'c')"},
		{"reverse", withValue(blk("text_reverse"), "TEXT", abc()), "new String.fromCharCodes('abc'.runes.toList().reversed)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, newFixture(tt.b).expr(t))
		})
	}
}

func TestText_IndexOf(t *testing.T) {
	find := func() *workspace.Block {
		return withValue(withValue(blk("text_indexOf", "END", "FIRST"), "FIND", text("b")), "VALUE", get("vx"))
	}
	assert.Equal(t, "x.indexOf('b') + 1", newFixture(find()).variable("vx", "x").expr(t))
	assert.Equal(t, "x.indexOf('b')", newFixture(find()).variable("vx", "x").zeroBased().expr(t))

	last := withValue(blk("text_indexOf", "END", "LAST"), "VALUE", get("vx"))
	assert.Equal(t, "x.lastIndexOf('') + 1", newFixture(last).variable("vx", "x").expr(t))
}

func TestText_CharAt(t *testing.T) {
	charAt := func(where string, at *workspace.Block) *workspace.Block {
		b := withValue(blk("text_charAt", "WHERE", where), "VALUE", get("vx"))
		if at != nil {
			withValue(b, "AT", at)
		}
		return b
	}
	expr := func(b *workspace.Block) string {
		return newFixture(b).variable("vx", "x").expr(t)
	}
	assert.Equal(t, "x[0]", expr(charAt("FIRST", nil)))
	assert.Equal(t, "x[1]", expr(charAt("FROM_START", num("2"))))
	assert.Equal(t, "x[(i - 1)]", newFixture(charAt("FROM_START", get("vi"))).variable("vx", "x").variable("vi", "i").expr(t))
	assert.Equal(t, "text_get_from_end(x, 1)", expr(charAt("LAST", nil)))
	assert.Equal(t, "text_get_from_end(x, 2)", expr(charAt("FROM_END", num("2"))))

	code, c := newFixture(charAt("RANDOM", nil)).variable("vx", "x").emit(t)
	assert.Equal(t, "text_random_letter(x)", code.Text)
	assert.Equal(t, []string{"variables", "import_lisp_math", "text_random_letter"}, definitionKeys(c))
}

func TestText_GetSubstring(t *testing.T) {
	sub := func(where1, where2 string, s *workspace.Block) *workspace.Block {
		return withValue(blk("text_getSubstring", "WHERE1", where1, "WHERE2", where2), "STRING", s)
	}
	expr := func(b *workspace.Block) string {
		return newFixture(b).variable("vx", "x").expr(t)
	}

	whole := sub("FIRST", "LAST", get("vx"))
	assert.Equal(t, "x", expr(whole))

	ranged := withValue(withValue(sub("FROM_START", "FROM_START", get("vx")), "AT1", num("2")), "AT2", num("4"))
	assert.Equal(t, "x.substring(1, 4)", expr(ranged))

	tail := withValue(sub("FROM_END", "LAST", get("vx")), "AT1", num("3"))
	assert.Equal(t, "x.substring(x.length - 3)", expr(tail))

	joined := withValue(withValue(items(blk("text_join"), 2), "ADD0", text("a")), "ADD1", get("vx"))
	code, c := newFixture(sub("FROM_END", "LAST", joined)).variable("vx", "x").emit(t)
	assert.Equal(t, "text_get_substring(['a',x].join(), 'FROM_END', 0, 'LAST', 0)", code.Text)
	assert.Contains(t, definitionKeys(c), "text_get_substring")
}

func TestText_Helpers(t *testing.T) {
	code, c := newFixture(withValue(blk("text_changeCase", "CASE", "TITLECASE"), "TEXT", text("abc"))).emit(t)
	assert.Equal(t, "text_toTitleCase('abc')", code.Text)
	assert.Equal(t, []string{"text_toTitleCase"}, definitionKeys(c))

	count := withValue(withValue(blk("text_count"), "TEXT", text("banana")), "SUB", text("a"))
	assert.Equal(t, "text_count('banana', 'a')", newFixture(count).expr(t))
}

func TestText_Prompt(t *testing.T) {
	number := withValue(blk("text_prompt_ext", "TYPE", "NUMBER"), "TEXT", text("n?"))
	code, c := newFixture(number).emit(t)
	assert.Equal(t, "Math.parseDouble(Html.window.prompt('n?', ''))", code.Text)
	assert.Equal(t, []string{"import_lisp_html", "import_lisp_math"}, definitionKeys(c))

	plain := blk("text_prompt", "TEXT", "Name", "TYPE", "TEXT")
	code, c = newFixture(plain).emit(t)
	assert.Equal(t, "Html.window.prompt('Name', '')", code.Text)
	assert.Equal(t, []string{"import_lisp_html"}, definitionKeys(c))
}

func TestText_UnknownOption(t *testing.T) {
	f := newFixture(printBlock(withValue(blk("text_trim", "MODE", "MIDDLE"), "TEXT", text("a"))))
	_, err := f.generator(t).Generate(f.ws)
	assert.ErrorIs(t, err, ErrUnhandledOption)
}

func list() *workspace.Block { return get("vl") }

// literal is a list expression that is not safe to evaluate twice.
func literal() *workspace.Block {
	return withValue(items(blk("lists_create_with"), 1), "ADD0", num("1"))
}

func listFixture(b *workspace.Block) *fixture {
	return newFixture(b).variable("vl", "xs").variable("vi", "i")
}

func TestLists_Simple(t *testing.T) {
	tests := []struct {
		name string
		b    *workspace.Block
		want string
	}{
		{"empty", blk("lists_create_empty"), "[]"},
		{"create with", withValue(items(blk("lists_create_with"), 2), "ADD0", num("1")), "[1, null]"},
		{"repeat", withValue(withValue(blk("lists_repeat"), "ITEM", text("a")), "NUM", num("3")), "new List.filled(3, 'a')"},
		{"length", withValue(blk("lists_length"), "VALUE", blk("lists_create_empty")), "[].length"},
		{"is empty", withValue(blk("lists_isEmpty"), "VALUE", list()), "xs.isEmpty"},
		{"index of", withValue(withValue(blk("lists_indexOf", "END", "FIRST"), "FIND", num("1")), "VALUE", list()), "xs.indexOf(1) + 1"},
		{"sort", withValue(blk("lists_sort", "TYPE", "NUMERIC", "DIRECTION", "1"), "LIST", list()), `lists_sort(xs, "NUMERIC", 1)`},
		{"split", withValue(withValue(blk("lists_split", "MODE", "SPLIT"), "INPUT", text("a,b")), "DELIM", text(",")), "'a,b'.split(',')"},
		{"join default", blk("lists_split", "MODE", "JOIN"), "[].join('')"},
		{"reverse", withValue(blk("lists_reverse"), "LIST", list()), "new List.from(xs.reversed)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, listFixture(tt.b).expr(t))
		})
	}
}

func TestLists_GetIndex(t *testing.T) {
	getIndex := func(mode, where string, l, at *workspace.Block) *workspace.Block {
		b := withValue(blk("lists_getIndex", "MODE", mode, "WHERE", where), "VALUE", l)
		if at != nil {
			withValue(b, "AT", at)
		}
		return b
	}
	tests := []struct {
		name string
		b    *workspace.Block
		want string
	}{
		{"literal index folded", getIndex("GET", "FROM_START", list(), num("1")), "xs[0]"},
		{"dynamic index", getIndex("GET", "FROM_START", list(), get("vi")), "xs[(i - 1)]"},
		{"first", getIndex("GET", "FIRST", list(), nil), "xs.first"},
		{"take last", getIndex("GET_REMOVE", "LAST", list(), nil), "xs.removeLast()"},
		{"remove first", getIndex("REMOVE", "FIRST", list(), nil), "xs.removeAt(0);\n"},
		{"from end on variable", getIndex("GET", "FROM_END", list(), num("2")), "xs[xs.length - 2]"},
		{"from end on literal", getIndex("GET", "FROM_END", literal(), num("2")), "lists_get_from_end([1], 2)"},
		{"remove from end caches", getIndex("REMOVE", "FROM_END", literal(), num("2")),
			"List tmp_list = [1];\ntmp_list.removeAt(tmp_list.length - 2);\n"},
		{"remove random caches", getIndex("REMOVE", "RANDOM", literal(), nil),
			"List tmp_list = [1];\nint tmp_x = new Math.Random().nextInt(tmp_list.length);\ntmp_list.removeAt(tmp_x);\n"},
		{"random item", getIndex("GET", "RANDOM", list(), nil), "lists_get_random_item(xs)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, listFixture(tt.b).expr(t))
		})
	}

	f := listFixture(printBlock(getIndex("GET", "NOWHERE", list(), nil)))
	_, err := f.generator(t).Generate(f.ws)
	assert.ErrorIs(t, err, ErrUnhandledDispatch)
}

func TestLists_GetIndexTempAvoidsUserVariable(t *testing.T) {
	b := withValue(withValue(blk("lists_getIndex", "MODE", "REMOVE", "WHERE", "FROM_END"), "VALUE", literal()), "AT", num("1"))
	f := listFixture(b)
	f.ws.DeveloperVariables = []string{"tmp_list"}
	got := f.expr(t)
	assert.Equal(t, "List tmp_list2 = [1];\ntmp_list2.removeAt(tmp_list2.length - 1);\n", got)
}

func TestLists_SetIndex(t *testing.T) {
	setIndex := func(mode, where string, l, at *workspace.Block) *workspace.Block {
		b := withValue(withValue(blk("lists_setIndex", "MODE", mode, "WHERE", where), "LIST", l), "TO", num("5"))
		if at != nil {
			withValue(b, "AT", at)
		}
		return b
	}
	tests := []struct {
		name string
		b    *workspace.Block
		want string
	}{
		{"set first", setIndex("SET", "FIRST", list(), nil), "xs[0] = 5;\n"},
		{"insert last", setIndex("INSERT", "LAST", list(), nil), "xs.add(5);\n"},
		{"set last caches", setIndex("SET", "LAST", literal(), nil), "List tmp_list = [1];\ntmp_list[tmp_list.length - 1] = 5;\n"},
		{"set dynamic index", setIndex("SET", "FROM_START", list(), get("vi")), "xs[(i - 1)] = 5;\n"},
		{"insert from end", setIndex("INSERT", "FROM_END", list(), num("1")), "xs.insert(xs.length - 1, 5);\n"},
		{"set random", setIndex("SET", "RANDOM", list(), nil), "int tmp_x = new Math.Random().nextInt(xs.length);\nxs[tmp_x] = 5;\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, listFixture(tt.b).expr(t))
		})
	}

	f := listFixture(setIndex("GET", "FIRST", list(), nil))
	_, err := f.generator(t).Generate(f.ws)
	assert.ErrorIs(t, err, ErrUnhandledDispatch)
}

func TestLists_GetSublist(t *testing.T) {
	sublist := func(where1, where2 string, l *workspace.Block) *workspace.Block {
		return withValue(blk("lists_getSublist", "WHERE1", where1, "WHERE2", where2), "LIST", l)
	}
	ranged := withValue(withValue(sublist("FROM_START", "FROM_START", list()), "AT1", num("2")), "AT2", num("3"))
	assert.Equal(t, "xs.sublist(1, 3)", listFixture(ranged).expr(t))
	assert.Equal(t, "xs.sublist(0)", listFixture(sublist("FIRST", "LAST", list())).expr(t))

	code, c := listFixture(sublist("FIRST", "LAST", literal())).emit(t)
	assert.Equal(t, "lists_get_sublist([1], 'FIRST', 0, 'LAST', 0)", code.Text)
	require.NotEmpty(t, c.Definitions())
	assert.Equal(t, "lists_get_sublist", definitionKeys(c)[len(c.Definitions())-1])
}
