package gen

import (
	"strings"

	"github.com/AppKaki/blockly-ulisp/internal/workspace"
)

const emptyList = "[]"

func init() {
	RegisterGenerator(BlockGenerator{Type: "lists_create_empty", Emit: listsCreateEmpty})
	RegisterGenerator(BlockGenerator{Type: "lists_create_with", Emit: listsCreateWith})
	RegisterGenerator(BlockGenerator{Type: "lists_repeat", Emit: listsRepeat})
	RegisterGenerator(BlockGenerator{Type: "lists_length", Emit: listsLength})
	RegisterGenerator(BlockGenerator{Type: "lists_isEmpty", Emit: listsIsEmpty})
	RegisterGenerator(BlockGenerator{Type: "lists_indexOf", Emit: listsIndexOf})
	RegisterGenerator(BlockGenerator{Type: "lists_getIndex", Emit: listsGetIndex})
	RegisterGenerator(BlockGenerator{Type: "lists_setIndex", Emit: listsSetIndex})
	RegisterGenerator(BlockGenerator{Type: "lists_getSublist", Emit: listsGetSublist})
	RegisterGenerator(BlockGenerator{Type: "lists_sort", Emit: listsSort})
	RegisterGenerator(BlockGenerator{Type: "lists_split", Emit: listsSplit})
	RegisterGenerator(BlockGenerator{Type: "lists_reverse", Emit: listsReverse})
}

func listsCreateEmpty(c *Context, b *workspace.Block) Code {
	return Expr(emptyList, OrderAtomic)
}

func listsCreateWith(c *Context, b *workspace.Block) Code {
	elements, ok := c.items(b, OrderNone, "null")
	if !ok {
		return Code{}
	}
	return Expr("["+strings.Join(elements, ", ")+"]", OrderAtomic)
}

func listsRepeat(c *Context, b *workspace.Block) Code {
	element := c.ValueOr(b, "ITEM", OrderNone, "null")
	count := c.ValueOr(b, "NUM", OrderNone, "0")
	return Expr("new List.filled("+count+", "+element+")", OrderUnaryPostfix)
}

func listsLength(c *Context, b *workspace.Block) Code {
	list := c.ValueOr(b, "VALUE", OrderUnaryPostfix, emptyList)
	return Expr(list+".length", OrderUnaryPostfix)
}

func listsIsEmpty(c *Context, b *workspace.Block) Code {
	list := c.ValueOr(b, "VALUE", OrderUnaryPostfix, emptyList)
	return Expr(list+".isEmpty", OrderUnaryPostfix)
}

func listsIndexOf(c *Context, b *workspace.Block) Code {
	op := "lastIndexOf"
	if b.FieldValue("END") == "FIRST" {
		op = "indexOf"
	}
	item := c.ValueOr(b, "FIND", OrderNone, emptyText)
	list := c.ValueOr(b, "VALUE", OrderUnaryPostfix, emptyList)
	code := list + "." + op + "(" + item + ")"
	if c.opts.OneBasedIndex {
		return Expr(code+" + 1", OrderAdditive)
	}
	return Expr(code, OrderUnaryPostfix)
}

// cacheList stores a non-trivial list expression in a fresh temporary so it
// is evaluated once. It returns the declaration and the name to use.
func cacheList(c *Context, list string) (decl, name string) {
	name = c.DistinctVariable("tmp_list")
	return "List " + name + " = " + list + ";\n", name
}

func randomIndex(c *Context, list string) (decl, name string) {
	name = c.DistinctVariable("tmp_x")
	return "int " + name + " = new Math.Random().nextInt(" + list + ".length);\n", name
}

func listsGetIndex(c *Context, b *workspace.Block) Code {
	mode := b.FieldValue("MODE")
	if mode == "" {
		mode = "GET"
	}
	where := b.FieldValue("WHERE")
	if where == "" {
		where = "FROM_START"
	}
	listOrder := OrderUnaryPostfix
	if where == "RANDOM" || where == "FROM_END" {
		listOrder = OrderNone
	}
	list := c.ValueOr(b, "VALUE", listOrder, emptyList)

	if ((where == "RANDOM" && mode == "REMOVE") || where == "FROM_END") && !isWord(list) {
		if where == "RANDOM" {
			requireMath(c)
			code, list := cacheList(c, list)
			decl, x := randomIndex(c, list)
			return Stmt(code + decl + list + ".removeAt(" + x + ");\n")
		}
		switch mode {
		case "REMOVE":
			at := c.GetAdjusted(b, "AT", 1, false, OrderAdditive)
			code, list := cacheList(c, list)
			return Stmt(code + list + ".removeAt(" + list + ".length - " + at + ");\n")
		case "GET":
			at := c.GetAdjusted(b, "AT", 1, false, OrderNone)
			name := c.ProvideFunction("lists_get_from_end", []string{
				"dynamic " + FunctionNamePlaceholder + "(List my_list, num x) {",
				"  x = my_list.length - x;",
				"  return my_list[x];",
				"}",
			})
			return Expr(name+"("+list+", "+at+")", OrderUnaryPostfix)
		case "GET_REMOVE":
			at := c.GetAdjusted(b, "AT", 1, false, OrderNone)
			name := c.ProvideFunction("lists_remove_from_end", []string{
				"dynamic " + FunctionNamePlaceholder + "(List my_list, num x) {",
				"  x = my_list.length - x;",
				"  return my_list.removeAt(x);",
				"}",
			})
			return Expr(name+"("+list+", "+at+")", OrderUnaryPostfix)
		}
		return c.Failf(ErrUnhandledDispatch, b, "mode %s at %s", mode, where)
	}

	access := func(get, getRemove string) Code {
		switch mode {
		case "GET":
			return Expr(list+get, OrderUnaryPostfix)
		case "GET_REMOVE":
			return Expr(list+getRemove, OrderUnaryPostfix)
		case "REMOVE":
			return Stmt(list + getRemove + ";\n")
		}
		return c.Failf(ErrUnhandledDispatch, b, "mode %s at %s", mode, where)
	}
	switch where {
	case "FIRST":
		return access(".first", ".removeAt(0)")
	case "LAST":
		return access(".last", ".removeLast()")
	case "FROM_START":
		at := c.GetAdjusted(b, "AT", 0, false, OrderNone)
		return access("["+at+"]", ".removeAt("+at+")")
	case "FROM_END":
		at := c.GetAdjusted(b, "AT", 1, false, OrderAdditive)
		return access("["+list+".length - "+at+"]", ".removeAt("+list+".length - "+at+")")
	case "RANDOM":
		requireMath(c)
		switch mode {
		case "REMOVE":
			decl, x := randomIndex(c, list)
			return Stmt(decl + list + ".removeAt(" + x + ");\n")
		case "GET":
			name := c.ProvideFunction("lists_get_random_item", []string{
				"dynamic " + FunctionNamePlaceholder + "(List my_list) {",
				"  int x = new Math.Random().nextInt(my_list.length);",
				"  return my_list[x];",
				"}",
			})
			return Expr(name+"("+list+")", OrderUnaryPostfix)
		case "GET_REMOVE":
			name := c.ProvideFunction("lists_remove_random_item", []string{
				"dynamic " + FunctionNamePlaceholder + "(List my_list) {",
				"  int x = new Math.Random().nextInt(my_list.length);",
				"  return my_list.removeAt(x);",
				"}",
			})
			return Expr(name+"("+list+")", OrderUnaryPostfix)
		}
	}
	return c.Failf(ErrUnhandledDispatch, b, "mode %s at %s", mode, where)
}

func listsSetIndex(c *Context, b *workspace.Block) Code {
	mode := b.FieldValue("MODE")
	if mode == "" {
		mode = "GET"
	}
	where := b.FieldValue("WHERE")
	if where == "" {
		where = "FROM_START"
	}
	list := c.ValueOr(b, "LIST", OrderUnaryPostfix, emptyList)
	value := c.ValueOr(b, "TO", OrderAssignment, "null")
	cached := func() string {
		if isWord(list) {
			return ""
		}
		var decl string
		decl, list = cacheList(c, list)
		return decl
	}

	switch where {
	case "FIRST":
		switch mode {
		case "SET":
			return Stmt(list + "[0] = " + value + ";\n")
		case "INSERT":
			return Stmt(list + ".insert(0, " + value + ");\n")
		}
	case "LAST":
		switch mode {
		case "SET":
			code := cached()
			return Stmt(code + list + "[" + list + ".length - 1] = " + value + ";\n")
		case "INSERT":
			return Stmt(list + ".add(" + value + ");\n")
		}
	case "FROM_START":
		at := c.GetAdjusted(b, "AT", 0, false, OrderNone)
		switch mode {
		case "SET":
			return Stmt(list + "[" + at + "] = " + value + ";\n")
		case "INSERT":
			return Stmt(list + ".insert(" + at + ", " + value + ");\n")
		}
	case "FROM_END":
		at := c.GetAdjusted(b, "AT", 1, false, OrderAdditive)
		code := cached()
		switch mode {
		case "SET":
			return Stmt(code + list + "[" + list + ".length - " + at + "] = " + value + ";\n")
		case "INSERT":
			return Stmt(code + list + ".insert(" + list + ".length - " + at + ", " + value + ");\n")
		}
	case "RANDOM":
		requireMath(c)
		code := cached()
		decl, x := randomIndex(c, list)
		code += decl
		switch mode {
		case "SET":
			return Stmt(code + list + "[" + x + "] = " + value + ";\n")
		case "INSERT":
			return Stmt(code + list + ".insert(" + x + ", " + value + ");\n")
		}
	}
	return c.Failf(ErrUnhandledDispatch, b, "mode %s at %s", mode, where)
}

func listsGetSublist(c *Context, b *workspace.Block) Code {
	list := c.ValueOr(b, "LIST", OrderUnaryPostfix, emptyList)
	where1 := b.FieldValue("WHERE1")
	where2 := b.FieldValue("WHERE2")

	if !isWord(list) && (where1 == "FROM_END" || where2 != "FROM_START") {
		at1 := c.GetAdjusted(b, "AT1", 0, false, OrderNone)
		at2 := c.GetAdjusted(b, "AT2", 0, false, OrderNone)
		name := c.ProvideFunction("lists_get_sublist", []string{
			"List " + FunctionNamePlaceholder + "(List list, String where1, num at1, String where2, num at2) {",
			"  int getAt(String where, num at) {",
			"    if (where == 'FROM_END') {",
			"      at = list.length - 1 - at;",
			"    } else if (where == 'FIRST') {",
			"      at = 0;",
			"    } else if (where == 'LAST') {",
			"      at = list.length - 1;",
			"    } else if (where != 'FROM_START') {",
			"      throw 'Unhandled option (lists_getSublist).';",
			"    }",
			"    return at;",
			"  }",
			"  at1 = getAt(where1, at1);",
			"  at2 = getAt(where2, at2) + 1;",
			"  return list.sublist(at1, at2);",
			"}",
		})
		code := name + "(" + list + ", '" + where1 + "', " + at1 + ", '" + where2 + "', " + at2 + ")"
		return Expr(code, OrderUnaryPostfix)
	}

	var at1, at2 string
	switch where1 {
	case "FROM_START":
		at1 = c.GetAdjusted(b, "AT1", 0, false, OrderNone)
	case "FROM_END":
		at1 = list + ".length - " + c.GetAdjusted(b, "AT1", 1, false, OrderAdditive)
	case "FIRST":
		at1 = "0"
	default:
		return c.Failf(ErrUnhandledOption, b, "unknown start position %q", where1)
	}
	switch where2 {
	case "FROM_START":
		at2 = c.GetAdjusted(b, "AT2", 1, false, OrderNone)
	case "FROM_END":
		at2 = list + ".length - " + c.GetAdjusted(b, "AT2", 0, false, OrderAdditive)
	case "LAST":
		return Expr(list+".sublist("+at1+")", OrderUnaryPostfix)
	default:
		return c.Failf(ErrUnhandledOption, b, "unknown end position %q", where2)
	}
	return Expr(list+".sublist("+at1+", "+at2+")", OrderUnaryPostfix)
}

func listsSort(c *Context, b *workspace.Block) Code {
	list := c.ValueOr(b, "LIST", OrderNone, emptyList)
	direction := "-1"
	if b.FieldValue("DIRECTION") == "1" {
		direction = "1"
	}
	typ := b.FieldValue("TYPE")
	name := c.ProvideFunction("lists_sort", []string{
		"List " + FunctionNamePlaceholder + "(List list, String type, int direction) {",
		"  var compareFuncs = {",
		`    "NUMERIC": (a, b) => (direction * a.compareTo(b)).toInt(),`,
		`    "TEXT": (a, b) => direction * a.toString().compareTo(b.toString()),`,
		`    "IGNORE_CASE": `,
		"       (a, b) => direction * ",
		"      a.toString().toLowerCase().compareTo(b.toString().toLowerCase())",
		"  };",
		"  list = new List.from(list);",
		"  var compare = compareFuncs[type];",
		"  list.sort(compare);",
		"  return list;",
		"}",
	})
	return Expr(name+"("+list+", \""+typ+"\", "+direction+")", OrderUnaryPostfix)
}

func listsSplit(c *Context, b *workspace.Block) Code {
	input := c.ValueToCode(b, "INPUT", OrderUnaryPostfix)
	delim := c.ValueOr(b, "DELIM", OrderNone, emptyText)
	var fn string
	switch mode := b.FieldValue("MODE"); mode {
	case "SPLIT":
		fn = "split"
		if input == "" {
			input = emptyText
		}
	case "JOIN":
		fn = "join"
		if input == "" {
			input = emptyList
		}
	default:
		return c.Failf(ErrUnhandledOption, b, "unknown mode %q", mode)
	}
	return Expr(input+"."+fn+"("+delim+")", OrderUnaryPostfix)
}

func listsReverse(c *Context, b *workspace.Block) Code {
	list := c.ValueOr(b, "LIST", OrderUnaryPostfix, emptyList)
	return Expr("new List.from("+list+".reversed)", OrderUnaryPostfix)
}
