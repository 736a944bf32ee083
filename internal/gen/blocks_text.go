package gen

import (
	"regexp"
	"strings"

	"github.com/AppKaki/blockly-ulisp/internal/workspace"
)

const emptyText = "''"

// simpleText matches a variable or a quoted single-word literal.
var simpleText = regexp.MustCompile(`^'?\w+'?$`)

func init() {
	RegisterGenerator(BlockGenerator{Type: "text", Emit: textLiteral})
	RegisterGenerator(BlockGenerator{Type: "text_multiline", Emit: textMultiline})
	RegisterGenerator(BlockGenerator{Type: "text_join", Emit: textJoin})
	RegisterGenerator(BlockGenerator{Type: "text_append", Emit: textAppend})
	RegisterGenerator(BlockGenerator{Type: "text_length", Emit: textLength})
	RegisterGenerator(BlockGenerator{Type: "text_isEmpty", Emit: textIsEmpty})
	RegisterGenerator(BlockGenerator{Type: "text_indexOf", Emit: textIndexOf})
	RegisterGenerator(BlockGenerator{Type: "text_charAt", Emit: textCharAt})
	RegisterGenerator(BlockGenerator{Type: "text_getSubstring", Emit: textGetSubstring})
	RegisterGenerator(BlockGenerator{Type: "text_changeCase", Emit: textChangeCase})
	RegisterGenerator(BlockGenerator{Type: "text_trim", Emit: textTrim})
	RegisterGenerator(BlockGenerator{Type: "text_print", Emit: textPrint})
	RegisterGenerator(BlockGenerator{Type: "text_prompt_ext", Emit: textPrompt})
	DefaultRegistry.Alias("text_prompt", "text_prompt_ext")
	RegisterGenerator(BlockGenerator{Type: "text_count", Emit: textCount})
	RegisterGenerator(BlockGenerator{Type: "text_replace", Emit: textReplace})
	RegisterGenerator(BlockGenerator{Type: "text_reverse", Emit: textReverse})
}

func textLiteral(c *Context, b *workspace.Block) Code {
	return Expr(Quote(b.FieldValue("TEXT")), OrderAtomic)
}

func textMultiline(c *Context, b *workspace.Block) Code {
	code := MultilineQuote(b.FieldValue("TEXT"))
	if strings.Contains(code, "+") {
		return Expr(code, OrderAdditive)
	}
	return Expr(code, OrderAtomic)
}

func textJoin(c *Context, b *workspace.Block) Code {
	switch n := b.Extra.ItemCount; n {
	case 0:
		return Expr(emptyText, OrderAtomic)
	case 1:
		element := c.ValueOr(b, "ADD0", OrderUnaryPostfix, emptyText)
		return Expr(element+".toString()", OrderUnaryPostfix)
	default:
		elements, ok := c.items(b, OrderNone, emptyText)
		if !ok {
			return Code{}
		}
		return Expr("["+strings.Join(elements, ",")+"].join()", OrderUnaryPostfix)
	}
}

func textAppend(c *Context, b *workspace.Block) Code {
	v := c.VariableName(b.FieldValue("VAR"))
	value := c.ValueOr(b, "TEXT", OrderNone, emptyText)
	return Stmt(v + " = [" + v + ", " + value + "].join();\n")
}

func textLength(c *Context, b *workspace.Block) Code {
	text := c.ValueOr(b, "VALUE", OrderUnaryPostfix, emptyText)
	return Expr(text+".length", OrderUnaryPostfix)
}

func textIsEmpty(c *Context, b *workspace.Block) Code {
	text := c.ValueOr(b, "VALUE", OrderUnaryPostfix, emptyText)
	return Expr(text+".isEmpty", OrderUnaryPostfix)
}

func textIndexOf(c *Context, b *workspace.Block) Code {
	op := "lastIndexOf"
	if b.FieldValue("END") == "FIRST" {
		op = "indexOf"
	}
	sub := c.ValueOr(b, "FIND", OrderNone, emptyText)
	text := c.ValueOr(b, "VALUE", OrderUnaryPostfix, emptyText)
	code := text + "." + op + "(" + sub + ")"
	if c.opts.OneBasedIndex {
		return Expr(code+" + 1", OrderAdditive)
	}
	return Expr(code, OrderUnaryPostfix)
}

func textCharAt(c *Context, b *workspace.Block) Code {
	where := b.FieldValue("WHERE")
	if where == "" {
		where = "FROM_START"
	}
	textOrder := OrderNone
	if where == "FIRST" || where == "FROM_START" {
		textOrder = OrderUnaryPostfix
	}
	text := c.ValueOr(b, "VALUE", textOrder, emptyText)

	switch where {
	case "FIRST":
		return Expr(text+"[0]", OrderUnaryPostfix)
	case "FROM_START":
		at := c.GetAdjusted(b, "AT", 0, false, OrderNone)
		return Expr(text+"["+at+"]", OrderUnaryPostfix)
	case "LAST", "FROM_END":
		at := "1"
		if where == "FROM_END" {
			at = c.GetAdjusted(b, "AT", 1, false, OrderNone)
		}
		name := c.ProvideFunction("text_get_from_end", []string{
			"String " + FunctionNamePlaceholder + "(String text, num x) {",
			"  return text[text.length - x];",
			"}",
		})
		return Expr(name+"("+text+", "+at+")", OrderUnaryPostfix)
	case "RANDOM":
		requireMath(c)
		name := c.ProvideFunction("text_random_letter", []string{
			"String " + FunctionNamePlaceholder + "(String text) {",
			"  int x = new Math.Random().nextInt(text.length);",
			"  return text[x];",
			"}",
		})
		return Expr(name+"("+text+")", OrderUnaryPostfix)
	}
	return c.Failf(ErrUnhandledOption, b, "unknown position %q", where)
}

func textGetSubstring(c *Context, b *workspace.Block) Code {
	where1 := b.FieldValue("WHERE1")
	where2 := b.FieldValue("WHERE2")
	requiresLength := where1 != "FROM_END" && where2 == "FROM_START"
	textOrder := OrderNone
	if requiresLength {
		textOrder = OrderUnaryPostfix
	}
	text := c.ValueOr(b, "STRING", textOrder, emptyText)

	if where1 == "FIRST" && where2 == "LAST" {
		return Expr(text, OrderNone)
	}
	if !simpleText.MatchString(text) && !requiresLength {
		at1 := c.GetAdjusted(b, "AT1", 0, false, OrderNone)
		at2 := c.GetAdjusted(b, "AT2", 0, false, OrderNone)
		name := c.ProvideFunction("text_get_substring", []string{
			"String " + FunctionNamePlaceholder + "(String text, String where1, num at1, String where2, num at2) {",
			"  int getAt(String where, num at) {",
			"    if (where == 'FROM_END') {",
			"      at = text.length - 1 - at;",
			"    } else if (where == 'FIRST') {",
			"      at = 0;",
			"    } else if (where == 'LAST') {",
			"      at = text.length - 1;",
			"    } else if (where != 'FROM_START') {",
			"      throw 'Unhandled option (text_getSubstring).';",
			"    }",
			"    return at;",
			"  }",
			"  at1 = getAt(where1, at1);",
			"  at2 = getAt(where2, at2) + 1;",
			"  return text.substring(at1, at2);",
			"}",
		})
		code := name + "(" + text + ", '" + where1 + "', " + at1 + ", '" + where2 + "', " + at2 + ")"
		return Expr(code, OrderUnaryPostfix)
	}

	var at1, at2 string
	switch where1 {
	case "FROM_START":
		at1 = c.GetAdjusted(b, "AT1", 0, false, OrderNone)
	case "FROM_END":
		at1 = text + ".length - " + c.GetAdjusted(b, "AT1", 1, false, OrderAdditive)
	case "FIRST":
		at1 = "0"
	default:
		return c.Failf(ErrUnhandledOption, b, "unknown start position %q", where1)
	}
	switch where2 {
	case "FROM_START":
		at2 = c.GetAdjusted(b, "AT2", 1, false, OrderNone)
	case "FROM_END":
		at2 = text + ".length - " + c.GetAdjusted(b, "AT2", 0, false, OrderAdditive)
	case "LAST":
	default:
		return c.Failf(ErrUnhandledOption, b, "unknown end position %q", where2)
	}
	if where2 == "LAST" {
		return Expr(text+".substring("+at1+")", OrderUnaryPostfix)
	}
	return Expr(text+".substring("+at1+", "+at2+")", OrderUnaryPostfix)
}

func textChangeCase(c *Context, b *workspace.Block) Code {
	var op string
	switch mode := b.FieldValue("CASE"); mode {
	case "UPPERCASE":
		op = ".toUpperCase()"
	case "LOWERCASE":
		op = ".toLowerCase()"
	case "TITLECASE":
	default:
		return c.Failf(ErrUnhandledOption, b, "unknown case %q", mode)
	}
	if op != "" {
		text := c.ValueOr(b, "TEXT", OrderUnaryPostfix, emptyText)
		return Expr(text+op, OrderUnaryPostfix)
	}
	text := c.ValueOr(b, "TEXT", OrderNone, emptyText)
	name := c.ProvideFunction("text_toTitleCase", []string{
		"String " + FunctionNamePlaceholder + "(String str) {",
		`  RegExp exp = new RegExp(r'\b');`,
		"  List<String> list = str.split(exp);",
		"  final title = new StringBuffer();",
		"  for (String part in list) {",
		"    if (part.length > 0) {",
		"      title.write(part[0].toUpperCase());",
		"      if (part.length > 0) {",
		"        title.write(part.substring(1).toLowerCase());",
		"      }",
		"    }",
		"  }",
		"  return title.toString();",
		"}",
	})
	return Expr(name+"("+text+")", OrderUnaryPostfix)
}

func textTrim(c *Context, b *workspace.Block) Code {
	operators := map[string]string{
		"LEFT":  `.replaceFirst(new RegExp(r'^\s+'), '')`,
		"RIGHT": `.replaceFirst(new RegExp(r'\s+$'), '')`,
		"BOTH":  ".trim()",
	}
	op, ok := operators[b.FieldValue("MODE")]
	if !ok {
		return c.Failf(ErrUnhandledOption, b, "unknown trim mode %q", b.FieldValue("MODE"))
	}
	text := c.ValueOr(b, "TEXT", OrderUnaryPostfix, emptyText)
	return Expr(text+op, OrderUnaryPostfix)
}

func textPrint(c *Context, b *workspace.Block) Code {
	msg := c.ValueOr(b, "TEXT", OrderNone, emptyText)
	return Stmt("print(" + msg + ");\n")
}

func textPrompt(c *Context, b *workspace.Block) Code {
	c.RequireImport(htmlImportKey, htmlImport)
	var msg string
	if b.HasField("TEXT") {
		msg = Quote(b.FieldValue("TEXT"))
	} else {
		msg = c.ValueOr(b, "TEXT", OrderNone, emptyText)
	}
	code := "Html.window.prompt(" + msg + ", '')"
	if b.FieldValue("TYPE") == "NUMBER" {
		requireMath(c)
		code = "Math.parseDouble(" + code + ")"
	}
	return Expr(code, OrderUnaryPostfix)
}

func textCount(c *Context, b *workspace.Block) Code {
	text := c.ValueOr(b, "TEXT", OrderNone, emptyText)
	sub := c.ValueOr(b, "SUB", OrderNone, emptyText)
	name := c.ProvideFunction("text_count", []string{
		"int " + FunctionNamePlaceholder + "(String haystack, String needle) {",
		"  if (needle.length == 0) {",
		"    return haystack.length + 1;",
		"  }",
		"  int index = 0;",
		"  int count = 0;",
		"  while (index != -1) {",
		"    index = haystack.indexOf(needle, index);",
		"    if (index != -1) {",
		"      count++;",
		"      index += needle.length;",
		"    }",
		"  }",
		"  return count;",
		"}",
	})
	return Expr(name+"("+text+", "+sub+")", OrderUnaryPostfix)
}

func textReplace(c *Context, b *workspace.Block) Code {
	text := c.ValueOr(b, "TEXT", OrderUnaryPostfix, emptyText)
	from := c.ValueOr(b, "FROM", OrderNone, emptyText)
	to := c.ValueOr(b, "TO", OrderNone, emptyText)
	return Expr(text+".replaceAll("+from+", "+to+")", OrderUnaryPostfix)
}

func textReverse(c *Context, b *workspace.Block) Code {
	text := c.ValueOr(b, "TEXT", OrderUnaryPostfix, emptyText)
	return Expr("new String.fromCharCodes("+text+".runes.toList().reversed)", OrderUnaryPrefix)
}
