package gen

import (
	"strconv"
	"strings"

	"github.com/AppKaki/blockly-ulisp/internal/workspace"
)

func init() {
	RegisterGenerator(BlockGenerator{Type: "controls_if", Emit: controlsIf, SuppressPrefixSuffix: true})
	DefaultRegistry.Alias("controls_ifelse", "controls_if")
	RegisterGenerator(BlockGenerator{Type: "logic_compare", Emit: logicCompare})
	RegisterGenerator(BlockGenerator{Type: "logic_operation", Emit: logicOperation})
	RegisterGenerator(BlockGenerator{Type: "logic_negate", Emit: logicNegate})
	RegisterGenerator(BlockGenerator{Type: "logic_boolean", Emit: logicBoolean})
	RegisterGenerator(BlockGenerator{Type: "logic_null", Emit: logicNull})
	RegisterGenerator(BlockGenerator{Type: "logic_ternary", Emit: logicTernary})
}

// controlsIf places the statement hooks itself: the prefix once in front of
// the chain, the suffix at the top of every branch.
func controlsIf(c *Context, b *workspace.Block) Code {
	var sb strings.Builder
	if c.opts.StatementPrefix != "" {
		sb.WriteString(c.InjectID(c.opts.StatementPrefix, b))
	}
	branchWithSuffix := func(input string) string {
		branch := c.StatementToCode(b, input)
		if c.opts.StatementSuffix != "" {
			branch = PrefixLines(c.InjectID(c.opts.StatementSuffix, b), c.opts.Indent) + branch
		}
		return branch
	}

	for n := 0; n == 0 || b.HasInput("IF"+strconv.Itoa(n)); n++ {
		idx := strconv.Itoa(n)
		cond := c.ValueOr(b, "IF"+idx, OrderNone, "false")
		branch := branchWithSuffix("DO" + idx)
		if n > 0 {
			sb.WriteString("else ")
		}
		sb.WriteString("if (" + cond + ") {\n" + branch + "}")
	}
	if b.HasInput("ELSE") || c.opts.StatementSuffix != "" {
		sb.WriteString(" else {\n" + branchWithSuffix("ELSE") + "}")
	}
	sb.WriteString("\n")
	return Stmt(sb.String())
}

// logicCompare asks for its operands one level tighter than the operator,
// so a comparison nested in a comparison keeps its parentheses. Comparisons
// do not chain.
func logicCompare(c *Context, b *workspace.Block) Code {
	operators := map[string]string{
		"EQ":  "==",
		"NEQ": "!=",
		"LT":  "<",
		"LTE": "<=",
		"GT":  ">",
		"GTE": ">=",
	}
	op, ok := operators[b.FieldValue("OP")]
	if !ok {
		return c.Failf(ErrUnhandledOption, b, "unknown comparison %q", b.FieldValue("OP"))
	}
	order := OrderRelational
	if op == "==" || op == "!=" {
		order = OrderEquality
	}
	a := c.ValueOr(b, "A", order.Tighter(), "0")
	bb := c.ValueOr(b, "B", order.Tighter(), "0")
	return Expr(a+" "+op+" "+bb, order)
}

func logicOperation(c *Context, b *workspace.Block) Code {
	op, order, identity := "||", OrderLogicalOr, "false"
	if b.FieldValue("OP") == "AND" {
		op, order, identity = "&&", OrderLogicalAnd, "true"
	}
	a := c.ValueToCode(b, "A", order)
	bb := c.ValueToCode(b, "B", order)
	switch {
	case a == "" && bb == "":
		a, bb = "false", "false"
	case a == "":
		a = identity
	case bb == "":
		bb = identity
	}
	return Expr(a+" "+op+" "+bb, order)
}

func logicNegate(c *Context, b *workspace.Block) Code {
	arg := c.ValueOr(b, "BOOL", OrderUnaryPrefix, "true")
	return Expr("!"+arg, OrderUnaryPrefix)
}

func logicBoolean(c *Context, b *workspace.Block) Code {
	if b.FieldValue("BOOL") == "TRUE" {
		return Expr("true", OrderAtomic)
	}
	return Expr("false", OrderAtomic)
}

func logicNull(c *Context, b *workspace.Block) Code {
	return Expr("null", OrderAtomic)
}

// logicTernary asks for the condition one level tighter than a conditional.
func logicTernary(c *Context, b *workspace.Block) Code {
	// a conditional in the condition slot would regroup to the right
	cond := c.ValueOr(b, "IF", OrderConditional.Tighter(), "false")
	then := c.ValueOr(b, "THEN", OrderConditional, "null")
	els := c.ValueOr(b, "ELSE", OrderConditional, "null")
	return Expr(cond+" ? "+then+" : "+els, OrderConditional)
}
