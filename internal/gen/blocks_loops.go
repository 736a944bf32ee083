package gen

import (
	"math"
	"slices"
	"strings"

	"github.com/AppKaki/blockly-ulisp/internal/workspace"
)

// loopTypes are the blocks break and continue may jump out of.
var loopTypes = []string{
	"controls_repeat",
	"controls_repeat_ext",
	"controls_forEach",
	"controls_for",
	"controls_whileUntil",
}

func init() {
	RegisterGenerator(BlockGenerator{Type: "controls_repeat_ext", Emit: controlsRepeat})
	DefaultRegistry.Alias("controls_repeat", "controls_repeat_ext")
	RegisterGenerator(BlockGenerator{Type: "controls_whileUntil", Emit: controlsWhileUntil})
	RegisterGenerator(BlockGenerator{Type: "controls_for", Emit: controlsFor})
	RegisterGenerator(BlockGenerator{Type: "controls_forEach", Emit: controlsForEach})
	RegisterGenerator(BlockGenerator{Type: "controls_flow_statements", Emit: controlsFlow, SuppressPrefixSuffix: true})
}

func controlsRepeat(c *Context, b *workspace.Block) Code {
	var repeats string
	if b.HasField("TIMES") {
		repeats = FormatNumber(ParseNumber(b.FieldValue("TIMES")))
	} else {
		repeats = c.ValueOr(b, "TIMES", OrderAssignment, "0")
	}
	branch := c.AddLoopTrap(c.StatementToCode(b, "DO"), b)

	var sb strings.Builder
	loopVar := c.DistinctVariable("count")
	endVar := repeats
	if !isWord(repeats) && !IsNumber(repeats) {
		endVar = c.DistinctVariable("repeat_end")
		sb.WriteString("var " + endVar + " = " + repeats + ";\n")
	}
	sb.WriteString("for (int " + loopVar + " = 0; " + loopVar + " < " + endVar + "; " + loopVar + "++) {\n")
	sb.WriteString(branch + "}\n")
	return Stmt(sb.String())
}

func controlsWhileUntil(c *Context, b *workspace.Block) Code {
	until := b.FieldValue("MODE") == "UNTIL"
	order := OrderNone
	if until {
		order = OrderUnaryPrefix
	}
	cond := c.ValueOr(b, "BOOL", order, "false")
	branch := c.AddLoopTrap(c.StatementToCode(b, "DO"), b)
	if until {
		cond = "!" + cond
	}
	return Stmt("while (" + cond + ") {\n" + branch + "}\n")
}

func controlsFor(c *Context, b *workspace.Block) Code {
	v := c.VariableName(b.FieldValue("VAR"))
	from := c.ValueOr(b, "FROM", OrderAssignment, "0")
	to := c.ValueOr(b, "TO", OrderAssignment, "0")
	by := c.ValueOr(b, "BY", OrderAssignment, "1")
	branch := c.AddLoopTrap(c.StatementToCode(b, "DO"), b)

	if IsNumber(from) && IsNumber(to) && IsNumber(by) {
		up := ParseNumber(from) <= ParseNumber(to)
		var sb strings.Builder
		sb.WriteString("for (" + v + " = " + from + "; " + v)
		if up {
			sb.WriteString(" <= ")
		} else {
			sb.WriteString(" >= ")
		}
		sb.WriteString(to + "; " + v)
		step := math.Abs(ParseNumber(by))
		switch {
		case step == 1 && up:
			sb.WriteString("++")
		case step == 1:
			sb.WriteString("--")
		case up:
			sb.WriteString(" += " + FormatNumber(step))
		default:
			sb.WriteString(" -= " + FormatNumber(step))
		}
		sb.WriteString(") {\n" + branch + "}\n")
		return Stmt(sb.String())
	}

	// Bounds are evaluated once, and the direction is fixed before the
	// first iteration.
	var sb strings.Builder
	startVar := from
	if !isWord(from) && !IsNumber(from) {
		startVar = c.DistinctVariable(v + "_start")
		sb.WriteString("var " + startVar + " = " + from + ";\n")
	}
	endVar := to
	if !isWord(to) && !IsNumber(to) {
		endVar = c.DistinctVariable(v + "_end")
		sb.WriteString("var " + endVar + " = " + to + ";\n")
	}
	incVar := c.DistinctVariable(v + "_inc")
	sb.WriteString("num " + incVar + " = ")
	if IsNumber(by) {
		sb.WriteString(FormatNumber(math.Abs(ParseNumber(by))) + ";\n")
	} else {
		sb.WriteString("(" + by + ").abs();\n")
	}
	sb.WriteString("if (" + startVar + " > " + endVar + ") {\n")
	sb.WriteString(c.opts.Indent + incVar + " = -" + incVar + ";\n")
	sb.WriteString("}\n")
	sb.WriteString("for (" + v + " = " + startVar + "; " +
		incVar + " >= 0 ? " + v + " <= " + endVar + " : " + v + " >= " + endVar + "; " +
		v + " += " + incVar + ") {\n" + branch + "}\n")
	return Stmt(sb.String())
}

func controlsForEach(c *Context, b *workspace.Block) Code {
	v := c.VariableName(b.FieldValue("VAR"))
	list := c.ValueOr(b, "LIST", OrderAssignment, "[]")
	branch := c.AddLoopTrap(c.StatementToCode(b, "DO"), b)
	return Stmt("for (var " + v + " in " + list + ") {\n" + branch + "}\n")
}

// controlsFlow runs the suffix before jumping, since nothing after break or
// continue executes. With a prefix set, the enclosing loop's prefix is
// repeated too.
func controlsFlow(c *Context, b *workspace.Block) Code {
	var xfix string
	if c.opts.StatementPrefix != "" {
		xfix += c.InjectID(c.opts.StatementPrefix, b)
	}
	if c.opts.StatementSuffix != "" {
		xfix += c.InjectID(c.opts.StatementSuffix, b)
	}
	if c.opts.StatementPrefix != "" {
		if loop := surroundLoop(b); loop != nil {
			if g, ok := c.gen.registry.Get(loop.Type); ok && !g.SuppressPrefixSuffix {
				xfix += c.InjectID(c.opts.StatementPrefix, loop)
			}
		}
	}
	switch flow := b.FieldValue("FLOW"); flow {
	case "BREAK":
		return Stmt(xfix + "break;\n")
	case "CONTINUE":
		return Stmt(xfix + "continue;\n")
	default:
		return c.Failf(ErrUnhandledOption, b, "unknown flow statement %q", flow)
	}
}

// surroundLoop returns the innermost loop enclosing b, or nil.
func surroundLoop(b *workspace.Block) *workspace.Block {
	for p := b.SurroundParent(); p != nil; p = p.SurroundParent() {
		if slices.Contains(loopTypes, p.Type) {
			return p
		}
	}
	return nil
}
