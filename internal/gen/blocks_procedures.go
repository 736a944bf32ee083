package gen

import (
	"strconv"
	"strings"

	"github.com/AppKaki/blockly-ulisp/internal/workspace"
)

func init() {
	RegisterGenerator(BlockGenerator{
		Type:                 "procedures_defreturn",
		Emit:                 procedureDefinition,
		SuppressPrefixSuffix: true,
		ProcedureDefinition:  true,
	})
	DefaultRegistry.Alias("procedures_defnoreturn", "procedures_defreturn")
	RegisterGenerator(BlockGenerator{Type: "procedures_callreturn", Emit: procedureCallReturn})
	RegisterGenerator(BlockGenerator{Type: "procedures_callnoreturn", Emit: procedureCallNoReturn})
	RegisterGenerator(BlockGenerator{Type: "procedures_ifreturn", Emit: procedureIfReturn, SuppressPrefixSuffix: true})

	RegisterGenerator(BlockGenerator{Type: "variables_get", Emit: variableGet})
	RegisterGenerator(BlockGenerator{Type: "variables_set", Emit: variableSet})
	DefaultRegistry.Alias("variables_get_dynamic", "variables_get")
	DefaultRegistry.Alias("variables_set_dynamic", "variables_set")
}

// procedureDefinition stores the function under "%<name>" so it cannot
// clash with a helper of the same name. The body is entered with the
// block's own hooks and the loop trap; the hooks run again before the
// return value is computed.
func procedureDefinition(c *Context, b *workspace.Block) Code {
	name := c.ProcedureName(b.FieldValue("NAME"))

	xfix1 := c.injectHooks(b)
	if xfix1 != "" {
		xfix1 = PrefixLines(xfix1, c.opts.Indent)
	}
	var loopTrap string
	if c.opts.InfiniteLoopTrap != "" {
		loopTrap = PrefixLines(c.InjectID(c.opts.InfiniteLoopTrap, b), c.opts.Indent)
	}
	branch := c.StatementToCode(b, "STACK")
	returnValue := c.ValueToCode(b, "RETURN", OrderNone)
	var xfix2 string
	if branch != "" && returnValue != "" {
		xfix2 = xfix1
	}
	returnType := "void"
	if returnValue != "" {
		returnValue = c.opts.Indent + "return " + returnValue + ";\n"
		returnType = "dynamic"
	}

	code := returnType + " " + name + "(" + strings.Join(c.paramNames(b), ", ") + ") {\n" +
		xfix1 + loopTrap + branch + xfix2 + returnValue + "}"
	c.Define("%"+name, c.Scrub(b, code))
	return Handled
}

// injectHooks returns the prefix then the suffix for b, both filled in.
func (c *Context) injectHooks(b *workspace.Block) string {
	var s string
	if c.opts.StatementPrefix != "" {
		s += c.InjectID(c.opts.StatementPrefix, b)
	}
	if c.opts.StatementSuffix != "" {
		s += c.InjectID(c.opts.StatementSuffix, b)
	}
	return s
}

func (c *Context) paramNames(b *workspace.Block) []string {
	vars := b.Vars()
	args := make([]string, len(vars))
	for i, v := range vars {
		args[i] = c.VariableName(v)
	}
	return args
}

func procedureCallReturn(c *Context, b *workspace.Block) Code {
	name := c.ProcedureName(b.FieldValue("NAME"))
	args := make([]string, len(b.Vars()))
	for i := range args {
		args[i] = c.ValueOr(b, "ARG"+strconv.Itoa(i), OrderNone, "null")
	}
	return Expr(name+"("+strings.Join(args, ", ")+")", OrderUnaryPostfix)
}

func procedureCallNoReturn(c *Context, b *workspace.Block) Code {
	return Stmt(procedureCallReturn(c, b).Text + ";\n")
}

// procedureIfReturn runs the suffix before returning, since nothing after
// the return executes.
func procedureIfReturn(c *Context, b *workspace.Block) Code {
	cond := c.ValueOr(b, "CONDITION", OrderNone, "false")
	code := "if (" + cond + ") {\n"
	if c.opts.StatementSuffix != "" {
		code += PrefixLines(c.InjectID(c.opts.StatementSuffix, b), c.opts.Indent)
	}
	if b.Extra.HasReturnValue {
		value := c.ValueOr(b, "VALUE", OrderNone, "null")
		code += c.opts.Indent + "return " + value + ";\n"
	} else {
		code += c.opts.Indent + "return;\n"
	}
	return Stmt(code + "}\n")
}

func variableGet(c *Context, b *workspace.Block) Code {
	return Expr(c.VariableName(b.FieldValue("VAR")), OrderAtomic)
}

func variableSet(c *Context, b *workspace.Block) Code {
	value := c.ValueOr(b, "VALUE", OrderAssignment, "0")
	return Stmt(c.VariableName(b.FieldValue("VAR")) + " = " + value + ";\n")
}
