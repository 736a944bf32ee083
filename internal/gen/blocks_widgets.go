package gen

import (
	"strconv"
	"strings"

	"github.com/AppKaki/blockly-ulisp/internal/workspace"
)

func init() {
	RegisterGenerator(BlockGenerator{
		Type:                 "widgets_defreturn",
		Emit:                 widgetCallback,
		SuppressPrefixSuffix: true,
		ProcedureDefinition:  true,
	})
	DefaultRegistry.Alias("widgets_defnoreturn", "widgets_defreturn")
	RegisterGenerator(BlockGenerator{Type: "widgets_callreturn", Emit: widgetCallReturn})
	RegisterGenerator(BlockGenerator{Type: "widgets_callnoreturn", Emit: widgetCallNoReturn})
	RegisterGenerator(BlockGenerator{Type: "widgets_ifreturn", Emit: widgetIfReturn})
}

// systemName turns the double underscore of a procedure name into a module
// path separator: sensor__func becomes sensor::func.
func systemName(name string) string {
	return strings.ReplaceAll(name, "__", "::")
}

// widgetCallback defines on_<widget>_show for labels (it has a return
// value) or on_<widget>_press for buttons. Names that resolve to a system
// function are not defined.
func widgetCallback(c *Context, b *workspace.Block) Code {
	widget := c.ProcedureName(b.FieldValue("NAME"))

	branch := c.StatementToCode(b, "STACK")
	if c.opts.StatementPrefix != "" {
		branch = PrefixLines(c.InjectID(c.opts.StatementPrefix, b), c.opts.Indent) + branch
	}
	if c.opts.InfiniteLoopTrap != "" {
		branch = c.InjectID(c.opts.InfiniteLoopTrap, b) + branch
	}

	returnValue := c.ValueToCode(b, "RETURN", OrderNone)
	event, resultType := "press", "()"
	desc := "/// Callback function that will be called when the button `" + widget + "` is pressed"
	if returnValue != "" {
		event, resultType = "show", "ArgValue"
		desc = "/// Callback function that will be called to create the formatted text for the label `" + widget + "`"
	} else {
		returnValue = "()"
	}

	name := systemName("on_" + widget + "_" + event)
	if strings.Contains(name, "::") {
		return Handled
	}
	args := make([]string, 0, len(b.Vars()))
	for _, v := range c.paramNames(b) {
		args = append(args, v+": _")
	}

	code := desc + "\n" +
		"#[infer_type]  //  Infer the missing types\n" +
		"fn " + name + "(" + strings.Join(args, ", ") + ") -> MynewtResult<" + resultType + "> {\n" +
		c.opts.Indent + `console::print("` + name + `\n");` + "\n" +
		branch +
		c.opts.Indent + "Ok(" + returnValue + ")\n" +
		"}"
	c.Define("%"+name, c.Scrub(b, code))
	return Handled
}

// widgetArgs emits the ARGn inputs of a call block.
func widgetArgs(c *Context, b *workspace.Block) []string {
	args := make([]string, len(b.Vars()))
	for i := range args {
		args[i] = c.ValueOr(b, "ARG"+strconv.Itoa(i), OrderNone, "null")
	}
	return args
}

func widgetCallReturn(c *Context, b *workspace.Block) Code {
	name := systemName(c.ProcedureName(b.FieldValue("NAME")))
	args := widgetArgs(c, b)
	// the listener callback is passed by name, not as a string
	if name == "sensor::new_sensor_listener" && len(args) > 2 {
		args[2] = strings.ReplaceAll(args[2], `"`, "")
	}
	code := name + "(" + strings.Join(args, ", ") + ") ? "
	if name == "sensor_network::get_device_id" {
		code = "&" + code
	}
	return Expr(code, OrderUnaryPostfix)
}

func widgetCallNoReturn(c *Context, b *workspace.Block) Code {
	name := systemName(c.ProcedureName(b.FieldValue("NAME")))
	return Stmt(name + "(" + strings.Join(widgetArgs(c, b), ", ") + ") ? ;\n")
}

func widgetIfReturn(c *Context, b *workspace.Block) Code {
	cond := c.ValueOr(b, "CONDITION", OrderNone, "false")
	code := "if " + cond + " {\n"
	if b.Extra.HasReturnValue {
		code += c.opts.Indent + "return " + c.ValueOr(b, "VALUE", OrderNone, "null") + ";\n"
	} else {
		code += c.opts.Indent + "return;\n"
	}
	return Stmt(code + "}\n")
}
