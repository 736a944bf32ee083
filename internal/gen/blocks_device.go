package gen

import (
	"strings"

	"github.com/AppKaki/blockly-ulisp/internal/workspace"
)

func init() {
	RegisterGenerator(BlockGenerator{Type: "coap", Emit: deviceCoap})
	RegisterGenerator(BlockGenerator{Type: "field", Emit: deviceField})
	RegisterGenerator(BlockGenerator{Type: "forever", Emit: deviceForever})
	RegisterGenerator(BlockGenerator{Type: "wait", Emit: deviceWait})
	RegisterGenerator(BlockGenerator{Type: "digital_toggle_pin", Emit: deviceTogglePin})
	RegisterGenerator(BlockGenerator{Type: "digital_read_pin", Emit: deviceReadPin})
	RegisterGenerator(BlockGenerator{Type: "digital_write_pin", Emit: deviceWritePin})
}

// deviceCoap builds a CoAP JSON payload, one field per line.
func deviceCoap(c *Context, b *workspace.Block) Code {
	elements, ok := c.items(b, OrderNone, emptyText)
	if !ok {
		return Code{}
	}
	code := "coap!( @json {\n" + PrefixLines(strings.Join(elements, ",\n"), c.opts.Indent) + "\n})"
	return Expr(code, OrderUnaryPostfix)
}

func deviceField(c *Context, b *workspace.Block) Code {
	value := c.ValueToCode(b, "name", OrderAtomic)
	return Expr(`"`+b.FieldValue("NAME")+`": `+value, OrderNone)
}

// deviceForever runs its body in an endless uLisp loop. The body sits two
// levels deeper than the loop form.
func deviceForever(c *Context, b *workspace.Block) Code {
	body := c.StatementToCode(b, "STMTS")
	if body != "" {
		body = PrefixLines(PrefixLines(body, c.opts.Indent), c.opts.Indent)
	}
	return Stmt("( loop  \n" + body + " )\n")
}

// deviceWait pauses for DURATION seconds.
func deviceWait(c *Context, b *workspace.Block) Code {
	ms := ParseNumber(b.FieldValue("DURATION")) * 1000
	return Stmt("( delay " + FormatNumber(ms) + " )\n")
}

func deviceTogglePin(c *Context, b *workspace.Block) Code {
	pin := b.FieldValue("PIN")
	return Stmt("//  Toggle the GPIO pin\ngpio::toggle(" + pin + ") ? ;\n")
}

func deviceReadPin(c *Context, b *workspace.Block) Code {
	return Expr("gpio::read("+b.FieldValue("PIN")+")", OrderNone)
}

func deviceWritePin(c *Context, b *workspace.Block) Code {
	pin := b.FieldValue("PIN")
	return Stmt("( pinmode " + pin + " :output )\n( digitalwrite " + pin + " " + b.FieldValue("VALUE") + " )\n")
}
