package gen

import (
	"strings"

	"github.com/AppKaki/blockly-ulisp/internal/workspace"
)

func init() {
	RegisterGenerator(BlockGenerator{Type: "on_start", Emit: appOnStart})
	RegisterGenerator(BlockGenerator{Type: "app", Emit: appBuilder})
	RegisterGenerator(BlockGenerator{Type: "label", Emit: appLabel})
	RegisterGenerator(BlockGenerator{Type: "button", Emit: appButton})
}

func appOnStart(c *Context, b *workspace.Block) Code {
	in := c.opts.Indent
	body := c.StatementToCode(b, "STMTS")
	code := strings.Join([]string{
		"/// Will be run upon startup to launch the app",
		"#[infer_type]  //  Infer the missing types",
		"pub fn on_start() -> MynewtResult<()> {",
		PrefixLines(strings.Join([]string{
			`console::print("on_start\n");`,
			"//  Build a new window",
			"let main_window = WindowDesc::new(ui_builder);",
			"//  Create application state",
			"let state = State::default();",
		}, "\n"), in),
		body,
		PrefixLines(strings.Join([]string{
			"//  Launch the window with the application state",
			"AppLauncher::with_window(main_window)",
			in + ".use_simple_logger()",
			in + ".launch(state)",
			in + `.expect("launch failed");`,
			"//  Return success to `main()` function",
			"Ok(())",
		}, "\n"), in),
		"}",
		"",
	}, "\n")
	return Stmt(code)
}

// appBuilder emits the UI builder. Widgets plugged into it declare
// themselves through RegisterWidget while their slots are emitted, so the
// declarations are collected afresh for every app block.
func appBuilder(c *Context, b *workspace.Block) Code {
	widgets := c.resetWidgets()
	elements, ok := c.items(b, OrderNone, emptyText)
	if !ok {
		return Code{}
	}
	declared := make([]string, 0, len(widgets.entries))
	for _, w := range widgets.list() {
		declared = append(declared, w.Code)
	}

	code := strings.Join([]string{
		"/// Build the UI for the window",
		"fn ui_builder() -> impl Widget<State> {  //  `State` is the Application State",
		PrefixLines(strings.Join([]string{
			`console::print("Lisp UI builder\n"); console::flush();`,
			strings.Join(declared, "\n"),
			"",
			"//  Create a column",
			"let mut col = Column::new();",
			strings.Join(elements, "\n"),
			"//  Return the column containing the widgets",
			"col",
		}, "\n"), c.opts.Indent),
		"}",
	}, "\n")
	return Expr(code, OrderNone)
}

func appLabel(c *Context, b *workspace.Block) Code {
	name := b.FieldValue("NAME")
	in := c.opts.Indent
	c.RegisterWidget(name, strings.Join([]string{
		"//  Create a line of text",
		"let " + name + `_text = LocalizedString::new("hello-counter")`,
		in + `.with_arg("count", on_` + name + "_show);  //  Call `on_" + name + "_show` to get label text",
		"//  Create a label widget " + name,
		"let " + name + " = Label::new(" + name + "_text);",
	}, "\n"))

	code := strings.Join([]string{
		"//  Add the label widget to the column, centered with padding",
		"col.add_child(",
		in + "Align::centered(",
		in + in + "Padding::new(5.0, ",
		in + in + in + name,
		in + in + ")",
		in + "),",
		in + "1.0",
		");",
	}, "\n")
	return Expr(code, OrderNone)
}

func appButton(c *Context, b *workspace.Block) Code {
	name := b.FieldValue("NAME")
	in := c.opts.Indent
	c.RegisterWidget(name, strings.Join([]string{
		"//  Create a button widget " + name,
		"let " + name + ` = Button::new("increment", on_` + name + "_press);  //  Call `on_" + name + "_press` when pressed",
	}, "\n"))

	code := strings.Join([]string{
		"//  Add the button widget to the column, with padding",
		"col.add_child(",
		in + "Padding::new(5.0, ",
		in + in + name,
		in + "),",
		in + "1.0",
		");",
	}, "\n")
	return Expr(code, OrderNone)
}
