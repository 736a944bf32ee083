package gen

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/mitchellh/go-wordwrap"
	"github.com/rs/zerolog"

	"github.com/AppKaki/blockly-ulisp/internal/gen/names"
	"github.com/AppKaki/blockly-ulisp/internal/workspace"
)

// FunctionNamePlaceholder stands for a helper's final name inside the lines
// handed to ProvideFunction.
const FunctionNamePlaceholder = "{leCUI8hutHZI4480Dc}"

// CodeKind tells what a handler produced.
type CodeKind int

const (
	KindStatement CodeKind = iota
	KindExpression
	// KindHandled means the handler stored its output as a definition.
	KindHandled
)

// Code is a handler result.
type Code struct {
	Text  string
	Order Order
	Kind  CodeKind
}

// Expr is an expression result.
func Expr(text string, order Order) Code {
	return Code{Text: text, Order: order, Kind: KindExpression}
}

// Stmt is a statement result; text ends with a newline.
func Stmt(text string) Code {
	return Code{Text: text, Kind: KindStatement}
}

// Handled is returned by handlers that registered a definition instead of
// producing inline code.
var Handled = Code{Kind: KindHandled}

// Context is the state of one generation run. It is not safe for concurrent
// use and must not be reused across runs.
type Context struct {
	gen       *Generator
	opts      Options
	workspace *workspace.Workspace
	names     *names.DB
	defs      *definitions
	helpers   map[string]string
	widgets   *definitions
	logger    zerolog.Logger
	err       error
}

// Err returns the first failure of the run.
func (c *Context) Err() error {
	return c.err
}

// Failf records a failure. Only the first one is kept; once failed, every
// emit call returns empty text.
func (c *Context) Failf(kind error, b *workspace.Block, format string, args ...any) Code {
	if c.err == nil {
		c.err = newGenerationError(kind, b, fmt.Sprintf(format, args...))
		ev := c.logger.Error().Err(c.err)
		if b != nil {
			ev = ev.Str("block_id", b.ID).Str("block_type", b.Type)
		}
		ev.Msg("Code generation failed")
	}
	return Code{}
}

// items emits the ADD0..ADDn-1 slots of a mutator block. A count outside
// the accepted range fails the run.
func (c *Context) items(b *workspace.Block, order Order, fallback string) ([]string, bool) {
	n := b.Extra.ItemCount
	if n < 0 || n > workspace.MaxMutatorItems {
		c.Failf(ErrBlockShape, b, "itemCount %d outside [0, %d]", n, workspace.MaxMutatorItems)
		return nil, false
	}
	elements := make([]string, n)
	for i := range elements {
		elements[i] = c.ValueOr(b, "ADD"+strconv.Itoa(i), order, fallback)
	}
	return elements, true
}

// Options returns the options of the run.
func (c *Context) Options() Options {
	return c.opts
}

// Workspace returns the graph being generated.
func (c *Context) Workspace() *workspace.Workspace {
	return c.workspace
}

// Names exposes the run's name database.
func (c *Context) Names() *names.DB {
	return c.names
}

// Definitions lists the definitions collected so far.
func (c *Context) Definitions() []Definition {
	return c.defs.list()
}

// Indent returns one indentation unit.
func (c *Context) Indent() string {
	return c.opts.Indent
}

// VariableName returns the identifier for a variable id or name.
func (c *Context) VariableName(idOrName string) string {
	return c.names.GetName(idOrName, names.Variable)
}

// ProcedureName returns the identifier for a user procedure.
func (c *Context) ProcedureName(name string) string {
	return c.names.GetName(name, names.Procedure)
}

// DistinctVariable returns a fresh temporary derived from seed.
func (c *Context) DistinctVariable(seed string) string {
	return c.names.GetDistinctName(seed, names.Variable)
}

// Define stores a definition under key. The first registration wins.
func (c *Context) Define(key, code string) {
	c.defs.put(key, code)
}

// RequireImport is Define for import lines.
func (c *Context) RequireImport(key, line string) {
	c.Define(key, line)
}

// ProvideDefinition returns the final name of the helper stored under key,
// calling generate for its lines only the first time. Later calls with the
// same key get the same name whatever function they pass. Lines use
// FunctionNamePlaceholder for the helper's own name and two-space indents.
func (c *Context) ProvideDefinition(key string, generate func() []string) string {
	if name, ok := c.helpers[key]; ok {
		return name
	}
	name := c.names.GetDistinctName(key, names.Procedure)
	c.helpers[key] = name
	slot := key
	if _, taken := c.defs.get(key); taken {
		// a plain definition already holds key
		slot = "helper:" + name
	}
	code := strings.ReplaceAll(strings.Join(generate(), "\n"), FunctionNamePlaceholder, name)
	c.defs.put(slot, indentPairs(code, c.opts.Indent))
	c.logger.Debug().Str("helper", key).Str("name", name).Msg("Helper function provided")
	return name
}

// ProvideFunction is ProvideDefinition for fixed lines.
func (c *Context) ProvideFunction(desiredName string, lines []string) string {
	return c.ProvideDefinition(desiredName, func() []string { return lines })
}

// RegisterWidget records the declaration of a named widget for the
// enclosing app block.
func (c *Context) RegisterWidget(name, code string) {
	c.widgets.put(name, code)
}

// resetWidgets starts a fresh widget collection and returns it.
func (c *Context) resetWidgets() *definitions {
	c.widgets = newDefinitions()
	return c.widgets
}

// InjectID fills the %1 placeholder of a hook template with the quoted
// block id.
func (c *Context) InjectID(template string, b *workspace.Block) string {
	return strings.ReplaceAll(template, "%1", "'"+b.ID+"'")
}

// BlockToCode emits a single block, ignoring its successors. Disabled blocks
// produce nothing.
func (c *Context) BlockToCode(b *workspace.Block) Code {
	if c.err != nil || b == nil || b.Disabled {
		return Code{}
	}
	g, ok := c.gen.registry.Get(b.Type)
	if !ok {
		return c.Failf(ErrUnhandledDispatch, b, "no generator for block type %q", b.Type)
	}
	code := g.Emit(c, b)
	if c.err != nil {
		return Code{}
	}
	switch code.Kind {
	case KindExpression:
		code.Text = c.scrub(b, g, code.Text)
		return code
	case KindStatement:
		text := code.Text
		if !g.SuppressPrefixSuffix {
			if c.opts.StatementPrefix != "" {
				text = c.InjectID(c.opts.StatementPrefix, b) + text
			}
			if c.opts.StatementSuffix != "" {
				text += c.InjectID(c.opts.StatementSuffix, b)
			}
		}
		return Stmt(c.scrub(b, g, text))
	}
	return Code{}
}

// EmitChain emits a statement block and every block after it.
func (c *Context) EmitChain(first *workspace.Block) string {
	var sb strings.Builder
	for b := range first.Chain() {
		code := c.BlockToCode(b)
		if c.err != nil {
			return ""
		}
		if code.Kind == KindExpression {
			c.Failf(ErrBlockShape, b, "value block used as a statement")
			return ""
		}
		sb.WriteString(code.Text)
	}
	return sb.String()
}

// ValueToCode emits the block plugged into the named value input, wrapped
// in parentheses when it binds more loosely than outer. A missing block
// yields "".
func (c *Context) ValueToCode(b *workspace.Block, name string, outer Order) string {
	target := b.InputTarget(name)
	if target == nil || c.err != nil {
		return ""
	}
	code := c.BlockToCode(target)
	if c.err != nil || (code.Kind == KindStatement && code.Text == "") {
		return ""
	}
	if code.Kind != KindExpression {
		c.Failf(ErrBlockShape, target, "statement block plugged into value input %s of %s", name, b.Type)
		return ""
	}
	if code.Text == "" {
		return ""
	}
	return WrapIfNeeded(code.Text, code.Order, outer)
}

// ValueOr is ValueToCode with a fallback for a missing or empty input.
func (c *Context) ValueOr(b *workspace.Block, name string, outer Order, fallback string) string {
	if code := c.ValueToCode(b, name, outer); code != "" {
		return code
	}
	return fallback
}

// StatementToCode emits the chain in the named statement input, indented
// one level.
func (c *Context) StatementToCode(b *workspace.Block, name string) string {
	target := b.InputTarget(name)
	if target == nil {
		return ""
	}
	code := c.EmitChain(target)
	if code == "" {
		return ""
	}
	return PrefixLines(code, c.opts.Indent)
}

// AddLoopTrap wraps a loop body with the loop trap and the statement hooks
// of the loop block itself.
func (c *Context) AddLoopTrap(branch string, b *workspace.Block) string {
	g, _ := c.gen.registry.Get(b.Type)
	if c.opts.InfiniteLoopTrap != "" {
		branch = PrefixLines(c.InjectID(c.opts.InfiniteLoopTrap, b), c.opts.Indent) + branch
	}
	if !g.SuppressPrefixSuffix {
		if c.opts.StatementSuffix != "" {
			branch = PrefixLines(c.InjectID(c.opts.StatementSuffix, b), c.opts.Indent) + branch
		}
		if c.opts.StatementPrefix != "" {
			branch += PrefixLines(c.InjectID(c.opts.StatementPrefix, b), c.opts.Indent)
		}
	}
	return branch
}

// Scrub prepends the comments of b and of its value inputs to code. Handlers
// that store their own output as a definition call it directly.
func (c *Context) Scrub(b *workspace.Block, code string) string {
	g, _ := c.gen.registry.Get(b.Type)
	return c.scrub(b, g, code)
}

func (c *Context) scrub(b *workspace.Block, g BlockGenerator, code string) string {
	if b.OutputConnected() {
		return code
	}
	var sb strings.Builder
	if b.Comment != "" {
		comment := wordwrap.WrapString(b.Comment, uint(c.opts.CommentWrap-3))
		prefix := "// "
		if g.ProcedureDefinition {
			prefix = "/// "
		}
		sb.WriteString(PrefixLines(comment+"\n", prefix))
	}
	for _, in := range b.Inputs {
		if in.Kind != workspace.ValueInput {
			continue
		}
		if child := in.Target(); child != nil {
			if nested := nestedComments(child); nested != "" {
				sb.WriteString(PrefixLines(nested, "// "))
			}
		}
	}
	return sb.String() + code
}

// nestedComments gathers the comments of b and everything below it, one per
// line, with a trailing newline when there are any.
func nestedComments(b *workspace.Block) string {
	var comments []string
	for d := range b.Descendants() {
		if d.Comment != "" {
			comments = append(comments, d.Comment)
		}
	}
	if len(comments) == 0 {
		return ""
	}
	return strings.Join(comments, "\n") + "\n"
}

// GetAdjusted emits the index in input atID shifted by delta, corrected for
// one-based indexing, optionally negated. Literal indices are folded.
func (c *Context) GetAdjusted(b *workspace.Block, atID string, delta int, negate bool, order Order) string {
	if c.opts.OneBasedIndex {
		delta--
	}
	fallback := "0"
	if c.opts.OneBasedIndex {
		fallback = "1"
	}
	var at string
	switch {
	case delta != 0:
		at = c.ValueOr(b, atID, OrderAdditive, fallback)
	case negate:
		at = c.ValueOr(b, atID, OrderUnaryPrefix, fallback)
	default:
		at = c.ValueOr(b, atID, order, fallback)
	}

	if IsNumber(at) {
		n := truncNumber(at) + float64(delta)
		if negate {
			n = -n
		}
		return FormatNumber(n)
	}

	inner := OrderAtomic
	if delta > 0 {
		at = fmt.Sprintf("%s + %d", at, delta)
		inner = OrderAdditive
	} else if delta < 0 {
		at = fmt.Sprintf("%s - %d", at, -delta)
		inner = OrderAdditive
	}
	if negate {
		if delta != 0 {
			at = "-(" + at + ")"
		} else {
			at = "-" + at
		}
		inner = OrderUnaryPrefix
	}
	if inner != OrderAtomic && order >= inner {
		at = "(" + at + ")"
	}
	return at
}

func truncNumber(s string) float64 {
	whole, _, _ := strings.Cut(strings.TrimSpace(s), ".")
	return ParseNumber(whole)
}

var (
	blankRuns      = regexp.MustCompile(`\n\n+`)
	leadingBlank   = regexp.MustCompile(`^\s+\n`)
	trailingBlank  = regexp.MustCompile(`\n\s+$`)
	trailingSpaces = regexp.MustCompile(`[ \t]+\n`)
)

// Finish wraps body in the program entry point and puts the collected
// definitions in front: imports, a blank line, the other definitions
// separated by blank lines, a blank line, the entry point.
func (c *Context) Finish(body string) string {
	if body != "" {
		body = PrefixLines(body, c.opts.Indent)
	}
	body = "main() {\n" + body + "}"

	imports, others := c.defs.split()
	all := strings.Join(imports, "\n") + "\n\n" + strings.Join(others, "\n\n")
	all = blankRuns.ReplaceAllString(all, "\n\n")
	all = strings.TrimRight(all, "\n") + "\n\n"
	return all + body
}

// workspaceToCode emits every top-level stack and assembles the program.
func (c *Context) workspaceToCode() string {
	var parts []string
	for _, top := range c.workspace.TopBlocks(true) {
		code := c.BlockToCode(top)
		if c.err != nil {
			return ""
		}
		line := code.Text
		if code.Kind == KindExpression {
			if line != "" {
				line = c.nakedValue(top, line)
			}
		} else {
			line += c.EmitChain(top.Next)
		}
		if c.err != nil {
			return ""
		}
		if line != "" {
			parts = append(parts, line)
		}
	}
	code := c.Finish(strings.Join(parts, "\n"))
	code = leadingBlank.ReplaceAllString(code, "")
	code = trailingBlank.ReplaceAllString(code, "\n")
	code = trailingSpaces.ReplaceAllString(code, "\n")
	return code
}

// nakedValue terminates a top-level expression so it is a legal statement.
func (c *Context) nakedValue(b *workspace.Block, line string) string {
	line += ";\n"
	g, _ := c.gen.registry.Get(b.Type)
	if g.SuppressPrefixSuffix {
		return line
	}
	if c.opts.StatementPrefix != "" {
		line = c.InjectID(c.opts.StatementPrefix, b) + line
	}
	if c.opts.StatementSuffix != "" {
		line += c.InjectID(c.opts.StatementSuffix, b)
	}
	return line
}
