package gen

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/AppKaki/blockly-ulisp/internal/workspace"
)

// blk builds a block from name/value field pairs.
func blk(typ string, fields ...string) *workspace.Block {
	b := &workspace.Block{ID: typ, Type: typ}
	for i := 0; i+1 < len(fields); i += 2 {
		b.Fields = append(b.Fields, workspace.Field{Name: fields[i], Value: fields[i+1]})
	}
	return b
}

func withID(b *workspace.Block, id string) *workspace.Block {
	b.ID = id
	return b
}

func withVar(b *workspace.Block, field, id string) *workspace.Block {
	b.Fields = append(b.Fields, workspace.Field{Name: field, VariableID: id})
	return b
}

func withValue(b *workspace.Block, name string, child *workspace.Block) *workspace.Block {
	b.Inputs = append(b.Inputs, &workspace.Input{Name: name, Kind: workspace.ValueInput, Block: child})
	return b
}

func withStatement(b *workspace.Block, name string, first *workspace.Block) *workspace.Block {
	b.Inputs = append(b.Inputs, &workspace.Input{Name: name, Kind: workspace.StatementInput, Block: first})
	return b
}

// chain links blocks through Next and returns the first.
func chain(blocks ...*workspace.Block) *workspace.Block {
	for i := 0; i+1 < len(blocks); i++ {
		blocks[i].Next = blocks[i+1]
	}
	return blocks[0]
}

func num(n string) *workspace.Block {
	return blk("math_number", "NUM", n)
}

func text(s string) *workspace.Block {
	return blk("text", "TEXT", s)
}

func get(id string) *workspace.Block {
	return withVar(blk("variables_get"), "VAR", id)
}

func arith(op string, a, b *workspace.Block) *workspace.Block {
	return withValue(withValue(blk("math_arithmetic", "OP", op), "A", a), "B", b)
}

func printBlock(msg *workspace.Block) *workspace.Block {
	return withValue(blk("text_print"), "TEXT", msg)
}

type fixture struct {
	ws   *workspace.Workspace
	opts Options
}

func newFixture(blocks ...*workspace.Block) *fixture {
	return &fixture{
		ws:   &workspace.Workspace{Blocks: blocks},
		opts: DefaultOptions(),
	}
}

func (f *fixture) variable(id, name string) *fixture {
	f.ws.Variables = append(f.ws.Variables, workspace.Variable{ID: id, Name: name})
	return f
}

func (f *fixture) zeroBased() *fixture {
	f.opts.OneBasedIndex = false
	return f
}

func (f *fixture) hooks(prefix, suffix, trap string) *fixture {
	f.opts.StatementPrefix = prefix
	f.opts.StatementSuffix = suffix
	f.opts.InfiniteLoopTrap = trap
	return f
}

func (f *fixture) generator(t *testing.T) *Generator {
	t.Helper()
	require.NoError(t, f.ws.Link())
	return NewGenerator(f.opts, zerolog.Nop())
}

// generate runs the whole workspace.
func (f *fixture) generate(t *testing.T) string {
	t.Helper()
	code, err := f.generator(t).WorkspaceToCode(f.ws)
	require.NoError(t, err)
	return code
}

// emit runs only the first top block, leaving the context for inspection.
func (f *fixture) emit(t *testing.T) (Code, *Context) {
	t.Helper()
	c := f.generator(t).NewContext(f.ws)
	code := c.BlockToCode(f.ws.Blocks[0])
	require.NoError(t, c.Err())
	return code, c
}

// expr runs the first top block and returns its text.
func (f *fixture) expr(t *testing.T) string {
	t.Helper()
	code, _ := f.emit(t)
	return code.Text
}

func definitionKeys(c *Context) []string {
	var keys []string
	for _, d := range c.Definitions() {
		keys = append(keys, d.Key)
	}
	return keys
}
