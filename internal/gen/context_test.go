package gen

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AppKaki/blockly-ulisp/internal/gen/names"
	"github.com/AppKaki/blockly-ulisp/internal/workspace"
)

func setX(value *workspace.Block) *workspace.Block {
	return withValue(withVar(blk("variables_set"), "VAR", "vx"), "VALUE", value)
}

func TestGenerate_EmptyWorkspace(t *testing.T) {
	code := newFixture().generate(t)
	assert.Equal(t, "main() {\n}", code)
}

func TestGenerate_DeclaresVariables(t *testing.T) {
	f := newFixture(setX(num("0"))).variable("vx", "x").variable("unused", "y")
	f.ws.DeveloperVariables = []string{"trap"}

	assert.Equal(t, "var trap, x;\n\nmain() {\n    x = 0;\n}", f.generate(t))
}

func TestGenerate_ChainAndDisabledBlocks(t *testing.T) {
	skipped := printBlock(text("skipped"))
	skipped.Disabled = true
	loose := printBlock(text("loose"))
	loose.Disabled = true
	f := newFixture(
		chain(printBlock(text("a")), skipped, printBlock(text("b"))),
		loose,
	)
	assert.Equal(t, "main() {\n    print('a');\n    print('b');\n}", f.generate(t))
}

func TestGenerate_TopBlocksInReadingOrder(t *testing.T) {
	second := printBlock(text("second"))
	second.Y = 100
	first := printBlock(text("first"))
	first.Y = 10
	f := newFixture(second, first)

	assert.Equal(t, "main() {\n    print('first');\n\n    print('second');\n}", f.generate(t))
}

func TestGenerate_NakedValue(t *testing.T) {
	f := newFixture(withID(num("5"), "n"))
	assert.Equal(t, "main() {\n    5;\n}", f.generate(t))

	f = newFixture(withID(num("5"), "n")).hooks("P(%1);\n", "", "")
	assert.Equal(t, "main() {\n    P('n');\n    5;\n}", f.generate(t))
}

func TestGenerate_ImportsBeforeHelpers(t *testing.T) {
	f := newFixture(chain(
		printBlock(arith("POWER", num("2"), num("3"))),
		printBlock(withValue(blk("math_on_list", "OP", "SUM"), "LIST", blk("lists_create_empty"))),
	))
	want := "import 'lisp:math' as Math;\n\n" +
		"num math_sum(List<num> myList) {\n" +
		"    num sumVal = 0;\n" +
		"    myList.forEach((num entry) {sumVal += entry;});\n" +
		"    return sumVal;\n" +
		"}\n\n" +
		"main() {\n" +
		"    print(Math.pow(2, 3));\n" +
		"    print(math_sum([]));\n" +
		"}"
	assert.Equal(t, want, f.generate(t))
}

func TestGenerate_Result(t *testing.T) {
	f := newFixture(setX(num("1"))).variable("vx", "x")
	res, err := f.generator(t).Generate(f.ws)
	require.NoError(t, err)

	assert.Equal(t, "var x;\n\nmain() {\n    x = 1;\n}", res.Code)
	assert.Equal(t, []Definition{{Key: "variables", Code: "var x;"}}, res.Definitions)
	assert.Contains(t, res.Names, names.Entry{Category: names.Variable, Logical: "x", Text: "x"})
}

func TestGenerate_UnknownBlockType(t *testing.T) {
	f := newFixture(chain(printBlock(text("a")), withID(blk("no_such_block"), "bad")))
	res, err := f.generator(t).Generate(f.ws)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrUnhandledDispatch)

	var ge *GenerationError
	require.True(t, errors.As(err, &ge))
	assert.Equal(t, "bad", ge.BlockID)
	assert.Equal(t, "no_such_block", ge.BlockType)
}

func TestGenerate_FirstErrorSticks(t *testing.T) {
	f := newFixture(chain(
		printBlock(withValue(blk("logic_compare", "OP", "SIMILAR"), "A", num("1"))),
		withID(blk("no_such_block"), "later"),
	))
	_, err := f.generator(t).Generate(f.ws)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnhandledOption)

	var ge *GenerationError
	require.True(t, errors.As(err, &ge))
	assert.Equal(t, "logic_compare", ge.BlockType)
}

func TestGenerate_ShapeMismatch(t *testing.T) {
	loop := withStatement(blk("controls_whileUntil", "MODE", "WHILE"), "DO", num("1"))
	f := newFixture(loop)
	_, err := f.generator(t).Generate(f.ws)
	assert.ErrorIs(t, err, ErrBlockShape)

	f = newFixture(setX(printBlock(text("a")))).variable("vx", "x")
	_, err = f.generator(t).Generate(f.ws)
	assert.ErrorIs(t, err, ErrBlockShape)
}

func TestContext_StatementHooks(t *testing.T) {
	f := newFixture(withID(setX(num("0")), "s1")).variable("vx", "x").hooks("P(%1);\n", "S(%1);\n", "")
	assert.Equal(t, "P('s1');\nx = 0;\nS('s1');\n", f.expr(t))
}

func TestContext_LoopTrapAndHooks(t *testing.T) {
	loop := func() *workspace.Block {
		return withID(withValue(blk("controls_whileUntil", "MODE", "WHILE"), "BOOL", blk("logic_boolean", "BOOL", "TRUE")), "w")
	}

	f := newFixture(loop()).hooks("", "", "trap(%1);\n")
	assert.Equal(t, "while (true) {\n    trap('w');\n}\n", f.expr(t))

	f = newFixture(loop()).hooks("P(%1);\n", "S(%1);\n", "trap(%1);\n")
	want := "P('w');\n" +
		"while (true) {\n" +
		"    S('w');\n" +
		"    trap('w');\n" +
		"    P('w');\n" +
		"}\n" +
		"S('w');\n"
	assert.Equal(t, want, f.expr(t))
}

func TestContext_InjectIDKeepsDollar(t *testing.T) {
	f := newFixture(withID(printBlock(text("a")), "a$b")).hooks("hl(%1);\n", "", "")
	assert.Equal(t, "hl('a$b');\nprint('a');\n", f.expr(t))
}

func TestContext_Comments(t *testing.T) {
	set := setX(num("0"))
	set.Comment = "reset the counter"
	f := newFixture(set).variable("vx", "x")
	assert.Equal(t, "// reset the counter\nx = 0;\n", f.expr(t))

	zero := num("0")
	zero.Comment = "zero"
	f = newFixture(setX(zero)).variable("vx", "x")
	assert.Equal(t, "// zero\nx = 0;\n", f.expr(t))

	set = setX(num("0"))
	set.Comment = "one two three four five six"
	f = newFixture(set).variable("vx", "x")
	f.opts.CommentWrap = 20
	assert.Equal(t, "// one two three\n// four five six\nx = 0;\n", f.expr(t))
}

func TestContext_ValueOrDefaults(t *testing.T) {
	f := newFixture(blk("math_arithmetic", "OP", "ADD"))
	assert.Equal(t, "0 + 0", f.expr(t))

	f = newFixture(blk("text_print"))
	assert.Equal(t, "print('');\n", f.expr(t))
}

func TestContext_ShadowIsUsedWhenEmpty(t *testing.T) {
	p := blk("text_print")
	p.Inputs = []*workspace.Input{{Name: "TEXT", Kind: workspace.ValueInput, Shadow: text("shadow")}}
	assert.Equal(t, "print('shadow');\n", newFixture(p).expr(t))
}

func TestContext_ProvideDefinitionOnce(t *testing.T) {
	c := newFixture().generator(t).NewContext(&workspace.Workspace{})
	calls := 0
	gen := func() []string {
		calls++
		return []string{"void " + FunctionNamePlaceholder + "() {", "  work();", "}"}
	}
	first := c.ProvideDefinition("helper", gen)
	second := c.ProvideDefinition("helper", gen)

	assert.Equal(t, "helper", first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
	assert.Equal(t, []Definition{{Key: "helper", Code: "void helper() {\n    work();\n}"}}, c.Definitions())
}

func TestContext_ProvideDefinitionSharedKey(t *testing.T) {
	c := newFixture().generator(t).NewContext(&workspace.Workspace{})
	first := c.ProvideDefinition("helper", func() []string {
		return []string{"void " + FunctionNamePlaceholder + "() {}"}
	})
	second := c.ProvideDefinition("helper", func() []string {
		t.Fatal("second generator must not run")
		return nil
	})

	assert.Equal(t, first, second)
	assert.Equal(t, []Definition{{Key: "helper", Code: "void helper() {}"}}, c.Definitions())
}

func TestContext_ProvideDefinitionAfterPlainDefine(t *testing.T) {
	c := newFixture().generator(t).NewContext(&workspace.Workspace{})
	c.Define("helper", "// placeholder")
	name := c.ProvideFunction("helper", []string{"void " + FunctionNamePlaceholder + "() {}"})

	assert.Equal(t, "helper", name)
	assert.Equal(t, name, c.ProvideFunction("helper", nil))
	assert.Equal(t, []Definition{
		{Key: "helper", Code: "// placeholder"},
		{Key: "helper:helper", Code: "void helper() {}"},
	}, c.Definitions())
	assert.Equal(t, "helper2", c.ProcedureName("helper"), "helper name is claimed")
}

func TestGenerate_MutatorCountOutOfRange(t *testing.T) {
	for _, typ := range []string{"lists_create_with", "text_join", "coap", "app"} {
		for _, n := range []int{-1, workspace.MaxMutatorItems + 1} {
			f := newFixture(items(withID(blk(typ), "m"), n))
			var err error
			require.NotPanics(t, func() { _, err = f.generator(t).Generate(f.ws) }, "%s %d", typ, n)
			assert.ErrorIs(t, err, ErrBlockShape, "%s %d", typ, n)

			var ge *GenerationError
			require.True(t, errors.As(err, &ge))
			assert.Equal(t, "m", ge.BlockID)
		}
	}
}

func TestContext_HelperAvoidsUserProcedure(t *testing.T) {
	c := newFixture().generator(t).NewContext(&workspace.Workspace{})
	assert.Equal(t, "math_sum", c.ProcedureName("math_sum"))
	assert.Equal(t, "math_sum2", c.ProvideFunction("math_sum", []string{FunctionNamePlaceholder + "();"}))
}

func TestContext_DefineFirstWins(t *testing.T) {
	c := newFixture().generator(t).NewContext(&workspace.Workspace{})
	c.Define("k", "a")
	c.Define("k", "b")
	assert.Equal(t, []Definition{{Key: "k", Code: "a"}}, c.Definitions())
}

func TestContext_Finish(t *testing.T) {
	c := newFixture().generator(t).NewContext(&workspace.Workspace{})
	c.Define("z", "int z() => 1;\n\n\n")
	c.RequireImport("import_x", "import 'x';")
	c.Define("y", "int y() => 2;")

	want := "import 'x';\n\nint z() => 1;\n\nint y() => 2;\n\nmain() {\n    go();\n}"
	assert.Equal(t, want, c.Finish("go();\n"))
}

func TestContext_GetAdjusted(t *testing.T) {
	at := func(f *fixture, delta int, negate bool, order Order) string {
		t.Helper()
		c := f.generator(t).NewContext(f.ws)
		out := c.GetAdjusted(f.ws.Blocks[0], "AT", delta, negate, order)
		require.NoError(t, c.Err())
		return out
	}
	holder := func(index *workspace.Block) *fixture {
		b := blk("lists_getIndex")
		if index != nil {
			withValue(b, "AT", index)
		}
		return newFixture(b).variable("vi", "i")
	}

	assert.Equal(t, "2", at(holder(num("3")), 0, false, OrderNone))
	assert.Equal(t, "3", at(holder(num("3")).zeroBased(), 0, false, OrderNone))
	assert.Equal(t, "3", at(holder(num("3.9")), 1, false, OrderNone))
	assert.Equal(t, "-2", at(holder(num("3")), 0, true, OrderNone))
	assert.Equal(t, "0", at(holder(nil), 0, false, OrderNone))
	assert.Equal(t, "(i - 1)", at(holder(get("vi")), 0, false, OrderNone))
	assert.Equal(t, "i - 1", at(holder(get("vi")), 0, false, OrderMultiplicative.Tighter()))
	assert.Equal(t, "i", at(holder(get("vi")), 1, false, OrderAdditive))
	assert.Equal(t, "i + 2", at(holder(get("vi")).zeroBased(), 2, false, OrderAtomic))
	assert.Equal(t, "(-(i - 1))", at(holder(get("vi")), 0, true, OrderNone))
}

func TestGenerator_ConcurrentRuns(t *testing.T) {
	g := NewGenerator(DefaultOptions(), zerolog.Nop())
	done := make(chan string, 4)
	for range 4 {
		go func() {
			ws := &workspace.Workspace{Blocks: []*workspace.Block{printBlock(text("hi"))}}
			if err := ws.Link(); err != nil {
				done <- err.Error()
				return
			}
			code, err := g.WorkspaceToCode(ws)
			if err != nil {
				done <- err.Error()
				return
			}
			done <- code
		}()
	}
	for range 4 {
		assert.Equal(t, "main() {\n    print('hi');\n}", <-done)
	}
}
