// Package gen turns a block workspace into program text.
package gen

import (
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/AppKaki/blockly-ulisp/internal/gen/names"
	"github.com/AppKaki/blockly-ulisp/internal/workspace"
)

// Generator holds what stays fixed across runs: the handler registry, the
// reserved words and the options. It is safe for concurrent use; every run
// gets its own Context.
type Generator struct {
	registry *Registry
	reserved []string
	opts     Options
	logger   zerolog.Logger
}

// GeneratorOption customises a Generator.
type GeneratorOption func(*Generator)

// WithRegistry replaces the default registry.
func WithRegistry(r *Registry) GeneratorOption {
	return func(g *Generator) { g.registry = r }
}

// WithReservedWords adds reserved words on top of ReservedWords.
func WithReservedWords(words ...string) GeneratorOption {
	return func(g *Generator) { g.reserved = append(g.reserved, words...) }
}

// NewGenerator creates a generator. Pass zerolog.Nop() to silence it.
func NewGenerator(opts Options, logger zerolog.Logger, options ...GeneratorOption) *Generator {
	g := &Generator{
		registry: DefaultRegistry,
		reserved: append([]string(nil), ReservedWords...),
		opts:     opts.withDefaults(),
		logger:   logger,
	}
	for _, o := range options {
		o(g)
	}
	return g
}

// Options returns the generator's options.
func (g *Generator) Options() Options {
	return g.opts
}

// NewContext starts a run over ws: fresh names and definitions, and a
// declaration of every developer variable and every variable the blocks
// actually use.
func (g *Generator) NewContext(ws *workspace.Workspace) *Context {
	c := &Context{
		gen:       g,
		opts:      g.opts,
		workspace: ws,
		names:     names.New(g.reserved),
		defs:      newDefinitions(),
		helpers:   make(map[string]string),
		widgets:   newDefinitions(),
		logger:    g.logger,
	}
	c.names.SetVariableMap(ws)

	var declared []string
	for _, dv := range ws.DeveloperVariables {
		declared = append(declared, c.names.GetName(dv, names.DeveloperVariable))
	}
	for _, v := range ws.AllUsedVariables() {
		declared = append(declared, c.names.GetName(v.ID, names.Variable))
	}
	if len(declared) > 0 {
		c.Define("variables", "var "+strings.Join(declared, ", ")+";")
	}
	return c
}

// Result is the program text plus the names and definitions of the run.
type Result struct {
	Code        string        `json:"code"`
	Names       []names.Entry `json:"names"`
	Definitions []Definition  `json:"definitions"`
}

// Generate runs the whole workspace. It returns no partial output: on
// failure the result is nil and the error wraps one of the Err sentinels.
func (g *Generator) Generate(ws *workspace.Workspace) (*Result, error) {
	start := time.Now()
	c := g.NewContext(ws)
	g.logger.Debug().Int("top_blocks", len(ws.Blocks)).Msg("Generation started")

	code := c.workspaceToCode()
	if err := c.Err(); err != nil {
		return nil, err
	}
	res := &Result{
		Code:        code,
		Names:       c.names.Entries(),
		Definitions: c.defs.list(),
	}
	g.logger.Debug().
		Int("definitions", len(res.Definitions)).
		Int("names", len(res.Names)).
		Dur("took", time.Since(start)).
		Msg("Generation finished")
	return res, nil
}

// WorkspaceToCode returns just the program text.
func (g *Generator) WorkspaceToCode(ws *workspace.Workspace) (string, error) {
	res, err := g.Generate(ws)
	if err != nil {
		return "", err
	}
	return res.Code, nil
}
