package gen

import (
	"sort"

	"github.com/AppKaki/blockly-ulisp/internal/workspace"
)

// Handler turns one block into code.
type Handler func(c *Context, b *workspace.Block) Code

// BlockGenerator binds a handler to a block type.
type BlockGenerator struct {
	Type string
	Emit Handler
	// SuppressPrefixSuffix stops the automatic statement hooks; the handler
	// places them itself.
	SuppressPrefixSuffix bool
	// ProcedureDefinition marks blocks whose comment is a doc comment.
	ProcedureDefinition bool
}

// Registry holds all registered generators
type Registry struct {
	generators map[string]BlockGenerator
}

// NewRegistry creates a new generator registry
func NewRegistry() *Registry {
	return &Registry{generators: make(map[string]BlockGenerator)}
}

// Register registers a generator for its block type
func (r *Registry) Register(g BlockGenerator) {
	r.generators[g.Type] = g
}

// Alias makes alias share the generator registered for target.
func (r *Registry) Alias(alias, target string) {
	g, ok := r.generators[target]
	if !ok {
		panic("gen: alias " + alias + " to unregistered block type " + target)
	}
	g.Type = alias
	r.generators[alias] = g
}

// Get returns the generator for a block type
func (r *Registry) Get(blockType string) (BlockGenerator, bool) {
	g, ok := r.generators[blockType]
	return g, ok
}

// Types lists registered block types, sorted.
func (r *Registry) Types() []string {
	out := make([]string, 0, len(r.generators))
	for t := range r.generators {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Clone copies the registry so callers can extend it without touching the
// original.
func (r *Registry) Clone() *Registry {
	c := NewRegistry()
	for t, g := range r.generators {
		c.generators[t] = g
	}
	return c
}

// DefaultRegistry is the default generator registry
var DefaultRegistry = NewRegistry()

// RegisterGenerator registers a generator with the default registry
func RegisterGenerator(g BlockGenerator) {
	DefaultRegistry.Register(g)
}
