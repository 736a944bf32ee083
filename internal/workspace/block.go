// Package workspace holds the block graph handed to the code generator and
// the loaders that build it from JSON and HCL documents.
package workspace

import (
	"iter"
	"strconv"
	"strings"
)

// InputKind tells value inputs from statement inputs.
type InputKind int

const (
	ValueInput InputKind = iota
	StatementInput
)

func (k InputKind) String() string {
	if k == StatementInput {
		return "statement"
	}
	return "value"
}

// Field is a named block field. VariableID is set for variable fields.
type Field struct {
	Name       string
	Value      string
	VariableID string
}

// Input is a named socket on a block.
type Input struct {
	Name   string
	Kind   InputKind
	Block  *Block
	Shadow *Block
}

// Target returns the connected block, falling back to the shadow.
func (in *Input) Target() *Block {
	if in == nil {
		return nil
	}
	if in.Block != nil {
		return in.Block
	}
	return in.Shadow
}

// Param is a procedure parameter.
type Param struct {
	Name string
	ID   string
}

// ExtraState carries mutator state: variadic item counts, else-if arms,
// procedure parameters.
type ExtraState struct {
	ItemCount      int
	ElseIfCount    int
	HasElse        bool
	Params         []Param
	Name           string
	HasReturnValue bool
}

// Block is one node of the graph. Blocks are read-only once linked.
type Block struct {
	ID       string
	Type     string
	X, Y     float64
	Disabled bool
	Comment  string
	Fields   []Field
	Inputs   []*Input
	Next     *Block
	Extra    ExtraState

	parent *Block
}

// Field returns the named field.
func (b *Block) Field(name string) (Field, bool) {
	for _, f := range b.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// HasField reports whether the block carries the named field.
func (b *Block) HasField(name string) bool {
	_, ok := b.Field(name)
	return ok
}

// FieldValue returns the field value, or the variable id for variable fields.
func (b *Block) FieldValue(name string) string {
	f, ok := b.Field(name)
	if !ok {
		return ""
	}
	if f.VariableID != "" {
		return f.VariableID
	}
	return f.Value
}

// Input returns the named input, or nil.
func (b *Block) Input(name string) *Input {
	for _, in := range b.Inputs {
		if in.Name == name {
			return in
		}
	}
	return nil
}

// InputTarget returns the block plugged into the named input, or nil.
func (b *Block) InputTarget(name string) *Block {
	return b.Input(name).Target()
}

// HasInput reports whether the named input exists, taking the mutator shape
// into account: IFn/DOn up to ElseIfCount, ELSE when HasElse, ADDn below
// ItemCount.
func (b *Block) HasInput(name string) bool {
	if b.Input(name) != nil {
		return true
	}
	switch {
	case name == "ELSE":
		return b.Extra.HasElse
	case name == "IF0" || name == "DO0":
		return true
	}
	for _, prefix := range []string{"IF", "DO"} {
		if n, ok := indexSuffix(name, prefix); ok {
			return n <= b.Extra.ElseIfCount
		}
	}
	if n, ok := indexSuffix(name, "ADD"); ok {
		return n < b.Extra.ItemCount
	}
	return false
}

func indexSuffix(name, prefix string) (int, bool) {
	rest, ok := strings.CutPrefix(name, prefix)
	if !ok || rest == "" {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// Parent returns the block this one hangs from: the previous statement or
// the block owning the input it is plugged into.
func (b *Block) Parent() *Block {
	return b.parent
}

// SurroundParent returns the nearest block that encloses this one, skipping
// previous statements in the same chain.
func (b *Block) SurroundParent() *Block {
	child := b
	for p := child.parent; p != nil; child, p = p, p.parent {
		if p.Next != child {
			return p
		}
	}
	return nil
}

// OutputConnected reports whether the block is plugged into a value input.
func (b *Block) OutputConnected() bool {
	p := b.parent
	if p == nil || p.Next == b {
		return false
	}
	for _, in := range p.Inputs {
		if in.Kind == ValueInput && in.Target() == b {
			return true
		}
	}
	return false
}

// Vars returns procedure parameter names.
func (b *Block) Vars() []string {
	out := make([]string, len(b.Extra.Params))
	for i, p := range b.Extra.Params {
		out[i] = p.Name
	}
	return out
}

// Chain yields the block and its successors along Next.
func (b *Block) Chain() iter.Seq[*Block] {
	return func(yield func(*Block) bool) {
		for cur := b; cur != nil; cur = cur.Next {
			if !yield(cur) {
				return
			}
		}
	}
}

// Descendants yields the block and everything below it, pre-order: inputs in
// order, then the next block.
func (b *Block) Descendants() iter.Seq[*Block] {
	return func(yield func(*Block) bool) {
		b.walk(yield)
	}
}

func (b *Block) walk(yield func(*Block) bool) bool {
	if b == nil {
		return true
	}
	if !yield(b) {
		return false
	}
	for _, in := range b.Inputs {
		if !in.Target().walk(yield) {
			return false
		}
	}
	return b.Next.walk(yield)
}

// children lists directly attached blocks: input targets, then next.
func (b *Block) children() []*Block {
	var out []*Block
	for _, in := range b.Inputs {
		if t := in.Target(); t != nil {
			out = append(out, t)
		}
	}
	if b.Next != nil {
		out = append(out, b.Next)
	}
	return out
}
