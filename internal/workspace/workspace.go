package workspace

import (
	"errors"
	"fmt"
	"iter"
	"math"
	"sort"
)

// Variable is a user variable declared on the workspace.
type Variable struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name" validate:"required"`
	Type string `json:"type,omitempty"`
}

// Workspace is the whole block graph: top-level stacks plus the variable
// map.
type Workspace struct {
	Blocks             []*Block
	Variables          []Variable
	DeveloperVariables []string
}

// ErrBlockShared is returned by Link when a block is reachable twice.
var ErrBlockShared = errors.New("block reachable from more than one place")

// Link sets parent pointers. Loaders call it; hand-built workspaces must
// call it before generation.
func (w *Workspace) Link() error {
	seen := make(map[*Block]bool)
	var link func(parent, b *Block) error
	link = func(parent, b *Block) error {
		if b == nil {
			return ErrNullBlock
		}
		if seen[b] {
			return fmt.Errorf("%w: %s (%s)", ErrBlockShared, b.ID, b.Type)
		}
		seen[b] = true
		b.parent = parent
		for _, in := range b.Inputs {
			for _, c := range []*Block{in.Block, in.Shadow} {
				if c == nil {
					continue
				}
				if err := link(b, c); err != nil {
					return err
				}
			}
		}
		if b.Next != nil {
			return link(b, b.Next)
		}
		return nil
	}
	for i, top := range w.Blocks {
		if top == nil {
			return fmt.Errorf("top block %d: %w", i, ErrNullBlock)
		}
		if err := link(nil, top); err != nil {
			return err
		}
	}
	return nil
}

// sin(3°): top blocks are ordered along a slightly tilted reading line.
var readingSlope = math.Sin(3 * math.Pi / 180)

// TopBlocks returns the top-level blocks, optionally ordered by position.
func (w *Workspace) TopBlocks(ordered bool) []*Block {
	out := make([]*Block, len(w.Blocks))
	copy(out, w.Blocks)
	if ordered {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Y+readingSlope*out[i].X < out[j].Y+readingSlope*out[j].X
		})
	}
	return out
}

// AllBlocks yields every block, stack by stack, pre-order.
func (w *Workspace) AllBlocks() iter.Seq[*Block] {
	return func(yield func(*Block) bool) {
		for _, top := range w.Blocks {
			if !top.walk(yield) {
				return
			}
		}
	}
}

// VariableByID looks up a declared variable.
func (w *Workspace) VariableByID(id string) (Variable, bool) {
	for _, v := range w.Variables {
		if v.ID == id {
			return v, true
		}
	}
	return Variable{}, false
}

// VariableName resolves a variable id to its name.
func (w *Workspace) VariableName(id string) (string, bool) {
	v, ok := w.VariableByID(id)
	if !ok {
		return "", false
	}
	return v.Name, true
}

// AllUsedVariables lists variables referenced by variable fields or
// procedure parameters, unique by id, in first-appearance order.
func (w *Workspace) AllUsedVariables() []Variable {
	var out []Variable
	seen := make(map[string]bool)
	add := func(v Variable) {
		if seen[v.ID] {
			return
		}
		seen[v.ID] = true
		out = append(out, v)
	}
	for b := range w.AllBlocks() {
		for _, f := range b.Fields {
			if f.VariableID == "" {
				continue
			}
			if v, ok := w.VariableByID(f.VariableID); ok {
				add(v)
			} else {
				add(Variable{ID: f.VariableID, Name: f.VariableID})
			}
		}
		if !isProcedureDefinition(b.Type) {
			continue
		}
		for _, p := range b.Extra.Params {
			id := p.ID
			if id == "" {
				id = p.Name
			}
			if v, ok := w.VariableByID(id); ok {
				add(v)
			} else {
				add(Variable{ID: id, Name: p.Name})
			}
		}
	}
	return out
}

func isProcedureDefinition(blockType string) bool {
	switch blockType {
	case "procedures_defreturn", "procedures_defnoreturn", "widgets_defreturn", "widgets_defnoreturn":
		return true
	}
	return false
}
