package workspace

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// MaxMutatorItems bounds itemCount and elseIfCount on mutator blocks.
const MaxMutatorItems = 1024

// Validate checks what the generator assumes about a workspace: typed
// blocks, unique variable ids, variable fields that point at declared
// variables, and a graph where no block is reachable twice.
func Validate(w *Workspace) error {
	var errs []error
	ids := make(map[string]bool, len(w.Variables))
	for i := range w.Variables {
		v := &w.Variables[i]
		if err := validate.Struct(v); err != nil {
			errs = append(errs, fmt.Errorf("variable %d: %w", i, err))
			continue
		}
		if ids[v.ID] {
			errs = append(errs, fmt.Errorf("variable id %q declared twice", v.ID))
		}
		ids[v.ID] = true
	}

	seen := make(map[*Block]bool)
	var visit func(b *Block)
	visit = func(b *Block) {
		if b == nil {
			errs = append(errs, ErrNullBlock)
			return
		}
		if seen[b] {
			errs = append(errs, fmt.Errorf("%w: %s (%s)", ErrBlockShared, b.ID, b.Type))
			return
		}
		seen[b] = true
		if b.Type == "" {
			errs = append(errs, fmt.Errorf("block %s has no type", b.ID))
		}
		if n := b.Extra.ItemCount; n < 0 || n > MaxMutatorItems {
			errs = append(errs, fmt.Errorf("block %s (%s): itemCount %d outside [0, %d]", b.ID, b.Type, n, MaxMutatorItems))
		}
		if n := b.Extra.ElseIfCount; n < 0 || n > MaxMutatorItems {
			errs = append(errs, fmt.Errorf("block %s (%s): elseIfCount %d outside [0, %d]", b.ID, b.Type, n, MaxMutatorItems))
		}
		params := make(map[string]bool)
		for p := b.SurroundParent(); p != nil; p = p.SurroundParent() {
			for _, param := range p.Extra.Params {
				params[param.ID] = true
				params[param.Name] = true
			}
		}
		for _, f := range b.Fields {
			if f.VariableID != "" && !ids[f.VariableID] && !params[f.VariableID] {
				errs = append(errs, fmt.Errorf("block %s (%s): field %s references unknown variable %q", b.ID, b.Type, f.Name, f.VariableID))
			}
		}
		for _, c := range b.children() {
			visit(c)
		}
	}
	for _, top := range w.Blocks {
		visit(top)
	}
	return errors.Join(errs...)
}
