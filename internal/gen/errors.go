package gen

import (
	"errors"
	"fmt"

	"github.com/AppKaki/blockly-ulisp/internal/workspace"
)

var (
	// ErrUnhandledDispatch means no generator knows the block type, or a
	// handler met a field combination it does not cover.
	ErrUnhandledDispatch = errors.New("unhandled block dispatch")
	// ErrUnhandledOption means a handler met an unknown dropdown option.
	ErrUnhandledOption = errors.New("unhandled option")
	// ErrBlockShape means a value block sits where a statement belongs or
	// the other way round.
	ErrBlockShape = errors.New("block shape mismatch")
)

// GenerationError ties a failure to the block that caused it.
type GenerationError struct {
	BlockID   string
	BlockType string
	Detail    string
	Err       error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%v: block %s (%s): %s", e.Err, e.BlockID, e.BlockType, e.Detail)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

func newGenerationError(kind error, b *workspace.Block, detail string) *GenerationError {
	e := &GenerationError{Detail: detail, Err: kind}
	if b != nil {
		e.BlockID, e.BlockType = b.ID, b.Type
	}
	return e
}
