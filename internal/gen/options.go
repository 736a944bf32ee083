package gen

// Options tune the emitted text. The zero value is not useful; start from
// DefaultOptions.
type Options struct {
	// Indent is one nesting level.
	Indent string `json:"indent"`
	// OneBasedIndex makes list and text positions count from 1.
	OneBasedIndex bool `json:"oneBasedIndex"`
	// StatementPrefix and StatementSuffix are injected around every
	// statement. %1 is replaced by the quoted block id.
	StatementPrefix string `json:"statementPrefix,omitempty"`
	StatementSuffix string `json:"statementSuffix,omitempty"`
	// InfiniteLoopTrap is injected at the top of every loop body.
	InfiniteLoopTrap string `json:"infiniteLoopTrap,omitempty"`
	// CommentWrap is the column block comments are wrapped at.
	CommentWrap int `json:"commentWrap" validate:"omitempty,min=10"`
}

// DefaultOptions returns four-space indentation, one-based indexing and
// comments wrapped at 60 columns.
func DefaultOptions() Options {
	return Options{
		Indent:        "    ",
		OneBasedIndex: true,
		CommentWrap:   60,
	}
}

func (o Options) withDefaults() Options {
	if o.Indent == "" {
		o.Indent = "    "
	}
	if o.CommentWrap <= 3 {
		o.CommentWrap = 60
	}
	return o
}
