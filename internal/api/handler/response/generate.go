package response

import (
	"encoding/json"
	"time"

	"github.com/AppKaki/blockly-ulisp/internal/gen"
	"github.com/AppKaki/blockly-ulisp/internal/gen/names"
)

type Generate struct {
	Code        string           `json:"code"`
	Names       []names.Entry    `json:"names"`
	Definitions []gen.Definition `json:"definitions"`
	Digest      string           `json:"digest"`
	Cached      bool             `json:"cached"`
}

type Workspace struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Format    string          `json:"format"`
	Workspace json.RawMessage `json:"workspace,omitempty"`
	Source    string          `json:"source,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}
