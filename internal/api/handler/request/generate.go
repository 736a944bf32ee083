package request

import (
	"encoding/json"
)

// Generate carries a workspace document inline. JSON documents travel in
// Workspace, HCL documents as text in Source.
type Generate struct {
	Format    string          `json:"format" validate:"omitempty,oneof=json hcl"`
	Workspace json.RawMessage `json:"workspace" validate:"required_unless=Format hcl"`
	Source    string          `json:"source" validate:"required_if=Format hcl"`
	// Options holds the option fields to change; the rest keep the server
	// defaults.
	Options json.RawMessage `json:"options"`
}

// Document returns the bytes matching Format.
func (r Generate) Document() []byte {
	if r.Format == "hcl" {
		return []byte(r.Source)
	}
	return r.Workspace
}

type CreateWorkspace struct {
	Name      string          `json:"name" validate:"required,max=255"`
	Format    string          `json:"format" validate:"omitempty,oneof=json hcl"`
	Workspace json.RawMessage `json:"workspace" validate:"required_unless=Format hcl"`
	Source    string          `json:"source" validate:"required_if=Format hcl"`
}

// GenerateStored changes some server options for a stored workspace.
type GenerateStored struct {
	Options json.RawMessage `json:"options"`
}
