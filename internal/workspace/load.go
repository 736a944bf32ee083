package workspace

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
)

// Format names a workspace document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatHCL  Format = "hcl"
)

// LoadError reports a document that could not be turned into a workspace.
type LoadError struct {
	Source      string
	Diagnostics hcl.Diagnostics
	Err         error
}

func (e *LoadError) Error() string {
	if e.Diagnostics.HasErrors() {
		return fmt.Sprintf("load %s: %s", e.Source, e.Diagnostics.Error())
	}
	return fmt.Sprintf("load %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	if e.Diagnostics.HasErrors() {
		return e.Diagnostics
	}
	return nil
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".hcl":
		return FormatHCL, nil
	}
	return "", fmt.Errorf("unknown workspace format for %q (want .json or .hcl)", path)
}

// Load parses src in the given format. name labels diagnostics.
func Load(format Format, src []byte, name string) (*Workspace, error) {
	switch format {
	case FormatJSON, "":
		return LoadJSON(bytes.NewReader(src))
	case FormatHCL:
		return LoadHCL(src, name)
	}
	return nil, &LoadError{Source: name, Err: fmt.Errorf("unsupported format %q", format)}
}

// LoadFile reads a workspace file, dispatching on its extension.
func LoadFile(path string) (*Workspace, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read workspace: %w", err)
	}
	return Load(format, src, path)
}
