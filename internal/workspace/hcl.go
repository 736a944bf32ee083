package workspace

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

var rootSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "variable", LabelNames: []string{"id"}},
		{Type: "developer_variable", LabelNames: []string{"name"}},
		{Type: "block", LabelNames: []string{"type"}},
		{Type: "stack"},
	},
}

var variableSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "name"},
		{Name: "type"},
	},
}

var blockSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "id"},
		{Name: "x"},
		{Name: "y"},
		{Name: "disabled"},
		{Name: "comment"},
		{Name: "fields"},
		{Name: "vars"},
		{Name: "extra"},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "value", LabelNames: []string{"name"}},
		{Type: "statement", LabelNames: []string{"name"}},
	},
}

// valueSchema is shared by value inputs, statement inputs and stacks.
var valueSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "block", LabelNames: []string{"type"}},
		{Type: "shadow", LabelNames: []string{"type"}},
	},
}

// LoadHCL reads a workspace written in HCL:
//
//	variable "v1" { name = "count" }
//	block "variables_set" {
//	  vars = { VAR = "v1" }
//	  value "VALUE" {
//	    block "math_number" { fields = { NUM = 4 } }
//	  }
//	}
func LoadHCL(src []byte, filename string) (*Workspace, error) {
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, &LoadError{Source: filename, Diagnostics: diags}
	}
	content, diags := file.Body.Content(rootSchema)
	if diags.HasErrors() {
		return nil, &LoadError{Source: filename, Diagnostics: diags}
	}

	ws := &Workspace{}
	for _, hb := range content.Blocks {
		switch hb.Type {
		case "variable":
			v, d := decodeVariable(hb)
			diags = append(diags, d...)
			ws.Variables = append(ws.Variables, v)
		case "developer_variable":
			ws.DeveloperVariables = append(ws.DeveloperVariables, hb.Labels[0])
		}
	}
	for _, hb := range content.Blocks {
		switch hb.Type {
		case "block":
			b, d := ws.decodeBlock(hb)
			diags = append(diags, d...)
			if b != nil {
				ws.Blocks = append(ws.Blocks, b)
			}
		case "stack":
			first, _, d := ws.decodeSequence(hb.Body, "stack")
			diags = append(diags, d...)
			if first != nil {
				ws.Blocks = append(ws.Blocks, first)
			}
		}
	}
	if diags.HasErrors() {
		return nil, &LoadError{Source: filename, Diagnostics: diags}
	}
	if err := ws.Link(); err != nil {
		return nil, &LoadError{Source: filename, Err: err}
	}
	return ws, nil
}

func decodeVariable(hb *hcl.Block) (Variable, hcl.Diagnostics) {
	v := Variable{ID: hb.Labels[0], Name: hb.Labels[0]}
	content, diags := hb.Body.Content(variableSchema)
	if attr, ok := content.Attributes["name"]; ok {
		diags = append(diags, decodeAttr(attr, &v.Name)...)
	}
	if attr, ok := content.Attributes["type"]; ok {
		diags = append(diags, decodeAttr(attr, &v.Type)...)
	}
	return v, diags
}

func decodeAttr(attr *hcl.Attribute, target any) hcl.Diagnostics {
	val, diags := attr.Expr.Value(nil)
	if diags.HasErrors() {
		return diags
	}
	if err := gocty.FromCtyValue(val, target); err != nil {
		return append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  fmt.Sprintf("Invalid %q", attr.Name),
			Detail:   err.Error(),
			Subject:  attr.Expr.Range().Ptr(),
		})
	}
	return diags
}

func (w *Workspace) decodeBlock(hb *hcl.Block) (*Block, hcl.Diagnostics) {
	b := &Block{Type: hb.Labels[0]}
	content, diags := hb.Body.Content(blockSchema)
	if diags.HasErrors() {
		return nil, diags
	}
	attrs := content.Attributes
	if attr, ok := attrs["id"]; ok {
		diags = append(diags, decodeAttr(attr, &b.ID)...)
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if attr, ok := attrs["x"]; ok {
		diags = append(diags, decodeAttr(attr, &b.X)...)
	}
	if attr, ok := attrs["y"]; ok {
		diags = append(diags, decodeAttr(attr, &b.Y)...)
	}
	if attr, ok := attrs["disabled"]; ok {
		diags = append(diags, decodeAttr(attr, &b.Disabled)...)
	}
	if attr, ok := attrs["comment"]; ok {
		diags = append(diags, decodeAttr(attr, &b.Comment)...)
	}
	if attr, ok := attrs["fields"]; ok {
		items, d := objectItems(attr)
		diags = append(diags, d...)
		for _, it := range items {
			text, err := fieldText(it.value)
			if err != nil {
				diags = append(diags, attrError(attr, err))
				continue
			}
			b.Fields = append(b.Fields, Field{Name: it.key, Value: text})
		}
	}
	if attr, ok := attrs["vars"]; ok {
		items, d := objectItems(attr)
		diags = append(diags, d...)
		for _, it := range items {
			if it.value.Type() != cty.String {
				diags = append(diags, attrError(attr, fmt.Errorf("variable reference %s must be a string id", it.key)))
				continue
			}
			b.Fields = append(b.Fields, Field{Name: it.key, VariableID: it.value.AsString()})
		}
	}
	extraJSON := []byte("null")
	if attr, ok := attrs["extra"]; ok {
		val, d := attr.Expr.Value(nil)
		diags = append(diags, d...)
		if !d.HasErrors() {
			raw, err := ctyjson.Marshal(val, val.Type())
			if err != nil {
				diags = append(diags, attrError(attr, err))
			} else {
				extraJSON = raw
			}
		}
	}
	extra, err := decodeExtraState(extraJSON, b.Type)
	if err != nil {
		diags = append(diags, &hcl.Diagnostic{Severity: hcl.DiagError, Summary: "Invalid extra", Detail: err.Error(), Subject: hb.DefRange.Ptr()})
	}
	b.Extra = extra

	for _, child := range content.Blocks {
		switch child.Type {
		case "value":
			in := &Input{Name: child.Labels[0], Kind: ValueInput}
			first, shadow, d := w.decodeSequence(child.Body, "value")
			diags = append(diags, d...)
			if first != nil && first.Next != nil {
				diags = append(diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Too many blocks in value input",
					Detail:   fmt.Sprintf("Value input %q takes a single block.", in.Name),
					Subject:  child.DefRange.Ptr(),
				})
			}
			in.Block, in.Shadow = first, shadow
			b.Inputs = append(b.Inputs, in)
		case "statement":
			in := &Input{Name: child.Labels[0], Kind: StatementInput}
			first, _, d := w.decodeSequence(child.Body, "statement")
			diags = append(diags, d...)
			in.Block = first
			b.Inputs = append(b.Inputs, in)
		}
	}
	return b, diags
}

// decodeSequence decodes the block list of a value, statement or stack body
// into a Next chain.
func (w *Workspace) decodeSequence(body hcl.Body, where string) (first, shadow *Block, diags hcl.Diagnostics) {
	content, diags := body.Content(valueSchema)
	if diags.HasErrors() {
		return nil, nil, diags
	}
	var last *Block
	for _, hb := range content.Blocks {
		b, d := w.decodeBlock(hb)
		diags = append(diags, d...)
		if b == nil {
			continue
		}
		if hb.Type == "shadow" {
			if where != "value" {
				diags = append(diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Unexpected shadow block",
					Detail:   "Shadow blocks are only allowed in value inputs.",
					Subject:  hb.DefRange.Ptr(),
				})
			}
			shadow = b
			continue
		}
		if first == nil {
			first = b
		} else {
			last.Next = b
		}
		last = b
	}
	return first, shadow, diags
}

type objectItem struct {
	key   string
	value cty.Value
}

// objectItems evaluates an object attribute keeping source order, which
// plain cty objects do not.
func objectItems(attr *hcl.Attribute) ([]objectItem, hcl.Diagnostics) {
	if cons, ok := attr.Expr.(*hclsyntax.ObjectConsExpr); ok {
		var items []objectItem
		var diags hcl.Diagnostics
		for _, item := range cons.Items {
			k, d := item.KeyExpr.Value(nil)
			diags = append(diags, d...)
			v, d := item.ValueExpr.Value(nil)
			diags = append(diags, d...)
			if d.HasErrors() || k.Type() != cty.String {
				continue
			}
			items = append(items, objectItem{key: k.AsString(), value: v})
		}
		return items, diags
	}
	val, diags := attr.Expr.Value(nil)
	if diags.HasErrors() {
		return nil, diags
	}
	if !val.Type().IsObjectType() && !val.Type().IsMapType() {
		return nil, hcl.Diagnostics{attrError(attr, fmt.Errorf("expected an object"))}
	}
	var items []objectItem
	for it := val.ElementIterator(); it.Next(); {
		k, v := it.Element()
		items = append(items, objectItem{key: k.AsString(), value: v})
	}
	return items, diags
}

func fieldText(v cty.Value) (string, error) {
	if v.IsNull() {
		return "", nil
	}
	switch v.Type() {
	case cty.String:
		return v.AsString(), nil
	case cty.Number:
		return v.AsBigFloat().Text('f', -1), nil
	case cty.Bool:
		if v.True() {
			return "TRUE", nil
		}
		return "FALSE", nil
	}
	return "", fmt.Errorf("field value of type %s is not supported", v.Type().FriendlyName())
}

func attrError(attr *hcl.Attribute, err error) *hcl.Diagnostic {
	return &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  fmt.Sprintf("Invalid %q", attr.Name),
		Detail:   err.Error(),
		Subject:  attr.Expr.Range().Ptr(),
	}
}
