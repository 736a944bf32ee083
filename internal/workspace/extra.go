package workspace

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"strconv"
)

type jsonParam struct {
	Param
}

func (p *jsonParam) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		p.Name = name
		return nil
	}
	var obj struct {
		Name string `json:"name"`
		ID   string `json:"id"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("procedure parameter: %w", err)
	}
	p.Name, p.ID = obj.Name, obj.ID
	return nil
}

type jsonExtraState struct {
	ItemCount      *int        `json:"itemCount"`
	ElseIfCount    int         `json:"elseIfCount"`
	HasElse        *bool       `json:"hasElse"`
	Params         []jsonParam `json:"params"`
	Name           string      `json:"name"`
	HasReturnValue *bool       `json:"hasReturnValue"`
}

// decodeExtraState accepts the object form and the legacy XML mutation
// string form.
func decodeExtraState(raw json.RawMessage, blockType string) (ExtraState, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return defaultExtraState(blockType), nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ExtraState{}, err
		}
		return parseMutation(s, blockType)
	}
	var js jsonExtraState
	if err := json.Unmarshal(raw, &js); err != nil {
		return ExtraState{}, fmt.Errorf("extraState: %w", err)
	}
	es := defaultExtraState(blockType)
	if js.ItemCount != nil {
		es.ItemCount = *js.ItemCount
	}
	es.ElseIfCount = js.ElseIfCount
	if js.HasElse != nil {
		es.HasElse = *js.HasElse
	}
	es.Name = js.Name
	if js.HasReturnValue != nil {
		es.HasReturnValue = *js.HasReturnValue
	}
	for _, p := range js.Params {
		es.Params = append(es.Params, p.Param)
	}
	return es, nil
}

// defaultExtraState mirrors the editor defaults for blocks saved without
// mutator state.
func defaultExtraState(blockType string) ExtraState {
	var es ExtraState
	switch blockType {
	case "text_join", "lists_create_with":
		es.ItemCount = 2
	case "controls_ifelse":
		es.HasElse = true
	case "procedures_ifreturn", "widgets_ifreturn":
		es.HasReturnValue = true
	}
	return es
}

type xmlMutation struct {
	Items  *int   `xml:"items,attr"`
	ElseIf int    `xml:"elseif,attr"`
	Else   int    `xml:"else,attr"`
	Value  *int   `xml:"value,attr"`
	Name   string `xml:"name,attr"`
	Args   []struct {
		Name  string `xml:"name,attr"`
		VarID string `xml:"varid,attr"`
	} `xml:"arg"`
}

func parseMutation(s, blockType string) (ExtraState, error) {
	es := defaultExtraState(blockType)
	if s == "" {
		return es, nil
	}
	var m xmlMutation
	if err := xml.Unmarshal([]byte(s), &m); err != nil {
		return ExtraState{}, fmt.Errorf("mutation %s: %w", strconv.Quote(s), err)
	}
	if m.Items != nil {
		es.ItemCount = *m.Items
	}
	es.ElseIfCount = m.ElseIf
	es.HasElse = es.HasElse || m.Else == 1
	if m.Value != nil {
		es.HasReturnValue = *m.Value == 1
	}
	es.Name = m.Name
	for _, a := range m.Args {
		es.Params = append(es.Params, Param{Name: a.Name, ID: a.VarID})
	}
	return es, nil
}
