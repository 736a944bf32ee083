package workspace

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

type jsonDocument struct {
	Blocks struct {
		LanguageVersion int          `json:"languageVersion"`
		Blocks          []*jsonBlock `json:"blocks"`
	} `json:"blocks"`
	Variables          []Variable `json:"variables"`
	DeveloperVariables []string   `json:"developerVariables"`
}

type jsonConnection struct {
	Block  *jsonBlock `json:"block"`
	Shadow *jsonBlock `json:"shadow"`
}

type jsonBlock struct {
	Type            string          `json:"type"`
	ID              string          `json:"id"`
	X               float64         `json:"x"`
	Y               float64         `json:"y"`
	Enabled         *bool           `json:"enabled"`
	DisabledReasons []string        `json:"disabledReasons"`
	Fields          json.RawMessage `json:"fields"`
	Inputs          json.RawMessage `json:"inputs"`
	Statements      json.RawMessage `json:"statements"`
	Next            *jsonConnection `json:"next"`
	ExtraState      json.RawMessage `json:"extraState"`
	Comment         string          `json:"comment"`
	Icons           struct {
		Comment *struct {
			Text string `json:"text"`
		} `json:"comment"`
	} `json:"icons"`
}

// ErrNullBlock marks a JSON null where the document must hold a block or
// a connection object.
var ErrNullBlock = errors.New("null block")

type member struct {
	Key   string
	Value json.RawMessage
}

// members decodes a JSON object keeping key order.
func members(raw json.RawMessage) ([]member, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}
	var out []member
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		var m member
		m.Key = tok.(string)
		if err := dec.Decode(&m.Value); err != nil {
			return nil, fmt.Errorf("%s: %w", m.Key, err)
		}
		out = append(out, m)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return out, nil
}

var statementInputName = regexp.MustCompile(`^(DO\d*|ELSE|STACK|STMTS)$`)

// DefaultInputKind classifies inputs of documents that do not say which
// inputs hold statements.
func DefaultInputKind(blockType, inputName string) InputKind {
	if statementInputName.MatchString(inputName) {
		return StatementInput
	}
	return ValueInput
}

// LoadJSON reads a workspace saved in the editor's JSON serialization.
func LoadJSON(r io.Reader) (*Workspace, error) {
	var doc jsonDocument
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, &LoadError{Source: "json", Err: err}
	}
	ws := &Workspace{
		Variables:          doc.Variables,
		DeveloperVariables: doc.DeveloperVariables,
	}
	for i, jb := range doc.Blocks.Blocks {
		if jb == nil {
			return nil, &LoadError{Source: "json", Err: fmt.Errorf("blocks.blocks[%d]: %w", i, ErrNullBlock)}
		}
		b, err := ws.fromJSON(jb)
		if err != nil {
			return nil, &LoadError{Source: "json", Err: err}
		}
		ws.Blocks = append(ws.Blocks, b)
	}
	if err := ws.Link(); err != nil {
		return nil, &LoadError{Source: "json", Err: err}
	}
	return ws, nil
}

// fromJSON converts one block and everything below it. A nil block is an
// empty connection.
func (w *Workspace) fromJSON(jb *jsonBlock) (*Block, error) {
	if jb == nil {
		return nil, nil
	}
	b := &Block{
		ID:       jb.ID,
		Type:     jb.Type,
		X:        jb.X,
		Y:        jb.Y,
		Disabled: (jb.Enabled != nil && !*jb.Enabled) || len(jb.DisabledReasons) > 0,
		Comment:  jb.Comment,
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if jb.Icons.Comment != nil {
		b.Comment = jb.Icons.Comment.Text
	}
	wrap := func(err error) error {
		return fmt.Errorf("block %s (%s): %w", b.ID, b.Type, err)
	}

	fields, err := members(jb.Fields)
	if err != nil {
		return nil, wrap(err)
	}
	for _, m := range fields {
		f, err := w.fieldFromJSON(m)
		if err != nil {
			return nil, wrap(err)
		}
		b.Fields = append(b.Fields, f)
	}

	if b.Extra, err = decodeExtraState(jb.ExtraState, jb.Type); err != nil {
		return nil, wrap(err)
	}

	add := func(raw json.RawMessage, kind func(string) InputKind) error {
		ins, err := members(raw)
		if err != nil {
			return err
		}
		for _, m := range ins {
			if string(bytes.TrimSpace(m.Value)) == "null" {
				return fmt.Errorf("input %s: %w", m.Key, ErrNullBlock)
			}
			var conn jsonConnection
			if err := json.Unmarshal(m.Value, &conn); err != nil {
				return fmt.Errorf("input %s: %w", m.Key, err)
			}
			in := &Input{Name: m.Key, Kind: kind(m.Key)}
			if in.Block, err = w.fromJSON(conn.Block); err != nil {
				return err
			}
			if in.Shadow, err = w.fromJSON(conn.Shadow); err != nil {
				return err
			}
			b.Inputs = append(b.Inputs, in)
		}
		return nil
	}
	classify := func(name string) InputKind { return DefaultInputKind(jb.Type, name) }
	if err := add(jb.Inputs, classify); err != nil {
		return nil, wrap(err)
	}
	if err := add(jb.Statements, func(string) InputKind { return StatementInput }); err != nil {
		return nil, wrap(err)
	}

	if jb.Next != nil {
		if b.Next, err = w.fromJSON(jb.Next.Block); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (w *Workspace) fieldFromJSON(m member) (Field, error) {
	f := Field{Name: m.Key}
	raw := bytes.TrimSpace(m.Value)
	if len(raw) == 0 {
		return f, nil
	}
	switch raw[0] {
	case '"':
		err := json.Unmarshal(raw, &f.Value)
		return f, err
	case 't', 'f':
		var v bool
		if err := json.Unmarshal(raw, &v); err != nil {
			return f, err
		}
		f.Value = strings.ToUpper(fmt.Sprint(v))
		return f, nil
	case '{':
		var ref struct {
			ID   string `json:"id"`
			Name string `json:"name"`
			Type string `json:"type"`
		}
		if err := json.Unmarshal(raw, &ref); err != nil {
			return f, fmt.Errorf("field %s: %w", m.Key, err)
		}
		f.VariableID = w.resolveVariable(ref.ID, ref.Name, ref.Type)
		return f, nil
	case 'n':
		return f, nil
	default:
		// numbers keep their source spelling
		f.Value = string(raw)
		return f, nil
	}
}

// resolveVariable returns the id for a variable reference, declaring the
// variable when the document names one it never listed.
func (w *Workspace) resolveVariable(id, name, typ string) string {
	if id != "" {
		return id
	}
	for _, v := range w.Variables {
		if v.Name == name && v.Type == typ {
			return v.ID
		}
	}
	v := Variable{ID: uuid.NewString(), Name: name, Type: typ}
	w.Variables = append(w.Variables, v)
	return v.ID
}
