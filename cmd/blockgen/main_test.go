package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AppKaki/blockly-ulisp/internal/cli"
	"github.com/AppKaki/blockly-ulisp/internal/gen"
)

const greetJSON = `{
  "blocks": {
    "blocks": [
      {
        "type": "variables_set",
        "id": "s",
        "fields": {"VAR": {"id": "v1"}},
        "inputs": {"VALUE": {"block": {"type": "text", "id": "t", "fields": {"TEXT": "hi"}}}},
        "next": {
          "block": {
            "type": "text_print",
            "id": "p",
            "inputs": {"TEXT": {"block": {"type": "variables_get", "id": "g", "fields": {"VAR": {"id": "v1"}}}}}
          }
        }
      }
    ]
  },
  "variables": [{"name": "greeting", "id": "v1"}]
}`

func writeWorkspace(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRun_PrintsProgram(t *testing.T) {
	t.Chdir(t.TempDir())
	path := writeWorkspace(t, "greet.json", greetJSON)
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}

	require.NoError(t, run(out, errOut, []string{"-names", path}))

	want := "var greeting;\n\nmain() {\n    greeting = 'hi';\n    print(greeting);\n}\n"
	assert.Equal(t, want, out.String())
	assert.Contains(t, errOut.String(), "greeting")
}

func TestRun_WritesOutputFileWithFlags(t *testing.T) {
	t.Chdir(t.TempDir())
	path := writeWorkspace(t, "greet.json", greetJSON)
	target := filepath.Join(t.TempDir(), "greet.lisp")

	require.NoError(t, run(&bytes.Buffer{}, &bytes.Buffer{}, []string{"-o", target, "-indent", "  ", "-statement-prefix", "hl(%1);", path}))

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "var greeting;\n\nmain() {\n  hl('s');greeting = 'hi';\n  hl('p');print(greeting);\n}\n", string(got))
}

func TestRun_ShouldExit(t *testing.T) {
	out := &bytes.Buffer{}
	require.NoError(t, run(out, &bytes.Buffer{}, []string{"-h"}))
	assert.Contains(t, out.String(), "Usage:")
}

func TestRun_Errors(t *testing.T) {
	t.Chdir(t.TempDir())

	err := run(&bytes.Buffer{}, &bytes.Buffer{}, []string{"-env", "missing.env", "ws.json"})
	var exitErr *cli.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 2, exitErr.Code)

	err = run(&bytes.Buffer{}, &bytes.Buffer{}, []string{"workspace.txt"})
	assert.ErrorContains(t, err, "unknown workspace format")

	unknown := writeWorkspace(t, "bad.json", `{"blocks":{"blocks":[{"type":"no_such_block","id":"x"}]}}`)
	err = run(&bytes.Buffer{}, &bytes.Buffer{}, []string{unknown})
	assert.ErrorIs(t, err, gen.ErrUnhandledDispatch)
}
