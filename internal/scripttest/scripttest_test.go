package scripttest

import (
	"testing"

	"github.com/nalgeon/be"
)

const doc = "# Cases\n\n" +
	"Some prose.\n\n" +
	"## Test: first\n\n" +
	"```zenscript\nval x = 1;\n```\n\n" +
	"```diagnostics\n1:5: could not resolve symbol y\n```\n\n" +
	"## Test: second\n\n" +
	"```zenscript\nprint(\"a\");\n```\n\n" +
	"```bytecode\nRETURN V\n```\n"

func TestExtract(t *testing.T) {
	cases, err := Extract([]byte(doc))
	be.Err(t, err, nil)
	be.Equal(t, len(cases), 2)

	be.Equal(t, cases[0].Name, "first")
	be.Equal(t, cases[0].Input, "val x = 1;")
	d, ok := cases[0].Assertion(Diagnostics)
	be.True(t, ok)
	be.Equal(t, d.Content, "1:5: could not resolve symbol y")

	_, ok = cases[0].Assertion(Bytecode)
	be.True(t, !ok)

	b, ok := cases[1].Assertion(Bytecode)
	be.True(t, ok)
	be.Equal(t, b.Content, "RETURN V")
}

func TestExtractRejectsMissingInput(t *testing.T) {
	_, err := Extract([]byte("## Test: empty\n\n```diagnostics\n```\n"))
	be.True(t, err != nil)
}

func TestExtractRejectsUnknownFence(t *testing.T) {
	_, err := Extract([]byte("## Test: odd\n\n```zenscript\nx;\n```\n\n```wat\n```\n"))
	be.True(t, err != nil)
}

func TestExtractRejectsStrayFence(t *testing.T) {
	_, err := Extract([]byte("```zenscript\nx;\n```\n"))
	be.True(t, err != nil)
}
