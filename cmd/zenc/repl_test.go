package main

import (
	"bytes"
	"io"
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nalgeon/be"
	"github.com/pontaoski/zengo/host"
)

func testModule(t *testing.T) *module {
	t.Helper()

	m := &host.Manifest{Package: "scripts.repl"}
	r, err := host.NewRegistry(m)
	be.Err(t, err, nil)
	return &module{dir: t.TempDir(), manifest: m, registry: r}
}

func TestSession(t *testing.T) {
	s := &session{mod: testModule(t)}

	code, bag, err := s.eval("val x = 1;")
	be.Err(t, err, nil)
	be.Equal(t, bag.ErrorCount(), 0)
	be.True(t, code != nil)

	code, bag, err = s.eval("print(y);")
	be.Err(t, err, nil)
	be.Equal(t, bag.ErrorCount(), 1)
	be.True(t, code == nil)
	be.Equal(t, len(s.entries), 1)

	code, _, err = s.eval(`print("x is " ~ x);`)
	be.Err(t, err, nil)
	be.True(t, strings.Contains(code.String(), "INVOKESTATIC zen/Globals.print(Lzen/String;)V"))
	be.Equal(t, len(s.entries), 2)
}

func TestIncomplete(t *testing.T) {
	be.True(t, incomplete("function f() {"))
	be.True(t, incomplete("val xs = [1,"))
	be.True(t, !incomplete("val a = 1;"))
	be.True(t, !incomplete("function f() {\n}"))
}

func TestUnitName(t *testing.T) {
	be.Equal(t, unitName("scripts.main"), "scripts/main")
}

type scriptedLines struct {
	lines   []string
	history []string
}

func (l *scriptedLines) Prompt(string) (string, error) {
	if len(l.lines) == 0 {
		return "", io.EOF
	}
	line := l.lines[0]
	l.lines = l.lines[1:]
	return line, nil
}

func (l *scriptedLines) AppendHistory(item string) {
	l.history = append(l.history, item)
}

func (l *scriptedLines) WriteHistory(w io.Writer) (int, error) {
	for _, h := range l.history {
		if _, err := io.WriteString(w, h+"\n"); err != nil {
			return 0, err
		}
	}
	return len(l.history), nil
}

func TestRunStopsAtQuit(t *testing.T) {
	s := &session{mod: testModule(t)}
	ln := &scriptedLines{lines: []string{
		"function f(a as int) as int {",
		"return a; }",
		"print(nope);",
		":quit",
		`print("after");`,
	}}

	var out bytes.Buffer
	s.run(ln, &out)

	be.Equal(t, ln.history, []string{"function f(a as int) as int { return a; }"})
	be.Equal(t, ln.lines, []string{`print("after");`})
	be.Equal(t, len(s.entries), 1)
	be.True(t, strings.Contains(out.String(), "could not resolve symbol nope"))
}

func TestRunReset(t *testing.T) {
	s := &session{mod: testModule(t)}
	ln := &scriptedLines{lines: []string{"val x = 1;", ":reset", "print(x);"}}

	var out bytes.Buffer
	s.run(ln, &out)

	be.Equal(t, len(s.entries), 0)
	be.Equal(t, ln.history, []string{"val x = 1;"})
}

func TestSaveHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), historyFile)
	saveHistory(&scriptedLines{history: []string{"val x = 1;"}}, path)

	data, err := ioutil.ReadFile(path)
	be.Err(t, err, nil)
	be.Equal(t, string(data), "val x = 1;\n")
}
