package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/pontaoski/zengo/emit"
	"github.com/pontaoski/zengo/errors"
	"github.com/pontaoski/zengo/lexer"
	"github.com/pontaoski/zengo/parser"
	"github.com/pontaoski/zengo/types"
	"github.com/urfave/cli/v2"
)

const (
	historyFile = ".zenc_history"
	promptMain  = "zen> "
	promptCont  = "...> "
)

// session compiles each entry together with the entries accepted before it,
// so earlier declarations stay visible.
type session struct {
	mod     *module
	entries []string
}

func (s *session) source(entry string) string {
	return strings.Join(append(append([]string(nil), s.entries...), entry), "\n")
}

// eval compiles entry. It is accepted only when the whole session compiles
// without errors.
func (s *session) eval(entry string) (*emit.Module, *errors.Bag, error) {
	bag := errors.NewBag()
	unit := s.mod.newUnit(bag)

	file, err := parser.ParseString("<repl>", s.source(entry), parser.DirLoader{Root: s.mod.dir}, unit.Logger())
	if err != nil {
		return nil, bag, err
	}
	unit.Compile(file)
	if bag.HasErrors() {
		return nil, bag, nil
	}

	code := emit.NewModule()
	if err := unit.Emit(code); err != nil {
		return nil, bag, err
	}

	s.entries = append(s.entries, entry)
	return code, bag, nil
}

// incomplete reports whether src has unclosed braces, brackets or parens.
func incomplete(src string) bool {
	depth := 0
	for _, tok := range lexer.NewLexer(strings.NewReader(src), "<repl>").LexAll() {
		switch tok.Kind {
		case types.LBRACE, types.LBRACKET, types.LPAREN:
			depth++
		case types.RBRACE, types.RBRACKET, types.RPAREN:
			depth--
		}
	}
	return depth > 0
}

// lineReader is the part of a liner.State the session loop uses.
type lineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

func readEntry(ln lineReader) (string, bool) {
	var b strings.Builder

	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}

		line, err := ln.Prompt(prompt)
		if err == io.EOF {
			return "", false
		}
		if err != nil {
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		if !incomplete(b.String()) {
			return b.String(), true
		}
	}
}

func replCommand(c *cli.Context) error {
	mod, err := loadModule(".", c.StringSlice("force-import"))
	if err != nil {
		return err
	}
	s := &session{mod: mod}

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		ln.ReadHistory(f)
		f.Close()
	}

	defer saveHistory(ln, histPath)

	s.run(ln, os.Stdout)
	return nil
}

// run reads and evaluates entries until :quit or end of input. Accepted
// entries are added to the history.
func (s *session) run(ln lineReader, out io.Writer) {
	for {
		entry, ok := readEntry(ln)
		if !ok {
			fmt.Fprintln(out)
			return
		}

		switch strings.TrimSpace(entry) {
		case "":
			continue
		case ":quit":
			return
		case ":reset":
			s.entries = nil
			continue
		}

		code, bag, err := s.eval(entry)
		bag.WriteTo(out)
		if err != nil {
			fmt.Fprintln(out, err)
			continue
		}
		if code != nil {
			fmt.Fprint(out, code)
			ln.AppendHistory(strings.ReplaceAll(entry, "\n", " "))
		}
	}
}

type historyWriter interface {
	WriteHistory(w io.Writer) (int, error)
}

func saveHistory(ln historyWriter, path string) {
	if f, err := os.Create(path); err == nil {
		ln.WriteHistory(f)
		f.Close()
	}
}
