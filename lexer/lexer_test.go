package lexer

import (
	"strings"
	"testing"

	"github.com/nalgeon/be"
	"github.com/pontaoski/zengo/errors"
	"github.com/pontaoski/zengo/types"
)

func kinds(toks []types.Token) (ret []types.TokenKind) {
	for _, t := range toks {
		ret = append(ret, t.Kind)
	}
	return
}

func TestLexer(t *testing.T) {
	l := NewLexer(strings.NewReader("import a.b; if else val x as int"), "stdin")
	be.Equal(t, kinds(l.LexAll()), []types.TokenKind{
		types.IMPORT, types.IDENT, types.PERIOD, types.IDENT, types.SEMICOLON,
		types.IF, types.ELSE, types.VAL, types.IDENT, types.AS, types.IDENT,
	})
}

func TestOperators(t *testing.T) {
	tests := []struct {
		input string
		kind  types.TokenKind
	}{
		{"+", types.PLUS},
		{"+=", types.PLUSASSIGN},
		{"~", types.TILDE},
		{"~=", types.TILDEASSIGN},
		{"&&", types.ANDAND},
		{"&=", types.ANDASSIGN},
		{"&", types.AND},
		{"||", types.OROR},
		{"==", types.EQ},
		{"=", types.ASSIGN},
		{"!=", types.NE},
		{"!", types.NOT},
		{"<=", types.LE},
		{">", types.GT},
		{"..", types.DOTDOT},
		{".", types.PERIOD},
		{"/=", types.DIVASSIGN},
	}

	for _, tt := range tests {
		tok := NewLexer(strings.NewReader(tt.input), "op").Lex()
		be.Equal(t, tok.Kind, tt.kind)
	}
}

func TestNumbers(t *testing.T) {
	tests := []struct {
		input string
		kind  types.TokenKind
		value string
	}{
		{"12345", types.INT, "12345"},
		{"0x1F", types.INT, "0x1F"},
		{"10L", types.INT, "10L"},
		{"1.5", types.FLOAT, "1.5"},
		{"2e10", types.FLOAT, "2e10"},
		{"3f", types.FLOAT, "3f"},
		{"1.25D", types.FLOAT, "1.25d"},
	}

	for _, tt := range tests {
		tok := NewLexer(strings.NewReader(tt.input), "num").Lex()
		be.Equal(t, tok.Kind, tt.kind)
		be.Equal(t, tok.Value, tt.value)
	}
}

func TestRangeIsNotFloat(t *testing.T) {
	l := NewLexer(strings.NewReader("1..5"), "range")
	toks := l.LexAll()
	be.Equal(t, kinds(toks), []types.TokenKind{types.INT, types.DOTDOT, types.INT})
	be.Equal(t, toks[2].Value, "5")
}

func TestStrings(t *testing.T) {
	l := NewLexer(strings.NewReader(`"a\"b\n" 'single' "A"`), "str")
	toks := l.LexAll()
	be.Equal(t, len(toks), 3)
	be.Equal(t, toks[0].Value, "a\"b\n")
	be.Equal(t, toks[1].Value, "single")
	be.Equal(t, toks[2].Value, "A")
}

func TestUnterminatedString(t *testing.T) {
	tok := NewLexer(strings.NewReader(`"abc`), "str").Lex()
	be.Equal(t, tok.Kind, types.ILLEGAL)
}

func TestComments(t *testing.T) {
	l := NewLexer(strings.NewReader("a // one\n# two\n/* three\n */ b"), "c")
	toks := l.LexAll()
	be.Equal(t, kinds(toks), []types.TokenKind{types.IDENT, types.IDENT})
	be.Equal(t, toks[1].Location.From.Line, 4)
}

func TestPositions(t *testing.T) {
	l := NewLexer(strings.NewReader("val\n  foo"), "pos.zs")
	toks := l.LexAll()
	be.Equal(t, toks[0].Location.From, types.Position{Line: 1, Column: 1, Filename: "pos.zs"})
	be.Equal(t, toks[0].Location.To, types.Position{Line: 1, Column: 3, Filename: "pos.zs"})
	be.Equal(t, toks[1].Location.From, types.Position{Line: 2, Column: 3, Filename: "pos.zs"})
}

func TestPeekDoesNotConsume(t *testing.T) {
	s := NewStream(NewLexer(strings.NewReader("a b"), "peek"), errors.NewBag())
	first := s.Peek()
	be.Equal(t, s.Peek(), first)
	be.Equal(t, s.Next(), first)
	be.Equal(t, s.Peek().Value, "b")
}

func TestEOFIsSticky(t *testing.T) {
	s := NewStream(NewLexer(strings.NewReader(""), "eof"), errors.NewBag())
	be.Equal(t, s.Next().Kind, types.EOF)
	be.Equal(t, s.Next().Kind, types.EOF)
	be.Equal(t, s.HasNext(), false)
}

func TestOptional(t *testing.T) {
	s := NewStream(NewLexer(strings.NewReader("; x"), "opt"), errors.NewBag())
	_, ok := s.Optional(types.COMMA)
	be.Equal(t, ok, false)
	tok, ok := s.Optional(types.SEMICOLON)
	be.Equal(t, ok, true)
	be.Equal(t, tok.Kind, types.SEMICOLON)
}

func TestRequiredReportsAndAborts(t *testing.T) {
	log := errors.NewBag()
	s := NewStream(NewLexer(strings.NewReader("x"), "req"), log)

	func() {
		defer func() {
			r := recover()
			_, ok := r.(Abort)
			be.True(t, ok)
		}()
		s.Required(types.SEMICOLON, "; expected")
	}()

	be.Equal(t, log.Count(errors.SyntaxError), 1)
	be.Equal(t, s.Peek().Value, "x")
}
