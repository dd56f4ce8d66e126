package types

import (
	"fmt"
)

type Position struct {
	Line     int
	Column   int
	Filename string
}

type Span struct {
	From Position
	To   Position
}

type TokenKind int

const (
	EOF TokenKind = iota
	ILLEGAL

	// punctuation
	LBRACE
	RBRACE
	LBRACKET
	RBRACKET
	LPAREN
	RPAREN
	PERIOD
	DOTDOT
	COMMA
	SEMICOLON
	COLON
	QUESTION

	// operators
	PLUS
	MINUS
	MUL
	DIV
	MOD
	XOR
	OR
	AND
	TILDE
	NOT
	ASSIGN
	EQ
	NE
	LT
	GT
	LE
	GE
	ANDAND
	OROR
	PLUSASSIGN
	MINUSASSIGN
	MULASSIGN
	DIVASSIGN
	MODASSIGN
	XORASSIGN
	ORASSIGN
	ANDASSIGN
	TILDEASSIGN

	// literals
	IDENT
	INT
	FLOAT
	STRING

	// keywords
	IMPORT
	INCLUDE
	PACKAGE
	FUNCTION
	CLASS
	INTERFACE
	ENUM
	STRUCT
	EXPAND
	VAR
	VAL
	GLOBAL
	STATIC
	RETURN
	IF
	ELSE
	FOR
	IN
	WHILE
	BREAK
	CONTINUE
	AS
	INSTANCEOF
	TRUE
	FALSE
	NULL
)

var kindNames = map[TokenKind]string{
	EOF:         "EOF",
	ILLEGAL:     "ILLEGAL",
	LBRACE:      "{",
	RBRACE:      "}",
	LBRACKET:    "[",
	RBRACKET:    "]",
	LPAREN:      "(",
	RPAREN:      ")",
	PERIOD:      ".",
	DOTDOT:      "..",
	COMMA:       ",",
	SEMICOLON:   ";",
	COLON:       ":",
	QUESTION:    "?",
	PLUS:        "+",
	MINUS:       "-",
	MUL:         "*",
	DIV:         "/",
	MOD:         "%",
	XOR:         "^",
	OR:          "|",
	AND:         "&",
	TILDE:       "~",
	NOT:         "!",
	ASSIGN:      "=",
	EQ:          "==",
	NE:          "!=",
	LT:          "<",
	GT:          ">",
	LE:          "<=",
	GE:          ">=",
	ANDAND:      "&&",
	OROR:        "||",
	PLUSASSIGN:  "+=",
	MINUSASSIGN: "-=",
	MULASSIGN:   "*=",
	DIVASSIGN:   "/=",
	MODASSIGN:   "%=",
	XORASSIGN:   "^=",
	ORASSIGN:    "|=",
	ANDASSIGN:   "&=",
	TILDEASSIGN: "~=",
	IDENT:       "IDENT",
	INT:         "INT",
	FLOAT:       "FLOAT",
	STRING:      "STRING",
	IMPORT:      "import",
	INCLUDE:     "include",
	PACKAGE:     "package",
	FUNCTION:    "function",
	CLASS:       "class",
	INTERFACE:   "interface",
	ENUM:        "enum",
	STRUCT:      "struct",
	EXPAND:      "expand",
	VAR:         "var",
	VAL:         "val",
	GLOBAL:      "global",
	STATIC:      "static",
	RETURN:      "return",
	IF:          "if",
	ELSE:        "else",
	FOR:         "for",
	IN:          "in",
	WHILE:       "while",
	BREAK:       "break",
	CONTINUE:    "continue",
	AS:          "as",
	INSTANCEOF:  "instanceof",
	TRUE:        "true",
	FALSE:       "false",
	NULL:        "null",
}

// Keywords maps reserved words to their token kinds.
var Keywords = map[string]TokenKind{}

func init() {
	for kind := IMPORT; kind <= NULL; kind++ {
		Keywords[kindNames[kind]] = kind
	}
}

func (t TokenKind) String() string {
	if name, ok := kindNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenKind(%d)", int(t))
}

func (p Position) String() string {
	if p.Filename == "" {
		p.Filename = "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
}

func (s Span) String() string {
	return fmt.Sprintf("%s-%d:%d", s.From, s.To.Line, s.To.Column)
}

// Through returns the span covering s up to the end of o.
func (s Span) Through(o Span) Span {
	return Span{s.From, o.To}
}

func SingleCharSpan(p Position) Span {
	return Span{p, p}
}

// Token is a lexed token. Value holds the identifier text, the unescaped
// string contents, the literal digits, or an error message for ILLEGAL.
type Token struct {
	Kind     TokenKind
	Value    string
	Location Span
}

func (t Token) String() string {
	switch t.Kind {
	case IDENT, INT, FLOAT:
		return fmt.Sprintf("%s(%s)", t.Kind, t.Value)
	case STRING:
		return fmt.Sprintf("%s(%q)", t.Kind, t.Value)
	case ILLEGAL:
		return fmt.Sprintf("%s(%s)", t.Kind, t.Value)
	}
	return t.Kind.String()
}
