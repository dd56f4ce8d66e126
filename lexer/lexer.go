package lexer

import (
	"bufio"
	"io"
	"strings"
	"unicode"

	"github.com/pontaoski/zengo/types"
)

type Lexer struct {
	pos     types.Position
	prevPos types.Position
	reader  *bufio.Reader
	err     error
}

func NewLexer(reader io.Reader, filename string) *Lexer {
	return &Lexer{
		pos:    types.Position{Line: 1, Column: 0, Filename: filename},
		reader: bufio.NewReader(reader),
	}
}

// Err returns the first non-EOF read error, if any.
func (l *Lexer) Err() error {
	return l.err
}

func (l *Lexer) read() (rune, bool) {
	r, _, err := l.reader.ReadRune()
	if err != nil {
		if err != io.EOF && l.err == nil {
			l.err = err
		}
		return 0, false
	}

	l.prevPos = l.pos
	if r == '\n' {
		l.pos.Line++
		l.pos.Column = 0
	} else {
		l.pos.Column++
	}
	return r, true
}

// backup un-reads the last rune. Only one rune can be backed up.
func (l *Lexer) backup() {
	if err := l.reader.UnreadRune(); err != nil {
		panic(err)
	}

	l.pos = l.prevPos
}

func (l *Lexer) match(want rune) bool {
	r, ok := l.read()
	if !ok {
		return false
	}
	if r != want {
		l.backup()
		return false
	}
	return true
}

func (l *Lexer) peekByte(n int) (byte, bool) {
	b, err := l.reader.Peek(n + 1)
	if err != nil || len(b) <= n {
		return 0, false
	}
	return b[n], true
}

func firstChar(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func otherChar(r rune) bool {
	return firstChar(r) || unicode.IsDigit(r)
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isHexDigit(r rune) bool {
	return unicode.IsDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func (l *Lexer) token(kind types.TokenKind, value string, from types.Position) types.Token {
	return types.Token{Kind: kind, Value: value, Location: types.Span{From: from, To: l.pos}}
}

func (l *Lexer) lexIdent(first rune, from types.Position) types.Token {
	var lit strings.Builder
	lit.WriteRune(first)

	for {
		r, ok := l.read()
		if !ok {
			break
		}
		if !otherChar(r) {
			l.backup()
			break
		}
		lit.WriteRune(r)
	}

	if kind, ok := types.Keywords[lit.String()]; ok {
		return l.token(kind, lit.String(), from)
	}
	return l.token(types.IDENT, lit.String(), from)
}

func (l *Lexer) digits(lit *strings.Builder, accept func(rune) bool) {
	for {
		r, ok := l.read()
		if !ok {
			return
		}
		if !accept(r) {
			l.backup()
			return
		}
		lit.WriteRune(r)
	}
}

func (l *Lexer) lexNumber(first rune, from types.Position) types.Token {
	var lit strings.Builder
	lit.WriteRune(first)

	if first == '0' {
		if b, ok := l.peekByte(0); ok && (b == 'x' || b == 'X') {
			r, _ := l.read()
			lit.WriteRune(r)
			l.digits(&lit, isHexDigit)
			if lit.Len() == 2 {
				return l.token(types.ILLEGAL, "malformed hex literal", from)
			}
			if l.match('l') || l.match('L') {
				lit.WriteRune('L')
			}
			return l.token(types.INT, lit.String(), from)
		}
	}

	l.digits(&lit, unicode.IsDigit)
	kind := types.INT

	// a '.' is only a fraction when a digit follows, so 1..5 stays a range
	if b0, ok := l.peekByte(0); ok && b0 == '.' {
		if b1, ok := l.peekByte(1); ok && isDigit(b1) {
			r, _ := l.read()
			lit.WriteRune(r)
			l.digits(&lit, unicode.IsDigit)
			kind = types.FLOAT
		}
	}

	if b0, ok := l.peekByte(0); ok && (b0 == 'e' || b0 == 'E') {
		b1, ok1 := l.peekByte(1)
		b2, ok2 := l.peekByte(2)
		if (ok1 && isDigit(b1)) || (ok1 && ok2 && (b1 == '+' || b1 == '-') && isDigit(b2)) {
			r, _ := l.read()
			lit.WriteRune(r)
			if !isDigit(b1) {
				r, _ = l.read()
				lit.WriteRune(r)
			}
			l.digits(&lit, unicode.IsDigit)
			kind = types.FLOAT
		}
	}

	if b, ok := l.peekByte(0); ok {
		switch b {
		case 'l', 'L':
			if kind == types.INT {
				l.read()
				lit.WriteRune('L')
			}
		case 'f', 'F', 'd', 'D':
			r, _ := l.read()
			lit.WriteRune(unicode.ToLower(r))
			kind = types.FLOAT
		}
	}

	return l.token(kind, lit.String(), from)
}

func (l *Lexer) lexString(quote rune, from types.Position) types.Token {
	var lit strings.Builder

	for {
		r, ok := l.read()
		if !ok {
			return l.token(types.ILLEGAL, "unterminated string literal", from)
		}

		switch r {
		case quote:
			return l.token(types.STRING, lit.String(), from)
		case '\\':
			esc, ok := l.read()
			if !ok {
				return l.token(types.ILLEGAL, "unterminated string literal", from)
			}
			switch esc {
			case 'n':
				lit.WriteRune('\n')
			case 't':
				lit.WriteRune('\t')
			case 'r':
				lit.WriteRune('\r')
			case 'b':
				lit.WriteRune('\b')
			case 'f':
				lit.WriteRune('\f')
			case '\\', '"', '\'':
				lit.WriteRune(esc)
			case 'u':
				var code rune
				for i := 0; i < 4; i++ {
					h, ok := l.read()
					if !ok || !isHexDigit(h) {
						return l.token(types.ILLEGAL, "malformed unicode escape", from)
					}
					code = code*16 + hexValue(h)
				}
				lit.WriteRune(code)
			default:
				return l.token(types.ILLEGAL, "unknown escape sequence \\"+string(esc), from)
			}
		default:
			lit.WriteRune(r)
		}
	}
}

func hexValue(r rune) rune {
	switch {
	case r >= '0' && r <= '9':
		return r - '0'
	case r >= 'a' && r <= 'f':
		return r - 'a' + 10
	default:
		return r - 'A' + 10
	}
}

func (l *Lexer) skipLine() {
	for {
		r, ok := l.read()
		if !ok || r == '\n' {
			return
		}
	}
}

func (l *Lexer) skipBlockComment(from types.Position) (types.Token, bool) {
	for {
		r, ok := l.read()
		if !ok {
			return l.token(types.ILLEGAL, "unterminated block comment", from), false
		}
		if r == '*' && l.match('/') {
			return types.Token{}, true
		}
	}
}

// operator lexes a token that is kind alone and alt when followed by next.
func (l *Lexer) operator(from types.Position, kind types.TokenKind, pairs ...interface{}) types.Token {
	for i := 0; i+1 < len(pairs); i += 2 {
		if l.match(pairs[i].(rune)) {
			alt := pairs[i+1].(types.TokenKind)
			return l.token(alt, alt.String(), from)
		}
	}
	return l.token(kind, kind.String(), from)
}

// Lex returns the next token. At the end of input it keeps returning EOF.
func (l *Lexer) Lex() types.Token {
	for {
		r, ok := l.read()
		if !ok {
			return l.token(types.EOF, "", l.pos)
		}
		from := l.pos

		switch {
		case unicode.IsSpace(r):
			continue
		case r == '#':
			l.skipLine()
			continue
		case r == '/':
			if l.match('/') {
				l.skipLine()
				continue
			}
			if l.match('*') {
				if tok, ok := l.skipBlockComment(from); !ok {
					return tok
				}
				continue
			}
			return l.operator(from, types.DIV, '=', types.DIVASSIGN)
		case r == '"' || r == '\'':
			return l.lexString(r, from)
		case unicode.IsDigit(r):
			return l.lexNumber(r, from)
		case firstChar(r):
			return l.lexIdent(r, from)
		}

		switch r {
		case '{':
			return l.token(types.LBRACE, "{", from)
		case '}':
			return l.token(types.RBRACE, "}", from)
		case '[':
			return l.token(types.LBRACKET, "[", from)
		case ']':
			return l.token(types.RBRACKET, "]", from)
		case '(':
			return l.token(types.LPAREN, "(", from)
		case ')':
			return l.token(types.RPAREN, ")", from)
		case ',':
			return l.token(types.COMMA, ",", from)
		case ';':
			return l.token(types.SEMICOLON, ";", from)
		case ':':
			return l.token(types.COLON, ":", from)
		case '?':
			return l.token(types.QUESTION, "?", from)
		case '.':
			return l.operator(from, types.PERIOD, '.', types.DOTDOT)
		case '+':
			return l.operator(from, types.PLUS, '=', types.PLUSASSIGN)
		case '-':
			return l.operator(from, types.MINUS, '=', types.MINUSASSIGN)
		case '*':
			return l.operator(from, types.MUL, '=', types.MULASSIGN)
		case '%':
			return l.operator(from, types.MOD, '=', types.MODASSIGN)
		case '^':
			return l.operator(from, types.XOR, '=', types.XORASSIGN)
		case '~':
			return l.operator(from, types.TILDE, '=', types.TILDEASSIGN)
		case '|':
			return l.operator(from, types.OR, '|', types.OROR, '=', types.ORASSIGN)
		case '&':
			return l.operator(from, types.AND, '&', types.ANDAND, '=', types.ANDASSIGN)
		case '=':
			return l.operator(from, types.ASSIGN, '=', types.EQ)
		case '!':
			return l.operator(from, types.NOT, '=', types.NE)
		case '<':
			return l.operator(from, types.LT, '=', types.LE)
		case '>':
			return l.operator(from, types.GT, '=', types.GE)
		}

		return l.token(types.ILLEGAL, "unexpected character "+string(r), from)
	}
}

// LexAll lexes up to and excluding EOF.
func (l *Lexer) LexAll() (ret []types.Token) {
	t := l.Lex()
	for t.Kind != types.EOF {
		ret = append(ret, t)
		t = l.Lex()
	}
	return
}
