package lexer

import (
	"github.com/pontaoski/zengo/errors"
	"github.com/pontaoski/zengo/types"
)

// Abort is the panic value used to abandon the construct being parsed after
// a syntax error has been reported. Parsers recover it at statement and
// declaration boundaries.
type Abort struct {
	Err error
}

// Stream is a token stream with unbounded lookahead over a Lexer.
type Stream struct {
	lexer    *Lexer
	log      errors.Logger
	buf      []types.Token
	last     types.Token
	consumed int
}

func NewStream(l *Lexer, log errors.Logger) *Stream {
	return &Stream{lexer: l, log: log}
}

func (s *Stream) Logger() errors.Logger {
	return s.log
}

// Err reports an I/O error hit by the underlying lexer.
func (s *Stream) Err() error {
	return s.lexer.Err()
}

func (s *Stream) fill(n int) {
	for len(s.buf) <= n {
		s.buf = append(s.buf, s.lexer.Lex())
	}
}

// Peek returns the next token without consuming it.
func (s *Stream) Peek() types.Token {
	return s.PeekN(0)
}

// PeekN returns the token n positions ahead of the next one.
func (s *Stream) PeekN(n int) types.Token {
	s.fill(n)
	return s.buf[n]
}

func (s *Stream) PeekIs(k ...types.TokenKind) bool {
	token := s.Peek()
	for _, kind := range k {
		if token.Kind == kind {
			return true
		}
	}

	return false
}

func (s *Stream) HasNext() bool {
	return !s.PeekIs(types.EOF)
}

// Next consumes the next token. EOF is never consumed.
func (s *Stream) Next() types.Token {
	tok := s.Peek()
	if tok.Kind == types.EOF {
		return tok
	}

	s.buf = s.buf[1:]
	s.last = tok
	s.consumed++
	return tok
}

// Last returns the most recently consumed token.
func (s *Stream) Last() types.Token {
	return s.last
}

// Offset counts the tokens consumed so far.
func (s *Stream) Offset() int {
	return s.consumed
}

// Optional consumes the next token only if it is of kind k.
func (s *Stream) Optional(k types.TokenKind) (types.Token, bool) {
	if s.PeekIs(k) {
		return s.Next(), true
	}
	return types.Token{}, false
}

// Required consumes a token of kind k, or reports a syntax error with the
// given message and abandons the current construct.
func (s *Stream) Required(k types.TokenKind, message string) types.Token {
	if s.PeekIs(k) {
		return s.Next()
	}

	tok := s.Peek()
	s.Fail(errors.ExpectedKindGotKind{
		Expected: k,
		Got:      tok,
		Message:  message,
		Location: tok.Location,
	})
	panic("unreachable")
}

// RequiredOneOf is Required for a set of kinds.
func (s *Stream) RequiredOneOf(k ...types.TokenKind) types.Token {
	if s.PeekIs(k...) {
		return s.Next()
	}

	tok := s.Peek()
	s.Fail(errors.ExpectedOneOfKindGotKind{
		Expected: k,
		Got:      tok,
		Location: tok.Location,
	})
	panic("unreachable")
}

// Fail reports err at the current token and abandons the current construct.
func (s *Stream) Fail(err error) {
	at := s.Peek().Location
	switch e := err.(type) {
	case errors.ExpectedKindGotKind:
		at = e.Location
	case errors.ExpectedOneOfKindGotKind:
		at = e.Location
	case errors.DuplicateField:
		at = e.Location
	}
	s.log.SyntaxError(at, err)
	panic(Abort{Err: err})
}

// IdentifierDotSequence reads a.b.c and returns its parts.
func (s *Stream) IdentifierDotSequence() []string {
	parts := []string{s.Required(types.IDENT, "identifier expected").Value}
	for s.PeekIs(types.PERIOD) && s.PeekN(1).Kind == types.IDENT {
		s.Next()
		parts = append(parts, s.Next().Value)
	}
	return parts
}
