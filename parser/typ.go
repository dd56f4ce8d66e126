package parser

import (
	"fmt"
	"strings"

	"github.com/pontaoski/zengo/errors"
	"github.com/pontaoski/zengo/lexer"
	"github.com/pontaoski/zengo/types"
)

func (p *Parser) parseType() TypeRef {
	tok := p.s.Peek()

	var t TypeRef
	switch tok.Kind {
	case types.IDENT:
		parts := p.s.IdentifierDotSequence()
		t = NamedType{Node: Node{p.span(tok.Location)}, Parts: parts}
	case types.FUNCTION:
		p.s.Next()
		f := FunctionType{}
		p.s.Required(types.LPAREN, "( expected")
		if !p.s.PeekIs(types.RPAREN) {
			for {
				f.Params = append(f.Params, p.parseType())
				if _, ok := p.s.Optional(types.COMMA); !ok {
					break
				}
			}
		}
		p.s.Required(types.RPAREN, ") expected")
		f.Returns = p.parseType()
		f.Pos = p.span(tok.Location)
		t = f
	default:
		p.s.Fail(errors.ExpectedKindGotKind{
			Expected: types.IDENT,
			Got:      tok,
			Message:  "type expected",
			Location: tok.Location,
		})
	}

	for p.s.PeekIs(types.LBRACKET) {
		p.s.Next()
		if _, ok := p.s.Optional(types.RBRACKET); ok {
			t = ArrayType{Node: Node{p.span(tok.Location)}, Element: t}
			continue
		}
		key := p.parseType()
		p.s.Required(types.RBRACKET, "] expected")
		t = MapType{Node: Node{p.span(tok.Location)}, Key: key, Value: t}
	}

	return t
}

// ParseTypeString parses a standalone type such as "int[string]". It is used
// for types written in host configuration.
func ParseTypeString(source string) (t TypeRef, err error) {
	log := errors.NewBag()
	p := &Parser{
		s:   lexer.NewStream(lexer.NewLexer(strings.NewReader(source), "<type>"), log),
		log: log,
	}

	if p.recoverable(func() {
		t = p.parseType()
		p.s.Required(types.EOF, "end of type expected")
	}) {
		return t, nil
	}

	diags := log.Diagnostics()
	return nil, fmt.Errorf("invalid type %q: %s", source, diags[0].Message)
}
