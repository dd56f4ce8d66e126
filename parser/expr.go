package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pontaoski/zengo/errors"
	"github.com/pontaoski/zengo/types"
)

var binaryPrecedence = map[types.TokenKind]int{
	types.OROR:       1,
	types.ANDAND:     2,
	types.OR:         3,
	types.XOR:        4,
	types.AND:        5,
	types.EQ:         6,
	types.NE:         6,
	types.LT:         6,
	types.GT:         6,
	types.LE:         6,
	types.GE:         6,
	types.INSTANCEOF: 7,
	types.PLUS:       8,
	types.MINUS:      8,
	types.TILDE:      8,
	types.MUL:        9,
	types.DIV:        9,
	types.MOD:        9,
}

var assignOperators = map[types.TokenKind]string{
	types.ASSIGN:      "",
	types.PLUSASSIGN:  "+",
	types.MINUSASSIGN: "-",
	types.MULASSIGN:   "*",
	types.DIVASSIGN:   "/",
	types.MODASSIGN:   "%",
	types.XORASSIGN:   "^",
	types.ORASSIGN:    "|",
	types.ANDASSIGN:   "&",
	types.TILDEASSIGN: "~",
}

func (p *Parser) parseExpression() Expression {
	return p.parseAssign()
}

func (p *Parser) parseAssign() Expression {
	from := p.s.Peek().Location
	left := p.parseConditional()

	if op, ok := assignOperators[p.s.Peek().Kind]; ok {
		p.s.Next()
		value := p.parseAssign()
		return Assign{Node: Node{p.span(from)}, Op: op, Target: left, Value: value}
	}

	return left
}

func (p *Parser) parseConditional() Expression {
	from := p.s.Peek().Location
	cond := p.parseBinary(1)

	if _, ok := p.s.Optional(types.QUESTION); !ok {
		return cond
	}

	then := p.parseConditional()
	p.s.Required(types.COLON, ": expected")
	otherwise := p.parseConditional()

	return Conditional{Node: Node{p.span(from)}, Condition: cond, Then: then, Else: otherwise}
}

// parseBinary is precedence climbing over binaryPrecedence. All binary
// operators are left associative.
func (p *Parser) parseBinary(minPrec int) Expression {
	from := p.s.Peek().Location
	left := p.parseUnary()

	for {
		tok := p.s.Peek()
		prec, ok := binaryPrecedence[tok.Kind]
		if !ok || prec < minPrec {
			return left
		}
		p.s.Next()

		if tok.Kind == types.INSTANCEOF {
			t := p.parseType()
			left = InstanceOf{Node: Node{p.span(from)}, Value: left, Type: t}
			continue
		}

		right := p.parseBinary(prec + 1)
		left = Binary{Node: Node{p.span(from)}, Op: tok.Kind.String(), Left: left, Right: right}
	}
}

func (p *Parser) parseUnary() Expression {
	tok := p.s.Peek()

	switch tok.Kind {
	case types.NOT, types.MINUS:
		p.s.Next()
		operand := p.parseUnary()
		return Unary{Node: Node{p.span(tok.Location)}, Op: tok.Kind.String(), Operand: operand}
	}

	return p.parsePostfix()
}

func (p *Parser) parsePostfix() Expression {
	from := p.s.Peek().Location
	expr := p.parsePrimary()

	for {
		switch p.s.Peek().Kind {
		case types.PERIOD:
			p.s.Next()
			name := p.s.Required(types.IDENT, "member name expected")
			expr = Member{Node: Node{p.span(from)}, Value: expr, Name: name.Value}
		case types.LBRACKET:
			p.s.Next()
			index := p.parseExpression()
			p.s.Required(types.RBRACKET, "] expected")
			expr = Index{Node: Node{p.span(from)}, Value: expr, Index: index}
		case types.LPAREN:
			p.s.Next()
			var args []Expression
			if !p.s.PeekIs(types.RPAREN) {
				for {
					args = append(args, p.parseExpression())
					if _, ok := p.s.Optional(types.COMMA); !ok {
						break
					}
				}
			}
			p.s.Required(types.RPAREN, ") expected")
			expr = Call{Node: Node{p.span(from)}, Callee: expr, Arguments: args}
		case types.AS:
			p.s.Next()
			t := p.parseType()
			expr = Cast{Node: Node{p.span(from)}, Value: expr, Type: t}
		case types.DOTDOT:
			p.s.Next()
			to := p.parseUnary()
			expr = Range{Node: Node{p.span(from)}, From: expr, To: to}
		default:
			return expr
		}
	}
}

func (p *Parser) parsePrimary() Expression {
	tok := p.s.Peek()

	switch tok.Kind {
	case types.INT:
		p.s.Next()
		return p.intLiteral(tok)
	case types.FLOAT:
		p.s.Next()
		return p.floatLiteral(tok)
	case types.STRING:
		p.s.Next()
		return StringLiteral{Node: Node{tok.Location}, Value: tok.Value}
	case types.TRUE, types.FALSE:
		p.s.Next()
		return BoolLiteral{Node: Node{tok.Location}, Value: tok.Kind == types.TRUE}
	case types.NULL:
		p.s.Next()
		return NullLiteral{Node{tok.Location}}
	case types.IDENT:
		p.s.Next()
		return Variable{Node: Node{tok.Location}, Name: tok.Value}
	case types.LPAREN:
		p.s.Next()
		expr := p.parseExpression()
		p.s.Required(types.RPAREN, ") expected")
		return expr
	case types.LBRACKET:
		p.s.Next()
		var elements []Expression
		for !p.s.PeekIs(types.RBRACKET) {
			elements = append(elements, p.parseExpression())
			if _, ok := p.s.Optional(types.COMMA); !ok {
				break
			}
		}
		p.s.Required(types.RBRACKET, "] expected")
		return ArrayLiteral{Node: Node{p.span(tok.Location)}, Elements: elements}
	case types.LBRACE:
		p.s.Next()
		return p.parseMapLiteral(tok)
	}

	p.s.Fail(errors.ExpectedKindGotKind{
		Expected: types.IDENT,
		Got:      tok,
		Message:  "expression expected",
		Location: tok.Location,
	})
	panic("unreachable")
}

func (p *Parser) parseMapLiteral(open types.Token) Expression {
	var entries []MapEntry
	seen := map[string]bool{}

	for !p.s.PeekIs(types.RBRACE) {
		key := p.parseExpression()
		p.s.Required(types.COLON, ": expected")
		value := p.parseExpression()

		if name, ok := constantKey(key); ok {
			if seen[name] {
				p.log.SyntaxError(key.Position(), errors.DuplicateField{Name: name, Location: key.Position()})
			} else {
				seen[name] = true
				entries = append(entries, MapEntry{Key: key, Value: value})
			}
		} else {
			entries = append(entries, MapEntry{Key: key, Value: value})
		}

		if _, ok := p.s.Optional(types.COMMA); !ok {
			break
		}
	}
	p.s.Required(types.RBRACE, "} expected")

	return MapLiteral{Node: Node{p.span(open.Location)}, Entries: entries}
}

// constantKey returns the key a map entry has before resolution: bare
// identifiers are keys, not variable references.
func constantKey(e Expression) (string, bool) {
	switch k := e.(type) {
	case Variable:
		return k.Name, true
	case StringLiteral:
		return k.Value, true
	}
	return "", false
}

func (p *Parser) intLiteral(tok types.Token) Expression {
	lit := tok.Value
	long := strings.HasSuffix(lit, "L")
	lit = strings.TrimSuffix(lit, "L")

	base := 10
	if strings.HasPrefix(lit, "0x") || strings.HasPrefix(lit, "0X") {
		base = 16
		lit = lit[2:]
	}

	value, err := strconv.ParseInt(lit, base, 64)
	if err != nil {
		p.log.SyntaxError(tok.Location, fmt.Errorf("invalid integer literal %s", tok.Value))
		return InvalidExpression{Node{tok.Location}}
	}
	if !long && (value > 1<<31-1 || value < -(1<<31)) {
		long = true
	}

	return IntLiteral{Node: Node{tok.Location}, Value: value, Long: long}
}

func (p *Parser) floatLiteral(tok types.Token) Expression {
	lit := tok.Value
	single := strings.HasSuffix(lit, "f")
	lit = strings.TrimRight(lit, "fd")

	value, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		p.log.SyntaxError(tok.Location, fmt.Errorf("invalid float literal %s", tok.Value))
		return InvalidExpression{Node{tok.Location}}
	}

	return FloatLiteral{Node: Node{tok.Location}, Value: value, Single: single}
}
