package parser

import (
	"github.com/pontaoski/zengo/lexer"
	"github.com/pontaoski/zengo/types"
)

// parseStatement never abandons past its own boundary: a broken statement
// becomes an InvalidStatement and the stream is resynchronised.
func (p *Parser) parseStatement() (stmt Statement) {
	start := p.s.Offset()
	from := p.s.Peek().Location

	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(lexer.Abort); !ok {
				panic(r)
			}
			p.synchronize(start)
			stmt = InvalidStatement{Node{p.span(from)}}
		}
	}()

	return p.parseStatementInner()
}

func (p *Parser) parseStatementInner() Statement {
	tok := p.s.Peek()

	switch tok.Kind {
	case types.LBRACE:
		p.s.Next()
		stmts := p.parseStatementsUntilBrace()
		return Block{Node: Node{p.span(tok.Location)}, Statements: stmts}
	case types.VAR, types.VAL, types.GLOBAL, types.STATIC:
		return p.parseVarDeclaration()
	case types.RETURN:
		p.s.Next()
		ret := Return{}
		if !p.s.PeekIs(types.SEMICOLON) {
			ret.Value = p.parseExpression()
		}
		p.s.Required(types.SEMICOLON, "; expected")
		ret.Pos = p.span(tok.Location)
		return ret
	case types.IF:
		p.s.Next()
		stmt := If{Condition: p.parseExpression()}
		stmt.Then = p.parseStatement()
		if _, ok := p.s.Optional(types.ELSE); ok {
			stmt.Else = p.parseStatement()
		}
		stmt.Pos = p.span(tok.Location)
		return stmt
	case types.WHILE:
		p.s.Next()
		stmt := While{Condition: p.parseExpression()}
		stmt.Body = p.parseStatement()
		stmt.Pos = p.span(tok.Location)
		return stmt
	case types.FOR:
		p.s.Next()
		stmt := ForIn{}
		stmt.Names = append(stmt.Names, p.s.Required(types.IDENT, "identifier expected").Value)
		for {
			if _, ok := p.s.Optional(types.COMMA); !ok {
				break
			}
			stmt.Names = append(stmt.Names, p.s.Required(types.IDENT, "identifier expected").Value)
		}
		p.s.Required(types.IN, "in expected")
		stmt.Iterable = p.parseExpression()
		stmt.Body = p.parseStatement()
		stmt.Pos = p.span(tok.Location)
		return stmt
	case types.BREAK:
		p.s.Next()
		p.s.Required(types.SEMICOLON, "; expected")
		return Break{Node{p.span(tok.Location)}}
	case types.CONTINUE:
		p.s.Next()
		p.s.Required(types.SEMICOLON, "; expected")
		return Continue{Node{p.span(tok.Location)}}
	}

	expr := p.parseExpression()
	p.s.Required(types.SEMICOLON, "; expected")
	return ExpressionStatement{Node: Node{p.span(tok.Location)}, Expression: expr}
}

func (p *Parser) parseVarDeclaration() Statement {
	tok := p.s.Next()

	decl := VarDeclaration{
		Final:  tok.Kind != types.VAR,
		Global: tok.Kind == types.GLOBAL || tok.Kind == types.STATIC,
	}
	decl.Name = p.s.Required(types.IDENT, "variable name expected").Value

	if _, ok := p.s.Optional(types.AS); ok {
		decl.Type = p.parseType()
	}
	if _, ok := p.s.Optional(types.ASSIGN); ok {
		decl.Value = p.parseExpression()
	}
	p.s.Required(types.SEMICOLON, "; expected")
	decl.Pos = p.span(tok.Location)

	return decl
}

// parseStatementsUntilBrace should be called when the parser is past the
// opening brace. It consumes the closing one.
func (p *Parser) parseStatementsUntilBrace() []Statement {
	var statements []Statement

	for !p.s.PeekIs(types.RBRACE, types.EOF) {
		statements = append(statements, p.parseStatement())
	}
	p.s.Required(types.RBRACE, "} expected")

	return statements
}
