package parser

import (
	"io"
	"strings"

	"github.com/pontaoski/zengo/errors"
	"github.com/pontaoski/zengo/lexer"
	"github.com/pontaoski/zengo/types"
	"github.com/ztrue/tracerr"
)

type Parser struct {
	s       *lexer.Stream
	log     errors.Logger
	loader  Loader
	file    *File
	loading map[string]bool
}

// ParseFile parses filename from r. Syntax, semantic and include errors are
// reported to log and never returned; the returned error is reserved for
// internal errors such as unimplemented declarations, which abandon the file.
func ParseFile(filename string, r io.Reader, loader Loader, log errors.Logger) (file *File, err error) {
	if loader == nil {
		loader = NoLoader{}
	}

	p := &Parser{
		s:       lexer.NewStream(lexer.NewLexer(r, filename), log),
		log:     log,
		loader:  loader,
		file:    newFile(filename),
		loading: map[string]bool{filename: true},
	}

	defer func() {
		if r := recover(); r != nil {
			rerr, ok := r.(errors.NotImplemented)
			if !ok {
				panic(r)
			}
			file = p.file
			err = tracerr.Wrap(rerr)
		}
	}()

	p.file.Package = p.parsePackage()
	p.loadFileContents()
	p.checkRead(p.s.Peek().Location)

	return p.file, nil
}

// ParseString is ParseFile over an in-memory source.
func ParseString(filename, source string, loader Loader, log errors.Logger) (*File, error) {
	return ParseFile(filename, strings.NewReader(source), loader, log)
}

func (p *Parser) checkRead(at types.Span) {
	if err := p.s.Err(); err != nil {
		p.log.CouldNotLoadFile(at, p.s.Peek().Location.From.Filename, err)
	}
}

// recoverable runs fn, turning an abandoned construct into a resynchronised
// stream.
func (p *Parser) recoverable(fn func()) (ok bool) {
	start := p.s.Offset()

	defer func() {
		if r := recover(); r != nil {
			if _, isAbort := r.(lexer.Abort); !isAbort {
				panic(r)
			}
			p.synchronize(start)
			ok = false
		}
	}()

	fn()
	return true
}

// synchronize skips to the end of the broken construct: past the next
// top-level ';' or balanced '}', always consuming at least one token.
func (p *Parser) synchronize(start int) {
	depth := 0
	for p.s.HasNext() {
		switch p.s.Peek().Kind {
		case types.SEMICOLON:
			p.s.Next()
			if depth == 0 {
				return
			}
		case types.LBRACE:
			depth++
			p.s.Next()
		case types.RBRACE:
			if depth == 0 {
				if p.s.Offset() == start {
					p.s.Next()
				}
				return
			}
			depth--
			p.s.Next()
			if depth == 0 {
				return
			}
		default:
			p.s.Next()
		}
	}
}

func (p *Parser) span(from types.Span) types.Span {
	return types.Span{From: from.From, To: p.s.Last().Location.To}
}

func (p *Parser) declare(d Declaration) {
	p.file.Declarations = append(p.file.Declarations, d)
}

func (p *Parser) parsePackage() *Package {
	tok, ok := p.s.Optional(types.PACKAGE)
	if !ok {
		return nil
	}

	var pkg *Package
	p.recoverable(func() {
		name := p.s.IdentifierDotSequence()
		p.s.Required(types.SEMICOLON, "; expected")
		pkg = &Package{Node: Node{p.span(tok.Location)}, Name: strings.Join(name, ".")}
	})
	return pkg
}

func (p *Parser) loadFileContents() {
	for p.s.HasNext() {
		switch p.s.Peek().Kind {
		case types.IMPORT:
			p.recoverable(p.parseImport)
		case types.INCLUDE:
			p.recoverable(p.readInclude)
		case types.CLASS, types.INTERFACE, types.ENUM, types.STRUCT, types.EXPAND:
			p.parseUnsupported()
		case types.FUNCTION:
			p.recoverable(p.parseFunction)
		default:
			stmt := p.parseStatement()
			p.file.Statements = append(p.file.Statements, stmt)
			p.declare(StatementDeclaration{Node: Node{stmt.Position()}, Statement: stmt})
		}
	}
}

func (p *Parser) parseImport() {
	tok := p.s.Next()

	imp := Import{Name: p.s.IdentifierDotSequence()}
	if _, ok := p.s.Optional(types.AS); ok {
		imp.Alias = p.s.Required(types.IDENT, "alias name expected").Value
	}
	p.s.Required(types.SEMICOLON, "; expected")
	imp.Pos = p.span(tok.Location)

	p.file.Imports = append(p.file.Imports, imp)
	p.declare(imp)
}

func (p *Parser) readInclude() {
	p.s.Next()

	name := p.s.Required(types.STRING, "string literal expected")
	p.s.Required(types.SEMICOLON, "; expected")

	p.tryLoadFileContents(name.Location, name.Value)
}

func (p *Parser) tryLoadFileContents(at types.Span, name string) {
	if p.loading[name] {
		p.log.IncludeCycle(at, name)
		return
	}

	handle, err := p.loader.LoadFile(name)
	if err != nil {
		p.log.CouldNotLoadFile(at, name, err)
		return
	}
	defer handle.Close()

	outer := p.s
	p.loading[name] = true
	defer func() {
		p.s = outer
		delete(p.loading, name)
	}()

	p.s = lexer.NewStream(lexer.NewLexer(handle, name), p.log)
	p.parsePackage()
	p.loadFileContents()
	p.checkRead(at)
}

// parseUnsupported records the declaration and abandons the file.
func (p *Parser) parseUnsupported() {
	tok := p.s.Next()
	p.declare(Unsupported{Node: Node{tok.Location}, Keyword: tok.Value})

	panic(errors.NotImplemented{What: tok.Value + " declarations", Location: tok.Location})
}

func (p *Parser) parseFunction() {
	tok := p.s.Next()
	name := p.s.Required(types.IDENT, "function name expected")

	fn := Function{Name: name.Value}

	p.s.Required(types.LPAREN, "( expected")
	if !p.s.PeekIs(types.RPAREN) {
		for {
			fn.Params = append(fn.Params, p.parseParam())
			if _, ok := p.s.Optional(types.COMMA); !ok {
				break
			}
		}
	}
	p.s.Required(types.RPAREN, ") expected")

	if _, ok := p.s.Optional(types.AS); ok {
		fn.Returns = p.parseType()
	}

	p.s.Required(types.LBRACE, "{ expected")
	fn.Body = p.parseStatementsUntilBrace()
	fn.Pos = p.span(tok.Location)

	p.declare(fn)

	if _, ok := p.file.Functions[fn.Name]; ok {
		p.log.DuplicateDeclaration(name.Location, "function", fn.Name)
		return
	}
	p.file.Functions[fn.Name] = fn
}

func (p *Parser) parseParam() Param {
	name := p.s.Required(types.IDENT, "parameter name expected")
	param := Param{Name: name.Value}

	if _, ok := p.s.Optional(types.AS); ok {
		param.Type = p.parseType()
	}
	if _, ok := p.s.Optional(types.ASSIGN); ok {
		param.Default = p.parseExpression()
	}
	param.Pos = p.span(name.Location)

	return param
}
