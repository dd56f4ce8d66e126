package compiler

import (
	"sort"

	"github.com/pontaoski/zengo/errors"
	"github.com/pontaoski/zengo/types"
	"github.com/pontaoski/zengo/typesys"
)

// Symbol is anything a name can be bound to.
type Symbol interface {
	// Partial produces the value of the symbol used at the given position.
	Partial(at types.Span) Partial
}

// Local is a method local variable or parameter.
type Local struct {
	Name  string
	Index int
	Type  typesys.Type
	Final bool
}

func (l *Local) Partial(at types.Span) Partial {
	return &LocalGet{pos: at, Local: l}
}

// Global is a static field, either declared by a script or supplied by the
// host.
type Global struct {
	Owner string
	Name  string
	Type  typesys.Type
	Final bool
}

func (g *Global) Partial(at types.Span) Partial {
	return &StaticGet{pos: at, Owner: g.Owner, Name: g.Name, typ: g.Type}
}

type typeSymbol struct {
	typ typesys.Type
}

func (t typeSymbol) Partial(at types.Span) Partial {
	return &TypeName{pos: at, Of: t.typ}
}

type packageSymbol struct {
	name string
}

func (p packageSymbol) Partial(at types.Span) Partial {
	return &PackageName{pos: at, Name: p.name}
}

// functionSymbol binds a name to a set of free function overloads.
type functionSymbol struct {
	name    string
	methods []*typesys.Method
}

func (f functionSymbol) Partial(at types.Span) Partial {
	return &MethodGroup{pos: at, Name: f.name, Methods: f.methods}
}

// method is the resolution context of the method being compiled.
type method struct {
	*typesys.Method
	locals int
}

func (m *method) newLocal(name string, t typesys.Type, final bool) *Local {
	l := &Local{Name: name, Index: m.locals, Type: t, Final: final}
	m.locals++
	return l
}

// Scope is one level of the lexical environment. Lookups walk outwards
// through parents; the outermost scope falls back to the unit.
type Scope struct {
	parent  *Scope
	unit    *Unit
	method  *method
	loop    *loop
	symbols map[string]Symbol
}

func newScope(unit *Unit) *Scope {
	return &Scope{unit: unit, symbols: map[string]Symbol{}}
}

// Push opens a nested scope inside the same method.
func (s *Scope) Push() *Scope {
	return &Scope{parent: s, unit: s.unit, method: s.method, loop: s.loop, symbols: map[string]Symbol{}}
}

func (s *Scope) enterMethod(m *typesys.Method) *Scope {
	n := s.Push()
	n.method = &method{Method: m}
	n.loop = nil
	return n
}

func (s *Scope) enterLoop(l *loop) *Scope {
	n := s.Push()
	n.loop = l
	return n
}

func (s *Scope) Parent() *Scope        { return s.parent }
func (s *Scope) Unit() *Unit           { return s.unit }
func (s *Scope) Logger() errors.Logger { return s.unit.log }

// Method is the enclosing method, or nil outside of one.
func (s *Scope) Method() *typesys.Method {
	if s.method == nil {
		return nil
	}
	return s.method.Method
}

// Lookup finds the innermost binding of name.
func (s *Scope) Lookup(name string) (Symbol, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if sym, ok := sc.symbols[name]; ok {
			return sym, true
		}
	}
	return s.unit.lookup(name)
}

// Declare binds name in this scope. It fails if this scope already binds it;
// outer bindings are shadowed.
func (s *Scope) Declare(name string, sym Symbol) bool {
	if _, ok := s.symbols[name]; ok {
		return false
	}
	s.symbols[name] = sym
	return true
}

// DeclareLocal allocates a local in the enclosing method and binds it.
func (s *Scope) DeclareLocal(at types.Span, name string, t typesys.Type, final bool) *Local {
	l := s.method.newLocal(name, t, final)
	if !s.Declare(name, l) {
		s.Logger().DuplicateDeclaration(at, "variable", name)
	}
	return l
}

func sortGlobals(g []*Global) {
	sort.Slice(g, func(i, j int) bool { return g[i].Name < g[j].Name })
}
