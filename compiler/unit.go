// Package compiler resolves parsed files against scopes and the host type
// registry, and emits the result into an emit.Target.
package compiler

import (
	goerrors "errors"
	"strings"

	"github.com/pontaoski/zengo/emit"
	"github.com/pontaoski/zengo/errors"
	"github.com/pontaoski/zengo/parser"
	"github.com/pontaoski/zengo/types"
	"github.com/pontaoski/zengo/typesys"
	"github.com/ztrue/tracerr"
)

// InitName is the static method holding a unit's top-level statements.
const InitName = "__init__"

// ErrHasErrors is returned by Emit for units that reported errors.
var ErrHasErrors = goerrors.New("compilation unit has errors")

type function struct {
	decl   parser.Function
	method *typesys.Method
	scope  *Scope
	body   []Statement
}

// defaultValues are the declared defaults of a script function. They resolve
// once, in the scope of the declaring file.
type defaultValues struct {
	scope     *Scope
	decl      []parser.Expression
	values    []Expression
	resolving bool
	resolved  bool
}

// Unit is one compilation unit: files sharing a script class, resolved against
// a frozen registry. Units do not share mutable state and may be compiled
// concurrently.
type Unit struct {
	// Name is the internal name of the script class, such as scripts/main.
	Name string

	registry *typesys.Registry
	log      *errors.Counting
	root     *Scope

	globals   map[string]*Global
	functions map[string]*function
	order     []*function
	defaults  map[*typesys.Method]*defaultValues

	init     *method
	initBody []Statement
}

func NewUnit(name string, registry *typesys.Registry, log errors.Logger) *Unit {
	u := &Unit{
		Name:      name,
		registry:  registry,
		log:       errors.NewCounting(log),
		globals:   map[string]*Global{},
		functions: map[string]*function{},
		defaults:  map[*typesys.Method]*defaultValues{},
	}
	u.root = newScope(u)
	u.init = &method{Method: typesys.NewFunctionMethod(name, InitName, typesys.NewHeader(typesys.Void))}
	return u
}

// Logger is the unit's logger. Parse the unit's files with it so that syntax
// errors gate emission too.
func (u *Unit) Logger() errors.Logger {
	return u.log
}

func (u *Unit) Registry() *typesys.Registry {
	return u.registry
}

// Functions lists the script functions in declaration order.
func (u *Unit) Functions() (ret []*typesys.Method) {
	for _, fn := range u.order {
		ret = append(ret, fn.method)
	}
	return
}

// Globals lists the script globals, sorted by name.
func (u *Unit) Globals() (ret []*Global) {
	for _, g := range u.globals {
		ret = append(ret, g)
	}
	sortGlobals(ret)
	return
}

func (u *Unit) lookup(name string) (Symbol, bool) {
	if g, ok := u.globals[name]; ok {
		return g, true
	}
	if fn, ok := u.functions[name]; ok {
		return functionSymbol{name: name, methods: []*typesys.Method{fn.method}}, true
	}
	if g, ok := u.registry.Global(name); ok {
		return &Global{Owner: g.Owner, Name: g.Name, Type: g.Type, Final: true}, true
	}
	if fns, ok := u.registry.Functions(name); ok {
		return functionSymbol{name: name, methods: fns}, true
	}
	if t, ok := u.registry.Type(name); ok {
		return typeSymbol{typ: t}, true
	}
	if u.registry.IsPackage(name) {
		return packageSymbol{name: name}, true
	}
	return nil, false
}

func (u *Unit) declareGlobal(g *Global) bool {
	if _, ok := u.globals[g.Name]; ok {
		return false
	}
	if _, ok := u.functions[g.Name]; ok {
		return false
	}
	u.globals[g.Name] = g
	return true
}

// defaultArgument is the value of an omitted parameter: the declared default
// of a script function, or the zero value of the parameter type.
func (u *Unit) defaultArgument(m *typesys.Method, i int, at types.Span) Expression {
	t := m.Header().Params[i].Type
	d, ok := u.defaults[m]
	if !ok || d.decl[i] == nil {
		return zeroValue(at, t)
	}
	if d.resolving {
		u.log.Error(at, errors.InvalidCall, "default values of %s depend on themselves", m.Name)
		return NewInvalid(at, t)
	}
	u.resolveDefaults(m)
	return d.values[i]
}

// resolveDefaults compiles the declared defaults of m. A call that needs the
// defaults of m while they resolve is reported by defaultArgument.
func (u *Unit) resolveDefaults(m *typesys.Method) {
	d, ok := u.defaults[m]
	if !ok || d.resolved || d.resolving {
		return
	}

	d.resolving = true
	d.values = make([]Expression, len(d.decl))
	for i, e := range d.decl {
		if e != nil {
			d.values[i] = d.scope.CompileAs(e, m.Header().Params[i].Type)
		}
	}
	d.resolving = false
	d.resolved = true
}

// fileScope binds the imports of f.
func (u *Unit) fileScope(f *parser.File) *Scope {
	sc := u.root.Push()

	for _, imp := range f.Imports {
		name := strings.Join(imp.Name, ".")
		alias := imp.Alias
		if alias == "" {
			alias = imp.Name[len(imp.Name)-1]
		}

		var sym Symbol
		if t, ok := u.registry.Type(name); ok {
			sym = typeSymbol{typ: t}
		} else if u.registry.IsPackage(name) {
			sym = packageSymbol{name: name}
		} else {
			u.log.CouldNotResolveSymbol(imp.Pos, name)
			continue
		}

		if !sc.Declare(alias, sym) {
			u.log.DuplicateDeclaration(imp.Pos, "import", alias)
		}
	}

	return sc
}

func (u *Unit) declareFunction(sc *Scope, decl parser.Function) {
	if _, ok := u.functions[decl.Name]; ok {
		u.log.DuplicateDeclaration(decl.Pos, "function", decl.Name)
		return
	}
	if _, ok := u.globals[decl.Name]; ok {
		u.log.DuplicateDeclaration(decl.Pos, "function", decl.Name)
		return
	}

	var params []typesys.Param
	var defaults []parser.Expression
	optional := false
	for _, p := range decl.Params {
		t := typesys.Type(typesys.Any)
		if p.Type != nil {
			t = sc.ResolveType(p.Type)
		}
		if p.Default == nil && optional {
			u.log.Error(p.Pos, errors.Other, "parameter %s must have a default value", p.Name)
		}
		optional = optional || p.Default != nil

		params = append(params, typesys.Param{Name: p.Name, Type: t, Optional: p.Default != nil})
		defaults = append(defaults, p.Default)
	}

	ret := typesys.Type(typesys.Void)
	if decl.Returns != nil {
		ret = sc.ResolveType(decl.Returns)
	}

	fn := &function{
		decl:   decl,
		method: typesys.NewFunctionMethod(u.Name, decl.Name, typesys.NewHeader(ret, params...)),
		scope:  sc,
	}
	u.functions[decl.Name] = fn
	u.defaults[fn.method] = &defaultValues{scope: sc, decl: defaults}
	u.order = append(u.order, fn)
}

func (u *Unit) compileFunction(fn *function) {
	sc := fn.scope.enterMethod(fn.method)
	for i, p := range fn.decl.Params {
		sc.DeclareLocal(p.Pos, p.Name, fn.method.Header().Params[i].Type, false)
	}

	fn.body = sc.compileStatements(fn.decl.Body)
	if fn.method.ReturnType() != typesys.Void && !terminatesAll(fn.body) {
		u.log.Error(fn.decl.Pos, errors.Other, "missing return statement in %s", fn.decl.Name)
	}
}

// Compile resolves files into the unit. Functions of every file are declared
// first and their default values resolved, then top-level statements run in
// file order, then function bodies are compiled. Errors are reported to the unit's logger.
func (u *Unit) Compile(files ...*parser.File) {
	scopes := make([]*Scope, len(files))
	for i, f := range files {
		scopes[i] = u.fileScope(f)
	}

	for i, f := range files {
		for _, name := range f.FunctionNames() {
			u.declareFunction(scopes[i], f.Functions[name])
		}
	}

	for _, fn := range u.order {
		u.resolveDefaults(fn.method)
	}

	for i, f := range files {
		sc := scopes[i].Push()
		sc.method = u.init
		u.initBody = append(u.initBody, sc.compileStatements(f.Statements)...)
	}

	for _, fn := range u.order {
		u.compileFunction(fn)
	}
}

// Emit writes the unit into target. Units that reported any error are never
// emitted. Internal faults during emission are returned wrapped with a stack
// trace.
func (u *Unit) Emit(target emit.Target) (err error) {
	if u.log.HasErrors() {
		return ErrHasErrors
	}

	defer func() {
		if r := recover(); r != nil {
			internal, ok := r.(errors.Internal)
			if !ok {
				panic(r)
			}
			err = tracerr.Wrap(internal)
		}
	}()

	if err := emitMethod(target, u.init.Method, u.initBody); err != nil {
		return tracerr.Wrap(err)
	}
	for _, fn := range u.order {
		if err := emitMethod(target, fn.method, fn.body); err != nil {
			return tracerr.Wrap(err)
		}
	}
	return nil
}

func emitMethod(target emit.Target, m *typesys.Method, body []Statement) error {
	out := target.NewMethod(m.Signature())
	for _, st := range body {
		st.Emit(out)
	}
	if !terminatesAll(body) {
		out.Return(typesys.Void.Descriptor())
	}
	return out.Close()
}
