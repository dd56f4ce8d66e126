package typesys

import (
	"fmt"
	"strings"
)

// GlobalsOwner owns host globals and functions that are not declared on a
// type.
const GlobalsOwner = "zen/Globals"

type Global struct {
	Name  string
	Type  Type
	Owner string
}

// Registry is the host's set of named types, globals and functions. It is
// filled during start-up and frozen before compilation; a frozen registry is
// read-only and may be shared by concurrent compilations.
type Registry struct {
	types     map[string]Type
	globals   map[string]*Global
	functions map[string][]*Method
	packages  map[string]bool
	frozen    bool
}

func NewRegistry() *Registry {
	r := &Registry{
		types:     map[string]Type{},
		globals:   map[string]*Global{},
		functions: map[string][]*Method{},
		packages:  map[string]bool{},
	}
	for _, b := range Basics {
		r.types[b.Name()] = b
	}
	return r
}

func (r *Registry) check() error {
	if r.frozen {
		return fmt.Errorf("registry is frozen")
	}
	return nil
}

// RegisterType makes t available under its qualified name. Every dotted
// prefix of the name becomes a package.
func (r *Registry) RegisterType(t Type) error {
	if err := r.check(); err != nil {
		return err
	}
	name := t.Name()
	if _, ok := r.types[name]; ok {
		return fmt.Errorf("type %s registered twice", name)
	}
	r.types[name] = t

	parts := strings.Split(name, ".")
	for i := 1; i < len(parts); i++ {
		r.packages[strings.Join(parts[:i], ".")] = true
	}
	return nil
}

func (r *Registry) RegisterGlobal(name string, t Type) error {
	if err := r.check(); err != nil {
		return err
	}
	if _, ok := r.globals[name]; ok {
		return fmt.Errorf("global %s registered twice", name)
	}
	r.globals[name] = &Global{Name: name, Type: t, Owner: GlobalsOwner}
	return nil
}

// RegisterFunction adds an overload of a global function.
func (r *Registry) RegisterFunction(m *Method) error {
	if err := r.check(); err != nil {
		return err
	}
	if m.Owner == nil && m.OwnerName == "" {
		m.OwnerName = GlobalsOwner
	}
	r.functions[m.Name] = append(r.functions[m.Name], m)
	return nil
}

func (r *Registry) Freeze() {
	r.frozen = true
}

func (r *Registry) Frozen() bool {
	return r.frozen
}

func (r *Registry) Type(name string) (Type, bool) {
	t, ok := r.types[name]
	return t, ok
}

func (r *Registry) Global(name string) (*Global, bool) {
	g, ok := r.globals[name]
	return g, ok
}

func (r *Registry) Functions(name string) ([]*Method, bool) {
	m, ok := r.functions[name]
	return m, ok
}

func (r *Registry) IsPackage(name string) bool {
	return r.packages[name]
}
