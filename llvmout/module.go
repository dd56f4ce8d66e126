// Package llvmout is an emission target that lowers stack VM methods to LLVM
// IR. Host functions become external declarations, script globals become
// module globals and the script functions are described by an embedded
// __zen_types JSON string so built libraries can be loaded back as hosts.
package llvmout

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
	"github.com/pontaoski/zengo/emit"
	"github.com/pontaoski/zengo/errors"
)

// EntryName is the function that runs every script initializer in emission
// order.
const EntryName = "zen.main"

type function struct {
	key    string
	fn     *ir.Func
	static bool
}

type global struct {
	owner string
	desc  string
	g     *ir.Global
}

// Module is the LLVM Target. A Module is not safe for concurrent use; give
// each unit its own.
type Module struct {
	ir    *ir.Module
	types *typeSet

	functions map[string]*function
	funcOrder []*function
	globals   map[string]*global
	globOrder []*global
	strings   map[string]value.Value
	runtime   map[string]*ir.Func

	defined  map[string]bool
	owners   map[string]bool
	inits    []*ir.Func
	info     TypeInfo
	finished bool
}

func NewModule() *Module {
	m := ir.NewModule()

	return &Module{
		ir:        m,
		types:     newTypeSet(m),
		functions: map[string]*function{},
		globals:   map[string]*global{},
		strings:   map[string]value.Value{},
		runtime:   map[string]*ir.Func{},
		defined:   map[string]bool{},
		owners:    map[string]bool{},
		info:      TypeInfo{Functions: map[string]FunctionInfo{}},
	}
}

func hash(s string) string {
	h := fnv.New32a()
	h.Write([]byte(s))
	return strconv.FormatUint(uint64(h.Sum32()), 10)
}

func dotted(owner string) string {
	return strings.ReplaceAll(owner, "/", ".")
}

// Symbol is the LLVM name of a method. The descriptor hash keeps host
// overloads apart.
func Symbol(owner, name, desc string) string {
	return dotted(owner) + "." + name + "." + hash(desc)
}

func (m *Module) function(owner, name, desc string, static bool) *ir.Func {
	key := owner + "." + name + desc
	if f, ok := m.functions[key]; ok {
		if f.static != static {
			errors.Fault("method %s.%s used as both static and instance method", owner, name)
		}
		return f.fn
	}

	params, ret := SplitDescriptor(desc)

	var irParams []*ir.Param
	if !static {
		irParams = append(irParams, ir.NewParam("this", m.types.Reference))
	}
	for i, p := range params {
		irParams = append(irParams, ir.NewParam(fmt.Sprintf("p%d", i), m.types.Of(p)))
	}

	f := &function{
		key:    key,
		fn:     m.ir.NewFunc(Symbol(owner, name, desc), m.types.Of(ret), irParams...),
		static: static,
	}
	m.functions[key] = f
	m.funcOrder = append(m.funcOrder, f)

	return f.fn
}

func (m *Module) global(owner, name, desc string) *ir.Global {
	key := owner + "." + name
	if g, ok := m.globals[key]; ok {
		if g.desc != desc {
			errors.Fault("global %s used as both %s and %s", key, g.desc, desc)
		}
		return g.g
	}

	g := &global{owner: owner, desc: desc, g: m.ir.NewGlobal(dotted(key), m.types.Of(desc))}
	m.globals[key] = g
	m.globOrder = append(m.globOrder, g)

	return g.g
}

// runtimeFunction declares a helper the script runtime library provides.
func (m *Module) runtimeFunction(name string, ret types.Type, params ...types.Type) *ir.Func {
	if fn, ok := m.runtime[name]; ok {
		return fn
	}

	var irParams []*ir.Param
	for i, p := range params {
		irParams = append(irParams, ir.NewParam(fmt.Sprintf("p%d", i), p))
	}

	fn := m.ir.NewFunc("zen.rt."+name, ret, irParams...)
	m.runtime[name] = fn
	return fn
}

func (m *Module) stringData(s string) value.Value {
	if data, ok := m.strings[s]; ok {
		return data
	}

	data := m.ir.NewGlobalDef("_str_"+hash(s), constant.NewCharArrayFromString(s))
	data.Immutable = true
	m.strings[s] = data

	return data
}

func (m *Module) NewMethod(sig emit.Signature) emit.MethodOutput {
	if m.finished {
		errors.Fault("method %s.%s added to a finished module", sig.Owner, sig.Name)
	}

	desc := sig.Descriptor()
	fn := m.function(sig.Owner, sig.Name, desc, sig.Static)

	key := sig.Owner + "." + sig.Name + desc
	if m.defined[key] {
		errors.Fault("method %s.%s emitted twice", sig.Owner, sig.Name)
	}
	m.defined[key] = true
	m.owners[sig.Owner] = true

	if sig.Name == "__init__" && sig.Static && len(sig.Params) == 0 {
		m.inits = append(m.inits, fn)
	} else if sig.Static {
		m.info.Functions[dotted(sig.Owner)+"."+sig.Name] = FunctionInfo{
			Descriptor: desc,
			Symbol:     fn.Name(),
		}
	}

	return newMethod(m, sig, fn)
}

func zero(t types.Type) constant.Constant {
	switch t := t.(type) {
	case *types.IntType:
		return constant.NewInt(t, 0)
	case *types.FloatType:
		return constant.NewFloat(t, 0)
	case *types.PointerType:
		return constant.NewNull(t)
	}
	return constant.NewZeroInitializer(t)
}

// Finish completes the module: globals owned by emitted scripts get
// definitions, builtin host functions get bodies and the entry point and type
// info are added. Finish is idempotent.
func (m *Module) Finish() *ir.Module {
	if m.finished {
		return m.ir
	}
	m.finished = true

	for _, g := range m.globOrder {
		if m.owners[g.owner] {
			g.g.Init = zero(g.g.ContentType)
		}
	}

	for _, f := range m.funcOrder {
		if m.defined[f.key] {
			continue
		}
		if define, ok := builtins[f.key]; ok {
			define(m.types, f.fn)
		}
	}

	if len(m.inits) > 0 {
		entry := m.ir.NewFunc(EntryName, types.Void)
		b := entry.NewBlock("entry")
		for _, init := range m.inits {
			b.NewCall(init)
		}
		b.NewRet(nil)
	}

	registerTypeInfoWithModule(m.info, m.ir)

	return m.ir
}

// Info returns the type info that Finish embeds.
func (m *Module) Info() TypeInfo {
	return m.info
}

func (m *Module) String() string {
	return m.Finish().String()
}
