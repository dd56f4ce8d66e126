package typesys

import (
	"github.com/pontaoski/zengo/emit"
	"github.com/pontaoski/zengo/errors"
)

type Param struct {
	Name string
	Type Type
	// Optional parameters have a default value supplied by the caller side.
	Optional bool
}

// Header is the declared shape of a method.
type Header struct {
	Params []Param
	Return Type
}

func NewHeader(ret Type, params ...Param) Header {
	return Header{Params: params, Return: ret}
}

// Required counts the leading parameters without defaults.
func (h Header) Required() int {
	n := 0
	for _, p := range h.Params {
		if p.Optional {
			break
		}
		n++
	}
	return n
}

func (h Header) Accepts(args int) bool {
	return args >= h.Required() && args <= len(h.Params)
}

func (h Header) ParamDescriptors() []string {
	var ret []string
	for _, p := range h.Params {
		ret = append(ret, p.Type.Descriptor())
	}
	return ret
}

func (h Header) Descriptor() string {
	return emit.MethodDescriptor(h.Return.Descriptor(), h.ParamDescriptors()...)
}

func (h Header) FunctionType() *Function {
	var params []Type
	for _, p := range h.Params {
		params = append(params, p.Type)
	}
	return NewFunction(h.Return, params...)
}

// Method is a callable member or free function.
type Method struct {
	Name string
	// Owner is the declaring type; free functions have none and use
	// OwnerName instead.
	Owner     Type
	OwnerName string
	Static    bool
	header    Header
}

func NewMethod(name string, static bool, header Header) *Method {
	return &Method{Name: name, Static: static, header: header}
}

// NewFunctionMethod makes a free function living in the given owner.
func NewFunctionMethod(owner, name string, header Header) *Method {
	return &Method{Name: name, OwnerName: owner, Static: true, header: header}
}

func (m *Method) IsStatic() bool          { return m.Static }
func (m *Method) Header() Header          { return m.header }
func (m *Method) ReturnType() Type        { return m.header.Return }
func (m *Method) FunctionType() *Function { return m.header.FunctionType() }
func (m *Method) Descriptor() string      { return m.header.Descriptor() }

func (m *Method) owner() string {
	if m.Owner != nil {
		return InternalName(m.Owner)
	}
	return m.OwnerName
}

func (m *Method) Signature() emit.Signature {
	return emit.Signature{
		Owner:  m.owner(),
		Name:   m.Name,
		Static: m.Static,
		Params: m.header.ParamDescriptors(),
		Return: m.header.Return.Descriptor(),
	}
}

// EmitVirtual emits the call instruction for a receiver and arguments already
// on the stack.
func (m *Method) EmitVirtual(out emit.MethodOutput) {
	if m.Static {
		out.InvokeStatic(m.owner(), m.Name, m.Descriptor())
		return
	}
	out.InvokeVirtual(m.owner(), m.Name, m.Descriptor())
}

func (m *Method) EmitStatic(out emit.MethodOutput) {
	if !m.Static {
		errors.Fault("static invocation of instance method %s.%s", m.owner(), m.Name)
	}
	out.InvokeStatic(m.owner(), m.Name, m.Descriptor())
}

func (m *Method) EmitSpecial(out emit.MethodOutput) {
	if m.Static {
		errors.Fault("special invocation of static method %s.%s", m.owner(), m.Name)
	}
	out.InvokeSpecial(m.owner(), m.Name, m.Descriptor())
}

// InvokeVirtual emits receiver, arguments and the call. A static method
// takes the receiver as its first argument.
func (m *Method) InvokeVirtual(out emit.MethodOutput, receiver emit.Emitter, args []emit.Emitter) {
	receiver.Emit(out)
	for _, arg := range args {
		arg.Emit(out)
	}
	m.EmitVirtual(out)
}

func (m *Method) InvokeStatic(out emit.MethodOutput, args []emit.Emitter) {
	if !m.Static {
		errors.Fault("static invocation of instance method %s.%s", m.owner(), m.Name)
	}
	for _, arg := range args {
		arg.Emit(out)
	}
	m.EmitStatic(out)
}

func (m *Method) InvokeSpecial(out emit.MethodOutput, receiver emit.Emitter, args []emit.Emitter) {
	if m.Static {
		errors.Fault("special invocation of static method %s.%s", m.owner(), m.Name)
	}
	receiver.Emit(out)
	for _, arg := range args {
		arg.Emit(out)
	}
	m.EmitSpecial(out)
}
