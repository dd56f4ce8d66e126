package host

import (
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	zenerrors "github.com/pontaoski/zengo/errors"
	"github.com/pontaoski/zengo/llvmout"
	"github.com/pontaoski/zengo/parser"
	"github.com/pontaoski/zengo/typesys"
)

// Builtins registers the functions every module gets.
func Builtins(r *typesys.Registry) error {
	fn := typesys.NewFunctionMethod("", "print", typesys.NewHeader(typesys.Void, typesys.Param{Name: "message", Type: typesys.String}))
	return r.RegisterFunction(fn)
}

// NewRegistry builds the frozen registry for a module: the builtins, the
// manifest's natives and the script functions of already built libraries.
func NewRegistry(m *Manifest, libraries ...llvmout.TypeInfo) (*typesys.Registry, error) {
	r := typesys.NewRegistry()
	if err := Builtins(r); err != nil {
		return nil, err
	}

	if err := declareNatives(r, m.Natives); err != nil {
		return nil, err
	}
	for _, lib := range libraries {
		if err := declareLibrary(r, lib); err != nil {
			return nil, err
		}
	}

	r.Freeze()
	return r, nil
}

// resolve parses a type written in the manifest and looks it up.
func resolve(r *typesys.Registry, source string) (typesys.Type, error) {
	if source == "" {
		return typesys.Void, nil
	}

	ref, err := parser.ParseTypeString(source)
	if err != nil {
		return nil, err
	}
	return resolveRef(r, ref)
}

func resolveRef(r *typesys.Registry, ref parser.TypeRef) (typesys.Type, error) {
	switch t := ref.(type) {
	case parser.NamedType:
		name := strings.Join(t.Parts, ".")
		if found, ok := r.Type(name); ok {
			return found, nil
		}
		return nil, errors.Errorf("unknown type %s", name)
	case parser.ArrayType:
		elem, err := resolveRef(r, t.Element)
		if err != nil {
			return nil, err
		}
		return typesys.NewArray(elem), nil
	case parser.MapType:
		key, err := resolveRef(r, t.Key)
		if err != nil {
			return nil, err
		}
		value, err := resolveRef(r, t.Value)
		if err != nil {
			return nil, err
		}
		return typesys.NewMap(key, value), nil
	case parser.FunctionType:
		var params []typesys.Type
		for _, p := range t.Params {
			param, err := resolveRef(r, p)
			if err != nil {
				return nil, err
			}
			params = append(params, param)
		}
		ret, err := resolveRef(r, t.Returns)
		if err != nil {
			return nil, err
		}
		return typesys.NewFunction(ret, params...), nil
	}

	panic("unhandled")
}

func header(r *typesys.Registry, fn Function) (typesys.Header, error) {
	ret, err := resolve(r, fn.Returns)
	if err != nil {
		return typesys.Header{}, errors.Wrapf(err, "function %s", fn.Name)
	}

	var params []typesys.Param
	for _, p := range fn.Params {
		t, err := resolve(r, p.Type)
		if err != nil {
			return typesys.Header{}, errors.Wrapf(err, "parameter %s of %s", p.Name, fn.Name)
		}
		params = append(params, typesys.Param{Name: p.Name, Type: t, Optional: p.Optional})
	}

	return typesys.NewHeader(ret, params...), nil
}

func declareNatives(r *typesys.Registry, n Natives) error {
	for _, e := range n.Enums {
		if err := r.RegisterType(typesys.NewEnum(e.Name, e.Values...)); err != nil {
			return errors.Wrapf(err, "enum %s", e.Name)
		}
	}

	// Classes are registered before their members so members can refer to
	// any class.
	classes := map[string]*typesys.Class{}
	pending := append([]Class(nil), n.Classes...)
	for len(pending) > 0 {
		progress := false
		var rest []Class
		for _, c := range pending {
			var super *typesys.Class
			if c.Super != "" {
				var ok bool
				if super, ok = classes[c.Super]; !ok {
					rest = append(rest, c)
					continue
				}
			}

			class := typesys.NewClass(c.Name, super)
			if err := r.RegisterType(class); err != nil {
				return errors.Wrapf(err, "class %s", c.Name)
			}
			classes[c.Name] = class
			progress = true
		}
		if !progress {
			return errors.Errorf("class %s has an unknown supertype %s", rest[0].Name, rest[0].Super)
		}
		pending = rest
	}

	for _, c := range n.Classes {
		class := classes[c.Name]
		for _, f := range c.Fields {
			t, err := resolve(r, f.Type)
			if err != nil {
				return errors.Wrapf(err, "field %s of %s", f.Name, c.Name)
			}
			if f.Static {
				class.AddStaticField(f.Name, t, f.Writable)
			} else {
				class.AddField(f.Name, t, f.Writable)
			}
		}
		for _, fn := range c.Methods {
			h, err := header(r, fn)
			if err != nil {
				return errors.Wrapf(err, "class %s", c.Name)
			}
			class.AddMethod(typesys.NewMethod(fn.Name, fn.Static, h))
		}
	}

	for _, fn := range n.Functions {
		h, err := header(r, fn)
		if err != nil {
			return err
		}
		if err := r.RegisterFunction(typesys.NewFunctionMethod("", fn.Name, h)); err != nil {
			return errors.Wrapf(err, "function %s", fn.Name)
		}
	}

	for _, g := range n.Globals {
		t, err := resolve(r, g.Type)
		if err != nil {
			return errors.Wrapf(err, "global %s", g.Name)
		}
		if err := r.RegisterGlobal(g.Name, t); err != nil {
			return errors.Wrapf(err, "global %s", g.Name)
		}
	}

	return nil
}

// descriptorType maps a descriptor back to a type. References other than
// strings and arrays come back as any.
func descriptorType(desc string) typesys.Type {
	for _, b := range typesys.Basics {
		if b.Descriptor() == desc {
			return b
		}
	}
	if strings.HasPrefix(desc, "[") {
		return typesys.NewArray(descriptorType(desc[1:]))
	}
	return typesys.Any
}

// declareLibrary registers the script functions of a built library, keeping
// their owner so calls link against the library's symbols.
func declareLibrary(r *typesys.Registry, info llvmout.TypeInfo) error {
	names := make([]string, 0, len(info.Functions))
	for name := range info.Functions {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, qualified := range names {
		dot := strings.LastIndex(qualified, ".")
		if dot < 0 {
			return errors.Errorf("malformed library function %s", qualified)
		}
		owner := strings.ReplaceAll(qualified[:dot], ".", "/")
		name := qualified[dot+1:]

		params, ret, err := splitDescriptor(info.Functions[qualified].Descriptor)
		if err != nil {
			return errors.Wrapf(err, "library function %s", qualified)
		}

		var ps []typesys.Param
		for i, p := range params {
			ps = append(ps, typesys.Param{Name: "p" + strconv.Itoa(i), Type: descriptorType(p)})
		}

		fn := typesys.NewFunctionMethod(owner, name, typesys.NewHeader(descriptorType(ret), ps...))
		if err := r.RegisterFunction(fn); err != nil {
			return errors.Wrapf(err, "library function %s", qualified)
		}
	}
	return nil
}

func splitDescriptor(desc string) (params []string, ret string, err error) {
	defer func() {
		if r := recover(); r != nil {
			internal, ok := r.(zenerrors.Internal)
			if !ok {
				panic(r)
			}
			err = errors.New(internal.Message)
		}
	}()

	params, ret = llvmout.SplitDescriptor(desc)
	return
}
