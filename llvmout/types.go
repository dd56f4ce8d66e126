package llvmout

import (
	"strings"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"
	"github.com/pontaoski/zengo/errors"
)

const stringDesc = "Lzen/String;"

// typeSet holds the named types of one module.
type typeSet struct {
	String        *types.StructType
	StringPointer *types.PointerType
	Reference     *types.PointerType
}

func newTypeSet(m *ir.Module) *typeSet {
	str := types.NewStruct(types.I64, types.NewPointer(types.I8))
	m.NewTypeDef("zen.String", str)

	return &typeSet{
		String:        str,
		StringPointer: types.NewPointer(str),
		Reference:     types.NewPointer(types.I8),
	}
}

// Of maps a descriptor to its LLVM type. Every reference other than a string
// is an opaque i8*.
func (t *typeSet) Of(desc string) types.Type {
	switch desc {
	case "Z":
		return types.I1
	case "B":
		return types.I8
	case "S":
		return types.I16
	case "I":
		return types.I32
	case "J":
		return types.I64
	case "F":
		return types.Float
	case "D":
		return types.Double
	case "V":
		return types.Void
	case stringDesc:
		return t.StringPointer
	}
	return t.Reference
}

// SplitDescriptor splits a method descriptor into its parameter and return
// descriptors.
func SplitDescriptor(desc string) (params []string, ret string) {
	if !strings.HasPrefix(desc, "(") {
		errors.Fault("malformed method descriptor %s", desc)
	}

	i := 1
	for i < len(desc) && desc[i] != ')' {
		n := descLength(desc[i:])
		if n == 0 {
			errors.Fault("malformed method descriptor %s", desc)
		}
		params = append(params, desc[i:i+n])
		i += n
	}
	if i >= len(desc)-1 {
		errors.Fault("malformed method descriptor %s", desc)
	}

	return params, desc[i+1:]
}

func descLength(d string) int {
	switch d[0] {
	case '[':
		if len(d) < 2 {
			return 0
		}
		n := descLength(d[1:])
		if n == 0 {
			return 0
		}
		return n + 1
	case 'L':
		return strings.IndexByte(d, ';') + 1
	}
	return 1
}

func isInt(t types.Type) bool {
	_, ok := t.(*types.IntType)
	return ok
}

func isFloat(t types.Type) bool {
	_, ok := t.(*types.FloatType)
	return ok
}

func isPointer(t types.Type) bool {
	_, ok := t.(*types.PointerType)
	return ok
}

func floatRank(t *types.FloatType) int {
	if t.Kind == types.FloatKindDouble {
		return 2
	}
	return 1
}
