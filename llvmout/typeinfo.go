package llvmout

import (
	"encoding/json"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
)

// TypeInfoSymbol is the global holding the module's type info.
const TypeInfoSymbol = "__zen_types"

type FunctionInfo struct {
	Descriptor string `json:"descriptor"`
	Symbol     string `json:"symbol"`
}

// TypeInfo describes the script functions a module exports, keyed by their
// qualified name.
type TypeInfo struct {
	Functions map[string]FunctionInfo `json:"functions"`
}

func registerTypeInfoWithModule(t TypeInfo, m *ir.Module) {
	data, err := json.Marshal(t)
	if err != nil {
		panic(err)
	}

	g := m.NewGlobalDef(TypeInfoSymbol, constant.NewCharArray(append(data, 0)))
	g.Immutable = true
}

// ParseTypeInfo decodes type info as embedded by a module.
func ParseTypeInfo(data string) (t TypeInfo, err error) {
	err = json.Unmarshal([]byte(data), &t)
	return
}
