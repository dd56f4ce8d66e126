package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pontaoski/zengo/compiler"
	"github.com/pontaoski/zengo/errors"
	"github.com/pontaoski/zengo/host"
	"github.com/pontaoski/zengo/llvmout"
	"github.com/pontaoski/zengo/parser"
	"github.com/pontaoski/zengo/reader"
	"github.com/pontaoski/zengo/typesys"
	"github.com/ztrue/tracerr"
)

type module struct {
	dir      string
	manifest *host.Manifest
	registry *typesys.Registry
	libs     []string
}

// unitName is the owner of a package's script functions.
func unitName(pkg string) string {
	return strings.ReplaceAll(pkg, ".", "/")
}

func readTypeInfo(path string) (llvmout.TypeInfo, error) {
	data, err := reader.ReadTypeInfo(path, llvmout.TypeInfoSymbol)
	if err != nil {
		return llvmout.TypeInfo{}, tracerr.Wrap(err)
	}
	return llvmout.ParseTypeInfo(data)
}

// loadModule reads the manifest in dir and builds its registry. extra names
// more built libraries to compile against.
func loadModule(dir string, extra []string) (*module, error) {
	m, err := host.ReadManifest(dir)
	if err != nil {
		return nil, err
	}

	mod := &module{dir: dir, manifest: m}
	mod.libs = append(append(mod.libs, m.Libraries...), extra...)

	var infos []llvmout.TypeInfo
	for _, lib := range mod.libs {
		info, err := readTypeInfo(filepath.Join(dir, lib))
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}

	mod.registry, err = host.NewRegistry(m, infos...)
	if err != nil {
		return nil, err
	}
	return mod, nil
}

func (m *module) newUnit(log errors.Logger) *compiler.Unit {
	return compiler.NewUnit(unitName(m.manifest.Package), m.registry, log)
}

// compile parses every script of the module into one unit. Diagnostics go to
// log; the error is reserved for failures that stop compilation.
func (m *module) compile(log errors.Logger) (*compiler.Unit, error) {
	scripts, err := m.manifest.ScriptFiles(m.dir)
	if err != nil {
		return nil, err
	}

	unit := m.newUnit(log)

	var files []*parser.File
	for _, script := range scripts {
		handle, err := os.Open(filepath.Join(m.dir, script))
		if err != nil {
			return nil, tracerr.Wrap(err)
		}

		file, err := parser.ParseFile(script, handle, parser.DirLoader{Root: m.dir}, unit.Logger())
		handle.Close()
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}

	unit.Compile(files...)
	return unit, nil
}
