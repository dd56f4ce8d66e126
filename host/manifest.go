// Package host reads the module manifest and builds the registry of native
// types, globals and functions scripts compile against.
package host

import (
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// ManifestName is the file a module directory is described by.
const ManifestName = "Zen Module Information"

type Manifest struct {
	Package   string   `yaml:"Package"`
	Scripts   []string `yaml:"Scripts,omitempty"`
	Libraries []string `yaml:"Libraries,omitempty"`
	Natives   Natives  `yaml:"Natives,omitempty"`
}

// Natives are the host declarations. Types are written the way scripts write
// them, e.g. "int[string]" or "function(int)bool".
type Natives struct {
	Enums     []Enum     `yaml:"Enums,omitempty"`
	Classes   []Class    `yaml:"Classes,omitempty"`
	Functions []Function `yaml:"Functions,omitempty"`
	Globals   []Global   `yaml:"Globals,omitempty"`
}

type Enum struct {
	Name   string   `yaml:"Name"`
	Values []string `yaml:"Values"`
}

type Class struct {
	Name    string     `yaml:"Name"`
	Super   string     `yaml:"Super,omitempty"`
	Fields  []Field    `yaml:"Fields,omitempty"`
	Methods []Function `yaml:"Methods,omitempty"`
}

type Field struct {
	Name     string `yaml:"Name"`
	Type     string `yaml:"Type"`
	Static   bool   `yaml:"Static,omitempty"`
	Writable bool   `yaml:"Writable,omitempty"`
}

type Function struct {
	Name    string  `yaml:"Name"`
	Params  []Param `yaml:"Params,omitempty"`
	Returns string  `yaml:"Returns,omitempty"`
	Static  bool    `yaml:"Static,omitempty"`
}

type Param struct {
	Name     string `yaml:"Name"`
	Type     string `yaml:"Type"`
	Optional bool   `yaml:"Optional,omitempty"`
}

type Global struct {
	Name string `yaml:"Name"`
	Type string `yaml:"Type"`
}

// ParseManifest decodes a manifest, rejecting unknown keys.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.UnmarshalStrict(data, &m); err != nil {
		return nil, errors.Wrapf(err, "error reading %s", ManifestName)
	}
	if m.Package == "" {
		return nil, errors.Errorf("error reading %s: no Package", ManifestName)
	}
	return &m, nil
}

// ReadManifest reads the manifest of the module in dir.
func ReadManifest(dir string) (*Manifest, error) {
	data, err := ioutil.ReadFile(filepath.Join(dir, ManifestName))
	if err != nil {
		return nil, errors.Wrapf(err, "error reading %s", ManifestName)
	}
	return ParseManifest(data)
}

// WriteManifest creates the manifest of the module in dir.
func WriteManifest(dir string, m *Manifest) error {
	out, err := yaml.Marshal(m)
	if err != nil {
		return errors.Wrapf(err, "error creating %s", ManifestName)
	}

	fi, err := os.Create(filepath.Join(dir, ManifestName))
	if err != nil {
		return errors.Wrapf(err, "error creating %s", ManifestName)
	}
	defer fi.Close()

	if _, err := fi.Write(out); err != nil {
		return errors.Wrapf(err, "error creating %s", ManifestName)
	}
	return nil
}

// ScriptFiles lists the scripts of the module in dir: the manifest's list, or
// every .zs file when it has none.
func (m *Manifest) ScriptFiles(dir string) ([]string, error) {
	if len(m.Scripts) > 0 {
		return m.Scripts, nil
	}

	fis, err := ioutil.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "error listing %s", dir)
	}

	var ret []string
	for _, fi := range fis {
		if !fi.IsDir() && filepath.Ext(fi.Name()) == ".zs" {
			ret = append(ret, fi.Name())
		}
	}
	return ret, nil
}
