package parser

import (
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// ErrNotFound is returned by loaders for files that do not exist.
var ErrNotFound = errors.New("file not found")

// Loader opens files named by include directives.
type Loader interface {
	LoadFile(name string) (io.ReadCloser, error)
}

// DirLoader loads includes relative to a root directory.
type DirLoader struct {
	Root string
}

func (d DirLoader) LoadFile(name string) (io.ReadCloser, error) {
	handle, err := os.Open(filepath.Join(d.Root, filepath.FromSlash(name)))
	if os.IsNotExist(err) {
		return nil, errors.Wrapf(ErrNotFound, "could not load file %s", name)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "could not load file %s", name)
	}
	return handle, nil
}

// MapLoader serves includes from memory.
type MapLoader map[string]string

func (m MapLoader) LoadFile(name string) (io.ReadCloser, error) {
	content, ok := m[name]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "could not load file %s", name)
	}
	return ioutil.NopCloser(strings.NewReader(content)), nil
}

// NoLoader refuses every include.
type NoLoader struct{}

func (NoLoader) LoadFile(name string) (io.ReadCloser, error) {
	return nil, errors.Wrapf(ErrNotFound, "could not load file %s", name)
}
