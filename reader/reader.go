// Package reader loads the type info a zenc build embeds in a shared library.
package reader

import "github.com/coreos/pkg/dlopen"

import "C"

// ReadTypeInfo opens the library and returns the NUL terminated string stored
// at symbol.
func ReadTypeInfo(from, symbol string) (string, error) {
	handle, err := dlopen.GetHandle([]string{from})
	if err != nil {
		return "", err
	}
	defer handle.Close()

	sym, err := handle.GetSymbolPointer(symbol)
	if err != nil {
		return "", err
	}

	str := C.GoString((*C.char)(sym))
	return str, nil
}
