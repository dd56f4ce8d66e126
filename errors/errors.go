package errors

import (
	"fmt"

	"github.com/pontaoski/zengo/types"
)

type ExpectedKindGotKind struct {
	Expected types.TokenKind
	Got      types.Token
	Message  string
	Location types.Span
}

func (e ExpectedKindGotKind) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s, got %s", e.Message, e.Got)
	}
	return fmt.Sprintf("got %s, expected %s", e.Got, e.Expected)
}

type ExpectedOneOfKindGotKind struct {
	Expected []types.TokenKind
	Got      types.Token
	Location types.Span
}

func (e ExpectedOneOfKindGotKind) Error() string {
	return fmt.Sprintf("got %s, expected one of %s", e.Got, e.Expected)
}

type DuplicateField struct {
	Name     string
	Location types.Span
}

func (e DuplicateField) Error() string {
	return fmt.Sprintf("key %s specified more than once", e.Name)
}

// NotImplemented marks grammar or resolver surface that is recognised but not
// supported. It is an internal error, never a user diagnostic.
type NotImplemented struct {
	What     string
	Location types.Span
}

func (e NotImplemented) Error() string {
	return fmt.Sprintf("%s: %s is not yet implemented", e.Location, e.What)
}

// Internal is a compiler fault: a broken contract between compiler stages.
type Internal struct {
	Message string
}

func (e Internal) Error() string {
	return "internal compiler error: " + e.Message
}

// Fault panics with an Internal error. Faults are recovered at the unit
// boundary.
func Fault(msg string, fmts ...interface{}) {
	panic(Internal{Message: fmt.Sprintf(msg, fmts...)})
}
