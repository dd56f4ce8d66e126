package errors

import (
	"fmt"

	"github.com/pontaoski/zengo/types"
)

type Severity int

const (
	Error Severity = iota
	Warning
)

func (s Severity) String() string {
	if s == Warning {
		return "warning"
	}
	return "error"
}

// Kind classifies a diagnostic.
type Kind int

const (
	SyntaxError Kind = iota
	UnresolvedSymbol
	DuplicateDeclaration
	InvalidConversion
	TypeMismatch
	InvalidCall
	InvalidAssignment
	CouldNotLoadFile
	IncludeCycle
	Other
)

var kindNames = [...]string{
	SyntaxError:          "syntax",
	UnresolvedSymbol:     "unresolved-symbol",
	DuplicateDeclaration: "duplicate-declaration",
	InvalidConversion:    "invalid-conversion",
	TypeMismatch:         "type-mismatch",
	InvalidCall:          "invalid-call",
	InvalidAssignment:    "invalid-assignment",
	CouldNotLoadFile:     "load",
	IncludeCycle:         "include-cycle",
	Other:                "other",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

type Diagnostic struct {
	Location types.Span
	Severity Severity
	Kind     Kind
	Message  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s", d.Location.From, d.Severity, d.Message)
}
