package errors

import (
	"fmt"
	"io"
	"sync"

	"github.com/pontaoski/zengo/types"
)

// Logger is the append-only diagnostic sink shared by every compiler stage.
type Logger interface {
	SyntaxError(at types.Span, err error)
	CouldNotResolveSymbol(at types.Span, name string)
	DuplicateDeclaration(at types.Span, what, name string)
	InvalidConversion(at types.Span, from, to string)
	CouldNotLoadFile(at types.Span, name string, err error)
	IncludeCycle(at types.Span, name string)
	Error(at types.Span, kind Kind, msg string, fmts ...interface{})
	Warning(at types.Span, msg string, fmts ...interface{})
	HasErrors() bool
}

// Bag is a Logger that keeps diagnostics in order. It is safe for use by
// several compilation units at once.
type Bag struct {
	mu     sync.Mutex
	diags  []Diagnostic
	errors int
}

func NewBag() *Bag {
	return &Bag{}
}

func (b *Bag) add(d Diagnostic) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.diags = append(b.diags, d)
	if d.Severity == Error {
		b.errors++
	}
}

func (b *Bag) SyntaxError(at types.Span, err error) {
	b.add(Diagnostic{Location: at, Kind: SyntaxError, Message: err.Error()})
}

func (b *Bag) CouldNotResolveSymbol(at types.Span, name string) {
	b.add(Diagnostic{Location: at, Kind: UnresolvedSymbol, Message: fmt.Sprintf("could not resolve symbol %s", name)})
}

func (b *Bag) DuplicateDeclaration(at types.Span, what, name string) {
	b.add(Diagnostic{Location: at, Kind: DuplicateDeclaration, Message: fmt.Sprintf("%s %s already exists", what, name)})
}

func (b *Bag) InvalidConversion(at types.Span, from, to string) {
	b.add(Diagnostic{Location: at, Kind: InvalidConversion, Message: fmt.Sprintf("cannot convert %s to %s", from, to)})
}

func (b *Bag) CouldNotLoadFile(at types.Span, name string, err error) {
	msg := fmt.Sprintf("could not load file %s", name)
	if err != nil {
		msg = err.Error()
	}
	b.add(Diagnostic{Location: at, Kind: CouldNotLoadFile, Message: msg})
}

func (b *Bag) IncludeCycle(at types.Span, name string) {
	b.add(Diagnostic{Location: at, Kind: IncludeCycle, Message: fmt.Sprintf("file %s includes itself", name)})
}

func (b *Bag) Error(at types.Span, kind Kind, msg string, fmts ...interface{}) {
	b.add(Diagnostic{Location: at, Kind: kind, Message: fmt.Sprintf(msg, fmts...)})
}

func (b *Bag) Warning(at types.Span, msg string, fmts ...interface{}) {
	b.add(Diagnostic{Location: at, Severity: Warning, Kind: Other, Message: fmt.Sprintf(msg, fmts...)})
}

func (b *Bag) HasErrors() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.errors > 0
}

func (b *Bag) ErrorCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.errors
}

// Diagnostics returns a copy of everything logged so far.
func (b *Bag) Diagnostics() []Diagnostic {
	b.mu.Lock()
	defer b.mu.Unlock()

	ret := make([]Diagnostic, len(b.diags))
	copy(ret, b.diags)
	return ret
}

// Count returns how many diagnostics of the given kind were logged.
func (b *Bag) Count(kind Kind) (n int) {
	for _, d := range b.Diagnostics() {
		if d.Kind == kind {
			n++
		}
	}
	return
}

func (b *Bag) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, d := range b.Diagnostics() {
		n, err := fmt.Fprintln(w, d)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Counting forwards to another Logger and counts the errors that went
// through it, so one unit can be gated on its own errors while sharing a sink
// with others.
type Counting struct {
	Logger
	mu     sync.Mutex
	errors int
}

func NewCounting(l Logger) *Counting {
	return &Counting{Logger: l}
}

func (c *Counting) inc() {
	c.mu.Lock()
	c.errors++
	c.mu.Unlock()
}

func (c *Counting) SyntaxError(at types.Span, err error) {
	c.inc()
	c.Logger.SyntaxError(at, err)
}

func (c *Counting) CouldNotResolveSymbol(at types.Span, name string) {
	c.inc()
	c.Logger.CouldNotResolveSymbol(at, name)
}

func (c *Counting) DuplicateDeclaration(at types.Span, what, name string) {
	c.inc()
	c.Logger.DuplicateDeclaration(at, what, name)
}

func (c *Counting) InvalidConversion(at types.Span, from, to string) {
	c.inc()
	c.Logger.InvalidConversion(at, from, to)
}

func (c *Counting) CouldNotLoadFile(at types.Span, name string, err error) {
	c.inc()
	c.Logger.CouldNotLoadFile(at, name, err)
}

func (c *Counting) IncludeCycle(at types.Span, name string) {
	c.inc()
	c.Logger.IncludeCycle(at, name)
}

func (c *Counting) Error(at types.Span, kind Kind, msg string, fmts ...interface{}) {
	c.inc()
	c.Logger.Error(at, kind, msg, fmts...)
}

func (c *Counting) HasErrors() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errors > 0
}
