package printer

import (
	"fmt"
	"io"
	"os"

	"github.com/logrusorgru/aurora"
)

// IPrinter is used for operator-facing status lines. Structured/debug output
// goes through logrus instead.
type IPrinter interface {
	Error(str string)
	Warn(str string)
	Print(str string)
}

type Printer struct {
	PrintFunc func(format string, a ...interface{}) (n int, err error)
}

// New returns a Printer that writes to STDOUT.
func New() *Printer {
	return &Printer{
		PrintFunc: fmt.Printf,
	}
}

// NewWithWriter returns a Printer that writes to w.
func NewWithWriter(w io.Writer) *Printer {
	return &Printer{
		PrintFunc: func(format string, a ...interface{}) (int, error) {
			return fmt.Fprintf(w, format, a...)
		},
	}
}

// Error is a convenience function for printing errors.
func (p *Printer) Error(str string) {
	p.PrintFunc("%s: %s\n", aurora.Red(">> ERROR"), str)
}

// Warn is a convenience function for printing warnings.
func (p *Printer) Warn(str string) {
	p.PrintFunc("%s: %s\n", aurora.Yellow(">> WARNING"), str)
}

// Print is a convenience function for printing regular output.
func (p *Printer) Print(str string) {
	p.PrintFunc("%s\n", str)
}

// Error prints an error to STDERR.
func Error(str string) {
	fmt.Fprintf(os.Stderr, "%s: %s\n", aurora.Red(">> ERROR"), str)
}

// Print prints to STDOUT.
func Print(str string) {
	fmt.Printf("%s\n", str)
}
