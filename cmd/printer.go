package cmd

import (
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/mattn/go-isatty"
)

const (
	ansiReset = "\033[0m"
	ansiBold  = "\033[1m"
	ansiRed   = "\033[31m"
	ansiGreen = "\033[32m"
)

// printer writes command output, in colour when it goes to a terminal
type printer struct {
	w      io.Writer
	colour bool
}

func newPrinter(w io.Writer) *printer {
	f, ok := w.(*os.File)
	return &printer{w: w, colour: ok && isTerminal(f)}
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (p *printer) print(colour, format string, args ...any) {
	if p.colour && colour != "" {
		_, _ = fmt.Fprint(p.w, colour)
		defer func() { _, _ = fmt.Fprint(p.w, ansiReset) }()
	}
	_, _ = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) heading(name string) { p.print(ansiBold, "%s:\n", name) }

func (p *printer) plain(format string, args ...any) { p.print("", format, args...) }

func (p *printer) good(format string, args ...any) { p.print(ansiGreen, format, args...) }

func (p *printer) bad(format string, args ...any) { p.print(ansiRed, format, args...) }

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
